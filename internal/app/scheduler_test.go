package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/auth"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubLecturers []*model.User

func (s stubLecturers) ListWithAutoOfficeHours(ctx context.Context) ([]*model.User, error) {
	return s, nil
}

type slotStore struct {
	service.Collaborator

	mu    sync.Mutex
	slots []*model.AvailabilitySlot
}

func (s *slotStore) ListSlots(ctx context.Context, q model.SlotQuery) ([]*model.AvailabilitySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.AvailabilitySlot
	for _, slot := range s.slots {
		if slot.LecturerID == q.LecturerID {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (s *slotStore) CreateSlot(ctx context.Context, req model.SlotRequest) (*model.AvailabilitySlot, error) {
	actor, err := auth.ActorFrom(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := &model.AvailabilitySlot{
		ID: int64(len(s.slots) + 1), LecturerID: actor.UserID,
		Date: req.Date, StartTime: req.StartTime, EndTime: req.EndTime,
	}
	s.slots = append(s.slots, slot)
	return slot, nil
}

func TestGenerateOfficeHoursIsIdempotent(t *testing.T) {
	store := &slotStore{}
	lecturers := stubLecturers{{ID: 1, Role: model.RoleLecturer}, {ID: 2, Role: model.RoleLecturer}}
	s := NewScheduler(lecturers, store, 3, 2, zap.NewNop())
	s.now = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) }

	s.GenerateOfficeHours(context.Background())
	assert.Len(t, store.slots, 12)

	s.GenerateOfficeHours(context.Background())
	assert.Len(t, store.slots, 12)

	lecturer1, _ := store.ListSlots(context.Background(), model.SlotQuery{LecturerID: 1})
	assert.Len(t, lecturer1, 6)
}

package backend

import (
	"context"
	"testing"

	"github.com/Freeeeeet/consult_portal/internal/auth"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCanSee(t *testing.T) {
	lecturerID := int64(2)
	own := &model.Appointment{StudentID: 1, LecturerID: &lecturerID}
	queued := &model.Appointment{StudentID: 1}

	tests := []struct {
		name  string
		actor auth.Actor
		a     *model.Appointment
		want  bool
	}{
		{"student owner", auth.Actor{UserID: 1, Role: model.RoleStudent}, own, true},
		{"other student", auth.Actor{UserID: 3, Role: model.RoleStudent}, own, false},
		{"assigned lecturer", auth.Actor{UserID: 2, Role: model.RoleLecturer}, own, true},
		{"other lecturer", auth.Actor{UserID: 4, Role: model.RoleLecturer}, own, false},
		{"lecturer sees queue", auth.Actor{UserID: 4, Role: model.RoleLecturer}, queued, true},
		{"staff", auth.Actor{UserID: 9, Role: model.RoleStaff}, own, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canSee(tt.actor, tt.a))
		})
	}
}

func TestRequireRole(t *testing.T) {
	_, err := requireRole(context.Background(), model.RoleLecturer)
	require.ErrorIs(t, err, service.ErrForbidden)
	assert.Equal(t, service.CategoryRemote, service.Classify(err))

	ctx := auth.WithActor(context.Background(), auth.Actor{UserID: 1, Role: model.RoleStudent})
	_, err = requireRole(ctx, model.RoleLecturer)
	require.ErrorIs(t, err, service.ErrForbidden)

	actor, err := requireRole(ctx, model.RoleLecturer, model.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, int64(1), actor.UserID)
}

func TestFreeStartTimesWithoutLecturerQueues(t *testing.T) {
	b := New(nil, zap.NewNop())
	ctx := auth.WithActor(context.Background(), auth.Actor{UserID: 1, Role: model.RoleStudent})
	q := schedule.StartTimeQuery{Date: "2025-03-10", Duration: 30}

	times, err := b.FreeStartTimes(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, times)

	resolved, err := schedule.NewResolver(b).Resolve(ctx, q)
	require.NoError(t, err)
	assert.True(t, resolved.Queued)
	assert.Equal(t, schedule.StandardGrid(30), resolved.Times)
}

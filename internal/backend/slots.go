package backend

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/repository"
	"github.com/Freeeeeet/consult_portal/internal/repository/base"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ListSlots слоты преподавателя; без LecturerID - слоты текущего пользователя
func (b *Backend) ListSlots(ctx context.Context, q model.SlotQuery) ([]*model.AvailabilitySlot, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	lecturerID := q.LecturerID
	if lecturerID == 0 {
		lecturerID = actor.UserID
	}

	return b.slots.ListByLecturer(ctx, lecturerID, q.From, q.To)
}

// FreeStartTimes времена начала внутри свободных слотов, не задевающие действующие записи.
// Без преподавателя подтверждённых окон нет, запись уходит в очередь.
func (b *Backend) FreeStartTimes(ctx context.Context, q schedule.StartTimeQuery) ([]model.Clock, error) {
	if _, err := actorFrom(ctx); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, service.Reject(err)
	}
	if q.LecturerID == nil {
		return nil, nil
	}

	free, err := b.slots.ListFreeOnDate(ctx, *q.LecturerID, q.Date)
	if err != nil {
		return nil, err
	}
	if len(free) == 0 {
		return nil, nil
	}

	active, err := b.appointments.ListActiveOnDate(ctx, *q.LecturerID, q.Date)
	if err != nil {
		return nil, err
	}
	busy := make([]schedule.Interval, 0, len(active))
	for _, a := range active {
		busy = append(busy, schedule.Interval{Start: a.StartTime, End: a.EndTime})
	}

	return schedule.FreeStartTimes(free, busy, q.Duration, schedule.GridStep), nil
}

// CreateSlot создаёт слот текущего преподавателя. Создание слотов одного преподавателя
// сериализуется advisory-блокировкой, пересечения проверяются внутри транзакции.
func (b *Backend) CreateSlot(ctx context.Context, req model.SlotRequest) (*model.AvailabilitySlot, error) {
	actor, err := requireRole(ctx, model.RoleLecturer)
	if err != nil {
		return nil, err
	}

	interval := schedule.Interval{Start: req.StartTime, End: req.EndTime}
	if err := schedule.ValidateInterval(interval); err != nil {
		return nil, service.Reject(err)
	}

	slot := &model.AvailabilitySlot{
		LecturerID: actor.UserID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}

	err = base.InTx(ctx, b.pool, func(tx pgx.Tx) error {
		if err := base.LockKey(ctx, tx, actor.UserID); err != nil {
			return err
		}

		slots := repository.NewSlotRepository(tx)
		existing, err := slots.ListOnDate(ctx, actor.UserID, req.Date)
		if err != nil {
			return err
		}
		if err := schedule.CheckConflict(schedule.SlotEntry(actor.UserID, req), schedule.SlotEntries(existing)); err != nil {
			return service.Reject(err)
		}

		return slots.Create(ctx, slot)
	})
	if err != nil {
		return nil, err
	}

	b.logger.Debug("Slot stored",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("lecturer_id", actor.UserID),
		zap.String("date", slot.Date),
		zap.Stringer("interval", interval),
	)

	return slot, nil
}

// DeleteSlot удаляет свой свободный слот
func (b *Backend) DeleteSlot(ctx context.Context, id int64) error {
	actor, err := requireRole(ctx, model.RoleLecturer)
	if err != nil {
		return err
	}

	deleted, err := b.slots.DeleteFree(ctx, id, actor.UserID)
	if err != nil {
		return err
	}
	if deleted {
		return nil
	}

	// Разбираемся, почему удалять нечего
	slot, err := b.slots.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case slot == nil:
		return notFound("slot", id)
	case slot.LecturerID != actor.UserID:
		return service.Reject(fmt.Errorf("slot %d: %w", id, service.ErrForbidden))
	default:
		return service.Reject(fmt.Errorf("slot %d: %w", id, service.ErrSlotBooked))
	}
}

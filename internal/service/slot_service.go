package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Freeeeeet/consult_portal/internal/auth"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// SlotService приёмные часы одного преподавателя: локальная проверка,
// удалённое создание и удаление, пакетная генерация
type SlotService struct {
	collab   Collaborator
	actor    auth.Actor
	slots    *List[*model.AvailabilitySlot]
	resolver *schedule.Resolver
	batch    *schedule.BatchGenerator
	running  atomic.Bool
	logger   *zap.Logger
}

func NewSlotService(collab Collaborator, actor auth.Actor, concurrency int, logger *zap.Logger) *SlotService {
	s := &SlotService{
		collab:   collab,
		actor:    actor,
		resolver: schedule.NewResolver(collab),
		batch:    schedule.NewBatchGenerator(collab, concurrency),
		logger:   logger,
	}
	s.slots = NewList[*model.AvailabilitySlot](func(ctx context.Context) ([]*model.AvailabilitySlot, error) {
		return collab.ListSlots(ctx, model.SlotQuery{LecturerID: actor.UserID})
	})
	return s
}

// Reload перечитывает слоты с сервера
func (s *SlotService) Reload(ctx context.Context) error {
	if _, err := s.slots.Reload(ctx); err != nil {
		return fmt.Errorf("reload slots: %w", err)
	}
	return nil
}

// Slots текущий снимок слотов
func (s *SlotService) Slots() []*model.AvailabilitySlot {
	return s.slots.Items()
}

// StartTimes допустимое время начала для записи
func (s *SlotService) StartTimes(ctx context.Context, q schedule.StartTimeQuery) (*schedule.StartTimes, error) {
	return s.resolver.Resolve(ctx, q)
}

// CreateSlot проверяет интервал и пересечения локально и только потом вызывает сервер
func (s *SlotService) CreateSlot(ctx context.Context, req model.SlotRequest) (*model.AvailabilitySlot, error) {
	if err := s.checkSlot(req); err != nil {
		return nil, err
	}

	slot, err := s.collab.CreateSlot(ctx, req)
	if err != nil {
		s.afterRemoteError(ctx, err)
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.logger.Info("Slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("lecturer_id", s.actor.UserID),
		zap.String("date", slot.Date),
		zap.Stringer("start", slot.StartTime),
		zap.Stringer("end", slot.EndTime),
	)

	s.reloadQuietly(ctx)
	return slot, nil
}

// DeleteSlot удаляет свободный слот
func (s *SlotService) DeleteSlot(ctx context.Context, id int64) error {
	if slot, ok := s.slots.Find(func(sl *model.AvailabilitySlot) bool { return sl.ID == id }); ok && slot.Booked {
		return ErrSlotBooked
	}

	if err := s.collab.DeleteSlot(ctx, id); err != nil {
		s.afterRemoteError(ctx, err)
		return fmt.Errorf("delete slot: %w", err)
	}

	s.logger.Info("Slot deleted", zap.Int64("slot_id", id), zap.Int64("lecturer_id", s.actor.UserID))
	s.reloadQuietly(ctx)
	return nil
}

// GenerateBatch создаёт приёмные часы на диапазон дат. Пока пачка выполняется,
// повторный запуск отклоняется. После пачки список перезагружается один раз.
func (s *SlotService) GenerateBatch(ctx context.Context, from, to string, flags schedule.BatchFlags) (*schedule.BatchResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrBatchInProgress
	}
	defer s.running.Store(false)

	result, err := s.batch.Generate(ctx, schedule.BatchRequest{
		LecturerID: s.actor.UserID,
		From:       from,
		To:         to,
		Flags:      flags,
		Existing:   schedule.SlotEntries(s.slots.Items()),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Batch generated",
		zap.Stringer("batch_id", result.BatchID),
		zap.Int64("lecturer_id", s.actor.UserID),
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("attempted", result.Attempted),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed()),
	)
	for _, itemErr := range multierr.Errors(result.ItemErrs) {
		s.logger.Debug("Batch item failed",
			zap.Stringer("batch_id", result.BatchID),
			zap.Error(itemErr),
		)
	}

	s.reloadQuietly(ctx)
	return result, nil
}

// InProgress идёт ли сейчас пакетная генерация
func (s *SlotService) InProgress() bool {
	return s.running.Load()
}

func (s *SlotService) checkSlot(req model.SlotRequest) error {
	if err := schedule.ValidateInterval(schedule.Interval{Start: req.StartTime, End: req.EndTime}); err != nil {
		return err
	}
	return schedule.CheckConflict(schedule.SlotEntry(s.actor.UserID, req), schedule.SlotEntries(s.slots.Items()))
}

func (s *SlotService) afterRemoteError(ctx context.Context, err error) {
	if Classify(err) == CategoryRemote {
		s.reloadQuietly(ctx)
	}
}

func (s *SlotService) reloadQuietly(ctx context.Context) {
	if err := s.Reload(ctx); err != nil {
		s.logger.Warn("Failed to reload slots", zap.Error(err))
	}
}

package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/auth"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"go.uber.org/zap"
)

// LecturerSource преподаватели с автоматическими приёмными часами
type LecturerSource interface {
	ListWithAutoOfficeHours(ctx context.Context) ([]*model.User, error)
}

// Scheduler раз в сутки продлевает приёмные часы на DaysAhead дней вперёд
type Scheduler struct {
	lecturers   LecturerSource
	collab      service.Collaborator
	daysAhead   int
	concurrency int
	now         func() time.Time
	logger      *zap.Logger
	stopChan    chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(lecturers LecturerSource, collab service.Collaborator, daysAhead, concurrency int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		lecturers:   lecturers,
		collab:      collab,
		daysAhead:   daysAhead,
		concurrency: concurrency,
		now:         time.Now,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Int("days_ahead", s.daysAhead))

	go s.runOfficeHoursTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

func (s *Scheduler) runOfficeHoursTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.GenerateOfficeHours(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.GenerateOfficeHours(ctx)
		case <-s.stopChan:
			s.logger.Info("Office hours task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Office hours task cancelled")
			return
		}
	}
}

// GenerateOfficeHours создаёт утренние и дневные окна для каждого преподавателя.
// Уже существующие окна отсекаются локальной проверкой пересечений.
func (s *Scheduler) GenerateOfficeHours(ctx context.Context) {
	lecturers, err := s.lecturers.ListWithAutoOfficeHours(ctx)
	if err != nil {
		s.logger.Error("Failed to list lecturers for office hours", zap.Error(err))
		return
	}

	today := s.now()
	from := today.Format(model.DateLayout)
	to := today.AddDate(0, 0, s.daysAhead-1).Format(model.DateLayout)

	for _, lecturer := range lecturers {
		actor := auth.Actor{UserID: lecturer.ID, Role: model.RoleLecturer}
		lecturerCtx := auth.WithActor(ctx, actor)

		slots := service.NewSlotService(s.collab, actor, s.concurrency, s.logger)
		if err := slots.Reload(lecturerCtx); err != nil {
			s.logger.Error("Failed to load slots", zap.Int64("lecturer_id", lecturer.ID), zap.Error(err))
			continue
		}

		result, err := slots.GenerateBatch(lecturerCtx, from, to, schedule.BatchFlags{Morning: true, Afternoon: true})
		if err != nil {
			s.logger.Error("Office hours generation failed", zap.Int64("lecturer_id", lecturer.ID), zap.Error(err))
			continue
		}

		s.logger.Info("Office hours generated",
			zap.Int64("lecturer_id", lecturer.ID),
			zap.Int("created", result.Succeeded),
			zap.Int("skipped", result.Failed()),
		)
	}
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/consult_portal/internal/auth"
	"github.com/Freeeeeet/consult_portal/internal/filter"
	"github.com/Freeeeeet/consult_portal/internal/lifecycle"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"go.uber.org/zap"
)

// AppointmentService записи текущего пользователя. Каждое действие сначала проверяется
// по таблице переходов, затем отправляется на сервер; после ответа список перезагружается.
type AppointmentService struct {
	collab       Collaborator
	actor        auth.Actor
	appointments *List[*model.Appointment]
	logger       *zap.Logger
}

func NewAppointmentService(collab Collaborator, actor auth.Actor, logger *zap.Logger) *AppointmentService {
	return &AppointmentService{
		collab:       collab,
		actor:        actor,
		appointments: NewList[*model.Appointment](collab.ListAppointments),
		logger:       logger,
	}
}

// Reload перечитывает записи с сервера
func (s *AppointmentService) Reload(ctx context.Context) error {
	if _, err := s.appointments.Reload(ctx); err != nil {
		return fmt.Errorf("reload appointments: %w", err)
	}
	return nil
}

// Appointments текущий снимок записей
func (s *AppointmentService) Appointments() []*model.Appointment {
	return s.appointments.Items()
}

// Filter применяет критерии к снимку
func (s *AppointmentService) Filter(c filter.Criteria) []*model.Appointment {
	return filter.Apply(s.appointments.Items(), c)
}

// Get запись из снимка
func (s *AppointmentService) Get(id int64) (*model.Appointment, bool) {
	return s.appointments.Find(func(a *model.Appointment) bool { return a.ID == id })
}

// Actions действия, доступные текущему пользователю над записью
func (s *AppointmentService) Actions(a *model.Appointment) []lifecycle.Action {
	return lifecycle.Allowed(a.Status, s.actor.Role)
}

// Create записывает студента на консультацию
func (s *AppointmentService) Create(ctx context.Context, req model.AppointmentRequest) (*model.Appointment, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}

	appointment, err := s.collab.CreateAppointment(ctx, req)
	if err != nil {
		s.afterRemoteError(ctx, err)
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.logger.Info("Appointment created",
		zap.Int64("appointment_id", appointment.ID),
		zap.Int64("student_id", s.actor.UserID),
		zap.String("date", appointment.Date),
		zap.Stringer("start", appointment.StartTime),
		zap.Bool("queued", appointment.LecturerID == nil),
	)

	s.reloadQuietly(ctx)
	return appointment, nil
}

// Approve подтверждает запись, message - место или ссылка на встречу
func (s *AppointmentService) Approve(ctx context.Context, id int64, message string) error {
	cmd := lifecycle.Command{Action: lifecycle.ActionApprove, Message: message}
	return s.transition(ctx, id, cmd, func(ctx context.Context) error {
		return s.collab.Approve(ctx, id, strings.TrimSpace(message))
	})
}

func (s *AppointmentService) Reject(ctx context.Context, id int64) error {
	cmd := lifecycle.Command{Action: lifecycle.ActionReject}
	return s.transition(ctx, id, cmd, func(ctx context.Context) error {
		return s.collab.Reject(ctx, id)
	})
}

// Cancel отмена студентом: ожидающая запись отменяется сразу,
// для подтверждённой отправляется запрос с причиной.
// Записи нет в снимке - действие выбирает сервер.
func (s *AppointmentService) Cancel(ctx context.Context, id int64, reason string) error {
	action := lifecycle.ActionCancel
	if a, ok := s.Get(id); ok && a.Status == model.StatusApproved {
		action = lifecycle.ActionRequestCancel
	}

	cmd := lifecycle.Command{Action: action, CancelReason: reason}
	return s.transition(ctx, id, cmd, func(ctx context.Context) error {
		return s.collab.StudentCancel(ctx, id, strings.TrimSpace(reason))
	})
}

// LecturerCancel преподаватель отменяет подтверждённую запись сам
func (s *AppointmentService) LecturerCancel(ctx context.Context, id int64) error {
	cmd := lifecycle.Command{Action: lifecycle.ActionLecturerCancel}
	return s.transition(ctx, id, cmd, func(ctx context.Context) error {
		return s.collab.LecturerCancel(ctx, id)
	})
}

// ResolveCancelRequest решение преподавателя по запросу студента на отмену
func (s *AppointmentService) ResolveCancelRequest(ctx context.Context, id int64, decision lifecycle.Decision) error {
	if !decision.Valid() {
		return fmt.Errorf("decision %q: %w", decision, ErrInvalidInput)
	}

	cmd := lifecycle.Command{Action: decision.Action()}
	return s.transition(ctx, id, cmd, func(ctx context.Context) error {
		if decision == lifecycle.DecisionApprove {
			return s.collab.ApproveCancelRequest(ctx, id)
		}
		return s.collab.RejectCancelRequest(ctx, id)
	})
}

// Complete фиксирует итог проведённой консультации
func (s *AppointmentService) Complete(ctx context.Context, id int64, result model.ConsultationResult, note string) error {
	cmd := lifecycle.Command{Action: lifecycle.ActionComplete, Result: result, Note: note}
	return s.transition(ctx, id, cmd, func(ctx context.Context) error {
		return s.collab.RecordResult(ctx, id, result, strings.TrimSpace(note))
	})
}

// HardDelete удаление записи администратором вне жизненного цикла
func (s *AppointmentService) HardDelete(ctx context.Context, id int64) error {
	if !lifecycle.CanHardDelete(s.actor.Role) {
		return ErrForbidden
	}

	if err := s.collab.AdminDelete(ctx, id); err != nil {
		s.afterRemoteError(ctx, err)
		return fmt.Errorf("delete appointment: %w", err)
	}

	s.logger.Info("Appointment deleted", zap.Int64("appointment_id", id), zap.Int64("admin_id", s.actor.UserID))
	s.reloadQuietly(ctx)
	return nil
}

// Attach прикладывает файл к записи
func (s *AppointmentService) Attach(ctx context.Context, att *model.Attachment) error {
	if att == nil || att.Filename == "" || len(att.Data) == 0 {
		return fmt.Errorf("attachment is empty: %w", ErrInvalidInput)
	}

	if err := s.collab.UploadAttachment(ctx, att); err != nil {
		s.afterRemoteError(ctx, err)
		return fmt.Errorf("upload attachment: %w", err)
	}

	s.reloadQuietly(ctx)
	return nil
}

func (s *AppointmentService) Download(ctx context.Context, appointmentID int64) (*model.Attachment, error) {
	att, err := s.collab.DownloadAttachment(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("download attachment: %w", err)
	}
	return att, nil
}

// transition: локальная проверка, удалённый вызов, перезагрузка.
// Записи нет в снимке - локальная проверка пропускается, решает сервер.
func (s *AppointmentService) transition(ctx context.Context, id int64, cmd lifecycle.Command, call func(context.Context) error) error {
	cmd.Role = s.actor.Role

	if a, ok := s.Get(id); ok {
		if _, err := lifecycle.Validate(a.Status, cmd); err != nil {
			return err
		}
	}

	if err := call(ctx); err != nil {
		s.afterRemoteError(ctx, err)
		return fmt.Errorf("%s appointment %d: %w", cmd.Action, id, err)
	}

	s.logger.Info("Appointment transition",
		zap.Int64("appointment_id", id),
		zap.String("action", string(cmd.Action)),
		zap.Int64("user_id", s.actor.UserID),
	)

	s.reloadQuietly(ctx)
	return nil
}

func (s *AppointmentService) checkRequest(req model.AppointmentRequest) error {
	if strings.TrimSpace(req.Reason) == "" {
		return fmt.Errorf("reason is required: %w", ErrInvalidInput)
	}
	if !req.ConsultationType.Valid() {
		return fmt.Errorf("consultation type %q: %w", req.ConsultationType, ErrInvalidInput)
	}
	if req.Duration <= 0 {
		return fmt.Errorf("duration must be positive: %w", ErrInvalidInput)
	}

	candidate := schedule.AppointmentEntry(req)
	if err := schedule.ValidateInterval(candidate.Interval); err != nil {
		return err
	}
	return schedule.CheckConflict(candidate, schedule.AppointmentEntries(s.appointments.Items()))
}

func (s *AppointmentService) afterRemoteError(ctx context.Context, err error) {
	if Classify(err) == CategoryRemote {
		s.reloadQuietly(ctx)
	}
}

func (s *AppointmentService) reloadQuietly(ctx context.Context) {
	if err := s.Reload(ctx); err != nil {
		s.logger.Warn("Failed to reload appointments", zap.Error(err))
	}
}

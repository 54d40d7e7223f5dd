package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/consult_portal/internal/auth"
	"github.com/Freeeeeet/consult_portal/internal/lifecycle"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/repository"
	"github.com/Freeeeeet/consult_portal/internal/repository/base"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ListAppointments записи, видимые текущему пользователю
func (b *Backend) ListAppointments(ctx context.Context) ([]*model.Appointment, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case model.RoleStudent:
		return b.appointments.ListByStudent(ctx, actor.UserID)
	case model.RoleLecturer:
		return b.appointments.ListByLecturer(ctx, actor.UserID)
	default:
		return b.appointments.ListAll(ctx)
	}
}

// CreateAppointment записывает студента. Если преподаватель указан, запись проверяется на
// пересечения и занимает свободный слот, целиком её вмещающий. Без слота запись остаётся в очереди.
func (b *Backend) CreateAppointment(ctx context.Context, req model.AppointmentRequest) (*model.Appointment, error) {
	actor, err := requireRole(ctx, model.RoleStudent)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Reason) == "" || !req.ConsultationType.Valid() || req.Duration <= 0 {
		return nil, service.Reject(service.ErrInvalidInput)
	}

	entry := schedule.AppointmentEntry(req)
	if err := schedule.ValidateInterval(entry.Interval); err != nil {
		return nil, service.Reject(err)
	}

	a := &model.Appointment{
		StudentID:        actor.UserID,
		LecturerID:       req.LecturerID,
		Date:             req.Date,
		StartTime:        entry.Interval.Start,
		EndTime:          entry.Interval.End,
		ConsultationType: req.ConsultationType,
		Reason:           strings.TrimSpace(req.Reason),
		Status:           model.StatusPending,
	}

	err = base.InTx(ctx, b.pool, func(tx pgx.Tx) error {
		if req.LecturerID != nil {
			lecturer, err := repository.NewUserRepository(tx).GetByID(ctx, *req.LecturerID)
			if err != nil {
				return err
			}
			if lecturer == nil || lecturer.Role != model.RoleLecturer {
				return notFound("lecturer", *req.LecturerID)
			}
			if err := b.reserve(ctx, tx, a); err != nil {
				return err
			}
		}
		return repository.NewAppointmentRepository(tx).Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info("Appointment stored",
		zap.Int64("appointment_id", a.ID),
		zap.Int64("student_id", actor.UserID),
		zap.Bool("slot_booked", a.SlotID != nil),
	)

	return b.reloaded(ctx, a)
}

// reserve проверяет пересечения с записями преподавателя и занимает слот.
// Вызывается в транзакции, a.LecturerID задан.
func (b *Backend) reserve(ctx context.Context, tx pgx.Tx, a *model.Appointment) error {
	lecturerID := *a.LecturerID
	if err := base.LockKey(ctx, tx, lecturerID); err != nil {
		return err
	}

	active, err := repository.NewAppointmentRepository(tx).ListActiveOnDate(ctx, lecturerID, a.Date)
	if err != nil {
		return err
	}
	candidate := schedule.Entry{
		ID:         a.ID,
		LecturerID: a.LecturerID,
		Date:       a.Date,
		Interval:   schedule.Interval{Start: a.StartTime, End: a.EndTime},
		Active:     true,
	}
	if err := schedule.CheckConflict(candidate, schedule.AppointmentEntries(active)); err != nil {
		return service.Reject(err)
	}

	slots := repository.NewSlotRepository(tx)
	onDate, err := slots.ListOnDate(ctx, lecturerID, a.Date)
	if err != nil {
		return err
	}
	if slot := schedule.ContainingSlot(onDate, candidate.Interval); slot != nil {
		if err := slots.SetBooked(ctx, slot.ID, true); err != nil {
			return err
		}
		a.SlotID = &slot.ID
	}
	return nil
}

func (b *Backend) reloaded(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	full, err := b.appointments.GetByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if full == nil {
		return a, nil
	}
	return full, nil
}

func (b *Backend) Approve(ctx context.Context, id int64, message string) error {
	return b.transition(ctx, id, func(*model.Appointment) lifecycle.Command {
		return lifecycle.Command{Action: lifecycle.ActionApprove, Message: message}
	})
}

func (b *Backend) Reject(ctx context.Context, id int64) error {
	return b.transition(ctx, id, func(*model.Appointment) lifecycle.Command {
		return lifecycle.Command{Action: lifecycle.ActionReject}
	})
}

// StudentCancel ожидающая запись отменяется сразу, подтверждённая переходит в CANCEL_REQUESTED
func (b *Backend) StudentCancel(ctx context.Context, id int64, reason string) error {
	return b.transition(ctx, id, func(a *model.Appointment) lifecycle.Command {
		if a.Status == model.StatusApproved {
			return lifecycle.Command{Action: lifecycle.ActionRequestCancel, CancelReason: reason}
		}
		return lifecycle.Command{Action: lifecycle.ActionCancel, CancelReason: reason}
	})
}

func (b *Backend) LecturerCancel(ctx context.Context, id int64) error {
	return b.transition(ctx, id, func(*model.Appointment) lifecycle.Command {
		return lifecycle.Command{Action: lifecycle.ActionLecturerCancel}
	})
}

func (b *Backend) ApproveCancelRequest(ctx context.Context, id int64) error {
	return b.transition(ctx, id, func(*model.Appointment) lifecycle.Command {
		return lifecycle.Command{Action: lifecycle.ActionApproveCancel}
	})
}

func (b *Backend) RejectCancelRequest(ctx context.Context, id int64) error {
	return b.transition(ctx, id, func(*model.Appointment) lifecycle.Command {
		return lifecycle.Command{Action: lifecycle.ActionDenyCancel}
	})
}

func (b *Backend) RecordResult(ctx context.Context, id int64, result model.ConsultationResult, note string) error {
	return b.transition(ctx, id, func(*model.Appointment) lifecycle.Command {
		return lifecycle.Command{Action: lifecycle.ActionComplete, Result: result, Note: note}
	})
}

// transition применяет переход к заблокированной строке. Преподаватель, подтверждающий
// запись из общей очереди, становится её преподавателем.
func (b *Backend) transition(ctx context.Context, id int64, command func(*model.Appointment) lifecycle.Command) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	var t lifecycle.Transition
	err = base.InTx(ctx, b.pool, func(tx pgx.Tx) error {
		appointments := repository.NewAppointmentRepository(tx)

		a, err := appointments.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if a == nil || !canSee(actor, a) {
			return notFound("appointment", id)
		}

		cmd := command(a)
		cmd.Role = actor.Role

		if cmd.Action == lifecycle.ActionApprove && a.LecturerID == nil {
			if _, err := lifecycle.Validate(a.Status, cmd); err != nil {
				return service.Reject(err)
			}
			a.LecturerID = &actor.UserID
			if err := b.reserve(ctx, tx, a); err != nil {
				return err
			}
		}

		t, err = lifecycle.Apply(a, cmd)
		if err != nil {
			return service.Reject(err)
		}

		if t.FreesSlot() && a.SlotID != nil {
			if err := repository.NewSlotRepository(tx).SetBooked(ctx, *a.SlotID, false); err != nil {
				return err
			}
		}

		return appointments.Update(ctx, a)
	})
	if err != nil {
		return err
	}

	b.logger.Info("Appointment status changed",
		zap.Int64("appointment_id", id),
		zap.String("action", string(t.Action)),
		zap.String("from", string(t.From)),
		zap.String("to", string(t.To)),
		zap.Int64("user_id", actor.UserID),
	)

	return nil
}

// UploadAttachment прикладывает файл к своей записи
func (b *Backend) UploadAttachment(ctx context.Context, att *model.Attachment) error {
	actor, err := requireRole(ctx, model.RoleStudent, model.RoleLecturer)
	if err != nil {
		return err
	}
	if att == nil || att.Filename == "" || len(att.Data) == 0 {
		return service.Reject(service.ErrInvalidInput)
	}

	a, err := b.appointments.GetByID(ctx, att.AppointmentID)
	if err != nil {
		return err
	}
	if a == nil || !canSee(actor, a) {
		return notFound("appointment", att.AppointmentID)
	}

	if att.ContentType == "" {
		att.ContentType = "application/octet-stream"
	}
	return b.attachments.Create(ctx, att)
}

// DownloadAttachment последний файл записи
func (b *Backend) DownloadAttachment(ctx context.Context, appointmentID int64) (*model.Attachment, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	a, err := b.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a == nil || !canSee(actor, a) {
		return nil, notFound("appointment", appointmentID)
	}

	att, err := b.attachments.GetLatest(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if att == nil {
		return nil, notFound("attachment for appointment", appointmentID)
	}
	return att, nil
}

// AdminDelete удаляет запись вне жизненного цикла и освобождает её слот
func (b *Backend) AdminDelete(ctx context.Context, id int64) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	if !lifecycle.CanHardDelete(actor.Role) {
		return service.Reject(fmt.Errorf("role %s: %w", actor.Role, service.ErrForbidden))
	}

	err = base.InTx(ctx, b.pool, func(tx pgx.Tx) error {
		appointments := repository.NewAppointmentRepository(tx)

		a, err := appointments.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return notFound("appointment", id)
		}

		if a.SlotID != nil && !a.Status.IsTerminal() {
			if err := repository.NewSlotRepository(tx).SetBooked(ctx, *a.SlotID, false); err != nil {
				return err
			}
		}

		_, err = appointments.Delete(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	b.logger.Warn("Appointment hard deleted", zap.Int64("appointment_id", id), zap.Int64("admin_id", actor.UserID))
	return nil
}

// WithActor удобство для вызывающих без HTTP: кладёт пользователя в контекст
func WithActor(ctx context.Context, user *model.User) context.Context {
	return auth.WithActor(ctx, auth.Actor{UserID: user.ID, Role: user.Role})
}

package service

import (
	"context"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
)

// Collaborator авторитетная сторона: хранит слоты и записи и окончательно решает
// о переходах. Реализации - REST-клиент и backend поверх базы.
// Пользователь берётся из контекста или сессии реализации.
type Collaborator interface {
	ListSlots(ctx context.Context, q model.SlotQuery) ([]*model.AvailabilitySlot, error)
	FreeStartTimes(ctx context.Context, q schedule.StartTimeQuery) ([]model.Clock, error)
	CreateSlot(ctx context.Context, req model.SlotRequest) (*model.AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, id int64) error

	ListAppointments(ctx context.Context) ([]*model.Appointment, error)
	CreateAppointment(ctx context.Context, req model.AppointmentRequest) (*model.Appointment, error)
	Approve(ctx context.Context, id int64, message string) error
	Reject(ctx context.Context, id int64) error
	// StudentCancel отменяет ожидающую запись или просит отменить подтверждённую
	StudentCancel(ctx context.Context, id int64, reason string) error
	LecturerCancel(ctx context.Context, id int64) error
	ApproveCancelRequest(ctx context.Context, id int64) error
	RejectCancelRequest(ctx context.Context, id int64) error
	RecordResult(ctx context.Context, id int64, result model.ConsultationResult, note string) error
	UploadAttachment(ctx context.Context, att *model.Attachment) error
	DownloadAttachment(ctx context.Context, appointmentID int64) (*model.Attachment, error)
	AdminDelete(ctx context.Context, id int64) error
}

var (
	_ schedule.SlotCreator      = Collaborator(nil)
	_ schedule.FreeWindowSource = Collaborator(nil)
)

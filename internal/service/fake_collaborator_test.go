package service

import (
	"context"
	"sync"

	"github.com/Freeeeeet/consult_portal/internal/lifecycle"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
)

// fakeCollaborator хранит данные в памяти и применяет таблицу переходов как сервер
type fakeCollaborator struct {
	mu           sync.Mutex
	role         model.Role
	nextID       int64
	slots        []*model.AvailabilitySlot
	appointments []*model.Appointment
	free         []model.Clock

	failNext    error
	calls       map[string]int
	listedSlots int
}

func newFakeCollaborator(role model.Role) *fakeCollaborator {
	return &fakeCollaborator{role: role, nextID: 100, calls: make(map[string]int)}
}

func (f *fakeCollaborator) record(name string) error {
	f.calls[name]++
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	return nil
}

func (f *fakeCollaborator) find(id int64) *model.Appointment {
	for _, a := range f.appointments {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeCollaborator) apply(id int64, cmd lifecycle.Command) error {
	a := f.find(id)
	if a == nil {
		return Reject(ErrNotFound)
	}
	cmd.Role = f.role
	if _, err := lifecycle.Apply(a, cmd); err != nil {
		return Reject(err)
	}
	return nil
}

func (f *fakeCollaborator) ListSlots(ctx context.Context, q model.SlotQuery) ([]*model.AvailabilitySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listedSlots++
	out := make([]*model.AvailabilitySlot, len(f.slots))
	for i, s := range f.slots {
		copied := *s
		out[i] = &copied
	}
	return out, nil
}

func (f *fakeCollaborator) FreeStartTimes(ctx context.Context, q schedule.StartTimeQuery) ([]model.Clock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("FreeStartTimes"); err != nil {
		return nil, err
	}
	return f.free, nil
}

func (f *fakeCollaborator) CreateSlot(ctx context.Context, req model.SlotRequest) (*model.AvailabilitySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateSlot"); err != nil {
		return nil, err
	}
	f.nextID++
	slot := &model.AvailabilitySlot{ID: f.nextID, LecturerID: 1, Date: req.Date, StartTime: req.StartTime, EndTime: req.EndTime}
	f.slots = append(f.slots, slot)
	return slot, nil
}

func (f *fakeCollaborator) DeleteSlot(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteSlot"); err != nil {
		return err
	}
	for i, s := range f.slots {
		if s.ID == id {
			f.slots = append(f.slots[:i], f.slots[i+1:]...)
			return nil
		}
	}
	return Reject(ErrNotFound)
}

func (f *fakeCollaborator) ListAppointments(ctx context.Context) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Appointment, len(f.appointments))
	for i, a := range f.appointments {
		copied := *a
		out[i] = &copied
	}
	return out, nil
}

func (f *fakeCollaborator) CreateAppointment(ctx context.Context, req model.AppointmentRequest) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateAppointment"); err != nil {
		return nil, err
	}
	f.nextID++
	a := &model.Appointment{
		ID:               f.nextID,
		StudentID:        7,
		LecturerID:       req.LecturerID,
		Date:             req.Date,
		StartTime:        req.Time,
		EndTime:          req.Time.Add(req.Duration),
		ConsultationType: req.ConsultationType,
		Reason:           req.Reason,
		Status:           model.StatusPending,
	}
	f.appointments = append(f.appointments, a)
	return a, nil
}

func (f *fakeCollaborator) transition(name string, id int64, cmd lifecycle.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(name); err != nil {
		return err
	}
	return f.apply(id, cmd)
}

func (f *fakeCollaborator) Approve(ctx context.Context, id int64, message string) error {
	return f.transition("Approve", id, lifecycle.Command{Action: lifecycle.ActionApprove, Message: message})
}

func (f *fakeCollaborator) Reject(ctx context.Context, id int64) error {
	return f.transition("Reject", id, lifecycle.Command{Action: lifecycle.ActionReject})
}

func (f *fakeCollaborator) StudentCancel(ctx context.Context, id int64, reason string) error {
	f.mu.Lock()
	action := lifecycle.ActionCancel
	if a := f.find(id); a != nil && a.Status == model.StatusApproved {
		action = lifecycle.ActionRequestCancel
	}
	f.mu.Unlock()
	return f.transition("StudentCancel", id, lifecycle.Command{Action: action, CancelReason: reason})
}

func (f *fakeCollaborator) LecturerCancel(ctx context.Context, id int64) error {
	return f.transition("LecturerCancel", id, lifecycle.Command{Action: lifecycle.ActionLecturerCancel})
}

func (f *fakeCollaborator) ApproveCancelRequest(ctx context.Context, id int64) error {
	return f.transition("ApproveCancelRequest", id, lifecycle.Command{Action: lifecycle.ActionApproveCancel})
}

func (f *fakeCollaborator) RejectCancelRequest(ctx context.Context, id int64) error {
	return f.transition("RejectCancelRequest", id, lifecycle.Command{Action: lifecycle.ActionDenyCancel})
}

func (f *fakeCollaborator) RecordResult(ctx context.Context, id int64, result model.ConsultationResult, note string) error {
	return f.transition("RecordResult", id, lifecycle.Command{Action: lifecycle.ActionComplete, Result: result, Note: note})
}

func (f *fakeCollaborator) UploadAttachment(ctx context.Context, att *model.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UploadAttachment"); err != nil {
		return err
	}
	if a := f.find(att.AppointmentID); a != nil {
		a.Attachments = append(a.Attachments, att.Filename)
		return nil
	}
	return Reject(ErrNotFound)
}

func (f *fakeCollaborator) DownloadAttachment(ctx context.Context, appointmentID int64) (*model.Attachment, error) {
	return nil, Reject(ErrNotFound)
}

func (f *fakeCollaborator) AdminDelete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AdminDelete"); err != nil {
		return err
	}
	for i, a := range f.appointments {
		if a.ID == id {
			f.appointments = append(f.appointments[:i], f.appointments[i+1:]...)
			return nil
		}
	}
	return Reject(ErrNotFound)
}

func (f *fakeCollaborator) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func lecturerPtr(id int64) *int64 {
	return &id
}

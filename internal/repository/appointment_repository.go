package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/repository/base"
)

type AppointmentRepository struct {
	*base.Repository
}

func NewAppointmentRepository(db base.Querier) *AppointmentRepository {
	return &AppointmentRepository{Repository: base.NewRepository(db)}
}

// Имена и коды участников подтягиваются join'ом, имена вложений - подзапросом
const appointmentSelect = `
	SELECT a.id, a.student_id, a.lecturer_id, a.slot_id,
	       to_char(a.date, 'YYYY-MM-DD'), to_char(a.start_time, 'HH24:MI'), to_char(a.end_time, 'HH24:MI'),
	       a.consultation_type, a.reason, a.status,
	       a.feedback_note, a.cancel_reason, a.consultation_result, a.result_note,
	       a.created_at, a.updated_at,
	       trim(s.first_name || ' ' || s.last_name), s.code,
	       coalesce(trim(l.first_name || ' ' || l.last_name), ''), coalesce(l.code, ''),
	       coalesce((SELECT array_agg(t.filename ORDER BY t.id) FROM attachments t WHERE t.appointment_id = a.id), '{}')
	FROM appointments a
	JOIN users s ON s.id = a.student_id
	LEFT JOIN users l ON l.id = a.lecturer_id
`

func scanAppointment(row interface{ Scan(dest ...any) error }) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID,
		&a.StudentID,
		&a.LecturerID,
		&a.SlotID,
		&a.Date,
		&a.StartTime,
		&a.EndTime,
		&a.ConsultationType,
		&a.Reason,
		&a.Status,
		&a.FeedbackNote,
		&a.CancelReason,
		&a.ConsultationResult,
		&a.ResultNote,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.StudentName,
		&a.StudentCode,
		&a.LecturerName,
		&a.LecturerCode,
		&a.Attachments,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create создаёт новую запись
func (r *AppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (student_id, lecturer_id, slot_id, date, start_time, end_time,
		                          consultation_type, reason, status)
		VALUES ($1, $2, $3, $4::text::date, $5::text::time, $6::text::time, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		a.StudentID,
		a.LecturerID,
		a.SlotID,
		a.Date,
		a.StartTime.String(),
		a.EndTime.String(),
		a.ConsultationType,
		a.Reason,
		a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

// GetByID получает запись по ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := scanAppointment(r.DB().QueryRow(ctx, appointmentSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return a, nil
}

// GetByIDForUpdate как GetByID, но блокирует строку до конца транзакции
func (r *AppointmentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := scanAppointment(r.DB().QueryRow(ctx, appointmentSelect+` WHERE a.id = $1 FOR UPDATE OF a`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock appointment: %w", err)
	}

	return a, nil
}

// ListByStudent записи студента, новые сверху
func (r *AppointmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.Appointment, error) {
	return r.list(ctx, appointmentSelect+` WHERE a.student_id = $1 ORDER BY a.date DESC, a.start_time DESC`, studentID)
}

// ListByLecturer записи преподавателя и общая очередь без назначенного преподавателя
func (r *AppointmentRepository) ListByLecturer(ctx context.Context, lecturerID int64) ([]*model.Appointment, error) {
	return r.list(ctx, appointmentSelect+`
		WHERE a.lecturer_id = $1 OR (a.lecturer_id IS NULL AND a.status = 'PENDING')
		ORDER BY a.date DESC, a.start_time DESC`, lecturerID)
}

// ListAll все записи, для сотрудников и администратора
func (r *AppointmentRepository) ListAll(ctx context.Context) ([]*model.Appointment, error) {
	return r.list(ctx, appointmentSelect+` ORDER BY a.date DESC, a.start_time DESC`)
}

// ListActiveOnDate действующие записи преподавателя на дату (не отменённые и не отклонённые)
func (r *AppointmentRepository) ListActiveOnDate(ctx context.Context, lecturerID int64, date string) ([]*model.Appointment, error) {
	return r.list(ctx, appointmentSelect+`
		WHERE a.lecturer_id = $1
		  AND a.date = $2::text::date
		  AND a.status NOT IN ('CANCELED', 'REJECTED')
		ORDER BY a.start_time`, lecturerID, date)
}

// Update сохраняет состояние записи после перехода
func (r *AppointmentRepository) Update(ctx context.Context, a *model.Appointment) error {
	query := `
		UPDATE appointments
		SET lecturer_id = $1, slot_id = $2, status = $3,
		    feedback_note = $4, cancel_reason = $5, consultation_result = $6, result_note = $7,
		    updated_at = now()
		WHERE id = $8
		RETURNING updated_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		a.LecturerID,
		a.SlotID,
		a.Status,
		a.FeedbackNote,
		a.CancelReason,
		a.ConsultationResult,
		a.ResultNote,
		a.ID,
	).Scan(&a.UpdatedAt)

	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}

	return nil
}

// Delete удаляет запись вместе с вложениями
func (r *AppointmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete appointment: %w", err)
	}

	return affected > 0, nil
}

func (r *AppointmentRepository) list(ctx context.Context, query string, args ...any) ([]*model.Appointment, error) {
	rows, err := r.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}

	return appointments, rows.Err()
}

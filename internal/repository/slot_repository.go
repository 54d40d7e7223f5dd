package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/repository/base"
)

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(db base.Querier) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(db)}
}

const slotColumns = `id, lecturer_id, to_char(date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), booked, created_at`

func scanSlot(row interface{ Scan(dest ...any) error }) (*model.AvailabilitySlot, error) {
	var slot model.AvailabilitySlot
	err := row.Scan(
		&slot.ID,
		&slot.LecturerID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Booked,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	query := `
		INSERT INTO availability_slots (lecturer_id, date, start_time, end_time, booked)
		VALUES ($1, $2::text::date, $3::text::time, $4::text::time, $5)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		slot.LecturerID,
		slot.Date,
		slot.StartTime.String(),
		slot.EndTime.String(),
		slot.Booked,
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE id = $1`

	slot, err := scanSlot(r.DB().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// ListByLecturer слоты преподавателя в диапазоне дат. Пустая граница - без ограничения
func (r *SlotRepository) ListByLecturer(ctx context.Context, lecturerID int64, from, to string) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE lecturer_id = $1
		  AND ($2 = '' OR date >= $2::text::date)
		  AND ($3 = '' OR date <= $3::text::date)
		ORDER BY date, start_time
	`
	return r.list(ctx, query, lecturerID, from, to)
}

// ListOnDate слоты преподавателя на дату
func (r *SlotRepository) ListOnDate(ctx context.Context, lecturerID int64, date string) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE lecturer_id = $1 AND date = $2::text::date
		ORDER BY start_time
	`
	return r.list(ctx, query, lecturerID, date)
}

// ListFreeOnDate свободные слоты преподавателя на дату
func (r *SlotRepository) ListFreeOnDate(ctx context.Context, lecturerID int64, date string) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE NOT booked
		  AND date = $1::text::date
		  AND lecturer_id = $2
		ORDER BY start_time
	`
	return r.list(ctx, query, date, lecturerID)
}

// SetBooked помечает слот занятым или свободным.
// Занять можно только свободный слот
func (r *SlotRepository) SetBooked(ctx context.Context, slotID int64, booked bool) error {
	query := `
		UPDATE availability_slots
		SET booked = $1
		WHERE id = $2 AND (NOT $1 OR NOT booked)
	`

	affected, err := r.ExecAffected(ctx, query, booked, slotID)
	if err != nil {
		return fmt.Errorf("set slot booked: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("slot %d not found or already booked", slotID)
	}

	return nil
}

// DeleteFree удаляет слот, если он не занят. Возвращает false если удалять нечего
func (r *SlotRepository) DeleteFree(ctx context.Context, slotID, lecturerID int64) (bool, error) {
	query := `DELETE FROM availability_slots WHERE id = $1 AND lecturer_id = $2 AND NOT booked`

	affected, err := r.ExecAffected(ctx, query, slotID, lecturerID)
	if err != nil {
		return false, fmt.Errorf("delete slot: %w", err)
	}

	return affected > 0, nil
}

func (r *SlotRepository) list(ctx context.Context, query string, args ...any) ([]*model.AvailabilitySlot, error) {
	rows, err := r.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.AvailabilitySlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

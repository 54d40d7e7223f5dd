// Package schedule содержит чистую логику расписания: пересечение интервалов,
// допустимое время начала консультации и пакетную генерацию приёмных часов.
package schedule

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/consult_portal/internal/model"
)

var (
	ErrInvalidInterval = errors.New("start time must be before end time within one day")
	ErrConflict        = errors.New("time range overlaps an existing one")
)

// Interval полуоткрытый интервал [Start, End) внутри одного дня
type Interval struct {
	Start model.Clock
	End   model.Clock
}

// Valid начало раньше конца, оба внутри суток
func (i Interval) Valid() bool {
	return i.Start.InDay() && i.End.InDay() && i.Start < i.End
}

func (i Interval) Minutes() int {
	return int(i.End - i.Start)
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

// Contains проверяет что other целиком лежит внутри i
func (i Interval) Contains(other Interval) bool {
	return i.Start <= other.Start && other.End <= i.End
}

// Overlaps симметричный предикат пересечения
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Entry занятый интервал преподавателя на дату
type Entry struct {
	ID         int64
	LecturerID *int64
	Date       string
	Interval   Interval
	Active     bool
}

// ConflictError описывает найденное пересечение
type ConflictError struct {
	Candidate Interval
	Existing  Entry
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s overlaps %s on %s", e.Candidate, e.Existing.Interval, e.Existing.Date)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// ValidateInterval отделяет ошибку start >= end или выход за сутки от конфликта
func ValidateInterval(i Interval) error {
	if !i.Valid() {
		return fmt.Errorf("%s: %w", i, ErrInvalidInterval)
	}
	return nil
}

// CheckConflict сверяет кандидата со всеми активными интервалами того же преподавателя и даты.
// Интервалы без преподавателя (автоназначение) ключом конфликта не являются.
func CheckConflict(candidate Entry, existing []Entry) error {
	if err := ValidateInterval(candidate.Interval); err != nil {
		return err
	}

	if candidate.LecturerID == nil {
		return nil
	}

	for _, e := range existing {
		if !e.Active || e.LecturerID == nil {
			continue
		}
		if *e.LecturerID != *candidate.LecturerID || e.Date != candidate.Date {
			continue
		}
		if candidate.ID != 0 && e.ID == candidate.ID {
			continue
		}
		if Overlaps(candidate.Interval, e.Interval) {
			return &ConflictError{Candidate: candidate.Interval, Existing: e}
		}
	}

	return nil
}

// SlotEntries переводит слоты в интервалы для проверки конфликтов
func SlotEntries(slots []*model.AvailabilitySlot) []Entry {
	entries := make([]Entry, 0, len(slots))
	for _, s := range slots {
		lecturerID := s.LecturerID
		entries = append(entries, Entry{
			ID:         s.ID,
			LecturerID: &lecturerID,
			Date:       s.Date,
			Interval:   Interval{Start: s.StartTime, End: s.EndTime},
			Active:     true,
		})
	}
	return entries
}

// AppointmentEntries переводит записи в интервалы; отменённые и отклонённые неактивны
func AppointmentEntries(appointments []*model.Appointment) []Entry {
	entries := make([]Entry, 0, len(appointments))
	for _, a := range appointments {
		entries = append(entries, Entry{
			ID:         a.ID,
			LecturerID: a.LecturerID,
			Date:       a.Date,
			Interval:   Interval{Start: a.StartTime, End: a.EndTime},
			Active:     a.Status.IsActive(),
		})
	}
	return entries
}

// SlotEntry интервал нового слота
func SlotEntry(lecturerID int64, req model.SlotRequest) Entry {
	return Entry{
		LecturerID: &lecturerID,
		Date:       req.Date,
		Interval:   Interval{Start: req.StartTime, End: req.EndTime},
		Active:     true,
	}
}

// AppointmentEntry интервал новой записи
func AppointmentEntry(req model.AppointmentRequest) Entry {
	return Entry{
		LecturerID: req.LecturerID,
		Date:       req.Date,
		Interval:   Interval{Start: req.Time, End: req.Time.Add(req.Duration)},
		Active:     true,
	}
}

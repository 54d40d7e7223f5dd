// Package filter собирает предикаты списков записей в одну конъюнкцию
package filter

import (
	"strings"

	"github.com/Freeeeeet/consult_portal/internal/model"
)

// Criteria пустое поле не ограничивает выборку
type Criteria struct {
	SearchTerm string                    `json:"search_term"`
	Statuses   []model.AppointmentStatus `json:"statuses"`
	Date       string                    `json:"date"` // точная дата YYYY-MM-DD
	From       string                    `json:"from"` // диапазон включительно
	To         string                    `json:"to"`
}

// Predicate условие над записью
type Predicate func(a *model.Appointment) bool

// Search подстрока без учёта регистра по именам и кодам
func Search(term string) Predicate {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil
	}
	return func(a *model.Appointment) bool {
		for _, field := range []string{a.StudentName, a.StudentCode, a.LecturerName, a.LecturerCode} {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	}
}

// StatusIn принадлежность множеству статусов
func StatusIn(statuses []model.AppointmentStatus) Predicate {
	if len(statuses) == 0 {
		return nil
	}
	set := make(map[model.AppointmentStatus]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return func(a *model.Appointment) bool {
		_, ok := set[a.Status]
		return ok
	}
}

// OnDate точное совпадение даты
func OnDate(date string) Predicate {
	if date == "" {
		return nil
	}
	return func(a *model.Appointment) bool {
		return a.Date == date
	}
}

// Between даты в формате YYYY-MM-DD сравниваются лексикографически
func Between(from, to string) Predicate {
	if from == "" && to == "" {
		return nil
	}
	return func(a *model.Appointment) bool {
		if from != "" && a.Date < from {
			return false
		}
		if to != "" && a.Date > to {
			return false
		}
		return true
	}
}

// And конъюнкция; nil-предикаты пропускаются
func And(preds ...Predicate) Predicate {
	var active []Predicate
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	return func(a *model.Appointment) bool {
		for _, p := range active {
			if !p(a) {
				return false
			}
		}
		return true
	}
}

// Predicate собирает условие из критериев
func (c Criteria) Predicate() Predicate {
	return And(
		Search(c.SearchTerm),
		StatusIn(c.Statuses),
		OnDate(c.Date),
		Between(c.From, c.To),
	)
}

// Apply возвращает новый срез в исходном порядке, исходный не меняется
func Apply(items []*model.Appointment, c Criteria) []*model.Appointment {
	match := c.Predicate()
	out := make([]*model.Appointment, 0, len(items))
	for _, a := range items {
		if match(a) {
			out = append(out, a)
		}
	}
	return out
}

package schedule

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/model"
)

// Стандартные часы приёма
var (
	DayStart   = model.NewClock(7, 0)
	DayEnd     = model.NewClock(17, 0)
	LunchBreak = Interval{Start: model.NewClock(11, 30), End: model.NewClock(13, 30)}
)

// GridStep шаг сетки времени начала, минуты
const GridStep = 15

var ErrInvalidQuery = errors.New("invalid start time query")

// StartTimeQuery запрос допустимого времени начала
type StartTimeQuery struct {
	LecturerID *int64
	Date       string
	Duration   int // минуты
}

func (q StartTimeQuery) Validate() error {
	if _, err := time.Parse(model.DateLayout, q.Date); err != nil {
		return fmt.Errorf("%w: date %q", ErrInvalidQuery, q.Date)
	}
	if q.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidQuery)
	}
	return nil
}

// FreeWindowSource внешний источник свободного времени преподавателя
type FreeWindowSource interface {
	FreeStartTimes(ctx context.Context, q StartTimeQuery) ([]model.Clock, error)
}

// StartTimes кандидаты для записи.
// Queued = true: подтверждённого слота нет, запись уйдёт на ручное распределение.
type StartTimes struct {
	Times  []model.Clock `json:"times"`
	Queued bool          `json:"queued"`
}

// Resolver вычисляет время начала с откатом на стандартную сетку
type Resolver struct {
	source FreeWindowSource
}

func NewResolver(source FreeWindowSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve никогда не блокирует запись из-за нехватки мест: при пустом ответе
// возвращается стандартная сетка с пометкой Queued
func (r *Resolver) Resolve(ctx context.Context, q StartTimeQuery) (*StartTimes, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	times, err := r.source.FreeStartTimes(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query free start times: %w", err)
	}

	if len(times) > 0 {
		return &StartTimes{Times: normalize(times), Queued: false}, nil
	}

	return &StartTimes{Times: StandardGrid(q.Duration), Queued: true}, nil
}

// StandardGrid времена начала 07:00-17:00 с шагом 15 минут без обеденного перерыва.
// Консультация должна закончиться до конца дня и не задевать перерыв.
func StandardGrid(duration int) []model.Clock {
	var grid []model.Clock
	for start := DayStart; start.Add(duration) <= DayEnd; start = start.Add(GridStep) {
		if Overlaps(Interval{Start: start, End: start.Add(duration)}, LunchBreak) {
			continue
		}
		grid = append(grid, start)
	}
	return grid
}

func normalize(times []model.Clock) []model.Clock {
	out := slices.Clone(times)
	slices.Sort(out)
	return slices.Compact(out)
}

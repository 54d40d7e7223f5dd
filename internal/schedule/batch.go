package schedule

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Фиксированные окна приёмных часов
var (
	MorningWindow   = Interval{Start: model.NewClock(7, 0), End: model.NewClock(11, 30)}
	AfternoonWindow = Interval{Start: model.NewClock(13, 30), End: model.NewClock(17, 30)}
)

const (
	// MaxBatchDays ограничение длины диапазона одной пачки
	MaxBatchDays = 366

	defaultBatchConcurrency = 4
)

var (
	ErrInvalidRange  = errors.New("invalid date range")
	ErrNoWindows     = errors.New("at least one of morning or afternoon must be selected")
	ErrBatchTooLarge = errors.New("date range is too long for one batch")
)

// SlotCreator удалённая операция создания слота
type SlotCreator interface {
	CreateSlot(ctx context.Context, req model.SlotRequest) (*model.AvailabilitySlot, error)
}

type BatchFlags struct {
	Morning   bool `json:"morning"`
	Afternoon bool `json:"afternoon"`
}

// BatchRequest диапазон [From, To] включительно.
// Existing - уже известные интервалы преподавателя для локальной проверки.
type BatchRequest struct {
	LecturerID int64
	From       string
	To         string
	Flags      BatchFlags
	Existing   []Entry
}

// BatchResult итог пачки. Частичный отказ - нормальный исход, а не ошибка.
type BatchResult struct {
	BatchID   uuid.UUID                 `json:"batch_id"`
	Attempted int                       `json:"attempted"`
	Succeeded int                       `json:"succeeded"`
	Created   []*model.AvailabilitySlot `json:"-"`
	ItemErrs  error                     `json:"-"` // ошибки отдельных элементов, см. multierr.Errors
}

func (r *BatchResult) Failed() int {
	return r.Attempted - r.Succeeded
}

// BatchGenerator рассылает операции создания слотов параллельно и независимо
type BatchGenerator struct {
	creator     SlotCreator
	concurrency int
}

func NewBatchGenerator(creator SlotCreator, concurrency int) *BatchGenerator {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	return &BatchGenerator{creator: creator, concurrency: concurrency}
}

// Plan раскладывает диапазон на операции: до двух на каждый календарный день
func Plan(from, to string, flags BatchFlags) ([]model.SlotRequest, error) {
	if !flags.Morning && !flags.Afternoon {
		return nil, ErrNoWindows
	}

	fromDate, err := time.Parse(model.DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("%w: from %q", ErrInvalidRange, from)
	}
	toDate, err := time.Parse(model.DateLayout, to)
	if err != nil {
		return nil, fmt.Errorf("%w: to %q", ErrInvalidRange, to)
	}
	if toDate.Before(fromDate) {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, from, to)
	}
	if toDate.Sub(fromDate) >= MaxBatchDays*24*time.Hour {
		return nil, ErrBatchTooLarge
	}

	days, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: fromDate,
		Until:   toDate,
	})
	if err != nil {
		return nil, fmt.Errorf("build day rule: %w", err)
	}

	var plan []model.SlotRequest
	for _, day := range days.All() {
		date := day.Format(model.DateLayout)
		if flags.Morning {
			plan = append(plan, model.SlotRequest{Date: date, StartTime: MorningWindow.Start, EndTime: MorningWindow.End})
		}
		if flags.Afternoon {
			plan = append(plan, model.SlotRequest{Date: date, StartTime: AfternoonWindow.Start, EndTime: AfternoonWindow.End})
		}
	}

	return plan, nil
}

// Generate выполняет пачку. Ошибка возвращается только для неверного запроса;
// отказы отдельных элементов попадают в счётчики и ItemErrs, успешные не откатываются.
// Created упорядочен по дате и времени начала.
func (g *BatchGenerator) Generate(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	plan, err := Plan(req.From, req.To, req.Flags)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		BatchID:   uuid.New(),
		Attempted: len(plan),
	}

	var (
		mu    sync.Mutex
		group errgroup.Group
	)
	group.SetLimit(g.concurrency)

	for _, item := range plan {
		group.Go(func() error {
			slot, err := g.createOne(ctx, req, item)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.ItemErrs = multierr.Append(result.ItemErrs,
					fmt.Errorf("%s %s: %w", item.Date, Interval{Start: item.StartTime, End: item.EndTime}, err))
				return nil
			}
			result.Succeeded++
			result.Created = append(result.Created, slot)
			return nil
		})
	}

	_ = group.Wait()

	slices.SortFunc(result.Created, func(a, b *model.AvailabilitySlot) int {
		return cmp.Or(strings.Compare(a.Date, b.Date), cmp.Compare(a.StartTime, b.StartTime))
	})

	return result, nil
}

func (g *BatchGenerator) createOne(ctx context.Context, req BatchRequest, item model.SlotRequest) (*model.AvailabilitySlot, error) {
	if req.LecturerID != 0 {
		if err := CheckConflict(SlotEntry(req.LecturerID, item), req.Existing); err != nil {
			return nil, err
		}
	}
	return g.creator.CreateSlot(ctx, item)
}

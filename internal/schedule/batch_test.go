package schedule

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

var errDuplicateDay = errors.New("day already registered")

type recordingCreator struct {
	mu     sync.Mutex
	calls  []model.SlotRequest
	failOn func(model.SlotRequest) bool
	nextID atomic.Int64
}

func (c *recordingCreator) CreateSlot(_ context.Context, req model.SlotRequest) (*model.AvailabilitySlot, error) {
	c.mu.Lock()
	c.calls = append(c.calls, req)
	c.mu.Unlock()

	if c.failOn != nil && c.failOn(req) {
		return nil, errDuplicateDay
	}
	return &model.AvailabilitySlot{
		ID:        c.nextID.Add(1),
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}, nil
}

func TestPlan_ThreeDaysBothWindows(t *testing.T) {
	plan, err := Plan("2025-01-01", "2025-01-03", BatchFlags{Morning: true, Afternoon: true})

	require.NoError(t, err)
	require.Len(t, plan, 6)
	assert.Equal(t, "2025-01-01", plan[0].Date)
	assert.Equal(t, MorningWindow.Start, plan[0].StartTime)
	assert.Equal(t, MorningWindow.End, plan[0].EndTime)
	assert.Equal(t, AfternoonWindow.Start, plan[1].StartTime)
	assert.Equal(t, AfternoonWindow.End, plan[1].EndTime)
	assert.Equal(t, "2025-01-03", plan[5].Date)
}

func TestPlan_SingleWindowAndSingleDay(t *testing.T) {
	plan, err := Plan("2025-02-28", "2025-03-01", BatchFlags{Afternoon: true})

	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "2025-02-28", plan[0].Date)
	assert.Equal(t, "2025-03-01", plan[1].Date)

	plan, err = Plan("2025-02-28", "2025-02-28", BatchFlags{Morning: true})
	require.NoError(t, err)
	assert.Len(t, plan, 1)
}

func TestPlan_RejectsBadInput(t *testing.T) {
	_, err := Plan("2025-01-03", "2025-01-01", BatchFlags{Morning: true})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Plan("2025-01-01", "2025-01-03", BatchFlags{})
	assert.ErrorIs(t, err, ErrNoWindows)

	_, err = Plan("2025-01-01", "2027-01-01", BatchFlags{Morning: true})
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestGenerate_AllSucceed(t *testing.T) {
	creator := &recordingCreator{}
	g := NewBatchGenerator(creator, 2)

	result, err := g.Generate(context.Background(), BatchRequest{
		From:  "2025-01-01",
		To:    "2025-01-03",
		Flags: BatchFlags{Morning: true, Afternoon: true},
	})

	require.NoError(t, err)
	assert.Equal(t, 6, result.Attempted)
	assert.Equal(t, 6, result.Succeeded)
	assert.Len(t, result.Created, 6)
	assert.NoError(t, result.ItemErrs)
	assert.Len(t, creator.calls, 6)
}

func TestGenerate_CreatedInCalendarOrder(t *testing.T) {
	creator := &recordingCreator{}
	g := NewBatchGenerator(creator, 8)

	result, err := g.Generate(context.Background(), BatchRequest{
		From:  "2025-01-30",
		To:    "2025-02-02",
		Flags: BatchFlags{Morning: true, Afternoon: true},
	})

	require.NoError(t, err)
	require.Len(t, result.Created, 8)
	assert.Equal(t, "2025-01-30", result.Created[0].Date)
	assert.Equal(t, MorningWindow.Start, result.Created[0].StartTime)
	assert.Equal(t, AfternoonWindow.Start, result.Created[1].StartTime)
	assert.Equal(t, "2025-02-02", result.Created[7].Date)
	assert.True(t, slices.IsSortedFunc(result.Created, func(a, b *model.AvailabilitySlot) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return int(a.StartTime - b.StartTime)
	}))
}

func TestGenerate_PartialRemoteFailureIsTallied(t *testing.T) {
	creator := &recordingCreator{failOn: func(req model.SlotRequest) bool {
		return req.Date == "2025-01-02" && req.StartTime == MorningWindow.Start
	}}
	g := NewBatchGenerator(creator, 4)

	result, err := g.Generate(context.Background(), BatchRequest{
		From:  "2025-01-01",
		To:    "2025-01-03",
		Flags: BatchFlags{Morning: true, Afternoon: true},
	})

	require.NoError(t, err)
	assert.Equal(t, 6, result.Attempted)
	assert.Equal(t, 5, result.Succeeded)
	assert.Equal(t, 1, result.Failed())
	require.Len(t, multierr.Errors(result.ItemErrs), 1)
	assert.ErrorIs(t, result.ItemErrs, errDuplicateDay)
}

func TestGenerate_LocalConflictSkipsRemoteCall(t *testing.T) {
	creator := &recordingCreator{}
	g := NewBatchGenerator(creator, 1)
	l := lecturer(5)

	result, err := g.Generate(context.Background(), BatchRequest{
		LecturerID: 5,
		From:       "2025-01-01",
		To:         "2025-01-03",
		Flags:      BatchFlags{Morning: true, Afternoon: true},
		Existing: []Entry{
			{ID: 99, LecturerID: l, Date: "2025-01-02", Interval: iv("08:00", "09:00"), Active: true},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 6, result.Attempted)
	assert.Equal(t, 5, result.Succeeded)
	assert.ErrorIs(t, result.ItemErrs, ErrConflict)
	assert.Len(t, creator.calls, 5)
}

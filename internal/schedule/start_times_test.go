package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	times []model.Clock
	err   error
	got   StartTimeQuery
}

func (s *stubSource) FreeStartTimes(_ context.Context, q StartTimeQuery) ([]model.Clock, error) {
	s.got = q
	return s.times, s.err
}

func TestResolver_FallsBackToStandardGrid(t *testing.T) {
	source := &stubSource{}
	r := NewResolver(source)

	result, err := r.Resolve(context.Background(), StartTimeQuery{Date: "2025-03-01", Duration: 30})

	require.NoError(t, err)
	assert.True(t, result.Queued)
	assert.Equal(t, StandardGrid(30), result.Times)
	assert.Nil(t, source.got.LecturerID)
}

func TestResolver_UsesCollaboratorWindows(t *testing.T) {
	source := &stubSource{times: []model.Clock{model.MustClock("09:30"), model.MustClock("09:00"), model.MustClock("09:30")}}
	r := NewResolver(source)

	result, err := r.Resolve(context.Background(), StartTimeQuery{LecturerID: lecturer(3), Date: "2025-03-01", Duration: 30})

	require.NoError(t, err)
	assert.False(t, result.Queued)
	assert.Equal(t, []model.Clock{model.MustClock("09:00"), model.MustClock("09:30")}, result.Times)
}

func TestResolver_PropagatesTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewResolver(&stubSource{err: boom})

	_, err := r.Resolve(context.Background(), StartTimeQuery{Date: "2025-03-01", Duration: 30})

	assert.ErrorIs(t, err, boom)
}

func TestResolver_RejectsBadQuery(t *testing.T) {
	r := NewResolver(&stubSource{})

	_, err := r.Resolve(context.Background(), StartTimeQuery{Date: "01.03.2025", Duration: 30})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = r.Resolve(context.Background(), StartTimeQuery{Date: "2025-03-01", Duration: 0})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestStandardGrid(t *testing.T) {
	grid := StandardGrid(15)

	assert.Equal(t, model.MustClock("07:00"), grid[0])
	assert.Equal(t, model.MustClock("16:45"), grid[len(grid)-1])
	assert.Contains(t, grid, model.MustClock("11:15"))
	assert.NotContains(t, grid, model.MustClock("11:30"))
	assert.NotContains(t, grid, model.MustClock("13:15"))
	assert.Contains(t, grid, model.MustClock("13:30"))

	for i := 1; i < len(grid); i++ {
		assert.Zero(t, int(grid[i]-grid[0])%GridStep)
	}
}

func TestStandardGrid_DurationDoesNotCrossLunchOrEndOfDay(t *testing.T) {
	grid := StandardGrid(60)

	assert.Contains(t, grid, model.MustClock("10:30"))
	assert.NotContains(t, grid, model.MustClock("10:45"))
	assert.Equal(t, model.MustClock("16:00"), grid[len(grid)-1])
}

func TestFreeStartTimes(t *testing.T) {
	slots := []*model.AvailabilitySlot{
		{ID: 1, Date: "2025-03-01", StartTime: model.MustClock("08:00"), EndTime: model.MustClock("09:00")},
		{ID: 2, Date: "2025-03-01", StartTime: model.MustClock("10:00"), EndTime: model.MustClock("11:00"), Booked: true},
	}
	busy := []Interval{iv("08:15", "08:30")}

	times := FreeStartTimes(slots, busy, 15, GridStep)

	assert.Equal(t, []model.Clock{model.MustClock("08:00"), model.MustClock("08:30"), model.MustClock("08:45")}, times)
}

func TestContainingSlot(t *testing.T) {
	slots := []*model.AvailabilitySlot{
		{ID: 1, StartTime: model.MustClock("08:00"), EndTime: model.MustClock("09:00"), Booked: true},
		{ID: 2, StartTime: model.MustClock("08:00"), EndTime: model.MustClock("10:00")},
	}

	found := ContainingSlot(slots, iv("08:30", "09:30"))
	require.NotNil(t, found)
	assert.Equal(t, int64(2), found.ID)

	assert.Nil(t, ContainingSlot(slots, iv("09:30", "10:30")))
}

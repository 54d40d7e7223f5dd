package render

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekPNG(t *testing.T) {
	week := Week{
		Start: time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
		Now:   time.Date(2026, 10, 14, 10, 15, 0, 0, time.UTC),
		Slots: []*model.AvailabilitySlot{
			{ID: 1, Date: "2026-10-12", StartTime: model.NewClock(7, 0), EndTime: model.NewClock(11, 30)},
		},
		Appointments: []*model.Appointment{
			{ID: 1, Date: "2026-10-14", StartTime: model.NewClock(9, 0), EndTime: model.NewClock(9, 30),
				Status: model.StatusApproved, StudentName: "Анна Иванова"},
			{ID: 2, Date: "2026-10-15", StartTime: model.NewClock(13, 30), EndTime: model.NewClock(14, 0),
				Status: model.StatusCanceled},
		},
	}

	data, err := WeekPNG(week)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())
}

func TestWeekStartIsMonday(t *testing.T) {
	sunday := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-12", weekStart(sunday).Format(model.DateLayout))

	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-12", weekStart(monday).Format(model.DateLayout))
}

func TestHourSpan(t *testing.T) {
	assert.Equal(t, hourRange{first: 6, last: 18}, hourSpan(nil))

	days := map[string][]block{
		"2026-10-12": {{start: model.NewClock(9, 0), end: model.NewClock(10, 15)}},
	}
	assert.Equal(t, hourRange{first: 8, last: 12}, hourSpan(days))
}

func TestGroupByDaySkipsBookedSlotsAndInactive(t *testing.T) {
	week := Week{
		Slots: []*model.AvailabilitySlot{
			{Date: "2026-10-12", StartTime: model.NewClock(7, 0), EndTime: model.NewClock(8, 0), Booked: true},
		},
		Appointments: []*model.Appointment{
			{Date: "2026-10-12", StartTime: model.NewClock(7, 0), EndTime: model.NewClock(7, 30), Status: model.StatusRejected},
			{Date: "2026-10-12", StartTime: model.NewClock(8, 0), EndTime: model.NewClock(8, 30), Status: model.StatusPending},
		},
	}

	days := groupByDay(week)
	require.Len(t, days["2026-10-12"], 1)
	assert.Equal(t, pendingColor, days["2026-10-12"][0].fill)
}

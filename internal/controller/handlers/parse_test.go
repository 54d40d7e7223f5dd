package handlers

import (
	"testing"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/controller/state"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-10-20", "2026-10-20"},
		{"20.10.2026", "2026-10-20"},
		{"20.10", "2026-10-20"},
		{"16.10", "2026-10-16"},
		{"05.01", "2027-01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDate(tt.in, today)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseDate("завтра", today)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestParseSlot(t *testing.T) {
	for _, in := range []string{"2026-10-20 09:00-11:00", "2026-10-20 09:00 11:00", "20.10 09:00 - 11:00"} {
		t.Run(in, func(t *testing.T) {
			req, err := parseSlot(in, today)
			require.NoError(t, err)
			assert.Equal(t, model.SlotRequest{Date: "2026-10-20", StartTime: model.NewClock(9, 0), EndTime: model.NewClock(11, 0)}, req)
		})
	}

	_, err := parseSlot("20.10 9 часов", today)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestParseRange(t *testing.T) {
	from, to, err := parseRange("20.10 - 31.10", today)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-20", from)
	assert.Equal(t, "2026-10-31", to)

	_, _, err = parseRange("20.10", today)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestBookingRequest(t *testing.T) {
	data := map[string]any{
		state.KeyLecturerID: int64(3),
		state.KeyDate:       "2026-10-20",
		state.KeyDuration:   int64(30),
		state.KeyTime:       int64(570),
		state.KeyType:       string(model.ConsultationRemote),
	}

	req, err := bookingRequest(data, "Курсовая")
	require.NoError(t, err)
	require.NotNil(t, req.LecturerID)
	assert.Equal(t, int64(3), *req.LecturerID)
	assert.Equal(t, model.NewClock(9, 30), req.Time)
	assert.Equal(t, 30, req.Duration)

	data[state.KeyLecturerID] = int64(0)
	req, err = bookingRequest(data, "Курсовая")
	require.NoError(t, err)
	assert.Nil(t, req.LecturerID)

	delete(data, state.KeyTime)
	_, err = bookingRequest(data, "Курсовая")
	assert.Error(t, err)
}

func TestAppointmentIDFromCaption(t *testing.T) {
	id, ok := appointmentIDFromCaption("#12")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	_, ok = appointmentIDFromCaption("отчёт")
	assert.False(t, ok)
}

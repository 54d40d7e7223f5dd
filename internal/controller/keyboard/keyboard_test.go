package keyboard

import (
	"testing"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/lifecycle"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataParseRoundTrip(t *testing.T) {
	data := Data(CallbackAction, lifecycle.ActionApproveCancel, int64(17))
	assert.Equal(t, "act:approve_cancel:17", data)

	prefix, args := Parse(data)
	assert.Equal(t, CallbackAction, prefix)
	require.Len(t, args, 2)
	assert.Equal(t, "approve_cancel", args[0])

	id, err := ParseID(args, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	_, err = ParseID(args, 2)
	assert.Error(t, err)
}

func TestAppointmentButtonsFollowAllowedActions(t *testing.T) {
	a := &model.Appointment{ID: 5, Status: model.StatusApproved}
	actions := lifecycle.Allowed(a.Status, model.RoleLecturer)

	kb := Appointment(a, actions, false)
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "act:lecturer_cancel:5", kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "act:complete:5", kb.InlineKeyboard[0][1].CallbackData)

	assert.Nil(t, Appointment(&model.Appointment{ID: 6, Status: model.StatusCompleted}, nil, false))

	withAdmin := Appointment(&model.Appointment{ID: 6, Status: model.StatusCompleted}, nil, true)
	require.NotNil(t, withAdmin)
	assert.Equal(t, "del:6", withAdmin.InlineKeyboard[0][0].CallbackData)
}

func TestGridSplitsRows(t *testing.T) {
	kb := Dates(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), 7)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 4)
	assert.Len(t, kb.InlineKeyboard[1], 3)
	assert.Equal(t, "bd:2026-10-19", kb.InlineKeyboard[0][0].CallbackData)
}

func TestTimesEncodeMinutes(t *testing.T) {
	kb := Times([]model.Clock{model.NewClock(9, 30)})
	assert.Equal(t, "09:30", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "bt:570", kb.InlineKeyboard[0][0].CallbackData)
}

func TestSlotsSkipBooked(t *testing.T) {
	assert.Nil(t, Slots([]*model.AvailabilitySlot{{ID: 1, Booked: true}}))

	kb := Slots([]*model.AvailabilitySlot{
		{ID: 1, Booked: true},
		{ID: 2, Date: "2026-10-20", StartTime: model.NewClock(7, 0), EndTime: model.NewClock(11, 30)},
	})
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "sd:2", kb.InlineKeyboard[0][0].CallbackData)
}

func TestRemoteApprovedCardHasMeetingLink(t *testing.T) {
	a := &model.Appointment{
		ID:               7,
		Status:           model.StatusApproved,
		ConsultationType: model.ConsultationRemote,
		FeedbackNote:     " https://meet.example.org/abc ",
	}

	kb := Appointment(a, nil, false)
	require.NotNil(t, kb)
	assert.Equal(t, "https://meet.example.org/abc", kb.InlineKeyboard[0][0].URL)

	a.FeedbackNote = "Ауд. 305"
	assert.Nil(t, Appointment(a, nil, false))
}

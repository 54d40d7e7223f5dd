package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManagerStateAndData(t *testing.T) {
	sm := NewManager()
	assert.Equal(t, StateNone, sm.GetState(1))

	sm.SetData(1, KeyAppointmentID, int64(42))
	sm.SetState(1, StateApproveMessage)
	assert.Equal(t, StateApproveMessage, sm.GetState(1))

	id, ok := sm.GetInt64(1, KeyAppointmentID)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = sm.GetString(1, KeyAppointmentID)
	assert.False(t, ok)

	all := sm.GetAllData(1)
	all[KeyDate] = "2026-10-20"
	_, ok = sm.GetData(1, KeyDate)
	assert.False(t, ok, "GetAllData returns a copy")

	sm.SetState(1, StateNone)
	_, ok = sm.GetData(1, KeyAppointmentID)
	assert.False(t, ok)
}

func TestManagerClearIsPerUser(t *testing.T) {
	sm := NewManager()
	sm.SetState(1, StateBookDate)
	sm.SetState(2, StateAddSlot)

	sm.ClearState(1)

	assert.Equal(t, StateNone, sm.GetState(1))
	assert.Equal(t, StateAddSlot, sm.GetState(2))
}

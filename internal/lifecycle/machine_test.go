package lifecycle

import (
	"testing"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allActions = []Action{
	ActionApprove, ActionReject, ActionCancel, ActionRequestCancel,
	ActionLecturerCancel, ActionApproveCancel, ActionDenyCancel, ActionComplete,
}

var allRoles = []model.Role{model.RoleStudent, model.RoleLecturer, model.RoleStaff, model.RoleAdmin}

func TestSuccessors(t *testing.T) {
	tests := []struct {
		from model.AppointmentStatus
		want []model.AppointmentStatus
	}{
		{model.StatusPending, []model.AppointmentStatus{model.StatusApproved, model.StatusRejected, model.StatusCanceled}},
		{model.StatusApproved, []model.AppointmentStatus{model.StatusCancelRequested, model.StatusCanceled, model.StatusCompleted}},
		{model.StatusCancelRequested, []model.AppointmentStatus{model.StatusCanceled, model.StatusApproved}},
		{model.StatusRejected, nil},
		{model.StatusCanceled, nil},
		{model.StatusCompleted, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, Successors(tt.from))
		})
	}
}

func TestTerminalStatesAcceptNothing(t *testing.T) {
	for _, status := range []model.AppointmentStatus{model.StatusRejected, model.StatusCanceled, model.StatusCompleted} {
		for _, action := range allActions {
			for _, role := range allRoles {
				_, err := Next(status, action, role)
				assert.ErrorIs(t, err, ErrIllegalTransition, "%s/%s/%s", status, action, role)
			}
		}
	}
}

func TestUnlistedPairsFail(t *testing.T) {
	legal := make(map[Transition]bool)
	for _, tr := range Transitions() {
		legal[Transition{Action: tr.Action, Role: tr.Role, From: tr.From}] = true
	}

	for _, status := range model.AllStatuses {
		for _, action := range allActions {
			for _, role := range allRoles {
				_, err := Next(status, action, role)
				if legal[Transition{Action: action, Role: role, From: status}] {
					assert.NoError(t, err)
				} else {
					var illegal *IllegalTransitionError
					require.ErrorAs(t, err, &illegal)
					assert.Equal(t, status, illegal.From)
				}
			}
		}
	}
}

func TestApprove_StoresMessageAsFeedbackNote(t *testing.T) {
	a := &model.Appointment{ID: 1, Status: model.StatusPending, ConsultationType: model.ConsultationInPerson}

	tr, err := Apply(a, Command{Action: ActionApprove, Role: model.RoleLecturer, Message: "Room C01"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, tr.To)
	assert.Equal(t, model.StatusApproved, a.Status)
	assert.Equal(t, "Room C01", a.FeedbackNote)
}

func TestApprove_RequiresMessage(t *testing.T) {
	a := &model.Appointment{ID: 1, Status: model.StatusPending}

	_, err := Apply(a, Command{Action: ActionApprove, Role: model.RoleLecturer, Message: "   "})

	assert.ErrorIs(t, err, ErrMissingMessage)
	assert.Equal(t, model.StatusPending, a.Status)
	assert.Empty(t, a.FeedbackNote)
}

func TestReject_NoPayload(t *testing.T) {
	a := &model.Appointment{Status: model.StatusPending}

	_, err := Apply(a, Command{Action: ActionReject, Role: model.RoleLecturer})

	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, a.Status)
}

func TestStudentCancel_OnlyFromPending(t *testing.T) {
	pending := &model.Appointment{Status: model.StatusPending}
	_, err := Apply(pending, Command{Action: ActionCancel, Role: model.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCanceled, pending.Status)

	approved := &model.Appointment{Status: model.StatusApproved}
	_, err = Apply(approved, Command{Action: ActionCancel, Role: model.RoleStudent})
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, model.StatusApproved, approved.Status)
}

func TestComplete(t *testing.T) {
	for _, result := range []model.ConsultationResult{model.ResultSolved, model.ResultStudentAbsent} {
		a := &model.Appointment{Status: model.StatusApproved}

		_, err := Apply(a, Command{Action: ActionComplete, Role: model.RoleLecturer, Result: result, Note: "ok"})

		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, a.Status)
		assert.Equal(t, result, a.ConsultationResult)
		assert.Equal(t, "ok", a.ResultNote)
	}

	for _, result := range []model.ConsultationResult{model.ResultNone, model.ResultUnsolved, model.ResultCancelledByLecturer} {
		a := &model.Appointment{Status: model.StatusApproved}
		_, err := Apply(a, Command{Action: ActionComplete, Role: model.RoleLecturer, Result: result})
		assert.ErrorIs(t, err, ErrInvalidResult)
		assert.Equal(t, model.StatusApproved, a.Status)
	}
}

func TestLecturerCancel_KeepsDistinctLabel(t *testing.T) {
	a := &model.Appointment{Status: model.StatusApproved}

	tr, err := Apply(a, Command{Action: ActionLecturerCancel, Role: model.RoleLecturer})

	require.NoError(t, err)
	assert.Equal(t, ActionLecturerCancel, tr.Action)
	assert.Equal(t, model.StatusCanceled, a.Status)
	assert.Equal(t, model.ResultCancelledByLecturer, a.ConsultationResult)
	assert.True(t, tr.FreesSlot())
}

func TestAllowed(t *testing.T) {
	assert.Equal(t, []Action{ActionApprove, ActionReject}, Allowed(model.StatusPending, model.RoleLecturer))
	assert.Equal(t, []Action{ActionCancel}, Allowed(model.StatusPending, model.RoleStudent))
	assert.Equal(t, []Action{ActionRequestCancel}, Allowed(model.StatusApproved, model.RoleStudent))
	assert.Equal(t, []Action{ActionLecturerCancel, ActionComplete}, Allowed(model.StatusApproved, model.RoleLecturer))
	assert.Equal(t, []Action{ActionApproveCancel, ActionDenyCancel}, Allowed(model.StatusCancelRequested, model.RoleLecturer))
	assert.Empty(t, Allowed(model.StatusCancelRequested, model.RoleStudent))
	assert.Empty(t, Allowed(model.StatusPending, model.RoleStaff))
	assert.Empty(t, Allowed(model.StatusPending, model.RoleAdmin))
}

func TestCanHardDelete(t *testing.T) {
	assert.True(t, CanHardDelete(model.RoleAdmin))
	assert.False(t, CanHardDelete(model.RoleLecturer))
	assert.False(t, CanHardDelete(model.RoleStudent))
}

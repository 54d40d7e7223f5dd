// Package lifecycle описывает жизненный цикл записи на консультацию:
// таблицу переходов, проверки обязательных данных и протокол отмены.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/consult_portal/internal/model"
)

// Action метка перехода. Разные метки могут вести в одно состояние.
type Action string

const (
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionCancel         Action = "cancel"          // студент отменяет ожидающую запись
	ActionRequestCancel  Action = "request_cancel"  // студент просит отменить подтверждённую
	ActionLecturerCancel Action = "lecturer_cancel" // преподаватель отменяет сам
	ActionApproveCancel  Action = "approve_cancel"  // преподаватель принимает запрос на отмену
	ActionDenyCancel     Action = "deny_cancel"     // преподаватель отклоняет запрос на отмену
	ActionComplete       Action = "complete"
)

var (
	ErrIllegalTransition   = errors.New("illegal transition")
	ErrMissingMessage      = errors.New("approval requires a location or meeting link")
	ErrMissingCancelReason = errors.New("cancel request requires a reason")
	ErrInvalidResult       = errors.New("consultation result must be SOLVED or STUDENT_ABSENT")
)

// Transition одна строка таблицы переходов
type Transition struct {
	Action Action
	Role   model.Role
	From   model.AppointmentStatus
	To     model.AppointmentStatus
}

// table - единственный источник правды о допустимых переходах
var table = []Transition{
	{ActionApprove, model.RoleLecturer, model.StatusPending, model.StatusApproved},
	{ActionReject, model.RoleLecturer, model.StatusPending, model.StatusRejected},
	{ActionCancel, model.RoleStudent, model.StatusPending, model.StatusCanceled},

	{ActionRequestCancel, model.RoleStudent, model.StatusApproved, model.StatusCancelRequested},
	{ActionLecturerCancel, model.RoleLecturer, model.StatusApproved, model.StatusCanceled},
	{ActionComplete, model.RoleLecturer, model.StatusApproved, model.StatusCompleted},

	{ActionApproveCancel, model.RoleLecturer, model.StatusCancelRequested, model.StatusCanceled},
	{ActionDenyCancel, model.RoleLecturer, model.StatusCancelRequested, model.StatusApproved},
}

// IllegalTransitionError пара состояние/роль не перечислена в таблице
type IllegalTransitionError struct {
	Action Action
	Role   model.Role
	From   model.AppointmentStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot %s from %s as %s", e.Action, e.From, e.Role)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// Command запрошенный переход вместе с данными для проверок
type Command struct {
	Action       Action
	Role         model.Role
	Message      string                   // место или ссылка при одобрении
	CancelReason string                   // причина при запросе отмены
	Result       model.ConsultationResult // итог при завершении
	Note         string
}

// Transitions копия таблицы переходов
func Transitions() []Transition {
	out := make([]Transition, len(table))
	copy(out, table)
	return out
}

// Lookup находит переход или возвращает ошибку недопустимого перехода
func Lookup(from model.AppointmentStatus, action Action, role model.Role) (Transition, error) {
	for _, t := range table {
		if t.From == from && t.Action == action && t.Role == role {
			return t, nil
		}
	}
	return Transition{}, &IllegalTransitionError{Action: action, Role: role, From: from}
}

// Next состояние после перехода
func Next(from model.AppointmentStatus, action Action, role model.Role) (model.AppointmentStatus, error) {
	t, err := Lookup(from, action, role)
	if err != nil {
		return "", err
	}
	return t.To, nil
}

// Validate проверяет переход и обязательные данные команды без изменения записи
func Validate(from model.AppointmentStatus, cmd Command) (Transition, error) {
	t, err := Lookup(from, cmd.Action, cmd.Role)
	if err != nil {
		return Transition{}, err
	}

	switch cmd.Action {
	case ActionApprove:
		if strings.TrimSpace(cmd.Message) == "" {
			return Transition{}, ErrMissingMessage
		}
	case ActionRequestCancel:
		if strings.TrimSpace(cmd.CancelReason) == "" {
			return Transition{}, ErrMissingCancelReason
		}
	case ActionComplete:
		if cmd.Result != model.ResultSolved && cmd.Result != model.ResultStudentAbsent {
			return Transition{}, ErrInvalidResult
		}
	}

	return t, nil
}

// Apply выполняет переход над записью. При ошибке запись не меняется.
func Apply(a *model.Appointment, cmd Command) (Transition, error) {
	t, err := Validate(a.Status, cmd)
	if err != nil {
		return Transition{}, err
	}

	switch cmd.Action {
	case ActionApprove:
		a.FeedbackNote = strings.TrimSpace(cmd.Message)
	case ActionCancel:
		a.CancelReason = strings.TrimSpace(cmd.CancelReason)
	case ActionRequestCancel:
		a.CancelReason = strings.TrimSpace(cmd.CancelReason)
	case ActionLecturerCancel:
		a.ConsultationResult = model.ResultCancelledByLecturer
	case ActionDenyCancel:
		a.CancelReason = ""
	case ActionComplete:
		a.ConsultationResult = cmd.Result
		a.ResultNote = strings.TrimSpace(cmd.Note)
	}

	a.Status = t.To
	return t, nil
}

// Allowed действия, доступные роли в данном состоянии, в порядке таблицы
func Allowed(status model.AppointmentStatus, role model.Role) []Action {
	var actions []Action
	for _, t := range table {
		if t.From == status && t.Role == role {
			actions = append(actions, t.Action)
		}
	}
	return actions
}

// Successors состояния, достижимые за один шаг любой ролью
func Successors(status model.AppointmentStatus) []model.AppointmentStatus {
	var out []model.AppointmentStatus
	seen := make(map[model.AppointmentStatus]bool)
	for _, t := range table {
		if t.From == status && !seen[t.To] {
			seen[t.To] = true
			out = append(out, t.To)
		}
	}
	return out
}

// FreesSlot слот занят только нетерминальной записью
func (t Transition) FreesSlot() bool {
	return t.To.IsTerminal()
}

// CanHardDelete жёсткое удаление вне жизненного цикла, только для администратора
func CanHardDelete(role model.Role) bool {
	return role == model.RoleAdmin
}

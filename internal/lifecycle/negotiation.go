package lifecycle

import (
	"fmt"

	"github.com/Freeeeeet/consult_portal/internal/model"
)

// Decision решение преподавателя по запросу на отмену
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
)

func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionDeny
}

// Action метка перехода для решения
func (d Decision) Action() Action {
	if d == DecisionApprove {
		return ActionApproveCancel
	}
	return ActionDenyCancel
}

// RequestCancellation студент называет причину и переводит запись в CANCEL_REQUESTED.
// Срока ожидания у запроса нет: без ответа преподавателя запись остаётся в этом состоянии.
func RequestCancellation(a *model.Appointment, reason string) (Transition, error) {
	return Apply(a, Command{
		Action:       ActionRequestCancel,
		Role:         model.RoleStudent,
		CancelReason: reason,
	})
}

// ResolveCancellation единственный арбитр - преподаватель.
// Принятие ведёт в CANCELED, отказ возвращает APPROVED.
func ResolveCancellation(a *model.Appointment, decision Decision) (Transition, error) {
	if !decision.Valid() {
		return Transition{}, fmt.Errorf("unknown decision %q: %w", decision, ErrIllegalTransition)
	}
	return Apply(a, Command{
		Action: decision.Action(),
		Role:   model.RoleLecturer,
	})
}

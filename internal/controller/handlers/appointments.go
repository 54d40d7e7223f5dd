package handlers

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/consult_portal/internal/controller/formatting"
	"github.com/Freeeeeet/consult_portal/internal/controller/keyboard"
	"github.com/Freeeeeet/consult_portal/internal/controller/state"
	"github.com/Freeeeeet/consult_portal/internal/filter"
	"github.com/Freeeeeet/consult_portal/internal/lifecycle"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const maxCards = 10

var activeStatuses = []model.AppointmentStatus{
	model.StatusPending,
	model.StatusApproved,
	model.StatusCancelRequested,
}

// HandleList активные записи пользователя
func (h *Handlers) HandleList(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.listWith(ctx, b, update, filter.Criteria{Statuses: activeStatuses}, "📭 Активных записей нет.")
}

// HandleHistory все записи, включая завершённые
func (h *Handlers) HandleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.listWith(ctx, b, update, filter.Criteria{}, "📭 Записей пока нет.")
}

// HandlePending заявки, ожидающие решения преподавателя
func (h *Handlers) HandlePending(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireRole(ctx, b, update, model.RoleLecturer)
	if !ok {
		return
	}
	criteria := filter.Criteria{Statuses: []model.AppointmentStatus{model.StatusPending, model.StatusCancelRequested}}
	h.sendList(ctx, b, user, update.Message.Chat.ID, criteria, "✨ Новых заявок нет.")
}

// HandleSearch поиск по имени или коду студента и преподавателя
func (h *Handlers) HandleSearch(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireRole(ctx, b, update, model.RoleLecturer, model.RoleStaff, model.RoleAdmin)
	if !ok {
		return
	}

	h.stateManager.SetState(user.TelegramID, state.StateSearch)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "🔎 Введите имя или номер:")
}

func (h *Handlers) handleSearchStep(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, text string) {
	h.stateManager.ClearState(user.TelegramID)
	h.sendList(ctx, b, user, chatID, filter.Criteria{SearchTerm: text}, "🔎 Ничего не найдено.")
}

func (h *Handlers) listWith(ctx context.Context, b *bot.Bot, update *models.Update, criteria filter.Criteria, empty string) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	h.sendList(ctx, b, user, update.Message.Chat.ID, criteria, empty)
}

// sendList по карточке на запись с кнопками допустимых действий
func (h *Handlers) sendList(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, criteria filter.Criteria, empty string) {
	actorCtx, sess := h.sessionFor(ctx, user)
	if err := sess.appointments.Reload(actorCtx); err != nil {
		h.fail(ctx, b, chatID, "load appointments", err)
		return
	}

	found := sess.appointments.Filter(criteria)
	if len(found) == 0 {
		h.sendMessage(ctx, b, chatID, empty)
		return
	}

	shown := found
	if len(shown) > maxCards {
		shown = shown[len(shown)-maxCards:]
		h.sendMessage(ctx, b, chatID, fmt.Sprintf("📋 Найдено %d, показаны последние %d.", len(found), maxCards))
	}

	for _, a := range shown {
		h.sendCard(ctx, b, user, sess, chatID, a)
	}
}

func (h *Handlers) sendCard(ctx context.Context, b *bot.Bot, user *model.User, sess *session, chatID int64, a *model.Appointment) {
	kb := keyboard.Appointment(a, sess.appointments.Actions(a), lifecycle.CanHardDelete(user.Role))
	h.sendWithKeyboard(ctx, b, chatID, formatting.Appointment(a), kb)
}

// onAction кнопка перехода. Действия, которым нужен текст, переводят диалог в состояние ввода.
func (h *Handlers) onAction(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("action: %v", args)
	}
	action := lifecycle.Action(args[0])
	id, err := keyboard.ParseID(args, 1)
	if err != nil {
		return err
	}

	actorCtx, sess := h.sessionFor(ctx, user)
	if err := sess.appointments.Reload(actorCtx); err != nil {
		h.fail(ctx, b, chatID, "load appointments", err)
		return nil
	}

	switch action {
	case lifecycle.ActionApprove:
		h.askText(user, id, state.StateApproveMessage)
		h.sendMessage(ctx, b, chatID, "📍 Укажите аудиторию или ссылку на встречу:")
		return nil
	case lifecycle.ActionRequestCancel:
		h.askText(user, id, state.StateCancelReason)
		h.sendMessage(ctx, b, chatID, "✋ Напишите причину отмены:")
		return nil
	case lifecycle.ActionComplete:
		h.sendWithKeyboard(ctx, b, chatID, "🏁 Как прошла консультация?", keyboard.Results(id))
		return nil
	}

	var actErr error
	switch action {
	case lifecycle.ActionReject:
		actErr = sess.appointments.Reject(actorCtx, id)
	case lifecycle.ActionCancel:
		actErr = sess.appointments.Cancel(actorCtx, id, "")
	case lifecycle.ActionLecturerCancel:
		actErr = sess.appointments.LecturerCancel(actorCtx, id)
	case lifecycle.ActionApproveCancel:
		actErr = sess.appointments.ResolveCancelRequest(actorCtx, id, lifecycle.DecisionApprove)
	case lifecycle.ActionDenyCancel:
		actErr = sess.appointments.ResolveCancelRequest(actorCtx, id, lifecycle.DecisionDeny)
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	h.afterTransition(ctx, b, user, sess, chatID, id, string(action), actErr)
	return nil
}

func (h *Handlers) askText(user *model.User, appointmentID int64, next state.UserState) {
	h.stateManager.ClearState(user.TelegramID)
	h.stateManager.SetData(user.TelegramID, state.KeyAppointmentID, appointmentID)
	h.stateManager.SetState(user.TelegramID, next)
}

func (h *Handlers) handleApproveMessageStep(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, text string) {
	id, ok := h.dialogAppointment(ctx, b, user, chatID)
	if !ok {
		return
	}

	actorCtx, sess := h.sessionFor(ctx, user)
	err := sess.appointments.Approve(actorCtx, id, text)
	h.afterTransition(ctx, b, user, sess, chatID, id, string(lifecycle.ActionApprove), err)
}

func (h *Handlers) handleCancelReasonStep(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, text string) {
	id, ok := h.dialogAppointment(ctx, b, user, chatID)
	if !ok {
		return
	}

	actorCtx, sess := h.sessionFor(ctx, user)
	err := sess.appointments.Cancel(actorCtx, id, text)
	h.afterTransition(ctx, b, user, sess, chatID, id, string(lifecycle.ActionRequestCancel), err)
}

func (h *Handlers) onResult(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, args []string) error {
	id, err := keyboard.ParseID(args, 0)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("result: %v", args)
	}

	h.askText(user, id, state.StateResultNote)
	h.stateManager.SetData(user.TelegramID, state.KeyResult, args[1])
	h.sendMessage(ctx, b, chatID, "📝 Комментарий к итогу (или «-», чтобы пропустить):")
	return nil
}

func (h *Handlers) handleResultNoteStep(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, text string) {
	id, ok := h.dialogAppointment(ctx, b, user, chatID)
	if !ok {
		return
	}
	result, _ := h.stateManager.GetString(user.TelegramID, state.KeyResult)
	if text == "-" {
		text = ""
	}

	actorCtx, sess := h.sessionFor(ctx, user)
	err := sess.appointments.Complete(actorCtx, id, model.ConsultationResult(result), text)
	h.afterTransition(ctx, b, user, sess, chatID, id, string(lifecycle.ActionComplete), err)
}

func (h *Handlers) onAdminDelete(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, args []string) error {
	id, err := keyboard.ParseID(args, 0)
	if err != nil {
		return err
	}

	actorCtx, sess := h.sessionFor(ctx, user)
	if err := sess.appointments.HardDelete(actorCtx, id); err != nil {
		h.fail(ctx, b, chatID, "delete appointment", err)
		return nil
	}

	h.logger.Info("Appointment deleted from bot", zap.Int64("appointment_id", id), zap.Int64("user_id", user.ID))
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("🗑 Запись #%d удалена.", id))
	return nil
}

// dialogAppointment номер записи, сохранённый при нажатии кнопки
func (h *Handlers) dialogAppointment(ctx context.Context, b *bot.Bot, user *model.User, chatID int64) (int64, bool) {
	id, ok := h.stateManager.GetInt64(user.TelegramID, state.KeyAppointmentID)
	if !ok {
		h.stateManager.ClearState(user.TelegramID)
		h.sendError(ctx, b, chatID, "⌛ Диалог устарел, откройте запись заново: /list")
		return 0, false
	}
	return id, true
}

// afterTransition показывает обновлённую карточку и уведомляет другую сторону
func (h *Handlers) afterTransition(ctx context.Context, b *bot.Bot, user *model.User, sess *session, chatID, id int64, action string, err error) {
	if err != nil {
		h.fail(ctx, b, chatID, action, err)
		return
	}

	h.stateManager.ClearState(user.TelegramID)

	a, ok := sess.appointments.Get(id)
	if !ok {
		h.sendMessage(ctx, b, chatID, "✅ Готово.")
		return
	}
	h.sendCard(ctx, b, user, sess, chatID, a)

	text := "🔔 Запись обновлена\n\n" + formatting.Appointment(a)
	switch {
	case user.Role == model.RoleStudent && a.LecturerID != nil:
		h.notifyUser(ctx, b, *a.LecturerID, text)
	case user.Role == model.RoleLecturer && a.StudentID != user.ID:
		h.notifyUser(ctx, b, a.StudentID, text)
	}
}

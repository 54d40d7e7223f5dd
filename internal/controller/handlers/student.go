package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/consult_portal/internal/controller/formatting"
	"github.com/Freeeeeet/consult_portal/internal/controller/keyboard"
	"github.com/Freeeeeet/consult_portal/internal/controller/state"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const bookingDaysAhead = 8

// HandleBook начинает запись: выбор преподавателя
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireRole(ctx, b, update, model.RoleStudent)
	if !ok {
		return
	}

	lecturers, err := h.userService.Lecturers(ctx)
	if err != nil {
		h.logger.Error("Failed to list lecturers", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Не удалось загрузить преподавателей")
		return
	}

	h.stateManager.ClearState(user.TelegramID)
	h.sendWithKeyboard(ctx, b, update.Message.Chat.ID,
		"👨‍🏫 Выберите преподавателя.\n\nЕсли выбрать любого, заявку распределят вручную.",
		keyboard.Lecturers(lecturers))
}

func (h *Handlers) onBookLecturer(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, args []string) error {
	lecturerID, err := keyboard.ParseID(args, 0)
	if err != nil {
		return err
	}

	h.stateManager.ClearState(user.TelegramID)
	h.stateManager.SetData(user.TelegramID, state.KeyLecturerID, lecturerID)
	h.stateManager.SetState(user.TelegramID, state.StateBookDate)

	today := h.now().In(h.location)
	h.sendWithKeyboard(ctx, b, chatID,
		"📅 Выберите дату или введите её (ДД.ММ или ГГГГ-ММ-ДД):",
		keyboard.Dates(today, bookingDaysAhead))
	return nil
}

func (h *Handlers) handleBookDateStep(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, text string) {
	date, err := parseDate(text, h.now().In(h.location))
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Не понял дату. Пример: 20.10 или 2026-10-20")
		return
	}
	h.chooseDuration(ctx, b, user, chatID, date)
}

func (h *Handlers) onBookDate(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("book date: %v", args)
	}
	h.chooseDuration(ctx, b, user, chatID, args[0])
	return nil
}

func (h *Handlers) chooseDuration(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, date string) {
	h.stateManager.SetData(user.TelegramID, state.KeyDate, date)
	h.stateManager.SetState(user.TelegramID, state.StateBookDate)
	h.sendWithKeyboard(ctx, b, chatID,
		fmt.Sprintf("⏱ %s\nСколько времени нужно на консультацию?", formatting.Date(date)),
		keyboard.DurationChoice())
}

// onBookDuration считает допустимое время начала; пустой ответ сервера даёт стандартную сетку
func (h *Handlers) onBookDuration(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, args []string) error {
	duration, err := keyboard.ParseID(args, 0)
	if err != nil {
		return err
	}
	date, ok := h.stateManager.GetString(user.TelegramID, state.KeyDate)
	if !ok {
		h.sendError(ctx, b, chatID, "⌛ Диалог устарел, начните заново: /book")
		return nil
	}

	query := schedule.StartTimeQuery{Date: date, Duration: int(duration)}
	if lecturerID, _ := h.stateManager.GetInt64(user.TelegramID, state.KeyLecturerID); lecturerID != 0 {
		query.LecturerID = &lecturerID
	}

	actorCtx, sess := h.sessionFor(ctx, user)
	times, err := sess.slots.StartTimes(actorCtx, query)
	if err != nil {
		h.fail(ctx, b, chatID, "resolve start times", err)
		return nil
	}

	h.stateManager.SetData(user.TelegramID, state.KeyDuration, duration)

	text := "🕐 Выберите время начала:"
	if times.Queued {
		text = "🕐 Свободных окон нет. Выберите удобное время, заявка уйдёт на ручное распределение:"
	}
	h.sendWithKeyboard(ctx, b, chatID, text, keyboard.Times(times.Times))
	return nil
}

func (h *Handlers) onBookTime(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, args []string) error {
	minutes, err := keyboard.ParseID(args, 0)
	if err != nil {
		return err
	}

	h.stateManager.SetData(user.TelegramID, state.KeyTime, minutes)
	h.sendWithKeyboard(ctx, b, chatID, "📍 Формат консультации:", keyboard.ConsultationTypes())
	return nil
}

func (h *Handlers) onBookType(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("book type: %v", args)
	}

	h.stateManager.SetData(user.TelegramID, state.KeyType, args[0])
	h.stateManager.SetState(user.TelegramID, state.StateBookReason)
	h.sendMessage(ctx, b, chatID, "💬 Опишите вопрос, с которым вы придёте:")
	return nil
}

// handleBookReasonStep собирает заявку из данных диалога и создаёт запись
func (h *Handlers) handleBookReasonStep(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, text string) {
	data := h.stateManager.GetAllData(user.TelegramID)
	req, err := bookingRequest(data, text)
	if err != nil {
		h.stateManager.ClearState(user.TelegramID)
		h.sendError(ctx, b, chatID, "⌛ Диалог устарел, начните заново: /book")
		return
	}

	actorCtx, sess := h.sessionFor(ctx, user)
	if err := sess.appointments.Reload(actorCtx); err != nil {
		h.fail(ctx, b, chatID, "load appointments", err)
		return
	}

	created, err := sess.appointments.Create(actorCtx, req)
	if err != nil {
		h.fail(ctx, b, chatID, "create appointment", err)
		return
	}

	h.stateManager.ClearState(user.TelegramID)

	text = "🎉 Заявка отправлена!\n\n" + formatting.Appointment(created)
	h.sendWithKeyboard(ctx, b, chatID, text, keyboard.Appointment(created, sess.appointments.Actions(created), false))

	if created.LecturerID != nil {
		h.notifyUser(ctx, b, *created.LecturerID, "🔔 Новая заявка на консультацию\n\n"+formatting.Appointment(created)+"\n\n/pending")
	}
}

func bookingRequest(data map[string]any, reason string) (model.AppointmentRequest, error) {
	date, ok1 := data[state.KeyDate].(string)
	duration, ok2 := data[state.KeyDuration].(int64)
	minutes, ok3 := data[state.KeyTime].(int64)
	kind, ok4 := data[state.KeyType].(string)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return model.AppointmentRequest{}, fmt.Errorf("incomplete booking dialog")
	}

	req := model.AppointmentRequest{
		Date:             date,
		Time:             model.Clock(minutes),
		Duration:         int(duration),
		Reason:           reason,
		ConsultationType: model.ConsultationType(kind),
	}
	if lecturerID, ok := data[state.KeyLecturerID].(int64); ok && lecturerID != 0 {
		req.LecturerID = &lecturerID
	}
	return req, nil
}

// appointmentIDFromCaption номер записи из подписи к файлу, допускается "#12"
func appointmentIDFromCaption(caption string) (int64, bool) {
	caption = strings.TrimPrefix(strings.TrimSpace(caption), "#")
	id, err := strconv.ParseInt(caption, 10, 64)
	return id, err == nil && id > 0
}

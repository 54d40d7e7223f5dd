package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/consult_portal/internal/controller/formatting"
	"github.com/Freeeeeet/consult_portal/internal/controller/state"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const studentHelp = `🎓 Студенту:
/book - записаться на консультацию
/list - мои активные записи
/history - все мои записи
/week - моя неделя картинкой
/ics - календарь консультаций
/code - указать номер студенческого
📎 Вложение: отправьте файл с подписью - номером записи`

const lecturerHelp = `👨‍🏫 Преподавателю:
/pending - заявки и запросы на отмену
/list - активные записи
/history - все записи
/search - поиск по студенту
/slots - мои слоты
/addslot - добавить слот
/batch - приёмные часы на период
/autohours - автоматические приёмные часы
/week - неделя картинкой
/ics - календарь консультаций`

const staffHelp = `🗂 Сотруднику:
/list - активные записи
/history - все записи
/search - поиск по студенту или преподавателю
/ics - календарь консультаций`

// HandleStart регистрирует пользователя и показывает справку по роли
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From
	user, err := h.userService.RegisterUser(ctx, from.ID, from.Username, from.FirstName, from.LastName)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	h.stateManager.ClearState(from.ID)

	text := fmt.Sprintf("👋 Привет, %s!\n\nЭто портал консультаций. Ваша роль: %s\n\n%s\n\n/help - справка, /cancel - прервать действие",
		user.FirstName, formatting.Role(user.Role), helpFor(user.Role))

	h.sendMessage(ctx, b, update.Message.Chat.ID, text)
}

func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, "❓ Справка\n\n"+helpFor(user.Role)+"\n\n/me - профиль\n/cancel - прервать текущее действие")
}

func helpFor(role model.Role) string {
	switch role {
	case model.RoleLecturer:
		return lecturerHelp
	case model.RoleStaff, model.RoleAdmin:
		return staffHelp
	default:
		return studentHelp + "\n\n/becomelecturer - стать преподавателем"
	}
}

// HandleCancel прерывает текущий диалог
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	if h.stateManager.GetState(update.Message.From.ID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "ℹ️ Нет активного действия.")
		return
	}

	h.stateManager.ClearState(update.Message.From.ID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Действие отменено.")
}

// HandleProfile /me
func (h *Handlers) HandleProfile(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 %s\n%s\n", user.FullName(), formatting.Role(user.Role))
	if user.Code != "" {
		fmt.Fprintf(&sb, "🪪 %s\n", user.Code)
	} else {
		sb.WriteString("🪪 Номер не указан, /code\n")
	}
	if user.Role == model.RoleLecturer {
		mark := "выключены"
		if user.AutoOfficeHours {
			mark = "включены"
		}
		fmt.Fprintf(&sb, "🕘 Автоматические приёмные часы %s\n", mark)
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, sb.String())
}

// HandleBecomeLecturer спрашивает табельный номер
func (h *Handlers) HandleBecomeLecturer(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	if user.Role == model.RoleLecturer {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "ℹ️ Вы уже преподаватель. /help")
		return
	}

	h.stateManager.SetState(user.TelegramID, state.StateLecturerCode)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "👨‍🏫 Введите ваш табельный номер:")
}

// HandleSetCode спрашивает номер студенческого или табельный
func (h *Handlers) HandleSetCode(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	h.stateManager.SetState(user.TelegramID, state.StateStudentCode)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "🪪 Введите номер студенческого билета или табельный номер:")
}

// HandleAutoHours переключает автоматическую генерацию приёмных часов
func (h *Handlers) HandleAutoHours(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireRole(ctx, b, update, model.RoleLecturer)
	if !ok {
		return
	}

	enabled, err := h.userService.ToggleAutoOfficeHours(ctx, user.TelegramID)
	if err != nil {
		h.fail(ctx, b, update.Message.Chat.ID, "toggle auto office hours", err)
		return
	}

	text := "⏸ Автоматические приёмные часы выключены."
	if enabled {
		text = "🕘 Автоматические приёмные часы включены: утро 07:00-11:30 и день 13:30-17:30 на две недели вперёд."
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, text)
}

// HandleTextMessage шаги диалогов; без активного состояния сообщение игнорируется
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// Команды обрабатываются своими handlers
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)
	if currentState == state.StateNone {
		return
	}

	h.logger.Debug("Dialog step",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(currentState)),
	)

	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		h.stateManager.ClearState(telegramID)
		return
	}

	text := strings.TrimSpace(update.Message.Text)
	chatID := update.Message.Chat.ID

	switch currentState {
	case state.StateBookDate:
		h.handleBookDateStep(ctx, b, user, chatID, text)
	case state.StateBookReason:
		h.handleBookReasonStep(ctx, b, user, chatID, text)
	case state.StateApproveMessage:
		h.handleApproveMessageStep(ctx, b, user, chatID, text)
	case state.StateCancelReason:
		h.handleCancelReasonStep(ctx, b, user, chatID, text)
	case state.StateResultNote:
		h.handleResultNoteStep(ctx, b, user, chatID, text)
	case state.StateAddSlot:
		h.handleAddSlotStep(ctx, b, user, chatID, text)
	case state.StateBatchRange:
		h.handleBatchRangeStep(ctx, b, user, chatID, text)
	case state.StateSearch:
		h.handleSearchStep(ctx, b, user, chatID, text)
	case state.StateLecturerCode:
		h.handleLecturerCodeStep(ctx, b, user, chatID, text)
	case state.StateStudentCode:
		h.handleStudentCodeStep(ctx, b, user, chatID, text)
	default:
		h.logger.Warn("Unknown dialog state", zap.String("state", string(currentState)))
		h.stateManager.ClearState(telegramID)
	}
}

func (h *Handlers) handleLecturerCodeStep(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, text string) {
	updated, err := h.userService.BecomeLecturer(ctx, user.TelegramID, text)
	if err != nil {
		h.fail(ctx, b, chatID, "become lecturer", err)
		return
	}

	h.stateManager.ClearState(user.TelegramID)
	h.dropSession(user.TelegramID)
	h.sendMessage(ctx, b, chatID, "🎉 Теперь вы преподаватель!\n\n"+helpFor(updated.Role))
}

func (h *Handlers) handleStudentCodeStep(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, text string) {
	if _, err := h.userService.SetCode(ctx, user.TelegramID, text); err != nil {
		h.fail(ctx, b, chatID, "set code", err)
		return
	}

	h.stateManager.ClearState(user.TelegramID)
	h.sendMessage(ctx, b, chatID, "✅ Номер сохранён.")
}

package handlers

import (
	"context"
	"slices"

	"github.com/Freeeeeet/consult_portal/internal/controller/formatting"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// loadUser пользователь по telegramID; при отсутствии просит пройти /start
func (h *Handlers) loadUser(ctx context.Context, b *bot.Bot, chatID, telegramID int64) (*model.User, bool) {
	user, err := h.userService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return nil, false
	}

	if user == nil {
		h.sendError(ctx, b, chatID, "❌ Пользователь не найден. Используйте /start для регистрации.")
		return nil, false
	}

	return user, true
}

// requireUser пользователь-отправитель сообщения
func (h *Handlers) requireUser(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}
	return h.loadUser(ctx, b, update.Message.Chat.ID, update.Message.From.ID)
}

// requireRole пользователь с одной из ролей
func (h *Handlers) requireRole(ctx context.Context, b *bot.Bot, update *models.Update, roles ...model.Role) (*model.User, bool) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return nil, false
	}

	if !slices.Contains(roles, user.Role) {
		text := "❌ Эта команда вам недоступна."
		if slices.Contains(roles, model.RoleLecturer) && user.Role == model.RoleStudent {
			text += "\n\nСтать преподавателем: /becomelecturer"
		}
		h.sendError(ctx, b, update.Message.Chat.ID, text)
		return nil, false
	}

	return user, true
}

// fail сообщает пользователю причину ошибки движка
func (h *Handlers) fail(ctx context.Context, b *bot.Bot, chatID int64, operation string, err error) {
	h.logger.Warn("Operation failed",
		zap.String("operation", operation),
		zap.Int64("chat_id", chatID),
		zap.Error(err),
	)
	h.sendError(ctx, b, chatID, formatting.ErrorMessage(err))
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	h.sendWithKeyboard(ctx, b, chatID, text, nil)
}

func (h *Handlers) sendWithKeyboard(ctx context.Context, b *bot.Bot, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// notifyUser сообщение другой стороне записи; в личном чате chatID равен telegramID
func (h *Handlers) notifyUser(ctx context.Context, b *bot.Bot, userID int64, text string) {
	user, err := h.userService.GetByID(ctx, userID)
	if err != nil || user == nil {
		h.logger.Warn("Cannot notify user", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	h.sendMessage(ctx, b, user.TelegramID, text)
}

func answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
}

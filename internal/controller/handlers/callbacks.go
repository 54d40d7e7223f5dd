package handlers

import (
	"context"

	"github.com/Freeeeeet/consult_portal/internal/controller/keyboard"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type callbackFunc func(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, args []string) error

func (h *Handlers) callbackRoutes() map[string]callbackFunc {
	return map[string]callbackFunc{
		keyboard.CallbackAction:       h.onAction,
		keyboard.CallbackResult:       h.onResult,
		keyboard.CallbackDownload:     h.onDownload,
		keyboard.CallbackAdminDelete:  h.onAdminDelete,
		keyboard.CallbackBookLecturer: h.onBookLecturer,
		keyboard.CallbackBookDate:     h.onBookDate,
		keyboard.CallbackBookDuration: h.onBookDuration,
		keyboard.CallbackBookTime:     h.onBookTime,
		keyboard.CallbackBookType:     h.onBookType,
		keyboard.CallbackSlotDelete:   h.onSlotDelete,
		keyboard.CallbackBatch:        h.onBatchWindows,
	}
}

// HandleCallbackQuery маршрутизирует нажатия inline-кнопок по префиксу data
func (h *Handlers) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	msg := callback.Message.Message
	if msg == nil {
		answerCallback(ctx, b, callback.ID, "❌ Сообщение устарело", true)
		return
	}

	prefix, args := keyboard.Parse(callback.Data)
	h.logger.Debug("Callback",
		zap.Int64("telegram_id", callback.From.ID),
		zap.String("data", callback.Data),
	)

	route, ok := h.callbackRoutes()[prefix]
	if !ok {
		h.logger.Warn("Unknown callback", zap.String("data", callback.Data))
		answerCallback(ctx, b, callback.ID, "❌ Неизвестное действие", false)
		return
	}

	user, ok := h.loadUser(ctx, b, msg.Chat.ID, callback.From.ID)
	if !ok {
		answerCallback(ctx, b, callback.ID, "", false)
		return
	}

	answerCallback(ctx, b, callback.ID, "", false)

	if err := route(ctx, b, user, msg.Chat.ID, args); err != nil {
		h.logger.Warn("Malformed callback data",
			zap.String("data", callback.Data),
			zap.Error(err),
		)
		h.sendError(ctx, b, msg.Chat.ID, "❌ Неверный формат данных")
	}
}

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/consult_portal/internal/controller/formatting"
	"github.com/Freeeeeet/consult_portal/internal/controller/keyboard"
	"github.com/Freeeeeet/consult_portal/internal/controller/state"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const maxListedSlots = 40

// HandleSlots ближайшие слоты преподавателя с кнопками удаления свободных
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireRole(ctx, b, update, model.RoleLecturer)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	actorCtx, sess := h.sessionFor(ctx, user)
	if err := sess.slots.Reload(actorCtx); err != nil {
		h.fail(ctx, b, chatID, "load slots", err)
		return
	}

	today := h.now().In(h.location).Format(model.DateLayout)
	var upcoming []*model.AvailabilitySlot
	for _, s := range sess.slots.Slots() {
		if s.Date >= today {
			upcoming = append(upcoming, s)
		}
	}

	if len(upcoming) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 Слотов нет.\n\n/addslot - добавить слот\n/batch - приёмные часы на период")
		return
	}
	if len(upcoming) > maxListedSlots {
		upcoming = upcoming[:maxListedSlots]
	}

	var sb strings.Builder
	sb.WriteString("🗓 Ваши слоты:\n\n")
	for _, s := range upcoming {
		sb.WriteString(formatting.Slot(s))
		sb.WriteString("\n")
	}
	sb.WriteString("\nНажмите на свободный слот, чтобы удалить его.")

	h.sendWithKeyboard(ctx, b, chatID, sb.String(), keyboard.Slots(upcoming))
}

func (h *Handlers) HandleAddSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireRole(ctx, b, update, model.RoleLecturer)
	if !ok {
		return
	}

	h.stateManager.SetState(user.TelegramID, state.StateAddSlot)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"➕ Введите дату и время слота.\n\nПример: 20.10 09:00-11:00")
}

func (h *Handlers) handleAddSlotStep(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, text string) {
	req, err := parseSlot(text, h.now().In(h.location))
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Не понял. Пример: 20.10 09:00-11:00")
		return
	}

	actorCtx, sess := h.sessionFor(ctx, user)
	if err := sess.slots.Reload(actorCtx); err != nil {
		h.fail(ctx, b, chatID, "load slots", err)
		return
	}

	slot, err := sess.slots.CreateSlot(actorCtx, req)
	if err != nil {
		h.fail(ctx, b, chatID, "create slot", err)
		return
	}

	h.stateManager.ClearState(user.TelegramID)
	h.sendMessage(ctx, b, chatID, "✅ Слот добавлен\n"+formatting.Slot(slot))
}

func (h *Handlers) onSlotDelete(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, args []string) error {
	slotID, err := keyboard.ParseID(args, 0)
	if err != nil {
		return err
	}

	actorCtx, sess := h.sessionFor(ctx, user)
	if err := sess.slots.DeleteSlot(actorCtx, slotID); err != nil {
		h.fail(ctx, b, chatID, "delete slot", err)
		return nil
	}

	h.sendMessage(ctx, b, chatID, "🗑 Слот удалён.")
	return nil
}

// HandleBatch приёмные часы на период: сначала диапазон дат, затем окна
func (h *Handlers) HandleBatch(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireRole(ctx, b, update, model.RoleLecturer)
	if !ok {
		return
	}

	h.stateManager.SetState(user.TelegramID, state.StateBatchRange)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"📆 Введите период (включительно).\n\nПример: 20.10 - 31.10")
}

func (h *Handlers) handleBatchRangeStep(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, text string) {
	from, to, err := parseRange(text, h.now().In(h.location))
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Не понял период. Пример: 20.10 - 31.10")
		return
	}

	h.stateManager.SetData(user.TelegramID, state.KeyBatchFrom, from)
	h.stateManager.SetData(user.TelegramID, state.KeyBatchTo, to)
	h.sendWithKeyboard(ctx, b, chatID,
		fmt.Sprintf("📆 %s - %s\nКакие окна создать?", formatting.Date(from), formatting.Date(to)),
		keyboard.BatchWindows())
}

// onBatchWindows запускает пачку; повторное нажатие во время работы отклоняется сервисом
func (h *Handlers) onBatchWindows(ctx context.Context, b *bot.Bot, user *model.User, chatID int64, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("batch windows: %v", args)
	}

	from, ok1 := h.stateManager.GetString(user.TelegramID, state.KeyBatchFrom)
	to, ok2 := h.stateManager.GetString(user.TelegramID, state.KeyBatchTo)
	if !ok1 || !ok2 {
		h.sendError(ctx, b, chatID, "⌛ Диалог устарел, начните заново: /batch")
		return nil
	}

	flags := schedule.BatchFlags{
		Morning:   args[0] == keyboard.BatchMorning || args[0] == keyboard.BatchBoth,
		Afternoon: args[0] == keyboard.BatchAfternoon || args[0] == keyboard.BatchBoth,
	}

	actorCtx, sess := h.sessionFor(ctx, user)
	if err := sess.slots.Reload(actorCtx); err != nil {
		h.fail(ctx, b, chatID, "load slots", err)
		return nil
	}

	result, err := sess.slots.GenerateBatch(actorCtx, from, to, flags)
	if err != nil {
		h.fail(ctx, b, chatID, "generate batch", err)
		return nil
	}

	h.stateManager.ClearState(user.TelegramID)

	h.sendMessage(ctx, b, chatID, formatting.Batch(result))
	return nil
}

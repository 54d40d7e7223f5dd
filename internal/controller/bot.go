// Package controller Telegram-бот портала консультаций
package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/controller/handlers"
	"github.com/Freeeeeet/consult_portal/internal/controller/state"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

// NewBotController collab - движок записи (в боте это backend поверх Postgres)
func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	collab service.Collaborator,
	location *time.Location,
	batchConcurrency int,
	logger *zap.Logger,
) *BotController {
	cmdHandlers := handlers.NewHandlers(
		userService,
		collab,
		state.NewManager(),
		location,
		batchConcurrency,
		logger,
	)

	return &BotController{
		bot:      botInstance,
		handlers: cmdHandlers,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	commands := map[string]bot.HandlerFunc{
		"/start":          c.handlers.HandleStart,
		"/help":           c.handlers.HandleHelp,
		"/cancel":         c.handlers.HandleCancel,
		"/me":             c.handlers.HandleProfile,
		"/code":           c.handlers.HandleSetCode,
		"/becomelecturer": c.handlers.HandleBecomeLecturer,

		// записи
		"/book":    c.handlers.HandleBook,
		"/list":    c.handlers.HandleList,
		"/history": c.handlers.HandleHistory,
		"/pending": c.handlers.HandlePending,
		"/search":  c.handlers.HandleSearch,
		"/week":    c.handlers.HandleWeek,
		"/ics":     c.handlers.HandleICS,

		// слоты преподавателя
		"/slots":     c.handlers.HandleSlots,
		"/addslot":   c.handlers.HandleAddSlot,
		"/batch":     c.handlers.HandleBatch,
		"/autohours": c.handlers.HandleAutoHours,
	}
	for pattern, handler := range commands {
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, pattern, bot.MatchTypeExact, handler)
	}

	// Файлы с номером записи в подписи
	c.bot.RegisterHandlerMatchFunc(handlers.IsDocument, c.handlers.HandleDocument)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.handlers.HandleCallbackQuery)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "book", Description: "📝 Записаться на консультацию"},
		{Command: "list", Description: "📅 Активные записи"},
		{Command: "history", Description: "🗂 Все записи"},
		{Command: "pending", Description: "⏳ Заявки (преподаватель)"},
		{Command: "slots", Description: "🗓 Мои слоты (преподаватель)"},
		{Command: "batch", Description: "📆 Приёмные часы на период"},
		{Command: "week", Description: "🖼 Неделя картинкой"},
		{Command: "ics", Description: "📤 Экспорт в календарь"},
		{Command: "me", Description: "👤 Профиль"},
		{Command: "cancel", Description: "✖️ Прервать действие"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start блокирует до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}

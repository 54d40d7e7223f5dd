package main

import (
	"fmt"

	"github.com/Freeeeeet/consult_portal/internal/app"
	"github.com/Freeeeeet/consult_portal/internal/backend"
	"github.com/Freeeeeet/consult_portal/internal/controller"
	"github.com/Freeeeeet/consult_portal/internal/repository"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/go-telegram/bot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func botCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Запустить Telegram-бота и фоновые приёмные часы",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.cfg.RequireTelegram(); err != nil {
				return err
			}

			if migrate {
				if err := applyMigrations(ctx, e); err != nil {
					return err
				}
			}

			e.logger.Info("Starting consultation bot",
				zap.Int("token_length", len(e.cfg.TelegramToken)),
				zap.String("timezone", e.cfg.Timezone.String()),
			)

			users := repository.NewUserRepository(e.pool)
			collab := backend.New(e.pool, e.logger)
			userService := service.NewUserService(users, e.logger)

			botInstance, err := bot.New(e.cfg.TelegramToken)
			if err != nil {
				return fmt.Errorf("create bot: %w", err)
			}

			ctrl := controller.NewBotController(botInstance, userService, collab, e.cfg.Timezone, e.cfg.BatchConcurrency, e.logger)
			if err := ctrl.RegisterHandlers(ctx); err != nil {
				return fmt.Errorf("register handlers: %w", err)
			}

			scheduler := app.NewScheduler(users, collab, e.cfg.OfficeHoursDaysAhead, e.cfg.BatchConcurrency, e.logger)
			scheduler.Start(ctx)
			defer scheduler.Stop()

			return ctrl.Start(ctx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Применить миграции перед стартом")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/consult_portal/internal/auth"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/repository"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/spf13/cobra"
)

// tokenCmd выпускает bearer-токен для HTTP API по Telegram ID пользователя
func tokenCmd() *cobra.Command {
	var telegramID int64

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Выпустить токен доступа к HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.cfg.RequireJWT(); err != nil {
				return err
			}

			users := service.NewUserService(repository.NewUserRepository(e.pool), e.logger)
			user, err := users.GetByTelegramID(ctx, telegramID)
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("user with telegram id %d not found, send /start to the bot first", telegramID)
			}

			token, err := auth.Sign([]byte(e.cfg.JWTSecret), auth.Actor{UserID: user.ID, Role: user.Role}, e.cfg.TokenTTL)
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&telegramID, "telegram-id", 0, "Telegram ID пользователя")
	_ = cmd.MarkFlagRequired("telegram-id")
	return cmd
}

// roleCmd назначает роль, в том числе staff и admin, которые нельзя получить через бота
func roleCmd() *cobra.Command {
	var (
		telegramID int64
		role       string
	)

	cmd := &cobra.Command{
		Use:   "role",
		Short: "Назначить пользователю роль",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			users := service.NewUserService(repository.NewUserRepository(e.pool), e.logger)
			user, err := users.SetRole(ctx, telegramID, model.Role(strings.ToLower(role)))
			if err != nil {
				return err
			}

			fmt.Printf("User %d (%s) is now %s\n", user.TelegramID, user.FullName(), user.Role)
			return nil
		},
	}
	cmd.Flags().Int64Var(&telegramID, "telegram-id", 0, "Telegram ID пользователя")
	cmd.Flags().StringVar(&role, "role", "", "student, lecturer, staff или admin")
	_ = cmd.MarkFlagRequired("telegram-id")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

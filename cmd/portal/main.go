package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/consult_portal/internal/app"
	"github.com/Freeeeeet/consult_portal/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "portal",
		Short:        "Портал консультаций: бот, HTTP API и служебные команды",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(botCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(roleCmd())
	rootCmd.AddCommand(clientCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env общие зависимости подкоманд
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.RequireDB(); err != nil {
		return nil, err
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &env{cfg: cfg, logger: logger, pool: pool}, nil
}

func (e *env) Close() {
	e.pool.Close()
	_ = e.logger.Sync()
}

// signalContext отменяется по SIGINT/SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

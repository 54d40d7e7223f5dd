package main

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/consult_portal/internal/app"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Миграции базы данных",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Применить все новые миграции",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *app.Migrator) error {
				return m.Run(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Откатить последнюю миграцию",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *app.Migrator) error {
				return m.Down(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Текущая версия схемы",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *app.Migrator) error {
				version, err := m.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Schema version: %d\n", version)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(fn func(ctx context.Context, m *app.Migrator) error) error {
	ctx := context.Background()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	m, err := app.NewMigrator(e.pool, e.logger)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(ctx, m)
}

func applyMigrations(ctx context.Context, e *env) error {
	m, err := app.NewMigrator(e.pool, e.logger)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Run(ctx)
}

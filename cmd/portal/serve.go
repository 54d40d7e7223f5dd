package main

import (
	"github.com/Freeeeeet/consult_portal/internal/backend"
	"github.com/Freeeeeet/consult_portal/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API портала",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.cfg.RequireJWT(); err != nil {
				return err
			}
			if addr == "" {
				addr = e.cfg.HTTPAddr
			}

			srv := server.New(server.Config{
				Addr:             addr,
				JWTSecret:        []byte(e.cfg.JWTSecret),
				Location:         e.cfg.Timezone,
				BatchConcurrency: e.cfg.BatchConcurrency,
			}, backend.New(e.pool, e.logger), e.logger)

			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Адрес HTTP сервера (по умолчанию HTTP_ADDR)")
	return cmd
}

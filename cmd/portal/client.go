package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Freeeeeet/consult_portal/internal/apiclient"
	"github.com/Freeeeeet/consult_portal/internal/app"
	"github.com/Freeeeeet/consult_portal/internal/config"
	"github.com/Freeeeeet/consult_portal/internal/controller/formatting"
	"github.com/Freeeeeet/consult_portal/internal/export"
	"github.com/Freeeeeet/consult_portal/internal/filter"
	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/Freeeeeet/consult_portal/internal/schedule"
	"github.com/Freeeeeet/consult_portal/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// remote клиент HTTP API от имени владельца API_TOKEN
type remote struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *apiclient.Client
	session *apiclient.Session
}

func newRemote() (*remote, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireAPI(); err != nil {
		return nil, err
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		return nil, err
	}

	session, err := apiclient.NewSession(cfg.APIToken)
	if err != nil {
		return nil, fmt.Errorf("API_TOKEN: %w", err)
	}

	return &remote{
		cfg:     cfg,
		logger:  logger,
		client:  apiclient.New(cfg.APIBaseURL, session, nil),
		session: session,
	}, nil
}

func clientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Работа с удалённым сервером портала по API_BASE_URL",
	}

	cmd.AddCommand(clientListCmd())
	cmd.AddCommand(clientBatchCmd())
	cmd.AddCommand(clientICSCmd())
	return cmd
}

func clientListCmd() *cobra.Command {
	var (
		search   string
		statuses []string
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Записи текущего пользователя",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRemote()
			if err != nil {
				return err
			}
			defer r.logger.Sync()

			appointments := service.NewAppointmentService(r.client, r.session.Actor(), r.logger)
			if err := appointments.Reload(cmd.Context()); err != nil {
				return err
			}

			criteria := filter.Criteria{SearchTerm: search, From: from, To: to}
			for _, s := range statuses {
				criteria.Statuses = append(criteria.Statuses, model.AppointmentStatus(strings.ToUpper(s)))
			}

			found := appointments.Filter(criteria)
			for _, a := range found {
				fmt.Println(formatting.Appointment(a))
				fmt.Println()
			}
			fmt.Printf("Найдено: %d\n", len(found))
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Поиск по именам и кодам")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Статусы через запятую, например PENDING,APPROVED")
	cmd.Flags().StringVar(&from, "from", "", "Начало диапазона YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Конец диапазона YYYY-MM-DD")
	return cmd
}

func clientBatchCmd() *cobra.Command {
	var (
		from, to           string
		morning, afternoon bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Создать приёмные часы на период",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRemote()
			if err != nil {
				return err
			}
			defer r.logger.Sync()

			slots := service.NewSlotService(r.client, r.session.Actor(), r.cfg.BatchConcurrency, r.logger)
			if err := slots.Reload(cmd.Context()); err != nil {
				return err
			}

			result, err := slots.GenerateBatch(cmd.Context(), from, to, schedule.BatchFlags{Morning: morning, Afternoon: afternoon})
			if err != nil {
				return err
			}

			fmt.Println(formatting.Batch(result))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Первый день YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Последний день YYYY-MM-DD")
	cmd.Flags().BoolVar(&morning, "morning", true, "Утреннее окно 07:00-11:30")
	cmd.Flags().BoolVar(&afternoon, "afternoon", false, "Дневное окно 13:30-17:30")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func clientICSCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Выгрузить записи в iCalendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRemote()
			if err != nil {
				return err
			}
			defer r.logger.Sync()

			appointments := service.NewAppointmentService(r.client, r.session.Actor(), r.logger)
			if err := appointments.Reload(cmd.Context()); err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := export.Write(f, appointments.Appointments(), r.cfg.Timezone, time.Now()); err != nil {
				return err
			}

			fmt.Printf("Saved %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "consultations.ics", "Файл календаря")
	return cmd
}

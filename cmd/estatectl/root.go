package main

import (
	"fmt"
	"os"

	"estate_backend/database"
	"estate_backend/internal/app"
	"estate_backend/internal/config"
	"estate_backend/internal/logger"
	"estate_backend/internal/push"
	"estate_backend/internal/workers"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// env - загруженная конфигурация и подключения для команды
type env struct {
	cfg        *config.Config
	db         *gorm.DB
	components *app.Components
}

func (e *env) close() {
	if e.components != nil {
		e.components.Close()
	}
}

// load читает конфигурацию и подключается к БД; сервисы собираются по требованию
func load(withServices bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.InitWithWriter(cfg.Server.Env, os.Stderr)

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, false)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, db: db}
	if withServices {
		if e.components, err = app.NewComponents(cfg); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "estatectl",
		Short:         "Административные команды estate backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newSeedAdminCmd(),
		newMediaCmd(),
		newPushCmd(),
		newOutboxCmd(),
	)
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции схемы",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(false)
			if err != nil {
				return err
			}
			return database.AutoMigrate(e.db)
		},
	}
}

func newSeedAdminCmd() *cobra.Command {
	var emailAddr, password string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Создать администратора, если его еще нет",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(true)
			if err != nil {
				return err
			}
			defer e.close()

			if emailAddr == "" {
				emailAddr = e.cfg.FirstAdminEmail
			}
			if password == "" {
				password = e.cfg.FirstAdminPassword
			}
			if emailAddr == "" || password == "" {
				return fmt.Errorf("admin email and password are required")
			}

			created, err := e.components.Services.UserService.SeedAdmin(cmd.Context(), e.db, emailAddr, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", emailAddr)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", emailAddr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&emailAddr, "email", "", "email администратора (по умолчанию first_admin_email)")
	cmd.Flags().StringVar(&password, "password", "", "пароль (по умолчанию first_admin_password)")
	return cmd
}

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Web push",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "vapid-keys",
		Short: "Сгенерировать пару VAPID-ключей",
		RunE: func(cmd *cobra.Command, args []string) error {
			publicKey, privateKey, err := push.GenerateVAPIDKeys()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", publicKey, privateKey)
			return nil
		},
	})
	return cmd
}

func newOutboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Очередь побочных эффектов",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "process",
		Short: "Обработать одну пачку готовых событий и выйти",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(true)
			if err != nil {
				return err
			}
			defer e.close()

			svc := e.components.Services
			worker := workers.NewOutboxWorker(e.db, svc.OutboxRepository, svc.EventDispatcher, workers.OutboxConfig{
				PollInterval: e.cfg.OutboxPollInterval(),
				BatchSize:    e.cfg.Outbox.BatchSize,
				MaxAttempts:  e.cfg.Outbox.MaxAttempts,
				RetryDelay:   e.cfg.OutboxPollInterval(),
			})

			processed, err := worker.ProcessOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d events\n", processed)
			return nil
		},
	})
	return cmd
}

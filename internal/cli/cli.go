// Package cli - команды easyApply: serve (панель управления), run (прогон в
// терминале), setup (запись профиля) и history (журнал откликов).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"easyApply/internal/config"
	"easyApply/internal/database"
	"easyApply/internal/logger"
	"easyApply/internal/migrations"
)

var overridesPath string

// NewRootCmd собирает дерево команд; в тестах вызывается заново для каждого случая.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "easyApply",
		Short:         "Автоматическая простая подача откликов на вакансии",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if overridesPath != "" {
				return os.Setenv("CONFIG_OVERRIDES_FILE", overridesPath)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&overridesPath, "overrides", "", "файл переопределений (по умолчанию CONFIG_OVERRIDES_FILE)")

	root.AddCommand(newServeCmd(), newRunCmd(), newSetupCmd(), newHistoryCmd())
	return root
}

// Execute is called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app - то, что нужно serve/run/history: конфигурация с применёнными
// переопределениями, логгер и журнал.
type app struct {
	cfg     *config.Cfg
	log     *logger.Zap
	db      *database.Database
	journal database.Journal
}

func bootstrap() (*app, error) {
	base, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg, _, err := config.ApplyOverrides(base.Paths.OverridesFile)
	if err != nil {
		return nil, err
	}

	var opts []logger.Option
	if cfg.Logger.File != "" {
		opts = append(opts, logger.WithFile(cfg.Logger.File))
	}
	log, err := logger.New(cfg.Logger.Env, cfg.Logger.Level, opts...)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, journal: database.Noop{}}
	if !cfg.Database.Enabled() {
		return a, nil
	}

	if err := migrations.Run(cfg, log); err != nil {
		return nil, fmt.Errorf("миграции: %w", err)
	}
	db, err := database.New(cfg, log)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.journal = database.NewRepository(db.DB)
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close(a.log)
	}
	if err := a.log.Sync(); err != nil {
		a.log.Debug("log sync", zap.Error(err))
	}
}

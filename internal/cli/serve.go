package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"easyApply/internal/config"
	"easyApply/internal/runner"
	"easyApply/internal/server"
)

func newServeCmd() *cobra.Command {
	var host, port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить панель управления (настройка, старт/стоп, статус)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			if host != "" {
				a.cfg.Server.Host = host
			}
			if port != "" {
				a.cfg.Server.Port = port
			}

			state := runner.NewState()
			ctrl := runner.NewController(state, runner.NewSession(config.Load, state, a.journal, a.log), a.log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = server.New(a.cfg, a.log, ctrl, a.journal).Run(ctx)
			if ctrl.Stop() {
				a.log.Info("ждём завершения текущей вакансии")
			}
			ctrl.Wait()
			if err != nil {
				a.log.Error("сервер", zap.Error(err))
			}
			return err
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "адрес (по умолчанию APP_HOST)")
	cmd.Flags().StringVar(&port, "port", "", "порт (по умолчанию APP_PORT)")
	return cmd
}

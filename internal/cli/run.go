package cli

import (
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"easyApply/internal/cli/ui"
	"easyApply/internal/config"
	"easyApply/internal/runner"
)

var errNotConfigured = errors.New("профиль не настроен: выполните `easyApply setup` или задайте RESUME_PATH и EASY_APPLY_EMAIL")

func newRunCmd() *cobra.Command {
	var answersPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Один прогон в терминале до Ctrl+C или дневного лимита",
		RunE: func(cmd *cobra.Command, args []string) error {
			if answersPath != "" {
				if err := useFormAnswers(answersPath); err != nil {
					return err
				}
			}

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			if !config.Configured(a.cfg.Paths.OverridesFile) {
				return errNotConfigured
			}

			out := cmd.OutOrStdout()
			ui.PrintWelcome(out, a.cfg.SearchURL(), a.cfg.Profile.Email, a.db != nil)

			state := runner.NewState()
			ctrl := runner.NewController(state, runner.NewSession(config.Load, state, a.journal, a.log), a.log)
			if _, err := ctrl.Start(cmd.Context()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			done := make(chan struct{})
			go func() {
				ctrl.Wait()
				close(done)
			}()
			select {
			case <-ctx.Done():
				ctrl.Stop()
				<-done
			case <-done:
			}

			snap := state.Snapshot()
			errText := ""
			if snap.Error != nil {
				errText = *snap.Error
			}
			ui.PrintSummary(out, snap.AppliedCount, errText)
			if errText != "" {
				return errors.New(errText)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&answersPath, "answers", "", "JSON с готовыми ответами (режим FillInitialForm, см. FORM_ANSWERS_FILE)")
	return cmd
}

// useFormAnswers проверяет файл ответов и передаёт его сессии через FORM_ANSWERS_FILE.
func useFormAnswers(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := config.ReadFormAnswers(abs); err != nil {
		return err
	}
	return os.Setenv("FORM_ANSWERS_FILE", abs)
}

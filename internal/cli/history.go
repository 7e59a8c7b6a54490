package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"easyApply/internal/cli/ui"
	"easyApply/internal/database"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit int
		runs  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Последние попытки подачи из журнала",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if a.db == nil {
				fmt.Fprintln(out, ui.ColorGray+"журнал отключён (DB_HOST пуст)"+ui.ColorReset)
				return nil
			}

			if runs {
				return printRuns(cmd, a, limit)
			}

			apps, err := a.journal.ListApplications(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("чтение журнала: %w", err)
			}
			if len(apps) == 0 {
				fmt.Fprintln(out, ui.ColorGray+"попыток ещё не было"+ui.ColorReset)
				return nil
			}

			fmt.Fprintln(out, ui.ColorBold+"=== "+ui.IconList+" Последние отклики ==="+ui.ColorReset)
			for _, app := range apps {
				icon, color, text := ui.FormatOutcome(app.Outcome)
				fmt.Fprintf(out, ui.ColorGray+"[%s]"+ui.ColorReset+" %s%s %s"+ui.ColorReset+"  %s @ %s\n",
					app.CreatedAt.Format("02.01 15:04"), color, icon, text, app.Title, app.Company)
				if app.Reason != "" {
					fmt.Fprintf(out, "  "+ui.ColorGray+"%s"+ui.ColorReset+"\n", app.Reason)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "сколько записей показать")
	cmd.Flags().BoolVar(&runs, "runs", false, "показать прогоны вместо откликов")
	return cmd
}

func printRuns(cmd *cobra.Command, a *app, limit int) error {
	out := cmd.OutOrStdout()
	list, err := database.NewRepository(a.db.DB).ListRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("чтение журнала: %w", err)
	}
	for _, r := range list {
		icon, color, text := ui.FormatRunStatus(r.Status)
		fmt.Fprintf(out, ui.ColorGray+"[%s]"+ui.ColorReset+" %s%s %s"+ui.ColorReset+"  отправлено: %d  %s\n",
			r.StartedAt.Format("02.01 15:04"), color, icon, text, r.Applied, r.ID)
		if r.Error != "" {
			fmt.Fprintf(out, "  "+ui.ColorRed+"%s"+ui.ColorReset+"\n", r.Error)
		}
	}
	return nil
}

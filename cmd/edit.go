package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/adolog/internal/ledger"
	"github.com/Tiliavir/adolog/internal/model"
)

var (
	editDate        string
	editHours       int
	editMinutes     int
	editDescription string
)

var editCmd = &cobra.Command{
	Use:   "edit <logId>",
	Short: "Change the time or description of a log",
	Long: `Change the hours, minutes or description of an existing log.
The work item and date of a log cannot be changed; delete and re-add instead.`,
	Example: `  adolog edit 1741000000000 --date 2026-03-02 --hours 2 --minutes 0`,
	Args:    cobra.ExactArgs(1),
	RunE:    runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editDate, "date", "", "Day of the log (default today)")
	editCmd.Flags().IntVar(&editHours, "hours", 0, "New hours")
	editCmd.Flags().IntVar(&editMinutes, "minutes", 0, "New minutes (0-59)")
	editCmd.Flags().StringVarP(&editDescription, "description", "m", "", "New description")
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := model.LogID(args[0])

	flags := cmd.Flags()
	if !flags.Changed("hours") && !flags.Changed("minutes") && !flags.Changed("description") {
		return fmt.Errorf("nothing to change: pass --hours, --minutes or --description")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	date, err := ledger.ParseDate(editDate, a.now())
	if err != nil {
		return err
	}
	dev, err := a.developer(ctx)
	if err != nil {
		return err
	}
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}

	day, err := svc.List(ctx, dev, date, ledger.Filter{})
	if err != nil {
		return err
	}
	rec, ok := findLog(day, id)
	if !ok {
		return fmt.Errorf("no log %s on %s for %s", id, date, dev)
	}
	before := rec.TotalMinutes()

	if flags.Changed("hours") {
		rec.Hours = editHours
	}
	if flags.Changed("minutes") {
		rec.Minutes = editMinutes
	}
	if flags.Changed("description") {
		rec.Description = editDescription
	}

	saved, err := svc.Save(ctx, rec)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Updated %s: %s (%s).\n", saved.LogID,
		ledger.FormatMinutes(saved.TotalMinutes()), formatChange(saved.TotalMinutes()-before))
	printRemaining(out, svc, cmd, dev, date)
	return nil
}

func findLog(records []model.TimeLogRecord, id model.LogID) (model.TimeLogRecord, bool) {
	for _, r := range records {
		if r.LogID == id {
			return r, true
		}
	}
	return model.TimeLogRecord{}, false
}

// formatChange renders a minute delta as "+15m", "-1h 0m" or "unchanged".
func formatChange(delta int) string {
	switch {
	case delta == 0:
		return "unchanged"
	case delta > 0:
		return "+" + ledger.FormatMinutes(delta)
	default:
		return ledger.FormatMinutes(delta)
	}
}

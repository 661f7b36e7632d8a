package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/adolog/internal/ledger"
)

var statusDate string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how much of the daily limit is used",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusDate, "date", "", "Day to check (default today)")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	date, err := ledger.ParseDate(statusDate, a.now())
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

	sum, err := svc.DaySummary(ctx, dev, date)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", color.New(color.Bold).Sprint(date), dev)
	fmt.Fprintf(out, "Logged:    %s in %d log(s)\n", ledger.FormatMinutes(sum.TotalMinutes), len(sum.Records))
	fmt.Fprintf(out, "Remaining: %s\n", remainingColor(sum.RemainingMinutes).Sprint(ledger.FormatMinutes(sum.RemainingMinutes)))
	return nil
}

func remainingColor(minutes int) *color.Color {
	switch {
	case minutes <= 0:
		return color.New(color.FgRed)
	case minutes < 60:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

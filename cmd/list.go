package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/adolog/internal/ledger"
	"github.com/Tiliavir/adolog/internal/model"
)

var (
	listDate     string
	listWeek     bool
	listOrg      string
	listProject  string
	listWorkItem string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List logged time",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVar(&listDate, "date", "", "Day to show (default today)")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Show the whole week containing --date")
	listCmd.Flags().StringVar(&listOrg, "org", "", "Only logs of this organization")
	listCmd.Flags().StringVar(&listProject, "project", "", "Only logs of this project (name or id)")
	listCmd.Flags().StringVar(&listWorkItem, "work-item", "", "Only logs of this work item id")
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	dates, err := selectedDates(listDate, listWeek, a.now())
	if err != nil {
		return err
	}
	filter := ledger.Filter{Organization: listOrg, ProjectID: listProject, WorkItemID: listWorkItem}

	groups, err := a.fetchDays(cmd, dates, filter)
	if err != nil {
		return err
	}
	printDays(cmd.OutOrStdout(), groups)
	return nil
}

// selectedDates turns --date and --week into the days to query.
func selectedDates(date string, week bool, now time.Time) ([]string, error) {
	day, err := ledger.ParseDate(date, now)
	if err != nil {
		return nil, err
	}
	if !week {
		return []string{day}, nil
	}
	t, _ := time.ParseInLocation(model.DateLayout, day, now.Location())
	return ledger.WeekDays(t), nil
}

func (a *app) fetchDays(cmd *cobra.Command, dates []string, f ledger.Filter) (map[string][]model.TimeLogRecord, error) {
	ctx := cmd.Context()
	dev, err := a.developer(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := a.service(ctx)
	if err != nil {
		return nil, err
	}
	return svc.ListDays(ctx, dev, dates, f)
}

// printDays prints one table per day, oldest first, with day and grand totals.
func printDays(out io.Writer, groups map[string][]model.TimeLogRecord) {
	dates := ledger.SortedDates(groups)
	if len(dates) == 0 {
		fmt.Fprintln(out, "No logs found.")
		return
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	total := 0
	for i, date := range dates {
		records := groups[date]
		dayTotal := ledger.TotalMinutes(records)
		total += dayTotal

		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s  %s\n", bold.Sprint(date), faint.Sprintf("(%s)", ledger.FormatMinutes(dayTotal)))

		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 60
		tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Time"), bold.Sprint("Work item"), bold.Sprint("Description"))
		for _, r := range records {
			tbl.AddRow(r.LogID, ledger.FormatHHMM(r.TotalMinutes()), workItemLabel(r.WorkItem), r.Description)
		}
		tbl.RightAlign(1)
		fmt.Fprintln(out, tbl)
	}

	if len(dates) > 1 {
		fmt.Fprintf(out, "\n%s %s\n", bold.Sprint("Total"), ledger.FormatMinutes(total))
	}
}

func workItemLabel(w *model.WorkItemRef) string {
	if w == nil || w.ID == "" {
		return "-"
	}
	label := "#" + w.ID
	if w.Type != "" {
		label += " " + w.Type
	}
	if w.Title != "" {
		label += ": " + w.Title
	}
	return label
}

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/adolog/internal/ledger"
	"github.com/Tiliavir/adolog/internal/model"
	"github.com/Tiliavir/adolog/internal/timelog"
)

var (
	addDate        string
	addHours       int
	addMinutes     int
	addDescription string
	addWorkItem    string
	addOrg         string
	addProject     string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Log time, optionally against a work item",
	Example: `  adolog add --hours 1 --minutes 30 -m "Code review"
  adolog add --minutes 45 --work-item https://dev.azure.com/acme/Shop/_workitems/edit/4711
  adolog add --date yesterday --hours 2 --work-item 4711 --project Shop`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "Day to log: YYYY-MM-DD, today or yesterday (default today)")
	addCmd.Flags().IntVar(&addHours, "hours", 0, "Hours spent")
	addCmd.Flags().IntVar(&addMinutes, "minutes", 0, "Minutes spent (0-59)")
	addCmd.Flags().StringVarP(&addDescription, "description", "m", "", "What you worked on")
	addCmd.Flags().StringVarP(&addWorkItem, "work-item", "w", "", "Work item URL or id")
	addCmd.Flags().StringVar(&addOrg, "org", "", "Organization for a bare work item id (default from settings)")
	addCmd.Flags().StringVar(&addProject, "project", "", "Project for a bare work item id")
}

func runAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	date, err := ledger.ParseDate(addDate, a.now())
	if err != nil {
		return err
	}

	rec := model.TimeLogRecord{
		Date:        date,
		Hours:       addHours,
		Minutes:     addMinutes,
		Description: addDescription,
	}
	if addWorkItem != "" {
		org := addOrg
		if org == "" {
			org = a.organization()
		}
		ref, err := workItemRef(addWorkItem, org, addProject)
		if err != nil {
			return err
		}
		rec.WorkItem = &ref
	}

	if rec.DeveloperName, err = a.developer(ctx); err != nil {
		return err
	}
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}

	saved, err := svc.Save(ctx, rec)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Logged %s on %s", ledger.FormatMinutes(saved.TotalMinutes()), saved.Date)
	if label := timelog.Describe(saved); label != "" {
		fmt.Fprintf(out, ": %s", label)
	}
	fmt.Fprintf(out, " (id %s).\n", saved.LogID)
	printRemaining(out, svc, cmd, saved.DeveloperName, saved.Date)
	return nil
}

// printRemaining reports what is left of the day's cap. A failed lookup is
// only logged; the write already succeeded.
func printRemaining(out io.Writer, svc *timelog.Service, cmd *cobra.Command, developer, date string) {
	sum, err := svc.DaySummary(cmd.Context(), developer, date)
	if err != nil {
		return
	}
	fmt.Fprintf(out, "%s left on %s.\n", ledger.FormatMinutes(sum.RemainingMinutes), date)
}

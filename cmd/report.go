package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/adolog/internal/ledger"
	"github.com/Tiliavir/adolog/internal/model"
)

var (
	reportDate   string
	reportWeek   bool
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show time aggregated per work item",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDate, "date", "", "Day to report (default today)")
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "Report the whole week containing --date")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

const noWorkItem = "(no work item)"

type reportLine struct {
	WorkItem string `json:"workItem"`
	Title    string `json:"title,omitempty"`
	Project  string `json:"project,omitempty"`
	Minutes  int    `json:"minutes"`
}

type report struct {
	Period       string       `json:"period"`
	Developer    string       `json:"developer"`
	Lines        []reportLine `json:"workItems"`
	TotalMinutes int          `json:"totalMinutes"`
}

func runReport(cmd *cobra.Command, _ []string) error {
	switch reportFormat {
	case "md", "csv", "json":
	default:
		return fmt.Errorf("unknown format %q", reportFormat)
	}

	ctx := cmd.Context()
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	dates, err := selectedDates(reportDate, reportWeek, a.now())
	if err != nil {
		return err
	}
	dev, err := a.developer(ctx)
	if err != nil {
		return err
	}
	groups, err := a.fetchDays(cmd, dates, ledger.Filter{})
	if err != nil {
		return err
	}

	var records []model.TimeLogRecord
	for _, d := range ledger.SortedDates(groups) {
		records = append(records, groups[d]...)
	}
	rep := buildReport(periodLabel(dates), dev, records)
	return writeReport(cmd.OutOrStdout(), rep, reportFormat)
}

func periodLabel(dates []string) string {
	if len(dates) == 1 {
		return dates[0]
	}
	t, err := time.Parse(model.DateLayout, dates[0])
	if err != nil {
		return dates[0] + ".." + dates[len(dates)-1]
	}
	return ledger.ISOWeekLabel(t)
}

// buildReport sums minutes per work item, largest first.
func buildReport(period, developer string, records []model.TimeLogRecord) report {
	byKey := map[string]*reportLine{}
	var keys []string
	for _, r := range records {
		key, title, project := noWorkItem, "", ""
		if r.WorkItem != nil && r.WorkItem.ID != "" {
			key, title, project = "#"+r.WorkItem.ID, r.WorkItem.Title, r.WorkItem.Project
		}
		line, ok := byKey[key]
		if !ok {
			line = &reportLine{WorkItem: key, Title: title, Project: project}
			byKey[key] = line
			keys = append(keys, key)
		}
		if line.Title == "" {
			line.Title = title
		}
		line.Minutes += r.TotalMinutes()
	}

	rep := report{Period: period, Developer: developer, Lines: []reportLine{}}
	for _, k := range keys {
		rep.Lines = append(rep.Lines, *byKey[k])
		rep.TotalMinutes += byKey[k].Minutes
	}
	sort.SliceStable(rep.Lines, func(i, j int) bool {
		if rep.Lines[i].Minutes != rep.Lines[j].Minutes {
			return rep.Lines[i].Minutes > rep.Lines[j].Minutes
		}
		return rep.Lines[i].WorkItem < rep.Lines[j].WorkItem
	})
	return rep
}

func writeReport(out io.Writer, rep report, format string) error {
	switch format {
	case "csv":
		fmt.Fprintln(out, "work_item,title,project,minutes")
		for _, l := range rep.Lines {
			fmt.Fprintf(out, "%s,%s,%s,%d\n", csvEscape(l.WorkItem), csvEscape(l.Title), csvEscape(l.Project), l.Minutes)
		}
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	default:
		fmt.Fprintf(out, "## %s – %s\n\n", rep.Period, rep.Developer)
		fmt.Fprintln(out, "| Work item | Title | Time |")
		fmt.Fprintln(out, "|---|---|---:|")
		for _, l := range rep.Lines {
			fmt.Fprintf(out, "| %s | %s | %s |\n", l.WorkItem, mdEscape(l.Title), ledger.FormatMinutes(l.Minutes))
		}
		fmt.Fprintf(out, "| **Total** | | **%s** |\n", ledger.FormatMinutes(rep.TotalMinutes))
	}
	return nil
}

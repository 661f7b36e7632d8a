package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/adolog/internal/ledger"
	"github.com/Tiliavir/adolog/internal/model"
)

var (
	exportDate   string
	exportWeek   bool
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export logs to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDate, "date", "", "Day to export (default today)")
	exportCmd.Flags().BoolVar(&exportWeek, "week", true, "Export the whole week containing --date")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
}

func runExport(cmd *cobra.Command, _ []string) error {
	switch exportFormat {
	case "csv", "json", "md":
	default:
		return fmt.Errorf("unknown format %q", exportFormat)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	dates, err := selectedDates(exportDate, exportWeek, a.now())
	if err != nil {
		return err
	}
	groups, err := a.fetchDays(cmd, dates, ledger.Filter{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch exportFormat {
	case "json":
		records := []model.TimeLogRecord{}
		for _, d := range ledger.SortedDates(groups) {
			records = append(records, groups[d]...)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "md":
		printDays(out, groups)
	default:
		printCSV(out, groups)
	}
	return nil
}

func printCSV(out io.Writer, groups map[string][]model.TimeLogRecord) {
	fmt.Fprintln(out, "log_id,date,developer,organization,project,work_item_id,work_item_type,work_item_title,minutes,description")
	for _, d := range ledger.SortedDates(groups) {
		for _, r := range groups[d] {
			var w model.WorkItemRef
			if r.WorkItem != nil {
				w = *r.WorkItem
			}
			fields := []string{
				r.LogID.String(), r.Date, r.DeveloperName,
				w.Organization, w.Project, w.ID, w.Type, w.Title,
				strconv.Itoa(r.TotalMinutes()), r.Description,
			}
			for i := range fields {
				fields[i] = csvEscape(fields[i])
			}
			fmt.Fprintln(out, strings.Join(fields, ","))
		}
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// mdEscape keeps a value inside a single markdown table cell.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

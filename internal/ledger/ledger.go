// Package ledger holds the daily time rules: per-day totals, the daily cap
// and grouping/filtering of time logs.
package ledger

import (
	"sort"

	"github.com/Tiliavir/adolog/internal/model"
)

// DailyCapMinutes is the most time a developer may log on one calendar day.
const DailyCapMinutes = 8 * 60

// Capacity is the outcome of CheckCapacity.
type Capacity struct {
	Allowed bool
	// RemainingMinutes is what is left after the candidate when allowed,
	// otherwise what was left before it.
	RemainingMinutes int
}

// Filter narrows records by work item coordinates. Empty fields match
// everything; set fields must all match.
type Filter struct {
	Organization string
	ProjectID    string
	WorkItemID   string
}

// IsZero reports whether the filter matches every record.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// TotalMinutes sums hours*60+minutes over records.
func TotalMinutes(records []model.TimeLogRecord) int {
	total := 0
	for _, r := range records {
		total += r.TotalMinutes()
	}
	return total
}

// CheckCapacity decides whether candidateMinutes fit on a day that already
// holds existing. The record being edited, identified by exclude, is left out
// of the existing total so it is never counted twice.
func CheckCapacity(existing []model.TimeLogRecord, candidateMinutes int, exclude model.LogID) Capacity {
	used := 0
	for _, r := range existing {
		if !exclude.IsZero() && r.LogID == exclude {
			continue
		}
		used += r.TotalMinutes()
	}

	after := used + candidateMinutes
	if after <= DailyCapMinutes {
		return Capacity{Allowed: true, RemainingMinutes: DailyCapMinutes - after}
	}
	return Capacity{Allowed: false, RemainingMinutes: max(0, DailyCapMinutes-used)}
}

// GroupByDate buckets records by Date, keeping input order within a bucket.
func GroupByDate(records []model.TimeLogRecord) map[string][]model.TimeLogRecord {
	groups := make(map[string][]model.TimeLogRecord)
	for _, r := range records {
		groups[r.Date] = append(groups[r.Date], r)
	}
	return groups
}

// SortedDates returns the keys of groups in ascending order.
func SortedDates(groups map[string][]model.TimeLogRecord) []string {
	dates := make([]string, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Apply returns the records matching f, in input order. ProjectID matches
// either the project id or the project name.
func Apply(records []model.TimeLogRecord, f Filter) []model.TimeLogRecord {
	out := make([]model.TimeLogRecord, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filter) Matches(r model.TimeLogRecord) bool {
	if f.IsZero() {
		return true
	}
	w := r.WorkItem
	if w == nil {
		return false
	}
	if f.Organization != "" && f.Organization != w.Organization {
		return false
	}
	if f.ProjectID != "" && f.ProjectID != w.ProjectID && f.ProjectID != w.Project {
		return false
	}
	if f.WorkItemID != "" && f.WorkItemID != w.ID {
		return false
	}
	return true
}

// OnDay keeps records of the given developer on the given date. Backends may
// return more than was asked for.
func OnDay(records []model.TimeLogRecord, developer, date string) []model.TimeLogRecord {
	out := make([]model.TimeLogRecord, 0, len(records))
	for _, r := range records {
		if r.Date != date {
			continue
		}
		if developer != "" && r.DeveloperName != developer {
			continue
		}
		out = append(out, r)
	}
	return out
}

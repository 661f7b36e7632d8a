package ledger

import (
	"fmt"
	"time"

	"github.com/Tiliavir/adolog/internal/model"
)

// FormatMinutes renders minutes as "1h 40m", "45m" or "0m".
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%s%dh %dm", sign, h, m)
	}
	return fmt.Sprintf("%s%dm", sign, m)
}

// FormatHHMM renders minutes as HH:MM.
func FormatHHMM(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Today returns the calendar date of t.
func Today(t time.Time) string {
	return t.Format(model.DateLayout)
}

// WeekDays returns the seven dates, Monday first, of the ISO week containing t.
func WeekDays(t time.Time) []string {
	// Go's weekday: Sunday=0, Monday=1, ..., Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := time.Date(t.Year(), t.Month(), t.Day()-(wd-1), 0, 0, 0, 0, t.Location())
	days := make([]string, 7)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i).Format(model.DateLayout)
	}
	return days
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ParseDate accepts YYYY-MM-DD, "today" and "yesterday" relative to now.
func ParseDate(s string, now time.Time) (string, error) {
	switch s {
	case "", "today":
		return Today(now), nil
	case "yesterday":
		return Today(now.AddDate(0, 0, -1)), nil
	}
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return s, nil
}

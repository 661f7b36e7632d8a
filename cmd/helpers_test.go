package cmd

import (
	"testing"
	"time"

	"github.com/Tiliavir/adolog/internal/model"
)

func TestFormatChange(t *testing.T) {
	tests := []struct {
		delta int
		want  string
	}{
		{0, "unchanged"},
		{15, "+15m"},
		{90, "+1h 30m"},
		{-30, "-30m"},
	}
	for _, tt := range tests {
		if got := formatChange(tt.delta); got != tt.want {
			t.Errorf("formatChange(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "-"},
		{"short", "****"},
		{"abcdefghijkl", "****ijkl"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.input); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWorkItemRef(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		org     string
		project string
		want    model.WorkItemRef
		wantErr bool
	}{
		{
			name: "url",
			arg:  "https://dev.azure.com/acme/Shop%20Web/_workitems/edit/4711",
			want: model.WorkItemRef{ID: "4711", Organization: "acme", Project: "Shop Web"},
		},
		{
			name: "url ignores flags",
			arg:  "https://dev.azure.com/acme/Shop/_workitems/edit/12",
			org:  "other", project: "Other",
			want: model.WorkItemRef{ID: "12", Organization: "acme", Project: "Shop"},
		},
		{
			name: "bare id",
			arg:  "#4711",
			org:  "acme", project: "Shop",
			want: model.WorkItemRef{ID: "4711", Organization: "acme", Project: "Shop"},
		},
		{name: "bare id without project", arg: "4711", org: "acme", wantErr: true},
		{name: "bare id without org", arg: "4711", project: "Shop", wantErr: true},
		{name: "not a number", arg: "abc", org: "acme", project: "Shop", wantErr: true},
		{name: "foreign url", arg: "https://example.com/4711", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := workItemRef(tt.arg, tt.org, tt.project)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSelectedDates(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) // Wednesday

	days, err := selectedDates("", false, now)
	if err != nil || len(days) != 1 || days[0] != "2026-03-04" {
		t.Fatalf("today: %v %v", days, err)
	}

	days, err = selectedDates("2026-03-08", true, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 7 || days[0] != "2026-03-02" || days[6] != "2026-03-08" {
		t.Errorf("week: %v", days)
	}

	if _, err := selectedDates("03/02/2026", false, now); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestBuildReport(t *testing.T) {
	wi := func(id, title string) *model.WorkItemRef {
		return &model.WorkItemRef{ID: id, Title: title, Project: "Shop"}
	}
	records := []model.TimeLogRecord{
		{Date: "2026-03-02", Hours: 1, WorkItem: wi("7", "")},
		{Date: "2026-03-02", Minutes: 30},
		{Date: "2026-03-03", Hours: 2, WorkItem: wi("9", "Checkout")},
		{Date: "2026-03-03", Minutes: 30, WorkItem: wi("7", "Login")},
		{Date: "2026-03-04", Minutes: 20},
	}

	rep := buildReport("2026-W10", "Ada", records)

	if rep.TotalMinutes != 290 {
		t.Errorf("total = %d, want 290", rep.TotalMinutes)
	}
	want := []reportLine{
		{WorkItem: "#9", Title: "Checkout", Project: "Shop", Minutes: 120},
		{WorkItem: "#7", Title: "Login", Project: "Shop", Minutes: 90},
		{WorkItem: noWorkItem, Minutes: 50},
	}
	if len(rep.Lines) != len(want) {
		t.Fatalf("lines = %+v", rep.Lines)
	}
	for i := range want {
		if rep.Lines[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, rep.Lines[i], want[i])
		}
	}
}

func TestPeriodLabel(t *testing.T) {
	if got := periodLabel([]string{"2026-03-02"}); got != "2026-03-02" {
		t.Errorf("single day = %q", got)
	}
	week := []string{"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06", "2026-03-07", "2026-03-08"}
	if got := periodLabel(week); got != "2026-W10" {
		t.Errorf("week = %q", got)
	}
}

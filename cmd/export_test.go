package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Tiliavir/adolog/internal/model"
)

func TestCsvEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with space", "with space"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"", ""},
	}
	for _, tt := range tests {
		got := csvEscape(tt.input)
		if got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMdEscape(t *testing.T) {
	if got := mdEscape("a | b\nc"); got != `a \| b c` {
		t.Errorf("mdEscape = %q", got)
	}
}

func TestPrintCSV(t *testing.T) {
	groups := map[string][]model.TimeLogRecord{
		"2026-03-03": {{LogID: "2", Date: "2026-03-03", DeveloperName: "Ada", Hours: 1, Description: "plain"}},
		"2026-03-02": {{
			LogID: "1", Date: "2026-03-02", DeveloperName: "Ada", Minutes: 45, Description: "review, part 1",
			WorkItem: &model.WorkItemRef{ID: "4711", Organization: "acme", Project: "Shop", Type: "Bug", Title: "Login"},
		}},
	}

	var buf bytes.Buffer
	printCSV(&buf, groups)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if want := `1,2026-03-02,Ada,acme,Shop,4711,Bug,Login,45,"review, part 1"`; lines[1] != want {
		t.Errorf("line 1 = %q, want %q", lines[1], want)
	}
	if want := "2,2026-03-03,Ada,,,,,,60,plain"; lines[2] != want {
		t.Errorf("line 2 = %q, want %q", lines[2], want)
	}
}

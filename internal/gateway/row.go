package gateway

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/adolog/internal/model"
)

// Workbook table columns, in order.
const (
	colLogID = iota
	colProjectName
	colWorkItemID
	colWorkItemType
	colDate
	colDeveloperName
	colHours
	colMinutes
	colWorkItemURL
	colDescription

	columnCount
)

// Excel serial day 0.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// EncodeRow lays a record out in table column order. The work item title is
// not stored; the project id travels in the work item URL.
func EncodeRow(r model.TimeLogRecord) []any {
	row := make([]any, columnCount)
	row[colLogID] = logIDCell(r.LogID)
	row[colDate] = r.Date + "T00:00:00.000Z"
	row[colDeveloperName] = r.DeveloperName
	row[colHours] = r.Hours
	row[colMinutes] = r.Minutes
	row[colDescription] = r.Description

	row[colProjectName] = ""
	row[colWorkItemID] = ""
	row[colWorkItemType] = ""
	row[colWorkItemURL] = ""
	if w := r.WorkItem; w != nil {
		row[colProjectName] = w.Project
		row[colWorkItemID] = w.ID
		row[colWorkItemType] = w.Type
		row[colWorkItemURL] = workItemLink(*w)
	}
	return row
}

// projectIDParam marks a link whose project segment is a project id that
// happens to equal the project name.
const projectIDParam = "projectId"

// workItemLink is the browser link stored in the URL column. It carries the
// organization and, when it differs from the name, the project id.
func workItemLink(w model.WorkItemRef) string {
	link := w.URL()
	if link != "" && w.ProjectID != "" && w.ProjectID == w.Project {
		link += "?" + url.Values{projectIDParam: {w.ProjectID}}.Encode()
	}
	return link
}

// readWorkItemLink restores organization and project id from a link written
// by workItemLink.
func readWorkItemLink(w *model.WorkItemRef, link string) {
	org, project, _, ok := model.ParseWorkItemURL(link)
	if !ok {
		return
	}
	w.Organization = org
	if u, err := url.Parse(link); err == nil && u.Query().Has(projectIDParam) {
		w.ProjectID = u.Query().Get(projectIDParam)
		return
	}
	if project != w.Project {
		w.ProjectID = project
	}
}

// updateRow carries only the mutable columns; Graph leaves null cells as
// they are.
func updateRow(r model.TimeLogRecord) []any {
	row := make([]any, columnCount)
	row[colHours] = r.Hours
	row[colMinutes] = r.Minutes
	row[colDescription] = r.Description
	return row
}

// DecodeRow parses one table row. Cells may come back as strings or as
// numbers, and the date as ISO text or an Excel serial day.
func DecodeRow(values []any) (model.TimeLogRecord, error) {
	if len(values) < columnCount {
		return model.TimeLogRecord{}, fmt.Errorf("row has %d columns, want %d", len(values), columnCount)
	}

	date, err := cellDate(values[colDate])
	if err != nil {
		return model.TimeLogRecord{}, err
	}

	r := model.TimeLogRecord{
		LogID:         model.LogID(cellString(values[colLogID])),
		Date:          date,
		DeveloperName: cellString(values[colDeveloperName]),
		Hours:         cellInt(values[colHours]),
		Minutes:       cellInt(values[colMinutes]),
		Description:   cellString(values[colDescription]),
	}

	if id := cellString(values[colWorkItemID]); id != "" {
		w := &model.WorkItemRef{
			ID:      id,
			Type:    cellString(values[colWorkItemType]),
			Project: cellString(values[colProjectName]),
		}
		readWorkItemLink(w, cellString(values[colWorkItemURL]))
		r.WorkItem = w
	}
	return r, nil
}

func logIDCell(id model.LogID) any {
	if id.IsZero() {
		return ""
	}
	if n, ok := id.Int(); ok {
		return n
	}
	return id.String()
}

func cellString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return string(model.LogIDFromNumber(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

// cellInt reads a whole number; blank or unreadable cells count as zero.
func cellInt(v any) int {
	switch v := v.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		s := strings.TrimSpace(cellString(v))
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
		return 0
	}
}

func cellDate(v any) (string, error) {
	switch v := v.(type) {
	case float64:
		return serialDate(v), nil
	default:
		s := strings.TrimSpace(cellString(v))
		if s == "" {
			return "", fmt.Errorf("row has no date")
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return serialDate(f), nil
		}
		day := normalizeDate(s)
		if _, err := time.Parse(model.DateLayout, day); err != nil {
			return "", fmt.Errorf("unreadable date %q", s)
		}
		return day, nil
	}
}

func serialDate(days float64) string {
	return excelEpoch.AddDate(0, 0, int(math.Floor(days))).Format(model.DateLayout)
}

package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/Tiliavir/adolog/internal/apperrors"
	"github.com/Tiliavir/adolog/internal/model"
)

const (
	opFetch  = "fetch logs"
	opInsert = "add log"
	opUpdate = "update log"
)

// LogEntry is the wire shape of a time log on the REST log service. Work item
// fields are flat.
type LogEntry struct {
	LogID         model.LogID `json:"logId,omitempty"`
	Date          string      `json:"date" validate:"required,datetime=2006-01-02"`
	DeveloperName string      `json:"developerName" validate:"required"`
	Hours         int         `json:"hours" validate:"gte=0"`
	Minutes       int         `json:"minutes" validate:"gte=0,lte=59"`
	Description   string      `json:"description"`
	Organization  string      `json:"organization,omitempty"`
	ProjectName   string      `json:"projectName,omitempty"`
	ProjectID     string      `json:"projectId,omitempty"`
	WorkItemID    string      `json:"workItemId,omitempty"`
	WorkItemTitle string      `json:"workItemTitle,omitempty"`
	WorkItemType  string      `json:"workItemType,omitempty"`
}

// LogUpdate is the body of /api/updateLog. Identity fields are immutable once
// logged and are never sent.
type LogUpdate struct {
	LogID       model.LogID `json:"logId" validate:"required"`
	Hours       int         `json:"hours" validate:"gte=0"`
	Minutes     int         `json:"minutes" validate:"gte=0,lte=59"`
	Description string      `json:"description"`
}

// AddLogResponse is returned by /api/addLog.
type AddLogResponse struct {
	LogID model.LogID `json:"logId"`
}

// EntryFromRecord flattens a record to its wire shape.
func EntryFromRecord(r model.TimeLogRecord) LogEntry {
	e := LogEntry{
		LogID:         r.LogID,
		Date:          r.Date,
		DeveloperName: r.DeveloperName,
		Hours:         r.Hours,
		Minutes:       r.Minutes,
		Description:   r.Description,
	}
	if w := r.WorkItem; w != nil {
		e.Organization = w.Organization
		e.ProjectName = w.Project
		e.ProjectID = w.ProjectID
		e.WorkItemID = w.ID
		e.WorkItemTitle = w.Title
		e.WorkItemType = w.Type
	}
	return e
}

// Record rebuilds the record. WorkItem is nil when no work item field is set.
func (e LogEntry) Record() model.TimeLogRecord {
	r := model.TimeLogRecord{
		LogID:         e.LogID,
		Date:          normalizeDate(e.Date),
		DeveloperName: e.DeveloperName,
		Hours:         e.Hours,
		Minutes:       e.Minutes,
		Description:   e.Description,
	}
	if e.WorkItemID != "" || e.ProjectName != "" || e.ProjectID != "" || e.Organization != "" ||
		e.WorkItemTitle != "" || e.WorkItemType != "" {
		r.WorkItem = &model.WorkItemRef{
			ID:           e.WorkItemID,
			Title:        e.WorkItemTitle,
			Type:         e.WorkItemType,
			Organization: e.Organization,
			Project:      e.ProjectName,
			ProjectID:    e.ProjectID,
		}
	}
	return r
}

// normalizeDate cuts an ISO timestamp down to its calendar day.
func normalizeDate(s string) string {
	if i := strings.IndexByte(s, 'T'); i == len(model.DateLayout) {
		return s[:i]
	}
	return s
}

// RESTGateway talks to the time log service.
type RESTGateway struct {
	baseURL string
	client  *http.Client
}

// NewREST returns a gateway for the service at baseURL. A nil client means
// http.DefaultClient.
func NewREST(baseURL string, client *http.Client) *RESTGateway {
	return &RESTGateway{baseURL: strings.TrimRight(baseURL, "/"), client: orDefault(client)}
}

func (g *RESTGateway) FetchAll(ctx context.Context, developer, date string) ([]model.TimeLogRecord, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	if developer != "" {
		q.Set("developer", developer)
	}
	endpoint := g.baseURL + "/api/getLogs"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var entries []LogEntry
	if err := doJSON(ctx, g.client, opFetch, http.MethodGet, endpoint, nil, &entries); err != nil {
		return nil, err
	}
	records := make([]model.TimeLogRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.Record())
	}
	return records, nil
}

func (g *RESTGateway) Upsert(ctx context.Context, rec model.TimeLogRecord) (model.LogID, error) {
	if !rec.LogID.IsZero() {
		body := LogUpdate{LogID: rec.LogID, Hours: rec.Hours, Minutes: rec.Minutes, Description: rec.Description}
		if err := doJSON(ctx, g.client, opUpdate, http.MethodPost, g.baseURL+"/api/updateLog", body, nil); err != nil {
			return "", err
		}
		return rec.LogID, nil
	}

	var resp AddLogResponse
	if err := doJSON(ctx, g.client, opInsert, http.MethodPost, g.baseURL+"/api/addLog", EntryFromRecord(rec), &resp); err != nil {
		return "", err
	}
	if resp.LogID.IsZero() {
		return "", &apperrors.GatewayError{Operation: opInsert, Message: "backend returned no log id"}
	}
	return resp.LogID, nil
}

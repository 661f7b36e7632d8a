// Package timelog is the time log use case layer: it lists a day's logs and
// saves new or edited logs within the daily cap.
package timelog

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Tiliavir/adolog/internal/apperrors"
	"github.com/Tiliavir/adolog/internal/gateway"
	"github.com/Tiliavir/adolog/internal/ledger"
	"github.com/Tiliavir/adolog/internal/logger"
	"github.com/Tiliavir/adolog/internal/model"
	"github.com/Tiliavir/adolog/internal/workitem"
)

// WorkItemSource looks up work item details for new logs.
type WorkItemSource interface {
	Get(ctx context.Context, organization, project string, id int, relations bool) (workitem.Details, error)
}

// Summary is a day's logs and how much of the cap they use.
type Summary struct {
	Date             string
	Records          []model.TimeLogRecord
	TotalMinutes     int
	RemainingMinutes int
}

type Service struct {
	gw       gateway.Gateway
	items    WorkItemSource
	validate *validator.Validate
	log      logger.Logger

	// mu makes Save's read, check and write one step within this process.
	// Other processes writing to the same backend are not coordinated.
	mu sync.Mutex
}

// NewService wires the service. items may be nil, in which case new logs are
// saved without work item enrichment.
func NewService(gw gateway.Gateway, items WorkItemSource, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		gw:       gw,
		items:    items,
		validate: newValidator(),
		log:      log.WithGroup("timelog"),
	}
}

// List returns the developer's logs on date that match f.
func (s *Service) List(ctx context.Context, developer, date string, f ledger.Filter) ([]model.TimeLogRecord, error) {
	day, err := s.day(ctx, developer, date)
	if err != nil {
		return nil, err
	}
	return ledger.Apply(day, f), nil
}

// ListDays returns the developer's logs on any of dates, grouped by date.
func (s *Service) ListDays(ctx context.Context, developer string, dates []string, f ledger.Filter) (map[string][]model.TimeLogRecord, error) {
	if len(dates) == 1 {
		day, err := s.List(ctx, developer, dates[0], f)
		if err != nil {
			return nil, err
		}
		return ledger.GroupByDate(day), nil
	}

	all, err := s.gw.FetchAll(ctx, developer, "")
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(dates))
	for _, d := range dates {
		wanted[d] = true
	}
	var kept []model.TimeLogRecord
	for _, r := range all {
		if wanted[r.Date] && (developer == "" || r.DeveloperName == developer) {
			kept = append(kept, r)
		}
	}
	return ledger.GroupByDate(ledger.Apply(kept, f)), nil
}

// DaySummary totals the developer's logs on date against the daily cap.
func (s *Service) DaySummary(ctx context.Context, developer, date string) (Summary, error) {
	day, err := s.day(ctx, developer, date)
	if err != nil {
		return Summary{}, err
	}
	total := ledger.TotalMinutes(day)
	return Summary{
		Date:             date,
		Records:          day,
		TotalMinutes:     total,
		RemainingMinutes: max(0, ledger.DailyCapMinutes-total),
	}, nil
}

// Save inserts rec when it has no LogID and updates it otherwise. The daily
// cap is checked before anything is written; an edited record's previous
// minutes do not count against it.
func (s *Service) Save(ctx context.Context, rec model.TimeLogRecord) (model.TimeLogRecord, error) {
	if err := s.validate.Struct(rec); err != nil {
		return rec, invalidRecord(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	day, err := s.day(ctx, rec.DeveloperName, rec.Date)
	if err != nil {
		return rec, err
	}

	capacity := ledger.CheckCapacity(day, rec.TotalMinutes(), rec.LogID)
	if !capacity.Allowed {
		return rec, &apperrors.CapacityError{
			Date:             rec.Date,
			RequestedMinutes: rec.TotalMinutes(),
			RemainingMinutes: capacity.RemainingMinutes,
		}
	}

	if rec.LogID.IsZero() {
		s.enrich(ctx, &rec)
	}

	id, err := s.gw.Upsert(ctx, rec)
	if err != nil {
		return rec, err
	}
	rec.LogID = id
	s.log.Info("time logged",
		"log_id", id.String(),
		"date", rec.Date,
		"minutes", rec.TotalMinutes(),
		"remaining", capacity.RemainingMinutes,
	)
	return rec, nil
}

func (s *Service) day(ctx context.Context, developer, date string) ([]model.TimeLogRecord, error) {
	all, err := s.gw.FetchAll(ctx, developer, date)
	if err != nil {
		return nil, err
	}
	return ledger.OnDay(all, developer, date), nil
}

// enrich fills in the work item title and type. A failed lookup leaves the
// details empty and does not stop the save.
func (s *Service) enrich(ctx context.Context, rec *model.TimeLogRecord) {
	if s.items == nil || rec.WorkItem == nil || rec.WorkItem.ID == "" || (rec.WorkItem.Title != "" && rec.WorkItem.Type != "") {
		return
	}
	ref := *rec.WorkItem
	w := &ref
	rec.WorkItem = w
	id, err := strconv.Atoi(w.ID)
	if err != nil {
		s.log.Warn("work item id is not numeric, skipping lookup", "work_item", w.ID)
		return
	}
	project := w.ProjectID
	if project == "" {
		project = w.Project
	}

	d, err := s.items.Get(ctx, w.Organization, project, id, false)
	if err != nil {
		s.log.Warn("work item lookup failed, saving without details", "work_item", w.ID, "error", err)
		return
	}
	if w.Title == "" {
		w.Title = d.Title
	}
	if w.Type == "" {
		w.Type = d.Type
	}
	if w.Project == "" {
		w.Project = d.Project
	}
	if w.ProjectID == "" {
		w.ProjectID = d.ProjectID
	}
}

// Describe is a one-line label for a record, used in CLI output and logs.
func Describe(r model.TimeLogRecord) string {
	if r.WorkItem == nil || r.WorkItem.ID == "" {
		return r.Description
	}
	label := fmt.Sprintf("#%s", r.WorkItem.ID)
	if r.WorkItem.Title != "" {
		label += " " + r.WorkItem.Title
	}
	return label
}

package timelog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/adolog/internal/apperrors"
	"github.com/Tiliavir/adolog/internal/ledger"
	"github.com/Tiliavir/adolog/internal/model"
	"github.com/Tiliavir/adolog/internal/timelog"
	"github.com/Tiliavir/adolog/internal/workitem"
)

// fakeGateway keeps records in memory and ignores the date hint, like the
// workbook backend.
type fakeGateway struct {
	mu       sync.Mutex
	records  []model.TimeLogRecord
	upserts  []model.TimeLogRecord
	fetchErr error
	nextID   int
}

func (g *fakeGateway) FetchAll(_ context.Context, _, _ string) ([]model.TimeLogRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	return append([]model.TimeLogRecord(nil), g.records...), nil
}

func (g *fakeGateway) Upsert(_ context.Context, rec model.TimeLogRecord) (model.LogID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.upserts = append(g.upserts, rec)
	if rec.LogID.IsZero() {
		g.nextID++
		rec.LogID = model.LogID(string(rune('a' + g.nextID - 1)))
		g.records = append(g.records, rec)
		return rec.LogID, nil
	}
	for i := range g.records {
		if g.records[i].LogID == rec.LogID {
			g.records[i].Hours, g.records[i].Minutes, g.records[i].Description = rec.Hours, rec.Minutes, rec.Description
		}
	}
	return rec.LogID, nil
}

type fakeItems struct {
	details workitem.Details
	err     error
	calls   int
}

func (f *fakeItems) Get(_ context.Context, _, _ string, _ int, _ bool) (workitem.Details, error) {
	f.calls++
	return f.details, f.err
}

func existing(id, date, dev string, h, m int) model.TimeLogRecord {
	return model.TimeLogRecord{LogID: model.LogID(id), Date: date, DeveloperName: dev, Hours: h, Minutes: m}
}

func TestSaveInsert(t *testing.T) {
	gw := &fakeGateway{}
	items := &fakeItems{details: workitem.Details{ID: 4711, Title: "Checkout", Type: "Task", Project: "Web", ProjectID: "p-1"}}
	svc := timelog.NewService(gw, items, nil)
	in := model.TimeLogRecord{
		Date: "2026-03-02", DeveloperName: "Ada", Hours: 1, Minutes: 30,
		WorkItem: &model.WorkItemRef{ID: "4711", Organization: "contoso", Project: "Web"},
	}

	saved, err := svc.Save(t.Context(), in)

	require.NoError(t, err)
	assert.Equal(t, model.LogID("a"), saved.LogID)
	assert.Equal(t, "Checkout", saved.WorkItem.Title)
	assert.Equal(t, "Task", saved.WorkItem.Type)
	assert.Equal(t, "p-1", saved.WorkItem.ProjectID)
	assert.Empty(t, in.WorkItem.Title, "caller's record is not modified")
	require.Len(t, gw.upserts, 1)
	assert.Equal(t, "Checkout", gw.upserts[0].WorkItem.Title)
}

func TestSaveEnrichmentFailureDegrades(t *testing.T) {
	gw := &fakeGateway{}
	items := &fakeItems{err: errors.New("boom")}
	svc := timelog.NewService(gw, items, nil)

	saved, err := svc.Save(t.Context(), model.TimeLogRecord{
		Date: "2026-03-02", DeveloperName: "Ada", Minutes: 15,
		WorkItem: &model.WorkItemRef{ID: "4711", Organization: "contoso", Project: "Web"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, items.calls)
	assert.Empty(t, saved.WorkItem.Title)
	assert.Len(t, gw.upserts, 1)
}

func TestSaveCapacity(t *testing.T) {
	t.Run("rejected before any write", func(t *testing.T) {
		gw := &fakeGateway{records: []model.TimeLogRecord{existing("1", "2026-03-02", "Ada", 7, 30)}}
		svc := timelog.NewService(gw, nil, nil)

		_, err := svc.Save(t.Context(), model.TimeLogRecord{Date: "2026-03-02", DeveloperName: "Ada", Minutes: 45})

		require.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
		var ce *apperrors.CapacityError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, 30, ce.RemainingMinutes)
		assert.Equal(t, 45, ce.RequestedMinutes)
		assert.Empty(t, gw.upserts)
	})

	t.Run("other days and developers do not count", func(t *testing.T) {
		gw := &fakeGateway{records: []model.TimeLogRecord{
			existing("1", "2026-03-01", "Ada", 8, 0),
			existing("2", "2026-03-02", "Grace", 8, 0),
		}}
		svc := timelog.NewService(gw, nil, nil)

		_, err := svc.Save(t.Context(), model.TimeLogRecord{Date: "2026-03-02", DeveloperName: "Ada", Hours: 8})

		require.NoError(t, err)
	})

	t.Run("edit replaces own minutes", func(t *testing.T) {
		gw := &fakeGateway{records: []model.TimeLogRecord{
			existing("1", "2026-03-02", "Ada", 6, 0),
			existing("2", "2026-03-02", "Ada", 2, 0),
		}}
		svc := timelog.NewService(gw, &fakeItems{}, nil)

		saved, err := svc.Save(t.Context(), model.TimeLogRecord{LogID: "2", Date: "2026-03-02", DeveloperName: "Ada", Hours: 1, Minutes: 59, Description: "shorter"})

		require.NoError(t, err)
		assert.Equal(t, model.LogID("2"), saved.LogID)
		require.Len(t, gw.upserts, 1)
		assert.Equal(t, model.LogID("2"), gw.upserts[0].LogID)
	})
}

func TestSaveValidation(t *testing.T) {
	tests := []struct {
		name string
		rec  model.TimeLogRecord
		want string
	}{
		{"missing date", model.TimeLogRecord{DeveloperName: "Ada", Hours: 1}, "date is required"},
		{"bad date", model.TimeLogRecord{Date: "02.03.2026", DeveloperName: "Ada", Hours: 1}, "date must be a YYYY-MM-DD date"},
		{"missing developer", model.TimeLogRecord{Date: "2026-03-02", Hours: 1}, "developerName is required"},
		{"minutes out of range", model.TimeLogRecord{Date: "2026-03-02", DeveloperName: "Ada", Minutes: 60}, "minutes must be at most 59"},
		{"negative hours", model.TimeLogRecord{Date: "2026-03-02", DeveloperName: "Ada", Hours: -1, Minutes: 30}, "hours must be at least 0"},
		{"nothing logged", model.TimeLogRecord{Date: "2026-03-02", DeveloperName: "Ada"}, "minutes no time logged"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gw := &fakeGateway{}
			svc := timelog.NewService(gw, nil, nil)

			_, err := svc.Save(t.Context(), tc.rec)

			require.ErrorIs(t, err, apperrors.ErrInvalidRecord)
			assert.Contains(t, err.Error(), tc.want)
			assert.Empty(t, gw.upserts)
		})
	}
}

func TestSaveLargeHoursHitCapNotValidation(t *testing.T) {
	gw := &fakeGateway{}
	svc := timelog.NewService(gw, nil, nil)

	_, err := svc.Save(t.Context(), model.TimeLogRecord{Date: "2026-03-02", DeveloperName: "Ada", Hours: 25})

	require.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidRecord)
	assert.Empty(t, gw.upserts)
}

func TestSaveGatewayError(t *testing.T) {
	gw := &fakeGateway{fetchErr: &apperrors.GatewayError{Operation: "fetch logs", HTTPStatus: 503, Message: "down"}}
	svc := timelog.NewService(gw, nil, nil)

	_, err := svc.Save(t.Context(), model.TimeLogRecord{Date: "2026-03-02", DeveloperName: "Ada", Hours: 1})

	require.ErrorIs(t, err, apperrors.ErrGateway)
	assert.Empty(t, gw.upserts)
}

func TestSaveSerializesConcurrentWrites(t *testing.T) {
	gw := &fakeGateway{}
	svc := timelog.NewService(gw, nil, nil)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Save(context.Background(), model.TimeLogRecord{Date: "2026-03-02", DeveloperName: "Ada", Hours: 4})
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 480, ledger.TotalMinutes(gw.records))
}

func TestListAndSummary(t *testing.T) {
	gw := &fakeGateway{records: []model.TimeLogRecord{
		existing("1", "2026-03-02", "Ada", 1, 0),
		existing("2", "2026-03-02", "Ada", 2, 30),
		existing("3", "2026-03-03", "Ada", 1, 0),
		existing("4", "2026-03-02", "Grace", 1, 0),
	}}
	gw.records[1].WorkItem = &model.WorkItemRef{ID: "7", Organization: "contoso"}
	svc := timelog.NewService(gw, nil, nil)

	all, err := svc.List(t.Context(), "Ada", "2026-03-02", ledger.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.List(t.Context(), "Ada", "2026-03-02", ledger.Filter{Organization: "contoso"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, model.LogID("2"), filtered[0].LogID)

	sum, err := svc.DaySummary(t.Context(), "Ada", "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, 210, sum.TotalMinutes)
	assert.Equal(t, 270, sum.RemainingMinutes)

	days, err := svc.ListDays(t.Context(), "Ada", []string{"2026-03-02", "2026-03-03", "2026-03-04"}, ledger.Filter{})
	require.NoError(t, err)
	assert.Len(t, days, 2)
	assert.Len(t, days["2026-03-02"], 2)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "mail", timelog.Describe(model.TimeLogRecord{Description: "mail"}))
	assert.Equal(t, "#7 Fix login", timelog.Describe(model.TimeLogRecord{WorkItem: &model.WorkItemRef{ID: "7", Title: "Fix login"}}))
}

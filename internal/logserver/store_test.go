package logserver_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/adolog/internal/gateway"
	"github.com/Tiliavir/adolog/internal/logserver"
	"github.com/Tiliavir/adolog/internal/model"
)

func stores(t *testing.T) map[string]logserver.Store {
	t.Helper()
	sqlite, err := logserver.OpenSQLite(filepath.Join(t.TempDir(), "db", "logs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]logserver.Store{
		"sqlite": sqlite,
		"files":  logserver.NewFileStore(t.TempDir()),
	}
}

func TestStores(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			empty, err := store.List(ctx, "", "")
			require.NoError(t, err)
			assert.Empty(t, empty)

			id1, err := store.Add(ctx, gateway.LogEntry{
				Date: "2026-03-02", DeveloperName: "Ada", Hours: 1, Minutes: 30, Description: "review",
				Organization: "contoso", ProjectName: "Web", ProjectID: "p-1", WorkItemID: "4711",
				WorkItemTitle: "Checkout", WorkItemType: "Task",
			})
			require.NoError(t, err)
			require.False(t, id1.IsZero())

			id2, err := store.Add(ctx, gateway.LogEntry{Date: "2026-03-03", DeveloperName: "Ada", Minutes: 15})
			require.NoError(t, err)
			_, err = store.Add(ctx, gateway.LogEntry{Date: "2026-03-02", DeveloperName: "Grace", Hours: 2})
			require.NoError(t, err)
			assert.NotEqual(t, id1, id2)

			day, err := store.List(ctx, "Ada", "2026-03-02")
			require.NoError(t, err)
			require.Len(t, day, 1)
			assert.Equal(t, gateway.LogEntry{
				LogID: id1, Date: "2026-03-02", DeveloperName: "Ada", Hours: 1, Minutes: 30, Description: "review",
				Organization: "contoso", ProjectName: "Web", ProjectID: "p-1", WorkItemID: "4711",
				WorkItemTitle: "Checkout", WorkItemType: "Task",
			}, day[0])

			ada, err := store.List(ctx, "Ada", "")
			require.NoError(t, err)
			assert.Len(t, ada, 2)

			all, err := store.List(ctx, "", "2026-03-02")
			require.NoError(t, err)
			assert.Len(t, all, 2)

			require.NoError(t, store.Update(ctx, gateway.LogUpdate{LogID: id1, Hours: 2, Minutes: 5, Description: "longer review"}))
			day, err = store.List(ctx, "Ada", "2026-03-02")
			require.NoError(t, err)
			require.Len(t, day, 1)
			assert.Equal(t, 2, day[0].Hours)
			assert.Equal(t, 5, day[0].Minutes)
			assert.Equal(t, "longer review", day[0].Description)
			assert.Equal(t, "4711", day[0].WorkItemID, "identity fields are kept")

			err = store.Update(ctx, gateway.LogUpdate{LogID: model.LogID("99999"), Hours: 1})
			require.ErrorIs(t, err, logserver.ErrNotFound)
		})
	}
}

package logserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/adolog/internal/apperrors"
	"github.com/Tiliavir/adolog/internal/gateway"
	"github.com/Tiliavir/adolog/internal/logserver"
	"github.com/Tiliavir/adolog/internal/model"
)

// The REST gateway and the server must agree on the wire contract.
func TestGatewayAgainstServer(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(logserver.NewRouter(store, nil))
			t.Cleanup(srv.Close)
			gw := gateway.NewREST(srv.URL, srv.Client())
			ctx := t.Context()

			rec := model.TimeLogRecord{
				Date: "2026-03-02", DeveloperName: "Ada", Hours: 1, Minutes: 30, Description: "review",
				WorkItem: &model.WorkItemRef{ID: "4711", Title: "Checkout", Type: "Task", Organization: "contoso", Project: "Web", ProjectID: "p-1"},
			}
			id, err := gw.Upsert(ctx, rec)
			require.NoError(t, err)
			require.False(t, id.IsZero())

			got, err := gw.FetchAll(ctx, "Ada", "2026-03-02")
			require.NoError(t, err)
			require.Len(t, got, 1)
			rec.LogID = id
			assert.Equal(t, rec, got[0])

			rec.Minutes = 45
			rec.Description = "edited"
			_, err = gw.Upsert(ctx, rec)
			require.NoError(t, err)

			got, err = gw.FetchAll(ctx, "Ada", "2026-03-02")
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, 45, got[0].Minutes)
			assert.Equal(t, "edited", got[0].Description)

			rec.LogID = "404040"
			_, err = gw.Upsert(ctx, rec)
			require.ErrorIs(t, err, apperrors.ErrGateway)
		})
	}
}

func TestHandlers(t *testing.T) {
	srv := httptest.NewServer(logserver.NewRouter(logserver.NewFileStore(t.TempDir()), nil))
	t.Cleanup(srv.Close)

	post := func(path, body string) (*http.Response, logserver.ErrorResponse) {
		resp, err := srv.Client().Post(srv.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		var e logserver.ErrorResponse
		data, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(data, &e)
		return resp, e
	}

	t.Run("validation", func(t *testing.T) {
		resp, e := post("/api/addLog", `{"date":"02.03.2026","hours":1,"minutes":75}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, logserver.ValidationErrorType, e.Error)
		assert.Contains(t, e.Fields, "date")
		assert.Contains(t, e.Fields, "developerName")
		assert.Contains(t, e.Fields, "minutes")
	})

	t.Run("bad json", func(t *testing.T) {
		resp, e := post("/api/updateLog", `{"logId":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, logserver.DecodingErrorType, e.Error)
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/api/addLog")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("bad date query", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/api/getLogs?date=yesterday")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/api/getLogs?developer=nobody")
		require.NoError(t, err)
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("health", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestServerRunStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := logserver.NewServer(ln.Addr().String(), logserver.NewFileStore(t.TempDir()), nil)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

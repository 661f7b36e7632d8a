// Package gateway reads and writes time logs against the configured backend:
// the REST log service or an Excel workbook table reached through Microsoft
// Graph.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Tiliavir/adolog/internal/apperrors"
	"github.com/Tiliavir/adolog/internal/model"
)

const maxErrorBody = 512

// Gateway is a time log backend. Neither implementation retries.
type Gateway interface {
	// FetchAll returns the developer's records. Backends may ignore the
	// date hint, so callers must filter by exact date themselves.
	FetchAll(ctx context.Context, developer, date string) ([]model.TimeLogRecord, error)
	// Upsert inserts the record when its LogID is zero and returns the new
	// id. Otherwise only hours, minutes and description are updated.
	Upsert(ctx context.Context, rec model.TimeLogRecord) (model.LogID, error)
}

// doJSON sends body as JSON (when non-nil) and decodes a 2xx response into
// out (when non-nil). Every failure is a *apperrors.GatewayError.
func doJSON(ctx context.Context, client *http.Client, op, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &apperrors.GatewayError{Operation: op, Message: "encoding request", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &apperrors.GatewayError{Operation: op, Message: "creating request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return &apperrors.GatewayError{Operation: op, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperrors.GatewayError{Operation: op, HTTPStatus: resp.StatusCode, Message: "reading response body", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apperrors.GatewayError{Operation: op, HTTPStatus: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &apperrors.GatewayError{Operation: op, HTTPStatus: resp.StatusCode, Message: "decoding response", Err: err}
	}
	return nil
}

// errorMessage pulls a readable message out of an error body. Graph wraps it
// in {"error":{"message":...}}, the log service in
// {"error":"...","message":"..."}.
func errorMessage(body []byte, status string) string {
	var graph struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &graph) == nil && graph.Error.Message != "" {
		return fmt.Sprintf("%s: %s", graph.Error.Code, graph.Error.Message)
	}
	var plain struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &plain) == nil {
		switch {
		case plain.Error != "" && plain.Message != "":
			return plain.Error + ": " + plain.Message
		case plain.Error != "":
			return plain.Error
		case plain.Message != "":
			return plain.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return status
	}
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return msg
}

func orDefault(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}

// Package logserver is a small REST backend for time logs. It serves the
// contract the REST gateway speaks, so adolog can run without a workbook.
package logserver

import (
	"context"
	"errors"

	"github.com/Tiliavir/adolog/internal/gateway"
	"github.com/Tiliavir/adolog/internal/model"
)

var ErrNotFound = errors.New("log not found")

// Store persists time logs for the server. It does not enforce the daily cap.
type Store interface {
	// List returns logs matching developer and date; empty values match all.
	List(ctx context.Context, developer, date string) ([]gateway.LogEntry, error)
	Add(ctx context.Context, e gateway.LogEntry) (model.LogID, error)
	// Update changes hours, minutes and description. Returns ErrNotFound for
	// unknown ids.
	Update(ctx context.Context, u gateway.LogUpdate) error
	Close() error
}

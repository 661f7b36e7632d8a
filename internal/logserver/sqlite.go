package logserver

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/Tiliavir/adolog/internal/gateway"
	"github.com/Tiliavir/adolog/internal/model"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLiteStore keeps logs in a single SQLite database file.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	return goose.Up(s.conn, "migrations")
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) List(ctx context.Context, developer, date string) ([]gateway.LogEntry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, log_date, developer_name, hours, minutes, description,
		       organization, project_name, project_id, work_item_id, work_item_title, work_item_type
		FROM time_logs
		WHERE (? = '' OR developer_name = ?) AND (? = '' OR log_date = ?)
		ORDER BY log_date, id
	`, developer, developer, date, date)
	if err != nil {
		return nil, fmt.Errorf("querying logs: %w", err)
	}
	defer rows.Close()

	entries := []gateway.LogEntry{}
	for rows.Next() {
		var (
			id int64
			e  gateway.LogEntry
		)
		if err := rows.Scan(&id, &e.Date, &e.DeveloperName, &e.Hours, &e.Minutes, &e.Description,
			&e.Organization, &e.ProjectName, &e.ProjectID, &e.WorkItemID, &e.WorkItemTitle, &e.WorkItemType); err != nil {
			return nil, fmt.Errorf("scanning log: %w", err)
		}
		e.LogID = model.LogID(strconv.FormatInt(id, 10))
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Add(ctx context.Context, e gateway.LogEntry) (model.LogID, error) {
	result, err := s.conn.ExecContext(ctx, `
		INSERT INTO time_logs (log_date, developer_name, hours, minutes, description,
		                       organization, project_name, project_id, work_item_id, work_item_title, work_item_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Date, e.DeveloperName, e.Hours, e.Minutes, e.Description,
		e.Organization, e.ProjectName, e.ProjectID, e.WorkItemID, e.WorkItemTitle, e.WorkItemType)
	if err != nil {
		return "", fmt.Errorf("inserting log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("reading log id: %w", err)
	}
	return model.LogID(strconv.FormatInt(id, 10)), nil
}

func (s *SQLiteStore) Update(ctx context.Context, u gateway.LogUpdate) error {
	id, ok := u.LogID.Int()
	if !ok {
		return ErrNotFound
	}
	result, err := s.conn.ExecContext(ctx, `
		UPDATE time_logs
		SET hours = ?, minutes = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, u.Hours, u.Minutes, u.Description, id)
	if err != nil {
		return fmt.Errorf("updating log: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating log: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

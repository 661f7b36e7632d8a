package logserver

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Tiliavir/adolog/internal/gateway"
	"github.com/Tiliavir/adolog/internal/model"
)

// dayFile is the on-disk layout of one day.
type dayFile struct {
	Date string             `json:"date"`
	Logs []gateway.LogEntry `json:"logs"`
}

// FileStore keeps one JSON file per day under base/YYYY/MM/DD.json. Log ids
// start with the day they belong to, so updates touch a single file.
type FileStore struct {
	base string
	now  func() time.Time
	mu   sync.Mutex
}

func NewFileStore(base string) *FileStore {
	return &FileStore{base: base, now: time.Now}
}

func (s *FileStore) Close() error { return nil }

// dayFilePath returns the path for the given date's JSON file.
func (s *FileStore) dayFilePath(day time.Time) string {
	return filepath.Join(s.base, day.Format("2006"), day.Format("01"), day.Format("02")+".json")
}

// loadDay returns an empty dayFile when the file does not exist.
func (s *FileStore) loadDay(day time.Time) (dayFile, error) {
	path := s.dayFilePath(day)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return dayFile{Date: day.Format(model.DateLayout), Logs: []gateway.LogEntry{}}, nil
	}
	if err != nil {
		return dayFile{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	return decodeDay(path, data)
}

func decodeDay(path string, data []byte) (dayFile, error) {
	var df dayFile
	if err := json.Unmarshal(data, &df); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return dayFile{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return df, nil
}

// saveDay atomically writes the file for day.
func (s *FileStore) saveDay(day time.Time, df dayFile) error {
	path := s.dayFilePath(day)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

func (s *FileStore) List(_ context.Context, developer, date string) ([]gateway.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var days []dayFile
	if date != "" {
		day, err := time.Parse(model.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", date, err)
		}
		df, err := s.loadDay(day)
		if err != nil {
			return nil, err
		}
		days = append(days, df)
	} else {
		var err error
		if days, err = s.loadAll(); err != nil {
			return nil, err
		}
	}

	entries := []gateway.LogEntry{}
	for _, df := range days {
		for _, e := range df.Logs {
			if developer == "" || e.DeveloperName == developer {
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}

// loadAll reads every day file, oldest first.
func (s *FileStore) loadAll() ([]dayFile, error) {
	var paths []string
	err := filepath.WalkDir(s.base, func(path string, d fs.DirEntry, err error) error {
		if errors.Is(err, fs.ErrNotExist) && path == s.base {
			return filepath.SkipDir
		}
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage error listing %s: %w", s.base, err)
	}
	sort.Strings(paths)

	days := make([]dayFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("storage error reading %s: %w", path, err)
		}
		df, err := decodeDay(path, data)
		if err != nil {
			return nil, err
		}
		days = append(days, df)
	}
	return days, nil
}

func (s *FileStore) Add(_ context.Context, e gateway.LogEntry) (model.LogID, error) {
	day, err := time.Parse(model.DateLayout, e.Date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", e.Date, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	df, err := s.loadDay(day)
	if err != nil {
		return "", err
	}
	e.LogID = model.LogID(generateID(day, s.now()))
	df.Logs = append(df.Logs, e)
	if err := s.saveDay(day, df); err != nil {
		return "", err
	}
	return e.LogID, nil
}

func (s *FileStore) Update(_ context.Context, u gateway.LogUpdate) error {
	day, ok := dayOfID(u.LogID)
	if !ok {
		return ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	df, err := s.loadDay(day)
	if err != nil {
		return err
	}
	for i := range df.Logs {
		if df.Logs[i].LogID == u.LogID {
			df.Logs[i].Hours = u.Hours
			df.Logs[i].Minutes = u.Minutes
			df.Logs[i].Description = u.Description
			return s.saveDay(day, df)
		}
	}
	return ErrNotFound
}

// generateID creates an id like 20260302-093015-k3x9a: the log's day, the
// wall clock time of creation and a random suffix.
func generateID(day, now time.Time) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 5)
	for i := range suffix {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		suffix[i] = chars[n.Int64()]
	}
	return fmt.Sprintf("%s-%s-%s", day.Format("20060102"), now.Format("150405"), string(suffix))
}

func dayOfID(id model.LogID) (time.Time, bool) {
	s := id.String()
	if len(s) < 8 {
		return time.Time{}, false
	}
	day, err := time.Parse("20060102", s[:8])
	return day, err == nil
}

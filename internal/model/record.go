package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the calendar-day format used for TimeLogRecord.Date.
const DateLayout = "2006-01-02"

// LogID identifies a persisted time log. Backends hand out numeric or string
// identifiers; the empty value means "not yet persisted".
type LogID string

// IsZero reports whether the record has not been persisted yet.
func (id LogID) IsZero() bool { return id == "" }

func (id LogID) String() string { return string(id) }

// Int returns the id as an integer when it is written in canonical decimal
// form: "42" is, "042", "+42" and "42.0" are not.
func (id LogID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != string(id) {
		return 0, false
	}
	return n, true
}

// MarshalJSON writes canonical integer ids as JSON numbers, others as strings
// and the zero id as null.
func (id LogID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if n, ok := id.Int(); ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

func (id *LogID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = LogID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("log id: %w", err)
		}
		*id = LogIDFromNumber(n)
		return nil
	}
}

// LogIDFromNumber normalises a JSON number ("1.7e+12" and friends) into an
// integer-looking id when possible.
func LogIDFromNumber(n json.Number) LogID {
	if i, err := n.Int64(); err == nil {
		return LogID(strconv.FormatInt(i, 10))
	}
	if f, err := n.Float64(); err == nil {
		return LogID(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return LogID(n.String())
}

// TimeLogRecord is one block of time a developer spent on a day.
type TimeLogRecord struct {
	LogID         LogID        `json:"logId"`
	Date          string       `json:"date" validate:"required,datetime=2006-01-02"`
	DeveloperName string       `json:"developerName" validate:"required"`
	Hours         int          `json:"hours" validate:"gte=0"`
	Minutes       int          `json:"minutes" validate:"gte=0,lte=59"`
	Description   string       `json:"description"`
	WorkItem      *WorkItemRef `json:"workItem"`
}

// TotalMinutes returns hours*60+minutes.
func (r TimeLogRecord) TotalMinutes() int {
	return r.Hours*60 + r.Minutes
}

// Day parses Date.
func (r TimeLogRecord) Day() (time.Time, error) {
	return time.Parse(DateLayout, r.Date)
}

package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// ServerTimeLayout is the format the picture API writes timestamps in
	ServerTimeLayout = "2006-01-02T15:04:05.000000Z"
	// QueryTimeLayout matches JavaScript's Date.toISOString output
	QueryTimeLayout = "2006-01-02T15:04:05.000Z"
	dateOnlyLayout  = "2006-01-02"
)

// ParseTimestamp parses an API timestamp. Full RFC3339 values (with or
// without fractional seconds) and plain dates are accepted; plain dates
// are read as UTC midnight.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}

	if t, err := time.Parse(dateOnlyLayout, value); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// FormatQueryTime formats t as an ISO timestamp in UTC with milliseconds
func FormatQueryTime(t time.Time) string {
	return t.UTC().Format(QueryTimeLayout)
}

// FormatServerTime formats t the way the API does, with microseconds
func FormatServerTime(t time.Time) string {
	return t.UTC().Format(ServerTimeLayout)
}

// ToDateRange converts a /picture/count entry into a DateRange
func (c PictureCount) ToDateRange(id int) (DateRange, error) {
	start, err := ParseTimestamp(c.StartDate)
	if err != nil {
		return DateRange{}, fmt.Errorf("start_date: %w", err)
	}

	end, err := ParseTimestamp(c.EndDate)
	if err != nil {
		return DateRange{}, fmt.Errorf("end_date: %w", err)
	}

	return DateRange{
		ID:           id,
		Start:        start,
		End:          end,
		PictureCount: c.Count,
	}, nil
}

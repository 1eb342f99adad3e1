package gallery

import (
	"fmt"
	"strings"
	"time"

	"github.com/kouign-amann/picview/internal/models"
)

var frenchMonths = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// MonthName returns the display name of t's month. Only "fr" and English
// are supported; any other language falls back to English.
func MonthName(t time.Time, lang string) string {
	if strings.EqualFold(lang, "fr") {
		return frenchMonths[t.Month()-1]
	}
	return t.Month().String()
}

const linkPrefix = "/pictures/"

// DateRangeLink builds the browsing path of a date range,
// e.g. /pictures/1980-02-03T00:00:00.000Z/1980-02-05T00:00:00.000Z
func DateRangeLink(start, end time.Time) string {
	return linkPrefix + models.FormatQueryTime(start) + "/" + models.FormatQueryTime(end)
}

// ParseDateRangeLink is the inverse of DateRangeLink
func ParseDateRangeLink(link string) (start, end time.Time, err error) {
	rest, ok := strings.CutPrefix(link, linkPrefix)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date range link %q", link)
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date range link %q", link)
	}

	if start, err = models.ParseTimestamp(parts[0]); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("link start: %w", err)
	}
	if end, err = models.ParseTimestamp(parts[1]); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("link end: %w", err)
	}

	return start, end, nil
}

// FindDateRange returns the range whose bounds equal start and end.
// Bounds are compared to the millisecond, the precision of DateRangeLink.
func FindDateRange(ranges []models.DateRange, start, end time.Time) (models.DateRange, bool) {
	start, end = start.Truncate(time.Millisecond), end.Truncate(time.Millisecond)
	for _, r := range ranges {
		if r.Start.Truncate(time.Millisecond).Equal(start) && r.End.Truncate(time.Millisecond).Equal(end) {
			return r, true
		}
	}
	return models.DateRange{}, false
}

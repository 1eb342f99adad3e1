package ui

import (
	"fmt"
	"strings"

	"github.com/kouign-amann/picview/internal/gallery"
	"github.com/kouign-amann/picview/internal/models"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	shortHashLen   = 10
	unknownDate    = "unknown"
	busyLabel      = "⏱ updating"
)

// FormatPictureDate returns the capture time of p, or "unknown"
func FormatPictureDate(p models.Picture) string {
	if !p.Info.HasCreationDate() {
		return unknownDate
	}
	return p.Info.CreationTimeDate.Format(dateTimeLayout)
}

// ShortHash abbreviates a picture hash for tables
func ShortHash(hash string) string {
	if len(hash) <= shortHashLen {
		return hash
	}
	return hash[:shortHashLen]
}

// FormatResolution renders a file resolution as WxH
func FormatResolution(f models.File) string {
	return fmt.Sprintf("%dx%d", f.Resolution[0], f.Resolution[1])
}

// MonthLabel renders "Novembre 1980" style labels
func MonthLabel(r models.DateRange, lang string) string {
	return fmt.Sprintf("%s %d", gallery.MonthName(r.Start, lang), r.Start.Year())
}

// BackupText is the uncolored backup label of p, used in table cells.
// busy overrides the indicator while a toggle request is in flight.
func BackupText(p models.Picture, busy bool) string {
	if busy {
		return busyLabel
	}
	return indicatorText(gallery.BackupIndicatorFor(p))
}

// BackupLabel is BackupText with the indicator color
func BackupLabel(p models.Picture, busy bool) string {
	if busy {
		return AccentStyle.Render(busyLabel)
	}
	ind := gallery.BackupIndicatorFor(p)
	if int(ind) < len(backupColors) {
		return NormalStyle.Foreground(backupColors[ind]).Render(indicatorText(ind))
	}
	return indicatorText(ind)
}

func indicatorText(ind gallery.BackupIndicator) string {
	switch ind {
	case gallery.BackupDone:
		return "✓ " + ind.String()
	case gallery.BackupFailed:
		return "✗ " + ind.String()
	}
	return ind.String()
}

// escapeMarkdown escapes the pipe so values can sit in a markdown table
func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

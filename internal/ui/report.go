package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kouign-amann/picview/internal/gallery"
	"github.com/kouign-amann/picview/internal/models"
)

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println(SuccessStyle.Render(message))
}

// PrintError prints an error message to stderr
func PrintError(message string) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: "+message))
}

// PrintMonths prints the browsable months grouped by year.
//
// This is a CLI report (non-interactive): lipgloss only colors the text,
// the layout is plain string formatting.
func PrintMonths(w io.Writer, groups []models.YearDateRange, lang string) {
	if len(groups) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No pictures"))
		return
	}

	total := 0
	for _, g := range groups {
		total += g.PictureCount
		fmt.Fprintln(w, YearStyle.Render(fmt.Sprintf("%d", g.Year))+" "+DimStyle.Render(fmt.Sprintf("(%d)", g.PictureCount)))
		for _, r := range g.DateRangeList {
			fmt.Fprintf(w, "  %-12s %6d\n", gallery.MonthName(r.Start, lang), r.PictureCount)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%d pictures in %d years", total, len(groups))))
}

// PrintPictureUpdates prints one line per refreshed picture of a watched
// month. Only pictures whose hash is in changed are printed.
func PrintPictureUpdates(w io.Writer, at time.Time, pictures []models.Picture, changed []string) {
	if len(changed) == 0 {
		return
	}

	wanted := make(map[string]bool, len(changed))
	for _, h := range changed {
		wanted[h] = true
	}

	for _, p := range pictures {
		if !wanted[p.Hash] {
			continue
		}
		fmt.Fprintf(w, "%s  %s  rank %-3d %s  %s\n",
			DimStyle.Render(at.Format("15:04:05")),
			ShortHash(p.Hash),
			p.Rank,
			FormatPictureDate(p),
			stripEscapeCodes(BackupLabel(p, false)),
		)
	}
}

// GenerateMonthMarkdown renders the pictures of a month as a markdown report
func GenerateMonthMarkdown(r models.DateRange, pictures []models.Picture, lang string, pathWidth int, generated time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Pictures of %s\n\n", MonthLabel(r, lang)))
	sb.WriteString(fmt.Sprintf("**Range:** %s\n", gallery.DateRangeLink(r.Start, r.End)))
	sb.WriteString(fmt.Sprintf("**Total Pictures:** %d\n", len(pictures)))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", generated.Format(dateTimeLayout)))

	if len(pictures) == 0 {
		sb.WriteString("No pictures\n")
		return sb.String()
	}

	sb.WriteString("| Date | Hash | Backup | Files | Best file |\n")
	sb.WriteString("|------|------|--------|-------|-----------|\n")

	for _, p := range pictures {
		path := "-"
		if best, ok := gallery.BestFile(p); ok {
			path = gallery.Truncate(best.PicturePath, pathWidth)
		}
		sb.WriteString(fmt.Sprintf("| %s | `%s` | %s | %d | %s |\n",
			FormatPictureDate(p),
			p.Hash,
			gallery.BackupIndicatorFor(p),
			len(p.FileList),
			escapeMarkdown(path),
		))
	}

	return sb.String()
}

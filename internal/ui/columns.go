package ui

// columns.go provides generic column width calculation for bubbles/table.
// Use ColumnSpec and CalculateColumns() instead of duplicating percentage-based math.

import (
	"github.com/charmbracelet/bubbles/table"
)

// ColumnSpec defines a table column with flexible or fixed width.
// Use FlexRatio for columns that should expand/contract with terminal width.
// Use FixedWidth for columns that should maintain constant width.
type ColumnSpec struct {
	Title      string
	MinWidth   int // Minimum width (0 = no minimum)
	FixedWidth int // If > 0, use this exact width (ignores FlexRatio)
	FlexRatio  int // Relative ratio for flexible columns (0 = fixed-only)
}

// CalculateColumns computes column widths from specs.
// Flexible columns split remaining space by ratio after fixed columns are
// allocated. Each column is followed by a 2 char separator.
//
// Example:
//
//	columns := CalculateColumns([]ColumnSpec{
//	    {Title: "Hash", FixedWidth: 12},
//	    {Title: "Path", FlexRatio: 100, MinWidth: 20},
//	}, layout.TableWidth)
func CalculateColumns(specs []ColumnSpec, totalWidth int) []table.Column {
	if totalWidth < 40 {
		totalWidth = 40
	}

	// First pass: allocate fixed widths and sum flex ratios
	fixedTotal := 2 * len(specs)
	flexTotal := 0
	for _, s := range specs {
		if s.FixedWidth > 0 {
			fixedTotal += s.FixedWidth
		} else {
			flexTotal += s.FlexRatio
		}
	}

	remaining := totalWidth - fixedTotal
	if remaining < 0 {
		remaining = 0
	}

	// Second pass: calculate final widths
	columns := make([]table.Column, len(specs))
	for i, s := range specs {
		var width int
		if s.FixedWidth > 0 {
			width = s.FixedWidth
		} else if flexTotal > 0 {
			width = remaining * s.FlexRatio / flexTotal
		}

		if s.MinWidth > 0 && width < s.MinWidth {
			width = s.MinWidth
		}

		columns[i] = table.Column{Title: s.Title, Width: width}
	}

	return columns
}

// MonthColumns returns column specs for the month selector.
func MonthColumns() []ColumnSpec {
	return []ColumnSpec{
		{Title: "Year", FixedWidth: 6},
		{Title: "Month", FlexRatio: 100, MinWidth: 12},
		{Title: "Pictures", FixedWidth: 10},
	}
}

// PictureColumns returns column specs for the picture list of a month.
func PictureColumns() []ColumnSpec {
	return []ColumnSpec{
		{Title: "Date", FixedWidth: 19},
		{Title: "Hash", FixedWidth: 12},
		{Title: "Backup", FixedWidth: 12},
		{Title: "Files", FixedWidth: 5},
		{Title: "Best file", FlexRatio: 100, MinWidth: 20},
	}
}

// SingleColumnSpec returns a column spec for single-column selectors.
func SingleColumnSpec(title string) []ColumnSpec {
	return []ColumnSpec{
		{Title: title, FlexRatio: 100},
	}
}

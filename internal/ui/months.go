package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kouign-amann/picview/internal/gallery"
	"github.com/kouign-amann/picview/internal/models"
)

// monthRow is one line of the month selector: either a year header or a
// month of that year.
type monthRow struct {
	year  int
	month *models.DateRange
}

func (m App) handleDateRanges(msg dateRangesMsg) (tea.Model, tea.Cmd) {
	m.loading = ""
	if msg.err != nil {
		m.SetError(fmt.Sprintf("Could not load months: %v", msg.err))
		return m, nil
	}

	m.ranges = msg.ranges
	m.groups = gallery.GroupByYear(msg.ranges)
	m.rebuildMonthRows()

	if len(m.ranges) == 0 {
		m.SetStatus("No pictures yet", statusDuration)
		return m, nil
	}

	if m.restored {
		return m, nil
	}
	m.restored = true

	mem, ok := m.svc.(MonthMemory)
	if !ok {
		return m, nil
	}
	last, found := mem.LastDateRange(m.ctx, m.ranges)
	if !found {
		return m, nil
	}
	m.selectMonthRow(last)
	return m.openMonth(last)
}

func (m *App) rebuildMonthRows() {
	m.monthRows = nil
	rows := make([]table.Row, 0, len(m.ranges)+len(m.groups))

	for _, g := range m.groups {
		marker := "▾"
		if m.collapsed[g.Year] {
			marker = "▸"
		}
		m.monthRows = append(m.monthRows, monthRow{year: g.Year})
		rows = append(rows, table.Row{
			strconv.Itoa(g.Year),
			marker,
			strconv.Itoa(g.PictureCount),
		})
		if m.collapsed[g.Year] {
			continue
		}
		for i := range g.DateRangeList {
			r := g.DateRangeList[i]
			m.monthRows = append(m.monthRows, monthRow{year: g.Year, month: &r})
			rows = append(rows, table.Row{
				"",
				gallery.MonthName(r.Start, m.opts.Language),
				strconv.Itoa(r.PictureCount),
			})
		}
	}

	cursor := m.monthTable.Cursor()
	m.monthTable.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	m.monthTable.SetCursor(cursor)
}

func (m *App) selectMonthRow(r models.DateRange) {
	for i, row := range m.monthRows {
		if row.month != nil && row.month.ID == r.ID {
			m.monthTable.SetCursor(i)
			return
		}
	}
}

func (m App) selectedMonthRow() (monthRow, bool) {
	cursor := m.monthTable.Cursor()
	if cursor < 0 || cursor >= len(m.monthRows) {
		return monthRow{}, false
	}
	return m.monthRows[cursor], true
}

func (m App) handleMonthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if quit, _ := HandleQuitKeys(key); quit {
		return m.quit()
	}
	if m.loading != "" {
		return m, nil
	}

	switch key {
	case "r":
		m.loading = "Loading months..."
		return m, tea.Batch(m.spinner.Tick, m.loadDateRanges())

	case " ", "tab":
		if row, ok := m.selectedMonthRow(); ok {
			m.collapsed[row.year] = !m.collapsed[row.year]
			m.rebuildMonthRows()
			m.selectYearRow(row.year)
		}
		return m, nil
	}

	if _, selected := HandleSelectKey(key, m.monthTable.Cursor()); selected {
		row, ok := m.selectedMonthRow()
		if !ok {
			return m, nil
		}
		if row.month == nil {
			m.collapsed[row.year] = !m.collapsed[row.year]
			m.rebuildMonthRows()
			m.selectYearRow(row.year)
			return m, nil
		}
		return m.openMonth(*row.month)
	}

	var cmd tea.Cmd
	m.monthTable, cmd = m.monthTable.Update(msg)
	return m, cmd
}

func (m *App) selectYearRow(year int) {
	for i, row := range m.monthRows {
		if row.month == nil && row.year == year {
			m.monthTable.SetCursor(i)
			return
		}
	}
}

// openMonth switches to the picture list of r and starts loading it
func (m App) openMonth(r models.DateRange) (tea.Model, tea.Cmd) {
	m.stopPolling()
	m.gen++
	m.month = r
	m.pictures = nil
	m.visible = nil
	m.rowsKey = ""
	m.busy = make(map[string]bool)
	m.filter.SetValue("")
	m.filtering = false
	m.pictureTable.SetRows(nil)
	m.pictureTable.SetCursor(0)
	m.resizeTables()
	m.view = viewPictures
	m.loading = fmt.Sprintf("Loading %s...", MonthLabel(r, m.opts.Language))

	if mem, ok := m.svc.(MonthMemory); ok {
		ctx, cancel := context.WithTimeout(m.ctx, m.opts.RequestTimeout)
		err := mem.SaveLastDateRange(ctx, r)
		cancel()
		if err != nil && m.logger != nil {
			m.logger.Warn("failed to save last month", "err", err)
		}
	}

	return m, tea.Batch(m.spinner.Tick, m.loadPictures(m.gen, r))
}

func (m App) viewMonths() string {
	if m.loading != "" && len(m.ranges) == 0 {
		return m.loadingView("Pictures")
	}

	total := 0
	for _, g := range m.groups {
		total += g.PictureCount
	}

	b := NewPageView(m.Layout).
		CustomContent(m.header("Pictures")).
		Accent(fmt.Sprintf("%d pictures in %d months", total, len(m.ranges))).
		Spacing(1)

	if len(m.monthRows) == 0 {
		b.Text(RenderDim("Nothing to show"))
	} else {
		b.Table(m.monthTable)
	}

	return b.Status(m.RenderStatus()).
		Help("enter: open  space: fold year  r: reload  q: quit").
		Build()
}

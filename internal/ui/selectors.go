package ui

// selectors.go provides a single-column selector over the months of the
// gallery, used outside the main viewer (exports).

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kouign-amann/picview/internal/gallery"
	"github.com/kouign-amann/picview/internal/models"
)

// SelectorConfig configures a MonthSelectorModel
type SelectorConfig struct {
	Title    string
	Subtitle string // optional, e.g. "12 months available"
	HelpText string
	Language string
	Groups   []models.YearDateRange
	// AllowAll adds an "All months" entry on top; selecting it returns
	// ok with a zero DateRange
	AllowAll bool
}

type selectorEntry struct {
	label string
	month *models.DateRange
	all   bool
}

// MonthSelectorModel lists months grouped by year. Year lines are not
// selectable.
type MonthSelectorModel struct {
	PageState
	table    table.Model
	config   SelectorConfig
	entries  []selectorEntry
	selected int // index into entries, -1 if cancelled
}

// NewMonthSelectorModel creates a month selector
func NewMonthSelectorModel(cfg SelectorConfig) MonthSelectorModel {
	layout := DefaultLayout()
	if cfg.HelpText == "" {
		cfg.HelpText = "↑/↓: navigate | Enter: select | Esc: cancel"
	}

	var entries []selectorEntry
	if cfg.AllowAll {
		entries = append(entries, selectorEntry{label: "All months", all: true})
	}
	for _, g := range cfg.Groups {
		entries = append(entries, selectorEntry{label: fmt.Sprintf("%d (%d pictures)", g.Year, g.PictureCount)})
		for i := range g.DateRangeList {
			r := g.DateRangeList[i]
			entries = append(entries, selectorEntry{
				label: fmt.Sprintf("   %s (%d)", gallery.MonthName(r.Start, cfg.Language), r.PictureCount),
				month: &r,
			})
		}
	}

	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = table.Row{e.label}
	}

	m := MonthSelectorModel{
		PageState: NewPageState(layout),
		table:     InitTable(CalculateColumns(SingleColumnSpec(cfg.Title), layout.TableWidth), rows, layout),
		config:    cfg,
		entries:   entries,
		selected:  -1,
	}
	m.skipYearRows(1)
	return m
}

func (m MonthSelectorModel) Init() tea.Cmd {
	return StandardInit()
}

func (m MonthSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.UpdateLayout(msg.Width, msg.Height) {
			m.table.SetColumns(CalculateColumns(SingleColumnSpec(m.config.Title), m.Layout.TableWidth))
			m.table.SetHeight(m.Layout.TableHeight)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.selected = -1
			m.Quitting = true
			return m, tea.Quit
		case "enter":
			if m.selectable(m.table.Cursor()) {
				m.selected = m.table.Cursor()
				m.Quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

		before := m.table.Cursor()
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		if after := m.table.Cursor(); after != before {
			dir := 1
			if after < before {
				dir = -1
			}
			m.skipYearRows(dir)
		}
		return m, cmd
	}

	return m, nil
}

func (m MonthSelectorModel) selectable(i int) bool {
	if i < 0 || i >= len(m.entries) {
		return false
	}
	return m.entries[i].all || m.entries[i].month != nil
}

// skipYearRows moves the cursor off year lines in direction dir, turning
// back when it hits the end of the list
func (m *MonthSelectorModel) skipYearRows(dir int) {
	cursor := m.table.Cursor()
	for i := cursor; i >= 0 && i < len(m.entries); i += dir {
		if m.selectable(i) {
			m.table.SetCursor(i)
			return
		}
	}
	for i := cursor; i >= 0 && i < len(m.entries); i -= dir {
		if m.selectable(i) {
			m.table.SetCursor(i)
			return
		}
	}
}

func (m MonthSelectorModel) View() string {
	if m.Quitting {
		return ""
	}
	b := NewPageView(m.Layout).Title(m.config.Title)
	if m.config.Subtitle != "" {
		b.Subtitle(m.config.Subtitle)
	}
	return b.Divider().Spacing(1).Table(m.table).Help(m.config.HelpText).Build()
}

// Selected returns the chosen month. all is true when the "All months"
// entry was picked; ok is false when the user cancelled.
func (m MonthSelectorModel) Selected() (r models.DateRange, all bool, ok bool) {
	if !m.selectable(m.selected) {
		return models.DateRange{}, false, false
	}
	e := m.entries[m.selected]
	if e.all {
		return models.DateRange{}, true, true
	}
	return *e.month, false, true
}

// RunMonthSelector runs the selector full screen
func RunMonthSelector(cfg SelectorConfig) (r models.DateRange, all bool, ok bool, err error) {
	p := tea.NewProgram(NewMonthSelectorModel(cfg), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return models.DateRange{}, false, false, fmt.Errorf("selector error: %w", err)
	}
	r, all, ok = final.(MonthSelectorModel).Selected()
	return r, all, ok, nil
}

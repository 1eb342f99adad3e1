package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kouign-amann/picview/internal/gallery"
	"github.com/kouign-amann/picview/internal/models"
	"github.com/kouign-amann/picview/internal/poll"
)

func (m App) handlePictures(msg picturesMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen || m.view == viewMonths {
		return m, nil
	}
	m.loading = ""
	if msg.err != nil {
		m.SetError(fmt.Sprintf("Could not load %s: %v", MonthLabel(msg.r, m.opts.Language), msg.err))
		return m, nil
	}

	m.pictures = msg.pictures
	m.applyFilter(true)
	cmd := m.startPolling()
	return m, cmd
}

// startPolling watches recently updated pictures while the month is open
func (m *App) startPolling() tea.Cmd {
	svc, window := m.svc, m.opts.PollWindow
	m.poller = poll.New(func(ctx context.Context) ([]models.Picture, error) {
		return svc.RecentlyUpdated(ctx, window)
	}, poll.Options{
		Interval: m.opts.PollInterval,
		Timeout:  m.opts.PollTimeout,
		Logger:   m.logger,
	})

	ch, err := m.poller.Start(m.ctx)
	if err != nil {
		if m.logger != nil {
			m.logger.Error("failed to start polling", "err", err)
		}
		m.poller = nil
		return nil
	}
	return waitForPoll(m.gen, ch)
}

func (m *App) stopPolling() {
	if m.poller == nil {
		return
	}
	m.poller.Stop()
	m.poller = nil
}

func (m App) handlePoll(msg pollMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		return m, nil
	}
	next := waitForPoll(msg.gen, msg.ch)

	res := msg.result
	if res.Err != nil {
		if m.logger != nil {
			m.logger.Warn("poll failed", "seq", res.Seq, "err", res.Err)
		}
		return m, next
	}

	m.lastPoll = res.At
	changed := gallery.ChangedHashes(m.pictures, res.Value)
	if len(changed) == 0 {
		return m, next
	}

	m.pictures = gallery.Refresh(m.pictures, res.Value)
	m.applyFilter(false)
	if m.logger != nil {
		m.logger.Debug("pictures refreshed", "seq", res.Seq, "count", len(changed))
	}
	noun := "pictures"
	if len(changed) == 1 {
		noun = "picture"
	}
	m.SetStatus(fmt.Sprintf("%d %s updated", len(changed), noun), statusDuration)
	return m, next
}

func (m App) handleBackupDone(msg backupDoneMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		return m, nil
	}
	m.setBusy(msg.hash, false)

	if msg.err != nil {
		if m.logger != nil {
			m.logger.Error("backup update failed", "hash", msg.hash, "err", msg.err)
		}
		m.SetError(fmt.Sprintf("backup update failed: %v", msg.err))
		m.refreshPictureRows()
		return m, nil
	}

	m.pictures = gallery.Refresh(m.pictures, []models.Picture{msg.picture})
	m.refreshPictureRows()
	if msg.picture.BackupRequired {
		m.SetStatus("Backup requested for "+ShortHash(msg.hash), statusDuration)
	} else {
		m.SetStatus("Backup cancelled for "+ShortHash(msg.hash), statusDuration)
	}
	return m, nil
}

// setBusy copies the busy set so earlier model values keep theirs
func (m *App) setBusy(hash string, busy bool) {
	next := make(map[string]bool, len(m.busy)+1)
	for h := range m.busy {
		next[h] = true
	}
	if busy {
		next[hash] = true
	} else {
		delete(next, hash)
	}
	m.busy = next
}

func (m App) startBackupToggle(p models.Picture) (tea.Model, tea.Cmd) {
	if m.busy[p.Hash] {
		return m, nil
	}
	m.setBusy(p.Hash, true)
	m.refreshPictureRows()
	return m, m.toggleBackup(m.gen, p)
}

// matchesFilter reports whether p matches the lowercased query
func matchesFilter(p models.Picture, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Hash), query) {
		return true
	}
	if strings.Contains(FormatPictureDate(p), query) {
		return true
	}
	for _, f := range p.FileList {
		if strings.Contains(strings.ToLower(f.PicturePath), query) {
			return true
		}
	}
	return false
}

// applyFilter recomputes the visible pictures. reset moves the cursor to
// the first row.
func (m *App) applyFilter(reset bool) {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	visible := make([]int, 0, len(m.pictures))
	for i, p := range m.pictures {
		if matchesFilter(p, query) {
			visible = append(visible, i)
		}
	}
	m.visible = visible
	m.rowsKey = ""
	m.refreshPictureRows()
	if reset {
		m.pictureTable.SetCursor(0)
	}
}

// refreshPictureRows rebuilds the table rows when a row key or busy flag
// changed
func (m *App) refreshPictureRows() {
	var key strings.Builder
	for _, i := range m.visible {
		p := m.pictures[i]
		key.WriteString(p.RowKey())
		if m.busy[p.Hash] {
			key.WriteString("*")
		}
		key.WriteString(";")
	}
	if key.String() == m.rowsKey && m.rowsKey != "" {
		return
	}
	m.rowsKey = key.String()

	rows := make([]table.Row, 0, len(m.visible))
	for _, i := range m.visible {
		rows = append(rows, m.pictureRow(m.pictures[i]))
	}

	cursor := m.pictureTable.Cursor()
	m.pictureTable.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	m.pictureTable.SetCursor(cursor)
}

func (m App) pictureRow(p models.Picture) table.Row {
	best := "-"
	if f, ok := gallery.BestFile(p); ok {
		best = gallery.Truncate(f.PicturePath, m.opts.PathWidth)
	}
	return table.Row{
		FormatPictureDate(p),
		ShortHash(p.Hash),
		BackupText(p, m.busy[p.Hash]),
		strconv.Itoa(len(p.FileList)),
		best,
	}
}

func (m App) selectedPicture() (models.Picture, bool) {
	cursor := m.pictureTable.Cursor()
	if cursor < 0 || cursor >= len(m.visible) {
		return models.Picture{}, false
	}
	return m.pictures[m.visible[cursor]], true
}

func (m App) pictureByHash(hash string) (models.Picture, bool) {
	for _, p := range m.pictures {
		if p.Hash == hash {
			return p, true
		}
	}
	return models.Picture{}, false
}

func (m App) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filter.SetValue("")
		m.filter.Blur()
		m.filtering = false
		m.resizeTables()
		m.applyFilter(true)
		return m, nil
	case "enter":
		m.filter.Blur()
		m.filtering = false
		m.resizeTables()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter(true)
	return m, cmd
}

// backToMonths closes the month and stops its poller
func (m App) backToMonths() (tea.Model, tea.Cmd) {
	m.stopPolling()
	m.gen++
	m.view = viewMonths
	m.loading = ""
	m.ClearStatus()
	return m, nil
}

func (m App) handlePictureKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKeys(msg)
	}

	key := msg.String()
	if quit, _ := HandleQuitKeys(key); quit {
		return m.quit()
	}
	if IsBackKey(key) {
		if key == "esc" && m.filter.Value() != "" {
			m.filter.SetValue("")
			m.resizeTables()
			m.applyFilter(true)
			return m, nil
		}
		return m.backToMonths()
	}
	if m.loading != "" {
		return m, nil
	}

	switch key {
	case "/":
		m.filtering = true
		m.resizeTables()
		cmd := m.filter.Focus()
		return m, cmd

	case "r":
		return m.openMonth(m.month)

	case "e":
		return m, m.exportMonth()

	case "b":
		if p, ok := m.selectedPicture(); ok {
			return m.startBackupToggle(p)
		}
		return m, nil

	case "t":
		if p, ok := m.selectedPicture(); ok {
			return m, m.exportThumbnail(p)
		}
		return m, nil
	}

	if _, selected := HandleSelectKey(key, m.pictureTable.Cursor()); selected {
		if p, ok := m.selectedPicture(); ok {
			m.detailHash = p.Hash
			m.view = viewDetail
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.pictureTable, cmd = m.pictureTable.Update(msg)
	return m, cmd
}

func (m App) exportMonth() tea.Cmd {
	dir, r, lang, width := m.opts.ExportDir, m.month, m.opts.Language, m.opts.PathWidth
	pictures := append([]models.Picture(nil), m.pictures...)
	return func() tea.Msg {
		path, err := ExportMonthToMarkdown(dir, r, pictures, lang, width)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m App) exportThumbnail(p models.Picture) tea.Cmd {
	dir := m.opts.ExportDir
	return func() tea.Msg {
		path, err := ExportThumbnail(dir, p)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if err := OpenFile(path); err != nil {
			return exportDoneMsg{path: path, err: fmt.Errorf("failed to open %s: %w", path, err)}
		}
		return exportDoneMsg{path: path}
	}
}

func (m App) viewPictures() string {
	title := MonthLabel(m.month, m.opts.Language)
	if m.loading != "" {
		return m.loadingView(title)
	}

	summary := fmt.Sprintf("%d pictures", len(m.pictures))
	if len(m.visible) != len(m.pictures) {
		summary = fmt.Sprintf("%d of %d pictures", len(m.visible), len(m.pictures))
	}
	if !m.lastPoll.IsZero() {
		summary += RenderDim("  checked " + m.lastPoll.Format("15:04:05"))
	}
	if m.poller == nil || !m.poller.Running() {
		summary += RenderDim("  updates stopped")
	}

	b := NewPageView(m.Layout).
		CustomContent(m.header(title)).
		Accent(summary)

	if m.filtering || m.filter.Value() != "" {
		b.Text(m.filter.View())
	}
	b.Spacing(1)

	if len(m.visible) == 0 {
		b.Text(RenderDim("No pictures"))
	} else {
		b.Table(m.pictureTable)
	}

	help := "enter: details  b: toggle backup  /: filter  e: export  t: thumbnail  r: reload  esc: back"
	if m.filtering {
		help = "enter: apply filter  esc: clear filter"
	}
	return b.Status(m.RenderStatus()).Help(help).Build()
}

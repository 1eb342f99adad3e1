package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kouign-amann/picview/internal/models"
	"github.com/kouign-amann/picview/internal/poll"
)

// Messages carrying a generation belong to one opening of a month. The
// app drops them once the user has left that month.

type dateRangesMsg struct {
	ranges []models.DateRange
	err    error
}

type picturesMsg struct {
	gen      uint64
	r        models.DateRange
	pictures []models.Picture
	err      error
}

type pollMsg struct {
	gen    uint64
	result poll.Result[[]models.Picture]
	ch     <-chan poll.Result[[]models.Picture]
}

type pollClosedMsg struct {
	gen uint64
}

type backupDoneMsg struct {
	gen     uint64
	hash    string
	picture models.Picture
	err     error
}

type pictureMsg struct {
	gen     uint64
	hash    string
	picture models.Picture
	err     error
}

type exportDoneMsg struct {
	path string
	err  error
}

type statusTickMsg time.Time

func (m *App) requestCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, m.opts.RequestTimeout)
}

func (m *App) loadDateRanges() tea.Cmd {
	svc := m.svc
	ctx, cancel := m.requestCtx()
	return func() tea.Msg {
		defer cancel()
		ranges, err := svc.ListDateRanges(ctx)
		return dateRangesMsg{ranges: ranges, err: err}
	}
}

func (m *App) loadPictures(gen uint64, r models.DateRange) tea.Cmd {
	svc := m.svc
	ctx, cancel := m.requestCtx()
	return func() tea.Msg {
		defer cancel()
		pictures, err := svc.ListPictures(ctx, r.Start, r.End)
		return picturesMsg{gen: gen, r: r, pictures: pictures, err: err}
	}
}

func (m *App) toggleBackup(gen uint64, p models.Picture) tea.Cmd {
	svc := m.svc
	ctx, cancel := m.requestCtx()
	return func() tea.Msg {
		defer cancel()
		updated, err := svc.SetAndPlanBackup(ctx, p.Hash, !p.BackupRequired)
		return backupDoneMsg{gen: gen, hash: p.Hash, picture: updated, err: err}
	}
}

func (m *App) reloadPicture(gen uint64, hash string) tea.Cmd {
	svc := m.svc
	ctx, cancel := m.requestCtx()
	return func() tea.Msg {
		defer cancel()
		picture, err := svc.GetPicture(ctx, hash)
		return pictureMsg{gen: gen, hash: hash, picture: picture, err: err}
	}
}

// waitForPoll reads one poll result. It is re-issued after every result
// until the channel closes.
func waitForPoll(gen uint64, ch <-chan poll.Result[[]models.Picture]) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return pollClosedMsg{gen: gen}
		}
		return pollMsg{gen: gen, result: res, ch: ch}
	}
}

func statusTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

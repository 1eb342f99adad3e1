package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kouign-amann/picview/internal/gallery"
	"github.com/kouign-amann/picview/internal/models"
)

const detailLabelWidth = 16

func (m App) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if quit, _ := HandleQuitKeys(key); quit {
		return m.quit()
	}
	if IsBackKey(key) {
		m.view = viewPictures
		return m, nil
	}

	p, ok := m.pictureByHash(m.detailHash)
	if !ok {
		return m, nil
	}

	switch key {
	case "b", " ":
		return m.startBackupToggle(p)
	case "t":
		return m, m.exportThumbnail(p)
	case "r":
		m.SetStatus("Refreshing "+ShortHash(p.Hash)+"...", statusDuration)
		return m, m.reloadPicture(m.gen, p.Hash)
	}
	return m, nil
}

func (m App) handlePictureReloaded(msg pictureMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		return m, nil
	}
	if msg.err != nil {
		if m.logger != nil {
			m.logger.Error("picture refresh failed", "hash", msg.hash, "err", msg.err)
		}
		m.SetError(fmt.Sprintf("refresh failed: %v", msg.err))
		return m, nil
	}

	m.pictures = gallery.Refresh(m.pictures, []models.Picture{msg.picture})
	m.refreshPictureRows()
	m.SetStatus("Refreshed "+ShortHash(msg.hash), statusDuration)
	return m, nil
}

func (m App) viewDetail() string {
	p, ok := m.pictureByHash(m.detailHash)
	if !ok {
		content := m.header("Picture") + RenderDim("This picture is no longer listed")
		return BuildTwoBoxView(content, "esc: back  q: quit", m.Layout)
	}

	b := NewPageView(m.Layout).
		CustomContent(m.header("Picture " + ShortHash(p.Hash))).
		CustomContent(renderPictureDetail(p, m.busy[p.Hash], m.opts.PathWidth)).
		Status(m.RenderStatus()).
		Help("b: toggle backup  r: refresh  t: open thumbnail  esc: back  q: quit")
	return b.Build()
}

// renderPictureDetail lists the metadata, files and backups of p. File
// paths are shortened to pathWidth characters.
func renderPictureDetail(p models.Picture, busy bool, pathWidth int) string {
	var s strings.Builder

	required := "no"
	if p.BackupRequired {
		required = "yes"
	}
	orientation := p.Info.Orientation
	if orientation == "" {
		orientation = "-"
	}

	s.WriteString(RenderField("Hash", p.Hash, detailLabelWidth) + "\n")
	s.WriteString(RenderField("Created", FormatPictureDate(p), detailLabelWidth) + "\n")
	s.WriteString(RenderField("Orientation", orientation, detailLabelWidth) + "\n")
	s.WriteString(RenderField("Backup required", required, detailLabelWidth) + "\n")
	s.WriteString(DimStyle.Render(padRight("Backup status", detailLabelWidth)) + " " + BackupLabel(p, busy) + "\n")

	s.WriteString("\n" + RenderAccent(fmt.Sprintf("Files (%d)", len(p.FileList))) + "\n")
	if len(p.FileList) == 0 {
		s.WriteString(RenderDim("  none") + "\n")
	}
	for _, f := range p.FileList {
		s.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
			RenderNormal(padRight(f.CrawlerID, 12)),
			RenderNormal(padRight(FormatResolution(f), 11)),
			RenderNormal(padRight(gallery.Truncate(f.PicturePath, pathWidth), pathWidth+3)),
			RenderDim(f.LastSeen),
		))
	}

	s.WriteString("\n" + RenderAccent(fmt.Sprintf("Backups (%d)", len(p.BackupList))) + "\n")
	if len(p.BackupList) == 0 {
		s.WriteString(RenderDim("  none") + "\n")
	}
	for _, bk := range p.BackupList {
		status := string(bk.Status)
		switch bk.Status {
		case models.BackupDone:
			status = RenderSuccess(status)
		case models.BackupError:
			status = RenderError(status)
		default:
			status = RenderAccent(status)
		}
		s.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
			RenderNormal(padRight(bk.CrawlerID, 12)),
			RenderNormal(padRight(bk.StorageID, 12)),
			padRight(status, 10),
			RenderDim(gallery.Truncate(bk.FilePath, pathWidth)),
		))
	}

	return s.String()
}

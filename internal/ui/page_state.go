package ui

import (
	"time"
)

// page_state.go provides shared state management for all TUI pages.

// PageState contains common state that all pages need.
// Embed this in your page model to avoid duplicating these fields.
type PageState struct {
	Layout       Layout
	StatusMsg    string
	StatusIsErr  bool
	StatusExpiry time.Time
	Quitting     bool
}

// NewPageState creates a new PageState with the given layout.
func NewPageState(layout Layout) PageState {
	return PageState{Layout: layout}
}

// SetStatus sets a status message that will expire after the given duration.
// If duration is 0, the status message will not expire.
func (p *PageState) SetStatus(msg string, duration time.Duration) {
	p.StatusMsg = msg
	p.StatusIsErr = false
	if duration > 0 {
		p.StatusExpiry = time.Now().Add(duration)
	} else {
		p.StatusExpiry = time.Time{} // Zero time = no expiry
	}
}

// SetError sets an error status that stays until replaced
func (p *PageState) SetError(msg string) {
	p.SetStatus(msg, 0)
	p.StatusIsErr = true
}

// ClearStatus removes the current status message.
func (p *PageState) ClearStatus() {
	p.StatusMsg = ""
	p.StatusIsErr = false
	p.StatusExpiry = time.Time{}
}

// ClearExpiredStatus clears the status message if it has expired.
func (p *PageState) ClearExpiredStatus(now time.Time) {
	if !p.StatusExpiry.IsZero() && now.After(p.StatusExpiry) {
		p.ClearStatus()
	}
}

// HasStatus returns true if there is a non-empty status message.
func (p *PageState) HasStatus() bool {
	return p.StatusMsg != ""
}

// RenderStatus returns the styled status line, empty when there is none
func (p *PageState) RenderStatus() string {
	if p.StatusMsg == "" {
		return ""
	}
	if p.StatusIsErr {
		return RenderError(p.StatusMsg)
	}
	return StatusMsgStyle.Render(p.StatusMsg)
}

// UpdateLayout updates the layout and returns true if it changed.
// Use this in your WindowSizeMsg handler.
func (p *PageState) UpdateLayout(width, height int) bool {
	newLayout := NewLayout(width, height)
	if newLayout != p.Layout {
		p.Layout = newLayout
		return true
	}
	return false
}

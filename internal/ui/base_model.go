package ui

// base_model.go provides common TUI helpers for Bubble Tea models.

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// InitTable creates and configures a table with proper styling and dimensions.
// Use this instead of manually calling table.New() to ensure consistent setup.
func InitTable(columns []table.Column, rows []table.Row, layout Layout) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(layout.TableHeight),
	)

	ApplyTableStyles(&t)

	// Ensure cursor starts at the top for proper viewport positioning
	t.GotoTop()

	return t
}

// StandardInit returns the standard Init command for table models.
func StandardInit() tea.Cmd {
	return tea.WindowSize()
}

// HandleQuitKeys returns true and Quit cmd for q/ctrl+c keys.
// Esc is left to the caller since it means "back" in most views.
func HandleQuitKeys(key string) (bool, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		return true, tea.Quit
	}
	return false, nil
}

// HandleSelectKey returns cursor position and true if enter pressed.
func HandleSelectKey(key string, cursor int) (int, bool) {
	if key == "enter" {
		return cursor, true
	}
	return -1, false
}

// IsBackKey reports whether key leaves the current view
func IsBackKey(key string) bool {
	switch key {
	case "esc", "backspace", "left", "h":
		return true
	}
	return false
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// sanitizeInput removes null bytes and other invisible control characters from input
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 || (r < 32 && r != '\t' && r != '\n' && r != '\r') {
			return -1
		}
		return r
	}, s)
}

// PromptForServerURL asks for the picture API URL. validate checks the
// entered value; it may be nil.
func PromptForServerURL(placeholder string, validate func(string) error) (string, error) {
	var serverURL string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Picture API URL").
				Description("Root URL of the picture server (e.g. http://nas.local:5000)").
				Placeholder(placeholder).
				Value(&serverURL).
				Validate(func(s string) error {
					s = strings.TrimSpace(sanitizeInput(s))
					if s == "" {
						return fmt.Errorf("URL cannot be empty")
					}
					if validate != nil {
						return validate(s)
					}
					return nil
				}),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}

	return strings.TrimSpace(sanitizeInput(serverURL)), nil
}

// ConfirmSaveServerURL asks whether the entered URL should be remembered
func ConfirmSaveServerURL(serverURL string) bool {
	var save bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Remember this server?").
				Description(serverURL).
				Affirmative("Yes").
				Negative("No").
				Value(&save),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return false
	}
	return save
}

// PromptForFilename asks user for an export filename. ext is appended
// when missing.
func PromptForFilename(defaultName, ext string) (string, error) {
	var filename string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Export Filename").
				Description("Leave empty to use " + defaultName).
				Placeholder(defaultName).
				Value(&filename),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}

	return normalizeFilename(filename, defaultName, ext), nil
}

func normalizeFilename(filename, defaultName, ext string) string {
	filename = strings.TrimSpace(sanitizeInput(filename))
	if filename == "" {
		filename = defaultName
	}
	if ext != "" && !strings.HasSuffix(strings.ToLower(filename), strings.ToLower(ext)) {
		filename += ext
	}
	return filename
}

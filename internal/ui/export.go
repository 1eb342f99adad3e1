package ui

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/kouign-amann/picview/internal/models"
)

// ExportMonthToMarkdown writes the markdown report of a month into dir and
// returns the file path
func ExportMonthToMarkdown(dir string, r models.DateRange, pictures []models.Picture, lang string, pathWidth int) (string, error) {
	filename := filepath.Join(dir, fmt.Sprintf("pictures-%s.md", r.Start.Format("2006-01")))

	content := GenerateMonthMarkdown(r, pictures, lang, pathWidth, time.Now())
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write markdown file: %w", err)
	}

	return filename, nil
}

// ExportThumbnail decodes the base64 thumbnail of p into dir/<hash>.jpg
func ExportThumbnail(dir string, p models.Picture) (string, error) {
	if p.Info.Thumbnail == "" {
		return "", fmt.Errorf("picture %s has no thumbnail", ShortHash(p.Hash))
	}

	// Some servers send a data URL
	encoded := p.Info.Thumbnail
	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode thumbnail: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	filename := filepath.Join(dir, p.Hash+".jpg")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write thumbnail: %w", err)
	}

	return filename, nil
}

// ExportDatabaseBackup copies the cache database next to itself with a
// timestamped name
func ExportDatabaseBackup(currentDBPath string) (string, error) {
	timestamp := time.Now().Format("2006-01-02-150405")
	baseName := strings.TrimSuffix(filepath.Base(currentDBPath), filepath.Ext(currentDBPath))
	backupFilename := filepath.Join(filepath.Dir(currentDBPath), fmt.Sprintf("%s-backup-%s.db", baseName, timestamp))

	src, err := os.Open(currentDBPath)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(backupFilename)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to copy database: %w", err)
	}

	return backupFilename, nil
}

// OpenFile opens a file or URL with the system default application
func OpenFile(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", target)
	case "darwin":
		cmd = exec.Command("open", target)
	default: // linux, freebsd, etc.
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}

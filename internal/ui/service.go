package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kouign-amann/picview/internal/models"
)

// PictureService is what the viewer needs from the picture source
type PictureService interface {
	ListDateRanges(ctx context.Context) ([]models.DateRange, error)
	ListPictures(ctx context.Context, start, end time.Time) ([]models.Picture, error)
	RecentlyUpdated(ctx context.Context, window time.Duration) ([]models.Picture, error)
	GetPicture(ctx context.Context, hash string) (models.Picture, error)
	SetAndPlanBackup(ctx context.Context, hash string, required bool) (models.Picture, error)
}

// MonthMemory is implemented by services that remember the last opened month
type MonthMemory interface {
	SaveLastDateRange(ctx context.Context, r models.DateRange) error
	LastDateRange(ctx context.Context, ranges []models.DateRange) (models.DateRange, bool)
}

// OfflineReporter is implemented by services that can serve cached data
type OfflineReporter interface {
	Offline() bool
}

// CacheReporter tells when the cached data was last synced
type CacheReporter interface {
	CachedAt() time.Time
}

// Options configures the viewer
type Options struct {
	Language       string // "fr" or "en"
	PathWidth      int    // max characters of file paths in the detail view
	PollInterval   time.Duration
	PollWindow     time.Duration
	PollTimeout    time.Duration
	RequestTimeout time.Duration
	ExportDir      string
	ServerURL      string // shown in the header
	Logger         *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Language == "" {
		o.Language = "fr"
	}
	if o.PathWidth <= 0 {
		o.PathWidth = 30
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 10 * time.Second
	}
	if o.PollWindow <= 0 {
		o.PollWindow = 30 * time.Second
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = o.PollInterval
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	if o.ExportDir == "" {
		o.ExportDir = "."
	}
	return o
}

// Package source serves picture data to the viewer. It reads from the
// picture API, writes every answer through to the local cache and falls
// back to the cache when the API cannot be reached.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kouign-amann/picview/internal/api"
	"github.com/kouign-amann/picview/internal/db"
	"github.com/kouign-amann/picview/internal/gallery"
	"github.com/kouign-amann/picview/internal/models"
)

// ErrOffline is returned when the API is unreachable and the cache cannot
// answer either
var ErrOffline = errors.New("picture API unreachable and no cached data")

// Remote is the subset of the API client the service uses
type Remote interface {
	Ping(ctx context.Context) error
	ListDateRanges(ctx context.Context) ([]models.DateRange, error)
	ListPictures(ctx context.Context, start, end time.Time) ([]models.Picture, error)
	RecentlyUpdated(ctx context.Context, window time.Duration) ([]models.Picture, error)
	GetPicture(ctx context.Context, hash string) (models.Picture, error)
	PictureExists(ctx context.Context, hash string) (bool, error)
	ListBackups(ctx context.Context, hash string) ([]models.Backup, error)
	SetAndPlanBackup(ctx context.Context, hash string, required bool) (models.Picture, error)
}

// Store is the subset of the cache the service uses
type Store interface {
	ReplaceDateRanges(ctx context.Context, ranges []models.DateRange) error
	GetDateRanges(ctx context.Context) ([]models.DateRange, error)
	UpsertPictures(ctx context.Context, pictures []models.Picture) error
	GetPicture(ctx context.Context, hash string) (models.Picture, error)
	ListPictures(ctx context.Context, start, end time.Time) ([]models.Picture, error)
	AllPictures(ctx context.Context) ([]models.Picture, error)
	CountPictures(ctx context.Context) (int, error)
	DeletePicture(ctx context.Context, hash string) error
	SetSetting(ctx context.Context, key, value string) error
	GetSetting(ctx context.Context, key string) (string, error)
	DeleteSetting(ctx context.Context, key string) error
	MarkSynced(ctx context.Context, t time.Time) error
	LastSync(ctx context.Context) (time.Time, error)
}

var (
	_ Remote = (*api.Client)(nil)
	_ Store  = (*db.DB)(nil)
)

// Service combines the API client and the optional cache
type Service struct {
	remote  Remote
	store   Store // nil disables caching
	logger  *log.Logger
	offline atomic.Bool

	cachedAt atomic.Int64 // unix nanoseconds of the last sync, 0 if unknown
}

// New creates a service. store and logger may be nil.
func New(remote Remote, store Store, logger *log.Logger) *Service {
	return &Service{remote: remote, store: store, logger: logger}
}

// Offline reports whether the last read was served from the cache
func (s *Service) Offline() bool {
	return s.offline.Load()
}

// CachedAt returns when the cache was last synced, as seen by the last
// read served from it. It is zero when unknown.
func (s *Service) CachedAt() time.Time {
	n := s.cachedAt.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// LastSync returns when the cache was last synced, zero if never
func (s *Service) LastSync(ctx context.Context) time.Time {
	if s.store == nil {
		return time.Time{}
	}
	last, err := s.store.LastSync(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Failed to read last sync time", "error", err)
		}
		return time.Time{}
	}
	return last
}

// Ping checks the API
func (s *Service) Ping(ctx context.Context) error {
	err := s.remote.Ping(ctx)
	s.offline.Store(err != nil && unavailable(err))
	return err
}

// ListDateRanges returns the browsable months
func (s *Service) ListDateRanges(ctx context.Context) ([]models.DateRange, error) {
	ranges, err := s.remote.ListDateRanges(ctx)
	if err == nil {
		s.offline.Store(false)
		s.write(ctx, "date ranges", func(ctx context.Context) error {
			return s.store.ReplaceDateRanges(ctx, ranges)
		})
		return ranges, nil
	}

	if !s.canFallBack(err) {
		return nil, err
	}

	cached, cacheErr := s.store.GetDateRanges(ctx)
	if cacheErr != nil || len(cached) == 0 {
		return nil, s.offlineError(err, cacheErr)
	}
	s.servedFromCache(ctx, "date ranges", err)
	return cached, nil
}

// ListPictures returns the pictures of a date range
func (s *Service) ListPictures(ctx context.Context, start, end time.Time) ([]models.Picture, error) {
	pictures, err := s.remote.ListPictures(ctx, start, end)
	if err == nil {
		s.offline.Store(false)
		s.write(ctx, "pictures", func(ctx context.Context) error {
			return s.store.UpsertPictures(ctx, pictures)
		})
		return pictures, nil
	}

	if !s.canFallBack(err) {
		return nil, err
	}

	cached, cacheErr := s.store.ListPictures(ctx, start, end)
	if cacheErr != nil || len(cached) == 0 {
		return nil, s.offlineError(err, cacheErr)
	}
	s.servedFromCache(ctx, "pictures", err)
	return cached, nil
}

// RecentlyUpdated returns the pictures updated during the last window.
// There is no cache fallback: a failed poll is simply skipped by callers.
func (s *Service) RecentlyUpdated(ctx context.Context, window time.Duration) ([]models.Picture, error) {
	pictures, err := s.remote.RecentlyUpdated(ctx, window)
	if err != nil {
		return nil, err
	}

	s.write(ctx, "updated pictures", func(ctx context.Context) error {
		return s.store.UpsertPictures(ctx, pictures)
	})
	return pictures, nil
}

// GetPicture returns one picture with its current backup plan. A picture
// the API no longer knows is dropped from the cache.
func (s *Service) GetPicture(ctx context.Context, hash string) (models.Picture, error) {
	picture, err := s.remote.GetPicture(ctx, hash)
	if err == nil {
		backups, err := s.remote.ListBackups(ctx, hash)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("Keeping listed backups", "hash", hash, "error", err)
			}
		} else {
			picture.BackupList = backups
		}

		s.write(ctx, "picture", func(ctx context.Context) error {
			return s.store.UpsertPictures(ctx, []models.Picture{picture})
		})
		return picture, nil
	}

	if errors.Is(err, api.ErrNotFound) {
		s.write(ctx, "deleted picture", func(ctx context.Context) error {
			return s.store.DeletePicture(ctx, hash)
		})
		return models.Picture{}, err
	}
	if !s.canFallBack(err) {
		return models.Picture{}, err
	}

	cached, cacheErr := s.store.GetPicture(ctx, hash)
	if cacheErr != nil {
		return models.Picture{}, s.offlineError(err, cacheErr)
	}
	s.servedFromCache(ctx, "picture", err)
	return cached, nil
}

// SetAndPlanBackup toggles the backup of a picture. It always needs the API.
func (s *Service) SetAndPlanBackup(ctx context.Context, hash string, required bool) (models.Picture, error) {
	picture, err := s.remote.SetAndPlanBackup(ctx, hash, required)
	if err != nil {
		return models.Picture{}, err
	}

	s.write(ctx, "picture", func(ctx context.Context) error {
		return s.store.UpsertPictures(ctx, []models.Picture{picture})
	})
	return picture, nil
}

// SaveLastDateRange remembers the month the user is looking at
func (s *Service) SaveLastDateRange(ctx context.Context, r models.DateRange) error {
	if s.store == nil {
		return nil
	}
	return s.store.SetSetting(ctx, db.SettingLastDateRange, gallery.DateRangeLink(r.Start, r.End))
}

// LastDateRange returns the remembered month among ranges. A remembered
// month that is invalid or no longer listed is forgotten.
func (s *Service) LastDateRange(ctx context.Context, ranges []models.DateRange) (models.DateRange, bool) {
	if s.store == nil {
		return models.DateRange{}, false
	}

	link, err := s.store.GetSetting(ctx, db.SettingLastDateRange)
	if err != nil {
		return models.DateRange{}, false
	}

	start, end, err := gallery.ParseDateRangeLink(link)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Ignoring invalid saved date range", "link", link, "error", err)
		}
		s.forgetDateRange(ctx)
		return models.DateRange{}, false
	}

	r, ok := gallery.FindDateRange(ranges, start, end)
	if !ok && len(ranges) > 0 {
		s.forgetDateRange(ctx)
	}
	return r, ok
}

func (s *Service) forgetDateRange(ctx context.Context) {
	if err := s.store.DeleteSetting(ctx, db.SettingLastDateRange); err != nil && s.logger != nil {
		s.logger.Warn("Failed to forget saved date range", "error", err)
	}
}

// Sync refreshes the cached date ranges and the pictures of every range.
// Cached pictures missing from every range are checked one by one and
// dropped when the API no longer knows them. It is used by the background
// syncer.
func (s *Service) Sync(ctx context.Context) (pictures int, err error) {
	if s.store == nil {
		return 0, fmt.Errorf("sync requires a cache")
	}

	ranges, err := s.remote.ListDateRanges(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list date ranges: %w", err)
	}
	if err := s.store.ReplaceDateRanges(ctx, ranges); err != nil {
		return 0, err
	}

	seen := make(map[string]bool)
	for _, r := range ranges {
		list, err := s.remote.ListPictures(ctx, r.Start, r.End)
		if err != nil {
			return pictures, fmt.Errorf("failed to list pictures of %s: %w", gallery.DateRangeLink(r.Start, r.End), err)
		}
		if err := s.store.UpsertPictures(ctx, list); err != nil {
			return pictures, err
		}
		for _, p := range list {
			seen[p.Hash] = true
		}
		pictures += len(list)
	}

	removed, err := s.prune(ctx, seen)
	if err != nil {
		return pictures, err
	}

	if err := s.store.MarkSynced(ctx, time.Now()); err != nil {
		return pictures, err
	}

	if s.logger != nil {
		cached, err := s.store.CountPictures(ctx)
		if err != nil {
			s.logger.Warn("Failed to count cached pictures", "error", err)
		}
		s.logger.Info("Cache synced", "ranges", len(ranges), "pictures", pictures, "removed", removed, "cached", cached)
	}
	return pictures, nil
}

// prune deletes the cached pictures that are not in seen and that the API
// reports as unknown
func (s *Service) prune(ctx context.Context, seen map[string]bool) (int, error) {
	cached, err := s.store.AllPictures(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, p := range cached {
		if seen[p.Hash] {
			continue
		}
		exists, err := s.remote.PictureExists(ctx, p.Hash)
		if err != nil {
			return removed, err
		}
		if exists {
			continue
		}
		if err := s.store.DeletePicture(ctx, p.Hash); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// write runs a cache write; failures are logged, never returned
func (s *Service) write(ctx context.Context, what string, fn func(ctx context.Context) error) {
	if s.store == nil {
		return
	}
	if err := fn(ctx); err != nil && s.logger != nil {
		s.logger.Warn("Failed to cache "+what, "error", err)
	}
}

func (s *Service) canFallBack(err error) bool {
	return s.store != nil && unavailable(err)
}

func (s *Service) servedFromCache(ctx context.Context, what string, cause error) {
	s.offline.Store(true)
	if last := s.LastSync(ctx); !last.IsZero() {
		s.cachedAt.Store(last.UnixNano())
	}
	if s.logger != nil {
		s.logger.Warn("Serving "+what+" from cache", "error", cause)
	}
}

func (s *Service) offlineError(remoteErr, cacheErr error) error {
	s.offline.Store(true)
	if cacheErr != nil && !errors.Is(cacheErr, db.ErrNotFound) {
		return fmt.Errorf("%w: %w (cache: %v)", ErrOffline, remoteErr, cacheErr)
	}
	return fmt.Errorf("%w: %w", ErrOffline, remoteErr)
}

// unavailable reports whether err means the API could not answer, as
// opposed to an answer we must show (404, bad request...)
func unavailable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

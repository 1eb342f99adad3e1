package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kouign-amann/picview/internal/gallery"
	"github.com/kouign-amann/picview/internal/models"
)

// Ping checks that the API answers
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		Ping string `json:"ping"`
	}
	if err := c.getJSON(ctx, "/ping", nil, &resp); err != nil {
		return err
	}
	if resp.Ping != "ok" {
		return fmt.Errorf("unexpected ping answer %q", resp.Ping)
	}
	return nil
}

// ListDateRanges returns the browsable months with their picture counts.
// Range IDs are the positions in the server response.
func (c *Client) ListDateRanges(ctx context.Context) ([]models.DateRange, error) {
	var counts []models.PictureCount
	if err := c.getJSON(ctx, "/picture/count", nil, &counts); err != nil {
		return nil, fmt.Errorf("failed to count pictures: %w", err)
	}

	ranges := make([]models.DateRange, 0, len(counts))
	for i, count := range counts {
		r, err := count.ToDateRange(i)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("Skipping invalid date range", "index", i, "error", err)
			}
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// ListPictures returns the pictures taken between start and end
func (c *Client) ListPictures(ctx context.Context, start, end time.Time) ([]models.Picture, error) {
	query := url.Values{}
	query.Set("start", models.FormatQueryTime(start))
	query.Set("end", models.FormatQueryTime(end))

	var pictures []models.Picture
	if err := c.getJSON(ctx, "/picture/list", query, &pictures); err != nil {
		return nil, fmt.Errorf("failed to list pictures: %w", err)
	}
	return gallery.ConvertPictures(pictures), nil
}

// RecentlyUpdated returns the pictures modified during the last window.
// The window is sent in whole seconds, at least one.
func (c *Client) RecentlyUpdated(ctx context.Context, window time.Duration) ([]models.Picture, error) {
	seconds := int(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	var pictures []models.Picture
	if err := c.getJSON(ctx, "/picture/updated/"+strconv.Itoa(seconds), nil, &pictures); err != nil {
		return nil, fmt.Errorf("failed to list updated pictures: %w", err)
	}
	return gallery.ConvertPictures(pictures), nil
}

// GetPicture fetches one picture. A missing picture yields an error
// matching ErrNotFound.
func (c *Client) GetPicture(ctx context.Context, hash string) (models.Picture, error) {
	var picture models.Picture
	if err := c.getJSON(ctx, "/picture/"+url.PathEscape(hash), nil, &picture); err != nil {
		return models.Picture{}, fmt.Errorf("failed to get picture %s: %w", hash, err)
	}
	return gallery.ConvertPicture(picture), nil
}

// PictureExists reports whether the API knows the hash
func (c *Client) PictureExists(ctx context.Context, hash string) (bool, error) {
	_, err := c.do(ctx, http.MethodGet, "/picture/exists/"+url.PathEscape(hash), nil)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check picture %s: %w", hash, err)
}

// ListBackups returns the backups planned for a picture
func (c *Client) ListBackups(ctx context.Context, hash string) ([]models.Backup, error) {
	var backups []models.Backup
	if err := c.getJSON(ctx, "/backup/plan/"+url.PathEscape(hash), nil, &backups); err != nil {
		return nil, fmt.Errorf("failed to list backups of %s: %w", hash, err)
	}
	return backups, nil
}

// SetBackup marks a picture as requiring a backup, or clears the mark
func (c *Client) SetBackup(ctx context.Context, hash string, required bool) error {
	method := http.MethodDelete
	if required {
		method = http.MethodPost
	}

	if _, err := c.do(ctx, method, "/backup/request/"+url.PathEscape(hash), nil); err != nil {
		return fmt.Errorf("failed to set backup of %s: %w", hash, err)
	}
	return nil
}

// PlanBackup asks the API to plan the backups of a picture on every storage
func (c *Client) PlanBackup(ctx context.Context, hash string) error {
	if _, err := c.do(ctx, http.MethodPut, "/backup/plan/"+url.PathEscape(hash), nil); err != nil {
		return fmt.Errorf("failed to plan backup of %s: %w", hash, err)
	}
	return nil
}

// SetAndPlanBackup updates the backup flag, plans the backups and returns
// the picture as the API now sees it
func (c *Client) SetAndPlanBackup(ctx context.Context, hash string, required bool) (models.Picture, error) {
	if err := c.SetBackup(ctx, hash, required); err != nil {
		return models.Picture{}, err
	}
	if err := c.PlanBackup(ctx, hash); err != nil {
		return models.Picture{}, err
	}

	if c.logger != nil {
		c.logger.Info("Backup updated", "hash", hash, "required", required)
	}

	return c.GetPicture(ctx, hash)
}

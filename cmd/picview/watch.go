package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kouign-amann/picview/internal/config"
	"github.com/kouign-amann/picview/internal/gallery"
	"github.com/kouign-amann/picview/internal/models"
	"github.com/kouign-amann/picview/internal/poll"
	"github.com/kouign-amann/picview/internal/source"
	"github.com/kouign-amann/picview/internal/ui"
)

const monthLayout = "2006-01"

// findMonth returns the date range starting in the month written YYYY-MM
func findMonth(ranges []models.DateRange, month string) (models.DateRange, error) {
	want, err := time.Parse(monthLayout, month)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}
	for _, r := range ranges {
		if r.Start.Year() == want.Year() && r.Start.Month() == want.Month() {
			return r, nil
		}
	}
	return models.DateRange{}, fmt.Errorf("no pictures in %s", month)
}

// watchMonth prints the pictures of a month refreshed by the server until
// ctx ends
func watchMonth(ctx context.Context, svc *source.Service, conf *config.Config, month string, logger *log.Logger) error {
	ranges, err := svc.ListDateRanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to list months: %w", err)
	}
	r, err := findMonth(ranges, month)
	if err != nil {
		return err
	}

	current, err := svc.ListPictures(ctx, r.Start, r.End)
	if err != nil {
		return fmt.Errorf("failed to list pictures: %w", err)
	}
	fmt.Printf("Watching %s (%d pictures), Ctrl+C to stop\n", ui.MonthLabel(r, conf.UI.Language), len(current))

	window := conf.Poll.Window
	poller := poll.New(func(ctx context.Context) ([]models.Picture, error) {
		return svc.RecentlyUpdated(ctx, window)
	}, poll.Options{
		Interval:  conf.Poll.Interval,
		Timeout:   conf.Poll.Timeout,
		Immediate: true,
		Logger:    logger,
	})

	results, err := poller.Start(ctx)
	if err != nil {
		return err
	}
	defer poller.Stop()

	consumeUpdates(os.Stdout, current, results, logger)
	return nil
}

// consumeUpdates merges every poll result into current and prints the
// refreshed pictures. It returns the final list once results is closed.
func consumeUpdates(w io.Writer, current []models.Picture, results <-chan poll.Result[[]models.Picture], logger *log.Logger) []models.Picture {
	for res := range results {
		if res.Err != nil {
			logger.Warn("Poll failed", "seq", res.Seq, "error", res.Err)
			continue
		}
		changed := gallery.ChangedHashes(current, res.Value)
		current = gallery.Refresh(current, res.Value)
		ui.PrintPictureUpdates(w, res.At, current, changed)
	}
	return current
}

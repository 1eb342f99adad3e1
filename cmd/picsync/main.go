package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/kouign-amann/picview/internal/config"
	"github.com/kouign-amann/picview/internal/source"
	"github.com/kouign-amann/picview/internal/syncer"
	"github.com/kouign-amann/picview/internal/ui"
)

const maxFailures = 3

func main() {
	configFlag := flag.String("config", "", "Path to a picview.yaml config file")
	urlFlag := flag.String("url", "", "Picture API URL (overrides config)")
	cacheFlag := flag.String("cache", "", "Path to the SQLite cache (overrides config)")
	cronFlag := flag.String("cron", "", "Sync schedule, cron syntax or @every <duration>")
	levelFlag := flag.String("log-level", "", "Log level: debug, info, warn, error")
	onceFlag := flag.Bool("once", false, "Run a single sync and exit")
	flag.Parse()

	overrides := map[string]any{"cache.enabled": true}
	if *urlFlag != "" {
		overrides["api.url"] = *urlFlag
	}
	if *cacheFlag != "" {
		overrides["cache.path"] = *cacheFlag
	}
	if *cronFlag != "" {
		overrides["sync.cron"] = *cronFlag
	}
	if *levelFlag != "" {
		overrides["log.level"] = *levelFlag
	}

	conf, err := config.Load(config.Options{ConfigFile: *configFlag, Overrides: overrides})
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}

	logger := config.NewLogger(os.Stderr, conf.Log.Level, "picsync")

	svc, database, err := source.Open(conf, logger)
	if err != nil {
		logger.Fatal("Failed to start", "error", err)
	}
	defer database.Close()

	s, err := syncer.New(conf.Sync.Cron, svc.Sync, conf.Sync.Timeout, logger)
	if err != nil {
		logger.Fatal("Invalid schedule", "cron", conf.Sync.Cron, "error", err)
	}

	if *onceFlag {
		if err := syncOnce(s.RunOnce); err != nil {
			database.Close()
			logger.Fatal("Sync failed", "error", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", "error", err)
	}
	logger.Info("Caching pictures", "url", conf.API.URL, "cache", database.Path())

	// first sync right away, then on schedule
	go s.RunOnce()

	monitor(ctx, s.Reports(), logger)
	logger.Info("Stopping")
	s.Stop()
}

var errSkipped = errors.New("a sync is already running")

// syncOnce performs a single run and returns its error
func syncOnce(run func() (syncer.Report, bool)) error {
	report, ran := run()
	if !ran {
		return errSkipped
	}
	return report.Err
}

// monitor reads run reports until ctx ends or reports is closed. It warns
// when maxFailures runs in a row have failed and returns how many times
// it warned.
func monitor(ctx context.Context, reports <-chan syncer.Report, logger *log.Logger) int {
	failures, warnings := 0, 0
	for {
		select {
		case <-ctx.Done():
			return warnings
		case report, ok := <-reports:
			if !ok {
				return warnings
			}
			if report.Err == nil {
				failures = 0
				continue
			}
			failures++
			if failures == maxFailures {
				warnings++
				logger.Warn("Sync keeps failing, serving stale cache", "failures", failures)
			}
		}
	}
}

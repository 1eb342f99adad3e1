// Package syncer refreshes the picture cache on a cron schedule.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// SyncFunc refreshes the cache and returns the number of pictures stored
type SyncFunc func(ctx context.Context) (int, error)

// Report describes one sync run
type Report struct {
	Started  time.Time
	Duration time.Duration
	Pictures int
	Err      error
}

// Syncer runs a SyncFunc on a schedule. Runs never overlap: a tick that
// fires while a sync is in progress is skipped.
type Syncer struct {
	cron    *cron.Cron
	spec    string
	sync    SyncFunc
	timeout time.Duration
	logger  *log.Logger

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	reports chan Report
}

// New creates a syncer for a cron spec such as "@every 5m" or "*/10 * * * *".
// Each run is bounded by timeout when it is positive.
func New(spec string, fn SyncFunc, timeout time.Duration, logger *log.Logger) (*Syncer, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Syncer{
		cron:    cron.New(),
		spec:    spec,
		sync:    fn,
		timeout: timeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		reports: make(chan Report, 1),
	}, nil
}

// Reports returns a channel carrying the latest run report. An unread
// report is replaced by the next one.
func (s *Syncer) Reports() <-chan Report {
	return s.reports
}

// Start registers the job and starts the scheduler
func (s *Syncer) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("failed to register sync job: %w", err)
	}
	s.cron.Start()

	if s.logger != nil {
		s.logger.Info("Sync scheduled", "schedule", s.spec)
	}
	return nil
}

// Stop cancels a running sync and waits for the scheduler to finish
func (s *Syncer) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()

	if s.logger != nil {
		s.logger.Info("Syncer stopped")
	}
}

// RunOnce performs a sync now unless one is already running. It reports
// false when the run was skipped.
func (s *Syncer) RunOnce() (Report, bool) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Warn("Previous sync still running, skipping")
		}
		return Report{}, false
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report := Report{Started: time.Now()}
	if s.logger != nil {
		s.logger.Info("Starting sync")
	}

	report.Pictures, report.Err = s.sync(ctx)
	report.Duration = time.Since(report.Started)

	if s.logger != nil {
		if report.Err != nil {
			s.logger.Error("Sync failed", "error", report.Err, "elapsed", report.Duration)
		} else {
			s.logger.Info("Sync completed", "pictures", report.Pictures, "elapsed", report.Duration)
		}
	}

	s.publish(report)
	return report, true
}

// publish replaces any unread report with r. Runs never overlap, so there
// is a single sender.
func (s *Syncer) publish(r Report) {
	for {
		select {
		case s.reports <- r:
			return
		default:
		}
		select {
		case <-s.reports:
		default:
		}
	}
}

package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kouign-amann/picview/internal/syncer"
	"github.com/stretchr/testify/assert"
)

var errSync = errors.New("api down")

func TestMonitor(t *testing.T) {
	tests := []struct {
		name     string
		runs     []error
		warnings int
	}{
		{name: "all good", runs: []error{nil, nil, nil}, warnings: 0},
		{name: "below threshold", runs: []error{errSync, errSync, nil, errSync}, warnings: 0},
		{name: "threshold reached", runs: []error{errSync, errSync, errSync}, warnings: 1},
		{name: "warns once per streak", runs: []error{errSync, errSync, errSync, errSync, errSync}, warnings: 1},
		{name: "success resets", runs: []error{errSync, errSync, errSync, nil, errSync, errSync, errSync}, warnings: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := make(chan syncer.Report, len(tt.runs))
			for _, err := range tt.runs {
				reports <- syncer.Report{Err: err}
			}
			close(reports)

			var out bytes.Buffer
			warnings := monitor(context.Background(), reports, log.New(&out))

			assert.Equal(t, tt.warnings, warnings)
			if tt.warnings > 0 {
				assert.Contains(t, out.String(), "Sync keeps failing")
			} else {
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestMonitor_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		done <- monitor(ctx, make(chan syncer.Report), log.New(&bytes.Buffer{}))
	}()

	cancel()
	select {
	case n := <-done:
		assert.Zero(t, n)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestSyncOnce(t *testing.T) {
	tests := []struct {
		name string
		run  func() (syncer.Report, bool)
		want error
	}{
		{name: "success", run: func() (syncer.Report, bool) { return syncer.Report{Pictures: 3}, true }},
		{name: "failure", run: func() (syncer.Report, bool) { return syncer.Report{Err: errSync}, true }, want: errSync},
		{name: "skipped", run: func() (syncer.Report, bool) { return syncer.Report{}, false }, want: errSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := syncOnce(tt.run)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

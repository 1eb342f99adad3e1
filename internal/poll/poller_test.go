package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan Result[T]) Result[T] {
	t.Helper()
	select {
	case res, ok := <-ch:
		require.True(t, ok, "channel closed")
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("no result received")
	}
	return Result[T]{}
}

func TestPoller_DeliversInOrder(t *testing.T) {
	var calls atomic.Int64
	p := New(func(ctx context.Context) (int64, error) {
		return calls.Add(1), nil
	}, Options{Interval: 5 * time.Millisecond, Immediate: true})

	results, err := p.Start(context.Background())
	require.NoError(t, err)
	defer p.Stop()

	var last uint64
	for i := 0; i < 5; i++ {
		res := receive(t, results)
		assert.NoError(t, res.Err)
		assert.Greater(t, res.Seq, last)
		last = res.Seq
	}
}

func TestPoller_DropsStaleResults(t *testing.T) {
	gate := make(chan struct{})

	p := New(func(ctx context.Context) (uint64, error) {
		seq, ok := SeqFromContext(ctx)
		assert.True(t, ok)
		if seq == 1 {
			select {
			case <-gate:
			case <-ctx.Done():
			}
		}
		return seq, nil
	}, Options{Interval: 5 * time.Millisecond, Timeout: time.Second, Immediate: true})

	results, err := p.Start(context.Background())
	require.NoError(t, err)
	defer p.Stop()

	first := receive(t, results)
	assert.Greater(t, first.Seq, uint64(1))
	assert.Equal(t, first.Seq, first.Value)

	close(gate)

	last := first.Seq
	for i := 0; i < 5; i++ {
		res := receive(t, results)
		assert.Greater(t, res.Seq, last)
		assert.NotEqual(t, uint64(1), res.Value, "stale first fetch must be dropped")
		last = res.Seq
	}
}

func TestPoller_StopClosesChannel(t *testing.T) {
	p := New(func(ctx context.Context) (int, error) {
		return 1, nil
	}, Options{Interval: 5 * time.Millisecond, Immediate: true})

	results, err := p.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Running())

	receive(t, results)
	p.Stop()
	assert.False(t, p.Running())

	// the channel must be closed; buffered values are not allowed
	_, ok := <-results
	assert.False(t, ok)

	// stopping twice is harmless
	p.Stop()
}

func TestPoller_StopCancelsInFlightFetch(t *testing.T) {
	started := make(chan struct{}, 1)
	cancelled := make(chan struct{}, 1)

	p := New(func(ctx context.Context) (int, error) {
		started <- struct{}{}
		<-ctx.Done()
		cancelled <- struct{}{}
		return 0, ctx.Err()
	}, Options{Interval: time.Hour, Timeout: time.Hour, Immediate: true})

	results, err := p.Start(context.Background())
	require.NoError(t, err)

	<-started
	p.Stop()

	select {
	case <-cancelled:
	default:
		t.Fatal("fetch was not cancelled before Stop returned")
	}

	_, ok := <-results
	assert.False(t, ok, "result of a cancelled run must not be delivered")
}

func TestPoller_Restart(t *testing.T) {
	var calls atomic.Int64
	p := New(func(ctx context.Context) (int64, error) {
		return calls.Add(1), nil
	}, Options{Interval: 5 * time.Millisecond, Immediate: true})

	first, err := p.Start(context.Background())
	require.NoError(t, err)

	_, err = p.Start(context.Background())
	assert.ErrorIs(t, err, ErrRunning)

	r1 := receive(t, first)
	p.Stop()

	second, err := p.Start(context.Background())
	require.NoError(t, err)
	defer p.Stop()

	r2 := receive(t, second)
	assert.Greater(t, r2.Seq, r1.Seq)
}

func TestPoller_ParentContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := New(func(ctx context.Context) (int, error) {
		return 1, nil
	}, Options{Interval: 5 * time.Millisecond})

	results, err := p.Start(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-results:
		for ok {
			_, ok = <-results
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after context end")
	}
	assert.Eventually(t, func() bool { return !p.Running() }, time.Second, 5*time.Millisecond)
}

func TestPoller_FetchTimeout(t *testing.T) {
	p := New(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, Options{Interval: time.Hour, Timeout: 10 * time.Millisecond, Immediate: true})

	results, err := p.Start(context.Background())
	require.NoError(t, err)
	defer p.Stop()

	res := receive(t, results)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

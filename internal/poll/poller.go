// Package poll runs a fetch function on a fixed interval and delivers its
// results in order. Fetches may overlap; a result that finishes after a
// later one was already delivered is dropped.
package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// FetchFunc fetches one batch. It must honor ctx cancellation.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Result is the outcome of one fetch. Seq grows with every fetch started
// by the poller, across runs.
type Result[T any] struct {
	Seq   uint64
	Value T
	Err   error
	At    time.Time
}

// Options tunes a Poller
type Options struct {
	Interval time.Duration
	// Timeout bounds each fetch; zero means Interval
	Timeout time.Duration
	// Immediate runs a first fetch as soon as the poller starts
	Immediate bool
	Logger    *log.Logger
}

type seqKey struct{}

// SeqFromContext returns the sequence number of the fetch owning ctx
func SeqFromContext(ctx context.Context) (uint64, bool) {
	seq, ok := ctx.Value(seqKey{}).(uint64)
	return seq, ok
}

// ErrRunning is returned by Start when the poller is already started
var ErrRunning = errors.New("poller already running")

// Poller schedules fetches until stopped
type Poller[T any] struct {
	fetch FetchFunc[T]
	opts  Options

	mu      sync.Mutex
	seq     uint64
	current *run[T]
}

// run is the state of one Start/Stop cycle
type run[T any] struct {
	ctx     context.Context
	cancel  context.CancelFunc
	results chan Result[T]
	wg      sync.WaitGroup

	mu        sync.Mutex
	delivered uint64

	closeOnce sync.Once
}

// New creates a stopped poller
func New[T any](fetch FetchFunc[T], opts Options) *Poller[T] {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = opts.Interval
	}
	return &Poller[T]{fetch: fetch, opts: opts}
}

// Start launches the polling loop and returns the channel results are
// delivered on. The channel is closed by Stop or when ctx ends.
func (p *Poller[T]) Start(ctx context.Context) (<-chan Result[T], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		return nil, ErrRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &run[T]{
		ctx:     runCtx,
		cancel:  cancel,
		results: make(chan Result[T]),
	}
	p.current = r

	r.wg.Add(1)
	go p.loop(r)

	// Close the channel when the parent context ends without Stop
	go func() {
		<-runCtx.Done()
		p.finish(r)
	}()

	if p.opts.Logger != nil {
		p.opts.Logger.Debug("Poller started", "interval", p.opts.Interval)
	}

	return r.results, nil
}

// Stop cancels in-flight fetches, waits for them and closes the results
// channel. Results not yet delivered are discarded. Stop on a stopped
// poller is a no-op.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	r := p.current
	p.mu.Unlock()

	if r == nil {
		return
	}
	r.cancel()
	p.finish(r)
}

// Running reports whether the poller has been started and not stopped
func (p *Poller[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}

// finish detaches r and closes its channel once every goroutine of the
// run has returned. Concurrent callers all wait for the close.
func (p *Poller[T]) finish(r *run[T]) {
	p.mu.Lock()
	if p.current == r {
		p.current = nil
	}
	p.mu.Unlock()

	r.closeOnce.Do(func() {
		r.wg.Wait()
		close(r.results)

		if p.opts.Logger != nil {
			p.opts.Logger.Debug("Poller stopped")
		}
	})
}

func (p *Poller[T]) nextSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	return p.seq
}

func (p *Poller[T]) loop(r *run[T]) {
	defer r.wg.Done()

	if p.opts.Immediate {
		p.launch(r)
	}

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			p.launch(r)
		}
	}
}

func (p *Poller[T]) launch(r *run[T]) {
	if r.ctx.Err() != nil {
		return
	}

	seq := p.nextSeq()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithValue(r.ctx, seqKey{}, seq), p.opts.Timeout)
		value, err := p.fetch(ctx)
		cancel()

		p.deliver(r, Result[T]{Seq: seq, Value: value, Err: err, At: time.Now()})
	}()
}

// deliver sends res unless the run is cancelled or a newer result already
// went out. The run mutex keeps delivery order equal to sequence order.
func (p *Poller[T]) deliver(r *run[T], res Result[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx.Err() != nil {
		return
	}

	if res.Seq <= r.delivered {
		if p.opts.Logger != nil {
			p.opts.Logger.Debug("Dropping stale poll result", "seq", res.Seq, "delivered", r.delivered)
		}
		return
	}

	select {
	case r.results <- res:
		r.delivered = res.Seq
	case <-r.ctx.Done():
	}
}

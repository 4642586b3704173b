// Package watch runs advisory preference checks while files change.
package watch

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lazypower/engram/internal/enforce"
	"github.com/lazypower/engram/internal/logging"
)

// DefaultThreshold is the number of change events between checks.
const DefaultThreshold = 3

// Checker runs one check cycle. *enforce.Pipeline satisfies it.
type Checker interface {
	Check(ctx context.Context) enforce.Result
}

// Reporter receives the result of every completed check that had changes
// to review.
type Reporter func(enforce.Result)

// Watcher counts change events and runs a check every Threshold events.
// At most one check runs at a time; threshold hits during a running check
// collapse into a single follow-up check.
type Watcher struct {
	checker   Checker
	report    Reporter
	sentinel  Sentinel
	threshold int
	log       *zap.Logger

	mu       sync.Mutex
	count    int
	inflight bool
	pending  bool
	wg       sync.WaitGroup
}

// Options configures a Watcher.
type Options struct {
	Threshold int
	Sentinel  Sentinel
	Reporter  Reporter
	Log       *zap.Logger
}

// New creates a watcher around checker.
func New(checker Checker, opts Options) *Watcher {
	if opts.Threshold < 1 {
		opts.Threshold = DefaultThreshold
	}
	return &Watcher{
		checker:   checker,
		report:    opts.Reporter,
		sentinel:  opts.Sentinel,
		threshold: opts.Threshold,
		log:       logging.OrNop(opts.Log),
	}
}

// Notify records one change event. While paused the event is dropped and the
// counter does not move.
func (w *Watcher) Notify(ctx context.Context, path string) {
	if w.sentinel.Paused() {
		w.log.Debug("paused, ignoring change", zap.String("path", path))
		return
	}

	w.mu.Lock()
	w.count++
	if w.count < w.threshold {
		w.mu.Unlock()
		return
	}
	w.count = 0
	if w.inflight {
		w.pending = true
		w.mu.Unlock()
		return
	}
	w.inflight = true
	w.wg.Add(1)
	w.mu.Unlock()

	go w.cycle(ctx)
}

// Count returns the events seen since the last check was triggered.
func (w *Watcher) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Wait blocks until no check is running.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) cycle(ctx context.Context) {
	defer w.wg.Done()
	for {
		w.runOnce(ctx)

		w.mu.Lock()
		if !w.pending || ctx.Err() != nil {
			w.inflight = false
			w.pending = false
			w.mu.Unlock()
			return
		}
		w.pending = false
		w.mu.Unlock()
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("check panicked", zap.Error(fmt.Errorf("%v", r)))
		}
	}()

	res := w.checker.Check(ctx)
	if res.Empty {
		return
	}
	if w.report != nil {
		w.report(res)
	}
}

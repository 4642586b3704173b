package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lazypower/engram/internal/logging"
	"github.com/lazypower/engram/internal/store"
)

// Engine runs the memory lifecycle: decay of stale advisory memories
// followed by pruning of exhausted ones.
type Engine struct {
	DB        *store.DB
	DecayDays int

	log      *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a new Engine. decayDays is the staleness threshold used by the
// maintenance timer.
func New(db *store.DB, decayDays int, log *zap.Logger) *Engine {
	return &Engine{
		DB:        db,
		DecayDays: decayDays,
		log:       logging.OrNop(log).Named("lifecycle"),
		stopCh:    make(chan struct{}),
	}
}

// StartMaintenanceTimer runs Maintain on startup and then every interval.
func (e *Engine) StartMaintenanceTimer(interval time.Duration) {
	e.runMaintenance()

	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				e.runMaintenance()
			case <-e.stopCh:
				return
			}
		}
	}()
}

func (e *Engine) runMaintenance() {
	res, err := e.Maintain(e.DecayDays)
	if err != nil {
		e.log.Error("maintenance failed", zap.Error(err))
		return
	}
	if res.Decayed > 0 || res.Pruned > 0 {
		e.log.Info("maintenance", zap.Int("decayed", res.Decayed), zap.Int("pruned", res.Pruned))
	}
}

// Stop shuts down the maintenance timer. Safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
}

package enforce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lazypower/engram/internal/llm"
	"github.com/lazypower/engram/internal/store"
)

const (
	DefaultHookTimeout  = 60 * time.Second
	DefaultWatchTimeout = 30 * time.Second
)

// MemorySource lists the preferences to check against.
type MemorySource interface {
	GetAllMemories() ([]store.Memory, error)
}

// Evaluator runs one diff past the judge.
type Evaluator struct {
	Memories     MemorySource
	Judge        Judge
	HookTimeout  time.Duration
	WatchTimeout time.Duration
}

func (e *Evaluator) timeout(m Mode) time.Duration {
	if m == ModeHook {
		if e.HookTimeout > 0 {
			return e.HookTimeout
		}
		return DefaultHookTimeout
	}
	if e.WatchTimeout > 0 {
		return e.WatchTimeout
	}
	return DefaultWatchTimeout
}

// Evaluate classifies diff against all stored memories. It never returns an
// error: judge and store failures become CollaboratorFailed.
func (e *Evaluator) Evaluate(ctx context.Context, diff string, mode Mode) Outcome {
	if strings.TrimSpace(diff) == "" {
		return Outcome{Verdict: Pass}
	}

	memories, err := e.Memories.GetAllMemories()
	if err != nil {
		return Outcome{Verdict: CollaboratorFailed, Err: fmt.Errorf("load memories: %w", err)}
	}
	if len(memories) == 0 {
		return Outcome{Verdict: Pass}
	}

	r := Review{Diff: diff, Profile: mode.Profile()}
	for _, m := range memories {
		if m.Enforced {
			r.Enforced = append(r.Enforced, m.Content)
		} else {
			r.Advisory = append(r.Advisory, m.Content)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout(mode))
	defer cancel()

	reply, err := e.Judge.Judge(ctx, r)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		return Outcome{Verdict: CollaboratorFailed, Err: err}
	}

	if llm.IsPass(reply) {
		return Outcome{Verdict: Pass}
	}
	return Outcome{Verdict: Violation, Report: strings.TrimSpace(reply)}
}

package enforce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lazypower/engram/internal/diff"
	"github.com/lazypower/engram/internal/logging"
)

// Result is the outcome of a check plus the policy decision.
type Result struct {
	CheckID string
	Outcome Outcome
	Blocked bool
	// Empty is set when there was nothing to review. The judge was not
	// called and no metrics were recorded; Outcome is Pass.
	Empty bool
}

// Pipeline is the check shared by the hook and the watcher: obtain the diff,
// condense it, evaluate, apply policy.
type Pipeline struct {
	Mode      Mode
	Source    diff.Source
	Condenser diff.Condenser
	Evaluator *Evaluator
	Policy    Policy
	Metrics   *Metrics
	Log       *zap.Logger
}

// Check runs one check cycle.
func (p *Pipeline) Check(ctx context.Context) Result {
	start := time.Now()
	log := logging.OrNop(p.Log)
	id := uuid.NewString()
	log = log.With(zap.String("check_id", id), zap.String("mode", string(p.Mode)))

	var out Outcome
	raw, err := p.Source.Diff(ctx)
	if err != nil {
		out = Outcome{Verdict: CollaboratorFailed, Err: fmt.Errorf("read diff: %w", err)}
	} else {
		condensed := p.condense(raw)
		if strings.TrimSpace(condensed) == "" {
			log.Debug("no changes to check")
			return Result{CheckID: id, Outcome: Outcome{Verdict: Pass}, Empty: true}
		}
		out = p.Evaluator.Evaluate(ctx, condensed, p.Mode)
	}

	r := Result{CheckID: id, Outcome: out, Blocked: p.Policy.Blocks(out)}
	elapsed := time.Since(start)
	p.Metrics.Observe(p.Mode, r, elapsed)

	switch out.Verdict {
	case CollaboratorFailed:
		log.Warn("check could not complete", zap.Error(out.Err), zap.Bool("blocked", r.Blocked), zap.Duration("elapsed", elapsed))
	case Violation:
		log.Info("preference violation", zap.Bool("blocked", r.Blocked), zap.Duration("elapsed", elapsed))
	default:
		log.Debug("check passed", zap.Duration("elapsed", elapsed))
	}
	return r
}

// Evaluate condenses a caller-supplied diff and evaluates it in the
// pipeline's mode.
func (p *Pipeline) Evaluate(ctx context.Context, raw string) Outcome {
	return p.Evaluator.Evaluate(ctx, p.condense(raw), p.Mode)
}

// condense applies the Condenser unless it is the zero value.
func (p *Pipeline) condense(raw string) string {
	if p.Condenser == (diff.Condenser{}) {
		return raw
	}
	return p.Condenser.Condense(raw)
}

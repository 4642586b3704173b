package enforce

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/lazypower/engram/internal/llm"
	"github.com/lazypower/engram/internal/logging"
)

// Review is one request to the judge.
type Review struct {
	Diff     string
	Enforced []string
	Advisory []string
	Profile  Profile
}

// Judge returns the raw verdict text for a review. llm.PassSentinel means
// no violations; anything else is the violation report.
type Judge interface {
	Judge(ctx context.Context, r Review) (string, error)
}

// LLMJudge asks a language model. Each profile has its own client so the
// strict profile can use a stronger model.
type LLMJudge struct {
	light   llm.Client
	strict  llm.Client
	breaker *gobreaker.CircuitBreaker
}

// BreakerThreshold is the number of consecutive judge failures that opens
// the breaker.
const BreakerThreshold = 3

// NewLLMJudge wraps the clients in a circuit breaker. After
// BreakerThreshold consecutive failures calls fail fast for cooldown.
func NewLLMJudge(light, strict llm.Client, cooldown time.Duration, log *zap.Logger) *LLMJudge {
	log = logging.OrNop(log)
	if strict == nil {
		strict = light
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "judge",
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= BreakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &LLMJudge{light: light, strict: strict, breaker: cb}
}

func (j *LLMJudge) Judge(ctx context.Context, r Review) (string, error) {
	client := j.light
	if r.Profile == ProfileStrict {
		client = j.strict
	}
	prompt := llm.ReviewPrompt(r.Diff, r.Enforced, r.Advisory)

	out, err := j.breaker.Execute(func() (interface{}, error) {
		resp, err := client.Complete(ctx, prompt)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			return nil, fmt.Errorf("empty response")
		}
		return resp.Content, nil
	})
	if err != nil {
		return "", fmt.Errorf("judge: %w", err)
	}
	return out.(string), nil
}

// State reports the breaker state.
func (j *LLMJudge) State() gobreaker.State {
	return j.breaker.State()
}

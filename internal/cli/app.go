package cli

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/lazypower/engram/internal/config"
	"github.com/lazypower/engram/internal/diff"
	"github.com/lazypower/engram/internal/enforce"
	"github.com/lazypower/engram/internal/llm"
	"github.com/lazypower/engram/internal/logging"
	"github.com/lazypower/engram/internal/store"
)

var (
	configPath string
	dbOverride string
)

// loadConfig reads --config (or the default path) and applies --db.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if dbOverride != "" {
		cfg.Database.Path = dbOverride
	}
	return cfg, nil
}

// openDB is a helper that opens the database for CLI commands.
func openDB(cfg config.Config) (*store.DB, error) {
	db, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

// newLogger builds the configured logger, falling back to a no-op logger so
// a bad log level never stops a command.
func newLogger(cfg config.Config) *zap.Logger {
	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return zap.NewNop()
	}
	return log
}

// newEvaluator wires the configured LLM provider into an evaluator.
func newEvaluator(ctx context.Context, cfg config.Config, db *store.DB, log *zap.Logger) (*enforce.Evaluator, error) {
	light, err := llm.NewClient(ctx, cfg.LLM, llm.ModelFor(cfg.LLM, false))
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	strict, err := llm.NewClient(ctx, cfg.LLM, llm.ModelFor(cfg.LLM, true))
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	return &enforce.Evaluator{
		Memories:     db,
		Judge:        enforce.NewLLMJudge(light, strict, 0, log),
		HookTimeout:  cfg.HookTimeout(),
		WatchTimeout: cfg.WatchTimeout(),
	}, nil
}

// newPipeline builds the check pipeline for mode. hooks.fail_closed only
// affects the hook policy.
func newPipeline(mode enforce.Mode, src diff.Source, ev *enforce.Evaluator, cfg config.Config, metrics *enforce.Metrics, log *zap.Logger) *enforce.Pipeline {
	policy := enforce.PolicyFor(mode)
	if mode == enforce.ModeHook {
		policy.FailClosed = cfg.Hooks.FailClosed
	}
	return &enforce.Pipeline{
		Mode:      mode,
		Source:    src,
		Condenser: diff.DefaultCondenser(),
		Evaluator: ev,
		Policy:    policy,
		Metrics:   metrics,
		Log:       log,
	}
}

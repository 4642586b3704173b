package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazypower/engram/internal/hooks"
	"github.com/lazypower/engram/internal/llm"
	"github.com/lazypower/engram/internal/watch"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store counts, watch state and hook installation",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "db:        %s\n", cfg.DBPath())
		fmt.Fprintf(out, "memories:  %d (%d enforced)\n", stats.Memories, stats.Enforced)
		fmt.Fprintf(out, "edges:     %d\n", stats.Edges)
		fmt.Fprintf(out, "llm:       %s (light %s, strict %s)\n", cfg.LLM.Provider, llm.ModelFor(cfg.LLM, false), llm.ModelFor(cfg.LLM, true))

		paused := "running"
		if (watch.Sentinel{Path: cfg.PauseFile()}).Paused() {
			paused = "paused"
		}
		fmt.Fprintf(out, "watch:     %s (every %d changes)\n", paused, cfg.Watch.Threshold)
		fmt.Fprintf(out, "hook:      %s\n", hookState())
		return nil
	},
}

func hookState() string {
	repo, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	path, err := hooks.HookPath(repo)
	if err != nil {
		return "not a git repository"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "not installed"
	}
	if !strings.Contains(string(data), hooks.Marker) {
		return "foreign pre-commit hook present"
	}
	return "installed"
}

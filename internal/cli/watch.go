package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lazypower/engram/internal/diff"
	"github.com/lazypower/engram/internal/enforce"
	"github.com/lazypower/engram/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Advisory preference checks while you edit",
}

var (
	watchChanges int
	watchRef     string
)

var watchStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Watch the working tree and check every N changes",
	RunE:  runWatch,
}

var watchPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause a running watcher",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := (watch.Sentinel{Path: cfg.PauseFile()}).Pause(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Watch mode paused.")
		return nil
	},
}

var watchResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused watcher",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := (watch.Sentinel{Path: cfg.PauseFile()}).Resume(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Watch mode resumed.")
		return nil
	},
}

func init() {
	watchStartCmd.Flags().IntVarP(&watchChanges, "changes", "n", 0, "changes between checks (default: watch.threshold)")
	watchStartCmd.Flags().StringVar(&watchRef, "ref", "", "diff against this ref (default: watch.ref)")
	watchCmd.AddCommand(watchStartCmd, watchPauseCmd, watchResumeCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchChanges > 0 {
		cfg.Watch.Threshold = watchChanges
	}
	if watchRef != "" {
		cfg.Watch.Ref = watchRef
	}

	log := newLogger(cfg)
	defer log.Sync()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ev, err := newEvaluator(ctx, cfg, db, log)
	if err != nil {
		return err
	}

	root, err := os.Getwd()
	if err != nil {
		return err
	}
	ignore, err := watch.NewIgnorer(cfg.Watch.Ignore)
	if err != nil {
		return err
	}

	pipeline := newPipeline(enforce.ModeWatch, diff.WorkingTree(root, cfg.Watch.Ref), ev, cfg, nil, log)
	out := cmd.OutOrStdout()
	w := watch.New(pipeline, watch.Options{
		Threshold: cfg.Watch.Threshold,
		Sentinel:  watch.Sentinel{Path: cfg.PauseFile()},
		Reporter:  func(r enforce.Result) { reportWatch(out, r) },
		Log:       log,
	})

	fmt.Fprintf(out, "Starting engram watch mode. Checking every %d changes...\n", cfg.Watch.Threshold)
	return w.Run(ctx, root, ignore)
}

func reportWatch(w io.Writer, r enforce.Result) {
	switch r.Outcome.Verdict {
	case enforce.Violation:
		fmt.Fprintln(w, "\n[engram] Preference violation detected:")
		fmt.Fprintln(w, r.Outcome.Report)
	case enforce.CollaboratorFailed:
		fmt.Fprintf(w, "[engram] check skipped: %v\n", r.Outcome.Err)
	default:
		fmt.Fprintln(w, "[engram] Changes look good.")
	}
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/engram/internal/diff"
	"github.com/lazypower/engram/internal/enforce"
	"github.com/lazypower/engram/internal/hooks"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the git pre-commit hook",
}

var hookForce bool

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the pre-commit hook in the current repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := os.Getwd()
		if err != nil {
			return err
		}
		binary, err := os.Executable()
		if err != nil {
			binary = "engram"
		}
		path, err := hooks.Install(repo, binary, hookForce)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Installed pre-commit hook at %s\n", path)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the engram pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := os.Getwd()
		if err != nil {
			return err
		}
		if err := hooks.Uninstall(repo); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Removed pre-commit hook.")
		return nil
	},
}

var hookRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Check staged changes (called by the pre-commit hook)",
	RunE:  runHook,
}

func init() {
	hookInstallCmd.Flags().BoolVar(&hookForce, "force", false, "overwrite an existing pre-commit hook")
	hookCmd.AddCommand(hookInstallCmd, hookUninstallCmd, hookRunCmd)
}

func runHook(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	ev, err := newEvaluator(ctx, cfg, db, log)
	if err != nil {
		if cfg.Hooks.FailClosed {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "engram: warning: check skipped: %v\n", err)
		return nil
	}

	repo, err := os.Getwd()
	if err != nil {
		return err
	}
	pipeline := newPipeline(enforce.ModeHook, diff.Staged(repo), ev, cfg, nil, log)

	if code := hooks.Run(ctx, pipeline, cmd.OutOrStdout(), cmd.ErrOrStderr()); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

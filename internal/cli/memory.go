package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazypower/engram/internal/engine"
	"github.com/lazypower/engram/internal/store"
)

var memoryCmd = &cobra.Command{
	Use:     "memory",
	Aliases: []string{"mem"},
	Short:   "Manage stored preferences and facts",
}

var (
	addScope         string
	addImportance    int
	addEnforced      bool
	updateImportance int
	updateEnforced   bool
	searchScope      string
	pruneDays        int
)

var memoryAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Add a memory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *store.DB) error {
			id, err := db.AddMemory(store.NewMemory{
				Content:    strings.Join(args, " "),
				Scope:      store.Scope(addScope),
				Importance: addImportance,
				Enforced:   addEnforced,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added memory %d\n", id)
			return nil
		})
	},
}

var memoryUpdateCmd = &cobra.Command{
	Use:   "update <id> <content>",
	Short: "Replace a memory's content, importance and enforced flag",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withDB(func(db *store.DB) error {
			importance := updateImportance
			if !cmd.Flags().Changed("importance") {
				if existing, err := db.GetMemory(id); err != nil {
					return err
				} else if existing != nil {
					importance = existing.Importance
				}
			}
			if err := db.UpdateMemory(id, strings.Join(args[1:], " "), importance, updateEnforced); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated memory %d\n", id)
			return nil
		})
	},
}

var memoryDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a memory",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withDB(func(db *store.DB) error {
			if err := db.DeleteMemory(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted memory %d\n", id)
			return nil
		})
	},
}

var memoryGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withDB(func(db *store.DB) error {
			m, err := db.GetMemory(id)
			if err != nil {
				return err
			}
			if m == nil {
				return fmt.Errorf("memory %d not found", id)
			}
			out := cmd.OutOrStdout()
			printMemory(out, *m)
			fmt.Fprintf(out, "   created %s, updated %s\n",
				m.CreatedAt.Local().Format("2006-01-02 15:04"), m.UpdatedAt.Local().Format("2006-01-02 15:04"))
			return nil
		})
	},
}

var memorySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search memories by substring",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *store.DB) error {
			memories, err := db.SearchMemories(strings.Join(args, " "), store.Scope(searchScope))
			if err != nil {
				return err
			}
			printMemories(cmd.OutOrStdout(), memories)
			return nil
		})
	},
}

var memoryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all memories by importance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *store.DB) error {
			memories, err := db.GetAllMemories()
			if err != nil {
				return err
			}
			printMemories(cmd.OutOrStdout(), memories)
			return nil
		})
	},
}

var memoryPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Decay stale advisory memories and delete exhausted ones",
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

		days := cfg.Lifecycle.DecayDays
		if cmd.Flags().Changed("days") {
			days = pruneDays
		}
		res, err := engine.New(db, days, nil).Maintain(days)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Decayed %d, pruned %d\n", res.Decayed, res.Pruned)
		return nil
	},
}

func init() {
	memoryAddCmd.Flags().StringVarP(&addScope, "scope", "s", string(store.ScopeProject), "global, project or session")
	memoryAddCmd.Flags().IntVarP(&addImportance, "importance", "i", store.DefaultImportance, "importance 0-10")
	memoryAddCmd.Flags().BoolVarP(&addEnforced, "enforced", "e", false, "block commits that violate this memory")

	memoryUpdateCmd.Flags().IntVarP(&updateImportance, "importance", "i", store.DefaultImportance, "importance 0-10 (default: keep current)")
	memoryUpdateCmd.Flags().BoolVarP(&updateEnforced, "enforced", "e", false, "block commits that violate this memory")

	memorySearchCmd.Flags().StringVarP(&searchScope, "scope", "s", "", "restrict to a scope")

	memoryPruneCmd.Flags().IntVar(&pruneDays, "days", 7, "staleness threshold in days (default: lifecycle.decay_days)")

	memoryCmd.AddCommand(memoryAddCmd, memoryUpdateCmd, memoryDeleteCmd, memoryGetCmd,
		memorySearchCmd, memoryListCmd, memoryPruneCmd)
}

// withDB loads config, opens the database, and runs fn.
func withDB(fn func(db *store.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func printMemory(w io.Writer, m store.Memory) {
	flag := ""
	if m.Enforced {
		flag = " ENFORCED"
	}
	fmt.Fprintf(w, "%d. [%d%s] (%s) %s\n", m.ID, m.Importance, flag, m.Scope, m.Content)
}

func printMemories(w io.Writer, memories []store.Memory) {
	if len(memories) == 0 {
		fmt.Fprintln(w, "No memories found.")
		return
	}
	for _, m := range memories {
		printMemory(w, m)
	}
}

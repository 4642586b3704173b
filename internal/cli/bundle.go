package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazypower/engram/internal/bundle"
	"github.com/lazypower/engram/internal/store"
)

var bundleTokens int

var bundleCmd = &cobra.Command{
	Use:   "bundle [topic]",
	Short: "Print a token-budgeted context bundle for prompt injection",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *store.DB) error {
			text, err := bundle.Generate(db, strings.Join(args, " "), bundleTokens)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		})
	},
}

func init() {
	bundleCmd.Flags().IntVarP(&bundleTokens, "tokens", "t", bundle.DefaultTokenBudget, "token budget")
}

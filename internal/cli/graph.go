package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lazypower/engram/internal/store"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Manage architecture graph edges",
}

var graphAddCmd = &cobra.Command{
	Use:   "add <source> <relation> <target>",
	Short: "Add an edge, e.g. `engram graph add api calls store`",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *store.DB) error {
			id, err := db.AddEdge(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added edge %d\n", id)
			return nil
		})
	},
}

var graphDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an edge",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withDB(func(db *store.DB) error {
			if err := db.DeleteEdge(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted edge %d\n", id)
			return nil
		})
	},
}

var graphSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search edges by substring of source, relation or target",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *store.DB) error {
			edges, err := db.SearchEdges(strings.Join(args, " "))
			if err != nil {
				return err
			}
			printEdges(cmd.OutOrStdout(), edges)
			return nil
		})
	},
}

var graphListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List edges, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *store.DB) error {
			edges, err := db.GetAllEdges()
			if err != nil {
				return err
			}
			printEdges(cmd.OutOrStdout(), edges)
			return nil
		})
	},
}

func init() {
	graphCmd.AddCommand(graphAddCmd, graphDeleteCmd, graphSearchCmd, graphListCmd)
}

func printEdges(w io.Writer, edges []store.GraphEdge) {
	if len(edges) == 0 {
		fmt.Fprintln(w, "No edges found.")
		return
	}
	for _, e := range edges {
		fmt.Fprintf(w, "%d. %s --%s--> %s\n", e.ID, e.Source, e.Relation, e.Target)
	}
}

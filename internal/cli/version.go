package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, stamped with
// -ldflags "-X github.com/lazypower/engram/internal/cli.Version=v0.3.0 ...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the engram build version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, Version)
			return
		}
		fmt.Fprintf(out, "engram %s\n", VersionString())
		fmt.Fprintf(out, "  built:    %s\n", BuildDate)
		fmt.Fprintf(out, "  platform: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
}

// VersionString is the version reported by `engram version` and /api/health.
func VersionString() string {
	return fmt.Sprintf("%s (%s)", Version, Commit)
}

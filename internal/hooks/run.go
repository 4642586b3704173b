package hooks

import (
	"context"
	"fmt"
	"io"

	"github.com/lazypower/engram/internal/enforce"
)

// Checker runs one check over the staged changes.
type Checker interface {
	Check(ctx context.Context) enforce.Result
}

// Run performs the pre-commit check and returns the process exit code:
// 1 when the result blocks the commit, 0 otherwise. Nothing staged exits 0
// silently.
func Run(ctx context.Context, checker Checker, stdout, stderr io.Writer) int {
	r := checker.Check(ctx)
	if r.Empty {
		return 0
	}
	out := r.Outcome

	if r.Blocked {
		if out.Verdict == enforce.Violation {
			fmt.Fprintln(stderr, "\nengram: commit blocked due to preference violations:")
			fmt.Fprintln(stderr, out.Report)
		} else {
			fmt.Fprintf(stderr, "engram: commit blocked, check could not complete: %v\n", out.Err)
		}
		return 1
	}

	switch out.Verdict {
	case enforce.CollaboratorFailed:
		fmt.Fprintf(stderr, "engram: warning: check skipped: %v\n", out.Err)
	case enforce.Violation:
		fmt.Fprintln(stderr, "engram: advisory preference violations:")
		fmt.Fprintln(stderr, out.Report)
	default:
		fmt.Fprintln(stdout, "engram: All good.")
	}
	return 0
}

// Package diff obtains unified diffs from git and condenses them for review.
package diff

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Source returns the changes to check as one unified diff. An empty or
// whitespace-only result means there is nothing to check.
type Source interface {
	Diff(ctx context.Context) (string, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context) (string, error)

func (f Func) Diff(ctx context.Context) (string, error) { return f(ctx) }

// Git runs `git diff` with fixed arguments in Dir.
type Git struct {
	Dir  string
	Args []string
}

// Staged returns the index-vs-HEAD diff used by the pre-commit hook.
func Staged(dir string) *Git {
	return &Git{Dir: dir, Args: []string{"diff", "--cached", "--no-color", "--no-ext-diff"}}
}

// WorkingTree returns the working-tree-vs-ref diff used by watch mode.
func WorkingTree(dir, ref string) *Git {
	if ref == "" {
		ref = "HEAD"
	}
	return &Git{Dir: dir, Args: []string{"diff", "--no-color", "--no-ext-diff", ref}}
}

// Diff runs git and returns its stdout.
func (g *Git) Diff(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", g.Args...)
	cmd.Dir = g.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w (stderr: %s)", strings.Join(g.Args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

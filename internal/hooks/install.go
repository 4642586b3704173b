// Package hooks installs and runs the git pre-commit hook.
package hooks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Marker identifies a pre-commit script written by engram.
const Marker = "# engram pre-commit hook"

// ErrForeignHook is returned when a pre-commit hook exists that engram did
// not write.
var ErrForeignHook = errors.New("pre-commit hook exists and was not installed by engram")

// Script returns the pre-commit script invoking binary.
func Script(binary string) string {
	if binary == "" {
		binary = "engram"
	}
	return fmt.Sprintf(`#!/bin/sh
%s
%s hook run
status=$?
if [ $status -ne 0 ]; then
  echo "Commit blocked by engram. Use --no-verify to override." >&2
fi
exit $status
`, Marker, shellQuote(binary))
}

// HookPath returns .git/hooks/pre-commit under repoDir.
func HookPath(repoDir string) (string, error) {
	gitDir := filepath.Join(repoDir, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("no .git directory in %s: are you in a git repository?", repoDir)
	}
	return filepath.Join(gitDir, "hooks", "pre-commit"), nil
}

// Install writes the pre-commit hook. An existing engram hook is replaced;
// any other hook is left alone unless force is set.
func Install(repoDir, binary string, force bool) (string, error) {
	path, err := HookPath(repoDir)
	if err != nil {
		return "", err
	}

	if existing, err := os.ReadFile(path); err == nil {
		if !isOurs(existing) && !force {
			return "", fmt.Errorf("%s: %w (use --force to overwrite)", path, ErrForeignHook)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create hooks dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Script(binary)), 0o755); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o755); err != nil {
		return "", fmt.Errorf("chmod %s: %w", path, err)
	}
	return path, nil
}

// Uninstall removes the pre-commit hook if engram installed it. A missing
// hook is not an error.
func Uninstall(repoDir string) error {
	path, err := HookPath(repoDir)
	if err != nil {
		return err
	}
	existing, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if !isOurs(existing) {
		return fmt.Errorf("%s: %w", path, ErrForeignHook)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func isOurs(script []byte) bool {
	return strings.Contains(string(script), Marker)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

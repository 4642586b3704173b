package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sentinel is a pause flag stored as a file so a separate process can toggle it.
// The zero value is never paused.
type Sentinel struct {
	Path string
}

// Paused reports whether the flag file exists.
func (s Sentinel) Paused() bool {
	if s.Path == "" {
		return false
	}
	_, err := os.Stat(s.Path)
	return err == nil
}

// Pause creates the flag file.
func (s Sentinel) Pause() error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte("true\n"), 0o644); err != nil {
		return fmt.Errorf("write pause flag: %w", err)
	}
	return nil
}

// Resume removes the flag file. Resuming when not paused is a no-op.
func (s Sentinel) Resume() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove pause flag: %w", err)
	}
	return nil
}

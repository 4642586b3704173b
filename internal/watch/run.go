package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Run watches root recursively and feeds write/create events to Notify until
// ctx is cancelled. It waits for a running check before returning.
func (w *Watcher) Run(ctx context.Context, root string, ignore *Ignorer) error {
	if ignore == nil {
		var err error
		if ignore, err = NewIgnorer(nil); err != nil {
			return err
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, root, root, ignore); err != nil {
		return err
	}
	w.log.Info("watching", zap.String("root", root), zap.Int("threshold", w.threshold))

	for {
		select {
		case <-ctx.Done():
			w.Wait()
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				w.Wait()
				return nil
			}
			rel, err := filepath.Rel(root, event.Name)
			if err != nil || ignore.Match(rel) {
				continue
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, root, event.Name, ignore); err != nil {
						w.log.Warn("watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
					continue
				}
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.Notify(ctx, event.Name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				w.Wait()
				return nil
			}
			w.log.Error("file watcher error", zap.Error(err))
		}
	}
}

// addTree adds dir and every non-ignored directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, root, dir string, ignore *Ignorer) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("walk %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, _ := filepath.Rel(root, path); ignore.Match(rel) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

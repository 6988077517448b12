package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the config file and the input file it names, and calls
// onChange with a freshly loaded Config whenever either is written. It runs
// until ctx is cancelled.
//
// If a reload fails the error is logged and onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}
	watched := map[string]bool{filepath.Clean(path): true}

	addInput := func(cfg *Config) {
		if cfg == nil || cfg.Input == "" || watched[filepath.Clean(cfg.Input)] {
			return
		}
		if err := watcher.Add(cfg.Input); err != nil {
			slog.Warn("config: cannot watch input", "path", cfg.Input, "err", err)
			return
		}
		watched[filepath.Clean(cfg.Input)] = true
	}
	if cfg, err := Load(path); err == nil {
		addInput(cfg)
	}

	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, so Create counts as a write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config", "path", path, "err", err)
				continue
			}

			slog.Info("config: change detected", "file", event.Name)
			addInput(cfg)
			onChange(cfg)

			// Re-add in case an atomic save replaced the inode.
			_ = watcher.Add(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

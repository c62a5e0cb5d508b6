package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"taskchat/internal/logging"
)

// Watch reloads the workspace config whenever config.json changes and
// delivers each successfully loaded Config to onChange. It returns once
// the watcher is installed; watching stops when ctx is cancelled.
// Editors write config files with rename-and-replace, so the directory
// is watched rather than the file itself.
func Watch(ctx context.Context, workspace string, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Join(workspace, Dir)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()

		// Debounce: editors fire several events per save.
		var pending *time.Timer
		reload := func() {
			cfg, err := Load(workspace)
			if err != nil {
				logging.ConfigWarn("config reload failed, keeping previous: %v", err)
				return
			}
			logging.ConfigDebug("config reloaded from %s", Path(workspace))
			onChange(cfg)
		}

		for {
			select {
			case <-ctx.Done():
				if pending != nil {
					pending.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != "config.json" {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(100*time.Millisecond, reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.ConfigWarn("config watcher error: %v", err)
			}
		}
	}()

	return nil
}

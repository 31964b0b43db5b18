// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

// debounceDelay coalesces the event bursts editors produce on save.
const debounceDelay = 200 * time.Millisecond

// Watch reloads the rule set at path whenever the file changes and hands
// each good load to onChange. A change that fails to load is logged and the
// previous rule set stays in effect. Watch blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file on save keep the watch alive.
func Watch(ctx context.Context, path string, log *slog.Logger, onChange func(types.Ruleset)) error {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving ruleset path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting ruleset watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(debounceDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("ruleset watcher error", "error", err)

		case <-timer.C:
			rs, err := Load(path)
			if err != nil {
				log.Warn("ignoring ruleset change", "path", path, "error", err)
				continue
			}
			log.Info("ruleset reloaded", "path", path, "ruleset", rs.ID)
			onChange(rs)
		}
	}
}

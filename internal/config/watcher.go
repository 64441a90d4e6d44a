// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for resumind.
package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// Watcher reloads the config file when it changes on disk and hands the
// result to a callback. Editors tend to fire several events per save, so
// reloads are debounced.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(*Config)

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	pending bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWatcher creates a watcher for the given config path. onChange runs on
// the watcher goroutine with each successfully reloaded config; a file
// that fails to parse is skipped and the previous config stays in effect.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     path,
		debounce: 500 * time.Millisecond,
		onChange: onChange,
		watcher:  fsWatcher,
		ctx:      ctx,
		cancel:   cancel,
	}
	return w, nil
}

// Watch starts watching. The parent directory is watched rather than the
// file itself: atomic saves replace the file and would drop a direct watch.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.processEvents()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	defer func() {
		if r := recover(); r != nil {
			_ = r // goroutine exits, app keeps its current config
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			_ = err // non-fatal
		}
	}
}

// scheduleReload coalesces a burst of events into one reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	if w.pending {
		w.mu.Unlock()
		return
	}
	w.pending = true
	w.mu.Unlock()

	go func() {
		select {
		case <-w.ctx.Done():
			return
		case <-time.After(w.debounce):
		}

		w.mu.Lock()
		w.pending = false
		w.mu.Unlock()

		cfg, err := LoadFromPath(w.path)
		if err != nil {
			return // keep the previous config
		}
		w.onChange(cfg)
	}()
}

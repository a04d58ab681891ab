// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces bursts of writes from editors.
const DefaultDebounce = 300 * time.Millisecond

// Change reports that the source of an attachment changed on disk after it
// was read. Attachments are not re-read.
type Change struct {
	Path    string
	Name    string
	Removed bool
}

// Watcher watches the source files of attachments. It watches parent
// directories so editors that save by rename are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	files   map[string]bool
	dirs    map[string]int
	pending map[string]pendingChange

	changes chan Change
	ctx     context.Context
	cancel  context.CancelFunc
}

type pendingChange struct {
	at      time.Time
	removed bool
}

// NewWatcher creates a Watcher and starts its event loop.
func NewWatcher(logger *zap.Logger, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher:  fw,
		logger:   logger,
		debounce: debounce,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		pending:  make(map[string]pendingChange),
		changes:  make(chan Change, 16),
		ctx:      ctx,
		cancel:   cancel,
	}

	go w.processEvents()
	go w.processPending()
	return w, nil
}

// Changes delivers debounced change notifications.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Add starts watching path. Adding a path twice is a no-op.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[abs] {
		return
	}
	delete(w.files, abs)
	delete(w.pending, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.watcher.Remove(dir)
	}
}

// Watching reports whether path is watched.
func (w *Watcher) Watching(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[abs]
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[path] {
		return
	}
	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.pending[path] = pendingChange{at: time.Now()}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.pending[path] = pendingChange{at: time.Now(), removed: true}
	}
}

func (w *Watcher) processPending() {
	ticker := time.NewTicker(w.debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			for _, c := range w.due(time.Now()) {
				select {
				case w.changes <- c:
				default:
					w.logger.Debug("dropped file change", zap.String("path", c.Path))
				}
			}
		}
	}
}

// due returns and clears the changes whose debounce window has passed.
func (w *Watcher) due(now time.Time) []Change {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []Change
	for path, p := range w.pending {
		if now.Sub(p.at) < w.debounce {
			continue
		}
		out = append(out, Change{Path: path, Name: filepath.Base(path), Removed: p.removed})
		delete(w.pending, path)
	}
	return out
}

// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/walteh/conformrc/pkg/status"
	"github.com/walteh/conformrc/pkg/task"
	"gitlab.com/tozd/go/errors"
)

// DefaultDebounce is how long a file must be quiet before it is re-run
const DefaultDebounce = 200 * time.Millisecond

// 👀 Watcher re-runs the executor for a task whenever its file is written.
// Rules are idempotent, so the watcher's own write-back settles as Unchanged.
type Watcher struct {
	exec     *Executor
	baseDir  string
	tasks    map[string]task.FileTask // absolute path -> task
	debounce time.Duration
	onReport func(ctx context.Context, r *status.BatchReport)

	mu      sync.Mutex
	pending map[string]time.Time
	ready   chan struct{}
}

// WatchOption configures a Watcher
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before a changed file is re-run
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithReportHandler receives the report of every re-run
func WithReportHandler(fn func(ctx context.Context, r *status.BatchReport)) WatchOption {
	return func(w *Watcher) {
		w.onReport = fn
	}
}

// 🏭 NewWatcher creates a watcher over the non-skipped tasks
func NewWatcher(exec *Executor, baseDir string, tasks []task.FileTask, opts ...WatchOption) *Watcher {
	w := &Watcher{
		exec:     exec,
		baseDir:  baseDir,
		tasks:    make(map[string]task.FileTask, len(tasks)),
		debounce: DefaultDebounce,
		pending:  make(map[string]time.Time),
		ready:    make(chan struct{}),
	}
	for _, t := range tasks {
		if t.Skip {
			continue
		}
		w.tasks[w.abs(t.Path)] = t
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Ready is closed once every watch is registered
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

func (w *Watcher) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(w.baseDir, filepath.FromSlash(p))
}

// 🏃 Run watches until ctx is done. Directories are watched rather than
// files so atomic renames keep being observed.
func (w *Watcher) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	dirs := map[string]bool{}
	for p := range w.tasks {
		dirs[filepath.Dir(p)] = true
	}
	sorted := make([]string, 0, len(dirs))
	for d := range dirs {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)
	for _, d := range sorted {
		if err := fw.Add(d); err != nil {
			logger.Warn().Err(err).Str("dir", d).Msg("watch failed")
			continue
		}
		logger.Debug().Str("dir", d).Msg("watching directory")
	}
	close(w.ready)

	tick := w.debounce / 2
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, ev)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("file watcher error")

		case <-ticker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	p := filepath.Clean(ev.Name)
	if _, ok := w.tasks[p]; !ok {
		return
	}

	zerolog.Ctx(ctx).Debug().Str("file", p).Str("op", ev.Op.String()).Msg("file changed")

	w.mu.Lock()
	w.pending[p] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var due []string
	for p, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			due = append(due, p)
			delete(w.pending, p)
		}
	}
	w.mu.Unlock()

	sort.Strings(due)
	for _, p := range due {
		if ctx.Err() != nil {
			return
		}
		report := w.exec.Execute(ctx, []task.FileTask{w.tasks[p]})
		if w.onReport != nil {
			w.onReport(ctx, report)
		}
	}
}

// Package watcher invalidates cached templates when their source files
// change on disk, complementing the TTL and mtime-sweep reload paths
// with immediate change notification.
package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harusame/templight/internal/logging"
)

// NameMapper translates a changed file path to a template name, or ""
// when the path is not a template file.
type NameMapper func(path string) string

// InvalidateFunc receives the debounced set of changed template names.
type InvalidateFunc func(names []string)

// TemplateWatcher watches a template directory and reports debounced
// change batches to an invalidation callback.
type TemplateWatcher struct {
	watcher    *fsnotify.Watcher
	mapper     NameMapper
	invalidate InvalidateFunc
	logger     logging.Logger

	delay   time.Duration
	timer   *time.Timer
	pending map[string]bool
	mutex   sync.Mutex
}

// New creates a template watcher. debounce groups rapid successive
// writes to the same file into one invalidation batch.
func New(mapper NameMapper, invalidate InvalidateFunc, debounce time.Duration, logger logging.Logger) (*TemplateWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &TemplateWatcher{
		watcher:    fsw,
		mapper:     mapper,
		invalidate: invalidate,
		logger:     logger.WithComponent("watcher"),
		delay:      debounce,
		pending:    make(map[string]bool),
	}, nil
}

// AddPath adds a directory or file to watch.
func (tw *TemplateWatcher) AddPath(path string) error {
	return tw.watcher.Add(path)
}

// Start runs the watch loop until ctx is cancelled.
func (tw *TemplateWatcher) Start(ctx context.Context) {
	go tw.watchLoop(ctx)
}

// Stop stops the watcher and releases its resources.
func (tw *TemplateWatcher) Stop() error {
	tw.mutex.Lock()
	if tw.timer != nil {
		tw.timer.Stop()
	}
	tw.mutex.Unlock()
	return tw.watcher.Close()
}

func (tw *TemplateWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			tw.handleEvent(ctx, event)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.logger.Warn(ctx, err, "file watcher error")
		}
	}
}

func (tw *TemplateWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	name := tw.mapper(event.Name)
	if name == "" {
		return
	}

	tw.logger.Debug(ctx, "template source changed",
		"template", name,
		"op", event.Op.String(),
	)

	tw.mutex.Lock()
	defer tw.mutex.Unlock()

	tw.pending[name] = true
	if tw.timer != nil {
		tw.timer.Stop()
	}
	tw.timer = time.AfterFunc(tw.delay, tw.flush)
}

// flush hands the pending batch to the invalidation callback.
func (tw *TemplateWatcher) flush() {
	tw.mutex.Lock()
	if len(tw.pending) == 0 {
		tw.mutex.Unlock()
		return
	}
	names := make([]string, 0, len(tw.pending))
	for name := range tw.pending {
		names = append(names, name)
	}
	tw.pending = make(map[string]bool)
	tw.mutex.Unlock()

	tw.invalidate(names)
}

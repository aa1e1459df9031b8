package contacts

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Directory whenever its contacts file changes on disk.
type Watcher struct {
	path     string
	dir      *Directory
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for path. The parent directory is watched so
// that editors which replace the file by rename are picked up.
func NewWatcher(path string, dir *Directory, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		path:     filepath.Clean(path),
		dir:      dir,
		watcher:  fw,
		debounce: 250 * time.Millisecond,
		logger:   logger.With("component", "contacts"),
	}, nil
}

// Start begins watching. Stop must be called to release the watcher.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var reload <-chan time.Time
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				reload = time.After(w.debounce)
			}

		case <-reload:
			reload = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	extra, err := LoadFile(w.path)
	if err != nil {
		// Keep serving the previous table.
		w.logger.Warn("failed to reload contacts", "path", w.path, "error", err)
		return
	}
	w.dir.Replace(extra)
	w.logger.Info("contacts reloaded", "path", w.path, "count", w.dir.Len())
}

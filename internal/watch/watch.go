// Package watch re-loads an artifact index document whenever it changes
// on disk, for ClassLens watch mode.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/classlens/classlens/internal/artifact"
)

const debounceDelay = 100 * time.Millisecond

// Watcher watches an index document for changes and emits freshly loaded
// indexes on a channel. It supports both fsnotify file watching and
// SIGHUP signal-based reload.
type Watcher struct {
	path      string
	onChange  chan *artifact.Index
	onError   func(error)
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a watcher for the index document at path. onError receives
// non-fatal reload failures and may be nil. Start must be called to begin
// watching.
func New(path string, onError func(error)) *Watcher {
	if onError == nil {
		onError = func(error) {}
	}
	return &Watcher{
		path:     path,
		onChange: make(chan *artifact.Index, 1),
		onError:  onError,
		done:     make(chan struct{}),
	}
}

// Changes returns a channel that receives new indexes on successful reload.
func (w *Watcher) Changes() <-chan *artifact.Index {
	return w.onChange
}

// Start watches the index file and listens for SIGHUP. It blocks until
// ctx is canceled or Close is called; when it returns, the change channel
// is closed. A reload failure keeps the previous index active.
func (w *Watcher) Start(ctx context.Context) error {
	defer close(w.onChange)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory (not the file) so we catch extraction tools
	// that write-to-temp-then-rename.
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	baseName := filepath.Base(w.path)

	// Debounce: extraction tools may fire several events in quick
	// succession while rewriting the document.
	var debounce <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != baseName {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debounce = time.After(debounceDelay)
			}
		case <-debounce:
			w.tryReload()
			debounce = nil
		case <-sigCh:
			w.tryReload()
		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; keep watching.
		}
	}
}

// tryReload loads the index and sends it on the change channel. The send
// is non-blocking: if the consumer has not drained the previous reload,
// this one is dropped and superseded by the next change.
func (w *Watcher) tryReload() {
	idx, err := artifact.Load(w.path)
	if err != nil {
		w.onError(err)
		return
	}

	select {
	case w.onChange <- idx:
	default:
	}
}

// Close stops the watcher. Safe to call multiple times.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
	})
}

// Package watch re-reads an expression file whenever it changes on disk.
//
// The watcher subscribes to the file's directory rather than the file
// itself, so editors that save by writing a temp file and renaming it over
// the original keep triggering events. Bursts of events are collapsed by a
// debounce window and the handler sees the file contents once per burst.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file must stay quiet before the handler runs.
const DefaultDebounce = 150 * time.Millisecond

// Handler receives the file contents after each debounced change.
type Handler func(ctx context.Context, contents []byte)

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period before the handler runs.
	// Default: DefaultDebounce
	Debounce time.Duration

	// Logger receives watcher errors. Default: discard.
	Logger *log.Logger
}

// Watcher watches a single file.
type Watcher struct {
	path     string
	handler  Handler
	debounce time.Duration
	logger   *log.Logger
	fs       *fsnotify.Watcher

	stopOnce sync.Once
}

// New creates a watcher for path. Call Run to start delivering changes.
func New(path string, handler Handler, opts *Options) (*Watcher, error) {
	if opts == nil {
		opts = &Options{}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		handler:  handler,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		fs:       fw,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run delivers changes until ctx is canceled or Close is called. The
// handler runs on the calling goroutine, one change at a time.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)

		case <-timer.C:
			pending = false
			data, err := os.ReadFile(w.path)
			if err != nil {
				// Removed, or mid-rename; the next create event retries.
				w.logger.Debug("skipping unreadable file", "path", w.path, "err", err)
				continue
			}
			w.handler(ctx, data)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() { err = w.fs.Close() })
	return err
}

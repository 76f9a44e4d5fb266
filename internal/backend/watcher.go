package backend

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/atomicstack/inline-menus/internal/logging/events"
	"github.com/atomicstack/inline-menus/internal/menu"
	"github.com/fsnotify/fsnotify"
)

// DefaultInterval is the minimum time between two reloads, and the stat
// interval when polling.
const DefaultInterval = 250 * time.Millisecond

// Loader reads the watched layout.
type Loader func(ctx context.Context) (menu.Layout, error)

// Event conveys a reloaded layout or the error that prevented it.
type Event struct {
	Path   string
	Layout menu.Layout
	Err    error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the reload throttle and polling interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithPolling stats the file on a ticker instead of using filesystem
// notifications.
func WithPolling(poll bool) Option {
	return func(w *Watcher) {
		w.forcePoll = poll
	}
}

// Watcher reloads a layout file whenever it changes and publishes the result.
// The file's directory is watched rather than the file, so editors that save
// by renaming a temporary file over it are still seen.
type Watcher struct {
	path      string
	interval  time.Duration
	forcePoll bool
	load      Loader
	throttle  *throttle

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher starts watching path. Polling is used when notifications are
// unavailable.
func NewWatcher(path string, load Loader, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		interval: DefaultInterval,
		load:     load,
		events:   make(chan Event, 4),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.throttle = newThrottle(w.interval)
	w.ctx, w.cancel = context.WithCancel(context.Background())

	var fsw *fsnotify.Watcher
	if !w.forcePoll {
		if fsw, err = fsnotify.NewWatcher(); err == nil {
			if err = fsw.Add(filepath.Dir(abs)); err != nil {
				fsw.Close()
				fsw = nil
			}
		}
	}

	w.wg.Add(1)
	if fsw != nil {
		go w.watch(fsw)
	} else {
		go w.poll()
	}

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Events returns the channel of reload events. It is closed after Stop once
// the watcher goroutine exits.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. A reload in progress finishes first; use Wait if
// a clean drain is required.
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the watcher goroutine has exited and the events channel
// is closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

const reloadOps = fsnotify.Write | fsnotify.Create

func (w *Watcher) watch(fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fsw.Close()

	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&reloadOps == 0 {
				continue
			}
			if !w.throttle.wait(w.ctx) {
				return
			}
			drain(fsw.Events)
			if !w.emit() {
				return
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if !w.send(Event{Path: w.path, Err: err}) {
				return
			}
		}
	}
}

// drain discards notifications that queued up while waiting for the
// throttle; the reload that follows covers them.
func drain(ch <-chan fsnotify.Event) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func (w *Watcher) poll() {
	defer w.wg.Done()

	var lastMod time.Time
	var lastSize int64 = -1
	if info, err := os.Stat(w.path); err == nil {
		lastMod, lastSize = info.ModTime(), info.Size()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			if info.ModTime().Equal(lastMod) && info.Size() == lastSize {
				continue
			}
			lastMod, lastSize = info.ModTime(), info.Size()
			if !w.emit() {
				return
			}
		}
	}
}

func (w *Watcher) emit() bool {
	l, err := w.load(w.ctx)
	events.Layout.Error(w.path, err)
	return w.send(Event{Path: w.path, Layout: l, Err: err})
}

func (w *Watcher) send(evt Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.events <- evt:
		return true
	}
}

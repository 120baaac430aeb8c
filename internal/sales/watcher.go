package sales

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"fileagent/internal/logging"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Watcher calls a function whenever files matching the input pattern change.
// Bursts of events inside the debounce window produce a single call.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	pattern  string
	debounce time.Duration
	onChange func(ctx context.Context)
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	closed   bool
}

// NewWatcher creates a watcher for pattern. A non-positive debounce uses
// 500ms.
func NewWatcher(pattern string, debounce time.Duration, onChange func(ctx context.Context)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		watcher:  fw,
		pattern:  filepath.Clean(pattern),
		debounce: debounce,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// ErrWatcherClosed is returned by Start after Stop or a failed Start.
var ErrWatcherClosed = errors.New("watcher is closed")

// Start begins watching. It is non-blocking. A failed Start closes the
// underlying watcher; the Watcher cannot be restarted.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	if w.running {
		return nil
	}

	if err := w.addDirs(); err != nil {
		w.closed = true
		if cerr := w.watcher.Close(); cerr != nil {
			logging.Get(logging.CategorySales).Error("Watcher: error closing watcher: %v", cerr)
		}
		return err
	}

	w.running = true
	go w.run(ctx)
	return nil
}

func (w *Watcher) addDirs() error {
	dirs, err := w.dirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logging.Sales("Watcher: watching directory: %s", dir)
	}
	return nil
}

// dirs returns the pattern's static base plus the directory of every
// current match.
func (w *Watcher) dirs() ([]string, error) {
	base, _ := doublestar.SplitPattern(filepath.ToSlash(w.pattern))
	seen := map[string]bool{filepath.FromSlash(base): true}
	out := []string{filepath.FromSlash(base)}

	matches, err := doublestar.FilepathGlob(w.pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid input pattern %q: %w", w.pattern, err)
	}
	for _, m := range matches {
		d := filepath.Dir(m)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out, nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.closed = true
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategorySales).Error("Watcher: error closing watcher: %v", err)
	}
	logging.Sales("Watcher: stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			logging.SalesDebug("Watcher: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategorySales).Error("Watcher error: %v", err)

		case <-fire:
			fire = nil
			w.onChange(ctx)
		}
	}
}

func (w *Watcher) matches(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	ok, err := doublestar.PathMatch(w.pattern, filepath.Clean(event.Name))
	return err == nil && ok
}

// Package watcher notifies when the attendance data files change on disk.
// Bursts of events are debounced into a single notification.
package watcher

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/evencheck/internal/log"
)

// Watcher monitors a set of data files and signals after they change.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	files     map[string]struct{} // watched base names, including -wal siblings
	dirs      []string
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Paths       []string
	DebounceDur time.Duration
}

// DefaultConfig returns defaults for watching paths.
func DefaultConfig(paths ...string) Config {
	return Config{
		Paths:       paths,
		DebounceDur: 250 * time.Millisecond,
	}
}

// New creates a watcher for cfg.Paths. The files need not exist yet; their
// directories must.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	files := make(map[string]struct{}, len(cfg.Paths)*2)
	dirSet := make(map[string]struct{})
	for _, p := range cfg.Paths {
		base := filepath.Base(p)
		files[base] = struct{}{}
		files[base+"-wal"] = struct{}{}
		dirSet[filepath.Dir(p)] = struct{}{}
	}
	dirs := make([]string, 0, len(dirSet))
	for d := range dirSet {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	return &Watcher{
		fsWatcher: fsw,
		files:     files,
		dirs:      dirs,
		debounce:  cfg.DebounceDur,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching the directories holding the files.
// Returns a channel that receives a signal after the files change.
func (w *Watcher) Start() (<-chan struct{}, error) {
	// Directories, not files: atomic renames replace the watched inode
	for _, dir := range w.dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watching directory %s: %w", dir, err)
		}
		log.Debug(log.CatWatcher, "watching directory", "dir", dir)
	}

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			log.Debug(log.CatWatcher, "change detected", "file", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = true

		case <-timerC(timer):
			if pending {
				// Drop if a signal is already queued
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func timerC(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

// isRelevantEvent reports whether event touches a watched file in a way
// that changes its content.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	_, ok := w.files[filepath.Base(event.Name)]
	return ok
}

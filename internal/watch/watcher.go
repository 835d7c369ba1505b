// Package watch turns file system activity in a working tree into refresh
// signals for the status view.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"stagr/internal/errors"
	"stagr/internal/log"
	"stagr/internal/patterns"

	"github.com/fsnotify/fsnotify"
)

const gitDir = ".git"

// Reason tells why a refresh was signalled.
type Reason int

const (
	// ReasonChange is a debounced burst of file system events.
	ReasonChange Reason = iota
	// ReasonInterval is the periodic poll.
	ReasonInterval
	// ReasonStart is the read a consumer makes before any signal arrives.
	ReasonStart
)

func (r Reason) String() string {
	switch r {
	case ReasonInterval:
		return "interval"
	case ReasonStart:
		return "start"
	default:
		return "change"
	}
}

// Refresh asks the consumer to re-read repository status.
type Refresh struct {
	Reason Reason
	// Paths are the repository-relative paths that changed, sorted.
	// Empty for interval refreshes.
	Paths []string
	Time  time.Time
}

// Options tune the watcher.
type Options struct {
	// Debounce is how long the tree must stay quiet before a change
	// refresh is sent.
	Debounce time.Duration
	// Interval is the poll period; zero disables polling.
	Interval time.Duration
	// Ignore hides matching paths. Ignored directories are not watched.
	Ignore *patterns.Matcher
	// PollOnly skips fsnotify entirely.
	PollOnly bool
}

// DefaultDebounce is used when Options.Debounce is not set.
const DefaultDebounce = 200 * time.Millisecond

// Watcher monitors a working tree using fsnotify
type Watcher struct {
	root string
	opts Options

	// Directories being watched
	directories []string

	refreshChan chan Refresh
	stopChan    chan struct{}
	done        sync.WaitGroup

	// nil when polling only
	fsWatcher *fsnotify.Watcher

	mutex   sync.RWMutex
	running bool
	stopped bool
}

// New creates a watcher for the working tree at root. Directories are
// registered by Start.
func New(root string, opts Options) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.NewFileError("cannot access working tree", root, errors.FileNotFound, err)
	}
	if !info.IsDir() {
		return nil, errors.NewFileError("working tree is not a directory", root, errors.InvalidPath, nil)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	w := &Watcher{
		root:        root,
		opts:        opts,
		refreshChan: make(chan Refresh, 1),
		stopChan:    make(chan struct{}),
	}

	if !opts.PollOnly {
		fsWatcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, errors.NewFileError("failed to create fsnotify watcher", root, errors.WatchFailed, err)
		}
		w.fsWatcher = fsWatcher
	}

	return w, nil
}

// Refreshes returns the channel that delivers refresh signals. It is closed
// by Stop.
func (w *Watcher) Refreshes() <-chan Refresh {
	return w.refreshChan
}

// AddTree watches dir and every directory below it, skipping ignored
// directories and the internals of .git. The .git directory itself is
// watched so index and HEAD updates are noticed.
func (w *Watcher) AddTree(dir string) error {
	if w.fsWatcher == nil {
		return nil
	}

	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return errors.NewFileError("cannot walk directory", p, errors.WatchFailed, err)
			}
			// vanished or unreadable below the root; skip it
			log.LogWithFields(log.F("directory", p), log.F("error", err.Error())).Debug("Skipping directory")
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		rel := w.rel(p)
		if rel == gitDir {
			if err := w.addDirectory(p); err != nil {
				return err
			}
			return filepath.SkipDir
		}
		if rel != "" && w.opts.Ignore.Match(rel) {
			return filepath.SkipDir
		}

		return w.addDirectory(p)
	})
}

func (w *Watcher) addDirectory(dir string) error {
	if err := w.fsWatcher.Add(dir); err != nil {
		return errors.NewFileError("failed to watch directory", dir, errors.WatchFailed, err)
	}

	w.mutex.Lock()
	w.directories = append(w.directories, dir)
	w.mutex.Unlock()

	log.LogWithFields(log.F("directory", dir)).Debug("Watching directory")
	return nil
}

// Start registers the working tree and begins delivering refreshes.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running || w.stopped {
		w.mutex.Unlock()
		return errors.New("watcher already started")
	}
	w.running = true
	w.mutex.Unlock()

	if err := w.AddTree(w.root); err != nil {
		w.mutex.Lock()
		w.running = false
		w.mutex.Unlock()
		return err
	}

	w.done.Add(1)
	go w.loop()

	log.LogWithFields(
		log.F("root", w.root),
		log.F("debounce", w.opts.Debounce.String()),
		log.F("interval", w.opts.Interval.String()),
		log.F("poll_only", w.opts.PollOnly),
	).Info("Watcher started")
	return nil
}

func (w *Watcher) loop() {
	defer w.done.Done()

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if w.fsWatcher != nil {
		events, errs = w.fsWatcher.Events, w.fsWatcher.Errors
	}

	var tick <-chan time.Time
	if w.opts.Interval > 0 {
		ticker := time.NewTicker(w.opts.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	pending := map[string]bool{}
	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			rel, relevant := w.handleEvent(event)
			if !relevant {
				continue
			}
			pending[rel] = true

			if debounce == nil {
				debounce = time.NewTimer(w.opts.Debounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(w.opts.Debounce)
			}
			fire = debounce.C

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = map[string]bool{}
			w.send(Refresh{Reason: ReasonChange, Paths: paths, Time: time.Now()})

		case <-tick:
			w.send(Refresh{Reason: ReasonInterval, Time: time.Now()})

		case err, ok := <-errs:
			if !ok {
				return
			}
			log.LogWithError(errors.NewFileError("fsnotify watcher error", w.root, errors.WatchFailed, err)).Warn("Watch error")

		case <-w.stopChan:
			return
		}
	}
}

// handleEvent filters one fsnotify event and returns its repository-relative
// path when it should trigger a refresh.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}

	rel := w.rel(event.Name)
	if rel == "" {
		return "", false
	}

	if rel == gitDir || strings.HasPrefix(rel, gitDir+"/") {
		switch rel {
		case gitDir + "/index", gitDir + "/HEAD":
			return rel, true
		}
		return "", false
	}

	if w.opts.Ignore.Match(rel) {
		return "", false
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.AddTree(event.Name); err != nil {
				log.LogWithError(err).Warn("Cannot watch new directory")
			}
		}
	}

	return rel, true
}

// send delivers r unless a refresh is already waiting to be consumed.
func (w *Watcher) send(r Refresh) {
	select {
	case w.refreshChan <- r:
	default:
		log.LogWithFields(log.F("reason", r.Reason.String())).Debug("Refresh already pending, dropped signal")
	}
}

func (w *Watcher) rel(p string) string {
	rel, err := filepath.Rel(w.root, p)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// Stop halts the watcher and closes the refresh channel. It is safe to call
// more than once.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if w.stopped {
		w.mutex.Unlock()
		return
	}
	wasRunning := w.running
	w.stopped = true
	w.running = false
	w.mutex.Unlock()

	close(w.stopChan)
	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			log.LogWithFields(log.F("error", err.Error())).Error("Error closing fsnotify watcher")
		}
	}
	if wasRunning {
		w.done.Wait()
	}
	close(w.refreshChan)

	log.Info("Watcher stopped")
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// Directories returns the directories being watched
func (w *Watcher) Directories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirs := make([]string, len(w.directories))
	copy(dirs, w.directories)
	return dirs
}

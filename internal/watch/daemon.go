package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stagr/internal/git"
	"stagr/internal/log"
)

// Snapshotter reads repository status. *git.Repository implements it.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*git.Snapshot, error)
}

// DaemonStatus represents the current status of the daemon
type DaemonStatus struct {
	Running          bool      // Whether the daemon is currently active
	WatchDirectories []string  // Directories being watched
	LastActivity     time.Time // Time of the last refresh signal
	SnapshotsTaken   int       // Successful snapshots delivered
	Failures         int       // Snapshots that returned an error
}

// Daemon re-reads repository status every time the watcher signals a
// refresh and hands the result to a callback. It backs the non-interactive
// follow mode of the CLI.
type Daemon struct {
	watcher *Watcher
	src     Snapshotter

	// Callback for every snapshot attempt
	callback func(Refresh, *git.Snapshot, error)

	// Statistics
	taken        int
	failures     int
	lastActivity time.Time

	mutex   sync.RWMutex
	running bool
}

// NewDaemon creates a daemon reading src whenever w signals. The daemon
// starts and stops w.
func NewDaemon(w *Watcher, src Snapshotter) *Daemon {
	return &Daemon{
		watcher: w,
		src:     src,
	}
}

// SetCallback sets a function to be called after each snapshot attempt.
func (d *Daemon) SetCallback(cb func(Refresh, *git.Snapshot, error)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = cb
}

// Run takes an initial snapshot and then one per refresh signal until ctx
// is done. Snapshot errors are passed to the callback and do not stop the
// daemon.
func (d *Daemon) Run(ctx context.Context) error {
	d.mutex.Lock()
	if d.running {
		d.mutex.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.mutex.Unlock()

	defer func() {
		d.mutex.Lock()
		d.running = false
		d.mutex.Unlock()
	}()

	defer d.watcher.Stop()
	if err := d.watcher.Start(); err != nil {
		return err
	}

	d.process(ctx, Refresh{Reason: ReasonStart, Time: time.Now()})

	for {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-d.watcher.Refreshes():
			if !ok {
				return nil
			}
			d.process(ctx, r)
		}
	}
}

func (d *Daemon) process(ctx context.Context, r Refresh) {
	snap, err := d.src.Snapshot(ctx)
	if err != nil && ctx.Err() != nil {
		// Cancelled while reading; the caller is shutting down.
		return
	}

	d.mutex.Lock()
	d.lastActivity = r.Time
	if err != nil {
		d.failures++
	} else {
		d.taken++
	}
	cb := d.callback
	d.mutex.Unlock()

	if err != nil {
		log.LogWithError(err).Warn("Snapshot failed")
	} else {
		log.LogWithFields(
			log.F("reason", r.Reason.String()),
			log.F("items", len(snap.Items)),
		).Debug("Snapshot taken")
	}

	if cb != nil {
		cb(r, snap, err)
	}
}

// Status returns the current status of the daemon
func (d *Daemon) Status() DaemonStatus {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return DaemonStatus{
		Running:          d.running,
		WatchDirectories: d.watcher.Directories(),
		LastActivity:     d.lastActivity,
		SnapshotsTaken:   d.taken,
		Failures:         d.failures,
	}
}

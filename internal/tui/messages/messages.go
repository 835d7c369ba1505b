package messages

import (
	"time"

	"stagr/internal/git"
	"stagr/internal/watch"
)

// ErrorMsg reports a failure that should be shown in the status bar.
type ErrorMsg struct {
	Err error
}

// SnapshotMsg carries the result of reading repository status.
type SnapshotMsg struct {
	Snapshot *git.Snapshot
	Err      error
}

// RefreshMsg is a refresh signal from the watcher.
type RefreshMsg struct {
	Refresh watch.Refresh
}

// WatcherClosedMsg is sent once the watcher's channel is closed.
type WatcherClosedMsg struct{}

// CopiedMsg reports the outcome of copying a path to the clipboard.
type CopiedMsg struct {
	Path string
	Err  error
}

// TickMsg redraws time-relative text such as "refreshed 5 seconds ago".
type TickMsg time.Time

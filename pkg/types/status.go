package types

// StatusType describes how a path changed relative to the index or HEAD.
type StatusType int

const (
	// StatusNew is an added or untracked path
	StatusNew StatusType = iota
	// StatusModified is a path with content changes
	StatusModified
	// StatusDeleted is a path removed from the worktree or index
	StatusDeleted
	// StatusRenamed is a path that was moved from another location
	StatusRenamed
	// StatusTypechange is a path whose type changed (file, symlink, submodule)
	StatusTypechange
	// StatusConflicted is a path with unmerged changes
	StatusConflicted
)

// String returns the short status glyph used in listings.
func (s StatusType) String() string {
	switch s {
	case StatusNew:
		return "+"
	case StatusModified:
		return "M"
	case StatusDeleted:
		return "-"
	case StatusRenamed:
		return "R"
	case StatusTypechange:
		return "T"
	case StatusConflicted:
		return "!"
	default:
		return "?"
	}
}

// StatusItem is one changed path reported by the repository.
// Status is nil when the change kind is unknown.
type StatusItem struct {
	Path   string
	Status *StatusType
}

// NewStatusItem is a convenience constructor taking the status by value.
func NewStatusItem(path string, status StatusType) StatusItem {
	return StatusItem{Path: path, Status: &status}
}

// StatusItemsFromPaths builds items without status metadata.
func StatusItemsFromPaths(paths ...string) []StatusItem {
	items := make([]StatusItem, 0, len(paths))
	for _, p := range paths {
		items = append(items, StatusItem{Path: p})
	}
	return items
}

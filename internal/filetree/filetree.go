// Package filetree flattens a list of changed paths into the ordered row
// sequence shown by the status view: one row per file and one per distinct
// directory, sorted so that every directory is immediately followed by its
// whole subtree.
package filetree

import (
	"path"
	"sort"
	"strings"

	"stagr/pkg/types"
)

// Separator is the path separator used in item paths, independent of the OS.
const Separator = "/"

// Kind distinguishes directory rows from file rows.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

// ItemInfo holds the per-row data shared by files and directories.
type ItemInfo struct {
	// FullPath identifies the row and encodes its ancestry.
	FullPath string
	// Path is the last path component, the text shown on the row.
	Path string
	// Indent is the nesting depth, zero for top-level rows.
	Indent int
	// Visible is false while any ancestor directory is collapsed.
	Visible bool
}

// Item is one row of the flattened tree.
type Item struct {
	Info ItemInfo
	Kind Kind
	// Collapsed is only meaningful for directories.
	Collapsed bool
	// Status is only set for files, and may be nil.
	Status *types.StatusType
}

// IsDir reports whether the item is a directory row.
func (i Item) IsDir() bool {
	return i.Kind == KindDirectory
}

// IsCollapsedDir reports whether the item is a collapsed directory.
func (i Item) IsCollapsedDir() bool {
	return i.Kind == KindDirectory && i.Collapsed
}

// IsExpandedDir reports whether the item is an expanded directory.
func (i Item) IsExpandedDir() bool {
	return i.Kind == KindDirectory && !i.Collapsed
}

// Items is the flattened, sorted row sequence.
type Items struct {
	items []Item
}

// New builds the row sequence for list. Directories whose full path is in
// collapsed start out collapsed; every row starts out visible and the caller
// is expected to recompute visibility.
func New(list []types.StatusItem, collapsed []string) *Items {
	collapsedSet := make(map[string]bool, len(collapsed))
	for _, c := range collapsed {
		collapsedSet[c] = true
	}

	byPath := make(map[string]Item, len(list)*2)

	for _, entry := range list {
		p := normalize(entry.Path)
		if p == "" {
			continue
		}

		if _, seen := byPath[p]; !seen {
			byPath[p] = newFileItem(p, entry.Status)
		}

		for dir := parentOf(p); dir != ""; dir = parentOf(dir) {
			if existing, seen := byPath[dir]; seen && existing.IsDir() {
				// ancestors of an existing directory row are already present
				break
			}
			byPath[dir] = newDirItem(dir, collapsedSet[dir])
		}
	}

	items := make([]Item, 0, len(byPath))
	for _, item := range byPath {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return ComparePaths(items[i].Info.FullPath, items[j].Info.FullPath) < 0
	})

	return &Items{items: items}
}

func newFileItem(fullPath string, status *types.StatusType) Item {
	return Item{
		Info:   newInfo(fullPath),
		Kind:   KindFile,
		Status: status,
	}
}

func newDirItem(fullPath string, collapsed bool) Item {
	return Item{
		Info:      newInfo(fullPath),
		Kind:      KindDirectory,
		Collapsed: collapsed,
	}
}

func newInfo(fullPath string) ItemInfo {
	return ItemInfo{
		FullPath: fullPath,
		Path:     path.Base(fullPath),
		Indent:   strings.Count(fullPath, Separator),
		Visible:  true,
	}
}

// normalize cleans a repository-relative path; it returns "" for paths that
// do not name an entry.
func normalize(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = path.Clean(strings.TrimPrefix(p, "./"))
	p = strings.TrimPrefix(p, Separator)
	if p == "." || p == "" || p == ".." || strings.HasPrefix(p, "../") {
		return ""
	}
	return p
}

// parentOf returns the parent directory of p, or "" for top-level paths.
func parentOf(p string) string {
	idx := strings.LastIndex(p, Separator)
	if idx < 0 {
		return ""
	}
	return p[:idx]
}

// ComparePaths orders paths byte-wise except that the separator sorts
// before every other byte. This keeps "a/x" ahead of "a-b" and "a.txt", so a
// directory's descendants form one contiguous run right after it.
func ComparePaths(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ca, cb := a[i], b[i]
		if ca == cb {
			continue
		}
		switch {
		case ca == '/':
			return -1
		case cb == '/':
			return 1
		case ca < cb:
			return -1
		default:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// Len returns the number of rows.
func (t *Items) Len() int {
	return len(t.items)
}

// IsEmpty reports whether there are no rows.
func (t *Items) IsEmpty() bool {
	return len(t.items) == 0
}

// At returns a copy of the row at index i. It panics when i is out of range.
func (t *Items) At(i int) Item {
	return t.items[i]
}

// All returns a copy of every row in order.
func (t *Items) All() []Item {
	out := make([]Item, len(t.items))
	copy(out, t.items)
	return out
}

// SetCollapsed updates the collapse flag of the directory at index i.
// It is a no-op for file rows.
func (t *Items) SetCollapsed(i int, collapsed bool) {
	if t.items[i].Kind == KindDirectory {
		t.items[i].Collapsed = collapsed
	}
}

// SetVisible updates the visibility of the row at index i.
func (t *Items) SetVisible(i int, visible bool) {
	t.items[i].Info.Visible = visible
}

// FindParentIndex returns the index of the nearest ancestor directory of p,
// scanning backwards from hint. Top-level rows have no parent, in which
// case hint is returned unchanged.
func (t *Items) FindParentIndex(p string, hint int) int {
	if len(t.items) == 0 {
		return 0
	}
	if hint >= len(t.items) {
		hint = len(t.items) - 1
	}

	parent := parentOf(p)
	if parent == "" {
		return hint
	}

	for i := hint; i >= 0; i-- {
		if t.items[i].Info.FullPath == parent {
			return i
		}
	}
	return hint
}

// Package statustree tracks the cursor and the collapsed directories of the
// status view over a flat, sorted row sequence. The sequence is rebuilt from
// scratch on every refresh; selection and collapse state survive the rebuild
// by path, never by index.
//
// A StatusTree is not safe for concurrent use. It is meant to be owned by a
// single event loop that serializes every call.
package statustree

import (
	"sort"
	"strings"

	"stagr/internal/filetree"
	"stagr/pkg/types"
)

// MoveSelection is a cursor movement direction.
type MoveSelection int

const (
	MoveUp MoveSelection = iota
	MoveDown
	MoveLeft
	MoveRight
)

// String returns the direction name.
func (m MoveSelection) String() string {
	switch m {
	case MoveUp:
		return "up"
	case MoveDown:
		return "down"
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	default:
		return "unknown"
	}
}

// StatusTree is the selection and visibility state of the status view.
// The zero value is an empty tree ready for Update.
type StatusTree struct {
	tree      *filetree.Items
	selection int
	selected  bool
}

// New returns an empty status tree.
func New() *StatusTree {
	return &StatusTree{}
}

type selectionChange struct {
	newIndex int
	changes  bool
}

// Update replaces the rows with a tree built from list, keeping the
// collapsed directories and, where possible, the selected path.
func (s *StatusTree) Update(list []types.StatusItem) {
	lastCollapsed := s.AllCollapsed()

	lastSelection, hadSelection := "", false
	if item, ok := s.SelectedItem(); ok {
		lastSelection, hadSelection = item.Info.FullPath, true
	}
	lastSelectionIndex := 0
	if s.selected {
		lastSelectionIndex = s.selection
	}

	s.tree = filetree.New(list, lastCollapsed)

	switch {
	case s.IsEmpty():
		s.selection, s.selected = 0, false
	case hadSelection:
		s.selection, s.selected = s.findLastSelection(lastSelection, lastSelectionIndex), true
	default:
		s.selection, s.selected = 0, true
	}

	s.updateVisibility("", false, 0, true)
}

// MoveSelection moves the cursor or collapses/expands the selected
// directory. It reports whether anything changed that needs a redraw.
func (s *StatusTree) MoveSelection(dir MoveSelection) bool {
	if !s.selected {
		return false
	}
	selection := s.selection

	var change selectionChange
	switch dir {
	case MoveUp:
		change = s.selectionUpDown(selection, true)
	case MoveDown:
		change = s.selectionUpDown(selection, false)
	case MoveLeft:
		change = s.selectionLeft(selection)
	case MoveRight:
		change = s.selectionRight(selection)
	default:
		return false
	}

	changed := change.newIndex != selection
	s.selection = change.newIndex

	return changed || change.changes
}

// SelectedItem returns a copy of the selected row.
func (s *StatusTree) SelectedItem() (filetree.Item, bool) {
	if !s.selected {
		return filetree.Item{}, false
	}
	return s.tree.At(s.selection), true
}

// Selection returns the selected index, if any. The index is only valid
// until the next Update.
func (s *StatusTree) Selection() (int, bool) {
	return s.selection, s.selected
}

// IsEmpty reports whether the tree has no rows.
func (s *StatusTree) IsEmpty() bool {
	return s.tree == nil || s.tree.IsEmpty()
}

// Len returns the number of rows, visible or not.
func (s *StatusTree) Len() int {
	if s.tree == nil {
		return 0
	}
	return s.tree.Len()
}

// Item returns a copy of row i.
func (s *StatusTree) Item(i int) filetree.Item {
	return s.tree.At(i)
}

// Items returns a copy of every row in order.
func (s *StatusTree) Items() []filetree.Item {
	if s.tree == nil {
		return nil
	}
	return s.tree.All()
}

// VisibleRow is a visible row together with its index in the full sequence.
type VisibleRow struct {
	Index int
	Item  filetree.Item
}

// VisibleItems returns the visible rows in order.
func (s *StatusTree) VisibleItems() []VisibleRow {
	rows := make([]VisibleRow, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		item := s.tree.At(i)
		if item.Info.Visible {
			rows = append(rows, VisibleRow{Index: i, Item: item})
		}
	}
	return rows
}

// AllCollapsed returns the full paths of every collapsed directory, sorted.
func (s *StatusTree) AllCollapsed() []string {
	var res []string
	for i := 0; i < s.Len(); i++ {
		if item := s.tree.At(i); item.IsCollapsedDir() {
			res = append(res, item.Info.FullPath)
		}
	}
	return res
}

// CollapsePaths collapses every expanded directory whose full path is in
// paths. Leading "./" and trailing separators are ignored; unknown paths are
// skipped. It reports whether any directory was collapsed.
func (s *StatusTree) CollapsePaths(paths []string) bool {
	if len(paths) == 0 {
		return false
	}
	want := make(map[string]bool, len(paths))
	for _, p := range paths {
		p = strings.TrimPrefix(p, "./")
		want[strings.Trim(p, filetree.Separator)] = true
	}

	changed := false
	for i := 0; i < s.Len(); i++ {
		item := s.tree.At(i)
		if item.IsExpandedDir() && want[item.Info.FullPath] {
			s.Collapse(item.Info.FullPath, i)
			changed = true
		}
	}
	return changed
}

func (s *StatusTree) findLastSelection(lastSelection string, lastIndex int) int {
	n := s.tree.Len()
	i := sort.Search(n, func(i int) bool {
		return filetree.ComparePaths(s.tree.At(i).Info.FullPath, lastSelection) >= 0
	})
	if i < n && s.tree.At(i).Info.FullPath == lastSelection {
		return i
	}

	return min(lastIndex, n-1)
}

func (s *StatusTree) selectionUpDown(current int, up bool) selectionChange {
	newIndex := current
	itemsMax := max(s.tree.Len()-1, 0)

	for {
		if up {
			newIndex = max(newIndex-1, 0)
		} else {
			newIndex = min(newIndex+1, itemsMax)
		}

		if s.isVisibleIndex(newIndex) {
			break
		}

		if newIndex == 0 || newIndex == itemsMax {
			// limit reached, keep the cursor where it was
			newIndex = current
			break
		}
	}

	return selectionChange{newIndex: newIndex}
}

func (s *StatusTree) isVisibleIndex(i int) bool {
	return s.tree.At(i).Info.Visible
}

func (s *StatusTree) selectionRight(current int) selectionChange {
	item := s.tree.At(current)

	if item.IsCollapsedDir() {
		s.Expand(item.Info.FullPath, current)
		return selectionChange{newIndex: current, changes: true}
	}

	return selectionChange{newIndex: current}
}

func (s *StatusTree) selectionLeft(current int) selectionChange {
	item := s.tree.At(current)

	switch {
	case !item.IsDir() || item.IsCollapsedDir():
		return selectionChange{newIndex: s.tree.FindParentIndex(item.Info.FullPath, current)}
	case item.IsExpandedDir():
		s.Collapse(item.Info.FullPath, current)
		return selectionChange{newIndex: current, changes: true}
	}

	return selectionChange{newIndex: current}
}

// Collapse marks the directory at index collapsed and hides its subtree.
// path must be the full path of the row at index; the selection does not
// move even if it now points at a hidden row. It panics when index is out of
// range.
func (s *StatusTree) Collapse(path string, index int) {
	s.tree.SetCollapsed(index, true)

	prefix := path + filetree.Separator
	for i := index + 1; i < s.tree.Len(); i++ {
		if !hasPrefix(s.tree.At(i).Info.FullPath, prefix) {
			return
		}
		s.tree.SetVisible(i, false)
	}
}

// Expand marks the directory at index expanded and shows its subtree,
// except for the contents of nested directories that are still collapsed.
// It panics when index is out of range.
func (s *StatusTree) Expand(path string, index int) {
	s.tree.SetCollapsed(index, false)

	s.updateVisibility(path+filetree.Separator, true, index+1, false)
}

// updateVisibility walks the rows from start. Rows under prefix (or every
// row when scoped is false) become visible unless a collapsed directory
// above them was met during the walk. Rows outside prefix are hidden when
// setDefaults is set; otherwise the walk stops at the first such row.
func (s *StatusTree) updateVisibility(prefix string, scoped bool, start int, setDefaults bool) {
	// while inside a collapsed directory we keep skipping over its subtree
	innerCollapsed, skipping := "", false

	for i := start; i < s.tree.Len(); i++ {
		item := s.tree.At(i)
		itemPath := item.Info.FullPath

		if skipping {
			if hasPrefix(itemPath, innerCollapsed) {
				if setDefaults {
					s.tree.SetVisible(i, false)
				}
				continue
			}
			innerCollapsed, skipping = "", false
		}

		if item.IsCollapsedDir() {
			innerCollapsed, skipping = itemPath+filetree.Separator, true
		}

		if !scoped || hasPrefix(itemPath, prefix) {
			s.tree.SetVisible(i, true)
		} else {
			// without defaults to apply nothing past the scope needs touching
			if !setDefaults {
				return
			}
			s.tree.SetVisible(i, false)
		}
	}
}

func hasPrefix(p, prefix string) bool {
	return len(p) >= len(prefix) && p[:len(prefix)] == prefix
}

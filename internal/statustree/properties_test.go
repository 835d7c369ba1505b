package statustree

import (
	"strings"
	"testing"

	"stagr/internal/filetree"
	"stagr/pkg/types"

	"pgregory.net/rapid"
)

// Names share string prefixes on purpose so sibling mix-ups show up.
var pathParts = []string{"a", "a2", "a-b", "b", "a.txt"}

func pathGen() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		depth := rapid.IntRange(1, 4).Draw(t, "depth")
		parts := make([]string, depth)
		for i := range parts {
			parts[i] = rapid.SampledFrom(pathParts).Draw(t, "part")
		}
		return strings.Join(parts, filetree.Separator)
	})
}

func listGen() *rapid.Generator[[]types.StatusItem] {
	return rapid.Custom(func(t *rapid.T) []types.StatusItem {
		paths := rapid.SliceOfN(pathGen(), 0, 12).Draw(t, "paths")
		return types.StatusItemsFromPaths(paths...)
	})
}

// expectedVisible reports whether no proper ancestor of row i is collapsed.
func expectedVisible(items []filetree.Item, i int) bool {
	collapsed := map[string]bool{}
	for _, item := range items {
		if item.IsCollapsedDir() {
			collapsed[item.Info.FullPath] = true
		}
	}
	p := items[i].Info.FullPath
	for idx := strings.LastIndex(p, filetree.Separator); idx >= 0; idx = strings.LastIndex(p, filetree.Separator) {
		p = p[:idx]
		if collapsed[p] {
			return false
		}
	}
	return true
}

func checkInvariants(t *rapid.T, s *StatusTree) {
	items := s.Items()

	sel, ok := s.Selection()
	if s.IsEmpty() {
		if ok {
			t.Fatalf("empty tree has selection %d", sel)
		}
	} else if !ok || sel < 0 || sel >= len(items) {
		t.Fatalf("selection %d (%v) out of range for %d rows", sel, ok, len(items))
	}

	for i := range items {
		if i > 0 && filetree.ComparePaths(items[i-1].Info.FullPath, items[i].Info.FullPath) >= 0 {
			t.Fatalf("rows out of order: %q then %q", items[i-1].Info.FullPath, items[i].Info.FullPath)
		}
		if want := expectedVisible(items, i); items[i].Info.Visible != want {
			t.Fatalf("row %q visible=%v, want %v", items[i].Info.FullPath, items[i].Info.Visible, want)
		}
	}
}

func visibleDirs(s *StatusTree, collapsed bool) []int {
	var res []int
	for _, row := range s.VisibleItems() {
		if row.Item.IsDir() && row.Item.Collapsed == collapsed {
			res = append(res, row.Index)
		}
	}
	return res
}

func TestTreeProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New()
		s.Update(listGen().Draw(t, "initial"))

		t.Repeat(map[string]func(*rapid.T){
			"update": func(t *rapid.T) {
				var before string
				if item, ok := s.SelectedItem(); ok {
					before = item.Info.FullPath
				}
				beforeIdx, _ := s.Selection()

				s.Update(listGen().Draw(t, "list"))

				if before == "" || s.IsEmpty() {
					return
				}
				after, _ := s.SelectedItem()
				found := false
				for _, item := range s.Items() {
					if item.Info.FullPath == before {
						found = true
						break
					}
				}
				idx, _ := s.Selection()
				if found && after.Info.FullPath != before {
					t.Fatalf("selection moved from %q to %q", before, after.Info.FullPath)
				}
				if !found && idx != min(beforeIdx, s.Len()-1) {
					t.Fatalf("fallback selection %d, want %d", idx, min(beforeIdx, s.Len()-1))
				}
			},
			"up": func(t *rapid.T) {
				moveVertically(t, s, MoveUp)
			},
			"down": func(t *rapid.T) {
				moveVertically(t, s, MoveDown)
			},
			"collapse": func(t *rapid.T) {
				dirs := visibleDirs(s, false)
				if len(dirs) == 0 {
					t.Skip("no expanded directory")
				}
				i := rapid.SampledFrom(dirs).Draw(t, "dir")
				before := s.Items()
				s.Collapse(before[i].Info.FullPath, i)

				prefix := before[i].Info.FullPath + filetree.Separator
				for j, item := range s.Items() {
					if strings.HasPrefix(item.Info.FullPath, prefix) {
						if item.Info.Visible {
							t.Fatalf("%q still visible under collapsed %q", item.Info.FullPath, before[i].Info.FullPath)
						}
					} else if item.Info.Visible != before[j].Info.Visible {
						t.Fatalf("%q outside %q changed visibility", item.Info.FullPath, prefix)
					}
				}
			},
			"expand": func(t *rapid.T) {
				dirs := visibleDirs(s, true)
				if len(dirs) == 0 {
					t.Skip("no collapsed directory")
				}
				i := rapid.SampledFrom(dirs).Draw(t, "dir")
				s.Expand(s.Item(i).Info.FullPath, i)
			},
			"": func(t *rapid.T) {
				checkInvariants(t, s)
			},
		})
	})
}

func moveVertically(t *rapid.T, s *StatusTree, dir MoveSelection) {
	before, ok := s.Selection()
	changed := s.MoveSelection(dir)
	after, _ := s.Selection()

	if !ok {
		if changed {
			t.Fatalf("%s on empty tree reported a change", dir)
		}
		return
	}
	if changed != (before != after) {
		t.Fatalf("%s reported changed=%v moving %d -> %d", dir, changed, before, after)
	}
	if changed && !s.Item(after).Info.Visible {
		t.Fatalf("%s landed on hidden row %q", dir, s.Item(after).Info.FullPath)
	}
	if dir == MoveUp && after > before || dir == MoveDown && after < before {
		t.Fatalf("%s moved the wrong way: %d -> %d", dir, before, after)
	}
}

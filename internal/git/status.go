package git

import (
	"bytes"
	"fmt"

	"stagr/internal/errors"
	"stagr/pkg/types"
)

// ParseStatus parses the output of `git status --porcelain=v1 -z`.
//
// Every record is "XY <path>" terminated by NUL. Renames and copies carry
// a second NUL-terminated field with the original path, which is skipped.
// Ignored entries ("!!") are dropped.
func ParseStatus(out []byte) ([]types.StatusItem, error) {
	var items []types.StatusItem

	records := bytes.Split(out, []byte{0})
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if len(rec) == 0 {
			continue
		}
		if len(rec) < 4 || rec[2] != ' ' {
			return nil, errors.NewRepoError(fmt.Sprintf("malformed status record %q", rec), "", errors.StatusParseFailed, nil)
		}

		x, y := rec[0], rec[1]
		path := string(rec[3:])

		if x == 'R' || x == 'C' || y == 'R' || y == 'C' {
			// skip the source path
			i++
		}

		if x == '!' && y == '!' {
			continue
		}

		items = append(items, types.NewStatusItem(path, statusFromCodes(x, y)))
	}

	return items, nil
}

func statusFromCodes(x, y byte) types.StatusType {
	if isConflict(x, y) {
		return types.StatusConflicted
	}
	if x == '?' && y == '?' {
		return types.StatusNew
	}

	has := func(c byte) bool { return x == c || y == c }
	switch {
	case has('R'):
		return types.StatusRenamed
	case has('A'), has('C'):
		return types.StatusNew
	case has('D'):
		return types.StatusDeleted
	case has('T'):
		return types.StatusTypechange
	default:
		return types.StatusModified
	}
}

func isConflict(x, y byte) bool {
	switch string([]byte{x, y}) {
	case "DD", "AU", "UD", "UA", "DU", "AA", "UU":
		return true
	}
	return false
}

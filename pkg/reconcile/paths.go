package reconcile

import (
	"path/filepath"
)

// ancestors returns the strict ancestors of a cleaned path, nearest first.
// The walk stops at "." or the filesystem root, which are not included.
func ancestors(p string) []string {
	var out []string
	for {
		parent := filepath.Dir(p)
		if parent == p || parent == "." || parent == string(filepath.Separator) {
			return out
		}
		out = append(out, parent)
		p = parent
	}
}

// within reports whether child lies strictly inside parent
func within(child, parent string) bool {
	if child == parent {
		return false
	}
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !startsWithDotDot(rel) && !filepath.IsAbs(rel)
}

func startsWithDotDot(rel string) bool {
	return len(rel) >= 3 && rel[:2] == ".." && rel[2] == filepath.Separator
}

// rebase moves p from under oldBase to under newBase
func rebase(p, oldBase, newBase string) string {
	rel, err := filepath.Rel(oldBase, p)
	if err != nil {
		return p
	}
	return filepath.Join(newBase, rel)
}

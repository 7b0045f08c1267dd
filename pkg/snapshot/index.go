package snapshot

import (
	"path/filepath"

	"github.com/arthur-debert/rendir/pkg/types"
)

// PathIndex hands out identities in listing order. Identity n lives at
// position n-1, so lookups need no map and identities are never reused.
type PathIndex struct {
	entries []types.Entry
	byPath  map[string]int
}

// NewPathIndex returns an empty index
func NewPathIndex() *PathIndex {
	return &PathIndex{byPath: make(map[string]int)}
}

// Add indexes a path under the next identity. A path already indexed (after
// cleaning) is not added twice: the existing entry is returned with false.
func (x *PathIndex) Add(path string, kind types.Kind) (types.Entry, bool) {
	key := filepath.Clean(path)
	if id, ok := x.byPath[key]; ok {
		return x.entries[id-1], false
	}
	e := types.Entry{ID: len(x.entries) + 1, Path: path, Kind: kind}
	x.entries = append(x.entries, e)
	x.byPath[key] = e.ID
	return e, true
}

// Get returns the entry with the given identity
func (x *PathIndex) Get(id int) (types.Entry, bool) {
	if id < 1 || id > len(x.entries) {
		return types.Entry{}, false
	}
	return x.entries[id-1], true
}

// Len returns the number of indexed entries
func (x *PathIndex) Len() int {
	return len(x.entries)
}

// Entries returns a copy of all entries in listing order
func (x *PathIndex) Entries() []types.Entry {
	out := make([]types.Entry, len(x.entries))
	copy(out, x.entries)
	return out
}

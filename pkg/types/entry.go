package types

import (
	"path/filepath"
)

// Kind distinguishes files from directories
type Kind int

const (
	// KindFile is anything that is not a directory, symlinks included
	KindFile Kind = iota
	// KindDirectory is a directory
	KindDirectory
)

// String returns the word used in reports ("file" or "directory")
func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Entry is one filesystem object captured by a snapshot.
// ID is only meaningful within the run that produced it.
type Entry struct {
	ID   int
	Path string
	Kind Kind
}

// IsDir reports whether the entry is a directory
func (e Entry) IsDir() bool {
	return e.Kind == KindDirectory
}

// CleanPath returns the entry path in the form used for comparisons
func (e Entry) CleanPath() string {
	return filepath.Clean(e.Path)
}

// EditedLine is one decoded line of the edited buffer
type EditedLine struct {
	// ID is the identity the user left on the line
	ID int
	// Path is the text after the identity, trimmed
	Path string
	// Line is the 1-based line number in the buffer
	Line int
}

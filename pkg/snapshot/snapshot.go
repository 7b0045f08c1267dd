// Package snapshot lists the directories handed to rendir and numbers every
// entry it finds.
package snapshot

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/rendir/pkg/errors"
	"github.com/arthur-debert/rendir/pkg/logging"
	"github.com/arthur-debert/rendir/pkg/types"
)

// DefaultRoot is scanned when no root is given
const DefaultRoot = "."

// Options configures a scan
type Options struct {
	// Depth is how many levels are listed below each root. Values below 1
	// mean 1: only the immediate children.
	Depth int
}

// Snapshotter produces the numbered listing of one or more roots
type Snapshotter struct {
	fs     types.FS
	depth  int
	logger zerolog.Logger
}

// New creates a Snapshotter reading through fs
func New(fsys types.FS, opts Options) *Snapshotter {
	depth := opts.Depth
	if depth < 1 {
		depth = 1
	}
	return &Snapshotter{
		fs:     fsys,
		depth:  depth,
		logger: logging.GetLogger("snapshot"),
	}
}

// Scan lists every root in argument order and returns the entries with
// identities assigned from 1. Within a root, names are sorted at every level
// and a directory is followed by its own children when depth allows.
func (s *Snapshotter) Scan(roots []string) ([]types.Entry, error) {
	if len(roots) == 0 {
		roots = []string{DefaultRoot}
	}

	index := NewPathIndex()
	seen := make(map[string]bool, len(roots))

	for _, root := range roots {
		key := filepath.Clean(root)
		if seen[key] {
			s.logger.Warn().Str("root", root).Msg("Directory given more than once, listing it once")
			continue
		}
		seen[key] = true

		if err := s.checkRoot(root); err != nil {
			return nil, err
		}

		children, err := s.fs.ReadDir(root)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrScan, "cannot read directory %q", root).
				WithDetail(errors.DetailPath, root)
		}

		before := index.Len()
		s.walk(index, root, children, 1)
		s.logger.Debug().
			Str("root", root).
			Int("entries", index.Len()-before).
			Msg("Scanned directory")
	}

	return index.Entries(), nil
}

func (s *Snapshotter) checkRoot(root string) error {
	info, err := s.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrScan, "directory %q does not exist", root).
				WithDetail(errors.DetailPath, root)
		}
		return errors.Wrapf(err, errors.ErrScan, "cannot access %q", root).
			WithDetail(errors.DetailPath, root)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrScan, "%q is not a directory", root).
			WithDetail(errors.DetailPath, root)
	}
	return nil
}

func (s *Snapshotter) walk(index *PathIndex, dir string, children []fs.DirEntry, level int) {
	sort.Slice(children, func(i, j int) bool {
		return children[i].Name() < children[j].Name()
	})

	for _, child := range children {
		path := Join(dir, child.Name())

		info, err := child.Info()
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Cannot read entry, leaving it out")
			continue
		}

		kind := types.KindFile
		if info.IsDir() {
			kind = types.KindDirectory
		}

		if _, added := index.Add(path, kind); !added {
			s.logger.Debug().Str("path", path).Msg("Already listed")
			continue
		}

		if kind != types.KindDirectory || level >= s.depth {
			continue
		}

		grandchildren, err := s.fs.ReadDir(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Cannot read directory, its contents are not listed")
			continue
		}
		s.walk(index, path, grandchildren, level+1)
	}
}

// Join appends name to dir with exactly one separator, keeping dir as given:
// Join(".", "a") is "./a", not "a".
func Join(dir, name string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir + name
	}
	return dir + string(filepath.Separator) + name
}

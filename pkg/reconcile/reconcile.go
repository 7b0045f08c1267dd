// Package reconcile compares the edited buffer with the snapshot it was made
// from and derives an ordered plan of renames and deletions.
//
// Nothing here touches the filesystem beyond Lstat calls used to find out
// whether a rename target is already taken.
package reconcile

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/rendir/pkg/errors"
	"github.com/arthur-debert/rendir/pkg/logging"
	"github.com/arthur-debert/rendir/pkg/types"
)

// DefaultTempPrefix names the temporary entries used to break rename cycles
const DefaultTempPrefix = ".rendir-tmp-"

// Options configures reconciliation
type Options struct {
	// ResolveCycles breaks rename cycles with a temporary name instead of
	// reporting them
	ResolveCycles bool

	// TempPrefix is used by the default TempName
	TempPrefix string

	// TempName returns a candidate temporary path inside dir. It is called
	// again when the candidate is taken.
	TempName func(dir string) string
}

// Reconciler turns edited lines into a plan
type Reconciler struct {
	fs     types.FS
	opts   Options
	logger zerolog.Logger
}

// New creates a Reconciler. fs is only used to look at rename targets.
func New(fsys types.FS, opts Options) *Reconciler {
	if opts.TempPrefix == "" {
		opts.TempPrefix = DefaultTempPrefix
	}
	if opts.TempName == nil {
		prefix := opts.TempPrefix
		opts.TempName = func(dir string) string {
			return filepath.Join(dir, prefix+uuid.NewString())
		}
	}
	return &Reconciler{
		fs:     fsys,
		opts:   opts,
		logger: logging.GetLogger("reconcile"),
	}
}

// item is the working state of one snapshot entry while planning
type item struct {
	entry types.Entry
	pos   int
	op    types.OperationType
	// from is the cleaned source path
	from string
	// to is the cleaned final path: the rename target, or for keeps the
	// path the entry ends up at once its renamed ancestors have moved
	to     string
	target string
	line   int
}

// Reconcile matches every edited line to its snapshot entry and returns the
// plan. Any problem found here aborts before a single change is made.
func (r *Reconciler) Reconcile(entries []types.Entry, lines []types.EditedLine) (*types.Plan, error) {
	done := logging.LogOperationStart(r.logger, "reconcile")
	defer done()

	items, err := classify(entries, lines)
	if err != nil {
		return nil, err
	}

	followRenamedParents(items)

	if err := r.checkCollisions(items); err != nil {
		return nil, err
	}

	plan, err := r.order(items)
	if err != nil {
		return nil, err
	}

	r.logger.Debug().
		Int("keeps", len(plan.Keeps())).
		Int("renames", len(plan.Renames())).
		Int("deletes", len(plan.Deletes())).
		Msg("Plan ready")
	return plan, nil
}

// classify resolves every line to its entry: same path is a keep, another
// path a rename, and entries nobody mentions are deleted
func classify(entries []types.Entry, lines []types.EditedLine) ([]*item, error) {
	items := make([]*item, len(entries))
	byID := make(map[int]*item, len(entries))
	for i, e := range entries {
		it := &item{
			entry: e,
			pos:   i,
			op:    types.OpDelete,
			from:  e.CleanPath(),
		}
		items[i] = it
		byID[e.ID] = it
	}

	for _, l := range lines {
		it, ok := byID[l.ID]
		if !ok {
			return nil, errors.Newf(errors.ErrReference, "unknown index %d at line %d", l.ID, l.Line).
				WithDetails(map[string]interface{}{
					errors.DetailIndex: l.ID,
					errors.DetailLine:  l.Line,
				})
		}
		if it.line != 0 {
			return nil, errors.Newf(errors.ErrReference, "duplicate index %d at line %d (first used at line %d)", l.ID, l.Line, it.line).
				WithDetails(map[string]interface{}{
					errors.DetailIndex: l.ID,
					errors.DetailLine:  l.Line,
				})
		}

		it.line = l.Line
		it.target = l.Path
		it.to = filepath.Clean(l.Path)
		if it.to == it.from {
			it.op = types.OpKeep
		} else {
			it.op = types.OpRename
		}
	}

	return items, nil
}

// followRenamedParents handles entries nested under a renamed directory. A
// kept entry travels with the directory. A rename that names exactly the
// path the directory carries it to needs no move of its own either.
func followRenamedParents(items []*item) {
	renamed := make(map[string]*item)
	for _, it := range items {
		if it.op == types.OpRename {
			renamed[it.from] = it
		}
	}
	if len(renamed) == 0 {
		return
	}

	carriedTo := func(it *item) (string, bool) {
		for _, dir := range ancestors(it.from) {
			if parent, ok := renamed[dir]; ok {
				return rebase(it.from, parent.from, parent.to), true
			}
		}
		return "", false
	}

	for _, it := range items {
		switch it.op {
		case types.OpKeep:
			if dest, ok := carriedTo(it); ok {
				it.to = dest
			}
		case types.OpRename:
			if dest, ok := carriedTo(it); ok && dest == it.to {
				it.op = types.OpKeep
			}
		}
	}
}

func (it *item) isVacating() bool {
	return it.op == types.OpRename || it.op == types.OpDelete
}

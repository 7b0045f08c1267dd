package reconcile

import (
	"os"

	"github.com/arthur-debert/rendir/pkg/errors"
	"github.com/arthur-debert/rendir/pkg/types"
)

// planState is what the filesystem will look like once the plan has run,
// as far as the plan itself can tell
type planState struct {
	// vacated holds the sources of renames and deletes
	vacated map[string]*item
	// deletedDirs holds directories removed with their content
	deletedDirs map[string]*item
	// finals maps every surviving entry to the path it ends at
	finals map[string]*item
}

func newPlanState(items []*item) *planState {
	s := &planState{
		vacated:     make(map[string]*item),
		deletedDirs: make(map[string]*item),
		finals:      make(map[string]*item),
	}
	for _, it := range items {
		if it.isVacating() {
			s.vacated[it.from] = it
		}
		if it.op == types.OpDelete && it.entry.IsDir() {
			s.deletedDirs[it.from] = it
		}
	}
	return s
}

// freed reports whether p, or a directory above it, is moved away or
// deleted by the plan
func (s *planState) freed(p string) bool {
	if _, ok := s.vacated[p]; ok {
		return true
	}
	for _, dir := range ancestors(p) {
		if _, ok := s.vacated[dir]; ok {
			return true
		}
	}
	return false
}

// destroyedBy returns the deleted directory that takes the entry with it.
// A renamed directory closer to the entry carries it away first.
func (s *planState) destroyedBy(it *item) (*item, bool) {
	for _, dir := range ancestors(it.from) {
		if del, ok := s.deletedDirs[dir]; ok {
			return del, true
		}
		if mover, ok := s.vacated[dir]; ok && mover.op == types.OpRename {
			return nil, false
		}
	}
	return nil, false
}

// deletedUnder returns the deleted directory a target path would land in.
// A path the plan fills again, e.g. a directory renamed onto a deleted one,
// stops the search.
func (s *planState) deletedUnder(p string) (*item, bool) {
	for _, dir := range ancestors(p) {
		if _, ok := s.finals[dir]; ok {
			return nil, false
		}
		if del, ok := s.deletedDirs[dir]; ok {
			return del, true
		}
	}
	return nil, false
}

func collision(format string, ids []int, args ...interface{}) *errors.RendirError {
	return errors.Newf(errors.ErrCollision, format, args...).WithDetail(errors.DetailIDs, ids)
}

// checkCollisions rejects plans that would overwrite or destroy something
func (r *Reconciler) checkCollisions(items []*item) error {
	state := newPlanState(items)

	for _, it := range items {
		if it.op == types.OpDelete {
			continue
		}

		if first, ok := state.finals[it.to]; ok {
			return collision("%q and %q would both end up at %q",
				[]int{first.entry.ID, it.entry.ID}, first.entry.Path, it.entry.Path, it.to).
				WithDetail(errors.DetailTarget, it.to)
		}
		state.finals[it.to] = it

		if dir, ok := state.destroyedBy(it); ok && it.op == types.OpKeep {
			return collision("%q is kept but %q, which contains it, is deleted",
				[]int{it.entry.ID, dir.entry.ID}, it.entry.Path, dir.entry.Path).
				WithDetail(errors.DetailPath, it.entry.Path)
		}
	}

	for _, it := range items {
		if it.op != types.OpRename {
			continue
		}
		if err := r.checkTarget(state, it); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) checkTarget(state *planState, it *item) error {
	ids := []int{it.entry.ID}

	if within(it.to, it.from) {
		return collision("cannot move %q inside itself (%q)", ids, it.entry.Path, it.target).
			WithDetail(errors.DetailTarget, it.target)
	}

	if dir, ok := state.deletedUnder(it.to); ok {
		return collision("cannot move %q to %q: %q is deleted",
			append(ids, dir.entry.ID), it.entry.Path, it.target, dir.entry.Path).
			WithDetail(errors.DetailTarget, it.target)
	}

	if !state.freed(it.to) {
		info, err := r.fs.Lstat(it.to)
		switch {
		case err == nil:
			if !r.sameFile(info, it.from) {
				return collision("cannot move %q to %q: target already exists", ids, it.entry.Path, it.target).
					WithDetail(errors.DetailTarget, it.target)
			}
		case !os.IsNotExist(err):
			return errors.Wrapf(err, errors.ErrCollision, "cannot check target %q", it.target).
				WithDetail(errors.DetailTarget, it.target)
		}
	}

	return r.checkParents(state, it)
}

// checkParents makes sure every directory the target needs either exists as
// a directory, will be created by the plan, or can be created
func (r *Reconciler) checkParents(state *planState, it *item) error {
	for _, dir := range ancestors(it.to) {
		if owner, ok := state.finals[dir]; ok {
			if owner.entry.IsDir() {
				return nil
			}
			return collision("cannot move %q to %q: %q would be a file",
				[]int{it.entry.ID, owner.entry.ID}, it.entry.Path, it.target, dir).
				WithDetail(errors.DetailTarget, it.target)
		}
		if state.freed(dir) {
			return nil
		}

		info, err := r.fs.Lstat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, errors.ErrCollision, "cannot check directory %q", dir).
				WithDetail(errors.DetailTarget, it.target)
		}
		if !info.IsDir() {
			return collision("cannot move %q to %q: %q is not a directory",
				[]int{it.entry.ID}, it.entry.Path, it.target, dir).
				WithDetail(errors.DetailTarget, it.target)
		}
		return nil
	}
	return nil
}

// sameFile catches renames that only change letter case on filesystems that
// ignore it: the "existing" target is the source itself
func (r *Reconciler) sameFile(target os.FileInfo, from string) bool {
	source, err := r.fs.Lstat(from)
	if err != nil {
		return false
	}
	return os.SameFile(target, source)
}

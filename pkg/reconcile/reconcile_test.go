package reconcile_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rendir/pkg/errors"
	"github.com/arthur-debert/rendir/pkg/reconcile"
	"github.com/arthur-debert/rendir/pkg/testutil"
	"github.com/arthur-debert/rendir/pkg/types"
)

func file(id int, path string) types.Entry {
	return types.Entry{ID: id, Path: path, Kind: types.KindFile}
}

func dir(id int, path string) types.Entry {
	return types.Entry{ID: id, Path: path, Kind: types.KindDirectory}
}

// edits builds edited lines from "id path" pairs, numbering lines from 1
func edits(pairs ...interface{}) []types.EditedLine {
	var out []types.EditedLine
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, types.EditedLine{
			ID:   pairs[i].(int),
			Path: pairs[i+1].(string),
			Line: i/2 + 1,
		})
	}
	return out
}

func countingTempNames() func(string) string {
	n := 0
	return func(dir string) string {
		n++
		return filepath.Join(dir, fmt.Sprintf(".tmp-%d", n))
	}
}

func newReconciler(t *testing.T, tree ...string) *reconcile.Reconciler {
	t.Helper()
	fsys, _ := testutil.NewMemFS(t, tree...)
	return reconcile.New(fsys, reconcile.Options{ResolveCycles: true, TempName: countingTempNames()})
}

// steps renders the plan as readable strings
func steps(plan *types.Plan) []string {
	var out []string
	for _, op := range plan.Operations {
		switch op.Type {
		case types.OpKeep:
			out = append(out, "keep "+op.From)
		case types.OpDelete:
			out = append(out, "delete "+op.From)
		default:
			out = append(out, fmt.Sprintf("rename %s -> %s", op.From, op.To))
		}
	}
	return out
}

func TestReconcileUnchangedBufferKeepsEverything(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a"), dir(2, "/w/b")}
	r := newReconciler(t, "/w/a", "/w/b/")

	plan, err := r.Reconcile(entries, edits(1, "/w/a", 2, "/w/b/"))
	require.NoError(t, err)

	assert.Equal(t, []string{"keep /w/a", "keep /w/b"}, steps(plan))
	assert.Equal(t, 0, plan.Changes())
}

func TestReconcileLineOrderDoesNotMatter(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a"), file(2, "/w/b")}
	r := newReconciler(t, "/w/a", "/w/b")

	plan, err := r.Reconcile(entries, edits(2, "/w/b", 1, "/w/a"))
	require.NoError(t, err)
	assert.Equal(t, 0, plan.Changes())
}

func TestReconcileCleansPathsBeforeComparing(t *testing.T) {
	entries := []types.Entry{dir(1, "./old")}
	r := newReconciler(t)

	plan, err := r.Reconcile(entries, edits(1, "old/"))
	require.NoError(t, err)
	assert.Equal(t, []string{"keep ./old"}, steps(plan))
}

func TestReconcileRenameAndDelete(t *testing.T) {
	entries := []types.Entry{file(1, "/w/file1"), file(2, "/w/file_2"), dir(3, "/w/old")}
	r := newReconciler(t, "/w/file1", "/w/file_2", "/w/old/")

	plan, err := r.Reconcile(entries, edits(1, "/w/file_1", 2, "/w/file_2"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"keep /w/file_2",
		"rename /w/file1 -> /w/file_1",
		"delete /w/old",
	}, steps(plan))
	assert.Equal(t, 2, plan.Changes())

	rename := plan.Renames()[0]
	assert.Equal(t, "/w/file_1", rename.Target)
	assert.Equal(t, types.StepDirect, rename.Step)
	assert.Empty(t, rename.Deps)
}

func TestReconcileDeleteEverything(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a"), dir(2, "/w/b")}
	r := newReconciler(t, "/w/a", "/w/b/")

	plan, err := r.Reconcile(entries, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"delete /w/a", "delete /w/b"}, steps(plan))
}

func TestReconcileUnknownIndex(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a")}
	r := newReconciler(t, "/w/a")

	_, err := r.Reconcile(entries, edits(1, "/w/a", 99, "/w/x"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrReference))
	assert.Contains(t, err.Error(), "unknown index 99 at line 2")
	assert.Equal(t, 99, errors.GetErrorDetails(err)[errors.DetailIndex])
}

func TestReconcileDuplicateIndex(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a")}
	r := newReconciler(t, "/w/a")

	_, err := r.Reconcile(entries, edits(1, "/w/a", 1, "/w/b"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrReference))
	assert.Contains(t, err.Error(), "duplicate index 1 at line 2 (first used at line 1)")
}

func TestReconcileTwoLinesToSamePath(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a"), file(2, "/w/b")}
	r := newReconciler(t, "/w/a", "/w/b")

	_, err := r.Reconcile(entries, edits(1, "/w/x", 2, "/w/x"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCollision))
	assert.Equal(t, []int{1, 2}, errors.GetErrorDetails(err)[errors.DetailIDs])
}

func TestReconcileRenameOntoKeptPath(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a"), file(2, "/w/b")}
	r := newReconciler(t, "/w/a", "/w/b")

	_, err := r.Reconcile(entries, edits(1, "/w/b", 2, "/w/b"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCollision))
}

func TestReconcileTargetExistsOnDisk(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a")}
	r := newReconciler(t, "/w/a", "/other/taken")

	_, err := r.Reconcile(entries, edits(1, "/other/taken"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCollision))
	assert.Contains(t, err.Error(), "target already exists")
}

func TestReconcileTargetFreedByDelete(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a"), file(2, "/w/b")}
	r := newReconciler(t, "/w/a", "/w/b")

	plan, err := r.Reconcile(entries, edits(1, "/w/b"))
	require.NoError(t, err)

	assert.Equal(t, []string{"delete /w/b", "rename /w/a -> /w/b"}, steps(plan))
	assert.Equal(t, []int{0}, plan.Operations[1].Deps)
}

func TestReconcileChainRunsBackToFront(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a"), file(2, "/w/b")}
	r := newReconciler(t, "/w/a", "/w/b")

	plan, err := r.Reconcile(entries, edits(1, "/w/b", 2, "/w/c"))
	require.NoError(t, err)

	assert.Equal(t, []string{"rename /w/b -> /w/c", "rename /w/a -> /w/b"}, steps(plan))
	assert.Equal(t, []int{0}, plan.Operations[1].Deps)
}

func TestReconcileSwapUsesTemporaryName(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a"), file(2, "/w/b")}
	r := newReconciler(t, "/w/a", "/w/b")

	plan, err := r.Reconcile(entries, edits(1, "/w/b", 2, "/w/a"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"rename /w/a -> /w/.tmp-1",
		"rename /w/b -> /w/a",
		"rename /w/.tmp-1 -> /w/b",
	}, steps(plan))

	ops := plan.Operations
	assert.Equal(t, types.StepPark, ops[0].Step)
	assert.Equal(t, types.StepDirect, ops[1].Step)
	assert.Equal(t, types.StepUnpark, ops[2].Step)
	assert.Equal(t, []int{0}, ops[1].Deps)
	assert.Equal(t, []int{0, 1}, ops[2].Deps)

	assert.Empty(t, plan.Deletes(), "a swap never deletes")
	assert.Equal(t, 2, plan.Changes(), "the park step is not reported")
	assert.Equal(t, "/w/b", ops[2].Target)
	assert.Equal(t, 1, ops[2].Entry.ID)
}

func TestReconcileSwapWithoutTemporaryNames(t *testing.T) {
	fsys, _ := testutil.NewMemFS(t, "/w/a", "/w/b")
	r := reconcile.New(fsys, reconcile.Options{ResolveCycles: false})
	entries := []types.Entry{file(1, "/w/a"), file(2, "/w/b")}

	_, err := r.Reconcile(entries, edits(1, "/w/b", 2, "/w/a"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCycle))
	assert.Equal(t, []int{1, 2}, errors.GetErrorDetails(err)[errors.DetailIDs])
	assert.Contains(t, err.Error(), "rename cycle between indexes 1 and 2 (temporary names are disabled)")
}

func TestReconcileRotation(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a"), file(2, "/w/b"), file(3, "/w/c")}
	r := newReconciler(t, "/w/a", "/w/b", "/w/c")

	plan, err := r.Reconcile(entries, edits(1, "/w/b", 2, "/w/c", 3, "/w/a"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"rename /w/a -> /w/.tmp-1",
		"rename /w/c -> /w/a",
		"rename /w/b -> /w/c",
		"rename /w/.tmp-1 -> /w/b",
	}, steps(plan))
}

func TestReconcileDefaultTempNameUsesPrefix(t *testing.T) {
	fsys, _ := testutil.NewMemFS(t, "/w/a", "/w/b")
	r := reconcile.New(fsys, reconcile.Options{ResolveCycles: true, TempPrefix: ".swap-"})
	entries := []types.Entry{file(1, "/w/a"), file(2, "/w/b")}

	plan, err := r.Reconcile(entries, edits(1, "/w/b", 2, "/w/a"))
	require.NoError(t, err)

	park := plan.Operations[0]
	assert.Equal(t, "/w", filepath.Dir(park.To))
	assert.Regexp(t, `^\.swap-[0-9a-f-]{36}$`, filepath.Base(park.To))
}

func TestReconcileTempNameSkipsTakenPaths(t *testing.T) {
	fsys, _ := testutil.NewMemFS(t, "/w/a", "/w/b", "/w/.tmp-1")
	r := reconcile.New(fsys, reconcile.Options{ResolveCycles: true, TempName: countingTempNames()})
	entries := []types.Entry{file(1, "/w/a"), file(2, "/w/b")}

	plan, err := r.Reconcile(entries, edits(1, "/w/b", 2, "/w/a"))
	require.NoError(t, err)
	assert.Equal(t, "/w/.tmp-2", plan.Operations[0].To)
}

func TestReconcileTempNameExhausted(t *testing.T) {
	fsys, _ := testutil.NewMemFS(t, "/w/a", "/w/b", "/w/.tmp")
	r := reconcile.New(fsys, reconcile.Options{
		ResolveCycles: true,
		TempName:      func(dir string) string { return filepath.Join(dir, ".tmp") },
	})
	entries := []types.Entry{file(1, "/w/a"), file(2, "/w/b")}

	_, err := r.Reconcile(entries, edits(1, "/w/b", 2, "/w/a"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
}

func TestReconcileDirectoryDeletedAfterItsContent(t *testing.T) {
	entries := []types.Entry{dir(1, "/w/d"), file(2, "/w/d/keepme"), file(3, "/w/d/junk")}
	r := newReconciler(t, "/w/d/", "/w/d/keepme", "/w/d/junk")

	plan, err := r.Reconcile(entries, edits(2, "/w/keepme"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"rename /w/d/keepme -> /w/keepme",
		"delete /w/d/junk",
		"delete /w/d",
	}, steps(plan))
	assert.Equal(t, []int{0, 1}, plan.Operations[2].Deps)
}

func TestReconcileKeptEntryInsideDeletedDirectory(t *testing.T) {
	entries := []types.Entry{dir(1, "/w/d"), file(2, "/w/d/f")}
	r := newReconciler(t, "/w/d/", "/w/d/f")

	_, err := r.Reconcile(entries, edits(2, "/w/d/f"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCollision))
	assert.Contains(t, err.Error(), "is kept but")
}

func TestReconcileRenameIntoDeletedDirectory(t *testing.T) {
	entries := []types.Entry{dir(1, "/w/d"), file(2, "/w/f")}
	r := newReconciler(t, "/w/d/", "/w/f")

	_, err := r.Reconcile(entries, edits(2, "/w/d/f"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCollision))
	assert.Contains(t, err.Error(), "is deleted")
}

func TestReconcileRenameOntoDeletedDirectoryPath(t *testing.T) {
	entries := []types.Entry{dir(1, "/w/a"), dir(2, "/w/b"), file(3, "/w/f")}
	r := newReconciler(t, "/w/a/", "/w/a/old", "/w/b/", "/w/f")

	plan, err := r.Reconcile(entries, edits(2, "/w/a", 3, "/w/a/x"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"delete /w/a",
		"rename /w/b -> /w/a",
		"rename /w/f -> /w/a/x",
	}, steps(plan))
}

func TestReconcileDirectoryIntoItself(t *testing.T) {
	entries := []types.Entry{dir(1, "/w/d")}
	r := newReconciler(t, "/w/d/")

	_, err := r.Reconcile(entries, edits(1, "/w/d/sub"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCollision))
	assert.Contains(t, err.Error(), "inside itself")
}

func TestReconcileTargetParentIsAFile(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a"), file(2, "/w/plain")}
	r := newReconciler(t, "/w/a", "/w/plain")

	_, err := r.Reconcile(entries, edits(1, "/w/plain/a", 2, "/w/plain"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCollision))
	assert.Contains(t, err.Error(), "would be a file")
}

func TestReconcileTargetParentIsAnUnlistedFile(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a")}
	r := newReconciler(t, "/w/a", "/elsewhere/file")

	_, err := r.Reconcile(entries, edits(1, "/elsewhere/file/a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestReconcileMoveIntoNewDirectory(t *testing.T) {
	entries := []types.Entry{file(1, "/w/a")}
	r := newReconciler(t, "/w/a")

	plan, err := r.Reconcile(entries, edits(1, "/w/new/deeper/a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"rename /w/a -> /w/new/deeper/a"}, steps(plan))
}

func TestReconcileMoveIntoRenamedDirectory(t *testing.T) {
	entries := []types.Entry{file(1, "/w/f"), dir(2, "/w/g")}
	r := newReconciler(t, "/w/f", "/w/g/")

	plan, err := r.Reconcile(entries, edits(1, "/w/h/f", 2, "/w/h"))
	require.NoError(t, err)

	assert.Equal(t, []string{"rename /w/g -> /w/h", "rename /w/f -> /w/h/f"}, steps(plan))
	assert.Equal(t, []int{0}, plan.Operations[1].Deps)
}

func TestReconcileKeptChildFollowsRenamedParent(t *testing.T) {
	entries := []types.Entry{dir(1, "/w/d"), file(2, "/w/d/x")}
	r := newReconciler(t, "/w/d/", "/w/d/x")

	plan, err := r.Reconcile(entries, edits(1, "/w/e", 2, "/w/d/x"))
	require.NoError(t, err)

	assert.Equal(t, []string{"keep /w/d/x", "rename /w/d -> /w/e"}, steps(plan))
	assert.Equal(t, "/w/e/x", plan.Keeps()[0].To)
}

func TestReconcileChildEditedAlongWithParent(t *testing.T) {
	entries := []types.Entry{dir(1, "/w/d"), file(2, "/w/d/x")}
	r := newReconciler(t, "/w/d/", "/w/d/x")

	plan, err := r.Reconcile(entries, edits(1, "/w/e", 2, "/w/e/x"))
	require.NoError(t, err)

	assert.Equal(t, []string{"keep /w/d/x", "rename /w/d -> /w/e"}, steps(plan))
}

func TestReconcileChildRenamedInsideMovedParent(t *testing.T) {
	entries := []types.Entry{dir(1, "/w/d"), file(2, "/w/d/x")}
	r := newReconciler(t, "/w/d/", "/w/d/x")

	plan, err := r.Reconcile(entries, edits(1, "/w/e", 2, "/w/e/y"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"rename /w/d/x -> /w/.tmp-1",
		"rename /w/d -> /w/e",
		"rename /w/.tmp-1 -> /w/e/y",
	}, steps(plan))
}

func TestReconcileChildKeepsOldParentPath(t *testing.T) {
	entries := []types.Entry{dir(1, "/w/d"), file(2, "/w/d/x")}
	r := newReconciler(t, "/w/d/", "/w/d/x")

	plan, err := r.Reconcile(entries, edits(1, "/w/e", 2, "/w/d/y"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"rename /w/d/x -> /w/.tmp-1",
		"rename /w/d -> /w/e",
		"rename /w/.tmp-1 -> /w/d/y",
	}, steps(plan))
}

func TestReconcileIsReadOnly(t *testing.T) {
	mockFS := new(testutil.MockFS)
	mockFS.On("Lstat", "/w/b").Return(nil, errNotExist())
	mockFS.On("Lstat", "/w").Return(dirInfo{}, nil)

	r := reconcile.New(mockFS, reconcile.Options{ResolveCycles: true})
	_, err := r.Reconcile([]types.Entry{file(1, "/w/a")}, edits(1, "/w/b"))
	require.NoError(t, err)

	mockFS.AssertNotCalled(t, "Rename", "/w/a", "/w/b")
	mockFS.AssertExpectations(t)
}

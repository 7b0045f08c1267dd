package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "directory", KindDirectory.String())
}

func TestEntryCleanPath(t *testing.T) {
	e := Entry{ID: 1, Path: "./a/../b/", Kind: KindDirectory}
	assert.Equal(t, "b", e.CleanPath())
	assert.True(t, e.IsDir())
}

func TestOperationVisible(t *testing.T) {
	entry := Entry{ID: 1, Path: "./a"}

	assert.False(t, Operation{Type: OpKeep, Entry: entry}.Visible())
	assert.True(t, Operation{Type: OpRename, Entry: entry}.Visible())
	assert.True(t, Operation{Type: OpDelete, Entry: entry}.Visible())
	assert.False(t, Operation{Type: OpRename, Entry: entry, Step: StepPark}.Visible())
	assert.True(t, Operation{Type: OpRename, Entry: entry, Step: StepUnpark}.Visible())
}

func TestOperationDescription(t *testing.T) {
	file := Entry{ID: 1, Path: "./a"}
	dir := Entry{ID: 2, Path: "./old", Kind: KindDirectory}

	assert.Equal(t, `Move file "./a" to "b"`, Operation{Type: OpRename, Entry: file, Target: "b"}.Description())
	assert.Equal(t, `Remove directory "./old"`, Operation{Type: OpDelete, Entry: dir}.Description())
	assert.Equal(t, `Keep file "./a"`, Operation{Type: OpKeep, Entry: file}.Description())
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "direct", StepDirect.String())
	assert.Equal(t, "park", StepPark.String())
	assert.Equal(t, "unpark", StepUnpark.String())
}

func TestPlanFilters(t *testing.T) {
	a := Entry{ID: 1, Path: "a"}
	b := Entry{ID: 2, Path: "b"}
	c := Entry{ID: 3, Path: "c"}

	plan := &Plan{Operations: []Operation{
		{Type: OpKeep, Entry: a},
		{Type: OpRename, Entry: b, Step: StepPark},
		{Type: OpDelete, Entry: c},
		{Type: OpRename, Entry: b, Step: StepUnpark},
	}}

	assert.Equal(t, 4, plan.Len())
	assert.Len(t, plan.Keeps(), 1)
	assert.Len(t, plan.Renames(), 2)
	assert.Len(t, plan.Deletes(), 1)
	assert.Equal(t, 2, plan.Changes())
}

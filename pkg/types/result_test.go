package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultFailures(t *testing.T) {
	boom := errors.New("boom")
	r := &Result{Outcomes: []Outcome{
		{Status: StatusKept},
		{Status: StatusRenamed},
		{Status: StatusFailed, Err: boom},
		{Status: StatusSkipped, Err: boom},
		{Status: StatusDeleted},
	}}

	assert.True(t, r.HasFailures())
	assert.Len(t, r.Failures(), 2)
	assert.Equal(t, 1, r.Count(StatusKept))
	assert.Equal(t, 1, r.Count(StatusSkipped))
	assert.False(t, (&Result{}).HasFailures())
}

func TestResultEntryCounts(t *testing.T) {
	a := Entry{ID: 1}
	b := Entry{ID: 2}
	c := Entry{ID: 3}
	d := Entry{ID: 4}

	r := &Result{Outcomes: []Outcome{
		{Operation: Operation{Type: OpKeep, Entry: d}, Status: StatusKept},
		{Operation: Operation{Type: OpRename, Entry: a, Step: StepPark}, Status: StatusRenamed},
		{Operation: Operation{Type: OpRename, Entry: b}, Status: StatusRenamed},
		{Operation: Operation{Type: OpRename, Entry: a, Step: StepUnpark}, Status: StatusFailed},
		{Operation: Operation{Type: OpDelete, Entry: c}, Status: StatusDeleted},
	}}

	failed, total := r.EntryCounts()
	assert.Equal(t, 1, failed)
	assert.Equal(t, 3, total)
}

package types

import (
	"time"
)

// Status is the outcome of a single operation
type Status string

const (
	StatusKept    Status = "kept"
	StatusRenamed Status = "renamed"
	StatusDeleted Status = "deleted"
	StatusFailed  Status = "failed"
	// StatusSkipped means an operation it depends on did not succeed
	StatusSkipped Status = "skipped"
)

// Outcome records what happened to one operation
type Outcome struct {
	Operation Operation
	Status    Status
	Err       error
	Duration  time.Duration
}

// Succeeded reports whether the operation did what it was meant to
func (o Outcome) Succeeded() bool {
	return o.Status != StatusFailed && o.Status != StatusSkipped
}

// Result holds the outcome of every operation of a plan, in plan order
type Result struct {
	Outcomes []Outcome
}

// Failures returns the outcomes that failed or were skipped
func (r *Result) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

// HasFailures reports whether any operation did not succeed
func (r *Result) HasFailures() bool {
	return len(r.Failures()) > 0
}

// Count returns how many outcomes have the given status
func (r *Result) Count(status Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// EntryCounts counts the entries the plan changed and how many of them did
// not end up where they were meant to. Both halves of a split rename count
// as one entry.
func (r *Result) EntryCounts() (failed, total int) {
	ok := make(map[int]bool)
	for _, o := range r.Outcomes {
		if o.Operation.Type == OpKeep {
			continue
		}
		id := o.Operation.Entry.ID
		prev, seen := ok[id]
		ok[id] = (!seen || prev) && o.Succeeded()
	}

	for _, succeeded := range ok {
		if !succeeded {
			failed++
		}
	}
	return failed, len(ok)
}

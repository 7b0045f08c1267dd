package types

import (
	"fmt"
)

// OperationType defines the type of filesystem operation
type OperationType string

const (
	// OpKeep leaves the entry where it is
	OpKeep OperationType = "keep"

	// OpRename moves the entry to a new path
	OpRename OperationType = "rename"

	// OpDelete removes the entry
	OpDelete OperationType = "delete"
)

// Step tells whether a rename goes straight to its target or hops through a
// temporary name to break a rename cycle
type Step int

const (
	// StepDirect is a single rename from source to target
	StepDirect Step = iota
	// StepPark moves the source to a temporary name
	StepPark
	// StepUnpark moves the temporary name to the final target
	StepUnpark
)

// String returns a short name for logs
func (s Step) String() string {
	switch s {
	case StepPark:
		return "park"
	case StepUnpark:
		return "unpark"
	default:
		return "direct"
	}
}

// Operation is a single filesystem action derived from the edited buffer
type Operation struct {
	// Type is the type of operation
	Type OperationType

	// Entry is the snapshot entry this operation belongs to
	Entry Entry

	// From is the path the operation acts on
	From string

	// To is the path a rename writes, cleaned
	To string

	// Target is the destination exactly as the user typed it
	Target string

	// Step is set for renames that were split to break a cycle
	Step Step

	// Deps are the plan indices of operations that must succeed first
	Deps []int
}

// Visible reports whether the operation is something the user asked for,
// as opposed to the first half of a split rename
func (op Operation) Visible() bool {
	return op.Type != OpKeep && op.Step != StepPark
}

// Description is a human-readable description used in logs and dry runs
func (op Operation) Description() string {
	switch op.Type {
	case OpRename:
		return fmt.Sprintf("Move %s %q to %q", op.Entry.Kind, op.Entry.Path, op.Target)
	case OpDelete:
		return fmt.Sprintf("Remove %s %q", op.Entry.Kind, op.Entry.Path)
	default:
		return fmt.Sprintf("Keep %s %q", op.Entry.Kind, op.Entry.Path)
	}
}

// Plan is the ordered sequence of operations to apply
type Plan struct {
	Operations []Operation
}

// Len returns the number of operations, split renames counted twice
func (p *Plan) Len() int {
	return len(p.Operations)
}

// Keeps returns the keep operations in plan order
func (p *Plan) Keeps() []Operation {
	return p.filter(func(op Operation) bool { return op.Type == OpKeep })
}

// Renames returns the rename operations in plan order
func (p *Plan) Renames() []Operation {
	return p.filter(func(op Operation) bool { return op.Type == OpRename })
}

// Deletes returns the delete operations in plan order
func (p *Plan) Deletes() []Operation {
	return p.filter(func(op Operation) bool { return op.Type == OpDelete })
}

// Changes counts the operations the user will see happen
func (p *Plan) Changes() int {
	n := 0
	for _, op := range p.Operations {
		if op.Visible() {
			n++
		}
	}
	return n
}

func (p *Plan) filter(keep func(Operation) bool) []Operation {
	var out []Operation
	for _, op := range p.Operations {
		if keep(op) {
			out = append(out, op)
		}
	}
	return out
}

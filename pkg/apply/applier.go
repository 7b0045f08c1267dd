// Package apply executes a reconciled plan against the filesystem, one
// operation at a time, reporting each outcome.
package apply

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/rendir/pkg/errors"
	"github.com/arthur-debert/rendir/pkg/logging"
	"github.com/arthur-debert/rendir/pkg/types"
)

// DefaultDirMode is used for directories created to hold a rename target
const DefaultDirMode fs.FileMode = 0755

// Options configures an Applier
type Options struct {
	// DirMode is the permission of intermediate directories
	DirMode fs.FileMode

	// Observer, when set, sees every outcome in plan order
	Observer func(types.Outcome)

	// Runner executes each step; defaults to a synthfs pipeline per step
	Runner Runner
}

// Applier executes plans
type Applier struct {
	fs     types.FS
	opts   Options
	logger zerolog.Logger
}

// New creates an Applier working through fs
func New(fsys types.FS, opts Options) *Applier {
	if opts.DirMode == 0 {
		opts.DirMode = DefaultDirMode
	}
	if opts.Runner == nil {
		opts.Runner = NewSynthfsRunner()
	}
	return &Applier{
		fs:     fsys,
		opts:   opts,
		logger: logging.GetLogger("apply"),
	}
}

// Apply runs the plan in order. A failed operation does not stop the run:
// operations that depend on it are skipped, everything else goes ahead.
func (a *Applier) Apply(ctx context.Context, plan *types.Plan) *types.Result {
	done := logging.LogOperationStart(a.logger, "apply")
	defer done()

	result := &types.Result{Outcomes: make([]types.Outcome, 0, plan.Len())}

	for i, op := range plan.Operations {
		start := time.Now()
		outcome := a.applyOne(ctx, i, op, result.Outcomes)
		outcome.Duration = time.Since(start)

		a.log(outcome)
		result.Outcomes = append(result.Outcomes, outcome)
		if a.opts.Observer != nil {
			a.opts.Observer(outcome)
		}
	}

	return result
}

func (a *Applier) applyOne(ctx context.Context, index int, op types.Operation, previous []types.Outcome) types.Outcome {
	outcome := types.Outcome{Operation: op}

	for _, dep := range op.Deps {
		if dep < len(previous) && !previous[dep].Succeeded() {
			blocker := previous[dep].Operation
			outcome.Status = types.StatusSkipped
			outcome.Err = errors.Newf(errors.ErrIO, "skipped %s: %s did not succeed", describe(op), describe(blocker)).
				WithDetail(errors.DetailPath, op.From)
			return outcome
		}
	}

	if err := ctx.Err(); err != nil {
		outcome.Status = types.StatusSkipped
		outcome.Err = errors.Wrapf(err, errors.ErrIO, "skipped %s: run interrupted", describe(op))
		return outcome
	}

	var step Step
	switch op.Type {
	case types.OpKeep:
		outcome.Status = types.StatusKept
		return outcome
	case types.OpRename:
		step = func(_ context.Context, w Mover) error { return a.rename(a.mover(w), op) }
	case types.OpDelete:
		step = func(_ context.Context, w Mover) error { return a.delete(a.mover(w), op) }
	default:
		outcome.Status = types.StatusFailed
		outcome.Err = errors.Newf(errors.ErrInternal, "unknown operation type %q", op.Type)
		return outcome
	}

	id := fmt.Sprintf("%s_%d_%d_%s", op.Type, index, op.Entry.ID, op.Step)
	if err := a.opts.Runner.Run(ctx, id, step); err != nil {
		outcome.Status = types.StatusFailed
		outcome.Err = err
		return outcome
	}

	if op.Type == types.OpRename {
		outcome.Status = types.StatusRenamed
	} else {
		outcome.Status = types.StatusDeleted
	}
	return outcome
}

func (a *Applier) mover(w Mover) Mover {
	if w == nil {
		return a.fs
	}
	return w
}

func (a *Applier) rename(w Mover, op types.Operation) error {
	// The target was free when the plan was made; someone may have taken it
	// since.
	if existing, err := a.fs.Lstat(op.To); err == nil {
		source, serr := a.fs.Lstat(op.From)
		if serr != nil || !os.SameFile(existing, source) {
			return ioError(nil, "cannot move %q to %q: target already exists", op, op.From, op.To)
		}
	} else if !os.IsNotExist(err) {
		return ioError(err, "cannot check %q", op, op.To)
	}

	parent := filepath.Dir(op.To)
	if err := w.MkdirAll(parent, a.opts.DirMode); err != nil {
		return ioError(err, "cannot create directory %q", op, parent)
	}

	if err := w.Rename(op.From, op.To); err != nil {
		return ioError(err, "cannot move %q to %q", op, op.From, op.To)
	}
	return nil
}

func (a *Applier) delete(w Mover, op types.Operation) error {
	if op.Entry.IsDir() {
		// RemoveAll is quiet about missing paths; a directory that vanished
		// since the scan is still worth reporting.
		if _, err := a.fs.Lstat(op.From); err != nil {
			return ioError(err, "cannot remove %q", op, op.From)
		}
		if err := w.RemoveAll(op.From); err != nil {
			return ioError(err, "cannot remove %q", op, op.From)
		}
		return nil
	}

	if err := w.Remove(op.From); err != nil {
		return ioError(err, "cannot remove %q", op, op.From)
	}
	return nil
}

func ioError(err error, format string, op types.Operation, args ...interface{}) error {
	var e *errors.RendirError
	if err == nil {
		e = errors.Newf(errors.ErrIO, format, args...)
	} else {
		e = errors.Wrapf(err, errors.ErrIO, format, args...)
	}
	e = e.WithDetail(errors.DetailPath, op.From)
	if op.To != "" {
		e = e.WithDetail(errors.DetailTarget, op.To)
	}
	return e
}

func describe(op types.Operation) string {
	if op.Step == types.StepPark {
		return fmt.Sprintf("moving %q out of the way", op.From)
	}
	return fmt.Sprintf("%s of %q", op.Type, op.Entry.Path)
}

func (a *Applier) log(o types.Outcome) {
	// failures reach the user through the reporter; the log only keeps a record
	event := a.logger.Debug()
	if !o.Succeeded() {
		event = a.logger.Info().Err(o.Err)
	}
	event.
		Str("type", string(o.Operation.Type)).
		Str("step", o.Operation.Step.String()).
		Str("from", o.Operation.From).
		Str("to", o.Operation.To).
		Str("status", string(o.Status)).
		Dur("duration", o.Duration).
		Msg("Operation finished")
}

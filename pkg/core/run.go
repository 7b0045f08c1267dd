package core

import (
	"context"

	"github.com/arthur-debert/rendir/pkg/apply"
	"github.com/arthur-debert/rendir/pkg/config"
	"github.com/arthur-debert/rendir/pkg/editor"
	"github.com/arthur-debert/rendir/pkg/errors"
	"github.com/arthur-debert/rendir/pkg/filesystem"
	"github.com/arthur-debert/rendir/pkg/linecodec"
	"github.com/arthur-debert/rendir/pkg/logging"
	"github.com/arthur-debert/rendir/pkg/reconcile"
	"github.com/arthur-debert/rendir/pkg/snapshot"
	"github.com/arthur-debert/rendir/pkg/types"
)

// Editor lets the user change the buffer
type Editor interface {
	Edit(ctx context.Context, content []byte) ([]byte, error)
}

// Reporter is told about the run as it progresses
type Reporter interface {
	Observe(types.Outcome)
	Plan(*types.Plan)
	Summary(*types.Result)
}

// Options configures a run
type Options struct {
	// Roots are the directories to list, "." when empty
	Roots []string

	// Config is the effective configuration
	Config *config.Config

	// FS defaults to the OS filesystem
	FS types.FS

	Editor   Editor
	Reporter Reporter

	// DryRun stops after planning and reports the plan
	DryRun bool

	// Runner overrides how the applier executes each step
	Runner apply.Runner
}

// RunResult is what a run produced
type RunResult struct {
	Entries []types.Entry
	Plan    *types.Plan
	Result  *types.Result
	DryRun  bool
}

// Err returns an IO error when any operation did not succeed
func (r *RunResult) Err() error {
	if r == nil || r.Result == nil || !r.Result.HasFailures() {
		return nil
	}
	failed, total := r.Result.EntryCounts()
	return errors.Newf(errors.ErrIO, "%d of %d operations failed", failed, total).
		WithDetail("failed", failed).
		WithDetail("total", total)
}

// Run executes a full session. A returned error means nothing was changed;
// failures while applying are reported through RunResult.Err.
func Run(ctx context.Context, opts Options) (*RunResult, error) {
	logger := logging.GetLogger("core")
	done := logging.LogOperationStart(logger, "run")
	defer done()

	if opts.Config == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no configuration given")
	}
	if opts.Editor == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no editor given")
	}
	if opts.FS == nil {
		opts.FS = filesystem.NewOS()
	}
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	cfg := opts.Config

	entries, err := snapshot.New(opts.FS, snapshot.Options{Depth: cfg.Scan.Depth}).Scan(opts.Roots)
	if err != nil {
		return nil, err
	}
	result := &RunResult{Entries: entries, DryRun: opts.DryRun}
	if len(entries) == 0 {
		logger.Info().Msg("nothing to rename")
		result.Plan = &types.Plan{}
		result.Result = &types.Result{}
		return result, nil
	}

	edited, err := opts.Editor.Edit(ctx, linecodec.EncodeAll(entries))
	if err != nil {
		return nil, err
	}

	lines, err := linecodec.Decode(edited)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Strs("roots", opts.Roots).
		Int("entries", len(entries)).
		Int("lines", len(lines)).
		Msg("buffer decoded")
	for _, l := range lines {
		logger.Trace().Int("line", l.Line).Str("text", linecodec.Describe(l)).Msg("edited line")
	}

	plan, err := reconcile.New(opts.FS, reconcile.Options{
		ResolveCycles: cfg.Plan.ResolveCycles,
		TempPrefix:    cfg.Plan.TempPrefix,
	}).Reconcile(entries, lines)
	if err != nil {
		return nil, err
	}
	result.Plan = plan

	if opts.DryRun {
		opts.Reporter.Plan(plan)
		return result, nil
	}

	applier := apply.New(opts.FS, apply.Options{
		DirMode:  cfg.Apply.DirMode.Perm(),
		Observer: opts.Reporter.Observe,
		Runner:   opts.Runner,
	})
	result.Result = applier.Apply(ctx, plan)
	opts.Reporter.Summary(result.Result)

	if failed, total := result.Result.EntryCounts(); failed > 0 {
		logger.Info().Int("failed", failed).Int("total", total).Msg("run finished with failures")
	}
	return result, nil
}

// EditorOptions builds the editor settings a configuration asks for,
// resolving the command against getenv
func EditorOptions(cfg *config.Config, getenv func(string) string) editor.Options {
	return editor.Options{
		Command: cfg.EditorCommand(getenv),
		TempDir: cfg.Editor.TempDir,
		Pattern: cfg.Editor.TempPattern,
	}
}

type nopReporter struct{}

func (nopReporter) Observe(types.Outcome) {}
func (nopReporter) Plan(*types.Plan)      {}
func (nopReporter) Summary(*types.Result) {}

package apply

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
)

// Mover is the part of a filesystem a step writes through
type Mover interface {
	MkdirAll(path string, perm fs.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error
	RemoveAll(path string) error
}

// Step performs one operation. A nil Mover means the Applier's own
// filesystem.
type Step func(ctx context.Context, w Mover) error

// Runner executes one step of a plan
type Runner interface {
	Run(ctx context.Context, id string, step Step) error
}

// synthfsRunner runs every step as its own synthfs pipeline, so one failure
// never hides the outcome of another and nothing is rolled back
type synthfsRunner struct {
	sfs        *synthfs.SynthFS
	filesystem filesystem.FullFileSystem
}

// NewSynthfsRunner returns the Runner used for real runs. Steps write
// through the filesystem the pipeline hands them.
func NewSynthfsRunner() Runner {
	osfs := filesystem.NewOSFileSystem("/")
	return &synthfsRunner{
		sfs:        synthfs.New(),
		filesystem: synthfs.NewPathAwareFileSystem(osfs, "/").WithAbsolutePaths(),
	}
}

func (r *synthfsRunner) Run(ctx context.Context, id string, step Step) error {
	var stepErr error
	op := r.sfs.CustomOperationWithID(id, func(ctx context.Context, fsys filesystem.FileSystem) error {
		stepErr = step(ctx, absMover{fsys: fsys})
		return stepErr
	})

	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = false

	_, err := synthfs.RunWithOptions(ctx, r.filesystem, options, op)
	if stepErr != nil {
		return stepErr
	}
	return err
}

// absMover resolves plan paths against the working directory before handing
// them to synthfs, which is rooted at /
type absMover struct {
	fsys filesystem.FileSystem
}

func (m absMover) MkdirAll(path string, perm fs.FileMode) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !utf8.ValidString(abs) {
		return os.MkdirAll(abs, perm)
	}
	return m.fsys.MkdirAll(abs, perm)
}

func (m absMover) Rename(oldpath, newpath string) error {
	oldAbs, err := filepath.Abs(oldpath)
	if err != nil {
		return err
	}
	newAbs, err := filepath.Abs(newpath)
	if err != nil {
		return err
	}
	// synthfs only accepts valid UTF-8 paths
	if !utf8.ValidString(oldAbs) || !utf8.ValidString(newAbs) {
		return os.Rename(oldAbs, newAbs)
	}
	return m.fsys.Rename(oldAbs, newAbs)
}

func (m absMover) Remove(name string) error {
	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	if !utf8.ValidString(abs) {
		return os.Remove(abs)
	}
	return m.fsys.Remove(abs)
}

func (m absMover) RemoveAll(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !utf8.ValidString(abs) {
		return os.RemoveAll(abs)
	}
	return m.fsys.RemoveAll(abs)
}

// RunnerFunc adapts a plain function to a Runner
type RunnerFunc func(ctx context.Context, id string, step Step) error

func (f RunnerFunc) Run(ctx context.Context, id string, step Step) error {
	return f(ctx, id, step)
}

// Direct runs steps in place through the Applier's filesystem, without a
// pipeline
var Direct Runner = RunnerFunc(func(ctx context.Context, _ string, step Step) error {
	return step(ctx, nil)
})

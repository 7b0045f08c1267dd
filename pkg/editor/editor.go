// Package editor hands a buffer to the user's text editor through a scoped
// temporary file and returns what the user saved.
package editor

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/rendir/pkg/errors"
	"github.com/arthur-debert/rendir/pkg/logging"
)

// DefaultPattern names the temporary buffer file
const DefaultPattern = "rendir-*.txt"

// Options configures an editing session
type Options struct {
	// Command is the editor command line; the buffer path is appended as
	// the last argument. "code --wait" runs code with --wait.
	Command string

	// TempDir holds the buffer file; empty means the system temp dir
	TempDir string

	// Pattern is the afero.TempFile pattern for the buffer name
	Pattern string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Editor runs editing sessions
type Editor struct {
	fs     afero.Fs
	opts   Options
	logger zerolog.Logger
}

// New creates an Editor keeping its temporary files on fs
func New(fsys afero.Fs, opts Options) *Editor {
	if opts.Pattern == "" {
		opts.Pattern = DefaultPattern
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Editor{
		fs:     fsys,
		opts:   opts,
		logger: logging.GetLogger("editor"),
	}
}

// Edit writes content to a temporary file, waits for the editor to exit and
// returns the file's new content. The file is removed in every case.
func (e *Editor) Edit(ctx context.Context, content []byte) ([]byte, error) {
	args := strings.Fields(e.opts.Command)
	if len(args) == 0 {
		return nil, errors.New(errors.ErrEditor, "no editor configured")
	}
	name := args[0]

	path, err := e.writeTemp(content)
	if err != nil {
		return nil, err
	}
	defer e.removeTemp(path)

	cmd := exec.CommandContext(ctx, name, append(args[1:], path)...)
	cmd.Stdin = e.opts.Stdin
	cmd.Stdout = e.opts.Stdout
	cmd.Stderr = e.opts.Stderr

	e.logger.Debug().Str("editor", e.opts.Command).Str("file", path).Msg("Opening editor")

	if err := cmd.Run(); err != nil {
		return nil, editorError(name, err)
	}

	edited, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTempFile, "failed to read temporary file %s", path).
			WithDetail(errors.DetailPath, path)
	}
	return edited, nil
}

func (e *Editor) writeTemp(content []byte) (string, error) {
	f, err := afero.TempFile(e.fs, e.opts.TempDir, e.opts.Pattern)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTempFile, "failed to create temporary file")
	}
	path := f.Name()

	_, werr := f.Write(content)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		e.removeTemp(path)
		return "", errors.Wrapf(werr, errors.ErrTempFile, "failed to write temporary file %s", path).
			WithDetail(errors.DetailPath, path)
	}
	return path, nil
}

func (e *Editor) removeTemp(path string) {
	if err := e.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		e.logger.Warn().Err(err).Str("file", path).Msg("Failed to remove temporary file")
	}
}

func editorError(name string, err error) error {
	var exitErr *exec.ExitError
	if !stderrors.As(err, &exitErr) {
		return errors.Wrapf(err, errors.ErrEditor, "failed to open editor %q", name)
	}
	// ExitCode is -1 when the process was killed by a signal
	if code := exitErr.ExitCode(); code >= 0 {
		return errors.Newf(errors.ErrEditor, "editor %q returned error code %d", name, code).
			WithDetail("exit_code", code)
	}
	return errors.Newf(errors.ErrEditor, "editor %q returned an error", name)
}

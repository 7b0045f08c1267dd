package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/arthur-debert/rendir/pkg/errors"
	"github.com/arthur-debert/rendir/pkg/logging"
	"github.com/arthur-debert/rendir/pkg/output/styles"
	"github.com/arthur-debert/rendir/pkg/types"
)

// Options configures a Reporter
type Options struct {
	// Verbose enables one line per completed operation
	Verbose bool
	// Format is FormatTerminal for styled output, anything else prints plain text
	Format Format
}

// Reporter prints operation lines, dry-run plans and diagnostics
type Reporter struct {
	out     io.Writer
	errOut  io.Writer
	verbose bool
	styled  bool
}

// NewReporter creates a reporter writing results to out and diagnostics to errOut
func NewReporter(out, errOut io.Writer, opts Options) *Reporter {
	return &Reporter{
		out:     out,
		errOut:  errOut,
		verbose: opts.Verbose,
		styled:  opts.Format == FormatTerminal,
	}
}

func (r *Reporter) style(name, s string) string {
	if !r.styled {
		return s
	}
	return styles.GetStyle(name).Render(s)
}

func (r *Reporter) path(p string) string {
	return r.style("FilePath", strconv.Quote(p))
}

func (r *Reporter) indent(s string) string {
	if !r.styled {
		return "  " + s
	}
	return styles.GetStyle("Indent").Render(s)
}

// Observe prints the verbose line for a completed operation. It is meant to
// be installed as the applier's observer.
func (r *Reporter) Observe(o types.Outcome) {
	if !r.verbose || !o.Operation.Visible() {
		return
	}

	entry := o.Operation.Entry
	switch o.Status {
	case types.StatusRenamed:
		_, _ = fmt.Fprintf(r.out, "%s %s %s to %s\n",
			r.style("Success", "Moved"), entry.Kind, r.path(entry.Path), r.path(o.Operation.Target))
	case types.StatusDeleted:
		_, _ = fmt.Fprintf(r.out, "%s %s %s\n", r.style("Warning", "Removed"), entry.Kind, r.path(entry.Path))
	}
}

// Plan prints what a run would do without doing it
func (r *Reporter) Plan(plan *types.Plan) {
	changes := plan.Changes()
	if changes == 0 {
		_, _ = fmt.Fprintln(r.out, r.style("Muted", "Nothing to do"))
		return
	}

	_, _ = fmt.Fprintln(r.out, r.style("DryRunBanner", "Dry run, no changes made:"))
	for _, op := range plan.Operations {
		if !op.Visible() {
			continue
		}
		_, _ = fmt.Fprintln(r.out, r.indent(op.Description()))
	}

	noun := "changes"
	if changes == 1 {
		noun = "change"
	}
	_, _ = fmt.Fprintln(r.out, r.style("Header", fmt.Sprintf("%d %s planned", changes, noun)))
}

// Summary prints a diagnostic per operation that did not succeed and the
// failure count. It prints nothing for a clean run.
func (r *Reporter) Summary(result *types.Result) {
	failures := result.Failures()
	if len(failures) == 0 {
		return
	}

	for _, o := range failures {
		r.Error(o.Err)
	}

	failed, total := result.EntryCounts()
	_, _ = fmt.Fprintln(r.errOut, r.style("Summary", fmt.Sprintf("%d of %d operations failed", failed, total)))
}

// Unchanged notes that a run stopped before touching the filesystem
func (r *Reporter) Unchanged() {
	_, _ = fmt.Fprintln(r.errOut, r.style("Muted", "No changes made"))
}

// Error prints an error as "Error: <message>"
func (r *Reporter) Error(err error) {
	if err == nil {
		return
	}
	logger := logging.GetLogger("output")
	logger.Debug().Err(err).Msg("reporting error")
	_, _ = fmt.Fprintf(r.errOut, "%s %s\n", r.style("Error", "Error:"), errors.Message(err))
}

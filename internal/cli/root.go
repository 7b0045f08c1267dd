// Package cli wires the rendir command line to the core pipeline.
package cli

import (
	"context"
	"embed"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/rendir/internal/version"
	"github.com/arthur-debert/rendir/pkg/cobrax/topics"
	"github.com/arthur-debert/rendir/pkg/config"
	"github.com/arthur-debert/rendir/pkg/core"
	"github.com/arthur-debert/rendir/pkg/editor"
	"github.com/arthur-debert/rendir/pkg/errors"
	"github.com/arthur-debert/rendir/pkg/logging"
	"github.com/arthur-debert/rendir/pkg/output"
	"github.com/arthur-debert/rendir/pkg/types"
)

//go:embed help/*.md
var helpFS embed.FS

// env is what a command needs from the outside world
type env struct {
	fs       types.FS
	format   func() output.Format
	getenv   func(string) string
	newEdit  func(opts editor.Options) core.Editor
	setupLog func(verbosity int)
}

func defaultEnv() env {
	return env{
		format: func() output.Format { return output.DetectFormat(os.Stderr) },
		getenv: os.Getenv,
		newEdit: func(opts editor.Options) core.Editor {
			return editor.New(afero.NewOsFs(), opts)
		},
		setupLog: logging.SetupLogger,
	}
}

type flags struct {
	verbosity  int
	depth      int
	dryRun     bool
	noCycles   bool
	configFile string
	showConfig bool
}

// reportedError marks an error the command already printed
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

// NewRootCmd creates the rendir command
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultEnv())
}

func newRootCmd(e env) *cobra.Command {
	initTemplateFormatting()

	var f flags

	rootCmd := &cobra.Command{
		Use:     "rendir [flags] [dir...]",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// the first -v only turns on the report lines
			verbosity := f.verbosity - 1
			if verbosity < 0 {
				verbosity = 0
			}
			e.setupLog(verbosity)
			log.Debug().Str("command", cmd.Name()).Strs("args", args).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f, e)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&f.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().IntVarP(&f.depth, "depth", "d", 0, MsgFlagDepth)
	rootCmd.PersistentFlags().BoolVarP(&f.dryRun, "dry-run", "n", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().BoolVar(&f.noCycles, "no-cycles", false, MsgFlagNoCycles)
	rootCmd.PersistentFlags().StringVar(&f.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().BoolVar(&f.showConfig, "show-config", false, MsgFlagShowConfig)
	_ = rootCmd.MarkPersistentFlagFilename("config", "toml")

	// completions come from the rendir-completions binary; a "completion"
	// subcommand would shadow a directory of that name
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetUsageTemplate(MsgUsageTemplate)
	rootCmd.SetVersionTemplate("rendir version " + version.String() + "\n")

	renderer := topics.Renderer(&topics.PlainRenderer{})
	if stdoutIsTerminal() {
		renderer = topics.NewGlamourRenderer()
	}
	if _, err := topics.Install(rootCmd, helpFS, "help", topics.Options{
		Extensions: []string{".md"},
		Renderer:   renderer,
	}); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

func run(cmd *cobra.Command, args []string, f flags, e env) error {
	logger := logging.GetLogger("cli")

	reporter := output.NewReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Options{
		Verbose: f.verbosity > 0,
		Format:  e.format(),
	})
	fail := func(err error) error {
		reporter.Error(err)
		return reportedError{err}
	}

	overrides := map[string]interface{}{}
	if cmd.Flags().Changed("depth") {
		if f.depth < 1 {
			return fail(errors.Newf(errors.ErrInvalidInput, MsgErrDepth, f.depth))
		}
		overrides["scan.depth"] = f.depth
	}
	if f.noCycles {
		overrides["plan.resolve_cycles"] = false
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: f.configFile,
		Overrides:  overrides,
	})
	if err != nil {
		return fail(err)
	}

	if f.showConfig {
		return showConfig(cmd.OutOrStdout(), cfg)
	}

	logger.Info().
		Strs("roots", args).
		Int("depth", cfg.Scan.Depth).
		Bool("dryRun", f.dryRun).
		Bool("resolveCycles", cfg.Plan.ResolveCycles).
		Msg("Starting rendir")

	result, err := core.Run(cmd.Context(), core.Options{
		Roots:    args,
		Config:   cfg,
		FS:       e.fs,
		Editor:   e.newEdit(core.EditorOptions(cfg, e.getenv)),
		Reporter: reporter,
		DryRun:   f.dryRun,
	})
	if err != nil {
		reporter.Error(err)
		if errors.IsPreApply(err) {
			reporter.Unchanged()
		}
		return reportedError{err}
	}

	// per-operation failures and their count were printed by the reporter
	if err := result.Err(); err != nil {
		return reportedError{err}
	}
	return nil
}

func showConfig(w io.Writer, cfg *config.Config) error {
	data, err := cfg.TOML()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, MsgErrShowConfig)
	}
	_, err = w.Write(data)
	return err
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return exitCode(cmd.ExecuteContext(ctx), stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var reported reportedError
	if !stderrors.As(err, &reported) {
		// flag parsing and other cobra errors
		_, _ = fmt.Fprintf(stderr, "Error: %s\n", errors.Message(err))
	}
	return 1
}

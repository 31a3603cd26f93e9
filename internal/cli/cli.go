package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/digideskio/git-cinnabar/internal/app"
	"github.com/digideskio/git-cinnabar/internal/hcl_adapter"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks err as a problem with the command line itself.
func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// options are the flags shared by every command.
type options struct {
	dir        string
	configPath string
	logLevel   string
	logFormat  string
	submit     bool
	dryRun     bool
	addr       string
	prefix     string

	outW   io.Writer
	errW   io.Writer
	getenv func(string) string
}

// newApp validates the flags and creates the App they describe.
func (o *options) newApp() (*app.App, error) {
	cfg, err := app.NewConfig(app.Config{
		Dir:          o.dir,
		SettingsPath: o.configPath,
		LogFormat:    o.logFormat,
		LogLevel:     o.logLevel,
		Submit:       o.submit,
		DryRun:       o.dryRun,
		Getenv:       o.getenv,
	})
	if err != nil {
		return nil, usageError(err)
	}

	a, err := app.NewApp(o.outW, o.errW, cfg, hcl_adapter.NewLoader())
	if err != nil {
		return nil, usageError(err)
	}
	return a, nil
}

// NewRootCommand creates the decision command and its subcommands. Command
// output goes to outW, logs and errors to errW. getenv defaults to
// os.Getenv when nil.
func NewRootCommand(outW, errW io.Writer, getenv func(string) string) *cobra.Command {
	o := &options{outW: outW, errW: errW, getenv: getenv}

	root := &cobra.Command{
		Use:   "decision",
		Short: "Build the git-cinnabar CI task graph and submit it to Taskcluster",
		Long: `decision reads the decision files of a repository (.hcl), declares every
task they describe, reuses the tasks already indexed and submits the others.

Outside of a Taskcluster task (TASK_ID unset), definitions are printed
instead of submitted unless --submit is given.

Examples:
  # Print what would be submitted
  decision --dir .taskcluster

  # Show which tasks are reused
  decision plan

  # Serve a local index and queue, then submit to it
  decision fake-queue --addr :8080`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          o.runRun,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVarP(&o.dir, "dir", "d", app.DefaultDir, "Directory containing the decision files.")
	flags.StringVarP(&o.configPath, "config", "c", "", "Path to an optional YAML settings file.")
	flags.StringVar(&o.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&o.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	addSubmitFlags(root, o)

	root.AddCommand(
		newRunCommand(o),
		newPlanCommand(o),
		newImagesCommand(o),
		newShowCommand(o),
		newFakeQueueCommand(o),
	)
	return root
}

func addSubmitFlags(cmd *cobra.Command, o *options) {
	cmd.Flags().BoolVar(&o.submit, "submit", false, "Submit tasks even outside of a Taskcluster task.")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Print task definitions without submitting them.")
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError(err)
	}
	return nil
}

// Execute runs the command line args and maps every failure to an
// *ExitError: 2 for usage and configuration problems, 1 otherwise.
func Execute(ctx context.Context, args []string, outW, errW io.Writer, getenv func(string) string) error {
	slog.Debug("CLI parser started.", "args", args)
	root := NewRootCommand(outW, errW, getenv)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

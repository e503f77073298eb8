// Package cli wires the psitool commands: target sessions, identifier
// generation and lookup, pool listing and acquisition.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"psitool/internal/acquire"
	"psitool/internal/config"
	"psitool/internal/logger"
)

// App carries the process-level collaborators shared by every command.
// Tests replace the streams, the opener and the logger.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Open shows a target in the system viewer.
	Open func(path string) error

	// Log, when set, is used instead of building one from the flags.
	Log logger.Logger

	// Acquire configures the downloader client.
	Acquire acquire.Options

	NoColor bool

	verbose  bool
	quiet    bool
	settings config.Settings
	cfg      *config.Config
}

// NewApp returns an App bound to the given streams.
func NewApp(in io.Reader, out, errOut io.Writer) *App {
	return &App{In: in, Out: out, Err: errOut, Open: openInViewer}
}

// NewRootCommand builds the command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "psitool",
		Short:         "Blind target selection for remote viewing practice",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return invalidInvocationf("unknown command %q for \"psitool\"", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.verbose && app.quiet {
				return invalidInvocationf("--verbose and --quiet are mutually exclusive")
			}
			return nil
		},
	}
	root.SetIn(app.In)
	root.SetOut(app.Out)
	root.SetErr(app.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return invalidInvocationf("%v", err)
	})

	pf := root.PersistentFlags()
	pf.StringP(config.FlagConfig, "c", "", fmt.Sprintf("the config with the target pools (default %s)", config.DefaultConfigPath))
	pf.String(config.FlagCache, "", fmt.Sprintf("hash cache file (default %s)", config.DefaultCachePath))
	pf.String(config.FlagLedger, "", fmt.Sprintf("completed targets file (default %s)", config.DefaultLedgerPath))
	pf.BoolVarP(&app.verbose, "verbose", "v", false, "verbose logging (debug logs)")
	pf.BoolVarP(&app.quiet, "quiet", "q", false, "quiet logging (warn+ logs)")
	pf.BoolVar(&app.NoColor, "no-color", app.NoColor, "disable colored output")

	root.AddCommand(
		newPoolCommand(app),
		newGenCommand(app),
		newFindCommand(app),
		newPoolsCommand(app),
		newDownloadCommand(app),
	)
	return root
}

// Main runs the CLI and returns the process exit status. Failures are
// reported once on errOut.
func Main(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	config.LoadDotEnv()
	return NewApp(in, out, errOut).Run(ctx, args)
}

// Run executes args against a fresh command tree.
func (a *App) Run(ctx context.Context, args []string) int {
	root := NewRootCommand(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	if err != nil {
		fmt.Fprintln(a.Err, "psitool:", err)
	}
	return ExitCode(err)
}

// logger returns the invocation's logger, building it on first use.
func (a *App) logger() logger.Logger {
	if a.Log != nil {
		return a.Log
	}
	level := a.settings.LogLevel
	switch {
	case a.verbose:
		level = "debug"
	case a.quiet:
		level = "warn"
	}
	log, err := logger.New(logger.Config{Level: level})
	if err != nil {
		fmt.Fprintln(a.Err, "psitool: logger:", err)
		log = logger.NewNop()
	}
	a.Log = log
	return log
}

// load resolves settings and the config file. Commands that need pools call
// it first.
func (a *App) load(cmd *cobra.Command) error {
	if a.cfg != nil {
		return nil
	}
	s, cfg, err := config.LoadSettings(cmd.Flags())
	if err != nil {
		return err
	}
	a.settings = s
	a.cfg = cfg
	a.logger().Debug("loaded config",
		logger.String("config", s.ConfigPath),
		logger.String("cache", s.CachePath),
		logger.String("ledger", s.LedgerPath),
		logger.Int("pools", len(cfg.TargetPools)))
	return nil
}

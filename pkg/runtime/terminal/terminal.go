package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/fidc-atlas/pkg/runtime/app"
	"github.com/de-tools/fidc-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/fidc-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	opts     app.Options
	app      *app.App
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	// LogOutput receives structured logs, stderr by default.
	LogOutput io.Writer
	// Args replaces os.Args[1:] when set.
	Args []string
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		opts:     app.Options{LogOutput: opts.LogOutput},
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	if opts.Args != nil {
		cli.rootCmd.SetArgs(opts.Args)
	}
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	defer cli.close()
	return cli.rootCmd.ExecuteContext(ctx)
}

// open builds the application on first use so that commands failing flag
// validation never touch the database.
func (cli *CLI) open(ctx context.Context) (*app.App, error) {
	if cli.app != nil {
		return cli.app, nil
	}
	a, err := app.New(ctx, cli.opts)
	if err != nil {
		return nil, err
	}
	cli.app = a
	return a, nil
}

func (cli *CLI) close() {
	if cli.app != nil {
		_ = cli.app.Close()
		cli.app = nil
	}
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fidc",
		Short:         "FIDC monthly report normalization and consolidation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cli.opts.ConfigPath, "config", "", "Path to the settings file")
	flags.StringVar(&cli.opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&cli.opts.Profile, "profile", "", "Acquisition profile name")

	cmd.AddCommand(commands.NewSourcesCmd(cli.open, cli.reporter))
	cmd.AddCommand(commands.NewReshapeCmd(cli.open, cli.reporter))
	cmd.AddCommand(commands.NewConsolidateCmd(cli.open, cli.reporter))
	cmd.AddCommand(commands.NewRunCmd(cli.open, cli.reporter))
	cmd.AddCommand(commands.NewRunsCmd(cli.open, cli.reporter))
	cmd.AddCommand(commands.NewExportCmd(cli.open))

	return cmd
}

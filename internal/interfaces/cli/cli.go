package cli

import (
	"io"
	"os"
	"time"

	"github.com/dealer/reporting/internal/interfaces/cli/commands"
	"github.com/dealer/reporting/internal/interfaces/cli/export"

	"github.com/spf13/cobra"
)

// CLI represents the reportctl command-line interface
type CLI struct {
	engine   commands.EngineFactory
	reporter *export.Reporter
	globals  *commands.Globals
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Engine commands.EngineFactory
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		engine:   opts.Engine,
		reporter: export.NewReporter(opts.Output, export.FormatTable),
		globals:  &commands.Globals{},
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args, for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reportctl",
		Short:         "Render dealership reports from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.Int64Var(&cli.globals.ClientID, "client", 0, "Client (tenant) id")
	flags.StringVarP(&cli.globals.Format, "format", "o", string(export.FormatTable), "Output format: table or json")
	flags.DurationVar(&cli.globals.Timeout, "timeout", 60*time.Second, "Overall command timeout")

	cmd.AddCommand(commands.NewRenderCmd(cli.globals, cli.engine, cli.reporter))
	cmd.AddCommand(commands.NewSummaryCmd(cli.globals, cli.engine, cli.reporter))
	cmd.AddCommand(commands.NewListCmd(cli.globals, cli.engine, cli.reporter))

	return cmd
}

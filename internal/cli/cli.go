// Package cli implements the trademate command-line interface.
//
// The export command runs the document export pipeline without the HTTP server
// and writes the report to a directory or a temporary preview file.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const appName = "trademate"

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	out    io.Writer
}

// New creates a CLI that logs to logs and prints results to out.
func New(out, logs io.Writer) *CLI {
	return &CLI{
		Logger: newLogger(logs, log.InfoLevel),
		out:    out,
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "TradeMate exports progress reports as PDF",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.Logger.SetLevel(log.DebugLevel)
			}
			installLogger(c.Logger)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.exportCommand())
	return root
}

// Package cli implements the xlpaste command-line interface.
//
// # Commands
//
//   - paste: copy one range of an xlsx file onto another
//   - run: apply a batch of pastes described in a TOML job file
//   - show: print the cells and merged regions of a range
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context and handed to the workbook.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the xlpaste CLI.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "xlpaste",
		Short:        "xlpaste copies and pastes cell ranges inside xlsx workbooks",
		Long:         `xlpaste applies spreadsheet paste semantics (tiling, transpose, skip blanks, paste special operations, merged cells and formula reference shifting) to xlsx files.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("xlpaste %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newPasteCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newShowCmd())
	return root
}

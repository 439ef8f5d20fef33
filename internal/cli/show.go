package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javajack/xlpaste"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show <file.xlsx> <range>",
		Short:   "Print the cells and merged regions of a range",
		Example: `  xlpaste show book.xlsx Sheet1!A1:D10`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			book, err := xlpaste.OpenBook(args[0], xlpaste.WithLogger(logger))
			if err != nil {
				return err
			}
			defer book.Close()

			r, err := book.RangeRef(args[1])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), xlpaste.Describe(r))
			return nil
		},
	}
}

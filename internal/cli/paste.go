package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javajack/xlpaste"
)

// pasteSpec is one paste as given on the command line or in a job file.
type pasteSpec struct {
	Source      string `toml:"source"`
	Destination string `toml:"destination"`
	Type        string `toml:"type"`
	Operation   string `toml:"operation"`
	SkipBlanks  bool   `toml:"skip_blanks"`
	Transpose   bool   `toml:"transpose"`
}

// request resolves p against b. A destination without a sheet prefix is
// on the source's sheet.
func (p pasteSpec) request(b *xlpaste.Book) (xlpaste.PasteRequest, error) {
	var req xlpaste.PasteRequest
	src, err := b.RangeRef(p.Source)
	if err != nil {
		return req, fmt.Errorf("source %q: %w", p.Source, err)
	}
	dstRef := p.Destination
	if !strings.Contains(dstRef, "!") {
		dstRef = src.Sheet().Name() + "!" + dstRef
	}
	dst, err := b.RangeRef(dstRef)
	if err != nil {
		return req, fmt.Errorf("destination %q: %w", p.Destination, err)
	}
	pt, err := xlpaste.ParsePasteType(p.Type)
	if err != nil {
		return req, err
	}
	op, err := xlpaste.ParsePasteOperation(p.Operation)
	if err != nil {
		return req, err
	}
	return xlpaste.PasteRequest{
		Source:      src,
		Destination: dst,
		Type:        pt,
		Operation:   op,
		SkipBlank:   p.SkipBlanks,
		Transpose:   p.Transpose,
	}, nil
}

type pasteOpts struct {
	spec   pasteSpec
	output string
	dryRun bool
}

func newPasteCmd() *cobra.Command {
	var opts pasteOpts

	cmd := &cobra.Command{
		Use:   "paste <file.xlsx> <source> <destination>",
		Short: "Paste a range onto another range of a workbook",
		Long: `Paste copies the source range onto the destination. A single-cell destination
receives one copy; a larger destination receives as many whole copies as fit.`,
		Example: `  xlpaste paste book.xlsx Sheet1!A1:C3 E1
  xlpaste paste book.xlsx A1:B2 Sheet2!A1:D4 --type values --op add -o out.xlsx`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.spec.Source = args[1]
			opts.spec.Destination = args[2]
			return runPaste(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().StringVar(&opts.spec.Type, "type", "all", "paste type: all, formulas, values, formats, values-formats")
	cmd.Flags().StringVar(&opts.spec.Operation, "op", "none", "operation: none, add, subtract, multiply, divide")
	cmd.Flags().BoolVar(&opts.spec.SkipBlanks, "skip-blanks", false, "leave destination cells under blank source cells untouched")
	cmd.Flags().BoolVar(&opts.spec.Transpose, "transpose", false, "swap rows and columns")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "report what would be written without saving")
	return cmd
}

func runPaste(cmd *cobra.Command, path string, opts pasteOpts) error {
	logger := loggerFromContext(cmd.Context())
	out := cmd.OutOrStdout()

	book, err := xlpaste.OpenBook(path, xlpaste.WithLogger(logger))
	if err != nil {
		return err
	}
	defer book.Close()

	req, err := opts.spec.request(book)
	if err != nil {
		return err
	}

	if opts.dryRun {
		preview, err := book.PlanPaste(req)
		if err != nil {
			return err
		}
		printPreview(out, req, preview)
		return nil
	}

	prog := newProgress(logger)
	result, err := book.Paste(req)
	if err != nil {
		return err
	}

	dest := opts.output
	if dest == "" {
		dest = path
	}
	if err := book.SaveAs(dest); err != nil {
		return err
	}
	prog.done("Pasted " + result.String())

	printSuccess(out, "Pasted %s %s %s", req.Source, iconArrow, result)
	printFile(out, dest)
	return nil
}

func printPreview(w io.Writer, req xlpaste.PasteRequest, p *xlpaste.PastePreview) {
	printInfo(w, "%s %s %s", req.Source, iconArrow, req.Destination)
	printKeyValue(w, "result", p.Result.String())
	printKeyValue(w, "tiles", fmt.Sprintf("%d x %d", p.RowTiles, p.ColTiles))
	printKeyValue(w, "writes", fmt.Sprint(p.Writes))
	printKeyValue(w, "skipped", fmt.Sprint(p.Skipped))
	for _, m := range p.Unmerged {
		printDetail(w, "unmerge %s", m)
	}
	for _, m := range p.Merges {
		printDetail(w, "merge %s", m)
	}
	for _, issue := range p.Issues {
		printWarning(w, "%s", issue)
	}
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/javajack/xlpaste"
)

// jobFile is a batch of pastes applied to one workbook:
//
//	input = "book.xlsx"
//	output = "out.xlsx"
//
//	[[paste]]
//	source = "Sheet1!A1:C3"
//	destination = "E1"
//	type = "values"
type jobFile struct {
	Input  string      `toml:"input"`
	Output string      `toml:"output"`
	Pastes []pasteSpec `toml:"paste"`
}

// loadJobFile parses a job file. Relative input and output paths are resolved
// against the job file's directory.
func loadJobFile(path string) (*jobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var job jobFile
	if err := toml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parse job file %q: %w", path, err)
	}
	if job.Input == "" {
		return nil, fmt.Errorf("job file %q: missing input", path)
	}
	if len(job.Pastes) == 0 {
		return nil, fmt.Errorf("job file %q: no [[paste]] entries", path)
	}
	for i, p := range job.Pastes {
		if p.Source == "" || p.Destination == "" {
			return nil, fmt.Errorf("job file %q: paste %d needs source and destination", path, i+1)
		}
	}

	dir := filepath.Dir(path)
	if !filepath.IsAbs(job.Input) {
		job.Input = filepath.Join(dir, job.Input)
	}
	if job.Output == "" {
		job.Output = job.Input
	} else if !filepath.IsAbs(job.Output) {
		job.Output = filepath.Join(dir, job.Output)
	}
	return &job, nil
}

func newRunCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run <jobs.toml>",
		Short: "Apply the pastes listed in a TOML job file",
		Long: `Run applies every [[paste]] entry of a job file in order and saves the workbook
once. The first failing paste stops the run and nothing is saved.

With --dry-run each entry is previewed against the workbook as loaded, so a preview
does not include the effect of the entries before it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := loadJobFile(args[0])
			if err != nil {
				return err
			}
			return runJob(cmd, job, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview every paste against the unmodified workbook without saving")
	return cmd
}

func runJob(cmd *cobra.Command, job *jobFile, dryRun bool) error {
	logger := loggerFromContext(cmd.Context())
	out := cmd.OutOrStdout()

	book, err := xlpaste.OpenBook(job.Input, xlpaste.WithLogger(logger))
	if err != nil {
		return err
	}
	defer book.Close()

	prog := newProgress(logger)
	for i, spec := range job.Pastes {
		req, err := spec.request(book)
		if err != nil {
			printError(out, "paste %d: %v", i+1, err)
			return fmt.Errorf("paste %d: %w", i+1, err)
		}
		if dryRun {
			// nothing is applied, so every entry sees the workbook as loaded
			preview, err := book.PlanPaste(req)
			if err != nil {
				printError(out, "paste %d: %v", i+1, err)
				return fmt.Errorf("paste %d: %w", i+1, err)
			}
			printPreview(out, req, preview)
			continue
		}
		result, err := book.Paste(req)
		if err != nil {
			printError(out, "paste %d: %v", i+1, err)
			return fmt.Errorf("paste %d: %w", i+1, err)
		}
		printSuccess(out, "%s %s %s", req.Source, iconArrow, result)
	}
	if dryRun {
		return nil
	}

	if err := book.SaveAs(job.Output); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Applied %d pastes", len(job.Pastes)))
	printFile(out, job.Output)
	return nil
}

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeBook saves a workbook with 1..9 at Sheet1!A1:C3 into dir.
func writeBook(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	n := 1
	for row := 1; row <= 3; row++ {
		for _, col := range []string{"A", "B", "C"} {
			require.NoError(t, f.SetCellValue("Sheet1", col+strconv.Itoa(row), n))
			n++
		}
	}
	path := filepath.Join(dir, "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func cellValue(t *testing.T, path, sheet, cell string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPasteCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeBook(t, dir)
	out := filepath.Join(dir, "out.xlsx")

	stdout, err := execute(t, "paste", path, "Sheet1!A1:C3", "E1", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Pasted Sheet1!A1:C3")
	assert.Contains(t, stdout, "Sheet1!E1:G3")
	assert.Contains(t, stdout, out)

	assert.Equal(t, "1", cellValue(t, out, "Sheet1", "E1"))
	assert.Equal(t, "9", cellValue(t, out, "Sheet1", "G3"))
	// the input is left alone when an output is given
	assert.Equal(t, "", cellValue(t, path, "Sheet1", "E1"))
}

func TestPasteCommand_OverwritesInput(t *testing.T) {
	path := writeBook(t, t.TempDir())

	_, err := execute(t, "paste", path, "A1:A3", "B1", "--type", "values", "--op", "add")
	require.NoError(t, err)
	assert.Equal(t, "3", cellValue(t, path, "Sheet1", "B1"))
	assert.Equal(t, "9", cellValue(t, path, "Sheet1", "B2"))
	assert.Equal(t, "15", cellValue(t, path, "Sheet1", "B3"))
}

func TestPasteCommand_DryRun(t *testing.T) {
	path := writeBook(t, t.TempDir())

	stdout, err := execute(t, "paste", path, "Sheet1!A1:C3", "Sheet1!E1:J6", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sheet1!E1:J6")
	assert.Contains(t, stdout, "2 x 2")
	assert.Contains(t, stdout, "36")
	assert.Equal(t, "", cellValue(t, path, "Sheet1", "E1"))
}

func TestPasteCommand_Errors(t *testing.T) {
	path := writeBook(t, t.TempDir())

	_, err := execute(t, "paste", path, "Sheet1!A1:C3", "B2", "--transpose")
	assert.Error(t, err)

	_, err = execute(t, "paste", path, "Missing!A1", "B2")
	assert.Error(t, err)

	_, err = execute(t, "paste", path, "A1", "B2", "--type", "everything")
	assert.Error(t, err)

	_, err = execute(t, "paste", filepath.Join(t.TempDir(), "none.xlsx"), "A1", "B2")
	assert.Error(t, err)

	_, err = execute(t, "paste", path, "A1")
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	writeBook(t, dir)
	job := filepath.Join(dir, "job.toml")
	require.NoError(t, os.WriteFile(job, []byte(`
input = "book.xlsx"
output = "out.xlsx"

[[paste]]
source = "Sheet1!A1:C3"
destination = "E1"
type = "values"

[[paste]]
source = "Sheet1!A1:C3"
destination = "A5"
transpose = true
`), 0o644))

	stdout, err := execute(t, "run", job)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sheet1!E1:G3")
	assert.Contains(t, stdout, "Sheet1!A5:C7")

	out := filepath.Join(dir, "out.xlsx")
	assert.Equal(t, "9", cellValue(t, out, "Sheet1", "G3"))
	assert.Equal(t, "1", cellValue(t, out, "Sheet1", "A5"))
	assert.Equal(t, "4", cellValue(t, out, "Sheet1", "B5"))
	assert.Equal(t, "3", cellValue(t, out, "Sheet1", "A7"))
}

func TestRunCommand_StopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeBook(t, dir)
	job := filepath.Join(dir, "job.toml")
	require.NoError(t, os.WriteFile(job, []byte(`
input = "book.xlsx"
output = "out.xlsx"

[[paste]]
source = "A1:C3"
destination = "E1"

[[paste]]
source = "A1:C3"
destination = "B2"
transpose = true
`), 0o644))

	stdout, err := execute(t, "run", job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paste 2")
	assert.Contains(t, stdout, "paste 2")
	assert.NoFileExists(t, filepath.Join(dir, "out.xlsx"))
}

func TestRunCommand_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeBook(t, dir)
	job := filepath.Join(dir, "job.toml")
	require.NoError(t, os.WriteFile(job, []byte(`
input = "book.xlsx"

[[paste]]
source = "A1:C3"
destination = "E1"
`), 0o644))

	stdout, err := execute(t, "run", "--dry-run", job)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sheet1!E1:G3")
	assert.Equal(t, "", cellValue(t, path, "Sheet1", "E1"))
}

func TestLoadJobFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	job, err := loadJobFile(write("ok.toml", `
input = "in.xlsx"

[[paste]]
source = "A1"
destination = "B1"
skip_blanks = true
operation = "multiply"
`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "in.xlsx"), job.Input)
	assert.Equal(t, job.Input, job.Output)
	require.Len(t, job.Pastes, 1)
	assert.True(t, job.Pastes[0].SkipBlanks)
	assert.Equal(t, "multiply", job.Pastes[0].Operation)

	abs := filepath.Join(t.TempDir(), "abs.xlsx")
	job, err = loadJobFile(write("abs.toml", `
input = "in.xlsx"
output = "`+filepath.ToSlash(abs)+`"

[[paste]]
source = "A1"
destination = "B1"
`))
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(abs), filepath.ToSlash(job.Output))

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"missing input", "[[paste]]\nsource = \"A1\"\ndestination = \"B1\"\n", "missing input"},
		{"no pastes", "input = \"in.xlsx\"\n", "no [[paste]] entries"},
		{"missing source", "input = \"in.xlsx\"\n[[paste]]\ndestination = \"B1\"\n", "paste 1 needs source"},
		{"bad toml", "input = \n", "parse job file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadJobFile(write("bad.toml", tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	_, err = loadJobFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestShowCommand(t *testing.T) {
	path := writeBook(t, t.TempDir())

	stdout, err := execute(t, "show", path, "Sheet1!A1:C3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sheet1!A1:C3 range (3x3)")

	_, err = execute(t, "show", path, "Nope!A1")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	prev := []string{version, commit, date}
	t.Cleanup(func() { SetVersion(prev[0], prev[1], prev[2]) })

	SetVersion("1.2.3", "abc123", "2026-01-01")
	stdout, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "xlpaste 1.2.3\ncommit: abc123\nbuilt: 2026-01-01\n", stdout)
}

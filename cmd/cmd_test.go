package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogtb/gridcalc/packages/tablefile"
)

// isolate points the config at a temp dir and restores flag globals after
// the test
func isolate(t *testing.T) string {
	t.Helper()
	origLogLevel, origRows, origCols := logLevel, sheetRows, sheetCols
	origEvalFile, origEvalTree := evalFile, evalTree
	origRunFile, origRunSave, origShowJSON := runFile, runSave, showJSON
	t.Cleanup(func() {
		logLevel, sheetRows, sheetCols = origLogLevel, origRows, origCols
		evalFile, evalTree = origEvalFile, origEvalTree
		runFile, runSave, showJSON = origRunFile, origRunSave, origShowJSON
	})
	logLevel, sheetRows, sheetCols = "", 0, 0
	evalFile, evalTree = "", false
	runFile, runSave, showJSON = "", "", false

	t.Setenv("GRIDCALC_CONFIG_DIR", t.TempDir())
	t.Setenv("GRIDCALC_LOG_LEVEL", "")
	return t.TempDir()
}

func newTestCommand(stdin string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	return cmd, &out
}

func TestResolveConfig(t *testing.T) {
	isolate(t)

	cfg, err := resolveConfig()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Rows)
	assert.Equal(t, "warn", cfg.LogLevel)

	sheetRows = 7
	t.Setenv("GRIDCALC_LOG_LEVEL", "error")
	cfg, err = resolveConfig()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Rows)
	assert.Equal(t, 26, cfg.Columns)
	assert.Equal(t, "error", cfg.LogLevel)

	logLevel = "debug"
	cfg, err = resolveConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)

	logLevel = "chatty"
	_, _, err = sheetOptions()
	assert.Error(t, err)
}

func TestEval(t *testing.T) {
	isolate(t)

	cmd, out := newTestCommand("")
	require.NoError(t, runEval(cmd, []string{"=2+2*2"}))
	assert.Equal(t, "6\n", out.String())

	cmd, out = newTestCommand("")
	err := runEval(cmd, []string{"=1/0"})
	assert.Equal(t, errExitFormula, err)
	assert.Equal(t, "division by zero\n", out.String())
}

func TestEvalTree(t *testing.T) {
	isolate(t)
	evalTree = true

	cmd, out := newTestCommand("")
	require.NoError(t, runEval(cmd, []string{"=-$A$1*2+sum(B1:C2)"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "(function sum (B1:C2))")
	assert.Equal(t, "0", lines[1])
}

func TestEvalWithFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "input.table")
	require.NoError(t, os.WriteFile(path, []byte("2,2;0,0,1:5."), 0o644))
	evalFile = path

	cmd, out := newTestCommand("")
	require.NoError(t, runEval(cmd, []string{"=A1*2"}))
	assert.Equal(t, "10\n", out.String())
}

func TestRewrite(t *testing.T) {
	cmd, out := newTestCommand("")
	require.NoError(t, runRewrite(cmd, []string{"=B2-C3", "C3", "B2"}))
	assert.Equal(t, "=A1-B2\n", out.String())

	cmd, _ = newTestCommand("")
	assert.Error(t, runRewrite(cmd, []string{"=A1", "3C", "B2"}))
}

func TestRunScript(t *testing.T) {
	dir := isolate(t)
	runSave = filepath.Join(dir, "out.table")

	script := `# build a small table
set A1 2
set B1 =A1 * 3
get B1

copy B1 B2
get B2
undo
get B2
`
	cmd, out := newTestCommand(script)
	require.NoError(t, runScript(cmd, []string{"-"}))
	assert.Equal(t, "B1 = 6\nB2 = 0\nB2 = \n", out.String())

	sheet, err := tablefile.Load(runSave)
	require.NoError(t, err)
	text, err := sheet.TextAt(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "=A1 * 3", text)
}

func TestRunScriptErrors(t *testing.T) {
	isolate(t)

	cases := map[string]string{
		"set A1 1\nfrobnicate\n": `line 2: unknown command "frobnicate"`,
		"undo\n":                 "line 1: nothing to undo",
		"get A1 B1\n":            "line 1: get takes one cell",
		"copy A1\n":              "line 1: copy takes two cells",
	}
	for script, want := range cases {
		cmd, _ := newTestCommand(script)
		assert.EqualError(t, runScript(cmd, []string{"-"}), want)
	}
}

func TestSetShowDeps(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "budget.table")

	for _, edit := range [][]string{{"A1", "42"}, {"B1", "=A1+1"}, {"C1", "=A1*B1"}} {
		cmd, out := newTestCommand("")
		require.NoError(t, runSet(cmd, []string{path, edit[0], edit[1]}))
		assert.True(t, strings.HasPrefix(out.String(), edit[0]+" = "))
	}

	cmd, out := newTestCommand("")
	require.NoError(t, runShow(cmd, []string{path}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"B1", "=A1+1", "43"}, strings.Fields(lines[1]))

	cmd, out = newTestCommand("")
	require.NoError(t, runDeps(cmd, []string{path, "A1"}))
	assert.Equal(t, "precedents: \ndependents: B1, C1\n", out.String())

	cmd, out = newTestCommand("")
	require.NoError(t, runDeps(cmd, []string{path, "C1"}))
	assert.Equal(t, "precedents: A1, B1\ndependents: \n", out.String())
}

func TestShowReportsErrors(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "broken.table")
	require.NoError(t, os.WriteFile(path, []byte("1,2;0,0,4:=1/00,1,3:=A1."), 0o644))
	showJSON = true

	cmd, out := newTestCommand("")
	err := runShow(cmd, []string{path})
	assert.Equal(t, errExitFormula, err)

	var cells []cellOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &cells))
	assert.Equal(t, []cellOutput{
		{Cell: "A1", Text: "=1/0", Display: "division by zero", Error: "#DIV/0!"},
		{Cell: "B1", Text: "=A1", Display: "error in referenced cell A1", Error: "#DIV/0!"},
	}, cells)
}

func TestExportImport(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "budget.table")
	for _, edit := range [][]string{{"A1", "4"}, {"B1", "=pow(A1,2)"}, {"C1", "note"}} {
		cmd, _ := newTestCommand("")
		require.NoError(t, runSet(cmd, []string{path, edit[0], edit[1]}))
	}

	workbook := filepath.Join(dir, "budget.xlsx")
	cmd, _ := newTestCommand("")
	require.NoError(t, runExport(cmd, []string{path, workbook}))

	imported := filepath.Join(dir, "imported")
	cmd, out := newTestCommand("")
	require.NoError(t, runImport(cmd, []string{workbook, imported}))
	assert.Equal(t, "wrote "+imported+".table (1x3)\n", out.String())

	sheet, err := tablefile.Load(imported + ".table")
	require.NoError(t, err)
	display, err := sheet.Get("B1")
	require.NoError(t, err)
	assert.Equal(t, "16", display)
}

func TestConfigCommands(t *testing.T) {
	isolate(t)

	cmd, _ := newTestCommand("")
	require.NoError(t, configSetCmd.RunE(cmd, []string{"rows", "12"}))
	assert.Error(t, configSetCmd.RunE(cmd, []string{"rows", "-1"}))

	cmd, out := newTestCommand("")
	require.NoError(t, configShowCmd.RunE(cmd, nil))
	assert.Contains(t, out.String(), `"rows": 12`)
	assert.Contains(t, out.String(), `"log_level": "warn"`)
}

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
	"github.com/vogtb/gridcalc/packages/tablefile"
)

var (
	runFile string
	runSave string
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a script of cell edits",
	Long: `Run a script against a table, one command per line:

  set <cell> <text>   set a cell, the text is the rest of the line
  get <cell>          print what the cell displays
  undo                revert the last edit
  copy <from> <to>    copy a cell, shifting relative references

Blank lines and lines starting with # are skipped. Use - to read the script
from stdin.

Examples:
  gridcalc run edits.txt
  gridcalc run --file budget.table --save budget.table edits.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "Table file to start from")
	runCmd.Flags().StringVar(&runSave, "save", "", "Save the table here when the script succeeds")
	rootCmd.AddCommand(runCmd)
}

func runScript(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	sheet, err := openSheet(runFile, false)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	r := spreadsheet.WrapSheet(sheet, func(line string) { fmt.Fprintln(out, line) })

	scanner := bufio.NewScanner(in)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		if err := execLine(r, scanner.Text()); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if runSave != "" {
		if _, err := tablefile.Save(runSave, sheet); err != nil {
			return fmt.Errorf("saving %s: %w", runSave, err)
		}
	}
	return nil
}

func execLine(r *spreadsheet.RunnableSheet, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	operands := strings.Fields(rest)

	switch command {
	case "set":
		address, text, ok := strings.Cut(rest, " ")
		if !ok {
			address, text = rest, ""
		}
		return r.Set(address, strings.TrimSpace(text)).Error()
	case "get":
		if len(operands) != 1 {
			return fmt.Errorf("get takes one cell")
		}
		return r.Log(operands[0]).Error()
	case "undo":
		return r.Undo().Error()
	case "copy":
		if len(operands) != 2 {
			return fmt.Errorf("copy takes two cells")
		}
		return r.Copy(operands[0], operands[1]).Error()
	}
	return fmt.Errorf("unknown command %q", command)
}

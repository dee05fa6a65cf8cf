package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

var depsCmd = &cobra.Command{
	Use:   "deps <file.table> <cell>",
	Short: "List the cells a cell reads and the cells reading it",
	Args:  cobra.ExactArgs(2),
	RunE:  runDeps,
}

func init() {
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	sheet, err := openSheet(args[0], false)
	if err != nil {
		return err
	}
	pos, err := spreadsheet.ParsePosition(args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "precedents: %s\n", joinPositions(sheet.Precedents(pos)))
	fmt.Fprintf(out, "dependents: %s\n", joinPositions(sheet.Dependents(pos)))
	return nil
}

func joinPositions(positions []spreadsheet.CellPosition) string {
	names := make([]string, len(positions))
	for i, pos := range positions {
		names[i] = pos.String()
	}
	return strings.Join(names, ", ")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

var (
	evalFile string
	evalTree bool
)

var evalCmd = &cobra.Command{
	Use:   "eval <formula>",
	Short: "Evaluate one formula",
	Long: `Evaluate one formula against an empty table, or against the cells of
a table file given with --file. Nothing is written back.

Returns exit code 2 when the formula fails.

Examples:
  gridcalc eval "=2+2*2"
  gridcalc eval --file budget.table "=sum(B1:B12)"
  gridcalc eval --tree "=-(3*B1-B2)*(B1+B2)"`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVarP(&evalFile, "file", "f", "", "Table file providing cell values")
	evalCmd.Flags().BoolVar(&evalTree, "tree", false, "Print the parsed tree before the result")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	sheet, err := openSheet(evalFile, false)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if evalTree {
		node, err := spreadsheet.Parse(args[0], sheet.Functions())
		if err != nil {
			fmt.Fprintln(out, err)
			return errExitFormula
		}
		fmt.Fprintln(out, node)
	}

	v, err := sheet.Evaluate(args[0])
	if err != nil {
		fmt.Fprintln(out, err)
		return errExitFormula
	}
	fmt.Fprintln(out, spreadsheet.FormatNumber(v))
	return nil
}

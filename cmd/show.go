package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <file.table>",
	Short: "Print every non-empty cell with its display text",
	Long: `Print every non-empty cell of a table file: address, raw text and
what the cell displays after recalculation.

Returns exit code 2 when any formula holds an error.

Examples:
  gridcalc show budget.table
  gridcalc show budget.table --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print machine-readable output")
	rootCmd.AddCommand(showCmd)
}

type cellOutput struct {
	Cell    string `json:"cell"`
	Text    string `json:"text"`
	Display string `json:"display"`
	Error   string `json:"error,omitempty"`
}

func runShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	sheet, err := openSheet(args[0], false)
	if err != nil {
		return err
	}

	var cells []cellOutput
	failed := false
	for pos, cell := range sheet.Cells() {
		c := cellOutput{Cell: pos.String(), Text: cell.Text(), Display: cell.DisplayText()}
		if err := cell.Err(); err != nil && cell.IsFormula() {
			c.Error = spreadsheet.CodeOf(err).String()
			failed = true
		}
		cells = append(cells, c)
	}

	out := cmd.OutOrStdout()
	if showJSON {
		if err := jsonPrint(out, cells); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, c := range cells {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Cell, c.Text, c.Display)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if failed {
		return errExitFormula
	}
	return nil
}

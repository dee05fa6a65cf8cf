package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vogtb/gridcalc/packages/tablefile"
)

var setCmd = &cobra.Command{
	Use:   "set <file.table> <cell> <text>",
	Short: "Edit one cell and save the table",
	Long: `Set the text of one cell, recalculate its dependents and save the
table. A missing file is created with the configured size.

Examples:
  gridcalc set budget.table B13 "=sum(B1:B12)"
  gridcalc set --rows 100 --columns 10 new.table A1 42`,
	Args: cobra.ExactArgs(3),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	path, address, text := args[0], args[1], args[2]

	sheet, err := openSheet(path, true)
	if err != nil {
		return err
	}
	if err := sheet.Set(address, text); err != nil {
		return err
	}
	if _, err := tablefile.Save(path, sheet); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	display, err := sheet.Get(address)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", address, display)
	return nil
}

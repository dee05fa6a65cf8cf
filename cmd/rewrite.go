package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <formula> <from> <to>",
	Short: "Shift the relative references of a formula as a paste would",
	Long: `Print the formula as it reads after being copied from one cell to
another. References anchored with $ keep their row or column.

Examples:
  gridcalc rewrite "=B2-C3" C3 B2
  gridcalc rewrite "=\$A1+A\$1" A1 B2`,
	Args: cobra.ExactArgs(3),
	RunE: runRewrite,
}

func init() {
	rootCmd.AddCommand(rewriteCmd)
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	from, err := spreadsheet.ParsePosition(args[1])
	if err != nil {
		return err
	}
	to, err := spreadsheet.ParsePosition(args[2])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), spreadsheet.RewriteAddresses(args[0], from, to))
	return nil
}

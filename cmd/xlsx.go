package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vogtb/gridcalc/packages/tablefile"
	"github.com/vogtb/gridcalc/packages/xlsx"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.table> <out.xlsx>",
	Short: "Write a table as an Excel workbook",
	Long: `Write a table as an Excel workbook. Sheet1 holds the cell text with
formulas as workbook formulas; the values sheet holds what every cell
displays, errors as their code.`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <in.xlsx> <out.table>",
	Short: "Read the first sheet of an Excel workbook into a table",
	Long: `Read the first sheet of an Excel workbook into a table file. The
table is at least --rows by --columns and grows to fit the workbook.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	sheet, err := openSheet(args[0], false)
	if err != nil {
		return err
	}
	return xlsx.SaveFile(args[1], sheet)
}

func runImport(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cfg, opts, err := sheetOptions()
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	atLeast := xlsx.Size{}
	if sheetRows > 0 || sheetCols > 0 {
		atLeast = xlsx.Size{Rows: cfg.Rows, Columns: cfg.Columns}
	}
	sheet, err := xlsx.Import(f, atLeast, opts...)
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}
	path, err := tablefile.Save(args[1], sheet)
	if err != nil {
		return err
	}
	rows, columns := sheet.Size()
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", path, rows, columns)
	return nil
}

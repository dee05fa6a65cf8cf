package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vogtb/gridcalc/config"
	"github.com/vogtb/gridcalc/packages/spreadsheet"
	"github.com/vogtb/gridcalc/packages/tablefile"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	logLevel  string
	sheetRows int
	sheetCols int
)

var rootCmd = &cobra.Command{
	Use:           "gridcalc",
	Short:         "Evaluate and edit formula tables from the command line",
	Version:       Version,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (env: GRIDCALC_LOG_LEVEL)")
	addSizeFlags(rootCmd.PersistentFlags())
}

func addSizeFlags(fs *pflag.FlagSet) {
	fs.IntVar(&sheetRows, "rows", 0, "Rows of a new table (default from config)")
	fs.IntVar(&sheetCols, "columns", 0, "Columns of a new table (default from config)")
}

// resolveConfig layers flags and environment over the config file
func resolveConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	if sheetRows > 0 {
		cfg.Rows = sheetRows
	}
	if sheetCols > 0 {
		cfg.Columns = sheetCols
	}
	if v := os.Getenv("GRIDCALC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// sheetOptions returns the options every command builds sheets with
func sheetOptions() (config.Config, []spreadsheet.Option, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return cfg, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, []spreadsheet.Option{spreadsheet.WithLogger(logger)}, nil
}

// openSheet loads path, or creates an empty sheet of the configured size
// when path is empty or, with create set, does not exist yet
func openSheet(path string, create bool) (*spreadsheet.Sheet, error) {
	cfg, opts, err := sheetOptions()
	if err != nil {
		return nil, err
	}
	if path != "" {
		_, statErr := os.Stat(path)
		if statErr == nil || !create || !os.IsNotExist(statErr) {
			return tablefile.Load(path, opts...)
		}
	}
	return spreadsheet.NewSheet(cfg.Rows, cfg.Columns, opts...)
}

func Execute() error {
	return rootCmd.Execute()
}

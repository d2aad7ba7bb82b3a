package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/climadash/config"
	"github.com/spektr-org/climadash/dataset"
	"github.com/spektr-org/climadash/logging"
	"github.com/spektr-org/climadash/schema"
)

// ============================================================================
// CLIMADASH CLI: Climate dashboard server and batch tools
// ============================================================================

var version = "0.1.0"

// app carries state shared by every subcommand.
type app struct {
	configPath string
	dataPath   string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
	schema schema.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{schema: schema.Climate()}

	root := &cobra.Command{
		Use:   "climadash",
		Short: "Interactive climate indicators dashboard",
		Long: `climadash serves a filterable dashboard over a climate CSV
(Year, Country, temperature, CO2, renewable share, extreme weather events,
population) and offers the same views from the command line.

Examples:
  climadash serve --data update_temperature.csv --watch
  climadash summary --country Canada --country India --year-min 2010
  climadash chart --mode temperature --out heatmap.png
  climadash export --format xlsx --dir exports/`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath+" if present)")
	pf.StringVar(&a.dataPath, "data", "", "climate CSV path (overrides data.path)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides log.level)")

	root.AddCommand(
		newServeCmd(a),
		newSummaryCmd(a),
		newChartCmd(a),
		newExportCmd(a),
		newPushCmd(a),
		newVersionCmd(),
	)
	return root
}

// init loads config and builds the logger. Flags win over file and env.
func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dataPath != "" {
		cfg.Data.Path = a.dataPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) loadTable() (*dataset.Table, error) {
	t, err := dataset.LoadFile(a.cfg.Data.Path, a.schema)
	if err != nil {
		return nil, err
	}
	for _, sk := range t.Skipped() {
		a.logger.Warn("column skipped", zap.String("column", sk.Column), zap.String("reason", sk.Reason))
	}
	a.logger.Debug("dataset loaded", zap.String("path", a.cfg.Data.Path), zap.Int("rows", t.Len()))
	return t, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		// Skips config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "climadash %s\n", version)
		},
	}
}

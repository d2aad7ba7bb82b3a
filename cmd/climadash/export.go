package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/climadash/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		filters filterFlags
		format  string
		dir     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered rows to a timestamped CSV or XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Export.Format
			}
			if !cmd.Flags().Changed("dir") {
				dir = a.cfg.Export.Dir
			}
			ff, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			t, err := a.loadTable()
			if err != nil {
				return err
			}
			f, err := filters.resolve(cmd, t.Bounds())
			if err != nil {
				return err
			}
			view := t.Filter(f)

			path, err := export.ToDir(dir, ff, view, a.schema, time.Now())
			if err != nil {
				return err
			}
			a.logger.Info("export written",
				zap.String("path", path),
				zap.String("format", string(ff)),
				zap.Int("rows", view.Len()))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx (overrides export.format)")
	cmd.Flags().StringVar(&dir, "dir", ".", "output directory (overrides export.dir)")
	return cmd
}

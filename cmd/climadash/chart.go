package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/spektr-org/climadash/engine"
	"github.com/spektr-org/climadash/render"
)

func newChartCmd(a *app) *cobra.Command {
	var (
		filters       filterFlags
		mode          string
		format        string
		out           string
		width, height float64
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render one dashboard tab as PNG, CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := engine.ParseMode(mode)
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

			chart, err := engine.BuildMode(m, t.Filter(f), engine.WithLogger(a.logger))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			return writeChart(w, chart, format, vg.Length(width)*vg.Centimeter, vg.Length(height)*vg.Centimeter)
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", string(engine.ModeOverview), "overview, trends, correlation, temperature or renewable")
	cmd.Flags().StringVar(&format, "format", "png", "output format: png, csv, json, pretty")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	cmd.Flags().Float64Var(&width, "width", 20, "PNG width in cm")
	cmd.Flags().Float64Var(&height, "height", 12, "PNG height in cm")
	return cmd
}

func writeChart(w io.Writer, chart *engine.ChartConfig, format string, width, height vg.Length) error {
	switch format {
	case "png":
		return render.PNG(w, chart, render.WithSize(width, height))
	case "csv":
		return writeChartCSV(w, chart)
	case "json", "pretty":
		return writeJSON(w, chart, format)
	default:
		return fmt.Errorf("unknown format %q (want png, csv, json or pretty)", format)
	}
}

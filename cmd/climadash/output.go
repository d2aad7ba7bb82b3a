package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spektr-org/climadash/engine"
)

// ============================================================================
// CSV OUTPUT: Chart data as Sheets-ready CSV
// ============================================================================

func writeChartCSV(w io.Writer, chart *engine.ChartConfig) error {
	cw := csv.NewWriter(w)

	switch {
	case chart.Heatmap != nil:
		writeMatrixCSV(cw, chart.Heatmap)
	case len(chart.Treemap) > 0:
		cw.Write([]string{"Label", "Size", chart.ColorLabel})
		for _, t := range chart.Treemap {
			cw.Write([]string{t.Label, fmtNum(t.Size), fmtNum(t.ColorValue)})
		}
	case chart.ChartType == "scatter":
		cw.Write([]string{"Series", chart.XAxis, chart.YAxis, "Size"})
		for _, s := range chart.Series {
			for _, d := range s.Data {
				cw.Write([]string{s.Name, fmtNum(d.X), fmtNum(d.Value), fmtNum(d.Size)})
			}
		}
	default:
		writeSeriesCSV(cw, chart)
	}

	cw.Flush()
	return cw.Error()
}

func writeSeriesCSV(cw *csv.Writer, chart *engine.ChartConfig) {
	xLabel := chart.XAxis
	yLabel := chart.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	// Single series → two columns
	if len(chart.Series) == 1 {
		cw.Write([]string{xLabel, yLabel})
		for _, d := range chart.Series[0].Data {
			cw.Write([]string{d.Label, fmtNum(d.Value)})
		}
		return
	}

	// Multi-series → label + one column per series
	headers := []string{xLabel}
	for _, s := range chart.Series {
		headers = append(headers, s.Name)
	}
	cw.Write(headers)

	if len(chart.Series) == 0 {
		return
	}
	for i, d := range chart.Series[0].Data {
		row := []string{d.Label}
		for _, s := range chart.Series {
			if i < len(s.Data) {
				row = append(row, fmtNum(s.Data[i].Value))
			} else {
				row = append(row, "")
			}
		}
		cw.Write(row)
	}
}

func writeMatrixCSV(cw *csv.Writer, m *engine.Matrix) {
	cw.Write(append([]string{engine.LabelForKey(m.RowKey)}, m.ColLabels...))
	for r, label := range m.RowLabels {
		row := []string{label}
		for _, v := range m.Values[r] {
			row = append(row, fmtNum(v))
		}
		cw.Write(row)
	}
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// ============================================================================
// HELPERS
// ============================================================================

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

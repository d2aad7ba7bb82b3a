package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/climadash/dataset"
	"github.com/spektr-org/climadash/engine"
	"github.com/spektr-org/climadash/schema"
)

const climateCSV = `Year,Country,Avg_Temperature_degC,CO2_Emissions_tons_per_capita,Renewable_Energy_pct,Extreme_Weather_Events,Population
2000,Canada,-5.0,15.0,60.0,2,30000000
2001,Canada,-4.8,15.5,61.0,3,31000000
2000,Brazil,25.0,2.0,45.0,5,170000000
2001,Brazil,25.2,2.1,46.5,6,172000000
2001,India,24.25,1.125,20.0,8,1000000000
`

func writeData(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "climate.csv")
	require.NoError(t, os.WriteFile(path, []byte(climateCSV), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "climadash "+version+"\n", out.String())
}

func TestSummaryText(t *testing.T) {
	data := writeData(t)
	out, err := run(t, "summary", "--data", data, "--country", "Canada", "--country", "India")
	require.NoError(t, err)

	assert.Contains(t, out, "Showing 3 of 5 records")
	assert.Contains(t, out, "Countries: 2 selected")
	assert.Contains(t, out, "Temperature warming rate")
	assert.NotContains(t, out, "\x1b[", "no ANSI styling off a terminal")
}

func TestSummaryEmptyAndSingleRow(t *testing.T) {
	data := writeData(t)

	out, err := run(t, "summary", "--data", data, "--temp-min", "50")
	require.NoError(t, err)
	assert.Contains(t, out, engine.EmptyNotice)
	assert.Contains(t, out, engine.NotEnoughDataNotice)

	out, err = run(t, "summary", "--data", data, "--country", "India")
	require.NoError(t, err)
	assert.Contains(t, out, engine.NotEnoughDataNotice)
	assert.NotContains(t, out, engine.EmptyNotice)
}

func TestSummaryJSON(t *testing.T) {
	data := writeData(t)
	out, err := run(t, "summary", "--data", data, "--format", "json", "--year-min", "2001")
	require.NoError(t, err)

	var d engine.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, 3, d.Summary.Shown)
}

func TestSummaryRejectsInvertedRange(t *testing.T) {
	data := writeData(t)
	_, err := run(t, "summary", "--data", data, "--year-min", "2001", "--year-max", "2000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year_max")
}

func TestChartCSV(t *testing.T) {
	data := writeData(t)
	out, err := run(t, "chart", "--data", data, "--mode", "temperature", "--format", "csv")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Country", "2000", "2001"}, rows[0])
	assert.Equal(t, []string{"India", "0", "24.25"}, rows[3], "missing cells are filled with zero")
}

func TestChartPNGToFile(t *testing.T) {
	data := writeData(t)
	out := filepath.Join(t.TempDir(), "trends.png")
	_, err := run(t, "chart", "--data", data, "--mode", "trends", "-o", out)
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")))
}

func TestChartErrors(t *testing.T) {
	data := writeData(t)
	_, err := run(t, "chart", "--data", data, "--mode", "pie")
	assert.ErrorIs(t, err, engine.ErrUnknownMode)

	_, err = run(t, "chart", "--data", data, "--mode", "trends", "--country", "Atlantis")
	assert.ErrorIs(t, err, engine.ErrNoData)
}

func TestExportCommand(t *testing.T) {
	data := writeData(t)
	dir := filepath.Join(t.TempDir(), "exports")

	out, err := run(t, "export", "--data", data, "--dir", dir, "--country", "Brazil")
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.Regexp(t, `filtered_export_\d{8}_\d{6}\.csv$`, path)

	tbl, err := dataset.LoadFile(path, schema.Climate())
	require.NoError(t, err)
	assert.Equal(t, []string{"Brazil"}, tbl.Countries())
	assert.Equal(t, 2, tbl.Len())
}

func TestPushRequiresInflux(t *testing.T) {
	data := writeData(t)
	t.Setenv("INFLUXDB_URL", "")
	_, err := run(t, "push", "--data", data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestMissingDataFile(t *testing.T) {
	_, err := run(t, "summary", "--data", filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

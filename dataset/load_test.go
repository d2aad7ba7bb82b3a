package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestLoadClimateCSV(t *testing.T) {
	tbl, err := Load(strings.NewReader(climateCSV), schema.Climate())
	require.NoError(t, err)

	assert.Equal(t, 5, tbl.Len())
	assert.Equal(t, []string{"Brazil", "Canada", "India"}, tbl.Countries())
	assert.Empty(t, tbl.Skipped())

	assert.Equal(t, engine.Observation{
		Year: 2001, Country: "India", AvgTemperature: 24.25, CO2PerCapita: 1.125,
		RenewablePct: 20.0, ExtremeEvents: 8, Population: 1_000_000_000,
	}, tbl.Observations()[4])

	assert.Equal(t, engine.Bounds{
		YearMin: 2000, YearMax: 2001,
		TempMin: -5.0, TempMax: 25.2,
		CO2Min: 1.125, CO2Max: 15.5,
		RenewMin: 20.0, RenewMax: 61.0,
	}, tbl.Bounds())
}

func TestLoadReorderedColumnsWithBOMAndExtras(t *testing.T) {
	data := "\uFEFFCountry,Population,Notes,Year,Extreme_Weather_Events,Renewable_Energy_pct,CO2_Emissions_tons_per_capita,Avg_Temperature_degC\n" +
		"Chile,19000000,coastal,2010,4,30.5,4.5,12.5\n"

	tbl, err := Load(strings.NewReader(data), schema.Climate())
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())

	o := tbl.Observations()[0]
	assert.Equal(t, "Chile", o.Country)
	assert.Equal(t, 2010, o.Year)
	assert.Equal(t, 12.5, o.AvgTemperature)
	assert.Equal(t, int64(19_000_000), o.Population)

	require.Len(t, tbl.Skipped(), 1)
	assert.Equal(t, "Notes", tbl.Skipped()[0].Column)
}

func TestLoadHeaderOnly(t *testing.T) {
	header := strings.SplitN(climateCSV, "\n", 2)[0] + "\n"
	tbl, err := Load(strings.NewReader(header), schema.Climate())
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, engine.Bounds{}, tbl.Bounds())
	assert.Equal(t, 0, tbl.View().Len())
}

func TestLoadErrors(t *testing.T) {
	header := strings.SplitN(climateCSV, "\n", 2)[0]

	tests := []struct {
		name    string
		data    string
		target  error
		message string
	}{
		{
			name:   "empty input",
			data:   "",
			target: nil,
		},
		{
			name:    "missing column",
			data:    "Year,Country,Population\n2000,Canada,1\n",
			target:  schema.ErrMissingColumns,
			message: "Avg_Temperature_degC",
		},
		{
			name:    "unparsable integer",
			data:    header + "\n2000,Canada,-5.0,15.0,60.0,2,30000000\n2001,Canada,-4.8,15.5,61.0,3,lots\n",
			target:  ErrInvalidCell,
			message: "line 3, column Population",
		},
		{
			name:    "fractional year",
			data:    header + "\n2000.5,Canada,-5.0,15.0,60.0,2,30000000\n",
			target:  ErrInvalidCell,
			message: "column Year",
		},
		{
			name:    "empty temperature",
			data:    header + "\n2000,Canada,,15.0,60.0,2,30000000\n",
			target:  ErrInvalidCell,
			message: "Avg_Temperature_degC",
		},
		{
			name:    "renewable above 100",
			data:    header + "\n2000,Canada,-5.0,15.0,120,2,30000000\n",
			target:  ErrInvalidCell,
			message: "above 100",
		},
		{
			name:    "blank country",
			data:    header + "\n2000,  ,-5.0,15.0,60,2,30000000\n",
			target:  ErrInvalidCell,
			message: "column Country",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.data), schema.Climate())
			require.Error(t, err)
			if tt.target != nil {
				assert.Truef(t, errors.Is(err, tt.target), "want %v, got %v", tt.target, err)
			}
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestObservationsIsACopy(t *testing.T) {
	tbl, err := Load(strings.NewReader(climateCSV), schema.Climate())
	require.NoError(t, err)

	rows := tbl.Observations()
	rows[0].AvgTemperature = 99
	assert.Equal(t, -5.0, tbl.Observations()[0].AvgTemperature)
	assert.Equal(t, -5.0, tbl.View().Measure(0, engine.KeyTemperature))
}

func TestTableFilter(t *testing.T) {
	tbl, err := Load(strings.NewReader(climateCSV), schema.Climate())
	require.NoError(t, err)

	f := engine.DefaultFilters(tbl.Bounds())
	f.Countries = []string{"Brazil"}
	assert.Equal(t, 2, tbl.Filter(f).Len())
}

func TestLoadFileRecordsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "climate.csv")
	require.NoError(t, os.WriteFile(path, []byte(climateCSV), 0o644))

	tbl, err := LoadFile(path, schema.Climate())
	require.NoError(t, err)
	assert.Equal(t, path, tbl.Source())
	assert.False(t, tbl.LoadedAt().IsZero())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"), schema.Climate())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildDashboardFullView(t *testing.T) {
	view := sampleView()
	core, logs := observer.New(zap.DebugLevel)

	d := BuildDashboard(view, view, WithLogger(zap.New(core)), WithPreviewLimit(5))

	assert.Empty(t, d.Notice)
	assert.Equal(t, []string{
		"Showing 8 of 8 records",
		"Time period: 2000 – 2002",
		"Countries: 3 selected",
		"Temperature range: -5.0°C – 25.4°C",
	}, d.SummaryLines)

	require.NotNil(t, d.Insights)
	assert.Len(t, d.InsightLines, 4)

	for _, m := range Modes() {
		assert.NotNilf(t, d.Charts[m], "mode %s", m)
	}

	trends := d.Charts[ModeTrends]
	require.Len(t, trends.Series, 2)
	assert.Equal(t, "Temperature", trends.Series[0].Name)
	assert.Equal(t, "CO2", trends.Series[1].Name)
	assert.Len(t, trends.Series[0].Data, 3)
	assert.True(t, trends.ShowMarkers)

	scatter := d.Charts[ModeCorrelation]
	assert.Equal(t, "scatter", scatter.ChartType)
	require.Len(t, scatter.Series, 3, "one series per country present in 2002")
	for _, s := range scatter.Series {
		require.Len(t, s.Data, 1)
		assert.Positive(t, s.Data[0].Size)
	}

	heat := d.Charts[ModeTemperature]
	require.NotNil(t, heat.Heatmap)
	assert.Equal(t, []string{"2000", "2001", "2002"}, heat.Heatmap.ColLabels)
	assert.Equal(t, &Range{Min: -5.0, Max: 25.4}, heat.ColorRange)

	tree := d.Charts[ModeOverview]
	require.Len(t, tree.Treemap, 3)
	assert.Equal(t, "India", tree.Treemap[0].Label, "largest population first")

	renew := d.Charts[ModeRenewable]
	require.Len(t, renew.Series, 1)
	assert.Len(t, renew.Series[0].Data, 3)

	require.NotNil(t, d.Table)
	assert.Len(t, d.Table.Rows, 5)
	assert.Equal(t, 8, d.Table.TotalRows)
	require.NotNil(t, d.Table.Footer)
	require.NotNil(t, d.Yearly)
	assert.Len(t, d.Yearly.Rows, 3)

	assert.Equal(t, 1, logs.FilterMessage("dashboard built").Len())
}

func TestBuildDashboardEmptyViewShowsNotice(t *testing.T) {
	view := sampleView()
	f := DefaultFilters(ComputeBounds(view))
	f.Countries = []string{"Atlantis"}

	d := BuildDashboard(view, f.Apply(view))

	assert.Equal(t, EmptyNotice, d.Notice)
	assert.Nil(t, d.Insights)
	assert.Nil(t, d.Charts)
	assert.Nil(t, d.Table)
	assert.Equal(t, []string{NotEnoughDataNotice}, d.InsightLines)
	assert.Equal(t, "Showing 0 of 8 records", d.SummaryLines[0])

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "NaN")
}

func TestBuildDashboardSingleRowSkipsInsights(t *testing.T) {
	view := sampleView()
	one := FilterYear(ApplyFilters(view, Filters{Dimensions: map[string][]string{KeyCountry: {"Canada"}}}), 2001)
	require.Equal(t, 1, one.Len())

	d := BuildDashboard(view, one)
	assert.Empty(t, d.Notice)
	assert.Nil(t, d.Insights)
	assert.Equal(t, []string{NotEnoughDataNotice}, d.InsightLines)
	assert.NotNil(t, d.Charts[ModeOverview])
	assert.Equal(t, "Time period: 2001 – 2001", d.SummaryLines[1])
}

func TestZeroPopulationLeavesOverviewWithoutData(t *testing.T) {
	view := Observations([]Observation{
		{Year: 2000, Country: "Atlantis", AvgTemperature: 18, CO2PerCapita: 1, RenewablePct: 90, Population: 0},
		{Year: 2001, Country: "Atlantis", AvgTemperature: 18.5, CO2PerCapita: 1.1, RenewablePct: 91, Population: 0},
	})

	_, err := BuildMode(ModeOverview, view)
	assert.ErrorIs(t, err, ErrNoData)

	d := BuildDashboard(view, view)
	assert.Empty(t, d.Notice)
	assert.NotContains(t, d.Charts, ModeOverview)
	for _, m := range []Mode{ModeTrends, ModeCorrelation, ModeTemperature, ModeRenewable} {
		assert.NotNilf(t, d.Charts[m], "mode %s", m)
	}
}

func TestLineChartsKeepFullPrecision(t *testing.T) {
	view := Observations([]Observation{
		{Year: 2000, Country: "Chile", AvgTemperature: 12.125, CO2PerCapita: 4.0625, RenewablePct: 30.125, Population: 1},
		{Year: 2000, Country: "Peru", AvgTemperature: 18.0, CO2PerCapita: 2.0, RenewablePct: 40.0, Population: 1},
	})

	trends, err := BuildMode(ModeTrends, view)
	require.NoError(t, err)
	renew, err := BuildMode(ModeRenewable, view)
	require.NoError(t, err)

	assert.Equal(t, 15.0625, trends.Series[0].Data[0].Value)
	assert.Equal(t, 35.0625, renew.Series[0].Data[0].Value)
}

func TestBuildMode(t *testing.T) {
	view := sampleView()

	chart, err := BuildMode(ModeTemperature, view)
	require.NoError(t, err)
	assert.Equal(t, "heatmap", chart.ChartType)

	_, err = BuildMode(Mode("pie"), view)
	assert.True(t, errors.Is(err, ErrUnknownMode))

	_, err = BuildMode(ModeTrends, Observations(nil))
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestHeatmapColorRangeCoversFill(t *testing.T) {
	view := Observations([]Observation{
		{Year: 2000, Country: "Brazil", AvgTemperature: 25.0, Population: 1},
		{Year: 2001, Country: "Brazil", AvgTemperature: 25.2, Population: 1},
		{Year: 2001, Country: "India", AvgTemperature: 24.0, Population: 1},
	})

	chart, err := BuildMode(ModeTemperature, view)
	require.NoError(t, err)
	assert.Equal(t, &Range{Min: 0, Max: 25.2}, chart.ColorRange)

	full, err := BuildMode(ModeTemperature, FilterYear(view, 2001))
	require.NoError(t, err)
	assert.Equal(t, &Range{Min: 24.0, Max: 25.2}, full.ColorRange, "no missing cells")
}

func TestSummaryPeriod(t *testing.T) {
	assert.Equal(t, "No data", Summary{}.Period())
	assert.Equal(t, "2000 – 2000", Summary{Shown: 1, FirstYear: 2000, LastYear: 2000}.Period())
	assert.Equal(t, "2000 – 2002", Summary{Shown: 5, FirstYear: 2000, LastYear: 2002}.Period())
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
		assert.NotEmpty(t, m.Title())
	}
	_, err := ParseMode("Overview")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

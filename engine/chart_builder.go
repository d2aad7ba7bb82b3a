package engine

import (
	"math"
	"sort"
	"strconv"
)

// ============================================================================
// CHART BUILDER: Produces ChartConfig from Groups and views
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// DivergingScale names the cool-to-warm scale used for temperature colors.
const DivergingScale = "RdYlBu_r"

// ChartSpec describes a single-measure chart over aggregated groups.
type ChartSpec struct {
	Type        string // "line", "bar"
	Title       string
	GroupBy     string
	Measure     string
	Aggregation string
	Series      string
}

// BuildChart produces a ChartConfig from a ChartSpec and aggregated groups.
func BuildChart(spec ChartSpec, groups []Group) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}

	chartType := spec.Type
	if chartType == "" {
		chartType = "line"
	}

	config := &ChartConfig{
		ChartType:   chartType,
		Title:       spec.Title,
		XAxis:       LabelForKey(spec.GroupBy),
		YAxis:       LabelForKey(spec.Measure),
		ShowLegend:  false,
		ShowGrid:    true,
		ShowMarkers: chartType == "line",
	}

	name := spec.Series
	if name == "" {
		name = LabelForAggregation(spec.Aggregation)
	}
	config.Series = []ChartSeries{buildSingleSeries(groups, name)}
	config.Colors = assignColors(len(config.Series))
	return config
}

// ============================================================================
// CLIMATE CHARTS
// ============================================================================

// BuildTreemap sizes one tile per country by mean population and colors it
// by mean temperature. It returns nil when no country has a positive population.
func BuildTreemap(view RecordView) *ChartConfig {
	groups := GroupMeans(view, KeyCountry, KeyPopulation, KeyTemperature)
	if len(groups) == 0 {
		return nil
	}

	tiles := make([]TreemapTile, 0, len(groups))
	for _, g := range groups {
		tiles = append(tiles, TreemapTile{
			Label:      g.Label,
			Size:       g.Values[KeyPopulation],
			ColorValue: g.Values[KeyTemperature],
		})
	}

	laid := LayoutTreemap(tiles)
	if len(laid) == 0 {
		return nil
	}

	config := &ChartConfig{
		ChartType:  "treemap",
		Title:      "Population by Country, colored by Avg Temperature",
		Treemap:    laid,
		ColorScale: DivergingScale,
		ColorLabel: LabelForKey(KeyTemperature),
		ColorRange: colorRangeOf(tiles),
		ShowLegend: true,
	}
	return config
}

// BuildTimeSeries plots the yearly mean of each measure as its own line.
func BuildTimeSeries(view RecordView, title string, measures ...string) *ChartConfig {
	groups := GroupMeans(view, KeyYear, measures...)
	if len(groups) == 0 {
		return nil
	}

	config := &ChartConfig{
		ChartType:   "line",
		Title:       title,
		XAxis:       LabelForKey(KeyYear),
		ShowLegend:  len(measures) > 1,
		ShowGrid:    true,
		ShowMarkers: true,
	}
	if len(measures) == 1 {
		config.YAxis = LabelForKey(measures[0])
	} else {
		config.YAxis = "Yearly Mean"
	}

	for _, m := range measures {
		points := make([]ChartPoint, 0, len(groups))
		for _, g := range groups {
			x, _ := strconv.ParseFloat(g.Key, 64)
			points = append(points, ChartPoint{Label: g.Label, X: x, Value: g.Values[m]})
		}
		config.Series = append(config.Series, ChartSeries{Name: seriesName(m), Data: points})
	}
	config.Colors = assignColors(len(config.Series))
	for i := range config.Series {
		config.Series[i].Color = config.Colors[i]
	}
	return config
}

// BuildScatter plots CO2 against temperature for the latest year in view,
// one series per country, point size from population.
func BuildScatter(view RecordView) *ChartConfig {
	year, ok := LatestYear(view)
	if !ok {
		return nil
	}
	latest := FilterYear(view, year)

	byCountry := make(map[string][]ChartPoint)
	for i := 0; i < latest.Len(); i++ {
		country := latest.Dimension(i, KeyCountry)
		byCountry[country] = append(byCountry[country], ChartPoint{
			Label: country,
			X:     latest.Measure(i, KeyCO2),
			Value: latest.Measure(i, KeyTemperature),
			Size:  latest.Measure(i, KeyPopulation),
		})
	}

	countries := make([]string, 0, len(byCountry))
	for c := range byCountry {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	config := &ChartConfig{
		ChartType:  "scatter",
		Title:      "CO2 vs Temperature, " + strconv.Itoa(year),
		XAxis:      LabelForKey(KeyCO2),
		YAxis:      LabelForKey(KeyTemperature),
		ShowLegend: true,
		ShowGrid:   true,
	}
	config.Colors = assignColors(len(countries))
	for i, c := range countries {
		config.Series = append(config.Series, ChartSeries{
			Name:  c,
			Data:  byCountry[c],
			Color: config.Colors[i],
		})
	}
	return config
}

// BuildHeatmap pivots mean temperature into a country×year grid.
// Missing cells are zero.
func BuildHeatmap(view RecordView) *ChartConfig {
	m := Pivot(view, KeyCountry, KeyYear, KeyTemperature, 0)
	if len(m.RowLabels) == 0 {
		return nil
	}

	// Missing cells are drawn at Fill, so the scale spans them too.
	lo, hi := m.Values[0][0], m.Values[0][0]
	for _, row := range m.Values {
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	return &ChartConfig{
		ChartType:  "heatmap",
		Title:      "Avg Temperature by Country and Year",
		XAxis:      LabelForKey(KeyYear),
		YAxis:      LabelForKey(KeyCountry),
		Heatmap:    m,
		ColorScale: DivergingScale,
		ColorLabel: LabelForKey(KeyTemperature),
		ColorRange: &Range{Min: lo, Max: hi},
		ShowLegend: true,
	}
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(groups []Group, seriesName string) ChartSeries {
	if seriesName == "" {
		seriesName = "Value"
	}

	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		x, _ := strconv.ParseFloat(g.Key, 64)
		points = append(points, ChartPoint{
			Label: g.Label,
			X:     x,
			Value: g.Value,
		})
	}
	return ChartSeries{Name: seriesName, Data: points}
}

func seriesName(measure string) string {
	switch measure {
	case KeyTemperature:
		return "Temperature"
	case KeyCO2:
		return "CO2"
	case KeyRenewable:
		return "Renewable Energy"
	}
	return LabelForKey(measure)
}

func colorRangeOf(tiles []TreemapTile) *Range {
	if len(tiles) == 0 {
		return nil
	}
	r := Range{Min: tiles[0].ColorValue, Max: tiles[0].ColorValue}
	for _, t := range tiles[1:] {
		if t.ColorValue < r.Min {
			r.Min = t.ColorValue
		}
		if t.ColorValue > r.Max {
			r.Max = t.ColorValue
		}
	}
	return &r
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}

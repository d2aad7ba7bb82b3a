package engine

import "math"

// ============================================================================
// CLIMADASH ENGINE TYPES
// ============================================================================
// Observation is the only typed row. Every computation reads it through
// RecordView using the keys below, so filters, groupings and charts stay
// generic over dimension/measure names.
// ============================================================================

// Dimension and measure keys for climate observations.
const (
	KeyYear        = "year"
	KeyCountry     = "country"
	KeyTemperature = "avg_temperature_degc"
	KeyCO2         = "co2_emissions_tons_per_capita"
	KeyRenewable   = "renewable_energy_pct"
	KeyEvents      = "extreme_weather_events"
	KeyPopulation  = "population"
)

// AllCountries is the selection sentinel that disables a dimension clause.
const AllCountries = "All Countries"

// ============================================================================
// OBSERVATION: one (Country, Year) row
// ============================================================================

// Observation is a single (Country, Year) climate record. Loaded rows are
// never mutated; filtering produces index views over them.
type Observation struct {
	Year           int     `json:"year"`
	Country        string  `json:"country"`
	AvgTemperature float64 `json:"avgTemperature"`
	CO2PerCapita   float64 `json:"co2PerCapita"`
	RenewablePct   float64 `json:"renewablePct"`
	ExtremeEvents  int     `json:"extremeEvents"`
	Population     int64   `json:"population"`
}

// ============================================================================
// FILTERS
// ============================================================================

// Range is an inclusive [Min, Max] interval over a measure.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in [Min, Max]. NaN never matches.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Valid reports whether neither bound is NaN and Min <= Max.
func (r Range) Valid() bool {
	return !math.IsNaN(r.Min) && !math.IsNaN(r.Max) && r.Min <= r.Max
}

// Filters define which records to include.
// Dimensions: OR within a key, AND across keys. Empty = all.
// Ranges: inclusive bounds on measures, AND-combined.
type Filters struct {
	Dimensions map[string][]string `json:"dimensions,omitempty"`
	Ranges     map[string]Range    `json:"ranges,omitempty"`
}

// HasFilter returns true if a specific dimension restricts rows.
func (f Filters) HasFilter(dimension string) bool {
	if f.Dimensions == nil {
		return false
	}
	vals, ok := f.Dimensions[dimension]
	return ok && len(vals) > 0 && !containsWildcard(vals)
}

// IsEmpty returns true if no filter restricts rows.
func (f Filters) IsEmpty() bool {
	if len(f.Ranges) > 0 {
		return false
	}
	for dim := range f.Dimensions {
		if f.HasFilter(dim) {
			return false
		}
	}
	return true
}

// Bounds holds the observed extent of every range-filterable measure.
// It doubles as the default filter state: everything selected.
type Bounds struct {
	YearMin  int     `json:"yearMin"`
	YearMax  int     `json:"yearMax"`
	TempMin  float64 `json:"tempMin"`
	TempMax  float64 `json:"tempMax"`
	CO2Min   float64 `json:"co2Min"`
	CO2Max   float64 `json:"co2Max"`
	RenewMin float64 `json:"renewMin"`
	RenewMax float64 `json:"renewMax"`
}

// ClimateFilters is the typed dashboard filter state.
type ClimateFilters struct {
	Bounds
	Countries []string `json:"countries"`
}

// ============================================================================
// GROUP: Intermediate computation result
// ============================================================================

// Group represents a grouped/aggregated result.
// Builders convert these into ChartConfig or TableData.
type Group struct {
	Key       string             `json:"key"`
	Label     string             `json:"label"`
	Value     float64            `json:"value"`
	Values    map[string]float64 `json:"values,omitempty"` // per-measure aggregates
	Count     int                `json:"count"`
	SubGroups []Group            `json:"subGroups,omitempty"`
	View      RecordView         `json:"-"` // records in this group (zero-copy)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
// Line and scatter charts use Series; heatmaps use Heatmap; treemaps use Treemap.
type ChartConfig struct {
	ChartType   string        `json:"chartType"` // "line", "scatter", "heatmap", "treemap"
	Title       string        `json:"title"`
	XAxis       string        `json:"xAxis,omitempty"`
	YAxis       string        `json:"yAxis,omitempty"`
	Series      []ChartSeries `json:"series,omitempty"`
	Heatmap     *Matrix       `json:"heatmap,omitempty"`
	Treemap     []TreemapTile `json:"treemap,omitempty"`
	ColorScale  string        `json:"colorScale,omitempty"`
	ColorLabel  string        `json:"colorLabel,omitempty"`
	ColorRange  *Range        `json:"colorRange,omitempty"`
	Colors      []string      `json:"colors,omitempty"`
	ShowLegend  bool          `json:"showLegend"`
	ShowGrid    bool          `json:"showGrid"`
	ShowMarkers bool          `json:"showMarkers,omitempty"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point. Value is the y coordinate.
type ChartPoint struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Value float64 `json:"value"`
	Size  float64 `json:"size,omitempty"`
}

// TreemapTile is one laid-out rectangle in the unit square.
type TreemapTile struct {
	Label      string  `json:"label"`
	Size       float64 `json:"size"`
	ColorValue float64 `json:"colorValue"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	W          float64 `json:"w"`
	H          float64 `json:"h"`
}

// Matrix is a row×column pivot. Present marks cells backed by data;
// the rest hold Fill.
type Matrix struct {
	RowKey    string      `json:"rowKey"`
	ColKey    string      `json:"colKey"`
	RowLabels []string    `json:"rows"`
	ColLabels []string    `json:"columns"`
	Values    [][]float64 `json:"values"`
	Present   [][]bool    `json:"present"`
	Fill      float64     `json:"fill"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title     string       `json:"title"`
	Columns   []Column     `json:"columns"`
	Rows      [][]string   `json:"rows"`
	TotalRows int          `json:"totalRows"`
	Footer    *TableFooter `json:"footer,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// TableFooter provides totals or aggregations for a table.
type TableFooter struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

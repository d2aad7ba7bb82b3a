package schema

import "github.com/spektr-org/climadash/engine"

// ============================================================================
// CLIMATE SCHEMA: fixed seven-column layout
// ============================================================================
// Year is registered twice: as a dimension for grouping, and as a measure
// so it can be range-filtered and used as the regression x axis.
// ============================================================================

// Climate returns the schema of the climate observation CSV.
func Climate() Config {
	zero, hundred := 0.0, 100.0

	return Config{
		Name:        "climate",
		Version:     "1",
		Description: "Per-country yearly climate indicators",
		Columns: []ColumnMeta{
			{Header: "Year", Key: engine.KeyYear, Kind: KindInteger},
			{Header: "Country", Key: engine.KeyCountry, Kind: KindText},
			{Header: "Avg_Temperature_degC", Key: engine.KeyTemperature, Kind: KindFloat},
			{Header: "CO2_Emissions_tons_per_capita", Key: engine.KeyCO2, Kind: KindFloat},
			{Header: "Renewable_Energy_pct", Key: engine.KeyRenewable, Kind: KindFloat},
			{Header: "Extreme_Weather_Events", Key: engine.KeyEvents, Kind: KindInteger},
			{Header: "Population", Key: engine.KeyPopulation, Kind: KindInteger},
		},
		Dimensions: []DimensionMeta{
			{
				Key:           engine.KeyYear,
				DisplayName:   "Year",
				Groupable:     true,
				Filterable:    true,
				IsTemporal:    true,
				TemporalOrder: "chronological",
			},
			{
				Key:         engine.KeyCountry,
				DisplayName: "Country",
				Groupable:   true,
				Filterable:  true,
			},
		},
		Measures: []MeasureMeta{
			{
				Key:                engine.KeyYear,
				DisplayName:        "Year Range",
				Kind:               KindInteger,
				DefaultAggregation: "min",
				Format:             "%.0f",
			},
			{
				Key:                engine.KeyTemperature,
				DisplayName:        "Temperature (°C)",
				Unit:               "°C",
				Kind:               KindFloat,
				DefaultAggregation: "avg",
				Format:             "%.1f",
			},
			{
				Key:                engine.KeyCO2,
				DisplayName:        "CO2 (tons/capita)",
				Unit:               "t/capita",
				Kind:               KindFloat,
				Min:                &zero,
				DefaultAggregation: "avg",
				Format:             "%.2f",
			},
			{
				Key:                engine.KeyRenewable,
				DisplayName:        "Renewable Energy (% of total)",
				Unit:               "%",
				Kind:               KindFloat,
				Min:                &zero,
				Max:                &hundred,
				DefaultAggregation: "avg",
				Format:             "%.1f",
			},
			{
				Key:                engine.KeyEvents,
				DisplayName:        "Extreme Weather Events",
				Unit:               "events",
				Kind:               KindInteger,
				Min:                &zero,
				DefaultAggregation: "sum",
				Format:             "%.0f",
			},
			{
				Key:                engine.KeyPopulation,
				DisplayName:        "Population",
				Kind:               KindInteger,
				Min:                &zero,
				DefaultAggregation: "avg",
				Format:             "%.0f",
			},
		},
	}
}

package engine

// ============================================================================
// SHARED FIXTURES
// ============================================================================
// Three countries over 2000–2002. India has no 2001 row, which leaves a
// hole in the country×year pivot.
// ============================================================================

func sampleObservations() []Observation {
	return []Observation{
		{Year: 2000, Country: "Brazil", AvgTemperature: 25.0, CO2PerCapita: 2.0, RenewablePct: 45.0, ExtremeEvents: 5, Population: 170_000_000},
		{Year: 2001, Country: "Brazil", AvgTemperature: 25.2, CO2PerCapita: 2.1, RenewablePct: 46.0, ExtremeEvents: 6, Population: 172_000_000},
		{Year: 2002, Country: "Brazil", AvgTemperature: 25.4, CO2PerCapita: 2.2, RenewablePct: 47.0, ExtremeEvents: 7, Population: 174_000_000},
		{Year: 2000, Country: "Canada", AvgTemperature: -5.0, CO2PerCapita: 15.0, RenewablePct: 60.0, ExtremeEvents: 2, Population: 30_000_000},
		{Year: 2001, Country: "Canada", AvgTemperature: -4.8, CO2PerCapita: 15.5, RenewablePct: 61.0, ExtremeEvents: 3, Population: 31_000_000},
		{Year: 2002, Country: "Canada", AvgTemperature: -4.6, CO2PerCapita: 16.0, RenewablePct: 62.0, ExtremeEvents: 4, Population: 32_000_000},
		{Year: 2000, Country: "India", AvgTemperature: 24.0, CO2PerCapita: 1.0, RenewablePct: 20.0, ExtremeEvents: 8, Population: 1_000_000_000},
		{Year: 2002, Country: "India", AvgTemperature: 24.5, CO2PerCapita: 1.2, RenewablePct: 22.0, ExtremeEvents: 10, Population: 1_050_000_000},
	}
}

func sampleView() RecordView {
	return Observations(sampleObservations())
}

// satisfies is the row predicate written out longhand.
func satisfies(f ClimateFilters, o Observation) bool {
	if o.Year < f.YearMin || o.Year > f.YearMax {
		return false
	}
	if o.AvgTemperature < f.TempMin || o.AvgTemperature > f.TempMax {
		return false
	}
	if o.CO2PerCapita < f.CO2Min || o.CO2PerCapita > f.CO2Max {
		return false
	}
	if o.RenewablePct < f.RenewMin || o.RenewablePct > f.RenewMax {
		return false
	}
	if len(f.Countries) == 0 {
		return true
	}
	for _, c := range f.Countries {
		if c == AllCountries || c == o.Country {
			return true
		}
	}
	return false
}

package engine

import (
	"sort"
)

// ============================================================================
// FILTERS: Dimension sets and inclusive measure ranges via RecordView
// ============================================================================
// Single-pass filter: checks ALL constraints per record in one loop.
// Returns a SubView (index list into parent), zero data copy.
// ============================================================================

// ApplyFilters returns a view of records matching every filter.
// Dimensions are AND-combined; values within a dimension are OR-combined
// and matched exactly. A selection containing AllCountries, or an empty
// selection, places no restriction. Range bounds are inclusive.
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if filters.IsEmpty() {
		return view
	}

	sets := make(map[string]map[string]bool)
	for dim, allowed := range filters.Dimensions {
		if len(allowed) > 0 && !containsWildcard(allowed) {
			sets[dim] = toSet(allowed)
		}
	}

	// Stable key order keeps the loop deterministic.
	rangeKeys := make([]string, 0, len(filters.Ranges))
	for key := range filters.Ranges {
		rangeKeys = append(rangeKeys, key)
	}
	sort.Strings(rangeKeys)

	if len(sets) == 0 && len(rangeKeys) == 0 {
		return view
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if matches(view, i, sets, rangeKeys, filters.Ranges) {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

func matches(view RecordView, i int, sets map[string]map[string]bool, rangeKeys []string, ranges map[string]Range) bool {
	for _, key := range rangeKeys {
		if !ranges[key].Contains(view.Measure(i, key)) {
			return false
		}
	}
	for dim, set := range sets {
		if !set[view.Dimension(i, dim)] {
			return false
		}
	}
	return true
}

// FilterYear returns the rows whose year equals y.
func FilterYear(view RecordView, y int) RecordView {
	return ApplyFilters(view, Filters{
		Ranges: map[string]Range{KeyYear: {Min: float64(y), Max: float64(y)}},
	})
}

// ============================================================================
// CLIMATE FILTERS
// ============================================================================

// DefaultFilters selects everything within the observed bounds.
func DefaultFilters(b Bounds) ClimateFilters {
	return ClimateFilters{Bounds: b, Countries: []string{AllCountries}}
}

// Engine converts the typed dashboard filter into generic Filters.
func (f ClimateFilters) Engine() Filters {
	out := Filters{
		Ranges: map[string]Range{
			KeyYear:        {Min: float64(f.YearMin), Max: float64(f.YearMax)},
			KeyTemperature: {Min: f.TempMin, Max: f.TempMax},
			KeyCO2:         {Min: f.CO2Min, Max: f.CO2Max},
			KeyRenewable:   {Min: f.RenewMin, Max: f.RenewMax},
		},
	}
	if len(f.Countries) > 0 && !containsWildcard(f.Countries) {
		out.Dimensions = map[string][]string{KeyCountry: f.Countries}
	}
	return out
}

// Apply filters a view with the typed dashboard filter.
func (f ClimateFilters) Apply(view RecordView) RecordView {
	return ApplyFilters(view, f.Engine())
}

// ComputeBounds returns the extent of every range-filterable measure.
// An empty view yields zero bounds.
func ComputeBounds(view RecordView) Bounds {
	if view.Len() == 0 {
		return Bounds{}
	}
	return Bounds{
		YearMin:  int(MinMeasure(view, KeyYear)),
		YearMax:  int(MaxMeasure(view, KeyYear)),
		TempMin:  MinMeasure(view, KeyTemperature),
		TempMax:  MaxMeasure(view, KeyTemperature),
		CO2Min:   MinMeasure(view, KeyCO2),
		CO2Max:   MaxMeasure(view, KeyCO2),
		RenewMin: MinMeasure(view, KeyRenewable),
		RenewMax: MaxMeasure(view, KeyRenewable),
	}
}

// toSet converts a string slice to a lookup set.
func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func containsWildcard(items []string) bool {
	for _, item := range items {
		if item == AllCountries {
			return true
		}
	}
	return false
}

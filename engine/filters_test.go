package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterCases(b Bounds) map[string]ClimateFilters {
	narrow := DefaultFilters(b)
	narrow.YearMin, narrow.YearMax = 2001, 2002
	narrow.TempMin, narrow.TempMax = -4.8, 25.2

	countries := DefaultFilters(b)
	countries.Countries = []string{"Brazil", "India"}

	renew := DefaultFilters(b)
	renew.RenewMin, renew.RenewMax = 46, 61
	renew.CO2Min = 2.1

	none := DefaultFilters(b)
	none.Countries = []string{"Atlantis"}

	return map[string]ClimateFilters{
		"default":   DefaultFilters(b),
		"narrow":    narrow,
		"countries": countries,
		"renewable": renew,
		"none":      none,
	}
}

func TestApplyFiltersInclusiveBounds(t *testing.T) {
	view := sampleView()
	f := filterCases(ComputeBounds(view))["narrow"]

	got := CollectObservations(f.Apply(view))
	require.Len(t, got, 4)

	// -4.8 and 25.2 sit exactly on the bounds and must be kept.
	temps := make([]float64, len(got))
	for i, o := range got {
		temps[i] = o.AvgTemperature
	}
	assert.Contains(t, temps, -4.8)
	assert.Contains(t, temps, 25.2)
}

func TestApplyFiltersEveryRowSatisfiesPredicate(t *testing.T) {
	rows := sampleObservations()
	view := Observations(rows)

	for name, f := range filterCases(ComputeBounds(view)) {
		t.Run(name, func(t *testing.T) {
			filtered := f.Apply(view)

			want := 0
			for _, o := range rows {
				if satisfies(f, o) {
					want++
				}
			}
			require.Equal(t, want, filtered.Len())

			for i := 0; i < filtered.Len(); i++ {
				o := ObservationAt(filtered, i)
				assert.Truef(t, satisfies(f, o), "row %+v escaped filter", o)
			}
		})
	}
}

func TestApplyFiltersIdempotent(t *testing.T) {
	view := sampleView()

	for name, f := range filterCases(ComputeBounds(view)) {
		t.Run(name, func(t *testing.T) {
			once := f.Apply(view)
			twice := f.Apply(once)
			if diff := cmp.Diff(CollectObservations(once), CollectObservations(twice)); diff != "" {
				t.Errorf("second pass changed the result (-once +twice):\n%s", diff)
			}
		})
	}
}

func TestApplyFiltersDoesNotMutateSource(t *testing.T) {
	rows := sampleObservations()
	before := append([]Observation(nil), rows...)

	f := filterCases(ComputeBounds(Observations(rows)))["narrow"]
	_ = CollectObservations(f.Apply(Observations(rows)))

	assert.Equal(t, before, rows)
}

func TestAllCountriesSentinel(t *testing.T) {
	view := sampleView()
	b := ComputeBounds(view)

	f := DefaultFilters(b)
	f.Countries = []string{"Brazil", AllCountries}
	assert.Equal(t, view.Len(), f.Apply(view).Len(), "sentinel should disable the country clause")

	f.Countries = nil
	assert.Equal(t, view.Len(), f.Apply(view).Len(), "empty selection should not restrict")

	f.Countries = []string{"brazil"}
	assert.Equal(t, 0, f.Apply(view).Len(), "country match is exact")

	assert.False(t, Filters{Dimensions: map[string][]string{KeyCountry: {AllCountries}}}.HasFilter(KeyCountry))
}

func TestInvertedRangeMatchesNothing(t *testing.T) {
	view := sampleView()
	got := ApplyFilters(view, Filters{Ranges: map[string]Range{KeyTemperature: {Min: 10, Max: 0}}})
	assert.Equal(t, 0, got.Len())
	assert.False(t, Range{Min: 10, Max: 0}.Valid())
}

func TestEmptyFiltersReturnSameView(t *testing.T) {
	view := sampleView()
	assert.Same(t, view, ApplyFilters(view, Filters{}))
}

func TestComputeBounds(t *testing.T) {
	b := ComputeBounds(sampleView())
	assert.Equal(t, Bounds{
		YearMin: 2000, YearMax: 2002,
		TempMin: -5.0, TempMax: 25.4,
		CO2Min: 1.0, CO2Max: 16.0,
		RenewMin: 20.0, RenewMax: 62.0,
	}, b)

	assert.Equal(t, Bounds{}, ComputeBounds(Observations(nil)))
}

func TestFilterYearFlattensSubViews(t *testing.T) {
	view := sampleView()
	brazil := ApplyFilters(view, Filters{Dimensions: map[string][]string{KeyCountry: {"Brazil"}}})
	latest := FilterYear(brazil, 2002)

	require.Equal(t, 1, latest.Len())
	sv, ok := latest.(*SubView)
	require.True(t, ok)
	_, nested := sv.parent.(*SubView)
	assert.False(t, nested)
	assert.Equal(t, 25.4, ObservationAt(latest, 0).AvgTemperature)
}

package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ============================================================================
// TREND STATISTICS
// ============================================================================
// Least-squares slopes against Year and the CO2/temperature Pearson
// correlation. Nothing is computed for one row or fewer, and a statistic
// whose inputs have no variance is left nil instead of carrying NaN.
// ============================================================================

// NotEnoughDataNotice is shown instead of insights for one row or fewer.
const NotEnoughDataNotice = "Not enough data for insights"

// Insights holds the trend statistics of a filtered view.
// A nil field means the statistic is undefined for this view.
type Insights struct {
	Rows               int      `json:"rows"`
	WarmingPerDecade   *float64 `json:"warmingPerDecade,omitempty"`
	RenewablePerYear   *float64 `json:"renewablePerYear,omitempty"`
	CO2TempCorrelation *float64 `json:"co2TempCorrelation,omitempty"`
	EventsPerYear      *float64 `json:"eventsPerYear,omitempty"`
}

// ComputeInsights returns nil when the view has one row or fewer.
func ComputeInsights(view RecordView) *Insights {
	n := view.Len()
	if n <= 1 {
		return nil
	}

	years := column(view, KeyYear)
	temp := column(view, KeyTemperature)

	in := &Insights{Rows: n}
	if s, ok := Slope(years, temp); ok {
		in.WarmingPerDecade = ptr(s * 10)
	}
	if s, ok := Slope(years, column(view, KeyRenewable)); ok {
		in.RenewablePerYear = ptr(s)
	}
	if r, ok := Correlation(column(view, KeyCO2), temp); ok {
		in.CO2TempCorrelation = ptr(r)
	}
	if s, ok := Slope(years, column(view, KeyEvents)); ok {
		in.EventsPerYear = ptr(s)
	}
	return in
}

// Lines renders the insights the way the dashboard shows them.
func (in *Insights) Lines() []string {
	if in == nil {
		return []string{NotEnoughDataNotice}
	}
	var lines []string
	if in.WarmingPerDecade != nil {
		lines = append(lines, fmt.Sprintf("Temperature warming rate: %.2f°C per decade", *in.WarmingPerDecade))
	}
	if in.RenewablePerYear != nil {
		lines = append(lines, fmt.Sprintf("Renewable energy growth: %.2f%% per year", *in.RenewablePerYear))
	}
	if in.CO2TempCorrelation != nil {
		lines = append(lines, fmt.Sprintf("CO2 vs Temperature correlation: %.3f", *in.CO2TempCorrelation))
	}
	if in.EventsPerYear != nil {
		lines = append(lines, fmt.Sprintf("Extreme weather trend: %.2f events per year", *in.EventsPerYear))
	}
	if len(lines) == 0 {
		return []string{NotEnoughDataNotice}
	}
	return lines
}

// Slope fits y = a + b·x by least squares and returns b.
// ok is false for fewer than two points or when x has no spread.
func Slope(x, y []float64) (float64, bool) {
	if len(x) < 2 || len(x) != len(y) || !hasSpread(x) {
		return 0, false
	}
	_, beta := stat.LinearRegression(x, y, nil, false)
	return beta, isFinite(beta)
}

// Correlation returns the Pearson correlation of x and y.
// ok is false for fewer than two points or when either side is constant.
func Correlation(x, y []float64) (float64, bool) {
	if len(x) < 2 || len(x) != len(y) || !hasSpread(x) || !hasSpread(y) {
		return 0, false
	}
	r := stat.Correlation(x, y, nil)
	return r, isFinite(r)
}

func column(view RecordView, key string) []float64 {
	out := make([]float64, view.Len())
	for i := range out {
		out[i] = view.Measure(i, key)
	}
	return out
}

func hasSpread(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return true
		}
	}
	return false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ptr(v float64) *float64 { return &v }

package engine

import (
	"fmt"
)

// ============================================================================
// TEXT BUILDER: Summary panel
// ============================================================================

// Summary describes the filtered view relative to the full dataset.
type Summary struct {
	Shown     int     `json:"shown"`
	Total     int     `json:"total"`
	FirstYear int     `json:"firstYear,omitempty"`
	LastYear  int     `json:"lastYear,omitempty"`
	Countries int     `json:"countries"`
	TempMin   float64 `json:"tempMin,omitempty"`
	TempMax   float64 `json:"tempMax,omitempty"`
}

// BuildSummary summarizes filtered against the full dataset.
func BuildSummary(total, filtered RecordView) Summary {
	s := Summary{
		Shown:     filtered.Len(),
		Total:     total.Len(),
		Countries: len(UniqueValues(filtered, KeyCountry)),
	}
	if filtered.Len() == 0 {
		return s
	}
	s.FirstYear = int(MinMeasure(filtered, KeyYear))
	s.LastYear = int(MaxMeasure(filtered, KeyYear))
	s.TempMin = MinMeasure(filtered, KeyTemperature)
	s.TempMax = MaxMeasure(filtered, KeyTemperature)
	return s
}

// Period renders the covered years, e.g. "2000 – 2020".
func (s Summary) Period() string {
	if s.Shown == 0 {
		return "No data"
	}
	return fmt.Sprintf("%d – %d", s.FirstYear, s.LastYear)
}

// Lines renders the summary panel.
func (s Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("Showing %s of %s records", FormatInt(s.Shown), FormatInt(s.Total)),
	}
	if s.Shown == 0 {
		return append(lines, fmt.Sprintf("Countries: %d selected", s.Countries))
	}
	return append(lines,
		fmt.Sprintf("Time period: %s", s.Period()),
		fmt.Sprintf("Countries: %d selected", s.Countries),
		fmt.Sprintf("Temperature range: %.1f°C – %.1f°C", s.TempMin, s.TempMax),
	)
}

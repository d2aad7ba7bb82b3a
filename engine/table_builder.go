package engine

import (
	"fmt"
	"strconv"
)

// ============================================================================
// TABLE BUILDER: Produces TableData from views and Groups
// ============================================================================

var observationColumns = []Column{
	{Key: KeyYear, Label: "Year", Type: "number", Align: "center"},
	{Key: KeyCountry, Label: "Country", Type: "text", Align: "left"},
	{Key: KeyTemperature, Label: LabelForKey(KeyTemperature), Type: "number", Align: "right"},
	{Key: KeyCO2, Label: LabelForKey(KeyCO2), Type: "number", Align: "right"},
	{Key: KeyRenewable, Label: LabelForKey(KeyRenewable), Type: "number", Align: "right"},
	{Key: KeyEvents, Label: LabelForKey(KeyEvents), Type: "number", Align: "right"},
	{Key: KeyPopulation, Label: LabelForKey(KeyPopulation), Type: "number", Align: "right"},
}

// ============================================================================
// LIST TABLE: Row per record
// ============================================================================

// BuildTable lists up to limit rows of the view (0 = all).
func BuildTable(title string, view RecordView, limit int) *TableData {
	n := view.Len()
	shown := n
	if limit > 0 && shown > limit {
		shown = limit
	}

	rows := make([][]string, 0, shown)
	for i := 0; i < shown; i++ {
		o := ObservationAt(view, i)
		rows = append(rows, []string{
			strconv.Itoa(o.Year),
			o.Country,
			fmt.Sprintf("%.2f", o.AvgTemperature),
			fmt.Sprintf("%.2f", o.CO2PerCapita),
			fmt.Sprintf("%.1f", o.RenewablePct),
			strconv.Itoa(o.ExtremeEvents),
			FormatInt(int(o.Population)),
		})
	}

	table := &TableData{
		Title:     title,
		Columns:   observationColumns,
		Rows:      rows,
		TotalRows: n,
	}
	if shown < n {
		table.Footer = &TableFooter{
			Label:  fmt.Sprintf("Showing %s of %s rows", FormatInt(shown), FormatInt(n)),
			Values: map[string]string{},
		}
	}
	return table
}

// ============================================================================
// AGGREGATED TABLE: Yearly means
// ============================================================================

var yearlyMeasures = []string{KeyTemperature, KeyCO2, KeyRenewable, KeyEvents, KeyPopulation}

// BuildYearlyTable lists the per-year mean of every numeric indicator.
func BuildYearlyTable(view RecordView) *TableData {
	groups := GroupMeans(view, KeyYear, yearlyMeasures...)

	columns := []Column{{Key: KeyYear, Label: "Year", Type: "number", Align: "center"}}
	for _, m := range yearlyMeasures {
		columns = append(columns, Column{Key: m, Label: "Mean " + LabelForKey(m), Type: "number", Align: "right"})
	}
	columns = append(columns, Column{Key: "count", Label: "Rows", Type: "number", Align: "center"})

	rows := make([][]string, 0, len(groups))
	var totalCount int
	for _, g := range groups {
		row := []string{g.Label}
		for _, m := range yearlyMeasures {
			row = append(row, fmt.Sprintf("%.2f", g.Values[m]))
		}
		row = append(row, strconv.Itoa(g.Count))
		rows = append(rows, row)
		totalCount += g.Count
	}

	table := &TableData{
		Title:     "Yearly Means",
		Columns:   columns,
		Rows:      rows,
		TotalRows: len(rows),
	}
	if len(groups) > 0 {
		table.Footer = &TableFooter{
			Label:  "Total",
			Values: map[string]string{"count": strconv.Itoa(totalCount)},
		}
	}
	return table
}

package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// AGGREGATORS: Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView for zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
// ============================================================================

// GroupAndAggregate is the main entry point for the aggregation pipeline.
// Pipeline: group → aggregate → sort → limit.
func GroupAndAggregate(
	view RecordView,
	groupBy []string,
	measure string,
	aggregation string,
	sortBy string,
	limit int,
) []Group {
	if view.Len() == 0 {
		return nil
	}

	// 1. Group
	var groups []Group
	if len(groupBy) == 0 {
		groups = []Group{{
			Key:   "all",
			Label: "Total",
			View:  view,
		}}
	} else if len(groupBy) == 1 {
		groups = groupBySingle(view, groupBy[0])
	} else {
		groups = groupByMulti(view, groupBy)
	}

	// 2. Aggregate
	for i := range groups {
		aggregateGroup(&groups[i], measure, aggregation)
		for j := range groups[i].SubGroups {
			aggregateGroup(&groups[i].SubGroups[j], measure, aggregation)
		}
	}

	// 3. Sort
	SortGroups(groups, sortBy)
	for i := range groups {
		SortGroups(groups[i].SubGroups, sortBy)
	}

	// 4. Limit
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	return groups
}

// GroupMeans groups by one dimension and averages each listed measure.
// Group.Values holds one mean per measure; Group.Value is the first.
// Groups come back in key order (numeric when every key is a number).
func GroupMeans(view RecordView, dimension string, measures ...string) []Group {
	if view.Len() == 0 {
		return nil
	}

	groups := groupBySingle(view, dimension)
	for i := range groups {
		g := &groups[i]
		g.Count = g.View.Len()
		g.Values = make(map[string]float64, len(measures))
		for _, m := range measures {
			g.Values[m] = AvgMeasure(g.View, m)
		}
		if len(measures) > 0 {
			g.Value = g.Values[measures[0]]
		}
	}

	SortGroups(groups, "key_asc")
	return groups
}

// Pivot averages measure per (rowDim, colDim) cell. Missing cells hold fill.
// Rows and columns are in key order.
func Pivot(view RecordView, rowDim, colDim, measure string, fill float64) *Matrix {
	m := &Matrix{RowKey: rowDim, ColKey: colDim, Fill: fill}
	groups := GroupAndAggregate(view, []string{rowDim, colDim}, measure, "avg", "key_asc", 0)
	if len(groups) == 0 {
		return m
	}

	seen := make(map[string]bool)
	for _, g := range groups {
		m.RowLabels = append(m.RowLabels, g.Label)
		for _, sg := range g.SubGroups {
			if !seen[sg.Key] {
				seen[sg.Key] = true
				m.ColLabels = append(m.ColLabels, sg.Key)
			}
		}
	}
	sortKeys(m.ColLabels)

	colIndex := make(map[string]int, len(m.ColLabels))
	for i, c := range m.ColLabels {
		colIndex[c] = i
	}

	m.Values = make([][]float64, len(groups))
	m.Present = make([][]bool, len(groups))
	for r, g := range groups {
		m.Values[r] = make([]float64, len(m.ColLabels))
		m.Present[r] = make([]bool, len(m.ColLabels))
		for c := range m.Values[r] {
			m.Values[r][c] = fill
		}
		for _, sg := range g.SubGroups {
			c := colIndex[sg.Key]
			m.Values[r][c] = sg.Value
			m.Present[r][c] = true
		}
	}
	return m
}

// LatestYear returns the largest year in the view, or false when empty.
func LatestYear(view RecordView) (int, bool) {
	if view.Len() == 0 {
		return 0, false
	}
	return int(MaxMeasure(view, KeyYear)), true
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBySingle(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

func groupByMulti(view RecordView, dimensions []string) []Group {
	if len(dimensions) < 2 {
		return groupBySingle(view, dimensions[0])
	}

	primaryGroups := groupBySingle(view, dimensions[0])
	for i := range primaryGroups {
		primaryGroups[i].SubGroups = groupBySingle(primaryGroups[i].View, dimensions[1])
	}
	return primaryGroups
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(group *Group, measure string, aggregation string) {
	group.Count = group.View.Len()
	if group.Count == 0 {
		return
	}

	switch aggregation {
	case "sum":
		group.Value = SumMeasure(group.View, measure)
	case "count":
		group.Value = float64(group.Count)
	case "avg":
		group.Value = AvgMeasure(group.View, measure)
	default:
		group.Value = SumMeasure(group.View, measure)
	}
}

// SumMeasure sums a named measure across a view.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Measure(i, measure)
	}
	return total
}

// AvgMeasure computes average of a named measure.
func AvgMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	return SumMeasure(view, measure) / float64(n)
}

// MaxMeasure returns the largest value of a named measure.
func MaxMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	m := math.Inf(-1)
	for i := 0; i < n; i++ {
		if v := view.Measure(i, measure); v > m {
			m = v
		}
	}
	return m
}

// MinMeasure returns the smallest value of a named measure.
func MinMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	m := math.Inf(1)
	for i := 0; i < n; i++ {
		if v := view.Measure(i, measure); v < m {
			m = v
		}
	}
	return m
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts aggregate groups by the specified sort mode.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case "value_desc":
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	case "key_asc":
		numeric := allNumeric(groupKeys(groups))
		sort.SliceStable(groups, func(i, j int) bool { return keyLess(groups[i].Key, groups[j].Key, numeric) })
	default:
		// preserve grouping order
	}
}

// sortKeys orders keys numerically when all parse as numbers, else lexically.
func sortKeys(keys []string) {
	numeric := allNumeric(keys)
	sort.SliceStable(keys, func(i, j int) bool { return keyLess(keys[i], keys[j], numeric) })
}

func keyLess(a, b string, numeric bool) bool {
	if numeric {
		fa, _ := strconv.ParseFloat(a, 64)
		fb, _ := strconv.ParseFloat(b, 64)
		return fa < fb
	}
	return a < b
}

func allNumeric(keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	for _, k := range keys {
		if _, err := strconv.ParseFloat(k, 64); err != nil {
			return false
		}
	}
	return true
}

func groupKeys(groups []Group) []string {
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return keys
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// UniqueValues returns distinct values for a dimension across a view,
// in first-seen order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// LabelForKey returns a display label for a dimension or measure key.
func LabelForKey(key string) string {
	switch key {
	case KeyYear:
		return "Year"
	case KeyCountry:
		return "Country"
	case KeyTemperature:
		return "Avg Temperature (°C)"
	case KeyCO2:
		return "CO2 (tons/capita)"
	case KeyRenewable:
		return "Renewable Energy (%)"
	case KeyEvents:
		return "Extreme Weather Events"
	case KeyPopulation:
		return "Population"
	}
	if len(key) == 0 {
		return ""
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

// LabelForAggregation returns a human-readable label for an aggregation type.
func LabelForAggregation(aggregation string) string {
	switch aggregation {
	case "sum":
		return "Total"
	case "count":
		return "Count"
	case "avg":
		return "Average"
	default:
		return "Value"
	}
}

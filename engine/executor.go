package engine

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ============================================================================
// EXECUTOR: Dashboard dispatcher
// ============================================================================
// Entry points: BuildDashboard(total, filtered, opts...) and
// BuildMode(mode, filtered, opts...).
//
// Pipeline:
//   1. Summarize filtered against total
//   2. Empty view → notice, no charts, no insights
//   3. Trend statistics (skipped for ≤1 row)
//   4. Dispatch each mode to its chart builder
//   5. Yearly and preview tables
//
// All computation is local. Callers filter once and pass the SubView in.
// ============================================================================

// Mode selects one dashboard tab.
type Mode string

const (
	ModeOverview    Mode = "overview"
	ModeTrends      Mode = "trends"
	ModeCorrelation Mode = "correlation"
	ModeTemperature Mode = "temperature"
	ModeRenewable   Mode = "renewable"
)

// EmptyNotice replaces charts and insights when no rows pass the filters.
const EmptyNotice = "No records match the current filters."

var (
	// ErrUnknownMode is returned for a mode outside Modes().
	ErrUnknownMode = errors.New("unknown dashboard mode")
	// ErrNoData is returned when a chart is requested for an empty view.
	ErrNoData = errors.New("no records match the current filters")
)

// Modes lists every tab in display order.
func Modes() []Mode {
	return []Mode{ModeOverview, ModeTrends, ModeCorrelation, ModeTemperature, ModeRenewable}
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Title is the tab heading.
func (m Mode) Title() string {
	switch m {
	case ModeOverview:
		return "Overview"
	case ModeTrends:
		return "Trends"
	case ModeCorrelation:
		return "Correlation"
	case ModeTemperature:
		return "Temperature"
	case ModeRenewable:
		return "Renewable Energy"
	}
	return string(m)
}

// Dashboard is the render-ready output for one filter state.
type Dashboard struct {
	Summary      Summary               `json:"summary"`
	SummaryLines []string              `json:"summaryLines"`
	Insights     *Insights             `json:"insights,omitempty"`
	InsightLines []string              `json:"insightLines"`
	Notice       string                `json:"notice,omitempty"`
	Charts       map[Mode]*ChartConfig `json:"charts,omitempty"`
	Yearly       *TableData            `json:"yearly,omitempty"`
	Table        *TableData            `json:"table,omitempty"`
	GeneratedAt  time.Time             `json:"generatedAt"`
}

// BuildDashboard builds every tab for the filtered view.
// total is the unfiltered dataset, used only for the "of M records" count.
func BuildDashboard(total, filtered RecordView, opts ...Option) *Dashboard {
	cfg := applyOptions(opts)
	start := time.Now()

	d := &Dashboard{
		Summary:     BuildSummary(total, filtered),
		GeneratedAt: start.UTC(),
	}
	d.SummaryLines = d.Summary.Lines()

	if filtered.Len() == 0 {
		d.Notice = EmptyNotice
		d.InsightLines = []string{NotEnoughDataNotice}
		cfg.Logger.Debug("dashboard empty",
			zap.Int("total", total.Len()))
		return d
	}

	d.Insights = ComputeInsights(filtered)
	d.InsightLines = d.Insights.Lines()

	d.Charts = make(map[Mode]*ChartConfig, len(Modes()))
	for _, m := range Modes() {
		if chart := buildMode(m, filtered); chart != nil {
			d.Charts[m] = chart
		}
	}
	d.Yearly = BuildYearlyTable(filtered)
	d.Table = BuildTable("Filtered Records", filtered, cfg.PreviewLimit)

	cfg.Logger.Debug("dashboard built",
		zap.Int("rows", filtered.Len()),
		zap.Int("total", total.Len()),
		zap.Bool("insights", d.Insights != nil),
		zap.Duration("took", time.Since(start)))
	return d
}

// BuildMode builds the chart for a single tab.
func BuildMode(mode Mode, filtered RecordView, opts ...Option) (*ChartConfig, error) {
	cfg := applyOptions(opts)

	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if filtered.Len() == 0 {
		return nil, ErrNoData
	}

	chart := buildMode(mode, filtered)
	if chart == nil {
		return nil, ErrNoData
	}
	cfg.Logger.Debug("chart built",
		zap.String("mode", string(mode)),
		zap.String("type", chart.ChartType),
		zap.Int("rows", filtered.Len()))
	return chart, nil
}

func buildMode(mode Mode, view RecordView) *ChartConfig {
	switch mode {
	case ModeOverview:
		return BuildTreemap(view)
	case ModeTrends:
		return BuildTimeSeries(view, "Climate Indicators", KeyTemperature, KeyCO2)
	case ModeCorrelation:
		return BuildScatter(view)
	case ModeTemperature:
		return BuildHeatmap(view)
	case ModeRenewable:
		groups := GroupAndAggregate(view, []string{KeyYear}, KeyRenewable, "avg", "key_asc", 0)
		return BuildChart(ChartSpec{
			Type:        "line",
			Title:       "Renewable Energy Indicators",
			GroupBy:     KeyYear,
			Measure:     KeyRenewable,
			Aggregation: "avg",
			Series:      "Renewable Energy",
		}, groups)
	}
	return nil
}

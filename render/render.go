// Package render draws engine chart configs as PNG images with gonum/plot.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/spektr-org/climadash/engine"
)

var (
	// ErrEmptyChart is returned for a nil config or one without data.
	ErrEmptyChart = errors.New("chart has no data")

	// ErrUnsupportedChart is returned for a chart type the renderer cannot draw.
	ErrUnsupportedChart = errors.New("unsupported chart type")
)

// Option configures rendering.
type Option func(*options)

type options struct {
	width, height vg.Length
	paletteSize   int
	maxRadius     vg.Length
}

// WithSize sets the image size.
func WithSize(w, h vg.Length) Option {
	return func(o *options) {
		if w > 0 && h > 0 {
			o.width, o.height = w, h
		}
	}
}

func defaultOptions(opts []Option) options {
	o := options{
		width:       20 * vg.Centimeter,
		height:      12 * vg.Centimeter,
		paletteSize: 64,
		maxRadius:   vg.Points(14),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// PNG draws cfg and writes the encoded image to w.
func PNG(w io.Writer, cfg *engine.ChartConfig, opts ...Option) error {
	o := defaultOptions(opts)
	p, err := build(cfg, o)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(o.width, o.height, "png")
	if err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// Plot builds the gonum plot for cfg without encoding it.
func Plot(cfg *engine.ChartConfig, opts ...Option) (*plot.Plot, error) {
	return build(cfg, defaultOptions(opts))
}

func build(cfg *engine.ChartConfig, o options) (*plot.Plot, error) {
	if isEmpty(cfg) {
		return nil, ErrEmptyChart
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XAxis
	p.Y.Label.Text = cfg.YAxis
	p.Legend.Top = true

	var err error
	switch cfg.ChartType {
	case "line":
		err = addLines(p, cfg)
	case "scatter":
		err = addScatter(p, cfg, o.maxRadius)
	case "heatmap":
		err = addHeatmap(p, cfg, o.paletteSize)
	case "treemap":
		err = addTreemap(p, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChart, cfg.ChartType)
	}
	if err != nil {
		return nil, fmt.Errorf("draw %s: %w", cfg.ChartType, err)
	}
	if cfg.ShowGrid {
		p.Add(plotter.NewGrid())
	}
	return p, nil
}

func isEmpty(cfg *engine.ChartConfig) bool {
	if cfg == nil {
		return true
	}
	switch cfg.ChartType {
	case "heatmap":
		return cfg.Heatmap == nil || len(cfg.Heatmap.RowLabels) == 0 || len(cfg.Heatmap.ColLabels) == 0
	case "treemap":
		return len(cfg.Treemap) == 0
	}
	for _, s := range cfg.Series {
		if len(s.Data) > 0 {
			return false
		}
	}
	return true
}

// ============================================================================
// SERIES CHARTS
// ============================================================================

func addLines(p *plot.Plot, cfg *engine.ChartConfig) error {
	for i, s := range cfg.Series {
		if len(s.Data) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Data))
		for j, pt := range s.Data {
			xys[j] = plotter.XY{X: pt.X, Y: pt.Value}
		}
		c := seriesColor(s.Color, i)

		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.Color = c
		line.Width = vg.Points(1.5)
		p.Add(line)
		if cfg.ShowMarkers {
			points.Color = c
			points.Shape = draw.CircleGlyph{}
			p.Add(points)
		}
		if cfg.ShowLegend {
			p.Legend.Add(s.Name, line, points)
		}
	}
	return nil
}

func addScatter(p *plot.Plot, cfg *engine.ChartConfig, maxRadius vg.Length) error {
	var maxSize float64
	for _, s := range cfg.Series {
		for _, pt := range s.Data {
			maxSize = math.Max(maxSize, pt.Size)
		}
	}

	for i, s := range cfg.Series {
		if len(s.Data) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Data))
		for j, pt := range s.Data {
			xys[j] = plotter.XY{X: pt.X, Y: pt.Value}
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}

		c := seriesColor(s.Color, i)
		data := s.Data
		sc.GlyphStyle = draw.GlyphStyle{Color: c, Shape: draw.CircleGlyph{}, Radius: vg.Points(4)}
		sc.GlyphStyleFunc = func(j int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: c, Shape: draw.CircleGlyph{}, Radius: bubbleRadius(data[j].Size, maxSize, maxRadius)}
		}
		p.Add(sc)
		if cfg.ShowLegend {
			p.Legend.Add(s.Name, sc)
		}
	}
	return nil
}

// bubbleRadius scales area, not radius, with size.
func bubbleRadius(size, maxSize float64, maxRadius vg.Length) vg.Length {
	const minRadius = 2
	if maxSize <= 0 || size <= 0 {
		return vg.Points(minRadius)
	}
	r := vg.Length(math.Sqrt(size/maxSize)) * maxRadius
	if r < vg.Points(minRadius) {
		return vg.Points(minRadius)
	}
	return r
}

// ============================================================================
// HEATMAP
// ============================================================================

// matrixGrid adapts engine.Matrix to plotter.GridXYZ with unit-spaced cells.
type matrixGrid struct{ m *engine.Matrix }

func (g matrixGrid) Dims() (c, r int)   { return len(g.m.ColLabels), len(g.m.RowLabels) }
func (g matrixGrid) Z(c, r int) float64 { return g.m.Values[r][c] }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }

func addHeatmap(p *plot.Plot, cfg *engine.ChartConfig, n int) error {
	m := cfg.Heatmap
	p.Add(newHeatMap(cfg, n))

	p.NominalX(m.ColLabels...)
	p.NominalY(m.RowLabels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	return nil
}

// newHeatMap clamps cells outside the color range to the palette ends
// instead of leaving them blank.
func newHeatMap(cfg *engine.ChartConfig, n int) *plotter.HeatMap {
	lo, hi := colorBounds(cfg)
	pal := moreland.SmoothBlueRed().Palette(n)
	colors := pal.Colors()

	hm := plotter.NewHeatMap(matrixGrid{cfg.Heatmap}, pal)
	hm.Min, hm.Max = lo, hi
	hm.Underflow = colors[0]
	hm.Overflow = colors[len(colors)-1]
	return hm
}

// ============================================================================
// TREEMAP
// ============================================================================

func addTreemap(p *plot.Plot, cfg *engine.ChartConfig) error {
	lo, hi := colorBounds(cfg)
	cm := moreland.SmoothBlueRed()
	cm.SetMin(lo)
	cm.SetMax(hi)

	labels := plotter.XYLabels{}
	for _, t := range cfg.Treemap {
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: t.X, Y: t.Y},
			{X: t.X + t.W, Y: t.Y},
			{X: t.X + t.W, Y: t.Y + t.H},
			{X: t.X, Y: t.Y + t.H},
		})
		if err != nil {
			return fmt.Errorf("tile %q: %w", t.Label, err)
		}
		fill, err := cm.At(clamp(t.ColorValue, lo, hi))
		if err != nil {
			return fmt.Errorf("tile %q: %w", t.Label, err)
		}
		poly.Color = fill
		poly.LineStyle.Color = color.White
		poly.LineStyle.Width = vg.Points(1)
		p.Add(poly)

		labels.XYs = append(labels.XYs, plotter.XY{X: t.X + t.W/2, Y: t.Y + t.H/2})
		labels.Labels = append(labels.Labels, t.Label)
	}

	lbl, err := plotter.NewLabels(labels)
	if err != nil {
		return fmt.Errorf("tile labels: %w", err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].XAlign = draw.XCenter
		lbl.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(lbl)

	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.HideAxes()
	return nil
}

// ============================================================================
// COLORS
// ============================================================================

var fallbackPalette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
}

// colorBounds returns a non-degenerate range for the color map.
func colorBounds(cfg *engine.ChartConfig) (float64, float64) {
	var lo, hi float64
	if cfg.ColorRange != nil {
		lo, hi = cfg.ColorRange.Min, cfg.ColorRange.Max
	}
	if !(hi > lo) {
		lo, hi = lo-0.5, lo+0.5
	}
	return lo, hi
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func seriesColor(hex string, i int) color.Color {
	if c, ok := parseHex(hex); ok {
		return c
	}
	return fallbackPalette[i%len(fallbackPalette)]
}

func parseHex(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

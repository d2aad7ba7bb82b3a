package server

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spektr-org/climadash/dataset"
	"github.com/spektr-org/climadash/engine"
	"github.com/spektr-org/climadash/export"
	"github.com/spektr-org/climadash/render"
	"github.com/spektr-org/climadash/tracing"
)

// ============================================================================
// HEALTH
// ============================================================================

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReady(c *gin.Context) {
	t := s.store.Current()
	if t == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"rows":      t.Len(),
		"loaded_at": t.LoadedAt(),
	})
}

// ============================================================================
// FILTERING
// ============================================================================

// filtered binds the query, applies it to the current snapshot and
// records the row count. It writes a 400/503 and returns false on failure.
func (s *Server) filtered(c *gin.Context) (*dataset.Table, engine.ClimateFilters, engine.RecordView, bool) {
	t := s.store.Current()
	if t == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dataset not loaded"})
		return nil, engine.ClimateFilters{}, nil, false
	}

	var req FilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": describe(err)})
		return nil, engine.ClimateFilters{}, nil, false
	}

	f := req.Filters(t.Bounds())
	view := t.Filter(f)
	c.Set(filteredRowsKey, view.Len())
	s.metrics.FilteredRows.Observe(float64(view.Len()))
	return t, f, view, true
}

// ============================================================================
// JSON API
// ============================================================================

func (s *Server) handleOptions(c *gin.Context) {
	t := s.store.Current()
	if t == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dataset not loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bounds":    t.Bounds(),
		"countries": append([]string{engine.AllCountries}, t.Countries()...),
		"modes":     engine.Modes(),
		"defaults":  engine.DefaultFilters(t.Bounds()),
	})
}

func (s *Server) handleDashboard(c *gin.Context) {
	t, _, view, ok := s.filtered(c)
	if !ok {
		return
	}

	_, span := tracing.Tracer().Start(c.Request.Context(), "dashboard.build")
	d := engine.BuildDashboard(t.View(), view,
		engine.WithLogger(s.logger),
		engine.WithPreviewLimit(s.previewLimit))
	span.SetAttributes(
		attribute.Int("climadash.rows", view.Len()),
		attribute.Bool("climadash.empty", d.Notice != ""))
	span.End()

	c.JSON(http.StatusOK, d)
}

func (s *Server) handleChart(c *gin.Context) {
	mode, err := engine.ParseMode(c.Param("mode"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	_, _, view, ok := s.filtered(c)
	if !ok {
		return
	}

	chart, err := engine.BuildMode(mode, view, engine.WithLogger(s.logger))
	if errors.Is(err, engine.ErrNoData) {
		c.JSON(http.StatusOK, gin.H{"notice": engine.EmptyNotice})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chart)
}

func (s *Server) handleChartPNG(c *gin.Context) {
	mode, err := engine.ParseMode(c.Param("mode"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	_, _, view, ok := s.filtered(c)
	if !ok {
		return
	}

	chart, err := engine.BuildMode(mode, view, engine.WithLogger(s.logger))
	if errors.Is(err, engine.ErrNoData) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": engine.EmptyNotice})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	_, span := tracing.Tracer().Start(c.Request.Context(), "chart.render")
	span.SetAttributes(attribute.String("climadash.mode", string(mode)))
	var buf bytes.Buffer
	err = render.PNG(&buf, chart)
	span.End()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleExport(c *gin.Context) {
	if s.limiter != nil && !s.limiter.Allow() {
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "export rate limit exceeded"})
		return
	}

	var req ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": describe(err)})
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, _, view, ok := s.filtered(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, view, s.schema); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name := export.FileName(export.DefaultPrefix, string(format), s.now())
	s.metrics.ExportsTotal.WithLabelValues(string(format)).Inc()
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) handleReload(c *gin.Context) {
	if s.store.Path() == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "dataset was not loaded from a file"})
		return
	}
	if err := s.store.Reload(); err != nil {
		s.logger.Warn("reload rejected, keeping previous dataset", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	t := s.store.Current()
	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "rows": t.Len()})
}

// ============================================================================
// HTML
// ============================================================================

type countryOption struct {
	Name     string
	Selected bool
}

type modeTab struct {
	Mode  engine.Mode
	Title string
	PNG   string
	JSON  string
}

type pageData struct {
	Dashboard *engine.Dashboard
	Filters   engine.ClimateFilters
	Bounds    engine.Bounds
	Countries []countryOption
	Tabs      []modeTab
	ExportCSV string
	ExportXLS string
}

var templateFuncs = template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}

func (s *Server) handleIndex(c *gin.Context) {
	t, f, view, ok := s.filtered(c)
	if !ok {
		return
	}

	d := engine.BuildDashboard(t.View(), view,
		engine.WithLogger(s.logger),
		engine.WithPreviewLimit(s.previewLimit))

	q := Query(f).Encode()
	page := pageData{
		Dashboard: d,
		Filters:   f,
		Bounds:    t.Bounds(),
		ExportCSV: "/v1/export?format=csv&" + q,
		ExportXLS: "/v1/export?format=xlsx&" + q,
	}

	selected := make(map[string]bool, len(f.Countries))
	for _, name := range f.Countries {
		selected[name] = true
	}
	page.Countries = append(page.Countries, countryOption{Name: engine.AllCountries, Selected: selected[engine.AllCountries]})
	for _, name := range t.Countries() {
		page.Countries = append(page.Countries, countryOption{Name: name, Selected: selected[name]})
	}

	if d.Notice == "" {
		for _, m := range engine.Modes() {
			if d.Charts[m] == nil {
				continue
			}
			page.Tabs = append(page.Tabs, modeTab{
				Mode:  m,
				Title: m.Title(),
				PNG:   "/v1/charts/" + string(m) + "/png?" + q,
				JSON:  "/v1/charts/" + string(m) + "?" + q,
			})
		}
	}

	c.HTML(http.StatusOK, "index.html", page)
}

// Package server serves the climate dashboard over HTTP with gin.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spektr-org/climadash/config"
	"github.com/spektr-org/climadash/dataset"
	"github.com/spektr-org/climadash/schema"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server owns the router and its dependencies. Each request reads the
// store's current snapshot once and works on it alone.
type Server struct {
	store        *dataset.Store
	schema       schema.Config
	logger       *zap.Logger
	registry     *prometheus.Registry
	metrics      *Metrics
	limiter      *rate.Limiter
	serviceName  string
	previewLimit int
	now          func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithMetrics reuses collectors already registered elsewhere, such as
// ones wired into the dataset reload hook.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithExportLimit allows perMinute export requests with an equal burst.
// Zero or less disables the limit.
func WithExportLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
}

// WithTracing adds otelgin spans named after service.
func WithTracing(service string) Option {
	return func(s *Server) { s.serviceName = service }
}

// WithPreviewLimit caps the rows in the dashboard preview table.
func WithPreviewLimit(n int) Option {
	return func(s *Server) { s.previewLimit = n }
}

// WithClock overrides time.Now, used for export file names.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New builds a server over store.
func New(store *dataset.Store, sch schema.Config, opts ...Option) *Server {
	s := &Server{
		store:        store,
		schema:       sch,
		logger:       zap.NewNop(),
		previewLimit: 100,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(s.registry)
	}
	if t := store.Current(); t != nil {
		s.metrics.DatasetRows.Set(float64(t.Len()))
	}
	registerValidators()
	return s
}

// Metrics exposes the server collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestID())
	if s.serviceName != "" {
		r.Use(otelgin.Middleware(s.serviceName))
	}
	r.Use(instrument(s.logger, s.metrics))
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")))

	r.GET("/", s.handleIndex)
	r.GET("/health", handleHealth)
	r.GET("/ready", s.handleReady)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	{
		v1.GET("/options", s.handleOptions)
		v1.GET("/dashboard", s.handleDashboard)
		v1.GET("/charts/:mode", s.handleChart)
		v1.GET("/charts/:mode/png", s.handleChartPNG)
		v1.GET("/export", s.handleExport)
		v1.POST("/reload", s.handleReload)
	}
	return r
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

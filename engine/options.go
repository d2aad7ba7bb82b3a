package engine

import "go.uber.org/zap"

// ============================================================================
// ENGINE OPTIONS: Functional options for BuildDashboard / BuildMode
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	PreviewLimit int // rows in the preview table, 0 = all
	Logger       *zap.Logger
}

// WithPreviewLimit caps the rows listed in the preview table.
func WithPreviewLimit(n int) Option {
	return func(c *config) {
		c.PreviewLimit = n
	}
}

// WithLogger sets the logger for build diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		PreviewLimit: 100,
		Logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

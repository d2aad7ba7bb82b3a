// Package sink pushes climate observations into InfluxDB.
package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	"github.com/spektr-org/climadash/config"
	"github.com/spektr-org/climadash/engine"
)

// ErrNotConfigured is returned when the InfluxDB URL, org or bucket is missing.
var ErrNotConfigured = errors.New("influxdb is not configured")

// PointWriter is the part of api.WriteAPIBlocking the publisher needs.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Publisher converts rows into points and writes them in batches.
type Publisher struct {
	writer      PointWriter
	measurement string
	batchSize   int
	logger      *zap.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithMeasurement sets the measurement name (default "climate").
func WithMeasurement(name string) Option {
	return func(p *Publisher) {
		if name != "" {
			p.measurement = name
		}
	}
}

// WithBatchSize sets the number of points per write (default 500).
func WithBatchSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithLogger sets the publisher logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPublisher wraps w.
func NewPublisher(w PointWriter, opts ...Option) *Publisher {
	p := &Publisher{
		writer:      w,
		measurement: "climate",
		batchSize:   500,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connect opens an InfluxDB client for cfg. The returned close function
// releases the client.
func Connect(cfg config.InfluxConfig, opts ...Option) (*Publisher, func(), error) {
	if !cfg.Enabled() {
		return nil, nil, ErrNotConfigured
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	writeAPI := client.WriteAPIBlocking(cfg.Org, cfg.Bucket)

	opts = append([]Option{WithMeasurement(cfg.Measurement), WithBatchSize(cfg.BatchSize)}, opts...)
	return NewPublisher(writeAPI, opts...), client.Close, nil
}

// Point converts one observation. The timestamp is January 1 of its year, UTC.
func (p *Publisher) Point(o engine.Observation) *write.Point {
	return influxdb2.NewPoint(
		p.measurement,
		map[string]string{
			engine.KeyCountry: o.Country,
		},
		map[string]interface{}{
			engine.KeyTemperature: o.AvgTemperature,
			engine.KeyCO2:         o.CO2PerCapita,
			engine.KeyRenewable:   o.RenewablePct,
			engine.KeyEvents:      int64(o.ExtremeEvents),
			engine.KeyPopulation:  o.Population,
		},
		time.Date(o.Year, time.January, 1, 0, 0, 0, 0, time.UTC),
	)
}

// Publish writes every row of view and returns how many points were written.
// The first failed batch stops the push.
func (p *Publisher) Publish(ctx context.Context, view engine.RecordView) (int, error) {
	n := view.Len()
	written := 0
	for start := 0; start < n; start += p.batchSize {
		end := min(start+p.batchSize, n)

		batch := make([]*write.Point, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, p.Point(engine.ObservationAt(view, i)))
		}
		if err := p.writer.WritePoint(ctx, batch...); err != nil {
			return written, fmt.Errorf("write batch at row %d: %w", start, err)
		}
		written += len(batch)
		p.logger.Debug("batch written",
			zap.Int("offset", start),
			zap.Int("points", len(batch)))
	}

	p.logger.Info("published to influxdb",
		zap.String("measurement", p.measurement),
		zap.Int("points", written))
	return written, nil
}

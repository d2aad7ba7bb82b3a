package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/climadash/config"
	"github.com/spektr-org/climadash/engine"
)

type mockWriter struct {
	batches [][]*write.Point
	failAt  int // 1-based batch number to fail; 0 never fails
}

func (m *mockWriter) WritePoint(_ context.Context, points ...*write.Point) error {
	if m.failAt > 0 && len(m.batches)+1 == m.failAt {
		return errors.New("connection refused")
	}
	m.batches = append(m.batches, points)
	return nil
}

func rows(n int) engine.RecordView {
	out := make([]engine.Observation, n)
	for i := range out {
		out[i] = engine.Observation{
			Year: 2000 + i, Country: "Chile", AvgTemperature: 12.5, CO2PerCapita: 4.25,
			RenewablePct: 31, ExtremeEvents: 3, Population: 19_000_000,
		}
	}
	return engine.Observations(out)
}

func TestPoint(t *testing.T) {
	p := NewPublisher(&mockWriter{}, WithMeasurement("climate_test"))
	pt := p.Point(engine.Observation{
		Year: 2015, Country: "Chile", AvgTemperature: 12.5, CO2PerCapita: 4.25,
		RenewablePct: 31, ExtremeEvents: 3, Population: 19_000_000,
	})

	assert.Equal(t, "climate_test", pt.Name())
	assert.Equal(t, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), pt.Time())

	require.Len(t, pt.TagList(), 1)
	assert.Equal(t, engine.KeyCountry, pt.TagList()[0].Key)
	assert.Equal(t, "Chile", pt.TagList()[0].Value)

	fields := map[string]interface{}{}
	for _, f := range pt.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.Equal(t, 12.5, fields[engine.KeyTemperature])
	assert.Equal(t, int64(19_000_000), fields[engine.KeyPopulation])
	assert.Equal(t, int64(3), fields[engine.KeyEvents])
	assert.Len(t, fields, 5)
}

func TestPublishBatches(t *testing.T) {
	w := &mockWriter{}
	n, err := NewPublisher(w, WithBatchSize(4)).Publish(context.Background(), rows(10))
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	require.Len(t, w.batches, 3)
	assert.Len(t, w.batches[0], 4)
	assert.Len(t, w.batches[2], 2)
	assert.Equal(t, time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC), w.batches[2][1].Time())
}

func TestPublishStopsAtFirstError(t *testing.T) {
	w := &mockWriter{failAt: 2}
	n, err := NewPublisher(w, WithBatchSize(3)).Publish(context.Background(), rows(7))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Equal(t, 3, n)
	assert.Len(t, w.batches, 1)
}

func TestPublishEmptyView(t *testing.T) {
	w := &mockWriter{}
	n, err := NewPublisher(w).Publish(context.Background(), rows(0))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, w.batches)
}

func TestConnectRequiresConfig(t *testing.T) {
	_, _, err := Connect(config.InfluxConfig{URL: "http://localhost:8086"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	p, closeFn, err := Connect(config.InfluxConfig{
		URL: "http://localhost:8086", Org: "o", Bucket: "b", Measurement: "m", BatchSize: 7,
	})
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, "m", p.measurement)
	assert.Equal(t, 7, p.batchSize)
}

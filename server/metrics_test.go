package server

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/climadash/dataset"
	"github.com/spektr-org/climadash/schema"
)

func TestReloadHookCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	path := filepath.Join(t.TempDir(), "climate.csv")
	require.NoError(t, os.WriteFile(path, []byte(climateCSV), 0o644))

	store, err := dataset.Open(path, schema.Climate(), dataset.WithReloadHook(m.ReloadHook()))
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReloadsTotal.WithLabelValues("ok")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.DatasetRows))

	require.NoError(t, os.WriteFile(path, []byte("Year,Country\n2000,Canada\n"), 0o644))
	require.Error(t, store.Reload())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReloadsTotal.WithLabelValues("error")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.DatasetRows), "failed reload keeps the gauge")

	m.ReloadHook()(nil, errors.New("boom"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReloadsTotal.WithLabelValues("error")))
}

func TestNewMetricsRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })

	n, err := testutil.GatherAndCount(reg, "climadash_dataset_rows")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

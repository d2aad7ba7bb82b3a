package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spektr-org/climadash/schema"
)

func writeCSV(t *testing.T, path, data string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(data), 0o644))
	require.NoError(t, os.Rename(tmp, path))
}

func TestStoreReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "climate.csv")
	writeCSV(t, path, climateCSV)

	var (
		mu       sync.Mutex
		attempts []error
	)
	core, logs := observer.New(zap.InfoLevel)
	s, err := Open(path, schema.Climate(),
		WithLogger(zap.New(core)),
		WithReloadHook(func(_ *Table, err error) {
			mu.Lock()
			attempts = append(attempts, err)
			mu.Unlock()
		}))
	require.NoError(t, err)
	first := s.Current()
	require.Equal(t, 5, first.Len())

	writeCSV(t, path, "Year,Country\n2000,Canada\n")
	err = s.Reload()
	require.ErrorIs(t, err, schema.ErrMissingColumns)
	assert.Same(t, first, s.Current())

	writeCSV(t, path, strings.Join(strings.Split(climateCSV, "\n")[:3], "\n")+"\n")
	require.NoError(t, s.Reload())
	assert.Equal(t, 2, s.Current().Len())
	assert.Equal(t, 5, first.Len(), "old snapshot is untouched")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, attempts, 3)
	assert.NoError(t, attempts[0])
	assert.Error(t, attempts[1])
	assert.NoError(t, attempts[2])

	assert.Equal(t, 2, logs.FilterMessage("dataset loaded").Len())
	assert.Equal(t, 1, logs.FilterMessage("dataset load failed").Len())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.csv"), schema.Climate())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStaticStore(t *testing.T) {
	tbl, err := Load(strings.NewReader(climateCSV), schema.Climate())
	require.NoError(t, err)

	s := NewStatic(tbl)
	assert.Same(t, tbl, s.Current())
	assert.Empty(t, s.Path())
	assert.NoError(t, s.Reload())
	assert.Same(t, tbl, s.Current())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.NoError(t, s.Watch(ctx))
}

func TestStoreWatchReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "climate.csv")
	writeCSV(t, path, climateCSV)

	s, err := Open(path, schema.Climate(), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	writeCSV(t, filepath.Join(filepath.Dir(path), "unrelated.csv"), "x\n")
	writeCSV(t, path, climateCSV+"2002,Chile,13.0,4.4,31.0,3,19000000\n")

	require.Eventually(t, func() bool { return s.Current().Len() == 6 },
		5*time.Second, 20*time.Millisecond)
	assert.Contains(t, s.Current().Countries(), "Chile")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

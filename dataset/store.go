package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/spektr-org/climadash/schema"
)

// ============================================================================
// STORE: cached immutable snapshot with optional hot reload
// ============================================================================
// Readers call Current() once per request and keep that *Table for the
// whole request. Reload swaps the pointer; a failed reload keeps the old one.
// ============================================================================

// ReloadHook observes reload outcomes (metrics, logs).
type ReloadHook func(t *Table, err error)

// Store holds the current dataset snapshot.
type Store struct {
	path    string
	schema  schema.Config
	logger  *zap.Logger
	current atomic.Pointer[Table]
	onLoad  ReloadHook

	// debounce coalesces editor save bursts into one reload.
	debounce time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReloadHook registers a callback run after every load attempt.
func WithReloadHook(h ReloadHook) StoreOption {
	return func(s *Store) { s.onLoad = h }
}

// WithDebounce sets how long Watch waits for writes to settle.
func WithDebounce(d time.Duration) StoreOption {
	return func(s *Store) { s.debounce = d }
}

// Open loads path once and returns a Store serving it.
func Open(path string, sch schema.Config, opts ...StoreOption) (*Store, error) {
	s := &Store{
		path:     path,
		schema:   sch,
		logger:   zap.NewNop(),
		debounce: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStatic wraps an already loaded table. Reload and Watch are no-ops.
func NewStatic(t *Table) *Store {
	s := &Store{logger: zap.NewNop()}
	s.current.Store(t)
	return s
}

// Current returns the snapshot in service.
func (s *Store) Current() *Table {
	return s.current.Load()
}

// Path returns the watched file, empty for static stores.
func (s *Store) Path() string { return s.path }

// Reload parses the file again and swaps it in on success.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}

	start := time.Now()
	t, err := LoadFile(s.path, s.schema)
	if s.onLoad != nil {
		s.onLoad(t, err)
	}
	if err != nil {
		s.logger.Error("dataset load failed",
			zap.String("path", s.path),
			zap.Error(err))
		return err
	}

	prev := s.current.Swap(t)
	fields := []zap.Field{
		zap.String("path", s.path),
		zap.Int("rows", t.Len()),
		zap.Int("countries", len(t.Countries())),
		zap.Duration("took", time.Since(start)),
	}
	if prev != nil {
		fields = append(fields, zap.Int("previous_rows", prev.Len()))
	}
	for _, sk := range t.Skipped() {
		s.logger.Warn("column skipped", zap.String("column", sk.Column), zap.String("reason", sk.Reason))
	}
	s.logger.Info("dataset loaded", fields...)
	return nil
}

// Watch reloads the dataset whenever its file is written or replaced.
// It watches the parent directory so atomic rename-over saves are seen.
// Watch blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(s.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	s.logger.Info("watching dataset", zap.String("path", target))

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(s.debounce)

		case <-timer.C:
			if err := s.Reload(); err != nil {
				s.logger.Warn("keeping previous dataset", zap.Error(err))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				timer.Reset(s.debounce)
				continue
			}
			s.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

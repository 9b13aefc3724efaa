// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// savestate.go — Config, the Store engine type, its constructor, the
// configuration setters and lifecycle (Stats/Close).

package savestate

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AndrewDonelson/savestate/internal/cache"
	"github.com/AndrewDonelson/savestate/internal/clock"
	"github.com/AndrewDonelson/savestate/internal/metrics"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export types so callers only import this package.
type MetricsRecorder = metrics.MetricsRecorder

// NewPrometheusMetrics returns a MetricsRecorder registered with reg
// (prometheus.DefaultRegisterer when nil).
func NewPrometheusMetrics(reg prometheus.Registerer) (MetricsRecorder, error) {
	p, err := metrics.NewPrometheus(reg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

var userConfigDir = os.UserConfigDir

// ────────────────────────────────────────────────────────────────────────────
// Config
// ────────────────────────────────────────────────────────────────────────────

// EncryptionConfig configures payload encryption.
type EncryptionConfig struct {
	Enabled bool
	// Key is the passphrase. It stays held after encryption is disabled so
	// saves written while it was enabled remain readable.
	Key string
}

// Config contains all Store configuration.
type Config struct {
	// RootPath is the directory holding every save. Empty = DefaultRootPath().
	RootPath string

	Layout      Layout
	Format      Format
	Encryption  EncryptionConfig
	Compression bool

	// In-memory caches
	CacheMaxEntries int
	CacheTTL        time.Duration

	// Optional overrideable components
	Clock   clock.Clock
	Metrics metrics.MetricsRecorder
	Logger  Logger
}

func (c *Config) defaults() {
	if c.RootPath == "" {
		c.RootPath = DefaultRootPath()
	}
	if c.Clock == nil {
		c.Clock = clock.Real{}
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Noop{}
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
	if c.CacheMaxEntries == 0 {
		c.CacheMaxEntries = 4096
	}
}

func (c *Config) validate() error {
	if !c.Layout.Valid() {
		return fmt.Errorf("%w: %w: %d", ErrInvalidConfig, ErrInvalidLayout, int(c.Layout))
	}
	if !c.Format.Valid() {
		return fmt.Errorf("%w: %w: %d", ErrInvalidConfig, ErrUnsupportedFormat, int(c.Format))
	}
	if c.Encryption.Enabled && c.Encryption.Key == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrNoEncryptionKey)
	}
	return nil
}

// ────────────────────────────────────────────────────────────────────────────
// Stats
// ────────────────────────────────────────────────────────────────────────────

type storeStats struct {
	Saves   atomic.Int64
	Loads   atomic.Int64
	Deletes atomic.Int64
	Errors  atomic.Int64
}

// Stats is the snapshot returned by Store.Stats().
type Stats struct {
	Saves          int64
	Loads          int64
	Deletes        int64
	Errors         int64
	CacheHits      int64
	CacheMisses    int64
	CachedValues   int64
	CachedMetadata int64
}

// ────────────────────────────────────────────────────────────────────────────
// Store
// ────────────────────────────────────────────────────────────────────────────

const numSaveLocks = 64

// Store is the persistence engine. Configuration changes are guarded by a
// mutex, the caches are internally synchronized, and writes to one save are
// serialized within the process by a striped per-save lock. Files are not
// locked across processes.
type Store struct {
	mu     sync.RWMutex
	cfg    Config
	cipher *PassphraseCipher

	saveLocks [numSaveLocks]sync.Mutex

	data    *cache.Store
	meta    *cache.Store
	stats   storeStats
	metrics metrics.MetricsRecorder
	logger  Logger
	clock   clock.Clock
	closed  atomic.Bool
}

// settings is an immutable snapshot of the live configuration taken at the
// start of every operation.
type settings struct {
	root        string
	layout      Layout
	format      Format
	encrypted   bool
	compression bool
	cipher      *PassphraseCipher
}

func (st settings) pipeline() pipeline {
	return pipeline{Format: st.format, Compressed: st.compression, Encrypted: st.encrypted}
}

// New creates a Store from cfg and makes sure the root directory exists.
func New(cfg Config) (*Store, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &Store{
		cfg:     cfg,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		clock:   cfg.Clock,
	}

	if cfg.Encryption.Key != "" {
		c, err := NewPassphraseCipher(cfg.Encryption.Key)
		if err != nil {
			return nil, fmt.Errorf("savestate: encryption init: %w", err)
		}
		s.cipher = c
	}

	if err := ensureDir(cfg.RootPath); err != nil {
		return nil, err
	}

	s.data = cache.New(cache.Options{MaxEntries: cfg.CacheMaxEntries, TTL: cfg.CacheTTL, Clock: cfg.Clock})
	s.meta = cache.New(cache.Options{MaxEntries: cfg.CacheMaxEntries, TTL: cfg.CacheTTL, Clock: cfg.Clock})

	s.logger.Info("savestate: store initialised",
		"root", cfg.RootPath, "layout", cfg.Layout, "format", cfg.Format,
		"encryption", cfg.Encryption.Enabled, "compression", cfg.Compression)
	return s, nil
}

func (s *Store) settings() settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return settings{
		root:        s.cfg.RootPath,
		layout:      s.cfg.Layout,
		format:      s.cfg.Format,
		encrypted:   s.cfg.Encryption.Enabled,
		compression: s.cfg.Compression,
		cipher:      s.cipher,
	}
}

// Config returns a copy of the live configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// RootPath returns the directory holding every save.
func (s *Store) RootPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.RootPath
}

// ────────────────────────────────────────────────────────────────────────────
// Configuration setters
// ────────────────────────────────────────────────────────────────────────────

// SetRootPath switches the save directory, creating it when missing. The
// caches are flushed because they describe the previous root.
func (s *Store) SetRootPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: root path must not be empty", ErrInvalidConfig)
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	s.mu.Lock()
	changed := s.cfg.RootPath != path
	s.cfg.RootPath = path
	s.mu.Unlock()
	if changed {
		s.data.Flush()
		s.meta.Flush()
	}
	s.logger.Info("savestate: root path changed", "root", path)
	return nil
}

// SetFormat selects the codec used by subsequent saves.
func (s *Store) SetFormat(f Format) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, int(f))
	}
	return s.update(func(c *Config) { c.Format = f }, "format", f)
}

// SetLayout selects the on-disk layout used by subsequent operations.
func (s *Store) SetLayout(l Layout) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidLayout, int(l))
	}
	return s.update(func(c *Config) { c.Layout = l }, "layout", l)
}

// SetCompression toggles snappy compression for subsequent saves.
func (s *Store) SetCompression(enabled bool) error {
	return s.update(func(c *Config) { c.Compression = enabled }, "compression", enabled)
}

// SetEncryption toggles encryption for subsequent saves. A non-empty key
// replaces the held passphrase; an empty key keeps the current one.
// Enabling with no key held fails with ErrNoEncryptionKey.
func (s *Store) SetEncryption(enabled bool, key string) error {
	var next *PassphraseCipher
	if key != "" {
		c, err := NewPassphraseCipher(key)
		if err != nil {
			return err
		}
		next = c
	}
	s.mu.Lock()
	if next != nil {
		s.cipher = next
		s.cfg.Encryption.Key = key
	}
	if enabled && s.cipher == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrNoEncryptionKey)
	}
	s.cfg.Encryption.Enabled = enabled
	root := s.cfg.RootPath
	s.mu.Unlock()

	s.logger.Info("savestate: encryption changed", "enabled", enabled)
	return ensureDir(root)
}

func (s *Store) update(fn func(*Config), field string, value any) error {
	s.mu.Lock()
	fn(&s.cfg)
	root := s.cfg.RootPath
	s.mu.Unlock()
	s.logger.Info("savestate: "+field+" changed", field, value)
	return ensureDir(root)
}

// ────────────────────────────────────────────────────────────────────────────
// Stats / Close
// ────────────────────────────────────────────────────────────────────────────

// Stats returns a snapshot of operational counters.
func (s *Store) Stats() Stats {
	ds := s.data.Stats()
	ms := s.meta.Stats()
	return Stats{
		Saves:          s.stats.Saves.Load(),
		Loads:          s.stats.Loads.Load(),
		Deletes:        s.stats.Deletes.Load(),
		Errors:         s.stats.Errors.Load(),
		CacheHits:      ds.Hits + ms.Hits,
		CacheMisses:    ds.Misses + ms.Misses,
		CachedValues:   ds.Entries,
		CachedMetadata: ms.Entries,
	}
}

// Close releases the caches. Further calls fail with ErrClosed.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.data.Close()
	s.meta.Close()
	s.data.Flush()
	s.meta.Flush()
	return nil
}

// lockSave serializes metadata read-modify-write cycles for saveID.
func (s *Store) lockSave(saveID string) func() {
	mu := &s.saveLocks[xxhash.Sum64String(saveID)%numSaveLocks]
	mu.Lock()
	return mu.Unlock
}

func (s *Store) checkOpen() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// fail counts and logs an operation error and returns it unchanged.
func (s *Store) fail(op string, err error, keysAndValues ...any) error {
	s.stats.Errors.Add(1)
	s.metrics.RecordError(op)
	s.logger.Error("savestate: "+op+" failed", append(keysAndValues, "error", err)...)
	return err
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC().Round(0)
}

// NewSaveID returns a fresh, time-sortable save id.
func NewSaveID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Package counter implements the visitor counter: a single monotonic integer
// kept in an external key-value store when one is configured, with an
// in-process fallback that absorbs every store failure.
package counter

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/radityprtama/folio/internal/logging"
	"github.com/radityprtama/folio/internal/metrics"
)

// Mode names the path that served a counter call.
type Mode string

const (
	ModeStore  Mode = "store"
	ModeMemory Mode = "memory"
)

// Options configure a Service.
type Options struct {
	Key     string
	Seed    int64
	Timeout time.Duration
	Logger  *zap.Logger
}

// Service exposes read and increment over the shared visitor count.
// A nil store yields a memory-only service.
type Service struct {
	store    Store
	fallback *MemoryCounter
	key      string
	seed     int64
	timeout  time.Duration
	seeded   atomic.Bool
	log      *zap.Logger
}

// NewService wires a store (may be nil) and the process-wide fallback counter.
func NewService(store Store, fallback *MemoryCounter, opts Options) *Service {
	if fallback == nil {
		fallback = NewMemoryCounter(opts.Seed)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.L()
	}
	return &Service{
		store:    store,
		fallback: fallback,
		key:      opts.Key,
		seed:     opts.Seed,
		timeout:  opts.Timeout,
		log:      opts.Logger.With(zap.String("component", "counter")),
	}
}

// Mode reports the configured variant. A store-backed service may still
// serve individual calls from memory while the store is unreachable.
func (s *Service) Mode() Mode {
	if s.store == nil {
		return ModeMemory
	}
	return ModeStore
}

// GetCount returns the current value without mutation. It never fails:
// store errors degrade to the in-process value.
func (s *Service) GetCount(ctx context.Context) int64 {
	if s.store == nil {
		metrics.CounterOperations.WithLabelValues("get", string(ModeMemory)).Inc()
		return s.fallback.Load()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	value, found, err := s.store.Get(ctx, s.key)
	if err != nil {
		return s.degrade("get", err, s.fallback.Load)
	}
	metrics.CounterOperations.WithLabelValues("get", string(ModeStore)).Inc()
	if !found {
		return s.seed
	}
	return value
}

// IncrementAndGet adds one and returns the new value. The store path relies on
// the store's atomic increment; on failure the in-process counter is bumped instead.
func (s *Service) IncrementAndGet(ctx context.Context) int64 {
	if s.store == nil {
		metrics.CounterOperations.WithLabelValues("increment", string(ModeMemory)).Inc()
		return s.fallback.Increment()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.ensureSeeded(ctx); err != nil {
		return s.degrade("increment", fmt.Errorf("seed %s: %w", s.key, err), s.fallback.Increment)
	}
	value, err := s.store.Incr(ctx, s.key)
	if err != nil {
		return s.degrade("increment", err, s.fallback.Increment)
	}
	metrics.CounterOperations.WithLabelValues("increment", string(ModeStore)).Inc()
	return value
}

// Ping checks the store, if any.
func (s *Service) Ping(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Ping(ctx)
}

// Close releases the store.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// ensureSeeded writes the seed once per process, retrying until a store
// accepts it, so an empty store starts counting from the seed.
func (s *Service) ensureSeeded(ctx context.Context) error {
	if s.seeded.Load() {
		return nil
	}
	if err := s.store.SeedIfAbsent(ctx, s.key, s.seed); err != nil {
		return err
	}
	s.seeded.Store(true)
	return nil
}

func (s *Service) degrade(op string, err error, fallback func() int64) int64 {
	metrics.StoreFailures.WithLabelValues(op).Inc()
	metrics.CounterOperations.WithLabelValues(op, string(ModeMemory)).Inc()
	value := fallback()
	s.log.Warn("store unavailable, serving in-process count",
		zap.String("operation", op),
		zap.String("key", s.key),
		zap.Int64("count", value),
		zap.Error(err),
	)
	return value
}

package counter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeStore struct {
	mu        sync.Mutex
	values    map[string]int64
	getErr    error
	incrErr   error
	seedErr   error
	seedCalls int
	closed    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[string]int64)}
}

func (f *fakeStore) Get(_ context.Context, key string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return 0, false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeStore) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.values[key]++
	return f.values[key], nil
}

func (f *fakeStore) SeedIfAbsent(_ context.Context, key string, seed int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seedCalls++
	if f.seedErr != nil {
		return f.seedErr
	}
	if _, ok := f.values[key]; !ok {
		f.values[key] = seed
	}
	return nil
}

func (f *fakeStore) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getErr
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

func (f *fakeStore) set(fn func(f *fakeStore)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func newTestService(store Store, seed int64) (*Service, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewService(store, NewMemoryCounter(seed), Options{
		Key:     "visitor_count",
		Seed:    seed,
		Timeout: time.Second,
		Logger:  zap.New(core),
	})
	return svc, logs
}

func TestMemoryOnlyServiceReturnsSeed(t *testing.T) {
	svc, _ := newTestService(nil, 1240)

	assert.Equal(t, ModeMemory, svc.Mode())
	assert.Equal(t, int64(1240), svc.GetCount(context.Background()))
	assert.Equal(t, int64(1241), svc.IncrementAndGet(context.Background()))
	assert.Equal(t, int64(1241), svc.GetCount(context.Background()))
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestGetCountOnEmptyStoreReturnsSeed(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, 1240)

	assert.Equal(t, ModeStore, svc.Mode())
	assert.Equal(t, int64(1240), svc.GetCount(context.Background()))
	assert.Equal(t, 0, store.seedCalls, "reads must not write to the store")
}

func TestIncrementSeedsEmptyStoreOnce(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, 1240)

	assert.Equal(t, int64(1241), svc.IncrementAndGet(context.Background()))
	assert.Equal(t, int64(1242), svc.IncrementAndGet(context.Background()))
	assert.Equal(t, int64(1242), svc.GetCount(context.Background()))
	assert.Equal(t, 1, store.seedCalls)
}

func TestIncrementFallsBackWhenStoreIncrFails(t *testing.T) {
	store := newFakeStore()
	store.incrErr = errors.New("connection refused")
	svc, logs := newTestService(store, 1240)

	assert.Equal(t, int64(1241), svc.IncrementAndGet(context.Background()))
	assert.Equal(t, int64(1242), svc.IncrementAndGet(context.Background()))

	require.Equal(t, 2, logs.FilterMessage("store unavailable, serving in-process count").Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "increment", entry.ContextMap()["operation"])
}

func TestIncrementFallsBackAndRetriesSeedWhenSeedFails(t *testing.T) {
	store := newFakeStore()
	store.seedErr = errors.New("timeout")
	svc, _ := newTestService(store, 10)

	assert.Equal(t, int64(11), svc.IncrementAndGet(context.Background()))

	store.set(func(f *fakeStore) { f.seedErr = nil })
	assert.Equal(t, int64(11), svc.IncrementAndGet(context.Background()), "store starts from its own seed")
	assert.Equal(t, 2, store.seedCalls)
}

func TestGetCountFallsBackWhenStoreFails(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("dial tcp: i/o timeout")
	svc, logs := newTestService(store, 1240)

	assert.Equal(t, int64(1240), svc.GetCount(context.Background()))
	assert.Equal(t, 1, logs.Len())
}

func TestTransientOutageDoesNotDowngradePermanently(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, 100)

	assert.Equal(t, int64(101), svc.IncrementAndGet(context.Background()))

	store.set(func(f *fakeStore) { f.incrErr = errors.New("down") })
	assert.Equal(t, int64(101), svc.IncrementAndGet(context.Background()), "memory fallback serves its own value")

	store.set(func(f *fakeStore) { f.incrErr = nil })
	assert.Equal(t, int64(102), svc.IncrementAndGet(context.Background()), "next call goes back to the store")
	assert.Equal(t, ModeStore, svc.Mode())
}

func TestCloseClosesStore(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, 0)
	require.NoError(t, svc.Close())
	assert.True(t, store.closed)
}

func TestRedisBackedIncrementsAreSequential(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := openRedis("redis://"+mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc, _ := newTestService(store, 0)

	const n = 50
	var previous int64
	for i := 1; i <= n; i++ {
		got := svc.IncrementAndGet(context.Background())
		assert.Equal(t, previous+1, got)
		previous = got
	}
	assert.Equal(t, int64(n), svc.GetCount(context.Background()))
}

func TestRedisBackedConcurrentIncrementsAreLinearizable(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := openRedis("redis://"+mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc, _ := newTestService(store, 0)

	const n = 100
	results := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.IncrementAndGet(context.Background())
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool, n)
	for v := range results {
		assert.False(t, seen[v], "value %d returned twice", v)
		seen[v] = true
	}
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "missing value %d", i)
	}
	assert.Equal(t, int64(n), svc.GetCount(context.Background()))
}

func TestRedisOutageFallsBackToMemory(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := openRedis("redis://"+mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc, _ := newTestService(store, 1240)
	assert.Equal(t, int64(1241), svc.IncrementAndGet(context.Background()))

	mr.SetError("LOADING Redis is loading the dataset in memory")
	assert.Equal(t, int64(1241), svc.IncrementAndGet(context.Background()))
	assert.Equal(t, int64(1241), svc.GetCount(context.Background()))

	mr.SetError("")
	assert.Equal(t, int64(1242), svc.IncrementAndGet(context.Background()))
}

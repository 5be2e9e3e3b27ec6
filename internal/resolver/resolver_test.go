package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
	"github.com/MrSnakeDoc/edgegate/internal/hotcache"
	"github.com/MrSnakeDoc/edgegate/internal/logger"
	redisstore "github.com/MrSnakeDoc/edgegate/internal/store/redis"
	"github.com/MrSnakeDoc/edgegate/internal/tasks"
)

type fakeStore struct {
	mappings map[string]*domain.HostMapping
	calls    int
}

func (f *fakeStore) GetByHost(_ context.Context, host string) (*domain.HostMapping, error) {
	f.calls++
	if m, ok := f.mappings[host]; ok {
		return m, nil
	}
	return nil, domain.ErrMappingNotFound
}

type fakeStatic struct {
	mappings map[string]*domain.HostMapping
}

func (f *fakeStatic) Lookup(host string) *domain.HostMapping {
	return f.mappings[host]
}

func testMapping(host string) *domain.HostMapping {
	return &domain.HostMapping{
		Host:          host,
		ShopID:        "shop_1",
		CanonicalHost: host,
		DefaultLocale: "en",
		Mode:          domain.ModeActive,
	}
}

func newTestSetup(t *testing.T) (*miniredis.Miniredis, *redisstore.Store, *tasks.Runner) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redisstore.NewStore(client), tasks.NewRunner(logger.Nop(), time.Second)
}

func TestResolveStoreHitBackfillsCaches(t *testing.T) {
	mr, shared, runner := newTestSetup(t)
	store := &fakeStore{mappings: map[string]*domain.HostMapping{
		"shop.example.com": testMapping("shop.example.com"),
	}}

	r := New(hotcache.New(hotcache.DefaultSize), shared, nil, store, runner, logger.Nop(), TTLs{})

	got := r.Resolve(context.Background(), "shop.example.com")
	require.NotNil(t, got)
	assert.Equal(t, "shop_1", got.ShopID)
	assert.Equal(t, 1, store.calls)

	// Second resolve is served from the hot tier.
	got = r.Resolve(context.Background(), "shop.example.com")
	require.NotNil(t, got)
	assert.Equal(t, 1, store.calls)

	// The shared tier was backfilled off the response path.
	runner.Wait()
	assert.True(t, mr.Exists(redisstore.MappingKey("shop.example.com")))
}

func TestResolveMissCachesNegative(t *testing.T) {
	mr, shared, runner := newTestSetup(t)
	store := &fakeStore{}

	r := New(hotcache.New(hotcache.DefaultSize), shared, nil, store, runner, logger.Nop(), TTLs{})

	assert.Nil(t, r.Resolve(context.Background(), "unknown.example.com"))
	assert.Equal(t, 1, store.calls)

	// Repeated lookups hit the hot negative entry, not the store.
	assert.Nil(t, r.Resolve(context.Background(), "unknown.example.com"))
	assert.Equal(t, 1, store.calls)

	runner.Wait()
	assert.True(t, mr.Exists(redisstore.MappingKey("unknown.example.com")))
}

func TestResolveSharedHit(t *testing.T) {
	_, shared, runner := newTestSetup(t)
	store := &fakeStore{}

	require.NoError(t, shared.SaveMapping(context.Background(), testMapping("cached.example.com")))

	r := New(hotcache.New(hotcache.DefaultSize), shared, nil, store, runner, logger.Nop(), TTLs{})

	got := r.Resolve(context.Background(), "cached.example.com")
	require.NotNil(t, got)
	assert.Equal(t, "shop_1", got.ShopID)
	assert.Equal(t, 0, store.calls, "shared hit must not reach the store")
}

func TestResolveSharedNegativeShortCircuits(t *testing.T) {
	_, shared, runner := newTestSetup(t)
	store := &fakeStore{mappings: map[string]*domain.HostMapping{
		"gone.example.com": testMapping("gone.example.com"),
	}}

	require.NoError(t, shared.SaveNegative(context.Background(), "gone.example.com"))

	r := New(hotcache.New(hotcache.DefaultSize), shared, nil, store, runner, logger.Nop(), TTLs{})

	// The cached negative wins even though the store knows the host;
	// the record expires within its TTL.
	assert.Nil(t, r.Resolve(context.Background(), "gone.example.com"))
	assert.Equal(t, 0, store.calls)
}

func TestResolveStaticBeforeStore(t *testing.T) {
	_, shared, runner := newTestSetup(t)
	store := &fakeStore{}
	static := &fakeStatic{mappings: map[string]*domain.HostMapping{
		"dev.example.com": testMapping("dev.example.com"),
	}}

	r := New(hotcache.New(hotcache.DefaultSize), shared, static, store, runner, logger.Nop(), TTLs{})

	got := r.Resolve(context.Background(), "dev.example.com")
	require.NotNil(t, got)
	assert.Equal(t, 0, store.calls)
}

func TestResolveSharedErrorFallsThrough(t *testing.T) {
	mr, shared, runner := newTestSetup(t)
	store := &fakeStore{mappings: map[string]*domain.HostMapping{
		"shop.example.com": testMapping("shop.example.com"),
	}}

	r := New(hotcache.New(hotcache.DefaultSize), shared, nil, store, runner, logger.Nop(), TTLs{})

	mr.SetError("redis is down")
	got := r.Resolve(context.Background(), "shop.example.com")
	require.NotNil(t, got)
	assert.Equal(t, 1, store.calls)
	mr.SetError("")
	runner.Wait()
}

func TestResolveNormalizesHost(t *testing.T) {
	_, shared, runner := newTestSetup(t)
	store := &fakeStore{mappings: map[string]*domain.HostMapping{
		"shop.example.com": testMapping("shop.example.com"),
	}}

	r := New(hotcache.New(hotcache.DefaultSize), shared, nil, store, runner, logger.Nop(), TTLs{})

	got := r.Resolve(context.Background(), "Shop.Example.COM:443")
	require.NotNil(t, got)
	assert.Equal(t, "shop.example.com", got.Host)
}

func TestResolveNoTiersConfigured(t *testing.T) {
	runner := tasks.NewRunner(logger.Nop(), time.Second)
	r := New(hotcache.New(hotcache.DefaultSize), nil, nil, nil, runner, logger.Nop(), TTLs{})

	assert.Nil(t, r.Resolve(context.Background(), "anything.example.com"))
	assert.Nil(t, r.Resolve(context.Background(), ""))
}

func TestInvalidateDropsHotEntry(t *testing.T) {
	_, shared, runner := newTestSetup(t)
	store := &fakeStore{mappings: map[string]*domain.HostMapping{
		"shop.example.com": testMapping("shop.example.com"),
	}}

	r := New(hotcache.New(hotcache.DefaultSize), shared, nil, store, runner, logger.Nop(), TTLs{})

	require.NotNil(t, r.Resolve(context.Background(), "shop.example.com"))
	assert.Equal(t, 1, store.calls)

	r.Invalidate("shop.example.com")
	// The shared tier was backfilled, so the next resolve comes from
	// Redis rather than the store.
	runner.Wait()
	require.NotNil(t, r.Resolve(context.Background(), "shop.example.com"))
	assert.Equal(t, 1, store.calls)
}

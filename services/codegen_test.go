package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"Gin_postgres_redis_asset_tool/cache"
	"Gin_postgres_redis_asset_tool/db/dbtest"
	"Gin_postgres_redis_asset_tool/lifecycle"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticScanner []string

func (s staticScanner) AssetCodesWithPrefix(context.Context, string) ([]string, error) {
	return s, nil
}

func newGateway(t *testing.T) (*miniredis.Miniredis, cache.Gateway) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, cache.NewRedisStore(rdb)
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "LA000001", FormatCode("LA", 1))
	assert.Equal(t, "MON000123", FormatCode("MON", 123))
	assert.Equal(t, "LA1234567", FormatCode("LA", 1234567))
}

func TestNextColdCacheScansTable(t *testing.T) {
	var codes staticScanner
	for i := 1; i <= 9; i++ {
		codes = append(codes, FormatCode("LA", int64(i)))
	}
	mr, gw := newGateway(t)
	g := NewCodeGenerator(codes, gw)

	code, err := g.Next(context.Background(), "LA")
	require.NoError(t, err)
	assert.Equal(t, "LA000010", code)

	v, err := mr.Get("asset:seq:LA")
	require.NoError(t, err)
	assert.Equal(t, "10", v)
}

func TestNextWithoutExistingCodes(t *testing.T) {
	_, gw := newGateway(t)
	g := NewCodeGenerator(staticScanner{}, gw)

	for i := 1; i <= 3; i++ {
		code, err := g.Next(context.Background(), "LA")
		require.NoError(t, err)
		assert.Equal(t, FormatCode("LA", int64(i)), code)
	}
}

func TestNextIgnoresForeignSuffixes(t *testing.T) {
	_, gw := newGateway(t)
	g := NewCodeGenerator(staticScanner{"LA000004", "LAX00001", "LA"}, gw)

	code, err := g.Next(context.Background(), "LA")
	require.NoError(t, err)
	assert.Equal(t, "LA000005", code)
}

func TestNextPrefixesAreIndependent(t *testing.T) {
	_, gw := newGateway(t)
	g := NewCodeGenerator(staticScanner{}, gw)
	ctx := context.Background()

	la, err := g.Next(ctx, "LA")
	require.NoError(t, err)
	mo, err := g.Next(ctx, "MO")
	require.NoError(t, err)
	assert.Equal(t, "LA000001", la)
	assert.Equal(t, "MO000001", mo)
}

func TestNextCorruptCacheIsReseeded(t *testing.T) {
	mr, gw := newGateway(t)
	require.NoError(t, mr.Set("asset:seq:LA", "garbage"))
	g := NewCodeGenerator(staticScanner{"LA000007"}, gw)

	code, err := g.Next(context.Background(), "LA")
	require.NoError(t, err)
	assert.Equal(t, "LA000008", code)
}

func TestNextAfterEvictionNeverRepeats(t *testing.T) {
	mr, gw := newGateway(t)
	issued := staticScanner{}
	g := NewCodeGenerator(&issued, gw)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		code, err := g.Next(ctx, "LA")
		require.NoError(t, err)
		issued = append(issued, code)
		seen[code] = true
		if i == 2 {
			mr.Del("asset:seq:LA")
		}
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, "LA000005", issued[4])
}

func TestNextConcurrentCallersGetDistinctCodes(t *testing.T) {
	_, gw := newGateway(t)
	g := NewCodeGenerator(staticScanner{"LA000002"}, gw)

	const n = 20
	var mu sync.Mutex
	seen := map[string]bool{}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := g.Next(context.Background(), "LA")
			if assert.NoError(t, err) {
				mu.Lock()
				seen[code] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
	assert.False(t, seen["LA000002"])
	assert.True(t, seen[FormatCode("LA", n+2)])
}

func TestCreateAssetResyncsStaleCache(t *testing.T) {
	e := newEnv(t)
	for i := 1; i <= 9; i++ {
		dbtest.Asset(t, e.repo.DB, FormatCode("LA", int64(i)), e.f.Laptop, e.f.HQ, lifecycle.AssetAvailable)
	}
	// cache fell behind the table
	require.NoError(t, e.mr.Set("asset:seq:LA", "3"))

	a := e.newLaptop(t)
	assert.Equal(t, "LA000010", a.Code)
}

func TestCreateAssetColdCache(t *testing.T) {
	e := newEnv(t)
	for i := 1; i <= 9; i++ {
		dbtest.Asset(t, e.repo.DB, fmt.Sprintf("LA%06d", i), e.f.Laptop, e.f.HQ, lifecycle.AssetAvailable)
	}
	a := e.newLaptop(t)
	assert.Equal(t, "LA000010", a.Code)
}

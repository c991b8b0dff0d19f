package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korssa/gong34/internal/cache"
	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/models"
)

func TestLoad_AllEmptyYieldsEmptyCatalog(t *testing.T) {
	c := newCache(t)
	s := newSync(t, c, &fakeRemote{}, &fakeFiles{})

	src := s.Load(context.Background())

	assert.Equal(t, SourceEmpty, src)
	assert.NotNil(t, s.Entries())
	assert.Empty(t, s.Entries())
	assert.Empty(t, cachedCatalog(t, c))
}

func TestLoad_RemoteWinsAndOverwritesCache(t *testing.T) {
	c := newCache(t)
	require.NoError(t, cache.SetJSON(context.Background(), c, common.CacheKeyCatalog,
		[]models.CatalogEntry{{ID: "stale"}}))
	remote := &fakeRemote{entries: []models.CatalogEntry{
		{ID: "r1", IconURL: "/uploads/ok.png"},
		{ID: "r2", IconURL: "/uploads/broken.png"},
	}}
	s := newSync(t, c, remote, &fakeFiles{})

	src := s.Load(context.Background())

	assert.Equal(t, SourceRemote, src)
	assert.Equal(t, []string{"r1", "r2"}, ids(s.Entries()))
	assert.Equal(t, common.PlaceholderImage, s.Entries()[1].IconURL)
	assert.Equal(t, []string{"r1", "r2"}, ids(cachedCatalog(t, c)))
}

func TestLoad_RemoteFailureFallsBackToCache(t *testing.T) {
	c := newCache(t)
	require.NoError(t, cache.SetJSON(context.Background(), c, common.CacheKeyCatalog,
		[]models.CatalogEntry{{ID: "c1", IconURL: "/uploads/ok.png"}}))
	c.sets = nil
	s := newSync(t, c, &fakeRemote{loadErr: errors.New("timeout")}, &fakeFiles{})

	src := s.Load(context.Background())

	assert.Equal(t, SourceCache, src)
	assert.Equal(t, []string{"c1"}, ids(s.Entries()))
	assert.Zero(t, c.sets[common.CacheKeyCatalog], "unchanged cache is not rewritten")
}

func TestLoad_CacheRewrittenOnlyWhenNormalisationChanges(t *testing.T) {
	c := newCache(t)
	require.NoError(t, cache.SetJSON(context.Background(), c, common.CacheKeyCatalog,
		[]models.CatalogEntry{{ID: "c1", IconURL: "/uploads/broken.png"}}))
	c.sets = nil
	s := newSync(t, c, &fakeRemote{}, &fakeFiles{})

	s.Load(context.Background())

	assert.Equal(t, 1, c.sets[common.CacheKeyCatalog])
	assert.Equal(t, common.PlaceholderImage, cachedCatalog(t, c)[0].IconURL)
}

func TestLoad_CorruptCacheDegradesToEmpty(t *testing.T) {
	c := newCache(t)
	require.NoError(t, c.Set(context.Background(), common.CacheKeyCatalog, []byte("{oops")))
	require.NoError(t, c.Set(context.Background(), common.CacheKeyFeatured, []byte("nope")))
	s := newSync(t, c, &fakeRemote{loadErr: errors.New("down")}, &fakeFiles{})

	src := s.Load(context.Background())

	assert.Equal(t, SourceEmpty, src)
	assert.Empty(t, s.Entries())
	featured, _ := s.Memberships()
	assert.Zero(t, featured.Len())
}

func TestLoad_CacheReadErrorDegradesToEmpty(t *testing.T) {
	c := newCache(t)
	c.failGet = true
	s := newSync(t, c, &fakeRemote{loadErr: errors.New("down")}, &fakeFiles{})

	assert.Equal(t, SourceEmpty, s.Load(context.Background()))
	assert.Empty(t, s.Entries())
}

func TestLoad_MembershipsFromCache(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	require.NoError(t, cache.SetJSON(ctx, c, common.CacheKeyFeatured, []string{"a", "b"}))
	require.NoError(t, cache.SetJSON(ctx, c, common.CacheKeyEvents, []string{"c"}))
	s := newSync(t, c, &fakeRemote{}, &fakeFiles{})

	s.Load(ctx)

	featured, events := s.Memberships()
	assert.Equal(t, []string{"a", "b"}, featured.IDs())
	assert.Equal(t, []string{"c"}, events.IDs())
}

func TestGet(t *testing.T) {
	s := newSync(t, newCache(t), &fakeRemote{entries: []models.CatalogEntry{{ID: "x", Name: "X"}}}, &fakeFiles{})
	s.Load(context.Background())

	e, ok := s.Get("x")
	require.True(t, ok)
	assert.Equal(t, "X", e.Name)

	_, ok = s.Get("nope")
	assert.False(t, ok)
}

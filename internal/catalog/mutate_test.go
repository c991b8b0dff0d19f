package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/models"
)

func icon(name string) *models.Asset {
	return &models.Asset{Filename: name, ContentType: "image/png", Data: []byte("png")}
}

func TestCreate_SampleEntry(t *testing.T) {
	c := newCache(t)
	remote := &fakeRemote{}
	files := &fakeFiles{}
	s := newSync(t, c, remote, files)
	s.Load(context.Background())
	before := len(s.Entries())

	e, err := s.Create(context.Background(), sampleFields("Sample"), models.Assets{Icon: icon("icon.png")})
	require.NoError(t, err)

	entries := s.Entries()
	require.Len(t, entries, before+1)
	assert.Equal(t, e.ID, entries[0].ID)
	assert.Equal(t, "Sample", entries[0].Name)
	assert.Equal(t, "2025-05-17", entries[0].UploadDate)
	assert.Equal(t, "/uploads/icon-icon.png", entries[0].IconURL)
	assert.NotNil(t, entries[0].ScreenshotURLs)
	assert.Empty(t, entries[0].ScreenshotURLs)
	assert.Equal(t, []string{"a", "b"}, entries[0].Tags)
	assert.NotEmpty(t, e.ID)

	assert.Equal(t, ids(entries), ids(cachedCatalog(t, c)))

	s.Close()
	assert.Equal(t, ids(entries), ids(remote.snapshot()))
}

func TestCreate_PrependsAndKeepsScreenshotOrder(t *testing.T) {
	s := newSync(t, newCache(t), &fakeRemote{}, &fakeFiles{})
	s.Load(context.Background())

	first, err := s.Create(context.Background(), sampleFields("One"), models.Assets{Icon: icon("1.png")})
	require.NoError(t, err)
	second, err := s.Create(context.Background(), sampleFields("Two"), models.Assets{
		Icon:        icon("2.png"),
		Screenshots: []models.Asset{*icon("s1.png"), *icon("s2.png"), *icon("s3.png")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{second.ID, first.ID}, ids(s.Entries()))
	assert.Equal(t, []string{
		"/uploads/screenshot-s1.png", "/uploads/screenshot-s2.png", "/uploads/screenshot-s3.png",
	}, second.ScreenshotURLs)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreate_UploadFailureChangesNothing(t *testing.T) {
	c := newCache(t)
	files := &fakeFiles{failOn: "s2.png", deleteOK: true}
	remote := &fakeRemote{}
	s := newSync(t, c, remote, files)
	s.Load(context.Background())

	_, err := s.Create(context.Background(), sampleFields("Broken"), models.Assets{
		Icon:        icon("i.png"),
		Screenshots: []models.Asset{*icon("s1.png"), *icon("s2.png")},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUpload)
	assert.Empty(t, s.Entries())
	assert.Empty(t, cachedCatalog(t, c))
	assert.Contains(t, files.deleted, "/uploads/icon-i.png", "uploaded icon is cleaned up")

	s.Close()
	assert.Zero(t, remote.saves)
}

func TestCreate_IconFailure(t *testing.T) {
	files := &fakeFiles{failOn: "i.png"}
	s := newSync(t, newCache(t), &fakeRemote{}, files)

	_, err := s.Create(context.Background(), sampleFields("X"), models.Assets{Icon: icon("i.png")})
	assert.ErrorIs(t, err, common.ErrUpload)
	assert.Empty(t, files.uploaded)
}

func TestCreate_RequiresIcon(t *testing.T) {
	s := newSync(t, newCache(t), &fakeRemote{}, &fakeFiles{})

	_, err := s.Create(context.Background(), sampleFields("X"), models.Assets{})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCreate_RemoteFailureDoesNotAffectOutcome(t *testing.T) {
	c := newCache(t)
	remote := &fakeRemote{saveErr: errors.New("remote down")}
	s := newSync(t, c, remote, &fakeFiles{})

	e, err := s.Create(context.Background(), sampleFields("Offline"), models.Assets{Icon: icon("i.png")})
	require.NoError(t, err, "phase 1 succeeds regardless of phase 2")
	assert.Equal(t, []string{e.ID}, ids(cachedCatalog(t, c)))

	s.Close()
	assert.Equal(t, int64(1), s.Mirror().Failures())
	assert.Zero(t, s.Mirror().Saves())
}

func TestCreate_CacheFailureStillCommitsMemory(t *testing.T) {
	c := newCache(t)
	c.setFailSet(true)
	s := newSync(t, c, &fakeRemote{}, &fakeFiles{})

	e, err := s.Create(context.Background(), sampleFields("NoCache"), models.Assets{Icon: icon("i.png")})
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID}, ids(s.Entries()))
}

func TestCreate_ThenReloadRoundTrip(t *testing.T) {
	c := newCache(t)
	s := newSync(t, c, &fakeRemote{}, &fakeFiles{})
	s.Load(context.Background())

	created, err := s.Create(context.Background(), sampleFields("Roundtrip"), models.Assets{
		Icon:        icon("i.png"),
		Screenshots: []models.Asset{*icon("s.png")},
	})
	require.NoError(t, err)

	// A fresh synchronizer with no remote data reloads from the cache.
	reloaded := newSync(t, c, &fakeRemote{}, &fakeFiles{})
	reloaded.Load(context.Background())

	got, ok := reloaded.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, created, got)
}

func TestCreate_ConcurrentCallsAllLand(t *testing.T) {
	c := newCache(t)
	s := newSync(t, c, &fakeRemote{}, &fakeFiles{})
	s.Load(context.Background())

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(context.Background(), sampleFields(fmt.Sprintf("App %d", i)),
				models.Assets{Icon: icon(fmt.Sprintf("%d.png", i))})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries := s.Entries()
	assert.Len(t, entries, n)
	seen := map[string]bool{}
	for _, e := range entries {
		assert.False(t, seen[e.ID])
		seen[e.ID] = true
	}
	assert.ElementsMatch(t, ids(entries), ids(cachedCatalog(t, c)))
}

func TestConcurrentWrites_RemoteEndsOnFinalCatalog(t *testing.T) {
	c := newCache(t)
	remote := &fakeRemote{}
	s := newSync(t, c, remote, &fakeFiles{})
	s.Load(context.Background())

	seeded := make([]string, 8)
	for i := range seeded {
		e, err := s.Create(context.Background(), sampleFields(fmt.Sprintf("Seed %d", i)),
			models.Assets{Icon: icon(fmt.Sprintf("seed-%d.png", i))})
		require.NoError(t, err)
		seeded[i] = e.ID
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.Create(context.Background(), sampleFields(fmt.Sprintf("App %d", i)),
				models.Assets{Icon: icon(fmt.Sprintf("%d.png", i))})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.Delete(context.Background(), seeded[i%len(seeded)])
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	s.Close()

	assert.Equal(t, ids(s.Entries()), ids(remote.snapshot()))
}

func TestUpdate(t *testing.T) {
	c := newCache(t)
	remote := &fakeRemote{}
	s := newSync(t, c, remote, &fakeFiles{})
	s.Load(context.Background())

	orig, err := s.Create(context.Background(), sampleFields("Before"), models.Assets{
		Icon:        icon("i.png"),
		Screenshots: []models.Asset{*icon("s.png")},
	})
	require.NoError(t, err)

	form := models.AppForm{Name: "After", Developer: "Dev", Status: "in-review", Store: "app-store", Tags: " x ,, y "}
	fields, err := form.Validate()
	require.NoError(t, err)

	t.Run("scalar fields only keep assets", func(t *testing.T) {
		got, found, err := s.Update(context.Background(), orig.ID, fields, models.Assets{})
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "After", got.Name)
		assert.Equal(t, models.StatusInReview, got.Status)
		assert.Equal(t, []string{"x", "y"}, got.Tags)
		assert.Equal(t, orig.IconURL, got.IconURL)
		assert.Equal(t, orig.ScreenshotURLs, got.ScreenshotURLs)
		assert.Equal(t, orig.UploadDate, got.UploadDate)
		assert.Equal(t, orig.ID, got.ID)
	})

	t.Run("new assets replace urls", func(t *testing.T) {
		got, found, err := s.Update(context.Background(), orig.ID, fields, models.Assets{
			Icon:        icon("new.png"),
			Screenshots: []models.Asset{*icon("n1.png"), *icon("n2.png")},
		})
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "/uploads/icon-new.png", got.IconURL)
		assert.Equal(t, []string{"/uploads/screenshot-n1.png", "/uploads/screenshot-n2.png"}, got.ScreenshotURLs)

		cached := cachedCatalog(t, c)
		require.Len(t, cached, 1)
		assert.Equal(t, got, cached[0])
	})

	t.Run("absent id is a no-op", func(t *testing.T) {
		before := s.Entries()
		_, found, err := s.Update(context.Background(), "missing", fields, models.Assets{Icon: icon("z.png")})
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, before, s.Entries())
	})

	s.Close()
	assert.Equal(t, "After", remote.snapshot()[0].Name)
}

func TestUpdate_UploadFailureLeavesEntry(t *testing.T) {
	files := &fakeFiles{}
	s := newSync(t, newCache(t), &fakeRemote{}, files)
	orig, err := s.Create(context.Background(), sampleFields("Keep"), models.Assets{Icon: icon("i.png")})
	require.NoError(t, err)

	files.failOn = "bad.png"
	_, found, err := s.Update(context.Background(), orig.ID, sampleFields("Changed"), models.Assets{Icon: icon("bad.png")})
	assert.True(t, found)
	assert.ErrorIs(t, err, common.ErrUpload)

	got, _ := s.Get(orig.ID)
	assert.Equal(t, "Keep", got.Name)
}

func TestDelete(t *testing.T) {
	c := newCache(t)
	remote := &fakeRemote{}
	files := &fakeFiles{deleteOK: false}
	s := newSync(t, c, remote, files)
	s.Load(context.Background())

	keep, err := s.Create(context.Background(), sampleFields("Keep"), models.Assets{Icon: icon("k.png")})
	require.NoError(t, err)
	gone, err := s.Create(context.Background(), sampleFields("Gone"), models.Assets{
		Icon:        icon("g.png"),
		Screenshots: []models.Asset{*icon("g1.png"), *icon("g2.png")},
	})
	require.NoError(t, err)

	deleted, err := s.Delete(context.Background(), gone.ID)
	require.NoError(t, err, "asset delete failures are not fatal")
	assert.True(t, deleted)

	assert.Equal(t, []string{keep.ID}, ids(s.Entries()))
	assert.Equal(t, []string{keep.ID}, ids(cachedCatalog(t, c)))
	assert.ElementsMatch(t, []string{
		"/uploads/icon-g.png", "/uploads/screenshot-g1.png", "/uploads/screenshot-g2.png",
	}, files.deleted)

	s.Close()
	assert.Equal(t, []string{keep.ID}, ids(remote.snapshot()))
}

func TestDelete_AbsentIsNoop(t *testing.T) {
	c := newCache(t)
	s := newSync(t, c, &fakeRemote{}, &fakeFiles{})
	_, err := s.Create(context.Background(), sampleFields("A"), models.Assets{Icon: icon("a.png")})
	require.NoError(t, err)

	deleted, err := s.Delete(context.Background(), "not-there")

	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, s.Entries(), 1)
}

func TestDelete_FiltersWhatTheCacheHolds(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	s := newSync(t, c, &fakeRemote{}, &fakeFiles{})
	a, err := s.Create(ctx, sampleFields("A"), models.Assets{Icon: icon("a.png")})
	require.NoError(t, err)

	// The cache knows an entry memory does not.
	cached := append(cachedCatalog(t, c), models.CatalogEntry{ID: "cache-only"})
	require.NoError(t, s.writeCatalog(ctx, cached))

	_, err = s.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cache-only"}, ids(cachedCatalog(t, c)))
}

func TestDelete_CacheFailureRestoresFromCache(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	s := newSync(t, c, &fakeRemote{}, &fakeFiles{})
	a, err := s.Create(ctx, sampleFields("A"), models.Assets{Icon: icon("a.png")})
	require.NoError(t, err)

	c.setFailSet(true)
	deleted, err := s.Delete(ctx, a.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSync)
	assert.False(t, deleted)
	assert.Equal(t, []string{a.ID}, ids(s.Entries()), "memory restored from the cache")
}

package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/korssa/gong34/internal/cache"
	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/logging"
	"github.com/korssa/gong34/internal/models"
)

var fixedNow = time.Date(2025, 5, 17, 13, 45, 0, 0, time.UTC)

type fakeRemote struct {
	mu      sync.Mutex
	entries []models.CatalogEntry
	loadErr error
	saveErr error
	saves   int
}

func (f *fakeRemote) Load(ctx context.Context) ([]models.CatalogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return models.CloneEntries(f.entries), nil
}

func (f *fakeRemote) Save(ctx context.Context, entries []models.CatalogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.entries = models.CloneEntries(entries)
	return nil
}

func (f *fakeRemote) snapshot() []models.CatalogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.CloneEntries(f.entries)
}

type fakeFiles struct {
	mu       sync.Mutex
	failOn   string
	deleteOK bool
	uploaded []string
	deleted  []string
}

func (f *fakeFiles) Upload(ctx context.Context, a models.Asset, prefix string) (string, error) {
	if f.failOn != "" && a.Filename == f.failOn {
		return "", errors.New("network down")
	}
	u := "/uploads/" + prefix + "-" + a.Filename
	f.mu.Lock()
	f.uploaded = append(f.uploaded, u)
	f.mu.Unlock()
	return u, nil
}

func (f *fakeFiles) Delete(ctx context.Context, url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return f.deleteOK
}

// identity normaliser unless a URL contains "broken".
type fakeImages struct{}

func (fakeImages) Normalize(ctx context.Context, entries []models.CatalogEntry) ([]models.CatalogEntry, bool) {
	out := models.CloneEntries(entries)
	changed := false
	for i := range out {
		if strings.Contains(out[i].IconURL, "broken") {
			out[i].IconURL = common.PlaceholderImage
			changed = true
		}
	}
	return out, changed
}

// flakyCache fails Set and/or Get on demand.
type flakyCache struct {
	cache.Repository
	mu      sync.Mutex
	failSet bool
	failGet bool
	sets    map[string]int
}

func (f *flakyCache) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return nil, errors.New("cache read failed")
	}
	return f.Repository.Get(ctx, key)
}

func (f *flakyCache) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failSet
	if f.sets == nil {
		f.sets = map[string]int{}
	}
	if !fail {
		f.sets[key]++
	}
	f.mu.Unlock()
	if fail {
		return errors.New("cache write failed")
	}
	return f.Repository.Set(ctx, key, value)
}

func (f *flakyCache) setFailSet(v bool) {
	f.mu.Lock()
	f.failSet = v
	f.mu.Unlock()
}

func newCache(t *testing.T) *flakyCache {
	t.Helper()
	db, err := cache.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &flakyCache{Repository: cache.NewSQLiteRepository(db)}
}

func newSync(t *testing.T, c cache.Repository, remote *fakeRemote, files *fakeFiles) *Synchronizer {
	t.Helper()
	s := New(c, remote, files, fakeImages{}, logging.Nop())
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(s.Close)
	return s
}

func cachedCatalog(t *testing.T, c cache.Repository) []models.CatalogEntry {
	t.Helper()
	var entries []models.CatalogEntry
	found, err := cache.GetJSON(context.Background(), c, common.CacheKeyCatalog, &entries)
	require.NoError(t, err)
	require.True(t, found)
	return entries
}

func ids(entries []models.CatalogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func sampleFields(name string) models.AppFields {
	f, err := models.AppForm{Name: name, Developer: "Korssa", Status: "published", Store: "google-play", Tags: "a, b"}.Validate()
	if err != nil {
		panic(err)
	}
	return f
}

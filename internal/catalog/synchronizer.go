// Package catalog owns the in-memory gallery catalog and keeps it in step with
// the local cache and the remote catalog store.
//
// Every mutation is a two-phase write. Phase 1 (commitLocal) updates memory
// and the local cache under the synchronizer lock and decides the outcome
// reported to the caller. Phase 2 (mirrorRemote) hands a snapshot to the
// Mirror, whose failures are only logged.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/korssa/gong34/internal/cache"
	"github.com/korssa/gong34/internal/catalogstore"
	"github.com/korssa/gong34/internal/logging"
	"github.com/korssa/gong34/internal/models"
)

// Files is the File Storage Adapter as seen by the synchronizer.
type Files interface {
	Upload(ctx context.Context, asset models.Asset, prefix string) (string, error)
	Delete(ctx context.Context, url string) bool
}

// Normalizer replaces invalid image URLs without reordering entries.
type Normalizer interface {
	Normalize(ctx context.Context, entries []models.CatalogEntry) ([]models.CatalogEntry, bool)
}

// LoadSource tells where the catalog adopted by Load came from.
type LoadSource string

const (
	SourceRemote LoadSource = "remote"
	SourceCache  LoadSource = "cache"
	SourceEmpty  LoadSource = "empty"
)

type Synchronizer struct {
	mu       sync.Mutex
	entries  []models.CatalogEntry
	featured models.MembershipSet
	events   models.MembershipSet

	cache  cache.Repository
	remote catalogstore.Store
	mirror *Mirror
	files  Files
	images Normalizer
	logger logging.Logger

	now   func() time.Time
	newID func() string
}

func New(c cache.Repository, remote catalogstore.Store, files Files, images Normalizer, logger logging.Logger) *Synchronizer {
	return &Synchronizer{
		entries: []models.CatalogEntry{},
		cache:   c,
		remote:  remote,
		mirror:  NewMirror(remote, logger.With("component", "mirror")),
		files:   files,
		images:  images,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Close drains the remote mirror.
func (s *Synchronizer) Close() {
	s.mirror.Close()
}

// Mirror exposes the phase-2 writer for health reporting.
func (s *Synchronizer) Mirror() *Mirror { return s.mirror }

// Load adopts the remote catalog when it has entries, otherwise the cached
// one, otherwise an empty catalog. Membership sets always come from the
// cache. Load never fails; every error degrades to the next source.
func (s *Synchronizer) Load(ctx context.Context) LoadSource {
	entries, source := s.loadCatalog(ctx)
	featured := s.loadMembership(ctx, cacheKeyFeatured)
	events := s.loadMembership(ctx, cacheKeyEvents)

	s.mu.Lock()
	s.entries = entries
	s.featured = featured
	s.events = events
	s.mu.Unlock()

	s.logger.Info(ctx, "catalog loaded", "source", source, "entries", len(entries),
		"featured", featured.Len(), "events", events.Len())
	return source
}

func (s *Synchronizer) loadCatalog(ctx context.Context) ([]models.CatalogEntry, LoadSource) {
	remote, err := s.remote.Load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "remote catalog unavailable, falling back to cache", "error", err)
	}
	if err == nil && len(remote) > 0 {
		entries, _ := s.images.Normalize(ctx, remote)
		if err := s.writeCatalog(ctx, entries); err != nil {
			s.logger.Warn(ctx, "cache write after remote load failed", "error", err)
		}
		return entries, SourceRemote
	}

	cached, found, err := s.readCatalog(ctx)
	if err != nil {
		s.logger.Warn(ctx, "cache read failed", "error", err)
	}
	if found && len(cached) > 0 {
		entries, changed := s.images.Normalize(ctx, cached)
		if changed {
			if err := s.writeCatalog(ctx, entries); err != nil {
				s.logger.Warn(ctx, "cache rewrite after normalisation failed", "error", err)
			}
		}
		return entries, SourceCache
	}

	empty := []models.CatalogEntry{}
	if err := s.writeCatalog(ctx, empty); err != nil {
		s.logger.Warn(ctx, "cache write of empty catalog failed", "error", err)
	}
	return empty, SourceEmpty
}

// Entries returns a copy of the catalog in its stored order.
func (s *Synchronizer) Entries() []models.CatalogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneEntries(s.entries)
}

func (s *Synchronizer) Get(id string) (models.CatalogEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := models.IndexOf(s.entries, id); i >= 0 {
		return s.entries[i].Clone(), true
	}
	return models.CatalogEntry{}, false
}

// Memberships returns copies of the Featured and Event sets.
func (s *Synchronizer) Memberships() (featured, events models.MembershipSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.NewMembershipSet(s.featured.IDs()...), models.NewMembershipSet(s.events.IDs()...)
}

// mirrorRemote is phase 2 of every catalog write. Must be called with s.mu
// held so snapshots reach the mirror in commit order.
func (s *Synchronizer) mirrorRemote(snapshot []models.CatalogEntry) {
	s.mirror.Enqueue(snapshot)
}

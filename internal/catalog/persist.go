package catalog

import (
	"context"
	"errors"

	"github.com/korssa/gong34/internal/cache"
	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/models"
)

const (
	cacheKeyCatalog  = common.CacheKeyCatalog
	cacheKeyFeatured = common.CacheKeyFeatured
	cacheKeyEvents   = common.CacheKeyEvents
)

// readCatalog returns the cached catalog. A corrupt value is logged and
// reported as absent.
func (s *Synchronizer) readCatalog(ctx context.Context) ([]models.CatalogEntry, bool, error) {
	var entries []models.CatalogEntry
	found, err := cache.GetJSON(ctx, s.cache, cacheKeyCatalog, &entries)
	if errors.Is(err, common.ErrCacheCorruption) {
		s.logger.Warn(ctx, "cached catalog is corrupt, ignoring it", "error", err)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if entries == nil {
		entries = []models.CatalogEntry{}
	}
	return entries, found, nil
}

func (s *Synchronizer) writeCatalog(ctx context.Context, entries []models.CatalogEntry) error {
	if entries == nil {
		entries = []models.CatalogEntry{}
	}
	return cache.SetJSON(ctx, s.cache, cacheKeyCatalog, entries)
}

func (s *Synchronizer) loadMembership(ctx context.Context, key string) models.MembershipSet {
	var set models.MembershipSet
	if _, err := cache.GetJSON(ctx, s.cache, key, &set); err != nil {
		s.logger.Warn(ctx, "membership set unreadable, starting empty", "key", key, "error", err)
		return models.MembershipSet{}
	}
	return set
}

func (s *Synchronizer) writeMembership(ctx context.Context, key string, set models.MembershipSet) error {
	return cache.SetJSON(ctx, s.cache, key, set)
}

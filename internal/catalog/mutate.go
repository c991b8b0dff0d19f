package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/models"
)

// Create uploads the icon, then the screenshots in parallel, and prepends a
// new entry to the catalog. On upload failure nothing changes and any asset
// already stored by this call is removed again.
func (s *Synchronizer) Create(ctx context.Context, fields models.AppFields, assets models.Assets) (models.CatalogEntry, error) {
	if assets.Icon == nil {
		return models.CatalogEntry{}, fmt.Errorf("%w: icon is required", common.ErrValidation)
	}
	// Once uploads start the operation runs to completion.
	ctx = context.WithoutCancel(ctx)

	iconURL, shotURLs, err := s.uploadAssets(ctx, assets)
	if err != nil {
		return models.CatalogEntry{}, err
	}

	entry := models.CatalogEntry{
		ID:             s.newID(),
		IconURL:        iconURL,
		ScreenshotURLs: shotURLs,
		UploadDate:     models.FormatUploadDate(s.now()),
	}
	fields.Apply(&entry)

	s.commitLocal(ctx, func(entries []models.CatalogEntry) []models.CatalogEntry {
		return append([]models.CatalogEntry{entry}, entries...)
	})

	s.logger.Info(ctx, "entry created", "id", entry.ID, "name", entry.Name, "screenshots", len(shotURLs))
	return entry.Clone(), nil
}

// Update replaces the scalar fields of entry id, and its icon or screenshots
// when new ones are supplied. Replaced asset files are left in storage.
// found is false when id is not in the catalog.
func (s *Synchronizer) Update(ctx context.Context, id string, fields models.AppFields, assets models.Assets) (entry models.CatalogEntry, found bool, err error) {
	if _, ok := s.Get(id); !ok {
		return models.CatalogEntry{}, false, nil
	}
	ctx = context.WithoutCancel(ctx)

	iconURL, shotURLs, err := s.uploadAssets(ctx, assets)
	if err != nil {
		return models.CatalogEntry{}, true, err
	}

	snapshot := s.commitLocal(ctx, func(entries []models.CatalogEntry) []models.CatalogEntry {
		i := models.IndexOf(entries, id)
		if i < 0 {
			return nil
		}
		out := models.CloneEntries(entries)
		e := &out[i]
		fields.Apply(e)
		if iconURL != "" {
			e.IconURL = iconURL
		}
		if len(shotURLs) > 0 {
			e.ScreenshotURLs = shotURLs
		}
		entry, found = e.Clone(), true
		return out
	})
	if snapshot == nil {
		// Deleted while the new assets were uploading.
		s.discardUploads(ctx, iconURL, shotURLs)
		return models.CatalogEntry{}, false, nil
	}

	s.logger.Info(ctx, "entry updated", "id", id, "icon_replaced", iconURL != "", "screenshots_replaced", len(shotURLs) > 0)
	return entry, true, nil
}

// Delete removes entry id from memory, then best-effort deletes its assets and
// drops it from the cached catalog. deleted is false when id was not present.
// If the cache cannot be rewritten the in-memory catalog is restored from the
// cache and the error is returned.
func (s *Synchronizer) Delete(ctx context.Context, id string) (deleted bool, err error) {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	i := models.IndexOf(s.entries, id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug(ctx, "delete of unknown entry ignored", "id", id)
		return false, nil
	}
	removed := s.entries[i].Clone()
	s.entries = models.Without(s.entries, id)
	s.mu.Unlock()

	s.deleteAssets(ctx, removed)

	s.mu.Lock()
	filtered, err := s.dropFromCache(ctx, id)
	if err != nil {
		s.restoreFromCache(ctx)
		s.mu.Unlock()
		s.logger.Error(ctx, "delete failed, catalog restored from cache", "id", id, "error", err)
		return false, err
	}
	s.mirrorRemote(filtered)
	s.mu.Unlock()

	s.logger.Info(ctx, "entry deleted", "id", id, "name", removed.Name)
	return true, nil
}

// commitLocal is phase 1: it applies mutate to the catalog and writes the
// result to the cache under the lock. A nil result from mutate leaves
// everything unchanged. Cache failures are logged; memory stays committed.
// The snapshot is handed to phase 2 before the lock is released so remote
// saves follow commit order.
func (s *Synchronizer) commitLocal(ctx context.Context, mutate func([]models.CatalogEntry) []models.CatalogEntry) []models.CatalogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := mutate(s.entries)
	if next == nil {
		return nil
	}
	s.entries = next

	if err := s.writeCatalog(ctx, next); err != nil {
		s.logger.Warn(ctx, "cache write failed", "error", err)
	}
	snapshot := models.CloneEntries(next)
	s.mirrorRemote(snapshot)
	return snapshot
}

// dropFromCache filters id out of whatever the cache holds rather than the
// in-memory catalog. Must be called with s.mu held.
func (s *Synchronizer) dropFromCache(ctx context.Context, id string) ([]models.CatalogEntry, error) {
	cached, found, err := s.readCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read cached catalog: %v", common.ErrSync, err)
	}
	if !found {
		cached = models.CloneEntries(s.entries)
	}
	filtered := models.Without(cached, id)
	if err := s.writeCatalog(ctx, filtered); err != nil {
		return nil, fmt.Errorf("%w: write cached catalog: %v", common.ErrSync, err)
	}
	return filtered, nil
}

// restoreFromCache is the recovery step of a failed delete. Must be called
// with s.mu held.
func (s *Synchronizer) restoreFromCache(ctx context.Context) {
	cached, found, err := s.readCatalog(ctx)
	if err != nil || !found {
		s.logger.Warn(ctx, "catalog restore from cache not possible", "found", found, "error", err)
		return
	}
	s.entries = cached
}

func (s *Synchronizer) deleteAssets(ctx context.Context, e models.CatalogEntry) {
	for _, url := range e.AssetURLs() {
		if url == common.PlaceholderImage {
			continue
		}
		if !s.files.Delete(ctx, url) {
			s.logger.Warn(ctx, "asset delete failed", "id", e.ID, "url", url, "error", common.ErrDelete)
		}
	}
}

// uploadAssets stores the icon first and then every screenshot in parallel.
// Either every supplied asset is stored or none is kept.
func (s *Synchronizer) uploadAssets(ctx context.Context, assets models.Assets) (iconURL string, shotURLs []string, err error) {
	if assets.Icon != nil {
		iconURL, err = s.files.Upload(ctx, *assets.Icon, common.PrefixIcon)
		if err != nil {
			return "", nil, uploadErr("icon", err)
		}
	}

	shotURLs = make([]string, len(assets.Screenshots))
	g, gctx := errgroup.WithContext(ctx)
	for i, shot := range assets.Screenshots {
		g.Go(func() error {
			u, err := s.files.Upload(gctx, shot, common.PrefixScreenshot)
			if err != nil {
				return uploadErr(fmt.Sprintf("screenshot %d", i+1), err)
			}
			shotURLs[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discardUploads(ctx, iconURL, shotURLs)
		return "", nil, err
	}
	return iconURL, shotURLs, nil
}

func (s *Synchronizer) discardUploads(ctx context.Context, iconURL string, shotURLs []string) {
	for _, u := range append([]string{iconURL}, shotURLs...) {
		if u != "" && !s.files.Delete(ctx, u) {
			s.logger.Warn(ctx, "cleanup of uploaded asset failed", "url", u)
		}
	}
}

func uploadErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrUpload, what, err)
}

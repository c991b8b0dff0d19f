// Package catalogstore implements the Blob Catalog Store: the durable copy of
// the whole catalog, kept as a single JSON document.
package catalogstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/models"
)

// Store loads and saves the full catalog. Load returns an empty slice when no
// document exists yet. Callers treat Save as best-effort.
type Store interface {
	Load(ctx context.Context) ([]models.CatalogEntry, error)
	Save(ctx context.Context, entries []models.CatalogEntry) error
}

func decodeCatalog(raw []byte) ([]models.CatalogEntry, error) {
	if len(raw) == 0 {
		return []models.CatalogEntry{}, nil
	}
	var entries []models.CatalogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: malformed catalog document: %v", common.ErrSync, err)
	}
	if entries == nil {
		entries = []models.CatalogEntry{}
	}
	return entries, nil
}

func encodeCatalog(entries []models.CatalogEntry) ([]byte, error) {
	if entries == nil {
		entries = []models.CatalogEntry{}
	}
	return json.Marshal(entries)
}

// NopStore has no remote copy: Load is always empty and Save discards.
type NopStore struct{}

func (NopStore) Load(context.Context) ([]models.CatalogEntry, error) {
	return []models.CatalogEntry{}, nil
}

func (NopStore) Save(context.Context, []models.CatalogEntry) error { return nil }

// Package storage is the File Storage Adapter. Uploads go to the configured
// backend (remote blob or the local file endpoints); deletes are routed by
// the shape of the URL.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/config"
	"github.com/korssa/gong34/internal/logging"
	"github.com/korssa/gong34/internal/models"
	"github.com/korssa/gong34/internal/netx"
)

// LocalURLPrefix is the path under which local assets are served.
const LocalURLPrefix = "/uploads/"

// Backend stores assets and returns their public URL. Delete never returns
// an error: false means the asset may still exist.
type Backend interface {
	Upload(ctx context.Context, asset models.Asset, prefix string) (string, error)
	Delete(ctx context.Context, url string) bool
	Exists(ctx context.Context, url string) bool
}

// Blob is a Backend that recognises its own URLs.
type Blob interface {
	Backend
	Owns(url string) bool
}

// IsBlobURL reports whether url points at a hosted blob store.
func IsBlobURL(url string) bool {
	return strings.Contains(url, "vercel-storage.com")
}

// IsLocalURL reports whether url is served by the local file endpoints.
func IsLocalURL(url string) bool {
	return strings.HasPrefix(url, LocalURLPrefix)
}

type Router struct {
	storageType string
	blob        Blob
	local       Backend
	client      *http.Client
	logger      logging.Logger
}

// NewRouter builds the adapter. blob may be nil when no blob backend is
// configured; uploads then fail and blob URLs cannot be deleted.
func NewRouter(storageType string, blob Blob, local Backend, client *http.Client, logger logging.Logger) *Router {
	return &Router{
		storageType: storageType,
		blob:        blob,
		local:       local,
		client:      client,
		logger:      logger,
	}
}

func (r *Router) isBlob(url string) bool {
	return IsBlobURL(url) || (r.blob != nil && r.blob.Owns(url))
}

// Upload stores asset under prefix and returns its URL. Failures wrap
// common.ErrUpload.
func (r *Router) Upload(ctx context.Context, asset models.Asset, prefix string) (string, error) {
	if r.storageType == config.StorageTypeBlob {
		if r.blob == nil {
			return "", fmt.Errorf("%w: blob storage selected but not configured", common.ErrUpload)
		}
		return r.blob.Upload(ctx, asset, prefix)
	}
	return r.local.Upload(ctx, asset, prefix)
}

// Delete removes the asset behind url. URLs outside the recognised storage
// locations are treated as already deleted.
func (r *Router) Delete(ctx context.Context, url string) bool {
	switch {
	case r.isBlob(url):
		if r.blob == nil {
			r.logger.Warn(ctx, "blob url but no blob backend configured", "url", url)
			return false
		}
		return r.blob.Delete(ctx, url)
	case IsLocalURL(url):
		return r.local.Delete(ctx, url)
	default:
		r.logger.Debug(ctx, "external url left in place", "url", url)
		return true
	}
}

// Exists reports whether url currently resolves to an image. Inline data
// images always exist.
func (r *Router) Exists(ctx context.Context, url string) bool {
	switch {
	case strings.HasPrefix(url, "data:image/"):
		return true
	case r.isBlob(url):
		return r.blob != nil && r.blob.Exists(ctx, url)
	case IsLocalURL(url):
		return r.local.Exists(ctx, url)
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		ok, err := netx.Head(ctx, r.client, url)
		if err != nil {
			r.logger.Debug(ctx, "image probe failed", "url", url, "error", err)
		}
		return ok
	default:
		return false
	}
}

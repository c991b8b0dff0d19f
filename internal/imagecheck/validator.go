// Package imagecheck replaces unreachable catalog image URLs with the
// placeholder image.
package imagecheck

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/logging"
	"github.com/korssa/gong34/internal/models"
)

// Checker reports whether an image URL resolves. storage.Router implements it.
type Checker interface {
	Exists(ctx context.Context, url string) bool
}

type Validator struct {
	checker Checker
	timeout time.Duration
	workers int
	logger  logging.Logger
}

func New(checker Checker, timeout time.Duration, workers int, logger logging.Logger) *Validator {
	if workers < 1 {
		workers = 1
	}
	return &Validator{checker: checker, timeout: timeout, workers: workers, logger: logger}
}

// Normalize returns a copy of entries, in the same order, with every invalid
// icon or screenshot URL replaced by common.PlaceholderImage. changed reports
// whether any URL was replaced. Each distinct URL is probed once.
func (v *Validator) Normalize(ctx context.Context, entries []models.CatalogEntry) (out []models.CatalogEntry, changed bool) {
	out = models.CloneEntries(entries)

	var urls []string
	index := map[string]int{}
	for _, e := range out {
		for _, u := range append([]string{e.IconURL}, e.ScreenshotURLs...) {
			if _, seen := index[u]; !seen && u != "" {
				index[u] = len(urls)
				urls = append(urls, u)
			}
		}
	}

	valid := make([]bool, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i, u := range urls {
		g.Go(func() error {
			valid[i] = v.probe(gctx, u)
			return nil
		})
	}
	_ = g.Wait()

	ok := func(u string) bool {
		i, found := index[u]
		return found && valid[i]
	}

	for i := range out {
		e := &out[i]
		if !ok(e.IconURL) {
			v.logger.Warn(ctx, "icon url replaced with placeholder", "id", e.ID, "url", e.IconURL)
			e.IconURL = common.PlaceholderImage
			changed = true
		}
		for j, u := range e.ScreenshotURLs {
			if !ok(u) {
				v.logger.Warn(ctx, "screenshot url replaced with placeholder", "id", e.ID, "url", u)
				e.ScreenshotURLs[j] = common.PlaceholderImage
				changed = true
			}
		}
	}
	return out, changed
}

func (v *Validator) probe(ctx context.Context, url string) bool {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}
	return v.checker.Exists(ctx, url)
}

// Package filter is the gallery's search and ordering engine. Everything in
// it is a pure function of its arguments.
package filter

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/korssa/gong34/internal/models"
)

// Mode selects which entries a listing shows.
type Mode string

const (
	ModeAll      Mode = "all"
	ModeLatest   Mode = "latest"
	ModeFeatured Mode = "featured"
	ModeEvents   Mode = "events"
)

// ParseMode maps unknown or empty values to ModeAll.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLatest, ModeFeatured, ModeEvents:
		return m
	default:
		return ModeAll
	}
}

// Engine carries the collation locale. The zero value sorts with the
// root (undetermined) locale.
type Engine struct {
	tag language.Tag
}

// New parses locale as a BCP 47 tag; invalid tags fall back to English.
func New(locale string) *Engine {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Engine{tag: tag}
}

// Apply searches, filters and orders entries. The input is not modified.
func (e *Engine) Apply(entries []models.CatalogEntry, query string, mode Mode, featured, events models.MembershipSet) []models.CatalogEntry {
	out := Search(entries, query)

	switch ParseMode(string(mode)) {
	case ModeLatest:
		if latest, ok := Latest(out); ok {
			return []models.CatalogEntry{latest}
		}
		return []models.CatalogEntry{}
	case ModeFeatured:
		out = members(out, featured)
	case ModeEvents:
		out = members(out, events)
	}

	e.sortByName(out)
	return out
}

// Search keeps entries where the trimmed query occurs, case-insensitively,
// in the name, developer, description, category or any tag. An empty query
// keeps everything.
func Search(entries []models.CatalogEntry, query string) []models.CatalogEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.CatalogEntry, 0, len(entries))
	for _, entry := range entries {
		if q == "" || matches(entry, q) {
			out = append(out, entry.Clone())
		}
	}
	return out
}

func matches(e models.CatalogEntry, q string) bool {
	fields := []string{e.Name, e.Developer, e.Description, string(e.Category)}
	fields = append(fields, e.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func members(entries []models.CatalogEntry, set models.MembershipSet) []models.CatalogEntry {
	out := make([]models.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if set.Contains(e.ID) {
			out = append(out, e)
		}
	}
	return out
}

// sortByName orders by locale-aware name comparison. Entries with equal keys
// keep their relative order.
func (e *Engine) sortByName(entries []models.CatalogEntry) {
	// collate.Collator is not safe for concurrent use.
	c := collate.New(e.tag, collate.IgnoreCase)
	slices.SortStableFunc(entries, func(a, b models.CatalogEntry) int {
		return c.CompareString(a.Name, b.Name)
	})
}

// Latest returns the published entry with the greatest upload time. Plain
// dates count as midnight UTC. Entries with unparseable dates are ignored;
// among equal times the earlier entry wins.
func Latest(entries []models.CatalogEntry) (models.CatalogEntry, bool) {
	var (
		best     models.CatalogEntry
		bestTime time.Time
		found    bool
	)
	for _, e := range entries {
		if e.Status != models.StatusPublished {
			continue
		}
		t, ok := e.UploadTime()
		if !ok {
			continue
		}
		if !found || t.After(bestTime) {
			best, bestTime, found = e, t, true
		}
	}
	if !found {
		return models.CatalogEntry{}, false
	}
	return best.Clone(), true
}

// Package models defines the gallery catalog types and the validation
// boundary that form data crosses before it becomes a CatalogEntry.
package models

import (
	"strings"
	"time"
)

// Status is the publication state of a catalog entry.
type Status string

const (
	StatusPublished   Status = "published"
	StatusInReview    Status = "in-review"
	StatusDevelopment Status = "development"
)

// Store is the distribution channel; it decides the badge and URL scheme.
type Store string

const (
	StoreGooglePlay Store = "google-play"
	StoreAppStore   Store = "app-store"
)

// Category groups entries for search. Empty means uncategorised.
type Category string

const (
	CategoryGames         Category = "games"
	CategoryProductivity  Category = "productivity"
	CategoryEducation     Category = "education"
	CategoryEntertainment Category = "entertainment"
	CategorySocial        Category = "social"
	CategoryUtilities     Category = "utilities"
	CategoryLifestyle     Category = "lifestyle"
	CategoryOther         Category = "other"
)

var (
	validStatuses   = map[Status]struct{}{StatusPublished: {}, StatusInReview: {}, StatusDevelopment: {}}
	validStores     = map[Store]struct{}{StoreGooglePlay: {}, StoreAppStore: {}}
	validCategories = map[Category]struct{}{
		CategoryGames: {}, CategoryProductivity: {}, CategoryEducation: {}, CategoryEntertainment: {},
		CategorySocial: {}, CategoryUtilities: {}, CategoryLifestyle: {}, CategoryOther: {},
	}
)

func (s Status) Valid() bool   { _, ok := validStatuses[s]; return ok }
func (s Store) Valid() bool    { _, ok := validStores[s]; return ok }
func (c Category) Valid() bool { _, ok := validCategories[c]; return ok }

// UploadDateLayout is the calendar-date format of CatalogEntry.UploadDate.
const UploadDateLayout = "2006-01-02"

// CatalogEntry is one showcased application. The JSON shape is shared by the
// remote catalog document, the local cache and the HTTP API.
type CatalogEntry struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Developer      string   `json:"developer"`
	Description    string   `json:"description"`
	Category       Category `json:"category,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Status         Status   `json:"status"`
	Rating         float64  `json:"rating"`
	Downloads      string   `json:"downloads"`
	Version        string   `json:"version"`
	Size           string   `json:"size"`
	Store          Store    `json:"store"`
	StoreURL       string   `json:"storeUrl,omitempty"`
	IconURL        string   `json:"iconUrl"`
	ScreenshotURLs []string `json:"screenshotUrls"`
	Views          int      `json:"views"`
	Likes          int      `json:"likes"`
	UploadDate     string   `json:"uploadDate"`
}

// Clone returns a deep copy so callers cannot alias the catalog's slices.
func (e CatalogEntry) Clone() CatalogEntry {
	out := e
	if e.Tags != nil {
		out.Tags = append([]string{}, e.Tags...)
	}
	if e.ScreenshotURLs != nil {
		out.ScreenshotURLs = append([]string{}, e.ScreenshotURLs...)
	}
	return out
}

// AssetURLs lists the icon followed by every screenshot, skipping blanks.
func (e CatalogEntry) AssetURLs() []string {
	urls := make([]string, 0, 1+len(e.ScreenshotURLs))
	if e.IconURL != "" {
		urls = append(urls, e.IconURL)
	}
	for _, u := range e.ScreenshotURLs {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// UploadTime parses UploadDate. Plain calendar dates resolve to midnight UTC;
// full RFC 3339 timestamps keep their time of day. ok is false when the value
// cannot be parsed.
func (e CatalogEntry) UploadTime() (t time.Time, ok bool) {
	return ParseUploadDate(e.UploadDate)
}

func ParseUploadDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(UploadDateLayout, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatUploadDate renders t as a calendar date in t's own location.
func FormatUploadDate(t time.Time) string {
	return t.Format(UploadDateLayout)
}

// CloneEntries deep-copies a catalog slice. A nil input yields an empty,
// non-nil slice so it always encodes as a JSON array.
func CloneEntries(entries []CatalogEntry) []CatalogEntry {
	out := make([]CatalogEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

// IndexOf returns the position of id in entries, or -1.
func IndexOf(entries []CatalogEntry, id string) int {
	for i := range entries {
		if entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Without returns a copy of entries with id removed.
func Without(entries []CatalogEntry, id string) []CatalogEntry {
	out := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

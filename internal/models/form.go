package models

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/korssa/gong34/internal/common"
)

// AppForm is the raw admin form as it arrives from the HTTP layer. Nothing in
// it is trusted until Validate has produced AppFields.
type AppForm struct {
	Name        string
	Developer   string
	Description string
	Category    string
	Tags        string
	Status      string
	Rating      string
	Downloads   string
	Version     string
	Size        string
	Store       string
	StoreURL    string
}

// AppFields are the validated scalar fields of an entry.
type AppFields struct {
	Name        string
	Developer   string
	Description string
	Category    Category
	Tags        []string
	Status      Status
	Rating      float64
	Downloads   string
	Version     string
	Size        string
	Store       Store
	StoreURL    string
}

// FieldError names the form field that failed validation. It unwraps to
// common.ErrValidation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return common.ErrValidation }

// Validate normalises the form and rejects values outside the enumerated sets.
// Status and store must match exactly (case-insensitive); an unknown category
// is normalised to "other" rather than rejected.
func (f AppForm) Validate() (AppFields, error) {
	out := AppFields{
		Name:        strings.TrimSpace(f.Name),
		Developer:   strings.TrimSpace(f.Developer),
		Description: strings.TrimSpace(f.Description),
		Downloads:   strings.TrimSpace(f.Downloads),
		Version:     strings.TrimSpace(f.Version),
		Size:        strings.TrimSpace(f.Size),
		Tags:        ParseTags(f.Tags),
	}

	if out.Name == "" {
		return AppFields{}, &FieldError{Field: "name", Reason: "required"}
	}
	if out.Developer == "" {
		return AppFields{}, &FieldError{Field: "developer", Reason: "required"}
	}

	out.Status = Status(strings.ToLower(strings.TrimSpace(f.Status)))
	if out.Status == "" {
		out.Status = StatusPublished
	}
	if !out.Status.Valid() {
		return AppFields{}, &FieldError{Field: "status", Reason: fmt.Sprintf("unknown value %q", f.Status)}
	}

	out.Store = Store(strings.ToLower(strings.TrimSpace(f.Store)))
	if out.Store == "" {
		out.Store = StoreGooglePlay
	}
	if !out.Store.Valid() {
		return AppFields{}, &FieldError{Field: "store", Reason: fmt.Sprintf("unknown value %q", f.Store)}
	}

	if c := Category(strings.ToLower(strings.TrimSpace(f.Category))); c != "" {
		if !c.Valid() {
			c = CategoryOther
		}
		out.Category = c
	}

	if r := strings.TrimSpace(f.Rating); r != "" {
		rating, err := strconv.ParseFloat(r, 64)
		if err != nil {
			return AppFields{}, &FieldError{Field: "rating", Reason: "not a number"}
		}
		if rating < 0 || rating > 5 {
			return AppFields{}, &FieldError{Field: "rating", Reason: "must be between 0 and 5"}
		}
		out.Rating = rating
	}

	if s := strings.TrimSpace(f.StoreURL); s != "" {
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return AppFields{}, &FieldError{Field: "storeUrl", Reason: "must be an absolute http(s) URL"}
		}
		out.StoreURL = s
	}

	return out, nil
}

// ParseTags splits a comma-separated tag list, trims each tag and drops
// empty segments. Order is preserved.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Apply copies the validated scalar fields onto e, leaving identity, asset
// URLs, counters and the upload date untouched.
func (f AppFields) Apply(e *CatalogEntry) {
	e.Name = f.Name
	e.Developer = f.Developer
	e.Description = f.Description
	e.Category = f.Category
	e.Tags = append([]string{}, f.Tags...)
	e.Status = f.Status
	e.Rating = f.Rating
	e.Downloads = f.Downloads
	e.Version = f.Version
	e.Size = f.Size
	e.Store = f.Store
	e.StoreURL = f.StoreURL
}

package models

import (
	"path/filepath"
	"strings"
)

// Asset is an uploaded binary (icon or screenshot) before it has a durable URL.
type Asset struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Ext returns the lower-case extension without the dot, or "bin".
func (a Asset) Ext() string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(a.Filename)), ".")
	if ext == "" {
		return "bin"
	}
	return ext
}

// Assets are the files submitted with a create or update. Icon is required on
// create; on update a nil Icon or empty Screenshots keeps the current URLs.
type Assets struct {
	Icon        *Asset
	Screenshots []Asset
}

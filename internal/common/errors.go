// Package common defines sentinel errors and shared constants used across
// the gallery service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Asset could not be persisted; aborts a create/update before any catalog mutation.
	ErrUpload = errors.New("upload failed")

	// Asset removal failed; logged and ignored by catalog operations.
	ErrDelete = errors.New("delete failed")

	// Remote catalog unreachable or malformed.
	ErrSync = errors.New("catalog sync failed")

	// Persisted JSON in the local cache could not be decoded.
	ErrCacheCorruption = errors.New("cache corruption")

	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	// Signature checked out but the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// The visibility broadcaster accepts one subscriber.
	ErrSubscriberExists = errors.New("subscriber already registered")

	ErrConfig = errors.New("invalid configuration")

	// Startup has not finished loading the catalog.
	ErrNotReady = errors.New("service not ready")
)

package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/korssa/gong34/internal/common"
)

// GetJSON decodes the value stored under key into dst. It reports false when
// the key is absent. Undecodable values wrap common.ErrCacheCorruption so
// callers can treat them as absence.
func GetJSON(ctx context.Context, r Repository, key string, dst any) (bool, error) {
	raw, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%w: key %s: %v", common.ErrCacheCorruption, key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, r Repository, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache[%s]: %w", key, err)
	}
	return r.Set(ctx, key, raw)
}

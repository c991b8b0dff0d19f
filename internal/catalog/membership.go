package catalog

import (
	"context"
	"fmt"

	"github.com/korssa/gong34/internal/models"
)

// Membership names one of the identifier sets kept beside the catalog.
type Membership string

const (
	Featured Membership = "featured"
	Event    Membership = "event"
)

func (m Membership) cacheKey() (string, error) {
	switch m {
	case Featured:
		return cacheKeyFeatured, nil
	case Event:
		return cacheKeyEvents, nil
	default:
		return "", fmt.Errorf("unknown membership %q", m)
	}
}

func (s *Synchronizer) set(m Membership) *models.MembershipSet {
	if m == Featured {
		return &s.featured
	}
	return &s.events
}

// Toggle flips id in set m and persists the whole set. It reports whether id
// is a member afterwards. If the set cannot be persisted the flip is undone.
// Membership is local only; it is never mirrored remotely.
func (s *Synchronizer) Toggle(ctx context.Context, m Membership, id string) (bool, error) {
	key, err := m.cacheKey()
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggleLocked(ctx, m, key, id)
}

// Set makes id's membership in m equal to want, toggling only when needed.
func (s *Synchronizer) Set(ctx context.Context, m Membership, id string, want bool) (bool, error) {
	key, err := m.cacheKey()
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set(m).Contains(id) == want {
		return want, nil
	}
	return s.toggleLocked(ctx, m, key, id)
}

func (s *Synchronizer) toggleLocked(ctx context.Context, m Membership, key, id string) (bool, error) {
	set := s.set(m)
	member := set.Toggle(id)
	if err := s.writeMembership(ctx, key, *set); err != nil {
		set.Toggle(id)
		return !member, fmt.Errorf("persist %s set: %w", m, err)
	}

	s.logger.Info(ctx, "membership toggled", "set", m, "id", id, "member", member)
	return member, nil
}

func (s *Synchronizer) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	return s.Toggle(ctx, Featured, id)
}

func (s *Synchronizer) ToggleEvent(ctx context.Context, id string) (bool, error) {
	return s.Toggle(ctx, Event, id)
}

func (s *Synchronizer) SetFeatured(ctx context.Context, id string, want bool) (bool, error) {
	return s.Set(ctx, Featured, id, want)
}

func (s *Synchronizer) SetEvent(ctx context.Context, id string, want bool) (bool, error) {
	return s.Set(ctx, Event, id, want)
}

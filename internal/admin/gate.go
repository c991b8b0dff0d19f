// Package admin holds the Admin Gate, the state machine that decides whether
// catalog mutation is offered, together with the admin identity it relies on.
package admin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/logging"
)

type State string

const (
	Locked   State = "locked"
	Unlocked State = "unlocked"
)

// SessionStore persists the session-active flag. cache.Repository fits.
type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Gate unlocks after a run of taps within a time window by an authenticated
// admin. Visibility always needs both the persisted session flag and a
// current identity; the tap history never grants it on its own.
type Gate struct {
	mu    sync.Mutex
	state State
	taps  []time.Time

	required int
	window   time.Duration

	session     SessionStore
	broadcaster *Broadcaster
	logger      logging.Logger
	now         func() time.Time
}

func NewGate(session SessionStore, b *Broadcaster, requiredTaps int, window time.Duration, logger logging.Logger) *Gate {
	if requiredTaps < 1 {
		requiredTaps = 1
	}
	return &Gate{
		state:       Locked,
		required:    requiredTaps,
		window:      window,
		session:     session,
		broadcaster: b,
		logger:      logger,
		now:         time.Now,
	}
}

// Init seeds the state from the persisted flag and publishes the initial
// visibility for ctx.
func (g *Gate) Init(ctx context.Context) error {
	active, err := g.sessionActive(ctx)
	if err != nil {
		return err
	}

	g.mu.Lock()
	if active {
		g.state = Unlocked
	} else {
		g.state = Locked
	}
	g.taps = nil
	g.mu.Unlock()

	g.broadcaster.Publish(g.Visible(ctx))
	return nil
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Visible is session-active AND authenticated.
func (g *Gate) Visible(ctx context.Context) bool {
	return g.State() == Unlocked && Authenticated(ctx)
}

// Tap records one qualifying interaction. When it completes the sequence and
// ctx carries an admin identity the gate unlocks. A completed sequence
// without identity is consumed and fails with common.ErrUnauthorized, as
// does any tap on an unlocked gate without identity.
func (g *Gate) Tap(ctx context.Context) (unlocked bool, err error) {
	var transitioned bool
	defer func() {
		if transitioned {
			g.broadcaster.Publish(true)
		}
	}()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Unlocked {
		if !Authenticated(ctx) {
			return false, common.ErrUnauthorized
		}
		return true, nil
	}

	now := g.now()
	cutoff := now.Add(-g.window)
	kept := g.taps[:0]
	for _, t := range g.taps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	g.taps = append(kept, now)

	if len(g.taps) < g.required {
		return false, nil
	}
	g.taps = nil

	if !Authenticated(ctx) {
		g.logger.Warn(ctx, "unlock sequence completed without admin identity")
		return false, common.ErrUnauthorized
	}

	if err := g.session.Set(ctx, common.CacheKeyAdminSession, []byte(common.AdminSessionActiveVal)); err != nil {
		return false, fmt.Errorf("persist admin session: %w", err)
	}
	g.state = Unlocked
	transitioned = true
	g.logger.Info(ctx, "admin gate unlocked")
	return true, nil
}

// EndSession clears the persisted flag and locks the gate.
func (g *Gate) EndSession(ctx context.Context) error {
	g.mu.Lock()
	transitioned, err := g.lockLocked(ctx, "session ended")
	g.mu.Unlock()

	if transitioned {
		g.broadcaster.Publish(false)
	}
	return err
}

// Refresh locks the gate when ctx no longer carries an admin identity.
func (g *Gate) Refresh(ctx context.Context) error {
	if Authenticated(ctx) {
		return nil
	}
	g.mu.Lock()
	if g.state != Unlocked {
		g.mu.Unlock()
		return nil
	}
	transitioned, err := g.lockLocked(ctx, "authentication lost")
	g.mu.Unlock()

	if transitioned {
		g.broadcaster.Publish(false)
	}
	return err
}

// lockLocked clears the flag and moves to Locked. It reports whether the
// state changed. Must be called with g.mu held.
func (g *Gate) lockLocked(ctx context.Context, reason string) (bool, error) {
	if err := g.session.Delete(ctx, common.CacheKeyAdminSession); err != nil {
		return false, fmt.Errorf("clear admin session: %w", err)
	}
	g.taps = nil
	if g.state == Locked {
		return false, nil
	}
	g.state = Locked
	g.logger.Info(ctx, "admin gate locked", "reason", reason)
	return true, nil
}

func (g *Gate) sessionActive(ctx context.Context) (bool, error) {
	v, err := g.session.Get(ctx, common.CacheKeyAdminSession)
	if err != nil {
		return false, fmt.Errorf("read admin session: %w", err)
	}
	return string(v) == common.AdminSessionActiveVal, nil
}

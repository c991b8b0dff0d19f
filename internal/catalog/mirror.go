package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/korssa/gong34/internal/catalogstore"
	"github.com/korssa/gong34/internal/logging"
	"github.com/korssa/gong34/internal/models"
)

const mirrorSaveTimeout = 30 * time.Second

// Mirror is the phase-2 writer: it copies catalog snapshots to the remote
// store on a single background goroutine. Snapshots queued while a save is
// in flight are coalesced, so only the newest one is written next and saves
// are never reordered. Failures are logged and counted, never returned.
type Mirror struct {
	store  catalogstore.Store
	logger logging.Logger

	mu      sync.Mutex
	pending []models.CatalogEntry
	queued  bool
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}

	saves    atomic.Int64
	failures atomic.Int64
}

func NewMirror(store catalogstore.Store, logger logging.Logger) *Mirror {
	m := &Mirror{
		store:  store,
		logger: logger,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

// Enqueue schedules snapshot for saving and returns immediately. The caller
// must not modify snapshot afterwards.
func (m *Mirror) Enqueue(snapshot []models.CatalogEntry) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.logger.Warn(context.Background(), "remote mirror closed, snapshot dropped", "entries", len(snapshot))
		return
	}
	m.pending = snapshot
	m.queued = true
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting snapshots, saves the last queued one and waits for
// the worker to exit. It is safe to call more than once.
func (m *Mirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		<-m.done
		return
	}
	m.closed = true
	m.mu.Unlock()

	close(m.stop)
	<-m.done
}

// Saves is the number of successful remote writes.
func (m *Mirror) Saves() int64 { return m.saves.Load() }

// Failures is the number of remote writes that failed.
func (m *Mirror) Failures() int64 { return m.failures.Load() }

func (m *Mirror) run() {
	defer close(m.done)
	for {
		select {
		case <-m.wake:
			m.drain()
		case <-m.stop:
			m.drain()
			return
		}
	}
}

func (m *Mirror) drain() {
	for {
		m.mu.Lock()
		if !m.queued {
			m.mu.Unlock()
			return
		}
		snapshot := m.pending
		m.pending, m.queued = nil, false
		m.mu.Unlock()

		m.save(snapshot)
	}
}

func (m *Mirror) save(snapshot []models.CatalogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), mirrorSaveTimeout)
	defer cancel()

	if err := m.store.Save(ctx, snapshot); err != nil {
		m.failures.Add(1)
		m.logger.Warn(ctx, "remote catalog save failed", "entries", len(snapshot), "error", err)
		return
	}
	m.saves.Add(1)
	m.logger.Debug(ctx, "remote catalog saved", "entries", len(snapshot))
}

package admin

import (
	"context"
	"sync"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/logging"
)

// Broadcaster carries the admin-visibility signal to a single subscriber.
// One slot is part of its contract: a second Subscribe fails with
// common.ErrSubscriberExists until the first unsubscribes.
type Broadcaster struct {
	mu     sync.Mutex
	fn     func(visible bool)
	closed bool
	logger logging.Logger
}

func NewBroadcaster(logger logging.Logger) *Broadcaster {
	return &Broadcaster{logger: logger}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Broadcaster) Subscribe(fn func(visible bool)) (unsubscribe func(), err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fn != nil || b.closed {
		return nil, common.ErrSubscriberExists
	}
	b.fn = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.fn = nil
			b.mu.Unlock()
		})
	}, nil
}

// Publish delivers visible to the subscriber, if any. A panicking subscriber
// is logged and does not affect the publisher.
func (b *Broadcaster) Publish(visible bool) {
	b.mu.Lock()
	fn := b.fn
	b.mu.Unlock()
	if fn == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error(context.Background(), "visibility subscriber panicked", "visible", visible, "panic", r)
		}
	}()
	fn(visible)
}

// Close drops the subscriber and refuses new ones.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	b.fn = nil
	b.closed = true
	b.mu.Unlock()
}

package events

import (
	"log/slog"
	"sync"
)

// Bus routes notifications to subscribers by connection id.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int64][]chan Notification
	logger *slog.Logger
	closed bool
}

// NewBus creates a notification bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[int64][]chan Notification),
		logger: logger.With("component", "events"),
	}
}

// Publish delivers n to every subscriber of its connection. Delivery is
// non-blocking; a full subscriber channel drops the notification.
func (b *Bus) Publish(n Notification) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	subs := make([]chan Notification, len(b.subs[n.ConnectionID]))
	copy(subs, b.subs[n.ConnectionID])
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- n:
		default:
			b.logger.Warn("subscriber channel full, dropping notification",
				"connection_id", n.ConnectionID,
				"download_id", n.DownloadID)
		}
	}
}

// Subscribe returns a channel receiving notifications for the given
// connections. The channel is closed by Unsubscribe or Close.
func (b *Bus) Subscribe(connectionIDs []int64, bufferSize int) <-chan Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Notification, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	for _, id := range connectionIDs {
		b.subs[id] = append(b.subs[id], ch)
	}
	return ch
}

// Unsubscribe removes a subscription channel and closes it.
func (b *Bus) Unsubscribe(ch <-chan Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	var removed chan Notification
	for id, subs := range b.subs {
		for i, sub := range subs {
			if sub == ch {
				b.subs[id] = append(subs[:i], subs[i+1:]...)
				removed = sub
				break
			}
		}
	}
	if removed != nil {
		close(removed)
	}
}

// Close shuts down the bus and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	seen := make(map[chan Notification]struct{})
	for _, subs := range b.subs {
		for _, ch := range subs {
			if _, ok := seen[ch]; ok {
				continue
			}
			seen[ch] = struct{}{}
			close(ch)
		}
	}
	b.subs = nil
}

// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hub implements C4, the broadcast hub: a single-producer,
// many-subscriber primitive with independent per-subscriber buffering
// and backpressure isolation. Each subscriber owns a bounded
// channel; a full subscriber has its oldest buffered packet dropped,
// never blocking the publisher and never affecting other subscribers.
package hub

import (
	"sync"
	"sync/atomic"

	"github.com/telemetryhub/telemetry-hub/internal/metrics"
	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

// Handle identifies a live subscription returned by Subscribe.
type Handle uint64

type subscriber struct {
	ch       chan schema.Packet
	drops    uint64
	closed   bool
	closeMux sync.Mutex
}

func (s *subscriber) deliver(pkt schema.Packet) {
	select {
	case s.ch <- pkt:
		return
	default:
	}
	// Buffer full: drop the oldest item, then retry. Safe without
	// further synchronization because the publisher is this hub's
	// only writer to s.ch; nothing else ever sends on it.
	select {
	case <-s.ch:
		atomic.AddUint64(&s.drops, 1)
		metrics.SubscriberDrops.Inc()
	default:
	}
	select {
	case s.ch <- pkt:
	default:
	}
}

func (s *subscriber) close() {
	s.closeMux.Lock()
	defer s.closeMux.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Hub fans out published packets to every live subscriber. The zero
// value is not usable; construct with New.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[Handle]*subscriber
	nextHandle  Handle
	closed      bool
}

// New constructs an empty Hub.
func New() *Hub {
	return &Hub{subscribers: make(map[Handle]*subscriber)}
}

// Subscribe registers a new subscriber with the given buffer capacity
// and returns its handle and receive-end. Packets published after this
// call are visible on the returned channel; past packets are never
// replayed.
func (h *Hub) Subscribe(bufferCapacity int) (Handle, <-chan schema.Packet) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscriber{ch: make(chan schema.Packet, bufferCapacity)}
	if h.closed {
		// A subscription requested after shutdown gets a channel that
		// is immediately closed, so ranging over it returns at once.
		close(sub.ch)
		return 0, sub.ch
	}

	handle := h.nextHandle
	h.nextHandle++
	h.subscribers[handle] = sub
	return handle, sub.ch
}

// Publish delivers pkt to every live subscriber's buffer. A publish
// after Shutdown is a silent no-op.
func (h *Hub) Publish(pkt schema.Packet) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for _, sub := range h.subscribers {
		sub.deliver(pkt)
	}
}

// Unsubscribe releases handle's buffer. Any in-flight publish that had
// not yet reached it is discarded silently. Idempotent.
func (h *Hub) Unsubscribe(handle Handle) {
	h.mu.Lock()
	sub, ok := h.subscribers[handle]
	if ok {
		delete(h.subscribers, handle)
	}
	h.mu.Unlock()
	if ok {
		sub.close()
	}
}

// Drops reports how many packets have been dropped from handle's
// buffer due to overflow. Returns 0 for an unknown or closed handle.
func (h *Hub) Drops(handle Handle) uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sub, ok := h.subscribers[handle]
	if !ok {
		return 0
	}
	return atomic.LoadUint64(&sub.drops)
}

// SubscriberCount reports the number of currently live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Shutdown closes every subscriber and refuses further publishes and
// subscriptions. Idempotent.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.subscribers = make(map[Handle]*subscriber)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}

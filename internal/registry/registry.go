// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package registry keeps a bounded, recently-seen packet registry keyed
// by schema.PacketID: inspectors that only receive a
// reorder-window Emitted metric can look up the full enriched Packet it
// came from without every metric carrying a copy of it. Capacity is
// fixed at construction; on overflow the least recently used entry (by
// Put or Get) is evicted.
package registry

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

// Registry is safe for concurrent use: golang-lru/v2's Cache locks
// internally.
type Registry struct {
	cache *lru.Cache[schema.PacketID, schema.Packet]
}

// New builds a Registry holding at most capacity packets.
func New(capacity int) (*Registry, error) {
	c, err := lru.New[schema.PacketID, schema.Packet](capacity)
	if err != nil {
		return nil, err
	}
	return &Registry{cache: c}, nil
}

// Put records pkt under its own PacketID.
func (r *Registry) Put(pkt schema.Packet) {
	r.cache.Add(pkt.ID(), pkt)
}

// Get returns the packet stored under id, if it has not been evicted.
func (r *Registry) Get(id schema.PacketID) (schema.Packet, bool) {
	return r.cache.Get(id)
}

// Len reports the number of packets currently retained.
func (r *Registry) Len() int {
	return r.cache.Len()
}

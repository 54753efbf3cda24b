// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package reorder implements C3, the reorder window: it turns a stream
// of Packets into a stream of Metrics ordered by device time, tolerant
// of out-of-order offsets within the last W packets.
package reorder

import (
	"sort"

	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

// Emitted is one metric released by the window, carrying the PacketID
// of the packet it came from.
type Emitted struct {
	PacketID schema.PacketID
	Metric   schema.Metric
}

type bufItem struct {
	metric schema.Metric
	id     schema.PacketID
	seq    int64
}

// Window buffers the last W received packets and emits their metrics,
// device-time ordered, as each packet ages out of the window.
// The window size is fixed for the lifetime of the instance. Not safe
// for concurrent use; callers serialize Add from a single goroutine.
type Window struct {
	w       int
	fifo    []schema.PacketID
	buffer  []bufItem
	nextSeq int64
}

// NewWindow constructs a Window of size w. w must be >= 1.
func NewWindow(w int) *Window {
	if w < 1 {
		w = 1
	}
	return &Window{w: w}
}

// Add inserts pkt into the window. If the window's FIFO length exceeds
// w after insertion, the oldest packet is evicted and its metrics are
// returned in device-time order; otherwise Add returns nil. Errored
// packets are rejected defensively -- C1/C2 should never hand one to
// the window.
func (win *Window) Add(pkt schema.Packet) []Emitted {
	if pkt.HasError() {
		return nil
	}

	id := pkt.ID()
	win.fifo = append(win.fifo, id)

	for _, m := range pkt.Metrics {
		win.buffer = append(win.buffer, bufItem{metric: m, id: id, seq: win.nextSeq})
		win.nextSeq++
	}
	win.resort()

	if len(win.fifo) <= win.w {
		return nil
	}

	oldest := win.fifo[0]
	win.fifo = win.fifo[1:]
	return win.evict(oldest)
}

// Flush evicts every remaining packet in FIFO order, emitting all
// buffered metrics. Callers use this to drain the window on shutdown.
func (win *Window) Flush() []Emitted {
	var out []Emitted
	for len(win.fifo) > 0 {
		oldest := win.fifo[0]
		win.fifo = win.fifo[1:]
		out = append(out, win.evict(oldest)...)
	}
	return out
}

func (win *Window) evict(id schema.PacketID) []Emitted {
	var emitted []Emitted
	remaining := win.buffer[:0]
	for _, item := range win.buffer {
		if item.id == id {
			emitted = append(emitted, Emitted{PacketID: item.id, Metric: item.metric})
			continue
		}
		remaining = append(remaining, item)
	}
	win.buffer = remaining
	return emitted
}

// resort keeps the merge buffer sorted by device_time_us ascending,
// missing-device-time items last, ties broken by arrival sequence
// mirroring the enrichment stage's sort stability contract.
func (win *Window) resort() {
	sort.SliceStable(win.buffer, func(i, j int) bool {
		return less(win.buffer[i], win.buffer[j])
	})
}

func less(a, b bufItem) bool {
	if !a.metric.HasDeviceTime && !b.metric.HasDeviceTime {
		return a.seq < b.seq
	}
	if !a.metric.HasDeviceTime {
		return false
	}
	if !b.metric.HasDeviceTime {
		return true
	}
	if a.metric.DeviceTimeUS != b.metric.DeviceTimeUS {
		return a.metric.DeviceTimeUS < b.metric.DeviceTimeUS
	}
	return a.seq < b.seq
}

// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package archive implements C5 (the per-print archive writer) and C6
// (the archive reader): a per-sender ActivePrint state
// machine that appends enriched packets to date/filename-sharded
// records files, and the read-side listing/parsing of those files.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/telemetryhub/telemetry-hub/internal/hub"
	"github.com/telemetryhub/telemetry-hub/internal/metrics"
	"github.com/telemetryhub/telemetry-hub/pkg/log"
	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

// DefaultPrintEndTimeout is PRINT_END_TIMEOUT: the silence
// interval after which a sender's ActivePrint expires.
const DefaultPrintEndTimeout = 10 * time.Minute

type activePrint struct {
	filename string
	lastSeen time.Time
}

// Writer subscribes to the hub and owns one ActivePrint state machine
// per sender. Root is the archive directory root; SyncWrites, if
// set, calls File.Sync() after every append (durability over throughput).
type Writer struct {
	Root       string
	Timeout    time.Duration
	SyncWrites bool

	h      *hub.Hub
	handle hub.Handle
	rx     <-chan schema.Packet
	mu     sync.Mutex
	active map[string]*activePrint
	wg     sync.WaitGroup
}

// NewWriter constructs a Writer. bufferCapacity is the writer's hub
// subscription buffer size, used as given (config.Default sets 100;
// NewWriter applies no default of its own).
func NewWriter(h *hub.Hub, root string, timeout time.Duration, bufferCapacity int) *Writer {
	if timeout <= 0 {
		timeout = DefaultPrintEndTimeout
	}
	handle, rx := h.Subscribe(bufferCapacity)
	return &Writer{
		Root:    root,
		Timeout: timeout,
		h:       h,
		handle:  handle,
		rx:      rx,
		active:  make(map[string]*activePrint),
	}
}

// Start begins consuming the hub subscription on a background goroutine.
func (w *Writer) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for pkt := range w.rx {
			w.apply(pkt)
		}
	}()
}

// Stop unsubscribes from the hub and waits for the background goroutine
// to drain and exit.
func (w *Writer) Stop() {
	w.h.Unsubscribe(w.handle)
	w.wg.Wait()
}

// apply runs one packet through the sender's ActivePrint state machine.
func (w *Writer) apply(pkt schema.Packet) {
	filename, hasFilename := ExtractFilename(pkt)
	now := pkt.ReceivedAt
	if now.IsZero() {
		now = time.Now()
	}

	w.mu.Lock()
	ap, exists := w.active[pkt.Sender]

	var persistAs string
	doPersist := false

	switch {
	case !exists && hasFilename:
		w.active[pkt.Sender] = &activePrint{filename: filename, lastSeen: now}
		persistAs, doPersist = filename, true

	case !exists && !hasFilename:
		// Idle with no filename: drop.

	case exists && hasFilename && filename != ap.filename:
		ap.filename = filename
		ap.lastSeen = now
		persistAs, doPersist = filename, true

	case exists && hasFilename && filename == ap.filename:
		ap.lastSeen = now
		persistAs, doPersist = filename, true

	case exists && !hasFilename && now.Sub(ap.lastSeen) <= w.Timeout:
		ap.lastSeen = now
		persistAs, doPersist = ap.filename, true

	default: // exists && !hasFilename && timed out
		delete(w.active, pkt.Sender)
	}
	activeCount := len(w.active)
	w.mu.Unlock()

	metrics.ActivePrints.Set(float64(activeCount))

	if doPersist {
		w.persist(pkt, persistAs)
	}
}

// SweepIdle expires any ActivePrint whose sender has gone silent for
// longer than Timeout, without waiting for that sender's next packet.
// Intended to run on a periodic schedule (the go-co-op/gocron sweep in
// internal/sweep, started from cmd/telemetry-hub) so senders that go permanently quiet don't linger
// in memory forever.
func (w *Writer) SweepIdle() {
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()
	for sender, ap := range w.active {
		if now.Sub(ap.lastSeen) > w.Timeout {
			delete(w.active, sender)
		}
	}
	metrics.ActivePrints.Set(float64(len(w.active)))
}

// persist appends pkt's record under the archive directory derived
// from its receive date and sanitized filename.
func (w *Writer) persist(pkt schema.Packet, filename string) {
	receivedAt := pkt.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	dir := filepath.Join(w.Root, receivedAt.Local().Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Errorf("archive: mkdir %s: %v", dir, err)
		metrics.ArchiveErrors.Inc()
		return
	}

	path := filepath.Join(dir, SanitizeFilename(filename)+".records")
	line, err := EncodeRecord(pkt)
	if err != nil {
		log.Errorf("archive: encode record for %s: %v", path, err)
		metrics.ArchiveErrors.Inc()
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Errorf("archive: open %s: %v", path, err)
		metrics.ArchiveErrors.Inc()
		return
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, line); err != nil {
		log.Errorf("archive: write %s: %v", path, err)
		metrics.ArchiveErrors.Inc()
		return
	}
	if w.SyncWrites {
		if err := f.Sync(); err != nil {
			log.Errorf("archive: fsync %s: %v", path, err)
			metrics.ArchiveErrors.Inc()
		}
	}
}

// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ingest implements C7's inbound transport adapter: a UDP
// listener that turns datagrams into (bytes, sender) pairs behind a
// bounded, drop-oldest queue.
package ingest

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/telemetryhub/telemetry-hub/internal/metrics"
	"github.com/telemetryhub/telemetry-hub/pkg/log"
)

// Datagram is one received UDP payload and the address it came from.
type Datagram struct {
	Payload []byte
	Sender  string
}

// Listener owns a UDP socket and the bounded queue downstream stages
// read from. A full queue drops its oldest datagram rather than
// blocking the socket read loop.
type Listener struct {
	conn  *net.UDPConn
	queue chan Datagram
	drops uint64
	wg    sync.WaitGroup
}

// Listen binds a UDP socket on port. A bind failure is fatal to startup;
// the caller decides how to act on it.
func Listen(port int, queueCapacity int) (*Listener, error) {
	addr := &net.UDPAddr{Port: port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("ingest: listen on UDP port %d: %w", port, err)
	}
	return &Listener{conn: conn, queue: make(chan Datagram, queueCapacity)}, nil
}

// Start begins the read loop on a background goroutine.
func (l *Listener) Start() {
	l.wg.Add(1)
	go l.readLoop()
}

func (l *Listener) readLoop() {
	defer l.wg.Done()
	defer close(l.queue)

	buf := make([]byte, 65535)
	for {
		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Errorf("ingest: udp read error: %v", err)
			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		l.enqueue(Datagram{Payload: payload, Sender: addr.String()})
	}
}

// enqueue delivers d to the queue, dropping the oldest queued datagram
// if it is full. Safe because this goroutine is the queue's only
// writer.
func (l *Listener) enqueue(d Datagram) {
	select {
	case l.queue <- d:
		return
	default:
	}
	select {
	case <-l.queue:
		atomic.AddUint64(&l.drops, 1)
		metrics.InputDrops.Inc()
	default:
	}
	select {
	case l.queue <- d:
	default:
	}
}

// Datagrams returns the channel downstream stages consume from. It is
// closed once the read loop exits after Close.
func (l *Listener) Datagrams() <-chan Datagram {
	return l.queue
}

// Drops reports how many datagrams were dropped due to queue overflow.
func (l *Listener) Drops() uint64 {
	return atomic.LoadUint64(&l.drops)
}

// Close stops accepting new datagrams and waits for the read loop to
// exit, which closes the Datagrams channel.
func (l *Listener) Close() error {
	err := l.conn.Close()
	l.wg.Wait()
	return err
}

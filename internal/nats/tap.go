// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package nats implements the optional external tap: republishing the
// reorder window's provenance-tagged metric stream onto a NATS subject
// for out-of-process inspectors, entirely separate from the hub's
// packet fan-out. Disabled outright when no URL is configured.
package nats

import (
	"encoding/json"

	"github.com/nats-io/nats.go"

	"github.com/telemetryhub/telemetry-hub/internal/reorder"
	"github.com/telemetryhub/telemetry-hub/pkg/log"
	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

// tapRecord is the wire shape of one tapped metric: the metric itself
// plus the PacketId that produced it, so an external inspector can
// correlate it back to a packet without subscribing to the hub. Metric
// encoding defers to schema.Metric's own MarshalJSON, keeping the tap's
// wire format in lockstep with the rest of the system.
type tapRecord struct {
	Sender       string        `json:"sender"`
	MsgID        uint64        `json:"msg_id"`
	ReceivedAtMs int64         `json:"received_at_ms"`
	Metric       schema.Metric `json:"metric"`
}

// Tap is a publish-only NATS egress. A nil Tap (returned when URL is
// empty) is safe to call Publish/Stop on and does nothing.
type Tap struct {
	conn    *nats.Conn
	subject string
}

// Connect dials url. If url is empty the tap is disabled: Connect
// returns (nil, nil) and the caller should skip feeding it.
func Connect(url, subject string) (*Tap, error) {
	if url == "" {
		return nil, nil
	}

	nc, err := nats.Connect(url,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("nats: disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Infof("nats: reconnected to %s", c.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Errorf("nats: error: %v", err)
		}),
	)
	if err != nil {
		return nil, err
	}

	log.Infof("nats: tap connected to %s, publishing to subject %q", url, subject)
	return &Tap{conn: nc, subject: subject}, nil
}

// Publish republishes one emitted metric onto the tap subject. Safe to
// call on a nil Tap.
func (t *Tap) Publish(e reorder.Emitted) {
	if t == nil {
		return
	}

	rec := tapRecord{
		Sender:       e.PacketID.Sender,
		MsgID:        e.PacketID.MsgID,
		ReceivedAtMs: e.PacketID.ReceivedAtMs,
		Metric:       e.Metric,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		log.Errorf("nats: encode tap record: %v", err)
		return
	}
	if err := t.conn.Publish(t.subject, data); err != nil {
		log.Errorf("nats: publish to %q: %v", t.subject, err)
	}
}

// Stop closes the NATS connection. Safe to call on a nil Tap.
func (t *Tap) Stop() {
	if t == nil {
		return
	}
	t.conn.Close()
}

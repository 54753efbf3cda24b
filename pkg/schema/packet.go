// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"fmt"
	"time"
)

// Prelude is the optional leading header of a datagram:
// `msg=<u64>,tm=<u64>,v=<u32>`. Any field may be absent.
type Prelude struct {
	MsgID       uint64
	HasMsgID    bool
	BaseTimeUS  uint64
	HasBaseTime bool
	Version     uint32
	HasVersion  bool
}

// PacketID is the stable provenance key for a Packet: used by the
// reorder window and the packet registry to reference a packet without
// duplicating it on every metric.
type PacketID struct {
	MsgID        uint64
	Sender       string
	ReceivedAtMs int64
}

func (p PacketID) String() string {
	return fmt.Sprintf("%s/%d@%d", p.Sender, p.MsgID, p.ReceivedAtMs)
}

// Packet is one decoded UDP datagram. Immutable once C2 enrichment
// has run; C1 and C2 are the only writers.
type Packet struct {
	Sender     string
	ReceivedAt time.Time
	Prelude    Prelude
	Metrics    []Metric
	Raw        string
	Err        string // decode-failure string; mutually exclusive with Metrics

	// Set by C2:
	WallTimeStr  string
	DisplayLines []string
}

func (p Packet) HasError() bool { return p.Err != "" }

// ID derives this packet's PacketID. ReceivedAt is truncated to
// milliseconds to match the PacketID contract.
func (p Packet) ID() PacketID {
	return PacketID{
		MsgID:        p.Prelude.MsgID,
		Sender:       p.Sender,
		ReceivedAtMs: p.ReceivedAt.UnixMilli(),
	}
}

// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

type jsonPrelude struct {
	Msg *uint64 `json:"msg,omitempty"`
	Tm  *uint64 `json:"tm,omitempty"`
	V   *uint32 `json:"v,omitempty"`
}

type jsonPacket struct {
	Sender       string      `json:"sender"`
	ReceivedAt   int64       `json:"received_at"`
	Prelude      jsonPrelude `json:"prelude"`
	WallTimeStr  string      `json:"wall_time_str,omitempty"`
	Metrics      []Metric    `json:"metrics"`
	DisplayLines []string    `json:"display_lines,omitempty"`
}

// MarshalJSON renders the wire-out document. Metrics are expected
// to already be in their enriched, device-time-sorted order (C2's job);
// this method does not re-sort.
func (p Packet) MarshalJSON() ([]byte, error) {
	jp := jsonPacket{
		Sender:       p.Sender,
		ReceivedAt:   p.ReceivedAt.UnixMilli(),
		WallTimeStr:  p.WallTimeStr,
		Metrics:      p.Metrics,
		DisplayLines: p.DisplayLines,
	}
	if p.Metrics == nil {
		jp.Metrics = []Metric{}
	}
	if p.Prelude.HasMsgID {
		jp.Prelude.Msg = &p.Prelude.MsgID
	}
	if p.Prelude.HasBaseTime {
		jp.Prelude.Tm = &p.Prelude.BaseTimeUS
	}
	if p.Prelude.HasVersion {
		jp.Prelude.V = &p.Prelude.Version
	}
	return json.Marshal(jp)
}

// UnmarshalJSON parses a wire-out document back into a Packet.
// Used by the archive reader (C6) to round-trip a record line.
func (p *Packet) UnmarshalJSON(b []byte) error {
	var jp jsonPacket
	if err := json.Unmarshal(b, &jp); err != nil {
		return fmt.Errorf("schema: unmarshal packet: %w", err)
	}

	*p = Packet{
		Sender:       jp.Sender,
		ReceivedAt:   msToTime(jp.ReceivedAt),
		WallTimeStr:  jp.WallTimeStr,
		Metrics:      jp.Metrics,
		DisplayLines: jp.DisplayLines,
	}
	if jp.Prelude.Msg != nil {
		p.Prelude.MsgID, p.Prelude.HasMsgID = *jp.Prelude.Msg, true
	}
	if jp.Prelude.Tm != nil {
		p.Prelude.BaseTimeUS, p.Prelude.HasBaseTime = *jp.Prelude.Tm, true
	}
	if jp.Prelude.V != nil {
		p.Prelude.Version, p.Prelude.HasVersion = *jp.Prelude.V, true
	}
	return nil
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

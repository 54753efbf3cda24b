// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package decode implements C1, the frame decoder: it turns one UDP
// datagram payload plus sender metadata into a schema.Packet. Decoding
// never panics and never returns an error to its caller -- an empty or
// all-blank payload becomes a Packet with Err set, and a metric line that
// does not parse becomes an Unknown metric.
package decode

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/telemetryhub/telemetry-hub/internal/metrics"
	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

var (
	msgRe = regexp.MustCompile(`(?:^|[\s,])msg=(\d+)`)
	tmRe  = regexp.MustCompile(`(?:^|[\s,])tm=(\d+)`)
	vRe   = regexp.MustCompile(`(?:^|[\s,])v=(\d+)`)

	errRe = regexp.MustCompile(`error="([^"]*)"`)
)

// Decode parses payload (UTF-8 text, `\n` or `\r\n`-separated lines) into
// a Packet attributed to sender. receivedAt is captured by the caller on
// dequeue from the socket.
func Decode(payload []byte, sender string) schema.Packet {
	pkt := schema.Packet{
		Sender: sender,
		Raw:    string(payload),
	}

	lines := splitLines(string(payload))
	if strings.TrimSpace(string(payload)) == "" {
		pkt.Err = "empty payload"
		metrics.DecodeErrors.Inc()
		return pkt
	}

	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if first {
			first = false
			if looksLikePrelude(line) {
				pkt.Prelude = parsePrelude(line)
				continue
			}
		}

		m, ok := decodeMetricLine(line)
		if ok {
			pkt.Metrics = append(pkt.Metrics, m)
		}
	}

	for i := range pkt.Metrics {
		pkt.Metrics[i].ComputeDeviceTime(pkt.Prelude.BaseTimeUS, pkt.Prelude.HasBaseTime)
	}

	return pkt
}

// looksLikePrelude requires msg= and tm= together, not just any one
// field: a lone v= token is also how an ordinary numeric metric line's
// value is written, and treating it alone as a prelude marker would
// swallow the first metric of a prelude-less packet.
func looksLikePrelude(line string) bool {
	return msgRe.MatchString(line) && tmRe.MatchString(line)
}

func parsePrelude(line string) schema.Prelude {
	var p schema.Prelude
	if m := msgRe.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			p.MsgID, p.HasMsgID = v, true
		}
	}
	if m := tmRe.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			p.BaseTimeUS, p.HasBaseTime = v, true
		}
	}
	if m := vRe.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseUint(m[1], 10, 32); err == nil {
			p.Version, p.HasVersion = uint32(v), true
		}
	}
	return p
}

// decodeMetricLine parses one non-blank metric line: `<name> <payload...>
// <offset_ms>`. The second ok return is always true; Unknown is a
// valid classification, not a failure.
func decodeMetricLine(line string) (schema.Metric, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return schema.Metric{Kind: schema.KindUnknown, Raw: line}, true
	}

	name := tokens[0]
	offsetTok := tokens[len(tokens)-1]
	offset, err := strconv.ParseInt(offsetTok, 10, 64)
	if err != nil || len(tokens) < 3 {
		return schema.Metric{Name: name, Kind: schema.KindUnknown, Raw: line}, true
	}

	payload := strings.Join(tokens[1:len(tokens)-1], " ")

	m := schema.Metric{Name: name, OffsetMS: offset, HasOffset: true}

	switch {
	case strings.HasPrefix(tokens[1], "v="):
		m.Kind = schema.KindNumeric
		m.Value = schema.ParseScalar(strings.TrimPrefix(payload, "v="))
	case strings.HasPrefix(tokens[1], "error="):
		m.Kind = schema.KindError
		if sub := errRe.FindStringSubmatch(payload); sub != nil {
			m.Err = sub[1]
		}
	default:
		fields, ok := parseStructuredFields(payload)
		if !ok {
			m.Kind = schema.KindUnknown
			m.Raw = line
			m.HasOffset = false
			return m, true
		}
		m.Kind = schema.KindStructured
		m.Fields = fields
	}

	return m, true
}

// parseStructuredFields parses `k=v[,k=v...]`, splitting on commas that
// are outside double quotes so values like `ssid="my home"` survive
// intact.
func parseStructuredFields(payload string) ([]Field, bool) {
	parts := splitUnquotedComma(payload)
	if len(parts) == 0 {
		return nil, false
	}

	fields := make([]Field, 0, len(parts))
	for _, part := range parts {
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			return nil, false
		}
		key := strings.TrimSpace(part[:eq])
		val := strings.TrimSpace(part[eq+1:])
		if key == "" {
			return nil, false
		}
		fields = append(fields, Field{Key: key, Value: schema.ParseScalar(val)})
	}
	return fields, true
}

// Field is a local alias kept for readability; it is schema.Field.
type Field = schema.Field

func splitUnquotedComma(s string) []string {
	var parts []string
	inQuotes := false
	start := 0
	for i, r := range s {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}

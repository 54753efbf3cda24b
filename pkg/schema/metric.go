// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MetricKind classifies a decoded metric line.
type MetricKind int

const (
	KindNumeric MetricKind = iota
	KindError
	KindStructured
	KindUnknown
)

func (k MetricKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindError:
		return "error"
	case KindStructured:
		return "structured"
	default:
		return "unknown"
	}
}

func (k MetricKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// Field is one key/value pair of a Structured metric's payload. A slice
// of these (rather than a map) is used so that wire order survives a
// round trip -- Structured's fields are an ordered mapping, not a map.
type Field struct {
	Key   string
	Value Scalar
}

// Metric is one parsed line within a Packet.
type Metric struct {
	Name   string
	Kind   MetricKind

	Value  Scalar  // Numeric only
	Err    string  // Error only
	Fields []Field // Structured only
	Raw    string  // Unknown only

	OffsetMS      int64 // signed, may be negative
	HasOffset     bool
	DeviceTimeUS  int64
	HasDeviceTime bool
	DeviceTimeStr string
}

// ComputeDeviceTime fills DeviceTimeUS/HasDeviceTime from a packet's
// base_time_us and this metric's offset_ms, per the formula
// `device_time_us = base_time_us + offset_ms * 1000`.
func (m *Metric) ComputeDeviceTime(baseTimeUS uint64, hasBase bool) {
	if !hasBase || !m.HasOffset {
		m.HasDeviceTime = false
		return
	}
	m.DeviceTimeUS = int64(baseTimeUS) + m.OffsetMS*1000
	m.HasDeviceTime = true
}

// FormatDeviceTime renders DeviceTimeUS as `MM:SS.mmm`.
func (m *Metric) FormatDeviceTime() {
	if !m.HasDeviceTime {
		m.DeviceTimeStr = ""
		return
	}
	us := m.DeviceTimeUS
	neg := ""
	if us < 0 {
		neg = "-"
		us = -us
	}
	totalMS := us / 1000
	minutes := totalMS / 60000
	seconds := (totalMS / 1000) % 60
	millis := totalMS % 1000
	m.DeviceTimeStr = fmt.Sprintf("%s%02d:%02d.%03d", neg, minutes, seconds, millis)
}

type jsonMetric struct {
	Name          string     `json:"name"`
	Kind          MetricKind `json:"kind"`
	OffsetMS      *int64     `json:"offset_ms,omitempty"`
	DeviceTimeUS  *int64     `json:"device_time_us,omitempty"`
	DeviceTimeStr string     `json:"device_time_str,omitempty"`
	Value         *Scalar    `json:"value,omitempty"`
	Err           string     `json:"error,omitempty"`
}

// MarshalJSON renders the wire-out document shape: kind-specific
// fields are present only when applicable, and Structured's ordered
// `fields` object is hand-written to preserve the original key order
// (encoding/json would otherwise need a map, which loses it).
func (m Metric) MarshalJSON() ([]byte, error) {
	jm := jsonMetric{
		Name: m.Name,
		Kind: m.Kind,
	}
	if m.HasOffset {
		jm.OffsetMS = &m.OffsetMS
	}
	if m.HasDeviceTime {
		jm.DeviceTimeUS = &m.DeviceTimeUS
		jm.DeviceTimeStr = m.DeviceTimeStr
	}

	switch m.Kind {
	case KindNumeric:
		jm.Value = &m.Value
	case KindError:
		jm.Err = m.Err
	case KindUnknown:
		jm.Value = ptrScalar(NewString(m.Raw))
	}

	base, err := json.Marshal(jm)
	if err != nil {
		return nil, err
	}

	if m.Kind != KindStructured || len(m.Fields) == 0 {
		return base, nil
	}

	var fields bytes.Buffer
	fields.WriteString(`,"fields":{`)
	for i, f := range m.Fields {
		if i > 0 {
			fields.WriteByte(',')
		}
		kb, _ := NewString(f.Key).MarshalJSON()
		vb, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		fields.Write(kb)
		fields.WriteByte(':')
		fields.Write(vb)
	}
	fields.WriteByte('}')

	out := base[:len(base)-1]
	out = append(out, fields.Bytes()...)
	out = append(out, '}')
	return out, nil
}

func ptrScalar(s Scalar) *Scalar { return &s }

type jsonMetricIn struct {
	Name          string          `json:"name"`
	Kind          string          `json:"kind"`
	OffsetMS      *int64          `json:"offset_ms,omitempty"`
	DeviceTimeUS  *int64          `json:"device_time_us,omitempty"`
	DeviceTimeStr string          `json:"device_time_str,omitempty"`
	Value         *Scalar         `json:"value,omitempty"`
	Err           string          `json:"error,omitempty"`
	Fields        json.RawMessage `json:"fields,omitempty"`
}

// UnmarshalJSON parses the wire-out document shape back into a
// Metric, preserving Structured's field order (read via json.Decoder's
// token stream rather than a map, which would lose it).
func (m *Metric) UnmarshalJSON(b []byte) error {
	var jm jsonMetricIn
	if err := json.Unmarshal(b, &jm); err != nil {
		return err
	}

	*m = Metric{Name: jm.Name, Err: jm.Err, DeviceTimeStr: jm.DeviceTimeStr}

	switch jm.Kind {
	case "numeric":
		m.Kind = KindNumeric
	case "error":
		m.Kind = KindError
	case "structured":
		m.Kind = KindStructured
	default:
		m.Kind = KindUnknown
	}

	if jm.OffsetMS != nil {
		m.OffsetMS, m.HasOffset = *jm.OffsetMS, true
	}
	if jm.DeviceTimeUS != nil {
		m.DeviceTimeUS, m.HasDeviceTime = *jm.DeviceTimeUS, true
	}
	if jm.Value != nil {
		if m.Kind == KindUnknown {
			m.Raw = jm.Value.StringV()
		} else {
			m.Value = *jm.Value
		}
	}
	if len(jm.Fields) > 0 {
		fields, err := parseOrderedFields(jm.Fields)
		if err != nil {
			return fmt.Errorf("schema: unmarshal metric fields: %w", err)
		}
		m.Fields = fields
	}
	return nil
}

// parseOrderedFields walks raw's object tokens in document order so the
// returned []Field preserves the original wire order.
func parseOrderedFields(raw json.RawMessage) ([]Field, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening '{'
		return nil, err
	}

	var fields []Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var val Scalar
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		fields = append(fields, Field{Key: key, Value: val})
	}
	return fields, nil
}

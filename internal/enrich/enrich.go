// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package enrich implements C2: a pure, three-stage transform over a
// decoded Packet (sort, format times, build display lines). Given the
// same input it always produces bit-identical output.
package enrich

import (
	"fmt"
	"sort"
	"strings"

	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

const nameWidth = 20

// Enrich returns a new Packet with Metrics sorted, WallTimeStr and each
// metric's DeviceTimeStr filled in, and DisplayLines built. The input
// Packet's Metrics slice is copied, never mutated in place, so callers
// holding a reference to the original are unaffected.
func Enrich(pkt schema.Packet) schema.Packet {
	out := pkt
	out.Metrics = sortedCopy(pkt.Metrics)

	out.WallTimeStr = pkt.ReceivedAt.Format("15:04:05.000")

	for i := range out.Metrics {
		out.Metrics[i].FormatDeviceTime()
	}

	out.DisplayLines = make([]string, len(out.Metrics))
	for i, m := range out.Metrics {
		out.DisplayLines[i] = displayLine(out.WallTimeStr, m)
	}

	return out
}

// sortedCopy stably sorts metrics by device_time_us ascending; metrics
// without a device time sort last, in their original relative order.
func sortedCopy(metrics []schema.Metric) []schema.Metric {
	out := make([]schema.Metric, len(metrics))
	copy(out, metrics)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.HasDeviceTime && !b.HasDeviceTime {
			return false
		}
		if !a.HasDeviceTime {
			return false
		}
		if !b.HasDeviceTime {
			return true
		}
		return a.DeviceTimeUS < b.DeviceTimeUS
	})
	return out
}

func displayLine(wall string, m schema.Metric) string {
	dev := m.DeviceTimeStr
	if dev == "" {
		dev = "--:--.---"
	}
	name := m.Name
	if len(name) < nameWidth {
		name += strings.Repeat(" ", nameWidth-len(name))
	}
	return fmt.Sprintf("[%s | %s] %s = %s", wall, dev, name, valueRendering(m))
}

func valueRendering(m schema.Metric) string {
	switch m.Kind {
	case schema.KindNumeric:
		switch m.Value.Kind() {
		case schema.ScalarInt:
			return fmt.Sprintf("%d", m.Value.IntV())
		case schema.ScalarFloat:
			return fmt.Sprintf("%.3f", m.Value.FloatV())
		default:
			return m.Value.StringV()
		}
	case schema.KindError:
		return "ERROR: " + m.Err
	case schema.KindStructured:
		parts := make([]string, len(m.Fields))
		for i, f := range m.Fields {
			parts[i] = fmt.Sprintf("%s=%s", f.Key, f.Value.StringV())
		}
		return strings.Join(parts, ", ")
	default:
		return m.Raw
	}
}

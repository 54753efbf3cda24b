// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package enrich

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

func metricAt(name string, us int64) schema.Metric {
	m := schema.Metric{Name: name, Kind: schema.KindNumeric, Value: schema.NewInt(1)}
	m.DeviceTimeUS = us
	m.HasDeviceTime = true
	return m
}

func TestEnrichSortsByDeviceTimeStable(t *testing.T) {
	pkt := schema.Packet{
		ReceivedAt: time.Date(2024, 1, 1, 10, 20, 30, 500_000_000, time.Local),
		Metrics: []schema.Metric{
			metricAt("c", 3000),
			metricAt("a", 1000),
			metricAt("b", 1000),
		},
	}

	out := Enrich(pkt)

	require.Len(t, out.Metrics, 3)
	assert.Equal(t, "a", out.Metrics[0].Name)
	assert.Equal(t, "b", out.Metrics[1].Name)
	assert.Equal(t, "c", out.Metrics[2].Name)
	assert.Equal(t, "10:20:30.500", out.WallTimeStr)
}

func TestEnrichPutsMissingDeviceTimeLast(t *testing.T) {
	noTime := schema.Metric{Name: "x", Kind: schema.KindNumeric, Value: schema.NewInt(1)}
	pkt := schema.Packet{
		Metrics: []schema.Metric{noTime, metricAt("y", 500)},
	}

	out := Enrich(pkt)

	require.Len(t, out.Metrics, 2)
	assert.Equal(t, "y", out.Metrics[0].Name)
	assert.Equal(t, "x", out.Metrics[1].Name)
}

func TestEnrichIsPureAndDoesNotMutateInput(t *testing.T) {
	pkt := schema.Packet{Metrics: []schema.Metric{metricAt("z", 2000)}}
	original := pkt.Metrics[0]

	_ = Enrich(pkt)

	assert.Equal(t, original, pkt.Metrics[0])
	assert.Empty(t, pkt.DisplayLines)
}

func TestEnrichDisplayLineRendering(t *testing.T) {
	errM := schema.Metric{Name: "heater", Kind: schema.KindError, Err: "thermal runaway"}
	structM := schema.Metric{
		Name: "wifi",
		Kind: schema.KindStructured,
		Fields: []schema.Field{
			{Key: "ip", Value: schema.NewString("10.0.0.1")},
			{Key: "rssi", Value: schema.NewInt(-42)},
		},
	}
	floatM := schema.Metric{Name: "temp", Kind: schema.KindNumeric, Value: schema.NewFloat(205.5)}

	pkt := schema.Packet{Metrics: []schema.Metric{errM, structM, floatM}}
	out := Enrich(pkt)

	require.Len(t, out.DisplayLines, 3)
	assert.Contains(t, out.DisplayLines[0], "ERROR: thermal runaway")
	assert.Contains(t, out.DisplayLines[1], "ip=10.0.0.1, rssi=-42")
	assert.Contains(t, out.DisplayLines[2], "205.500")
}

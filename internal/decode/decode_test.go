// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

func TestDecodePreludeAndNumeric(t *testing.T) {
	payload := "msg=1,tm=1000000,v=1\ntemp v=205.5 10\n"
	pkt := Decode([]byte(payload), "printer-a")

	require.False(t, pkt.HasError())
	assert.True(t, pkt.Prelude.HasMsgID)
	assert.EqualValues(t, 1, pkt.Prelude.MsgID)
	assert.EqualValues(t, 1000000, pkt.Prelude.BaseTimeUS)

	require.Len(t, pkt.Metrics, 1)
	m := pkt.Metrics[0]
	assert.Equal(t, "temp", m.Name)
	assert.Equal(t, schema.KindNumeric, m.Kind)
	assert.Equal(t, 205.5, m.Value.FloatV())
	assert.EqualValues(t, 10, m.OffsetMS)
	require.True(t, m.HasDeviceTime)
	assert.EqualValues(t, 1000000+10*1000, m.DeviceTimeUS)
}

func TestDecodeWithoutPrelude(t *testing.T) {
	pkt := Decode([]byte("fan v=1i 0\n"), "printer-b")

	require.False(t, pkt.HasError())
	assert.False(t, pkt.Prelude.HasBaseTime)
	require.Len(t, pkt.Metrics, 1)
	assert.False(t, pkt.Metrics[0].HasDeviceTime)
	assert.EqualValues(t, 1, pkt.Metrics[0].Value.IntV())
}

func TestDecodeErrorMetricWithQuotedSpaces(t *testing.T) {
	pkt := Decode([]byte(`heater error="thermal runaway" 3`), "printer-c")

	require.Len(t, pkt.Metrics, 1)
	m := pkt.Metrics[0]
	assert.Equal(t, schema.KindError, m.Kind)
	assert.Equal(t, "thermal runaway", m.Err)
}

func TestDecodeStructuredMetric(t *testing.T) {
	pkt := Decode([]byte(`wifi ip="192.168.0.12",ssid="my home",rssi=-42i 5`), "printer-d")

	require.Len(t, pkt.Metrics, 1)
	m := pkt.Metrics[0]
	require.Equal(t, schema.KindStructured, m.Kind)
	require.Len(t, m.Fields, 3)
	assert.Equal(t, "ip", m.Fields[0].Key)
	assert.Equal(t, "192.168.0.12", m.Fields[0].Value.StringV())
	assert.Equal(t, "ssid", m.Fields[1].Key)
	assert.Equal(t, "my home", m.Fields[1].Value.StringV())
	assert.Equal(t, "rssi", m.Fields[2].Key)
	assert.EqualValues(t, -42, m.Fields[2].Value.IntV())
}

func TestDecodeUnknownMetricOnBadOffset(t *testing.T) {
	pkt := Decode([]byte("temp v=20 notanumber\n"), "printer-e")

	require.Len(t, pkt.Metrics, 1)
	m := pkt.Metrics[0]
	assert.Equal(t, schema.KindUnknown, m.Kind)
	assert.False(t, m.HasOffset)
	assert.Contains(t, m.Raw, "temp")
}

func TestDecodeEmptyPayload(t *testing.T) {
	pkt := Decode([]byte(""), "printer-f")
	assert.True(t, pkt.HasError())
}

func TestDecodeNegativeOffset(t *testing.T) {
	pkt := Decode([]byte("msg=2,tm=5000,v=1\ntemp v=1i -3\n"), "printer-g")
	require.Len(t, pkt.Metrics, 1)
	assert.EqualValues(t, -3, pkt.Metrics[0].OffsetMS)
	assert.EqualValues(t, 5000-3*1000, pkt.Metrics[0].DeviceTimeUS)
}

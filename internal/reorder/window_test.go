// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

func withDeviceTime(name string, us int64) schema.Metric {
	m := schema.Metric{Name: name, Kind: schema.KindNumeric, Value: schema.NewInt(1)}
	m.DeviceTimeUS = us
	m.HasDeviceTime = true
	return m
}

func pkt(sender string, msgID uint64, metrics ...schema.Metric) schema.Packet {
	return schema.Packet{
		Sender:  sender,
		Prelude: schema.Prelude{MsgID: msgID, HasMsgID: true},
		Metrics: metrics,
	}
}

func TestWindowEmitsNothingUntilFull(t *testing.T) {
	w := NewWindow(2)
	require.Nil(t, w.Add(pkt("a", 1, withDeviceTime("x", 100))))
	require.Nil(t, w.Add(pkt("a", 2, withDeviceTime("y", 50))))
}

func TestWindowEmitsOldestOnOverflowInDeviceTimeOrder(t *testing.T) {
	w := NewWindow(2)
	w.Add(pkt("a", 1, withDeviceTime("first", 500)))
	w.Add(pkt("a", 2, withDeviceTime("second", 100)))

	emitted := w.Add(pkt("a", 3, withDeviceTime("third", 9000)))

	require.Len(t, emitted, 1)
	assert.Equal(t, "first", emitted[0].Metric.Name)
}

func TestWindowToleratesOutOfOrderWithinWindow(t *testing.T) {
	w := NewWindow(2)
	w.Add(pkt("a", 1, withDeviceTime("late", 2000)))
	emitted := w.Add(pkt("a", 2, withDeviceTime("early", 100)))
	require.Nil(t, emitted)

	emitted = w.Add(pkt("a", 3, withDeviceTime("later-still", 3000)))
	require.Len(t, emitted, 1)
	assert.Equal(t, "late", emitted[0].Metric.Name)
}

func TestWindowEmitsMissingDeviceTimeInArrivalOrder(t *testing.T) {
	w := NewWindow(1)
	noTime1 := schema.Metric{Name: "a", Kind: schema.KindNumeric}
	noTime2 := schema.Metric{Name: "b", Kind: schema.KindNumeric}

	w.Add(pkt("s", 1, noTime1, noTime2))
	emitted := w.Add(pkt("s", 2, withDeviceTime("c", 10)))

	require.Len(t, emitted, 2)
	assert.Equal(t, "a", emitted[0].Metric.Name)
	assert.Equal(t, "b", emitted[1].Metric.Name)
}

func TestWindowEvictsEmptyPacketSilently(t *testing.T) {
	w := NewWindow(1)
	w.Add(pkt("s", 1))
	emitted := w.Add(pkt("s", 2, withDeviceTime("x", 1)))
	assert.Nil(t, emitted)
}

func TestWindowRejectsErroredPackets(t *testing.T) {
	w := NewWindow(1)
	errored := pkt("s", 1)
	errored.Err = "boom"
	assert.Nil(t, w.Add(errored))
}

func TestWindowFlushDrainsAllRemaining(t *testing.T) {
	w := NewWindow(5)
	w.Add(pkt("s", 1, withDeviceTime("a", 10)))
	w.Add(pkt("s", 2, withDeviceTime("b", 5)))

	emitted := w.Flush()
	// Packets are evicted in FIFO order, so packet 1's metric comes first.
	require.Len(t, emitted, 2)
	assert.Equal(t, "a", emitted[0].Metric.Name)
	assert.Equal(t, "b", emitted[1].Metric.Name)
}

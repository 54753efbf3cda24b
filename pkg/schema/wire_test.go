// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketJSONRoundTrip(t *testing.T) {
	orig := Packet{
		Sender:     "printer-a:5000",
		ReceivedAt: time.UnixMilli(1_700_000_000_000),
		Prelude:    Prelude{MsgID: 7, HasMsgID: true, BaseTimeUS: 9000, HasBaseTime: true},
		WallTimeStr: "10:00:00.000",
		Metrics: []Metric{
			{
				Name: "wifi", Kind: KindStructured,
				Fields: []Field{
					{Key: "ip", Value: NewString("10.0.0.1")},
					{Key: "rssi", Value: NewInt(-42)},
				},
			},
			{Name: "temp", Kind: KindNumeric, Value: NewFloat(25.5), OffsetMS: 1, HasOffset: true},
		},
		DisplayLines: []string{"line1", "line2"},
	}

	b, err := json.Marshal(orig)
	require.NoError(t, err)

	var got Packet
	require.NoError(t, json.Unmarshal(b, &got))

	assert.Equal(t, orig.Sender, got.Sender)
	assert.Equal(t, orig.ReceivedAt.UnixMilli(), got.ReceivedAt.UnixMilli())
	assert.Equal(t, orig.Prelude, got.Prelude)
	require.Len(t, got.Metrics, 2)
	require.Len(t, got.Metrics[0].Fields, 2)
	assert.Equal(t, "ip", got.Metrics[0].Fields[0].Key)
	assert.Equal(t, "rssi", got.Metrics[0].Fields[1].Key)
	assert.EqualValues(t, -42, got.Metrics[0].Fields[1].Value.IntV())
	assert.Equal(t, 25.5, got.Metrics[1].Value.FloatV())
}

func TestScalarParseAndMarshal(t *testing.T) {
	assert.Equal(t, ScalarInt, ParseScalar("42i").Kind())
	assert.Equal(t, ScalarFloat, ParseScalar("3.14").Kind())
	assert.Equal(t, ScalarString, ParseScalar(`"hello world"`).Kind())
	assert.Equal(t, "hello world", ParseScalar(`"hello world"`).StringV())
}

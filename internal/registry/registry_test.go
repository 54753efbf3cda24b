// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

func TestRegistryPutAndGet(t *testing.T) {
	r, err := New(2)
	require.NoError(t, err)

	pkt := schema.Packet{Sender: "a", Prelude: schema.Prelude{MsgID: 1, HasMsgID: true}}
	r.Put(pkt)

	got, ok := r.Get(pkt.ID())
	require.True(t, ok)
	assert.Equal(t, pkt.Sender, got.Sender)
}

func TestRegistryEvictsOldestOnOverflow(t *testing.T) {
	r, err := New(1)
	require.NoError(t, err)

	p1 := schema.Packet{Sender: "a", Prelude: schema.Prelude{MsgID: 1, HasMsgID: true}}
	p2 := schema.Packet{Sender: "b", Prelude: schema.Prelude{MsgID: 2, HasMsgID: true}}

	r.Put(p1)
	r.Put(p2)

	_, ok := r.Get(p1.ID())
	assert.False(t, ok)

	_, ok = r.Get(p2.ID())
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryUnknownIDMisses(t *testing.T) {
	r, err := New(4)
	require.NoError(t, err)

	_, ok := r.Get(schema.PacketID{Sender: "nope"})
	assert.False(t, ok)
}

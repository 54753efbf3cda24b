// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package ingest

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenerReceivesDatagram(t *testing.T) {
	l, err := Listen(0, 10)
	require.NoError(t, err)
	l.Start()
	defer l.Close()

	port := l.conn.LocalAddr().(*net.UDPAddr).Port
	sender, err := net.Dial("udp", (&net.UDPAddr{Port: port, IP: net.IPv4(127, 0, 0, 1)}).String())
	require.NoError(t, err)
	defer sender.Close()

	_, err = sender.Write([]byte("msg=1,tm=1,v=1\ntemp v=1i 0\n"))
	require.NoError(t, err)

	select {
	case d := <-l.Datagrams():
		assert.Contains(t, string(d.Payload), "temp")
		assert.NotEmpty(t, d.Sender)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for datagram")
	}
}

func TestListenerCloseStopsReadLoop(t *testing.T) {
	l, err := Listen(0, 10)
	require.NoError(t, err)
	l.Start()

	require.NoError(t, l.Close())

	_, open := <-l.Datagrams()
	assert.False(t, open)
}

func TestListenerDropsOldestOnFullQueue(t *testing.T) {
	l, err := Listen(0, 1)
	require.NoError(t, err)

	l.enqueue(Datagram{Payload: []byte("first"), Sender: "a"})
	l.enqueue(Datagram{Payload: []byte("second"), Sender: "a"})

	assert.Equal(t, uint64(1), l.Drops())
	d := <-l.queue
	assert.Equal(t, "second", string(d.Payload))
}

// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/telemetryhub/telemetry-hub/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 5 * time.Second

// handleWebSocket godoc
// @Summary      Stream enriched packets
// @Description  Upgrades to a WebSocket and streams every enriched packet delivered by the hub, one JSON document per message (see the wire-out format).
// @Router       /ws [get]
func (s *Server) handleWebSocket(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Warnf("api: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	handle, rx := s.Hub.Subscribe(s.SubscriberBufferCapacity)
	defer s.Hub.Unsubscribe(handle)

	// The adapter never reads application data from the client; a
	// reader goroutine is still needed so gorilla/websocket's control
	// frames (ping/close) are processed and the connection close is
	// detected.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case pkt, ok := <-rx:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(pkt); err != nil {
				log.Debugf("api: websocket write failed, closing connection: %v", err)
				return
			}
		case <-closed:
			return
		}
	}
}

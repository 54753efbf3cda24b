// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

// handlePacket looks up a single packet by its PacketId, for
// inspectors that only have a reorder-window Emitted metric and need
// the full packet it came from.
//
// @Summary Look up one packet by provenance key
// @Router /api/packet/{sender}/{msgId}/{receivedAtMs} [get]
func (s *Server) handlePacket(w http.ResponseWriter, r *http.Request) {
	if s.Registry == nil {
		writeJSONError(w, http.StatusNotImplemented, errors.New("packet registry not enabled"))
		return
	}

	vars := mux.Vars(r)
	msgID, err := strconv.ParseUint(vars["msgId"], 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, errors.New("invalid msgId"))
		return
	}
	receivedAtMs, err := strconv.ParseInt(vars["receivedAtMs"], 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, errors.New("invalid receivedAtMs"))
		return
	}

	id := schema.PacketID{Sender: vars["sender"], MsgID: msgID, ReceivedAtMs: receivedAtMs}
	pkt, ok := s.Registry.Get(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, errors.New("packet not found or evicted"))
		return
	}

	writeJSON(w, http.StatusOK, pkt)
}

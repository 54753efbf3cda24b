// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package api implements C7's outbound transport adapters: the REST
// endpoints onto the archive reader (C6), the WebSocket fan-out onto
// the hub (C4), a Prometheus metrics endpoint, and a health endpoint.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/telemetryhub/telemetry-hub/internal/archive"
	"github.com/telemetryhub/telemetry-hub/internal/hub"
	"github.com/telemetryhub/telemetry-hub/internal/registry"
	"github.com/telemetryhub/telemetry-hub/pkg/log"
	"github.com/telemetryhub/telemetry-hub/pkg/schema"
)

// Server bundles the dependencies the outbound adapters need.
type Server struct {
	Reader                   *archive.Reader
	Hub                      *hub.Hub
	Registry                 *registry.Registry
	SubscriberBufferCapacity int
	Dev                      bool
}

// Router builds the mux.Router for all outbound HTTP/WebSocket routes,
// wrapped in a CORS/compression/recovery/logging middleware stack.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	// The WebSocket upgrade needs the raw connection via http.Hijacker;
	// handlers.CompressHandler's gzip-wrapping ResponseWriter doesn't
	// implement that, so /ws is kept outside the compressed subrouter.
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	compressed := r.NewRoute().Subrouter()
	compressed.Use(handlers.CompressHandler)

	compressed.HandleFunc("/api/archives", s.handleListArchives).Methods(http.MethodGet)
	compressed.HandleFunc("/api/archive/{date}/{filename}", s.handleReadArchive).Methods(http.MethodGet)
	compressed.HandleFunc("/api/packet/{sender}/{msgId}/{receivedAtMs}", s.handlePacket).Methods(http.MethodGet)
	compressed.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	compressed.Handle("/metrics", metricsHandler()).Methods(http.MethodGet)

	if s.Dev {
		// Registered before the /swagger/ prefix route, which would
		// otherwise match doc.json first.
		compressed.HandleFunc("/swagger/doc.json", handleSwaggerDoc).Methods(http.MethodGet)
		compressed.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"))).Methods(http.MethodGet)
	}

	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))
	r.Use(handlers.CORS(
		handlers.AllowedHeaders([]string{"Content-Type", "Origin"}),
		handlers.AllowedMethods([]string{"GET"}),
		handlers.AllowedOrigins([]string{"*"})))

	return handlers.CustomLoggingHandler(io.Discard, r, func(_ io.Writer, params handlers.LogFormatterParams) {
		if strings.HasPrefix(params.Request.RequestURI, "/api/") {
			log.Infof("%s %s (%d, %.02fkb, %dms)",
				params.Request.Method, params.URL.RequestURI(),
				params.StatusCode, float32(params.Size)/1024,
				time.Since(params.TimeStamp).Milliseconds())
			return
		}
		log.Debugf("%s %s (%d, %.02fkb, %dms)",
			params.Request.Method, params.URL.RequestURI(),
			params.StatusCode, float32(params.Size)/1024,
			time.Since(params.TimeStamp).Milliseconds())
	})
}

// handleListArchives godoc
// @Summary      List archived print records
// @Description  Returns every records file known to the archive, sorted by (date, filename).
// @Produce      json
// @Success      200  {array}  archive.Entry
// @Router       /api/archives [get]
func (s *Server) handleListArchives(rw http.ResponseWriter, r *http.Request) {
	entries, err := s.Reader.ListArchives()
	if err != nil {
		writeJSONError(rw, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []archive.Entry{}
	}
	writeJSON(rw, http.StatusOK, entries)
}

// handleReadArchive godoc
// @Summary      Read one archived print's records
// @Description  Returns every enriched packet recorded for the given date/filename.
// @Produce      json
// @Param        date      path  string  true  "YYYY-MM-DD"
// @Param        filename  path  string  true  "sanitized print filename, including .records"
// @Success      200  {array}  schema.Packet
// @Router       /api/archive/{date}/{filename} [get]
func (s *Server) handleReadArchive(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	packets, err := s.Reader.ReadArchive(vars["date"], vars["filename"])
	if err != nil {
		writeJSONError(rw, http.StatusNotFound, err)
		return
	}
	if packets == nil {
		packets = []schema.Packet{}
	}
	writeJSON(rw, http.StatusOK, packets)
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		log.Errorf("api: encode response: %v", err)
	}
}

func writeJSONError(rw http.ResponseWriter, status int, err error) {
	writeJSON(rw, status, map[string]string{"error": err.Error()})
}

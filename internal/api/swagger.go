// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package api

import "net/http"

// swaggerDoc is the OpenAPI document served at /swagger/doc.json in dev
// mode. Regenerate with `swag init` against this package's @Summary
// annotations once the handlers change; kept hand-written here so the
// dev-mode swagger UI has something to point at without requiring a
// codegen step at build time.
const swaggerDoc = `{
  "swagger": "2.0",
  "info": {"title": "telemetry-hub", "version": "1.0"},
  "paths": {
    "/api/archives": {
      "get": {"summary": "List archived print records", "produces": ["application/json"],
        "responses": {"200": {"description": "OK"}}}
    },
    "/api/archive/{date}/{filename}": {
      "get": {"summary": "Read one archived print's records", "produces": ["application/json"],
        "parameters": [
          {"name": "date", "in": "path", "required": true, "type": "string"},
          {"name": "filename", "in": "path", "required": true, "type": "string"}
        ],
        "responses": {"200": {"description": "OK"}}}
    },
    "/api/packet/{sender}/{msgId}/{receivedAtMs}": {
      "get": {"summary": "Look up one enriched packet by its identity", "produces": ["application/json"],
        "parameters": [
          {"name": "sender", "in": "path", "required": true, "type": "string"},
          {"name": "msgId", "in": "path", "required": true, "type": "integer"},
          {"name": "receivedAtMs", "in": "path", "required": true, "type": "integer"}
        ],
        "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
    },
    "/ws": {
      "get": {"summary": "Stream enriched packets over a WebSocket", "responses": {"101": {"description": "Switching Protocols"}}}
    },
    "/healthz": {
      "get": {"summary": "Liveness check", "responses": {"200": {"description": "OK"}}}
    }
  }
}`

func handleSwaggerDoc(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	rw.Write([]byte(swaggerDoc))
}

// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config defines the configuration keys and their defaults; Load
// returns a Keys value built from an optional JSON file validated against
// an embedded JSON Schema.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/telemetryhub/telemetry-hub/pkg/log"
)

// Keys holds the effective configuration; Load overwrites the zero or
// default values below with anything present in the config file.
type Keys struct {
	UDPPort  int `json:"udp_port"`
	HTTPPort int `json:"http_port"`

	ArchiveRoot            string `json:"archive_root"`
	PrintEndTimeoutSeconds int    `json:"print_end_timeout_seconds"`
	SyncWrites             bool   `json:"sync_writes"`

	ReorderWindowSize int `json:"reorder_window_size"`

	InputQueueCapacity          int `json:"input_queue_capacity"`
	SubscriberBufferCapacity    int `json:"subscriber_buffer_capacity"`
	ArchiveWriterBufferCapacity int `json:"archive_writer_buffer_capacity"`

	NATSURL     string `json:"nats_url"`
	NATSSubject string `json:"nats_subject"`

	LogLevel string `json:"log_level"`

	// Group and User, if set, are dropped into after binding the UDP
	// and HTTP listeners, so the process can bind a privileged port and
	// still run unprivileged afterwards.
	Group string `json:"group"`
	User  string `json:"user"`
}

// Default is the configuration used when no config file is given.
var Default = Keys{
	UDPPort:                     8514,
	HTTPPort:                    8080,
	ArchiveRoot:                 "telemetry/prints",
	PrintEndTimeoutSeconds:      600,
	ReorderWindowSize:           2,
	InputQueueCapacity:          1000,
	SubscriberBufferCapacity:    100,
	ArchiveWriterBufferCapacity: 100,
	NATSSubject:                 "telemetry.metrics",
	LogLevel:                    "info",
}

// Load builds a Keys starting from Default, overlaying the JSON config
// file at path (if it exists), and applying the TELEMETRY_ARCHIVE_DIR
// environment override. A missing file is not an error; a
// malformed one is. Unknown JSON fields are rejected, matching the
// teacher's config-loading strictness.
func Load(path string) (Keys, error) {
	keys := Default

	if envFile := ".env"; fileExists(envFile) {
		if err := godotenv.Load(envFile); err != nil {
			log.Warnf("config: loading %s failed: %v", envFile, err)
		}
	}

	if path != "" && fileExists(path) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Keys{}, fmt.Errorf("config: read %s: %w", path, err)
		}

		if err := Validate(raw); err != nil {
			return Keys{}, fmt.Errorf("config: validate %s: %w", path, err)
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&keys); err != nil {
			return Keys{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	if dir := os.Getenv("TELEMETRY_ARCHIVE_DIR"); dir != "" {
		keys.ArchiveRoot = dir
	}

	return keys, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

// configSchema is the JSON Schema the config file is validated against
// before decoding.
const configSchema = `
{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "telemetry-hub config",
  "type": "object",
  "properties": {
    "udp_port": {"type": "integer", "minimum": 1, "maximum": 65535},
    "http_port": {"type": "integer", "minimum": 1, "maximum": 65535},
    "archive_root": {"type": "string", "minLength": 1},
    "print_end_timeout_seconds": {"type": "integer", "minimum": 1},
    "sync_writes": {"type": "boolean"},
    "reorder_window_size": {"type": "integer", "minimum": 1},
    "input_queue_capacity": {"type": "integer", "minimum": 1},
    "subscriber_buffer_capacity": {"type": "integer", "minimum": 1},
    "archive_writer_buffer_capacity": {"type": "integer", "minimum": 1},
    "nats_url": {"type": "string"},
    "nats_subject": {"type": "string"},
    "log_level": {"type": "string", "enum": ["debug", "info", "warn", "err", "crit"]},
    "group": {"type": "string"},
    "user": {"type": "string"}
  },
  "additionalProperties": false
}
`

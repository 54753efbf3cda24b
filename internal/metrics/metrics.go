// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics holds the process-wide Prometheus collectors shared
// across the pipeline stages (the error-handling design names each of
// these explicitly). Kept in its own package so C1/C4/C5 can increment
// them without importing the HTTP adapter that serves /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "telemetry_hub",
		Name:      "decode_errors_total",
		Help:      "Datagrams that failed to decode into a valid packet (C1).",
	})
	SubscriberDrops = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "telemetry_hub",
		Name:      "subscriber_drops_total",
		Help:      "Packets dropped from a hub subscriber's buffer due to overflow (C4).",
	})
	ArchiveErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "telemetry_hub",
		Name:      "archive_write_errors_total",
		Help:      "Filesystem errors encountered while appending archive records (C5).",
	})
	ActivePrints = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "telemetry_hub",
		Name:      "active_prints",
		Help:      "Number of senders currently in the Active ActivePrint state (C5).",
	})
	InputDrops = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "telemetry_hub",
		Name:      "input_queue_drops_total",
		Help:      "Datagrams dropped from the UDP inbound queue due to overflow (C7).",
	})
)

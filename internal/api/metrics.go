// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsHandler serves every collector registered in
// internal/metrics (decode errors, subscriber drops, archive write
// errors, active prints, input queue drops) in Prometheus text format.
func metricsHandler() http.Handler {
	return promhttp.Handler()
}

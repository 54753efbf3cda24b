// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"os"

	"github.com/google/gops/agent"

	"github.com/telemetryhub/telemetry-hub/internal/config"
	"github.com/telemetryhub/telemetry-hub/pkg/log"
)

func main() {
	flags := parseFlags()

	// See https://github.com/google/gops (runtime overhead is almost zero).
	if flags.gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		log.Fatalf("config: %s", err.Error())
	}
	if flags.udpPort > 0 {
		cfg.UDPPort = flags.udpPort
	}
	if flags.httpPort > 0 {
		cfg.HTTPPort = flags.httpPort
	}

	log.SetLevel(cfg.LogLevel)

	if err := run(cfg, flags.dev); err != nil {
		log.Errorf("telemetry-hub: %s", err.Error())
		os.Exit(1)
	}
}

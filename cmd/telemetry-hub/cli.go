// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"flag"
	"strconv"
)

// cliFlags is the parsed command line: `telemetry-hub serve [udp-port]
// [http-port]`, ports positional and optional.
type cliFlags struct {
	configPath string
	gops       bool
	dev        bool
	udpPort    int
	httpPort   int
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "./config.json", "overwrite the default config by those specified in `config.json`")
	flag.BoolVar(&f.gops, "gops", false, "listen via github.com/google/gops/agent (for debugging)")
	flag.BoolVar(&f.dev, "dev", false, "mount /swagger/ and log /api/ requests more verbosely")
	flag.Parse()

	args := flag.Args()
	// args[0], if present, is the "serve" subcommand; the rest are the
	// optional positional ports.
	if len(args) > 0 && args[0] == "serve" {
		args = args[1:]
	}
	if len(args) > 0 {
		if p, err := strconv.Atoi(args[0]); err == nil {
			f.udpPort = p
		}
	}
	if len(args) > 1 {
		if p, err := strconv.Atoi(args[1]); err == nil {
			f.httpPort = p
		}
	}
	return f
}

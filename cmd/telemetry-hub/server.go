// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/telemetryhub/telemetry-hub/internal/api"
	"github.com/telemetryhub/telemetry-hub/internal/archive"
	"github.com/telemetryhub/telemetry-hub/internal/config"
	"github.com/telemetryhub/telemetry-hub/internal/decode"
	"github.com/telemetryhub/telemetry-hub/internal/enrich"
	"github.com/telemetryhub/telemetry-hub/internal/hub"
	"github.com/telemetryhub/telemetry-hub/internal/ingest"
	"github.com/telemetryhub/telemetry-hub/internal/nats"
	"github.com/telemetryhub/telemetry-hub/internal/registry"
	"github.com/telemetryhub/telemetry-hub/internal/reorder"
	"github.com/telemetryhub/telemetry-hub/internal/sweep"
	"github.com/telemetryhub/telemetry-hub/pkg/log"
	"github.com/telemetryhub/telemetry-hub/pkg/runtimeEnv"
)

// registryCapacity bounds the inspector packet registry.
const registryCapacity = 2000

// run wires C1 through C7 together into one pipeline and drives the
// cooperative shutdown sequence: stop the UDP reader, close the input
// queue, let decode+enrich drain, let the hub and its subscribers
// drain, then flush and close the archive writer's files.
func run(cfg config.Keys, dev bool) error {
	listener, err := ingest.Listen(cfg.UDPPort, cfg.InputQueueCapacity)
	if err != nil {
		return fmt.Errorf("bind udp port %d: %w", cfg.UDPPort, err)
	}
	listener.Start()
	log.Infof("telemetry-hub: listening for UDP telemetry on :%d", cfg.UDPPort)

	h := hub.New()

	reg, err := registry.New(registryCapacity)
	if err != nil {
		return fmt.Errorf("build packet registry: %w", err)
	}

	writer := archive.NewWriter(h, cfg.ArchiveRoot,
		time.Duration(cfg.PrintEndTimeoutSeconds)*time.Second,
		cfg.ArchiveWriterBufferCapacity)
	writer.SyncWrites = cfg.SyncWrites
	writer.Start()

	sc, err := sweep.New(writer, sweep.DefaultInterval)
	if err != nil {
		return fmt.Errorf("build sweep scheduler: %w", err)
	}
	sc.Start()

	tap, err := nats.Connect(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		log.Warnf("telemetry-hub: nats tap disabled, connect failed: %v", err)
		tap = nil
	}

	window := reorder.NewWindow(cfg.ReorderWindowSize)

	restSrv := &api.Server{
		Reader:                   archive.NewReader(cfg.ArchiveRoot),
		Hub:                      h,
		Registry:                 reg,
		SubscriberBufferCapacity: cfg.SubscriberBufferCapacity,
		Dev:                      dev,
	}

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpListener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return fmt.Errorf("bind http port %d: %w", cfg.HTTPPort, err)
	}

	httpSrv := &http.Server{
		Addr:         httpAddr,
		Handler:      restSrv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Both listeners are already bound (possibly to privileged ports);
	// drop to an unprivileged user/group, if configured, before serving.
	if err := runtimeEnv.DropPrivileges(cfg.User, cfg.Group); err != nil {
		return fmt.Errorf("drop privileges: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httpSrv.Serve(httpListener); err != nil && err != http.ErrServerClosed {
			log.Errorf("telemetry-hub: http server: %v", err)
		}
	}()
	log.Infof("telemetry-hub: serving HTTP/WebSocket API on %s", httpAddr)

	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
		for dg := range listener.Datagrams() {
			pkt := decode.Decode(dg.Payload, dg.Sender)
			pkt.ReceivedAt = time.Now()
			pkt = enrich.Enrich(pkt)

			if pkt.HasError() {
				continue
			}

			reg.Put(pkt)
			h.Publish(pkt)

			for _, e := range window.Add(pkt) {
				tap.Publish(e)
			}
		}
		for _, e := range window.Flush() {
			tap.Publish(e)
		}
	}()

	runtimeEnv.SystemdNotifiy(true, "running")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	runtimeEnv.SystemdNotifiy(false, "shutting down")
	log.Info("telemetry-hub: shutting down")

	// Stop the UDP reader and close its queue; the pipeline goroutine
	// drains whatever was already queued, then exits.
	if err := listener.Close(); err != nil {
		log.Warnf("telemetry-hub: closing udp listener: %v", err)
	}
	<-pipelineDone

	// The archive writer drains and flushes its own subscription.
	writer.Stop()
	sc.Shutdown()

	// Close every remaining subscriber (e.g. open WebSocket connections).
	h.Shutdown()
	tap.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Warnf("telemetry-hub: http server shutdown: %v", err)
	}
	wg.Wait()

	log.Info("telemetry-hub: graceful shutdown complete")
	return nil
}

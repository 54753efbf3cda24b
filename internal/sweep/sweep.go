// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sweep runs the periodic background jobs that keep the
// archive writer's in-memory state bounded when senders go silent
// without ever sending another packet.
package sweep

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/telemetryhub/telemetry-hub/internal/archive"
	"github.com/telemetryhub/telemetry-hub/pkg/log"
)

// DefaultInterval is how often the idle sweep runs when none is given.
const DefaultInterval = 1 * time.Minute

// Scheduler owns the gocron scheduler driving the idle-ActivePrint
// sweep (the same timeout transition the writer applies, triggered
// here instead of only on packet arrival).
type Scheduler struct {
	s gocron.Scheduler
}

// New constructs a Scheduler and registers the idle sweep for w,
// running every interval (DefaultInterval if interval <= 0). The
// scheduler is not started until Start is called.
func New(w *archive.Writer, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("sweep: create scheduler: %w", err)
	}

	if _, err := s.NewJob(gocron.DurationJob(interval), gocron.NewTask(func() {
		w.SweepIdle()
	})); err != nil {
		return nil, fmt.Errorf("sweep: register idle sweep: %w", err)
	}

	return &Scheduler{s: s}, nil
}

// Start begins running registered jobs on the scheduler's own
// goroutines.
func (sc *Scheduler) Start() {
	sc.s.Start()
}

// Shutdown stops the scheduler and waits for in-flight jobs to finish.
func (sc *Scheduler) Shutdown() {
	if err := sc.s.Shutdown(); err != nil {
		log.Warnf("sweep: shutdown: %v", err)
	}
}

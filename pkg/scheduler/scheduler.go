// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MalmbergUitgeverij/watchboard/pkg/config"
	"github.com/MalmbergUitgeverij/watchboard/pkg/plugin"
	"github.com/MalmbergUitgeverij/watchboard/pkg/session"
)

// Scheduler runs one plugin periodically.
type Scheduler struct {
	plugin   plugin.Plugin
	sessions *session.Manager
	config   *config.Manager
	maxAge   func() time.Duration

	stopped  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New returns a scheduler for p. The scheduler owns sessions.
func New(p plugin.Plugin, sessions *session.Manager, mgr *config.Manager) *Scheduler {
	s := &Scheduler{
		plugin:   p,
		sessions: sessions,
		config:   mgr,
		stopCh:   make(chan struct{}),
	}
	s.maxAge = s.maxSessionAge
	return s
}

// Run starts the session and loops until ctx is done or Stop is called.
// It returns an error only when the session cannot be started.
func (s *Scheduler) Run(ctx context.Context) error {
	log := slog.With("sourceType", s.plugin.Type())
	log.Info("starting scheduler", "name", s.plugin.Name(), "interval", s.plugin.UpdateInterval())

	started, err := s.startSession(ctx)
	if err != nil {
		return err
	}
	if !started {
		log.Info("scheduler stopped before session start")
		return nil
	}
	defer s.sessions.Shutdown()

	s.plugin.Login(ctx)

	for {
		if s.stopped.Load() || ctx.Err() != nil {
			break
		}
		if err := s.tick(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}

		t := time.NewTimer(s.plugin.UpdateInterval())
		select {
		case <-ctx.Done():
		case <-s.stopCh:
		case <-t.C:
		}
		t.Stop()
	}

	log.Info("scheduler stopped")
	return nil
}

// Stop prevents new captures and ends the loop. It does not wait.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		s.plugin.Shutdown()
		close(s.stopCh)
	})
}

// startSession starts the browser session. Stop or ctx abandons a pending
// start; started is false in that case.
func (s *Scheduler) startSession(ctx context.Context) (started bool, err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := s.sessions.Start(ctx); err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Scheduler) tick(ctx context.Context) error {
	runID := uuid.NewString()
	log := slog.With("sourceType", s.plugin.Type(), "runID", runID)

	if maxAge := s.maxAge(); maxAge > 0 {
		if age := s.sessions.Age(); age >= maxAge {
			log.Info("browser session expired, restarting", "age", age.Round(time.Second), "maxAge", maxAge)
			if err := s.sessions.Restart(ctx); err != nil {
				return err
			}
			s.plugin.Login(ctx)
		}
	}

	log.Debug("capture run started")
	res := s.plugin.Update(ctx)

	runsTotal.WithLabelValues(s.plugin.Type()).Inc()
	runDuration.WithLabelValues(s.plugin.Type()).Observe(res.Duration.Seconds())
	lastRun.WithLabelValues(s.plugin.Type()).SetToCurrentTime()

	log.Debug("capture run finished", "captured", res.Captured, "failed", res.Failed, "duration", res.Duration)
	return nil
}

func (s *Scheduler) maxSessionAge() time.Duration {
	snap := s.config.Current()
	if snap == nil {
		return 0
	}
	return snap.Settings.MaxSessionDuration()
}

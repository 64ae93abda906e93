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
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MalmbergUitgeverij/watchboard/pkg/browser"
	"github.com/MalmbergUitgeverij/watchboard/pkg/config"
	"github.com/MalmbergUitgeverij/watchboard/pkg/defaults"
	"github.com/MalmbergUitgeverij/watchboard/pkg/document"
	"github.com/MalmbergUitgeverij/watchboard/pkg/plugin"
	"github.com/MalmbergUitgeverij/watchboard/pkg/session"
)

// Group runs one scheduler per configured source.
type Group struct {
	schedulers []*Scheduler
}

// NewGroup builds schedulers for every source of the active snapshot.
// Sessions are opened with open, or browser.Open when nil.
func NewGroup(ctx context.Context, mgr *config.Manager, open browser.Opener) (*Group, error) {
	snap, err := mgr.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	g := &Group{}
	for _, src := range snap.Sources() {
		sessions := session.NewManager(SessionConfig(src.Type, snap.Settings, open))
		p, err := plugin.New(src.Type, mgr, sessions)
		if err != nil {
			return nil, err
		}
		g.schedulers = append(g.schedulers, New(p, sessions, mgr))
	}
	return g, nil
}

// SessionConfig derives the session settings of a source.
func SessionConfig(sourceType string, settings *document.Settings, open browser.Opener) session.Config {
	opts := browser.Options{
		Backend:         settings.BrowserBackend(),
		Headless:        settings.Headless(),
		SocketTimeout:   defaults.SessionSocketTimeout,
		NavigationGrace: defaults.NavigationGrace,
		WindowWidth:     defaults.WorkingViewportWidth,
		WindowHeight:    defaults.WorkingViewportHeight,
	}
	if b := settings.Browser; b != nil {
		opts.URL = b.URL
		opts.ExecPath = b.ExecPath
	}
	return session.Config{
		Name:             sourceType,
		Open:             open,
		Options:          opts,
		RetryInterval:    settings.SessionRetryInterval(),
		MaxStartAttempts: settings.MaxStartAttempts(),
		StartSettle:      defaults.SessionStartSettle,
		ShutdownSettle:   defaults.SessionShutdownSettle,
	}
}

// Len returns the number of schedulers.
func (g *Group) Len() int {
	return len(g.schedulers)
}

// Run runs every scheduler until ctx is done. A scheduler that fails does
// not stop the others; the first failure is returned once all have ended.
func (g *Group) Run(ctx context.Context) error {
	var eg errgroup.Group
	for _, s := range g.schedulers {
		eg.Go(func() error {
			if err := s.Run(ctx); err != nil {
				slog.Error("scheduler failed", "sourceType", s.plugin.Type(), "error", err)
				return err
			}
			return nil
		})
	}
	return eg.Wait()
}

// Stop stops every scheduler.
func (g *Group) Stop() {
	for _, s := range g.schedulers {
		s.Stop()
	}
}

// Drain runs every scheduler until ctx is done, then stops them
// cooperatively: no new graph is started and a capture in flight runs to
// completion. Captures still running after drain are cancelled.
func (g *Group) Drain(ctx context.Context, drain time.Duration) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}

		slog.Info("stopping schedulers", "drain", drain)
		g.Stop()

		t := time.NewTimer(drain)
		defer t.Stop()
		select {
		case <-t.C:
			slog.Warn("schedulers did not stop within drain timeout, cancelling captures", "drain", drain)
			cancel()
		case <-done:
		}
	}()

	err := g.Run(runCtx)
	close(done)
	return err
}

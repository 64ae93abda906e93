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

package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/MalmbergUitgeverij/watchboard/pkg/browser"
	"github.com/MalmbergUitgeverij/watchboard/pkg/defaults"
	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
)

// Config configures a Manager.
type Config struct {
	// Name identifies the owning source in logs and metrics.
	Name string
	// Open creates sessions; defaults to browser.Open.
	Open browser.Opener
	// Options are passed to Open.
	Options browser.Options
	// RetryInterval is the pause between failed start attempts.
	RetryInterval time.Duration
	// MaxStartAttempts bounds Start; 0 retries until ctx is done.
	MaxStartAttempts int
	// StartSettle and ShutdownSettle are pauses after start and shutdown.
	StartSettle    time.Duration
	ShutdownSettle time.Duration
}

// Manager owns one browser session.
type Manager struct {
	cfg Config

	mu        sync.Mutex
	session   browser.Session
	startedAt time.Time
}

// NewManager returns a manager with no running session.
func NewManager(cfg Config) *Manager {
	if cfg.Open == nil {
		cfg.Open = browser.Open
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaults.SessionRetryInterval
	}
	return &Manager{cfg: cfg}
}

// Start opens a session, retrying on failure. It returns a SESSION_INIT
// error once MaxStartAttempts is exhausted, or ctx.Err() when cancelled.
// A running session is left in place.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return nil
	}

	steps := m.cfg.MaxStartAttempts
	if steps <= 0 {
		steps = math.MaxInt32
	}
	backoff := wait.Backoff{
		Duration: m.cfg.RetryInterval,
		Factor:   1,
		Steps:    steps,
	}

	attempt := 0
	var lastErr error
	err := wait.ExponentialBackoffWithContext(ctx, backoff, func(ctx context.Context) (bool, error) {
		attempt++
		slog.Info("starting browser session", "sourceType", m.cfg.Name, "attempt", attempt,
			"backend", m.cfg.Options.Backend)

		s, err := m.cfg.Open(ctx, m.cfg.Options)
		if err != nil {
			lastErr = err
			startAttempts.WithLabelValues(m.cfg.Name, "failure").Inc()
			slog.Error("error initializing browser session, retrying",
				"sourceType", m.cfg.Name,
				"attempt", attempt,
				"retryIn", m.cfg.RetryInterval,
				"error", err)
			return false, nil
		}

		startAttempts.WithLabelValues(m.cfg.Name, "success").Inc()
		s.SetNavigationTimeouts(true)
		m.session = s
		m.startedAt = time.Now()
		return true, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.WrapWithContext(errors.ErrCodeSessionInit,
			fmt.Sprintf("browser session did not start after %d attempts", attempt), lastErr,
			map[string]any{"sourceType": m.cfg.Name})
	}

	sleep(ctx, m.cfg.StartSettle)
	return nil
}

// Shutdown closes the session if one is running. It never fails.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.session; s != nil {
		m.session = nil
		m.startedAt = time.Time{}
		closeQuietly(m.cfg.Name, s)
	}
	sleep(context.Background(), m.cfg.ShutdownSettle)
}

// Restart shuts the session down and starts a new one.
func (m *Manager) Restart(ctx context.Context) error {
	restarts.WithLabelValues(m.cfg.Name).Inc()
	m.Shutdown()
	return m.Start(ctx)
}

// Session returns the running session, or nil.
func (m *Manager) Session() browser.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Age returns how long the running session has been up, or 0.
func (m *Manager) Age() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return 0
	}
	return time.Since(m.startedAt)
}

func closeQuietly(name string, s browser.Session) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while shutting down browser session", "sourceType", name, "panic", r)
		}
	}()
	if err := s.Close(); err != nil {
		slog.Error("error while shutting down browser session", "sourceType", name, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

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
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MalmbergUitgeverij/watchboard/pkg/browser"
	"github.com/MalmbergUitgeverij/watchboard/pkg/browser/browsertest"
	"github.com/MalmbergUitgeverij/watchboard/pkg/capture"
	"github.com/MalmbergUitgeverij/watchboard/pkg/config"
	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
	"github.com/MalmbergUitgeverij/watchboard/pkg/plugin"
	"github.com/MalmbergUitgeverij/watchboard/pkg/session"
)

type fakePlugin struct {
	interval time.Duration
	onUpdate func(n int32)

	logins   atomic.Int32
	updates  atomic.Int32
	shutdown atomic.Bool
}

func (p *fakePlugin) Name() string                  { return "Fake" }
func (p *fakePlugin) Type() string                  { return "fake" }
func (p *fakePlugin) UpdateInterval() time.Duration { return p.interval }
func (p *fakePlugin) Login(context.Context)         { p.logins.Add(1) }
func (p *fakePlugin) Shutdown()                     { p.shutdown.Store(true) }

func (p *fakePlugin) Update(context.Context) plugin.Result {
	n := p.updates.Add(1)
	if p.onUpdate != nil {
		p.onUpdate(n)
	}
	return plugin.Result{Duration: time.Millisecond}
}

const settingsDoc = `{
  "httpPort": 8080,
  "webContextRoot": "/",
  "tempPath": %q,
  "maxSessionDurationMinutes": 0,
  "sources": [
    {"type": "kibana", "updateIntervalSeconds": 1},
    {"type": "grafana", "updateIntervalSeconds": 1}
  ],
  "dashboardConfig": {},
  "dashboards": []
}`

func newManager(t *testing.T, doc string) *config.Manager {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(doc, dir)), 0o600))
	mgr := config.NewManager(path)
	_, err := mgr.Snapshot(t.Context())
	require.NoError(t, err)
	return mgr
}

type openerCounter struct {
	mu       sync.Mutex
	sessions []*browsertest.Session
}

func (o *openerCounter) open(context.Context, browser.Options) (browser.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := browsertest.New(nil)
	o.sessions = append(o.sessions, s)
	return s, nil
}

func (o *openerCounter) all() []*browsertest.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*browsertest.Session(nil), o.sessions...)
}

func TestRunLoopsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	p := &fakePlugin{interval: time.Millisecond, onUpdate: func(n int32) {
		if n == 3 {
			cancel()
		}
	}}
	oc := &openerCounter{}
	s := New(p, session.NewManager(session.Config{Name: "fake", Open: oc.open}), newManager(t, settingsDoc))

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, int32(3), p.updates.Load())
	assert.Equal(t, int32(1), p.logins.Load())

	sessions := oc.all()
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].Closed(), "session is shut down when the loop ends")
}

func TestStopEndsLoop(t *testing.T) {
	var s *Scheduler
	p := &fakePlugin{interval: time.Hour, onUpdate: func(int32) { s.Stop() }}
	oc := &openerCounter{}
	s = New(p, session.NewManager(session.Config{Name: "fake", Open: oc.open}), newManager(t, settingsDoc))

	done := make(chan error, 1)
	go func() { done <- s.Run(t.Context()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(1), p.updates.Load())
	assert.True(t, p.shutdown.Load())

	// idempotent
	assert.NotPanics(t, s.Stop)
}

func TestRunSessionInitFailure(t *testing.T) {
	p := &fakePlugin{interval: time.Millisecond}
	sessions := session.NewManager(session.Config{
		Name: "fake",
		Open: func(context.Context, browser.Options) (browser.Session, error) {
			return nil, stderrors.New("no chrome")
		},
		RetryInterval:    time.Millisecond,
		MaxStartAttempts: 2,
	})
	s := New(p, sessions, newManager(t, settingsDoc))

	err := s.Run(t.Context())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionInit))
	assert.Zero(t, p.updates.Load())
	assert.Zero(t, p.logins.Load())
}

func TestRunRestartsExpiredSession(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	p := &fakePlugin{interval: time.Millisecond, onUpdate: func(n int32) {
		if n == 3 {
			cancel()
		}
	}}
	oc := &openerCounter{}
	s := New(p, session.NewManager(session.Config{Name: "fake", Open: oc.open}), newManager(t, settingsDoc))
	s.maxAge = func() time.Duration { return time.Nanosecond }

	require.NoError(t, s.Run(ctx))

	sessions := oc.all()
	assert.Len(t, sessions, 4, "initial session plus one restart per run")
	assert.Equal(t, int32(4), p.logins.Load(), "every restart is followed by a login")
	for _, sess := range sessions {
		assert.True(t, sess.Closed())
	}
}

func TestMaxSessionAgeFromSettings(t *testing.T) {
	mgr := newManager(t, `{
  "httpPort": 8080, "webContextRoot": "/", "tempPath": %q,
  "maxSessionDurationMinutes": 90,
  "sources": [], "dashboardConfig": {}, "dashboards": []
}`)
	s := New(&fakePlugin{}, session.NewManager(session.Config{}), mgr)
	assert.Equal(t, 90*time.Minute, s.maxSessionAge())
}

func TestGroup(t *testing.T) {
	mgr := newManager(t, settingsDoc)
	oc := &openerCounter{}

	g, err := NewGroup(t.Context(), mgr, oc.open)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	require.Eventually(t, func() bool { return len(oc.all()) == 2 }, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("group did not stop")
	}
	for _, sess := range oc.all() {
		assert.True(t, sess.Closed())
	}
}

func TestGroupUnsupportedSource(t *testing.T) {
	mgr := newManager(t, `{
  "httpPort": 8080, "webContextRoot": "/", "tempPath": %q,
  "maxSessionDurationMinutes": 0,
  "sources": [{"type": "splunk", "updateIntervalSeconds": 10}],
  "dashboardConfig": {}, "dashboards": []
}`)
	_, err := NewGroup(t.Context(), mgr, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

const captureDoc = `{
  "httpPort": 8080,
  "webContextRoot": "/",
  "tempPath": %q,
  "maxSessionDurationMinutes": 0,
  "sources": [{"type": "kibana", "updateIntervalSeconds": 3600}],
  "dashboardConfig": {},
  "dashboards": [{"id": "d1", "title": "Ops", "graphs": [
    {"id": "g1", "url": "http://kibana/g1", "browserWidth": 800, "browserHeight": 600, "imageHeight": 400},
    {"id": "g2", "url": "http://kibana/g2", "browserWidth": 800, "browserHeight": 600, "imageHeight": 400}
  ]}]
}`

func readyPage() *browsertest.Page {
	return &browsertest.Page{
		Counts: map[string]int{"visualize": 1, ".visualize-chart": 1, "dashboard-grid": 1},
	}
}

func TestDrainFinishesCaptureInFlight(t *testing.T) {
	mgr := newManager(t, captureDoc)
	tempPath := mgr.Current().TempPath()

	entered := make(chan struct{})
	release := make(chan struct{})
	sess := browsertest.New(map[string]*browsertest.Page{
		"http://kibana/g1": readyPage(),
		"http://kibana/g2": readyPage(),
	})
	sess.OnNavigate = func(url string) {
		if url == "http://kibana/g1" {
			close(entered)
			<-release
		}
	}

	profile := capture.KibanaProfile()
	profile.PollInterval = time.Millisecond
	sessions := session.NewManager(session.Config{
		Name: "kibana",
		Open: func(context.Context, browser.Options) (browser.Session, error) { return sess, nil },
	})
	s := New(plugin.NewWithProfile("kibana", profile, mgr, sessions), sessions, mgr)
	g := &Group{schedulers: []*Scheduler{s}}

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- g.Drain(ctx, 10*time.Second) }()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("capture did not start")
	}

	cancel()
	require.Eventually(t, s.stopped.Load, 5*time.Second, time.Millisecond)
	close(release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("group did not drain")
	}

	_, err := os.Stat(filepath.Join(tempPath, "g1.png"))
	assert.NoError(t, err, "capture in flight completes after stop")
	_, err = os.Stat(filepath.Join(tempPath, "g2.png"))
	assert.True(t, os.IsNotExist(err), "no graph is started after stop")
	assert.True(t, sess.Closed())
}

func TestDrainIdleGroupStopsPromptly(t *testing.T) {
	mgr := newManager(t, settingsDoc)
	oc := &openerCounter{}

	g, err := NewGroup(t.Context(), mgr, oc.open)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- g.Drain(ctx, time.Hour) }()

	require.Eventually(t, func() bool { return len(oc.all()) == 2 }, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("group did not stop")
	}
	for _, sess := range oc.all() {
		assert.True(t, sess.Closed())
	}
}

func TestStopAbandonsPendingSessionStart(t *testing.T) {
	p := &fakePlugin{interval: time.Millisecond}
	sessions := session.NewManager(session.Config{
		Name: "fake",
		Open: func(context.Context, browser.Options) (browser.Session, error) {
			return nil, stderrors.New("no chrome")
		},
		RetryInterval: time.Millisecond,
	})
	s := New(p, sessions, newManager(t, settingsDoc))

	done := make(chan error, 1)
	go func() { done <- s.Run(t.Context()) }()

	time.Sleep(10 * time.Millisecond)
	s.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler kept retrying after stop")
	}
	assert.Zero(t, p.updates.Load())
}

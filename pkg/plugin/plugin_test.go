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

package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MalmbergUitgeverij/watchboard/pkg/browser"
	"github.com/MalmbergUitgeverij/watchboard/pkg/browser/browsertest"
	"github.com/MalmbergUitgeverij/watchboard/pkg/capture"
	"github.com/MalmbergUitgeverij/watchboard/pkg/config"
	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
	"github.com/MalmbergUitgeverij/watchboard/pkg/session"
)

const settings = `{
  "httpPort": 8080,
  "webContextRoot": "/",
  "tempPath": %q,
  "maxSessionDurationMinutes": 60,
  "sources": [{"type": "kibana", "loginUrl": "http://kibana/login", "updateIntervalSeconds": 30}],
  "dashboardConfig": {},
  "dashboards": [{"id": "d1", "title": "Ops", "graphs": [
    {"id": "g1", "url": "http://kibana/g1", "browserWidth": 800, "browserHeight": 600, "imageHeight": 400},
    {"id": "g2", "url": "http://kibana/g2", "browserWidth": 800, "browserHeight": 600, "imageHeight": 400},
    {"id": "g3", "url": "http://kibana/g3", "browserWidth": 800, "browserHeight": 600, "imageHeight": 400},
    {"id": "x1", "url": "http://grafana/x1", "type": "grafana", "browserWidth": 800, "browserHeight": 600, "imageHeight": 400}
  ]}]
}`

func ready() *browsertest.Page {
	return &browsertest.Page{
		Title:  "Kibana",
		Counts: map[string]int{"visualize": 1, ".visualize-chart": 1, "dashboard-grid": 1},
	}
}

func fastKibana() capture.Profile {
	p := capture.KibanaProfile()
	for i := range p.Waits {
		p.Waits[i].Timeout = 20 * time.Millisecond
	}
	p.PollInterval = time.Millisecond
	p.LoginTimeout = 20 * time.Millisecond
	return p
}

type harness struct {
	dir     string
	session *browsertest.Session
	plugin  *SourcePlugin
}

func newHarness(t *testing.T, pages map[string]*browsertest.Page) *harness {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(settings, dir)), 0o600))

	mgr := config.NewManager(path)
	_, err := mgr.Snapshot(t.Context())
	require.NoError(t, err)

	s := browsertest.New(pages)
	sessions := session.NewManager(session.Config{
		Name: "kibana",
		Open: func(context.Context, browser.Options) (browser.Session, error) { return s, nil },
	})
	require.NoError(t, sessions.Start(t.Context()))

	return &harness{dir: dir, session: s, plugin: NewWithProfile("kibana", fastKibana(), mgr, sessions)}
}

func (h *harness) imageExists(id string) bool {
	_, err := os.Stat(filepath.Join(h.dir, id+".png"))
	return err == nil
}

func TestUpdateIsolatesMissingElement(t *testing.T) {
	h := newHarness(t, map[string]*browsertest.Page{
		"http://kibana/g1": {},
		"http://kibana/g2": ready(),
		"http://kibana/g3": ready(),
	})

	res := h.plugin.Update(t.Context())
	assert.Equal(t, 3, res.Graphs)
	assert.Equal(t, 2, res.Captured)
	assert.Equal(t, 1, res.NoData)
	assert.Zero(t, res.Failed)

	assert.False(t, h.imageExists("g1"))
	assert.True(t, h.imageExists("g2"))
	assert.True(t, h.imageExists("g3"))
	assert.False(t, h.imageExists("x1"), "graphs of other sources are not captured")

	_, err := os.Stat(filepath.Join(h.dir, "debug", "g1.png"))
	assert.NoError(t, err)
}

func TestUpdateIsolatesPanic(t *testing.T) {
	g1 := ready()
	g1.Panic = "renderer crashed"
	h := newHarness(t, map[string]*browsertest.Page{
		"http://kibana/g1": g1,
		"http://kibana/g2": ready(),
		"http://kibana/g3": ready(),
	})

	res := h.plugin.Update(t.Context())
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.Captured)
	assert.True(t, h.imageExists("g2"))
	assert.True(t, h.imageExists("g3"))
}

func TestShutdownStopsNewCaptures(t *testing.T) {
	h := newHarness(t, map[string]*browsertest.Page{
		"http://kibana/g1": ready(),
		"http://kibana/g2": ready(),
		"http://kibana/g3": ready(),
	})
	h.session.OnNavigate = func(url string) {
		if url == "http://kibana/g1" {
			h.plugin.Shutdown()
		}
	}

	res := h.plugin.Update(t.Context())
	assert.Equal(t, 1, res.Captured, "the capture underway completes")
	assert.Equal(t, 2, res.Skipped)
	assert.True(t, h.imageExists("g1"))
	assert.False(t, h.imageExists("g2"))
}

func TestUpdateStopsOnCancel(t *testing.T) {
	h := newHarness(t, map[string]*browsertest.Page{"http://kibana/g1": ready()})
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	res := h.plugin.Update(ctx)
	assert.Equal(t, 3, res.Skipped)
	assert.Zero(t, res.Captured)
}

func TestPluginMetadata(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, "Kibana", h.plugin.Name())
	assert.Equal(t, "kibana", h.plugin.Type())
	assert.Equal(t, 30*time.Second, h.plugin.UpdateInterval())
	assert.Equal(t, []string{"grafana", "kibana"}, Supported())

	_, err := New("splunk", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestLogin(t *testing.T) {
	h := newHarness(t, map[string]*browsertest.Page{"http://kibana/login": {Title: "Kibana"}})
	h.plugin.Login(t.Context())
	assert.Equal(t, []string{"http://kibana/login"}, h.session.Navigations())

	// a failing login is logged, not fatal
	h2 := newHarness(t, map[string]*browsertest.Page{"http://kibana/login": {Title: "Error"}})
	assert.NotPanics(t, func() { h2.plugin.Login(t.Context()) })
}

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
	"log/slog"
	"runtime/debug"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MalmbergUitgeverij/watchboard/pkg/capture"
	"github.com/MalmbergUitgeverij/watchboard/pkg/config"
	"github.com/MalmbergUitgeverij/watchboard/pkg/defaults"
	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
	"github.com/MalmbergUitgeverij/watchboard/pkg/session"
)

// Plugin captures the graphs of one source type.
type Plugin interface {
	// Name returns a display name, e.g. "Kibana".
	Name() string
	// Type returns the source type.
	Type() string
	// UpdateInterval returns the configured interval between runs.
	UpdateInterval() time.Duration
	// Login opens the source's login page. Failures are logged.
	Login(ctx context.Context)
	// Update runs one capture pass over the source's graphs.
	Update(ctx context.Context) Result
	// Shutdown stops new captures from starting.
	Shutdown()
}

// Result summarizes one capture pass.
type Result struct {
	Graphs   int
	Captured int
	NoData   int
	Failed   int
	Skipped  int
	Duration time.Duration
}

var profiles = map[string]func() capture.Profile{
	"kibana":  capture.KibanaProfile,
	"grafana": capture.GrafanaProfile,
}

// Supported returns the registered source types.
func Supported() []string {
	types := make([]string, 0, len(profiles))
	for t := range profiles {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// SourcePlugin is a Plugin driven by a readiness profile.
type SourcePlugin struct {
	sourceType string
	name       string
	profile    capture.Profile
	config     *config.Manager
	sessions   *session.Manager
	stopped    atomic.Bool
}

var _ Plugin = (*SourcePlugin)(nil)

// New returns the plugin for sourceType.
func New(sourceType string, mgr *config.Manager, sessions *session.Manager) (*SourcePlugin, error) {
	profile, ok := profiles[sourceType]
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeValidation,
			fmt.Sprintf("unsupported source type %q", sourceType),
			map[string]any{"supported": Supported()})
	}
	return NewWithProfile(sourceType, profile(), mgr, sessions), nil
}

// NewWithProfile returns a plugin for sourceType using a custom profile.
func NewWithProfile(sourceType string, profile capture.Profile, mgr *config.Manager, sessions *session.Manager) *SourcePlugin {
	return &SourcePlugin{
		sourceType: sourceType,
		name:       cases.Title(language.English).String(sourceType),
		profile:    profile,
		config:     mgr,
		sessions:   sessions,
	}
}

func (p *SourcePlugin) Name() string { return p.name }

func (p *SourcePlugin) Type() string { return p.sourceType }

func (p *SourcePlugin) UpdateInterval() time.Duration {
	if src, ok := p.config.Source(p.sourceType); ok {
		return src.Interval
	}
	return defaults.DefaultSourceInterval
}

func (p *SourcePlugin) Login(ctx context.Context) {
	slog.Info("logging in", "sourceType", p.sourceType)

	src, ok := p.config.Source(p.sourceType)
	if !ok {
		slog.Warn("source not configured, skipping login", "sourceType", p.sourceType)
		return
	}
	s := p.sessions.Session()
	if s == nil {
		slog.Error("no browser session, skipping login", "sourceType", p.sourceType)
		return
	}

	snap := p.config.Current()
	if err := capture.New(p.sourceType, p.profile, snap.TempPath()).Login(ctx, s, src); err != nil {
		slog.Error("error while logging in", "sourceType", p.sourceType, "error", err)
		return
	}
	slog.Info("logged in", "sourceType", p.sourceType)
}

func (p *SourcePlugin) Update(ctx context.Context) Result {
	start := time.Now()
	var res Result

	slog.Info("performing update", "sourceType", p.sourceType)

	if _, err := p.config.CheckForUpdate(ctx); err != nil {
		slog.Error("error while checking for configuration update", "sourceType", p.sourceType, "error", err)
	}

	snap := p.config.Current()
	if snap == nil {
		slog.Error("no configuration loaded, skipping update", "sourceType", p.sourceType)
		return res
	}
	src, _ := snap.Source(p.sourceType)
	graphs := snap.GraphsForType(p.sourceType)
	res.Graphs = len(graphs)

	s := p.sessions.Session()
	if s == nil {
		slog.Error("no browser session, skipping update", "sourceType", p.sourceType)
		res.Skipped = len(graphs)
		return res
	}

	c := capture.New(p.sourceType, p.profile, snap.TempPath())
	for i, g := range graphs {
		if p.stopped.Load() || ctx.Err() != nil {
			res.Skipped = len(graphs) - i
			break
		}
		switch p.captureOne(ctx, c, g, src) {
		case capture.OutcomeCaptured:
			res.Captured++
		case capture.OutcomeNoData:
			res.NoData++
		default:
			res.Failed++
		}
	}

	res.Duration = time.Since(start)
	slog.Info("finished updating graphs",
		"sourceType", p.sourceType,
		"graphs", res.Graphs,
		"captured", res.Captured,
		"noData", res.NoData,
		"failed", res.Failed,
		"skipped", res.Skipped,
		"duration", res.Duration.Round(time.Millisecond))
	return res
}

// captureOne isolates a single graph: errors and panics are logged.
func (p *SourcePlugin) captureOne(ctx context.Context, c *capture.Capturer, g *config.Graph, src *config.Source) (outcome capture.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while updating graph",
				"sourceType", p.sourceType,
				"graph", g.ID,
				"panic", r,
				"stack", string(debug.Stack()))
			outcome = capture.OutcomeFailed
		}
	}()

	s := p.sessions.Session()
	outcome, err := c.Capture(ctx, s, g, src)
	if err != nil {
		slog.Error("error while updating graph",
			"sourceType", p.sourceType,
			"graph", g.ID,
			"code", errors.CodeOf(err),
			"error", err)
	}
	return outcome
}

func (p *SourcePlugin) Shutdown() {
	slog.Info("shutting down", "sourceType", p.sourceType)
	p.stopped.Store(true)
}

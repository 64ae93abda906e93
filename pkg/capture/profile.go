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

package capture

import (
	"context"
	"strings"
	"time"

	"github.com/MalmbergUitgeverij/watchboard/pkg/browser"
	"github.com/MalmbergUitgeverij/watchboard/pkg/defaults"
)

// Condition reports whether the page is ready in one respect.
type Condition func(ctx context.Context, s browser.Session, url string) (bool, error)

// Wait is one readiness condition with its own time budget.
type Wait struct {
	Name      string
	Timeout   time.Duration
	Condition Condition
}

// Profile describes how pages of one source type become ready.
type Profile struct {
	// Waits run in order before the screenshot.
	Waits []Wait
	// ContentSelector is the element captured as the graph image.
	ContentSelector string
	// LoginTitle is the page title expected after login.
	LoginTitle string
	// LoginTimeout bounds waiting for LoginTitle.
	LoginTimeout time.Duration
	// PollInterval is how often conditions are re-evaluated.
	PollInterval time.Duration
}

// LocationIs waits for the current URL to equal the graph URL.
func LocationIs() Condition {
	return func(ctx context.Context, s browser.Session, url string) (bool, error) {
		loc, err := s.Location(ctx)
		return loc == url, err
	}
}

// LocationHasPrefix waits for the current URL to start with the graph URL
// without its query.
func LocationHasPrefix() Condition {
	return func(ctx context.Context, s browser.Session, url string) (bool, error) {
		loc, err := s.Location(ctx)
		base, _, _ := strings.Cut(url, "?")
		return strings.HasPrefix(loc, base), err
	}
}

// Visible waits for at least one element matching selector, all rendered.
func Visible(selector string) Condition {
	return func(ctx context.Context, s browser.Session, _ string) (bool, error) {
		return s.AllVisible(ctx, selector)
	}
}

// Absent waits for no element to match selector.
func Absent(selector string) Condition {
	return func(ctx context.Context, s browser.Session, _ string) (bool, error) {
		n, err := s.Count(ctx, selector)
		return n == 0, err
	}
}

// Opaque waits for every element matching selector to be fully opaque.
func Opaque(selector string) Condition {
	return func(ctx context.Context, s browser.Session, _ string) (bool, error) {
		return s.AllOpaque(ctx, selector)
	}
}

// KibanaProfile waits for Kibana visualizations to render and captures the
// dashboard grid.
func KibanaProfile() Profile {
	return Profile{
		Waits: []Wait{
			{Name: "location", Timeout: defaults.LocationTimeout, Condition: LocationIs()},
			{Name: "visualize", Timeout: defaults.ContainerTimeout, Condition: Visible("visualize")},
			{Name: "visualize-chart", Timeout: defaults.VisualizationTimeout, Condition: Visible(".visualize-chart")},
			{Name: "loading", Timeout: defaults.LoadingTimeout, Condition: Absent(".loading")},
			{Name: "opacity", Timeout: defaults.OpacityTimeout, Condition: Opaque(".visualize-chart")},
		},
		ContentSelector: "dashboard-grid",
		LoginTitle:      "Kibana",
		LoginTimeout:    defaults.LoginTitleTimeout,
		PollInterval:    defaults.ReadinessPollInterval,
	}
}

// GrafanaProfile waits for Grafana panels to render and captures the panel grid.
func GrafanaProfile() Profile {
	return Profile{
		Waits: []Wait{
			{Name: "location", Timeout: defaults.LocationTimeout, Condition: LocationHasPrefix()},
			{Name: "panel-container", Timeout: defaults.ContainerTimeout, Condition: Visible(".panel-container")},
			{Name: "panel-content", Timeout: defaults.VisualizationTimeout, Condition: Visible(".panel-content")},
			{Name: "loading", Timeout: defaults.LoadingTimeout, Condition: Absent(".panel-loading")},
			{Name: "opacity", Timeout: defaults.OpacityTimeout, Condition: Opaque(".panel-container")},
		},
		ContentSelector: ".react-grid-layout",
		LoginTitle:      "Grafana",
		LoginTimeout:    defaults.LoginTitleTimeout,
		PollInterval:    defaults.ReadinessPollInterval,
	}
}

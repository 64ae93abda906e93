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

package document

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MalmbergUitgeverij/watchboard/pkg/defaults"
	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
)

// Browser backends understood by the session manager.
const (
	BackendChrome = "chrome"
	BackendRemote = "remote"
)

// Settings is the local settings document. A settings file may also carry a
// dashboards key; it is not part of this type and is ignored here.
type Settings struct {
	HTTPPort                  *int             `json:"httpPort,omitempty" yaml:"httpPort,omitempty" toml:"httpPort,omitempty"`
	WebContextRoot            *string          `json:"webContextRoot,omitempty" yaml:"webContextRoot,omitempty" toml:"webContextRoot,omitempty"`
	TempPath                  *string          `json:"tempPath,omitempty" yaml:"tempPath,omitempty" toml:"tempPath,omitempty"`
	MaxSessionDurationMinutes *int             `json:"maxSessionDurationMinutes,omitempty" yaml:"maxSessionDurationMinutes,omitempty" toml:"maxSessionDurationMinutes,omitempty"`
	DefaultNumberOfColumns    *int             `json:"defaultNumberOfColumns,omitempty" yaml:"defaultNumberOfColumns,omitempty" toml:"defaultNumberOfColumns,omitempty"`
	Sources                   []SourceSpec     `json:"sources,omitempty" yaml:"sources,omitempty" toml:"sources,omitempty"`
	DashboardConfig           *DashboardConfig `json:"dashboardConfig,omitempty" yaml:"dashboardConfig,omitempty" toml:"dashboardConfig,omitempty"`
	Browser                   *BrowserSpec     `json:"browser,omitempty" yaml:"browser,omitempty" toml:"browser,omitempty"`
	Session                   *SessionSpec     `json:"session,omitempty" yaml:"session,omitempty" toml:"session,omitempty"`
}

// SourceSpec configures one capture source.
type SourceSpec struct {
	Type                  string `json:"type" yaml:"type" toml:"type"`
	LoginURL              string `json:"loginUrl,omitempty" yaml:"loginUrl,omitempty" toml:"loginUrl,omitempty"`
	Username              string `json:"username,omitempty" yaml:"username,omitempty" toml:"username,omitempty"`
	Password              string `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
	UpdateIntervalSeconds int    `json:"updateIntervalSeconds" yaml:"updateIntervalSeconds" toml:"updateIntervalSeconds"`
}

// DashboardConfig selects where the dashboards document lives.
type DashboardConfig struct {
	// Store is a file path, or a ConfigMap URI (cm://namespace/name).
	// Empty means the settings file itself.
	Store string `json:"store,omitempty" yaml:"store,omitempty" toml:"store,omitempty"`
	// Kubeconfig is only consulted for ConfigMap stores.
	Kubeconfig string `json:"kubeconfig,omitempty" yaml:"kubeconfig,omitempty" toml:"kubeconfig,omitempty"`
}

// BrowserSpec configures the rendering backend.
type BrowserSpec struct {
	Backend  string `json:"backend,omitempty" yaml:"backend,omitempty" toml:"backend,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	ExecPath string `json:"execPath,omitempty" yaml:"execPath,omitempty" toml:"execPath,omitempty"`
	Headless *bool  `json:"headless,omitempty" yaml:"headless,omitempty" toml:"headless,omitempty"`
}

// SessionSpec tunes session start retries.
type SessionSpec struct {
	RetryIntervalSeconds *int `json:"retryIntervalSeconds,omitempty" yaml:"retryIntervalSeconds,omitempty" toml:"retryIntervalSeconds,omitempty"`
	// MaxStartAttempts of 0 retries forever.
	MaxStartAttempts *int `json:"maxStartAttempts,omitempty" yaml:"maxStartAttempts,omitempty" toml:"maxStartAttempts,omitempty"`
}

// Validate checks required-key presence and source consistency.
func (s *Settings) Validate() error {
	var missing []string
	if s.HTTPPort == nil {
		missing = append(missing, "httpPort")
	}
	if s.WebContextRoot == nil {
		missing = append(missing, "webContextRoot")
	}
	if s.TempPath == nil {
		missing = append(missing, "tempPath")
	}
	if s.MaxSessionDurationMinutes == nil {
		missing = append(missing, "maxSessionDurationMinutes")
	}
	if s.Sources == nil {
		missing = append(missing, "sources")
	}
	if s.DashboardConfig == nil {
		missing = append(missing, "dashboardConfig")
	}
	if len(missing) > 0 {
		return errors.NewWithContext(errors.ErrCodeValidation,
			"settings missing required keys: "+strings.Join(missing, ", "),
			map[string]any{"missing": missing})
	}

	if *s.HTTPPort <= 0 || *s.HTTPPort > 65535 {
		return errors.New(errors.ErrCodeValidation, fmt.Sprintf("httpPort out of range: %d", *s.HTTPPort))
	}
	if strings.TrimSpace(*s.TempPath) == "" {
		return errors.New(errors.ErrCodeValidation, "tempPath cannot be empty")
	}
	if *s.MaxSessionDurationMinutes < 0 {
		return errors.New(errors.ErrCodeValidation, "maxSessionDurationMinutes cannot be negative")
	}

	seen := make(map[string]bool, len(s.Sources))
	for i, src := range s.Sources {
		if src.Type == "" {
			return errors.New(errors.ErrCodeValidation, fmt.Sprintf("sources[%d]: type is required", i))
		}
		if seen[src.Type] {
			return errors.New(errors.ErrCodeValidation, fmt.Sprintf("sources[%d]: duplicate source type %q", i, src.Type))
		}
		seen[src.Type] = true
		if src.UpdateIntervalSeconds <= 0 {
			return errors.New(errors.ErrCodeValidation,
				fmt.Sprintf("sources[%d]: updateIntervalSeconds must be positive, got %d", i, src.UpdateIntervalSeconds))
		}
	}

	if b := s.Browser; b != nil {
		switch b.Backend {
		case "", BackendChrome:
		case BackendRemote:
			if b.URL == "" {
				return errors.New(errors.ErrCodeValidation, "browser.url is required for the remote backend")
			}
		default:
			return errors.New(errors.ErrCodeValidation, fmt.Sprintf("unknown browser backend %q", b.Backend))
		}
	}

	if ss := s.Session; ss != nil {
		if ss.RetryIntervalSeconds != nil && *ss.RetryIntervalSeconds <= 0 {
			return errors.New(errors.ErrCodeValidation, "session.retryIntervalSeconds must be positive")
		}
		if ss.MaxStartAttempts != nil && *ss.MaxStartAttempts < 0 {
			return errors.New(errors.ErrCodeValidation, "session.maxStartAttempts cannot be negative")
		}
	}
	return nil
}

// SourceTypes returns the configured source types in sorted order.
func (s *Settings) SourceTypes() []string {
	types := make([]string, 0, len(s.Sources))
	for _, src := range s.Sources {
		types = append(types, src.Type)
	}
	sort.Strings(types)
	return types
}

// MaxSessionDuration returns the session age limit, zero meaning unlimited.
func (s *Settings) MaxSessionDuration() time.Duration {
	if s.MaxSessionDurationMinutes == nil {
		return 0
	}
	return time.Duration(*s.MaxSessionDurationMinutes) * time.Minute
}

// DashboardStore returns the configured dashboards location, or "" for the settings file.
func (s *Settings) DashboardStore() string {
	if s.DashboardConfig == nil {
		return ""
	}
	return strings.TrimSpace(s.DashboardConfig.Store)
}

// BrowserBackend returns the rendering backend, defaulting to chrome.
func (s *Settings) BrowserBackend() string {
	if s.Browser == nil || s.Browser.Backend == "" {
		return BackendChrome
	}
	return s.Browser.Backend
}

// Headless reports whether a locally launched browser runs headless (default true).
func (s *Settings) Headless() bool {
	if s.Browser == nil || s.Browser.Headless == nil {
		return true
	}
	return *s.Browser.Headless
}

// SessionRetryInterval returns the pause between session start attempts.
func (s *Settings) SessionRetryInterval() time.Duration {
	if s.Session == nil || s.Session.RetryIntervalSeconds == nil {
		return defaults.SessionRetryInterval
	}
	return time.Duration(*s.Session.RetryIntervalSeconds) * time.Second
}

// MaxStartAttempts returns the session start bound, zero meaning unbounded.
func (s *Settings) MaxStartAttempts() int {
	if s.Session == nil || s.Session.MaxStartAttempts == nil {
		return 0
	}
	return *s.Session.MaxStartAttempts
}

// Interval returns the update interval as a duration.
func (s SourceSpec) Interval() time.Duration {
	if s.UpdateIntervalSeconds <= 0 {
		return defaults.DefaultSourceInterval
	}
	return time.Duration(s.UpdateIntervalSeconds) * time.Second
}

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

package config

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/MalmbergUitgeverij/watchboard/pkg/document"
	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
	"github.com/MalmbergUitgeverij/watchboard/pkg/store"
)

// StoreFactory opens the dashboards store for a location. See store.New.
type StoreFactory func(location, settingsPath, kubeconfig string) (store.Store, error)

// Option configures a Manager.
type Option func(*Manager)

// WithStoreFactory overrides how the dashboards store is opened.
func WithStoreFactory(f StoreFactory) Option {
	return func(m *Manager) {
		m.openStore = f
	}
}

// Manager owns the active configuration snapshot.
type Manager struct {
	settings  *store.SettingsFile
	openStore StoreFactory

	current atomic.Pointer[Snapshot]

	// mu serializes loads and guards the fields below.
	mu       sync.Mutex
	store    store.Store
	storeKey string
}

// NewManager returns a manager reading settings from settingsPath. Nothing
// is loaded until the first call to Snapshot.
func NewManager(settingsPath string, opts ...Option) *Manager {
	m := &Manager{
		settings:  store.NewSettingsFile(settingsPath),
		openStore: store.New,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns the active snapshot, loading it on first use. Concurrent
// first callers block until the load finishes. A failed first load is
// returned and retried by the next call.
func (m *Manager) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := m.current.Load(); snap != nil {
		return snap, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if snap := m.current.Load(); snap != nil {
		return snap, nil
	}
	if err := m.reloadLocked(ctx); err != nil {
		return nil, err
	}
	return m.current.Load(), nil
}

// Current returns the active snapshot without loading, or nil.
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// Ready reports whether a snapshot is active.
func (m *Manager) Ready() bool {
	return m.current.Load() != nil
}

// Source returns the source of the given type from the active snapshot.
func (m *Manager) Source(sourceType string) (*Source, bool) {
	snap := m.current.Load()
	if snap == nil {
		return nil, false
	}
	return snap.Source(sourceType)
}

// Store returns the dashboards store of the active snapshot, or nil.
func (m *Manager) Store() store.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store
}

// CheckForUpdate reloads when either document token differs from the one
// recorded at the last successful load. Token read failures are logged and
// leave the snapshot untouched. It reports whether a reload happened.
func (m *Manager) CheckForUpdate(ctx context.Context) (bool, error) {
	if !m.Ready() {
		_, err := m.Snapshot(ctx)
		return err == nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.current.Load()

	settingsToken, err := m.settings.LastUpdated(ctx)
	if err != nil {
		tokenReadFailures.Inc()
		slog.Warn("failed to read settings token", "path", m.settings.Path(), "error", err)
		return false, nil
	}

	changed := settingsToken != snap.SettingsToken
	if !changed && m.store != nil {
		dashboardsToken, err := m.store.LastUpdated(ctx)
		if err != nil {
			tokenReadFailures.Inc()
			slog.Warn("failed to read dashboards token", "error", err)
			return false, nil
		}
		changed = dashboardsToken != snap.DashboardsToken
	}
	if !changed {
		return false, nil
	}

	slog.Info("configuration change detected", "previousToken", snap.AggregateToken())
	if err := m.reloadLocked(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Reload unconditionally reloads both documents. On failure the previous
// snapshot stays active.
func (m *Manager) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reloadLocked(ctx)
}

// UpdateDashboards writes doc through the dashboards store, provided
// expected is the store's current token, and reloads. It returns the new
// dashboards token. It is the in-process edit entrypoint for a dashboard
// editing front end; the CLI pushes through the store directly so a broken
// stored document can still be replaced.
func (m *Manager) UpdateDashboards(ctx context.Context, doc *document.Dashboards, expected store.Token) (store.Token, error) {
	if _, err := m.Snapshot(ctx); err != nil {
		return "", err
	}

	st := m.Store()
	token, err := st.UpdateConfig(ctx, doc, expected)
	if err != nil {
		return "", err
	}

	if err := m.Reload(ctx); err != nil {
		slog.Warn("dashboards written but reload failed", "token", token, "error", err)
	}
	return token, nil
}

// reloadLocked reads, validates and swaps in a new snapshot. Tokens are read
// before the documents, so an edit racing with the load is picked up by the
// next check.
func (m *Manager) reloadLocked(ctx context.Context) error {
	prev := m.current.Load()

	snap, st, key, err := m.load(ctx, prev)
	if err != nil {
		reloadsTotal.WithLabelValues("failure").Inc()
		if prev != nil {
			slog.Error("configuration reload failed, keeping previous configuration",
				"code", errors.CodeOf(err), "error", err)
		}
		return err
	}

	m.current.Store(snap)
	m.store = st
	m.storeKey = key

	reloadsTotal.WithLabelValues("success").Inc()
	configuredGraphs.Set(float64(snap.GraphCount()))
	configuredDashboards.Set(float64(len(snap.Dashboards)))

	slog.Info("configuration loaded",
		"dashboards", len(snap.Dashboards),
		"graphs", snap.GraphCount(),
		"sources", snap.Settings.SourceTypes(),
		"token", snap.AggregateToken())
	return nil
}

func (m *Manager) load(ctx context.Context, prev *Snapshot) (*Snapshot, store.Store, string, error) {
	settingsToken, err := m.settings.LastUpdated(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	settings, err := m.settings.Read(ctx)
	if err != nil {
		return nil, nil, "", err
	}

	location := settings.DashboardStore()
	kubeconfig := ""
	if settings.DashboardConfig != nil {
		kubeconfig = settings.DashboardConfig.Kubeconfig
	}
	key := location + "|" + kubeconfig

	st := m.store
	if st == nil || key != m.storeKey {
		st, err = m.openStore(location, m.settings.Path(), kubeconfig)
		if err != nil {
			return nil, nil, "", err
		}
	}

	dashboardsToken, err := st.LastUpdated(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	doc, err := st.ReadConfig(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	if err := doc.Validate(); err != nil {
		return nil, nil, "", err
	}

	snap := NewSnapshot(settings, doc, prev)
	snap.SettingsToken = settingsToken
	snap.DashboardsToken = dashboardsToken
	return snap, st, key, nil
}

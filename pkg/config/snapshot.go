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
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/MalmbergUitgeverij/watchboard/pkg/document"
	"github.com/MalmbergUitgeverij/watchboard/pkg/store"
)

// stamp is a shared last-updated timestamp in Unix nanoseconds.
type stamp struct {
	v atomic.Int64
}

func (s *stamp) get() time.Time {
	n := s.v.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

func (s *stamp) set(t time.Time) {
	s.v.Store(t.UnixNano())
}

// Graph is one capturable visualization.
type Graph struct {
	ID            string
	DashboardID   string
	URL           string
	SourceType    string
	BrowserWidth  int
	BrowserHeight int
	ImageHeight   int
	ImagePath     string

	updated *stamp
}

// LastUpdated returns when the graph image was last written.
func (g *Graph) LastUpdated() time.Time {
	return g.updated.get()
}

// MarkUpdated records a successful capture.
func (g *Graph) MarkUpdated(t time.Time) {
	g.updated.set(t)
}

// Dashboard is an ordered group of graphs.
type Dashboard struct {
	ID     string
	Title  string
	Graphs []*Graph
}

// Source is a configured capture source.
type Source struct {
	Type     string
	LoginURL string
	Username string
	Password string
	Interval time.Duration

	updated *stamp
}

// LastUpdated returns when any graph of the source was last captured.
func (s *Source) LastUpdated() time.Time {
	return s.updated.get()
}

// MarkUpdated records a successful capture for the source.
func (s *Source) MarkUpdated(t time.Time) {
	s.updated.set(t)
}

// Snapshot is an immutable view of the configuration.
type Snapshot struct {
	Settings        *document.Settings
	Document        *document.Dashboards
	Dashboards      []*Dashboard
	SettingsToken   store.Token
	DashboardsToken store.Token
	LoadedAt        time.Time

	graphs  map[string]*Graph
	order   []*Graph
	sources map[string]*Source
}

// NewSnapshot parses validated documents into a snapshot. Timestamps of
// graphs and sources present in prev are carried over.
func NewSnapshot(settings *document.Settings, doc *document.Dashboards, prev *Snapshot) *Snapshot {
	tempPath := ""
	if settings.TempPath != nil {
		tempPath = *settings.TempPath
	}

	snap := &Snapshot{
		Settings:   settings,
		Document:   doc,
		Dashboards: make([]*Dashboard, 0, len(doc.Dashboards)),
		graphs:     make(map[string]*Graph, doc.GraphCount()),
		order:      make([]*Graph, 0, doc.GraphCount()),
		sources:    make(map[string]*Source, len(settings.Sources)),
		LoadedAt:   time.Now(),
	}

	for _, d := range doc.Dashboards {
		dash := &Dashboard{ID: d.ID, Title: d.Title, Graphs: make([]*Graph, 0, len(d.Graphs))}
		for _, gs := range d.Graphs {
			g := &Graph{
				ID:            gs.ID,
				DashboardID:   d.ID,
				URL:           gs.URL,
				SourceType:    gs.SourceType(),
				BrowserWidth:  gs.BrowserWidth,
				BrowserHeight: gs.BrowserHeight,
				ImageHeight:   gs.ImageHeight,
				ImagePath:     filepath.Join(tempPath, gs.ID+".png"),
				updated:       &stamp{},
			}
			if prev != nil {
				if old, ok := prev.graphs[g.ID]; ok {
					g.updated = old.updated
				}
			}
			dash.Graphs = append(dash.Graphs, g)
			snap.graphs[g.ID] = g
			snap.order = append(snap.order, g)
		}
		snap.Dashboards = append(snap.Dashboards, dash)
	}

	for _, ss := range settings.Sources {
		src := &Source{
			Type:     ss.Type,
			LoginURL: ss.LoginURL,
			Username: ss.Username,
			Password: ss.Password,
			Interval: ss.Interval(),
			updated:  &stamp{},
		}
		if prev != nil {
			if old, ok := prev.sources[src.Type]; ok {
				src.updated = old.updated
			}
		}
		snap.sources[src.Type] = src
	}

	return snap
}

// Graph returns the graph with id.
func (s *Snapshot) Graph(id string) (*Graph, bool) {
	g, ok := s.graphs[id]
	return g, ok
}

// GraphsForType returns the graphs of a source type in document order.
func (s *Snapshot) GraphsForType(sourceType string) []*Graph {
	var out []*Graph
	for _, g := range s.order {
		if g.SourceType == sourceType {
			out = append(out, g)
		}
	}
	return out
}

// GraphCount returns the total number of graphs.
func (s *Snapshot) GraphCount() int {
	return len(s.order)
}

// Source returns the source of the given type.
func (s *Snapshot) Source(sourceType string) (*Source, bool) {
	src, ok := s.sources[sourceType]
	return src, ok
}

// Sources returns all sources sorted by type.
func (s *Snapshot) Sources() []*Source {
	out := make([]*Source, 0, len(s.sources))
	for _, src := range s.sources {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// TempPath returns the image output directory.
func (s *Snapshot) TempPath() string {
	if s.Settings.TempPath == nil {
		return ""
	}
	return *s.Settings.TempPath
}

// AggregateToken combines both document tokens. It changes whenever either
// document changes.
func (s *Snapshot) AggregateToken() string {
	return AggregateToken(s.SettingsToken, s.DashboardsToken)
}

// AggregateToken joins a settings token and a dashboards token.
func AggregateToken(settings, dashboards store.Token) string {
	return string(settings) + "-" + string(dashboards)
}

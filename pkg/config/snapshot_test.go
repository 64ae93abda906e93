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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/MalmbergUitgeverij/watchboard/pkg/document"
)

func testDocuments() (*document.Settings, *document.Dashboards) {
	settings := &document.Settings{
		TempPath: ptr.To("/var/lib/watchboard"),
		Sources: []document.SourceSpec{
			{Type: "kibana", UpdateIntervalSeconds: 30},
			{Type: "grafana", UpdateIntervalSeconds: 60},
		},
	}
	doc := &document.Dashboards{Dashboards: []document.Dashboard{
		{ID: "d1", Title: "Ops", Graphs: []document.GraphSpec{
			{ID: "g1", URL: "http://k/1", BrowserWidth: 800, BrowserHeight: 600, ImageHeight: 400},
			{ID: "g2", URL: "http://g/2", Type: "grafana", BrowserWidth: 800, BrowserHeight: 600, ImageHeight: 400},
		}},
		{ID: "d2", Title: "Sales", Graphs: []document.GraphSpec{
			{ID: "g3", URL: "http://k/3", BrowserWidth: 800, BrowserHeight: 600, ImageHeight: 400},
		}},
	}}
	return settings, doc
}

func TestNewSnapshotCarriesTimestamps(t *testing.T) {
	settings, doc := testDocuments()
	first := NewSnapshot(settings, doc, nil)

	g1, ok := first.Graph("g1")
	require.True(t, ok)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	g1.MarkUpdated(at)
	src, _ := first.Source("kibana")
	src.MarkUpdated(at)

	second := NewSnapshot(settings, doc, first)
	g1b, _ := second.Graph("g1")
	assert.True(t, g1b.LastUpdated().Equal(at))
	srcb, _ := second.Source("kibana")
	assert.True(t, srcb.LastUpdated().Equal(at))

	g2b, _ := second.Graph("g2")
	assert.True(t, g2b.LastUpdated().IsZero())

	// Shared stamps: a capture recorded through the old snapshot is visible in the new one.
	later := at.Add(time.Minute)
	g1.MarkUpdated(later)
	assert.True(t, g1b.LastUpdated().Equal(later))
}

func TestSnapshotAccessors(t *testing.T) {
	settings, doc := testDocuments()
	snap := NewSnapshot(settings, doc, nil)
	snap.SettingsToken = "s1"
	snap.DashboardsToken = "d1"

	assert.Equal(t, "s1-d1", snap.AggregateToken())
	assert.Equal(t, "/var/lib/watchboard", snap.TempPath())
	assert.Equal(t, 3, snap.GraphCount())

	kibana := snap.GraphsForType("kibana")
	require.Len(t, kibana, 2)
	assert.Equal(t, "g1", kibana[0].ID)
	assert.Equal(t, "g3", kibana[1].ID)
	assert.Equal(t, "d2", kibana[1].DashboardID)

	sources := snap.Sources()
	require.Len(t, sources, 2)
	assert.Equal(t, "grafana", sources[0].Type)
	assert.Equal(t, "kibana", sources[1].Type)
	assert.Equal(t, time.Minute, sources[0].Interval)

	_, ok := snap.Graph("missing")
	assert.False(t, ok)
}

func TestSnapshotStatus(t *testing.T) {
	settings, doc := testDocuments()
	snap := NewSnapshot(settings, doc, nil)
	snap.SettingsToken = "a"
	snap.DashboardsToken = "b"

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	g3, _ := snap.Graph("g3")
	g3.MarkUpdated(at)

	st := snap.Status()
	assert.Equal(t, "a-b", st.Token)
	assert.Equal(t, 2, st.Dashboards)

	require.Len(t, st.Sources, 2)
	assert.Equal(t, "grafana", st.Sources[0].Type)
	assert.Equal(t, 1, st.Sources[0].Graphs)
	assert.Equal(t, 2, st.Sources[1].Graphs)
	assert.Equal(t, "30s", st.Sources[1].Interval)
	assert.Nil(t, st.Sources[1].LastUpdated)

	require.Len(t, st.Graphs, 3)
	assert.Equal(t, []string{"g1", "g2", "g3"}, []string{st.Graphs[0].ID, st.Graphs[1].ID, st.Graphs[2].ID})
	assert.Nil(t, st.Graphs[0].LastUpdated)
	require.NotNil(t, st.Graphs[2].LastUpdated)
	assert.True(t, st.Graphs[2].LastUpdated.Equal(at))
	assert.Equal(t, "/var/lib/watchboard/g3.png", st.Graphs[2].ImagePath)
}

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

import "time"

// Status is a serializable summary of a snapshot and its capture progress.
type Status struct {
	Token      string         `json:"token" yaml:"token"`
	LoadedAt   time.Time      `json:"loadedAt" yaml:"loadedAt"`
	Sources    []SourceStatus `json:"sources" yaml:"sources"`
	Dashboards int            `json:"dashboards" yaml:"dashboards"`
	Graphs     []GraphStatus  `json:"graphs" yaml:"graphs"`
}

// SourceStatus reports one source.
type SourceStatus struct {
	Type        string     `json:"type" yaml:"type"`
	Interval    string     `json:"interval" yaml:"interval"`
	Graphs      int        `json:"graphs" yaml:"graphs"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
}

// GraphStatus reports one graph.
type GraphStatus struct {
	ID          string     `json:"id" yaml:"id"`
	Dashboard   string     `json:"dashboard" yaml:"dashboard"`
	SourceType  string     `json:"sourceType" yaml:"sourceType"`
	ImagePath   string     `json:"imagePath" yaml:"imagePath"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
}

// Status summarizes the snapshot. Graphs are listed in document order;
// never-captured items carry no lastUpdated.
func (s *Snapshot) Status() Status {
	st := Status{
		Token:      s.AggregateToken(),
		LoadedAt:   s.LoadedAt.UTC(),
		Dashboards: len(s.Dashboards),
		Sources:    make([]SourceStatus, 0, len(s.sources)),
		Graphs:     make([]GraphStatus, 0, len(s.order)),
	}

	for _, src := range s.Sources() {
		st.Sources = append(st.Sources, SourceStatus{
			Type:        src.Type,
			Interval:    src.Interval.String(),
			Graphs:      len(s.GraphsForType(src.Type)),
			LastUpdated: timePtr(src.LastUpdated()),
		})
	}

	for _, g := range s.order {
		st.Graphs = append(st.Graphs, GraphStatus{
			ID:          g.ID,
			Dashboard:   g.DashboardID,
			SourceType:  g.SourceType,
			ImagePath:   g.ImagePath,
			LastUpdated: timePtr(g.LastUpdated()),
		})
	}

	return st
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

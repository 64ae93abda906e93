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
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
)

// DefaultGraphType is the source type of graphs that do not name one.
const DefaultGraphType = "kibana"

// Dashboards is the operator-editable dashboards document.
type Dashboards struct {
	Dashboards []Dashboard `json:"dashboards" yaml:"dashboards" toml:"dashboards"`
}

// Dashboard groups an ordered list of graphs under a title.
type Dashboard struct {
	ID     string      `json:"id" yaml:"id" toml:"id"`
	Title  string      `json:"title" yaml:"title" toml:"title"`
	Graphs []GraphSpec `json:"graphs" yaml:"graphs" toml:"graphs"`
}

// GraphSpec describes one capturable visualization.
type GraphSpec struct {
	ID            string `json:"id" yaml:"id" toml:"id"`
	URL           string `json:"url" yaml:"url" toml:"url"`
	Type          string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	BrowserWidth  int    `json:"browserWidth" yaml:"browserWidth" toml:"browserWidth"`
	BrowserHeight int    `json:"browserHeight" yaml:"browserHeight" toml:"browserHeight"`
	ImageHeight   int    `json:"imageHeight" yaml:"imageHeight" toml:"imageHeight"`
}

// SourceType returns the graph's source type, defaulting to kibana.
func (g GraphSpec) SourceType() string {
	if g.Type == "" {
		return DefaultGraphType
	}
	return g.Type
}

// ParseDashboards decodes a JSON dashboards document and validates it.
func ParseDashboards(data []byte) (*Dashboards, error) {
	var d Dashboards
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, "failed to decode dashboards document", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Encode returns the canonical JSON form of the document.
func (d *Dashboards) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to encode dashboards document", err)
	}
	return data, nil
}

// Validate checks the document structure: every dashboard has an id, a
// title and a graph list; every graph has an id usable as a file name, a
// url and positive dimensions; dashboard and graph ids are unique.
func (d *Dashboards) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeValidation, "dashboards document is empty")
	}

	dashboards := make(map[string]bool, len(d.Dashboards))
	graphs := make(map[string]string)

	for i, db := range d.Dashboards {
		if db.ID == "" {
			return validation(fmt.Sprintf("dashboards[%d]: id is required", i), "", "")
		}
		if db.Title == "" {
			return validation("title is required", db.ID, "")
		}
		if db.Graphs == nil {
			return validation("graphs are required", db.ID, "")
		}
		if dashboards[db.ID] {
			return validation("duplicate dashboard id", db.ID, "")
		}
		dashboards[db.ID] = true

		for j, g := range db.Graphs {
			if g.ID == "" {
				return validation(fmt.Sprintf("graphs[%d]: id is required", j), db.ID, "")
			}
			if !validFileID(g.ID) {
				return validation("graph id must be a plain file name", db.ID, g.ID)
			}
			if g.URL == "" {
				return validation("url is required", db.ID, g.ID)
			}
			if g.BrowserWidth <= 0 || g.BrowserHeight <= 0 || g.ImageHeight <= 0 {
				return validation(fmt.Sprintf("dimensions must be positive (browserWidth=%d browserHeight=%d imageHeight=%d)",
					g.BrowserWidth, g.BrowserHeight, g.ImageHeight), db.ID, g.ID)
			}
			if owner, dup := graphs[g.ID]; dup {
				return validation("duplicate graph id, already in dashboard "+owner, db.ID, g.ID)
			}
			graphs[g.ID] = db.ID
		}
	}
	return nil
}

// GraphCount returns the total number of graphs across all dashboards.
func (d *Dashboards) GraphCount() int {
	n := 0
	for _, db := range d.Dashboards {
		n += len(db.Graphs)
	}
	return n
}

// validFileID reports whether id can name <tempPath>/<id>.png without
// leaving tempPath.
func validFileID(id string) bool {
	if id == "." || id == ".." || strings.Contains(id, "..") {
		return false
	}
	if strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return false
	}
	return filepath.Base(id) == id
}

func validation(msg, dashboard, graph string) error {
	ctx := map[string]any{}
	if dashboard != "" {
		ctx["dashboard"] = dashboard
	}
	if graph != "" {
		ctx["graph"] = graph
	}
	return errors.NewWithContext(errors.ErrCodeValidation, msg, ctx)
}

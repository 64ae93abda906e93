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

package store

import (
	"context"

	"github.com/MalmbergUitgeverij/watchboard/pkg/document"
	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
	"github.com/MalmbergUitgeverij/watchboard/pkg/k8s/client"
	"github.com/MalmbergUitgeverij/watchboard/pkg/serializer"
)

// Token identifies one stored version of a document. Tokens are compared
// for equality only.
type Token string

// String implements fmt.Stringer.
func (t Token) String() string {
	return string(t)
}

// Store reads and writes the dashboards document.
type Store interface {
	// ReadConfig returns the stored document. IO and PARSE errors are returned
	// for unreachable or malformed storage.
	ReadConfig(ctx context.Context) (*document.Dashboards, error)

	// LastUpdated returns the token of the stored version.
	LastUpdated(ctx context.Context) (Token, error)

	// UpdateConfig validates and persists doc, returning the new token.
	// It fails with VALIDATION before writing an invalid document, and with
	// CONFLICT when the backend enforces tokens and expected is stale.
	UpdateConfig(ctx context.Context, doc *document.Dashboards, expected Token) (Token, error)
}

// Historian is implemented by stores that keep prior versions.
type Historian interface {
	History(ctx context.Context) ([]HistoryEntry, error)
}

// New selects a backend for location. An empty location selects the
// settings file itself, a cm:// URI selects a ConfigMap, anything else is a
// file path.
func New(location, settingsPath, kubeconfig string) (Store, error) {
	switch {
	case location == "":
		return NewFileStore(settingsPath), nil
	case serializer.IsConfigMapURI(location):
		namespace, name, err := serializer.ParseConfigMapURI(location)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeValidation, "invalid dashboards store", err)
		}
		cs, err := client.Get(kubeconfig)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, "failed to get kubernetes client", err)
		}
		return NewConfigMapStore(cs, namespace, name), nil
	default:
		return NewFileStore(location), nil
	}
}

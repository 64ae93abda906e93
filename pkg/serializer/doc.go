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

// Package serializer provides utilities for decoding and encoding watchboard
// documents in the formats operators edit them in.
//
// The package supports three formats:
//   - JSON: the wire format of the remote dashboards document
//   - YAML: human-readable configuration format
//   - TOML: alternative format for the settings file
//
// The format of a local file is derived from its extension:
//
//	format := serializer.FormatFromPath("/etc/watchboard/settings.yaml")
//	var settings document.Settings
//	if err := serializer.DecodeFile(path, &settings); err != nil {
//		return err
//	}
//
// Dashboards documents can also live in a Kubernetes ConfigMap addressed by a
// URI of the form cm://namespace/name (see ParseConfigMapURI).
//
// For HTTP responses:
//
//	serializer.RespondJSON(w, http.StatusOK, data)
package serializer

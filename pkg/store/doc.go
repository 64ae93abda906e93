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

// Package store reads and writes the dashboards document.
//
// Two backends implement Store:
//
//   - FileStore keeps the document under the dashboards key of a local
//     YAML, JSON or TOML file. It assumes a single administrator: the
//     expected token passed to UpdateConfig is ignored and writes overwrite
//     the file directly. The version token is the file modification time.
//   - ConfigMapStore keeps the document in a Kubernetes ConfigMap. Updates
//     use optimistic concurrency on the stored updatedAt attribute, and every
//     replaced version is archived in a separate, time-suffixed ConfigMap
//     that is never deleted.
//
// Both backends validate a document before any write and never return the
// same token for two successful writes.
//
// SettingsFile exposes the local settings document with the same token
// semantics as FileStore, so change detection treats both documents alike.
package store

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

// Package config holds the active, validated configuration of a watchboard
// process.
//
// A Manager is constructed once at startup and passed to every scheduler. It
// owns an immutable Snapshot (settings, dashboards, graphs and sources) that
// is replaced wholesale through an atomic pointer swap. Readers always see
// either the previous or the next complete snapshot.
//
// The only mutable fields of a snapshot are the last-updated timestamps of
// graphs and sources. They are atomics and survive reloads for every graph
// and source that still exists.
//
// Change detection compares the tokens of the settings file and of the
// dashboards store with the tokens recorded at the last successful load:
//
//	changed, err := mgr.CheckForUpdate(ctx)
//
// A failed reload keeps the previous snapshot; only the very first load is
// fatal.
package config

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

// Package plugin implements capture sources.
//
// A Plugin captures every graph of one source type, strictly one after the
// other, through the browser session its scheduler owns. A failing or
// panicking graph is logged and never aborts the rest of the run. Shutdown
// is cooperative: once called, no new graph capture starts, while a capture
// already underway runs to completion.
//
// Source types are registered with a readiness profile:
//
//	p, err := plugin.New("kibana", mgr, sessions)
package plugin

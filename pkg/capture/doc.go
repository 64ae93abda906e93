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

// Package capture implements the per-graph capture algorithm.
//
// Every capture starts from a blank page at the working viewport size, so no
// readiness state leaks from the previous graph. The graph URL is then loaded
// with navigation timeouts disabled and a Profile's readiness waits run in
// order, each with its own budget. When a wait runs out of time, or an
// expected element never appears, the graph has no data: a diagnostic
// screenshot of the viewport is written to <tempPath>/debug/<graphId>.png and
// the capture reports OutcomeNoData. Otherwise the profile's content element
// is captured at the graph's own browser size and written atomically to the
// graph's image path.
//
// Navigation timeouts are re-enabled before Capture returns, whatever the
// outcome.
package capture

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

// Package scheduler drives periodic capture runs.
//
// Each configured source gets its own Scheduler running in its own
// goroutine. A scheduler starts its browser session, logs in, and then runs
// its plugin on the source's update interval, re-reading the interval before
// every wait so edits apply without a restart. Sessions older than
// maxSessionDurationMinutes are restarted, followed by a fresh login, before
// the next run.
//
// Stopping is cooperative: Stop prevents new graph captures, and cancelling
// the context passed to Run ends the loop after the current capture.
package scheduler

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

// Package browser defines the rendering session used to capture dashboard
// graphs and implements it on top of the Chrome DevTools Protocol.
//
// A Session is stateful and not safe for concurrent use; each scheduler owns
// exactly one. Two backends are supported:
//
//   - chrome: launches a local Chrome or Chromium process
//   - remote: attaches to an already running browser through its DevTools
//     websocket URL
//
// Element queries take CSS selectors. Missing elements are reported with
// ErrNoElement, and a navigation cut short while navigation timeouts are
// disabled is reported with ErrNavigationTimeout.
package browser

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

package defaults

import "time"

// Readiness budgets for the per-graph capture algorithm.
const (
	// LocationTimeout bounds waiting for the browser location to match the graph URL.
	LocationTimeout = 15 * time.Second

	// ContainerTimeout bounds waiting for chart containers to appear.
	ContainerTimeout = 30 * time.Second

	// VisualizationTimeout bounds waiting for chart visualizations to become visible.
	VisualizationTimeout = 10 * time.Second

	// LoadingTimeout bounds waiting for loading indicators to disappear.
	LoadingTimeout = 30 * time.Second

	// OpacityTimeout bounds waiting for charts to finish fading in.
	OpacityTimeout = 5 * time.Second

	// LoginTitleTimeout bounds waiting for the login page title.
	LoginTitleTimeout = 10 * time.Second

	// ReadinessPollInterval is how often readiness conditions are re-evaluated.
	ReadinessPollInterval = 250 * time.Millisecond
)

// Working viewport used before every capture.
const (
	WorkingViewportWidth  = 2000
	WorkingViewportHeight = 1000
)

// Session timeouts for the automation session lifecycle.
const (
	// SessionSocketTimeout bounds any single browser command while timeouts are enabled.
	SessionSocketTimeout = 60 * time.Second

	// NavigationGrace bounds a navigation while navigation timeouts are disabled.
	// Expiry is expected; pages may keep loading after the content is rendered.
	NavigationGrace = 3 * time.Second

	// SessionRetryInterval is the fixed backoff between session start attempts.
	SessionRetryInterval = 10 * time.Second

	// SessionStartSettle is the pause after a successful session start.
	SessionStartSettle = 100 * time.Millisecond

	// SessionShutdownSettle is the pause after a session shutdown.
	SessionShutdownSettle = 500 * time.Millisecond
)

// Configuration store timeouts.
const (
	// StoreOperationTimeout bounds a single remote store call.
	StoreOperationTimeout = 30 * time.Second

	// DefaultSourceInterval is used when a source has no usable interval.
	DefaultSourceInterval = 60 * time.Second
)

// CaptureDrainTimeout bounds how long a stopping scheduler may spend
// finishing the graph it is capturing before the capture is cancelled.
const CaptureDrainTimeout = 2 * time.Minute

// Server timeouts for the operations HTTP server.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

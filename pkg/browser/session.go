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

package browser

import (
	"context"
	stderrors "errors"
	"time"
)

var (
	// ErrNoElement is returned when a selector matches nothing.
	ErrNoElement = stderrors.New("no such element")

	// ErrNavigationTimeout is returned when a navigation did not finish in time.
	ErrNavigationTimeout = stderrors.New("navigation timed out")
)

// Session is an exclusive rendering session.
type Session interface {
	// SetViewport resizes the visible page area.
	SetViewport(ctx context.Context, width, height int) error
	// Navigate loads url and waits for the page load event.
	Navigate(ctx context.Context, url string) error
	// Location returns the current page URL.
	Location(ctx context.Context) (string, error)
	// Title returns the current page title.
	Title(ctx context.Context) (string, error)
	// Count returns how many elements match selector.
	Count(ctx context.Context, selector string) (int, error)
	// AllVisible reports whether selector matches at least one element and
	// every match is rendered.
	AllVisible(ctx context.Context, selector string) (bool, error)
	// AllOpaque reports whether every element matching selector has a
	// computed opacity of 1.
	AllOpaque(ctx context.Context, selector string) (bool, error)
	// Screenshot returns a PNG of the first element matching selector.
	Screenshot(ctx context.Context, selector string) ([]byte, error)
	// CaptureViewport returns a PNG of the visible page area.
	CaptureViewport(ctx context.Context) ([]byte, error)
	// SetNavigationTimeouts toggles the default per-command timeout. While
	// disabled, navigations return after a short grace period instead.
	SetNavigationTimeouts(enabled bool)
	// Close terminates the session.
	Close() error
}

// Options configures how a session is opened.
type Options struct {
	// Backend is "chrome" or "remote".
	Backend string
	// URL is the DevTools websocket URL of the remote backend.
	URL string
	// ExecPath overrides the browser binary of the chrome backend.
	ExecPath string
	// Headless runs the chrome backend without a window.
	Headless bool
	// SocketTimeout bounds each command while timeouts are enabled.
	SocketTimeout time.Duration
	// NavigationGrace bounds navigations while timeouts are disabled.
	NavigationGrace time.Duration
	// WindowWidth and WindowHeight set the initial window size.
	WindowWidth  int
	WindowHeight int
}

// Opener opens a new session.
type Opener func(ctx context.Context, opts Options) (Session, error)

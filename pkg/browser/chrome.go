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
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/MalmbergUitgeverij/watchboard/pkg/defaults"
)

// Supported backends.
const (
	BackendChrome = "chrome"
	BackendRemote = "remote"
)

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc

	socketTimeout   time.Duration
	navigationGrace time.Duration
	timeouts        atomic.Bool

	closeOnce sync.Once
}

// Open starts a session on the configured backend. The session outlives ctx;
// ctx only bounds startup.
func Open(ctx context.Context, opts Options) (Session, error) {
	if opts.SocketTimeout <= 0 {
		opts.SocketTimeout = defaults.SessionSocketTimeout
	}
	if opts.NavigationGrace <= 0 {
		opts.NavigationGrace = defaults.NavigationGrace
	}
	if opts.WindowWidth <= 0 || opts.WindowHeight <= 0 {
		opts.WindowWidth, opts.WindowHeight = defaults.WorkingViewportWidth, defaults.WorkingViewportHeight
	}

	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	switch opts.Backend {
	case "", BackendChrome:
		allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		allocOpts = append(allocOpts,
			chromedp.Flag("headless", opts.Headless),
			chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
			chromedp.Flag("hide-scrollbars", true),
		)
		if opts.ExecPath != "" {
			allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), allocOpts...)
	case BackendRemote:
		if opts.URL == "" {
			return nil, fmt.Errorf("remote backend requires a DevTools URL")
		}
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), opts.URL)
	default:
		return nil, fmt.Errorf("unknown browser backend %q", opts.Backend)
	}

	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			slog.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			slog.Warn(fmt.Sprintf(format, args...), "component", "chromedp")
		}),
	)

	s := &chromeSession{
		ctx: tabCtx,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
		socketTimeout:   opts.SocketTimeout,
		navigationGrace: opts.NavigationGrace,
	}
	s.timeouts.Store(true)

	// The first Run starts the browser and attaches to a tab.
	if err := s.run(ctx, s.socketTimeout); err != nil {
		s.cancel()
		return nil, fmt.Errorf("failed to start %s browser: %w", backendName(opts.Backend), err)
	}
	return s, nil
}

func backendName(b string) string {
	if b == "" {
		return BackendChrome
	}
	return b
}

// run executes actions bounded by timeout and by the caller's ctx. Deriving
// from the tab context keeps the tab open when the run is cut short.
func (s *chromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (s *chromeSession) SetViewport(ctx context.Context, width, height int) error {
	return s.run(ctx, s.socketTimeout, chromedp.EmulateViewport(int64(width), int64(height)))
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	timeout := s.socketTimeout
	if !s.timeouts.Load() {
		timeout = s.navigationGrace
	}
	err := s.run(ctx, timeout, chromedp.Navigate(url))
	if stderrors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrNavigationTimeout, url)
	}
	return err
}

func (s *chromeSession) Location(ctx context.Context) (string, error) {
	var loc string
	err := s.run(ctx, s.socketTimeout, chromedp.Location(&loc))
	return loc, err
}

func (s *chromeSession) Title(ctx context.Context) (string, error) {
	var title string
	err := s.run(ctx, s.socketTimeout, chromedp.Title(&title))
	return title, err
}

func (s *chromeSession) Count(ctx context.Context, selector string) (int, error) {
	var n int
	err := s.evaluate(ctx, `document.querySelectorAll(%s).length`, selector, &n)
	return n, err
}

func (s *chromeSession) AllVisible(ctx context.Context, selector string) (bool, error) {
	var ok bool
	err := s.evaluate(ctx, `(() => {
	const els = Array.from(document.querySelectorAll(%s));
	return els.length > 0 && els.every(e => {
		const r = e.getBoundingClientRect();
		const st = getComputedStyle(e);
		return r.width > 0 && r.height > 0 && st.visibility !== 'hidden' && st.display !== 'none';
	});
})()`, selector, &ok)
	return ok, err
}

func (s *chromeSession) AllOpaque(ctx context.Context, selector string) (bool, error) {
	var ok bool
	err := s.evaluate(ctx, `Array.from(document.querySelectorAll(%s)).every(e => getComputedStyle(e).opacity === '1')`,
		selector, &ok)
	return ok, err
}

func (s *chromeSession) Screenshot(ctx context.Context, selector string) ([]byte, error) {
	n, err := s.Count(ctx, selector)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoElement, selector)
	}

	var buf []byte
	if err := s.run(ctx, s.socketTimeout, chromedp.Screenshot(selector, &buf, chromedp.ByQuery)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *chromeSession) CaptureViewport(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, s.socketTimeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *chromeSession) SetNavigationTimeouts(enabled bool) {
	s.timeouts.Store(enabled)
}

func (s *chromeSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.socketTimeout)
		defer cancel()
		// Cancel closes the tab and, for the chrome backend, the browser.
		err = chromedp.Cancel(ctx)
		s.cancel()
	})
	return err
}

// evaluate runs a script with the JSON-quoted selector substituted for %s.
func (s *chromeSession) evaluate(ctx context.Context, script, selector string, res any) error {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return s.run(ctx, s.socketTimeout, chromedp.Evaluate(fmt.Sprintf(script, quoted), res))
}

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

// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/MalmbergUitgeverij/watchboard/pkg/browser"
)

// Page describes what the fake renders for one URL.
type Page struct {
	Title string
	// Location overrides the reported URL after navigating here.
	Location string
	// Counts maps selectors to the number of matching elements.
	Counts map[string]int
	// Hidden lists selectors whose elements are not rendered.
	Hidden map[string]bool
	// Faded lists selectors whose elements are not fully opaque.
	Faded map[string]bool
	// NavigateErr is returned by Navigate after the page is loaded.
	NavigateErr error
	// Panic makes Navigate panic with this value.
	Panic any
}

// Session is a scripted browser.Session. Unknown URLs render an empty page.
type Session struct {
	mu sync.Mutex

	Pages map[string]*Page

	// OnNavigate is called before every navigation.
	OnNavigate func(url string)
	// CloseErr is returned by Close; ClosePanic makes Close panic.
	CloseErr   error
	ClosePanic bool

	current  string
	timeouts bool
	closed   bool

	navigations []string
	viewports   [][2]int
	toggles     []bool
	shots       []string
}

var _ browser.Session = (*Session)(nil)

// New returns a session rendering pages.
func New(pages map[string]*Page) *Session {
	if pages == nil {
		pages = map[string]*Page{}
	}
	return &Session{Pages: pages, timeouts: true}
}

func (s *Session) page() *Page {
	if p, ok := s.Pages[s.current]; ok {
		return p
	}
	return &Page{}
}

func (s *Session) SetViewport(_ context.Context, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewports = append(s.viewports, [2]int{width, height})
	return nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if hook := s.OnNavigate; hook != nil {
		hook(url)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.navigations = append(s.navigations, url)
	s.current = url
	p := s.page()
	if p.Panic != nil {
		panic(p.Panic)
	}
	return p.NavigateErr
}

func (s *Session) Location(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loc := s.page().Location; loc != "" {
		return loc, nil
	}
	return s.current, nil
}

func (s *Session) Title(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page().Title, nil
}

func (s *Session) Count(_ context.Context, selector string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page().Counts[selector], nil
}

func (s *Session) AllVisible(_ context.Context, selector string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.page()
	return p.Counts[selector] > 0 && !p.Hidden[selector], nil
}

func (s *Session) AllOpaque(_ context.Context, selector string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.page().Faded[selector], nil
}

func (s *Session) Screenshot(_ context.Context, selector string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page().Counts[selector] == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrNoElement, selector)
	}
	s.shots = append(s.shots, s.current)
	return []byte(fmt.Sprintf("png %s %s", s.current, selector)), nil
}

func (s *Session) CaptureViewport(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []byte("viewport " + s.current), nil
}

func (s *Session) SetNavigationTimeouts(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeouts = enabled
	s.toggles = append(s.toggles, enabled)
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClosePanic {
		panic("close exploded")
	}
	s.closed = true
	return s.CloseErr
}

// Navigations returns every URL navigated to, in order.
func (s *Session) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigations...)
}

// Viewports returns every viewport size set, in order.
func (s *Session) Viewports() [][2]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][2]int(nil), s.viewports...)
}

// Screenshots returns the URLs of pages whose elements were captured.
func (s *Session) Screenshots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.shots...)
}

// TimeoutsEnabled reports the current navigation timeout setting.
func (s *Session) TimeoutsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeouts
}

// TimeoutToggles returns every SetNavigationTimeouts argument, in order.
func (s *Session) TimeoutToggles() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.toggles...)
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Opener returns a browser.Opener that hands out sessions from next. It
// fails with err while next returns nil.
func Opener(next func() *Session, err error) browser.Opener {
	return func(context.Context, browser.Options) (browser.Session, error) {
		if s := next(); s != nil {
			return s, nil
		}
		return nil, err
	}
}

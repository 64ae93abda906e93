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

package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
)

func TestNew(t *testing.T) {
	routes := map[string]http.HandlerFunc{
		"/status": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	}

	s := New(WithHandler(routes), WithVersion("1.2.3"), WithAddress("127.0.0.1:0"))
	if s == nil {
		t.Fatal("expected server instance, got nil")
		return
	}

	if s.httpServer == nil {
		t.Fatal("expected httpServer to be initialized")
	}
	if s.httpServer.Addr != "127.0.0.1:0" {
		t.Errorf("expected address 127.0.0.1:0, got %s", s.httpServer.Addr)
	}
	if s.rateLimiter == nil {
		t.Error("expected rateLimiter to be initialized")
	}
	if s.config.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", s.config.Version)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := New()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", w.Header().Get("Content-Type"))
	}

	post := httptest.NewRecorder()
	s.Handler().ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/health", nil))
	if post.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d for POST, got %d", http.StatusMethodNotAllowed, post.Code)
	}
}

func TestReadyEndpoint(t *testing.T) {
	notLoaded := errors.New(errors.ErrCodeUnavailable, "configuration not loaded")

	tests := []struct {
		name           string
		ready          bool
		check          ReadinessFunc
		expectedStatus int
		expectedReason string
	}{
		{
			name:           "ready without check",
			ready:          true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "ready with passing check",
			ready:          true,
			check:          func(context.Context) error { return nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "serving but check fails",
			ready:          true,
			check:          func(context.Context) error { return notLoaded },
			expectedStatus: http.StatusServiceUnavailable,
			expectedReason: notLoaded.Error(),
		},
		{
			name:           "not serving",
			ready:          false,
			check:          func(context.Context) error { return nil },
			expectedStatus: http.StatusServiceUnavailable,
			expectedReason: "service is initializing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithReadiness(tt.check))
			s.SetReady(tt.ready)

			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var resp HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if resp.Reason != tt.expectedReason {
				t.Errorf("expected reason %q, got %q", tt.expectedReason, resp.Reason)
			}
		})
	}
}

func TestDefaultRouteListsRoutes(t *testing.T) {
	s := New(WithName("watchboard"), WithVersion("v9"), WithHandler(map[string]http.HandlerFunc{
		"/status": func(w http.ResponseWriter, _ *http.Request) {},
	}))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if got := w.Header().Get(VersionHeader); got != "v9" {
		t.Errorf("expected %s header v9, got %q", VersionHeader, got)
	}

	var resp struct {
		Name   string   `json:"name"`
		Routes []string `json:"routes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Name != "watchboard" {
		t.Errorf("expected name watchboard, got %s", resp.Name)
	}
	want := []string{"GET /health", "GET /metrics", "GET /ready", "GET /status"}
	if strings.Join(resp.Routes, ",") != strings.Join(want, ",") {
		t.Errorf("expected routes %v, got %v", want, resp.Routes)
	}

	missing := httptest.NewRecorder()
	s.Handler().ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if missing.Code != http.StatusNotFound {
		t.Errorf("expected status %d for unknown path, got %d", http.StatusNotFound, missing.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := New()

	// Generate at least one observation for the request counter.
	s.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "watchboard_http_requests_total") {
		t.Error("expected watchboard_http_requests_total in metrics output")
	}
}

func TestServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := New()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url) //nolint:noctx // test helper
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ready {
		t.Error("expected server to be not ready after shutdown")
	}
}

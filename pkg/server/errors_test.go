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
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
)

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code errors.ErrorCode
		want int
	}{
		{errors.ErrCodeValidation, http.StatusBadRequest},
		{errors.ErrCodeParse, http.StatusBadRequest},
		{errors.ErrCodeUnauthorized, http.StatusForbidden},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{errors.ErrCodeConflict, http.StatusConflict},
		{ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{errors.ErrCodeUnavailable, http.StatusServiceUnavailable},
		{errors.ErrCodeSessionInit, http.StatusServiceUnavailable},
		{errors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errors.ErrCodeIO, http.StatusInternalServerError},
		{errors.ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := HTTPStatusFromCode(tt.code); got != tt.want {
				t.Fatalf("HTTPStatusFromCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestMergeDetails(t *testing.T) {
	if got := mergeDetails(nil, map[string]any{}); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}

	got := mergeDetails(map[string]any{"a": 1, "shared": "old"}, map[string]any{"b": 2, "shared": "new"})
	if got["a"] != 1 || got["b"] != 2 || got["shared"] != "new" {
		t.Fatalf("unexpected merge result %#v", got)
	}
}

func TestWriteErrorFromErr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), contextKeyRequestID, "req-123"))

	t.Run("structured error", func(t *testing.T) {
		err := errors.NewWithContext(errors.ErrCodeConflict, "stale token", map[string]any{"expected": "a"})
		w := httptest.NewRecorder()

		WriteErrorFromErr(w, req, fmt.Errorf("push: %w", err), "failed", map[string]any{"source": "cli"})

		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
		}

		var resp ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if resp.Code != string(errors.ErrCodeConflict) || resp.Message != "stale token" {
			t.Errorf("unexpected response %+v", resp)
		}
		if resp.RequestID != "req-123" {
			t.Errorf("expected requestId req-123, got %s", resp.RequestID)
		}
		if resp.Retryable {
			t.Error("expected conflict to be non-retryable")
		}
		if resp.Details["expected"] != "a" || resp.Details["source"] != "cli" {
			t.Errorf("expected merged details, got %#v", resp.Details)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		w := httptest.NewRecorder()

		WriteErrorFromErr(w, req, fmt.Errorf("boom"), "failed", nil)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var resp ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if resp.Message != "failed" || resp.Code != string(errors.ErrCodeInternal) {
			t.Errorf("unexpected response %+v", resp)
		}
	})
}

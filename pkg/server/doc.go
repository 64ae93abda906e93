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

// Package server implements the operations HTTP server of the watchboard
// daemon.
//
// The server carries no business API. It exposes:
//
//	GET /         name, version and the route list
//	GET /health   liveness; always 200 while the process serves
//	GET /ready    readiness; 503 until the configuration snapshot is loaded
//	GET /metrics  Prometheus metrics of every package
//
// Additional routes (for example a status view of the loaded dashboards) are
// registered with WithHandler and run behind the same middleware chain:
// request id tracking, panic recovery, token bucket rate limiting
// (golang.org/x/time/rate), request logging and RED metrics.
//
// Errors are written as a JSON ErrorResponse carrying the error code, the
// request id and whether the request can be retried.
//
// Usage:
//
//	srv := server.New(
//	    server.WithAddress(":9090"),
//	    server.WithReadiness(func(ctx context.Context) error { ... }),
//	)
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
package server

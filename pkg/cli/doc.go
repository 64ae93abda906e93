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

// Package cli implements the watchboard command-line interface.
//
// # Commands
//
// serve - Run the capture daemon:
//
//	watchboard serve --settings settings.yaml [--metrics-addr :9090]
//
// Loads the configuration, starts one scheduler per source and serves
// /health, /ready, /metrics and /v1/status on the operations address.
// Under systemd the process reports READY=1 once started and STOPPING=1 on
// shutdown.
//
// config - Work with the configuration documents:
//
//	watchboard config validate --settings settings.yaml
//	watchboard config show --format json
//	watchboard config token
//	watchboard config push --file dashboards.yaml --token <dashboards token>
//	watchboard config history
//
// # Environment Variables
//
//	LOG_LEVEL                 Logging verbosity (debug, info, warn, error)
//	WATCHBOARD_SETTINGS       Default for --settings
//	WATCHBOARD_METRICS_ADDR   Default for serve --metrics-addr
//	KUBECONFIG                Kubeconfig for ConfigMap stores
//	SHUTDOWN_TIMEOUT_SECONDS  Graceful shutdown limit of the operations server
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/MalmbergUitgeverij/watchboard/pkg/cli.version=1.0.0'"
package cli

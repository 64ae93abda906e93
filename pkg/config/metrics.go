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

package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchboard_config_reloads_total",
			Help: "Total number of configuration reloads by result",
		},
		[]string{"result"},
	)

	tokenReadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchboard_config_token_read_failures_total",
			Help: "Total number of failed version token reads during change detection",
		},
	)

	configuredGraphs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchboard_config_graphs",
			Help: "Number of graphs in the active configuration",
		},
	)

	configuredDashboards = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchboard_config_dashboards",
			Help: "Number of dashboards in the active configuration",
		},
	)
)

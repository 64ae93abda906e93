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

package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchboard_scheduler_runs_total",
			Help: "Total number of capture runs per source",
		},
		[]string{"source"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchboard_scheduler_run_duration_seconds",
			Help:    "Duration of a capture run per source",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"source"},
	)

	lastRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchboard_scheduler_last_run_timestamp_seconds",
			Help: "Unix time of the last completed capture run per source",
		},
		[]string{"source"},
	)
)

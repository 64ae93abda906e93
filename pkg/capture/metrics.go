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

package capture

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	capturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchboard_captures_total",
			Help: "Total number of graph captures by outcome",
		},
		[]string{"source", "outcome"},
	)

	captureDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchboard_capture_duration_seconds",
			Help:    "Duration of a single graph capture",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"source"},
	)

	imageBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchboard_capture_image_bytes",
			Help: "Size of the most recent image written per graph",
		},
		[]string{"graph"},
	)
)

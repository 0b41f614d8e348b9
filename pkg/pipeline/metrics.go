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

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Record outcomes on the request path.
const (
	outcomeEnqueued   = "enqueued"
	outcomeDropped    = "dropped"
	outcomeBuildError = "build_error"
)

var (
	recordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stellate_telemetry_records_total",
			Help: "Total number of telemetry records produced by the execution hook, by outcome",
		},
		[]string{"outcome"},
	)

	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stellate_telemetry_queue_depth",
			Help: "Number of telemetry records waiting for delivery",
		},
	)
)

// Copyright 2025 Blink Labs Software
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

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stateMetrics struct {
	transactionsTotal *prometheus.CounterVec
	submitDuration    prometheus.Histogram
	airdropsTotal     prometheus.Counter
	nodeStartTime     prometheus.Gauge
}

func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.transactionsTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkboard_ledger_transactions_total",
			Help: "processed transactions by operation and status",
		},
		[]string{"op", "status"},
	)
	m.submitDuration = promautoFactory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkboard_ledger_submit_duration_seconds",
			Help:    "time to process a submitted transaction",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
	)
	m.airdropsTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "linkboard_ledger_airdrops_total",
		Help: "total faucet airdrops",
	})
	m.nodeStartTime = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkboard_ledger_start_time_int",
			Help: "unix timestamp when the ledger was opened",
		},
	)
}

// Copyright 2025 Tom Barlow
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

package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// connectsTotal tracks successful TCP connections to the daemon
	connectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "phdlink_transport_connects_total",
			Help: "Total successful daemon connections",
		},
	)

	// connectedGauge tracks whether a connection is currently active
	connectedGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "phdlink_transport_connected",
			Help: "Whether a daemon connection is currently active (0 or 1)",
		},
	)

	// linesReceivedTotal tracks inbound frames delivered to the handler
	linesReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "phdlink_transport_lines_received_total",
			Help: "Total inbound frames read from the daemon",
		},
	)

	// bytesSentTotal tracks outbound bytes including frame terminators
	bytesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "phdlink_transport_bytes_sent_total",
			Help: "Total bytes written to the daemon",
		},
	)

	// sendErrorsTotal tracks failed writes
	sendErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "phdlink_transport_send_errors_total",
			Help: "Total failed writes to the daemon",
		},
	)
)

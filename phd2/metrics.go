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

package phd2

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// eventsTotal tracks dispatched daemon events by event name
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phdlink_events_total",
			Help: "Total daemon events dispatched by event name",
		},
		[]string{"event"},
	)

	// eventsUnhandledTotal tracks events with no registered handler
	eventsUnhandledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "phdlink_events_unhandled_total",
			Help: "Total daemon events dropped because no handler was registered",
		},
	)

	// decodeErrorsTotal tracks inbound documents that could not be decoded
	decodeErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "phdlink_decode_errors_total",
			Help: "Total inbound documents dropped as malformed or unrecognized",
		},
	)

	// commandsTotal tracks commands sent to the daemon by method name
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phdlink_commands_total",
			Help: "Total commands sent to the daemon by method name",
		},
		[]string{"method"},
	)

	// commandErrorsTotal tracks daemon error responses by method name
	commandErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phdlink_command_errors_total",
			Help: "Total daemon error responses by method name",
		},
		[]string{"method"},
	)
)

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
	"encoding/json"
	"log/slog"
	"time"
)

// NotificationHandler observes the decoded event stream. It is invoked
// on the receive goroutine after the session state has been updated for
// the event; a slow handler delays delivery of subsequent events.
type NotificationHandler func(event string, payload json.RawMessage)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger for session and transport events.
// If unset, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithNotificationHandler installs a callback observing every daemon
// event after it has been applied to the session state.
func WithNotificationHandler(handler NotificationHandler) Option {
	return func(c *Client) {
		c.notify = handler
	}
}

// WithDisconnectHandler installs a callback invoked once when the
// connection is lost without a local Disconnect, after pending calls
// have been failed. It runs on the receive goroutine.
func WithDisconnectHandler(handler func(err error)) Option {
	return func(c *Client) {
		c.onLost = handler
	}
}

// WithDialTimeout bounds the TCP handshake during Connect.
// Default: 10 seconds.
func WithDialTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.dialTimeout = timeout
	}
}

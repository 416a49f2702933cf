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

/*
Package phd2 provides an event-driven client for the PHD2 autoguiding
daemon's newline-delimited JSON protocol.

PHD2 speaks an asynchronous protocol over a plain TCP socket: it pushes
unsolicited event documents describing guiding state changes, and accepts
JSON-RPC commands on the same connection. This package owns that
connection, decodes the event stream on a single background goroutine,
and folds it into a session state record that callers read as a snapshot.

# Basic Usage

Connect, observe state, issue commands:

	c := phd2.New()
	if err := c.Connect(ctx, "localhost", 4400); err != nil {
	    log.Fatal(err)
	}
	defer c.Disconnect()

	// Start guiding and wait for the state machine to confirm.
	err := c.Guide(ctx, phd2.Settle{Pixels: 1.5, Time: 10, Timeout: 60}, false)

	for !c.State().IsGuiding {
	    time.Sleep(time.Second)
	}

# Events and Commands

Daemon events (Version, GuideStep, SettleDone, StarLost, ...) mutate the
session state; install a notification handler to observe the raw stream:

	c := phd2.New(phd2.WithNotificationHandler(func(event string, payload json.RawMessage) {
	    fmt.Println(event, string(payload))
	}))

Commands that return data (profiles, equipment status) use Call, which
correlates the daemon's JSON-RPC response by request id. Commands whose
effect is confirmed by a later event (guide, dither) are accepted for
send and observed through State transitions.

Session errors reported by the daemon (alerts, calibration failures, lost
stars) are routine operating conditions: they populate the state record's
LastError field and surface through the notification handler, never as
errors from the event path.
*/
package phd2

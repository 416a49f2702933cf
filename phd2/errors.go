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

import "errors"

var (
	// ErrNotConnected is returned when a command is issued while the
	// daemon connection is down.
	ErrNotConnected = errors.New("phd2: not connected")

	// ErrAlreadyConnected is returned by Connect when a connection is
	// already active.
	ErrAlreadyConnected = errors.New("phd2: already connected")

	// ErrConnectionLost is returned to callers awaiting a command
	// response when the connection drops before the daemon replies.
	ErrConnectionLost = errors.New("phd2: connection lost")
)

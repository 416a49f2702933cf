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
	"fmt"
)

// DefaultPort is the TCP port PHD2 listens on for its event server.
// Additional PHD2 instances on the same host use consecutive ports.
const DefaultPort = 4400

// Event names pushed by the daemon, reproduced verbatim from the PHD2
// event-monitoring protocol.
const (
	EventVersion                       = "Version"
	EventLockPositionSet               = "LockPositionSet"
	EventCalibrating                   = "Calibrating"
	EventCalibrationComplete           = "CalibrationComplete"
	EventStarSelected                  = "StarSelected"
	EventStartGuiding                  = "StartGuiding"
	EventPaused                        = "Paused"
	EventStartCalibration              = "StartCalibration"
	EventAppState                      = "AppState"
	EventCalibrationFailed             = "CalibrationFailed"
	EventCalibrationDataFlipped        = "CalibrationDataFlipped"
	EventLockPositionShiftLimitReached = "LockPositionShiftLimitReached"
	EventLoopingExposures              = "LoopingExposures"
	EventLoopingExposuresStopped       = "LoopingExposuresStopped"
	EventSettleBegin                   = "SettleBegin"
	EventSettling                      = "Settling"
	EventSettleDone                    = "SettleDone"
	EventStarLost                      = "StarLost"
	EventGuidingStopped                = "GuidingStopped"
	EventResumed                       = "Resumed"
	EventGuideStep                     = "GuideStep"
	EventGuidingDithered               = "GuidingDithered"
	EventLockPositionLost              = "LockPositionLost"
	EventAlert                         = "Alert"
	EventGuideParamChange              = "GuideParamChange"
	EventConfigurationChange           = "ConfigurationChange"
)

// eventEnvelope is the minimal decode of an inbound document: the event
// name selects the dispatch entry, the rest of the line is the payload.
type eventEnvelope struct {
	Event string `json:"Event"`
}

// rpcRequest is a JSON-RPC command sent to the daemon.
type rpcRequest struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
	ID     int64  `json:"id"`
}

// rpcResponse is the daemon's reply to a command, correlated by id.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      int64           `json:"id"`
}

// RPCError is a structured error returned by the daemon for a command.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("phd2: daemon error %d: %s", e.Code, e.Message)
}

// Settle holds the settling tolerances attached to guide and dither
// commands: the daemon reports SettleDone once guiding has stayed within
// Pixels of the lock position for Time seconds, giving up after Timeout
// seconds.
type Settle struct {
	Pixels  float64 `json:"pixels"`
	Time    float64 `json:"time"`
	Timeout float64 `json:"timeout"`
}

// DefaultSettle returns the settle tolerances used when a caller does
// not specify its own.
func DefaultSettle() Settle {
	return Settle{
		Pixels:  1.5,
		Time:    10,
		Timeout: 60,
	}
}

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

// Typed payloads for the daemon events the session tracks. Field names
// match the wire documents; every event also carries Event, Timestamp,
// Host and Inst fields that the session does not use.

// VersionEvent is sent once when the daemon accepts the connection.
type VersionEvent struct {
	PHDVersion     string `json:"PHDVersion"`
	PHDSubver      string `json:"PHDSubver"`
	MsgVersion     int    `json:"MsgVersion"`
	OverlapSupport bool   `json:"OverlapSupport"`
}

// LockPositionSetEvent reports the lock position in camera coordinates.
type LockPositionSetEvent struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
}

// CalibratingEvent reports one step of an in-progress calibration.
type CalibratingEvent struct {
	Mount string    `json:"Mount"`
	Dir   string    `json:"dir"`
	Dist  float64   `json:"dist"`
	DX    float64   `json:"dx"`
	DY    float64   `json:"dy"`
	Pos   []float64 `json:"pos"`
	Step  int       `json:"step"`
	State string    `json:"State"`
}

// StartCalibrationEvent marks the beginning of a calibration run.
type StartCalibrationEvent struct {
	Mount string `json:"Mount"`
}

// CalibrationCompleteEvent marks a successful calibration.
type CalibrationCompleteEvent struct {
	Mount string `json:"Mount"`
}

// CalibrationFailedEvent marks a failed calibration.
type CalibrationFailedEvent struct {
	Reason string `json:"Reason"`
}

// CalibrationDataFlippedEvent reports that calibration data was flipped,
// typically after a meridian flip.
type CalibrationDataFlippedEvent struct {
	Mount string `json:"Mount"`
}

// StarSelectedEvent reports the guide star position in camera coordinates.
type StarSelectedEvent struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
}

// AppStateEvent reports the daemon's top-level state, sent on connect.
type AppStateEvent struct {
	State string `json:"State"`
}

// LoopingExposuresEvent is sent for each exposure while looping.
type LoopingExposuresEvent struct {
	Frame int `json:"Frame"`
}

// SettlingEvent reports settle progress after a guide start or dither.
type SettlingEvent struct {
	Distance   float64 `json:"Distance"`
	Time       float64 `json:"Time"`
	SettleTime float64 `json:"SettleTime"`
	StarLocked bool    `json:"StarLocked"`
}

// SettleDoneEvent ends a settling phase. Status zero means the guider
// settled within tolerance; any other value carries an Error message.
type SettleDoneEvent struct {
	Status        int    `json:"Status"`
	Error         string `json:"Error"`
	TotalFrames   int    `json:"TotalFrames"`
	DroppedFrames int    `json:"DroppedFrames"`
}

// StarLostEvent reports a lost guide star. Guiding continues; the frame
// is dropped.
type StarLostEvent struct {
	Frame     int     `json:"Frame"`
	Time      float64 `json:"Time"`
	StarMass  float64 `json:"StarMass"`
	SNR       float64 `json:"SNR"`
	AvgDist   float64 `json:"AvgDist"`
	ErrorCode int     `json:"ErrorCode"`
	Status    string  `json:"Status"`
}

// GuideStepEvent reports one guide camera frame and the correction
// applied for it.
type GuideStepEvent struct {
	Frame            int     `json:"Frame"`
	Time             float64 `json:"Time"`
	Mount            string  `json:"Mount"`
	DX               float64 `json:"dx"`
	DY               float64 `json:"dy"`
	RADistanceRaw    float64 `json:"RADistanceRaw"`
	DECDistanceRaw   float64 `json:"DECDistanceRaw"`
	RADistanceGuide  float64 `json:"RADistanceGuide"`
	DECDistanceGuide float64 `json:"DECDistanceGuide"`
	RADuration       int     `json:"RADuration"`
	RADirection      string  `json:"RADirection"`
	DECDuration      int     `json:"DECDuration"`
	DECDirection     string  `json:"DECDirection"`
	StarMass         float64 `json:"StarMass"`
	SNR              float64 `json:"SNR"`
	AvgDist          float64 `json:"AvgDist"`
	RALimited        bool    `json:"RALimited"`
	DecLimited       bool    `json:"DecLimited"`
	ErrorCode        int     `json:"ErrorCode"`
}

// GuidingDitheredEvent reports the offset applied by a dither.
type GuidingDitheredEvent struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// AlertEvent is an operator-visible message from the daemon.
// Type is one of "info", "question", "warning" or "error".
type AlertEvent struct {
	Msg  string `json:"Msg"`
	Type string `json:"Type"`
}

// GuideParamChangeEvent reports a guiding algorithm parameter change.
type GuideParamChangeEvent struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

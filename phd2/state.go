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

// Point is a position in guide camera coordinates.
type Point struct {
	X float64
	Y float64
}

// SessionState is the session's view of the daemon, folded from the
// event stream. It is mutated only by event handlers on the receive
// goroutine; callers read it through Client.State, which returns a copy
// taken under the session lock.
//
// Fields other than Version, Subversion, Profile and LastError are only
// meaningful while Connected is true.
type SessionState struct {
	// Connected reports whether the daemon connection is active.
	Connected bool

	// Version and Subversion are the daemon's version strings from the
	// Version event.
	Version    string
	Subversion string

	// AppState is the daemon's top-level state string (Stopped,
	// Selected, Calibrating, Guiding, LostLock, Paused, Looping).
	AppState string

	// LockPosition is the guide lock position; valid only while
	// LockPositionValid is true.
	LockPosition      Point
	LockPositionValid bool

	// StarSelected is the selected guide star position; valid only
	// while StarSelectedValid is true.
	StarSelected      Point
	StarSelectedValid bool

	// Calibration status.
	IsCalibrating      bool
	Calibrated         bool
	CalibrationFlipped bool

	// Guiding status.
	IsGuiding  bool
	IsLooping  bool
	IsPaused   bool
	IsSettling bool
	IsSettled  bool

	// DitherDX and DitherDY are the offsets of the most recent dither.
	DitherDX float64
	DitherDY float64

	// AvgDist is the rolling average guide distance from the most
	// recent guide step, in pixels.
	AvgDist float64

	// LastError is the most recent daemon-reported error condition
	// (alert, calibration failure, lost star, failed settle).
	LastError string

	// Profile is the name of the active equipment profile. It is
	// preserved across a disconnect for reconnect attempts.
	Profile string
}

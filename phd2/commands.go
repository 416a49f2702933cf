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
	"context"
	"encoding/json"
	"fmt"
)

// Command conveniences layered on Call/SendCommand. Methods that return
// data decode the daemon's response; methods whose effect is confirmed
// by later events return once the daemon accepts the command.

// Guide starts guiding with the given settle tolerances, selecting a
// star and calibrating first if needed. The transition to guiding is
// observed through StartGuiding/SettleDone events and State.
func (c *Client) Guide(ctx context.Context, settle Settle, recalibrate bool) error {
	params := map[string]any{
		"settle":      settle,
		"recalibrate": recalibrate,
	}
	_, err := c.Call(ctx, "guide", params)
	return err
}

// Dither moves the lock position by a random offset up to amount pixels
// and waits out a new settling phase. With raOnly, only the right
// ascension axis is dithered.
func (c *Client) Dither(ctx context.Context, amount float64, raOnly bool, settle Settle) error {
	params := map[string]any{
		"amount": amount,
		"raOnly": raOnly,
		"settle": settle,
	}
	_, err := c.Call(ctx, "dither", params)
	return err
}

// Loop starts looping exposures without guiding.
func (c *Client) Loop(ctx context.Context) error {
	_, err := c.Call(ctx, "loop", nil)
	return err
}

// StopCapture stops looping and guiding. The daemon confirms with a
// GuidingStopped or LoopingExposuresStopped event.
func (c *Client) StopCapture(ctx context.Context) error {
	_, err := c.Call(ctx, "stop_capture", nil)
	return err
}

// SetPaused pauses or resumes guiding. With full, looping stops as well
// rather than just guide output.
func (c *Client) SetPaused(ctx context.Context, paused, full bool) error {
	params := []any{paused}
	if paused && full {
		params = append(params, "full")
	}
	_, err := c.Call(ctx, "set_paused", params)
	return err
}

// AppState queries the daemon's top-level state string.
func (c *Client) AppState(ctx context.Context) (string, error) {
	result, err := c.Call(ctx, "get_app_state", nil)
	if err != nil {
		return "", err
	}

	var state string
	if err := json.Unmarshal(result, &state); err != nil {
		return "", fmt.Errorf("phd2: decode app state: %w", err)
	}
	return state, nil
}

// PixelScale queries the guide camera pixel scale in arc-seconds per
// pixel.
func (c *Client) PixelScale(ctx context.Context) (float64, error) {
	result, err := c.Call(ctx, "get_pixel_scale", nil)
	if err != nil {
		return 0, err
	}

	var scale float64
	if err := json.Unmarshal(result, &scale); err != nil {
		return 0, fmt.Errorf("phd2: decode pixel scale: %w", err)
	}
	return scale, nil
}

// Equipment operations: the daemon owns the guided camera and mount;
// these connect and disconnect that equipment, not the daemon itself.

// ConnectEquipment connects the equipment of the active profile.
func (c *Client) ConnectEquipment(ctx context.Context) error {
	_, err := c.Call(ctx, "set_connected", []any{true})
	return err
}

// DisconnectEquipment disconnects the equipment of the active profile.
func (c *Client) DisconnectEquipment(ctx context.Context) error {
	_, err := c.Call(ctx, "set_connected", []any{false})
	return err
}

// ReconnectEquipment disconnects and reconnects the equipment, clearing
// stuck device state.
func (c *Client) ReconnectEquipment(ctx context.Context) error {
	if err := c.DisconnectEquipment(ctx); err != nil {
		return err
	}
	return c.ConnectEquipment(ctx)
}

// EquipmentConnected reports whether the active profile's equipment is
// connected.
func (c *Client) EquipmentConnected(ctx context.Context) (bool, error) {
	result, err := c.Call(ctx, "get_connected", nil)
	if err != nil {
		return false, err
	}

	var connected bool
	if err := json.Unmarshal(result, &connected); err != nil {
		return false, fmt.Errorf("phd2: decode connected flag: %w", err)
	}
	return connected, nil
}

// Profile identifies an equipment profile defined in the daemon.
type Profile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Profiles lists the equipment profiles defined in the daemon.
func (c *Client) Profiles(ctx context.Context) ([]Profile, error) {
	result, err := c.Call(ctx, "get_profiles", nil)
	if err != nil {
		return nil, err
	}

	var profiles []Profile
	if err := json.Unmarshal(result, &profiles); err != nil {
		return nil, fmt.Errorf("phd2: decode profiles: %w", err)
	}
	return profiles, nil
}

// CurrentProfile returns the active equipment profile and records its
// name in the session state.
func (c *Client) CurrentProfile(ctx context.Context) (Profile, error) {
	result, err := c.Call(ctx, "get_profile", nil)
	if err != nil {
		return Profile{}, err
	}

	var profile Profile
	if err := json.Unmarshal(result, &profile); err != nil {
		return Profile{}, fmt.Errorf("phd2: decode profile: %w", err)
	}

	c.stateMu.Lock()
	c.state.Profile = profile.Name
	c.stateMu.Unlock()

	return profile, nil
}

// SetProfile activates the equipment profile with the given id.
// Equipment must be disconnected first.
func (c *Client) SetProfile(ctx context.Context, id int) error {
	_, err := c.Call(ctx, "set_profile", []any{id})
	return err
}

// GenerateProfile creates a profile from an opaque specification
// document, passed through to the daemon unmodified.
func (c *Client) GenerateProfile(ctx context.Context, spec json.RawMessage) error {
	_, err := c.Call(ctx, "generate_profile", spec)
	return err
}

// ExportProfile returns the active profile as an opaque document.
func (c *Client) ExportProfile(ctx context.Context) (json.RawMessage, error) {
	return c.Call(ctx, "export_profile", nil)
}

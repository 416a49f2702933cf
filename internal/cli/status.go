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

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/phdlink/phd2"
)

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the daemon's current guiding state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer c.Disconnect()

			// The daemon announces its version and app state right
			// after accepting the connection. Give those events a
			// moment to arrive before snapshotting.
			if err := waitForVersion(ctx, c, 3*time.Second); err != nil {
				return err
			}

			state := c.State()

			if a.jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(state)
			}

			printStatus(cmd, state)
			return nil
		},
	}
}

// waitForVersion polls until the daemon's greeting has been applied to
// the session state.
func waitForVersion(ctx context.Context, c *phd2.Client, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if c.State().Version != "" {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return fmt.Errorf("daemon did not announce its version within %s", timeout)
}

func printStatus(cmd *cobra.Command, state phd2.SessionState) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, render(styleHeading, "Daemon"))
	fmt.Fprintf(out, "  %s %s\n", render(styleLabel, "Version:"), state.Version)
	fmt.Fprintf(out, "  %s %s\n", render(styleLabel, "State:"), renderAppState(state.AppState))

	fmt.Fprintln(out, render(styleHeading, "Guiding"))
	fmt.Fprintf(out, "  %s %s\n", render(styleLabel, "Guiding:"), yesNo(state.IsGuiding))
	fmt.Fprintf(out, "  %s %s\n", render(styleLabel, "Looping:"), yesNo(state.IsLooping))
	fmt.Fprintf(out, "  %s %s\n", render(styleLabel, "Paused:"), yesNo(state.IsPaused))
	fmt.Fprintf(out, "  %s %s\n", render(styleLabel, "Calibrated:"), yesNo(state.Calibrated))
	if state.IsSettling {
		fmt.Fprintf(out, "  %s %s\n", render(styleLabel, "Settling:"), "in progress")
	}
	if state.StarSelectedValid {
		fmt.Fprintf(out, "  %s %.2f, %.2f\n", render(styleLabel, "Star:"), state.StarSelected.X, state.StarSelected.Y)
	}
	if state.AvgDist > 0 {
		fmt.Fprintf(out, "  %s %.2f px\n", render(styleLabel, "Avg distance:"), state.AvgDist)
	}
	if state.LastError != "" {
		fmt.Fprintf(out, "  %s %s\n", render(styleLabel, "Last error:"), render(styleBad, state.LastError))
	}
}

func renderAppState(s string) string {
	switch s {
	case "Guiding":
		return render(styleGood, s)
	case "LostLock", "Stopped":
		return render(styleWarn, s)
	case "":
		return "(unknown)"
	default:
		return s
	}
}

func yesNo(b bool) string {
	if b {
		return render(styleGood, "yes")
	}
	return "no"
}

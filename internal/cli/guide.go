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
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/phdlink/phd2"
)

func newGuideCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guide",
		Short: "Start and stop guiding",
	}

	cmd.AddCommand(
		newGuideStartCommand(a),
		newGuideStopCommand(a),
	)

	return cmd
}

func newGuideStartCommand(a *app) *cobra.Command {
	var (
		recalibrate   bool
		wait          bool
		settlePixels  float64
		settleTime    float64
		settleTimeout float64
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start guiding and settle on the guide star",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer c.Disconnect()

			settle := a.settle(cmd.Flags(), settlePixels, settleTime, settleTimeout)

			if err := c.Guide(ctx, settle, recalibrate); err != nil {
				return err
			}

			if !wait {
				fmt.Fprintln(cmd.OutOrStdout(), "guide command accepted")
				return nil
			}

			return waitForSettle(ctx, cmd, c, settle)
		},
	}

	cmd.Flags().BoolVar(&recalibrate, "recalibrate", false, "Discard calibration and recalibrate first")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until settling completes or fails")
	addSettleFlags(cmd.Flags(), &settlePixels, &settleTime, &settleTimeout)

	return cmd
}

func newGuideStopCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop guiding and capture",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer c.Disconnect()

			if err := c.StopCapture(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "stop command accepted")
			return nil
		},
	}
}

func newDitherCommand(a *app) *cobra.Command {
	var (
		amount        float64
		raOnly        bool
		wait          bool
		settlePixels  float64
		settleTime    float64
		settleTimeout float64
	)

	cmd := &cobra.Command{
		Use:   "dither",
		Short: "Shift the lock position by a random offset and resettle",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer c.Disconnect()

			pixels := amount
			if !cmd.Flags().Changed("amount") {
				pixels = a.cfg.DitherAmount
			}

			settle := a.settle(cmd.Flags(), settlePixels, settleTime, settleTimeout)

			if err := c.Dither(ctx, pixels, raOnly, settle); err != nil {
				return err
			}

			if !wait {
				fmt.Fprintln(cmd.OutOrStdout(), "dither command accepted")
				return nil
			}

			return waitForSettle(ctx, cmd, c, settle)
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 3, "Maximum dither offset in pixels")
	cmd.Flags().BoolVar(&raOnly, "ra-only", false, "Dither on the RA axis only")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until settling completes or fails")
	addSettleFlags(cmd.Flags(), &settlePixels, &settleTime, &settleTimeout)

	return cmd
}

// waitForSettle polls the session state until settling resolves one way
// or the other. The deadline allows slack beyond the settle timeout for
// the daemon to begin the attempt.
func waitForSettle(ctx context.Context, cmd *cobra.Command, c *phd2.Client, settle phd2.Settle) error {
	deadline := time.Now().Add(time.Duration(settle.Timeout+30) * time.Second)

	for time.Now().Before(deadline) {
		state := c.State()
		if !state.Connected {
			return phd2.ErrConnectionLost
		}
		if state.IsSettled {
			fmt.Fprintln(cmd.OutOrStdout(), render(styleGood, "settled"))
			return nil
		}
		if !state.IsSettling && state.LastError != "" {
			return fmt.Errorf("settle failed: %s", state.LastError)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}

	return fmt.Errorf("daemon did not settle within %s", time.Duration(settle.Timeout+30)*time.Second)
}

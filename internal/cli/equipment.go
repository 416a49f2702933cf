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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newEquipmentCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "equipment",
		Aliases: []string{"equip"},
		Short:   "Connect, disconnect, and inspect guiding equipment",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "connect",
			Short: "Connect all equipment in the current profile",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				c, err := a.connect(ctx)
				if err != nil {
					return err
				}
				defer c.Disconnect()

				if err := c.ConnectEquipment(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "equipment connected")
				return nil
			},
		},
		&cobra.Command{
			Use:   "disconnect",
			Short: "Disconnect all equipment",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				c, err := a.connect(ctx)
				if err != nil {
					return err
				}
				defer c.Disconnect()

				if err := c.DisconnectEquipment(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "equipment disconnected")
				return nil
			},
		},
		&cobra.Command{
			Use:   "reconnect",
			Short: "Disconnect and reconnect all equipment",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				c, err := a.connect(ctx)
				if err != nil {
					return err
				}
				defer c.Disconnect()

				if err := c.ReconnectEquipment(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "equipment reconnected")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether equipment is connected",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				c, err := a.connect(ctx)
				if err != nil {
					return err
				}
				defer c.Disconnect()

				connected, err := c.EquipmentConnected(ctx)
				if err != nil {
					return err
				}

				if a.jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]bool{"connected": connected})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", render(styleLabel, "Equipment:"), yesNo(connected))
				return nil
			},
		},
	)

	return cmd
}

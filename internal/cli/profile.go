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
	"strconv"

	"github.com/spf13/cobra"
)

func newProfileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage equipment profiles",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List equipment profiles",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				c, err := a.connect(ctx)
				if err != nil {
					return err
				}
				defer c.Disconnect()

				profiles, err := c.Profiles(ctx)
				if err != nil {
					return err
				}

				if a.jsonOut {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(profiles)
				}

				for _, p := range profiles {
					fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", p.ID, p.Name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "current",
			Short: "Show the selected profile",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				c, err := a.connect(ctx)
				if err != nil {
					return err
				}
				defer c.Disconnect()

				profile, err := c.CurrentProfile(ctx)
				if err != nil {
					return err
				}

				if a.jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(profile)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", profile.ID, profile.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <id>",
			Short: "Select a profile by id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid profile id %q: %w", args[0], err)
				}

				ctx := cmd.Context()
				c, err := a.connect(ctx)
				if err != nil {
					return err
				}
				defer c.Disconnect()

				if err := c.SetProfile(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "profile %d selected\n", id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "export",
			Short: "Export the current profile as JSON",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				c, err := a.connect(ctx)
				if err != nil {
					return err
				}
				defer c.Disconnect()

				raw, err := c.ExportProfile(ctx)
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return nil
			},
		},
	)

	return cmd
}

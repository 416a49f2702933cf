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

// Package cli implements the phdlink command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tombee/phdlink/internal/config"
	"github.com/tombee/phdlink/internal/log"
	"github.com/tombee/phdlink/phd2"
)

// app carries the resolved configuration and flag state shared by all
// commands.
type app struct {
	configPath string
	host       string
	port       int
	verbose    bool
	jsonOut    bool

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand creates the root cobra command for phdlink.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "phdlink",
		Short: "phdlink - control and observe a PHD2 autoguiding daemon",
		Long: `phdlink talks to a running PHD2 instance over its event server
socket: stream guiding events, start and stop guiding, dither, and
manage equipment profiles from the command line or scripts.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Flags())
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default: ~/.config/phdlink/config.yaml)")
	cmd.PersistentFlags().StringVar(&a.host, "host", "", "Daemon host (overrides config)")
	cmd.PersistentFlags().IntVar(&a.port, "port", 0, "Daemon port (overrides config)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Output in JSON format")

	cmd.AddCommand(
		newStatusCommand(a),
		newMonitorCommand(a),
		newGuideCommand(a),
		newDitherCommand(a),
		newEquipmentCommand(a),
		newProfileCommand(a),
		newVersionCommand(version, commit, buildDate),
	)

	return cmd
}

// setup resolves configuration: defaults, then the config file, then
// explicit flags.
func (a *app) setup(flags *pflag.FlagSet) error {
	path := a.configPath
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		path = defaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if flags.Changed("host") {
		cfg.Host = a.host
	}
	if flags.Changed("port") {
		cfg.Port = a.port
	}

	logCfg := &log.Config{
		Level:  cfg.Log.Level,
		Format: log.Format(cfg.Log.Format),
		Output: os.Stderr,
	}
	if a.verbose {
		logCfg.Level = "debug"
	}

	a.cfg = cfg
	a.logger = log.New(logCfg)

	return nil
}

// connect dials the daemon with the resolved host and port.
func (a *app) connect(ctx context.Context, opts ...phd2.Option) (*phd2.Client, error) {
	opts = append([]phd2.Option{phd2.WithLogger(a.logger)}, opts...)
	c := phd2.New(opts...)

	if err := c.Connect(ctx, a.cfg.Host, a.cfg.Port); err != nil {
		return nil, fmt.Errorf("connect to daemon at %s:%d: %w", a.cfg.Host, a.cfg.Port, err)
	}

	return c, nil
}

// settle builds the daemon settle parameters from config defaults and
// any explicit flags.
func (a *app) settle(flags *pflag.FlagSet, pixels, time, timeout float64) phd2.Settle {
	settle := phd2.Settle{
		Pixels:  a.cfg.Settle.Pixels,
		Time:    a.cfg.Settle.Time,
		Timeout: a.cfg.Settle.Timeout,
	}

	if flags.Changed("settle-pixels") {
		settle.Pixels = pixels
	}
	if flags.Changed("settle-time") {
		settle.Time = time
	}
	if flags.Changed("settle-timeout") {
		settle.Timeout = timeout
	}

	return settle
}

// addSettleFlags registers the settle tolerance flags shared by guide
// and dither.
func addSettleFlags(flags *pflag.FlagSet, pixels, time, timeout *float64) {
	flags.Float64Var(pixels, "settle-pixels", 1.5, "Settle tolerance in pixels")
	flags.Float64Var(time, "settle-time", 10, "Seconds the guider must stay within tolerance")
	flags.Float64Var(timeout, "settle-timeout", 60, "Seconds before settling is abandoned")
}

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
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tombee/phdlink/internal/log"
	"github.com/tombee/phdlink/phd2"
)

func newMonitorCommand(a *app) *cobra.Command {
	var (
		metricsAddr string
		filter      []string
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Stream daemon events until interrupted",
		Long: `Monitor connects to the daemon and prints every event it emits,
one per line, until the process is interrupted or the connection is
lost. With --json each line is the raw event payload; otherwise events
are rendered as a timestamped summary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			wanted := make(map[string]bool, len(filter))
			for _, name := range filter {
				wanted[name] = true
			}

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				srv := &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						a.logger.Error("metrics server failed", log.Error(err))
					}
				}()
				defer srv.Close()
				a.logger.Info("serving metrics", log.String("addr", metricsAddr))
			}

			done := make(chan struct{})

			handler := func(event string, payload json.RawMessage) {
				if len(wanted) > 0 && !wanted[event] {
					return
				}
				if a.jsonOut {
					fmt.Fprintln(out, string(payload))
					return
				}
				fmt.Fprintf(out, "%s  %-28s %s\n",
					time.Now().Format("15:04:05"),
					renderEventName(event),
					summarizeEvent(event, payload))
			}

			c, err := a.connect(ctx,
				phd2.WithNotificationHandler(handler),
				phd2.WithDisconnectHandler(func(err error) {
					if err != nil {
						a.logger.Error("connection lost", log.Error(err))
					}
					close(done)
				}),
			)
			if err != nil {
				return err
			}
			defer c.Disconnect()

			select {
			case <-ctx.Done():
				return nil
			case <-done:
				return phd2.ErrConnectionLost
			}
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().StringSliceVar(&filter, "event", nil, "Only show these events (repeatable)")

	return cmd
}

func renderEventName(event string) string {
	switch event {
	case phd2.EventAlert, phd2.EventStarLost, phd2.EventCalibrationFailed:
		return render(styleBad, event)
	case phd2.EventGuideStep, phd2.EventSettleDone:
		return render(styleGood, event)
	default:
		return event
	}
}

// summarizeEvent picks out the fields worth showing for the frequent
// events; everything else falls back to the raw payload.
func summarizeEvent(event string, payload json.RawMessage) string {
	switch event {
	case phd2.EventGuideStep:
		var step phd2.GuideStepEvent
		if err := json.Unmarshal(payload, &step); err == nil {
			return fmt.Sprintf("frame=%d dx=%+.2f dy=%+.2f dist=%.2f snr=%.1f",
				step.Frame, step.DX, step.DY, step.AvgDist, step.SNR)
		}
	case phd2.EventAppState:
		var state phd2.AppStateEvent
		if err := json.Unmarshal(payload, &state); err == nil {
			return state.State
		}
	case phd2.EventAlert:
		var alert phd2.AlertEvent
		if err := json.Unmarshal(payload, &alert); err == nil {
			return fmt.Sprintf("[%s] %s", alert.Type, alert.Msg)
		}
	case phd2.EventSettleDone:
		var sd phd2.SettleDoneEvent
		if err := json.Unmarshal(payload, &sd); err == nil {
			if sd.Status == 0 {
				return fmt.Sprintf("settled after %d frames", sd.TotalFrames)
			}
			return fmt.Sprintf("failed: %s", sd.Error)
		}
	case phd2.EventStarLost:
		var lost phd2.StarLostEvent
		if err := json.Unmarshal(payload, &lost); err == nil {
			return fmt.Sprintf("frame=%d snr=%.1f", lost.Frame, lost.SNR)
		}
	}
	return string(payload)
}

// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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
	"log/slog"
	"net/http"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/MalmbergUitgeverij/watchboard/pkg/config"
	"github.com/MalmbergUitgeverij/watchboard/pkg/defaults"
	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
	"github.com/MalmbergUitgeverij/watchboard/pkg/scheduler"
	"github.com/MalmbergUitgeverij/watchboard/pkg/serializer"
	"github.com/MalmbergUitgeverij/watchboard/pkg/server"
)

// StatusPath serves the loaded configuration and capture progress.
const StatusPath = "/v1/status"

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the capture schedulers and the operations server",
		Description: `Load the settings and dashboards documents, start one scheduler per
configured source and serve health, readiness, metrics and status on the
operations address.

Each scheduler owns one browser session. A failing source never stops the
others. On SIGINT/SIGTERM no new graph is started; a capture in flight
finishes before the process exits, bounded by --drain-timeout.

Examples:
  watchboard serve --settings /etc/watchboard/settings.yaml
  watchboard serve -s settings.toml --metrics-addr 127.0.0.1:9090`,
		Flags: []cli.Flag{
			settingsFlag(),
			&cli.StringFlag{
				Name:    "metrics-addr",
				Value:   server.DefaultAddress,
				Usage:   "Listen address of the operations server; empty disables it",
				Sources: cli.EnvVars("WATCHBOARD_METRICS_ADDR"),
			},
			&cli.DurationFlag{
				Name:    "drain-timeout",
				Value:   defaults.CaptureDrainTimeout,
				Usage:   "How long a capture in flight may run after a stop signal",
				Sources: cli.EnvVars("WATCHBOARD_DRAIN_TIMEOUT"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settingsPath := cmd.String("settings")
			mgr := config.NewManager(settingsPath)

			snap, err := mgr.Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("failed to load configuration from %q: %w", settingsPath, err)
			}

			slog.Info("configuration loaded",
				"settings", settingsPath,
				"sources", snap.Settings.SourceTypes(),
				"dashboards", len(snap.Dashboards),
				"graphs", snap.GraphCount(),
				"tempPath", snap.TempPath())

			group, err := scheduler.NewGroup(ctx, mgr, nil)
			if err != nil {
				return fmt.Errorf("failed to create schedulers: %w", err)
			}

			g, gctx := errgroup.WithContext(ctx)

			if addr := cmd.String("metrics-addr"); addr != "" {
				srv := server.New(
					server.WithName(name),
					server.WithVersion(version),
					server.WithAddress(addr),
					server.WithReadiness(readiness(mgr)),
					server.WithHandler(map[string]http.HandlerFunc{
						StatusPath: statusHandler(mgr),
					}),
				)
				g.Go(func() error {
					return srv.Start(gctx)
				})
			}

			g.Go(func() error {
				return group.Drain(gctx, cmd.Duration("drain-timeout"))
			})

			notify(daemon.SdNotifyReady)
			err = g.Wait()
			notify(daemon.SdNotifyStopping)

			if err != nil {
				return fmt.Errorf("serve failed: %w", err)
			}
			slog.Info("stopped gracefully")
			return nil
		},
	}
}

// readiness reports ready once the configuration snapshot is loaded.
func readiness(mgr *config.Manager) server.ReadinessFunc {
	return func(context.Context) error {
		if !mgr.Ready() {
			return errors.New(errors.ErrCodeUnavailable, "configuration not loaded")
		}
		return nil
	}
}

func statusHandler(mgr *config.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			server.WriteError(w, r, http.StatusMethodNotAllowed, server.ErrCodeMethodNotAllowed,
				"Method not allowed", false, nil)
			return
		}

		snap := mgr.Current()
		if snap == nil {
			server.WriteErrorFromErr(w, r,
				errors.New(errors.ErrCodeUnavailable, "configuration not loaded"), "", nil)
			return
		}

		serializer.RespondJSON(w, http.StatusOK, snap.Status())
	}
}

// notify forwards a state change to systemd when running under it.
func notify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		slog.Warn("systemd notification failed", "state", state, "error", err)
		return
	}
	if sent {
		slog.Debug("systemd notified", "state", state)
	}
}

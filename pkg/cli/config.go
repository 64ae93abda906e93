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
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/MalmbergUitgeverij/watchboard/pkg/config"
	"github.com/MalmbergUitgeverij/watchboard/pkg/document"
	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
	"github.com/MalmbergUitgeverij/watchboard/pkg/serializer"
	"github.com/MalmbergUitgeverij/watchboard/pkg/store"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect and update the settings and dashboards documents",
		Commands: []*cli.Command{
			configValidateCmd(),
			configShowCmd(),
			configTokenCmd(),
			configPushCmd(),
			configHistoryCmd(),
		},
	}
}

func configValidateCmd() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate the settings file and the dashboards document it points to",
		Flags: []cli.Flag{settingsFlag(), kubeconfigFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, st, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}

			doc, err := st.ReadConfig(ctx)
			if err != nil {
				return fmt.Errorf("failed to read dashboards: %w", err)
			}
			if err := doc.Validate(); err != nil {
				return fmt.Errorf("invalid dashboards document: %w", err)
			}

			w := stdout(cmd)
			if _, err := fmt.Fprintf(w, "settings: ok (sources: %s)\ndashboards: ok (%d dashboards, %d graphs)\n",
				strings.Join(settings.SourceTypes(), ", "), len(doc.Dashboards), doc.GraphCount()); err != nil {
				return err
			}

			pc, ok := st.(store.PermissionChecker)
			if !ok {
				return nil
			}
			checks, err := pc.CheckPermissions(ctx)
			for _, c := range checks {
				slog.Debug("permission check", "verb", c.Verb, "resource", c.Resource,
					"namespace", c.Namespace, "allowed", c.Allowed, "reason", c.Reason)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "permissions: ok (%d checks)\n", len(checks))
			return err
		},
	}
}

func configShowCmd() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the dashboards document",
		Flags: []cli.Flag{settingsFlag(), kubeconfigFlag(), formatFlag(), outputFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			_, st, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}

			doc, err := st.ReadConfig(ctx)
			if err != nil {
				return fmt.Errorf("failed to read dashboards: %w", err)
			}

			data, err := serializer.Encode(format, doc)
			if err != nil {
				return err
			}
			return writeOutput(cmd, data)
		},
	}
}

func configTokenCmd() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Print the version tokens of both documents",
		Description: `Print the settings token, the dashboards token and their combination.
Pass the dashboards token to "config push --token" to update the document.`,
		Flags: []cli.Flag{settingsFlag(), kubeconfigFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settingsFile := store.NewSettingsFile(cmd.String("settings"))
			settingsToken, err := settingsFile.LastUpdated(ctx)
			if err != nil {
				return err
			}

			_, st, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			dashboardsToken, err := st.LastUpdated(ctx)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(stdout(cmd), "settings: %s\ndashboards: %s\naggregate: %s\n",
				settingsToken, dashboardsToken, config.AggregateToken(settingsToken, dashboardsToken))
			return err
		},
	}
}

func configPushCmd() *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "Replace the dashboards document",
		Description: `Validate a dashboards document and write it to the configured store.

The --token value must be the current dashboards token (see "config token").
ConfigMap stores reject a stale token with a conflict and archive the
replaced version. An empty token creates a ConfigMap document that does not
exist yet.

Examples:
  watchboard config push -s settings.yaml --file dashboards.yaml --token 2026-01-02T03:04:05Z`,
		Flags: []cli.Flag{
			settingsFlag(),
			kubeconfigFlag(),
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Required: true,
				Usage:    "Path to the new dashboards document (format by extension)",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Dashboards token the update is based on",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var doc document.Dashboards
			if err := serializer.DecodeFile(cmd.String("file"), &doc); err != nil {
				return errors.Wrap(errors.ErrCodeParse, "failed to load dashboards document", err)
			}

			_, st, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}

			token, err := st.UpdateConfig(ctx, &doc, store.Token(cmd.String("token")))
			if err != nil {
				return err
			}

			slog.Info("dashboards updated", "dashboards", len(doc.Dashboards), "token", token)
			_, err = fmt.Fprintln(stdout(cmd), token)
			return err
		},
	}
}

func configHistoryCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List archived versions of the dashboards document, newest first",
		Flags: []cli.Flag{settingsFlag(), kubeconfigFlag(), formatFlag(), outputFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			_, st, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}

			h, ok := st.(store.Historian)
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "the configured dashboards store keeps no history")
			}

			entries, err := h.History(ctx)
			if err != nil {
				return err
			}

			data, err := serializer.Encode(format, struct {
				History []store.HistoryEntry `json:"history" yaml:"history" toml:"history"`
			}{History: entries})
			if err != nil {
				return err
			}
			return writeOutput(cmd, data)
		},
	}
}

// openStore reads the settings file and opens the dashboards store it names.
func openStore(ctx context.Context, cmd *cli.Command) (*document.Settings, store.Store, error) {
	path := cmd.String("settings")

	settings, err := store.NewSettingsFile(path).Read(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings from %q: %w", path, err)
	}

	kubeconfig := cmd.String("kubeconfig")
	if kubeconfig == "" && settings.DashboardConfig != nil {
		kubeconfig = settings.DashboardConfig.Kubeconfig
	}

	st, err := store.New(settings.DashboardStore(), path, kubeconfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dashboards store: %w", err)
	}
	return settings, st, nil
}

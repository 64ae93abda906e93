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

package capture

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/MalmbergUitgeverij/watchboard/pkg/browser"
	"github.com/MalmbergUitgeverij/watchboard/pkg/config"
	"github.com/MalmbergUitgeverij/watchboard/pkg/defaults"
	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
	"github.com/MalmbergUitgeverij/watchboard/pkg/serializer"
)

// BlankPage is loaded before every capture.
const BlankPage = "about:blank"

// Outcome is the result of one graph capture.
type Outcome int

const (
	// OutcomeCaptured means the graph image was written.
	OutcomeCaptured Outcome = iota
	// OutcomeNoData means the page never became ready; a diagnostic
	// screenshot was written instead.
	OutcomeNoData
	// OutcomeFailed means the capture failed for another reason.
	OutcomeFailed
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeCaptured:
		return "captured"
	case OutcomeNoData:
		return "no_data"
	default:
		return "failed"
	}
}

// Capturer captures graphs of one source type.
type Capturer struct {
	sourceType string
	profile    Profile
	tempPath   string
	now        func() time.Time
}

// New returns a capturer writing images under tempPath.
func New(sourceType string, profile Profile, tempPath string) *Capturer {
	if profile.PollInterval <= 0 {
		profile.PollInterval = defaults.ReadinessPollInterval
	}
	if profile.LoginTimeout <= 0 {
		profile.LoginTimeout = defaults.LoginTitleTimeout
	}
	return &Capturer{
		sourceType: sourceType,
		profile:    profile,
		tempPath:   tempPath,
		now:        time.Now,
	}
}

// DebugPath returns where the diagnostic screenshot of a graph is written.
func (c *Capturer) DebugPath(graphID string) string {
	return filepath.Join(c.tempPath, "debug", graphID+".png")
}

// Capture renders g and writes its image. On success the timestamps of g
// and src are updated. A nil error is returned for OutcomeCaptured and
// OutcomeNoData.
func (c *Capturer) Capture(ctx context.Context, s browser.Session, g *config.Graph, src *config.Source) (Outcome, error) {
	start := c.now()
	outcome, err := c.capture(ctx, s, g, src)

	capturesTotal.WithLabelValues(c.sourceType, outcome.String()).Inc()
	captureDuration.WithLabelValues(c.sourceType).Observe(time.Since(start).Seconds())
	return outcome, err
}

func (c *Capturer) capture(ctx context.Context, s browser.Session, g *config.Graph, src *config.Source) (Outcome, error) {
	slog.Debug("starting graph update", "graph", g.ID, "imagePath", g.ImagePath)

	if err := s.SetViewport(ctx, defaults.WorkingViewportWidth, defaults.WorkingViewportHeight); err != nil {
		return OutcomeFailed, fmt.Errorf("failed to reset viewport: %w", err)
	}
	if err := s.Navigate(ctx, BlankPage); err != nil && !stderrors.Is(err, browser.ErrNavigationTimeout) {
		return OutcomeFailed, fmt.Errorf("failed to load blank page: %w", err)
	}

	s.SetNavigationTimeouts(false)
	defer s.SetNavigationTimeouts(true)

	if err := s.Navigate(ctx, g.URL); err != nil && !stderrors.Is(err, browser.ErrNavigationTimeout) {
		return OutcomeFailed, fmt.Errorf("failed to load %s: %w", g.URL, err)
	}

	for _, w := range c.profile.Waits {
		err := wait.PollUntilContextTimeout(ctx, c.profile.PollInterval, w.Timeout, true,
			func(ctx context.Context) (bool, error) {
				return w.Condition(ctx, s, g.URL)
			})
		if err == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return OutcomeFailed, ctxErr
		}
		if wait.Interrupted(err) || stderrors.Is(err, browser.ErrNoElement) {
			c.noData(ctx, s, g, fmt.Sprintf("%s not ready within %s", w.Name, w.Timeout))
			return OutcomeNoData, nil
		}
		return OutcomeFailed, fmt.Errorf("readiness check %s failed: %w", w.Name, err)
	}

	if err := s.SetViewport(ctx, g.BrowserWidth, g.BrowserHeight); err != nil {
		return OutcomeFailed, fmt.Errorf("failed to set graph viewport: %w", err)
	}

	png, err := s.Screenshot(ctx, c.profile.ContentSelector)
	if stderrors.Is(err, browser.ErrNoElement) {
		c.noData(ctx, s, g, err.Error())
		return OutcomeNoData, nil
	}
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to take screenshot: %w", err)
	}

	if err := c.write(g.ImagePath, png); err != nil {
		return OutcomeFailed, errors.WrapWithContext(errors.ErrCodeIO, "failed to write graph image", err,
			map[string]any{"graph": g.ID, "path": g.ImagePath})
	}

	now := c.now()
	g.MarkUpdated(now)
	if src != nil {
		src.MarkUpdated(now)
	}
	imageBytes.WithLabelValues(g.ID).Set(float64(len(png)))

	slog.Debug("graph updated", "graph", g.ID, "size", humanize.Bytes(uint64(len(png))))
	return OutcomeCaptured, nil
}

// noData logs the missing data and writes a viewport screenshot for diagnosis.
func (c *Capturer) noData(ctx context.Context, s browser.Session, g *config.Graph, reason string) {
	slog.Info("no visualizations found for graph, skipping screenshot",
		"sourceType", c.sourceType, "graph", g.ID, "reason", reason)

	png, err := s.CaptureViewport(ctx)
	if err != nil {
		slog.Warn("failed to take debug screenshot", "graph", g.ID, "error", err)
		return
	}
	path := c.DebugPath(g.ID)
	if err := c.write(path, png); err != nil {
		slog.Warn("failed to write debug screenshot", "graph", g.ID, "path", path, "error", err)
		return
	}
	slog.Debug("debug screenshot written", "graph", g.ID, "path", path, "size", humanize.Bytes(uint64(len(png))))
}

func (c *Capturer) write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return serializer.WriteFileAtomic(path, data, 0o644)
}

// Login opens the source's login page and waits for the expected title.
// Credentials, when configured, are passed as URL user info.
func (c *Capturer) Login(ctx context.Context, s browser.Session, src *config.Source) error {
	if src.LoginURL == "" {
		return nil
	}

	target, err := loginURL(src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeValidation, "invalid login url", err)
	}

	if err := s.SetViewport(ctx, defaults.WorkingViewportWidth, defaults.WorkingViewportHeight); err != nil {
		return fmt.Errorf("failed to reset viewport: %w", err)
	}
	if err := s.Navigate(ctx, target); err != nil && !stderrors.Is(err, browser.ErrNavigationTimeout) {
		return fmt.Errorf("failed to load login page: %w", err)
	}

	if c.profile.LoginTitle == "" {
		return nil
	}

	var title string
	err = wait.PollUntilContextTimeout(ctx, c.profile.PollInterval, c.profile.LoginTimeout, true,
		func(ctx context.Context) (bool, error) {
			var err error
			title, err = s.Title(ctx)
			return title == c.profile.LoginTitle, err
		})
	if err != nil {
		if wait.Interrupted(err) && ctx.Err() == nil {
			return errors.NewWithContext(errors.ErrCodeTimeout, "unexpected login page title",
				map[string]any{"expected": c.profile.LoginTitle, "actual": title})
		}
		return err
	}
	return nil
}

func loginURL(src *config.Source) (string, error) {
	if src.Username == "" {
		return src.LoginURL, nil
	}
	u, err := url.Parse(src.LoginURL)
	if err != nil {
		return "", err
	}
	if u.User == nil {
		u.User = url.UserPassword(src.Username, src.Password)
	}
	return u.String(), nil
}

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

package store

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/MalmbergUitgeverij/watchboard/pkg/document"
	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
	"github.com/MalmbergUitgeverij/watchboard/pkg/serializer"
)

// dashboardsKey is the top-level key holding the document inside a file.
const dashboardsKey = "dashboards"

// FileStore keeps the dashboards document in a local file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store for the file at path. The file format is
// derived from its extension.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// ReadConfig decodes the dashboards key of the file.
func (s *FileStore) ReadConfig(ctx context.Context) (*document.Dashboards, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeIO, "failed to read dashboards file", err,
			map[string]any{"path": s.path})
	}

	var doc document.Dashboards
	if err := serializer.Decode(serializer.FormatFromPath(s.path), data, &doc); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeParse, "failed to parse dashboards file", err,
			map[string]any{"path": s.path})
	}
	return &doc, nil
}

// LastUpdated returns the modification time token of the file.
func (s *FileStore) LastUpdated(ctx context.Context) (Token, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fileToken(s.path)
}

// UpdateConfig replaces the dashboards key of the file, preserving every
// other key. The expected token is not checked.
func (s *FileStore) UpdateConfig(ctx context.Context, doc *document.Dashboards, expected Token) (Token, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	format := serializer.FormatFromPath(s.path)
	content := map[string]any{}
	mode := fs.FileMode(0o644)

	var prevMod time.Time
	info, err := os.Stat(s.path)
	switch {
	case err == nil:
		prevMod = info.ModTime()
		mode = info.Mode().Perm()
		data, readErr := os.ReadFile(s.path)
		if readErr != nil {
			return "", errors.Wrap(errors.ErrCodeIO, "failed to read dashboards file", readErr)
		}
		if decErr := serializer.Decode(format, data, &content); decErr != nil {
			return "", errors.Wrap(errors.ErrCodeParse, "failed to parse dashboards file", decErr)
		}
		if content == nil {
			content = map[string]any{}
		}
	case stderrors.Is(err, fs.ErrNotExist):
	default:
		return "", errors.Wrap(errors.ErrCodeIO, "failed to stat dashboards file", err)
	}

	if current := tokenOf(prevMod); expected != "" && !prevMod.IsZero() && expected != current {
		slog.Warn("overwriting dashboards file with stale token",
			"path", s.path, "expected", expected, "current", current)
	}

	content[dashboardsKey] = doc.Dashboards
	out, err := serializer.Encode(format, content)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to encode dashboards file", err)
	}

	if err := serializer.WriteFileAtomic(s.path, out, mode); err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeIO, "failed to write dashboards file", err,
			map[string]any{"path": s.path})
	}

	// Coarse filesystem clocks can hand back the previous mtime.
	newInfo, err := os.Stat(s.path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, "failed to stat dashboards file", err)
	}
	if !prevMod.IsZero() && !newInfo.ModTime().After(prevMod) {
		bumped := prevMod.Add(time.Millisecond)
		if err := os.Chtimes(s.path, bumped, bumped); err != nil {
			return "", errors.Wrap(errors.ErrCodeIO, "failed to advance dashboards file mtime", err)
		}
	}

	token, err := fileToken(s.path)
	if err != nil {
		return "", err
	}
	slog.Info("dashboards file updated", "path", s.path, "token", token, "dashboards", len(doc.Dashboards))
	return token, nil
}

// SettingsFile reads the local settings document.
type SettingsFile struct {
	path string
}

// NewSettingsFile returns a reader for the settings file at path.
func NewSettingsFile(path string) *SettingsFile {
	return &SettingsFile{path: path}
}

// Path returns the settings file path.
func (f *SettingsFile) Path() string {
	return f.path
}

// Read decodes and validates the settings file.
func (f *SettingsFile) Read(ctx context.Context) (*document.Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeIO, "failed to read settings file", err,
			map[string]any{"path": f.path})
	}

	var settings document.Settings
	if err := serializer.Decode(serializer.FormatFromPath(f.path), data, &settings); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeParse, "failed to parse settings file", err,
			map[string]any{"path": f.path})
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// LastUpdated returns the modification time token of the settings file.
func (f *SettingsFile) LastUpdated(ctx context.Context) (Token, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fileToken(f.path)
}

func fileToken(path string) (Token, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeIO, "failed to stat file", err,
			map[string]any{"path": path})
	}
	return tokenOf(info.ModTime()), nil
}

func tokenOf(t time.Time) Token {
	if t.IsZero() {
		return ""
	}
	return Token(t.UTC().Format(time.RFC3339Nano))
}

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
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"time"

	"github.com/google/uuid"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/MalmbergUitgeverij/watchboard/pkg/defaults"
	"github.com/MalmbergUitgeverij/watchboard/pkg/document"
	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
	"github.com/MalmbergUitgeverij/watchboard/pkg/k8s/client"
)

// ConfigMap layout.
const (
	DataKeyDashboards = "dashboards.json"
	DataKeyUpdatedAt  = "updatedAt"

	// LabelHistoryOf marks an archived version with the name of its primary ConfigMap.
	LabelHistoryOf = "watchboard.io/history-of"
	// AnnotationArchivedAt records when a version was archived.
	AnnotationArchivedAt = "watchboard.io/archived-at"

	labelManagedBy = "app.kubernetes.io/managed-by"
	managedBy      = "watchboard"
)

// HistoryEntry describes one archived version of the document.
type HistoryEntry struct {
	Name       string    `json:"name" yaml:"name" toml:"name"`
	UpdatedAt  Token     `json:"updatedAt" yaml:"updatedAt" toml:"updatedAt"`
	ArchivedAt time.Time `json:"archivedAt" yaml:"archivedAt" toml:"archivedAt"`
}

// ConfigMapStore keeps the dashboards document in a Kubernetes ConfigMap.
type ConfigMapStore struct {
	client    client.Interface
	namespace string
	name      string
	now       func() time.Time
}

// NewConfigMapStore returns a store for the ConfigMap namespace/name.
func NewConfigMapStore(c client.Interface, namespace, name string) *ConfigMapStore {
	return &ConfigMapStore{
		client:    c,
		namespace: namespace,
		name:      name,
		now:       time.Now,
	}
}

// ReadConfig decodes and validates the dashboards document from the
// primary ConfigMap.
func (s *ConfigMapStore) ReadConfig(ctx context.Context) (*document.Dashboards, error) {
	cm, err := s.get(ctx)
	if err != nil {
		return nil, err
	}

	raw, ok := cm.Data[DataKeyDashboards]
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeParse, "configmap has no dashboards document",
			s.logContext())
	}
	return document.ParseDashboards([]byte(raw))
}

// LastUpdated returns the stored updatedAt attribute.
func (s *ConfigMapStore) LastUpdated(ctx context.Context) (Token, error) {
	cm, err := s.get(ctx)
	if err != nil {
		return "", err
	}
	return Token(cm.Data[DataKeyUpdatedAt]), nil
}

// UpdateConfig archives the current version and writes doc, provided the
// stored token equals expected. When the ConfigMap does not exist yet and
// expected is empty, it is created. A failed write removes its archive.
func (s *ConfigMapStore) UpdateConfig(ctx context.Context, doc *document.Dashboards, expected Token) (Token, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	payload, err := doc.Encode()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.StoreOperationTimeout)
	defer cancel()

	cms := s.client.CoreV1().ConfigMaps(s.namespace)

	current, err := cms.Get(ctx, s.name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return s.bootstrap(ctx, payload, expected)
	}
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeIO, "failed to read configmap", err, s.logContext())
	}

	stored := Token(current.Data[DataKeyUpdatedAt])
	if stored != expected {
		return "", errors.NewWithContext(errors.ErrCodeConflict,
			"dashboards document was modified concurrently",
			map[string]any{"namespace": s.namespace, "name": s.name, "expected": expected, "current": stored})
	}

	archivedAt := s.now().UTC()
	archive := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      archiveName(s.name, archivedAt),
			Namespace: s.namespace,
			Labels: map[string]string{
				LabelHistoryOf: s.name,
				labelManagedBy: managedBy,
			},
			Annotations: map[string]string{
				AnnotationArchivedAt: archivedAt.Format(time.RFC3339Nano),
			},
		},
		Data: maps.Clone(current.Data),
	}
	if _, err := cms.Create(ctx, archive, metav1.CreateOptions{}); err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeIO, "failed to archive dashboards document", err,
			map[string]any{"namespace": s.namespace, "archive": archive.Name})
	}

	token := s.nextToken(stored)
	if current.Data == nil {
		current.Data = map[string]string{}
	}
	current.Data[DataKeyDashboards] = string(payload)
	current.Data[DataKeyUpdatedAt] = string(token)

	// current carries the resourceVersion that was read, so a write racing
	// between Get and Update is rejected by the API server.
	if _, err := cms.Update(ctx, current, metav1.UpdateOptions{}); err != nil {
		s.discardArchive(ctx, archive.Name)
		if apierrors.IsConflict(err) {
			return "", errors.WrapWithContext(errors.ErrCodeConflict,
				"dashboards document was modified concurrently", err, s.logContext())
		}
		return "", errors.WrapWithContext(errors.ErrCodeIO, "failed to update configmap", err, s.logContext())
	}

	slog.Info("dashboards configmap updated",
		"namespace", s.namespace,
		"name", s.name,
		"archive", archive.Name,
		"token", token)
	return token, nil
}

// discardArchive deletes an archive whose update did not land. Failure is
// logged only; the orphan then shows up in History.
func (s *ConfigMapStore) discardArchive(ctx context.Context, name string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaults.StoreOperationTimeout)
	defer cancel()

	err := s.client.CoreV1().ConfigMaps(s.namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		slog.Warn("failed to remove archive of failed update",
			"namespace", s.namespace,
			"archive", name,
			"error", err)
	}
}

// History lists archived versions, newest first.
func (s *ConfigMapStore) History(ctx context.Context) ([]HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.StoreOperationTimeout)
	defer cancel()

	list, err := s.client.CoreV1().ConfigMaps(s.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: LabelHistoryOf + "=" + s.name,
	})
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeIO, "failed to list configmap history", err, s.logContext())
	}

	entries := make([]HistoryEntry, 0, len(list.Items))
	for _, cm := range list.Items {
		archivedAt, err := time.Parse(time.RFC3339Nano, cm.Annotations[AnnotationArchivedAt])
		if err != nil {
			archivedAt = cm.CreationTimestamp.Time
		}
		entries = append(entries, HistoryEntry{
			Name:       cm.Name,
			UpdatedAt:  Token(cm.Data[DataKeyUpdatedAt]),
			ArchivedAt: archivedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ArchivedAt.After(entries[j].ArchivedAt)
	})
	return entries, nil
}

func (s *ConfigMapStore) bootstrap(ctx context.Context, payload []byte, expected Token) (Token, error) {
	if expected != "" {
		return "", errors.NewWithContext(errors.ErrCodeConflict,
			"dashboards configmap does not exist",
			map[string]any{"namespace": s.namespace, "name": s.name, "expected": expected})
	}

	token := s.nextToken("")
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      s.name,
			Namespace: s.namespace,
			Labels:    map[string]string{labelManagedBy: managedBy},
		},
		Data: map[string]string{
			DataKeyDashboards: string(payload),
			DataKeyUpdatedAt:  string(token),
		},
	}
	if _, err := s.client.CoreV1().ConfigMaps(s.namespace).Create(ctx, cm, metav1.CreateOptions{}); err != nil {
		if apierrors.IsAlreadyExists(err) {
			return "", errors.WrapWithContext(errors.ErrCodeConflict,
				"dashboards configmap was created concurrently", err, s.logContext())
		}
		return "", errors.WrapWithContext(errors.ErrCodeIO, "failed to create configmap", err, s.logContext())
	}

	slog.Info("dashboards configmap created", "namespace", s.namespace, "name", s.name, "token", token)
	return token, nil
}

func (s *ConfigMapStore) get(ctx context.Context) (*corev1.ConfigMap, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.StoreOperationTimeout)
	defer cancel()

	cm, err := s.client.CoreV1().ConfigMaps(s.namespace).Get(ctx, s.name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "dashboards configmap not found", err, s.logContext())
	}
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeIO, "failed to read configmap", err, s.logContext())
	}
	return cm, nil
}

// nextToken returns a time-based token that differs from prev.
func (s *ConfigMapStore) nextToken(prev Token) Token {
	now := s.now().UTC()
	if last, err := time.Parse(time.RFC3339Nano, string(prev)); err == nil && !now.After(last) {
		now = last.Add(time.Nanosecond)
	}
	return Token(now.Format(time.RFC3339Nano))
}

// archiveName returns a time-suffixed name for an archived version. The
// random tail keeps names unique when the clock does not advance.
func archiveName(name string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s", name, at.Format("20060102t150405"), uuid.NewString()[:8])
}

func (s *ConfigMapStore) logContext() map[string]any {
	return map[string]any{"namespace": s.namespace, "name": s.name}
}

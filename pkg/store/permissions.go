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
	"strings"

	authv1 "k8s.io/api/authorization/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
)

// PermissionCheck is the outcome of one access review.
type PermissionCheck struct {
	Resource  string `json:"resource" yaml:"resource"`
	Verb      string `json:"verb" yaml:"verb"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Allowed   bool   `json:"allowed" yaml:"allowed"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// PermissionChecker is implemented by stores that can verify their access
// before use.
type PermissionChecker interface {
	CheckPermissions(ctx context.Context) ([]PermissionCheck, error)
}

// configMapVerbs are needed to read, update, archive, list and discard
// archives of the document.
var configMapVerbs = []string{"get", "update", "create", "list", "delete"}

// CheckPermissions reviews every verb the store uses on ConfigMaps in its
// namespace. It fails with UNAUTHORIZED naming the missing verbs.
func (s *ConfigMapStore) CheckPermissions(ctx context.Context) ([]PermissionCheck, error) {
	checks := make([]PermissionCheck, 0, len(configMapVerbs))
	var missing []string

	for _, verb := range configMapVerbs {
		review := &authv1.SelfSubjectAccessReview{
			Spec: authv1.SelfSubjectAccessReviewSpec{
				ResourceAttributes: &authv1.ResourceAttributes{
					Verb:      verb,
					Resource:  "configmaps",
					Namespace: s.namespace,
				},
			},
		}

		result, err := s.client.AuthorizationV1().SelfSubjectAccessReviews().Create(ctx, review, metav1.CreateOptions{})
		if err != nil {
			return checks, errors.WrapWithContext(errors.ErrCodeIO,
				fmt.Sprintf("failed to check permission for %s configmaps", verb), err, s.logContext())
		}

		checks = append(checks, PermissionCheck{
			Resource:  "configmaps",
			Verb:      verb,
			Namespace: s.namespace,
			Allowed:   result.Status.Allowed,
			Reason:    result.Status.Reason,
		})
		if !result.Status.Allowed {
			missing = append(missing, verb)
		}
	}

	if len(missing) > 0 {
		return checks, errors.NewWithContext(errors.ErrCodeUnauthorized,
			fmt.Sprintf("missing configmaps permissions in namespace %q: %s", s.namespace, strings.Join(missing, ", ")),
			s.logContext())
	}
	return checks, nil
}

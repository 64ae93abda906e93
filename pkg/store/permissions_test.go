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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authv1 "k8s.io/api/authorization/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/MalmbergUitgeverij/watchboard/pkg/errors"
)

func reviewReactor(denied ...string) k8stesting.ReactionFunc {
	return func(action k8stesting.Action) (bool, runtime.Object, error) {
		review := action.(k8stesting.CreateAction).GetObject().(*authv1.SelfSubjectAccessReview)
		allowed := true
		for _, verb := range denied {
			if review.Spec.ResourceAttributes.Verb == verb {
				allowed = false
			}
		}
		return true, &authv1.SelfSubjectAccessReview{
			Status: authv1.SubjectAccessReviewStatus{Allowed: allowed, Reason: "test reason"},
		}, nil
	}
}

func TestCheckPermissions(t *testing.T) {
	tests := []struct {
		name        string
		denied      []string
		wantErr     bool
		errContains string
	}{
		{
			name: "all permissions allowed",
		},
		{
			name:        "update and create denied",
			denied:      []string{"update", "create"},
			wantErr:     true,
			errContains: "update, create",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := fake.NewClientset()
			cs.PrependReactor("create", "selfsubjectaccessreviews", reviewReactor(tt.denied...))

			s := NewConfigMapStore(cs, "monitoring", "watchboard")
			checks, err := s.CheckPermissions(t.Context())

			require.Len(t, checks, len(configMapVerbs))
			for _, c := range checks {
				assert.Equal(t, "configmaps", c.Resource)
				assert.Equal(t, "monitoring", c.Namespace)
			}

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeUnauthorized))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestConfigMapStoreIsPermissionChecker(t *testing.T) {
	var s Store = NewConfigMapStore(fake.NewClientset(), "ns", "name")
	_, ok := s.(PermissionChecker)
	assert.True(t, ok)

	var f Store = NewFileStore("dashboards.yaml")
	_, ok = f.(PermissionChecker)
	assert.False(t, ok)
}

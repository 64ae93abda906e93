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

// Package client provides cached Kubernetes clients for the ConfigMap-backed
// dashboards store.
//
// Clients are built once per kubeconfig location and reused for the lifetime
// of the process, so every store reading the same cluster shares a single
// connection pool:
//
//	cs, err := client.Get("")
//	if err != nil {
//	    return fmt.Errorf("failed to get kubernetes client: %w", err)
//	}
//
// # Kubeconfig Resolution
//
// An empty location is resolved in this order:
//   - KUBECONFIG environment variable
//   - ~/.kube/config, when the file exists
//   - in-cluster service account configuration
//
// Tests inject k8s.io/client-go/kubernetes/fake clientsets directly into the
// store and never go through this package.
package client

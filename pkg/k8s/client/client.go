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

package client

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// EnvKubeconfig names the environment variable consulted for the kubeconfig path.
const EnvKubeconfig = "KUBECONFIG"

// Interface is an alias for kubernetes.Interface so fake clientsets can be
// substituted in tests.
type Interface = kubernetes.Interface

type cached struct {
	client Interface
	err    error
}

var (
	mu      sync.Mutex
	clients = map[string]cached{}
)

// Get returns the client for kubeconfig, building it on first use.
// Failed builds are cached too; a broken kubeconfig does not get retried on
// every store operation.
func Get(kubeconfig string) (Interface, error) {
	path := ResolveKubeconfig(kubeconfig)

	mu.Lock()
	defer mu.Unlock()

	if c, ok := clients[path]; ok {
		return c.client, c.err
	}

	cs, err := Build(path)
	c := cached{err: err}
	if err == nil {
		c.client = cs
	}
	clients[path] = c
	return c.client, c.err
}

// ResolveKubeconfig returns the kubeconfig path to use for explicit.
// An empty result means in-cluster configuration.
func ResolveKubeconfig(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvKubeconfig); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}

// Build creates a new clientset from kubeconfig, bypassing the cache.
// An empty path selects in-cluster configuration.
func Build(kubeconfig string) (*kubernetes.Clientset, error) {
	var (
		config *rest.Config
		err    error
	)

	// InClusterConfig directly avoids the "Neither --kubeconfig nor --master" warning.
	if kubeconfig == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to build kube config from %s: %w", kubeconfig, err)
		}
	}

	cs, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return cs, nil
}

func reset() {
	mu.Lock()
	defer mu.Unlock()
	clients = map[string]cached{}
}

// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.
package k8sclient

import (
	"fmt"
	"sync"

	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

var (
	mu     sync.Mutex
	Client client.Client
)

func SetGlobalClient(c client.Client) {
	mu.Lock()
	defer mu.Unlock()
	Client = c
}

func GetGlobalClient() client.Client {
	mu.Lock()
	defer mu.Unlock()
	return Client
}

// GetOrCreateGlobalClient returns the global client, building one from the
// ambient kubeconfig on first use.
func GetOrCreateGlobalClient(scheme *runtime.Scheme) (client.Client, error) {
	mu.Lock()
	defer mu.Unlock()
	if Client != nil {
		return Client, nil
	}
	cfg, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	c, err := client.New(cfg, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create kube client: %w", err)
	}
	Client = c
	return Client, nil
}

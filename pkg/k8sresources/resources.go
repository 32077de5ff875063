// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package k8sresources

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/util/retry"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// retriable skips errors that another attempt cannot fix.
func retriable(err error) bool {
	return !apierrors.IsNotFound(err) && !apierrors.IsAlreadyExists(err) && !apierrors.IsInvalid(err)
}

func CreateResource(ctx context.Context, resource client.Object, kubeClient client.Client) error {
	// Log the creation attempt.
	switch r := resource.(type) {
	case *corev1.ConfigMap:
		klog.InfoS("CreateConfigMap", "configmap", klog.KObj(r))
	}

	return retry.OnError(retry.DefaultBackoff, retriable, func() error {
		return kubeClient.Create(ctx, resource, &client.CreateOptions{})
	})
}

func UpdateResource(ctx context.Context, resource client.Object, kubeClient client.Client) error {
	switch r := resource.(type) {
	case *corev1.ConfigMap:
		klog.InfoS("UpdateConfigMap", "configmap", klog.KObj(r))
	}

	return retry.RetryOnConflict(retry.DefaultBackoff, func() error {
		return kubeClient.Update(ctx, resource, &client.UpdateOptions{})
	})
}

func GetResource(ctx context.Context, name, namespace string, kubeClient client.Client, resource client.Object) error {
	// Log the retrieval attempt.
	resourceType := fmt.Sprintf("%T", resource)
	klog.InfoS(fmt.Sprintf("Get%s", resourceType), "resourceName", name, "resourceNamespace", namespace)

	return retry.OnError(retry.DefaultBackoff, retriable, func() error {
		return kubeClient.Get(ctx, client.ObjectKey{Name: name, Namespace: namespace}, resource, &client.GetOptions{})
	})
}

// GetConfigMapData returns the value stored under key in the named ConfigMap.
func GetConfigMapData(ctx context.Context, name, namespace, key string, kubeClient client.Client) (string, error) {
	cm := &corev1.ConfigMap{}
	if err := GetResource(ctx, name, namespace, kubeClient, cm); err != nil {
		if apierrors.IsNotFound(err) {
			return "", fmt.Errorf("ConfigMap '%s' not found in namespace '%s': %w", name, namespace, err)
		}
		return "", fmt.Errorf("failed to get ConfigMap '%s' in namespace '%s': %w", name, namespace, err)
	}
	data, ok := cm.Data[key]
	if !ok {
		return "", fmt.Errorf("ConfigMap '%s' does not contain '%s' in namespace '%s'", name, key, namespace)
	}
	return data, nil
}

// EnsureConfigMapData creates the ConfigMap, or updates the key in place when
// it already exists with different content.
func EnsureConfigMapData(ctx context.Context, name, namespace, key, value string, kubeClient client.Client) error {
	existing := &corev1.ConfigMap{}
	err := GetResource(ctx, name, namespace, kubeClient, existing)
	if err != nil {
		if !apierrors.IsNotFound(err) {
			return err
		}
		cm := &corev1.ConfigMap{}
		cm.Name = name
		cm.Namespace = namespace
		cm.Data = map[string]string{key: value}
		if err := CreateResource(ctx, cm, kubeClient); err != nil {
			return fmt.Errorf("failed to create ConfigMap in namespace %s: %w", namespace, err)
		}
		return nil
	}

	if existing.Data[key] == value {
		klog.InfoS("ConfigMap already up to date, no action taken", "configmap", klog.KObj(existing))
		return nil
	}
	if existing.Data == nil {
		existing.Data = map[string]string{}
	}
	existing.Data[key] = value
	if err := UpdateResource(ctx, existing, kubeClient); err != nil {
		return fmt.Errorf("failed to update ConfigMap in namespace %s: %w", namespace, err)
	}
	return nil
}

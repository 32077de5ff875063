// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package test

import (
	"context"
	"reflect"

	"github.com/stretchr/testify/mock"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	k8sClient "sigs.k8s.io/controller-runtime/pkg/client"
)

type objectRef struct {
	kind reflect.Type
	key  k8sClient.ObjectKey
}

// MockClient is a mock for the controller-runtime client interface. Stored
// objects are copied into Get results before the recorded error is returned.
type MockClient struct {
	mock.Mock

	ObjectMap  map[objectRef]k8sClient.Object
	StatusMock *MockStatusClient
}

var _ k8sClient.Client = &MockClient{}

func NewClient() *MockClient {
	return &MockClient{
		StatusMock: &MockStatusClient{},
		ObjectMap:  map[objectRef]k8sClient.Object{},
	}
}

func refFor(obj k8sClient.Object, key k8sClient.ObjectKey) objectRef {
	return objectRef{kind: reflect.TypeOf(obj), key: key}
}

func (m *MockClient) CreateOrUpdateObjectInMap(obj k8sClient.Object) {
	m.ObjectMap[refFor(obj, k8sClient.ObjectKeyFromObject(obj))] = obj
}

func (m *MockClient) GetObjectFromMap(obj k8sClient.Object, key types.NamespacedName) bool {
	val, ok := m.ObjectMap[refFor(obj, key)]
	if ok {
		reflect.ValueOf(obj).Elem().Set(reflect.ValueOf(val).Elem())
	}
	return ok
}

// k8s Client interface
func (m *MockClient) Get(ctx context.Context, key types.NamespacedName, obj k8sClient.Object, opts ...k8sClient.GetOption) error {
	m.GetObjectFromMap(obj, key)
	args := m.Called(ctx, key, obj, opts)
	return args.Error(0)
}

func (m *MockClient) List(ctx context.Context, list k8sClient.ObjectList, opts ...k8sClient.ListOption) error {
	args := m.Called(ctx, list, opts)
	return args.Error(0)
}

func (m *MockClient) Create(ctx context.Context, obj k8sClient.Object, opts ...k8sClient.CreateOption) error {
	args := m.Called(ctx, obj, opts)
	if args.Error(0) == nil {
		m.CreateOrUpdateObjectInMap(obj)
	}
	return args.Error(0)
}

func (m *MockClient) Delete(ctx context.Context, obj k8sClient.Object, opts ...k8sClient.DeleteOption) error {
	args := m.Called(ctx, obj, opts)
	return args.Error(0)
}

func (m *MockClient) Update(ctx context.Context, obj k8sClient.Object, opts ...k8sClient.UpdateOption) error {
	args := m.Called(ctx, obj, opts)
	if args.Error(0) == nil {
		m.CreateOrUpdateObjectInMap(obj)
	}
	return args.Error(0)
}

func (m *MockClient) Patch(ctx context.Context, obj k8sClient.Object, patch k8sClient.Patch, opts ...k8sClient.PatchOption) error {
	args := m.Called(ctx, obj, patch, opts)
	return args.Error(0)
}

func (m *MockClient) DeleteAllOf(ctx context.Context, obj k8sClient.Object, opts ...k8sClient.DeleteAllOfOption) error {
	args := m.Called(ctx, obj, opts)
	return args.Error(0)
}

// SubResource implements client.Client
func (m *MockClient) SubResource(subResource string) k8sClient.SubResourceClient {
	panic("unimplemented")
}

// GroupVersionKindFor implements client.Client
func (m *MockClient) GroupVersionKindFor(obj runtime.Object) (schema.GroupVersionKind, error) {
	panic("unimplemented")
}

// IsObjectNamespaced implements client.Client
func (m *MockClient) IsObjectNamespaced(obj runtime.Object) (bool, error) {
	panic("unimplemented")
}

func (m *MockClient) Scheme() *runtime.Scheme {
	args := m.Called()
	return args.Get(0).(*runtime.Scheme)
}

func (m *MockClient) RESTMapper() meta.RESTMapper {
	args := m.Called()
	return args.Get(0).(meta.RESTMapper)
}

func (m *MockClient) Status() k8sClient.StatusWriter {
	return m.StatusMock
}

type MockStatusClient struct {
	mock.Mock
}

func (m *MockStatusClient) Create(ctx context.Context, obj k8sClient.Object, subResource k8sClient.Object, opts ...k8sClient.SubResourceCreateOption) error {
	args := m.Called(ctx, obj, opts)
	return args.Error(0)
}

func (m *MockStatusClient) Patch(ctx context.Context, obj k8sClient.Object, patch k8sClient.Patch, opts ...k8sClient.SubResourcePatchOption) error {
	args := m.Called(ctx, obj, opts)
	return args.Error(0)
}

func (m *MockStatusClient) Update(ctx context.Context, obj k8sClient.Object, opts ...k8sClient.SubResourceUpdateOption) error {
	args := m.Called(ctx, obj, opts)
	return args.Error(0)
}

var _ k8sClient.StatusWriter = &MockStatusClient{}

package interfaces

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEngine mocks the EncryptionEngine interface.
type MockEngine struct {
	mock.Mock
}

// Load mocks the Load method.
func (m *MockEngine) Load(ctx context.Context, stored any) (any, error) {
	args := m.Called(stored)
	return args.Get(0), args.Error(1)
}

// LoadFromNode mocks the LoadFromNode method.
func (m *MockEngine) LoadFromNode(ctx context.Context, node NodeID, path AttributePath) (any, error) {
	args := m.Called(node, path)
	return args.Get(0), args.Error(1)
}

// Exist mocks the Exist method.
func (m *MockEngine) Exist(stored any) bool {
	args := m.Called(stored)
	return args.Bool(0)
}

// Create mocks the Create method.
func (m *MockEngine) Create(ctx context.Context, cleartext any, scope SearchScope) (any, error) {
	args := m.Called(cleartext, scope)
	return args.Get(0), args.Error(1)
}

// Update mocks the Update method.
func (m *MockEngine) Update(ctx context.Context, existing any, cleartext any, scope SearchScope) (any, error) {
	args := m.Called(existing, cleartext, scope)
	return args.Get(0), args.Error(1)
}

// MockDirectory mocks the NodeDirectory interface.
type MockDirectory struct {
	mock.Mock
}

// Resolve mocks the Resolve method.
func (m *MockDirectory) Resolve(ctx context.Context, scope SearchScope) ([]NodeEntry, error) {
	args := m.Called(scope)
	return args.Get(0).([]NodeEntry), args.Error(1)
}

// MockRemoteSource mocks the RemoteAttributeSource interface.
type MockRemoteSource struct {
	mock.Mock
}

// ReadAttribute mocks the ReadAttribute method.
func (m *MockRemoteSource) ReadAttribute(ctx context.Context, node NodeID, path AttributePath) (any, error) {
	args := m.Called(node, path)
	return args.Get(0), args.Error(1)
}

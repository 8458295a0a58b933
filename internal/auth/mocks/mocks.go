// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package mocks provides testify mocks for the gate's collaborators.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/credential"
)

// T is the subset of testing.T the constructors need.
type T interface {
	mock.TestingT
	Cleanup(func())
}

// MockSessionIssuer is a mock auth.SessionIssuer.
type MockSessionIssuer struct {
	mock.Mock
}

// NewMockSessionIssuer creates a MockSessionIssuer that asserts its
// expectations when the test ends.
func NewMockSessionIssuer(t T) *MockSessionIssuer {
	m := &MockSessionIssuer{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// RevokeCurrentSession implements auth.SessionIssuer.
func (m *MockSessionIssuer) RevokeCurrentSession(ctx context.Context, sc auth.SessionContext) error {
	args := m.Called(ctx, sc)
	return args.Error(0)
}

// IssueSession implements auth.SessionIssuer.
func (m *MockSessionIssuer) IssueSession(ctx context.Context, sc auth.SessionContext, principal auth.Principal, persistent bool) error {
	args := m.Called(ctx, sc, principal, persistent)
	return args.Error(0)
}

// MockHasher is a mock credential.Hasher.
type MockHasher struct {
	mock.Mock
}

// NewMockHasher creates a MockHasher that asserts its expectations when the
// test ends.
func NewMockHasher(t T) *MockHasher {
	m := &MockHasher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Hash implements credential.Hasher.
func (m *MockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

// Verify implements credential.Hasher.
func (m *MockHasher) Verify(encoded, password string) (bool, error) {
	args := m.Called(encoded, password)
	return args.Bool(0), args.Error(1)
}

// NeedsUpgrade implements credential.Hasher.
func (m *MockHasher) NeedsUpgrade(encoded string) bool {
	args := m.Called(encoded)
	return args.Bool(0)
}

// MockUserRepository is a mock account.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a MockUserRepository that asserts its
// expectations when the test ends.
func NewMockUserRepository(t T) *MockUserRepository {
	m := &MockUserRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create implements account.UserRepository.
func (m *MockUserRepository) Create(ctx context.Context, user *account.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// GetByID implements account.UserRepository.
func (m *MockUserRepository) GetByID(ctx context.Context, id ulid.ULID) (*account.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*account.User)
	return user, args.Error(1)
}

// GetByLogin implements account.UserRepository.
func (m *MockUserRepository) GetByLogin(ctx context.Context, login string) (*account.User, error) {
	args := m.Called(ctx, login)
	user, _ := args.Get(0).(*account.User)
	return user, args.Error(1)
}

// ExistsByLogin implements account.UserRepository.
func (m *MockUserRepository) ExistsByLogin(ctx context.Context, login string) (bool, error) {
	args := m.Called(ctx, login)
	return args.Bool(0), args.Error(1)
}

// MockRecorder is a mock auth.Recorder.
type MockRecorder struct {
	mock.Mock
}

// NewMockRecorder creates a MockRecorder that asserts its expectations when
// the test ends.
func NewMockRecorder(t T) *MockRecorder {
	m := &MockRecorder{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// LoginAttempt implements auth.Recorder.
func (m *MockRecorder) LoginAttempt(outcome string) { m.Called(outcome) }

// Registration implements auth.Recorder.
func (m *MockRecorder) Registration(outcome string) { m.Called(outcome) }

// LogoutFailure implements auth.Recorder.
func (m *MockRecorder) LogoutFailure() { m.Called() }

// CredentialUpgradeDue implements auth.Recorder.
func (m *MockRecorder) CredentialUpgradeDue() { m.Called() }

var (
	_ auth.SessionIssuer     = (*MockSessionIssuer)(nil)
	_ auth.Recorder          = (*MockRecorder)(nil)
	_ credential.Hasher      = (*MockHasher)(nil)
	_ account.UserRepository = (*MockUserRepository)(nil)
)

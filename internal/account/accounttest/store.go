// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package accounttest provides an in-memory account store for tests.
package accounttest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/accounts/internal/account"
)

// Store is an in-memory backing for the account repositories.
// Failures can be injected per operation with Fail.
type Store struct {
	txMu sync.Mutex // serializes InTransaction

	mu       sync.Mutex
	users    map[ulid.ULID]account.User
	roles    map[ulid.ULID]account.Role
	profiles map[ulid.ULID]account.Profile
	failures map[string]error
}

// Operation names accepted by Fail.
const (
	OpUserCreate        = "users.create"
	OpUserGetByID       = "users.get_by_id"
	OpUserGetByLogin    = "users.get_by_login"
	OpUserExists        = "users.exists"
	OpRoleCreate        = "roles.create"
	OpRoleGetByName     = "roles.get_by_name"
	OpRoleList          = "roles.list"
	OpProfileCreate     = "profiles.create"
	OpProfileGetByUser  = "profiles.get_by_user"
	OpProfileUpdate     = "profiles.update"
	OpTransactionCommit = "tx.commit"
)

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:    make(map[ulid.ULID]account.User),
		roles:    make(map[ulid.ULID]account.Role),
		profiles: make(map[ulid.ULID]account.Profile),
		failures: make(map[string]error),
	}
}

// Fail makes every later call of op return err. A nil err clears the failure.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// SeedRole stores a role and returns it.
func (s *Store) SeedRole(name, description string) *account.Role {
	role := account.Role{ID: ulid.Make(), Name: name, Description: description}
	s.mu.Lock()
	s.roles[role.ID] = role
	s.mu.Unlock()
	return &role
}

// UserCount returns the number of stored users.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// ProfileCount returns the number of stored profiles.
func (s *Store) ProfileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles)
}

// Users returns the store as an account.UserRepository.
func (s *Store) Users() account.UserRepository { return userRepo{s} }

// Roles returns the store as an account.RoleRepository.
func (s *Store) Roles() account.RoleRepository { return roleRepo{s} }

// Profiles returns the store as an account.ProfileRepository.
func (s *Store) Profiles() account.ProfileRepository { return profileRepo{s} }

// InTransaction runs fn and discards every change it made if it fails.
func (s *Store) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	users := cloneMap(s.users)
	roles := cloneMap(s.roles)
	profiles := cloneMap(s.profiles)
	s.mu.Unlock()

	err := fn(ctx)
	if err == nil {
		err = s.failure(OpTransactionCommit)
	}
	if err != nil {
		s.mu.Lock()
		s.users, s.roles, s.profiles = users, roles, profiles
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) failure(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[op]
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *account.User) error {
	if err := r.s.failure(OpUserCreate); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Login, user.Login) {
			return account.ErrLoginTaken
		}
	}
	stored := *user
	stored.Role = nil
	r.s.users[user.ID] = stored
	return nil
}

func (r userRepo) GetByID(_ context.Context, id ulid.ULID) (*account.User, error) {
	if err := r.s.failure(OpUserGetByID); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	return r.s.withRole(user), nil
}

func (r userRepo) GetByLogin(_ context.Context, login string) (*account.User, error) {
	if err := r.s.failure(OpUserGetByLogin); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if strings.EqualFold(user.Login, login) {
			return r.s.withRole(user), nil
		}
	}
	return nil, account.ErrNotFound
}

func (r userRepo) ExistsByLogin(_ context.Context, login string) (bool, error) {
	if err := r.s.failure(OpUserExists); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if strings.EqualFold(user.Login, login) {
			return true, nil
		}
	}
	return false, nil
}

// withRole must be called with s.mu held.
func (s *Store) withRole(user account.User) *account.User {
	if user.RoleID != nil {
		if role, ok := s.roles[*user.RoleID]; ok {
			user.Role = &role
		}
	}
	return &user
}

type roleRepo struct{ s *Store }

func (r roleRepo) Create(_ context.Context, role *account.Role) error {
	if err := r.s.failure(OpRoleCreate); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.roles {
		if existing.Name == role.Name {
			return account.ErrAlreadyExists
		}
	}
	r.s.roles[role.ID] = *role
	return nil
}

func (r roleRepo) GetByName(_ context.Context, name string) (*account.Role, error) {
	if err := r.s.failure(OpRoleGetByName); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, role := range r.s.roles {
		if role.Name == name {
			found := role
			return &found, nil
		}
	}
	return nil, account.ErrNotFound
}

func (r roleRepo) List(_ context.Context) ([]*account.Role, error) {
	if err := r.s.failure(OpRoleList); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	roles := make([]*account.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		found := role
		roles = append(roles, &found)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

type profileRepo struct{ s *Store }

func (r profileRepo) Create(_ context.Context, profile *account.Profile) error {
	if err := r.s.failure(OpProfileCreate); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.profiles[profile.ID] = *profile
	return nil
}

func (r profileRepo) GetByUserID(_ context.Context, userID ulid.ULID) (*account.Profile, error) {
	if err := r.s.failure(OpProfileGetByUser); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, profile := range r.s.profiles {
		if profile.UserID == userID {
			found := profile
			return &found, nil
		}
	}
	return nil, account.ErrNotFound
}

func (r profileRepo) Update(_ context.Context, profile *account.Profile) error {
	if err := r.s.failure(OpProfileUpdate); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[profile.ID]; !ok {
		return account.ErrNotFound
	}
	r.s.profiles[profile.ID] = *profile
	return nil
}

// Verify interfaces are satisfied.
var (
	_ account.UserRepository    = userRepo{}
	_ account.RoleRepository    = roleRepo{}
	_ account.ProfileRepository = profileRepo{}
	_ account.Transactor        = (*Store)(nil)
)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MemoryRepository is a Repository held in process memory. Sessions do not
// survive a restart.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]Session // keyed by token hash
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]Session)}
}

// Create implements Repository.
func (r *MemoryRepository) Create(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.TokenHash] = *s
	return nil
}

// GetByTokenHash implements Repository.
func (r *MemoryRepository) GetByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tokenHash]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// UpdateLastSeen implements Repository.
func (r *MemoryRepository) UpdateLastSeen(_ context.Context, id ulid.ULID, lastSeen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, s := range r.sessions {
		if s.ID == id {
			s.LastSeenAt = lastSeen
			r.sessions[hash] = s
			return nil
		}
	}
	return ErrNotFound
}

// DeleteByTokenHash implements Repository.
func (r *MemoryRepository) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[tokenHash]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, tokenHash)
	return nil
}

// DeleteByUser implements Repository.
func (r *MemoryRepository) DeleteByUser(_ context.Context, userID ulid.ULID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for hash, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, hash)
			n++
		}
	}
	return n, nil
}

// DeleteExpired implements Repository.
func (r *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for hash, s := range r.sessions {
		if s.IsExpiredAt(now) {
			delete(r.sessions, hash)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

var _ Repository = (*MemoryRepository)(nil)

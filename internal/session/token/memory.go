// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package token

import (
	"context"
	"sync"
	"time"
)

// MemoryDenyList is a DenyList held in process memory.
type MemoryDenyList struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemoryDenyList creates an empty MemoryDenyList.
func NewMemoryDenyList() *MemoryDenyList {
	return &MemoryDenyList{entries: make(map[string]time.Time)}
}

// Revoke implements DenyList.
func (d *MemoryDenyList) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[jti] = expiresAt
	return nil
}

// IsRevoked implements DenyList.
func (d *MemoryDenyList) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.entries[jti]
	return ok, nil
}

// DeleteExpired implements DenyList.
func (d *MemoryDenyList) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var n int64
	for jti, exp := range d.entries {
		if !now.Before(exp) {
			delete(d.entries, jti)
			n++
		}
	}
	return n, nil
}

// Len returns the number of entries.
func (d *MemoryDenyList) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

var _ DenyList = (*MemoryDenyList)(nil)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"sync"
	"time"
)

// SessionContext is the caller's side of a session: the token it presented,
// the principal that token resolved to, and the place a newly issued token is
// handed back. Transports implement it (an HTTP request/response pair, a CLI
// invocation, a test).
type SessionContext interface {
	// Token returns the token the caller presented, or "" if none.
	Token() string
	// Principal returns the identity bound to the presented token, or nil.
	Principal() *Principal
	// Bind hands a newly issued token and its principal back to the caller.
	Bind(token string, principal Principal, expiresAt time.Time, persistent bool)
	// Clear tells the caller to drop its token.
	Clear()
}

// SessionIssuer is the session-management capability the gate calls into.
// Implementations serialize operations on the same SessionContext.
type SessionIssuer interface {
	// RevokeCurrentSession ends the session identified by sc, if any, and clears sc.
	RevokeCurrentSession(ctx context.Context, sc SessionContext) error
	// IssueSession starts a session bound to principal and binds its token to sc.
	IssueSession(ctx context.Context, sc SessionContext, principal Principal, persistent bool) error
}

// MemorySessionContext is a SessionContext held in memory.
// The zero value is an anonymous caller.
type MemorySessionContext struct {
	mu         sync.Mutex
	token      string
	principal  *Principal
	expiresAt  time.Time
	persistent bool
}

// NewMemorySessionContext creates a context that presents token.
func NewMemorySessionContext(token string, principal *Principal) *MemorySessionContext {
	return &MemorySessionContext{token: token, principal: principal}
}

// Token implements SessionContext.
func (c *MemorySessionContext) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Principal implements SessionContext.
func (c *MemorySessionContext) Principal() *Principal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.principal
}

// Bind implements SessionContext.
func (c *MemorySessionContext) Bind(token string, principal Principal, expiresAt time.Time, persistent bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.principal = &principal
	c.expiresAt = expiresAt
	c.persistent = persistent
}

// Clear implements SessionContext.
func (c *MemorySessionContext) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.principal = nil
	c.expiresAt = time.Time{}
	c.persistent = false
}

// ExpiresAt returns the expiry of the bound token.
func (c *MemorySessionContext) ExpiresAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expiresAt
}

// Persistent reports whether the bound token outlives the client session.
func (c *MemorySessionContext) Persistent() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persistent
}

var _ SessionContext = (*MemorySessionContext)(nil)

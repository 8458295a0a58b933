// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import "github.com/oklog/ulid/v2"

// IdentityProvider names this service as the issuer of the principals it creates.
const IdentityProvider = "accounts"

// Claim types asserted for a principal.
const (
	ClaimNameIdentifier   = "nameidentifier"
	ClaimName             = "name"
	ClaimIdentityProvider = "identityprovider"
	ClaimRole             = "role"
)

// Principal is the identity asserted after a successful login.
// Role is empty when the user has no role.
type Principal struct {
	UserID           ulid.ULID
	Login            string
	Role             string
	IdentityProvider string
}

// Claim is a single typed assertion about a principal.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// HasRole reports whether the principal carries a role claim.
func (p Principal) HasRole() bool {
	return p.Role != ""
}

// Claims lists the principal's assertions. The role claim is omitted when the
// principal has no role.
func (p Principal) Claims() []Claim {
	claims := []Claim{
		{Type: ClaimNameIdentifier, Value: p.UserID.String()},
		{Type: ClaimName, Value: p.Login},
		{Type: ClaimIdentityProvider, Value: p.IdentityProvider},
	}
	if p.HasRole() {
		claims = append(claims, Claim{Type: ClaimRole, Value: p.Role})
	}
	return claims
}

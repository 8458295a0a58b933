// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import "github.com/oklog/ulid/v2"

// DefaultRoleName is the role every newly registered user receives.
const DefaultRoleName = "Default"

// Role groups users for authorization decisions made outside this service.
type Role struct {
	ID          ulid.ULID
	Name        string
	Description string
}

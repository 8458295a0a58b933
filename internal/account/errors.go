// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrLoginTaken is returned when a login is already registered.
var ErrLoginTaken = errors.New("login already taken")

// ErrAlreadyExists is returned when a uniquely named entity already exists.
var ErrAlreadyExists = errors.New("already exists")

// ErrInvalid is returned for input that fails validation.
var ErrInvalid = errors.New("invalid input")

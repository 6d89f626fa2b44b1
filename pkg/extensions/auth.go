// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned when authentication fails. Hosted
// implementations should wrap this error with additional context:
//
//	if !validToken {
//	    return nil, fmt.Errorf("invalid token format: %w", extensions.ErrUnauthorized)
//	}
var ErrUnauthorized = errors.New("unauthorized")

// AuthInfo contains identity information returned after successful
// authentication.
//
// A nil *AuthInfo means the caller is anonymous. Anonymous callers may read
// archived comparisons but may not trigger generation.
type AuthInfo struct {
	// UserID is the unique identifier for the authenticated user.
	// Must never be empty on a non-nil AuthInfo.
	UserID string

	// Email is the user's email address. May be empty.
	Email string

	// Roles contains the user's role memberships.
	// Known roles: "admin", "member".
	Roles []string
}

// HasRole checks if the user has a specific role.
//
//	if !authInfo.HasRole("admin") {
//	    return ErrUnauthorized
//	}
func (a *AuthInfo) HasRole(role string) bool {
	if a == nil {
		return false
	}
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user carries the admin role. Admins may
// delete archived artifacts.
func (a *AuthInfo) IsAdmin() bool {
	return a.HasRole("admin")
}

// AuthProvider validates authentication tokens and returns user identity.
//
// Implementations must be safe for concurrent use by multiple goroutines.
//
// # Self-hosted Behavior
//
// The default NopAuthProvider returns a valid "local-user" with the admin
// role for any token, including the empty one. This lets the service run
// without any identity infrastructure.
//
// # Hosted Implementation
//
// Hosted deployments validate session tokens against a real identity
// provider and return (nil, nil) for an empty token, making the caller
// anonymous rather than rejected.
type AuthProvider interface {
	// Validate checks the token and returns the user's identity.
	//
	// Returns:
	//   - (*AuthInfo, nil): authenticated caller
	//   - (nil, nil): anonymous caller (empty or absent token)
	//   - (nil, error): ErrUnauthorized (or wrapped) for an invalid token
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// NopAuthProvider is the self-hosted AuthProvider: every caller is a local
// admin. This mirrors a single-user deployment where the browser and the
// service run on the same machine.
type NopAuthProvider struct{}

// Validate always succeeds with a local admin identity.
func (p *NopAuthProvider) Validate(_ context.Context, _ string) (*AuthInfo, error) {
	return &AuthInfo{
		UserID: "local-user",
		Roles:  []string{"admin"},
	}, nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extensions defines the injection points for deployment-specific
// functionality.
//
// The self-hosted build works without any authentication infrastructure:
// every request is treated as an authenticated local admin. Hosted
// deployments provide concrete implementations of these interfaces and
// inject them via ServiceOptions.
//
// # Usage (self-hosted)
//
//	opts := extensions.DefaultOptions()
//	svc := archive.NewService(cfg, opts)
//
// # Usage (hosted)
//
//	opts := extensions.ServiceOptions{
//	    AuthProvider: hosted.NewFirebaseProvider(cfg),
//	}
//
// # Thread Safety
//
// All interface implementations must be safe for concurrent use.
package extensions

// ServiceOptions groups all extension points for service configuration.
//
// All fields are optional; nil values are replaced with no-op defaults by
// DefaultOptions() or by services that check for nil.
type ServiceOptions struct {
	// AuthProvider validates authentication tokens.
	// Default: NopAuthProvider (always returns a local admin user).
	AuthProvider AuthProvider
}

// DefaultOptions returns ServiceOptions with no-op defaults, the
// configuration used by the self-hosted build.
func DefaultOptions() ServiceOptions {
	return ServiceOptions{
		AuthProvider: &NopAuthProvider{},
	}
}

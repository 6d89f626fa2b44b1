// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package archive

import "errors"

// ErrNotFound is a store miss. Always recoverable: the read path falls
// through to generation.
var ErrNotFound = errors.New("archive: object not found")

// ErrPermissionDenied is returned when generation is attempted without an
// authenticated session. Fatal to that request; no partial result. Handlers
// must surface this distinctly from other failures, since the user recovers
// by signing in rather than retrying.
var ErrPermissionDenied = errors.New("archive: generation requires an authenticated session")

// ErrMalformedArtifact is returned when the generation backend produced
// data that fails artifact validation. Fatal to that request, not retried
// automatically. Wraps the validation detail.
var ErrMalformedArtifact = errors.New("archive: generation backend returned a malformed artifact")

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDKey is the context key for the per-request correlation ID.
const requestIDKey = "sinopulse_request_id"

// RequestIDHeader is the header the ID is read from and echoed back on.
const RequestIDHeader = "X-Request-ID"

// GetRequestID returns the correlation ID for the current request, or
// empty string if RequestIDMiddleware did not run.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestIDMiddleware assigns each request a correlation ID: the caller's
// X-Request-ID when present, a fresh UUID otherwise. The ID is echoed in
// the response header and attached to log lines on the request path.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

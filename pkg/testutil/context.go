package testutil

import (
	"context"
	"net/http"
	"time"

	"taxappeal/pkg/requestcontext"
)

// WithRequestID adds a request ID to the request context, as the requestid
// middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// FixedClock returns a clock function that always reports now.
func FixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

// Context returns a background context carrying a request ID, for service
// tests that log it.
func Context(requestID string) context.Context {
	return requestcontext.WithRequestID(context.Background(), requestID)
}

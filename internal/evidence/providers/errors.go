package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorCategory is the normalized failure taxonomy shared by every upstream.
type ErrorCategory string

const (
	// ErrorNotFound means the record does not exist at the source. Expected.
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorUnavailable means the source was deliberately not called: missing
	// credential, exhausted quota, or an open circuit.
	ErrorUnavailable ErrorCategory = "unavailable"

	// ErrorUnauthorized indicates credential or permission issues.
	ErrorUnauthorized ErrorCategory = "unauthorized"

	// ErrorQuotaExceeded means the provider itself refused for quota reasons.
	ErrorQuotaExceeded ErrorCategory = "quota_exceeded"

	// ErrorTimeout indicates the source took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the source returned invalid or malformed data.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorProviderOutage indicates a transport failure or 5xx response.
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorInternal indicates an unexpected internal error.
	ErrorInternal ErrorCategory = "internal"
)

// Source names used in tagged errors and metrics labels.
const (
	SourcePrimaryRegistry   = "primary_registry"
	SourceSecondaryProvider = "secondary_provider"
	SourceGeocode           = "geocode"
)

// SourceError wraps an upstream failure with the source (and dataset, for the
// registry) that produced it.
type SourceError struct {
	Category   ErrorCategory
	Source     string
	Dataset    string
	Message    string
	Underlying error
	Retryable  bool
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	where := e.Source
	if e.Dataset != "" {
		where = e.Source + "/" + e.Dataset
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", where, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s [%s]: %s", where, e.Category, e.Message)
}

// Unwrap supports error unwrapping.
func (e *SourceError) Unwrap() error {
	return e.Underlying
}

// NewSourceError creates a tagged error. Timeouts, outages and provider-side
// quota refusals are marked retryable for callers at a higher layer; nothing
// in this module retries internally.
func NewSourceError(category ErrorCategory, source, message string, underlying error) *SourceError {
	retryable := category == ErrorTimeout ||
		category == ErrorProviderOutage ||
		category == ErrorQuotaExceeded

	return &SourceError{
		Category:   category,
		Source:     source,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// WithDataset annotates the error with the dataset that failed.
func (e *SourceError) WithDataset(dataset string) *SourceError {
	e.Dataset = dataset
	return e
}

// IsRetryable checks if an error is worth retrying later.
func IsRetryable(err error) bool {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error.
func GetCategory(err error) ErrorCategory {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Category
	}
	return ErrorInternal
}

// IsNotFound reports whether err is a NotFound source error.
func IsNotFound(err error) bool {
	return GetCategory(err) == ErrorNotFound
}

// SourceOf returns the failing source name, or "" for untagged errors.
func SourceOf(err error) string {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Source
	}
	return ""
}

// ClassifyTransport maps a transport-level error (no HTTP status) to a category.
func ClassifyTransport(err error) ErrorCategory {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTimeout
	}
	return ErrorProviderOutage
}

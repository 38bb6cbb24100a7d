// Package providers defines the failure taxonomy shared by every upstream the
// engine talks to, and the Outcome type additive sources return.
//
// Authoritative sources (the registry) return plain errors that callers must
// propagate. Additive sources (secondary provider, geocoding) return an
// Outcome: either a value or a typed degraded marker. They never return an
// error, so the orchestrator cannot forget which branch is which.
package providers

// Outcome is the result of an additive lookup.
type Outcome[T any] struct {
	Value    T
	Found    bool
	Degraded ErrorCategory
	Err      error
}

// Found wraps a successful lookup.
func Found[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, Found: true}
}

// Missing reports an expected absence: the source answered and has no record.
func Missing[T any]() Outcome[T] {
	return Outcome[T]{Degraded: ErrorNotFound}
}

// Degraded reports that the lookup could not be answered. err may be nil for
// deliberate refusals (missing credential, quota exhausted).
func Degraded[T any](category ErrorCategory, err error) Outcome[T] {
	return Outcome[T]{Degraded: category, Err: err}
}

// DegradedFrom derives the category from err.
func DegradedFrom[T any](err error) Outcome[T] {
	return Outcome[T]{Degraded: GetCategory(err), Err: err}
}

// IsUnavailable reports whether the source was deliberately not consulted.
func (o Outcome[T]) IsUnavailable() bool {
	return !o.Found && o.Degraded == ErrorUnavailable
}

// IsNotFound reports an expected "no such record" answer.
func (o Outcome[T]) IsNotFound() bool {
	return !o.Found && o.Degraded == ErrorNotFound
}

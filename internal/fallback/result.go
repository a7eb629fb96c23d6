// Package fallback tags the outcome of optional or recoverable steps so
// callers can tell a full result from a degraded one without inspecting errors.
package fallback

// Result carries a value plus whether it came from a degraded path.
// Reason is empty when Degraded is false.
type Result[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

// OK wraps a value produced by the primary path
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Degrade wraps a value produced by a fallback path, recording why
func Degrade[T any](v T, reason error) Result[T] {
	r := Result[T]{Value: v, Degraded: true, Reason: "unknown failure"}
	if reason != nil {
		r.Reason = reason.Error()
	}
	return r
}

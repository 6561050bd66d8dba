package domain

// OutcomeKind tags how a stage produced its value.
type OutcomeKind string

const (
	OutcomeOK       OutcomeKind = "ok"
	OutcomeDegraded OutcomeKind = "degraded"
	OutcomeFallback OutcomeKind = "fallback"
)

// Outcome is the result of a pipeline stage: Ok(value), Degraded(value, reason)
// or Fallback(sampleValue, reason). Downstream code inspects Kind instead of
// guessing from empty values.
type Outcome[T any] struct {
	Kind   OutcomeKind
	Value  T
	Reason string
}

// Ok wraps a successfully produced value.
func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{Kind: OutcomeOK, Value: value}
}

// Degraded wraps a substitute value produced after a failure.
func Degraded[T any](value T, reason string) Outcome[T] {
	return Outcome[T]{Kind: OutcomeDegraded, Value: value, Reason: reason}
}

// Fallback wraps built-in sample data used in place of an unavailable source.
func Fallback[T any](value T, reason string) Outcome[T] {
	return Outcome[T]{Kind: OutcomeFallback, Value: value, Reason: reason}
}

// IsOK reports whether the stage succeeded without substitution.
func (o Outcome[T]) IsOK() bool {
	return o.Kind == OutcomeOK
}

package domain

import "errors"

var (
	// ErrSourceUnavailable means the announcement source could not be fetched or parsed.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrResearchUnavailable means documentation lookup failed for a subject.
	ErrResearchUnavailable = errors.New("research unavailable")
	// ErrCaptureFailed means no visual could be captured for a subject.
	ErrCaptureFailed = errors.New("capture failed")
	// ErrOutputWriteFailed aborts a run: outputs cannot be persisted.
	ErrOutputWriteFailed = errors.New("output write failed")
	// ErrAssemblyFailed aborts a run: the document could not be rendered.
	ErrAssemblyFailed = errors.New("document assembly failed")
	// ErrInvalidConfig aborts a run before any stage starts.
	ErrInvalidConfig = errors.New("invalid run configuration")
)

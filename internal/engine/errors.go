package engine

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy for a Process run. Callers classify with errors.Is.
var (
	// ErrEmptyMessage is returned when the caller submits a blank message.
	ErrEmptyMessage = errors.New("empty user message")
	// ErrUpstreamGeneration means a model call failed.
	ErrUpstreamGeneration = errors.New("upstream generation failed")
	// ErrSchemaViolation means structured model output did not match its
	// expected schema. Judgment implementations wrap this.
	ErrSchemaViolation = errors.New("structured output did not match schema")
	// ErrRetrieval means the knowledge retrieval tool failed.
	ErrRetrieval = errors.New("knowledge retrieval failed")
	// ErrStore means conversation state could not be read or written.
	ErrStore = errors.New("conversation store failed")
	// ErrTimeout means the caller's deadline expired mid-run. No partial
	// state is committed.
	ErrTimeout = errors.New("run timed out")
)

// upstreamErr classifies a failed model call: deadline expiry becomes
// ErrTimeout, schema violations pass through, everything else is an
// upstream generation failure.
func upstreamErr(step string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %s: %v", ErrTimeout, step, err)
	case errors.Is(err, ErrSchemaViolation):
		return fmt.Errorf("%s: %w", step, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrUpstreamGeneration, step, err)
	}
}

func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
}

func retrievalErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: search: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrRetrieval, err)
}

package engine

import "errors"

// The engine classifies every failure into one of these sentinels so a
// caller can react with errors.Is rather than parsing a message. Each
// wraps a more specific error from the package that actually detected the
// problem; the sentinel here names the category a caller should branch on.
var (
	// ErrPlanConstruction means the translator or logical-plan constructor
	// rejected the query shape itself (e.g. an unknown column), before
	// execution starts. An incompatible predicate/column type pairing is
	// reported as ErrPredicateTypeMismatch instead.
	ErrPlanConstruction = errors.New("engine: plan construction failed")

	// ErrUnsupportedOperation means the query asked for something this
	// engine's translator or executor does not implement.
	ErrUnsupportedOperation = errors.New("engine: unsupported operation")

	// ErrPredicateTypeMismatch means a predicate was bound to a column
	// whose type cannot satisfy it (e.g. a string predicate over a numeric
	// column).
	ErrPredicateTypeMismatch = errors.New("engine: predicate type mismatch")

	// ErrCanceled means the query's CancellationToken was observed
	// canceled before execution finished.
	ErrCanceled = errors.New("engine: query canceled")

	// ErrInternalInvariantViolation means an invariant the engine relies
	// on internally did not hold (a bug, not a bad query) — e.g. an
	// expected plan node type was absent where the physical planner's
	// contract guarantees one.
	ErrInternalInvariantViolation = errors.New("engine: internal invariant violation")

	// ErrCapacityExceeded means an accumulator overflowed its fixed-width
	// representation (currently only column.ErrDecimalCapacityExceeded).
	ErrCapacityExceeded = errors.New("engine: capacity exceeded")
)

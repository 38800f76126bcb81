package exec

import "errors"

// ErrCanceled is returned by an executor call when the supplied
// CancellationToken was observed canceled between chunks.
var ErrCanceled = errors.New("exec: query canceled")

// ErrUnsupportedOperation is returned when a plan node's operator is not
// implemented by this executor (e.g. a node type resolve has no case for,
// or a fused Aggregate whose child is not a Filter directly over a Scan).
var ErrUnsupportedOperation = errors.New("exec: unsupported operation")

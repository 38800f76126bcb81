// Package predicate implements the ColumnPredicate variant family: the
// vectorized row-filtering primitives the executor applies over column
// chunks, each with a zone-map pushdown contract and a cost-based
// selectivity estimate.
package predicate

import (
	"errors"
	"fmt"

	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/zonemap"
)

// ErrInvalidPredicate is returned when a predicate is constructed against a
// column of an incompatible type (e.g. a string-equality predicate bound to
// a numeric column).
var ErrInvalidPredicate = errors.New("predicate: invalid predicate for column type")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPredicate, fmt.Sprintf(format, args...))
}

// ColumnPredicate is a single vectorized filter over one bound column. Every
// variant stores its column index as an unexported, unexported-at-construction
// field: the index is resolved once when the predicate is built and is never
// mutated afterwards. A mutable column index was a historical bug in this
// lineage of engines — a predicate whose column binding could be rewritten
// in place after construction let two queries sharing a cached plan observe
// each other's binding, corrupting results under concurrent use. Every
// variant below fixes that by construction: there is no setter.
type ColumnPredicate interface {
	// ColumnIndex returns the column this predicate is bound to.
	ColumnIndex() int

	// Evaluate clears bits in sel for rows in [start, end) of chunk that do
	// not satisfy the predicate. It never sets a bit that was already
	// clear, and never touches bits outside [start, end).
	Evaluate(chunk column.Chunk, sel *bitmap.Bitmap, start, end int)

	// MayContainMatches is a conservative zone-map pushdown check: it
	// returns false only when entry's [Min,Max] provably excludes every
	// row in the chunk. A predicate with no zone-map-expressible bound
	// (string/bool predicates) always returns true.
	MayContainMatches(entry zonemap.Entry, hasZoneMap bool) bool

	// EstimatedSelectivity returns a value in [0,1]; 0.5 when unknown.
	EstimatedSelectivity() float64
}

// Kind identifies a predicate variant, used by the optimizer's tie-breaking
// rule (reorder by selectivity, then by kind, then by column index).
type Kind int

const (
	KindNumericComparison Kind = iota
	KindRange
	KindIsNull
	KindIsNotNull
	KindStringEquality
	KindStringStartsWith
	KindStringEndsWith
	KindStringContains
	KindBoolTest
	KindAnd
	KindOr
	KindNot
)

// baseRateSelectivity is the predicate-kind base rate used when no
// zone-map coverage is available. Rates depend on the kind alone: every
// NumericComparison operator, equality and inequality alike, shares 0.1
// with StringEquality; Range is 0.2; IsNull/IsNotNull 0.3; and a BoolTest
// is 0.5 whether it tests for true, false or null.
func baseRateSelectivity(k Kind) float64 {
	switch k {
	case KindNumericComparison, KindStringEquality:
		return 0.1
	case KindRange:
		return 0.2
	case KindIsNull, KindIsNotNull:
		return 0.3
	case KindBoolTest:
		return 0.5
	default:
		return 0.5
	}
}

// Kind-level interface so the optimizer can read a predicate's kind for
// reordering without a type switch over every concrete variant.
type kindful interface {
	Kind() Kind
}

// KindOf returns p's variant kind if it exposes one, else KindBoolTest's
// neutral 0.5 default tier.
func KindOf(p ColumnPredicate) Kind {
	if kf, ok := p.(kindful); ok {
		return kf.Kind()
	}
	return KindBoolTest
}

// Package queryresult defines the engine's outbound result representation
// and the renderer contract external collaborators implement to turn a
// QueryResult into whatever row shape their caller wants (spec.md §4.9).
// The engine never constructs rows itself.
package queryresult

import (
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/physicalplan"
	"github.com/arrowkit/arrowkit/src/snapshot"
)

// SelectionKind names which of QueryResult's selection representations is
// populated.
type SelectionKind int

const (
	// SelectionBitmap: an arbitrary, possibly sparse row set, carried as a
	// *bitmap.Bitmap (the common case coming directly out of a Filter).
	SelectionBitmap SelectionKind = iota
	// SelectionRoaring: a compacted sparse/long-lived selection (see
	// CompactSelection) — cheaper to retain across a cache's lifetime than
	// a dense bitmap when the selection is sparse.
	SelectionRoaring
	// SelectionSortedList: an explicit ascending row-index slice, used by
	// group-by/sort/distinct outputs that don't naturally produce a
	// position-addressed bitmap.
	SelectionSortedList
	// SelectionRange: a contiguous [Start, End) row range — the zero-copy
	// case for a full scan with no filter (spec.md §4.7 "Materialization").
	SelectionRange
)

// Selection is one of the four row-set representations a QueryResult may
// carry, tagged by Kind.
type Selection struct {
	Kind SelectionKind

	Bitmap  *bitmap.Bitmap
	Roaring *roaring.Bitmap
	Sorted  []int
	Start   int
	End     int
}

// Len reports how many rows this selection designates.
func (s Selection) Len() int {
	switch s.Kind {
	case SelectionBitmap:
		return s.Bitmap.CountSet()
	case SelectionRoaring:
		return int(s.Roaring.GetCardinality())
	case SelectionSortedList:
		return len(s.Sorted)
	case SelectionRange:
		return s.End - s.Start
	default:
		return 0
	}
}

// RowIndices enumerates this selection's row positions in ascending order
// (spec.md §5: "enumeration order of selected row indices is ascending by
// row position").
func (s Selection) RowIndices() []int {
	switch s.Kind {
	case SelectionBitmap:
		return s.Bitmap.GetSelectedIndices(make([]int, 0, s.Bitmap.CountSet()))
	case SelectionRoaring:
		out := make([]int, 0, s.Roaring.GetCardinality())
		it := s.Roaring.Iterator()
		for it.HasNext() {
			out = append(out, int(it.Next()))
		}
		return out
	case SelectionSortedList:
		return s.Sorted
	case SelectionRange:
		out := make([]int, 0, s.End-s.Start)
		for i := s.Start; i < s.End; i++ {
			out = append(out, i)
		}
		return out
	default:
		return nil
	}
}

// CompactSelection converts a dense bitmap selection into a roaring
// bitmap, cheaper to retain for a sparse or long-lived selection (e.g. one
// held by the plan/predicate cache across many query invocations) than
// keeping the dense word array alive.
func CompactSelection(sel Selection) Selection {
	if sel.Kind != SelectionBitmap {
		return sel
	}
	rb := roaring.New()
	for _, idx := range sel.RowIndices() {
		rb.Add(uint32(idx))
	}
	return Selection{Kind: SelectionRoaring, Roaring: rb}
}

// ExecutionMetadata records what the executor actually did, surfaced to
// callers that want to observe strategy choices (diagnostics/tests), never
// consulted by the engine itself for semantics.
type ExecutionMetadata struct {
	FilterStrategy   physicalplan.FilterStrategy
	GroupByStrategy  physicalplan.GroupByStrategy
	Elapsed          time.Duration
	ChunksEvaluated  int
	RowsScanned      uint64
}

// QueryResult is the engine's sole outbound artifact: a reference to the
// snapshot queried, a row selection, and optionally the set of projected
// columns (nil means every column of the snapshot's schema).
type QueryResult struct {
	Store              snapshot.Store
	Selection          Selection
	ProjectedColumns   []int // nil => all columns of Store.Schema()
	ProjectedSchema    column.TableSchema
	ExecutionMetadata  ExecutionMetadata
}

// OutputSchema is ProjectedSchema when set, else the store's full schema.
func (r *QueryResult) OutputSchema() column.TableSchema {
	if r.ProjectedSchema != nil {
		return r.ProjectedSchema
	}
	return r.Store.Schema()
}

// columnIndices returns which store column indices back each output
// column, in output order.
func (r *QueryResult) columnIndices() []int {
	if r.ProjectedColumns != nil {
		return r.ProjectedColumns
	}
	idxs := make([]int, len(r.Store.Schema()))
	for i := range idxs {
		idxs[i] = i
	}
	return idxs
}

// ValueAt decodes the value of output column outIdx at row position
// rowPos, regardless of the underlying chunk's concrete type/encoding.
// Renderers use this rather than reaching into column internals directly.
func (r *QueryResult) ValueAt(outIdx, rowPos int) (any, bool) {
	srcIdx := r.columnIndices()[outIdx]
	chunk := r.Store.ColumnByIndex(srcIdx)
	return column.ValueAt(chunk, rowPos)
}

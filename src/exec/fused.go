package exec

import (
	"math"

	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/logicalplan"
	"github.com/arrowkit/arrowkit/src/snapshot"
	"github.com/arrowkit/arrowkit/src/zonemap"
)

// FusedFilterAggregate evaluates f's predicates and aggregates agg's
// column in one pass, chunk by chunk: each chunk's local matches are
// folded into the running accumulator and then cleared before the next
// chunk reuses the same scratch bitmap, so only one chunk's worth of
// selection state is ever live at a time (spec.md §4.6: "evaluates the
// predicate chunk, then aggregates the surviving bits in one pass...
// without producing an intermediate bitmap for the chunk").
func FusedFilterAggregate(store snapshot.Store, f *logicalplan.Filter, agg *logicalplan.Aggregate, rowCount int, cancel *CancellationToken) (AggResult, error) {
	if agg.Op == logicalplan.AggCount {
		return fusedCount(store, f, rowCount, cancel)
	}

	aggColIdx, _, err := agg.Child.OutputSchema().LocateColumn(agg.Column)
	if err != nil {
		return AggResult{}, err
	}
	aggChunk := store.ColumnByIndex(aggColIdx)

	sel := bitmap.New(rowCount, false)
	defer sel.Release()

	combined := AggResult{Min: math.Inf(1), Max: math.Inf(-1)}
	numChunks := (rowCount + zonemap.ChunkSize - 1) / zonemap.ChunkSize
	for ci := 0; ci < numChunks; ci++ {
		if cancel.Canceled() {
			return AggResult{}, ErrCanceled
		}
		start, end := zonemap.Range(ci, rowCount)
		setRange(sel, start, end)
		if !evaluateChunk(store, f, sel, ci, start, end) {
			clearRange(sel, start, end)
			continue
		}
		part, aerr := Aggregate(aggChunk, sel, agg.Op)
		clearRange(sel, start, end)
		if aerr != nil {
			return AggResult{}, aerr
		}
		merged, merr := mergeAggResults(combined, part)
		if merr != nil {
			return AggResult{}, merr
		}
		combined = merged
	}
	return combined, nil
}

func fusedCount(store snapshot.Store, f *logicalplan.Filter, rowCount int, cancel *CancellationToken) (AggResult, error) {
	sel := bitmap.New(rowCount, true)
	defer sel.Release()
	numChunks := (rowCount + zonemap.ChunkSize - 1) / zonemap.ChunkSize
	for ci := 0; ci < numChunks; ci++ {
		if cancel.Canceled() {
			return AggResult{}, ErrCanceled
		}
		start, end := zonemap.Range(ci, rowCount)
		if !evaluateChunk(store, f, sel, ci, start, end) {
			clearRange(sel, start, end)
		}
	}
	return AggResult{Count: int64(sel.CountSet())}, nil
}

func setRange(sel *bitmap.Bitmap, start, end int) {
	for i := start; i < end; i++ {
		sel.Set(i)
	}
}

// mergeAggResults folds b (one chunk's partial aggregate) into a (the
// running total across chunks already processed), returning
// column.ErrDecimalCapacityExceeded if merging two decimal sums overflows.
func mergeAggResults(a, b AggResult) (AggResult, error) {
	out := a
	out.Count += b.Count
	if b.Count == 0 {
		return out, nil
	}
	switch {
	case b.IsDecimal:
		out.IsDecimal = true
		if a.Count == 0 {
			out.DecimalSum = b.DecimalSum
		} else {
			sum := a.DecimalSum.Value + b.DecimalSum.Value
			overflowed := (b.DecimalSum.Value > 0 && sum < a.DecimalSum.Value) ||
				(b.DecimalSum.Value < 0 && sum > a.DecimalSum.Value)
			if overflowed {
				return AggResult{}, column.ErrDecimalCapacityExceeded
			}
			out.DecimalSum = column.Decimal64{Value: sum, Scale: b.DecimalSum.Scale}
		}
	case b.IsInteger:
		out.IsInteger = true
		out.IntSum += b.IntSum
	default:
		out.FloatSum += b.FloatSum
	}
	if b.Min < out.Min {
		out.Min = b.Min
	}
	if b.Max > out.Max {
		out.Max = b.Max
	}
	return out, nil
}

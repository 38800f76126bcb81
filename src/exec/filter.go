package exec

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/logicalplan"
	"github.com/arrowkit/arrowkit/src/physicalplan"
	"github.com/arrowkit/arrowkit/src/snapshot"
	"github.com/arrowkit/arrowkit/src/zonemap"
)

// EvaluateFilter runs f's predicates over the first rowCount rows sourced
// from store, using the strategy the physical planner chose, and returns
// the resulting selection bitmap (bit set = row survives every
// predicate). Sequential and SIMD share one scalar implementation: the
// scalar path must be numerically identical to whatever a vectorized path
// would produce (spec.md §4.3/§9), so there is nothing for a dedicated
// SIMD code path to diverge on in this engine. workerCount caps how many
// chunk goroutines the parallel strategy may run concurrently; zero means
// unbounded and is ignored by the sequential strategy.
func EvaluateFilter(ctx context.Context, store snapshot.Store, f *logicalplan.Filter, strategy physicalplan.FilterStrategy, rowCount, workerCount int, cancel *CancellationToken) (*bitmap.Bitmap, error) {
	sel := bitmap.New(rowCount, true)
	var err error
	if strategy == physicalplan.FilterParallel {
		err = evaluateParallel(ctx, store, f, sel, rowCount, workerCount, cancel)
	} else {
		err = evaluateSequential(store, f, sel, rowCount, cancel)
	}
	if err != nil {
		sel.Release()
		return nil, err
	}
	return sel, nil
}

func evaluateSequential(store snapshot.Store, f *logicalplan.Filter, sel *bitmap.Bitmap, rowCount int, cancel *CancellationToken) error {
	numChunks := (rowCount + zonemap.ChunkSize - 1) / zonemap.ChunkSize
	for ci := 0; ci < numChunks; ci++ {
		if cancel.Canceled() {
			return ErrCanceled
		}
		start, end := zonemap.Range(ci, rowCount)
		if !evaluateChunk(store, f, sel, ci, start, end) {
			clearRange(sel, start, end)
		}
	}
	return nil
}

// evaluateParallel divides rows into zonemap.ChunkSize-row chunks and
// evaluates each on its own errgroup worker, capped at workerCount active
// goroutines at a time (zero leaves the group unbounded). Chunk boundaries
// are always word-aligned (16384 rows / 64 bits per word = 256 whole
// words), so each worker writes only to its own disjoint slice of sel's
// backing words and no locking is required (spec.md §4.7/§5).
func evaluateParallel(ctx context.Context, store snapshot.Store, f *logicalplan.Filter, sel *bitmap.Bitmap, rowCount, workerCount int, cancel *CancellationToken) error {
	numChunks := (rowCount + zonemap.ChunkSize - 1) / zonemap.ChunkSize
	g, gctx := errgroup.WithContext(ctx)
	if workerCount > 0 {
		g.SetLimit(workerCount)
	}
	for ci := 0; ci < numChunks; ci++ {
		ci := ci
		g.Go(func() error {
			if cancel.Canceled() || gctx.Err() != nil {
				return ErrCanceled
			}
			start, end := zonemap.Range(ci, rowCount)
			if !evaluateChunk(store, f, sel, ci, start, end) {
				clearRange(sel, start, end)
			}
			return nil
		})
	}
	return g.Wait()
}

// evaluateChunk consults the zone map for every predicate's column before
// touching any row data; if any predicate's zone-map entry rules out the
// whole chunk, the chunk is pruned without ever reading the column
// (returns false so the caller clears it). Otherwise every predicate is
// evaluated in the order the optimizer already sorted them by
// selectivity, ANDing each predicate's result into sel.
func evaluateChunk(store snapshot.Store, f *logicalplan.Filter, sel *bitmap.Bitmap, chunkIdx, start, end int) bool {
	for _, p := range f.Predicates {
		zm, ok := store.ZoneMapFor(p.ColumnIndex())
		if !ok {
			continue
		}
		if chunkIdx >= zm.NumChunks() {
			continue
		}
		if !p.MayContainMatches(zm.Entry(chunkIdx), true) {
			return false
		}
	}
	for _, p := range f.Predicates {
		chunk := store.ColumnByIndex(p.ColumnIndex())
		p.Evaluate(chunk, sel, start, end)
	}
	return true
}

func clearRange(sel *bitmap.Bitmap, start, end int) {
	for i := start; i < end; i++ {
		sel.Clear(i)
	}
}

package exec

import (
	"context"
	"time"

	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/logicalplan"
	"github.com/arrowkit/arrowkit/src/physicalplan"
	"github.com/arrowkit/arrowkit/src/queryresult"
	"github.com/arrowkit/arrowkit/src/snapshot"
)

// Execute walks a physical plan whose root is a row-producing node (every
// variant except Aggregate and GroupBy, which terminate a plan and are run
// via ExecuteScalar/ExecuteGroupBy instead) and returns the resulting
// QueryResult. Project only reshapes output columns; it never changes
// which rows are selected, so it is folded into the ProjectedColumns of
// the result rather than walked as a separate materialization step.
func Execute(ctx context.Context, plan *physicalplan.Plan, cancel *CancellationToken) (*queryresult.QueryResult, error) {
	started := time.Now()
	store, positions, meta, err := resolve(ctx, plan, cancel)
	if err != nil {
		return nil, err
	}
	meta.Elapsed = time.Since(started)
	meta.RowsScanned = store.RowCount()

	result := &queryresult.QueryResult{
		Store:             store,
		Selection:         queryresult.Selection{Kind: queryresult.SelectionSortedList, Sorted: positions},
		ExecutionMetadata: meta,
	}
	if proj, ok := plan.Node.(*logicalplan.Project); ok {
		result.ProjectedSchema = proj.OutputSchema()
		result.ProjectedColumns = projectedSourceIndices(store, proj)
	}
	return result, nil
}

// ExecuteScalar runs a plan whose root is a single terminal Aggregate (no
// grouping), choosing the fused filter+aggregate kernel when the
// physical planner collapsed a Filter into it.
func ExecuteScalar(ctx context.Context, plan *physicalplan.Plan, cancel *CancellationToken) (AggResult, error) {
	agg, ok := plan.Node.(*logicalplan.Aggregate)
	if !ok {
		return AggResult{}, ErrUnsupportedOperation
	}
	if plan.FusedFilter {
		f, ok := agg.Child.(*logicalplan.Filter)
		if !ok {
			return AggResult{}, ErrUnsupportedOperation
		}
		scan, ok := f.Child.(*logicalplan.Scan)
		if !ok {
			return AggResult{}, ErrUnsupportedOperation
		}
		store := scan.SourceRef.(snapshot.Store)
		return FusedFilterAggregate(store, f, agg, int(store.RowCount()), cancel)
	}
	store, positions, _, err := resolve(ctx, plan.Children[0], cancel)
	if err != nil {
		return AggResult{}, err
	}
	if agg.Op == logicalplan.AggCount {
		return AggResult{Count: int64(len(positions))}, nil
	}
	colIdx, _, err := store.Schema().LocateColumn(resolveStoreColumn(agg.Child, agg.Column))
	if err != nil {
		return AggResult{}, err
	}
	sel := positionsToBitmap(positions, int(store.RowCount()))
	defer sel.Release()
	return Aggregate(store.ColumnByIndex(colIdx), sel, agg.Op)
}

// ExecuteGroupBy runs a plan whose root is a GroupBy node.
func ExecuteGroupBy(ctx context.Context, plan *physicalplan.Plan, cancel *CancellationToken) ([]GroupResult, error) {
	gb, ok := plan.Node.(*logicalplan.GroupBy)
	if !ok {
		return nil, ErrUnsupportedOperation
	}
	store, positions, _, err := resolve(ctx, plan.Children[0], cancel)
	if err != nil {
		return nil, err
	}
	keyIdx, _, err := store.Schema().LocateColumn(resolveStoreColumn(gb.Child, gb.GroupColumn))
	if err != nil {
		return nil, err
	}
	sel := positionsToBitmap(positions, int(store.RowCount()))
	defer sel.Release()

	valueChunks := make(map[string]column.Chunk, len(gb.Aggregations))
	for _, a := range gb.Aggregations {
		if a.Op == logicalplan.AggCount {
			continue
		}
		idx, _, err := store.Schema().LocateColumn(resolveStoreColumn(gb.Child, a.Column))
		if err != nil {
			return nil, err
		}
		valueChunks[a.Column] = store.ColumnByIndex(idx)
	}
	return HashAggregate(store.ColumnByIndex(keyIdx), valueChunks, sel, gb.Aggregations, cancel)
}

// resolve recursively walks a row-producing plan, returning the original
// snapshot and the ascending row positions that survive the whole chain.
func resolve(ctx context.Context, plan *physicalplan.Plan, cancel *CancellationToken) (snapshot.Store, []int, queryresult.ExecutionMetadata, error) {
	var meta queryresult.ExecutionMetadata

	switch n := plan.Node.(type) {
	case *logicalplan.Scan:
		store := n.SourceRef.(snapshot.Store)
		return store, fullRange(int(store.RowCount())), meta, nil

	case *logicalplan.Filter:
		store, childPositions, _, err := resolve(ctx, plan.Children[0], cancel)
		if err != nil {
			return nil, nil, meta, err
		}
		rowCount := int(store.RowCount())
		sel, err := EvaluateFilter(ctx, store, n, plan.Filter, rowCount, plan.WorkerCount, cancel)
		if err != nil {
			return nil, nil, meta, err
		}
		defer sel.Release()
		meta.FilterStrategy = plan.Filter
		out := make([]int, 0, len(childPositions))
		for _, p := range childPositions {
			if sel.Get(p) {
				out = append(out, p)
			}
		}
		return store, out, meta, nil

	case *logicalplan.Project:
		return resolve(ctx, plan.Children[0], cancel)

	case *logicalplan.Limit:
		store, positions, m, err := resolve(ctx, plan.Children[0], cancel)
		if err != nil {
			return nil, nil, meta, err
		}
		if uint64(len(positions)) > n.Count {
			positions = positions[:n.Count]
		}
		return store, positions, m, nil

	case *logicalplan.Offset:
		store, positions, m, err := resolve(ctx, plan.Children[0], cancel)
		if err != nil {
			return nil, nil, meta, err
		}
		if uint64(len(positions)) <= n.Count {
			return store, nil, m, nil
		}
		return store, positions[n.Count:], m, nil

	case *logicalplan.Sort:
		store, positions, m, err := resolve(ctx, plan.Children[0], cancel)
		if err != nil {
			return nil, nil, meta, err
		}
		sorted := SortPositions(positions, n.Orderings, func(name string) column.Chunk {
			idx, _, _ := store.Schema().LocateColumn(resolveStoreColumn(n.Child, name))
			return store.ColumnByIndex(idx)
		})
		return store, sorted, m, nil

	case *logicalplan.Distinct:
		store, positions, m, err := resolve(ctx, plan.Children[0], cancel)
		if err != nil {
			return nil, nil, meta, err
		}
		schema := n.Child.OutputSchema()
		cols := make([]column.Chunk, len(schema))
		for i, s := range schema {
			idx, _, _ := store.Schema().LocateColumn(resolveStoreColumn(n.Child, s.Name))
			cols[i] = store.ColumnByIndex(idx)
		}
		return store, DistinctPositions(positions, cols), m, nil

	default:
		return nil, nil, meta, ErrUnsupportedOperation
	}
}

// resolveStoreColumn walks past any Project node(s) between node and the
// Scan, translating an output column name back to the name it was sourced
// from, so callers can always look the result up in the store's own
// schema. A Computed projection has no single source column and is left
// as-is (a computed aggregate/sort/group key is not supported here).
func resolveStoreColumn(node logicalplan.Node, name string) string {
	p, ok := node.(*logicalplan.Project)
	if !ok {
		return name
	}
	for _, proj := range p.Projections {
		if proj.OutputName == name && proj.Computed == "" {
			return resolveStoreColumn(p.Child, proj.SourceColumn)
		}
	}
	return name
}

func fullRange(rowCount int) []int {
	out := make([]int, rowCount)
	for i := range out {
		out[i] = i
	}
	return out
}

func positionsToBitmap(positions []int, rowCount int) *bitmap.Bitmap {
	sel := bitmap.New(rowCount, false)
	for _, p := range positions {
		sel.Set(p)
	}
	return sel
}

func projectedSourceIndices(store snapshot.Store, proj *logicalplan.Project) []int {
	schema := store.Schema()
	out := make([]int, len(proj.Projections))
	for i, p := range proj.Projections {
		if p.Computed != "" {
			out[i] = -1
			continue
		}
		for j, s := range schema {
			if s.Name == p.SourceColumn {
				out[i] = j
				break
			}
		}
	}
	return out
}

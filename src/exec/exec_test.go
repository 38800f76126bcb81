package exec

import (
	"context"
	"testing"

	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/logicalplan"
	"github.com/arrowkit/arrowkit/src/physicalplan"
	"github.com/arrowkit/arrowkit/src/predicate"
	"github.com/arrowkit/arrowkit/src/snapshot"
)

func testStoreWithAmounts(t *testing.T, amounts []float64, ids []int64) snapshot.Store {
	t.Helper()
	schema := column.TableSchema{
		{Name: "id", Dtype: column.DtypeI64},
		{Name: "amount", Dtype: column.DtypeF64},
	}
	idChunk := column.NewNumericChunk(column.DtypeI64, ids, bitmap.New(len(ids), true))
	amtChunk := column.NewNumericChunk(column.DtypeF64, amounts, bitmap.New(len(amounts), true))
	return snapshot.NewInMemory(schema, []column.Chunk{idChunk, amtChunk})
}

func TestEvaluateFilterSequentialPrunesByZoneMap(t *testing.T) {
	amounts := make([]float64, 0, 40000)
	ids := make([]int64, 0, 40000)
	for i := 0; i < 40000; i++ {
		amounts = append(amounts, float64(i))
		ids = append(ids, int64(i))
	}
	store := testStoreWithAmounts(t, amounts, ids)
	scan := logicalplan.NewScan("t", store, store.Schema(), store.RowCount())
	pred := predicate.NewNumericComparison(1, predicate.OpGT, 39000)
	f, err := logicalplan.NewFilter(scan, []predicate.ColumnPredicate{pred})
	if err != nil {
		t.Fatal(err)
	}

	cancel := NewCancellationToken()
	sel, err := EvaluateFilter(context.Background(), store, f, physicalplan.FilterSequential, int(store.RowCount()), 4, cancel)
	if err != nil {
		t.Fatal(err)
	}
	defer sel.Release()
	if got := sel.CountSet(); got != 999 {
		t.Fatalf("expected 999 matches, got %d", got)
	}
}

func TestEvaluateFilterParallelMatchesSequential(t *testing.T) {
	amounts := make([]float64, 0, 60000)
	ids := make([]int64, 0, 60000)
	for i := 0; i < 60000; i++ {
		amounts = append(amounts, float64(i%100))
		ids = append(ids, int64(i))
	}
	store := testStoreWithAmounts(t, amounts, ids)
	scan := logicalplan.NewScan("t", store, store.Schema(), store.RowCount())
	pred := predicate.NewNumericComparison(1, predicate.OpEQ, 42)
	f, err := logicalplan.NewFilter(scan, []predicate.ColumnPredicate{pred})
	if err != nil {
		t.Fatal(err)
	}

	rowCount := int(store.RowCount())
	seqSel, err := EvaluateFilter(context.Background(), store, f, physicalplan.FilterSequential, rowCount, 0, NewCancellationToken())
	if err != nil {
		t.Fatal(err)
	}
	defer seqSel.Release()
	// A worker cap well below the chunk count (60000 rows / 16384 per
	// chunk = 4 chunks) exercises errgroup.SetLimit actually throttling
	// concurrency rather than always running one goroutine per chunk.
	parSel, err := EvaluateFilter(context.Background(), store, f, physicalplan.FilterParallel, rowCount, 2, NewCancellationToken())
	if err != nil {
		t.Fatal(err)
	}
	defer parSel.Release()

	if seqSel.CountSet() != parSel.CountSet() {
		t.Fatalf("sequential found %d matches, parallel found %d", seqSel.CountSet(), parSel.CountSet())
	}
	for i := 0; i < rowCount; i++ {
		if seqSel.Get(i) != parSel.Get(i) {
			t.Fatalf("row %d: sequential=%v parallel=%v", i, seqSel.Get(i), parSel.Get(i))
		}
	}
}

func TestAggregateSumAndAverage(t *testing.T) {
	store := testStoreWithAmounts(t, []float64{1, 2, 3, 4}, []int64{1, 2, 3, 4})
	sel := bitmap.New(4, true)
	defer sel.Release()
	res, err := Aggregate(store.ColumnByIndex(1), sel, logicalplan.AggSum)
	if err != nil {
		t.Fatal(err)
	}
	if res.FloatSum != 10 {
		t.Fatalf("expected sum 10, got %v", res.FloatSum)
	}
	if avg := res.Average(); avg != 2.5 {
		t.Fatalf("expected average 2.5, got %v", avg)
	}
}

func TestFusedFilterAggregateMatchesTwoPassResult(t *testing.T) {
	amounts := make([]float64, 0, 20000)
	ids := make([]int64, 0, 20000)
	for i := 0; i < 20000; i++ {
		amounts = append(amounts, float64(i%10))
		ids = append(ids, int64(i))
	}
	store := testStoreWithAmounts(t, amounts, ids)
	scan := logicalplan.NewScan("t", store, store.Schema(), store.RowCount())
	pred := predicate.NewNumericComparison(1, predicate.OpGT, 5)
	f, err := logicalplan.NewFilter(scan, []predicate.ColumnPredicate{pred})
	if err != nil {
		t.Fatal(err)
	}
	agg, err := logicalplan.NewAggregate(f, logicalplan.AggSum, "amount", column.DtypeF64)
	if err != nil {
		t.Fatal(err)
	}

	fused, err := FusedFilterAggregate(store, f, agg, int(store.RowCount()), NewCancellationToken())
	if err != nil {
		t.Fatal(err)
	}

	rowCount := int(store.RowCount())
	sel, err := EvaluateFilter(context.Background(), store, f, physicalplan.FilterSequential, rowCount, 0, NewCancellationToken())
	if err != nil {
		t.Fatal(err)
	}
	defer sel.Release()
	twoPass, err := Aggregate(store.ColumnByIndex(1), sel, logicalplan.AggSum)
	if err != nil {
		t.Fatal(err)
	}

	if fused.Count != twoPass.Count || fused.FloatSum != twoPass.FloatSum {
		t.Fatalf("fused result %+v differs from two-pass result %+v", fused, twoPass)
	}
}

func TestSortPositionsOrdersDescendingWithNullsLast(t *testing.T) {
	validity := bitmap.New(4, true)
	validity.Clear(2)
	amtChunk := column.NewNumericChunk(column.DtypeF64, []float64{3, 1, 0, 2}, validity)
	schema := column.TableSchema{{Name: "amount", Dtype: column.DtypeF64}}
	store := snapshot.NewInMemory(schema, []column.Chunk{amtChunk})

	sorted := SortPositions([]int{0, 1, 2, 3}, []logicalplan.SortKey{{Column: "amount", Descending: true}}, func(name string) column.Chunk {
		return store.ColumnByIndex(0)
	})
	want := []int{0, 3, 1, 2}
	for i, v := range want {
		if sorted[i] != v {
			t.Fatalf("sorted=%v, want %v", sorted, want)
		}
	}
}

func TestDistinctPositionsKeepsFirstOccurrence(t *testing.T) {
	idChunk := column.NewNumericChunk(column.DtypeI64, []int64{1, 2, 1, 3, 2}, bitmap.New(5, true))
	out := DistinctPositions([]int{0, 1, 2, 3, 4}, []column.Chunk{idChunk})
	want := []int{0, 1, 3}
	if len(out) != len(want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	for i, v := range want {
		if out[i] != v {
			t.Fatalf("got %v, want %v", out, want)
		}
	}
}

func TestHashAggregateGroupsInFirstAppearanceOrder(t *testing.T) {
	keyChunk := column.NewNumericChunk(column.DtypeI64, []int64{2, 1, 2, 1, 3}, bitmap.New(5, true))
	valChunk := column.NewNumericChunk(column.DtypeF64, []float64{10, 20, 5, 1, 7}, bitmap.New(5, true))
	sel := bitmap.New(5, true)
	defer sel.Release()

	aggs := []logicalplan.GroupAggregation{{Op: logicalplan.AggSum, Column: "amount"}}
	results, err := HashAggregate(keyChunk, map[string]column.Chunk{"amount": valChunk}, sel, aggs, NewCancellationToken())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(results))
	}
	if results[0].Key != int64(2) || results[1].Key != int64(1) || results[2].Key != int64(3) {
		t.Fatalf("unexpected group order: %+v", results)
	}
	if results[0].Aggs[0].FloatSum != 15 {
		t.Fatalf("group 2 sum = %v, want 15", results[0].Aggs[0].FloatSum)
	}
	if results[1].Aggs[0].FloatSum != 21 {
		t.Fatalf("group 1 sum = %v, want 21", results[1].Aggs[0].FloatSum)
	}
}

func TestCancellationTokenNilSafe(t *testing.T) {
	var tok *CancellationToken
	if tok.Canceled() {
		t.Fatal("nil token must report not canceled")
	}
	real := NewCancellationToken()
	if real.Canceled() {
		t.Fatal("fresh token must start not canceled")
	}
	real.Cancel()
	if !real.Canceled() {
		t.Fatal("token must report canceled after Cancel")
	}
}

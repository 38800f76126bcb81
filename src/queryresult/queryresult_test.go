package queryresult

import (
	"testing"

	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/snapshot"
)

func testStore() *snapshot.InMemory {
	schema := column.TableSchema{
		{Name: "id", Dtype: column.DtypeI64},
		{Name: "amount", Dtype: column.DtypeF64},
	}
	ids := column.NewNumericChunk(column.DtypeI64, []int64{10, 20, 30, 40}, nil)
	amounts := column.NewNumericChunk(column.DtypeF64, []float64{1.5, 2.5, 3.5, 4.5}, nil)
	return snapshot.NewInMemory(schema, []column.Chunk{ids, amounts})
}

func TestSelectionBitmapRowIndicesAscending(t *testing.T) {
	bm := bitmap.New(4, false)
	bm.Set(1)
	bm.Set(3)
	sel := Selection{Kind: SelectionBitmap, Bitmap: bm}
	idxs := sel.RowIndices()
	if len(idxs) != 2 || idxs[0] != 1 || idxs[1] != 3 {
		t.Fatalf("RowIndices = %v, want [1 3]", idxs)
	}
	if sel.Len() != 2 {
		t.Fatalf("Len = %d, want 2", sel.Len())
	}
}

func TestSelectionRangeRowIndices(t *testing.T) {
	sel := Selection{Kind: SelectionRange, Start: 1, End: 3}
	idxs := sel.RowIndices()
	if len(idxs) != 2 || idxs[0] != 1 || idxs[1] != 2 {
		t.Fatalf("RowIndices = %v, want [1 2]", idxs)
	}
}

func TestCompactSelectionPreservesRowSet(t *testing.T) {
	bm := bitmap.New(8, false)
	bm.Set(0)
	bm.Set(5)
	bm.Set(7)
	sel := Selection{Kind: SelectionBitmap, Bitmap: bm}
	compacted := CompactSelection(sel)
	if compacted.Kind != SelectionRoaring {
		t.Fatal("expected CompactSelection to produce SelectionRoaring")
	}
	want := []int{0, 5, 7}
	got := compacted.RowIndices()
	if len(got) != len(want) {
		t.Fatalf("RowIndices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RowIndices = %v, want %v", got, want)
		}
	}
}

func TestQueryResultValueAtRespectsProjection(t *testing.T) {
	store := testStore()
	result := &QueryResult{
		Store:            store,
		Selection:        Selection{Kind: SelectionRange, Start: 0, End: 4},
		ProjectedColumns: []int{1}, // only "amount"
	}
	v, ok := result.ValueAt(0, 2)
	if !ok || v.(float64) != 3.5 {
		t.Fatalf("ValueAt(0, 2) = %v, %v; want 3.5, true", v, ok)
	}
}

func TestRowListRendererMaterializesSelectedRows(t *testing.T) {
	store := testStore()
	bm := bitmap.New(4, false)
	bm.Set(0)
	bm.Set(2)
	result := &QueryResult{Store: store, Selection: Selection{Kind: SelectionBitmap, Bitmap: bm}}
	rows, err := RowListRenderer{}.Render(result)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0].(int64) != 10 || rows[1][0].(int64) != 30 {
		t.Fatalf("unexpected row contents: %+v", rows)
	}
}

func TestColumnarBatchRendererShapesByColumn(t *testing.T) {
	store := testStore()
	result := &QueryResult{Store: store, Selection: Selection{Kind: SelectionRange, Start: 0, End: 4}}
	batch, err := ColumnarBatchRenderer{}.Render(result)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Columns) != 2 || len(batch.Columns[0]) != 4 {
		t.Fatalf("unexpected batch shape: %+v", batch)
	}
}

func TestIsZeroCopyEligible(t *testing.T) {
	store := testStore()
	full := &QueryResult{Store: store, Selection: Selection{Kind: SelectionRange, Start: 0, End: 4}}
	if !IsZeroCopyEligible(full) {
		t.Fatal("expected full-range, unprojected result to be zero-copy eligible")
	}
	partial := &QueryResult{Store: store, Selection: Selection{Kind: SelectionRange, Start: 0, End: 2}}
	if IsZeroCopyEligible(partial) {
		t.Fatal("a partial range should not be zero-copy eligible")
	}
}

func TestLazyRowSequenceYieldsInOrder(t *testing.T) {
	store := testStore()
	result := &QueryResult{Store: store, Selection: Selection{Kind: SelectionRange, Start: 1, End: 4}}
	seq := NewLazyRowSequence(result)
	var got []int64
	for {
		row, ok := seq.Next()
		if !ok {
			break
		}
		got = append(got, row[0].(int64))
	}
	want := []int64{20, 30, 40}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

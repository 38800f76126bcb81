package snapshot

import (
	"testing"

	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
)

func TestNewInMemoryBuildsZoneMapsForNumericColumnsOnly(t *testing.T) {
	schema := column.TableSchema{
		{Name: "id", Dtype: column.DtypeI64},
		{Name: "name", Dtype: column.DtypeUtf8},
	}
	ids := column.NewNumericChunk(column.DtypeI64, []int64{1, 2, 3}, nil)
	names := column.NewPlainStringChunk([]byte("abc"), []uint32{0, 1, 2, 3}, bitmap.New(3, true))
	store := NewInMemory(schema, []column.Chunk{ids, names})

	if _, ok := store.ZoneMapFor(0); !ok {
		t.Fatal("expected a zone map for the numeric id column")
	}
	if _, ok := store.ZoneMapFor(1); ok {
		t.Fatal("did not expect a zone map for the string name column")
	}
	if store.RowCount() != 3 {
		t.Fatalf("RowCount = %d, want 3", store.RowCount())
	}
}

func TestMarkSortedAndIsSorted(t *testing.T) {
	schema := column.TableSchema{{Name: "id", Dtype: column.DtypeI64}}
	store := NewInMemory(schema, []column.Chunk{column.NewNumericChunk(column.DtypeI64, []int64{1, 2}, nil)})
	if store.IsSorted("id") {
		t.Fatal("should not be sorted before MarkSorted")
	}
	store.MarkSorted("id")
	if !store.IsSorted("id") {
		t.Fatal("should be sorted after MarkSorted")
	}
}

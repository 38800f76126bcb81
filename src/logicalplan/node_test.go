package logicalplan

import (
	"testing"

	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/predicate"
)

func testSchema() column.TableSchema {
	return column.TableSchema{
		{Name: "id", Dtype: column.DtypeI64},
		{Name: "amount", Dtype: column.DtypeF64},
		{Name: "name", Dtype: column.DtypeUtf8},
	}
}

func TestScanOutputSchema(t *testing.T) {
	s := NewScan("orders", nil, testSchema(), 100)
	if len(s.OutputSchema()) != 3 || s.EstimatedRowCount() != 100 {
		t.Fatalf("Scan schema/rowcount wrong: %+v", s)
	}
	if len(s.Children()) != 0 {
		t.Fatalf("Scan must be a leaf")
	}
}

func TestFilterRejectsOutOfRangeColumn(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 100)
	_, err := NewFilter(scan, []predicate.ColumnPredicate{predicate.NewNumericComparison(99, predicate.OpEQ, 1)})
	if err == nil {
		t.Fatal("expected PlanConstructionError for out-of-range column index")
	}
}

func TestProjectRejectsUnknownColumn(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 100)
	_, err := NewProject(scan, []Projection{{SourceColumn: "nope", OutputName: "nope", OutputType: column.DtypeI64}})
	if err == nil {
		t.Fatal("expected PlanConstructionError for unknown projected column")
	}
}

func TestAggregateRejectsUnknownColumn(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 100)
	_, err := NewAggregate(scan, AggSum, "nope", column.DtypeF64)
	if err == nil {
		t.Fatal("expected PlanConstructionError for unknown aggregate column")
	}
	if _, err := NewAggregate(scan, AggCount, "", column.DtypeI64); err != nil {
		t.Fatalf("Count aggregate should not require a column: %v", err)
	}
}

func TestGroupByOutputSchema(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 100)
	gb, err := NewGroupBy(scan, "name", []GroupAggregation{
		{Op: AggSum, Column: "amount", OutputName: "total", OutputType: column.DtypeF64},
	}, "")
	if err != nil {
		t.Fatalf("NewGroupBy: %v", err)
	}
	schema := gb.OutputSchema()
	if len(schema) != 2 || schema[0].Name != "name" || schema[1].Name != "total" {
		t.Fatalf("GroupBy schema = %+v", schema)
	}
}

func TestLimitEstimatedRowCount(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 5)
	lim := NewLimit(scan, 100)
	if lim.EstimatedRowCount() != 5 {
		t.Fatalf("Limit(100) over 5 rows should estimate 5, got %d", lim.EstimatedRowCount())
	}
	lim2 := NewLimit(NewScan("orders", nil, testSchema(), 1000), 100)
	if lim2.EstimatedRowCount() != 100 {
		t.Fatalf("Limit(100) over 1000 rows should estimate 100, got %d", lim2.EstimatedRowCount())
	}
}

func TestOffsetEstimatedRowCount(t *testing.T) {
	off := NewOffset(NewScan("orders", nil, testSchema(), 5), 10)
	if off.EstimatedRowCount() != 0 {
		t.Fatalf("Offset past end should estimate 0, got %d", off.EstimatedRowCount())
	}
}

func TestSortRejectsUnknownColumn(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 100)
	if _, err := NewSort(scan, []SortKey{{Column: "nope"}}); err == nil {
		t.Fatal("expected PlanConstructionError for unknown sort column")
	}
}

func TestStructurallyEqualPlansProduceSameSchema(t *testing.T) {
	build := func() Node {
		scan := NewScan("orders", nil, testSchema(), 100)
		f, _ := NewFilter(scan, []predicate.ColumnPredicate{predicate.NewNumericComparison(1, predicate.OpGT, 10)})
		return f
	}
	a, b := build(), build()
	if a.OutputSchema()[0].Name != b.OutputSchema()[0].Name {
		t.Fatal("structurally equal plans should have equal output schemas")
	}
}

package logicalplan

import (
	"testing"

	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/predicate"
)

func TestMarkFusedAggregatesTagsFilterUnderAggregate(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 100)
	f, err := NewFilter(scan, []predicate.ColumnPredicate{predicate.NewNumericComparison(1, predicate.OpGT, 10)})
	if err != nil {
		t.Fatal(err)
	}
	agg, err := NewAggregate(f, AggSum, "amount", column.DtypeF64)
	if err != nil {
		t.Fatal(err)
	}
	opt := NewOptimizer(nil)
	out := opt.Optimize(agg)
	outAgg := out.(*Aggregate)
	outFilter := outAgg.Child.(*Filter)
	if !outFilter.Fused {
		t.Fatal("expected Filter under Aggregate to be marked Fused")
	}
}

func TestMarkFusedDoesNotTagUnrelatedFilter(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 100)
	f, err := NewFilter(scan, []predicate.ColumnPredicate{predicate.NewNumericComparison(1, predicate.OpGT, 10)})
	if err != nil {
		t.Fatal(err)
	}
	opt := NewOptimizer(nil)
	out := opt.Optimize(f)
	if out.(*Filter).Fused {
		t.Fatal("a Filter with no Aggregate parent should not be marked Fused")
	}
}

func TestReorderPredicatesOrdersBySelectivity(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 100)
	eq := predicate.NewNumericComparison(1, predicate.OpEQ, 5)   // base rate 0.1
	boolish := predicate.NewNumericComparison(1, predicate.OpNE, 5) // same kind, different op — still base 0.1
	isNull := predicate.NewIsNull(0)                              // base rate 0.3, should sort after eq
	f, err := NewFilter(scan, []predicate.ColumnPredicate{isNull, eq, boolish})
	if err != nil {
		t.Fatal(err)
	}
	opt := NewOptimizer(nil)
	out := opt.Optimize(f).(*Filter)
	if predicate.KindOf(out.Predicates[0]) != predicate.KindNumericComparison {
		t.Fatalf("expected a numeric comparison (lower base rate) to sort first, got kind %v", predicate.KindOf(out.Predicates[0]))
	}
	if predicate.KindOf(out.Predicates[2]) != predicate.KindIsNull {
		t.Fatalf("expected IsNull (higher base rate) to sort last, got kind %v", predicate.KindOf(out.Predicates[2]))
	}
}

func TestFilterIntoScanAnnotatesRowRange(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 250)
	f, err := NewFilter(scan, []predicate.ColumnPredicate{predicate.NewNumericComparison(1, predicate.OpGT, 10)})
	if err != nil {
		t.Fatal(err)
	}
	opt := NewOptimizer(nil)
	out := opt.Optimize(f).(*Filter)
	if out.ScanRowRange == nil || out.ScanRowRange[1] != 250 {
		t.Fatalf("expected scan row range annotation covering [0,250), got %+v", out.ScanRowRange)
	}
}

func TestPushFilterThroughProject(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 100)
	proj, err := NewProject(scan, []Projection{
		{SourceColumn: "amount", OutputName: "amt", OutputType: column.DtypeF64},
		{SourceColumn: "name", OutputName: "who", OutputType: column.DtypeUtf8},
	})
	if err != nil {
		t.Fatal(err)
	}
	f, err := NewFilter(proj, []predicate.ColumnPredicate{predicate.NewNumericComparison(0, predicate.OpGT, 10)})
	if err != nil {
		t.Fatal(err)
	}
	opt := NewOptimizer(nil)
	out := opt.Optimize(f)
	newProj, ok := out.(*Project)
	if !ok {
		t.Fatalf("expected filter to be pushed below project, got %T", out)
	}
	pushedFilter, ok := newProj.Child.(*Filter)
	if !ok {
		t.Fatalf("expected project's child to be the pushed-down filter, got %T", newProj.Child)
	}
	if pushedFilter.Predicates[0].ColumnIndex() != 1 {
		t.Fatalf("pushed predicate should be rebound to source column index 1 (amount), got %d",
			pushedFilter.Predicates[0].ColumnIndex())
	}
}

func TestPushFilterThroughProjectSkipsComputedColumn(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 100)
	proj, err := NewProject(scan, []Projection{
		{Computed: "amount * 2", OutputName: "doubled", OutputType: column.DtypeF64},
	})
	if err != nil {
		t.Fatal(err)
	}
	f, err := NewFilter(proj, []predicate.ColumnPredicate{predicate.NewNumericComparison(0, predicate.OpGT, 10)})
	if err != nil {
		t.Fatal(err)
	}
	opt := NewOptimizer(nil)
	out := opt.Optimize(f)
	if _, ok := out.(*Filter); !ok {
		t.Fatalf("a filter over a computed projection must not be pushed down, got %T", out)
	}
}

// TestPushLimitThroughProjectStopsAboveFilter asserts rule 5 pushes a Limit
// through a Project but never past a Filter: pushing it below the Filter
// would truncate raw rows to count before the predicate runs instead of
// limiting the filtered result, changing which (and how many) rows a query
// returns.
func TestPushLimitThroughProjectStopsAboveFilter(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 1000)
	f, err := NewFilter(scan, []predicate.ColumnPredicate{predicate.NewNumericComparison(1, predicate.OpGT, 10)})
	if err != nil {
		t.Fatal(err)
	}
	proj, err := NewProject(f, []Projection{{SourceColumn: "amount", OutputName: "amt", OutputType: column.DtypeF64}})
	if err != nil {
		t.Fatal(err)
	}
	lim := NewLimit(proj, 5)
	opt := NewOptimizer(nil)
	out := opt.Optimize(lim)

	outProj, ok := out.(*Project)
	if !ok {
		t.Fatalf("expected outermost node to remain Project after limit pushdown, got %T", out)
	}
	outLimit, ok := outProj.Child.(*Limit)
	if !ok {
		t.Fatalf("expected limit to be pushed below Project but stop above Filter, got %T", outProj.Child)
	}
	if outLimit.Count != 5 {
		t.Fatalf("pushed limit count = %d, want 5", outLimit.Count)
	}
	if _, ok := outLimit.Child.(*Filter); !ok {
		t.Fatalf("limit must stop directly above Filter, got child %T", outLimit.Child)
	}
}

func TestLimitDoesNotPushThroughSort(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 1000)
	srt, err := NewSort(scan, []SortKey{{Column: "amount"}})
	if err != nil {
		t.Fatal(err)
	}
	lim := NewLimit(srt, 5)
	opt := NewOptimizer(nil)
	out := opt.Optimize(lim)
	outLimit, ok := out.(*Limit)
	if !ok {
		t.Fatalf("expected outermost node to remain Limit, got %T", out)
	}
	if _, ok := outLimit.Child.(*Sort); !ok {
		t.Fatalf("limit must not push through a Sort, child is %T", outLimit.Child)
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	build := func() Node {
		scan := NewScan("orders", nil, testSchema(), 1000)
		f, _ := NewFilter(scan, []predicate.ColumnPredicate{
			predicate.NewIsNull(0),
			predicate.NewNumericComparison(1, predicate.OpGT, 10),
		})
		proj, _ := NewProject(f, []Projection{{SourceColumn: "amount", OutputName: "amt", OutputType: column.DtypeF64}})
		return NewLimit(proj, 5)
	}
	opt := NewOptimizer(nil)
	once := describePlan(opt.Optimize(build()))
	twice := describePlan(opt.Optimize(opt.Optimize(build())))
	if once != twice {
		t.Fatalf("Optimize should be idempotent: once=%s twice=%s", once, twice)
	}
}

func describePlan(n Node) string {
	s := n.String()
	for _, c := range n.Children() {
		s += " -> " + describePlan(c)
	}
	return s
}

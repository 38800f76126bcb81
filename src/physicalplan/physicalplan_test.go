package physicalplan

import (
	"testing"

	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/logicalplan"
	"github.com/arrowkit/arrowkit/src/predicate"
)

func testSchema() column.TableSchema {
	return column.TableSchema{
		{Name: "id", Dtype: column.DtypeI64},
		{Name: "amount", Dtype: column.DtypeF64},
		{Name: "name", Dtype: column.DtypeUtf8},
	}
}

func filterOver(rowCount uint64) *logicalplan.Filter {
	scan := logicalplan.NewScan("orders", nil, testSchema(), rowCount)
	f, err := logicalplan.NewFilter(scan, []predicate.ColumnPredicate{predicate.NewNumericComparison(1, predicate.OpGT, 10)})
	if err != nil {
		panic(err)
	}
	return f
}

func TestChooseFilterStrategySequentialBelowThreshold(t *testing.T) {
	p := NewPlanner(DefaultThresholds(), nil)
	plan := p.Plan(filterOver(500))
	if plan.Filter != FilterSequential {
		t.Fatalf("expected Sequential for 500 rows, got %v", plan.Filter)
	}
}

func TestChooseFilterStrategyParallelAboveThreshold(t *testing.T) {
	p := NewPlanner(DefaultThresholds(), nil)
	plan := p.Plan(filterOver(100000))
	if plan.Filter != FilterParallel {
		t.Fatalf("expected Parallel for 100000 rows, got %v", plan.Filter)
	}
}

func TestPlanCarriesConfiguredWorkerCount(t *testing.T) {
	th := DefaultThresholds()
	th.WorkerCount = 3
	p := NewPlanner(th, nil)
	plan := p.Plan(filterOver(500))
	if plan.WorkerCount != 3 {
		t.Fatalf("expected WorkerCount 3 on the planned node, got %d", plan.WorkerCount)
	}
}

func TestChooseFilterStrategyMiddleBand(t *testing.T) {
	p := NewPlanner(DefaultThresholds(), nil)
	plan := p.Plan(filterOver(10000))
	if plan.Filter != FilterSIMD && plan.Filter != FilterSequential {
		t.Fatalf("middle band must choose SIMD (capable hardware) or Sequential (fallback), got %v", plan.Filter)
	}
}

type stubSortedHints struct{ sorted map[string]bool }

func (s stubSortedHints) IsSorted(col string) bool { return s.sorted[col] }

func TestGroupBySortedHintChoosesSortedAggregate(t *testing.T) {
	scan := logicalplan.NewScan("orders", nil, testSchema(), 1000)
	gb, err := logicalplan.NewGroupBy(scan, "name", []logicalplan.GroupAggregation{
		{Op: logicalplan.AggSum, Column: "amount", OutputName: "total", OutputType: column.DtypeF64},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlanner(DefaultThresholds(), stubSortedHints{sorted: map[string]bool{"name": true}})
	plan := p.Plan(gb)
	if plan.GroupBy != GroupBySortedAggregate {
		t.Fatalf("expected SortedAggregate when the key column has a sorted hint, got %v", plan.GroupBy)
	}
}

func TestGroupByDefaultsToHashAggregate(t *testing.T) {
	scan := logicalplan.NewScan("orders", nil, testSchema(), 1000)
	gb, err := logicalplan.NewGroupBy(scan, "name", []logicalplan.GroupAggregation{
		{Op: logicalplan.AggCount, OutputName: "n", OutputType: column.DtypeI64},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlanner(DefaultThresholds(), nil)
	plan := p.Plan(gb)
	if plan.GroupBy != GroupByHashAggregate {
		t.Fatalf("expected HashAggregate by default, got %v", plan.GroupBy)
	}
}

func TestFusedAggregateCollapsesFilterNode(t *testing.T) {
	f := filterOver(100000)
	f.Fused = true
	agg, err := logicalplan.NewAggregate(f, logicalplan.AggSum, "amount", column.DtypeF64)
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlanner(DefaultThresholds(), nil)
	plan := p.Plan(agg)
	if !plan.FusedFilter {
		t.Fatal("expected FusedFilter=true when child Filter is marked Fused")
	}
	if len(plan.Children) != 1 {
		t.Fatalf("expected exactly one child (the collapsed scan), got %d", len(plan.Children))
	}
	if _, ok := plan.Children[0].Node.(*logicalplan.Scan); !ok {
		t.Fatalf("expected the fused plan's child to be the Scan directly, got %T", plan.Children[0].Node)
	}
	if plan.Filter != FilterParallel {
		t.Fatalf("fused filter strategy should use the filter's input row-count estimate, got %v", plan.Filter)
	}
}

func TestNonFusedAggregateKeepsFilterNode(t *testing.T) {
	f := filterOver(100000)
	agg, err := logicalplan.NewAggregate(f, logicalplan.AggSum, "amount", column.DtypeF64)
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlanner(DefaultThresholds(), nil)
	plan := p.Plan(agg)
	if plan.FusedFilter {
		t.Fatal("expected FusedFilter=false when child Filter is not marked Fused")
	}
	if _, ok := plan.Children[0].Node.(*logicalplan.Filter); !ok {
		t.Fatalf("expected Aggregate's planned child to remain the Filter, got %T", plan.Children[0].Node)
	}
}

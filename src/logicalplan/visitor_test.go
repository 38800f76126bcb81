package logicalplan

import (
	"testing"

	"github.com/arrowkit/arrowkit/src/predicate"
)

type countingReducer struct{}

func (countingReducer) Visit(n Node, childResults []int, acc int) int {
	total := 1
	for _, c := range childResults {
		total += c
	}
	return total
}

func TestReduceCountsNodes(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 100)
	f, err := NewFilter(scan, []predicate.ColumnPredicate{predicate.NewNumericComparison(1, predicate.OpGT, 10)})
	if err != nil {
		t.Fatal(err)
	}
	proj, err := NewProject(f, []Projection{{SourceColumn: "amount", OutputName: "amt", OutputType: f.OutputSchema()[1].Dtype}})
	if err != nil {
		t.Fatal(err)
	}
	count := Reduce[int](proj, countingReducer{}, 0)
	if count != 3 {
		t.Fatalf("Reduce node count = %d, want 3 (Scan, Filter, Project)", count)
	}
}

func TestApplyIdentityTransformerIsReferenceEqual(t *testing.T) {
	scan := NewScan("orders", nil, testSchema(), 100)
	f, err := NewFilter(scan, []predicate.ColumnPredicate{predicate.NewNumericComparison(1, predicate.OpGT, 10)})
	if err != nil {
		t.Fatal(err)
	}
	out := Apply(f, IdentityTransformer{})
	if out != Node(f) {
		t.Fatal("IdentityTransformer must return the exact same node when nothing changes")
	}
}

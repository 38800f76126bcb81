// Package physicalplan chooses execution strategies for a logical plan's
// operators. Strategy selection is metadata only — it never changes an
// operator's semantics, only which kernel in the exec package runs it.
package physicalplan

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"

	"github.com/arrowkit/arrowkit/src/logicalplan"
)

// FilterStrategy names the kernel chosen for a Filter or a
// FusedAggregate's predicate half.
type FilterStrategy int

const (
	FilterSequential FilterStrategy = iota
	FilterSIMD
	FilterParallel
)

func (s FilterStrategy) String() string {
	switch s {
	case FilterSequential:
		return "Sequential"
	case FilterSIMD:
		return "SIMD"
	case FilterParallel:
		return "Parallel"
	default:
		return "unknown"
	}
}

// GroupByStrategy names the kernel chosen for a GroupBy.
type GroupByStrategy int

const (
	GroupByHashAggregate GroupByStrategy = iota
	GroupBySortedAggregate
)

func (s GroupByStrategy) String() string {
	if s == GroupBySortedAggregate {
		return "SortedAggregate"
	}
	return "HashAggregate"
}

// Thresholds holds the row-count cutoffs that drive strategy selection
// (spec.md §4.6: Sequential < 1000, Parallel >= 50000, else SIMD), plus the
// worker cap the parallel filter kernel is built against.
type Thresholds struct {
	SIMDRowThreshold     uint64
	ParallelRowThreshold uint64
	ChunkSize            int
	// WorkerCount bounds how many chunk goroutines the parallel filter
	// kernel may run concurrently. Zero means unbounded.
	WorkerCount int
}

// DefaultThresholds matches the engine's documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{SIMDRowThreshold: 1000, ParallelRowThreshold: 50000, ChunkSize: 16384, WorkerCount: runtime.NumCPU()}
}

// SortedHintLookup reports whether a column has a sorted hint supplied by
// the snapshot's metadata, letting GroupBy choose SortedAggregate safely.
type SortedHintLookup interface {
	IsSorted(columnName string) bool
}

// Planner turns a logical plan into a Plan tree of strategy-annotated
// nodes. It consults cpuid to decide whether the SIMD filter path is
// actually available on this hardware; when it is not, every SIMD
// selection downgrades to Sequential, which must remain numerically
// identical to the vectorized path (spec.md §4.3/§9).
type Planner struct {
	Thresholds   Thresholds
	SortedHints  SortedHintLookup
	simdCapable  bool
}

func NewPlanner(thresholds Thresholds, sortedHints SortedHintLookup) *Planner {
	return &Planner{
		Thresholds:  thresholds,
		SortedHints: sortedHints,
		simdCapable: detectSIMDCapable(),
	}
}

func detectSIMDCapable() bool {
	return cpuid.CPU.Supports(cpuid.SSE2) || cpuid.CPU.Supports(cpuid.AVX) || cpuid.CPU.Supports(cpuid.AVX2)
}

// Plan wraps a logical node with the strategy chosen for it, plus its
// already-planned children (so the exec package never has to re-derive
// strategy from row-count estimates at execution time).
type Plan struct {
	Node     logicalplan.Node
	Children []*Plan

	// The following are populated according to Node's concrete type;
	// zero-valued and ignored for node types the field doesn't apply to.
	Filter      FilterStrategy
	FusedFilter bool // true when this Aggregate's predicate child was folded in
	GroupBy     GroupByStrategy
	// WorkerCount is the planner's configured parallel-filter worker cap,
	// carried on every node so the exec package never has to thread a
	// separate config value alongside the plan.
	WorkerCount int
}

// Plan walks node bottom-up, annotating each Filter/Aggregate/GroupBy
// with its chosen strategy.
func (p *Planner) Plan(node logicalplan.Node) *Plan {
	// A fused Aggregate's Filter child is subsumed by the FusedAggregate
	// kernel, so the planned tree skips straight past it: the Aggregate's
	// sole child becomes the Filter's own child, not the Filter itself.
	if agg, ok := node.(*logicalplan.Aggregate); ok {
		if f, ok := agg.Child.(*logicalplan.Filter); ok && f.Fused {
			plan := &Plan{Node: node, Children: []*Plan{p.Plan(f.Child)}, WorkerCount: p.Thresholds.WorkerCount}
			plan.FusedFilter = true
			plan.Filter = p.chooseFilterStrategy(f.Child.EstimatedRowCount())
			return plan
		}
	}

	children := make([]*Plan, 0, len(node.Children()))
	for _, c := range node.Children() {
		children = append(children, p.Plan(c))
	}
	plan := &Plan{Node: node, Children: children, WorkerCount: p.Thresholds.WorkerCount}

	switch n := node.(type) {
	case *logicalplan.Filter:
		plan.Filter = p.chooseFilterStrategy(n.Child.EstimatedRowCount())
	case *logicalplan.GroupBy:
		plan.GroupBy = p.chooseGroupByStrategy(n.GroupColumn)
	}
	return plan
}

func (p *Planner) chooseFilterStrategy(estimatedRowCount uint64) FilterStrategy {
	th := p.Thresholds
	switch {
	case estimatedRowCount < th.SIMDRowThreshold:
		return FilterSequential
	case estimatedRowCount >= th.ParallelRowThreshold:
		return FilterParallel
	default:
		if p.simdCapable {
			return FilterSIMD
		}
		return FilterSequential
	}
}

func (p *Planner) chooseGroupByStrategy(groupColumn string) GroupByStrategy {
	if p.SortedHints != nil && p.SortedHints.IsSorted(groupColumn) {
		return GroupBySortedAggregate
	}
	return GroupByHashAggregate
}

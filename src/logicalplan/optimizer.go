package logicalplan

import (
	"sort"

	"github.com/arrowkit/arrowkit/src/predicate"
	"github.com/arrowkit/arrowkit/src/zonemap"
)

// ZoneMapLookup resolves the zone map for a column index, when one exists
// (string/bool columns have none). The optimizer's predicate-reordering rule uses this to compute a
// coverage-based selectivity score instead of falling back to a predicate
// kind's base rate.
type ZoneMapLookup interface {
	ZoneMapFor(columnIndex int) (*zonemap.Map, bool)
}

// Optimizer applies the five rewrite rules listed on Optimize below to a
// logical plan. Every rule is pure: it depends only on
// its input node (and, for predicate reordering, the read-only zone-map
// lookup), never on hidden state, so two calls to Optimize on
// structurally-equal input always produce structurally-equal output.
type Optimizer struct {
	ZoneMaps ZoneMapLookup
}

func NewOptimizer(zoneMaps ZoneMapLookup) *Optimizer {
	return &Optimizer{ZoneMaps: zoneMaps}
}

// Optimize rewrites plan by applying, in order: fused-operator marking,
// predicate reordering, filter pushdown through project, and limit
// pushdown through project (stopping above any filter). Filter-into-scan
// merge is folded into
// the predicate-reordering pass since it only needs to inspect a Filter's
// immediate child.
//
// Each rule is idempotent on its own and the rules commute in this order,
// so a single pass already reaches the fixed point; Optimize is still
// safe to call repeatedly (Optimize(Optimize(p)) == Optimize(p)).
func (o *Optimizer) Optimize(plan Node) Node {
	plan = markFusedAggregates(plan)
	plan = reorderPredicates(plan, o.ZoneMaps)
	plan = pushFilterThroughProject(plan)
	plan = pushLimitPastProjectAndFilter(plan)
	return plan
}

// markFusedAggregates tags any Filter whose sole consumer is an Aggregate
// node so the physical planner can later choose a FusedAggregate kernel
// (rule 4). This needs parent context, so it is its own top-down pass
// rather than a bottom-up Transformer.
func markFusedAggregates(n Node) Node {
	agg, ok := n.(*Aggregate)
	if !ok {
		return rebuildWithTransformedChildren(n, markFusedAggregates)
	}
	child := markFusedAggregates(agg.Child)
	if f, ok := child.(*Filter); ok && !f.Fused {
		child = &Filter{Child: f.Child, Predicates: f.Predicates, EstimatedSelectivity: f.EstimatedSelectivity, Fused: true, ScanRowRange: f.ScanRowRange}
	}
	if child == agg.Child {
		return agg
	}
	return &Aggregate{Child: child, Op: agg.Op, Column: agg.Column, OutputType: agg.OutputType}
}

// rebuildWithTransformedChildren recurses into n's children with fn and
// rebuilds n only if a child actually changed, preserving the
// unchanged-node-is-reference-equal contract.
func rebuildWithTransformedChildren(n Node, fn func(Node) Node) Node {
	switch t := n.(type) {
	case *Scan:
		return t
	case *Filter:
		child := fn(t.Child)
		if child == t.Child {
			return t
		}
		return &Filter{Child: child, Predicates: t.Predicates, EstimatedSelectivity: t.EstimatedSelectivity, Fused: t.Fused, ScanRowRange: t.ScanRowRange}
	case *Project:
		child := fn(t.Child)
		if child == t.Child {
			return t
		}
		return &Project{Child: child, Projections: t.Projections}
	case *Aggregate:
		child := fn(t.Child)
		if child == t.Child {
			return t
		}
		return &Aggregate{Child: child, Op: t.Op, Column: t.Column, OutputType: t.OutputType}
	case *GroupBy:
		child := fn(t.Child)
		if child == t.Child {
			return t
		}
		return &GroupBy{Child: child, GroupColumn: t.GroupColumn, KeyType: t.KeyType, Aggregations: t.Aggregations, KeyPropertyName: t.KeyPropertyName, estimatedGroups: t.estimatedGroups}
	case *Limit:
		child := fn(t.Child)
		if child == t.Child {
			return t
		}
		return &Limit{Child: child, Count: t.Count}
	case *Offset:
		child := fn(t.Child)
		if child == t.Child {
			return t
		}
		return &Offset{Child: child, Count: t.Count}
	case *Sort:
		child := fn(t.Child)
		if child == t.Child {
			return t
		}
		return &Sort{Child: child, Orderings: t.Orderings}
	case *Distinct:
		child := fn(t.Child)
		if child == t.Child {
			return t
		}
		return &Distinct{Child: child}
	default:
		return n
	}
}

// selectivityScore computes rule 1's ordering key for predicate p bound to
// a column scanned from the given source schema: zone-map chunk-pruning
// coverage when a zone map is available for the column, else the
// predicate kind's base rate.
func selectivityScore(p predicate.ColumnPredicate, zm ZoneMapLookup) float64 {
	if zm == nil {
		return p.EstimatedSelectivity()
	}
	m, ok := zm.ZoneMapFor(p.ColumnIndex())
	if !ok || m.NumChunks() == 0 {
		return p.EstimatedSelectivity()
	}
	prunable := 0
	for c := 0; c < m.NumChunks(); c++ {
		if !p.MayContainMatches(m.Entry(c), true) {
			prunable++
		}
	}
	return 1 - float64(prunable)/float64(m.NumChunks())
}

// reorderPredicates implements rule 1 (reorder by ascending selectivity
// score, ties broken by kind then column index) and rule 2 (annotate a
// Filter directly over a Scan with that scan's row range).
func reorderPredicates(n Node, zm ZoneMapLookup) Node {
	n = rebuildWithTransformedChildren(n, func(c Node) Node { return reorderPredicates(c, zm) })
	f, ok := n.(*Filter)
	if !ok {
		return n
	}

	reordered := make([]predicate.ColumnPredicate, len(f.Predicates))
	copy(reordered, f.Predicates)
	sort.SliceStable(reordered, func(i, j int) bool {
		si, sj := selectivityScore(reordered[i], zm), selectivityScore(reordered[j], zm)
		if si != sj {
			return si < sj
		}
		ki, kj := predicate.KindOf(reordered[i]), predicate.KindOf(reordered[j])
		if ki != kj {
			return ki < kj
		}
		return reordered[i].ColumnIndex() < reordered[j].ColumnIndex()
	})

	var rowRange *[2]int
	if scan, ok := f.Child.(*Scan); ok {
		rowRange = &[2]int{0, int(scan.ExactRowCount)}
	}

	changed := rowRange != nil && f.ScanRowRange == nil
	for i := range reordered {
		if reordered[i] != f.Predicates[i] {
			changed = true
			break
		}
	}
	if !changed {
		return f
	}
	return &Filter{Child: f.Child, Predicates: reordered, EstimatedSelectivity: f.EstimatedSelectivity, Fused: f.Fused, ScanRowRange: rowRange}
}

// pushFilterThroughProject implements rule 3: a Filter directly above a
// Project is swapped below it when every predicate's column survives the
// projection as an uncomputed, identity-or-renamed source column.
func pushFilterThroughProject(n Node) Node {
	n = rebuildWithTransformedChildren(n, pushFilterThroughProject)
	f, ok := n.(*Filter)
	if !ok {
		return n
	}
	proj, ok := f.Child.(*Project)
	if !ok {
		return n
	}

	childSchema := proj.Child.OutputSchema()
	remapped := make([]predicate.ColumnPredicate, len(f.Predicates))
	for i, p := range f.Predicates {
		if p.ColumnIndex() >= len(proj.Projections) {
			return n
		}
		outProj := proj.Projections[p.ColumnIndex()]
		if outProj.Computed != "" {
			return n // a computed column cannot be pushed below the project
		}
		srcIdx, _, err := childSchema.LocateColumn(outProj.SourceColumn)
		if err != nil {
			return n
		}
		remapped[i] = rebindColumnIndex(p, srcIdx)
	}

	pushedFilter, err := NewFilter(proj.Child, remapped)
	if err != nil {
		return n
	}
	newProj, err := NewProject(pushedFilter, proj.Projections)
	if err != nil {
		return n
	}
	return newProj
}

// rebindColumnIndex returns a copy of p bound to a new column index. Every
// predicate.ColumnPredicate variant in this engine is rebound by
// reconstructing it via its own constructor rather than mutating a field
// in place — there is deliberately no setter for a predicate's column
// index (see predicate.ColumnPredicate's doc comment).
func rebindColumnIndex(p predicate.ColumnPredicate, newIndex int) predicate.ColumnPredicate {
	switch v := p.(type) {
	case *predicate.NumericComparison:
		return predicate.NewNumericComparison(newIndex, v.Op(), v.Constant())
	case *predicate.Range:
		lo, hi, loInc, hiInc := v.Bounds()
		return predicate.NewRange(newIndex, lo, hi, loInc, hiInc)
	case *predicate.IsNull:
		return predicate.NewIsNull(newIndex)
	case *predicate.IsNotNull:
		return predicate.NewIsNotNull(newIndex)
	case *predicate.StringEquality:
		return predicate.NewStringEquality(newIndex, v.Constant())
	case *predicate.StringStartsWith:
		return predicate.NewStringStartsWith(newIndex, v.Prefix())
	case *predicate.StringEndsWith:
		return predicate.NewStringEndsWith(newIndex, v.Suffix())
	case *predicate.StringContains:
		return predicate.NewStringContains(newIndex, v.Substr())
	case *predicate.BoolTest:
		return predicate.NewBoolTest(newIndex, v.Want())
	default:
		// Compound predicates (And/Or/Not) are not pushed individually:
		// the translator never emits a cross-column compound, so this
		// path is unreached in practice; return p unchanged rather than
		// silently dropping a rewrite we can't express.
		return p
	}
}

// pushLimitPastProjectAndFilter implements rule 5: a Limit is pushed down
// through an uninterrupted run of Project nodes only, stopping above a
// Filter (and above Sort, Scan, Aggregate, GroupBy, Distinct). Pushing a
// Limit past a Filter would truncate the unfiltered rows to count before
// the predicate runs instead of limiting the filtered result, changing
// which rows (and how many) the query returns — exactly the row-count/
// row-identity drift Optimize must never introduce.
func pushLimitPastProjectAndFilter(n Node) Node {
	n = rebuildWithTransformedChildren(n, pushLimitPastProjectAndFilter)
	lim, ok := n.(*Limit)
	if !ok {
		return n
	}
	rebuilt, pushed := pushLimitOneStep(lim.Child, lim.Count)
	if !pushed {
		return n
	}
	return rebuilt
}

// pushLimitOneStep pushes a Limit(count) down through a chain of zero or
// more Project nodes, placing it directly above the first non-Project
// node it reaches. It never recurses into a Filter's child: a Filter (or
// any other node) is a stopping point, not a node the limit is pushed
// through.
func pushLimitOneStep(child Node, count uint64) (Node, bool) {
	proj, ok := child.(*Project)
	if !ok {
		return nil, false
	}
	inner, pushed := pushLimitOneStep(proj.Child, count)
	if !pushed {
		inner = NewLimit(proj.Child, count)
	}
	np, err := NewProject(inner, proj.Projections)
	if err != nil {
		return nil, false
	}
	return np, true
}

package logicalplan

// Transformer rewrites a plan tree bottom-up. VisitX returns the
// (possibly) new node for each variant; per the package contract, a
// Transformer that makes no change to a node must return the exact same
// Node value it was handed, so Apply can detect a fixed point by pointer
// comparison rather than deep equality.
type Transformer interface {
	VisitScan(n *Scan) Node
	VisitFilter(n *Filter) Node
	VisitProject(n *Project) Node
	VisitAggregate(n *Aggregate) Node
	VisitGroupBy(n *GroupBy) Node
	VisitLimit(n *Limit) Node
	VisitOffset(n *Offset) Node
	VisitSort(n *Sort) Node
	VisitDistinct(n *Distinct) Node
}

// Apply runs t over node bottom-up: children are transformed first, then
// the (possibly rebuilt) node is passed to the matching VisitX method.
func Apply(node Node, t Transformer) Node {
	switch n := node.(type) {
	case *Scan:
		return t.VisitScan(n)
	case *Filter:
		child := Apply(n.Child, t)
		if child != n.Child {
			n = &Filter{Child: child, Predicates: n.Predicates, EstimatedSelectivity: n.EstimatedSelectivity, Fused: n.Fused}
		}
		return t.VisitFilter(n)
	case *Project:
		child := Apply(n.Child, t)
		if child != n.Child {
			n = &Project{Child: child, Projections: n.Projections}
		}
		return t.VisitProject(n)
	case *Aggregate:
		child := Apply(n.Child, t)
		if child != n.Child {
			n = &Aggregate{Child: child, Op: n.Op, Column: n.Column, OutputType: n.OutputType}
		}
		return t.VisitAggregate(n)
	case *GroupBy:
		child := Apply(n.Child, t)
		if child != n.Child {
			n = &GroupBy{
				Child: child, GroupColumn: n.GroupColumn, KeyType: n.KeyType,
				Aggregations: n.Aggregations, KeyPropertyName: n.KeyPropertyName,
				estimatedGroups: n.estimatedGroups,
			}
		}
		return t.VisitGroupBy(n)
	case *Limit:
		child := Apply(n.Child, t)
		if child != n.Child {
			n = &Limit{Child: child, Count: n.Count}
		}
		return t.VisitLimit(n)
	case *Offset:
		child := Apply(n.Child, t)
		if child != n.Child {
			n = &Offset{Child: child, Count: n.Count}
		}
		return t.VisitOffset(n)
	case *Sort:
		child := Apply(n.Child, t)
		if child != n.Child {
			n = &Sort{Child: child, Orderings: n.Orderings}
		}
		return t.VisitSort(n)
	case *Distinct:
		child := Apply(n.Child, t)
		if child != n.Child {
			n = &Distinct{Child: child}
		}
		return t.VisitDistinct(n)
	default:
		return node
	}
}

// IdentityTransformer is embedded by rules that only override the VisitX
// methods relevant to their rewrite, leaving the rest as pure passthrough
// (returning the exact node they were given, preserving the reference
// equality a Transformer must honor for unchanged nodes).
type IdentityTransformer struct{}

func (IdentityTransformer) VisitScan(n *Scan) Node           { return n }
func (IdentityTransformer) VisitFilter(n *Filter) Node       { return n }
func (IdentityTransformer) VisitProject(n *Project) Node     { return n }
func (IdentityTransformer) VisitAggregate(n *Aggregate) Node { return n }
func (IdentityTransformer) VisitGroupBy(n *GroupBy) Node     { return n }
func (IdentityTransformer) VisitLimit(n *Limit) Node         { return n }
func (IdentityTransformer) VisitOffset(n *Offset) Node       { return n }
func (IdentityTransformer) VisitSort(n *Sort) Node           { return n }
func (IdentityTransformer) VisitDistinct(n *Distinct) Node   { return n }

// Reducer folds a plan tree into a single accumulated value; Reduce visits
// every node post-order, threading acc through each visit.
type Reducer[T any] interface {
	Visit(n Node, childResults []T, acc T) T
}

// Reduce walks node post-order, calling r.Visit once per node with the
// already-computed results of its children.
func Reduce[T any](node Node, r Reducer[T], acc T) T {
	children := node.Children()
	childResults := make([]T, len(children))
	for i, c := range children {
		childResults[i] = Reduce(c, r, acc)
	}
	return r.Visit(node, childResults, acc)
}

package predicate

import (
	"github.com/arrowkit/arrowkit/src/bitmap"
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/zonemap"
)

// And matches rows satisfying every child predicate. All children must be
// bound to the same column index (a cross-column AND is expressed at the
// Filter node as a list of predicates, not as a compound predicate — see
// the logicalplan package).
type And struct {
	columnIndex int
	children    []ColumnPredicate
}

func NewAnd(columnIndex int, children ...ColumnPredicate) *And {
	return &And{columnIndex: columnIndex, children: children}
}

func (p *And) ColumnIndex() int { return p.columnIndex }
func (p *And) Kind() Kind       { return KindAnd }

func (p *And) EstimatedSelectivity() float64 {
	s := 1.0
	for _, c := range p.children {
		s *= c.EstimatedSelectivity()
	}
	return s
}

func (p *And) MayContainMatches(entry zonemap.Entry, hasZoneMap bool) bool {
	for _, c := range p.children {
		if !c.MayContainMatches(entry, hasZoneMap) {
			return false
		}
	}
	return true
}

func (p *And) Evaluate(chunk column.Chunk, sel *bitmap.Bitmap, start, end int) {
	for _, c := range p.children {
		c.Evaluate(chunk, sel, start, end)
	}
}

// Or matches rows satisfying at least one child predicate.
type Or struct {
	columnIndex int
	children    []ColumnPredicate
}

func NewOr(columnIndex int, children ...ColumnPredicate) *Or {
	return &Or{columnIndex: columnIndex, children: children}
}

func (p *Or) ColumnIndex() int { return p.columnIndex }
func (p *Or) Kind() Kind       { return KindOr }

func (p *Or) EstimatedSelectivity() float64 {
	s := 0.0
	for _, c := range p.children {
		cs := c.EstimatedSelectivity()
		s = s + cs - s*cs
	}
	return s
}

func (p *Or) MayContainMatches(entry zonemap.Entry, hasZoneMap bool) bool {
	for _, c := range p.children {
		if c.MayContainMatches(entry, hasZoneMap) {
			return true
		}
	}
	return false
}

func (p *Or) Evaluate(chunk column.Chunk, sel *bitmap.Bitmap, start, end int) {
	matched := bitmap.New(sel.Len(), false)
	for _, c := range p.children {
		branch := sel.Clone()
		c.Evaluate(chunk, branch, start, end)
		matched.Or(branch)
		branch.Release()
	}
	for i := start; i < end; i++ {
		if !matched.Get(i) {
			sel.Clear(i)
		}
	}
	matched.Release()
}

// Not matches rows that do not satisfy the single child predicate.
type Not struct {
	columnIndex int
	child       ColumnPredicate
}

func NewNot(columnIndex int, child ColumnPredicate) *Not {
	return &Not{columnIndex: columnIndex, child: child}
}

func (p *Not) ColumnIndex() int { return p.columnIndex }
func (p *Not) Kind() Kind       { return KindNot }

func (p *Not) EstimatedSelectivity() float64 { return 1 - p.child.EstimatedSelectivity() }

// MayContainMatches: negation cannot be pruned from the child's bound in
// general (a chunk the child zone-map-excludes may still be fully
// included by its negation), so this conservatively always returns true.
func (p *Not) MayContainMatches(entry zonemap.Entry, hasZoneMap bool) bool { return true }

func (p *Not) Evaluate(chunk column.Chunk, sel *bitmap.Bitmap, start, end int) {
	branch := sel.Clone()
	p.child.Evaluate(chunk, branch, start, end)
	for i := start; i < end; i++ {
		if branch.Get(i) {
			sel.Clear(i)
		}
	}
	branch.Release()
}

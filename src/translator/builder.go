package translator

import (
	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/logicalplan"
	"github.com/arrowkit/arrowkit/src/predicate"
)

// Builder assembles a Query via chained method calls, mirroring a
// LINQ-style fluent surface (Where/Select/GroupBy/Take/Skip/OrderBy/
// Distinct/terminal op). Each call returns the same *Builder so calls
// chain; Build() yields the finished Query for Translate.
type Builder struct {
	q Query
}

// NewBuilder starts a fresh query builder.
func NewBuilder() *Builder { return &Builder{} }

// Where conjoins expr with any predicates already queued; repeated calls
// to Where are ANDed together, matching the surface language's chained
// Where(...).Where(...) idiom.
func (b *Builder) Where(expr PredExpr) *Builder {
	b.q.Where = append(b.q.Where, expr)
	return b
}

// Select sets the projection shape.
func (b *Builder) Select(projections ...Projection) *Builder {
	b.q.Select = projections
	return b
}

// GroupBy sets the grouping key and shape together, matching the surface
// language's GroupBy(keySelector).Select(groupShape) pattern collapsed
// into one call since this builder has no separate intermediate type for
// a grouping in progress.
func (b *Builder) GroupBy(keyColumn string, shape ...GroupShapeMember) *Builder {
	b.q.GroupBy = &GroupByClause{KeyColumn: keyColumn, Shape: shape}
	return b
}

// Take sets a row limit.
func (b *Builder) Take(n uint64) *Builder {
	b.q.Take = &n
	return b
}

// Skip sets a row offset.
func (b *Builder) Skip(n uint64) *Builder {
	b.q.Skip = &n
	return b
}

// OrderBy appends a sort key; repeated calls build a multi-key sort in
// call order, matching OrderBy(...).ThenBy(...) chains.
func (b *Builder) OrderBy(column string, descending bool) *Builder {
	b.q.OrderBy = append(b.q.OrderBy, logicalplan.SortKey{Column: column, Descending: descending})
	return b
}

// Distinct marks the query to deduplicate rows.
func (b *Builder) Distinct() *Builder {
	b.q.Distinct = true
	return b
}

func (b *Builder) terminal(t Terminal) Query {
	b.q.Terminal = t
	return b.q
}

func (b *Builder) Count() Query   { return b.terminal(TerminalCount) }
func (b *Builder) Any() Query     { return b.terminal(TerminalAny) }
func (b *Builder) First() Query   { return b.terminal(TerminalFirst) }
func (b *Builder) Sum() Query     { return b.terminal(TerminalSum) }
func (b *Builder) Average() Query { return b.terminal(TerminalAverage) }
func (b *Builder) Min() Query     { return b.terminal(TerminalMin) }
func (b *Builder) Max() Query     { return b.terminal(TerminalMax) }
func (b *Builder) ToList() Query  { return b.terminal(TerminalToList) }
func (b *Builder) ToArray() Query { return b.terminal(TerminalToArray) }

// Build finishes the query without a terminal operation: the caller
// wants every materialized row (a bare ToList-equivalent default).
func (b *Builder) Build() Query { return b.q }

// Expression constructors used to build PredExpr trees fluently.

func Eq(col string, v float64) PredExpr {
	return PredExpr{Kind: PredComparison, Column: col, Op: predicate.OpEQ, Constant: v}
}
func Ne(col string, v float64) PredExpr {
	return PredExpr{Kind: PredComparison, Column: col, Op: predicate.OpNE, Constant: v}
}
func Lt(col string, v float64) PredExpr {
	return PredExpr{Kind: PredComparison, Column: col, Op: predicate.OpLT, Constant: v}
}
func Le(col string, v float64) PredExpr {
	return PredExpr{Kind: PredComparison, Column: col, Op: predicate.OpLE, Constant: v}
}
func Gt(col string, v float64) PredExpr {
	return PredExpr{Kind: PredComparison, Column: col, Op: predicate.OpGT, Constant: v}
}
func Ge(col string, v float64) PredExpr {
	return PredExpr{Kind: PredComparison, Column: col, Op: predicate.OpGE, Constant: v}
}

func Between(col string, lo, hi float64, loIncl, hiIncl bool) PredExpr {
	return PredExpr{Kind: PredRange, Column: col, RangeLo: lo, RangeHi: hi, RangeLoIncl: loIncl, RangeHiIncl: hiIncl}
}

func IsNull(col string) PredExpr    { return PredExpr{Kind: PredIsNull, Column: col} }
func IsNotNull(col string) PredExpr { return PredExpr{Kind: PredIsNotNull, Column: col} }

func StrEq(col, v string) PredExpr {
	return PredExpr{Kind: PredString, Column: col, StringConstant: v, StringMode: StringEquals}
}
func StartsWith(col, v string) PredExpr {
	return PredExpr{Kind: PredString, Column: col, StringConstant: v, StringMode: StringStartsWith}
}
func EndsWith(col, v string) PredExpr {
	return PredExpr{Kind: PredString, Column: col, StringConstant: v, StringMode: StringEndsWith}
}
func Contains(col, v string) PredExpr {
	return PredExpr{Kind: PredString, Column: col, StringConstant: v, StringMode: StringContains}
}

func BoolIs(col string, want predicate.BoolWant) PredExpr {
	return PredExpr{Kind: PredBool, Column: col, BoolWant: want}
}

func And(exprs ...PredExpr) PredExpr { return PredExpr{Kind: PredAnd, Children: exprs} }
func Or(exprs ...PredExpr) PredExpr  { return PredExpr{Kind: PredOr, Children: exprs} }
func Not(expr PredExpr) PredExpr     { return PredExpr{Kind: PredNot, Children: []PredExpr{expr}} }

// Col builds an identity/rename projection.
func Col(sourceColumn, outputName string, outputType column.Dtype) Projection {
	return Projection{SourceColumn: sourceColumn, OutputName: outputName, OutputType: outputType}
}

// Computed builds a deferred-expression projection.
func Computed(expr, outputName string, outputType column.Dtype) Projection {
	return Projection{Computed: expr, OutputName: outputName, OutputType: outputType}
}

func GroupKey(outputName string) GroupShapeMember {
	return GroupShapeMember{Kind: ShapeKey, OutputName: outputName}
}
func GroupCount(outputName string) GroupShapeMember {
	return GroupShapeMember{Kind: ShapeCount, OutputName: outputName}
}
func GroupSum(column, outputName string) GroupShapeMember {
	return GroupShapeMember{Kind: ShapeSum, Column: column, OutputName: outputName}
}
func GroupAverage(column, outputName string) GroupShapeMember {
	return GroupShapeMember{Kind: ShapeAverage, Column: column, OutputName: outputName}
}
func GroupMin(column, outputName string) GroupShapeMember {
	return GroupShapeMember{Kind: ShapeMin, Column: column, OutputName: outputName}
}
func GroupMax(column, outputName string) GroupShapeMember {
	return GroupShapeMember{Kind: ShapeMax, Column: column, OutputName: outputName}
}

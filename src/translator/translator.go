// Package translator lowers a surface-language query (the LINQ-style
// fluent builder defined in this package is the reference surface
// syntax; a SQL or JSON DSL front end would produce the same Query tree)
// into a logicalplan.Node.
package translator

import (
	"errors"
	"fmt"

	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/logicalplan"
	"github.com/arrowkit/arrowkit/src/predicate"
)

// ErrUnsupportedProjection is returned when a GroupBy shape member is
// neither Key nor a recognized aggregate.
var ErrUnsupportedProjection = errors.New("translator: unsupported projection shape")

// ErrUnsupportedPredicate is returned when a Where expression cannot be
// lowered to a ColumnPredicate and strict mode is in effect. Rejection is
// structural: the whole Filter is rejected, never partially supported.
var ErrUnsupportedPredicate = errors.New("translator: unsupported predicate expression")

// Terminal names a query's terminal operation.
type Terminal int

const (
	TerminalNone Terminal = iota
	TerminalCount
	TerminalAny
	TerminalFirst
	TerminalSum
	TerminalAverage
	TerminalMin
	TerminalMax
	TerminalToList
	TerminalToArray
)

// PredExpr is one node of a Where expression tree. Conjunctions (And) lower
// to a flat predicate list on the Filter node; disjunctions (Or) lower to
// a single compound predicate.Or.
type PredExpr struct {
	// Kind selects which fields below are populated.
	Kind PredExprKind

	Column   string
	Op       predicate.Op
	Constant float64

	StringConstant string
	StringMode     StringMode

	RangeLo, RangeHi         float64
	RangeLoIncl, RangeHiIncl bool

	BoolWant predicate.BoolWant

	Children []PredExpr // for And/Or/Not

	// Unrecognized marks an expression the translator does not know how
	// to lower (e.g. an arbitrary method call); its presence anywhere in
	// the tree forces the whole Where to be rejected or fall back,
	// depending on the engine's strictPredicate configuration.
	Unrecognized bool
}

type PredExprKind int

const (
	PredComparison PredExprKind = iota
	PredRange
	PredIsNull
	PredIsNotNull
	PredString
	PredBool
	PredAnd
	PredOr
	PredNot
)

type StringMode int

const (
	StringEquals StringMode = iota
	StringStartsWith
	StringEndsWith
	StringContains
)

// GroupShapeKind names a GroupBy.Select shape member.
type GroupShapeKind int

const (
	ShapeKey GroupShapeKind = iota
	ShapeCount
	ShapeSum
	ShapeAverage
	ShapeMin
	ShapeMax
)

// GroupShapeMember is one member of a GroupBy.Select(...) anonymous shape.
type GroupShapeMember struct {
	Kind       GroupShapeKind
	Column     string // ignored for ShapeKey/ShapeCount
	OutputName string
}

// Query is the surface-language query AST this translator lowers. A
// fluent builder (see builder.go) assembles one of these from chained
// calls; a SQL or JSON front end would instead parse directly into this
// struct.
type Query struct {
	Where    []PredExpr // each element here is implicitly AND'd with the rest
	Select   []Projection
	GroupBy  *GroupByClause
	Take     *uint64
	Skip     *uint64
	OrderBy  []logicalplan.SortKey
	Distinct bool
	Terminal Terminal
}

// Projection is one Select(shape) member.
type Projection struct {
	SourceColumn string
	Computed     string
	OutputName   string
	OutputType   column.Dtype
}

// GroupByClause captures GroupBy(keySelector).Select(groupShape).
type GroupByClause struct {
	KeyColumn string
	Shape     []GroupShapeMember
}

// Options configures translation policy.
type Options struct {
	// StrictPredicate rejects a Where containing any Unrecognized
	// expression outright (PlanConstructionError-equivalent). When false,
	// the Filter is still built from the recognized sub-expressions and
	// the caller is expected to fall back to row-at-a-time evaluation via
	// an external collaborator for the rest — this package only reports
	// that fallback is required via the returned bool.
	StrictPredicate bool
}

// Translate lowers query against schema into a logical plan rooted at
// scan. fellBack reports whether a non-strict Where fell back to
// row-at-a-time evaluation for part of its predicate tree.
func Translate(scan *logicalplan.Scan, query Query, opts Options) (plan logicalplan.Node, fellBack bool, err error) {
	plan = scan
	schema := scan.OutputSchema()

	if len(query.Where) > 0 {
		preds, fb, werr := lowerWhere(query.Where, schema, opts)
		if werr != nil {
			return nil, false, werr
		}
		fellBack = fb
		if len(preds) > 0 {
			f, ferr := logicalplan.NewFilter(plan, preds)
			if ferr != nil {
				return nil, false, ferr
			}
			plan = f
		}
	}

	if query.GroupBy != nil {
		gb, gerr := lowerGroupBy(plan, *query.GroupBy)
		if gerr != nil {
			return nil, fellBack, gerr
		}
		plan = gb
	} else if len(query.Select) > 0 {
		projs := make([]logicalplan.Projection, len(query.Select))
		for i, s := range query.Select {
			projs[i] = logicalplan.Projection{SourceColumn: s.SourceColumn, Computed: s.Computed, OutputName: s.OutputName, OutputType: s.OutputType}
		}
		p, perr := logicalplan.NewProject(plan, projs)
		if perr != nil {
			return nil, fellBack, perr
		}
		plan = p
	}

	if len(query.OrderBy) > 0 {
		s, serr := logicalplan.NewSort(plan, query.OrderBy)
		if serr != nil {
			return nil, fellBack, serr
		}
		plan = s
	}

	if query.Distinct {
		plan = logicalplan.NewDistinct(plan)
	}

	if query.Skip != nil {
		plan = logicalplan.NewOffset(plan, *query.Skip)
	}
	if query.Take != nil {
		plan = logicalplan.NewLimit(plan, *query.Take)
	}

	if agg, ok := terminalAggregate(query.Terminal, query.Select); ok {
		a, aerr := logicalplan.NewAggregate(plan, agg.op, agg.column, agg.outputType)
		if aerr != nil {
			return nil, fellBack, aerr
		}
		plan = a
	}

	return plan, fellBack, nil
}

type terminalAgg struct {
	op         logicalplan.AggregateOp
	column     string
	outputType column.Dtype
}

func terminalAggregate(t Terminal, selectShape []Projection) (terminalAgg, bool) {
	switch t {
	case TerminalCount:
		return terminalAgg{op: logicalplan.AggCount, outputType: column.DtypeI64}, true
	case TerminalSum, TerminalAverage, TerminalMin, TerminalMax:
		if len(selectShape) != 1 {
			return terminalAgg{}, false
		}
		col := selectShape[0]
		op := map[Terminal]logicalplan.AggregateOp{
			TerminalSum: logicalplan.AggSum, TerminalAverage: logicalplan.AggAvg,
			TerminalMin: logicalplan.AggMin, TerminalMax: logicalplan.AggMax,
		}[t]
		return terminalAgg{op: op, column: col.SourceColumn, outputType: col.OutputType}, true
	default:
		return terminalAgg{}, false
	}
}

func lowerWhere(exprs []PredExpr, schema column.TableSchema, opts Options) ([]predicate.ColumnPredicate, bool, error) {
	var preds []predicate.ColumnPredicate
	fellBack := false
	for _, e := range exprs {
		p, fb, err := lowerExpr(e, schema, opts)
		if err != nil {
			return nil, false, err
		}
		if fb {
			fellBack = true
			continue
		}
		preds = append(preds, p)
	}
	return preds, fellBack, nil
}

func lowerExpr(e PredExpr, schema column.TableSchema, opts Options) (predicate.ColumnPredicate, bool, error) {
	if e.Unrecognized {
		if opts.StrictPredicate {
			return nil, false, fmt.Errorf("%w: unrecognized expression over column %q", ErrUnsupportedPredicate, e.Column)
		}
		return nil, true, nil
	}

	switch e.Kind {
	case PredAnd:
		children, fb, err := lowerConjunction(e.Children, schema, opts)
		if err != nil {
			return nil, false, err
		}
		if fb && len(children) == 0 {
			return nil, true, nil
		}
		if len(children) == 1 {
			return children[0], fb, nil
		}
		idx, _, err := schema.LocateColumn(e.Column)
		if err != nil {
			idx = children[0].ColumnIndex()
		}
		return predicate.NewAnd(idx, children...), fb, nil
	case PredOr:
		children, fb, err := lowerConjunction(e.Children, schema, opts)
		if err != nil {
			return nil, false, err
		}
		if fb {
			// dropping a disjunct would narrow the Or: the whole Or falls back
			return nil, true, nil
		}
		idx := 0
		if len(children) > 0 {
			idx = children[0].ColumnIndex()
		}
		return predicate.NewOr(idx, children...), fb, nil
	case PredNot:
		if len(e.Children) != 1 {
			return nil, false, fmt.Errorf("%w: Not must have exactly one child", ErrUnsupportedPredicate)
		}
		child, fb, err := lowerExpr(e.Children[0], schema, opts)
		if err != nil {
			return nil, false, err
		}
		if fb {
			return nil, true, nil
		}
		return predicate.NewNot(child.ColumnIndex(), child), fb, nil
	}

	idx, s, err := schema.LocateColumn(e.Column)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", logicalplan.ErrPlanConstruction, err)
	}

	switch e.Kind {
	case PredComparison:
		if !s.Dtype.IsNumeric() {
			return nil, false, fmt.Errorf("%w: comparison over non-numeric column %q", predicate.ErrInvalidPredicate, e.Column)
		}
		return predicate.NewNumericComparison(idx, e.Op, e.Constant), false, nil
	case PredRange:
		if !s.Dtype.IsNumeric() {
			return nil, false, fmt.Errorf("%w: range over non-numeric column %q", predicate.ErrInvalidPredicate, e.Column)
		}
		return predicate.NewRange(idx, e.RangeLo, e.RangeHi, e.RangeLoIncl, e.RangeHiIncl), false, nil
	case PredIsNull:
		return predicate.NewIsNull(idx), false, nil
	case PredIsNotNull:
		return predicate.NewIsNotNull(idx), false, nil
	case PredString:
		if s.Dtype != column.DtypeUtf8 {
			return nil, false, fmt.Errorf("%w: string predicate over non-string column %q", predicate.ErrInvalidPredicate, e.Column)
		}
		switch e.StringMode {
		case StringEquals:
			return predicate.NewStringEquality(idx, e.StringConstant), false, nil
		case StringStartsWith:
			return predicate.NewStringStartsWith(idx, e.StringConstant), false, nil
		case StringEndsWith:
			return predicate.NewStringEndsWith(idx, e.StringConstant), false, nil
		case StringContains:
			return predicate.NewStringContains(idx, e.StringConstant), false, nil
		}
	case PredBool:
		if s.Dtype != column.DtypeBool {
			return nil, false, fmt.Errorf("%w: boolean test over non-boolean column %q", predicate.ErrInvalidPredicate, e.Column)
		}
		return predicate.NewBoolTest(idx, e.BoolWant), false, nil
	}
	return nil, false, fmt.Errorf("%w: unrecognized PredExprKind %d", ErrUnsupportedPredicate, e.Kind)
}

func lowerConjunction(exprs []PredExpr, schema column.TableSchema, opts Options) ([]predicate.ColumnPredicate, bool, error) {
	var out []predicate.ColumnPredicate
	fellBack := false
	for _, e := range exprs {
		p, fb, err := lowerExpr(e, schema, opts)
		if err != nil {
			return nil, false, err
		}
		if fb {
			fellBack = true
			continue
		}
		out = append(out, p)
	}
	return out, fellBack, nil
}

func lowerGroupBy(child logicalplan.Node, gb GroupByClause) (*logicalplan.GroupBy, error) {
	var aggs []logicalplan.GroupAggregation
	keyPropertyName := gb.KeyColumn
	for _, m := range gb.Shape {
		switch m.Kind {
		case ShapeKey:
			keyPropertyName = m.OutputName
		case ShapeCount:
			aggs = append(aggs, logicalplan.GroupAggregation{Op: logicalplan.AggCount, OutputName: m.OutputName, OutputType: column.DtypeI64})
		case ShapeSum:
			aggs = append(aggs, logicalplan.GroupAggregation{Op: logicalplan.AggSum, Column: m.Column, OutputName: m.OutputName})
		case ShapeAverage:
			aggs = append(aggs, logicalplan.GroupAggregation{Op: logicalplan.AggAvg, Column: m.Column, OutputName: m.OutputName, OutputType: column.DtypeF64})
		case ShapeMin:
			aggs = append(aggs, logicalplan.GroupAggregation{Op: logicalplan.AggMin, Column: m.Column, OutputName: m.OutputName})
		case ShapeMax:
			aggs = append(aggs, logicalplan.GroupAggregation{Op: logicalplan.AggMax, Column: m.Column, OutputName: m.OutputName})
		default:
			return nil, fmt.Errorf("%w: group shape member %d", ErrUnsupportedProjection, m.Kind)
		}
	}
	return logicalplan.NewGroupBy(child, gb.KeyColumn, aggs, keyPropertyName)
}

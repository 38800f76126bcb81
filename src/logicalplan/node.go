// Package logicalplan implements the engine's API-agnostic intermediate
// representation: an immutable tree of plan nodes, a visitor interface for
// transformations and reductions over that tree, and the cost-based
// optimizer that rewrites a tree while preserving its semantics.
package logicalplan

import (
	"errors"
	"fmt"

	"github.com/arrowkit/arrowkit/src/column"
	"github.com/arrowkit/arrowkit/src/predicate"
)

// ErrPlanConstruction is returned by a node constructor when its input
// references a column that does not exist in the child's output schema.
var ErrPlanConstruction = errors.New("logicalplan: invalid plan construction")

func constructionErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPlanConstruction, fmt.Sprintf(format, args...))
}

// Node is one immutable logical plan node. Every variant below satisfies
// this interface; node identity (not value equality) is what the visitor's
// fixed-point detection relies on — a Transform that makes no change must
// return the exact same Node value it was given.
type Node interface {
	// OutputSchema is this node's ordered columnName -> type mapping.
	OutputSchema() column.TableSchema
	// EstimatedRowCount is the planner's best estimate of this node's
	// output cardinality, used to pick physical strategies.
	EstimatedRowCount() uint64
	// Children returns this node's child nodes (zero for Scan, one for
	// every other variant defined in this package).
	Children() []Node
	// String renders a short, deterministic description for logs/tests.
	String() string
}

func schemaHasColumn(s column.TableSchema, name string) bool {
	_, _, err := s.LocateColumn(name)
	return err == nil
}

// Scan is the unique leaf node: it reads rows directly from a snapshot.
type Scan struct {
	TableName     string
	SourceRef     any
	Schema        column.TableSchema
	ExactRowCount uint64
}

func NewScan(tableName string, sourceRef any, schema column.TableSchema, exactRowCount uint64) *Scan {
	return &Scan{TableName: tableName, SourceRef: sourceRef, Schema: schema, ExactRowCount: exactRowCount}
}

func (n *Scan) OutputSchema() column.TableSchema { return n.Schema }
func (n *Scan) EstimatedRowCount() uint64         { return n.ExactRowCount }
func (n *Scan) Children() []Node                  { return nil }
func (n *Scan) String() string                    { return fmt.Sprintf("Scan(%s)", n.TableName) }

// Filter retains only rows satisfying every predicate in Predicates (an
// implicit AND across the slice — a cross-predicate OR is expressed as a
// single compound predicate.Or element instead).
type Filter struct {
	Child                Node
	Predicates           []predicate.ColumnPredicate
	EstimatedSelectivity float64
	// Fused marks that this Filter's sole consumer is an Aggregate, set by
	// the optimizer's fused-operator-marking rule; it does not change this
	// node's semantics, only which physical kernel runs it.
	Fused bool
	// ScanRowRange is set by the optimizer's filter-into-scan merge rule
	// when this Filter sits directly atop a Scan: [0, rowCount) of the
	// scan. It is metadata only — informational for the physical planner
	// — and never changes which rows the Filter keeps.
	ScanRowRange *[2]int
}

func NewFilter(child Node, predicates []predicate.ColumnPredicate) (*Filter, error) {
	schema := child.OutputSchema()
	for _, p := range predicates {
		if p.ColumnIndex() < 0 || p.ColumnIndex() >= len(schema) {
			return nil, constructionErrorf("filter predicate references out-of-range column index %d", p.ColumnIndex())
		}
	}
	sel := 1.0
	for _, p := range predicates {
		sel *= p.EstimatedSelectivity()
	}
	return &Filter{Child: child, Predicates: predicates, EstimatedSelectivity: sel}, nil
}

func (n *Filter) OutputSchema() column.TableSchema { return n.Child.OutputSchema() }
func (n *Filter) EstimatedRowCount() uint64 {
	return uint64(float64(n.Child.EstimatedRowCount()) * n.EstimatedSelectivity)
}
func (n *Filter) Children() []Node { return []Node{n.Child} }
func (n *Filter) String() string {
	return fmt.Sprintf("Filter(predicates=%d, fused=%v)", len(n.Predicates), n.Fused)
}

// Projection is one output column of a Project node: either a bare source
// column reference, or a Computed expression deferred to the renderer.
type Projection struct {
	SourceColumn string // empty when Computed is set
	Computed     string // an opaque expression description; empty for identity/rename
	OutputName   string
	OutputType   column.Dtype
}

// Project reshapes rows into the output columns described by Projections.
type Project struct {
	Child       Node
	Projections []Projection
}

func NewProject(child Node, projections []Projection) (*Project, error) {
	schema := child.OutputSchema()
	for _, p := range projections {
		if p.Computed != "" {
			continue
		}
		if !schemaHasColumn(schema, p.SourceColumn) {
			return nil, constructionErrorf("project references unknown column %q", p.SourceColumn)
		}
	}
	return &Project{Child: child, Projections: projections}, nil
}

func (n *Project) OutputSchema() column.TableSchema {
	out := make(column.TableSchema, len(n.Projections))
	for i, p := range n.Projections {
		out[i] = column.Schema{Name: p.OutputName, Dtype: p.OutputType}
	}
	return out
}
func (n *Project) EstimatedRowCount() uint64 { return n.Child.EstimatedRowCount() }
func (n *Project) Children() []Node          { return []Node{n.Child} }
func (n *Project) String() string            { return fmt.Sprintf("Project(cols=%d)", len(n.Projections)) }

// AggregateOp names an aggregate function.
type AggregateOp int

const (
	AggCount AggregateOp = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

func (op AggregateOp) String() string {
	switch op {
	case AggCount:
		return "Count"
	case AggSum:
		return "Sum"
	case AggAvg:
		return "Avg"
	case AggMin:
		return "Min"
	case AggMax:
		return "Max"
	default:
		return "unknown"
	}
}

// Aggregate reduces its child's output to a single row via Op over Column
// (Column is empty/ignored for Count).
type Aggregate struct {
	Child      Node
	Op         AggregateOp
	Column     string
	OutputType column.Dtype
}

func NewAggregate(child Node, op AggregateOp, columnName string, outputType column.Dtype) (*Aggregate, error) {
	if op != AggCount && !schemaHasColumn(child.OutputSchema(), columnName) {
		return nil, constructionErrorf("aggregate references unknown column %q", columnName)
	}
	return &Aggregate{Child: child, Op: op, Column: columnName, OutputType: outputType}, nil
}

func (n *Aggregate) OutputSchema() column.TableSchema {
	return column.TableSchema{{Name: n.Op.String(), Dtype: n.OutputType}}
}
func (n *Aggregate) EstimatedRowCount() uint64 { return 1 }
func (n *Aggregate) Children() []Node          { return []Node{n.Child} }
func (n *Aggregate) String() string            { return fmt.Sprintf("Aggregate(%s(%s))", n.Op, n.Column) }

// GroupAggregation is one aggregate computed per group in a GroupBy node.
type GroupAggregation struct {
	Op         AggregateOp
	Column     string
	OutputName string
	OutputType column.Dtype
}

// GroupBy partitions rows by GroupColumn and computes Aggregations per
// partition; KeyPropertyName names the output slot carrying the group key
// (defaults to the group column's name when empty).
type GroupBy struct {
	Child            Node
	GroupColumn      string
	KeyType          column.Dtype
	Aggregations     []GroupAggregation
	KeyPropertyName  string
	estimatedGroups  uint64
}

func NewGroupBy(child Node, groupColumn string, aggregations []GroupAggregation, keyPropertyName string) (*GroupBy, error) {
	schema := child.OutputSchema()
	idx, s, err := schema.LocateColumn(groupColumn)
	if err != nil {
		return nil, constructionErrorf("group-by key references unknown column %q", groupColumn)
	}
	_ = idx
	for _, a := range aggregations {
		if a.Op != AggCount && !schemaHasColumn(schema, a.Column) {
			return nil, constructionErrorf("group-by aggregation references unknown column %q", a.Column)
		}
	}
	if keyPropertyName == "" {
		keyPropertyName = groupColumn
	}
	// estimatedGroups is a cheap heuristic — the ceiling of the square root
	// of the child's row count; nothing later replaces it with the actual
	// cardinality.
	rc := child.EstimatedRowCount()
	estGroups := rc
	if rc > 0 {
		estGroups = 1
		for estGroups*estGroups < rc {
			estGroups++
		}
	}
	return &GroupBy{
		Child: child, GroupColumn: groupColumn, KeyType: s.Dtype,
		Aggregations: aggregations, KeyPropertyName: keyPropertyName,
		estimatedGroups: estGroups,
	}, nil
}

func (n *GroupBy) OutputSchema() column.TableSchema {
	out := make(column.TableSchema, 0, len(n.Aggregations)+1)
	out = append(out, column.Schema{Name: n.KeyPropertyName, Dtype: n.KeyType})
	for _, a := range n.Aggregations {
		out = append(out, column.Schema{Name: a.OutputName, Dtype: a.OutputType})
	}
	return out
}
func (n *GroupBy) EstimatedRowCount() uint64 { return n.estimatedGroups }
func (n *GroupBy) Children() []Node          { return []Node{n.Child} }
func (n *GroupBy) String() string {
	return fmt.Sprintf("GroupBy(%s, aggs=%d)", n.GroupColumn, len(n.Aggregations))
}

// Limit caps the child's output to at most Count rows.
type Limit struct {
	Child Node
	Count uint64
}

func NewLimit(child Node, count uint64) *Limit { return &Limit{Child: child, Count: count} }

func (n *Limit) OutputSchema() column.TableSchema { return n.Child.OutputSchema() }
func (n *Limit) EstimatedRowCount() uint64 {
	if c := n.Child.EstimatedRowCount(); c < n.Count {
		return c
	}
	return n.Count
}
func (n *Limit) Children() []Node { return []Node{n.Child} }
func (n *Limit) String() string   { return fmt.Sprintf("Limit(%d)", n.Count) }

// Offset skips the first Count rows of its child's output.
type Offset struct {
	Child Node
	Count uint64
}

func NewOffset(child Node, count uint64) *Offset { return &Offset{Child: child, Count: count} }

func (n *Offset) OutputSchema() column.TableSchema { return n.Child.OutputSchema() }
func (n *Offset) EstimatedRowCount() uint64 {
	c := n.Child.EstimatedRowCount()
	if c < n.Count {
		return 0
	}
	return c - n.Count
}
func (n *Offset) Children() []Node { return []Node{n.Child} }
func (n *Offset) String() string   { return fmt.Sprintf("Offset(%d)", n.Count) }

// SortKey is one ordering term within a Sort node.
type SortKey struct {
	Column     string
	Descending bool
}

// Sort orders the child's output by Orderings.
type Sort struct {
	Child     Node
	Orderings []SortKey
}

func NewSort(child Node, orderings []SortKey) (*Sort, error) {
	schema := child.OutputSchema()
	for _, o := range orderings {
		if !schemaHasColumn(schema, o.Column) {
			return nil, constructionErrorf("sort references unknown column %q", o.Column)
		}
	}
	return &Sort{Child: child, Orderings: orderings}, nil
}

func (n *Sort) OutputSchema() column.TableSchema { return n.Child.OutputSchema() }
func (n *Sort) EstimatedRowCount() uint64         { return n.Child.EstimatedRowCount() }
func (n *Sort) Children() []Node                  { return []Node{n.Child} }
func (n *Sort) String() string                    { return fmt.Sprintf("Sort(keys=%d)", len(n.Orderings)) }

// Distinct removes duplicate rows across every column of its child.
type Distinct struct {
	Child Node
}

func NewDistinct(child Node) *Distinct { return &Distinct{Child: child} }

func (n *Distinct) OutputSchema() column.TableSchema { return n.Child.OutputSchema() }
func (n *Distinct) EstimatedRowCount() uint64         { return n.Child.EstimatedRowCount() }
func (n *Distinct) Children() []Node                  { return []Node{n.Child} }
func (n *Distinct) String() string                    { return "Distinct()" }

package translator

import (
	"fmt"
	"strings"

	"github.com/arrowkit/arrowkit/src/logicalplan"
)

// CanonicalKey renders query as a cache key with every literal constant
// abstracted to a "?" placeholder, so that two queries differing only in
// the value compared against (e.g. amount > 10 vs amount > 99) share a
// single cached logical/physical plan. Column names, operators, and
// structural shape are preserved verbatim since they affect plan shape.
func CanonicalKey(query Query) string {
	var b strings.Builder
	b.WriteString("Q{")
	writeWhere(&b, query.Where)
	writeSelect(&b, query.Select)
	writeGroupBy(&b, query.GroupBy)
	if query.Take != nil {
		b.WriteString("take(?)")
	}
	if query.Skip != nil {
		b.WriteString("skip(?)")
	}
	writeOrderBy(&b, query.OrderBy)
	if query.Distinct {
		b.WriteString("distinct()")
	}
	fmt.Fprintf(&b, "term(%d)", query.Terminal)
	b.WriteString("}")
	return b.String()
}

func writeWhere(b *strings.Builder, exprs []PredExpr) {
	if len(exprs) == 0 {
		return
	}
	b.WriteString("where(")
	for i, e := range exprs {
		if i > 0 {
			b.WriteString("&&")
		}
		writeExpr(b, e)
	}
	b.WriteString(")")
}

func writeExpr(b *strings.Builder, e PredExpr) {
	switch e.Kind {
	case PredAnd:
		b.WriteString("and(")
		for i, c := range e.Children {
			if i > 0 {
				b.WriteString(",")
			}
			writeExpr(b, c)
		}
		b.WriteString(")")
	case PredOr:
		b.WriteString("or(")
		for i, c := range e.Children {
			if i > 0 {
				b.WriteString(",")
			}
			writeExpr(b, c)
		}
		b.WriteString(")")
	case PredNot:
		b.WriteString("not(")
		if len(e.Children) == 1 {
			writeExpr(b, e.Children[0])
		}
		b.WriteString(")")
	case PredComparison:
		fmt.Fprintf(b, "cmp(%s,%d,?)", e.Column, e.Op)
	case PredRange:
		fmt.Fprintf(b, "range(%s,?,?,%v,%v)", e.Column, e.RangeLoIncl, e.RangeHiIncl)
	case PredIsNull:
		fmt.Fprintf(b, "isnull(%s)", e.Column)
	case PredIsNotNull:
		fmt.Fprintf(b, "isnotnull(%s)", e.Column)
	case PredString:
		fmt.Fprintf(b, "str(%s,%d,?)", e.Column, e.StringMode)
	case PredBool:
		fmt.Fprintf(b, "bool(%s,%d)", e.Column, e.BoolWant)
	}
}

func writeSelect(b *strings.Builder, projections []Projection) {
	if len(projections) == 0 {
		return
	}
	b.WriteString("select(")
	for i, p := range projections {
		if i > 0 {
			b.WriteString(",")
		}
		if p.Computed != "" {
			fmt.Fprintf(b, "%s=computed", p.OutputName)
		} else {
			fmt.Fprintf(b, "%s=%s", p.OutputName, p.SourceColumn)
		}
	}
	b.WriteString(")")
}

func writeGroupBy(b *strings.Builder, gb *GroupByClause) {
	if gb == nil {
		return
	}
	fmt.Fprintf(b, "groupby(%s;", gb.KeyColumn)
	for i, m := range gb.Shape {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(b, "%d:%s", m.Kind, m.Column)
	}
	b.WriteString(")")
}

func writeOrderBy(b *strings.Builder, keys []logicalplan.SortKey) {
	if len(keys) == 0 {
		return
	}
	b.WriteString("orderby(")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(b, "%s:%v", k.Column, k.Descending)
	}
	b.WriteString(")")
}

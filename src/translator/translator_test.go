package translator

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
		{Name: "active", Dtype: column.DtypeBool},
	}
}

func testScan() *logicalplan.Scan {
	return logicalplan.NewScan("orders", nil, testSchema(), 1000)
}

func TestTranslateSimpleWhere(t *testing.T) {
	q := NewBuilder().Where(Gt("amount", 10)).Build()
	plan, fellBack, err := Translate(testScan(), q, Options{StrictPredicate: true})
	if err != nil {
		t.Fatal(err)
	}
	if fellBack {
		t.Fatal("did not expect fallback")
	}
	f, ok := plan.(*logicalplan.Filter)
	if !ok {
		t.Fatalf("expected Filter node, got %T", plan)
	}
	if len(f.Predicates) != 1 || f.Predicates[0].ColumnIndex() != 1 {
		t.Fatalf("expected single predicate bound to column 1 (amount), got %+v", f.Predicates)
	}
}

func TestTranslateConjunctionFlattensToPredicateList(t *testing.T) {
	q := NewBuilder().Where(Gt("amount", 10)).Where(IsNotNull("name")).Build()
	plan, _, err := Translate(testScan(), q, Options{StrictPredicate: true})
	if err != nil {
		t.Fatal(err)
	}
	f := plan.(*logicalplan.Filter)
	if len(f.Predicates) != 2 {
		t.Fatalf("expected two ANDed predicates, got %d", len(f.Predicates))
	}
}

func TestTranslateOrBuildsCompoundPredicate(t *testing.T) {
	q := NewBuilder().Where(Or(Eq("amount", 1), Eq("amount", 2))).Build()
	plan, _, err := Translate(testScan(), q, Options{StrictPredicate: true})
	if err != nil {
		t.Fatal(err)
	}
	f := plan.(*logicalplan.Filter)
	if len(f.Predicates) != 1 {
		t.Fatalf("expected a single compound Or predicate, got %d", len(f.Predicates))
	}
	if _, ok := f.Predicates[0].(*predicate.Or); !ok {
		t.Fatalf("expected *predicate.Or, got %T", f.Predicates[0])
	}
}

func TestTranslateRejectsComparisonOverStringColumn(t *testing.T) {
	q := NewBuilder().Where(Gt("name", 1)).Build()
	if _, _, err := Translate(testScan(), q, Options{StrictPredicate: true}); err == nil {
		t.Fatal("expected error for numeric comparison over a string column")
	}
}

func TestTranslateUnrecognizedStrictRejects(t *testing.T) {
	q := NewBuilder().Where(PredExpr{Unrecognized: true, Column: "amount"}).Build()
	if _, _, err := Translate(testScan(), q, Options{StrictPredicate: true}); err == nil {
		t.Fatal("expected strict mode to reject an unrecognized expression")
	}
}

func TestTranslateUnrecognizedNonStrictFallsBack(t *testing.T) {
	q := NewBuilder().
		Where(Gt("amount", 10)).
		Where(PredExpr{Unrecognized: true, Column: "name"}).
		Build()
	plan, fellBack, err := Translate(testScan(), q, Options{StrictPredicate: false})
	if err != nil {
		t.Fatal(err)
	}
	if !fellBack {
		t.Fatal("expected fellBack=true for a non-strict unrecognized expression")
	}
	f := plan.(*logicalplan.Filter)
	if len(f.Predicates) != 1 {
		t.Fatalf("expected only the recognized predicate to remain, got %d", len(f.Predicates))
	}
}

func TestTranslateSelectProducesProject(t *testing.T) {
	q := NewBuilder().Select(Col("amount", "amt", column.DtypeF64)).Build()
	plan, _, err := Translate(testScan(), q, Options{})
	if err != nil {
		t.Fatal(err)
	}
	proj, ok := plan.(*logicalplan.Project)
	if !ok {
		t.Fatalf("expected Project, got %T", plan)
	}
	if proj.OutputSchema()[0].Name != "amt" {
		t.Fatalf("unexpected output schema %+v", proj.OutputSchema())
	}
}

func TestTranslateGroupByShape(t *testing.T) {
	q := NewBuilder().GroupBy("name", GroupKey("who"), GroupSum("amount", "total")).Build()
	plan, _, err := Translate(testScan(), q, Options{})
	if err != nil {
		t.Fatal(err)
	}
	gb, ok := plan.(*logicalplan.GroupBy)
	if !ok {
		t.Fatalf("expected GroupBy, got %T", plan)
	}
	schema := gb.OutputSchema()
	if schema[0].Name != "who" || schema[1].Name != "total" {
		t.Fatalf("unexpected group-by schema %+v", schema)
	}
}

func TestTranslateTakeSkipOrderDistinct(t *testing.T) {
	q := NewBuilder().
		OrderBy("amount", true).
		Distinct().
		Skip(5).
		Take(10).
		Build()
	plan, _, err := Translate(testScan(), q, Options{})
	if err != nil {
		t.Fatal(err)
	}
	lim, ok := plan.(*logicalplan.Limit)
	if !ok {
		t.Fatalf("expected outermost Limit, got %T", plan)
	}
	if lim.Count != 10 {
		t.Fatalf("limit count = %d, want 10", lim.Count)
	}
	off, ok := lim.Child.(*logicalplan.Offset)
	if !ok {
		t.Fatalf("expected Offset under Limit, got %T", lim.Child)
	}
	if off.Count != 5 {
		t.Fatalf("offset count = %d, want 5", off.Count)
	}
	if _, ok := off.Child.(*logicalplan.Distinct); !ok {
		t.Fatalf("expected Distinct under Offset, got %T", off.Child)
	}
}

func TestTranslateCountTerminal(t *testing.T) {
	q := NewBuilder().Where(Gt("amount", 10)).Count()
	plan, _, err := Translate(testScan(), q, Options{StrictPredicate: true})
	if err != nil {
		t.Fatal(err)
	}
	agg, ok := plan.(*logicalplan.Aggregate)
	if !ok {
		t.Fatalf("expected Aggregate, got %T", plan)
	}
	if agg.Op != logicalplan.AggCount {
		t.Fatalf("expected AggCount, got %v", agg.Op)
	}
}

func TestTranslateSumTerminalRequiresSingleSelectColumn(t *testing.T) {
	q := NewBuilder().Select(Col("amount", "amount", column.DtypeF64)).Sum()
	plan, _, err := Translate(testScan(), q, Options{})
	if err != nil {
		t.Fatal(err)
	}
	agg, ok := plan.(*logicalplan.Aggregate)
	if !ok {
		t.Fatalf("expected Aggregate, got %T", plan)
	}
	if agg.Op != logicalplan.AggSum || agg.Column != "amount" {
		t.Fatalf("unexpected aggregate %+v", agg)
	}
}

func TestCanonicalKeyAbstractsConstants(t *testing.T) {
	q1 := NewBuilder().Where(Gt("amount", 10)).Build()
	q2 := NewBuilder().Where(Gt("amount", 99)).Build()
	if CanonicalKey(q1) != CanonicalKey(q2) {
		t.Fatalf("keys should be equal once constants are abstracted: %q vs %q", CanonicalKey(q1), CanonicalKey(q2))
	}
}

func TestCanonicalKeyDiffersOnColumnOrOp(t *testing.T) {
	q1 := NewBuilder().Where(Gt("amount", 10)).Build()
	q2 := NewBuilder().Where(Lt("amount", 10)).Build()
	q3 := NewBuilder().Where(Gt("id", 10)).Build()
	if CanonicalKey(q1) == CanonicalKey(q2) {
		t.Fatal("different operators must produce different keys")
	}
	if CanonicalKey(q1) == CanonicalKey(q3) {
		t.Fatal("different columns must produce different keys")
	}
}

func TestBoolIsBuildsBoolTest(t *testing.T) {
	q := NewBuilder().Where(BoolIs("active", predicate.WantFalse)).Build()
	plan, _, err := Translate(testScan(), q, Options{StrictPredicate: true})
	if err != nil {
		t.Fatal(err)
	}
	f := plan.(*logicalplan.Filter)
	bt, ok := f.Predicates[0].(*predicate.BoolTest)
	if !ok {
		t.Fatalf("expected *predicate.BoolTest, got %T", f.Predicates[0])
	}
	if bt.Want() != predicate.WantFalse {
		t.Fatalf("want = %v, expected WantFalse", bt.Want())
	}
}

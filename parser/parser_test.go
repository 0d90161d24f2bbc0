package parser

import (
	"testing"

	"github.com/go-fselect/fselect/ast"
)

func mustParse(t *testing.T, query string) *ast.Query {
	t.Helper()
	q, err := Parse(query)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", query, err)
	}
	return q
}

func TestSimpleQuery(t *testing.T) {
	q := mustParse(t, "select name from /tmp")

	if len(q.Fields) != 1 || !q.Fields[0].HasField || q.Fields[0].Field != ast.FieldName {
		t.Fatalf("unexpected fields: %+v", q.Fields)
	}
	if len(q.Roots) != 1 || q.Roots[0].Path != "/tmp" {
		t.Fatalf("unexpected roots: %+v", q.Roots)
	}
	if q.Expr != nil {
		t.Fatalf("expected no where clause, got %+v", q.Expr)
	}
	if q.Limit != 0 {
		t.Fatalf("expected no limit, got %d", q.Limit)
	}
	if q.OutputFormat != ast.FormatTabs {
		t.Fatalf("expected default tabs format, got %v", q.OutputFormat)
	}
}

func TestQueryWithRootsWhereOrderLimit(t *testing.T) {
	q := mustParse(t, "select name, size from /tmp depth 2, /var archives "+
		"where size > 1000 and name != 'foo' order by 2 desc, name limit 10 into json")

	if len(q.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(q.Fields))
	}
	if len(q.Roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(q.Roots))
	}
	if q.Roots[0].Path != "/tmp" || q.Roots[0].MaxDepth != 2 {
		t.Fatalf("unexpected first root: %+v", q.Roots[0])
	}
	if q.Roots[1].Path != "/var" || !q.Roots[1].Archives {
		t.Fatalf("unexpected second root: %+v", q.Roots[1])
	}
	if q.Expr == nil || q.Expr.LogicalOp != ast.LogicalAnd {
		t.Fatalf("expected an AND expression, got %+v", q.Expr)
	}
	if len(q.OrderingFields) != 2 {
		t.Fatalf("expected 2 ordering fields, got %d", len(q.OrderingFields))
	}
	if q.OrderingAsc[0] != false {
		t.Fatalf("expected first ordering item descending")
	}
	if q.OrderingAsc[1] != true {
		t.Fatalf("expected second ordering item ascending")
	}
	if q.Limit != 10 {
		t.Fatalf("expected limit 10, got %d", q.Limit)
	}
	if q.OutputFormat != ast.FormatJson {
		t.Fatalf("expected json format, got %v", q.OutputFormat)
	}
}

func TestBrokenQueryTrailingTokensError(t *testing.T) {
	_, err := Parse("select name from /tmp where size > 0 garbage")
	if err == nil {
		t.Fatal("expected an error for trailing tokens, got nil")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Kind != ParseErrorUnexpected {
		t.Fatalf("expected ParseErrorUnexpected, got %v", pe.Kind)
	}
}

func TestBareStarExpandsDefaultColumns(t *testing.T) {
	q := mustParse(t, "select * from /tmp")
	if len(q.Fields) == 0 {
		t.Fatal("expected default columns, got none")
	}
	last := q.Fields[len(q.Fields)-1]
	if !last.HasField || last.Field != ast.FieldPath {
		t.Fatalf("expected last default column to be path, got %+v", last)
	}
}

func TestRootAlias(t *testing.T) {
	q := mustParse(t, "select name from /tmp as t1")
	if len(q.Roots) != 1 || q.Roots[0].Alias != "t1" {
		t.Fatalf("expected alias t1, got %+v", q.Roots[0])
	}
}

func TestQualifiedFieldReference(t *testing.T) {
	q := mustParse(t, "select t1.name from /tmp as t1 where t1.size > 0")
	if !q.Fields[0].HasField || q.Fields[0].RootAlias != "t1" || q.Fields[0].Field != ast.FieldName {
		t.Fatalf("unexpected qualified field: %+v", q.Fields[0])
	}
	if q.Expr == nil || q.Expr.Left == nil || q.Expr.Left.RootAlias != "t1" {
		t.Fatalf("unexpected qualified predicate field: %+v", q.Expr)
	}
}

func TestExistsSubquery(t *testing.T) {
	q := mustParse(t, "select t1.name from /t1 as t1 where exists(select t2.name from /t2 as t2 where t2.size > 0)")
	if q.Expr == nil || !q.Expr.HasFunction || q.Expr.Function != ast.FuncExists {
		t.Fatalf("expected an exists() predicate, got %+v", q.Expr)
	}
	if q.Expr.Subquery == nil || len(q.Expr.Subquery.Roots) != 1 || q.Expr.Subquery.Roots[0].Alias != "t2" {
		t.Fatalf("unexpected subquery: %+v", q.Expr.Subquery)
	}
}

func TestNotExistsSetsNegated(t *testing.T) {
	q := mustParse(t, "select name from /t1 where not exists(select name from /t2)")
	if q.Expr == nil || !q.Expr.Negated {
		t.Fatalf("expected Negated on the not exists() expression, got %+v", q.Expr)
	}
	if !q.Expr.HasFunction || q.Expr.Function != ast.FuncExists {
		t.Fatalf("expected the negated expression to still be exists(), got %+v", q.Expr)
	}
}

func TestNotBeforeComparisonInvertsOp(t *testing.T) {
	q := mustParse(t, "select name from /tmp where not size > 10")
	if q.Expr == nil || q.Expr.Op != ast.OpLte {
		t.Fatalf("expected NOT size>10 to invert to size<=10, got %+v", q.Expr)
	}
	if q.Expr.Negated {
		t.Fatalf("comparison inversion should not also set Negated")
	}
}

func TestInSubquery(t *testing.T) {
	q := mustParse(t, "select name from /tmp where name in (select name from /other)")
	if q.Expr == nil || q.Expr.Op != ast.OpIn {
		t.Fatalf("expected an IN predicate, got %+v", q.Expr)
	}
	if q.Expr.Right == nil || q.Expr.Right.Subquery == nil {
		t.Fatalf("expected the right side of IN to be a subquery, got %+v", q.Expr.Right)
	}
}

func TestGroupedExpressionIsNotMistakenForSubquery(t *testing.T) {
	q := mustParse(t, "select name from /tmp where (size > 10 and size < 100) or name = 'x'")
	if q.Expr == nil || q.Expr.LogicalOp != ast.LogicalOr {
		t.Fatalf("expected a top-level OR, got %+v", q.Expr)
	}
	if q.Expr.Left == nil || q.Expr.Left.LogicalOp != ast.LogicalAnd {
		t.Fatalf("expected the grouped left side to be an AND, got %+v", q.Expr.Left)
	}
}

func TestArithmeticPrecedence(t *testing.T) {
	q := mustParse(t, "select name from /tmp where size = 1 + 2 * 3")
	if q.Expr == nil || q.Expr.Op != ast.OpEq {
		t.Fatalf("expected a comparison, got %+v", q.Expr)
	}
	right := q.Expr.Right
	if right == nil || right.ArithmeticOp != ast.ArithAdd {
		t.Fatalf("expected top arithmetic node to be +, got %+v", right)
	}
	if right.Right == nil || right.Right.ArithmeticOp != ast.ArithMultiply {
		t.Fatalf("expected 2*3 to bind tighter than 1+, got %+v", right.Right)
	}
}

func TestUnmatchedParenError(t *testing.T) {
	_, err := Parse("select name from /tmp where (size > 10")
	if err == nil {
		t.Fatal("expected an unmatched-parenthesis error, got nil")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Kind != ParseErrorUnmatchedParen {
		t.Fatalf("expected ParseErrorUnmatchedParen, got %v", pe.Kind)
	}
}

func TestTruncatedQueryError(t *testing.T) {
	_, err := Parse("select name from /tmp where size >")
	if err == nil {
		t.Fatal("expected a truncated-query error, got nil")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Kind != ParseErrorTruncated {
		t.Fatalf("expected ParseErrorTruncated, got %v", pe.Kind)
	}
}

func TestNoSelectorError(t *testing.T) {
	_, err := Parse("from /tmp")
	if err == nil {
		t.Fatal("expected a no-selector error, got nil")
	}
}

func TestDefaultRootIsCurrentDirectory(t *testing.T) {
	q := mustParse(t, "select name")
	if len(q.Roots) != 1 || q.Roots[0].Path != "." {
		t.Fatalf("expected a default '.' root, got %+v", q.Roots)
	}
}

func TestBfsDfsOption(t *testing.T) {
	q := mustParse(t, "select name from /tmp dfs")
	if q.Roots[0].Traversal != ast.TraversalDfs {
		t.Fatalf("expected dfs traversal, got %v", q.Roots[0].Traversal)
	}
}

func TestFunctionCallWithArgs(t *testing.T) {
	q := mustParse(t, "select name from /tmp where contains(name, 'foo')")
	if q.Expr == nil || !q.Expr.HasFunction || q.Expr.Function != ast.FuncContains {
		t.Fatalf("expected a contains() call, got %+v", q.Expr)
	}
	if q.Expr.Left == nil || !q.Expr.Left.HasField || q.Expr.Left.Field != ast.FieldName {
		t.Fatalf("expected first arg to be name field, got %+v", q.Expr.Left)
	}
	if len(q.Expr.Args) != 1 || q.Expr.Args[0].Val == nil || *q.Expr.Args[0].Val != "foo" {
		t.Fatalf("expected second arg to be literal 'foo', got %+v", q.Expr.Args)
	}
}

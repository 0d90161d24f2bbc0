package eval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-fselect/fselect/ast"
	"github.com/go-fselect/fselect/internal/attr"
	"github.com/go-fselect/fselect/internal/config"
	"github.com/go-fselect/fselect/internal/variant"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func bundleCtx(t *testing.T, name, body string) *Context {
	t.Helper()
	path := writeTemp(t, name, body)
	return NewContext("", attr.New(path, config.Default()))
}

func TestEvalBoolNilExprIsTrue(t *testing.T) {
	ev := New(nil)
	ctx := bundleCtx(t, "a.txt", "x")
	ok, err := ev.EvalBool(nil, ctx)
	if err != nil || !ok {
		t.Fatalf("EvalBool(nil) = %v, %v, want true, nil", ok, err)
	}
}

func TestEvalBoolNameEquals(t *testing.T) {
	ev := New(nil)
	ctx := bundleCtx(t, "report.go", "package main\n")

	expr := ast.NewOp(ast.NewField(ast.FieldName), ast.OpEq, ast.NewValue("report.go"))
	ok, err := ev.EvalBool(expr, ctx)
	if err != nil {
		t.Fatalf("EvalBool: %v", err)
	}
	if !ok {
		t.Fatal("expected name = report.go to match")
	}
}

func TestEvalBoolGlobMatch(t *testing.T) {
	ev := New(nil)
	ctx := bundleCtx(t, "report.go", "package main\n")

	expr := ast.NewOp(ast.NewField(ast.FieldName), ast.OpEq, ast.NewValue("*.go"))
	ok, err := ev.EvalBool(expr, ctx)
	if err != nil {
		t.Fatalf("EvalBool: %v", err)
	}
	if !ok {
		t.Fatal("expected name = *.go to glob-match report.go")
	}
}

func TestEvalBoolEeqRejectsGlob(t *testing.T) {
	ev := New(nil)
	ctx := bundleCtx(t, "report.go", "package main\n")

	expr := ast.NewOp(ast.NewField(ast.FieldName), ast.OpEeq, ast.NewValue("*.go"))
	ok, err := ev.EvalBool(expr, ctx)
	if err != nil {
		t.Fatalf("EvalBool: %v", err)
	}
	if ok {
		t.Fatal("expected eeq to require an exact match, not glob")
	}
}

func TestEvalBoolNegatedAppliesLast(t *testing.T) {
	ev := New(nil)
	ctx := bundleCtx(t, "report.go", "package main\n")

	expr := ast.NewOp(ast.NewField(ast.FieldName), ast.OpEq, ast.NewValue("report.go"))
	expr.Negated = true
	ok, err := ev.EvalBool(expr, ctx)
	if err != nil {
		t.Fatalf("EvalBool: %v", err)
	}
	if ok {
		t.Fatal("expected NOT(name = report.go) to be false")
	}
}

func TestEvalLogicalAndShortCircuits(t *testing.T) {
	ev := New(nil)
	ctx := bundleCtx(t, "report.go", "package main\n")

	falseSide := ast.NewOp(ast.NewField(ast.FieldName), ast.OpEq, ast.NewValue("nope"))
	trueSide := ast.NewOp(ast.NewField(ast.FieldName), ast.OpEq, ast.NewValue("report.go"))
	expr := ast.NewLogicalOp(falseSide, ast.LogicalAnd, trueSide)

	ok, err := ev.EvalBool(expr, ctx)
	if err != nil {
		t.Fatalf("EvalBool: %v", err)
	}
	if ok {
		t.Fatal("expected AND with a false operand to be false")
	}
}

func TestEvalLogicalOrShortCircuits(t *testing.T) {
	ev := New(nil)
	ctx := bundleCtx(t, "report.go", "package main\n")

	trueSide := ast.NewOp(ast.NewField(ast.FieldName), ast.OpEq, ast.NewValue("report.go"))
	falseSide := ast.NewOp(ast.NewField(ast.FieldName), ast.OpEq, ast.NewValue("nope"))
	expr := ast.NewLogicalOp(trueSide, ast.LogicalOr, falseSide)

	ok, err := ev.EvalBool(expr, ctx)
	if err != nil {
		t.Fatalf("EvalBool: %v", err)
	}
	if !ok {
		t.Fatal("expected OR with a true operand to be true")
	}
}

func TestEvalArithmeticIsFloat(t *testing.T) {
	ev := New(nil)
	ctx := bundleCtx(t, "report.go", "package main\n")

	expr := ast.NewArithmeticOp(ast.NewValue("7"), ast.ArithDivide, ast.NewValue("2"))
	v, err := ev.Eval(expr, ctx)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v.ToFloat() != 3.5 {
		t.Fatalf("expected 3.5, got %v", v.ToFloat())
	}
}

func TestEvalArithmeticDivideByZero(t *testing.T) {
	ev := New(nil)
	ctx := bundleCtx(t, "report.go", "package main\n")

	expr := ast.NewArithmeticOp(ast.NewValue("7"), ast.ArithDivide, ast.NewValue("0"))
	if _, err := ev.Eval(expr, ctx); err == nil {
		t.Fatal("expected division by zero to error")
	}
}

func TestEvalFunctionLowerUpperLength(t *testing.T) {
	ev := New(nil)
	ctx := bundleCtx(t, "report.go", "package main\n")

	lower := ast.NewFunctionLeft(ast.FuncLower, ast.NewValue("ABC"))
	v, err := ev.Eval(lower, ctx)
	if err != nil || v.ToString() != "abc" {
		t.Fatalf("lower('ABC') = %v, %v", v.ToString(), err)
	}

	upper := ast.NewFunctionLeft(ast.FuncUpper, ast.NewValue("abc"))
	v, err = ev.Eval(upper, ctx)
	if err != nil || v.ToString() != "ABC" {
		t.Fatalf("upper('abc') = %v, %v", v.ToString(), err)
	}

	length := ast.NewFunctionLeft(ast.FuncLength, ast.NewValue("hello"))
	v, err = ev.Eval(length, ctx)
	if err != nil || v.ToInt() != 5 {
		t.Fatalf("length('hello') = %v, %v", v.ToInt(), err)
	}
}

func TestEvalFunctionContainsJapanese(t *testing.T) {
	ev := New(nil)
	ctx := bundleCtx(t, "report.go", "package main\n")

	expr := ast.NewFunctionLeft(ast.FuncContainsJapanese, ast.NewValue("こんにちは"))
	v, err := ev.Eval(expr, ctx)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !v.ToBool() {
		t.Fatal("expected contains_japanese to detect hiragana")
	}

	plain := ast.NewFunctionLeft(ast.FuncContainsJapanese, ast.NewValue("hello"))
	v, err = ev.Eval(plain, ctx)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v.ToBool() {
		t.Fatal("expected contains_japanese to be false for plain ascii")
	}
}

func TestEvalFunctionContains(t *testing.T) {
	ev := New(nil)
	ctx := bundleCtx(t, "report.go", "package main\nfunc main() {}\n")

	expr := ast.NewFunctionLeft(ast.FuncContains, ast.NewValue("func main"))
	v, err := ev.Eval(expr, ctx)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !v.ToBool() {
		t.Fatal("expected contains('func main') to match file body")
	}
}

func TestEvalExistsUncorrelatedMemoizes(t *testing.T) {
	calls := 0
	inner := func(q *ast.Query, bound *Context) ([]Row, error) {
		calls++
		return []Row{{ast.FieldName: variant.FromString("hit")}}, nil
	}
	ev := New(inner)
	ctx1 := bundleCtx(t, "a.txt", "x")
	ctx2 := bundleCtx(t, "b.txt", "y")

	sub := &ast.Query{
		Fields: []*ast.Expr{ast.NewFieldWithRootAlias(ast.FieldName, "t2")},
		Roots:  []*ast.Root{{Path: "/t2", Alias: "t2"}},
	}
	expr := ast.NewSubquery(sub)
	expr.HasFunction = true
	expr.Function = ast.FuncExists

	ok, err := ev.evalExists(expr, ctx1)
	if err != nil || !ok {
		t.Fatalf("evalExists (first) = %v, %v", ok, err)
	}
	ok, err = ev.evalExists(expr, ctx2)
	if err != nil || !ok {
		t.Fatalf("evalExists (second) = %v, %v", ok, err)
	}
	if calls != 1 {
		t.Fatalf("expected uncorrelated subquery to run once, ran %d times", calls)
	}
}

func TestEvalInSubquery(t *testing.T) {
	inner := func(q *ast.Query, bound *Context) ([]Row, error) {
		return []Row{
			{ast.FieldName: variant.FromString("keep.go")},
			{ast.FieldName: variant.FromString("also.go")},
		}, nil
	}
	ev := New(inner)
	ctx := bundleCtx(t, "keep.go", "x")

	sub := &ast.Query{
		Fields: []*ast.Expr{ast.NewFieldWithRootAlias(ast.FieldName, "t2")},
		Roots:  []*ast.Root{{Path: "/t2", Alias: "t2"}},
	}
	expr := ast.NewOp(ast.NewField(ast.FieldName), ast.OpIn, ast.NewSubquery(sub))

	ok, err := ev.EvalBool(expr, ctx)
	if err != nil {
		t.Fatalf("EvalBool: %v", err)
	}
	if !ok {
		t.Fatal("expected keep.go to be found in subquery rows")
	}
}

func TestAggregateMinMaxAvgSumCount(t *testing.T) {
	values := []variant.Variant{
		variant.FromInt(4),
		variant.FromInt(10),
		variant.FromInt(1),
	}
	if v := Aggregate(ast.FuncMin, values); v.ToInt() != 1 {
		t.Fatalf("min = %d, want 1", v.ToInt())
	}
	if v := Aggregate(ast.FuncMax, values); v.ToInt() != 10 {
		t.Fatalf("max = %d, want 10", v.ToInt())
	}
	if v := Aggregate(ast.FuncSum, values); v.ToInt() != 15 {
		t.Fatalf("sum = %d, want 15", v.ToInt())
	}
	if v := Aggregate(ast.FuncAvg, values); v.ToInt() != 5 {
		t.Fatalf("avg = %d, want 5", v.ToInt())
	}
	if v := Aggregate(ast.FuncCount, values); v.ToInt() != 3 {
		t.Fatalf("count = %d, want 3", v.ToInt())
	}
}

func TestBuildSortKeyOrdersAscendingNumeric(t *testing.T) {
	ev := New(nil)
	small := bundleCtx(t, "small.bin", "x")
	big := bundleCtx(t, "big.bin", "xxxxxxxxxx")

	fields := []*ast.Expr{ast.NewField(ast.FieldSize)}
	asc := []bool{true}

	smallKey, err := ev.BuildSortKey(fields, asc, small)
	if err != nil {
		t.Fatalf("BuildSortKey: %v", err)
	}
	bigKey, err := ev.BuildSortKey(fields, asc, big)
	if err != nil {
		t.Fatalf("BuildSortKey: %v", err)
	}
	if !(smallKey < bigKey) {
		t.Fatalf("expected smaller file's key to sort first")
	}
}

func TestBuildSortKeyDescendingReversesOrder(t *testing.T) {
	ev := New(nil)
	small := bundleCtx(t, "small.bin", "x")
	big := bundleCtx(t, "big.bin", "xxxxxxxxxx")

	fields := []*ast.Expr{ast.NewField(ast.FieldSize)}
	descAsc := []bool{false}

	smallKey, err := ev.BuildSortKey(fields, descAsc, small)
	if err != nil {
		t.Fatalf("BuildSortKey: %v", err)
	}
	bigKey, err := ev.BuildSortKey(fields, descAsc, big)
	if err != nil {
		t.Fatalf("BuildSortKey: %v", err)
	}
	if !(bigKey < smallKey) {
		t.Fatalf("expected descending order to sort the bigger file's key first")
	}
}

package ast

import "testing"

func TestExprWeight(t *testing.T) {
	if w := NewField(FieldName).Weight; w != 0 {
		t.Errorf("Name weight = %d, want 0", w)
	}
	if w := NewField(FieldAccessed).Weight; w != 1 {
		t.Errorf("Accessed weight = %d, want 1", w)
	}
	if w := NewFunction(FuncLower).Weight; w != 4 {
		t.Errorf("lower() weight = %d, want 4", w)
	}
	if w := NewFunction(FuncContains).Weight; w != 1024 {
		t.Errorf("contains() weight = %d, want 1024", w)
	}
	if w := NewFunctionLeft(FuncContains, NewValue("foo")).Weight; w != 1024 {
		t.Errorf("contains('foo') weight = %d, want 1024", w)
	}

	expr := NewLogicalOp(
		NewOp(NewField(FieldSize), OpGt, NewValue("456")),
		LogicalOr,
		NewOp(NewField(FieldFormattedSize), OpLte, NewValue("758")),
	)
	if expr.Weight != 2 {
		t.Errorf("weight = %d, want 2", expr.Weight)
	}

	nested := NewLogicalOp(
		NewLogicalOp(
			NewOp(NewField(FieldName), OpNe, NewValue("123")),
			LogicalAnd,
			NewLogicalOp(
				NewOp(NewField(FieldSize), OpGt, NewValue("456")),
				LogicalOr,
				NewOp(NewField(FieldFormattedSize), OpLte, NewValue("758")),
			),
		),
		LogicalOr,
		NewOp(NewField(FieldName), OpEq, NewValue("xxx")),
	)
	if nested.Weight != 2 {
		t.Errorf("nested weight = %d, want 2", nested.Weight)
	}
}

// buildExistsExpr constructs the Expr tree a parser would produce for the
// WHERE clause of:
//
//	select t1.name from /t1 as t1 where t1.name = (select t2.name from /t2 as t2 where <inner>)
//
// without depending on the parser package, by assembling the tree directly
// the way expr.rs's own tests exercise it through a real parse. inner may
// be nil for the uncorrelated case.
func buildExistsExpr(inner *Expr) *Expr {
	sub := &Query{
		Fields: []*Expr{NewFieldWithRootAlias(FieldName, "t2")},
		Roots:  []*Root{{Path: "/t2", Alias: "t2"}},
		Expr:   inner,
	}
	return NewOp(
		NewFieldWithRootAlias(FieldName, "t1"),
		OpEq,
		NewSubquery(sub),
	)
}

func TestNoSubqueriesReturnsEmptyForAlias(t *testing.T) {
	expr := NewOp(NewFieldWithRootAlias(FieldName, "t1"), OpGt, NewValue("10"))
	set := expr.GetFieldsRequiredInSubqueries("t1", false)
	if len(set) != 0 {
		t.Errorf("expected no required fields, got %v", set)
	}
}

func TestUncorrelatedExistsReturnsEmptyForOuterAlias(t *testing.T) {
	innerWhere := NewOp(NewFieldWithRootAlias(FieldSize, "t2"), OpGt, NewValue("0"))
	expr := buildExistsExpr(innerWhere)
	set := expr.GetFieldsRequiredInSubqueries("t1", false)
	if len(set) != 0 {
		t.Errorf("expected no required fields for t1 in uncorrelated subquery, got %v", set)
	}
}

func TestCorrelatedExistsCollectsParentFields(t *testing.T) {
	innerWhere := NewLogicalOp(
		NewOp(NewFieldWithRootAlias(FieldName, "t2"), OpEq, NewFieldWithRootAlias(FieldName, "t1")),
		LogicalAnd,
		NewOp(NewFieldWithRootAlias(FieldSize, "t2"), OpGt, NewFieldWithRootAlias(FieldSize, "t1")),
	)
	expr := buildExistsExpr(innerWhere)

	set := expr.GetFieldsRequiredInSubqueries("t1", false)
	if _, ok := set[FieldName]; !ok {
		t.Errorf("expected Name in required fields for t1, got %v", set)
	}
	if _, ok := set[FieldSize]; !ok {
		t.Errorf("expected Size in required fields for t1, got %v", set)
	}
	if len(set) != 2 {
		t.Errorf("expected exactly 2 required fields, got %v", set)
	}

	innerSet := expr.Right.Subquery.Expr.GetFieldsRequiredInSubqueries("t2", false)
	if len(innerSet) != 0 {
		t.Errorf("expected no required fields for t2 in correlated subquery, got %v", innerSet)
	}
}

func TestDeeplyNestedSubqueryCanReferenceOuterAlias(t *testing.T) {
	t3Where := NewOp(NewFieldWithRootAlias(FieldModified, "t3"), OpEq, NewFieldWithRootAlias(FieldModified, "t1"))
	t3Sub := &Query{
		Fields: []*Expr{NewFieldWithRootAlias(FieldName, "t3")},
		Roots:  []*Root{{Path: "/t3", Alias: "t3"}},
		Expr:   t3Where,
	}

	t2Where := NewLogicalOp(
		NewOp(NewFieldWithRootAlias(FieldName, "t2"), OpEq, NewSubquery(t3Sub)),
		LogicalAnd,
		NewOp(NewFieldWithRootAlias(FieldSize, "t2"), OpGt, NewFieldWithRootAlias(FieldSize, "t1")),
	)
	expr := buildExistsExpr(t2Where)

	set := expr.GetFieldsRequiredInSubqueries("t1", false)
	if _, ok := set[FieldModified]; !ok {
		t.Errorf("expected Modified in required fields for t1, got %v", set)
	}
	if _, ok := set[FieldSize]; !ok {
		t.Errorf("expected Size in required fields for t1, got %v", set)
	}
	if len(set) != 2 {
		t.Errorf("expected exactly 2 required fields, got %v", set)
	}

	t2Set := expr.Right.Subquery.Expr.GetFieldsRequiredInSubqueries("t2", false)
	if len(t2Set) != 0 {
		t.Errorf("expected no required fields for t2, got %v", t2Set)
	}

	t3Set := expr.Right.Subquery.Expr.Left.Right.Subquery.Expr.GetFieldsRequiredInSubqueries("t3", false)
	if len(t3Set) != 0 {
		t.Errorf("expected no required fields for t3, got %v", t3Set)
	}

	t1SetFromInner := expr.Right.Subquery.Expr.Left.Right.Subquery.Expr.GetFieldsRequiredInSubqueries("t1", false)
	if len(t1SetFromInner) != 0 {
		t.Errorf("expected no required fields for t1 when queried from the t3 subquery scope, got %v", t1SetFromInner)
	}
}

func TestHasAggregateFunction(t *testing.T) {
	plain := NewOp(NewField(FieldSize), OpGt, NewValue("10"))
	if plain.HasAggregateFunction() {
		t.Error("plain comparison should not report an aggregate function")
	}

	agg := NewLogicalOp(plain, LogicalAnd, NewFunction(FuncCount))
	if !agg.HasAggregateFunction() {
		t.Error("expected count() to be detected as an aggregate function")
	}
}

func TestGetRequiredFields(t *testing.T) {
	expr := NewLogicalOp(
		NewOp(NewField(FieldSize), OpGt, NewValue("10")),
		LogicalAnd,
		NewOp(NewField(FieldName), OpLike, NewValue("%.go")),
	)
	fields := expr.GetRequiredFields()
	if _, ok := fields[FieldSize]; !ok {
		t.Error("expected Size in required fields")
	}
	if _, ok := fields[FieldName]; !ok {
		t.Error("expected Name in required fields")
	}
}

func TestContainsNumericDatetimeColorized(t *testing.T) {
	numeric := NewOp(NewField(FieldSize), OpGt, NewValue("10"))
	if !numeric.ContainsNumeric() {
		t.Error("expected size comparison to report numeric")
	}

	datetime := NewOp(NewField(FieldModified), OpGt, NewValue("2020-01-01"))
	if !datetime.ContainsDatetime() {
		t.Error("expected modified comparison to report datetime")
	}

	colorized := NewField(FieldName)
	if !colorized.ContainsColorized() {
		t.Error("expected bare name field to report colorized")
	}

	wrapped := NewFunctionLeft(FuncLower, NewField(FieldName))
	if wrapped.ContainsColorized() {
		t.Error("expected lower(name) to not report colorized (function call breaks the chain)")
	}
}

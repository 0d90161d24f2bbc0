package ast

import "strings"

// Expr is a single node in the predicate/arithmetic tree. Unlike the
// teacher's polymorphic Node/Expr interface catalogue, every node shape the
// grammar produces (binary operator, function call, field reference,
// literal, sub-query) is represented by one struct with optional members,
// mirroring original_source/src/expr.rs's Expr struct directly rather than
// growing a parallel interface hierarchy for five or six node kinds.
type Expr struct {
	Left         *Expr
	ArithmeticOp ArithmeticOp
	LogicalOp    LogicalOp
	Op           Op
	Right        *Expr
	Minus        bool
	Field        Field
	HasField     bool
	Function     Function
	HasFunction  bool
	Args         []*Expr
	Val          *string
	Subquery     *Query
	RootAlias    string
	Weight       int

	// Negated inverts e's boolean evaluation result. Unlike the NOT-before-a-
	// comparison case (which the parser folds directly into Op via
	// Op.Invert, e.g. "not name = 'x'" becomes Op: OpNe), Negated covers NOT
	// applied to a non-comparison boolean expression — chiefly "not
	// exists(...)" and "not (a and b)" — where there is no single operator
	// to flip.
	Negated bool
}

// NewField builds a leaf Expr referencing field.
func NewField(field Field) *Expr {
	return &Expr{Field: field, HasField: true, Weight: field.Weight()}
}

// NewFieldWithRootAlias builds a leaf Expr referencing field, qualified by
// a root alias (e.g. the "t1" in "t1.name").
func NewFieldWithRootAlias(field Field, rootAlias string) *Expr {
	return &Expr{Field: field, HasField: true, RootAlias: rootAlias, Weight: field.Weight()}
}

// NewFunction builds a leaf Expr calling function with no arguments yet
// (callers append via SetArgs or by assigning Left for single-argument
// functions).
func NewFunction(function Function) *Expr {
	return &Expr{Function: function, HasFunction: true, Weight: function.Weight()}
}

// NewFunctionLeft builds a function-call Expr over a single argument
// expression, folded into Left per the teacher's and original's convention
// for unary functions (lower(name), length(path), and so on).
func NewFunctionLeft(function Function, left *Expr) *Expr {
	weight := function.Weight()
	if left != nil {
		weight += left.Weight
	}
	return &Expr{Function: function, HasFunction: true, Left: left, Weight: weight}
}

// NewValue builds a literal Expr. Coercion to a typed Variant happens at
// evaluation time, not here; weight is always 0 for a literal.
func NewValue(value string) *Expr {
	return &Expr{Val: &value}
}

// NewSubquery builds an Expr wrapping a sub-query (used by EXISTS/IN),
// inheriting the sub-query's own predicate weight.
func NewSubquery(subquery *Query) *Expr {
	weight := 0
	if subquery != nil && subquery.Expr != nil {
		weight = subquery.Expr.Weight
	}
	return &Expr{Subquery: subquery, Weight: weight}
}

// NewOp builds a comparison Expr over left and right, combining their weights.
func NewOp(left *Expr, op Op, right *Expr) *Expr {
	return &Expr{Left: left, Op: op, Right: right, Weight: left.Weight + right.Weight}
}

// NewLogicalOp builds an AND/OR Expr over left and right, combining their
// weights; weight-based reordering at evaluation time uses this sum to
// decide which branch is cheaper to try first.
func NewLogicalOp(left *Expr, logicalOp LogicalOp, right *Expr) *Expr {
	return &Expr{Left: left, LogicalOp: logicalOp, Right: right, Weight: left.Weight + right.Weight}
}

// NewArithmeticOp builds an arithmetic Expr (size + 10, and so on) over
// left and right.
func NewArithmeticOp(left *Expr, arithmeticOp ArithmeticOp, right *Expr) *Expr {
	return &Expr{Left: left, ArithmeticOp: arithmeticOp, Right: right, Weight: left.Weight + right.Weight}
}

// AddLeft attaches left as e's left child after the fact (used by the
// parser while building a function call whose argument is parsed after the
// function name token), folding its weight into e's own.
func (e *Expr) AddLeft(left *Expr) {
	e.Left = left
	if left != nil {
		e.Weight += left.Weight
	}
}

// SetArgs attaches args as e's argument list, folding their weights into
// e's own. Used for multi-argument functions (contains, xattr).
func (e *Expr) SetArgs(args []*Expr) {
	e.Args = args
	for _, arg := range args {
		if arg != nil {
			e.Weight += arg.Weight
		}
	}
}

// HasAggregateFunction reports whether e or any descendant calls an
// aggregate function (min/max/avg/sum/count), which forces single-row
// aggregation of the whole result set (spec 4.7).
func (e *Expr) HasAggregateFunction() bool {
	if e == nil {
		return false
	}
	if e.Left.HasAggregateFunction() {
		return true
	}
	if e.Right.HasAggregateFunction() {
		return true
	}
	if e.HasFunction && e.Function.IsAggregateFunction() {
		return true
	}
	for _, arg := range e.Args {
		if arg.HasAggregateFunction() {
			return true
		}
	}
	return false
}

// GetRequiredFields returns the set of fields e (and its descendants)
// reads, used to decide which attributes must be extracted per entry.
func (e *Expr) GetRequiredFields() map[Field]struct{} {
	result := make(map[Field]struct{})
	e.collectRequiredFields(result)
	return result
}

func (e *Expr) collectRequiredFields(result map[Field]struct{}) {
	if e == nil {
		return
	}
	e.Left.collectRequiredFields(result)
	e.Right.collectRequiredFields(result)
	if e.HasField {
		result[e.Field] = struct{}{}
	}
	for _, arg := range e.Args {
		arg.collectRequiredFields(result)
	}
}

// GetFieldsRequiredInSubqueries returns the set of fields, among those
// qualified by alias, that a correlated sub-query reads from its outer
// query. parentSubquery distinguishes "we are already inside a sub-query"
// (true) from "we are at the top-level predicate" (false): a field
// qualified by alias at the top level is not a correlation, only one
// referenced from within a nested sub-query's predicate is. Grounded
// verbatim on expr.rs's get_fields_required_in_subqueries, which resolves
// the Open Question of how EXISTS/IN correlation is detected (by matching
// the alias string against Expr.RootAlias wherever it occurs, not by
// tracking scopes).
func (e *Expr) GetFieldsRequiredInSubqueries(alias string, parentSubquery bool) map[Field]struct{} {
	result := make(map[Field]struct{})
	e.collectFieldsRequiredInSubqueries(alias, parentSubquery, result)
	return result
}

func (e *Expr) collectFieldsRequiredInSubqueries(alias string, parentSubquery bool, result map[Field]struct{}) {
	if e == nil {
		return
	}
	if e.Subquery != nil && e.Subquery.Expr != nil {
		e.Subquery.Expr.collectFieldsRequiredInSubqueries(alias, true, result)
	}
	if e.Left != nil {
		e.Left.collectFieldsRequiredInSubqueries(alias, parentSubquery, result)
	}
	if e.Right != nil {
		e.Right.collectFieldsRequiredInSubqueries(alias, parentSubquery, result)
	}
	if e.RootAlias == alias && e.RootAlias != "" && e.HasField && parentSubquery {
		result[e.Field] = struct{}{}
	}
}

// ContainsNumeric reports whether e (following only the Left spine, as the
// original does) is ultimately rooted in a numeric field or function.
func (e *Expr) ContainsNumeric() bool {
	if e == nil {
		return false
	}
	if e.HasField && e.Field.IsNumericField() {
		return true
	}
	if e.HasFunction && e.Function.IsNumericFunction() {
		return true
	}
	return e.Left.ContainsNumeric()
}

// ContainsDatetime reports whether e is ultimately rooted in a datetime
// field, following only the Left spine.
func (e *Expr) ContainsDatetime() bool {
	if e == nil {
		return false
	}
	if e.HasField && e.Field.IsDatetimeField() {
		return true
	}
	return e.Left.ContainsDatetime()
}

// ContainsColorized reports whether e is ultimately rooted in a
// colorizable field, following only the Left spine. Any function call
// breaks the chain (a function's output is not the field's own value).
func (e *Expr) ContainsColorized() bool {
	if e == nil {
		return false
	}
	if e.HasFunction {
		return false
	}
	if e.HasField && e.Field.IsColorizedField() {
		return true
	}
	return e.Left.ContainsColorized()
}

// String renders a compact label for e (used as a column heading and in
// debug logging): fields, function calls and literal values are written
// in order, comparison/logical/arithmetic operators are not written, and a
// sub-query is rendered as a "(subquery)" placeholder. Grounded on
// expr.rs's Display impl.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	var b strings.Builder

	if e.Negated {
		b.WriteString("not ")
	}

	if e.Minus {
		b.WriteByte('-')
	}

	if e.HasFunction && e.Function == FuncExists {
		b.WriteString("exists(")
		b.WriteString("subquery")
		b.WriteByte(')')
		return b.String()
	}

	if e.Subquery != nil {
		b.WriteString("(subquery)")
		return b.String()
	}

	if e.HasFunction {
		b.WriteString(e.Function.String())
		b.WriteByte('(')
		b.WriteString(e.Left.String())
		b.WriteByte(')')
	} else if e.Left != nil {
		b.WriteString(e.Left.String())
	}

	if e.HasField {
		if e.RootAlias != "" {
			b.WriteString(e.RootAlias)
			b.WriteByte('.')
		}
		b.WriteString(e.Field.String())
	}

	if e.Val != nil {
		b.WriteString(*e.Val)
	}

	if e.Right != nil {
		b.WriteString(e.Right.String())
	}

	return b.String()
}

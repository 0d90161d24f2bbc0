// Package eval implements the predicate and value evaluator of spec 4.3:
// comparison/arithmetic operator semantics over ast.Expr trees, AND/OR
// short-circuiting with weight-based reordering, scalar and aggregate
// function dispatch, and EXISTS/IN sub-query evaluation. Grounded on
// original_source/src/searcher.rs's conforms (the AND/OR short-circuit
// recursion shape) and function.rs's get_value/get_aggregate_value
// dispatch; the teacher module (freeeve-machparse) has no evaluator of
// its own to ground against, since it is a parser library only.
package eval

import (
	"github.com/go-fselect/fselect/ast"
	"github.com/go-fselect/fselect/internal/attr"
	"github.com/go-fselect/fselect/internal/errs"
	"github.com/go-fselect/fselect/internal/variant"
)

// boundKey identifies one outer-bound field value captured for a
// correlated sub-query (spec 4.6).
type boundKey struct {
	alias string
	field ast.Field
}

// Context carries the state needed to evaluate one Expr tree against one
// entry: its own root alias and Bundle, plus any outer-query field values
// bound in for a correlated sub-query.
type Context struct {
	Alias  string
	Bundle *attr.Bundle
	bound  map[boundKey]variant.Variant
}

// NewContext builds a top-level evaluation context for one traversal
// entry.
func NewContext(alias string, bundle *attr.Bundle) *Context {
	return &Context{Alias: alias, Bundle: bundle}
}

func (c *Context) withBound(alias string, values map[ast.Field]variant.Variant) *Context {
	merged := make(map[boundKey]variant.Variant, len(c.bound)+len(values))
	for k, v := range c.bound {
		merged[k] = v
	}
	for field, v := range values {
		merged[boundKey{alias: alias, field: field}] = v
	}
	return &Context{Alias: c.Alias, Bundle: c.Bundle, bound: merged}
}

func (c *Context) lookupBound(alias string, field ast.Field) (variant.Variant, bool) {
	if c.bound == nil {
		return variant.Variant{}, false
	}
	v, ok := c.bound[boundKey{alias: alias, field: field}]
	return v, ok
}

// WithOuter returns a Context identical to c but additionally carrying any
// correlated-subquery bindings outer already holds, so a sub-query's own
// per-entry Context can still resolve field references qualified by an
// outer alias while the sub-query's own traversal is running.
func (c *Context) WithOuter(outer *Context) *Context {
	if outer == nil || len(outer.bound) == 0 {
		return c
	}
	merged := make(map[boundKey]variant.Variant, len(c.bound)+len(outer.bound))
	for k, v := range c.bound {
		merged[k] = v
	}
	for k, v := range outer.bound {
		merged[k] = v
	}
	return &Context{Alias: c.Alias, Bundle: c.Bundle, bound: merged}
}

// InnerTraversal drives a sub-query's own traversal and returns its
// matched rows (EXISTS tests for at least one row; IN compares against
// each row's first projected column) — it is implemented by
// whatever owns both eval and walk (the engine wiring both packages
// together), since eval itself must not import walk: the sub-query's
// inner traversal is a walk.Walker.Walk call keyed by the sub-query's own
// roots, and eval only needs the resulting rows, not the walker.
type InnerTraversal func(q *ast.Query, bound *Context) ([]Row, error)

// Row is one matched inner-query result: its projected column values,
// keyed by field, for the columns the sub-query's Fields list names.
type Row map[ast.Field]variant.Variant

// Evaluator evaluates ast.Expr trees against attr.Bundle-backed entries.
// Inner carries the sub-query runner (spec 4.6); it is nil for engines
// that never evaluate EXISTS/IN (e.g. pure unit tests of comparisons).
type Evaluator struct {
	Inner InnerTraversal

	memo map[*ast.Query][]Row
}

// New builds an Evaluator. inner drives sub-query traversal for EXISTS/IN;
// pass nil if the expressions under evaluation never contain one.
func New(inner InnerTraversal) *Evaluator {
	return &Evaluator{Inner: inner, memo: make(map[*ast.Query][]Row)}
}

// EvalBool evaluates e as a boolean predicate against ctx, short-circuiting
// AND/OR and applying Negated last. A nil e (no WHERE clause) is always
// true.
func (ev *Evaluator) EvalBool(e *ast.Expr, ctx *Context) (bool, error) {
	if e == nil {
		return true, nil
	}
	result, err := ev.evalBoolInner(e, ctx)
	if err != nil {
		return false, err
	}
	if e.Negated {
		result = !result
	}
	return result, nil
}

func (ev *Evaluator) evalBoolInner(e *ast.Expr, ctx *Context) (bool, error) {
	switch {
	case e.LogicalOp != ast.LogicalNone:
		return ev.evalLogical(e, ctx)
	case e.Op != ast.OpNone:
		return ev.evalComparison(e, ctx)
	case e.HasFunction && e.Function == ast.FuncExists:
		return ev.evalExists(e, ctx)
	case e.Subquery != nil:
		rows, err := ev.subqueryRows(e.Subquery, e, ctx)
		return len(rows) > 0, err
	default:
		v, err := ev.Eval(e, ctx)
		if err != nil {
			return false, err
		}
		return v.ToBool(), nil
	}
}

// evalLogical evaluates an AND/OR node, reordering so the cheaper
// (lower-weight) branch runs first: a pure optimization, since evaluation
// is side-effect-free besides Bundle's own caching (spec 4.3).
func (ev *Evaluator) evalLogical(e *ast.Expr, ctx *Context) (bool, error) {
	left, right := e.Left, e.Right
	if right != nil && left != nil && right.Weight < left.Weight {
		left, right = right, left
	}

	leftResult, err := ev.EvalBool(left, ctx)
	if err != nil {
		return false, err
	}

	switch e.LogicalOp {
	case ast.LogicalAnd:
		if !leftResult {
			return false, nil
		}
		return ev.EvalBool(right, ctx)
	case ast.LogicalOr:
		if leftResult {
			return true, nil
		}
		return ev.EvalBool(right, ctx)
	default:
		return leftResult, nil
	}
}

func (ev *Evaluator) evalComparison(e *ast.Expr, ctx *Context) (bool, error) {
	if e.Op == ast.OpIn || e.Op == ast.OpNotIn {
		return ev.evalIn(e, ctx)
	}

	leftVal, err := ev.Eval(e.Left, ctx)
	if err != nil {
		return false, err
	}
	rightVal, err := ev.Eval(e.Right, ctx)
	if err != nil {
		return false, err
	}

	return compareValues(e, leftVal, rightVal), nil
}

// Eval resolves e to a Variant: a field read, a literal, an arithmetic
// result, or a scalar function call. Comparison and logical nodes are not
// valid here; use EvalBool for those.
func (ev *Evaluator) Eval(e *ast.Expr, ctx *Context) (variant.Variant, error) {
	if e == nil {
		return variant.Empty(variant.TypeString), nil
	}

	switch {
	case e.ArithmeticOp != ast.ArithNone:
		return ev.evalArithmetic(e, ctx)
	case e.HasFunction:
		return ev.evalFunction(e, ctx)
	case e.HasField:
		return ev.evalField(e, ctx)
	case e.Val != nil:
		v := variant.FromString(*e.Val)
		if e.Minus {
			v = variant.FromSignedString(*e.Val, true)
		}
		return v, nil
	case e.Subquery != nil:
		rows, err := ev.subqueryRows(e.Subquery, e, ctx)
		if err != nil {
			return variant.Empty(variant.TypeString), err
		}
		return firstRowValue(e.Subquery, rows), nil
	default:
		return variant.Empty(variant.TypeString), nil
	}
}

func (ev *Evaluator) evalField(e *ast.Expr, ctx *Context) (variant.Variant, error) {
	if e.RootAlias != "" && e.RootAlias != ctx.Alias {
		if v, ok := ctx.lookupBound(e.RootAlias, e.Field); ok {
			return v, nil
		}
	}
	return ctx.Bundle.Get(e.Field)
}

// evalArithmetic always produces a Float variant (spec 4.3: "arithmetic is
// always performed in floating point").
func (ev *Evaluator) evalArithmetic(e *ast.Expr, ctx *Context) (variant.Variant, error) {
	leftVal, err := ev.Eval(e.Left, ctx)
	if err != nil {
		return variant.Empty(variant.TypeFloat), err
	}
	rightVal, err := ev.Eval(e.Right, ctx)
	if err != nil {
		return variant.Empty(variant.TypeFloat), err
	}

	l, r := leftVal.ToFloat(), rightVal.ToFloat()
	var result float64
	switch e.ArithmeticOp {
	case ast.ArithAdd:
		result = l + r
	case ast.ArithSubtract:
		result = l - r
	case ast.ArithMultiply:
		result = l * r
	case ast.ArithDivide:
		if r == 0 {
			return variant.Empty(variant.TypeFloat), errs.NewEvalError("arithmetic", errDivideByZero)
		}
		result = l / r
	case ast.ArithModulo:
		if r == 0 {
			return variant.Empty(variant.TypeFloat), errs.NewEvalError("arithmetic", errDivideByZero)
		}
		result = float64(int64(l) % int64(r))
	}
	return variant.FromFloat(result), nil
}

func firstRowValue(q *ast.Query, rows []Row) variant.Variant {
	if len(rows) == 0 || len(q.Fields) == 0 {
		return variant.Empty(variant.TypeString)
	}
	field := q.Fields[0]
	if !field.HasField {
		return variant.Empty(variant.TypeString)
	}
	if v, ok := rows[0][field.Field]; ok {
		return v
	}
	return variant.Empty(variant.TypeString)
}

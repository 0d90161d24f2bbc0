package eval

import (
	"github.com/go-fselect/fselect/ast"
	"github.com/go-fselect/fselect/internal/variant"
)

// evalExists evaluates an EXISTS(subquery) predicate: true if the inner
// traversal produces at least one row (spec 4.6).
func (ev *Evaluator) evalExists(e *ast.Expr, ctx *Context) (bool, error) {
	rows, err := ev.subqueryRows(e.Subquery, e, ctx)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// evalIn evaluates "field IN (subquery)"/"field NOT IN (subquery)": true if
// e.Left's value matches the subquery's first projected column in at least
// one row. This grammar never admits a literal value list for IN (confirmed
// against parser.go's parseCond/parseParen and parser_test.go's
// TestInSubquery), so e.Right.Subquery is always present here.
func (ev *Evaluator) evalIn(e *ast.Expr, ctx *Context) (bool, error) {
	leftVal, err := ev.Eval(e.Left, ctx)
	if err != nil {
		return false, err
	}

	rows, err := ev.subqueryRows(e.Right.Subquery, e.Right, ctx)
	if err != nil {
		return false, err
	}

	found := false
	if len(rows) > 0 && len(e.Right.Subquery.Fields) > 0 {
		field := e.Right.Subquery.Fields[0]
		if field.HasField {
			for _, row := range rows {
				if v, ok := row[field.Field]; ok && v.ToString() == leftVal.ToString() {
					found = true
					break
				}
			}
		}
	}

	if e.Op == ast.OpNotIn {
		return !found, nil
	}
	return found, nil
}

// subqueryRows runs q's own traversal, binding any fields q's predicate
// reads from the outer alias (via e.GetFieldsRequiredInSubqueries) so a
// correlated sub-query sees the current outer row's values. An uncorrelated
// sub-query (the field set is empty) is memoized per spec 4.6, since the
// same *ast.Query node is re-evaluated for every outer row but its result
// set cannot depend on the outer row.
func (ev *Evaluator) subqueryRows(q *ast.Query, e *ast.Expr, ctx *Context) ([]Row, error) {
	if ev.Inner == nil {
		return nil, nil
	}

	required := e.GetFieldsRequiredInSubqueries(ctx.Alias, false)
	if len(required) == 0 {
		if rows, ok := ev.memo[q]; ok {
			return rows, nil
		}
		rows, err := ev.Inner(q, ctx)
		if err != nil {
			return nil, err
		}
		ev.memo[q] = rows
		return rows, nil
	}

	values := make(map[ast.Field]variant.Variant, len(required))
	for field := range required {
		v, err := ctx.Bundle.Get(field)
		if err != nil {
			return nil, err
		}
		values[field] = v
	}
	bound := ctx.withBound(ctx.Alias, values)
	return ev.Inner(q, bound)
}

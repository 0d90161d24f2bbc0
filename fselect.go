// Package fselect is the public entry point tying the lexer, parser,
// evaluator, traversal driver, and formatter together into one runnable
// query engine, the way the teacher's own sqlparser.go re-exports its
// package set behind a small surface. Unlike the teacher (a parser library
// with no execution step), this module's domain requires actually running
// a query, so Run below is the new top-level operation; Parse is kept as a
// thin re-export for callers that only want the AST.
package fselect

import (
	"context"
	"errors"
	"io"

	"github.com/go-fselect/fselect/ast"
	"github.com/go-fselect/fselect/format"
	"github.com/go-fselect/fselect/internal/config"
	"github.com/go-fselect/fselect/internal/errs"
	"github.com/go-fselect/fselect/internal/eval"
	"github.com/go-fselect/fselect/internal/topn"
	"github.com/go-fselect/fselect/internal/variant"
	"github.com/go-fselect/fselect/internal/walk"
	"github.com/go-fselect/fselect/parser"
)

// Parse parses a single query into its AST, without running it.
func Parse(query string) (*ast.Query, error) {
	return parser.Parse(query)
}

// Run parses and executes query against cfg, writing the formatted result
// to out. onError (may be nil) receives non-fatal per-path WalkErrors as
// the traversal encounters them (spec 7); ctx cancellation is checked at
// the same entry boundaries the traversal driver checks internally (spec
// 5).
func Run(ctx context.Context, query string, cfg *config.Config, out io.Writer, onError func(error)) error {
	q, err := parser.Parse(query)
	if err != nil {
		return err
	}
	return RunQuery(ctx, query, q, cfg, out, onError)
}

// RunQuery executes an already-parsed query, for callers that built or
// inspected the AST themselves.
func RunQuery(ctx context.Context, rawQuery string, q *ast.Query, cfg *config.Config, out io.Writer, onError func(error)) error {
	if onError == nil {
		onError = func(error) {}
	}

	e := newEngine(ctx, cfg, onError)
	rows, err := e.executeQuery(ctx, q, nil)
	if err != nil {
		return err
	}
	rows = e.finalize(q, rows)

	return writeResults(rawQuery, q, rows, out)
}

// engine owns the Walker and Evaluator for one Run call; it is never
// shared across calls or goroutines, matching spec 5's single-threaded,
// no-package-globals model.
type engine struct {
	ctx     context.Context
	cfg     *config.Config
	onError func(error)
	walker  *walk.Walker
	ev      *eval.Evaluator
}

func newEngine(ctx context.Context, cfg *config.Config, onError func(error)) *engine {
	e := &engine{ctx: ctx, cfg: cfg, onError: onError}
	e.walker = walk.New(cfg, walk.ErrorHandler(onError))
	e.ev = eval.New(e.runSubquery)
	return e
}

// rowResult is one matched row carried between traversal and final
// emission: fields holds every plain-field column's value (keyed by
// ast.Field, for sub-query correlation via eval.Row), values holds every
// projected column's value in display order, and sortKey is the ORDER BY
// composite key computed while the row's attr.Bundle was still live.
type rowResult struct {
	fields  map[ast.Field]variant.Variant
	values  []variant.Variant
	sortKey string
}

// executeQuery runs q's own traversal over all of its Roots, evaluating
// its predicate and projecting its column list per matched entry. outer
// carries the enclosing query's bound fields when q is itself a
// correlated sub-query (spec 4.6); nil for a top-level query.
func (e *engine) executeQuery(ctx context.Context, q *ast.Query, outer *eval.Context) ([]rowResult, error) {
	var rows []rowResult
	ordered := q.IsOrdered()
	limited := q.Limit > 0 && !ordered && !q.HasAggregateColumn()

	for _, root := range q.Roots {
		if ctx.Err() != nil {
			break
		}
		e.walker.Walk(ctx, root, func(entry walk.Entry) bool {
			if ctx.Err() != nil {
				return false
			}

			evCtx := eval.NewContext(entry.Alias, entry.Bundle)
			if outer != nil {
				evCtx = evCtx.WithOuter(outer)
			}

			ok, err := e.ev.EvalBool(q.Expr, evCtx)
			if err != nil {
				var evalErr *errs.EvalError
				if !errors.As(err, &evalErr) {
					e.onError(err)
				}
				return true
			}
			if !ok {
				return true
			}

			row, err := e.projectRow(q, evCtx)
			if err != nil {
				e.onError(err)
				return true
			}
			if ordered {
				key, err := e.ev.BuildSortKey(q.OrderingFields, q.OrderingAsc, evCtx)
				if err != nil {
					e.onError(err)
				} else {
					row.sortKey = key
				}
			}

			rows = append(rows, row)
			return !(limited && uint32(len(rows)) >= q.Limit)
		})
	}

	return rows, nil
}

// projectRow evaluates q's column list against ctx. An aggregate column
// (min/max/avg/sum/count) is evaluated at its own argument expression
// instead of the function itself, so finalize's aggregateRow later folds
// the raw per-row values; a non-aggregate column is evaluated normally.
func (e *engine) projectRow(q *ast.Query, ctx *eval.Context) (rowResult, error) {
	row := rowResult{
		fields: make(map[ast.Field]variant.Variant, len(q.Fields)),
		values: make([]variant.Variant, len(q.Fields)),
	}
	for i, col := range q.Fields {
		target := col
		if col.HasFunction && col.Function.IsAggregateFunction() {
			target = col.Left
		}
		v, err := e.ev.Eval(target, ctx)
		if err != nil {
			return rowResult{}, err
		}
		row.values[i] = v
		if target != nil && target.HasField {
			row.fields[target.Field] = v
		}
	}
	return row, nil
}

// runSubquery implements eval.InnerTraversal, closing over this engine's
// own Walker/Evaluator so a sub-query's traversal reuses the same
// configuration (ignore-file defaults, extension classification) as the
// outer query.
func (e *engine) runSubquery(q *ast.Query, bound *eval.Context) ([]eval.Row, error) {
	rows, err := e.executeQuery(e.ctx, q, bound)
	if err != nil {
		return nil, err
	}
	result := make([]eval.Row, len(rows))
	for i, r := range rows {
		result[i] = eval.Row(r.fields)
	}
	return result, nil
}

// finalize applies spec 4.7's ordering/aggregation/LIMIT rules to a
// top-level query's matched rows.
func (e *engine) finalize(q *ast.Query, rows []rowResult) []rowResult {
	if q.HasAggregateColumn() {
		return []rowResult{e.aggregateRow(q, rows)}
	}
	if q.IsOrdered() {
		return e.orderRows(q, rows)
	}
	if q.Limit > 0 && uint32(len(rows)) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows
}

// aggregateRow collapses rows to the single row spec 4.7 describes: each
// aggregate column folds its collected per-row values via eval.Aggregate;
// each plain column (no GROUP BY exists in this grammar) takes its first
// row's value, the conventional SQL reading of an ungrouped mixed
// aggregate/plain column list.
func (e *engine) aggregateRow(q *ast.Query, rows []rowResult) rowResult {
	out := rowResult{values: make([]variant.Variant, len(q.Fields))}
	for i, col := range q.Fields {
		if col.HasFunction && col.Function.IsAggregateFunction() {
			values := make([]variant.Variant, len(rows))
			for r, row := range rows {
				values[r] = row.values[i]
			}
			out.values[i] = eval.Aggregate(col.Function, values)
			continue
		}
		if len(rows) > 0 {
			out.values[i] = rows[0].values[i]
		}
	}
	return out
}

// orderRows applies ORDER BY (+ optional LIMIT) via a bounded TopN keyed
// by each row's precomputed sort key (spec 4.7).
func (e *engine) orderRows(q *ast.Query, rows []rowResult) []rowResult {
	var tn *topn.TopN[string, rowResult]
	if q.Limit > 0 {
		tn = topn.New[string, rowResult](q.Limit)
	} else {
		tn = topn.Limitless[string, rowResult]()
	}
	for _, row := range rows {
		tn.Insert(row.sortKey, row)
	}
	return tn.Values()
}

// writeResults drives a format.Writer over rows, naming each column after
// its projecting expression's own String() rendering.
func writeResults(rawQuery string, q *ast.Query, rows []rowResult, out io.Writer) error {
	f := format.New(q.OutputFormat)
	w := format.NewWriter(f, out)

	if err := w.WriteHeader(rawQuery, len(q.Fields)); err != nil {
		return errs.NewFormatterError(err)
	}

	names := make([]string, len(q.Fields))
	for i, col := range q.Fields {
		names[i] = col.String()
	}

	for _, row := range rows {
		cols := make([]format.Column, len(row.values))
		for i, v := range row.values {
			cols[i] = format.Column{Name: names[i], Value: v.ToString()}
		}
		if err := w.WriteRow(cols); err != nil {
			return errs.NewFormatterError(err)
		}
	}

	if err := w.WriteFooter(); err != nil {
		return errs.NewFormatterError(err)
	}
	return nil
}

package eval

import (
	"encoding/base64"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/go-fselect/fselect/ast"
	"github.com/go-fselect/fselect/internal/errs"
	"github.com/go-fselect/fselect/internal/variant"
)

// evalFunction dispatches a scalar function call. Grounded on
// original_source/src/function.rs's get_value: every arm reads a single
// "function_arg" string (e.Left evaluated) except Contains/HasXattr/Xattr,
// which additionally read the entry itself via ctx.Bundle. Aggregate
// functions are not handled here; see aggregate.go.
func (ev *Evaluator) evalFunction(e *ast.Expr, ctx *Context) (variant.Variant, error) {
	if e.Function.IsAggregateFunction() {
		return variant.Empty(variant.TypeString), nil
	}

	switch e.Function {
	case ast.FuncContains:
		return ev.evalContains(e, ctx)
	case ast.FuncHasXattr:
		return ev.evalHasXattr(e, ctx)
	case ast.FuncXattr:
		return ev.evalXattr(e, ctx)
	}

	arg, err := ev.Eval(e.Left, ctx)
	if err != nil {
		return variant.Empty(variant.TypeString), err
	}
	argStr := arg.ToString()

	switch e.Function {
	case ast.FuncLower:
		return variant.FromString(cases.Lower(language.Und).String(argStr)), nil
	case ast.FuncUpper:
		return variant.FromString(cases.Upper(language.Und).String(argStr)), nil
	case ast.FuncLength:
		return variant.FromInt(int64(utf8.RuneCountInString(argStr))), nil
	case ast.FuncBase64:
		return variant.FromString(base64.StdEncoding.EncodeToString([]byte(argStr))), nil
	case ast.FuncHex:
		return formatRadix(argStr, 16)
	case ast.FuncOct:
		return formatRadix(argStr, 8)
	case ast.FuncContainsJapanese:
		return variant.FromBool(containsJapanese(argStr)), nil
	case ast.FuncContainsHiragana:
		return variant.FromBool(containsHiragana(argStr)), nil
	case ast.FuncContainsKatakana:
		return variant.FromBool(containsKatakana(argStr)), nil
	case ast.FuncContainsKana:
		return variant.FromBool(containsKana(argStr)), nil
	case ast.FuncContainsKanji:
		return variant.FromBool(containsKanji(argStr)), nil
	case ast.FuncYear, ast.FuncMonth, ast.FuncDay:
		return evalDatePart(e.Function, argStr)
	}

	return variant.Empty(variant.TypeString), nil
}

// formatRadix parses function_arg as a base-10 integer and reformats it
// in the given radix, matching function.rs's Hex/Oct arms ("{:x}"/"{:o}"
// of the parsed integer, not a byte-level encoding of the string itself).
// An unparseable argument yields the empty string variant.
func formatRadix(s string, base int) (variant.Variant, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return variant.Empty(variant.TypeString), nil
	}
	return variant.FromString(strconv.FormatInt(n, base)), nil
}

func evalDatePart(fn ast.Function, arg string) (variant.Variant, error) {
	from, _, err := variant.ParseDatetime(arg)
	if err != nil {
		return variant.Empty(variant.TypeInt), nil
	}
	switch fn {
	case ast.FuncYear:
		return variant.FromInt(int64(from.Year())), nil
	case ast.FuncMonth:
		return variant.FromInt(int64(from.Month())), nil
	case ast.FuncDay:
		return variant.FromInt(int64(from.Day())), nil
	}
	return variant.Empty(variant.TypeInt), nil
}

func (ev *Evaluator) evalContains(e *ast.Expr, ctx *Context) (variant.Variant, error) {
	arg, err := ev.Eval(e.Left, ctx)
	if err != nil {
		return variant.Empty(variant.TypeBool), err
	}
	found, err := ctx.Bundle.Contains(arg.ToString())
	if err != nil {
		return variant.Empty(variant.TypeBool), errs.NewEvalError("contains", err)
	}
	return variant.FromBool(found), nil
}

func (ev *Evaluator) evalHasXattr(e *ast.Expr, ctx *Context) (variant.Variant, error) {
	arg, err := ev.Eval(e.Left, ctx)
	if err != nil {
		return variant.Empty(variant.TypeBool), err
	}
	return variant.FromBool(ctx.Bundle.HasXattr(arg.ToString())), nil
}

func (ev *Evaluator) evalXattr(e *ast.Expr, ctx *Context) (variant.Variant, error) {
	arg, err := ev.Eval(e.Left, ctx)
	if err != nil {
		return variant.Empty(variant.TypeString), err
	}
	return variant.FromString(ctx.Bundle.Xattr(arg.ToString())), nil
}

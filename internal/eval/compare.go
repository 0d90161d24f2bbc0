package eval

import (
	"regexp"
	"strings"

	"github.com/go-fselect/fselect/ast"
	"github.com/go-fselect/fselect/internal/variant"
)

// compareValues dispatches a comparison to the datetime/numeric/string
// evaluator appropriate for e's operands, per spec 4.3's per-operator type
// rules: the field/function rooting e.Left or e.Right (ContainsDatetime/
// ContainsNumeric, already built for exactly this in ast/expr.go) decides
// the comparison domain, not the Variant's own runtime type alone.
func compareValues(e *ast.Expr, left, right variant.Variant) bool {
	switch {
	case e.Left.ContainsDatetime() || e.Right.ContainsDatetime():
		return compareDatetime(e.Op, left, right)
	case e.Left.ContainsNumeric() || e.Right.ContainsNumeric():
		return compareNumeric(e.Op, left, right)
	default:
		return compareString(e.Op, left, right)
	}
}

// compareDatetime compares (from, to) instant intervals: `=` means the
// value overlaps/encloses the other interval, `<` means LHS.from <
// RHS.from, `>` means LHS.from > RHS.to, symmetrically for <=/>=/!=
// (spec 4.3).
func compareDatetime(op ast.Op, left, right variant.Variant) bool {
	lFrom, lTo, lErr := left.ToDateTime()
	rFrom, rTo, rErr := right.ToDateTime()
	if lErr != nil || rErr != nil {
		return false
	}

	switch op {
	case ast.OpEq, ast.OpEeq:
		return !lFrom.After(rTo) && !lTo.Before(rFrom)
	case ast.OpNe, ast.OpEne:
		return !(!lFrom.After(rTo) && !lTo.Before(rFrom))
	case ast.OpGt:
		return lFrom.After(rTo)
	case ast.OpGte:
		return !lFrom.Before(rFrom)
	case ast.OpLt:
		return lFrom.Before(rFrom)
	case ast.OpLte:
		return !lFrom.After(rTo)
	default:
		return false
	}
}

// compareNumeric coerces both sides via ToFloat (which itself falls back
// through ToInt's file-size parsing, so "size > 1mb" works) and compares.
func compareNumeric(op ast.Op, left, right variant.Variant) bool {
	l, r := left.ToFloat(), right.ToFloat()
	switch op {
	case ast.OpEq, ast.OpEeq:
		return l == r
	case ast.OpNe, ast.OpEne:
		return l != r
	case ast.OpGt:
		return l > r
	case ast.OpGte:
		return l >= r
	case ast.OpLt:
		return l < r
	case ast.OpLte:
		return l <= r
	default:
		return compareString(op, left, right)
	}
}

// compareString implements the string-comparison rules of spec 4.3: a
// glob-looking `=`/`!=` operand (containing `*` or `?`) becomes an
// anchored case-insensitive regex; `like`/`notlike` use SQL `%`/`_`; `rx`/
// `notrx` use the RHS as a regex as-is; `eeq`/`ene` force exact string
// equality with no glob interpretation.
func compareString(op ast.Op, left, right variant.Variant) bool {
	l, r := left.ToString(), right.ToString()

	switch op {
	case ast.OpEq:
		if isGlob(r) {
			return matchesRegex(globToRegex(r), l)
		}
		return l == r
	case ast.OpNe:
		if isGlob(r) {
			return !matchesRegex(globToRegex(r), l)
		}
		return l != r
	case ast.OpEeq:
		return l == r
	case ast.OpEne:
		return l != r
	case ast.OpGt:
		return l > r
	case ast.OpGte:
		return l >= r
	case ast.OpLt:
		return l < r
	case ast.OpLte:
		return l <= r
	case ast.OpRx:
		return matchesRegex(r, l)
	case ast.OpNotRx:
		return !matchesRegex(r, l)
	case ast.OpLike:
		return matchesRegex(likeToRegex(r), l)
	case ast.OpNotLike:
		return !matchesRegex(likeToRegex(r), l)
	default:
		return false
	}
}

func matchesRegex(pattern, s string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func isGlob(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// globToRegex converts a filename-glob RHS to the anchored,
// case-insensitive regex spec 4.3 describes for `=`/`!=`: `*` matches any
// run of characters, `?` matches exactly one.
func globToRegex(glob string) string {
	var b strings.Builder
	b.WriteString("(?i)^")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}

// likeToRegex converts a SQL LIKE pattern (`%` any run, `_` exactly one
// character) to an anchored regex.
func likeToRegex(like string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range like {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}

package ast

import "strings"

// Function identifies a scalar or aggregate function callable in the
// column list or predicate. Grounded on original_source/src/function.rs's
// Function enum.
type Function int

const (
	FuncUnknown Function = iota
	FuncLower
	FuncUpper
	FuncLength
	FuncBase64
	FuncHex
	FuncOct
	FuncContainsJapanese
	FuncContainsHiragana
	FuncContainsKatakana
	FuncContainsKana
	FuncContainsKanji
	FuncDay
	FuncMonth
	FuncYear
	FuncContains
	FuncHasXattr
	FuncXattr
	FuncMin
	FuncMax
	FuncAvg
	FuncSum
	FuncCount
	FuncExists
)

var functionNames = map[string]Function{
	"lower": FuncLower, "upper": FuncUpper, "length": FuncLength,
	"base64": FuncBase64, "hex": FuncHex, "oct": FuncOct,
	"contains_japanese": FuncContainsJapanese,
	"contains_hiragana":  FuncContainsHiragana,
	"contains_katakana":  FuncContainsKatakana,
	"contains_kana":      FuncContainsKana,
	"contains_kanji":     FuncContainsKanji,
	"day": FuncDay, "month": FuncMonth, "year": FuncYear,
	"contains": FuncContains, "has_xattr": FuncHasXattr, "xattr": FuncXattr,
	"min": FuncMin, "max": FuncMax, "avg": FuncAvg, "sum": FuncSum, "count": FuncCount,
	"exists": FuncExists,
}

// ParseFunction resolves a raw function name (case-insensitive) to a
// Function.
func ParseFunction(s string) (Function, bool) {
	f, ok := functionNames[strings.ToLower(s)]
	return f, ok
}

func (f Function) String() string {
	for name, fn := range functionNames {
		if fn == f {
			return name
		}
	}
	return "unknown"
}

// IsAggregateFunction reports whether the function collapses the result
// set to a single row (spec 4.7).
func (f Function) IsAggregateFunction() bool {
	switch f {
	case FuncMin, FuncMax, FuncAvg, FuncSum, FuncCount:
		return true
	default:
		return false
	}
}

// IsNumericFunction reports whether the function's result should be
// compared numerically.
func (f Function) IsNumericFunction() bool {
	switch f {
	case FuncLength, FuncDay, FuncMonth, FuncYear, FuncMin, FuncMax, FuncAvg, FuncSum, FuncCount:
		return true
	default:
		return false
	}
}

// Weight estimates the relative evaluation cost of calling the function.
// contains reads the whole file, so it dominates (spec 3: "1024 for
// contains, reflecting file-read cost"); exists drives an entire inner
// traversal, so it dominates further still.
func (f Function) Weight() int {
	switch f {
	case FuncExists:
		return 2048
	case FuncContains, FuncHasXattr, FuncXattr:
		return 1024
	default:
		return 4
	}
}

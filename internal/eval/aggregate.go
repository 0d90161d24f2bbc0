package eval

import (
	"github.com/go-fselect/fselect/ast"
	"github.com/go-fselect/fselect/internal/variant"
)

// Aggregate collapses values — one per matched row, produced by evaluating
// the aggregate's inner argument expression against that row — into the
// single Min/Max/Avg/Sum/Count result spec 4.7 describes for a query whose
// column list contains an aggregate function. Grounded on
// original_source/src/function.rs's get_aggregate_value, which folds the
// same way over a buffer of per-row values; Min starts from "unset" rather
// than 0 so an all-negative column still reports its true minimum.
func Aggregate(fn ast.Function, values []variant.Variant) variant.Variant {
	switch fn {
	case ast.FuncMin:
		var min int64
		seen := false
		for _, v := range values {
			if n := v.ToInt(); !seen || n < min {
				min, seen = n, true
			}
		}
		return variant.FromInt(min)
	case ast.FuncMax:
		var max int64
		for _, v := range values {
			if n := v.ToInt(); n > max {
				max = n
			}
		}
		return variant.FromInt(max)
	case ast.FuncAvg:
		if len(values) == 0 {
			return variant.FromInt(0)
		}
		var sum int64
		for _, v := range values {
			sum += v.ToInt()
		}
		return variant.FromInt(sum / int64(len(values)))
	case ast.FuncSum:
		var sum int64
		for _, v := range values {
			sum += v.ToInt()
		}
		return variant.FromInt(sum)
	case ast.FuncCount:
		return variant.FromInt(int64(len(values)))
	default:
		return variant.Empty(variant.TypeString)
	}
}

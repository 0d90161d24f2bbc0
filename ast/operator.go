package ast

import "strings"

// LogicalOp is a boolean connective. Grounded on operators.rs's LogicalOp.
type LogicalOp int

const (
	LogicalNone LogicalOp = iota
	LogicalAnd
	LogicalOr
)

// Op is a comparison operator. Grounded on operators.rs's Op enum and its
// from/from_with_not NOT-inversion table.
type Op int

const (
	OpNone Op = iota
	OpEq
	OpNe
	OpEeq
	OpEne
	OpGt
	OpGte
	OpLt
	OpLte
	OpRx
	OpNotRx
	OpLike
	OpNotLike
	OpIn
	OpNotIn
)

var opSpellings = map[string]Op{
	"=": OpEq, "==": OpEq, "eq": OpEq,
	"!=": OpNe, "<>": OpNe, "ne": OpNe,
	"===": OpEeq, "eeq": OpEeq,
	"!==": OpEne, "ene": OpEne,
	">": OpGt, "gt": OpGt,
	">=": OpGte, "gte": OpGte, "ge": OpGte,
	"<": OpLt, "lt": OpLt,
	"<=": OpLte, "lte": OpLte, "le": OpLte,
	"~=": OpRx, "=~": OpRx, "rx": OpRx, "regexp": OpRx,
	"!=~": OpNotRx, "notrx": OpNotRx,
	"like": OpLike, "notlike": OpNotLike,
	"in": OpIn, "notin": OpNotIn,
}

// ParseOp resolves an operator spelling to an Op.
func ParseOp(s string) (Op, bool) {
	op, ok := opSpellings[strings.ToLower(s)]
	return op, ok
}

// notInversion is the exact NOT-inversion table from operators.rs:
// `not` before a comparison flips it to its logical opposite, not its
// string opposite (e.g. NOT LIKE becomes NOTLIKE, not a negated LIKE).
var notInversion = map[Op]Op{
	OpEq: OpNe, OpNe: OpEq,
	OpEeq: OpEne, OpEne: OpEeq,
	OpGt: OpLte, OpLte: OpGt,
	OpGte: OpLt, OpLt: OpGte,
	OpRx: OpNotRx, OpNotRx: OpRx,
	OpLike: OpNotLike, OpNotLike: OpLike,
	OpIn: OpNotIn, OpNotIn: OpIn,
}

// Invert returns the NOT-inverted form of op.
func (op Op) Invert() Op {
	if inv, ok := notInversion[op]; ok {
		return inv
	}
	return op
}

func (op Op) String() string {
	for s, o := range opSpellings {
		if o == op {
			return s
		}
	}
	return "?"
}

// ArithmeticOp is one of + - * / %. Grounded on operators.rs's ArithmeticOp.
type ArithmeticOp int

const (
	ArithNone ArithmeticOp = iota
	ArithAdd
	ArithSubtract
	ArithMultiply
	ArithDivide
	ArithModulo
)

var arithSpellings = map[string]ArithmeticOp{
	"+": ArithAdd, "plus": ArithAdd,
	"-": ArithSubtract, "minus": ArithSubtract,
	"*": ArithMultiply, "mul": ArithMultiply,
	"/": ArithDivide, "div": ArithDivide,
	"%": ArithModulo, "mod": ArithModulo,
}

// ParseArithmeticOp resolves an arithmetic operator spelling.
func ParseArithmeticOp(s string) (ArithmeticOp, bool) {
	op, ok := arithSpellings[strings.ToLower(s)]
	return op, ok
}

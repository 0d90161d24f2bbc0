package eval

import (
	"encoding/binary"
	"math"

	"github.com/go-fselect/fselect/ast"
)

// BuildSortKey encodes q's ORDER BY columns, evaluated against ctx, into a
// single byte string whose lexicographic order matches the multi-column,
// mixed-type, mixed-direction ordering spec 4.7 describes. internal/topn's
// TopN is generic over cmp.Ordered, which admits string but not a struct
// key, so the composite key is folded into one comparable string here:
// each column contributes an order-preserving segment (numeric and
// datetime columns via a fixed-width, sign/bit-flipped big-endian encoding
// of their float64 value; string columns via a NUL-escaped, NUL-terminated
// variable-length run of
// their bytes, so a shorter string still sorts before one it prefixes), and
// a descending column's segment is bitwise-inverted to reverse its
// contribution to the composite comparison.
func (ev *Evaluator) BuildSortKey(fields []*ast.Expr, asc []bool, ctx *Context) (string, error) {
	var out []byte
	for i, field := range fields {
		desc := i < len(asc) && !asc[i]

		v, err := ev.Eval(field, ctx)
		if err != nil {
			return "", err
		}

		var seg []byte
		switch {
		case field.ContainsDatetime():
			from, _, derr := v.ToDateTime()
			if derr != nil {
				seg = encodeFloatSeg(0)
			} else {
				seg = encodeFloatSeg(float64(from.UnixNano()))
			}
		case field.ContainsNumeric():
			seg = encodeFloatSeg(v.ToFloat())
		default:
			seg = encodeStringSeg(v.ToString())
		}

		if desc {
			for j := range seg {
				seg[j] = ^seg[j]
			}
		}
		out = append(out, seg...)
	}
	return string(out), nil
}

// encodeFloatSeg maps f to an 8-byte big-endian encoding that preserves
// float64 ordering under plain byte comparison: flip the sign bit of a
// non-negative value, invert every bit of a negative one.
func encodeFloatSeg(f float64) []byte {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	seg := make([]byte, 8)
	binary.BigEndian.PutUint64(seg, bits)
	return seg
}

// encodeStringSeg escapes embedded 0x00 bytes as 0x00 0xFF and terminates
// the segment with 0x00 0x00, so two segments compare in the same order as
// their source strings even when one is a prefix of the other.
func encodeStringSeg(s string) []byte {
	seg := make([]byte, 0, len(s)+2)
	for i := 0; i < len(s); i++ {
		if s[i] == 0x00 {
			seg = append(seg, 0x00, 0xFF)
		} else {
			seg = append(seg, s[i])
		}
	}
	seg = append(seg, 0x00, 0x00)
	return seg
}

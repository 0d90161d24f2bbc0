// Package variant implements the tagged-union value type predicate
// comparisons and arithmetic operate on: a Variant knows its own declared
// type (the literal's syntax, or the source field/function it came from)
// but coerces lazily to whatever type the other side of a comparison
// needs. Grounded on original_source/src/util/variant.rs.
package variant

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type identifies a Variant's declared kind.
type Type int

const (
	TypeString Type = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeDateTime
)

// Variant is a lazily-coercible value: arithmetic always produces a Float
// variant (spec rule: "arithmetic is always performed in floating point"),
// comparisons coerce via ToInt/ToFloat/ToBool/ToDateTime depending on the
// field or function on the other side of the operator.
type Variant struct {
	typ         Type
	stringValue string
	intValue    *int64
	floatValue  *float64
	boolValue   *bool
	dtFrom      time.Time
	dtTo        time.Time
	hasDt       bool
}

// Empty builds a zero Variant declared as typ, with no cached value.
func Empty(typ Type) Variant {
	return Variant{typ: typ}
}

// Type returns the Variant's declared type.
func (v Variant) Type() Type {
	return v.typ
}

// FromInt builds an Int variant.
func FromInt(value int64) Variant {
	f := float64(value)
	return Variant{typ: TypeInt, stringValue: strconv.FormatInt(value, 10), intValue: &value, floatValue: &f}
}

// FromFloat builds a Float variant.
func FromFloat(value float64) Variant {
	i := int64(value)
	return Variant{typ: TypeFloat, stringValue: formatFloat(value), intValue: &i, floatValue: &value}
}

// FromString builds a String variant from raw text (a literal, or a
// string-typed field's value).
func FromString(value string) Variant {
	return Variant{typ: TypeString, stringValue: value}
}

// FromSignedString builds a String variant from raw text, prefixing it
// with '-' when minus is true. Used for unary-minus literals the parser
// folds into the value rather than an arithmetic node (e.g. "size > -10").
func FromSignedString(value string, minus bool) Variant {
	if minus {
		value = "-" + value
	}
	return Variant{typ: TypeString, stringValue: value}
}

// FromBool builds a Bool variant.
func FromBool(value bool) Variant {
	s := "false"
	i := int64(0)
	if value {
		s = "true"
		i = 1
	}
	return Variant{typ: TypeBool, stringValue: s, boolValue: &value, intValue: &i}
}

// FromDateTime builds a DateTime variant covering the single instant t
// (both ends of the interval equal t; see ToDateTime).
func FromDateTime(t time.Time) Variant {
	return Variant{typ: TypeDateTime, stringValue: formatDatetime(t), dtFrom: t, dtTo: t, hasDt: true}
}

// String renders the Variant's cached string form.
func (v Variant) String() string {
	return v.stringValue
}

// ToString returns the Variant's string form.
func (v Variant) ToString() string {
	return v.stringValue
}

// ToInt coerces the Variant to an integer: its cached int, else its
// cached float truncated, else a parsed plain integer, else a parsed
// file-size suffix (1k, 4MiB, and so on), else 0.
func (v Variant) ToInt() int64 {
	if v.intValue != nil {
		return *v.intValue
	}
	if v.floatValue != nil {
		return int64(*v.floatValue)
	}
	if i, err := strconv.ParseInt(v.stringValue, 10, 64); err == nil {
		return i
	}
	if size, ok := ParseFileSize(v.stringValue); ok {
		return int64(size)
	}
	return 0
}

// ToFloat coerces the Variant to a float: its cached float, else its
// cached int, else a parsed float, else a parsed file-size suffix, else 0.
func (v Variant) ToFloat() float64 {
	if v.floatValue != nil {
		return *v.floatValue
	}
	if v.intValue != nil {
		return float64(*v.intValue)
	}
	if f, err := strconv.ParseFloat(v.stringValue, 64); err == nil {
		return f
	}
	if size, ok := ParseFileSize(v.stringValue); ok {
		return float64(size)
	}
	return 0
}

// ToBool coerces the Variant to a boolean: its cached bool, else a parsed
// "true"/"1" string, else its cached int equal to 1, else its cached float
// equal to 1.0, else false.
func (v Variant) ToBool() bool {
	if v.boolValue != nil {
		return *v.boolValue
	}
	if v.stringValue != "" {
		return StrToBool(v.stringValue)
	}
	if v.intValue != nil {
		return *v.intValue == 1
	}
	if v.floatValue != nil {
		return *v.floatValue == 1.0
	}
	return false
}

// ToDateTime coerces the Variant to a (from, to) instant range: its
// cached range if set, else the parsed range of its string form. A plain
// date like "2021-05-01" ranges over the whole day; "today"/"yesterday"
// likewise; a fully-specified instant ranges over itself.
func (v Variant) ToDateTime() (time.Time, time.Time, error) {
	if v.hasDt {
		return v.dtFrom, v.dtTo, nil
	}
	return ParseDatetime(v.stringValue)
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}

func formatDatetime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// StrToBool mirrors util::str_to_bool: only "true" and "1"
// (case-insensitively) are truthy; anything else is false.
func StrToBool(s string) bool {
	lower := strings.ToLower(s)
	return lower == "true" || lower == "1"
}

// fileSizeSuffixes lists suffix, multiplier pairs in longest-first order
// so "kib" is tried before "k" and so on. Grounded verbatim on
// util::parse_filesize's suffix ladder.
var fileSizeSuffixes = []struct {
	suffix string
	mult   uint64
}{
	{"kib", 1024},
	{"kb", 1024},
	{"k", 1024},
	{"mib", 1024 * 1024},
	{"mb", 1024 * 1024},
	{"m", 1024 * 1024},
	{"gib", 1024 * 1024 * 1024},
	{"gb", 1024 * 1024 * 1024},
	{"g", 1024 * 1024 * 1024},
}

// ParseFileSize parses a raw size literal with an optional k/kb/kib,
// m/mb/mib, or g/gb/gib suffix (case-insensitive) into a byte count.
func ParseFileSize(s string) (uint64, bool) {
	lower := strings.ToLower(s)
	for _, suf := range fileSizeSuffixes {
		if strings.HasSuffix(lower, suf.suffix) {
			numPart := s[:len(s)-len(suf.suffix)]
			n, err := strconv.ParseUint(numPart, 10, 64)
			if err != nil {
				return 0, false
			}
			return n * suf.mult, true
		}
	}
	n, err := strconv.ParseUint(lower, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseDatetime resolves a raw datetime literal to a (from, to) instant
// range. "today"/"yesterday" range over the named calendar day; a
// YYYY-MM-DD[ HH[:MM[:SS]]] literal ranges over whatever precision was
// given (missing hour/minute/second widen to the full range of that
// field, per spec 4.3's interval-comparison rule); anything else falls
// back to a free-form natural-language parse.
func ParseDatetime(s string) (time.Time, time.Time, error) {
	now := time.Now()

	switch s {
	case "today":
		y, m, d := now.Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		finish := time.Date(y, m, d, 23, 59, 59, 0, now.Location())
		return start, finish, nil
	case "yesterday":
		y, m, d := now.AddDate(0, 0, -1).Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		finish := time.Date(y, m, d, 23, 59, 59, 0, now.Location())
		return start, finish, nil
	}

	if from, to, ok := parsePartialDate(s, now.Location()); ok {
		return from, to, nil
	}

	t, err := parseNaturalDate(s, now)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("error parsing date/time value: %s", s)
	}
	return t, t, nil
}

// Package lexer tokenizes the fselect query language.
package lexer

import (
	"strconv"
	"strings"

	"github.com/go-fselect/fselect/token"
)

// Lexer tokenizes query input. It is context-sensitive: the meaning of
// several characters depends on state accumulated from earlier tokens, so
// the state bits below must be preserved across calls to Next (see
// SPEC_FULL.md 9, "Context-sensitive lexing").
type Lexer struct {
	input string
	pos   int

	item   token.Item
	peeked bool

	beforeFrom    bool // true until the FROM keyword has been seen
	afterWhere    bool // true once WHERE has been seen (enables "not" keyword)
	afterOpen     bool // true immediately after a '(' token
	afterOperator bool // true immediately after an Operator/ArithmeticOperator token
	afterOperand  bool // true immediately after a token that can end an expression (raw string, quoted string, or close-paren)
}

// New creates a Lexer over the given query string.
func New(input string) *Lexer {
	return &Lexer{input: input, beforeFrom: true}
}

// Next returns the next token, advancing the lexer.
func (l *Lexer) Next() token.Item {
	if l.peeked {
		l.peeked = false
		l.updateState(l.item)
		return l.item
	}
	l.item = l.scan()
	l.updateState(l.item)
	return l.item
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() token.Item {
	if !l.peeked {
		l.item = l.scan()
		l.peeked = true
	}
	return l.item
}

// updateState applies a consumed token's state effects. Next() calls it
// both for a freshly scanned token and for a previously peeked one (without
// rescanning); Peek() alone never calls it, so callers that only Peek() and
// decide to keep the token must call Next() to get the same effect.
func (l *Lexer) updateState(it token.Item) {
	switch it.Type {
	case token.FROM:
		l.beforeFrom = false
	case token.WHERE:
		l.afterWhere = true
	}
	l.afterOpen = it.Type == token.OPEN
	l.afterOperator = it.Type == token.OPERATOR || it.Type == token.ARITHMETIC
	l.afterOperand = it.Type == token.RAWSTRING || it.Type == token.STRING || it.Type == token.CLOSE
}

func (l *Lexer) scan() token.Item {
	l.skipWhitespace()
	start := l.pos

	if l.pos >= len(l.input) {
		return l.item0(token.EOF, "", start)
	}

	ch := l.input[l.pos]

	switch ch {
	case ',':
		l.pos++
		return l.item0(token.COMMA, ",", start)
	case '(':
		l.pos++
		return l.item0(token.OPEN, "(", start)
	case ')':
		l.pos++
		return l.item0(token.CLOSE, ")", start)
	case '\'':
		return l.scanQuotedString(start)
	}

	// Comparison-operator-starting characters (= ! < > ~) begin an Operator
	// token when they form a known operator; otherwise they fall through to
	// a raw string. Arithmetic characters are handled separately below ('*'
	// by beforeFrom/afterWhere, the others by afterOperand).
	if isOperatorStart(ch) {
		if item, ok := l.tryScanOperator(start); ok {
			return item
		}
	}

	// '*' is only an operator before FROM or inside WHERE, and only when
	// it stands alone rather than leading a glob like *.rs.
	if ch == '*' && (l.beforeFrom || l.afterWhere) && !l.globFollows(start) {
		l.pos++
		return l.item0(token.ARITHMETIC, "*", start)
	}

	// A leading +, -, /, % immediately after an operand (e.g. "size + 10")
	// is a standalone arithmetic operator; elsewhere (e.g. the leading '/'
	// of a path, or a bare negative-number literal) it is absorbed as the
	// start of a raw string.
	if isArithmeticChar(ch) && ch != '*' && ch != '-' && l.afterOperand {
		l.pos++
		return l.item0(token.ARITHMETIC, string(ch), start)
	}
	if ch == '-' && l.afterOperand {
		l.pos++
		return l.item0(token.ARITHMETIC, "-", start)
	}

	return l.scanRawString(start)
}

// globFollows reports whether the '*' at position start is immediately
// followed by more raw-string content (e.g. "*.rs"), in which case it is
// part of a glob rather than a standalone operator.
func (l *Lexer) globFollows(start int) bool {
	next := start + 1
	if next >= len(l.input) {
		return false
	}
	switch l.input[next] {
	case ' ', '\t', '\r', '\n', ',', '(', ')':
		return false
	default:
		return true
	}
}

func (l *Lexer) item0(typ token.Token, val string, start int) token.Item {
	return token.Item{Type: typ, Value: val, Pos: token.Pos{Offset: start, Column: start + 1}}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func isOperatorStart(ch byte) bool {
	switch ch {
	case '=', '!', '<', '>', '~':
		return true
	}
	return false
}

// isArithmeticChar reports whether ch is one of the raw arithmetic
// operator characters (+ * / %). '-' is handled separately (see scan and
// scanRawString) because of its dual role in dates and negative numbers.
func isArithmeticChar(ch byte) bool {
	switch ch {
	case '+', '*', '/', '%':
		return true
	}
	return false
}

// tryScanOperator recognizes multi-character comparison operators starting
// at the current position. Returns ok=false (without consuming input) if
// the character sequence does not form a known operator, in which case the
// caller falls back to scanning a raw string.
func (l *Lexer) tryScanOperator(start int) (token.Item, bool) {
	rest := l.input[l.pos:]
	candidates := []string{"===", "!==", "!=~", "=~", "~=", "==", "!=", "<>", ">=", "<=", "=", ">", "<"}
	for _, c := range candidates {
		if strings.HasPrefix(rest, c) {
			l.pos += len(c)
			return l.item0(token.OPERATOR, c, start), true
		}
	}
	return token.Item{}, false
}

func (l *Lexer) scanQuotedString(start int) token.Item {
	l.pos++ // skip opening quote
	var buf strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\'' {
			l.pos++
			return l.item0(token.STRING, buf.String(), start)
		}
		buf.WriteByte(ch)
		l.pos++
	}
	// Unterminated string: LexError, represented as ILLEGAL with the
	// accumulated text so the parser can surface a position-accurate
	// diagnostic.
	return l.item0(token.ILLEGAL, buf.String(), start)
}

// scanRawString accumulates a raw-string token: everything up to
// whitespace, a comma, a paren, or an operator character, with the two
// look-ahead exceptions from spec 4.1.
func (l *Lexer) scanRawString(start int) token.Item {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == ',' || ch == '(' || ch == ')' {
			break
		}

		if ch == '-' {
			acc := l.input[start:l.pos]
			// An empty accumulator means '-' is the very first character
			// of this token (e.g. a negative number literal like -5); a
			// date-like accumulator means it continues a YYYY-MM-DD date.
			// Either way the hyphen is absorbed rather than terminating
			// the raw string.
			if acc == "" || looksLikeDatePrefix(acc) {
				l.pos++
				continue
			}
			break
		}

		if isOperatorStart(ch) {
			break
		}

		if isArithmeticChar(ch) {
			acc := l.input[start:l.pos]
			if !looksLikeExpression(acc) {
				l.pos++
				continue
			}
			break
		}

		l.pos++
	}

	raw := l.input[start:l.pos]
	return l.classifyRawString(raw, start)
}

// classifyRawString maps a raw-string's text to a keyword, operator, or
// arithmetic-operator token where applicable, per spec 4.1.
func (l *Lexer) classifyRawString(raw string, start int) token.Item {
	lower := strings.ToLower(raw)

	if lower == "not" {
		if l.afterWhere {
			return l.item0(token.NOT, raw, start)
		}
		return l.item0(token.RAWSTRING, raw, start)
	}

	if kw, ok := token.LookupKeyword(lower); ok {
		return l.item0(kw, raw, start)
	}

	if op, ok := token.LookupComparisonWord(lower); ok {
		return l.item0(token.OPERATOR, op, start)
	}

	if op, ok := token.LookupArithmeticWord(lower); ok {
		return l.item0(token.ARITHMETIC, op, start)
	}

	if lower == "notrx" || lower == "notlike" {
		return l.item0(token.OPERATOR, lower, start)
	}

	return l.item0(token.RAWSTRING, raw, start)
}

// looksLikeDatePrefix reports whether acc parses as a YYYY or YYYY-MM date
// prefix, in which case a following '-' should be consumed as part of the
// same raw string rather than treated as an operator boundary (spec 4.1,
// grounded on original_source/src/lexer.rs's is_date look-ahead).
func looksLikeDatePrefix(acc string) bool {
	parts := strings.Split(acc, "-")
	if len(parts) == 0 || len(parts) > 2 {
		return false
	}
	if len(parts[0]) != 4 {
		return false
	}
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return false
	}
	if len(parts) == 2 {
		if len(parts[1]) == 0 || len(parts[1]) > 2 {
			return false
		}
		if _, err := strconv.Atoi(parts[1]); err != nil {
			return false
		}
	}
	return true
}

// looksLikeExpression reports whether acc is "expression-like": every
// dot-separated sub-token is a known field name, function name, or an
// integer. When true, an arithmetic-operator character terminates the raw
// string so it can be lexed as an operator; when false (e.g. a path like
// /tmp/dir) it is absorbed into the raw string (spec 4.1, grounded on
// original_source/src/lexer.rs's looks_like_expression).
func looksLikeExpression(acc string) bool {
	if acc == "" {
		return false
	}
	for _, sub := range strings.Split(acc, ".") {
		if sub == "" {
			return false
		}
		if _, err := strconv.ParseInt(sub, 10, 64); err == nil {
			continue
		}
		if _, ok := knownNames[strings.ToLower(sub)]; ok {
			continue
		}
		return false
	}
	return true
}

// knownNames is a lookup of field and function identifiers used only to
// decide the "expression-like" look-ahead above; it intentionally
// duplicates a subset of the field/function catalogue (package ast owns
// the authoritative one) because the lexer must not depend on the parser
// package, and the original lexer.rs makes this same independent check.
var knownNames = func() map[string]struct{} {
	names := []string{
		"name", "path", "abspath", "size", "fsize", "hsize", "uid", "gid",
		"user", "group", "created", "accessed", "modified",
		"is_dir", "is_file", "is_symlink", "is_pipe", "is_fifo", "is_char",
		"is_character", "is_block", "is_socket", "mode",
		"user_read", "user_write", "user_exec", "group_read", "group_write",
		"group_exec", "other_read", "other_write", "other_exec", "suid",
		"sgid", "is_hidden", "has_xattrs", "is_shebang", "width", "height",
		"duration", "bitrate", "mp3_bitrate", "freq", "mp3_freq", "title",
		"mp3_title", "artist", "mp3_artist", "album", "mp3_album", "year",
		"mp3_year", "genre", "mp3_genre", "exif_datetime", "exif_alt",
		"exif_altitude", "exif_lat", "exif_latitude", "exif_lon",
		"exif_lng", "exif_longitude", "exif_make", "exif_model",
		"exif_software", "exif_version", "mime", "is_binary", "is_text",
		"is_archive", "is_audio", "is_book", "is_doc", "is_image",
		"is_source", "is_video", "sha1", "sha256", "sha512", "sha3",
		"lower", "upper", "length", "base64", "hex", "oct",
		"contains_japanese", "contains_hiragana", "contains_katakana",
		"contains_kana", "contains_kanji", "day", "month", "contains",
		"has_xattr", "xattr", "min", "max", "avg", "sum", "count",
	}
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}()

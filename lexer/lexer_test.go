package lexer

import (
	"testing"

	"github.com/go-fselect/fselect/token"
)

func toks(l *Lexer) []token.Item {
	var out []token.Item
	for {
		it := l.Next()
		out = append(out, token.Item{Type: it.Type, Value: it.Value})
		if it.Type == token.EOF {
			return out
		}
	}
}

func TestLexerBasicTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.Item
	}{
		{
			input: "select name from /t where size > 1k",
			expected: []token.Item{
				{Type: token.RAWSTRING, Value: "select"},
				{Type: token.RAWSTRING, Value: "name"},
				{Type: token.FROM, Value: "from"},
				{Type: token.RAWSTRING, Value: "/t"},
				{Type: token.WHERE, Value: "where"},
				{Type: token.RAWSTRING, Value: "size"},
				{Type: token.OPERATOR, Value: ">"},
				{Type: token.RAWSTRING, Value: "1k"},
				{Type: token.EOF, Value: ""},
			},
		},
		{
			input: "name, size from /t order by size desc limit 2",
			expected: []token.Item{
				{Type: token.RAWSTRING, Value: "name"},
				{Type: token.COMMA, Value: ","},
				{Type: token.RAWSTRING, Value: "size"},
				{Type: token.FROM, Value: "from"},
				{Type: token.RAWSTRING, Value: "/t"},
				{Type: token.ORDER, Value: "order"},
				{Type: token.BY, Value: "by"},
				{Type: token.RAWSTRING, Value: "size"},
				{Type: token.DESC, Value: "desc"},
				{Type: token.LIMIT, Value: "limit"},
				{Type: token.RAWSTRING, Value: "2"},
				{Type: token.EOF, Value: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			got := toks(l)
			if len(got) != len(tt.expected) {
				t.Fatalf("token count mismatch: got %d want %d (%v)", len(got), len(tt.expected), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: got %+v want %+v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLexerGlobColumnIsRawString(t *testing.T) {
	// '*' before FROM expands the column list (parser concern) but must
	// still lex as a RAWSTRING when part of a glob like *.rs, since it is
	// not standalone.
	l := New("*.rs from /t")
	got := toks(l)
	if got[0].Type != token.RAWSTRING || got[0].Value != "*.rs" {
		t.Fatalf("want RAWSTRING *.rs, got %+v", got[0])
	}
}

func TestLexerBareStarBeforeFromIsOperator(t *testing.T) {
	l := New("* from /t")
	got := toks(l)
	if got[0].Type != token.ARITHMETIC || got[0].Value != "*" {
		t.Fatalf("want ARITHMETIC *, got %+v", got[0])
	}
}

func TestLexerDatePrefixKeepsHyphen(t *testing.T) {
	l := New("modified gt 2018-08-01")
	got := toks(l)
	if got[2].Value != "2018-08-01" {
		t.Fatalf("want single date token, got %+v", got)
	}
}

func TestLexerArithmeticOperatorAfterOperand(t *testing.T) {
	// A '+' immediately following an operand is a standalone arithmetic
	// operator, not part of a raw string.
	l := New("size + 10 from /t")
	got := toks(l)
	want := []token.Item{
		{Type: token.RAWSTRING, Value: "size"},
		{Type: token.ARITHMETIC, Value: "+"},
		{Type: token.RAWSTRING, Value: "10"},
		{Type: token.FROM, Value: "from"},
		{Type: token.RAWSTRING, Value: "/t"},
		{Type: token.EOF, Value: ""},
	}
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: got %d want %d (%v)", len(got), len(want), got)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("token %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestLexerPathLeadingSlashIsRawString(t *testing.T) {
	// A leading '/' right after FROM (afterOperand false) starts a path,
	// not a standalone arithmetic operator.
	l := New("name from /tmp/dir")
	got := toks(l)
	if got[1].Type != token.FROM {
		t.Fatalf("expected FROM second, got %+v", got[1])
	}
	if got[2].Type != token.RAWSTRING || got[2].Value != "/tmp/dir" {
		t.Fatalf("want RAWSTRING /tmp/dir, got %+v", got[2])
	}
}

func TestLexerMinusOperatorVsNegativeLiteral(t *testing.T) {
	// "size - 10": '-' follows an operand, so it is a standalone operator.
	l := New("size - 10 from /t")
	got := toks(l)
	if got[1].Type != token.ARITHMETIC || got[1].Value != "-" {
		t.Fatalf("want ARITHMETIC -, got %+v", got[1])
	}

	// "modified gt -5": '-' follows a comparison operator, so it starts a
	// negative-number literal instead.
	l2 := New("modified gt -5")
	got2 := toks(l2)
	if got2[2].Type != token.RAWSTRING || got2[2].Value != "-5" {
		t.Fatalf("want RAWSTRING -5, got %+v", got2[2])
	}
}

func TestLexerNotOnlyKeywordAfterWhere(t *testing.T) {
	l := New("select not from /t")
	got := toks(l)
	if got[1].Type != token.RAWSTRING {
		t.Fatalf("not should be a raw string before WHERE, got %+v", got[1])
	}

	l2 := New("select name from /t where not size gt 1")
	got2 := toks(l2)
	var sawNot bool
	for _, it := range got2 {
		if it.Type == token.NOT {
			sawNot = true
		}
	}
	if !sawNot {
		t.Fatalf("expected a NOT keyword token after WHERE, got %+v", got2)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	l := New("name = 'abc")
	_ = l.Next() // name
	_ = l.Next() // =
	it := l.Next()
	if it.Type != token.ILLEGAL {
		t.Fatalf("want ILLEGAL for unterminated string, got %+v", it)
	}
}

func TestLexerPeekDoesNotConsume(t *testing.T) {
	l := New("name from /t")
	p1 := l.Peek()
	p2 := l.Peek()
	if p1 != p2 {
		t.Fatalf("peek should be idempotent: %+v vs %+v", p1, p2)
	}
	n := l.Next()
	if n != p1 {
		t.Fatalf("next after peek should return the peeked token")
	}
}

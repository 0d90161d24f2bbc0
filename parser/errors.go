package parser

import (
	"github.com/juju/errors"

	"github.com/go-fselect/fselect/token"
)

// ParseErrorKind classifies a ParseError, per spec 4.2's three error cases.
type ParseErrorKind int

const (
	// ParseErrorUnexpected means a token was present but not one the
	// grammar accepts at that point.
	ParseErrorUnexpected ParseErrorKind = iota
	// ParseErrorTruncated means the query ended before the grammar was
	// satisfied (EOF reached where a token was required).
	ParseErrorTruncated
	// ParseErrorUnmatchedParen means a '(' was never closed.
	ParseErrorUnmatchedParen
)

// ParseError reports a parse failure at a specific column of the query
// string, along with the offending token text when one exists. The
// underlying message is built with github.com/juju/errors (kept from the
// teacher's own dependency graph; see DESIGN.md) so callers that want a
// stack-annotated trace can errors.Trace(err) it.
type ParseError struct {
	Kind  ParseErrorKind
	Pos   token.Pos
	Token string
	cause error
}

func newParseError(kind ParseErrorKind, tok token.Item, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Kind:  kind,
		Pos:   tok.Pos,
		Token: tok.Value,
		cause: errors.Errorf(format, args...),
	}
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseErrorTruncated:
		return errors.Annotatef(e.cause, "column %d: unexpected end of query", e.Pos.Column).Error()
	case ParseErrorUnmatchedParen:
		return errors.Annotatef(e.cause, "column %d: unmatched parenthesis", e.Pos.Column).Error()
	default:
		return errors.Annotatef(e.cause, "column %d: unexpected token %q", e.Pos.Column, e.Token).Error()
	}
}

func (e *ParseError) Unwrap() error { return e.cause }

// errAt builds an Unexpected ParseError, or a Truncated one when tok is EOF.
func (p *Parser) errAt(tok token.Item, format string, args ...interface{}) *ParseError {
	if tok.Type == token.EOF {
		return newParseError(ParseErrorTruncated, tok, format, args...)
	}
	return newParseError(ParseErrorUnexpected, tok, format, args...)
}

func (p *Parser) errUnmatchedParen(tok token.Item) *ParseError {
	return newParseError(ParseErrorUnmatchedParen, tok, "expected a closing parenthesis")
}

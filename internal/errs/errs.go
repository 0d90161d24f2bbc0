// Package errs defines the error taxonomy of spec 7: one Go type per
// error source, each carrying the context its policy needs (a source
// position for Lex/Parse, a path for Walk/Extractor) and wrapping its
// underlying cause with github.com/pkg/errors so a caller can still
// errors.Cause/errors.As down to it. cmd/fselect exits with status 1 for
// any error returned by a query run; it uses errors.As only to pick out a
// WalkError and print its path.
package errs

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/go-fselect/fselect/token"
)

// LexError reports a tokenization failure (an unterminated quoted string,
// an illegal character). Fatal: reported to stderr with position.
type LexError struct {
	Pos   token.Pos
	Text  string
	cause error
}

// NewLexError builds a LexError at pos, describing text with format/args.
func NewLexError(pos token.Pos, text string, format string, args ...interface{}) *LexError {
	return &LexError{Pos: pos, Text: text, cause: errors.Errorf(format, args...)}
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at column %d (%q): %v", e.Pos.Column, e.Text, e.cause)
}

func (e *LexError) Unwrap() error { return e.cause }

// ParseError reports a grammar failure (see parser.ParseError for the
// richer Unexpected/Truncated/UnmatchedParen kind carried during parsing
// itself; this type is the taxonomy-level wrapper cmd/fselect reports from).
type ParseError struct {
	Pos   token.Pos
	Token string
	cause error
}

// NewParseError builds a ParseError wrapping cause, which is typically a
// *parser.ParseError already describing the specific grammar failure.
func NewParseError(pos token.Pos, tok string, cause error) *ParseError {
	return &ParseError{Pos: pos, Token: tok, cause: cause}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at column %d (%q): %v", e.Pos.Column, e.Token, e.cause)
}

func (e *ParseError) Unwrap() error { return e.cause }

// ConfigError reports a malformed or unreadable config file. Non-fatal:
// warned to stderr, defaults are used instead.
type ConfigError struct {
	Path  string
	cause error
}

// NewConfigError wraps cause with the config file path that produced it.
func NewConfigError(path string, cause error) *ConfigError {
	return &ConfigError{Path: path, cause: errors.Wrapf(cause, "config %s", path)}
}

func (e *ConfigError) Error() string { return e.cause.Error() }
func (e *ConfigError) Unwrap() error { return e.cause }

// WalkError reports a readdir/stat failure on a single path. Per-entry:
// logged to stderr unless no-errors is set; the walk continues.
type WalkError struct {
	Path  string
	cause error
}

// NewWalkError wraps cause with the path that produced it.
func NewWalkError(path string, cause error) *WalkError {
	return &WalkError{Path: path, cause: errors.Wrapf(cause, "%s", path)}
}

func (e *WalkError) Error() string { return e.cause.Error() }
func (e *WalkError) Unwrap() error { return e.cause }

// ExtractorError reports an image/audio/EXIF reader failure for one file
// and field. Per-entry, silent by design: the field's value becomes an
// empty Variant and nothing is logged (spec 7: "extraction failures are
// silent by design; they would dominate output for heterogeneous trees").
type ExtractorError struct {
	Path  string
	Field string
	cause error
}

// NewExtractorError wraps cause with the path and field it failed to
// extract.
func NewExtractorError(path, field string, cause error) *ExtractorError {
	return &ExtractorError{Path: path, Field: field, cause: errors.Wrapf(cause, "%s: %s", path, field)}
}

func (e *ExtractorError) Error() string { return e.cause.Error() }
func (e *ExtractorError) Unwrap() error { return e.cause }

// EvalError reports a type-coercion failure while evaluating a predicate
// against one entry. Policy: the predicate is treated as false for that
// entry, not propagated as a fatal error.
type EvalError struct {
	Field string
	cause error
}

// NewEvalError wraps cause with the field whose coercion failed.
func NewEvalError(field string, cause error) *EvalError {
	return &EvalError{Field: field, cause: errors.Wrapf(cause, "field %s", field)}
}

func (e *EvalError) Error() string { return e.cause.Error() }
func (e *EvalError) Unwrap() error { return e.cause }

// FormatterError reports a write failure to stdout. Fatal: the process
// terminates with a non-zero exit code.
type FormatterError struct {
	cause error
}

// NewFormatterError wraps a stdout write failure.
func NewFormatterError(cause error) *FormatterError {
	return &FormatterError{cause: errors.Wrap(cause, "writing output")}
}

func (e *FormatterError) Error() string { return e.cause.Error() }
func (e *FormatterError) Unwrap() error { return e.cause }

// Package parser turns a token stream from lexer into an ast.Query tree, by
// recursive-descent, precedence-climbing parsing of the grammar in spec
// 4.2. Grounded in shape on the teacher's own parser/parser.go (a token-
// cursor recursive-descent parser with a dedicated error type), regrown for
// original_source/src/parser.rs's grammar (fields, from-roots, where,
// order-by, limit, into) rather than SQL SELECT/INSERT/CREATE TABLE/JOIN.
package parser

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/go-fselect/fselect/ast"
	"github.com/go-fselect/fselect/lexer"
	"github.com/go-fselect/fselect/token"
)

// Parser holds the fully-scanned token stream for one query and a cursor
// into it. The teacher's parser advances a streaming lexer one token at a
// time and pools both; this grammar needs unbounded lookahead to recognize
// a sub-query ahead of a '(' (see subqueryFollows), so the whole stream is
// scanned up front into a slice instead — the query strings this tool
// parses are a few dozen tokens, not megabytes of SQL, so there is no
// pooling hot path to earn the complexity (see DESIGN.md's sync.Pool
// simplification note).
type Parser struct {
	tokens []token.Item
	pos    int
}

// New scans query and returns a Parser positioned at its first token.
func New(query string) *Parser {
	lx := lexer.New(query)
	var tokens []token.Item
	for {
		it := lx.Next()
		tokens = append(tokens, it)
		if it.Type == token.EOF {
			break
		}
	}
	return &Parser{tokens: tokens}
}

// Parse parses query into a Query tree.
func Parse(query string) (*ast.Query, error) {
	return New(query).parse()
}

func (p *Parser) cur() token.Item {
	return p.tokens[p.pos]
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) curIs(t token.Token) bool {
	return p.cur().Type == t
}

func (p *Parser) isRawOrString() bool {
	t := p.cur().Type
	return t == token.RAWSTRING || t == token.STRING
}

func (p *Parser) parse() (*ast.Query, error) {
	fields, err := p.parseFields()
	if err != nil {
		return nil, err
	}
	roots, err := p.parseRoots()
	if err != nil {
		return nil, err
	}
	expr, err := p.parseWhere()
	if err != nil {
		return nil, err
	}
	orderingFields, orderingAsc, err := p.parseOrderBy(fields)
	if err != nil {
		return nil, err
	}
	limit, err := p.parseLimit()
	if err != nil {
		return nil, err
	}
	outputFormat, err := p.parseOutputFormat()
	if err != nil {
		return nil, err
	}

	if !p.curIs(token.EOF) {
		return nil, p.errAt(p.cur(), "could not parse tokens at the end of the query")
	}

	return &ast.Query{
		Fields:         fields,
		Roots:          roots,
		Expr:           expr,
		OrderingFields: orderingFields,
		OrderingAsc:    orderingAsc,
		Limit:          limit,
		OutputFormat:   outputFormat,
	}, nil
}

// parseFields parses `'select'? expr (',' expr)*`, expanding a leading bare
// '*' to the default column set.
func (p *Parser) parseFields() ([]*ast.Expr, error) {
	var fields []*ast.Expr

loop:
	for {
		switch {
		case p.curIs(token.COMMA):
			p.advance()
		case p.isRawOrString() && strings.EqualFold(p.cur().Value, "select"):
			p.advance()
		case p.curIs(token.ARITHMETIC) && p.cur().Value == "*" && len(fields) == 0:
			p.advance()
			fields = append(fields, defaultColumns()...)
		case p.isRawOrString() || p.curIs(token.ARITHMETIC):
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			fields = append(fields, expr)
		default:
			break loop
		}
	}

	if len(fields) == 0 {
		return nil, p.errAt(p.cur(), "no selector found")
	}
	return fields, nil
}

// defaultColumns is the bare-'*' expansion: mode/user/group/size/path on
// Unix-like systems (where those fields are meaningful), size/path
// elsewhere.
func defaultColumns() []*ast.Expr {
	var cols []*ast.Expr
	if runtime.GOOS != "windows" {
		cols = append(cols,
			ast.NewField(ast.FieldMode),
			ast.NewField(ast.FieldUser),
			ast.NewField(ast.FieldGroup),
		)
	}
	cols = append(cols, ast.NewField(ast.FieldSize), ast.NewField(ast.FieldPath))
	return cols
}

type rootMode int

const (
	rootModeFrom rootMode = iota
	rootModeRoot
	rootModeMinDepth
	rootModeDepth
	rootModeOptions
	rootModeComma
)

func defaultRoot() *ast.Root {
	r := ast.NewRoot(".")
	return r
}

// parseRoots parses `from-clause := 'from' root (',' root)*`, or a single
// default root (".") when there is no FROM clause at all.
func (p *Parser) parseRoots() ([]*ast.Root, error) {
	if !p.curIs(token.FROM) {
		return []*ast.Root{defaultRoot()}, nil
	}
	p.advance()

	var roots []*ast.Root
	mode := rootModeFrom
	cur := defaultRoot()
	haveRoot := false

rootsLoop:
	for {
		switch mode {
		case rootModeFrom, rootModeComma:
			if !p.isRawOrString() {
				return nil, p.errAt(p.cur(), "expected a root path")
			}
			cur.Path = p.cur().Value
			haveRoot = true
			p.advance()
			mode = rootModeRoot

		case rootModeRoot, rootModeOptions:
			if p.curIs(token.COMMA) {
				roots = append(roots, cur)
				cur = defaultRoot()
				haveRoot = false
				p.advance()
				mode = rootModeComma
				continue
			}
			if p.curIs(token.AS) {
				p.advance()
				if !p.isRawOrString() {
					return nil, p.errAt(p.cur(), "expected an alias after AS")
				}
				cur.Alias = p.cur().Value
				p.advance()
				mode = rootModeOptions
				continue
			}
			if !p.isRawOrString() {
				break rootsLoop
			}

			s := strings.ToLower(p.cur().Value)
			switch {
			case s == "mindepth":
				p.advance()
				mode = rootModeMinDepth
			case s == "maxdepth" || s == "depth":
				p.advance()
				mode = rootModeDepth
			case strings.HasPrefix(s, "arc"):
				cur.Archives = true
				p.advance()
				mode = rootModeOptions
			case strings.HasPrefix(s, "sym"):
				cur.Symlinks = true
				p.advance()
				mode = rootModeOptions
			case strings.HasPrefix(s, "git"):
				v := true
				cur.Gitignore = &v
				p.advance()
				mode = rootModeOptions
			case strings.HasPrefix(s, "hg"):
				v := true
				cur.Hgignore = &v
				p.advance()
				mode = rootModeOptions
			case strings.HasPrefix(s, "doc"):
				v := true
				cur.Dockerignore = &v
				p.advance()
				mode = rootModeOptions
			case strings.HasPrefix(s, "regex"):
				cur.Regexp = true
				p.advance()
				mode = rootModeOptions
			case s == "bfs":
				cur.Traversal = ast.TraversalBfs
				p.advance()
				mode = rootModeOptions
			case s == "dfs":
				cur.Traversal = ast.TraversalDfs
				p.advance()
				mode = rootModeOptions
			default:
				break rootsLoop
			}

		case rootModeMinDepth:
			d, ok := p.parseRootDepthValue()
			if !ok {
				return nil, p.errAt(p.cur(), "expected an integer after mindepth")
			}
			cur.MinDepth = d
			mode = rootModeOptions

		case rootModeDepth:
			d, ok := p.parseRootDepthValue()
			if !ok {
				return nil, p.errAt(p.cur(), "expected an integer after maxdepth")
			}
			cur.MaxDepth = d
			mode = rootModeOptions
		}
	}

	if haveRoot {
		roots = append(roots, cur)
	}
	return roots, nil
}

func (p *Parser) parseRootDepthValue() (uint32, bool) {
	if !p.isRawOrString() {
		return 0, false
	}
	d, err := strconv.ParseUint(p.cur().Value, 10, 32)
	if err != nil {
		return 0, false
	}
	p.advance()
	return uint32(d), true
}

func (p *Parser) parseWhere() (*ast.Expr, error) {
	if !p.curIs(token.WHERE) {
		return nil, nil
	}
	p.advance()
	return p.parseExpr()
}

// expr := and ('or' and)*
func (p *Parser) parseExpr() (*ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.OR) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewLogicalOp(left, ast.LogicalOr, right)
	}
	return left, nil
}

// and := cond ('and' cond)*
func (p *Parser) parseAnd() (*ast.Expr, error) {
	left, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.AND) {
		p.advance()
		right, err := p.parseCond()
		if err != nil {
			return nil, err
		}
		left = ast.NewLogicalOp(left, ast.LogicalAnd, right)
	}
	return left, nil
}

// cond := ['not'] add_sub (CMP_OP add_sub)?
//
// A leading NOT either inverts the comparison that follows (folded directly
// into Op via Op.Invert, matching "NOT LIKE" becoming the single NotLike
// operator) or, when what follows is not a comparison at all (e.g. "not
// exists(...)", "not (a and b)"), sets Expr.Negated instead.
func (p *Parser) parseCond() (*ast.Expr, error) {
	negate := false
	if p.curIs(token.NOT) {
		negate = true
		p.advance()
	}

	left, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}

	if p.curIs(token.OPERATOR) {
		opTok := p.cur()
		op, ok := ast.ParseOp(opTok.Value)
		if !ok {
			return nil, p.errAt(opTok, "unknown comparison operator")
		}
		p.advance()
		right, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}
		if negate {
			op = op.Invert()
		}
		return ast.NewOp(left, op, right), nil
	}

	if negate {
		left.Negated = !left.Negated
	}
	return left, nil
}

// add_sub := mul_div (('+'|'-'|'plus'|'minus') mul_div)*
func (p *Parser) parseAddSub() (*ast.Expr, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.ARITHMETIC) && (p.cur().Value == "+" || p.cur().Value == "-") {
		op, _ := ast.ParseArithmeticOp(p.cur().Value)
		p.advance()
		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		left = ast.NewArithmeticOp(left, op, right)
	}
	return left, nil
}

// mul_div := unary (('*'|'/'|'mul'|'div'|'%'|'mod') unary)*
func (p *Parser) parseMulDiv() (*ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.ARITHMETIC) && (p.cur().Value == "*" || p.cur().Value == "/" || p.cur().Value == "%") {
		op, _ := ast.ParseArithmeticOp(p.cur().Value)
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewArithmeticOp(left, op, right)
	}
	return left, nil
}

// unary := ['-'|'+'] paren
func (p *Parser) parseUnary() (*ast.Expr, error) {
	minus := false
	if p.curIs(token.ARITHMETIC) && (p.cur().Value == "-" || p.cur().Value == "+") {
		minus = p.cur().Value == "-"
		p.advance()
	}
	expr, err := p.parseParen()
	if err != nil {
		return nil, err
	}
	if minus {
		expr.Minus = true
	}
	return expr, nil
}

// paren := '(' expr ')' | '(' subquery ')' | func | field | literal
//
// A '(' is ambiguous between a grouped expression and an embedded
// sub-query; subqueryFollows disambiguates by scanning ahead (without
// consuming) for a FROM keyword before the matching ')'.
func (p *Parser) parseParen() (*ast.Expr, error) {
	if p.curIs(token.OPEN) {
		openTok := p.cur()
		p.advance()

		if p.subqueryFollows() {
			sub, err := p.parseSubqueryBody()
			if err != nil {
				return nil, err
			}
			if !p.curIs(token.CLOSE) {
				return nil, p.errUnmatchedParen(openTok)
			}
			p.advance()
			return ast.NewSubquery(sub), nil
		}

		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.curIs(token.CLOSE) {
			return nil, p.errUnmatchedParen(openTok)
		}
		p.advance()
		return inner, nil
	}

	return p.parseFuncFieldOrLiteral()
}

// subqueryFollows reports whether, starting at the current position (just
// past a consumed '('), a FROM keyword appears before this paren group's
// matching ')'. Nested parens are skipped over without inspection.
func (p *Parser) subqueryFollows() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case token.OPEN:
			depth++
		case token.CLOSE:
			if depth == 0 {
				return false
			}
			depth--
		case token.FROM:
			if depth == 0 {
				return true
			}
		case token.EOF:
			return false
		}
	}
	return false
}

// parseSubqueryBody parses the fields/from/where of an embedded query, up
// to (but not including) the ')' that closes it. Ordering, LIMIT, and INTO
// are not meaningful inside EXISTS/IN and are not parsed here.
func (p *Parser) parseSubqueryBody() (*ast.Query, error) {
	fields, err := p.parseFields()
	if err != nil {
		return nil, err
	}
	roots, err := p.parseRoots()
	if err != nil {
		return nil, err
	}
	expr, err := p.parseWhere()
	if err != nil {
		return nil, err
	}
	return &ast.Query{Fields: fields, Roots: roots, Expr: expr}, nil
}

// parseFuncFieldOrLiteral parses `func | field | literal`: a NAME that
// resolves to a known field is a field reference (optionally qualified by a
// root alias, "alias.field"); a NAME that resolves to a known function is a
// function call; "exists" is parsed specially, since its argument is a
// full sub-query rather than a plain expression list; anything else is a
// string literal, coerced to a typed Variant at evaluation time.
func (p *Parser) parseFuncFieldOrLiteral() (*ast.Expr, error) {
	if !p.isRawOrString() {
		return nil, p.errAt(p.cur(), "expected a field, function, or value")
	}

	tok := p.cur()

	// Only an unquoted raw token can be a field, function, or exists(...)
	// call; a single-quoted string is always a literal, even when its text
	// happens to spell a field or function name.
	if tok.Type == token.RAWSTRING {
		if strings.EqualFold(tok.Value, "exists") {
			p.advance()
			return p.parseExistsBody()
		}

		if field, alias, ok := parseQualifiedField(tok.Value); ok {
			p.advance()
			if alias != "" {
				return ast.NewFieldWithRootAlias(field, alias), nil
			}
			return ast.NewField(field), nil
		}

		if function, ok := ast.ParseFunction(tok.Value); ok {
			p.advance()
			return p.parseFunctionArgs(function)
		}
	}

	p.advance()
	return ast.NewValue(tok.Value), nil
}

// parseExistsBody parses the "(subquery)" argument of an EXISTS call. The
// NOT in "NOT EXISTS" is handled by parseCond (it sets Expr.Negated), not
// here.
func (p *Parser) parseExistsBody() (*ast.Expr, error) {
	if !p.curIs(token.OPEN) {
		return nil, p.errAt(p.cur(), "expected ( after exists")
	}
	openTok := p.cur()
	p.advance()

	sub, err := p.parseSubqueryBody()
	if err != nil {
		return nil, err
	}
	if !p.curIs(token.CLOSE) {
		return nil, p.errUnmatchedParen(openTok)
	}
	p.advance()

	expr := ast.NewSubquery(sub)
	expr.HasFunction = true
	expr.Function = ast.FuncExists
	return expr, nil
}

// parseQualifiedField resolves raw as a bare field name, or (if that fails)
// as an "alias.field" qualified reference.
func parseQualifiedField(raw string) (ast.Field, string, bool) {
	if f, ok := ast.ParseField(raw); ok {
		return f, "", true
	}
	if idx := strings.LastIndex(raw, "."); idx > 0 && idx < len(raw)-1 {
		if f, ok := ast.ParseField(raw[idx+1:]); ok {
			return f, raw[:idx], true
		}
	}
	return ast.FieldUnknown, "", false
}

// parseFunctionArgs parses `'(' (expr (',' expr)*)? ')'` for a function
// already identified by name, folding the first argument into Expr.Left
// (matching the original's single-argument convention for lower/upper/day/
// and so on) and the rest into Expr.Args.
func (p *Parser) parseFunctionArgs(function ast.Function) (*ast.Expr, error) {
	if !p.curIs(token.OPEN) {
		return nil, p.errAt(p.cur(), "expected ( after function name")
	}
	openTok := p.cur()
	p.advance()

	expr := ast.NewFunction(function)

	if p.curIs(token.CLOSE) {
		p.advance()
		return expr, nil
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	expr.AddLeft(first)

	var args []*ast.Expr
	for p.curIs(token.COMMA) {
		p.advance()
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	expr.SetArgs(args)

	if !p.curIs(token.CLOSE) {
		return nil, p.errUnmatchedParen(openTok)
	}
	p.advance()
	return expr, nil
}

// parseOrderBy parses `'order' 'by' item (',' item)*`, where item is either
// a 1-based integer position into fields or a general expression; a
// trailing DESC flips the direction of the immediately preceding item.
func (p *Parser) parseOrderBy(fields []*ast.Expr) ([]*ast.Expr, []bool, error) {
	if !p.curIs(token.ORDER) {
		return nil, nil, nil
	}
	p.advance()
	if !p.curIs(token.BY) {
		return nil, nil, p.errAt(p.cur(), "expected BY after ORDER")
	}
	p.advance()

	var orderingFields []*ast.Expr
	var orderingAsc []bool

	for {
		switch {
		case p.curIs(token.COMMA):
			p.advance()
		case p.curIs(token.DESC):
			if len(orderingAsc) == 0 {
				return nil, nil, p.errAt(p.cur(), "DESC with no preceding ordering expression")
			}
			orderingAsc[len(orderingAsc)-1] = false
			p.advance()
		case p.curIs(token.ASC):
			p.advance()
		case p.isRawOrString():
			if idx, err := strconv.Atoi(p.cur().Value); err == nil {
				if idx < 1 || idx > len(fields) {
					return nil, nil, p.errAt(p.cur(), "ordering position out of range")
				}
				orderingFields = append(orderingFields, fields[idx-1])
				orderingAsc = append(orderingAsc, true)
				p.advance()
				continue
			}
			expr, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			orderingFields = append(orderingFields, expr)
			orderingAsc = append(orderingAsc, true)
		default:
			return orderingFields, orderingAsc, nil
		}
	}
}

// parseLimit parses `'limit' N`, defaulting to 0 (unbounded) when absent.
func (p *Parser) parseLimit() (uint32, error) {
	if !p.curIs(token.LIMIT) {
		return 0, nil
	}
	p.advance()

	if !p.isRawOrString() {
		return 0, p.errAt(p.cur(), "expected a limit value")
	}
	n, err := strconv.ParseUint(p.cur().Value, 10, 32)
	if err != nil {
		return 0, p.errAt(p.cur(), "invalid limit value")
	}
	p.advance()
	return uint32(n), nil
}

// parseOutputFormat parses `'into' FORMAT`, defaulting to tabs when absent.
func (p *Parser) parseOutputFormat() (ast.OutputFormat, error) {
	if !p.curIs(token.INTO) {
		return ast.FormatTabs, nil
	}
	p.advance()

	if !p.isRawOrString() {
		return ast.FormatTabs, p.errAt(p.cur(), "expected an output format")
	}
	f, ok := ast.ParseOutputFormat(p.cur().Value)
	if !ok {
		return ast.FormatTabs, p.errAt(p.cur(), "unknown output format %q", p.cur().Value)
	}
	p.advance()
	return f, nil
}

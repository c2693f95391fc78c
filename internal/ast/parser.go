package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/keyprune/internal/types"
)

// ParseError reports a syntax error at a byte offset of the input.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Message)
}

// Operators and the functions they are rewritten to.
var (
	comparisonOps = map[string]string{
		"=":  "equals",
		"==": "equals",
		"!=": "notEquals",
		"<>": "notEquals",
		"<":  "less",
		">":  "greater",
		"<=": "lessOrEquals",
		">=": "greaterOrEquals",
	}
	additiveOps = map[string]string{
		"+": "plus",
		"-": "minus",
	}
	multiplicativeOps = map[string]string{
		"*": "multiply",
		"/": "divide",
		"%": "modulo",
	}
)

type parser struct {
	src    string
	tokens []token
	pos    int
}

// Parse parses a single expression such as
//
//	(CounterID, modulo(UserID, 10))
//	x IN (1, 2, 3) AND NOT y < 5
//	EventDate >= 17000 AND (a, b) IN (SELECT a, b FROM t)
//
// Operators are rewritten to function calls (a % b becomes modulo(a, b)),
// AND/OR chains are flattened, and parenthesized or bracketed lists made of
// literals only become tuple or array literals.
func Parse(input string) (Node, error) {
	p := &parser{src: input}
	if err := p.lexAll(); err != nil {
		return nil, err
	}
	if p.current().typ == tokEOF {
		return nil, &ParseError{Pos: 0, Message: "empty expression"}
	}

	node, err := p.parseAliased()
	if err != nil {
		return nil, err
	}
	if t := p.current(); t.typ != tokEOF {
		return nil, &ParseError{Pos: t.pos, Message: fmt.Sprintf("unexpected trailing %q", t.lit)}
	}
	return node, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or with constant input.
func MustParse(input string) Node {
	n, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return n
}

func (p *parser) lexAll() error {
	lex := newLexer(p.src)
	for {
		tok, err := lex.nextToken()
		if err != nil {
			return err
		}
		p.tokens = append(p.tokens, tok)
		if tok.typ == tokEOF {
			return nil
		}
	}
}

func (p *parser) current() token {
	return p.peek(0)
}

func (p *parser) peek(n int) token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos+n]
}

func (p *parser) next() token {
	t := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(tt tokenType, what string) (token, error) {
	t := p.current()
	if t.typ != tt {
		return t, p.errorf(t, "expected %s", what)
	}
	return p.next(), nil
}

func (p *parser) errorf(t token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if t.typ == tokEOF {
		msg += ", got end of input"
	} else {
		msg += fmt.Sprintf(", got %q", t.lit)
	}
	return &ParseError{Pos: t.pos, Message: msg}
}

// parseAliased parses an expression with an optional trailing "AS alias".
func (p *parser) parseAliased() (Node, error) {
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.current().keyword("AS") {
		return n, nil
	}
	p.next()
	t := p.current()
	if t.typ != tokIdent && t.typ != tokQuotedIdent {
		return nil, p.errorf(t, "expected alias after AS")
	}
	p.next()
	if _, ok := n.(aliased); !ok {
		return nil, &ParseError{Pos: t.pos, Message: "expression cannot have an alias"}
	}
	return SetAlias(n, t.lit), nil
}

func (p *parser) parseOr() (Node, error) {
	return p.parseChain("OR", "or", p.parseAnd)
}

func (p *parser) parseAnd() (Node, error) {
	return p.parseChain("AND", "and", p.parseNot)
}

// parseChain parses operand (KW operand)* into a single flat call.
func (p *parser) parseChain(kw, fn string, operand func() (Node, error)) (Node, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	items := []Node{first}
	for p.current().keyword(kw) {
		p.next()
		n, err := operand()
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if len(items) == 1 {
		return first, nil
	}
	return NewFunction(fn, items...), nil
}

func (p *parser) parseNot() (Node, error) {
	if p.current().keyword("NOT") && !p.peek(1).keyword("IN") {
		p.next()
		n, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return NewFunction("not", n), nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	t := p.current()
	if fn, ok := comparisonOps[t.lit]; ok && t.typ == tokOp {
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return NewFunction(fn, left, right), nil
	}

	fn := ""
	switch {
	case t.keyword("IN"):
		p.next()
		fn = "in"
	case t.keyword("NOT") && p.peek(1).keyword("IN"):
		p.next()
		p.next()
		fn = "notIn"
	default:
		return left, nil
	}

	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	// A bare name on the right of IN refers to a table, not a column.
	if id, ok := right.(*Identifier); ok {
		right = toTableIdentifier(id)
	}
	return NewFunction(fn, left, right), nil
}

func toTableIdentifier(id *Identifier) *TableIdentifier {
	t := &TableIdentifier{WithAlias: id.WithAlias, Table: id.Name}
	if db, table, ok := strings.Cut(id.Name, "."); ok {
		t.Database, t.Table = db, table
	}
	return t
}

func (p *parser) parseAdditive() (Node, error) {
	return p.parseBinary(additiveOps, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() (Node, error) {
	return p.parseBinary(multiplicativeOps, p.parseUnary)
}

// parseBinary parses a left-associative chain of operators from ops.
func (p *parser) parseBinary(ops map[string]string, operand func() (Node, error)) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		t := p.current()
		fn, ok := ops[t.lit]
		if !ok || t.typ != tokOp {
			return left, nil
		}
		p.next()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = NewFunction(fn, left, right)
	}
}

func (p *parser) parseUnary() (Node, error) {
	t := p.current()
	if t.typ != tokOp || t.lit != "-" {
		return p.parsePrimary()
	}
	p.next()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	// Negative numbers are literals, not negate() calls.
	if lit, ok := operand.(*Literal); ok && lit.Alias == "" {
		switch v := lit.Value; v.Kind() {
		case types.KindUInt64:
			if v.AsUInt64() <= 1<<63 {
				return NewLiteral(types.NewInt64(int64(-v.AsUInt64()))), nil
			}
		case types.KindInt64:
			if v.AsInt64() < 0 {
				return NewLiteral(types.NewUInt64(uint64(-v.AsInt64()))), nil
			}
		case types.KindFloat64:
			return NewLiteral(types.NewFloat64(-v.AsFloat64())), nil
		}
	}
	return NewFunction("negate", operand), nil
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.current()
	switch t.typ {
	case tokNumber:
		p.next()
		return parseNumber(t)
	case tokString:
		p.next()
		return NewLiteral(types.NewString(t.lit)), nil
	case tokQuotedIdent:
		p.next()
		return p.parseName(t.lit)
	case tokIdent:
		switch {
		case t.keyword("NULL"):
			p.next()
			return NewLiteral(types.Null()), nil
		case t.keyword("TRUE"):
			p.next()
			return NewLiteral(types.NewUInt64(1)), nil
		case t.keyword("FALSE"):
			p.next()
			return NewLiteral(types.NewUInt64(0)), nil
		}
		p.next()
		if p.current().typ == tokLParen {
			return p.parseCall(t.lit)
		}
		return p.parseName(t.lit)
	case tokLParen:
		if next := p.peek(1); next.keyword("SELECT") || next.keyword("WITH") {
			return p.parseSubquery()
		}
		p.next()
		items, err := p.parseList(tokRParen, ")")
		if err != nil {
			return nil, err
		}
		if len(items) == 1 {
			return items[0], nil
		}
		if len(items) == 0 {
			return nil, p.errorf(t, "empty parentheses")
		}
		if fields, ok := literalFields(items); ok {
			return NewLiteral(types.NewTuple(fields...)), nil
		}
		return NewFunction("tuple", items...), nil
	case tokLBracket:
		p.next()
		items, err := p.parseList(tokRBracket, "]")
		if err != nil {
			return nil, err
		}
		if fields, ok := literalFields(items); ok {
			return NewLiteral(types.NewArray(fields...)), nil
		}
		return NewFunction("array", items...), nil
	}
	return nil, p.errorf(t, "expected expression")
}

// parseName parses a possibly dotted column name whose first part is already consumed.
func (p *parser) parseName(first string) (Node, error) {
	name := first
	for p.current().typ == tokDot {
		p.next()
		t := p.current()
		if t.typ != tokIdent && t.typ != tokQuotedIdent {
			return nil, p.errorf(t, "expected name after '.'")
		}
		p.next()
		name += "." + t.lit
	}
	return NewIdentifier(name), nil
}

func (p *parser) parseCall(name string) (Node, error) {
	p.next() // (
	args, err := p.parseList(tokRParen, ")")
	if err != nil {
		return nil, err
	}
	return NewFunction(name, args...), nil
}

// parseList parses comma-separated aliased expressions up to the closing token.
// The opening token has already been consumed.
func (p *parser) parseList(closing tokenType, what string) ([]Node, error) {
	var items []Node
	if p.current().typ == closing {
		p.next()
		return items, nil
	}
	for {
		n, err := p.parseAliased()
		if err != nil {
			return nil, err
		}
		items = append(items, n)
		if p.current().typ == tokComma {
			p.next()
			continue
		}
		if _, err := p.expect(closing, "',' or '"+what+"'"); err != nil {
			return nil, err
		}
		return items, nil
	}
}

// parseSubquery captures the text of a parenthesized SELECT verbatim.
func (p *parser) parseSubquery() (Node, error) {
	open := p.next()
	depth := 1
	for {
		t := p.next()
		switch t.typ {
		case tokEOF:
			return nil, &ParseError{Pos: open.pos, Message: "unterminated subquery"}
		case tokLParen:
			depth++
		case tokRParen:
			depth--
			if depth == 0 {
				return &Subquery{Query: strings.TrimSpace(p.src[open.end:t.pos])}, nil
			}
		}
	}
}

func parseNumber(t token) (Node, error) {
	if !strings.ContainsAny(t.lit, ".eE") {
		v, err := strconv.ParseUint(t.lit, 10, 64)
		if err != nil {
			return nil, &ParseError{Pos: t.pos, Message: fmt.Sprintf("invalid number %q", t.lit)}
		}
		return NewLiteral(types.NewUInt64(v)), nil
	}
	v, err := strconv.ParseFloat(t.lit, 64)
	if err != nil {
		return nil, &ParseError{Pos: t.pos, Message: fmt.Sprintf("invalid number %q", t.lit)}
	}
	return NewLiteral(types.NewFloat64(v)), nil
}

// literalFields returns the values of items if all are unaliased literals.
func literalFields(items []Node) ([]types.Field, bool) {
	fields := make([]types.Field, len(items))
	for i, item := range items {
		lit, ok := item.(*Literal)
		if !ok || lit.Alias != "" {
			return nil, false
		}
		fields[i] = lit.Value
	}
	return fields, true
}

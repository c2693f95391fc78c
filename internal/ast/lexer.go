package ast

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokQuotedIdent
	tokNumber
	tokString
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokDot
	tokOp
)

type token struct {
	typ tokenType
	lit string
	pos int // byte offset of the first character
	end int // byte offset just past the token
}

// keyword reports whether t is the (case-insensitive) keyword kw.
func (t token) keyword(kw string) bool {
	return t.typ == tokIdent && strings.EqualFold(t.lit, kw)
}

type lexer struct {
	src string
	pos int
}

func newLexer(input string) *lexer {
	return &lexer{src: input}
}

func (l *lexer) peekRune() (rune, int) {
	if l.pos >= len(l.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.src[l.pos:])
}

func (l *lexer) skipSpaces() {
	for {
		r, size := l.peekRune()
		if size == 0 || !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *lexer) emit(typ tokenType, start int, lit string) token {
	return token{typ: typ, lit: lit, pos: start, end: l.pos}
}

func (l *lexer) nextToken() (token, error) {
	l.skipSpaces()
	start := l.pos
	r, size := l.peekRune()
	if size == 0 {
		return l.emit(tokEOF, start, ""), nil
	}

	switch {
	case r == '_' || unicode.IsLetter(r):
		for {
			r, size = l.peekRune()
			if size == 0 || !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)) {
				break
			}
			l.pos += size
		}
		// Identifiers are NFC-normalized so that names typed with combining
		// marks compare equal to their precomposed forms.
		return l.emit(tokIdent, start, norm.NFC.String(l.src[start:l.pos])), nil
	case r >= '0' && r <= '9':
		return l.lexNumber(start)
	}

	l.pos += size
	switch r {
	case '(':
		return l.emit(tokLParen, start, "("), nil
	case ')':
		return l.emit(tokRParen, start, ")"), nil
	case '[':
		return l.emit(tokLBracket, start, "["), nil
	case ']':
		return l.emit(tokRBracket, start, "]"), nil
	case ',':
		return l.emit(tokComma, start, ","), nil
	case '.':
		return l.emit(tokDot, start, "."), nil
	case '\'':
		s, err := l.lexQuoted('\'')
		if err != nil {
			return token{}, err
		}
		return l.emit(tokString, start, s), nil
	case '`', '"':
		s, err := l.lexQuoted(r)
		if err != nil {
			return token{}, err
		}
		return l.emit(tokQuotedIdent, start, norm.NFC.String(s)), nil
	case '+', '-', '*', '/', '%':
		return l.emit(tokOp, start, string(r)), nil
	case '=':
		if l.consume('=') {
			return l.emit(tokOp, start, "=="), nil
		}
		return l.emit(tokOp, start, "="), nil
	case '!':
		if l.consume('=') {
			return l.emit(tokOp, start, "!="), nil
		}
	case '<':
		if l.consume('=') {
			return l.emit(tokOp, start, "<="), nil
		}
		if l.consume('>') {
			return l.emit(tokOp, start, "<>"), nil
		}
		return l.emit(tokOp, start, "<"), nil
	case '>':
		if l.consume('=') {
			return l.emit(tokOp, start, ">="), nil
		}
		return l.emit(tokOp, start, ">"), nil
	}
	return token{}, &ParseError{Pos: start, Message: fmt.Sprintf("unexpected character %q", r)}
}

func (l *lexer) consume(b byte) bool {
	if l.pos < len(l.src) && l.src[l.pos] == b {
		l.pos++
		return true
	}
	return false
}

func (l *lexer) lexNumber(start int) (token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c >= '0' && c <= '9', c == '.':
			l.pos++
		case (c == 'e' || c == 'E') && l.pos+1 < len(l.src):
			l.pos++
			if n := l.src[l.pos]; n == '+' || n == '-' {
				l.pos++
			}
		default:
			return l.emit(tokNumber, start, l.src[start:l.pos]), nil
		}
	}
	return l.emit(tokNumber, start, l.src[start:l.pos]), nil
}

// lexQuoted reads up to the closing quote, handling backslash escapes.
// The opening quote has already been consumed.
func (l *lexer) lexQuoted(quote rune) (string, error) {
	start := l.pos - 1
	var b strings.Builder
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += size
		switch r {
		case quote:
			return b.String(), nil
		case '\\':
			if l.pos >= len(l.src) {
				break
			}
			e := l.src[l.pos]
			l.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '0':
				b.WriteByte(0)
			default:
				b.WriteByte(e)
			}
		default:
			b.WriteRune(r)
		}
	}
	return "", &ParseError{Pos: start, Message: "unterminated quoted text"}
}

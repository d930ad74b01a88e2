package ifc

import (
	"fmt"
	"strconv"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokKeyword
	tokRef
	tokInteger
	tokReal
	tokString
	tokEnum
	tokBinary
	tokDollar
	tokStar
	tokLParen
	tokRParen
	tokComma
	tokSemicolon
	tokEquals
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokKeyword:
		return "keyword"
	case tokRef:
		return "instance reference"
	case tokInteger:
		return "integer"
	case tokReal:
		return "real"
	case tokString:
		return "string"
	case tokEnum:
		return "enumeration"
	case tokBinary:
		return "binary"
	case tokDollar:
		return "'$'"
	case tokStar:
		return "'*'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokSemicolon:
		return "';'"
	case tokEquals:
		return "'='"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string // raw text; strings are already decoded
	line int
}

// SyntaxError reports malformed STEP content.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

type lexer struct {
	src  []byte
	pos  int
	line int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) errorf(format string, args ...any) error {
	return &SyntaxError{Line: l.line, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) skipSpaceAndComments() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			start := l.line
			l.pos += 2
			for {
				if l.pos+1 >= len(l.src) {
					return &SyntaxError{Line: start, Msg: "unterminated comment"}
				}
				if l.src[l.pos] == '*' && l.src[l.pos+1] == '/' {
					l.pos += 2
					break
				}
				if l.src[l.pos] == '\n' {
					l.line++
				}
				l.pos++
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) next() (token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return token{}, err
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}

	c := l.src[l.pos]
	switch c {
	case '(':
		l.pos++
		return token{kind: tokLParen, line: l.line}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen, line: l.line}, nil
	case ',':
		l.pos++
		return token{kind: tokComma, line: l.line}, nil
	case ';':
		l.pos++
		return token{kind: tokSemicolon, line: l.line}, nil
	case '=':
		l.pos++
		return token{kind: tokEquals, line: l.line}, nil
	case '$':
		l.pos++
		return token{kind: tokDollar, line: l.line}, nil
	case '*':
		l.pos++
		return token{kind: tokStar, line: l.line}, nil
	case '#':
		return l.lexRef()
	case '\'':
		return l.lexString()
	case '"':
		return l.lexBinary()
	case '.':
		if l.pos+1 < len(l.src) && isUpperAlpha(l.src[l.pos+1]) {
			return l.lexEnum()
		}
		return l.lexNumber()
	}

	if isDigit(c) || c == '-' || c == '+' {
		if c == '-' || c == '+' {
			if l.pos+1 >= len(l.src) || !(isDigit(l.src[l.pos+1]) || l.src[l.pos+1] == '.') {
				return token{}, l.errorf("unexpected character %q", c)
			}
		}
		return l.lexNumber()
	}
	if isAlpha(c) || c == '!' || c == '_' {
		return l.lexKeyword()
	}
	return token{}, l.errorf("unexpected character %q", c)
}

func (l *lexer) lexRef() (token, error) {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == start+1 {
		return token{}, l.errorf("instance reference without number")
	}
	return token{kind: tokRef, text: string(l.src[start+1 : l.pos]), line: l.line}, nil
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.src[l.pos] == '-' || l.src[l.pos] == '+' {
		l.pos++
	}
	isReal := false
scan:
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isDigit(c):
			l.pos++
		case c == '.':
			isReal = true
			l.pos++
		case c == 'E' || c == 'e':
			isReal = true
			l.pos++
			if l.pos < len(l.src) && (l.src[l.pos] == '-' || l.src[l.pos] == '+') {
				l.pos++
			}
		default:
			break scan
		}
	}
	text := string(l.src[start:l.pos])
	if isReal {
		return token{kind: tokReal, text: text, line: l.line}, nil
	}
	return token{kind: tokInteger, text: text, line: l.line}, nil
}

func (l *lexer) lexEnum() (token, error) {
	l.pos++
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '.' {
		c := l.src[l.pos]
		if !(isAlpha(c) || isDigit(c) || c == '_') {
			return token{}, l.errorf("invalid character %q in enumeration", c)
		}
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{}, l.errorf("unterminated enumeration")
	}
	text := string(l.src[start:l.pos])
	l.pos++
	return token{kind: tokEnum, text: text, line: l.line}, nil
}

func (l *lexer) lexKeyword() (token, error) {
	start := l.pos
	if l.src[l.pos] == '!' {
		l.pos++
	}
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isAlpha(c) || isDigit(c) || c == '_' || c == '-' {
			l.pos++
			continue
		}
		break
	}
	return token{kind: tokKeyword, text: string(l.src[start:l.pos]), line: l.line}, nil
}

func (l *lexer) lexString() (token, error) {
	line := l.line
	l.pos++
	var raw []byte
	for {
		if l.pos >= len(l.src) {
			return token{}, &SyntaxError{Line: line, Msg: "unterminated string"}
		}
		c := l.src[l.pos]
		if c == '\'' {
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '\'' {
				raw = append(raw, '\'')
				l.pos += 2
				continue
			}
			l.pos++
			break
		}
		if c == '\n' {
			l.line++
			l.pos++
			continue
		}
		if c == '\r' {
			l.pos++
			continue
		}
		raw = append(raw, c)
		l.pos++
	}
	decoded, err := decodeString(raw)
	if err != nil {
		return token{}, &SyntaxError{Line: line, Msg: err.Error()}
	}
	return token{kind: tokString, text: decoded, line: line}, nil
}

func (l *lexer) lexBinary() (token, error) {
	l.pos++
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '"' {
		if !isHex(l.src[l.pos]) {
			return token{}, l.errorf("invalid character %q in binary", l.src[l.pos])
		}
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{}, l.errorf("unterminated binary")
	}
	text := string(l.src[start:l.pos])
	l.pos++
	return token{kind: tokBinary, text: text, line: l.line}, nil
}

func parseRefID(text string) (int, error) {
	return strconv.Atoi(text)
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isUpperAlpha(c byte) bool { return c >= 'A' && c <= 'Z' }
func isAlpha(c byte) bool      { return isUpperAlpha(c) || (c >= 'a' && c <= 'z') }
func isHex(c byte) bool {
	return isDigit(c) || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

package ifc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotStepFile        = errors.New("not an ISO 10303-21 file")
	ErrUnsupportedSchema  = errors.New("unsupported IFC schema")
	ErrDuplicateInstance  = errors.New("duplicate instance id")
	ErrMissingDataSection = errors.New("no DATA section")
)

const (
	magicHeader = "ISO-10303-21"
	magicFooter = "END-ISO-10303-21"

	// maxParamDepth bounds nested parameter lists, typed parameters included.
	maxParamDepth = 64
)

// Header carries the HEADER section of a STEP file.
type Header struct {
	Description         []string
	ImplementationLevel string
	Name                string
	TimeStamp           string
	Author              []string
	Organization        []string
	PreprocessorVersion string
	OriginatingSystem   string
	Authorization       string
	SchemaIdentifiers   []string
}

// rawInstance is a parsed DATA record before it is indexed.
type rawInstance struct {
	id    int
	key   string
	attrs []Value
	line  int
}

type parser struct {
	lex    *lexer
	tok    token
	peeked bool
	depth  int
}

func (p *parser) peek() (token, error) {
	if !p.peeked {
		t, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.tok = t
		p.peeked = true
	}
	return p.tok, nil
}

func (p *parser) advance() (token, error) {
	t, err := p.peek()
	if err != nil {
		return token{}, err
	}
	p.peeked = false
	return t, nil
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t, err := p.advance()
	if err != nil {
		return token{}, err
	}
	if t.kind != kind {
		return token{}, &SyntaxError{Line: t.line, Msg: fmt.Sprintf("expected %s, found %s", kind, describe(t))}
	}
	return t, nil
}

func (p *parser) expectKeyword(word string) error {
	t, err := p.expect(tokKeyword)
	if err != nil {
		return err
	}
	if !strings.EqualFold(t.text, word) {
		return &SyntaxError{Line: t.line, Msg: fmt.Sprintf("expected %s, found %s", word, t.text)}
	}
	return nil
}

func describe(t token) string {
	if t.text != "" && t.kind != tokString {
		return fmt.Sprintf("%s %q", t.kind, t.text)
	}
	return t.kind.String()
}

// Open parses an IFC file in STEP physical file encoding and indexes it.
func Open(data []byte) (*Model, error) {
	p := &parser{lex: newLexer(data)}

	first, err := p.peek()
	if err != nil || first.kind != tokKeyword || !strings.EqualFold(first.text, magicHeader) {
		return nil, ErrNotStepFile
	}
	p.advance()
	if _, err := p.expect(tokSemicolon); err != nil {
		return nil, err
	}

	header, err := p.parseHeader()
	if err != nil {
		return nil, err
	}
	if len(header.SchemaIdentifiers) == 0 {
		return nil, fmt.Errorf("%w: FILE_SCHEMA is empty", ErrUnsupportedSchema)
	}
	family, ok := SchemaFamily(header.SchemaIdentifiers[0])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSchema, header.SchemaIdentifiers[0])
	}

	var instances []rawInstance
	sections := 0
	for {
		t, err := p.advance()
		if err != nil {
			return nil, err
		}
		if t.kind != tokKeyword {
			return nil, &SyntaxError{Line: t.line, Msg: fmt.Sprintf("expected section keyword, found %s", describe(t))}
		}
		word := strings.ToUpper(t.text)
		if word == magicFooter {
			if _, err := p.expect(tokSemicolon); err != nil {
				return nil, err
			}
			break
		}
		if word != "DATA" {
			return nil, &SyntaxError{Line: t.line, Msg: fmt.Sprintf("unexpected section %s", t.text)}
		}
		// DATA may carry a section name and schema list; neither is used.
		if next, err := p.peek(); err != nil {
			return nil, err
		} else if next.kind == tokLParen {
			p.advance()
			if _, err := p.parseList(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(tokSemicolon); err != nil {
			return nil, err
		}
		instances, err = p.parseData(instances)
		if err != nil {
			return nil, err
		}
		sections++
	}
	if sections == 0 {
		return nil, ErrMissingDataSection
	}

	return newModel(family, header, instances)
}

func (p *parser) parseHeader() (Header, error) {
	var h Header
	if err := p.expectKeyword("HEADER"); err != nil {
		return h, err
	}
	if _, err := p.expect(tokSemicolon); err != nil {
		return h, err
	}
	for {
		t, err := p.advance()
		if err != nil {
			return h, err
		}
		if t.kind != tokKeyword {
			return h, &SyntaxError{Line: t.line, Msg: fmt.Sprintf("expected header entity, found %s", describe(t))}
		}
		if strings.EqualFold(t.text, "ENDSEC") {
			_, err := p.expect(tokSemicolon)
			return h, err
		}
		if _, err := p.expect(tokLParen); err != nil {
			return h, err
		}
		args, err := p.parseList()
		if err != nil {
			return h, err
		}
		if _, err := p.expect(tokSemicolon); err != nil {
			return h, err
		}
		applyHeaderEntity(&h, strings.ToUpper(t.text), args)
	}
}

func applyHeaderEntity(h *Header, name string, args []Value) {
	str := func(i int) string {
		if i < len(args) {
			s, _ := args[i].AsString()
			return s
		}
		return ""
	}
	strs := func(i int) []string {
		if i >= len(args) {
			return nil
		}
		items, _ := args[i].AsList()
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.AsString(); ok {
				out = append(out, s)
			}
		}
		return out
	}

	switch name {
	case "FILE_DESCRIPTION":
		h.Description = strs(0)
		h.ImplementationLevel = str(1)
	case "FILE_NAME":
		h.Name = str(0)
		h.TimeStamp = str(1)
		h.Author = strs(2)
		h.Organization = strs(3)
		h.PreprocessorVersion = str(4)
		h.OriginatingSystem = str(5)
		h.Authorization = str(6)
	case "FILE_SCHEMA":
		h.SchemaIdentifiers = strs(0)
	}
}

func (p *parser) parseData(out []rawInstance) ([]rawInstance, error) {
	for {
		t, err := p.advance()
		if err != nil {
			return nil, err
		}
		if t.kind == tokKeyword && strings.EqualFold(t.text, "ENDSEC") {
			_, err := p.expect(tokSemicolon)
			return out, err
		}
		if t.kind != tokRef {
			return nil, &SyntaxError{Line: t.line, Msg: fmt.Sprintf("expected instance id, found %s", describe(t))}
		}
		id, err := parseRefID(t.text)
		if err != nil {
			return nil, &SyntaxError{Line: t.line, Msg: "instance id out of range"}
		}
		if _, err := p.expect(tokEquals); err != nil {
			return nil, err
		}

		inst := rawInstance{id: id, line: t.line}
		head, err := p.advance()
		if err != nil {
			return nil, err
		}
		switch head.kind {
		case tokKeyword:
			inst.key = strings.ToUpper(head.text)
			if _, err := p.expect(tokLParen); err != nil {
				return nil, err
			}
			if inst.attrs, err = p.parseList(); err != nil {
				return nil, err
			}
		case tokLParen:
			if err := p.parseComplex(&inst); err != nil {
				return nil, err
			}
		default:
			return nil, &SyntaxError{Line: head.line, Msg: fmt.Sprintf("expected entity type, found %s", describe(head))}
		}
		if _, err := p.expect(tokSemicolon); err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
}

// parseComplex reads an external mapping such as (IFCA(..)IFCB(..)). The
// instance takes the first partial type and the concatenated attributes.
func (p *parser) parseComplex(inst *rawInstance) error {
	for {
		t, err := p.advance()
		if err != nil {
			return err
		}
		if t.kind == tokRParen {
			if inst.key == "" {
				return &SyntaxError{Line: t.line, Msg: "empty complex instance"}
			}
			return nil
		}
		if t.kind != tokKeyword {
			return &SyntaxError{Line: t.line, Msg: fmt.Sprintf("expected partial entity type, found %s", describe(t))}
		}
		if inst.key == "" {
			inst.key = strings.ToUpper(t.text)
		}
		if _, err := p.expect(tokLParen); err != nil {
			return err
		}
		attrs, err := p.parseList()
		if err != nil {
			return err
		}
		inst.attrs = append(inst.attrs, attrs...)
	}
}

// parseList reads comma separated parameters up to and including the closing
// parenthesis. The opening parenthesis has already been consumed.
func (p *parser) parseList() ([]Value, error) {
	p.depth++
	defer func() { p.depth-- }()

	var items []Value
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if p.depth > maxParamDepth {
		return nil, &SyntaxError{Line: t.line, Msg: fmt.Sprintf("parameter nesting exceeds %d levels", maxParamDepth)}
	}
	if t.kind == tokRParen {
		p.advance()
		return []Value{}, nil
	}
	for {
		v, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		sep, err := p.advance()
		if err != nil {
			return nil, err
		}
		switch sep.kind {
		case tokComma:
			continue
		case tokRParen:
			return items, nil
		default:
			return nil, &SyntaxError{Line: sep.line, Msg: fmt.Sprintf("expected ',' or ')', found %s", describe(sep))}
		}
	}
}

func (p *parser) parseParam() (Value, error) {
	t, err := p.advance()
	if err != nil {
		return Value{}, err
	}
	switch t.kind {
	case tokDollar:
		return Value{Kind: KindNull}, nil
	case tokStar:
		return Value{Kind: KindDerived}, nil
	case tokInteger:
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return Value{}, &SyntaxError{Line: t.line, Msg: fmt.Sprintf("bad integer %q", t.text)}
		}
		return Value{Kind: KindInteger, Int: n}, nil
	case tokReal:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return Value{}, &SyntaxError{Line: t.line, Msg: fmt.Sprintf("bad real %q", t.text)}
		}
		return Value{Kind: KindReal, Real: f}, nil
	case tokString:
		return Value{Kind: KindString, Str: t.text}, nil
	case tokEnum:
		return Value{Kind: KindEnum, Str: strings.ToUpper(t.text)}, nil
	case tokBinary:
		return Value{Kind: KindBinary, Str: t.text}, nil
	case tokRef:
		id, err := parseRefID(t.text)
		if err != nil {
			return Value{}, &SyntaxError{Line: t.line, Msg: "instance reference out of range"}
		}
		return Value{Kind: KindRef, Ref: id}, nil
	case tokLParen:
		items, err := p.parseList()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindList, List: items}, nil
	case tokKeyword:
		if _, err := p.expect(tokLParen); err != nil {
			return Value{}, err
		}
		items, err := p.parseList()
		if err != nil {
			return Value{}, err
		}
		if len(items) != 1 {
			return Value{}, &SyntaxError{Line: t.line, Msg: fmt.Sprintf("typed parameter %s takes one value", t.text)}
		}
		return Value{Kind: KindTyped, Str: strings.ToUpper(t.text), List: items}, nil
	}
	return Value{}, &SyntaxError{Line: t.line, Msg: fmt.Sprintf("unexpected %s", describe(t))}
}

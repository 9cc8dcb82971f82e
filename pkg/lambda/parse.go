package lambda

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Notation selects the surface syntax accepted by [Parse] and produced by [Format].
type Notation int

const (
	// Classic is named-variable syntax: λx.λy.x y, with \ accepted for λ.
	Classic Notation = iota
	// DeBruijn is index syntax: λλ21. Each digit is its own variable, so
	// 11 is the application 1 1; {12} spells a multi-digit index.
	DeBruijn
)

// String returns the notation name used by flags and config files.
func (n Notation) String() string {
	switch n {
	case Classic:
		return "classic"
	case DeBruijn:
		return "debruijn"
	default:
		return fmt.Sprintf("Notation(%d)", int(n))
	}
}

// ParseNotation maps a notation name to a Notation. Accepted names are
// "classic" and "debruijn" (also "de-bruijn" and "db").
func ParseNotation(s string) (Notation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classic", "":
		return Classic, nil
	case "debruijn", "de-bruijn", "db":
		return DeBruijn, nil
	default:
		return 0, fmt.Errorf("unknown notation %q (must be 'classic' or 'debruijn')", s)
	}
}

// ParseError reports malformed input. Offset is a byte offset into the source.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
}

// Parse reads text in notation n.
func Parse(text string, n Notation) (Term, error) {
	toks, err := tokenize(text, n)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, notation: n, free: map[string]int{}}
	if p.atEnd() {
		return nil, &ParseError{Offset: 0, Msg: "empty expression"}
	}
	t, err := p.term()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		tok := p.peek()
		return nil, &ParseError{Offset: tok.offset, Msg: fmt.Sprintf("unexpected %s", tok)}
	}
	return t, nil
}

// ParseClassic is shorthand for Parse(text, Classic).
func ParseClassic(text string) (Term, error) { return Parse(text, Classic) }

// ParseDeBruijn is shorthand for Parse(text, DeBruijn).
func ParseDeBruijn(text string) (Term, error) { return Parse(text, DeBruijn) }

// MustParse is like Parse but panics on error. Intended for fixtures.
func MustParse(text string, n Notation) Term {
	t, err := Parse(text, n)
	if err != nil {
		panic(err)
	}
	return t
}

// =============================================================================
// Tokens
// =============================================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLambda
	tokDot
	tokLParen
	tokRParen
	tokIdent
	tokIndex
)

type token struct {
	kind   tokenKind
	text   string
	index  int
	offset int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return fmt.Sprintf("identifier %q", t.text)
	case tokIndex:
		return fmt.Sprintf("index %d", t.index)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) && r != 'λ' }
func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '\''
}

func tokenize(src string, n Notation) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		r, w := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += w
		case r == 'λ' || r == '\\':
			toks = append(toks, token{kind: tokLambda, text: string(r), offset: i})
			i += w
		case r == '.' && n == Classic:
			toks = append(toks, token{kind: tokDot, text: ".", offset: i})
			i += w
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", offset: i})
			i += w
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", offset: i})
			i += w
		case n == DeBruijn && r >= '0' && r <= '9':
			if r == '0' {
				return nil, &ParseError{Offset: i, Msg: "de Bruijn indices start at 1"}
			}
			toks = append(toks, token{kind: tokIndex, text: string(r), index: int(r - '0'), offset: i})
			i += w
		case n == DeBruijn && r == '{':
			end := strings.IndexByte(src[i:], '}')
			if end < 0 {
				return nil, &ParseError{Offset: i, Msg: "unterminated '{'"}
			}
			digits := strings.TrimSpace(src[i+1 : i+end])
			idx, err := strconv.Atoi(digits)
			if err != nil || idx < 1 {
				return nil, &ParseError{Offset: i, Msg: fmt.Sprintf("invalid index %q", digits)}
			}
			toks = append(toks, token{kind: tokIndex, text: src[i : i+end+1], index: idx, offset: i})
			i += end + 1
		case n == Classic && isIdentStart(r):
			start := i
			for i < len(src) {
				r, w := utf8.DecodeRuneInString(src[i:])
				if !isIdentPart(r) {
					break
				}
				i += w
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], offset: start})
		default:
			return nil, &ParseError{Offset: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return append(toks, token{kind: tokEOF, offset: len(src)}), nil
}

// =============================================================================
// Parser
// =============================================================================

type parser struct {
	toks     []token
	i        int
	notation Notation

	// scope holds classic binder names, innermost last.
	scope []string
	// free numbers unbound classic names in order of first appearance.
	free map[string]int
}

func (p *parser) peek() token { return p.toks[p.i] }
func (p *parser) atEnd() bool { return p.peek().kind == tokEOF }

func (p *parser) advance() token {
	tok := p.toks[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

func (p *parser) need(kind tokenKind, what string) (token, error) {
	tok := p.peek()
	if tok.kind != kind {
		return tok, &ParseError{Offset: tok.offset, Msg: fmt.Sprintf("expected %s, found %s", what, tok)}
	}
	return p.advance(), nil
}

func (p *parser) startsAtom() bool {
	switch p.peek().kind {
	case tokIdent, tokIndex, tokLParen:
		return true
	}
	return false
}

// term := lambda | application
func (p *parser) term() (Term, error) {
	if p.peek().kind == tokLambda {
		return p.lambda()
	}
	return p.application()
}

// application := atom+ [lambda]
func (p *parser) application() (Term, error) {
	if !p.startsAtom() {
		tok := p.peek()
		return nil, &ParseError{Offset: tok.offset, Msg: fmt.Sprintf("expected term, found %s", tok)}
	}
	t, err := p.atom()
	if err != nil {
		return nil, err
	}
	for p.startsAtom() {
		arg, err := p.atom()
		if err != nil {
			return nil, err
		}
		t = A(t, arg)
	}
	if p.peek().kind == tokLambda {
		arg, err := p.lambda()
		if err != nil {
			return nil, err
		}
		t = A(t, arg)
	}
	return t, nil
}

func (p *parser) atom() (Term, error) {
	tok := p.advance()
	switch tok.kind {
	case tokIndex:
		return V(tok.index), nil
	case tokIdent:
		return p.resolve(tok.text), nil
	case tokLParen:
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, &ParseError{Offset: tok.offset, Msg: fmt.Sprintf("unexpected %s", tok)}
	}
}

func (p *parser) lambda() (Term, error) {
	if _, err := p.need(tokLambda, "'λ'"); err != nil {
		return nil, err
	}
	if p.notation == DeBruijn {
		body, err := p.term()
		if err != nil {
			return nil, err
		}
		return L(body), nil
	}

	var names []string
	for p.peek().kind == tokIdent {
		names = append(names, p.advance().text)
	}
	if len(names) == 0 {
		tok := p.peek()
		return nil, &ParseError{Offset: tok.offset, Msg: fmt.Sprintf("expected binder name, found %s", tok)}
	}
	if _, err := p.need(tokDot, "'.'"); err != nil {
		return nil, err
	}

	p.scope = append(p.scope, names...)
	body, err := p.term()
	p.scope = p.scope[:len(p.scope)-len(names)]
	if err != nil {
		return nil, err
	}
	return Lams(len(names), body), nil
}

// resolve maps a classic name to a de Bruijn index. Unbound names get
// indices past the outermost binder so validation can report them.
func (p *parser) resolve(name string) *Var {
	for i := len(p.scope) - 1; i >= 0; i-- {
		if p.scope[i] == name {
			return V(len(p.scope) - i)
		}
	}
	n, ok := p.free[name]
	if !ok {
		n = len(p.free) + 1
		p.free[name] = n
	}
	return V(len(p.scope) + n)
}

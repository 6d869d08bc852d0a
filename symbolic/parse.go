package symbolic

import (
	"fmt"
	"math/big"
	"unicode"
)

// ============================================================
// Parsing
// ============================================================

const maxParseDepth = 200

// ParseError describes malformed engine input.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Pos < 0 {
		return "parse error: " + e.Msg
	}
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Msg)
}

// Parse reads an expression in the engine grammar:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ ("**" | "^") unary ]
//	primary = number | identifier | "(" expr ")"
//
// Numbers may carry a decimal fraction, which is read exactly. Powers are
// right associative and bind tighter than a leading minus.
func Parse(text string) (Expr, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{input: text, toks: toks}
	if p.peek().kind == tEOF {
		return nil, &ParseError{Input: text, Pos: -1, Msg: "empty expression"}
	}
	e, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
	return e, nil
}

type tokKind int

const (
	tEOF tokKind = iota
	tNum
	tIdent
	tPlus
	tMinus
	tStar
	tSlash
	tPow
	tLParen
	tRParen
)

type tok struct {
	kind tokKind
	text string
	pos  int
}

func lex(text string) ([]tok, error) {
	rs := []rune(text)
	var toks []tok
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isDigit(r) || (r == '.' && i+1 < len(rs) && isDigit(rs[i+1])):
			start := i
			for i < len(rs) && isDigit(rs[i]) {
				i++
			}
			if i < len(rs) && rs[i] == '.' {
				i++
				for i < len(rs) && isDigit(rs[i]) {
					i++
				}
			}
			toks = append(toks, tok{kind: tNum, text: string(rs[start:i]), pos: start})
		case isIdentStart(r):
			start := i
			for i < len(rs) && (isIdentStart(rs[i]) || isDigit(rs[i])) {
				i++
			}
			toks = append(toks, tok{kind: tIdent, text: string(rs[start:i]), pos: start})
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			toks = append(toks, tok{kind: tPow, text: "**", pos: i})
			i += 2
		default:
			kind, ok := singles[r]
			if !ok {
				return nil, &ParseError{Input: text, Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
			}
			toks = append(toks, tok{kind: kind, text: string(r), pos: i})
			i++
		}
	}
	return append(toks, tok{kind: tEOF, pos: len(rs)}), nil
}

var singles = map[rune]tokKind{
	'+': tPlus,
	'-': tMinus,
	'*': tStar,
	'/': tSlash,
	'^': tPow,
	'(': tLParen,
	')': tRParen,
}

func isDigit(r rune) bool      { return r >= '0' && r <= '9' }
func isIdentStart(r rune) bool { return r == '_' || (r < unicode.MaxASCII && unicode.IsLetter(r)) }

type parser struct {
	input string
	toks  []tok
	pos   int
}

func (p *parser) peek() tok { return p.toks[p.pos] }
func (p *parser) next() tok { t := p.toks[p.pos]; p.pos++; return t }

func (p *parser) errorf(t tok, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if t.kind == tEOF {
		msg = "unexpected end of input"
	}
	return &ParseError{Input: p.input, Pos: t.pos, Msg: msg}
}

func (p *parser) expr(depth int) (Expr, error) {
	if depth > maxParseDepth {
		return nil, &ParseError{Input: p.input, Pos: p.peek().pos, Msg: "expression nested too deeply"}
	}
	left, err := p.term(depth)
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tPlus:
			p.next()
			right, err := p.term(depth)
			if err != nil {
				return nil, err
			}
			left = AddOf(left, right)
		case tMinus:
			p.next()
			right, err := p.term(depth)
			if err != nil {
				return nil, err
			}
			left = AddOf(left, MulOf(N(-1), right))
		default:
			return left, nil
		}
	}
}

func (p *parser) term(depth int) (Expr, error) {
	left, err := p.unary(depth)
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tStar:
			p.next()
			right, err := p.unary(depth)
			if err != nil {
				return nil, err
			}
			left = MulOf(left, right)
		case tSlash:
			p.next()
			right, err := p.unary(depth)
			if err != nil {
				return nil, err
			}
			left = MulOf(left, PowOf(right, N(-1)))
		default:
			return left, nil
		}
	}
}

func (p *parser) unary(depth int) (Expr, error) {
	switch p.peek().kind {
	case tMinus:
		p.next()
		operand, err := p.unary(depth + 1)
		if err != nil {
			return nil, err
		}
		return MulOf(N(-1), operand), nil
	case tPlus:
		p.next()
		return p.unary(depth + 1)
	}
	return p.power(depth)
}

func (p *parser) power(depth int) (Expr, error) {
	base, err := p.primary(depth)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tPow {
		return base, nil
	}
	p.next()
	exp, err := p.unary(depth + 1)
	if err != nil {
		return nil, err
	}
	return PowOf(base, exp), nil
}

func (p *parser) primary(depth int) (Expr, error) {
	t := p.next()
	switch t.kind {
	case tNum:
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, p.errorf(t, "invalid number %q", t.text)
		}
		return &Num{val: r}, nil
	case tIdent:
		return S(t.text), nil
	case tLParen:
		inner, err := p.expr(depth + 1)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tRParen {
			return nil, p.errorf(closing, "expected ')' to close '(' at position %d", t.pos)
		}
		return inner, nil
	}
	return nil, p.errorf(t, "unexpected %q", t.text)
}

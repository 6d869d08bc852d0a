// Package notation converts between the user-facing math notation and the
// engine grammar.
//
// The user notation adds three shorthands on top of the engine grammar:
// root notation "(n)#base" for the n-th root of base, implicit
// multiplication ("2x", "3(x+1)", "x(y+z)") and "." as a multiplication
// sign. Normalizer rewrites them away; Renderer prints engine results back
// in root notation.
package notation

import "unicode"

type tokenKind int

const (
	tokNumber tokenKind = iota // digits only; "3.5" is Number Dot Number
	tokIdent
	tokDot
	tokLParen
	tokRParen
	tokHash
	tokPow // "**"
	tokOp  // + - * / ^ =
	tokOther
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) isBase() bool {
	return t.kind == tokNumber || t.kind == tokIdent || t.kind == tokDot
}

// lex splits whitespace-free text into tokens. It never fails: characters
// outside the notation become tokOther and are left for the engine to
// reject.
func lex(text string) []token {
	rs := []rune(text)
	var toks []token
	for i := 0; i < len(rs); {
		r := rs[i]
		start := i
		switch {
		case isDigit(r):
			for i < len(rs) && isDigit(rs[i]) {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: string(rs[start:i]), pos: start})
			continue
		case isIdentStart(r):
			for i < len(rs) && (isIdentStart(rs[i]) || isDigit(rs[i])) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[start:i]), pos: start})
			continue
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			toks = append(toks, token{kind: tokPow, text: "**", pos: start})
			i += 2
			continue
		}
		kind := tokOther
		switch r {
		case '.':
			kind = tokDot
		case '(':
			kind = tokLParen
		case ')':
			kind = tokRParen
		case '#':
			kind = tokHash
		case '+', '-', '*', '/', '^', '=':
			kind = tokOp
		}
		toks = append(toks, token{kind: kind, text: string(r), pos: start})
		i++
	}
	return toks
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isLetter(r rune) bool { return r < unicode.MaxASCII && unicode.IsLetter(r) }

func isIdentStart(r rune) bool { return r == '_' || isLetter(r) }

// Identifiers returns the identifiers of text in order of first
// appearance.
func Identifiers(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range lex(stripSpace(text)) {
		if t.kind == tokIdent && !seen[t.text] {
			seen[t.text] = true
			out = append(out, t.text)
		}
	}
	return out
}

func stripSpace(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			out = append(out, r)
		}
	}
	return string(out)
}

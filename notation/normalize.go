package notation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNestedRoot is returned for root notation inside root notation,
	// such as (2)#((3)#x) or ((2)#4)#x.
	ErrNestedRoot = errors.New("nested root notation is not supported")

	// ErrDecimalNotSupported is returned in strict decimal mode for any '.'.
	ErrDecimalNotSupported = errors.New("decimal points are not supported")

	// ErrUnknownDecimalMode is returned by ParseDecimalMode.
	ErrUnknownDecimalMode = errors.New("unknown decimal mode")
)

// DecimalMode selects how '.' is treated.
type DecimalMode int

const (
	// DecimalLegacy rewrites every '.' to '*', so "3.5" means 3*5.
	DecimalLegacy DecimalMode = iota
	// DecimalStrict rejects input containing '.'.
	DecimalStrict
)

func (m DecimalMode) String() string {
	if m == DecimalStrict {
		return "strict"
	}
	return "legacy"
}

// ParseDecimalMode maps a configuration value to a DecimalMode. The empty
// string selects the default.
func ParseDecimalMode(s string) (DecimalMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return DecimalLegacy, nil
	case "strict":
		return DecimalStrict, nil
	}
	return DecimalLegacy, fmt.Errorf("%w: %q", ErrUnknownDecimalMode, s)
}

// Options configures a Normalizer.
type Options struct {
	DecimalMode DecimalMode
}

// Normalizer rewrites user notation into the engine grammar. It is
// immutable and safe for concurrent use.
type Normalizer struct {
	opts Options
}

func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// DecimalMode reports the configured decimal handling.
func (n *Normalizer) DecimalMode() DecimalMode { return n.opts.DecimalMode }

// Normalize strips whitespace, rewrites root notation to powers, makes
// implicit multiplication explicit and applies the decimal rule. The
// result is not meant to be normalized again.
//
//	(2)#x     -> x**(1/2)
//	(3)#2x    -> (2*x)**(1/3)
//	2x+3(x+1) -> 2*x+3*(x+1)
//
// Malformed root notation is left in place for the engine parser to
// reject.
func (n *Normalizer) Normalize(text string) (string, error) {
	toks := lex(stripSpace(text))
	if err := checkNestedRoots(toks); err != nil {
		return "", err
	}
	toks = rewriteRoots(toks)
	toks = insertMultiplication(toks)
	for i, t := range toks {
		if t.kind != tokDot {
			continue
		}
		if n.opts.DecimalMode == DecimalStrict {
			return "", fmt.Errorf("%w: '.' at position %d", ErrDecimalNotSupported, t.pos)
		}
		toks[i] = token{kind: tokOp, text: "*", pos: t.pos}
	}
	return join(toks), nil
}

func checkNestedRoots(toks []token) error {
	for i, t := range toks {
		if t.kind != tokHash {
			continue
		}
		nested := false
		if i > 0 && toks[i-1].kind == tokRParen {
			if l := matchBackward(toks, i-1); l >= 0 {
				nested = containsHash(toks[l+1:i-1]) || (l > 0 && toks[l-1].kind == tokHash)
			}
		}
		if i+1 < len(toks) && toks[i+1].kind == tokLParen {
			if r := matchForward(toks, i+1); r >= 0 && containsHash(toks[i+2:r]) {
				nested = true
			}
		}
		if nested {
			return fmt.Errorf("%w: '#' at position %d", ErrNestedRoot, t.pos)
		}
	}
	return nil
}

// rewriteRoots turns "(" index ")" "#" base into base "**" "(1/" index ")".
// The index group may not contain parentheses. The base is either a run of
// number, identifier and '.' tokens or a parenthesized group; a run of more
// than one token gets parentheses so later rewrites keep it together.
func rewriteRoots(toks []token) []token {
	out := make([]token, 0, len(toks))
	for i := 0; i < len(toks); {
		if toks[i].kind != tokLParen {
			out = append(out, toks[i])
			i++
			continue
		}
		k := i + 1
		for k < len(toks) && toks[k].kind != tokLParen && toks[k].kind != tokRParen {
			k++
		}
		if k >= len(toks) || toks[k].kind != tokRParen || k == i+1 ||
			k+2 >= len(toks) || toks[k+1].kind != tokHash {
			out = append(out, toks[i])
			i++
			continue
		}
		index := toks[i+1 : k]
		hash := toks[k+1]
		var base []token
		next := k + 2
		switch {
		case toks[next].isBase():
			for next < len(toks) && toks[next].isBase() {
				next++
			}
			base = toks[k+2 : next]
		case toks[next].kind == tokLParen:
			r := matchForward(toks, next)
			if r < 0 || r == next+1 {
				out = append(out, toks[i])
				i++
				continue
			}
			base = toks[next : r+1]
			next = r + 1
		default:
			out = append(out, toks[i])
			i++
			continue
		}
		out = append(out, group(base, hash.pos)...)
		out = append(out,
			token{kind: tokPow, text: "**", pos: hash.pos},
			token{kind: tokLParen, text: "(", pos: hash.pos},
			token{kind: tokNumber, text: "1", pos: hash.pos},
			token{kind: tokOp, text: "/", pos: hash.pos},
		)
		out = append(out, group(index, hash.pos)...)
		out = append(out, token{kind: tokRParen, text: ")", pos: hash.pos})
		i = next
	}
	return out
}

// group wraps ts in parentheses unless it is a single token or already a
// single parenthesized group.
func group(ts []token, pos int) []token {
	if len(ts) == 1 || (ts[0].kind == tokLParen && matchForward(ts, 0) == len(ts)-1) {
		return ts
	}
	out := make([]token, 0, len(ts)+2)
	out = append(out, token{kind: tokLParen, text: "(", pos: pos})
	out = append(out, ts...)
	return append(out, token{kind: tokRParen, text: ")", pos: pos})
}

// insertMultiplication makes "2x", "2(" and "x(" explicit.
func insertMultiplication(toks []token) []token {
	out := make([]token, 0, len(toks))
	for i, t := range toks {
		out = append(out, t)
		if i+1 >= len(toks) {
			break
		}
		next := toks[i+1]
		implicit := false
		switch t.kind {
		case tokNumber:
			implicit = next.kind == tokLParen || (next.kind == tokIdent && isLetter([]rune(next.text)[0]))
		case tokIdent:
			implicit = next.kind == tokLParen
		}
		if implicit {
			out = append(out, token{kind: tokOp, text: "*", pos: next.pos})
		}
	}
	return out
}

func matchForward(toks []token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func matchBackward(toks []token, closing int) int {
	depth := 0
	for i := closing; i >= 0; i-- {
		switch toks[i].kind {
		case tokRParen:
			depth++
		case tokLParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func containsHash(toks []token) bool {
	for _, t := range toks {
		if t.kind == tokHash {
			return true
		}
	}
	return false
}

func join(toks []token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.text)
	}
	return sb.String()
}

package arith

import (
	"strconv"
	"unicode"
)

// DefaultMaxDepth is the default limit on expression nesting.
const DefaultMaxDepth = 200

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	eofopt   struct{ ws string }
	depthopt int
)

// parsectx holds general data for parsing. It is also a ParseOption.
type parsectx struct {
	// wseof is a string containing the whitespace characters that trigger an
	// EOF token from the lexer.
	wseof string
	// maxdepth is the limit on depth. Zero means DefaultMaxDepth.
	maxdepth int
	// depth is the current number of nested terms.
	depth int
}

// StopOn tells the parser to treat a list of whitespace characters as ending
// the expression. Whitespace does not end an expression where a term is
// expected, e.g. at the beginning of an expression or following an operator
// or bracket.
//
// StopOn overrides the effect of any previous StopOn in the parsing options,
// including in presets. With no arguments, StopOn produces the default
// termination behavior, which is to parse to EOF.
func StopOn(chars ...rune) ParseOption {
	v := make([]rune, 0, len(chars))
	have := func(r rune) bool {
		for _, c := range v {
			if r == c {
				return true
			}
		}
		return false
	}
	for _, r := range chars {
		if !unicode.IsSpace(r) {
			panic("arith: cannot stop on " + strconv.QuoteRune(r))
		}
		if have(r) {
			continue
		}
		v = append(v, r)
	}
	return &eofopt{ws: string(v)}
}

func (o *eofopt) parseOption(p parsectx) parsectx {
	p.wseof = o.ws
	return p
}

// MaxDepth limits how deeply terms may nest, counting brackets, unary
// operators, and operands of higher-precedence operators. Inputs exceeding the
// limit are syntax errors. Values below 1 select DefaultMaxDepth.
func MaxDepth(n int) ParseOption {
	return depthopt(n)
}

func (o depthopt) parseOption(p parsectx) parsectx {
	p.maxdepth = int(o)
	return p
}

// ParsingPreset creates a parsing preset that bundles options for many calls
// to Parse. A preset panics when it would change any option from the default,
// but it is safe to apply other options after a preset.
func ParsingPreset(opts ...ParseOption) ParseOption {
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	return &p
}

func (o *parsectx) parseOption(p parsectx) parsectx {
	if p.wseof != "" || p.maxdepth != 0 {
		panic("arith: preset applied to non-default parse config")
	}
	p.wseof = o.wseof
	p.maxdepth = o.maxdepth
	return p
}

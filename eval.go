package arith

import (
	"io"
	"math/big"
	"strconv"
	"strings"
)

// DefaultPrec is the default precision of float calculations, matching the
// significand of an IEEE 754 double.
const DefaultPrec = 53

// DefaultMaxBits is the default magnitude limit. See MaxBits.
const DefaultMaxBits = 1 << 20

// Context is a context for evaluating expressions. It caches the values of
// number literals at its precision. It is not safe to use a Context
// concurrently.
type Context struct {
	stack   []Number
	ints    map[string]*big.Int
	floats  map[string]*big.Float
	prec    uint
	maxbits uint
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	precopt uint
	bitsopt uint
)

func (precopt) ctxOption() {}
func (bitsopt) ctxOption() {}

// Prec sets the precision of float calculations in bits. Zero selects
// DefaultPrec.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// MaxBits sets the magnitude limit of calculations. Integer results longer
// than n bits and float results of magnitude 2**n or more are overflow
// errors; float results below 2**-n flush to zero. Zero selects
// DefaultMaxBits.
func MaxBits(n uint) ContextOption {
	return bitsopt(n)
}

// NewContext creates a new evaluation context.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{
		ints:    make(map[string]*big.Int),
		floats:  make(map[string]*big.Float),
		prec:    DefaultPrec,
		maxbits: DefaultMaxBits,
	}
	return ctx.Clone(opts...)
}

// Eval evaluates an expression and returns the result. Evaluation has no
// effect on ctx other than caching literals, so evaluating the same
// expression again gives an equal result.
func (ctx *Context) Eval(e *Expr) (Number, error) {
	ctx.stack = ctx.stack[:0]
	if err := e.n.eval(ctx); err != nil {
		ctx.stack = ctx.stack[:0]
		return Number{}, err
	}
	if len(ctx.stack) != 1 {
		panic("arith: inconsistent stack: " + strconv.Itoa(len(ctx.stack)) + " items (bad AST?)")
	}
	return ctx.pop(), nil
}

// Prec returns the precision to which floats are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// MaxBits returns the context's magnitude limit.
func (ctx *Context) MaxBits() uint {
	return ctx.maxbits
}

// Clone creates a copy of a context and applies options to it.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		stack:   make([]Number, 0, cap(ctx.stack)),
		ints:    make(map[string]*big.Int, len(ctx.ints)),
		floats:  make(map[string]*big.Float, len(ctx.floats)),
		prec:    ctx.prec,
		maxbits: ctx.maxbits,
	}
	for _, opt := range opts {
		switch opt := opt.(type) {
		case nil:
			continue
		case precopt:
			n.prec = uint(opt)
			if n.prec == 0 {
				n.prec = DefaultPrec
			}
			if n.prec > big.MaxPrec {
				n.prec = big.MaxPrec
			}
		case bitsopt:
			n.maxbits = uint(opt)
			if n.maxbits == 0 {
				n.maxbits = DefaultMaxBits
			}
		default:
			panic("arith: unknown option type")
		}
	}
	// Cached values are only valid for the same settings. Values are never
	// modified, so sharing pointers is fine.
	if n.maxbits == ctx.maxbits {
		for k, v := range ctx.ints {
			n.ints[k] = v
		}
		if n.prec == ctx.prec {
			for k, v := range ctx.floats {
				n.floats[k] = v
			}
		}
	}
	return &n
}

func (ctx *Context) push(x Number) {
	ctx.stack = append(ctx.stack, x)
}

// pop removes the top from the stack and returns it.
func (ctx *Context) pop() Number {
	r := ctx.stack[len(ctx.stack)-1]
	ctx.stack[len(ctx.stack)-1] = Number{}
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return r
}

// newFloat creates a zero float at the context's precision.
func (ctx *Context) newFloat() *big.Float {
	return new(big.Float).SetPrec(ctx.prec)
}

// float gets x as a float at the context's precision. The result must not be
// modified.
func (ctx *Context) float(x Number) *big.Float {
	if x.f != nil {
		return x.f
	}
	return ctx.newFloat().SetInt(x.i)
}

func (ctx *Context) intResult(z *big.Int, op string) (Number, error) {
	if uint(z.BitLen()) > ctx.maxbits {
		return Number{}, &OverflowError{Op: op}
	}
	return IntNumber(z), nil
}

func (ctx *Context) floatResult(z *big.Float, op string) (Number, error) {
	if z.IsInf() {
		return Number{}, &OverflowError{Op: op}
	}
	if z.Sign() != 0 {
		exp := z.MantExp(nil)
		if exp > int(ctx.maxbits) {
			return Number{}, &OverflowError{Op: op}
		}
		if exp < -int(ctx.maxbits) {
			neg := z.Signbit()
			z.SetInt64(0)
			if neg {
				z.Neg(z)
			}
		}
	}
	return FloatNumber(z), nil
}

// num gets a possibly cached number from its literal text.
func (ctx *Context) num(s string) (Number, error) {
	if literalIsFloat(s) {
		if r := ctx.floats[s]; r != nil {
			return FloatNumber(r), nil
		}
		r, err := ctx.parseFloat(strings.ReplaceAll(s, "_", ""))
		if err != nil {
			return Number{}, err
		}
		ctx.floats[s] = r.f
		return r, nil
	}
	if r := ctx.ints[s]; r != nil {
		return IntNumber(r), nil
	}
	t := strings.ReplaceAll(s, "_", "")
	base := 10
	if prefixed(t) {
		base = 0
	}
	r, ok := new(big.Int).SetString(t, base)
	if !ok {
		panic("arith: invalid number: " + s)
	}
	x, err := ctx.intResult(r, "integer literal")
	if err != nil {
		return Number{}, err
	}
	ctx.ints[s] = r
	return x, nil
}

func (ctx *Context) parseFloat(s string) (Number, error) {
	if ctx.prec == 53 {
		// strconv is correctly rounded. Subnormal doubles have fewer bits, so
		// only normal results are exact at this precision.
		f, err := strconv.ParseFloat(s, 64)
		if err == nil && (f >= 0x1p-1022 || f <= -0x1p-1022) {
			return ctx.floatResult(ctx.newFloat().SetFloat64(f), "float literal")
		}
	}
	r, _, err := ctx.newFloat().Parse(s, 10)
	switch {
	case err == nil: // do nothing
	case err.Error() == "exponent overflow",
		strings.HasSuffix(err.Error(), ": value out of range"):
		// There isn't realistically any better way to detect this error.
		if strings.Contains(strings.ToLower(s), "e-") {
			// Too small rather than too large.
			return FloatNumber(ctx.newFloat()), nil
		}
		return Number{}, &OverflowError{Op: "float literal"}
	default:
		panic("arith: invalid number: " + s + " (" + err.Error() + ")")
	}
	return ctx.floatResult(r, "float literal")
}

// eval pushes the node's value to the context's stack.
func (n *node) eval(ctx *Context) error {
	switch {
	case n.kind == nodeNum:
		v, err := ctx.num(n.name)
		if err != nil {
			return setpos(err, n.pos)
		}
		ctx.push(v)
	case n.kind == nodePos:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
	case n.kind == nodeNeg:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		ctx.push(neg(ctx.pop()))
	case n.kind.binary():
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.pop()
		v, err := binops[n.kind](ctx, l, r)
		if err != nil {
			return setpos(err, n.pos)
		}
		ctx.push(v)
	default:
		return &UnsupportedError{Col: n.pos, Construct: "expression node " + n.kind.String()}
	}
	return nil
}

// Eval is a shortcut to parse an expression and return its result.
func Eval(src io.RuneScanner, opts ...ContextOption) (Number, error) {
	a, err := Parse(src)
	if err != nil {
		return Number{}, err
	}
	return NewContext(opts...).Eval(a)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...ContextOption) (Number, error) {
	return Eval(strings.NewReader(src), opts...)
}

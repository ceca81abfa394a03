package arith

import (
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// binaryOp computes the value of a binary operator. Errors do not need
// positions; the evaluator fills them in.
type binaryOp func(ctx *Context, l, r Number) (Number, error)

var binops = [nodeKinds]binaryOp{
	nodeAdd:      add,
	nodeSub:      sub,
	nodeMul:      mul,
	nodeDiv:      quo,
	nodeFloorDiv: floordiv,
	nodeMod:      mod,
	nodePow:      pow,
}

var (
	one  = big.NewInt(1)
	fone = big.NewFloat(1)
)

func add(ctx *Context, l, r Number) (Number, error) {
	if l.IsInt() && r.IsInt() {
		return ctx.intResult(new(big.Int).Add(l.i, r.i), "addition")
	}
	return ctx.floatResult(ctx.newFloat().Add(ctx.float(l), ctx.float(r)), "addition")
}

func sub(ctx *Context, l, r Number) (Number, error) {
	if l.IsInt() && r.IsInt() {
		return ctx.intResult(new(big.Int).Sub(l.i, r.i), "subtraction")
	}
	return ctx.floatResult(ctx.newFloat().Sub(ctx.float(l), ctx.float(r)), "subtraction")
}

func mul(ctx *Context, l, r Number) (Number, error) {
	if l.IsInt() && r.IsInt() {
		return ctx.intResult(new(big.Int).Mul(l.i, r.i), "multiplication")
	}
	return ctx.floatResult(ctx.newFloat().Mul(ctx.float(l), ctx.float(r)), "multiplication")
}

// quo is true division. The result is always a float, correctly rounded even
// when both operands are integers.
func quo(ctx *Context, l, r Number) (Number, error) {
	if r.isZero() {
		return Number{}, &DivisionByZeroError{Op: "division"}
	}
	z := ctx.newFloat()
	if l.IsInt() && r.IsInt() {
		z.SetRat(new(big.Rat).SetFrac(l.i, r.i))
		if l.i.Sign() == 0 && r.i.Sign() < 0 {
			z.Neg(z)
		}
	} else {
		z.Quo(ctx.float(l), ctx.float(r))
	}
	return ctx.floatResult(z, "division")
}

// floordiv rounds the quotient toward negative infinity.
func floordiv(ctx *Context, l, r Number) (Number, error) {
	if r.isZero() {
		return Number{}, &DivisionByZeroError{Op: "floor division"}
	}
	if l.IsInt() && r.IsInt() {
		q, _ := floorDivModInt(l.i, r.i)
		return ctx.intResult(q, "floor division")
	}
	x, y := ctx.float(l), ctx.float(r)
	q, _, err := ctx.floorDivModFloat(x, y, "floor division")
	if err != nil {
		return Number{}, err
	}
	z := ctx.newFloat().SetInt(q)
	if q.Sign() == 0 && x.Signbit() != y.Signbit() {
		z.Neg(z)
	}
	return ctx.floatResult(z, "floor division")
}

// mod is the remainder of floor division, so it has the sign of r.
func mod(ctx *Context, l, r Number) (Number, error) {
	if r.isZero() {
		return Number{}, &DivisionByZeroError{Op: "modulo"}
	}
	if l.IsInt() && r.IsInt() {
		_, m := floorDivModInt(l.i, r.i)
		return ctx.intResult(m, "modulo")
	}
	x, y := ctx.float(l), ctx.float(r)
	_, m, err := ctx.floorDivModFloat(x, y, "modulo")
	if err != nil {
		return Number{}, err
	}
	z := ctx.newFloat().SetRat(m)
	if m.Sign() == 0 && y.Signbit() {
		z.Neg(z)
	}
	return ctx.floatResult(z, "modulo")
}

// floorDivModInt computes q = floor(x/y) and m = x - q*y. y must be nonzero.
func floorDivModInt(x, y *big.Int) (q, m *big.Int) {
	q, m = new(big.Int).QuoRem(x, y, new(big.Int))
	if m.Sign() != 0 && m.Sign() != y.Sign() {
		q.Sub(q, one)
		m.Add(m, y)
	}
	return q, m
}

// floorDivModFloat computes q = floor(x/y) and m = x - q*y exactly. y must be
// nonzero and finite.
func (ctx *Context) floorDivModFloat(x, y *big.Float, op string) (*big.Int, *big.Rat, error) {
	if x.Sign() != 0 && x.MantExp(nil)-y.MantExp(nil) > int(ctx.maxbits) {
		return nil, nil, &OverflowError{Op: op}
	}
	xr, _ := x.Rat(nil)
	yr, _ := y.Rat(nil)
	t := new(big.Rat).Quo(xr, yr)
	q, rem := new(big.Int).QuoRem(t.Num(), t.Denom(), new(big.Int))
	if rem.Sign() < 0 {
		q.Sub(q, one)
	}
	m := new(big.Rat).SetInt(q)
	m.Mul(m, yr)
	m.Sub(xr, m)
	return q, m, nil
}

// pow is exponentiation. Integers raised to non-negative integers stay exact;
// everything else is computed in floating point.
func pow(ctx *Context, l, r Number) (Number, error) {
	if l.IsInt() && r.IsInt() {
		if r.i.Sign() >= 0 {
			return ctx.intPow(l.i, r.i)
		}
		if l.i.Sign() == 0 {
			return Number{}, &DivisionByZeroError{Op: "power"}
		}
	}
	return ctx.floatPow(ctx.float(l), ctx.float(r))
}

// intPow computes x**y for y >= 0, refusing before any work when the result
// is certain to exceed the context's limit.
func (ctx *Context) intPow(x, y *big.Int) (Number, error) {
	switch {
	case y.Sign() == 0:
		return IntNumber(big.NewInt(1)), nil
	case x.Sign() == 0:
		return IntNumber(new(big.Int)), nil
	case x.CmpAbs(one) == 0:
		if x.Sign() < 0 && y.Bit(0) == 1 {
			return IntNumber(big.NewInt(-1)), nil
		}
		return IntNumber(big.NewInt(1)), nil
	}
	if !y.IsUint64() {
		return Number{}, &OverflowError{Op: "power"}
	}
	// |x| >= 2**(b-1), so the result has at least (b-1)*e + 1 bits.
	e := y.Uint64()
	b := uint64(x.BitLen()) - 1
	if e > uint64(ctx.maxbits)/b {
		return Number{}, &OverflowError{Op: "power"}
	}
	return ctx.intResult(new(big.Int).Exp(x, y, nil), "power")
}

// floatPow computes x**y in floating point. A negative base requires an
// integral exponent, since otherwise the result is complex.
func (ctx *Context) floatPow(x, y *big.Float) (Number, error) {
	z := ctx.newFloat()
	switch {
	case y.Sign() == 0:
		return FloatNumber(z.SetInt64(1)), nil
	case x.Sign() == 0:
		if y.Sign() < 0 {
			return Number{}, &DivisionByZeroError{Op: "power"}
		}
		if x.Signbit() && y.IsInt() && odd(y) {
			z.Neg(z)
		}
		return FloatNumber(z), nil
	}
	negate := false
	if x.Signbit() {
		if !y.IsInt() {
			return Number{}, &DomainError{X: new(big.Float).Copy(x), Func: "**"}
		}
		negate = odd(y)
		x = new(big.Float).Abs(x)
	}
	if x.Cmp(fone) == 0 {
		z.SetInt64(1)
		if negate {
			z.Neg(z)
		}
		return FloatNumber(z), nil
	}
	// Estimate log2 of the result so that huge results fail fast and tiny
	// ones flush to zero without asking bigfloat for them.
	var mant big.Float
	exp := x.MantExp(&mant)
	m, _ := mant.Float64()
	yf, _ := y.Float64()
	est := yf * (float64(exp) + math.Log2(m))
	lim := float64(ctx.maxbits)
	switch {
	case est > lim:
		return Number{}, &OverflowError{Op: "power"}
	case est < -lim:
		if negate {
			z.Neg(z)
		}
		return FloatNumber(z), nil
	}
	if y.IsInt() {
		if r, ok := ctx.exactPow(x, y); ok {
			if negate {
				r.Neg(r)
			}
			return ctx.floatResult(r, "power")
		}
	}
	// x is positive and finite here, so Pow cannot panic with ErrNaN.
	bigfloat.Pow(z, x, y)
	if negate {
		z.Neg(z)
	}
	return ctx.floatResult(z, "power")
}

// exactPow computes x**y correctly rounded for positive x and integral y by
// raising the mantissa of x as an integer. It declines when the intermediate
// integer would be longer than the context's magnitude limit.
func (ctx *Context) exactPow(x, y *big.Float) (*big.Float, bool) {
	n, acc := y.Int64()
	if acc != big.Exact || n == math.MinInt64 {
		return nil, false
	}
	recip := n < 0
	if recip {
		n = -n
	}
	// x = mi * 2**e with mi an integer.
	var m big.Float
	e := x.MantExp(&m)
	p := x.MinPrec()
	mi, _ := m.SetMantExp(&m, int(p)).Int(nil)
	e -= int(p)
	if uint64(n) > uint64(ctx.maxbits)/uint64(mi.BitLen()) {
		return nil, false
	}
	mi.Exp(mi, big.NewInt(n), nil)
	z := ctx.newFloat()
	shift := e * int(n)
	if recip {
		z.SetRat(new(big.Rat).SetFrac(one, mi))
		shift = -shift
	} else {
		z.SetInt(mi)
	}
	return z.SetMantExp(z, shift), true
}

// odd reports whether an integral float is odd.
func odd(y *big.Float) bool {
	if y.MantExp(nil) > int(y.Prec()) {
		// All mantissa bits are above the ones place.
		return false
	}
	i, _ := y.Int(nil)
	return i.Bit(0) == 1
}

func neg(x Number) Number {
	if x.IsInt() {
		return IntNumber(new(big.Int).Neg(x.i))
	}
	return FloatNumber(new(big.Float).Neg(x.f))
}

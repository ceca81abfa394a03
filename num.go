package arith

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// Number is the result of evaluating an expression: either an integer of
// arbitrary size or a binary floating-point value. The zero Number is
// invalid.
type Number struct {
	i *big.Int
	f *big.Float
}

// IntNumber creates an integer Number. The Number takes ownership of x.
func IntNumber(x *big.Int) Number {
	return Number{i: x}
}

// FloatNumber creates a floating-point Number. The Number takes ownership
// of x.
func FloatNumber(x *big.Float) Number {
	return Number{f: x}
}

// IsInt reports whether x is an integer.
func (x Number) IsInt() bool {
	return x.i != nil
}

// IsFloat reports whether x is a floating-point value.
func (x Number) IsFloat() bool {
	return x.f != nil
}

// Int returns a copy of x's value if it is an integer, or else nil.
func (x Number) Int() *big.Int {
	if x.i == nil {
		return nil
	}
	return new(big.Int).Set(x.i)
}

// Float returns a copy of x's value as a float. Integers are converted
// exactly.
func (x Number) Float() *big.Float {
	switch {
	case x.f != nil:
		return new(big.Float).Copy(x.f)
	case x.i != nil:
		return new(big.Float).SetInt(x.i)
	default:
		return nil
	}
}

// Float64 returns the float64 value nearest to x and the accuracy of the
// conversion.
func (x Number) Float64() (float64, big.Accuracy) {
	f := x.Float()
	if f == nil {
		return 0, big.Exact
	}
	return f.Float64()
}

// Sign returns -1, 0, or +1 according to the sign of x.
func (x Number) Sign() int {
	switch {
	case x.f != nil:
		return x.f.Sign()
	case x.i != nil:
		return x.i.Sign()
	default:
		return 0
	}
}

// Equal reports whether x and y are the same kind of number with the same
// value. Signed zeros compare equal.
func (x Number) Equal(y Number) bool {
	switch {
	case x.i != nil && y.i != nil:
		return x.i.Cmp(y.i) == 0
	case x.f != nil && y.f != nil:
		return x.f.Cmp(y.f) == 0
	default:
		return x.i == nil && x.f == nil && y.i == nil && y.f == nil
	}
}

// String formats x the way Python's repr does: integers in decimal, floats
// with the fewest digits that identify the value at its precision, always
// with a decimal point or exponent.
func (x Number) String() string {
	switch {
	case x.i != nil:
		return x.i.String()
	case x.f != nil:
		return reprFloat(x.f)
	default:
		return "<nil>"
	}
}

// Format implements fmt.Formatter. The verbs v and s use String. Integers
// support the verbs of big.Int and floats support the verbs of big.Float;
// other verbs convert between kinds, with d truncating a float.
func (x Number) Format(s fmt.State, verb rune) {
	switch {
	case x.i == nil && x.f == nil:
		io.WriteString(s, "<nil>")
	case verb == 'v' || verb == 's':
		fmt.Fprintf(s, fmt.FormatString(s, 's'), x.String())
	case x.i != nil:
		switch verb {
		case 'b', 'o', 'O', 'd', 'x', 'X':
			x.i.Format(s, verb)
		default:
			x.Float().Format(s, verb)
		}
	default:
		if verb == 'd' {
			i, _ := x.f.Int(nil)
			i.Format(s, verb)
			return
		}
		x.f.Format(s, verb)
	}
}

func (x Number) isZero() bool {
	return x.Sign() == 0
}

// reprFloat formats f like Python's float repr: positional notation for
// decimal exponents in [-4, 16), scientific otherwise.
func reprFloat(f *big.Float) string {
	switch {
	case f.IsInf():
		if f.Signbit() {
			return "-inf"
		}
		return "inf"
	case f.Sign() == 0:
		if f.Signbit() {
			return "-0.0"
		}
		return "0.0"
	}
	s := f.Text('e', -1)
	k := strings.IndexByte(s, 'e')
	exp, err := strconv.Atoi(s[k+1:])
	if err != nil {
		panic("arith: bad float text " + s)
	}
	if exp < -4 || exp >= 16 {
		return s
	}
	mant := s[:k]
	var b strings.Builder
	if mant[0] == '-' {
		b.WriteByte('-')
		mant = mant[1:]
	}
	digits := strings.Replace(mant, ".", "", 1)
	switch {
	case exp < 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -exp-1))
		b.WriteString(digits)
	case len(digits) <= exp+1:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", exp+1-len(digits)))
		b.WriteString(".0")
	default:
		b.WriteString(digits[:exp+1])
		b.WriteByte('.')
		b.WriteString(digits[exp+1:])
	}
	return b.String()
}

// literalIsFloat reports whether a valid number literal denotes a float.
func literalIsFloat(s string) bool {
	return !prefixed(s) && strings.ContainsAny(s, ".eE")
}

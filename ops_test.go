package arith

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorDivModInt(t *testing.T) {
	cases := []struct {
		x, y int64
		q, m int64
	}{
		{7, 2, 3, 1},
		{-7, 2, -4, 1},
		{7, -2, -4, -1},
		{-7, -2, 3, -1},
		{6, 3, 2, 0},
		{-6, 3, -2, 0},
		{0, -5, 0, 0},
	}
	for _, c := range cases {
		q, m := floorDivModInt(big.NewInt(c.x), big.NewInt(c.y))
		assert.Equal(t, c.q, q.Int64(), "%d // %d", c.x, c.y)
		assert.Equal(t, c.m, m.Int64(), "%d %% %d", c.x, c.y)
		// x == q*y + m
		r := new(big.Int).Mul(q, big.NewInt(c.y))
		r.Add(r, m)
		assert.Equal(t, c.x, r.Int64())
	}
}

func TestFloorDivModFloat(t *testing.T) {
	cases := []struct {
		x, y float64
		q    int64
		m    float64
	}{
		{7.5, 2, 3, 1.5},
		{-7.5, 2, -4, 0.5},
		{7.5, -2, -4, -0.5},
		{-7.5, -2, 3, -1.5},
		{0.3, 0.1, 2, 0.09999999999999998},
		{1, 0.1, 9, 0.09999999999999995},
	}
	ctx := NewContext()
	for _, c := range cases {
		q, m, err := ctx.floorDivModFloat(big.NewFloat(c.x), big.NewFloat(c.y), "floor division")
		require.NoError(t, err)
		assert.Equal(t, c.q, q.Int64(), "%g // %g", c.x, c.y)
		f, _ := m.Float64()
		assert.Equal(t, c.m, f, "%g %% %g", c.x, c.y)
	}
}

func TestFloorDivModFloatOverflow(t *testing.T) {
	ctx := NewContext(MaxBits(64))
	_, _, err := ctx.floorDivModFloat(big.NewFloat(1e30), big.NewFloat(1e-30), "floor division")
	var oe *OverflowError
	require.True(t, errors.As(err, &oe), "want *OverflowError, got %v", err)
	assert.Equal(t, "floor division", oe.Op)
}

func TestOdd(t *testing.T) {
	cases := []struct {
		y    *big.Float
		want bool
	}{
		{big.NewFloat(0), false},
		{big.NewFloat(1), true},
		{big.NewFloat(2), false},
		{big.NewFloat(-3), true},
		{big.NewFloat(1e300), false},
		{new(big.Float).SetInt64(1<<53 + 1), true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, odd(c.y), "odd(%v)", c.y)
	}
}

func TestIntPowLimit(t *testing.T) {
	ctx := NewContext(MaxBits(100))
	cases := []struct {
		x, y int64
		ok   bool
	}{
		{2, 99, true},
		{2, 100, false},
		{3, 63, true},
		{3, 64, false},
		{-1, 1 << 40, true},
		{1, 1 << 40, true},
		{0, 1 << 40, true},
		{7, 0, true},
	}
	for _, c := range cases {
		r, err := ctx.intPow(big.NewInt(c.x), big.NewInt(c.y))
		if c.ok {
			assert.NoError(t, err, "%d ** %d", c.x, c.y)
			want := new(big.Int).Exp(big.NewInt(c.x), big.NewInt(c.y), nil)
			if c.y < 1<<20 {
				assert.Equal(t, want.String(), r.String(), "%d ** %d", c.x, c.y)
			}
			continue
		}
		assert.True(t, errors.Is(err, ErrOverflow), "%d ** %d: %v", c.x, c.y, err)
	}
}

func TestExactPow(t *testing.T) {
	ctx := NewContext()
	cases := []struct {
		x, y float64
		want float64
	}{
		{2, 10, 1024},
		{2, -1, 0.5},
		{10, -2, 0.01},
		{0.1, 2, 0.010000000000000002},
		{1.5, 3, 3.375},
		{3, -1, 1.0 / 3},
		{0.5, -3, 8},
	}
	for _, c := range cases {
		r, ok := ctx.exactPow(big.NewFloat(c.x), big.NewFloat(c.y))
		require.True(t, ok, "%g ** %g", c.x, c.y)
		f, acc := r.Float64()
		assert.Equal(t, big.Exact, acc, "%g ** %g", c.x, c.y)
		assert.Equal(t, c.want, f, "%g ** %g", c.x, c.y)
	}

	// Mantissas that would grow past the limit are left to bigfloat.
	_, ok := ctx.exactPow(big.NewFloat(1.0000001), big.NewFloat(1e9))
	assert.False(t, ok)
	_, ok = ctx.exactPow(big.NewFloat(2), big.NewFloat(1e30))
	assert.False(t, ok)
}

func TestBinopsCoverBinaryKinds(t *testing.T) {
	for k := nodeNone; k < nodeKinds; k++ {
		if k.binary() {
			assert.NotNil(t, binops[k], "no function for %v", k)
		} else {
			assert.Nil(t, binops[k], "function for non-binary %v", k)
		}
	}
}

package dual_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	gdual "gonum.org/v1/gonum/num/dual"
	ghyperdual "gonum.org/v1/gonum/num/hyperdual"

	"github.com/wengert/wengert/dual"
	"github.com/wengert/wengert/num"
	"github.com/wengert/wengert/tape"
)

func TestDualArithmetic(t *testing.T) {
	x := dual.New(num.Real(2), num.Real(1))
	y := dual.New(num.Real(5), num.Real(2))

	require.Equal(t, dual.New(num.Real(7), num.Real(3)), x.Add(y))
	require.Equal(t, dual.New(num.Real(-3), num.Real(-1)), x.Sub(y))
	require.Equal(t, dual.New(num.Real(10), num.Real(9)), x.Mul(y))
	require.Equal(t, dual.New(num.Real(-2), num.Real(-1)), x.Neg())

	// (x/y)' = (x' - (x/y) y')/y at x=6+1ε, y=2+0.5ε.
	q := dual.New(num.Real(6), num.Real(1)).Div(dual.New(num.Real(2), num.Real(0.5)))
	require.Equal(t, dual.New(num.Real(3), num.Real(-0.25)), q)

	sq := dual.Var(num.Real(3))
	require.Equal(t, dual.New(num.Real(9), num.Real(6)), sq.Mul(sq))

	require.True(t, dual.Dual[num.Real]{}.IsZero())
	require.False(t, dual.Const(num.Real(0.5)).IsZero())
	require.False(t, dual.Var(num.Real(0)).IsZero())
	require.True(t, x.Equal(x))
	require.False(t, x.Equal(y))
}

func TestDualElementary(t *testing.T) {
	type d = dual.Dual[num.Real]
	cases := []struct {
		name      string
		f         func(d) d
		x         float64
		wantDeriv float64
	}{
		{"Exp2", d.Exp2, 0.8, math.Exp2(0.8) * math.Ln2},
		{"Exp10", d.Exp10, 0.8, math.Pow(10, 0.8) * math.Ln10},
		{"Log2", d.Log2, 2.4, 1 / (2.4 * math.Ln2)},
		{"Log10", d.Log10, 2.4, 1 / (2.4 * math.Ln10)},
		{"Cbrt", d.Cbrt, 2.2, 1 / (3 * math.Cbrt(2.2) * math.Cbrt(2.2))},
		{"Tan", d.Tan, 0.6, 1 + math.Tan(0.6)*math.Tan(0.6)},
		{"Asin", d.Asin, 0.4, 1 / math.Sqrt(1-0.16)},
		{"Acos", d.Acos, 0.4, -1 / math.Sqrt(1-0.16)},
		{"Atan", d.Atan, 1.2, 1 / (1 + 1.44)},
		{"Sinh", d.Sinh, 0.9, math.Cosh(0.9)},
		{"Cosh", d.Cosh, 0.9, math.Sinh(0.9)},
		{"Tanh", d.Tanh, 0.9, 1 - math.Tanh(0.9)*math.Tanh(0.9)},
		{"Asinh", d.Asinh, 1.1, 1 / math.Sqrt(1.1*1.1+1)},
		{"Acosh", d.Acosh, 1.8, 1 / math.Sqrt(1.8*1.8-1)},
		{"Atanh", d.Atanh, 0.5, 1 / (1 - 0.25)},
	}
	for _, c := range cases {
		got := c.f(dual.Var(num.Real(c.x)))
		require.InDeltaf(t, c.wantDeriv, float64(got.Derivative()), 1e-12, "%s'(%v)", c.name, c.x)
	}
}

func TestDualAgreesWithGonum(t *testing.T) {
	for _, v := range []float64{0.3, 0.9, 1.7} {
		x := dual.New(num.Real(v), num.Real(0.7))
		ref := gdual.Number{Real: v, Emag: 0.7}

		requireDualEqual(t, gdual.Exp(ref), x.Exp())
		requireDualEqual(t, gdual.Log(ref), x.Log())
		requireDualEqual(t, gdual.Sin(ref), x.Sin())
		requireDualEqual(t, gdual.Cos(ref), x.Cos())
		requireDualEqual(t, gdual.Sqrt(ref), x.Sqrt())
		requireDualEqual(t, gdual.PowReal(ref, 2.5), x.Pow(dual.Const(num.Real(2.5))))
		requireDualEqual(t, gdual.Inv(ref), dual.Const(num.Real(1)).Div(x))
		requireDualEqual(t, gdual.Mul(ref, gdual.Sin(ref)), x.Mul(x.Sin()))
	}
}

func requireDualEqual(t *testing.T, want gdual.Number, got dual.Dual[num.Real]) {
	t.Helper()
	require.InDelta(t, want.Real, float64(got.Value()), 1e-13)
	require.InDelta(t, want.Emag, float64(got.Derivative()), 1e-13)
}

func TestDualPowConstantExponent(t *testing.T) {
	// A constant integer exponent over a negative base must not touch
	// ln(x): (-2)^3 = -8 with derivative 3*(-2)^2 = 12.
	p := dual.Var(num.Real(-2)).Pow(dual.Const(num.Real(3)))
	require.False(t, p.IsNaN())
	require.Equal(t, num.Real(-8), p.Value())
	require.Equal(t, num.Real(12), p.Derivative())
}

func TestDualRealOnly(t *testing.T) {
	t.Run("Mod", func(t *testing.T) {
		x := dual.New(num.Real(7.3), num.Real(0.4))
		y := dual.New(num.Real(2.1), num.Real(0.3))
		m := x.Mod(y)
		require.Equal(t, num.Real(math.Mod(7.3, 2.1)), m.Value())
		require.InDelta(t, 0.4-3*0.3, float64(m.Derivative()), 1e-15)
	})
	t.Run("Atan2", func(t *testing.T) {
		o := dual.New(num.Real(1.5), num.Real(0.2))
		a := dual.New(num.Real(2.5), num.Real(-0.4))
		r := o.Atan2(a)
		require.Equal(t, num.Real(math.Atan2(1.5, 2.5)), r.Value())
		want := (2.5*0.2 - 1.5*(-0.4)) / (2.5*2.5 + 1.5*1.5)
		require.InDelta(t, want, float64(r.Derivative()), 1e-15)
	})
	t.Run("Trunc", func(t *testing.T) {
		r := dual.Var(num.Real(-3.7)).Trunc()
		require.Equal(t, num.Real(-3), r.Value())
		require.Equal(t, num.Real(0), r.Derivative())
	})
	t.Run("complex panics", func(t *testing.T) {
		z := dual.Var(num.NewComplex(1, 2))
		require.Panics(t, func() { z.Mod(z) })
		require.Panics(t, func() { z.Atan2(z) })
		require.Panics(t, func() { z.Trunc() })
	})
}

func TestDualComplexHolomorphic(t *testing.T) {
	// d(z^2)/dz = 2z along the seeded direction.
	z := dual.Var(num.NewComplex(1, 1))
	sq := z.Mul(z)
	require.Equal(t, num.NewComplex(0, 2), sq.Value())
	require.Equal(t, num.NewComplex(2, 2), sq.Derivative())
}

func TestHyperDualSecondDerivatives(t *testing.T) {
	type h = dual.HyperDual[num.Real]
	cases := []struct {
		name       string
		f          func(h) h
		x          float64
		wantFirst  float64
		wantSecond float64
	}{
		{"Exp", h.Exp, 0.8, math.Exp(0.8), math.Exp(0.8)},
		{"Exp2", h.Exp2, 0.8, math.Exp2(0.8) * math.Ln2, math.Exp2(0.8) * math.Ln2 * math.Ln2},
		{"Exp10", h.Exp10, 0.8, math.Pow(10, 0.8) * math.Ln10, math.Pow(10, 0.8) * math.Ln10 * math.Ln10},
		{"Log", h.Log, 2.4, 1 / 2.4, -1 / (2.4 * 2.4)},
		{"Log2", h.Log2, 2.4, 1 / (2.4 * math.Ln2), -1 / (2.4 * 2.4 * math.Ln2)},
		{"Log10", h.Log10, 2.4, 1 / (2.4 * math.Ln10), -1 / (2.4 * 2.4 * math.Ln10)},
		{"Sqrt", h.Sqrt, 1.9, 0.5 / math.Sqrt(1.9), -0.25 / math.Pow(1.9, 1.5)},
		{"Cbrt", h.Cbrt, 2.2, 1 / (3 * math.Pow(2.2, 2.0/3)), -2.0 / (9 * math.Pow(2.2, 5.0/3))},
		{"Sin", h.Sin, 0.6, math.Cos(0.6), -math.Sin(0.6)},
		{"Cos", h.Cos, 0.6, -math.Sin(0.6), -math.Cos(0.6)},
		{"Tan", h.Tan, 0.6, 1 + math.Tan(0.6)*math.Tan(0.6), 2 * math.Tan(0.6) * (1 + math.Tan(0.6)*math.Tan(0.6))},
		{"Asin", h.Asin, 0.4, 1 / math.Sqrt(0.84), 0.4 / math.Pow(0.84, 1.5)},
		{"Acos", h.Acos, 0.4, -1 / math.Sqrt(0.84), -0.4 / math.Pow(0.84, 1.5)},
		{"Atan", h.Atan, 1.2, 1 / 2.44, -2.4 / (2.44 * 2.44)},
		{"Sinh", h.Sinh, 0.9, math.Cosh(0.9), math.Sinh(0.9)},
		{"Cosh", h.Cosh, 0.9, math.Sinh(0.9), math.Cosh(0.9)},
		{"Tanh", h.Tanh, 0.9, 1 - math.Tanh(0.9)*math.Tanh(0.9), -2 * math.Tanh(0.9) * (1 - math.Tanh(0.9)*math.Tanh(0.9))},
		{"Asinh", h.Asinh, 1.1, 1 / math.Sqrt(2.21), -1.1 / math.Pow(2.21, 1.5)},
		{"Acosh", h.Acosh, 1.8, 1 / math.Sqrt(2.24), -1.8 / math.Pow(2.24, 1.5)},
		{"Atanh", h.Atanh, 0.5, 1 / 0.75, 2 * 0.5 / (0.75 * 0.75)},
	}
	for _, c := range cases {
		got := c.f(dual.HyperVar(num.Real(c.x)))
		require.InDeltaf(t, c.wantFirst, float64(got.D1()), 1e-12, "%s'(%v)", c.name, c.x)
		require.InDeltaf(t, c.wantFirst, float64(got.D2()), 1e-12, "%s'(%v)", c.name, c.x)
		require.InDeltaf(t, c.wantSecond, float64(got.D12()), 1e-12, "%s''(%v)", c.name, c.x)
	}
}

func TestHyperDualMixedPartials(t *testing.T) {
	t.Run("x*y^2", func(t *testing.T) {
		x := dual.NewHyper(num.Real(3), num.Real(1), num.Real(0), num.Real(0))
		y := dual.NewHyper(num.Real(2), num.Real(0), num.Real(1), num.Real(0))
		f := x.Mul(y.Mul(y))
		require.Equal(t, num.Real(12), f.Value())
		require.Equal(t, num.Real(4), f.D1())  // y^2
		require.Equal(t, num.Real(12), f.D2()) // 2xy
		require.Equal(t, num.Real(4), f.D12()) // 2y
	})
	t.Run("Pow", func(t *testing.T) {
		x := dual.NewHyper(num.Real(1.7), num.Real(1), num.Real(0), num.Real(0))
		y := dual.NewHyper(num.Real(2.3), num.Real(0), num.Real(1), num.Real(0))
		p := x.Pow(y)
		lnX := math.Log(1.7)
		require.InDelta(t, 2.3*math.Pow(1.7, 1.3), float64(p.D1()), 1e-12)
		require.InDelta(t, math.Pow(1.7, 2.3)*lnX, float64(p.D2()), 1e-12)
		require.InDelta(t, math.Pow(1.7, 1.3)*(1+2.3*lnX), float64(p.D12()), 1e-12)
	})
	t.Run("Atan2", func(t *testing.T) {
		o := dual.NewHyper(num.Real(1.5), num.Real(1), num.Real(0), num.Real(0))
		a := dual.NewHyper(num.Real(2.5), num.Real(0), num.Real(1), num.Real(0))
		r := o.Atan2(a)
		s := 2.5*2.5 + 1.5*1.5
		require.InDelta(t, 2.5/s, float64(r.D1()), 1e-15)
		require.InDelta(t, -1.5/s, float64(r.D2()), 1e-15)
		require.InDelta(t, (1.5*1.5-2.5*2.5)/(s*s), float64(r.D12()), 1e-15)
	})
	t.Run("Mod with constant modulus", func(t *testing.T) {
		m := dual.HyperVar(num.Real(7.3)).Mod(dual.HyperConst(num.Real(2.1)))
		require.Equal(t, num.Real(math.Mod(7.3, 2.1)), m.Value())
		require.Equal(t, num.Real(1), m.D1())
		require.Equal(t, num.Real(1), m.D2())
		require.Equal(t, num.Real(0), m.D12())
	})
	t.Run("complex panics", func(t *testing.T) {
		z := dual.HyperVar(num.NewComplex(1, 2))
		require.Panics(t, func() { z.Mod(z) })
	})
}

func TestHyperDualPowConstantExponent(t *testing.T) {
	p := dual.HyperVar(num.Real(-2)).Pow(dual.HyperConst(num.Real(3)))
	require.False(t, p.IsNaN())
	require.Equal(t, num.Real(-8), p.Value())
	require.Equal(t, num.Real(12), p.D1())
	require.Equal(t, num.Real(-12), p.D12()) // 3*2*(-2)
}

func TestHyperDualAgreesWithGonum(t *testing.T) {
	x := dual.NewHyper(num.Real(0.9), num.Real(1), num.Real(0.6), num.Real(0.25))
	ref := ghyperdual.Number{Real: 0.9, E1mag: 1, E2mag: 0.6, E1E2mag: 0.25}

	requireHyperEqual(t, ghyperdual.Exp(ref), x.Exp())
	requireHyperEqual(t, ghyperdual.Log(ref), x.Log())
	requireHyperEqual(t, ghyperdual.Sin(ref), x.Sin())
	requireHyperEqual(t, ghyperdual.Sqrt(ref), x.Sqrt())
	requireHyperEqual(t, ghyperdual.PowReal(ref, 2.5), x.Pow(dual.HyperConst(num.Real(2.5))))
}

func requireHyperEqual(t *testing.T, want ghyperdual.Number, got dual.HyperDual[num.Real]) {
	t.Helper()
	require.InDelta(t, want.Real, float64(got.Value()), 1e-13)
	require.InDelta(t, want.E1mag, float64(got.D1()), 1e-13)
	require.InDelta(t, want.E2mag, float64(got.D2()), 1e-13)
	require.InDelta(t, want.E1E2mag, float64(got.D12()), 1e-13)
}

func TestNestedDualMatchesHyperDual(t *testing.T) {
	// Forward-over-forward: the outer derivative of the inner derivative
	// of exp(sin(x)) is its second derivative.
	nested := dual.Var(dual.Var(num.Real(0.8)))
	ny := nested.Sin().Exp()
	hy := dual.HyperVar(num.Real(0.8)).Sin().Exp()

	sin, cos := math.Sin(0.8), math.Cos(0.8)
	first := math.Exp(sin) * cos
	second := math.Exp(sin) * (cos*cos - sin)

	require.InDelta(t, first, float64(ny.Value().Derivative()), 1e-13)
	require.InDelta(t, first, float64(ny.Derivative().Value()), 1e-13)
	require.InDelta(t, second, float64(ny.Derivative().Derivative()), 1e-13)
	require.InDelta(t, second, float64(hy.D12()), 1e-13)
}

func TestForwardOverReverse(t *testing.T) {
	// Running the reverse sweep in Dual arithmetic differentiates the
	// gradient itself: the derivative parts form the Hessian-vector
	// product H*v for the seeded direction v.
	at := []float64{1.2, 0.7}
	dir := []float64{0.3, -0.5}

	gt := tape.NewGradientTape[dual.Dual[num.Real]]()
	x := gt.CreateVariable(dual.New(num.Real(at[0]), num.Real(dir[0])))
	y := gt.CreateVariable(dual.New(num.Real(at[1]), num.Real(dir[1])))
	out := gt.Add(gt.Exp(gt.Mul(x, y)), gt.Mul(gt.Sin(x), y))
	grad, err := gt.ReverseAccumulateAt(out.Index(), dual.Const(num.Real(1)))
	require.NoError(t, err)

	ht := tape.NewHessianTape[num.Real]()
	hx := ht.CreateVariable(num.Real(at[0]))
	hy := ht.CreateVariable(num.Real(at[1]))
	hout := ht.Add(ht.Exp(ht.Mul(hx, hy)), ht.Mul(ht.Sin(hx), hy))
	wantGrad, hess, err := ht.ReverseAccumulateHessianAt(hout.Index(), 1)
	require.NoError(t, err)

	for i := range grad {
		require.InDelta(t, float64(wantGrad[i]), float64(grad[i].Value()), 1e-12)
		hv := float64(hess[i][0])*dir[0] + float64(hess[i][1])*dir[1]
		require.InDelta(t, hv, float64(grad[i].Derivative()), 1e-10)
	}
}

package tape

import (
	"math"

	"github.com/gomlx/exceptions"

	"github.com/wengert/wengert/num"
)

// Operation methods of HessianTape. Each records the first partials
// exactly like GradientTape plus the three local second partials
// (d2F/dx2, d2F/dxdy, d2F/dy2) needed by edge-pushing; unary and scalar
// operations have only d2F/dx2. Omitted second partials are zero.

// Add records x+y. All second partials are zero.
func (t *HessianTape[T]) Add(x, y Variable[T]) Variable[T] {
	primal := x.value.Add(y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	var zero T
	return t.binary(primal, one, zero, zero, one, zero, x.index, y.index)
}

// AddScalar records x+c with an untracked constant c.
func (t *HessianTape[T]) AddScalar(x Variable[T], c T) Variable[T] {
	primal := x.value.Add(c)
	if !t.recording {
		return t.untracked(primal)
	}
	var zero T
	return t.unary(primal, primal.One(), zero, x.index)
}

// Sub records x-y. All second partials are zero.
func (t *HessianTape[T]) Sub(x, y Variable[T]) Variable[T] {
	primal := x.value.Sub(y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	var zero T
	return t.binary(primal, one, zero, zero, one.Neg(), zero, x.index, y.index)
}

// SubScalar records x-c with an untracked constant c.
func (t *HessianTape[T]) SubScalar(x Variable[T], c T) Variable[T] {
	primal := x.value.Sub(c)
	if !t.recording {
		return t.untracked(primal)
	}
	var zero T
	return t.unary(primal, primal.One(), zero, x.index)
}

// Mul records x*y.
//
// F(x,y) = x*y -> dF/dx = y ; dF/dy = x ; d2F/dxdy = 1
func (t *HessianTape[T]) Mul(x, y Variable[T]) Variable[T] {
	primal := x.value.Mul(y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	var zero T
	return t.binary(primal, y.value, zero, primal.One(), x.value, zero, x.index, y.index)
}

// MulScalar records x*c with an untracked constant c.
func (t *HessianTape[T]) MulScalar(x Variable[T], c T) Variable[T] {
	primal := x.value.Mul(c)
	if !t.recording {
		return t.untracked(primal)
	}
	var zero T
	return t.unary(primal, c, zero, x.index)
}

// Div records x/y.
//
// F(x,y) = x/y -> dF/dx = 1/y ; dF/dy = -x/y^2
// d2F/dxdy = -1/y^2 ; d2F/dy2 = 2x/y^3
func (t *HessianTape[T]) Div(x, y Variable[T]) Variable[T] {
	primal := x.value.Div(y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	var zero T
	oneOverY := primal.One().Div(y.value)
	dy := primal.Mul(oneOverY).Neg()
	dxy := oneOverY.Mul(oneOverY).Neg()
	dyy := primal.FromFloat64(2).Mul(primal).Mul(oneOverY).Mul(oneOverY)
	return t.binary(primal, oneOverY, zero, dxy, dy, dyy, x.index, y.index)
}

// DivScalar records x/c with an untracked constant c. A zero c is not
// trapped: primal and partial come out Inf/NaN, the same as dividing by
// a zero-valued variable.
func (t *HessianTape[T]) DivScalar(x Variable[T], c T) Variable[T] {
	primal := x.value.Div(c)
	if !t.recording {
		return t.untracked(primal)
	}
	var zero T
	return t.unary(primal, primal.One().Div(c), zero, x.index)
}

// Mod records x mod y. Away from the discontinuities the remainder is
// linear in x and piecewise linear in y, so all second partials are zero.
//
// F(x,y) = x mod y -> dF/dx = 1 ; dF/dy = -trunc(x/y), almost everywhere
func (t *HessianTape[T]) Mod(x, y Variable[T]) Variable[T] {
	primal := num.Mod(x.value, y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	var zero T
	dy := num.Trunc(x.value.Div(y.value)).Neg()
	return t.binary(primal, primal.One(), zero, zero, dy, zero, x.index, y.index)
}

// ModScalar records x mod c with an untracked constant c.
func (t *HessianTape[T]) ModScalar(x Variable[T], c T) Variable[T] {
	primal := num.Mod(x.value, c)
	if !t.recording {
		return t.untracked(primal)
	}
	var zero T
	return t.unary(primal, primal.One(), zero, x.index)
}

// Neg records -x.
func (t *HessianTape[T]) Neg(x Variable[T]) Variable[T] {
	primal := x.value.Neg()
	if !t.recording {
		return t.untracked(primal)
	}
	var zero T
	return t.unary(primal, primal.One().Neg(), zero, x.index)
}

// Inverse records 1/x.
//
// F(x) = 1/x -> dF/dx = -1/x^2 ; d2F/dx2 = 2/x^3
func (t *HessianTape[T]) Inverse(x Variable[T]) Variable[T] {
	primal := x.value.One().Div(x.value)
	if !t.recording {
		return t.untracked(primal)
	}
	sq := primal.Mul(primal)
	dxx := primal.FromFloat64(2).Mul(sq).Mul(primal)
	return t.unary(primal, sq.Neg(), dxx, x.index)
}

// Exp records e^x. Both derivatives are the output itself.
func (t *HessianTape[T]) Exp(x Variable[T]) Variable[T] {
	primal := x.value.Exp()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal, primal, x.index)
}

// Exp2 records 2^x.
//
// F(x) = 2^x -> dF/dx = 2^x * ln(2) ; d2F/dx2 = 2^x * ln(2)^2
func (t *HessianTape[T]) Exp2(x Variable[T]) Variable[T] {
	primal := x.value.Exp2()
	if !t.recording {
		return t.untracked(primal)
	}
	ln2 := primal.FromFloat64(math.Ln2)
	dx := primal.Mul(ln2)
	return t.unary(primal, dx, dx.Mul(ln2), x.index)
}

// Exp10 records 10^x.
//
// F(x) = 10^x -> dF/dx = 10^x * ln(10) ; d2F/dx2 = 10^x * ln(10)^2
func (t *HessianTape[T]) Exp10(x Variable[T]) Variable[T] {
	primal := x.value.Exp10()
	if !t.recording {
		return t.untracked(primal)
	}
	ln10 := primal.FromFloat64(math.Ln10)
	dx := primal.Mul(ln10)
	return t.unary(primal, dx, dx.Mul(ln10), x.index)
}

// Log records the natural logarithm.
//
// F(x) = ln(x) -> dF/dx = 1/x ; d2F/dx2 = -1/x^2
func (t *HessianTape[T]) Log(x Variable[T]) Variable[T] {
	primal := x.value.Log()
	if !t.recording {
		return t.untracked(primal)
	}
	dx := primal.One().Div(x.value)
	return t.unary(primal, dx, dx.Mul(dx).Neg(), x.index)
}

// Log2 records the base-2 logarithm.
//
// F(x) = log2(x) -> dF/dx = 1/(x*ln(2)) ; d2F/dx2 = -1/(x^2*ln(2))
func (t *HessianTape[T]) Log2(x Variable[T]) Variable[T] {
	primal := x.value.Log2()
	if !t.recording {
		return t.untracked(primal)
	}
	dx := primal.One().Div(x.value.Mul(primal.FromFloat64(math.Ln2)))
	return t.unary(primal, dx, dx.Div(x.value).Neg(), x.index)
}

// Log10 records the base-10 logarithm.
//
// F(x) = log10(x) -> dF/dx = 1/(x*ln(10)) ; d2F/dx2 = -1/(x^2*ln(10))
func (t *HessianTape[T]) Log10(x Variable[T]) Variable[T] {
	primal := x.value.Log10()
	if !t.recording {
		return t.untracked(primal)
	}
	dx := primal.One().Div(x.value.Mul(primal.FromFloat64(math.Ln10)))
	return t.unary(primal, dx, dx.Div(x.value).Neg(), x.index)
}

// Pow records x^y with both operands tracked.
//
// F(x,y) = x^y -> dF/dx = y*x^(y-1) ; dF/dy = x^y*ln(x)
// d2F/dx2 = y*(y-1)*x^(y-2) ; d2F/dxdy = x^(y-1)*(1 + y*ln(x)) ;
// d2F/dy2 = x^y*ln(x)^2
func (t *HessianTape[T]) Pow(x, y Variable[T]) Variable[T] {
	primal := x.value.Pow(y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	two := primal.FromFloat64(2)
	lnX := x.value.Log()
	powYm1 := x.value.Pow(y.value.Sub(one))
	dx := y.value.Mul(powYm1)
	dy := primal.Mul(lnX)
	dxx := y.value.Mul(y.value.Sub(one)).Mul(x.value.Pow(y.value.Sub(two)))
	dxy := powYm1.Mul(one.Add(y.value.Mul(lnX)))
	dyy := dy.Mul(lnX)
	return t.binary(primal, dx, dxx, dxy, dy, dyy, x.index, y.index)
}

// PowScalar records x^c with an untracked constant exponent.
//
// F(x) = x^c -> dF/dx = c*x^(c-1) ; d2F/dx2 = c*(c-1)*x^(c-2)
func (t *HessianTape[T]) PowScalar(x Variable[T], c T) Variable[T] {
	primal := x.value.Pow(c)
	if !t.recording {
		return t.untracked(primal)
	}
	one := c.One()
	dx := c.Mul(x.value.Pow(c.Sub(one)))
	dxx := c.Mul(c.Sub(one)).Mul(x.value.Pow(c.Sub(one).Sub(one)))
	return t.unary(primal, dx, dxx, x.index)
}

// Root records the y-th root of x, with both operands tracked. Writing
// r = x^(1/y) and L = ln(x):
//
// dF/dx = r/(x*y) ; dF/dy = -r*L/y^2
// d2F/dx2 = r*(1-y)/(x^2*y^2) ; d2F/dxdy = -r*(L+y)/(x*y^3) ;
// d2F/dy2 = r*L*(L+2y)/y^4
func (t *HessianTape[T]) Root(x, y Variable[T]) Variable[T] {
	one := x.value.One()
	primal := x.value.Pow(one.Div(y.value))
	if !t.recording {
		return t.untracked(primal)
	}
	two := one.FromFloat64(2)
	lnX := x.value.Log()
	ySq := y.value.Mul(y.value)
	dx := primal.Div(x.value.Mul(y.value))
	dy := primal.Mul(lnX).Div(ySq).Neg()
	dxx := primal.Mul(one.Sub(y.value)).Div(x.value.Mul(x.value).Mul(ySq))
	dxy := primal.Mul(lnX.Add(y.value)).Div(x.value.Mul(ySq).Mul(y.value)).Neg()
	dyy := primal.Mul(lnX).Mul(lnX.Add(two.Mul(y.value))).Div(ySq.Mul(ySq))
	return t.binary(primal, dx, dxx, dxy, dy, dyy, x.index, y.index)
}

// Sqrt records the square root.
//
// F(x) = sqrt(x) -> dF/dx = 1/(2*sqrt(x)) ; d2F/dx2 = -1/(4*x^(3/2))
func (t *HessianTape[T]) Sqrt(x Variable[T]) Variable[T] {
	primal := x.value.Sqrt()
	if !t.recording {
		return t.untracked(primal)
	}
	two := primal.FromFloat64(2)
	dx := primal.One().Div(two.Mul(primal))
	dxx := dx.Div(two.Mul(x.value)).Neg()
	return t.unary(primal, dx, dxx, x.index)
}

// Cbrt records the cube root.
//
// F(x) = x^(1/3) -> dF/dx = 1/(3*x^(2/3)) ; d2F/dx2 = -2/(9*x^(5/3))
func (t *HessianTape[T]) Cbrt(x Variable[T]) Variable[T] {
	primal := x.value.Cbrt()
	if !t.recording {
		return t.untracked(primal)
	}
	three := primal.FromFloat64(3)
	dx := primal.One().Div(three.Mul(primal).Mul(primal))
	dxx := primal.FromFloat64(2).Mul(dx).Div(three.Mul(x.value)).Neg()
	return t.unary(primal, dx, dxx, x.index)
}

// Sin records sin(x); the second derivative is the negated output.
func (t *HessianTape[T]) Sin(x Variable[T]) Variable[T] {
	primal := x.value.Sin()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, x.value.Cos(), primal.Neg(), x.index)
}

// Cos records cos(x); the second derivative is the negated output.
func (t *HessianTape[T]) Cos(x Variable[T]) Variable[T] {
	primal := x.value.Cos()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, x.value.Sin().Neg(), primal.Neg(), x.index)
}

// Tan records tan(x).
//
// F(x) = tan(x) -> dF/dx = 1 + tan(x)^2 ; d2F/dx2 = 2*tan(x)*(1 + tan(x)^2)
func (t *HessianTape[T]) Tan(x Variable[T]) Variable[T] {
	primal := x.value.Tan()
	if !t.recording {
		return t.untracked(primal)
	}
	dx := primal.One().Add(primal.Mul(primal))
	dxx := primal.FromFloat64(2).Mul(primal).Mul(dx)
	return t.unary(primal, dx, dxx, x.index)
}

// Asin records arcsin(x).
//
// F(x) = asin(x) -> dF/dx = (1-x^2)^(-1/2) ; d2F/dx2 = x*(1-x^2)^(-3/2)
func (t *HessianTape[T]) Asin(x Variable[T]) Variable[T] {
	primal := x.value.Asin()
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	dx := one.Div(one.Sub(x.value.Mul(x.value)).Sqrt())
	dxx := x.value.Mul(dx).Mul(dx).Mul(dx)
	return t.unary(primal, dx, dxx, x.index)
}

// Acos records arccos(x). Its partials are the negated Asin partials, and
// x*dx^3 keeps the sign flip for the second derivative too.
func (t *HessianTape[T]) Acos(x Variable[T]) Variable[T] {
	primal := x.value.Acos()
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	dx := one.Div(one.Sub(x.value.Mul(x.value)).Sqrt()).Neg()
	dxx := x.value.Mul(dx).Mul(dx).Mul(dx)
	return t.unary(primal, dx, dxx, x.index)
}

// Atan records arctan(x).
//
// F(x) = atan(x) -> dF/dx = 1/(1+x^2) ; d2F/dx2 = -2x/(1+x^2)^2
func (t *HessianTape[T]) Atan(x Variable[T]) Variable[T] {
	primal := x.value.Atan()
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	dx := one.Div(one.Add(x.value.Mul(x.value)))
	dxx := primal.FromFloat64(2).Mul(x.value).Mul(dx).Mul(dx).Neg()
	return t.unary(primal, dx, dxx, x.index)
}

// Atan2 records the angle of the point (x, y), ordinate first like
// math.Atan2. With s = x^2 + y^2:
//
// F(y,x) = atan2(y,x) -> dF/dy = x/s ; dF/dx = -y/s
// d2F/dy2 = -2xy/s^2 ; d2F/dydx = (y^2-x^2)/s^2 ; d2F/dx2 = 2xy/s^2
func (t *HessianTape[T]) Atan2(y, x Variable[T]) Variable[T] {
	primal := num.Atan2(y.value, x.value)
	if !t.recording {
		return t.untracked(primal)
	}
	xx := x.value.Mul(x.value)
	yy := y.value.Mul(y.value)
	s := xx.Add(yy)
	sSq := s.Mul(s)
	dy := x.value.Div(s)
	dx := y.value.Div(s).Neg()
	cross := primal.FromFloat64(2).Mul(x.value).Mul(y.value).Div(sSq)
	dydx := yy.Sub(xx).Div(sSq)
	return t.binary(primal, dy, cross.Neg(), dydx, dx, cross, y.index, x.index)
}

// Sinh records sinh(x); the second derivative is the output itself.
func (t *HessianTape[T]) Sinh(x Variable[T]) Variable[T] {
	primal := x.value.Sinh()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, x.value.Cosh(), primal, x.index)
}

// Cosh records cosh(x); the second derivative is the output itself.
func (t *HessianTape[T]) Cosh(x Variable[T]) Variable[T] {
	primal := x.value.Cosh()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, x.value.Sinh(), primal, x.index)
}

// Tanh records tanh(x).
//
// F(x) = tanh(x) -> dF/dx = 1 - tanh(x)^2 ; d2F/dx2 = -2*tanh(x)*(1 - tanh(x)^2)
func (t *HessianTape[T]) Tanh(x Variable[T]) Variable[T] {
	primal := x.value.Tanh()
	if !t.recording {
		return t.untracked(primal)
	}
	dx := primal.One().Sub(primal.Mul(primal))
	dxx := primal.FromFloat64(2).Mul(primal).Mul(dx).Neg()
	return t.unary(primal, dx, dxx, x.index)
}

// Asinh records arcsinh(x).
//
// F(x) = asinh(x) -> dF/dx = (x^2+1)^(-1/2) ; d2F/dx2 = -x*(x^2+1)^(-3/2)
func (t *HessianTape[T]) Asinh(x Variable[T]) Variable[T] {
	primal := x.value.Asinh()
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	dx := one.Div(x.value.Mul(x.value).Add(one).Sqrt())
	dxx := x.value.Mul(dx).Mul(dx).Mul(dx).Neg()
	return t.unary(primal, dx, dxx, x.index)
}

// Acosh records arccosh(x).
//
// F(x) = acosh(x) -> dF/dx = (x^2-1)^(-1/2) ; d2F/dx2 = -x*(x^2-1)^(-3/2)
func (t *HessianTape[T]) Acosh(x Variable[T]) Variable[T] {
	primal := x.value.Acosh()
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	dx := one.Div(x.value.Mul(x.value).Sub(one).Sqrt())
	dxx := x.value.Mul(dx).Mul(dx).Mul(dx).Neg()
	return t.unary(primal, dx, dxx, x.index)
}

// Atanh records arctanh(x).
//
// F(x) = atanh(x) -> dF/dx = 1/(1-x^2) ; d2F/dx2 = 2x/(1-x^2)^2
func (t *HessianTape[T]) Atanh(x Variable[T]) Variable[T] {
	primal := x.value.Atanh()
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	dx := one.Div(one.Sub(x.value.Mul(x.value)))
	dxx := primal.FromFloat64(2).Mul(x.value).Mul(dx).Mul(dx)
	return t.unary(primal, dx, dxx, x.index)
}

// CustomUnary records f(x) with caller-supplied analytic derivatives. All
// three callbacks are required here: a Hessian over a custom operation
// without its second derivative would be silently wrong.
func (t *HessianTape[T]) CustomUnary(x Variable[T], f, df, d2f func(T) T) Variable[T] {
	if f == nil || df == nil || d2f == nil {
		exceptions.Panicf("tape: HessianTape.CustomUnary requires f, df and d2f callbacks")
	}
	primal := f(x.value)
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, df(x.value), d2f(x.value), x.index)
}

// CustomBinary records f(x, y) with caller-supplied analytic derivatives.
// All six callbacks are required here.
func (t *HessianTape[T]) CustomBinary(x, y Variable[T], f, dfx, dfy, d2fxx, d2fxy, d2fyy func(T, T) T) Variable[T] {
	if f == nil || dfx == nil || dfy == nil || d2fxx == nil || d2fxy == nil || d2fyy == nil {
		exceptions.Panicf("tape: HessianTape.CustomBinary requires all six callbacks")
	}
	primal := f(x.value, y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	return t.binary(primal,
		dfx(x.value, y.value), d2fxx(x.value, y.value), d2fxy(x.value, y.value),
		dfy(x.value, y.value), d2fyy(x.value, y.value),
		x.index, y.index)
}

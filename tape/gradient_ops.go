package tape

import (
	"math"

	"github.com/gomlx/exceptions"

	"github.com/wengert/wengert/num"
)

// The local partial derivatives recorded by each operation, in the
// notation F(x, y) for binary operations and F(x) for unary ones. Every
// method appends exactly one node (or none while recording is off).

// Add records x+y.
func (t *GradientTape[T]) Add(x, y Variable[T]) Variable[T] {
	primal := x.value.Add(y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	return t.binary(primal, one, one, x.index, y.index)
}

// AddScalar records x+c with an untracked constant c.
func (t *GradientTape[T]) AddScalar(x Variable[T], c T) Variable[T] {
	primal := x.value.Add(c)
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal.One(), x.index)
}

// Sub records x-y.
func (t *GradientTape[T]) Sub(x, y Variable[T]) Variable[T] {
	primal := x.value.Sub(y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	return t.binary(primal, one, one.Neg(), x.index, y.index)
}

// SubScalar records x-c with an untracked constant c.
func (t *GradientTape[T]) SubScalar(x Variable[T], c T) Variable[T] {
	primal := x.value.Sub(c)
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal.One(), x.index)
}

// Mul records x*y.
//
// F(x,y) = x*y -> dF/dx = y ; dF/dy = x
func (t *GradientTape[T]) Mul(x, y Variable[T]) Variable[T] {
	primal := x.value.Mul(y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	return t.binary(primal, y.value, x.value, x.index, y.index)
}

// MulScalar records x*c with an untracked constant c.
func (t *GradientTape[T]) MulScalar(x Variable[T], c T) Variable[T] {
	primal := x.value.Mul(c)
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, c, x.index)
}

// Div records x/y.
//
// F(x,y) = x/y -> dF/dx = 1/y ; dF/dy = -x/y^2
func (t *GradientTape[T]) Div(x, y Variable[T]) Variable[T] {
	primal := x.value.Div(y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	dx := primal.One().Div(y.value)
	dy := primal.Div(y.value).Neg()
	return t.binary(primal, dx, dy, x.index, y.index)
}

// DivScalar records x/c with an untracked constant c. A zero c is not
// trapped: primal and partial come out Inf/NaN, the same as dividing by
// a zero-valued variable.
func (t *GradientTape[T]) DivScalar(x Variable[T], c T) Variable[T] {
	primal := x.value.Div(c)
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal.One().Div(c), x.index)
}

// Mod records x mod y (math.Mod semantics: result has the sign of x).
// Only real number types support it.
//
// F(x,y) = x mod y -> dF/dx = 1 ; dF/dy = -trunc(x/y), almost everywhere
func (t *GradientTape[T]) Mod(x, y Variable[T]) Variable[T] {
	primal := num.Mod(x.value, y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	dy := num.Trunc(x.value.Div(y.value)).Neg()
	return t.binary(primal, primal.One(), dy, x.index, y.index)
}

// ModScalar records x mod c with an untracked constant c.
func (t *GradientTape[T]) ModScalar(x Variable[T], c T) Variable[T] {
	primal := num.Mod(x.value, c)
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal.One(), x.index)
}

// Neg records -x.
func (t *GradientTape[T]) Neg(x Variable[T]) Variable[T] {
	primal := x.value.Neg()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal.One().Neg(), x.index)
}

// Inverse records 1/x.
//
// F(x) = 1/x -> dF/dx = -1/x^2
func (t *GradientTape[T]) Inverse(x Variable[T]) Variable[T] {
	primal := x.value.One().Div(x.value)
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal.Mul(primal).Neg(), x.index)
}

// Exp records e^x, whose derivative is the output itself.
func (t *GradientTape[T]) Exp(x Variable[T]) Variable[T] {
	primal := x.value.Exp()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal, x.index)
}

// Exp2 records 2^x.
//
// F(x) = 2^x -> dF/dx = 2^x * ln(2)
func (t *GradientTape[T]) Exp2(x Variable[T]) Variable[T] {
	primal := x.value.Exp2()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal.Mul(primal.FromFloat64(math.Ln2)), x.index)
}

// Exp10 records 10^x.
//
// F(x) = 10^x -> dF/dx = 10^x * ln(10)
func (t *GradientTape[T]) Exp10(x Variable[T]) Variable[T] {
	primal := x.value.Exp10()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal.Mul(primal.FromFloat64(math.Ln10)), x.index)
}

// Log records the natural logarithm.
func (t *GradientTape[T]) Log(x Variable[T]) Variable[T] {
	primal := x.value.Log()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal.One().Div(x.value), x.index)
}

// Log2 records the base-2 logarithm.
//
// F(x) = log2(x) -> dF/dx = 1/(x * ln(2))
func (t *GradientTape[T]) Log2(x Variable[T]) Variable[T] {
	primal := x.value.Log2()
	if !t.recording {
		return t.untracked(primal)
	}
	dx := primal.One().Div(x.value.Mul(primal.FromFloat64(math.Ln2)))
	return t.unary(primal, dx, x.index)
}

// Log10 records the base-10 logarithm.
//
// F(x) = log10(x) -> dF/dx = 1/(x * ln(10))
func (t *GradientTape[T]) Log10(x Variable[T]) Variable[T] {
	primal := x.value.Log10()
	if !t.recording {
		return t.untracked(primal)
	}
	dx := primal.One().Div(x.value.Mul(primal.FromFloat64(math.Ln10)))
	return t.unary(primal, dx, x.index)
}

// Pow records x^y with both operands tracked.
//
// F(x,y) = x^y -> dF/dx = y * x^(y-1) ; dF/dy = x^y * ln(x)
func (t *GradientTape[T]) Pow(x, y Variable[T]) Variable[T] {
	primal := x.value.Pow(y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	dx := y.value.Mul(x.value.Pow(y.value.Sub(one)))
	dy := primal.Mul(x.value.Log())
	return t.binary(primal, dx, dy, x.index, y.index)
}

// PowScalar records x^c with an untracked constant exponent.
//
// F(x) = x^c -> dF/dx = c * x^(c-1)
func (t *GradientTape[T]) PowScalar(x Variable[T], c T) Variable[T] {
	primal := x.value.Pow(c)
	if !t.recording {
		return t.untracked(primal)
	}
	dx := c.Mul(x.value.Pow(c.Sub(c.One())))
	return t.unary(primal, dx, x.index)
}

// Root records the y-th root of x, with both operands tracked.
//
// F(x,y) = x^(1/y) -> dF/dx = x^(1/y) / (x*y) ; dF/dy = -x^(1/y) * ln(x) / y^2
func (t *GradientTape[T]) Root(x, y Variable[T]) Variable[T] {
	one := x.value.One()
	primal := x.value.Pow(one.Div(y.value))
	if !t.recording {
		return t.untracked(primal)
	}
	dx := primal.Div(x.value.Mul(y.value))
	dy := primal.Mul(x.value.Log()).Div(y.value.Mul(y.value)).Neg()
	return t.binary(primal, dx, dy, x.index, y.index)
}

// Sqrt records the square root.
//
// F(x) = sqrt(x) -> dF/dx = 1 / (2*sqrt(x))
func (t *GradientTape[T]) Sqrt(x Variable[T]) Variable[T] {
	primal := x.value.Sqrt()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal.FromFloat64(0.5).Div(primal), x.index)
}

// Cbrt records the cube root.
//
// F(x) = x^(1/3) -> dF/dx = 1 / (3 * x^(2/3))
func (t *GradientTape[T]) Cbrt(x Variable[T]) Variable[T] {
	primal := x.value.Cbrt()
	if !t.recording {
		return t.untracked(primal)
	}
	dx := primal.One().Div(primal.FromFloat64(3).Mul(primal).Mul(primal))
	return t.unary(primal, dx, x.index)
}

// Sin records sin(x).
func (t *GradientTape[T]) Sin(x Variable[T]) Variable[T] {
	primal := x.value.Sin()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, x.value.Cos(), x.index)
}

// Cos records cos(x).
func (t *GradientTape[T]) Cos(x Variable[T]) Variable[T] {
	primal := x.value.Cos()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, x.value.Sin().Neg(), x.index)
}

// Tan records tan(x).
//
// F(x) = tan(x) -> dF/dx = 1 + tan(x)^2
func (t *GradientTape[T]) Tan(x Variable[T]) Variable[T] {
	primal := x.value.Tan()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal.One().Add(primal.Mul(primal)), x.index)
}

// Asin records arcsin(x).
//
// F(x) = asin(x) -> dF/dx = 1 / sqrt(1 - x^2)
func (t *GradientTape[T]) Asin(x Variable[T]) Variable[T] {
	primal := x.value.Asin()
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	dx := one.Div(one.Sub(x.value.Mul(x.value)).Sqrt())
	return t.unary(primal, dx, x.index)
}

// Acos records arccos(x).
//
// F(x) = acos(x) -> dF/dx = -1 / sqrt(1 - x^2)
func (t *GradientTape[T]) Acos(x Variable[T]) Variable[T] {
	primal := x.value.Acos()
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	dx := one.Div(one.Sub(x.value.Mul(x.value)).Sqrt()).Neg()
	return t.unary(primal, dx, x.index)
}

// Atan records arctan(x).
//
// F(x) = atan(x) -> dF/dx = 1 / (1 + x^2)
func (t *GradientTape[T]) Atan(x Variable[T]) Variable[T] {
	primal := x.value.Atan()
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	dx := one.Div(one.Add(x.value.Mul(x.value)))
	return t.unary(primal, dx, x.index)
}

// Atan2 records the angle of the point (x, y), with the ordinate as the
// first operand like math.Atan2. Only real number types support it.
//
// F(y,x) = atan2(y,x) -> dF/dy = x/(x^2+y^2) ; dF/dx = -y/(x^2+y^2)
func (t *GradientTape[T]) Atan2(y, x Variable[T]) Variable[T] {
	primal := num.Atan2(y.value, x.value)
	if !t.recording {
		return t.untracked(primal)
	}
	norm := x.value.Mul(x.value).Add(y.value.Mul(y.value))
	dy := x.value.Div(norm)
	dx := y.value.Div(norm).Neg()
	return t.binary(primal, dy, dx, y.index, x.index)
}

// Sinh records sinh(x).
func (t *GradientTape[T]) Sinh(x Variable[T]) Variable[T] {
	primal := x.value.Sinh()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, x.value.Cosh(), x.index)
}

// Cosh records cosh(x).
func (t *GradientTape[T]) Cosh(x Variable[T]) Variable[T] {
	primal := x.value.Cosh()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, x.value.Sinh(), x.index)
}

// Tanh records tanh(x).
//
// F(x) = tanh(x) -> dF/dx = 1 - tanh(x)^2
func (t *GradientTape[T]) Tanh(x Variable[T]) Variable[T] {
	primal := x.value.Tanh()
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, primal.One().Sub(primal.Mul(primal)), x.index)
}

// Asinh records arcsinh(x).
//
// F(x) = asinh(x) -> dF/dx = 1 / sqrt(x^2 + 1)
func (t *GradientTape[T]) Asinh(x Variable[T]) Variable[T] {
	primal := x.value.Asinh()
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	dx := one.Div(x.value.Mul(x.value).Add(one).Sqrt())
	return t.unary(primal, dx, x.index)
}

// Acosh records arccosh(x).
//
// F(x) = acosh(x) -> dF/dx = 1 / sqrt(x^2 - 1)
func (t *GradientTape[T]) Acosh(x Variable[T]) Variable[T] {
	primal := x.value.Acosh()
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	dx := one.Div(x.value.Mul(x.value).Sub(one).Sqrt())
	return t.unary(primal, dx, x.index)
}

// Atanh records arctanh(x).
//
// F(x) = atanh(x) -> dF/dx = 1 / (1 - x^2)
func (t *GradientTape[T]) Atanh(x Variable[T]) Variable[T] {
	primal := x.value.Atanh()
	if !t.recording {
		return t.untracked(primal)
	}
	one := primal.One()
	dx := one.Div(one.Sub(x.value.Mul(x.value)))
	return t.unary(primal, dx, x.index)
}

// CustomUnary records f(x) with caller-supplied analytic derivatives. f
// and df are required; d2f is only consulted by HessianTape and may be
// nil here.
func (t *GradientTape[T]) CustomUnary(x Variable[T], f, df, d2f func(T) T) Variable[T] {
	if f == nil || df == nil {
		exceptions.Panicf("tape: CustomUnary requires f and df callbacks")
	}
	primal := f(x.value)
	if !t.recording {
		return t.untracked(primal)
	}
	return t.unary(primal, df(x.value), x.index)
}

// CustomBinary records f(x, y) with caller-supplied analytic derivatives.
// f, dfx and dfy are required; the second-order callbacks are only
// consulted by HessianTape and may be nil here.
func (t *GradientTape[T]) CustomBinary(x, y Variable[T], f, dfx, dfy, d2fxx, d2fxy, d2fyy func(T, T) T) Variable[T] {
	if f == nil || dfx == nil || dfy == nil {
		exceptions.Panicf("tape: CustomBinary requires f, dfx and dfy callbacks")
	}
	primal := f(x.value, y.value)
	if !t.recording {
		return t.untracked(primal)
	}
	return t.binary(primal, dfx(x.value, y.value), dfy(x.value, y.value), x.index, y.index)
}

package dual

import (
	"math"

	"github.com/wengert/wengert/num"
)

// HyperDual is a second-order dual number over T: a value, first
// derivatives along two directions, and the mixed second derivative of the
// pair. Seeding the same variable in both directions makes D12 a plain
// second derivative; seeding two different variables makes it one
// off-diagonal Hessian entry.
type HyperDual[T num.Floating[T]] struct {
	value, d1, d2, d12 T
}

var (
	_ num.RealFloating[HyperDual[num.Real]] = HyperDual[num.Real]{}
	_ num.Floating[HyperDual[num.Complex]]  = HyperDual[num.Complex]{}
)

// NewHyper builds a hyper-dual number with explicit derivative parts.
func NewHyper[T num.Floating[T]](value, d1, d2, d12 T) HyperDual[T] {
	return HyperDual[T]{value: value, d1: d1, d2: d2, d12: d12}
}

// HyperVar builds the differentiation variable seeded in both directions,
// so that D12 of any function of it is the second derivative.
func HyperVar[T num.Floating[T]](value T) HyperDual[T] {
	one := num.One[T]()
	return HyperDual[T]{value: value, d1: one, d2: one}
}

// HyperConst builds a hyper-dual number with zero derivative parts.
func HyperConst[T num.Floating[T]](value T) HyperDual[T] {
	return HyperDual[T]{value: value}
}

// Value returns the primal value.
func (x HyperDual[T]) Value() T { return x.value }

// D1 returns the first derivative along the first direction.
func (x HyperDual[T]) D1() T { return x.d1 }

// D2 returns the first derivative along the second direction.
func (x HyperDual[T]) D2() T { return x.d2 }

// D12 returns the mixed second derivative of the two directions.
func (x HyperDual[T]) D12() T { return x.d12 }

// chain applies the second-order chain rule for a function with the given
// value, first and second derivative at x.
func (x HyperDual[T]) chain(value, first, second T) HyperDual[T] {
	return HyperDual[T]{
		value: value,
		d1:    first.Mul(x.d1),
		d2:    first.Mul(x.d2),
		d12:   first.Mul(x.d12).Add(second.Mul(x.d1).Mul(x.d2)),
	}
}

func (x HyperDual[T]) Zero() HyperDual[T] { return HyperDual[T]{} }
func (x HyperDual[T]) One() HyperDual[T]  { return HyperDual[T]{value: num.One[T]()} }
func (x HyperDual[T]) FromFloat64(v float64) HyperDual[T] {
	return HyperDual[T]{value: num.FromFloat64[T](v)}
}

func (x HyperDual[T]) Add(y HyperDual[T]) HyperDual[T] {
	return HyperDual[T]{
		value: x.value.Add(y.value),
		d1:    x.d1.Add(y.d1),
		d2:    x.d2.Add(y.d2),
		d12:   x.d12.Add(y.d12),
	}
}

func (x HyperDual[T]) Sub(y HyperDual[T]) HyperDual[T] {
	return HyperDual[T]{
		value: x.value.Sub(y.value),
		d1:    x.d1.Sub(y.d1),
		d2:    x.d2.Sub(y.d2),
		d12:   x.d12.Sub(y.d12),
	}
}

func (x HyperDual[T]) Mul(y HyperDual[T]) HyperDual[T] {
	return HyperDual[T]{
		value: x.value.Mul(y.value),
		d1:    x.d1.Mul(y.value).Add(x.value.Mul(y.d1)),
		d2:    x.d2.Mul(y.value).Add(x.value.Mul(y.d2)),
		d12: x.d12.Mul(y.value).
			Add(x.d1.Mul(y.d2)).
			Add(x.d2.Mul(y.d1)).
			Add(x.value.Mul(y.d12)),
	}
}

// Div differentiates the quotient rule once more in the second direction;
// every term reuses the quotient's own lower-order parts.
func (x HyperDual[T]) Div(y HyperDual[T]) HyperDual[T] {
	value := x.value.Div(y.value)
	d1 := x.d1.Sub(value.Mul(y.d1)).Div(y.value)
	d2 := x.d2.Sub(value.Mul(y.d2)).Div(y.value)
	d12 := x.d12.
		Sub(d1.Mul(y.d2)).
		Sub(d2.Mul(y.d1)).
		Sub(value.Mul(y.d12)).
		Div(y.value)
	return HyperDual[T]{value: value, d1: d1, d2: d2, d12: d12}
}

func (x HyperDual[T]) Neg() HyperDual[T] {
	return HyperDual[T]{value: x.value.Neg(), d1: x.d1.Neg(), d2: x.d2.Neg(), d12: x.d12.Neg()}
}

func (x HyperDual[T]) IsZero() bool {
	return x.value.IsZero() && x.d1.IsZero() && x.d2.IsZero() && x.d12.IsZero()
}

func (x HyperDual[T]) Equal(y HyperDual[T]) bool {
	return x.value.Equal(y.value) && x.d1.Equal(y.d1) && x.d2.Equal(y.d2) && x.d12.Equal(y.d12)
}

func (x HyperDual[T]) IsNaN() bool {
	return x.value.IsNaN() || x.d1.IsNaN() || x.d2.IsNaN() || x.d12.IsNaN()
}

func (x HyperDual[T]) IsInf() bool {
	return x.value.IsInf() || x.d1.IsInf() || x.d2.IsInf() || x.d12.IsInf()
}

func (x HyperDual[T]) Exp() HyperDual[T] {
	e := x.value.Exp()
	return x.chain(e, e, e)
}

func (x HyperDual[T]) Exp2() HyperDual[T] {
	e := x.value.Exp2()
	ln2 := num.FromFloat64[T](math.Ln2)
	first := e.Mul(ln2)
	return x.chain(e, first, first.Mul(ln2))
}

func (x HyperDual[T]) Exp10() HyperDual[T] {
	e := x.value.Exp10()
	ln10 := num.FromFloat64[T](math.Ln10)
	first := e.Mul(ln10)
	return x.chain(e, first, first.Mul(ln10))
}

func (x HyperDual[T]) Log() HyperDual[T] {
	first := num.One[T]().Div(x.value)
	return x.chain(x.value.Log(), first, first.Mul(first).Neg())
}

func (x HyperDual[T]) Log2() HyperDual[T] {
	first := num.One[T]().Div(x.value.Mul(num.FromFloat64[T](math.Ln2)))
	return x.chain(x.value.Log2(), first, first.Div(x.value).Neg())
}

func (x HyperDual[T]) Log10() HyperDual[T] {
	first := num.One[T]().Div(x.value.Mul(num.FromFloat64[T](math.Ln10)))
	return x.chain(x.value.Log10(), first, first.Div(x.value).Neg())
}

// Pow applies the full second-order rule for x^y. As with Dual.Pow, every
// term containing ln(x) is skipped when y carries no derivative parts, so
// constant exponents over a negative base stay NaN-free.
func (x HyperDual[T]) Pow(y HyperDual[T]) HyperDual[T] {
	one := num.One[T]()
	value := x.value.Pow(y.value)
	powM1 := x.value.Pow(y.value.Sub(one))
	fx := y.value.Mul(powM1)
	fxx := y.value.Mul(y.value.Sub(one)).Mul(x.value.Pow(y.value.Sub(num.FromFloat64[T](2))))
	d1 := fx.Mul(x.d1)
	d2 := fx.Mul(x.d2)
	d12 := fx.Mul(x.d12).Add(fxx.Mul(x.d1).Mul(x.d2))
	if !(y.d1.IsZero() && y.d2.IsZero() && y.d12.IsZero()) {
		lnX := x.value.Log()
		fy := value.Mul(lnX)
		fxy := powM1.Mul(one.Add(y.value.Mul(lnX)))
		fyy := fy.Mul(lnX)
		d1 = d1.Add(fy.Mul(y.d1))
		d2 = d2.Add(fy.Mul(y.d2))
		d12 = d12.Add(fy.Mul(y.d12)).
			Add(fxy.Mul(x.d1.Mul(y.d2).Add(x.d2.Mul(y.d1)))).
			Add(fyy.Mul(y.d1).Mul(y.d2))
	}
	return HyperDual[T]{value: value, d1: d1, d2: d2, d12: d12}
}

func (x HyperDual[T]) Sqrt() HyperDual[T] {
	s := x.value.Sqrt()
	two := num.FromFloat64[T](2)
	first := num.FromFloat64[T](0.5).Div(s)
	return x.chain(s, first, first.Div(two.Mul(x.value)).Neg())
}

func (x HyperDual[T]) Cbrt() HyperDual[T] {
	c := x.value.Cbrt()
	three := num.FromFloat64[T](3)
	first := num.One[T]().Div(three.Mul(c).Mul(c))
	second := num.FromFloat64[T](2).Mul(first).Div(three.Mul(x.value)).Neg()
	return x.chain(c, first, second)
}

func (x HyperDual[T]) Sin() HyperDual[T] {
	sin := x.value.Sin()
	return x.chain(sin, x.value.Cos(), sin.Neg())
}

func (x HyperDual[T]) Cos() HyperDual[T] {
	cos := x.value.Cos()
	return x.chain(cos, x.value.Sin().Neg(), cos.Neg())
}

func (x HyperDual[T]) Tan() HyperDual[T] {
	tan := x.value.Tan()
	first := num.One[T]().Add(tan.Mul(tan))
	return x.chain(tan, first, num.FromFloat64[T](2).Mul(tan).Mul(first))
}

func (x HyperDual[T]) Asin() HyperDual[T] {
	one := num.One[T]()
	first := one.Div(one.Sub(x.value.Mul(x.value)).Sqrt())
	return x.chain(x.value.Asin(), first, x.value.Mul(first).Mul(first).Mul(first))
}

// Acos has the negated Asin partials; x*first^3 keeps the sign flip in the
// second derivative too.
func (x HyperDual[T]) Acos() HyperDual[T] {
	one := num.One[T]()
	first := one.Div(one.Sub(x.value.Mul(x.value)).Sqrt()).Neg()
	return x.chain(x.value.Acos(), first, x.value.Mul(first).Mul(first).Mul(first))
}

func (x HyperDual[T]) Atan() HyperDual[T] {
	one := num.One[T]()
	first := one.Div(one.Add(x.value.Mul(x.value)))
	second := num.FromFloat64[T](2).Mul(x.value).Mul(first).Mul(first).Neg()
	return x.chain(x.value.Atan(), first, second)
}

func (x HyperDual[T]) Sinh() HyperDual[T] {
	sinh := x.value.Sinh()
	return x.chain(sinh, x.value.Cosh(), sinh)
}

func (x HyperDual[T]) Cosh() HyperDual[T] {
	cosh := x.value.Cosh()
	return x.chain(cosh, x.value.Sinh(), cosh)
}

func (x HyperDual[T]) Tanh() HyperDual[T] {
	tanh := x.value.Tanh()
	first := num.One[T]().Sub(tanh.Mul(tanh))
	return x.chain(tanh, first, num.FromFloat64[T](2).Mul(tanh).Mul(first).Neg())
}

func (x HyperDual[T]) Asinh() HyperDual[T] {
	one := num.One[T]()
	first := one.Div(x.value.Mul(x.value).Add(one).Sqrt())
	return x.chain(x.value.Asinh(), first, x.value.Mul(first).Mul(first).Mul(first).Neg())
}

func (x HyperDual[T]) Acosh() HyperDual[T] {
	one := num.One[T]()
	first := one.Div(x.value.Mul(x.value).Sub(one).Sqrt())
	return x.chain(x.value.Acosh(), first, x.value.Mul(first).Mul(first).Mul(first).Neg())
}

func (x HyperDual[T]) Atanh() HyperDual[T] {
	one := num.One[T]()
	first := one.Div(one.Sub(x.value.Mul(x.value)))
	second := num.FromFloat64[T](2).Mul(x.value).Mul(first).Mul(first)
	return x.chain(x.value.Atanh(), first, second)
}

// Mod differentiates the remainder away from its discontinuities, where it
// is linear in both operands. It panics for non-real T.
func (x HyperDual[T]) Mod(y HyperDual[T]) HyperDual[T] {
	value := num.Mod(x.value, y.value)
	quot := num.Trunc(x.value.Div(y.value))
	return HyperDual[T]{
		value: value,
		d1:    x.d1.Sub(quot.Mul(y.d1)),
		d2:    x.d2.Sub(quot.Mul(y.d2)),
		d12:   x.d12.Sub(quot.Mul(y.d12)),
	}
}

// Atan2 interprets the receiver as the ordinate, like num.Atan2. It panics
// for non-real T. With s = x^2 + y^2 the partials are y: x/s, x: -y/s and
// the second partials -2xy/s^2, (y^2-x^2)/s^2, 2xy/s^2.
func (x HyperDual[T]) Atan2(abscissa HyperDual[T]) HyperDual[T] {
	value := num.Atan2(x.value, abscissa.value)
	av, ov := abscissa.value, x.value
	s := av.Mul(av).Add(ov.Mul(ov))
	sSq := s.Mul(s)
	fo := av.Div(s)
	fa := ov.Div(s).Neg()
	cross := num.FromFloat64[T](2).Mul(av).Mul(ov).Div(sSq)
	foa := ov.Mul(ov).Sub(av.Mul(av)).Div(sSq)
	d1 := fo.Mul(x.d1).Add(fa.Mul(abscissa.d1))
	d2 := fo.Mul(x.d2).Add(fa.Mul(abscissa.d2))
	d12 := fo.Mul(x.d12).Add(fa.Mul(abscissa.d12)).
		Sub(cross.Mul(x.d1).Mul(x.d2)).
		Add(foa.Mul(x.d1.Mul(abscissa.d2).Add(x.d2.Mul(abscissa.d1)))).
		Add(cross.Mul(abscissa.d1).Mul(abscissa.d2))
	return HyperDual[T]{value: value, d1: d1, d2: d2, d12: d12}
}

// Trunc rounds the value toward zero. The result is locally constant, so
// every derivative part is zero. It panics for non-real T.
func (x HyperDual[T]) Trunc() HyperDual[T] {
	return HyperDual[T]{value: num.Trunc(x.value)}
}

// Copyright 2026 The Wengert Authors. SPDX-License-Identifier: Apache-2.0

// Package dual implements forward-mode automatic differentiation over the
// num tower with dual and hyper-dual numbers.
//
// A Dual carries a value and the derivative of that value along one
// direction; every arithmetic operation and elementary function propagates
// both, so running an ordinary computation on Dual values yields a
// directional derivative with no tape. A HyperDual carries two directions
// plus their mixed second derivative and yields one Hessian entry per
// evaluation.
//
// Both types satisfy num.Floating of themselves, so they nest and flow
// through any code generic over the tower: Dual[Dual[Real]] computes second
// derivatives forward-over-forward, and running a tape's reverse sweep in
// Dual arithmetic differentiates the gradient itself, turning one
// accumulation into a Hessian-vector product.
package dual

import (
	"math"

	"github.com/wengert/wengert/num"
)

// Dual is a first-order dual number over T: a value and the derivative of
// that value along one direction.
type Dual[T num.Floating[T]] struct {
	value T
	deriv T
}

var (
	_ num.RealFloating[Dual[num.Real]]   = Dual[num.Real]{}
	_ num.RealFloating[Dual[num.Real16]] = Dual[num.Real16]{}
	_ num.Floating[Dual[num.Complex]]    = Dual[num.Complex]{}
	_ num.Floating[Dual[Dual[num.Real]]] = Dual[Dual[num.Real]]{}
)

// New builds a dual number with an explicit derivative part.
func New[T num.Floating[T]](value, deriv T) Dual[T] {
	return Dual[T]{value: value, deriv: deriv}
}

// Var builds the differentiation variable: its derivative part is one.
func Var[T num.Floating[T]](value T) Dual[T] {
	return Dual[T]{value: value, deriv: num.One[T]()}
}

// Const builds a dual number with a zero derivative part.
func Const[T num.Floating[T]](value T) Dual[T] {
	return Dual[T]{value: value}
}

// Value returns the primal value.
func (x Dual[T]) Value() T { return x.value }

// Derivative returns the derivative part.
func (x Dual[T]) Derivative() T { return x.deriv }

// chain applies the chain rule for a function with the given value and
// slope at x.
func (x Dual[T]) chain(value, slope T) Dual[T] {
	return Dual[T]{value: value, deriv: slope.Mul(x.deriv)}
}

func (x Dual[T]) Zero() Dual[T] { return Dual[T]{} }
func (x Dual[T]) One() Dual[T]  { return Dual[T]{value: num.One[T]()} }
func (x Dual[T]) FromFloat64(v float64) Dual[T] {
	return Dual[T]{value: num.FromFloat64[T](v)}
}

func (x Dual[T]) Add(y Dual[T]) Dual[T] {
	return Dual[T]{value: x.value.Add(y.value), deriv: x.deriv.Add(y.deriv)}
}

func (x Dual[T]) Sub(y Dual[T]) Dual[T] {
	return Dual[T]{value: x.value.Sub(y.value), deriv: x.deriv.Sub(y.deriv)}
}

func (x Dual[T]) Mul(y Dual[T]) Dual[T] {
	return Dual[T]{
		value: x.value.Mul(y.value),
		deriv: x.deriv.Mul(y.value).Add(x.value.Mul(y.deriv)),
	}
}

// Div folds the quotient rule through the already-computed quotient:
// (x/y)' = (x' - (x/y)*y') / y.
func (x Dual[T]) Div(y Dual[T]) Dual[T] {
	value := x.value.Div(y.value)
	return Dual[T]{
		value: value,
		deriv: x.deriv.Sub(value.Mul(y.deriv)).Div(y.value),
	}
}

func (x Dual[T]) Neg() Dual[T] {
	return Dual[T]{value: x.value.Neg(), deriv: x.deriv.Neg()}
}

func (x Dual[T]) IsZero() bool { return x.value.IsZero() && x.deriv.IsZero() }
func (x Dual[T]) Equal(y Dual[T]) bool {
	return x.value.Equal(y.value) && x.deriv.Equal(y.deriv)
}
func (x Dual[T]) IsNaN() bool { return x.value.IsNaN() || x.deriv.IsNaN() }
func (x Dual[T]) IsInf() bool { return x.value.IsInf() || x.deriv.IsInf() }

func (x Dual[T]) Exp() Dual[T] {
	e := x.value.Exp()
	return x.chain(e, e)
}

func (x Dual[T]) Exp2() Dual[T] {
	e := x.value.Exp2()
	return x.chain(e, e.Mul(num.FromFloat64[T](math.Ln2)))
}

func (x Dual[T]) Exp10() Dual[T] {
	e := x.value.Exp10()
	return x.chain(e, e.Mul(num.FromFloat64[T](math.Ln10)))
}

func (x Dual[T]) Log() Dual[T] {
	return x.chain(x.value.Log(), num.One[T]().Div(x.value))
}

func (x Dual[T]) Log2() Dual[T] {
	slope := num.One[T]().Div(x.value.Mul(num.FromFloat64[T](math.Ln2)))
	return x.chain(x.value.Log2(), slope)
}

func (x Dual[T]) Log10() Dual[T] {
	slope := num.One[T]().Div(x.value.Mul(num.FromFloat64[T](math.Ln10)))
	return x.chain(x.value.Log10(), slope)
}

// Pow applies d(x^y) = y*x^(y-1)*dx + x^y*ln(x)*dy. The logarithm term is
// skipped when y has no derivative part, so a constant exponent over a
// negative base stays NaN-free exactly like a plain power.
func (x Dual[T]) Pow(y Dual[T]) Dual[T] {
	value := x.value.Pow(y.value)
	deriv := y.value.Mul(x.value.Pow(y.value.Sub(num.One[T]()))).Mul(x.deriv)
	if !y.deriv.IsZero() {
		deriv = deriv.Add(value.Mul(x.value.Log()).Mul(y.deriv))
	}
	return Dual[T]{value: value, deriv: deriv}
}

func (x Dual[T]) Sqrt() Dual[T] {
	s := x.value.Sqrt()
	return x.chain(s, num.FromFloat64[T](0.5).Div(s))
}

func (x Dual[T]) Cbrt() Dual[T] {
	c := x.value.Cbrt()
	return x.chain(c, num.One[T]().Div(num.FromFloat64[T](3).Mul(c).Mul(c)))
}

func (x Dual[T]) Sin() Dual[T] { return x.chain(x.value.Sin(), x.value.Cos()) }
func (x Dual[T]) Cos() Dual[T] { return x.chain(x.value.Cos(), x.value.Sin().Neg()) }

func (x Dual[T]) Tan() Dual[T] {
	tan := x.value.Tan()
	return x.chain(tan, num.One[T]().Add(tan.Mul(tan)))
}

func (x Dual[T]) Asin() Dual[T] {
	one := num.One[T]()
	return x.chain(x.value.Asin(), one.Div(one.Sub(x.value.Mul(x.value)).Sqrt()))
}

func (x Dual[T]) Acos() Dual[T] {
	one := num.One[T]()
	return x.chain(x.value.Acos(), one.Div(one.Sub(x.value.Mul(x.value)).Sqrt()).Neg())
}

func (x Dual[T]) Atan() Dual[T] {
	one := num.One[T]()
	return x.chain(x.value.Atan(), one.Div(one.Add(x.value.Mul(x.value))))
}

func (x Dual[T]) Sinh() Dual[T] { return x.chain(x.value.Sinh(), x.value.Cosh()) }
func (x Dual[T]) Cosh() Dual[T] { return x.chain(x.value.Cosh(), x.value.Sinh()) }

func (x Dual[T]) Tanh() Dual[T] {
	tanh := x.value.Tanh()
	return x.chain(tanh, num.One[T]().Sub(tanh.Mul(tanh)))
}

func (x Dual[T]) Asinh() Dual[T] {
	one := num.One[T]()
	return x.chain(x.value.Asinh(), one.Div(x.value.Mul(x.value).Add(one).Sqrt()))
}

func (x Dual[T]) Acosh() Dual[T] {
	one := num.One[T]()
	return x.chain(x.value.Acosh(), one.Div(x.value.Mul(x.value).Sub(one).Sqrt()))
}

func (x Dual[T]) Atanh() Dual[T] {
	one := num.One[T]()
	return x.chain(x.value.Atanh(), one.Div(one.Sub(x.value.Mul(x.value))))
}

// Mod differentiates the remainder away from its discontinuities:
// d(x mod y) = dx - trunc(x/y)*dy. It panics for non-real T.
func (x Dual[T]) Mod(y Dual[T]) Dual[T] {
	value := num.Mod(x.value, y.value)
	quot := num.Trunc(x.value.Div(y.value))
	return Dual[T]{value: value, deriv: x.deriv.Sub(quot.Mul(y.deriv))}
}

// Atan2 interprets the receiver as the ordinate, like num.Atan2. It panics
// for non-real T.
func (x Dual[T]) Atan2(abscissa Dual[T]) Dual[T] {
	value := num.Atan2(x.value, abscissa.value)
	norm := abscissa.value.Mul(abscissa.value).Add(x.value.Mul(x.value))
	deriv := abscissa.value.Mul(x.deriv).Sub(x.value.Mul(abscissa.deriv)).Div(norm)
	return Dual[T]{value: value, deriv: deriv}
}

// Trunc rounds the value toward zero. The result is locally constant, so
// the derivative part is zero. It panics for non-real T.
func (x Dual[T]) Trunc() Dual[T] {
	return Dual[T]{value: num.Trunc(x.value)}
}

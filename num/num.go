// Copyright 2026 The Wengert Authors. SPDX-License-Identifier: Apache-2.0

// Package num defines the generic numeric tower used by the tape and dual
// automatic-differentiation engines.
//
// The center of the package is the Floating interface, a self-referential
// method-set constraint ("T has arithmetic and elementary functions that
// return T") that lets the same derivative formulas serve every number
// representation. Three implementations are provided:
//
//   - Real: IEEE 754 double precision, the workhorse type.
//   - Real16: IEEE 754 half precision, backed by github.com/x448/float16 and
//     computed through float64.
//   - Complex: complex128 with principal-branch elementary functions, for
//     differentiation of holomorphic expressions.
//
// Operations that are only meaningful on the real line (remainder,
// two-argument arctangent, truncation) live on the RealFloating sub-trait.
// Generic code reaches them through the package-level Mod, Atan2 and Trunc
// functions, which panic for types outside the sub-trait, in the same spirit
// as invalid-dtype panics elsewhere in the module.
//
// Implementations must be value types whose zero value is their additive
// identity: the accumulation buffers in the tape engine rely on Go's
// zero-initialization to mean "zero adjoint".
package num

import "github.com/pkg/errors"

// Algebraic is the basic arithmetic constraint: a value type closed under
// the four field operations and negation, with distinguished zero and one.
//
// The type parameter is the implementing type itself, e.g.
// "type Real float64" satisfies Algebraic[Real].
type Algebraic[T any] interface {
	// Zero and One return the additive and multiplicative identities.
	// They ignore the receiver value, so they are callable on a zero T.
	Zero() T
	One() T

	// FromFloat64 builds a T from a float64, ignoring the receiver value.
	// For complex types the imaginary part is zero.
	FromFloat64(v float64) T

	Add(y T) T
	Sub(y T) T
	Mul(y T) T
	Div(y T) T
	Neg() T

	// IsZero reports whether the value is the additive identity.
	IsZero() bool

	// Equal reports exact (not approximate) equality.
	Equal(y T) bool
}

// Floating extends Algebraic with the elementary transcendental functions
// the differentiation engines take derivatives of. Log is the natural
// logarithm. Complex implementations use principal branches throughout.
type Floating[T any] interface {
	Algebraic[T]

	// IsNaN and IsInf report non-finite values. For complex types they
	// report true when either component qualifies.
	IsNaN() bool
	IsInf() bool

	Exp() T
	Exp2() T
	Exp10() T
	Log() T
	Log2() T
	Log10() T
	Pow(y T) T
	Sqrt() T
	Cbrt() T
	Sin() T
	Cos() T
	Tan() T
	Asin() T
	Acos() T
	Atan() T
	Sinh() T
	Cosh() T
	Tanh() T
	Asinh() T
	Acosh() T
	Atanh() T
}

// RealFloating adds the operations that have no principal-branch extension
// off the real line. Real and Real16 implement it; Complex does not.
type RealFloating[T any] interface {
	Floating[T]

	// Mod returns the remainder of the receiver divided by y, with the
	// sign of the receiver (math.Mod semantics).
	Mod(y T) T

	// Atan2 interprets the receiver as the ordinate: y.Atan2(x) is the
	// angle of the point (x, y).
	Atan2(abscissa T) T

	// Trunc rounds toward zero.
	Trunc() T
}

// Zero returns the additive identity of T.
func Zero[T Algebraic[T]]() T {
	var z T
	return z.Zero()
}

// One returns the multiplicative identity of T.
func One[T Algebraic[T]]() T {
	var z T
	return z.One()
}

// FromFloat64 builds a T from a float64 value.
func FromFloat64[T Algebraic[T]](v float64) T {
	var z T
	return z.FromFloat64(v)
}

// Mod returns x mod y for real types and panics for types that do not
// implement RealFloating.
func Mod[T Floating[T]](x, y T) T {
	if xr, ok := any(x).(RealFloating[T]); ok {
		return xr.Mod(y)
	}
	panic(errors.Errorf("num: Mod is not defined for %T", x))
}

// Atan2 returns the angle of the point (x, y) for real types and panics for
// types that do not implement RealFloating.
func Atan2[T Floating[T]](y, x T) T {
	if yr, ok := any(y).(RealFloating[T]); ok {
		return yr.Atan2(x)
	}
	panic(errors.Errorf("num: Atan2 is not defined for %T", y))
}

// Trunc returns x rounded toward zero for real types and panics for types
// that do not implement RealFloating.
func Trunc[T Floating[T]](x T) T {
	if xr, ok := any(x).(RealFloating[T]); ok {
		return xr.Trunc()
	}
	panic(errors.Errorf("num: Trunc is not defined for %T", x))
}

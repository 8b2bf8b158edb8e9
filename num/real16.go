// Copyright 2026 The Wengert Authors. SPDX-License-Identifier: Apache-2.0

package num

import (
	"math"

	"github.com/x448/float16"
)

// Real16 is an IEEE 754 half-precision float satisfying
// RealFloating[Real16]. Storage is the 16-bit pattern of
// github.com/x448/float16; arithmetic and elementary functions convert to
// float64, compute there, and round the result back to half precision.
// With 10 bits of significand, expect roughly three decimal digits.
type Real16 float16.Float16

var _ RealFloating[Real16] = Real16(0)

// FromFloat32 rounds a float32 to half precision.
func FromFloat32(v float32) Real16 { return Real16(float16.Fromfloat32(v)) }

// Float32 returns the exactly-representable float32 value of x.
func (x Real16) Float32() float32 { return float16.Float16(x).Float32() }

func (x Real16) f64() float64 { return float64(float16.Float16(x).Float32()) }

func real16FromF64(v float64) Real16 {
	return Real16(float16.Fromfloat32(float32(v)))
}

func (x Real16) String() string { return float16.Float16(x).String() }

func (x Real16) Zero() Real16                 { return Real16(0) }
func (x Real16) One() Real16                  { return real16FromF64(1) }
func (x Real16) FromFloat64(v float64) Real16 { return real16FromF64(v) }

func (x Real16) Add(y Real16) Real16 { return real16FromF64(x.f64() + y.f64()) }
func (x Real16) Sub(y Real16) Real16 { return real16FromF64(x.f64() - y.f64()) }
func (x Real16) Mul(y Real16) Real16 { return real16FromF64(x.f64() * y.f64()) }
func (x Real16) Div(y Real16) Real16 { return real16FromF64(x.f64() / y.f64()) }
func (x Real16) Neg() Real16         { return real16FromF64(-x.f64()) }

func (x Real16) IsZero() bool        { return x.f64() == 0 }
func (x Real16) Equal(y Real16) bool { return x.f64() == y.f64() }
func (x Real16) IsNaN() bool         { return float16.Float16(x).IsNaN() }
func (x Real16) IsInf() bool         { return float16.Float16(x).IsInf(0) }

func (x Real16) Exp() Real16   { return real16FromF64(math.Exp(x.f64())) }
func (x Real16) Exp2() Real16  { return real16FromF64(math.Exp2(x.f64())) }
func (x Real16) Exp10() Real16 { return real16FromF64(math.Pow(10, x.f64())) }
func (x Real16) Log() Real16   { return real16FromF64(math.Log(x.f64())) }
func (x Real16) Log2() Real16  { return real16FromF64(math.Log2(x.f64())) }
func (x Real16) Log10() Real16 { return real16FromF64(math.Log10(x.f64())) }

func (x Real16) Pow(y Real16) Real16 { return real16FromF64(math.Pow(x.f64(), y.f64())) }
func (x Real16) Sqrt() Real16        { return real16FromF64(math.Sqrt(x.f64())) }
func (x Real16) Cbrt() Real16        { return real16FromF64(math.Cbrt(x.f64())) }

func (x Real16) Sin() Real16   { return real16FromF64(math.Sin(x.f64())) }
func (x Real16) Cos() Real16   { return real16FromF64(math.Cos(x.f64())) }
func (x Real16) Tan() Real16   { return real16FromF64(math.Tan(x.f64())) }
func (x Real16) Asin() Real16  { return real16FromF64(math.Asin(x.f64())) }
func (x Real16) Acos() Real16  { return real16FromF64(math.Acos(x.f64())) }
func (x Real16) Atan() Real16  { return real16FromF64(math.Atan(x.f64())) }
func (x Real16) Sinh() Real16  { return real16FromF64(math.Sinh(x.f64())) }
func (x Real16) Cosh() Real16  { return real16FromF64(math.Cosh(x.f64())) }
func (x Real16) Tanh() Real16  { return real16FromF64(math.Tanh(x.f64())) }
func (x Real16) Asinh() Real16 { return real16FromF64(math.Asinh(x.f64())) }
func (x Real16) Acosh() Real16 { return real16FromF64(math.Acosh(x.f64())) }
func (x Real16) Atanh() Real16 { return real16FromF64(math.Atanh(x.f64())) }

func (x Real16) Mod(y Real16) Real16 { return real16FromF64(math.Mod(x.f64(), y.f64())) }
func (x Real16) Trunc() Real16       { return real16FromF64(math.Trunc(x.f64())) }

func (x Real16) Atan2(abscissa Real16) Real16 {
	return real16FromF64(math.Atan2(x.f64(), abscissa.f64()))
}

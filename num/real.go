package num

import "math"

// Real is a float64 satisfying RealFloating[Real]. Conversions to and from
// float64 are ordinary Go conversions: Real(2.5), float64(x).
type Real float64

// Compile-time check that Real satisfies the full real trait.
var _ RealFloating[Real] = Real(0)

func (x Real) Zero() Real                 { return 0 }
func (x Real) One() Real                  { return 1 }
func (x Real) FromFloat64(v float64) Real { return Real(v) }

func (x Real) Add(y Real) Real { return x + y }
func (x Real) Sub(y Real) Real { return x - y }
func (x Real) Mul(y Real) Real { return x * y }
func (x Real) Div(y Real) Real { return x / y }
func (x Real) Neg() Real       { return -x }

func (x Real) IsZero() bool      { return x == 0 }
func (x Real) Equal(y Real) bool { return x == y }
func (x Real) IsNaN() bool       { return math.IsNaN(float64(x)) }
func (x Real) IsInf() bool       { return math.IsInf(float64(x), 0) }

func (x Real) Exp() Real   { return Real(math.Exp(float64(x))) }
func (x Real) Exp2() Real  { return Real(math.Exp2(float64(x))) }
func (x Real) Exp10() Real { return Real(math.Pow(10, float64(x))) }
func (x Real) Log() Real   { return Real(math.Log(float64(x))) }
func (x Real) Log2() Real  { return Real(math.Log2(float64(x))) }
func (x Real) Log10() Real { return Real(math.Log10(float64(x))) }

func (x Real) Pow(y Real) Real { return Real(math.Pow(float64(x), float64(y))) }
func (x Real) Sqrt() Real      { return Real(math.Sqrt(float64(x))) }
func (x Real) Cbrt() Real      { return Real(math.Cbrt(float64(x))) }

func (x Real) Sin() Real   { return Real(math.Sin(float64(x))) }
func (x Real) Cos() Real   { return Real(math.Cos(float64(x))) }
func (x Real) Tan() Real   { return Real(math.Tan(float64(x))) }
func (x Real) Asin() Real  { return Real(math.Asin(float64(x))) }
func (x Real) Acos() Real  { return Real(math.Acos(float64(x))) }
func (x Real) Atan() Real  { return Real(math.Atan(float64(x))) }
func (x Real) Sinh() Real  { return Real(math.Sinh(float64(x))) }
func (x Real) Cosh() Real  { return Real(math.Cosh(float64(x))) }
func (x Real) Tanh() Real  { return Real(math.Tanh(float64(x))) }
func (x Real) Asinh() Real { return Real(math.Asinh(float64(x))) }
func (x Real) Acosh() Real { return Real(math.Acosh(float64(x))) }
func (x Real) Atanh() Real { return Real(math.Atanh(float64(x))) }

func (x Real) Mod(y Real) Real { return Real(math.Mod(float64(x), float64(y))) }
func (x Real) Trunc() Real     { return Real(math.Trunc(float64(x))) }

func (x Real) Atan2(abscissa Real) Real {
	return Real(math.Atan2(float64(x), float64(abscissa)))
}

package num

import (
	"math"
	"math/cmplx"
)

// Complex is a complex128 satisfying Floating[Complex]. All multi-valued
// functions (Log, Pow, Sqrt, Cbrt, the inverse trigonometric and hyperbolic
// family) use the principal branch of math/cmplx, so derivatives obtained
// from it are the derivatives of the principal branch.
//
// Complex intentionally does not satisfy RealFloating: remainder,
// truncation and two-argument arctangent have no principal-branch
// extension, and num.Mod / num.Atan2 / num.Trunc panic for it.
type Complex complex128

var _ Floating[Complex] = Complex(0)

// NewComplex builds a Complex from Cartesian components.
func NewComplex(re, im float64) Complex { return Complex(complex(re, im)) }

// FromPolar builds a Complex from a magnitude and a phase in radians.
func FromPolar(magnitude, phase float64) Complex {
	return Complex(cmplx.Rect(magnitude, phase))
}

// Real returns the real component.
func (z Complex) Real() float64 { return real(complex128(z)) }

// Imag returns the imaginary component.
func (z Complex) Imag() float64 { return imag(complex128(z)) }

// Conj returns the complex conjugate.
func (z Complex) Conj() Complex { return Complex(cmplx.Conj(complex128(z))) }

// Magnitude returns |z|.
func (z Complex) Magnitude() float64 { return cmplx.Abs(complex128(z)) }

// Phase returns the argument of z in (-π, π].
func (z Complex) Phase() float64 { return cmplx.Phase(complex128(z)) }

// Reciprocal returns 1/z.
func (z Complex) Reciprocal() Complex { return 1 / z }

func (z Complex) Zero() Complex                 { return 0 }
func (z Complex) One() Complex                  { return 1 }
func (z Complex) FromFloat64(v float64) Complex { return Complex(complex(v, 0)) }

func (z Complex) Add(y Complex) Complex { return z + y }
func (z Complex) Sub(y Complex) Complex { return z - y }
func (z Complex) Mul(y Complex) Complex { return z * y }
func (z Complex) Div(y Complex) Complex { return z / y }
func (z Complex) Neg() Complex          { return -z }

func (z Complex) IsZero() bool         { return z == 0 }
func (z Complex) Equal(y Complex) bool { return z == y }
func (z Complex) IsNaN() bool          { return cmplx.IsNaN(complex128(z)) }
func (z Complex) IsInf() bool          { return cmplx.IsInf(complex128(z)) }

func (z Complex) Exp() Complex { return Complex(cmplx.Exp(complex128(z))) }
func (z Complex) Exp2() Complex {
	return Complex(cmplx.Exp(complex128(z) * complex(math.Ln2, 0)))
}
func (z Complex) Exp10() Complex {
	return Complex(cmplx.Exp(complex128(z) * complex(math.Log(10), 0)))
}
func (z Complex) Log() Complex { return Complex(cmplx.Log(complex128(z))) }
func (z Complex) Log2() Complex {
	return Complex(cmplx.Log(complex128(z)) / complex(math.Ln2, 0))
}
func (z Complex) Log10() Complex { return Complex(cmplx.Log10(complex128(z))) }

func (z Complex) Pow(y Complex) Complex {
	return Complex(cmplx.Pow(complex128(z), complex128(y)))
}
func (z Complex) Sqrt() Complex { return Complex(cmplx.Sqrt(complex128(z))) }
func (z Complex) Cbrt() Complex {
	return Complex(cmplx.Pow(complex128(z), complex(1.0/3.0, 0)))
}

func (z Complex) Sin() Complex   { return Complex(cmplx.Sin(complex128(z))) }
func (z Complex) Cos() Complex   { return Complex(cmplx.Cos(complex128(z))) }
func (z Complex) Tan() Complex   { return Complex(cmplx.Tan(complex128(z))) }
func (z Complex) Asin() Complex  { return Complex(cmplx.Asin(complex128(z))) }
func (z Complex) Acos() Complex  { return Complex(cmplx.Acos(complex128(z))) }
func (z Complex) Atan() Complex  { return Complex(cmplx.Atan(complex128(z))) }
func (z Complex) Sinh() Complex  { return Complex(cmplx.Sinh(complex128(z))) }
func (z Complex) Cosh() Complex  { return Complex(cmplx.Cosh(complex128(z))) }
func (z Complex) Tanh() Complex  { return Complex(cmplx.Tanh(complex128(z))) }
func (z Complex) Asinh() Complex { return Complex(cmplx.Asinh(complex128(z))) }
func (z Complex) Acosh() Complex { return Complex(cmplx.Acosh(complex128(z))) }
func (z Complex) Atanh() Complex { return Complex(cmplx.Atanh(complex128(z))) }

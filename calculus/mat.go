package calculus

import (
	"gonum.org/v1/gonum/mat"

	"github.com/wengert/wengert/num"
)

// The adapters below bridge double-precision fields to gonum matrices so
// results plug directly into its linear algebra. They discard the primal
// values; use Gradient, Jacobian or Hessian directly when those are
// needed as well.

func reals(xs []float64) []num.Real {
	out := make([]num.Real, len(xs))
	for i, x := range xs {
		out[i] = num.Real(x)
	}
	return out
}

func floats(xs []num.Real) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

// GradientVec returns the gradient of f at the given point as a dense
// vector.
func GradientVec(f ScalarField[num.Real], at []float64) (*mat.VecDense, error) {
	_, grad, err := Gradient(f, reals(at))
	if err != nil {
		return nil, err
	}
	return mat.NewVecDense(len(grad), floats(grad)), nil
}

// JacobianMat returns the Jacobian of f at the given point as a dense
// matrix with one row per field component.
func JacobianMat(f VectorField[num.Real], at []float64) (*mat.Dense, error) {
	_, jac, err := Jacobian(f, reals(at))
	if err != nil {
		return nil, err
	}
	rows, cols := len(jac), len(jac[0])
	data := make([]float64, 0, rows*cols)
	for _, row := range jac {
		data = append(data, floats(row)...)
	}
	return mat.NewDense(rows, cols, data), nil
}

// HessianSym returns the Hessian of f at the given point as a symmetric
// matrix.
func HessianSym(f ScalarField[num.Real], at []float64) (*mat.SymDense, error) {
	_, _, hess, err := Hessian(f, reals(at))
	if err != nil {
		return nil, err
	}
	n := len(hess)
	data := make([]float64, 0, n*n)
	for _, row := range hess {
		data = append(data, floats(row)...)
	}
	return mat.NewSymDense(n, data), nil
}

// Copyright 2026 The Wengert Authors. SPDX-License-Identifier: Apache-2.0

// Package calculus computes gradients, Jacobians, Hessians and the common
// vector-calculus operators of fields expressed as tape programs.
//
// A field is a function that builds its expression on a caller-supplied
// tape: the same field definition therefore serves first-order
// accumulation on a GradientTape and edge-pushing second-order
// accumulation on a HessianTape. Every operator in this package records
// the field once and then runs one backward sweep per requested
// derivative row, which is the economical direction when fields have few
// outputs and many inputs.
//
// Dimension mismatches and fields that produce no output are programming
// errors and panic; conditions that depend on runtime values, like an
// empty input vector, are returned as errors.
package calculus

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/wengert/wengert/internal/sweeppool"
	"github.com/wengert/wengert/num"
	"github.com/wengert/wengert/tape"
)

// Backward sweeps never write to the recording, so the per-row sweeps of
// Jacobian and VJP share one bounded pool.
var sweeps = sweeppool.New()

// ScalarField builds a scalar expression from the given variables on t.
type ScalarField[T num.Floating[T]] func(t tape.Tape[T], xs []tape.Variable[T]) tape.Variable[T]

// VectorField builds one expression per output component from the given
// variables on t.
type VectorField[T num.Floating[T]] func(t tape.Tape[T], xs []tape.Variable[T]) []tape.Variable[T]

func variables[T num.Floating[T]](t tape.Tape[T], at []T) []tape.Variable[T] {
	xs := make([]tape.Variable[T], len(at))
	for i, v := range at {
		xs[i] = t.CreateVariable(v)
	}
	return xs
}

// gradientRow accumulates seed * d(out)/d(inputs). A field component that
// returns an input unchanged has no operation node to sweep from; its row
// is the scaled standard basis vector.
func gradientRow[T num.Floating[T]](t tape.Tape[T], out tape.Variable[T], seed T) ([]T, error) {
	if out.Index() < t.VariableCount() {
		row := make([]T, t.VariableCount())
		row[out.Index()] = seed
		return row, nil
	}
	return t.ReverseAccumulateAt(out.Index(), seed)
}

// Value evaluates f at the given point without recording anything: the
// field runs against a non-recording tape and only primal values flow.
func Value[T num.Floating[T]](f ScalarField[T], at []T) T {
	t := tape.NewGradientTape[T]()
	t.StopRecording()
	return f(t, variables(t, at)).Value()
}

// Gradient returns f(at) and its gradient with respect to every input, in
// input order.
func Gradient[T num.Floating[T]](f ScalarField[T], at []T) (T, []T, error) {
	t := tape.NewGradientTape[T](2 * len(at))
	out := f(t, variables(t, at))
	grad, err := gradientRow(t, out, num.One[T]())
	if err != nil {
		return out.Value(), nil, errors.WithMessage(err, "calculus.Gradient")
	}
	return out.Value(), grad, nil
}

// Jacobian returns the component values of f at the given point and the
// Jacobian matrix J with J[i][j] = d f_i / d x_j. The field is recorded
// once; each row costs one backward sweep, and rows sweep concurrently
// when there is more than one component.
func Jacobian[T num.Floating[T]](f VectorField[T], at []T) ([]T, [][]T, error) {
	t := tape.NewGradientTape[T](2 * len(at))
	outs := f(t, variables(t, at))
	if len(outs) == 0 {
		exceptions.Panicf("calculus: vector field produced no components")
	}
	values := make([]T, len(outs))
	jac := make([][]T, len(outs))
	errs := make([]error, len(outs))
	sweeps.Run(len(outs), func(i int) {
		values[i] = outs[i].Value()
		jac[i], errs[i] = gradientRow(t, outs[i], num.One[T]())
	})
	for i, err := range errs {
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "calculus.Jacobian row %d", i)
		}
	}
	return values, jac, nil
}

// Hessian returns f(at), its gradient and its Hessian, computed in a
// single edge-pushing sweep on a second-order tape.
func Hessian[T num.Floating[T]](f ScalarField[T], at []T) (T, []T, [][]T, error) {
	t := tape.NewHessianTape[T](2 * len(at))
	out := f(t, variables(t, at))
	grad, hess, err := HessianOf[T](t, out)
	if err != nil {
		return out.Value(), nil, nil, errors.WithMessage(err, "calculus.Hessian")
	}
	return out.Value(), grad, hess, nil
}

// HessianOf extracts the gradient and Hessian of out from an
// already-recorded tape. The tape must have been built with second-order
// partials: passing one that only records first derivatives is a
// programming error and panics.
func HessianOf[T num.Floating[T]](t tape.Tape[T], out tape.Variable[T]) ([]T, [][]T, error) {
	so, ok := t.(tape.SecondOrder[T])
	if !ok {
		exceptions.Panicf("calculus: %T cannot accumulate second derivatives", t)
	}
	if out.Index() < t.VariableCount() {
		n := t.VariableCount()
		grad := make([]T, n)
		grad[out.Index()] = num.One[T]()
		hess := make([][]T, n)
		for i := range hess {
			hess[i] = make([]T, n)
		}
		return grad, hess, nil
	}
	return so.ReverseAccumulateHessianAt(out.Index(), num.One[T]())
}

// DirectionalDerivative returns the derivative of f at the given point
// along dir, the dot product of the gradient with the direction.
func DirectionalDerivative[T num.Floating[T]](f ScalarField[T], at, dir []T) (T, error) {
	if len(dir) != len(at) {
		exceptions.Panicf("calculus: direction has %d components for %d inputs", len(dir), len(at))
	}
	_, grad, err := Gradient(f, at)
	if err != nil {
		return num.Zero[T](), err
	}
	return dot(grad, dir), nil
}

// JVP returns the Jacobian-vector product J*dir, the first-order response
// of every component of f to a step along dir.
func JVP[T num.Floating[T]](f VectorField[T], at, dir []T) ([]T, error) {
	if len(dir) != len(at) {
		exceptions.Panicf("calculus: direction has %d components for %d inputs", len(dir), len(at))
	}
	_, jac, err := Jacobian(f, at)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(jac))
	for i, row := range jac {
		out[i] = dot(row, dir)
	}
	return out, nil
}

// VJP returns the vector-Jacobian product w^T * J. Each component's sweep
// is seeded directly with its weight, so no row is materialized at unit
// scale first; components with a zero weight are skipped. Rows sweep
// concurrently and combine in component order, keeping the result
// deterministic.
func VJP[T num.Floating[T]](f VectorField[T], at, w []T) ([]T, error) {
	t := tape.NewGradientTape[T](2 * len(at))
	outs := f(t, variables(t, at))
	if len(outs) == 0 {
		exceptions.Panicf("calculus: vector field produced no components")
	}
	if len(w) != len(outs) {
		exceptions.Panicf("calculus: weight vector has %d components for %d outputs", len(w), len(outs))
	}
	rows := make([][]T, len(outs))
	errs := make([]error, len(outs))
	sweeps.Run(len(outs), func(i int) {
		if w[i].IsZero() {
			return
		}
		rows[i], errs[i] = gradientRow(t, outs[i], w[i])
	})
	sum := make([]T, t.VariableCount())
	for i, row := range rows {
		if errs[i] != nil {
			return nil, errors.WithMessagef(errs[i], "calculus.VJP component %d", i)
		}
		for j, r := range row {
			sum[j] = sum[j].Add(r)
		}
	}
	return sum, nil
}

// Divergence returns the trace of the Jacobian of f, which must have as
// many components as inputs.
func Divergence[T num.Floating[T]](f VectorField[T], at []T) (T, error) {
	_, jac, err := Jacobian(f, at)
	if err != nil {
		return num.Zero[T](), err
	}
	if len(jac) != len(at) {
		exceptions.Panicf("calculus: divergence needs a square Jacobian, got %d components for %d inputs",
			len(jac), len(at))
	}
	div := num.Zero[T]()
	for i := range jac {
		div = div.Add(jac[i][i])
	}
	return div, nil
}

// Curl returns the curl of a three-dimensional vector field at the given
// point.
func Curl[T num.Floating[T]](f VectorField[T], at []T) ([]T, error) {
	if len(at) != 3 {
		exceptions.Panicf("calculus: curl is defined for 3 inputs, got %d", len(at))
	}
	_, jac, err := Jacobian(f, at)
	if err != nil {
		return nil, err
	}
	if len(jac) != 3 {
		exceptions.Panicf("calculus: curl is defined for 3 components, got %d", len(jac))
	}
	return []T{
		jac[2][1].Sub(jac[1][2]),
		jac[0][2].Sub(jac[2][0]),
		jac[1][0].Sub(jac[0][1]),
	}, nil
}

// Laplacian returns the trace of the Hessian of f.
func Laplacian[T num.Floating[T]](f ScalarField[T], at []T) (T, error) {
	_, _, hess, err := Hessian(f, at)
	if err != nil {
		return num.Zero[T](), err
	}
	lap := num.Zero[T]()
	for i := range hess {
		lap = lap.Add(hess[i][i])
	}
	return lap, nil
}

func dot[T num.Floating[T]](a, b []T) T {
	s := num.Zero[T]()
	for i := range a {
		s = s.Add(a[i].Mul(b[i]))
	}
	return s
}

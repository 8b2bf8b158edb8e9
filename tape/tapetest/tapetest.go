// Copyright 2026 The Wengert Authors. SPDX-License-Identifier: Apache-2.0

// Package tapetest holds test utilities for packages that depend on the
// tape package: central finite-difference oracles for first and second
// derivatives, and helpers that build an expression on both tape kinds and
// compare every derivative the tapes produce against the oracle.
package tapetest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/constraints"

	"github.com/wengert/wengert/num"
	"github.com/wengert/wengert/tape"
)

// BuildFn builds the expression under test from the given root variables
// and returns the output variable to differentiate.
type BuildFn func(t tape.Tape[num.Real], xs []tape.Variable[num.Real]) tape.Variable[num.Real]

// Step sizes for central differences: cbrt(eps) for the first derivative,
// and the fourth root of eps for the second, where the truncation and
// round-off errors balance.
var (
	gradStep = math.Cbrt(machineEpsilon)
	hessStep = math.Sqrt(math.Sqrt(machineEpsilon))
)

const machineEpsilon = 0x1p-52

// CentralGradient approximates the gradient of f at x by central
// differences, (f(x+h) - f(x-h)) / 2h per coordinate. Expect roughly ten
// decimal digits for well-scaled f.
func CentralGradient[F constraints.Float](f func([]F) F, x []F) []F {
	h := F(gradStep)
	grad := make([]F, len(x))
	p := make([]F, len(x))
	copy(p, x)
	for i := range x {
		p[i] = x[i] + h
		plus := f(p)
		p[i] = x[i] - h
		minus := f(p)
		p[i] = x[i]
		grad[i] = (plus - minus) / (2 * h)
	}
	return grad
}

// CentralHessian approximates the Hessian of f at x by second-order
// central differences. Expect only four to six decimal digits; use a
// correspondingly loose tolerance.
func CentralHessian[F constraints.Float](f func([]F) F, x []F) [][]F {
	h := F(hessStep)
	n := len(x)
	hess := make([][]F, n)
	for i := range hess {
		hess[i] = make([]F, n)
	}
	p := make([]F, n)
	copy(p, x)
	center := f(p)
	for i := 0; i < n; i++ {
		p[i] = x[i] + h
		plus := f(p)
		p[i] = x[i] - h
		minus := f(p)
		p[i] = x[i]
		hess[i][i] = (plus - 2*center + minus) / (h * h)
		for j := i + 1; j < n; j++ {
			p[i], p[j] = x[i]+h, x[j]+h
			pp := f(p)
			p[j] = x[j] - h
			pm := f(p)
			p[i], p[j] = x[i]-h, x[j]+h
			mp := f(p)
			p[j] = x[j] - h
			mm := f(p)
			p[i], p[j] = x[i], x[j]
			v := (pp - pm - mp + mm) / (4 * h * h)
			hess[i][j] = v
			hess[j][i] = v
		}
	}
	return hess
}

// Variables creates one root variable per value, in order.
func Variables[T num.Floating[T]](t tape.Tape[T], values ...float64) []tape.Variable[T] {
	xs := make([]tape.Variable[T], len(values))
	for i, v := range values {
		xs[i] = t.CreateVariable(num.FromFloat64[T](v))
	}
	return xs
}

// Eval rebuilds the expression on a throwaway tape and returns its primal
// value, for feeding the finite-difference oracles.
func Eval(build BuildFn, at []float64) float64 {
	t := tape.NewGradientTape[num.Real](len(at) + 8)
	return float64(build(t, Variables(t, at...)).Value())
}

// CheckGradients builds the expression on a GradientTape and on a
// HessianTape at the given point and requires that both gradients match
// each other and the central-difference oracle within tol (relative for
// entries above one in magnitude, absolute below).
func CheckGradients(t *testing.T, name string, build BuildFn, at []float64, tol float64) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		gt := tape.NewGradientTape[num.Real]()
		out := build(gt, Variables(gt, at...))
		grad, err := gt.ReverseAccumulateAt(out.Index(), 1)
		require.NoErrorf(t, err, "%s: gradient accumulation failed", name)
		require.Len(t, grad, len(at))

		ht := tape.NewHessianTape[num.Real]()
		hOut := build(ht, Variables(ht, at...))
		hGrad, _, err := ht.ReverseAccumulateHessianAt(hOut.Index(), 1)
		require.NoErrorf(t, err, "%s: Hessian-tape accumulation failed", name)

		want := CentralGradient(func(v []float64) float64 { return Eval(build, v) }, at)
		for i := range at {
			requireClose(t, want[i], float64(grad[i]), tol,
				"%s: gradient[%d]", name, i)
			requireClose(t, float64(grad[i]), float64(hGrad[i]), 1e-12,
				"%s: HessianTape gradient[%d] diverges from GradientTape", name, i)
		}
	})
}

// CheckHessian builds the expression on a HessianTape at the given point
// and requires that the edge-pushing Hessian is exactly symmetric and
// matches the central-difference oracle within tol. The second-order
// oracle is noisy; tolerances below 1e-5 are optimistic.
func CheckHessian(t *testing.T, name string, build BuildFn, at []float64, tol float64) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		ht := tape.NewHessianTape[num.Real]()
		out := build(ht, Variables(ht, at...))
		_, hess, err := ht.ReverseAccumulateHessianAt(out.Index(), 1)
		require.NoErrorf(t, err, "%s: Hessian accumulation failed", name)
		require.Len(t, hess, len(at))

		for i := range hess {
			for j := range hess[i] {
				require.Equalf(t, hess[i][j], hess[j][i],
					"%s: Hessian not symmetric at (%d,%d)", name, i, j)
			}
		}

		want := CentralHessian(func(v []float64) float64 { return Eval(build, v) }, at)
		for i := range want {
			for j := range want[i] {
				requireClose(t, want[i][j], float64(hess[i][j]), tol,
					"%s: Hessian[%d][%d]", name, i, j)
			}
		}
	})
}

// requireClose compares within tol scaled by the magnitude of want, so the
// tolerance reads as relative for large values and absolute near zero.
func requireClose(t *testing.T, want, got, tol float64, format string, args ...any) {
	t.Helper()
	delta := tol * math.Max(1, math.Abs(want))
	require.InDeltaf(t, want, got, delta, format, args...)
}

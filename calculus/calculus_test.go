package calculus_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/wengert/wengert/calculus"
	"github.com/wengert/wengert/num"
	"github.com/wengert/wengert/tape"
)

type tapeOps = tape.Tape[num.Real]
type v = tape.Variable[num.Real]

func realVec(xs ...float64) []num.Real {
	out := make([]num.Real, len(xs))
	for i, x := range xs {
		out[i] = num.Real(x)
	}
	return out
}

// (x-1)^2 + 100*(y-x^2)^2, the banana valley.
func rosenbrockField(t tapeOps, xs []v) v {
	d := t.SubScalar(xs[0], 1)
	q := t.Sub(xs[1], t.Mul(xs[0], xs[0]))
	return t.Add(t.Mul(d, d), t.MulScalar(t.Mul(q, q), 100))
}

func rosenbrockFloat(x []float64) float64 {
	d := x[0] - 1
	q := x[1] - x[0]*x[0]
	return d*d + 100*q*q
}

func expQuotientField(t tapeOps, xs []v) v {
	return t.Add(t.Exp(t.Mul(t.Sin(xs[0]), xs[1])), t.Div(xs[0], xs[1]))
}

func expQuotientFloat(x []float64) float64 {
	return math.Exp(math.Sin(x[0])*x[1]) + x[0]/x[1]
}

// log(x^2+y^2) is harmonic away from the origin.
func logNormField(t tapeOps, xs []v) v {
	return t.Log(t.Add(t.Mul(xs[0], xs[0]), t.Mul(xs[1], xs[1])))
}

func logNormFloat(x []float64) float64 {
	return math.Log(x[0]*x[0] + x[1]*x[1])
}

func sphereField(t tapeOps, xs []v) v {
	out := t.Mul(xs[0], xs[0])
	for _, x := range xs[1:] {
		out = t.Add(out, t.Mul(x, x))
	}
	return out
}

// x^2 + 3xy + 2y^2, Hessian [[2,3],[3,4]].
func quadraticField(t tapeOps, xs []v) v {
	x, y := xs[0], xs[1]
	return t.Add(
		t.Add(t.Mul(x, x), t.MulScalar(t.Mul(x, y), 3)),
		t.MulScalar(t.Mul(y, y), 2),
	)
}

// (x+y, x*y, x-y).
func linearProductField(t tapeOps, xs []v) []v {
	x, y := xs[0], xs[1]
	return []v{t.Add(x, y), t.Mul(x, y), t.Sub(x, y)}
}

func linearProductFloat(y, x []float64) {
	y[0] = x[0] + x[1]
	y[1] = x[0] * x[1]
	y[2] = x[0] - x[1]
}

// (x^2 y, y^2 z, z^2 x): div = 2(xy+yz+zx), curl = (-y^2, -z^2, -x^2).
func swirlField(t tapeOps, xs []v) []v {
	x, y, z := xs[0], xs[1], xs[2]
	return []v{
		t.Mul(t.Mul(x, x), y),
		t.Mul(t.Mul(y, y), z),
		t.Mul(t.Mul(z, z), x),
	}
}

func TestValue(t *testing.T) {
	at := []float64{1.2, 1.0}
	got := calculus.Value(rosenbrockField, realVec(at...))
	require.InDeltaf(t, rosenbrockFloat(at), float64(got), 1e-12, "got %v", got)
}

func TestGradientRosenbrock(t *testing.T) {
	value, grad, err := calculus.Gradient(rosenbrockField, realVec(-1.2, 1))
	require.NoError(t, err)
	require.Len(t, grad, 2)
	require.InDelta(t, 24.2, float64(value), 1e-12)
	require.InDelta(t, -215.6, float64(grad[0]), 1e-9)
	require.InDelta(t, -88.0, float64(grad[1]), 1e-9)
}

func TestGradientMatchesFiniteDifference(t *testing.T) {
	cases := []struct {
		name  string
		field calculus.ScalarField[num.Real]
		plain func([]float64) float64
		at    []float64
	}{
		{"rosenbrock", rosenbrockField, rosenbrockFloat, []float64{-1.2, 1}},
		{"expQuotient", expQuotientField, expQuotientFloat, []float64{0.7, 1.9}},
		{"logNorm", logNormField, logNormFloat, []float64{1.2, -0.8}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			value, grad, err := calculus.Gradient(c.field, realVec(c.at...))
			require.NoError(t, err)
			require.InDelta(t, c.plain(c.at), float64(value), 1e-12)

			want := make([]float64, len(c.at))
			fd.Gradient(want, c.plain, c.at, &fd.Settings{Formula: fd.Central})
			for i := range want {
				require.InDeltaf(t, want[i], float64(grad[i]), 1e-6, "component %d", i)
			}
		})
	}
}

func TestJacobianClosedForm(t *testing.T) {
	values, jac, err := calculus.Jacobian(linearProductField, realVec(3, 4))
	require.NoError(t, err)
	require.Equal(t, []num.Real{7, 12, -1}, values)
	require.Equal(t, [][]num.Real{{1, 1}, {4, 3}, {1, -1}}, jac)

	at := []float64{0.7, 1.9}
	_, jac, err = calculus.Jacobian(linearProductField, realVec(at...))
	require.NoError(t, err)
	want := mat.NewDense(3, 2, nil)
	fd.Jacobian(want, linearProductFloat, at, &fd.JacobianSettings{Formula: fd.Central})
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			require.InDeltaf(t, want.At(i, j), float64(jac[i][j]), 1e-6, "J[%d][%d]", i, j)
		}
	}
}

func TestJacobianIdentityComponent(t *testing.T) {
	f := func(t tapeOps, xs []v) []v {
		return []v{xs[0], t.Mul(xs[0], xs[1])}
	}
	values, jac, err := calculus.Jacobian(f, realVec(3, 4))
	require.NoError(t, err)
	require.Equal(t, []num.Real{3, 12}, values)
	require.Equal(t, [][]num.Real{{1, 0}, {4, 3}}, jac)
}

// Each Jacobian row must come out exactly as a standalone sweep of that
// component would produce it: rows share the recording but not adjoint
// state.
func TestJacobianRowsMatchPerComponentGradients(t *testing.T) {
	pair := func(t tapeOps, xs []v) []v {
		return []v{t.Mul(xs[0], xs[1]), t.Add(xs[0], xs[1])}
	}
	prod := func(t tapeOps, xs []v) v { return t.Mul(xs[0], xs[1]) }
	sum := func(t tapeOps, xs []v) v { return t.Add(xs[0], xs[1]) }

	at := realVec(0.7, 1.9)
	_, jac, err := calculus.Jacobian(pair, at)
	require.NoError(t, err)

	_, g0, err := calculus.Gradient(prod, at)
	require.NoError(t, err)
	_, g1, err := calculus.Gradient(sum, at)
	require.NoError(t, err)
	require.Equal(t, g0, jac[0])
	require.Equal(t, g1, jac[1])
}

// 32 components over 3 inputs: wide enough that rows sweep concurrently,
// with closed forms exact in the dyadic inputs chosen.
func TestJacobianManyComponents(t *testing.T) {
	f := func(tp tapeOps, xs []v) []v {
		outs := make([]v, 32)
		for k := range outs {
			outs[k] = tp.MulScalar(tp.Mul(xs[k%3], xs[(k+1)%3]), num.Real(k+1))
		}
		return outs
	}
	at := realVec(1.5, -2, 0.5)
	values, jac, err := calculus.Jacobian(f, at)
	require.NoError(t, err)
	require.Len(t, values, 32)
	for k := 0; k < 32; k++ {
		i, j := k%3, (k+1)%3
		c := num.Real(k + 1)
		require.Equalf(t, at[i].Mul(at[j]).Mul(c), values[k], "value %d", k)
		want := make([]num.Real, 3)
		want[i] = c.Mul(at[j])
		want[j] = c.Mul(at[i])
		require.Equalf(t, want, jac[k], "row %d", k)
	}
}

func TestHessianQuadraticForm(t *testing.T) {
	value, grad, hess, err := calculus.Hessian(quadraticField, realVec(0.5, 0.25))
	require.NoError(t, err)
	require.Equal(t, num.Real(0.75), value)
	require.Equal(t, []num.Real{1.75, 2.5}, grad)
	require.Equal(t, [][]num.Real{{2, 3}, {3, 4}}, hess)
}

func TestHessianMatchesFiniteDifference(t *testing.T) {
	at := []float64{-0.6, 0.8}
	_, _, hess, err := calculus.Hessian(rosenbrockField, realVec(at...))
	require.NoError(t, err)

	want := mat.NewSymDense(2, nil)
	fd.Hessian(want, rosenbrockFloat, at, nil)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			require.InDeltaf(t, want.At(i, j), float64(hess[i][j]), 1e-3, "H[%d][%d]", i, j)
		}
	}
}

func TestHessianOfRequiresSecondOrderTape(t *testing.T) {
	gt := tape.NewGradientTape[num.Real]()
	x := gt.CreateVariable(2)
	out := gt.Mul(x, x)
	require.Panics(t, func() { calculus.HessianOf[num.Real](gt, out) })

	ht := tape.NewHessianTape[num.Real]()
	y := ht.CreateVariable(2)
	out = ht.Mul(y, y)
	grad, hess, err := calculus.HessianOf[num.Real](ht, out)
	require.NoError(t, err)
	require.Equal(t, []num.Real{4}, grad)
	require.Equal(t, [][]num.Real{{2}}, hess)
}

func TestHessianOfIdentityOutput(t *testing.T) {
	ht := tape.NewHessianTape[num.Real]()
	xs := []v{ht.CreateVariable(3), ht.CreateVariable(4)}
	grad, hess, err := calculus.HessianOf[num.Real](ht, xs[1])
	require.NoError(t, err)
	require.Equal(t, []num.Real{0, 1}, grad)
	require.Equal(t, [][]num.Real{{0, 0}, {0, 0}}, hess)
}

func TestDirectionalDerivative(t *testing.T) {
	got, err := calculus.DirectionalDerivative(sphereField, realVec(1, 2, 3), realVec(0.5, -1, 2))
	require.NoError(t, err)
	require.Equal(t, num.Real(9), got)
}

func TestJVP(t *testing.T) {
	got, err := calculus.JVP(linearProductField, realVec(3, 4), realVec(2, -1))
	require.NoError(t, err)
	require.Equal(t, []num.Real{1, 5, 3}, got)
}

func TestVJP(t *testing.T) {
	at := realVec(3, 4)
	w := realVec(1, 0.5, -2)
	got, err := calculus.VJP(linearProductField, at, w)
	require.NoError(t, err)
	require.Equal(t, []num.Real{1, 4.5}, got)

	// Against an explicit w^T * J.
	_, jac, err := calculus.Jacobian(linearProductField, at)
	require.NoError(t, err)
	for j := range got {
		want := num.Zero[num.Real]()
		for i := range jac {
			want = want.Add(w[i].Mul(jac[i][j]))
		}
		require.Equal(t, want, got[j])
	}

	// Zero weights skip their components entirely.
	got, err = calculus.VJP(linearProductField, at, realVec(0, 1, 0))
	require.NoError(t, err)
	require.Equal(t, []num.Real{4, 3}, got)
}

func TestDivergence(t *testing.T) {
	got, err := calculus.Divergence(swirlField, realVec(1.5, -2, 0.5))
	require.NoError(t, err)
	require.Equal(t, num.Real(-6.5), got)
}

func TestCurl(t *testing.T) {
	got, err := calculus.Curl(swirlField, realVec(1.5, -2, 0.5))
	require.NoError(t, err)
	require.Equal(t, []num.Real{-4, -0.25, -2.25}, got)
}

func TestLaplacian(t *testing.T) {
	got, err := calculus.Laplacian(sphereField, realVec(1, 2, 3))
	require.NoError(t, err)
	require.Equal(t, num.Real(6), got)

	// Harmonic field: the trace cancels to rounding noise.
	got, err = calculus.Laplacian(logNormField, realVec(1.2, 0.7))
	require.NoError(t, err)
	require.InDelta(t, 0, float64(got), 1e-12)

	at := []float64{-0.6, 0.8}
	got, err = calculus.Laplacian(rosenbrockField, realVec(at...))
	require.NoError(t, err)
	require.InDelta(t, fd.Laplacian(rosenbrockFloat, at, nil), float64(got), 1e-3)
}

func TestFieldArityPanics(t *testing.T) {
	t.Run("directional derivative direction", func(t *testing.T) {
		require.Panics(t, func() {
			calculus.DirectionalDerivative(rosenbrockField, realVec(1, 2), realVec(1))
		})
	})
	t.Run("jvp direction", func(t *testing.T) {
		require.Panics(t, func() {
			calculus.JVP(linearProductField, realVec(1, 2), realVec(1, 2, 3))
		})
	})
	t.Run("vjp weights", func(t *testing.T) {
		require.Panics(t, func() {
			calculus.VJP(linearProductField, realVec(1, 2), realVec(1))
		})
	})
	t.Run("empty vector field", func(t *testing.T) {
		require.Panics(t, func() {
			calculus.Jacobian(func(t tapeOps, xs []v) []v { return nil }, realVec(1))
		})
	})
	t.Run("curl input arity", func(t *testing.T) {
		require.Panics(t, func() {
			calculus.Curl(swirlField, realVec(1, 2))
		})
	})
	t.Run("curl component arity", func(t *testing.T) {
		flat := func(t tapeOps, xs []v) []v { return []v{t.Add(xs[0], xs[1])} }
		require.Panics(t, func() {
			calculus.Curl(flat, realVec(1, 2, 3))
		})
	})
	t.Run("divergence needs square jacobian", func(t *testing.T) {
		require.Panics(t, func() {
			calculus.Divergence(linearProductField, realVec(1, 2))
		})
	})
}

// A field that turns recording off mid-build leaves its output untracked;
// the sweep then has no start node to seed and reports it.
func TestGradientErrorPath(t *testing.T) {
	f := func(t tapeOps, xs []v) v {
		t.StopRecording()
		return t.Mul(xs[0], xs[0])
	}
	_, _, err := calculus.Gradient(f, realVec(3))
	require.Error(t, err)
	require.ErrorIsf(t, err, tape.ErrStartOutOfRange, "got %v", err)
	require.ErrorContains(t, err, "calculus.Gradient")
}

func TestMatAdapters(t *testing.T) {
	vec, err := calculus.GradientVec(rosenbrockField, []float64{-1.2, 1})
	require.NoError(t, err)
	require.Equal(t, 2, vec.Len())
	require.InDelta(t, -215.6, vec.AtVec(0), 1e-9)
	require.InDelta(t, -88.0, vec.AtVec(1), 1e-9)

	jm, err := calculus.JacobianMat(linearProductField, []float64{3, 4})
	require.NoError(t, err)
	r, c := jm.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 2, c)
	require.True(t, mat.Equal(jm, mat.NewDense(3, 2, []float64{1, 1, 4, 3, 1, -1})))

	hm, err := calculus.HessianSym(quadraticField, []float64{0.5, 0.25})
	require.NoError(t, err)
	require.True(t, mat.Equal(hm, mat.NewSymDense(2, []float64{2, 3, 3, 4})))
}

func BenchmarkGradientRosenbrock(b *testing.B) {
	at := realVec(-1.2, 1)
	for i := 0; i < b.N; i++ {
		if _, _, err := calculus.Gradient(rosenbrockField, at); err != nil {
			b.Fatal(err)
		}
	}
}

package main

import (
	"github.com/wengert/wengert/calculus"
	"github.com/wengert/wengert/num"
	"github.com/wengert/wengert/tape"
)

type tapeOps = tape.Tape[num.Real]
type v = tape.Variable[num.Real]

// demoField couples a scalar field with its formula and the point
// reported when -at is not given.
type demoField struct {
	name  string
	expr  string
	field calculus.ScalarField[num.Real]
	at    []float64
}

var demoFields = []demoField{
	{"rosenbrock", "(1-x)^2 + 100*(y-x^2)^2", rosenbrock, []float64{-1.2, 1}},
	{"himmelblau", "(x^2+y-11)^2 + (x+y^2-7)^2", himmelblau, []float64{1, 1}},
	{"sphere", "x^2 + y^2 + z^2", sphere, []float64{1, -2, 0.5}},
	{"saddle", "x^2 - y^2 + x*y/2", saddle, []float64{0.6, -0.8}},
}

func fieldByName(name string) (demoField, bool) {
	for _, f := range demoFields {
		if f.name == name {
			return f, true
		}
	}
	return demoField{}, false
}

func fieldNames() []string {
	names := make([]string, len(demoFields))
	for i, f := range demoFields {
		names[i] = f.name
	}
	return names
}

func rosenbrock(t tapeOps, xs []v) v {
	d := t.SubScalar(xs[0], 1)
	q := t.Sub(xs[1], t.Mul(xs[0], xs[0]))
	return t.Add(t.Mul(d, d), t.MulScalar(t.Mul(q, q), 100))
}

func himmelblau(t tapeOps, xs []v) v {
	x, y := xs[0], xs[1]
	a := t.SubScalar(t.Add(t.Mul(x, x), y), 11)
	b := t.SubScalar(t.Add(x, t.Mul(y, y)), 7)
	return t.Add(t.Mul(a, a), t.Mul(b, b))
}

func sphere(t tapeOps, xs []v) v {
	out := t.Mul(xs[0], xs[0])
	for _, x := range xs[1:] {
		out = t.Add(out, t.Mul(x, x))
	}
	return out
}

func saddle(t tapeOps, xs []v) v {
	x, y := xs[0], xs[1]
	return t.Add(
		t.Sub(t.Mul(x, x), t.Mul(y, y)),
		t.DivScalar(t.Mul(x, y), 2),
	)
}

func realVec(xs []float64) []num.Real {
	out := make([]num.Real, len(xs))
	for i, x := range xs {
		out[i] = num.Real(x)
	}
	return out
}

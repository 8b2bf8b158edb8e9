// Copyright 2026 The Wengert Authors. SPDX-License-Identifier: Apache-2.0

package tape

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/wengert/wengert/num"
)

// This file implements second-order reverse-mode automatic differentiation
// using the edge-pushing algorithm, which computes the full Hessian of one
// scalar output in a single backward sweep instead of one
// gradient-of-gradient sweep per input. Reference:
//
// R.M. Gower and M.P. Mello, "A new framework for the computation of
// Hessians", Optimization Methods and Software 27:2 (2012).
//
// The sweep maintains, next to the usual adjoint vector, a symmetric
// matrix of "edge weights": weight[a][b] is the accumulated second
// derivative of the output with respect to the pair of intermediate
// values (a, b), discovered so far. Visiting node i (from the seed node
// down) first routes the weights on edges incident to i onto i's parents
// (EdgePush), then deposits i's own local curvature scaled by its adjoint
// (Accumulate), and finally propagates the adjoint exactly like the
// first-order sweep. When the sweep reaches the root variables, the
// leading variableCount x variableCount block of the weight matrix is the
// Hessian.

// HessianTape records elementary operations with first and second local
// partials and computes gradients and Hessians by reverse accumulation.
// It implements the optional SecondOrder capability on top of the
// ordinary Tape contract.
//
// There is no checkpointing or other memory-reduction strategy: one
// accumulation holds a dense (start+1)^2 weight matrix.
//
// The zero HessianTape is not valid; use NewHessianTape.
type HessianTape[T num.Floating[T]] struct {
	nodes         []hessianNode[T]
	variableCount int
	recording     bool
}

var (
	_ Tape[num.Real]           = (*HessianTape[num.Real])(nil)
	_ SecondOrder[num.Real]    = (*HessianTape[num.Real])(nil)
	_ SecondOrder[num.Complex] = (*HessianTape[num.Complex])(nil)
)

// NewHessianTape returns an empty, recording tape. An optional capacity
// hint pre-sizes the node arena.
func NewHessianTape[T num.Floating[T]](capacityHint ...int) *HessianTape[T] {
	capacity := defaultCapacity
	if len(capacityHint) > 0 {
		capacity = capacityHint[0]
	}
	return &HessianTape[T]{
		nodes:     make([]hessianNode[T], 0, capacity),
		recording: true,
	}
}

// CreateVariable appends a root node holding value and returns its handle.
// Roots must occupy the leading arena slots, so calling this after an
// operation has been recorded panics.
//
// While recording is off it appends nothing and returns an untracked
// variable, so an already-recorded expression shape can be re-evaluated at
// new inputs. Untracked variables must not be mixed into recorded
// expressions.
func (t *HessianTape[T]) CreateVariable(value T) Variable[T] {
	if !t.recording {
		return t.untracked(value)
	}
	if t.variableCount < len(t.nodes) {
		exceptions.Panicf("tape: CreateVariable after %d operation node(s) were recorded; create all variables before the first operation",
			len(t.nodes)-t.variableCount)
	}
	index := len(t.nodes)
	t.nodes = append(t.nodes, hessianNode[T]{px: index, py: index})
	t.variableCount++
	return Variable[T]{index: index, value: value}
}

// NodeCount returns the arena length: variables plus recorded operations.
func (t *HessianTape[T]) NodeCount() int { return len(t.nodes) }

// VariableCount returns the number of root variables.
func (t *HessianTape[T]) VariableCount() int { return t.variableCount }

// IsRecording reports whether operations currently append nodes.
func (t *HessianTape[T]) IsRecording() bool { return t.recording }

// StartRecording makes subsequent operations append nodes again.
func (t *HessianTape[T]) StartRecording() { t.recording = true }

// StopRecording makes subsequent operations compute only primal values.
// Together with StartRecording this allows re-evaluating an expression
// shape many times while paying the recording cost once.
func (t *HessianTape[T]) StopRecording() { t.recording = false }

func (t *HessianTape[T]) String() string {
	return fmt.Sprintf("HessianTape[%d variables, %d nodes]", t.variableCount, len(t.nodes))
}

func (t *HessianTape[T]) untracked(primal T) Variable[T] {
	return Variable[T]{index: len(t.nodes), value: primal}
}

func (t *HessianTape[T]) unary(primal, dx, dxx T, px int) Variable[T] {
	index := len(t.nodes)
	t.nodes = append(t.nodes, hessianNode[T]{dx: dx, dxx: dxx, px: px, py: index})
	return Variable[T]{index: index, value: primal}
}

func (t *HessianTape[T]) binary(primal, dx, dxx, dxy, dy, dyy T, px, py int) Variable[T] {
	index := len(t.nodes)
	t.nodes = append(t.nodes, hessianNode[T]{dx: dx, dxx: dxx, dxy: dxy, dy: dy, dyy: dyy, px: px, py: py})
	return Variable[T]{index: index, value: primal}
}

func (t *HessianTape[T]) checkAccumulate(start int) error {
	if t.variableCount == 0 {
		return errors.Wrap(ErrNoVariables, "ReverseAccumulate")
	}
	if start < t.variableCount || start >= len(t.nodes) {
		return errors.Wrapf(ErrStartOutOfRange,
			"ReverseAccumulate(start=%d): operation nodes live in [%d, %d)",
			start, t.variableCount, len(t.nodes))
	}
	return nil
}

// ReverseAccumulate runs only the first-order backward sweep from the
// last recorded node with a unit seed, returning the gradient with
// respect to the variables in creation order. Use
// ReverseAccumulateHessian when the Hessian is needed; its gradient is
// identical.
func (t *HessianTape[T]) ReverseAccumulate() ([]T, error) {
	return t.ReverseAccumulateAt(len(t.nodes)-1, num.One[T]())
}

// ReverseAccumulateAt runs only the first-order backward sweep from the
// operation node at arena index start, seeding its adjoint with seed.
func (t *HessianTape[T]) ReverseAccumulateAt(start int, seed T) ([]T, error) {
	if err := t.checkAccumulate(start); err != nil {
		return nil, err
	}
	adjoint := make([]T, start+1)
	adjoint[start] = seed
	for i := start; i >= t.variableCount; i-- {
		n := &t.nodes[i]
		a := adjoint[i]
		adjoint[n.px] = adjoint[n.px].Add(a.Mul(n.dx))
		adjoint[n.py] = adjoint[n.py].Add(a.Mul(n.dy))
	}
	return slices.Clone(adjoint[:t.variableCount]), nil
}

// ReverseAccumulateHessian runs the edge-pushing backward sweep from the
// last recorded node with a unit seed, returning the gradient and the
// Hessian with respect to the variables in creation order. The Hessian
// is symmetric by construction.
func (t *HessianTape[T]) ReverseAccumulateHessian() ([]T, [][]T, error) {
	return t.ReverseAccumulateHessianAt(len(t.nodes)-1, num.One[T]())
}

// ReverseAccumulateHessianAt is ReverseAccumulateHessian from an explicit
// start node and seed.
//
// One call allocates an adjoint vector of start+1 elements and a dense
// symmetric weight matrix of (start+1)^2 elements; neither is pooled
// across calls.
func (t *HessianTape[T]) ReverseAccumulateHessianAt(start int, seed T) ([]T, [][]T, error) {
	if err := t.checkAccumulate(start); err != nil {
		return nil, nil, err
	}

	n := start + 1
	adjoint := make([]T, n)
	weight := make([][]T, n)
	for i := range weight {
		weight[i] = make([]T, n)
	}
	adjoint[start] = seed

	for i := start; i >= t.variableCount; i-- {
		node := &t.nodes[i]

		// EdgePush: route the second-order weight on every live edge
		// {i, p} onto i's parents. Writing both mirror cells keeps the
		// matrix symmetric; when a parent coincides with p the two
		// writes land on the same diagonal cell, which is the required
		// doubling.
		row := weight[i]
		for p := 0; p <= i; p++ {
			w := row[p]
			if w.IsZero() {
				continue
			}
			if p != i {
				wx := node.dx.Mul(w)
				weight[node.px][p] = weight[node.px][p].Add(wx)
				weight[p][node.px] = weight[p][node.px].Add(wx)
				wy := node.dy.Mul(w)
				weight[node.py][p] = weight[node.py][p].Add(wy)
				weight[p][node.py] = weight[p][node.py].Add(wy)
			} else {
				// The diagonal weight {i, i} distributes over all four
				// ordered parent pairs, scaled by products of first
				// partials.
				wxx := node.dx.Mul(node.dx).Mul(w)
				wxy := node.dx.Mul(node.dy).Mul(w)
				wyy := node.dy.Mul(node.dy).Mul(w)
				weight[node.px][node.px] = weight[node.px][node.px].Add(wxx)
				weight[node.px][node.py] = weight[node.px][node.py].Add(wxy)
				weight[node.py][node.px] = weight[node.py][node.px].Add(wxy)
				weight[node.py][node.py] = weight[node.py][node.py].Add(wyy)
			}
		}

		// Accumulate: node i's own local curvature, scaled by its
		// adjoint.
		a := adjoint[i]
		if !a.IsZero() {
			weight[node.px][node.px] = weight[node.px][node.px].Add(a.Mul(node.dxx))
			axy := a.Mul(node.dxy)
			weight[node.px][node.py] = weight[node.px][node.py].Add(axy)
			weight[node.py][node.px] = weight[node.py][node.px].Add(axy)
			weight[node.py][node.py] = weight[node.py][node.py].Add(a.Mul(node.dyy))
		}

		// First-order adjoint propagation, identical to GradientTape.
		adjoint[node.px] = adjoint[node.px].Add(a.Mul(node.dx))
		adjoint[node.py] = adjoint[node.py].Add(a.Mul(node.dy))
	}

	gradient := slices.Clone(adjoint[:t.variableCount])
	hessian := make([][]T, t.variableCount)
	for i := range hessian {
		hessian[i] = slices.Clone(weight[i][:t.variableCount])
	}
	return gradient, hessian, nil
}

// Copyright 2026 The Wengert Authors. SPDX-License-Identifier: Apache-2.0

package tape

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/wengert/wengert/num"
)

// GradientTape records elementary operations on an append-only node arena
// and computes first-order gradients by reverse accumulation. See the
// package documentation for the usage pattern.
//
// The zero GradientTape is not valid; use NewGradientTape.
type GradientTape[T num.Floating[T]] struct {
	nodes         []gradientNode[T]
	variableCount int
	recording     bool
}

var _ Tape[num.Real] = (*GradientTape[num.Real])(nil)

// NewGradientTape returns an empty, recording tape. An optional capacity
// hint pre-sizes the node arena.
func NewGradientTape[T num.Floating[T]](capacityHint ...int) *GradientTape[T] {
	capacity := defaultCapacity
	if len(capacityHint) > 0 {
		capacity = capacityHint[0]
	}
	return &GradientTape[T]{
		nodes:     make([]gradientNode[T], 0, capacity),
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
func (t *GradientTape[T]) CreateVariable(value T) Variable[T] {
	if !t.recording {
		return t.untracked(value)
	}
	if t.variableCount < len(t.nodes) {
		exceptions.Panicf("tape: CreateVariable after %d operation node(s) were recorded; create all variables before the first operation",
			len(t.nodes)-t.variableCount)
	}
	index := len(t.nodes)
	t.nodes = append(t.nodes, gradientNode[T]{px: index, py: index})
	t.variableCount++
	return Variable[T]{index: index, value: value}
}

// NodeCount returns the arena length: variables plus recorded operations.
func (t *GradientTape[T]) NodeCount() int { return len(t.nodes) }

// VariableCount returns the number of root variables.
func (t *GradientTape[T]) VariableCount() int { return t.variableCount }

// IsRecording reports whether operations currently append nodes.
func (t *GradientTape[T]) IsRecording() bool { return t.recording }

// StartRecording makes subsequent operations append nodes again.
func (t *GradientTape[T]) StartRecording() { t.recording = true }

// StopRecording makes subsequent operations compute only primal values.
func (t *GradientTape[T]) StopRecording() { t.recording = false }

func (t *GradientTape[T]) String() string {
	return fmt.Sprintf("GradientTape[%d variables, %d nodes]", t.variableCount, len(t.nodes))
}

// untracked wraps a primal computed while recording is off. The index
// points at the next unused arena slot; such variables must not be mixed
// into recorded expressions.
func (t *GradientTape[T]) untracked(primal T) Variable[T] {
	return Variable[T]{index: len(t.nodes), value: primal}
}

// unary appends a node with a single parent; the unused slot self-refers
// with a zero partial.
func (t *GradientTape[T]) unary(primal, dx T, px int) Variable[T] {
	index := len(t.nodes)
	t.nodes = append(t.nodes, gradientNode[T]{dx: dx, px: px, py: index})
	return Variable[T]{index: index, value: primal}
}

func (t *GradientTape[T]) binary(primal, dx, dy T, px, py int) Variable[T] {
	index := len(t.nodes)
	t.nodes = append(t.nodes, gradientNode[T]{dx: dx, dy: dy, px: px, py: py})
	return Variable[T]{index: index, value: primal}
}

// ReverseAccumulate runs the backward sweep from the last recorded node
// with a unit seed, returning the gradient with respect to the variables
// in creation order.
func (t *GradientTape[T]) ReverseAccumulate() ([]T, error) {
	return t.ReverseAccumulateAt(len(t.nodes)-1, num.One[T]())
}

// ReverseAccumulateAt runs the backward sweep from the operation node at
// arena index start, seeding its adjoint with seed. start must name a
// recorded operation, i.e. lie in [VariableCount, NodeCount).
//
// The sweep is a single backward pass: O(start) time and one transient
// adjoint buffer of start+1 elements.
func (t *GradientTape[T]) ReverseAccumulateAt(start int, seed T) ([]T, error) {
	if t.variableCount == 0 {
		return nil, errors.Wrap(ErrNoVariables, "ReverseAccumulateAt")
	}
	if start < t.variableCount || start >= len(t.nodes) {
		return nil, errors.Wrapf(ErrStartOutOfRange,
			"ReverseAccumulateAt(start=%d): operation nodes live in [%d, %d)",
			start, t.variableCount, len(t.nodes))
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

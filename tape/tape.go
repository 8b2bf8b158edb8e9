// Copyright 2026 The Wengert Authors. SPDX-License-Identifier: Apache-2.0

// Package tape implements reverse-mode automatic differentiation over an
// append-only tape (a Wengert list).
//
// The main elements in the package are:
//
//   - Variable: an immutable handle pairing a tape-assigned index with a
//     materialized primal value. Variables are inert data; all
//     differentiation state lives in the tape that created them.
//
//   - GradientTape: records one node per elementary operation, each node
//     holding the closed-form local partial derivatives with respect to its
//     (up to two) parents. ReverseAccumulate then computes the gradient of
//     one recorded value with respect to every variable in a single
//     backward sweep.
//
//   - HessianTape: records first and second local partials per node and
//     computes the full Hessian of one recorded value in a single backward
//     sweep using the edge-pushing algorithm, alongside the gradient.
//
//   - Tape: the capability contract implemented by both tape kinds, so
//     vector-calculus helpers can be written once against "any tape".
//     Second-order accumulation is the optional SecondOrder interface,
//     discovered by type assertion.
//
// # Building and differentiating an expression
//
//	t := tape.NewGradientTape[num.Real]()
//	x := t.CreateVariable(3)
//	y := t.CreateVariable(4)
//	_ = t.Mul(x, y)
//	grad, err := t.ReverseAccumulate()
//	// grad = [4, 3]
//
// Create every variable before the first operation: variables occupy the
// leading slots of the node arena, and the gradient (and Hessian) is
// reported over exactly those slots, in creation order.
//
// # Graph representation
//
// The tape owns a single contiguous, append-only arena of fixed-size
// nodes. Nodes refer to their parents by integer arena index, never by
// pointer, so the graph carries no reference cycles and creation order is
// already a valid reverse-topological order. "No parent" (root nodes, the
// unused operand slot of unary operations and of operations against an
// untracked constant) is represented by the node's own index with a zero
// partial, which contributes nothing during a sweep and keeps the
// backward loops branch-free.
//
// # Recording
//
// Both tape kinds record by default. After StopRecording, operations
// compute only the primal value and append nothing, which allows cheap
// re-evaluation of an already-recorded expression shape at new inputs.
// Variables returned while recording is off must not be combined with
// recorded ones: they carry no arena slot.
//
// # Numbers
//
// Everything is generic over num.Floating, so the same derivative
// formulas serve num.Real, num.Real16 and num.Complex (holomorphic
// derivatives, principal branches). Operations that exist only on the
// real line (Mod, Atan2) panic when invoked for a type outside
// num.RealFloating. Non-finite values are not trapped anywhere: NaN and
// Inf propagate through primals and partials exactly as the number type
// computes them.
//
// # Errors
//
// Accumulation methods return ErrNoVariables or ErrStartOutOfRange
// (wrapped with call context). Mistakes in how the graph is built --
// creating a variable after operations were recorded, omitting a required
// derivative callback of a custom operation -- panic immediately. After
// any failure the tape must be discarded; no partially-consistent state
// is promised.
//
// A tape is owned by one goroutine: building and accumulation are
// synchronous and unsynchronized. Accumulation buffers are allocated per
// call and not pooled.
package tape

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
)

// Sentinel errors returned (wrapped) by the accumulation methods.
// Test with errors.Is.
var (
	// ErrNoVariables is returned when accumulation is invoked on a tape
	// with no recorded variables.
	ErrNoVariables = errors.New("tape has no recorded variables")

	// ErrStartOutOfRange is returned when the accumulation start index
	// does not name a recorded operation node, i.e. lies outside
	// [VariableCount, NodeCount).
	ErrStartOutOfRange = errors.New("accumulation start index out of range")
)

// defaultCapacity is the node arena capacity tapes start with when no
// hint is given.
const defaultCapacity = 64

// Tape is the capability contract shared by GradientTape and HessianTape.
// Vector-calculus helpers are written against it so that either tape kind
// can back them.
//
// All operation methods compute the primal result via the number type,
// derive the local partial derivative(s) in closed form, append exactly
// one node, and return the new Variable. Methods with a Scalar suffix
// take an untracked constant as the second operand and record a single
// partial.
type Tape[T any] interface {
	// CreateVariable appends a root node holding value and returns its
	// handle. All variables must be created before the first operation;
	// violating that panics. While recording is off it returns an
	// untracked variable instead, appending nothing.
	CreateVariable(value T) Variable[T]

	// NodeCount returns the arena length: variables plus recorded
	// operations.
	NodeCount() int

	// VariableCount returns the number of root variables.
	VariableCount() int

	// IsRecording reports whether operations currently append nodes.
	IsRecording() bool
	StartRecording()
	StopRecording()

	// Arithmetic.
	Add(x, y Variable[T]) Variable[T]
	AddScalar(x Variable[T], c T) Variable[T]
	Sub(x, y Variable[T]) Variable[T]
	SubScalar(x Variable[T], c T) Variable[T]
	Mul(x, y Variable[T]) Variable[T]
	MulScalar(x Variable[T], c T) Variable[T]
	Div(x, y Variable[T]) Variable[T]
	DivScalar(x Variable[T], c T) Variable[T]
	Mod(x, y Variable[T]) Variable[T]
	ModScalar(x Variable[T], c T) Variable[T]
	Neg(x Variable[T]) Variable[T]
	Inverse(x Variable[T]) Variable[T]

	// Exponentials and logarithms.
	Exp(x Variable[T]) Variable[T]
	Exp2(x Variable[T]) Variable[T]
	Exp10(x Variable[T]) Variable[T]
	Log(x Variable[T]) Variable[T]
	Log2(x Variable[T]) Variable[T]
	Log10(x Variable[T]) Variable[T]

	// Powers and roots.
	Pow(x, y Variable[T]) Variable[T]
	PowScalar(x Variable[T], c T) Variable[T]
	Root(x, y Variable[T]) Variable[T]
	Sqrt(x Variable[T]) Variable[T]
	Cbrt(x Variable[T]) Variable[T]

	// Trigonometry.
	Sin(x Variable[T]) Variable[T]
	Cos(x Variable[T]) Variable[T]
	Tan(x Variable[T]) Variable[T]
	Asin(x Variable[T]) Variable[T]
	Acos(x Variable[T]) Variable[T]
	Atan(x Variable[T]) Variable[T]
	Atan2(y, x Variable[T]) Variable[T]

	// Hyperbolics.
	Sinh(x Variable[T]) Variable[T]
	Cosh(x Variable[T]) Variable[T]
	Tanh(x Variable[T]) Variable[T]
	Asinh(x Variable[T]) Variable[T]
	Acosh(x Variable[T]) Variable[T]
	Atanh(x Variable[T]) Variable[T]

	// Custom operations: the caller supplies the primal function and its
	// analytic derivatives. Second-order callbacks are ignored by
	// GradientTape (and may be nil there) but are required by
	// HessianTape.
	CustomUnary(x Variable[T], f, df, d2f func(T) T) Variable[T]
	CustomBinary(x, y Variable[T], f, dfx, dfy, d2fxx, d2fxy, d2fyy func(T, T) T) Variable[T]

	// ReverseAccumulate runs the backward sweep from the last recorded
	// node with a unit seed and returns the gradient with respect to the
	// variables, in creation order.
	ReverseAccumulate() ([]T, error)

	// ReverseAccumulateAt runs the backward sweep from the operation
	// node at the given arena index, seeding its adjoint with seed.
	ReverseAccumulateAt(start int, seed T) ([]T, error)

	// DumpNodes logs up to limit nodes (limit <= 0 means all) through
	// logger, polling ctx between nodes for early cancellation. Purely
	// observational.
	DumpNodes(ctx context.Context, logger logr.Logger, limit int)
}

// SecondOrder is the optional capability of tapes that can produce a
// Hessian. HessianTape implements it; helpers that need second-order
// results type-assert a Tape to it.
type SecondOrder[T any] interface {
	Tape[T]

	// ReverseAccumulateHessian runs the edge-pushing backward sweep from
	// the last recorded node with a unit seed, returning the gradient
	// and the symmetric Hessian over the variables in creation order.
	ReverseAccumulateHessian() ([]T, [][]T, error)

	// ReverseAccumulateHessianAt is ReverseAccumulateHessian from an
	// explicit start node and seed.
	ReverseAccumulateHessianAt(start int, seed T) ([]T, [][]T, error)
}

package tape

import "fmt"

// Variable pairs a node arena index with the primal value produced at that
// index. It is a pure data carrier: immutable, no validation, constructed
// only by tape methods. Two variables are the same iff index and value
// match.
type Variable[T any] struct {
	index int
	value T
}

// Index returns the arena slot that produced this value.
func (v Variable[T]) Index() int { return v.index }

// Value returns the primal value.
func (v Variable[T]) Value() T { return v.value }

func (v Variable[T]) String() string {
	return fmt.Sprintf("Variable(#%d)=%v", v.index, v.value)
}

// gradientNode is one recorded operation: the local partial derivatives of
// its result with respect to its (up to two) parents, and the arena
// indices of those parents. Root nodes and the unused parent slot of
// unary or scalar operations point at the node's own index with a zero
// partial, so the backward sweep can dereference both slots
// unconditionally.
type gradientNode[T any] struct {
	dx, dy T
	px, py int
}

// hessianNode additionally carries the three local second partials used by
// the edge-pushing sweep.
type hessianNode[T any] struct {
	dx, dxx, dxy T
	dy, dyy      T
	px, py       int
}

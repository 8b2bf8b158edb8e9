// Copyright 2026 The Wengert Authors. SPDX-License-Identifier: Apache-2.0

// Package sweeppool runs independent backward sweeps of a shared tape
// recording across a bounded set of goroutines. Sweeps only read the
// recording, so rows of a Jacobian can accumulate concurrently; the pool
// caps how many run at once.
package sweeppool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool bounds the parallelism of batched sweeps.
type Pool struct {
	// maxParallelism is the cap on concurrent sweeps: 0 disables
	// parallelism entirely and -1 removes the cap.
	maxParallelism int
}

// New returns a Pool capped at runtime.NumCPU() concurrent sweeps.
func New() *Pool {
	return &Pool{maxParallelism: runtime.NumCPU()}
}

// IsEnabled reports whether sweeps may run concurrently at all.
func (p *Pool) IsEnabled() bool {
	return p.maxParallelism != 0
}

// MaxParallelism returns the cap on concurrent sweeps. 0 means disabled,
// -1 means uncapped.
func (p *Pool) MaxParallelism() int {
	return p.maxParallelism
}

// SetMaxParallelism changes the cap. Only call it while no batch is
// running.
func (p *Pool) SetMaxParallelism(maxParallelism int) {
	p.maxParallelism = maxParallelism
}

// Run invokes fn(i) for every i in [0, n) and returns when all calls have
// finished. Batches of one, or pools with parallelism disabled, run
// inline on the caller's goroutine in index order. fn must be safe to
// call concurrently with itself.
func (p *Pool) Run(n int, fn func(i int)) {
	if n <= 1 || !p.IsEnabled() {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	workers := p.maxParallelism
	if workers < 0 || workers > n {
		workers = n
	}
	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= n {
					return
				}
				fn(i)
			}
		}()
	}
	wg.Wait()
}

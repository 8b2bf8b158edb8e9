// Copyright 2026 The Wengert Authors. SPDX-License-Identifier: Apache-2.0

package tape

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/wengert/wengert/num"
)

// Node dumping, for debugging recorded graphs. The dump is purely
// observational: it never mutates tape state, and a canceled context only
// cuts the listing short. Nodes whose recorded partials (or, for roots,
// primal-producing slots) are NaN or Inf are flagged, since a single
// non-finite partial usually poisons every adjoint below it.

// DumpNodes logs up to limit nodes through logger, one line per node, and
// polls ctx between nodes so a long dump can be canceled. limit <= 0 means
// all nodes.
func (t *GradientTape[T]) DumpNodes(ctx context.Context, logger logr.Logger, limit int) {
	logger = logger.WithName("tape")
	limit = dumpHeader(logger, "GradientTape", t.variableCount, len(t.nodes), limit)
	for i := 0; i < limit; i++ {
		if dumpCanceled(ctx, logger, i) {
			return
		}
		if i < t.variableCount {
			logger.Info("root", "i", i)
			continue
		}
		n := &t.nodes[i]
		kv := []any{"i", i, "dx", n.dx, "px", n.px, "dy", n.dy, "py", n.py}
		if nonFinite(n.dx) || nonFinite(n.dy) {
			kv = append(kv, "nonFinite", true)
		}
		logger.Info("node", kv...)
	}
}

// DumpNodes logs up to limit nodes through logger, one line per node
// including the second partials, and polls ctx between nodes so a long
// dump can be canceled. limit <= 0 means all nodes.
func (t *HessianTape[T]) DumpNodes(ctx context.Context, logger logr.Logger, limit int) {
	logger = logger.WithName("tape")
	limit = dumpHeader(logger, "HessianTape", t.variableCount, len(t.nodes), limit)
	for i := 0; i < limit; i++ {
		if dumpCanceled(ctx, logger, i) {
			return
		}
		if i < t.variableCount {
			logger.Info("root", "i", i)
			continue
		}
		n := &t.nodes[i]
		kv := []any{"i", i,
			"dx", n.dx, "dxx", n.dxx, "dxy", n.dxy, "px", n.px,
			"dy", n.dy, "dyy", n.dyy, "py", n.py}
		if nonFinite(n.dx) || nonFinite(n.dy) || nonFinite(n.dxx) || nonFinite(n.dxy) || nonFinite(n.dyy) {
			kv = append(kv, "nonFinite", true)
		}
		logger.Info("node", kv...)
	}
}

func dumpHeader(logger logr.Logger, kind string, variables, nodes, limit int) int {
	if limit <= 0 || limit > nodes {
		limit = nodes
	}
	logger.Info(kind, "variables", variables, "nodes", nodes, "showing", limit)
	return limit
}

func dumpCanceled(ctx context.Context, logger logr.Logger, next int) bool {
	if err := ctx.Err(); err != nil {
		logger.Info("dump canceled", "err", err, "next", next)
		return true
	}
	return false
}

func nonFinite[T num.Floating[T]](v T) bool {
	return v.IsNaN() || v.IsInf()
}

// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import (
	"math"

	"github.com/curioloop/nlprog/linop"
)

// conjugate gradient budget of a single truncated solve
const cgItersMax = 1000

// projectedNewton refines the Cauchy point by a sequence of truncated
// conjugate gradient solves restricted to the free variables, each
// followed by a projected linesearch on the same face. Successive minor
// iterations enlarge the active set until the reduced gradient meets
// its relative tolerance, the trust region blocks further progress, or
// the accumulated conjugate gradient iterations exhaust their budget of
// one per variable. On return ctx.xt holds the refined iterate and
// ctx.s the cumulative step from loc.x.
func projectedNewton(loc *iterLoc, spec *iterSpec, ctx *iterCtx) (cgIters int, info newtonInfo) {
	iterMax := spec.n
	l, u := spec.l, spec.u
	g := loc.g
	h, s, hs, xt := ctx.h, ctx.s, ctx.hs, ctx.xt

	h.MulVec(hs, s)
	for i, v := range loc.x {
		xt[i] = v + s[i]
	}
	clamp(xt, l, u)

	for minor := 0; minor < spec.n; minor++ {
		free := ctx.free[:0]
		for i, v := range xt {
			if l[i] < v && v < u[i] {
				free = append(free, i)
			}
		}
		if len(free) == 0 {
			return cgIters, newtonConv
		}

		nf := len(free)
		gf := ctx.gf[:nf]
		var gfnorm float64
		for k, i := range free {
			gf[k] = g[i] + hs[i]
			gfnorm += g[i] * g[i]
		}
		gfnorm = math.Sqrt(gfnorm)

		reduced := linop.ReduceSym(h, free)
		iters, infotr := truncatedCG(ctx.cw[:nf], gf, reduced, ctx.radius,
			spec.cgtol*gfnorm, zero, cgItersMax, ctx.cr[:nf], ctx.cp[:nf], ctx.cq[:nf])
		cgIters += iters

		xf, lf, uf := ctx.xf[:nf], ctx.lf[:nf], ctx.uf[:nf]
		for k, i := range free {
			xf[k], lf[k], uf[k] = xt[i], l[i], u[i]
		}
		projectedSearch(xf, lf, uf, gf, ctx.cw[:nf], reduced, ctx.sf[:nf], ctx.hf[:nf])
		for k, i := range free {
			xt[i] = xf[k]
			s[i] += ctx.sf[k]
		}

		h.MulVec(hs, s)
		var gfnormf float64
		for _, i := range free {
			t := g[i] + hs[i]
			gfnormf += t * t
		}
		gfnormf = math.Sqrt(gfnormf)

		switch {
		case gfnormf <= spec.cgtol*gfnorm:
			return cgIters, newtonConv
		case infotr == cgNegCurve || infotr == cgBoundary:
			return cgIters, newtonBound
		case cgIters >= iterMax:
			return cgIters, newtonMaxIter
		}
	}
	return cgIters, newtonMaxIter
}

// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import "gonum.org/v1/gonum/floats"

// cauchy computes the Cauchy step of the current trust region model:
// the projected steepest descent step
//
//	s = P[𝐱 − α·∇f] − 𝐱
//
// whose scaling α satisfies ‖s‖ ≤ Δ and the sufficient decrease
// condition q(s) ≤ μ₀·∇fᵀs. The search starts from the scaling of the
// previous iteration and either backtracks or extrapolates, leaving the
// step in ctx.s and the accepted scaling in ctx.alphac.
func cauchy(loc *iterLoc, spec *iterSpec, ctx *iterCtx) {
	x, g := loc.x, loc.g
	l, u := spec.l, spec.u
	s, hs, d, h := ctx.s, ctx.hs, ctx.d, ctx.h
	delta, alpha := ctx.radius, ctx.alphac

	for i, v := range g {
		d[i] = -v
	}
	_, _, brptMax := breakpoints(x, d, l, u)

	projStep(s, x, d, l, u, alpha)
	snorm := floats.Norm(s, 2)
	if snorm == zero {
		// the projected gradient vanishes, nothing to move
		ctx.alphac = alpha
		return
	}

	interp := snorm > delta
	if !interp {
		h.MulVec(hs, s)
		gts := floats.Dot(g, s)
		interp = half*floats.Dot(hs, s)+gts >= mu0*gts
	}

	if interp {
		for search := true; search; {
			alpha = interpf * alpha
			projStep(s, x, d, l, u, alpha)
			if floats.Norm(s, 2) <= delta {
				h.MulVec(hs, s)
				gts := floats.Dot(g, s)
				search = half*floats.Dot(hs, s)+gts >= mu0*gts
			}
		}
	} else {
		alphas := alpha
		for search := true; search && alpha <= brptMax; {
			alpha = extrapf * alpha
			projStep(s, x, d, l, u, alpha)
			if floats.Norm(s, 2) <= delta {
				h.MulVec(hs, s)
				gts := floats.Dot(g, s)
				if half*floats.Dot(hs, s)+gts < mu0*gts {
					alphas = alpha
				}
			} else {
				search = false
			}
		}
		alpha = alphas
		projStep(s, x, d, l, u, alpha)
	}

	ctx.alphac = alpha
}

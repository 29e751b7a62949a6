// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import (
	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/nlprog/linop"
)

// projectedSearch backtracks along the direction d with projected steps
//
//	s = P[𝐱 + α·d] − 𝐱
//
// until the quadratic model satisfies q(s) ≤ μ₀·gᵀs, never shrinking α
// below the first breakpoint. On return x holds the accepted point and
// step the feasible step that produced it. hs is scratch of the same
// length as x.
func projectedSearch(x, l, u, g, d []float64, h linop.Sym, step, hs []float64) {
	alpha := one
	_, brptMin, _ := breakpoints(x, d, l, u)

	for search := true; search && alpha > brptMin; {
		projStep(step, x, d, l, u, alpha)
		h.MulVec(hs, step)
		gts := floats.Dot(g, step)
		if half*floats.Dot(hs, step)+gts <= mu0*gts {
			search = false
		} else {
			alpha = lsInterpf * alpha
		}
	}

	// a failing backtrack is cut off at the first breakpoint
	if alpha < one && alpha < brptMin {
		alpha = brptMin
	}
	projStep(step, x, d, l, u, alpha)
	floats.Add(x, step)
}

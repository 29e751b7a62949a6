// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/nlprog/linop"
)

// trqsol returns the largest σ ≥ 0 such that ‖x + σ·p‖ = delta,
// assuming ‖x‖ ≤ delta. The quadratic is solved in the numerically
// stable form that avoids cancellation between its roots.
func trqsol(x, p []float64, delta float64) float64 {
	ptx := floats.Dot(p, x)
	ptp := floats.Dot(p, p)
	xtx := floats.Dot(x, x)
	dsq := delta * delta

	rad := math.Sqrt(ptx*ptx + ptp*(dsq-xtx))
	switch {
	case ptx > zero:
		return (dsq - xtx) / (ptx + rad)
	case rad > zero:
		return (rad - ptx) / ptp
	default:
		return zero
	}
}

// truncatedCG approximately minimizes the quadratic gᵀ𝐰 + ½𝐰ᵀ𝐇𝐰 over
// the ball ‖𝐰‖ ≤ delta by conjugate gradient iterations, leaving the
// step in w. The iteration stops once the residual meets tol (or the
// secondary stol), or as soon as negative curvature or the ball
// boundary is met, in which case the step is moved onto the boundary.
// r, p and q are scratch vectors of the same length as w.
func truncatedCG(w, g []float64, h linop.Sym, delta, tol, stol float64, iterMax int, r, p, q []float64) (iters int, info cgInfo) {
	clear(w)
	for i, v := range g {
		r[i] = -v
	}
	rho := floats.Dot(r, r)
	copy(p, r)

	if rho == zero {
		return 0, cgResidual
	}

	for iters = 1; iters <= iterMax; iters++ {
		h.MulVec(q, p)
		ptq := floats.Dot(p, q)

		var alpha float64
		if ptq > zero {
			alpha = rho / ptq
		}
		if sigma := trqsol(w, p, delta); ptq <= zero || alpha >= sigma {
			floats.AddScaled(w, sigma, p)
			if ptq <= zero {
				return iters, cgNegCurve
			}
			return iters, cgBoundary
		}

		floats.AddScaled(w, alpha, p)
		floats.AddScaled(r, -alpha, q)

		rhoNew := floats.Dot(r, r)
		switch rnorm := math.Sqrt(rhoNew); {
		case rnorm <= tol:
			return iters, cgResidual
		case rnorm <= stol:
			return iters, cgPrecond
		}

		beta := rhoNew / rho
		for i, v := range r {
			p[i] = v + beta*p[i]
		}
		rho = rhoNew
	}
	return iterMax, cgMaxIter
}

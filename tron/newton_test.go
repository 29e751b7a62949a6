// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/nlprog/linop"
)

// quadSetup prepares an optimizer, workspace and location for the
// quadratic ½𝐱ᵀ𝐇𝐱 with H = diag(2, 4) over the given box.
func quadSetup(x, l, u []float64, radius float64) (*Optimizer, *Workspace, *iterLoc) {
	o := &Optimizer{iterSpec{n: len(x), l: l, u: u, cgtol: 0.1}}
	w := o.Init()
	w.h = diagOp(2, 4)
	w.radius = radius
	w.alphac = one
	g := make([]float64, len(x))
	w.h.MulVec(g, x)
	return o, w, &iterLoc{x: x, g: g}
}

func decrease(h linop.Sym, g, s []float64) (q, gts float64) {
	hs := make([]float64, len(s))
	h.MulVec(hs, s)
	gts = floats.Dot(g, s)
	return half*floats.Dot(hs, s) + gts, gts
}

func TestCauchyInterpolates(t *testing.T) {
	// the unit scaling oversteps a unit radius and must backtrack
	o, w, loc := quadSetup([]float64{1, 1}, []float64{-10, -10}, []float64{10, 10}, 1)
	cauchy(loc, &o.iterSpec, &w.iterCtx)

	require.LessOrEqual(t, floats.Norm(w.s, 2), w.radius+1e-12)
	q, gts := decrease(w.h, loc.g, w.s)
	require.LessOrEqual(t, q, mu0*gts)
	require.Less(t, w.alphac, one)
}

func TestCauchyExtrapolates(t *testing.T) {
	// a tiny inherited scaling satisfies the decrease condition right
	// away and is grown back toward the useful range
	o, w, loc := quadSetup([]float64{1, 1}, []float64{-10, -10}, []float64{10, 10}, 10)
	w.alphac = 1e-3
	cauchy(loc, &o.iterSpec, &w.iterCtx)

	require.InDelta(t, 0.1, w.alphac, 1e-12)
	require.LessOrEqual(t, floats.Norm(w.s, 2), w.radius)
	q, gts := decrease(w.h, loc.g, w.s)
	require.LessOrEqual(t, q, mu0*gts)
}

func TestCauchyVanishingProjection(t *testing.T) {
	// at a corner where the gradient pushes outward the projected
	// direction is empty and the step must stay zero
	o, w, loc := quadSetup([]float64{-10, -10}, []float64{-10, -10}, []float64{10, 10}, 1)
	loc.g = []float64{5, 5}
	cauchy(loc, &o.iterSpec, &w.iterCtx)

	require.Equal(t, []float64{0, 0}, w.s)
	require.Equal(t, one, w.alphac)
}

func TestProjectedSearchFullStep(t *testing.T) {
	// a unit step short of every breakpoint is taken as is: the ray is
	// unprojected there and the direction already decreases the model
	h := diagOp(1, 1)
	x := []float64{2, 2}
	l, u := []float64{-10, -10}, []float64{10, 10}
	g := []float64{2, 2}
	step, hs := make([]float64, 2), make([]float64, 2)

	projectedSearch(x, l, u, g, []float64{-2, -2}, h, step, hs)
	require.Equal(t, []float64{0, 0}, x)
	require.Equal(t, []float64{-2, -2}, step)
}

func TestProjectedSearchBacktracks(t *testing.T) {
	// clipped steps beyond the first breakpoint fail the decrease
	// condition, so α halves until the breakpoint is reached
	h := diagOp(4, 4)
	x := []float64{1, 1}
	l, u := []float64{0, 0}, []float64{10, 10}
	g := []float64{1, 1}
	step, hs := make([]float64, 2), make([]float64, 2)

	projectedSearch(x, l, u, g, []float64{-4, -4}, h, step, hs)
	require.Equal(t, []float64{0, 0}, x)
	require.Equal(t, []float64{-1, -1}, step)
}

func TestProjectedSearchSnapsToBreakpoint(t *testing.T) {
	// halving lands below the first breakpoint, so the search forces
	// the bound into the active set instead
	h := diagOp(100, 100)
	x := []float64{1, 1}
	l, u := []float64{0.4, 0.4}, []float64{10, 10}
	g := []float64{1, 1}
	step, hs := make([]float64, 2), make([]float64, 2)

	projectedSearch(x, l, u, g, []float64{-2, -2}, h, step, hs)
	require.Equal(t, []float64{0.4, 0.4}, x)
	require.Equal(t, []float64{-0.6, -0.6}, step)
}

func TestProjectedNewtonRefines(t *testing.T) {
	// interior quadratic: one minor iteration reaches the minimizer
	o, w, loc := quadSetup([]float64{1, 1}, []float64{-10, -10}, []float64{10, 10}, 10)
	cauchy(loc, &o.iterSpec, &w.iterCtx)
	iters, info := projectedNewton(loc, &o.iterSpec, &w.iterCtx)

	require.Equal(t, newtonConv, info)
	require.Positive(t, iters)
	require.InDelta(t, 0.0, w.xt[0], 1e-10)
	require.InDelta(t, 0.0, w.xt[1], 1e-10)
	for i := range w.s {
		require.InDelta(t, w.xt[i], loc.x[i]+w.s[i], 1e-12)
	}
}

func TestProjectedNewtonIterationBudget(t *testing.T) {
	// the first refinement takes a full two-iteration CG solve but the
	// projected search pins x₀ to its bound, leaving a large reduced
	// gradient: the accumulated budget of one iteration per variable is
	// spent before a second minor round may run
	o, w, loc := quadSetup([]float64{3, 3}, []float64{0, 0}, []float64{10, 10}, 100)
	w.h = diagOp(1, 4)
	loc.g = []float64{4, 1}
	iters, info := projectedNewton(loc, &o.iterSpec, &w.iterCtx)

	require.Equal(t, newtonMaxIter, info)
	require.Equal(t, 2, iters)
	require.InDelta(t, 0.0, w.xt[0], 1e-12)
	require.InDelta(t, 2.75, w.xt[1], 1e-12)
}

func TestProjectedNewtonActiveBounds(t *testing.T) {
	// the Cauchy point pins every variable to its lower bound, leaving
	// no free set to refine
	o, w, loc := quadSetup([]float64{2, 2}, []float64{1, 1}, []float64{10, 10}, 10)
	loc.g = []float64{2, 2}
	w.h = diagOp(1, 1)
	cauchy(loc, &o.iterSpec, &w.iterCtx)
	iters, info := projectedNewton(loc, &o.iterSpec, &w.iterCtx)

	require.Equal(t, newtonConv, info)
	require.Zero(t, iters)
	require.Equal(t, []float64{1, 1}, w.xt)
	require.Equal(t, []float64{-1, -1}, w.s)
}

// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import (
	"time"

	"go.uber.org/zap"

	"github.com/curioloop/nlprog/linop"
	"github.com/curioloop/nlprog/model"
)

const (
	zero = 0.0
	half = 0.5
	one  = 1.0
	ten  = 10.0
	eps  = float64(7)/3 - float64(4)/3 - 1.
)

// sufficient decrease fraction shared by the Cauchy search and the
// projected linesearch
const mu0 = 0.01

const (
	// backtracking factor of the Cauchy step search
	interpf = 0.1
	// extrapolation factor of the Cauchy step search
	extrapf = 10.0
	// backtracking factor of the projected linesearch
	lsInterpf = 0.5
)

// cgInfo reports how a truncated conjugate gradient solve ended.
type cgInfo int

const (
	// cgResidual the residual met the convergence tolerance.
	cgResidual cgInfo = 1 + iota
	// cgPrecond the preconditioned residual met its tolerance.
	cgPrecond
	// cgNegCurve a negative curvature direction put the step on the boundary.
	cgNegCurve
	// cgBoundary the iterates left the trust region, step on the boundary.
	cgBoundary
	// cgMaxIter the iteration limit was exhausted.
	cgMaxIter
)

// newtonInfo reports how the projected Newton refinement ended.
type newtonInfo int

const (
	// newtonConv the reduced gradient met its relative tolerance.
	newtonConv newtonInfo = 1 + iota
	// newtonBound the trust region prevents further progress.
	newtonBound
	// newtonMaxIter the iteration limit was exhausted.
	newtonMaxIter
)

// Status describes how a solve ended.
type Status int

const (
	// Running solve still in progress.
	Running Status = iota
	// AbsoluteTolerance actual and predicted reductions fell below the absolute tolerance.
	AbsoluteTolerance
	// RelativeTolerance actual and predicted reductions fell below the tolerance relative to |f|.
	RelativeTolerance
	// GradientTolerance the projected gradient norm met its relative threshold.
	GradientTolerance
	// MaxIterations the accepted iteration limit was exhausted.
	MaxIterations
	// MaxEvaluations the objective evaluation limit was exhausted.
	MaxEvaluations
	// UserExit the post-iteration hook requested the stop.
	UserExit
)

func (s Status) String() string {
	switch s {
	case AbsoluteTolerance:
		return "fatol"
	case RelativeTolerance:
		return "frtol"
	case GradientTolerance:
		return "gtol"
	case MaxIterations:
		return "itr"
	case MaxEvaluations:
		return "feval"
	case UserExit:
		return "usr"
	default:
		return "run"
	}
}

type iterSpec struct {
	n      int
	l, u   []float64
	stop   Termination
	cgtol  float64
	radius float64
	hook   Hook
	model  model.Model
	log    *zap.SugaredLogger
}

type iterLoc struct {
	f float64   // current objective value
	x []float64 // current iterate
	g []float64 // current gradient
}

type iterCtx struct {
	radius  float64 // current trust region radius Δ
	alphac  float64 // Cauchy step scaling kept across iterations
	stoptol float64 // absolute projected gradient threshold
	gnorm   float64 // ‖∇f(𝐱)‖
	iter    int     // accepted iterations
	feval   int     // objective evaluations
	cgiter  int     // conjugate gradient iterations

	elapsed time.Duration

	h linop.Sym // Hessian operator bound to the current iterate

	s, hs, d, xt           []float64 // full space scratch
	gf, xf, lf, uf, sf, hf []float64 // free subset gathers
	cw, cr, cp, cq         []float64 // conjugate gradient vectors
	free                   []int
}

func (ctx *iterCtx) reset() {
	ctx.radius, ctx.alphac, ctx.stoptol, ctx.gnorm = zero, zero, zero, zero
	ctx.iter, ctx.feval, ctx.cgiter = 0, 0, 0
	ctx.elapsed = 0
	ctx.h = nil
}

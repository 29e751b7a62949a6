// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regsqp

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
)

// Penalty and proximal regularization policy.
const (
	// smallest dual regularization δ
	penaltyMin = 1e-8
	// growth factor of the penalty weight ν on slow constraint progress
	penaltyFactor = 10.0
	// scaling and flattening of the residual-driven δ update
	penaltyAlpha = 0.1
	penaltyGamma = 1.8
	// acceptance margin ε = 10·δ around the residual targets
	epsilonFactor = 10.0

	// smallest primal proximal shift ρ
	proxMin = 1e-3
	// fraction of the last successful shift tried first
	proxFirstScale = 0.3
	// escalation factors of repeated convexification bumps
	proxBumpSmall = 8.0
	proxBumpLarge = 100.0
)

// Status describes how a solve ended.
type Status int

const (
	// Running solve still in progress.
	Running Status = iota
	// Optimal the optimality residual met its tolerance.
	Optimal
	// MaxIterations the iteration limit was exhausted.
	MaxIterations
	// ConvexificationFailure proximal bumps could not fix the Hessian inertia.
	ConvexificationFailure
	// RegularizationFailure dual bumps could not fix the Jacobian rank.
	RegularizationFailure
	// LineSearchFailure the merit linesearch found no acceptable step.
	LineSearchFailure
	// UserExit the post-iteration hook requested the stop.
	UserExit
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "opt"
	case MaxIterations:
		return "iter"
	case ConvexificationFailure:
		return "cnvx"
	case RegularizationFailure:
		return "degn"
	case LineSearchFailure:
		return "fail"
	case UserExit:
		return "user"
	default:
		return "run"
	}
}

type sqpSpec struct {
	n, m    int
	stop    Termination
	theta   float64
	delta   float64
	bumpMax int
	hook    Hook
	model   model.Model
	log     *zap.SugaredLogger
}

type sqpLoc struct {
	f    float64
	x, y []float64     // current primal-dual pair
	g, c []float64     // objective gradient and constraint values
	jac  []linop.Entry // constraint Jacobian triplets
	gl   []float64     // Lagrangian gradient ∇f − 𝐉ᵀy
}

type sqpCtx struct {
	penalty  float64 // augmented Lagrangian weight ν, dual regularization is 1/ν
	prox     float64 // primal proximal shift ρ of the current factorization
	proxLast float64 // shift of the last successful factorization
	iter     int

	elapsed time.Duration

	kkt            *linop.SymCoord
	rhs, step, res []float64 // primal-dual systems, length n+m
	gphi, xt, gt   []float64 // merit gradient and trial point scratch
	xk             []float64 // linesearch base point
	dy, ct, ys     []float64 // dual step, trial constraints, trial duals
}

func (ctx *sqpCtx) reset() {
	ctx.penalty, ctx.prox, ctx.proxLast = zero, zero, zero
	ctx.iter = 0
	ctx.elapsed = 0
	ctx.kkt.Reset()
}

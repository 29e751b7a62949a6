// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regsqp

import (
	"math"
	"slices"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/curioloop/nlprog/linop"
	"github.com/curioloop/nlprog/model"
)

// Hook observes the iterate and its Lagrangian gradient after every
// accepted outer iteration and after every inner step.
// Returning true stops the solve with UserExit.
type Hook func(x, gl []float64) (stop bool)

// Termination bundles the stopping rules of the iteration.
// Zero fields fall back to their defaults.
type Termination struct {
	// AbsTolerance stops the solve once the optimality residual
	// ‖∇f − 𝐉ᵀy‖ + ‖c‖ drops below it (default 1e-7).
	AbsTolerance float64
	// RelTolerance applies the same test scaled by the residual at the
	// start point (default 1e-6).
	RelTolerance float64
	// MaxIterations caps the outer and inner iterations combined
	// (default max(100, 10·n)).
	MaxIterations int
}

// Problem describes an equality constrained minimization
//
//	min f(𝐱)  s.t.  c(𝐱) = 0
//
// solved by a regularized SQP method. Each iteration solves the
// regularized KKT system for an extrapolated primal-dual step and
// falls back to damped Newton steps on the proximal augmented
// Lagrangian when the extrapolation fails to shrink the residual.
type Problem struct {
	// Model provides the objective, constraints and their derivatives.
	// It must not declare finite variable bounds.
	Model model.Model
	// Stop holds the termination rules.
	Stop Termination
	// Theta is the residual decrease factor an extrapolated step must
	// reach to be accepted (default 0.99).
	Theta float64
	// Delta is the initial dual regularization δ, the inverse of the
	// augmented Lagrangian weight (default 1).
	Delta float64
	// BumpMax caps the regularization bumps of a single factorization
	// (default 15).
	BumpMax int
	// Hook, when set, runs after every iteration.
	Hook Hook
}

// Optimizer holds the validated problem specification.
type Optimizer struct {
	sqpSpec
}

// Workspace holds the preallocated iteration state.
// A workspace serves one Fit at a time but may be reused across calls.
type Workspace struct {
	n, m int
	sqpCtx
}

// Result carries the final iterate of a solve.
type Result struct {
	OK bool      // the optimality residual met its tolerance
	F  float64   // final objective value
	X  []float64 // final primal iterate
	Y  []float64 // final multiplier estimate
	G  []float64 // final objective gradient
	C  []float64 // final constraint residuals
	Summary
}

// Summary aggregates the iteration counters of a solve.
type Summary struct {
	Status  Status
	NumIter int
	Elapsed time.Duration
}

// New validates the problem and fills in defaults.
// A nil logger disables iteration logging.
func (p *Problem) New(log *zap.SugaredLogger) (*Optimizer, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("regsqp")

	if p.Model == nil {
		return nil, errors.New("regsqp: model is required")
	}

	var err error
	n, m := p.Model.N(), p.Model.M()
	if n <= 0 {
		err = multierr.Append(err, errors.New("regsqp: model has no variables"))
	}
	if m < 0 {
		err = multierr.Append(err, errors.New("regsqp: model has a negative constraint count"))
	}
	l, u := p.Model.Bounds()
	for i := range l {
		if !math.IsInf(l[i], -1) || !math.IsInf(u[i], 1) {
			err = multierr.Append(err, errors.Errorf("regsqp: bound constraints are not supported (variable %d)", i))
			break
		}
	}
	stop := p.Stop
	if stop.AbsTolerance < 0 || stop.RelTolerance < 0 {
		err = multierr.Append(err, errors.New("regsqp: tolerances must not be negative"))
	}
	if stop.MaxIterations < 0 {
		err = multierr.Append(err, errors.New("regsqp: iteration limit must not be negative"))
	}
	if p.Theta < 0 || p.Theta >= 1 {
		err = multierr.Append(err, errors.New("regsqp: theta must lie in [0, 1)"))
	}
	if p.Delta < 0 || p.BumpMax < 0 {
		err = multierr.Append(err, errors.New("regsqp: regularization parameters must not be negative"))
	}
	if err != nil {
		return nil, err
	}

	if stop.AbsTolerance == 0 {
		stop.AbsTolerance = 1e-7
	}
	if stop.RelTolerance == 0 {
		stop.RelTolerance = 1e-6
	}
	if stop.MaxIterations == 0 {
		stop.MaxIterations = max(100, 10*n)
	}
	theta := p.Theta
	if theta == 0 {
		theta = 0.99
	}
	delta := math.Max(p.Delta, penaltyMin)
	if p.Delta == 0 {
		delta = one
	}
	bumpMax := p.BumpMax
	if bumpMax == 0 {
		bumpMax = 15
	}

	return &Optimizer{sqpSpec{
		n:       n,
		m:       m,
		stop:    stop,
		theta:   theta,
		delta:   delta,
		bumpMax: bumpMax,
		hook:    p.Hook,
		model:   p.Model,
		log:     log,
	}}, nil
}

// Init allocates a workspace sized for the problem.
func (o *Optimizer) Init() *Workspace {
	n, m := o.n, o.m
	nm := n + m
	w := &Workspace{n: n, m: m}
	w.kkt = linop.NewSymCoord(nm)
	wrk := make([]float64, 3*nm+4*n+3*m)
	w.rhs, wrk = wrk[:nm], wrk[nm:]
	w.step, wrk = wrk[:nm], wrk[nm:]
	w.res, wrk = wrk[:nm], wrk[nm:]
	w.gphi, wrk = wrk[:n], wrk[n:]
	w.xt, wrk = wrk[:n], wrk[n:]
	w.gt, wrk = wrk[:n], wrk[n:]
	w.xk, wrk = wrk[:n], wrk[n:]
	w.dy, wrk = wrk[:m], wrk[m:]
	w.ct, wrk = wrk[:m], wrk[m:]
	w.ys = wrk[:m]
	return w
}

// Fit minimizes the model from the primal-dual pair (x, y) using
// workspace w. A nil y starts from the zero multiplier estimate.
// Neither slice is modified.
func (o *Optimizer) Fit(x, y []float64, w *Workspace) *Result {
	if len(x) != o.n {
		panic("initial x dimension not match spec")
	}
	if y == nil {
		y = make([]float64, o.m)
	}
	if len(y) != o.m {
		panic("initial y dimension not match spec")
	}
	if w == nil || w.n != o.n || w.m != o.m {
		panic("workspace dimension not match spec")
	}
	w.reset()

	loc := sqpLoc{
		x:  slices.Clone(x),
		y:  slices.Clone(y),
		g:  make([]float64, o.n),
		c:  make([]float64, o.m),
		gl: make([]float64, o.n),
	}
	driver := sqpDriver{optimizer: o, workspace: w, location: &loc}
	status := driver.mainLoop()

	return &Result{
		OK: status == Optimal,
		F:  loc.f,
		X:  loc.x,
		Y:  loc.y,
		G:  loc.g,
		C:  loc.c,
		Summary: Summary{
			Status:  status,
			NumIter: w.iter,
			Elapsed: w.elapsed,
		},
	}
}

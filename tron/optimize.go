// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import (
	"slices"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/curioloop/nlprog/model"
)

// Hook observes the iterate and gradient after every iteration.
// Returning true stops the solve with UserExit.
type Hook func(x, g []float64) (stop bool)

// Termination bundles the stopping rules of the iteration.
// Zero fields fall back to their defaults.
type Termination struct {
	// AbsTolerance stops the solve once both the actual and the
	// predicted reduction drop below it (default 1e-6).
	AbsTolerance float64
	// RelTolerance applies the same test scaled by |f(𝐱)| (default 1e-12).
	RelTolerance float64
	// GradTolerance stops the solve once the projected gradient norm
	// drops below GradTolerance times its starting value (default 1e-5).
	GradTolerance float64
	// MaxIterations caps the accepted iterations (default 100·n).
	MaxIterations int
	// MaxEvaluations caps the objective evaluations (default 1000).
	MaxEvaluations int
}

// Problem describes a bound constrained minimization
//
//	min f(𝐱)  s.t.  l ≤ 𝐱 ≤ u
//
// solved by a trust region Newton method. Each iteration builds a
// Cauchy point from the projected gradient, refines it with truncated
// conjugate gradient solves on the free variables and accepts or
// rejects the step by comparing the actual reduction against the
// quadratic model prediction.
type Problem struct {
	// Model provides the objective, gradient, Hessian products and
	// bounds. It must not declare equality constraints.
	Model model.Model
	// Stop holds the termination rules.
	Stop Termination
	// CGTolerance is the relative residual reduction asked of each
	// truncated conjugate gradient solve (default 0.1).
	CGTolerance float64
	// Radius is the initial trust region radius (default ‖∇f(𝐱₀)‖).
	Radius float64
	// Hook, when set, runs after every iteration.
	Hook Hook
}

// Optimizer holds the validated problem specification.
type Optimizer struct {
	iterSpec
}

// Workspace holds the preallocated iteration state.
// A workspace serves one Fit at a time but may be reused across calls.
type Workspace struct {
	n int
	iterCtx
}

// Result carries the final iterate of a solve.
type Result struct {
	OK bool      // one of the tolerance rules was met
	F  float64   // final objective value
	X  []float64 // final iterate
	G  []float64 // final gradient
	Summary
}

// Summary aggregates the iteration counters of a solve.
type Summary struct {
	Status  Status
	NumIter int
	NumEval int
	NumCG   int
	Elapsed time.Duration
}

// New validates the problem and fills in defaults.
// A nil logger disables iteration logging.
func (p *Problem) New(log *zap.SugaredLogger) (*Optimizer, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("tron")

	if p.Model == nil {
		return nil, errors.New("tron: model is required")
	}

	var err error
	n := p.Model.N()
	if n <= 0 {
		err = multierr.Append(err, errors.New("tron: model has no variables"))
	}
	if p.Model.M() != 0 {
		err = multierr.Append(err, errors.New("tron: equality constraints are not supported"))
	}
	l, u := p.Model.Bounds()
	if len(l) != n || len(u) != n {
		err = multierr.Append(err, errors.Errorf("tron: bound sizes (%d, %d) do not match %d variables", len(l), len(u), n))
	} else {
		for i := range l {
			if l[i] > u[i] {
				err = multierr.Append(err, errors.Errorf("tron: bound range [%g, %g] of variable %d is empty", l[i], u[i], i))
				break
			}
		}
	}
	stop := p.Stop
	if stop.AbsTolerance < 0 || stop.RelTolerance < 0 || stop.GradTolerance < 0 {
		err = multierr.Append(err, errors.New("tron: tolerances must not be negative"))
	}
	if stop.MaxIterations < 0 || stop.MaxEvaluations < 0 {
		err = multierr.Append(err, errors.New("tron: iteration limits must not be negative"))
	}
	if p.CGTolerance < 0 || p.Radius < 0 {
		err = multierr.Append(err, errors.New("tron: conjugate gradient tolerance and radius must not be negative"))
	}
	if err != nil {
		return nil, err
	}

	if stop.AbsTolerance == 0 {
		stop.AbsTolerance = 1e-6
	}
	if stop.RelTolerance == 0 {
		stop.RelTolerance = 1e-12
	}
	if stop.GradTolerance == 0 {
		stop.GradTolerance = 1e-5
	}
	if stop.MaxIterations == 0 {
		stop.MaxIterations = 100 * n
	}
	if stop.MaxEvaluations == 0 {
		stop.MaxEvaluations = 1000
	}
	cgtol := p.CGTolerance
	if cgtol == 0 {
		cgtol = 0.1
	}

	return &Optimizer{iterSpec{
		n:      n,
		l:      l,
		u:      u,
		stop:   stop,
		cgtol:  cgtol,
		radius: p.Radius,
		hook:   p.Hook,
		model:  p.Model,
		log:    log,
	}}, nil
}

// Init allocates a workspace sized for the problem.
func (o *Optimizer) Init() *Workspace {
	n := o.n
	w := &Workspace{n: n}
	wrk := make([]float64, 14*n)
	w.s, wrk = wrk[:n], wrk[n:]
	w.hs, wrk = wrk[:n], wrk[n:]
	w.d, wrk = wrk[:n], wrk[n:]
	w.xt, wrk = wrk[:n], wrk[n:]
	w.gf, wrk = wrk[:n], wrk[n:]
	w.xf, wrk = wrk[:n], wrk[n:]
	w.lf, wrk = wrk[:n], wrk[n:]
	w.uf, wrk = wrk[:n], wrk[n:]
	w.sf, wrk = wrk[:n], wrk[n:]
	w.hf, wrk = wrk[:n], wrk[n:]
	w.cw, wrk = wrk[:n], wrk[n:]
	w.cr, wrk = wrk[:n], wrk[n:]
	w.cp, wrk = wrk[:n], wrk[n:]
	w.cq = wrk[:n]
	w.free = make([]int, 0, n)
	return w
}

// Fit minimizes the model from the start point x using workspace w.
// The start point is projected onto the bounds before the first
// evaluation. x itself is not modified.
func (o *Optimizer) Fit(x []float64, w *Workspace) *Result {
	if len(x) != o.n {
		panic("initial x dimension not match spec")
	}
	if w == nil || w.n != o.n {
		panic("workspace dimension not match spec")
	}
	w.reset()

	loc := iterLoc{
		x: slices.Clone(x),
		g: make([]float64, o.n),
	}
	driver := iterDriver{optimizer: o, workspace: w, location: &loc}
	status := driver.mainLoop()

	ok := status == AbsoluteTolerance || status == RelativeTolerance || status == GradientTolerance
	return &Result{
		OK: ok,
		F:  loc.f,
		X:  loc.x,
		G:  loc.g,
		Summary: Summary{
			Status:  status,
			NumIter: w.iter,
			NumEval: w.feval,
			NumCG:   w.cgiter,
			Elapsed: w.elapsed,
		},
	}
}

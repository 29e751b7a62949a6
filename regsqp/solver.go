// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regsqp

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/nlprog/lbl"
	"github.com/curioloop/nlprog/linesearch"
)

type sqpDriver struct {
	optimizer *Optimizer
	workspace *Workspace
	location  *sqpLoc
}

const (
	headFormat = "%-5s  %8s  %7s  %7s  %7s  %7s"
	iterFormat = "%-5d  %8.1e  %7.1e  %7.1e  %7.1e  %7.1e"
)

func (d *sqpDriver) mainLoop() Status {
	spec, ctx, loc := &d.optimizer.sqpSpec, &d.workspace.sqpCtx, d.location
	stop := &spec.stop

	start := time.Now()

	ctx.penalty = one / spec.delta
	d.evaluate()
	lagGrad(loc.gl, loc.g, loc.jac, loc.y)
	glnorm := floats.Norm(loc.gl, 2)
	cnorm := floats.Norm(loc.c, 2)
	fnorm := glnorm + cnorm

	d.printHeader()
	d.printIter(glnorm, cnorm)

	d.betterStart(fnorm)
	lagGrad(loc.gl, loc.g, loc.jac, loc.y)
	glnorm = floats.Norm(loc.gl, 2)
	cnorm = floats.Norm(loc.c, 2)
	fnorm = glnorm + cnorm

	tol := stop.RelTolerance*fnorm + stop.AbsTolerance

	status := Running
	if fnorm <= tol {
		status = Optimal
	}

	for status == Running {
		fnorm0, glnorm0, cnorm0 := fnorm, glnorm, cnorm

		ctx.newPenalty(fnorm)
		assemble(ctx.kkt, spec.model, loc.x, loc.y, ctx.penalty, true)
		assembleRHS(ctx.rhs, spec.n, loc.g, loc.c, loc.y, loc.jac)
		if st := d.solveNewton(); st != Running {
			status = st
			break
		}
		epsilon := epsilonFactor / ctx.penalty

		// extrapolated step: move first, judge after
		floats.Add(loc.x, ctx.step[:spec.n])
		for i, v := range loc.y {
			ctx.ys[i] = v + ctx.dy[i]
		}
		d.evaluate()

		lagGrad(loc.gl, loc.g, loc.jac, ctx.ys)
		ext := floats.Norm(loc.gl, 2) + floats.Norm(loc.c, 2)
		accepted := ext <= spec.theta*fnorm0+epsilon
		if accepted {
			copy(loc.y, ctx.ys)
		} else if st := d.solveInner(fnorm0, glnorm0, cnorm0, epsilon); st != Running {
			status = st
			break
		}

		lagGrad(loc.gl, loc.g, loc.jac, loc.y)
		glnorm = floats.Norm(loc.gl, 2)
		cnorm = floats.Norm(loc.c, 2)
		fnorm = glnorm + cnorm
		if accepted {
			ctx.iter++
			if ctx.iter%20 == 0 {
				d.printHeader()
			}
			d.printIter(glnorm, cnorm)
			if spec.hook != nil && spec.hook(loc.x, loc.gl) {
				status = UserExit
				break
			}
		}

		if fnorm <= tol {
			status = Optimal
		} else if ctx.iter >= stop.MaxIterations {
			status = MaxIterations
		}
	}

	ctx.elapsed = time.Since(start)
	d.printExit(status)
	return status
}

// evaluate refreshes the location at the current iterate.
func (d *sqpDriver) evaluate() {
	loc, m := d.location, d.optimizer.model
	loc.f = m.Obj(loc.x)
	m.Grad(loc.g, loc.x)
	m.Cons(loc.c, loc.x)
	loc.jac = m.Jac(loc.x)
}

// betterStart probes the plain Newton-KKT step at the start point and
// keeps it when it strictly improves the optimality residual. The system
// is solved as assembled, whatever its inertia: no repair bumps run here
// and the penalty and proximal state stay untouched.
func (d *sqpDriver) betterStart(fnorm float64) {
	spec, ctx, loc := &d.optimizer.sqpSpec, &d.workspace.sqpCtx, d.location
	m := spec.model
	n := spec.n

	assemble(ctx.kkt, m, loc.x, loc.y, ctx.penalty, false)
	assembleRHS(ctx.rhs, n, loc.g, loc.c, loc.y, loc.jac)
	fac, err := lbl.Factorize(ctx.kkt)
	if err != nil {
		return
	}
	fac.Solve(ctx.step, ctx.rhs)
	fac.Residual(ctx.res, ctx.step, ctx.rhs)
	spec.log.Debugf("step accuracy: %3.2e", floats.Norm(ctx.res, 2))
	for i := 0; i < spec.m; i++ {
		ctx.dy[i] = -ctx.step[n+i]
	}

	for i, v := range loc.x {
		ctx.xt[i] = v + ctx.step[i]
	}
	for i, v := range loc.y {
		ctx.ys[i] = v + ctx.dy[i]
	}
	ft := m.Obj(ctx.xt)
	m.Grad(ctx.gt, ctx.xt)
	m.Cons(ctx.ct, ctx.xt)
	jt := m.Jac(ctx.xt)
	lagGrad(ctx.gphi, ctx.gt, jt, ctx.ys)

	if trial := floats.Norm(ctx.gphi, 2) + floats.Norm(ctx.ct, 2); trial < fnorm {
		spec.log.Debugf("better start %.2e -> %.2e", fnorm, trial)
		copy(loc.x, ctx.xt)
		copy(loc.y, ctx.ys)
		loc.f = ft
		copy(loc.g, ctx.gt)
		copy(loc.c, ctx.ct)
		loc.jac = jt
	}
}

// solveInner restores the optimality targets with damped SQP steps on
// the augmented Lagrangian merit
//
//	φ(𝐱) = f(𝐱) − yᵀc(𝐱) + ½ν‖c(𝐱)‖² + ½ρ‖𝐱 − 𝐱ₖ‖²
//
// after a rejected extrapolation, until the combined residual meets
// θ‖F‖ + ε. The multipliers are promoted to the first order estimate
// y − νc once both the Lagrangian and the constraint targets are met,
// and the penalty grows whenever the constraint target lags behind.
// The user hook runs after every inner step. A failed merit search
// abandons the inner loop: the outer iteration resumes with a fresh
// penalty unless no step was taken at all.
func (d *sqpDriver) solveInner(fnorm0, glnorm0, cnorm0, epsilon float64) Status {
	spec, ctx, loc := &d.optimizer.sqpSpec, &d.workspace.sqpCtx, d.location
	n := spec.n
	m := spec.model

	target := spec.theta*fnorm0 + epsilon
	gTarget := spec.theta*glnorm0 + half*epsilon
	cTarget := spec.theta*cnorm0 + half*epsilon

	cnorm := floats.Norm(loc.c, 2)
	for i, ci := range loc.c {
		ctx.ys[i] = loc.y[i] - ctx.penalty*ci
	}
	lagGrad(ctx.gphi, loc.g, loc.jac, ctx.ys)
	gphinorm := floats.Norm(ctx.gphi, 2)

	// grow the penalty before iterating when the violation lags
	if cnorm > cTarget {
		ctx.penalty *= penaltyFactor
	}
	if gphinorm <= gTarget && cnorm <= cTarget {
		copy(loc.y, ctx.ys)
	}
	if gphinorm+cnorm <= target {
		return Running
	}

	for steps := 0; ; steps++ {
		copy(ctx.xk, loc.x)
		assemble(ctx.kkt, m, loc.x, loc.y, ctx.penalty, true)
		assembleRHS(ctx.rhs, n, loc.g, loc.c, loc.y, loc.jac)
		if st := d.solveNewton(); st != Running {
			return st
		}
		dx := ctx.step[:n]
		dxsq := floats.Dot(dx, dx)

		for i, ci := range loc.c {
			ctx.ys[i] = loc.y[i] - ctx.penalty*ci
		}
		lagGrad(ctx.gphi, loc.g, loc.jac, ctx.ys)
		slope := floats.Dot(ctx.gphi, dx)
		value := loc.f - floats.Dot(loc.y, loc.c) + half*ctx.penalty*floats.Dot(loc.c, loc.c)

		eval := func(t float64) (float64, float64) {
			for i := range ctx.xt {
				ctx.xt[i] = ctx.xk[i] + t*dx[i]
			}
			ft := m.Obj(ctx.xt)
			m.Grad(ctx.gt, ctx.xt)
			m.Cons(ctx.ct, ctx.xt)
			phi := ft - floats.Dot(loc.y, ctx.ct) +
				half*ctx.penalty*floats.Dot(ctx.ct, ctx.ct) +
				half*ctx.prox*t*t*dxsq
			dphi := floats.Dot(ctx.gt, dx) + ctx.prox*t*dxsq
			for _, e := range m.Jac(ctx.xt) {
				dphi -= (loc.y[e.Row] - ctx.penalty*ctx.ct[e.Row]) * e.Val * dx[e.Col]
			}
			return phi, dphi
		}

		ls := linesearch.ArmijoWolfe{Step: one, BkMax: 10, Decr: 1.75}
		t, phi, err := ls.Search(eval, value, slope)
		if err != nil {
			spec.log.Debugf("merit search: %v", err)
			if steps == 0 {
				return LineSearchFailure
			}
			return Running
		}
		spec.log.Debugf("%7.1e  %8.1e", t, phi)

		for i := range loc.x {
			loc.x[i] = ctx.xk[i] + t*dx[i]
		}
		d.evaluate()

		cnorm = floats.Norm(loc.c, 2)
		for i, ci := range loc.c {
			ctx.ys[i] = loc.y[i] - ctx.penalty*ci
		}
		lagGrad(ctx.gphi, loc.g, loc.jac, ctx.ys)
		gphinorm = floats.Norm(ctx.gphi, 2)

		if gphinorm <= gTarget {
			if cnorm <= cTarget {
				copy(loc.y, ctx.ys)
			} else {
				ctx.penalty *= penaltyFactor
			}
		}

		ctx.iter++
		d.printIter(gphinorm, cnorm)

		if spec.hook != nil {
			lagGrad(loc.gl, loc.g, loc.jac, loc.y)
			if spec.hook(loc.x, loc.gl) {
				return UserExit
			}
		}
		if gphinorm+cnorm <= target {
			return Running
		}
		if ctx.iter >= spec.stop.MaxIterations {
			return MaxIterations
		}
	}
}

// newPenalty rescales the dual regularization from the optimality
// residual so the penalty weight grows no faster than the iterates
// approach feasibility, with a hard floor at penaltyMin.
func (ctx *sqpCtx) newPenalty(fnorm float64) {
	delta := one / ctx.penalty
	delta = math.Min(fnorm, math.Min(penaltyAlpha*delta, math.Pow(delta, penaltyGamma)))
	ctx.penalty = one / math.Max(delta, penaltyMin)
}

func (d *sqpDriver) printHeader() {
	log := d.optimizer.log
	header := fmt.Sprintf(headFormat, "iter", "f", "‖c‖", "‖∇L‖", "ρ", "δ")
	log.Info(header)
	log.Info(strings.Repeat("-", len([]rune(header))))
}

func (d *sqpDriver) printIter(glnorm, cnorm float64) {
	ctx, loc := &d.workspace.sqpCtx, d.location
	d.optimizer.log.Infof(iterFormat, ctx.iter, loc.f, cnorm, glnorm, ctx.prox, one/ctx.penalty)
}

func (d *sqpDriver) printExit(status Status) {
	ctx := &d.workspace.sqpCtx
	d.optimizer.log.Infof("exit %s after %d iterations in %s", status, ctx.iter, ctx.elapsed)
}

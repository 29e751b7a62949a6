// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/nlprog/linop"
)

type iterDriver struct {
	optimizer *Optimizer
	workspace *Workspace
	location  *iterLoc
}

const (
	headFormat = "%-5s  %8s  %7s  %5s  %8s  %8s  %8s  %4s"
	iterFormat = "%-5d  %8.2e  %7.1e  %5d  %8.1e  %8.1e  %8.1e  %4s"
	zeroFormat = "%-5d  %8.2e  %7.1e  %5s  %8s  %8s  %8.1e  %4s"
)

func (d *iterDriver) mainLoop() Status {
	spec, ctx, loc := &d.optimizer.iterSpec, &d.workspace.iterCtx, d.location
	m := spec.model
	stop := &spec.stop

	start := time.Now()

	clamp(loc.x, spec.l, spec.u)
	loc.f = m.Obj(loc.x)
	m.Grad(loc.g, loc.x)
	ctx.feval = 1
	ctx.gnorm = floats.Norm(loc.g, 2)

	ctx.radius = spec.radius
	if ctx.radius == zero {
		ctx.radius = ctx.gnorm
	}
	ctx.alphac = one
	ctx.stoptol = stop.GradTolerance * projGradNorm(loc.x, loc.g, spec.l, spec.u)
	ctx.h = linop.SymFunc{N: spec.n, Prod: func(dst, v []float64) {
		m.HessProd(dst, loc.x, nil, v)
	}}

	d.printHeader()
	d.printFirst()

	status := Running
	for status == Running {
		ctx.iter++

		cauchy(loc, spec, ctx)
		cgIters, _ := projectedNewton(loc, spec, ctx)
		ctx.cgiter += cgIters

		snorm := floats.Norm(ctx.s, 2)
		ctx.h.MulVec(ctx.hs, ctx.s)
		gts := floats.Dot(loc.g, ctx.s)
		pred := gts + half*floats.Dot(ctx.hs, ctx.s)

		for i, v := range loc.x {
			ctx.xt[i] = v + ctx.s[i]
		}
		fTrial := m.Obj(ctx.xt)
		ctx.feval++

		ratio := stepRatio(loc.f, fTrial, pred)
		ared := loc.f - fTrial

		// the first step also caps the radius by its own length
		if ctx.iter == 1 {
			ctx.radius = math.Min(ctx.radius, snorm)
		}
		ctx.radius = updateRadius(ctx.radius, ratio, snorm, fitAlpha(loc.f, fTrial, gts))

		accepted := ratio > eta0
		if accepted {
			copy(loc.x, ctx.xt)
			loc.f = fTrial
			m.Grad(loc.g, loc.x)
			ctx.gnorm = floats.Norm(loc.g, 2)
		}

		if spec.hook != nil && spec.hook(loc.x, loc.g) {
			status = UserExit
		}

		if ctx.iter%20 == 0 {
			d.printHeader()
		}
		d.printIter(cgIters, ratio, snorm, accepted)

		if math.Abs(ared) <= stop.AbsTolerance && -pred <= stop.AbsTolerance {
			status = AbsoluteTolerance
		}
		if math.Abs(ared) <= stop.RelTolerance*math.Abs(loc.f) && -pred <= stop.RelTolerance*math.Abs(loc.f) {
			status = RelativeTolerance
		}
		if accepted {
			if projGradNorm(loc.x, loc.g, spec.l, spec.u) <= ctx.stoptol {
				status = GradientTolerance
			}
		} else {
			// rejected trials do not count against the iteration limit
			ctx.iter--
		}
		if status == Running {
			if ctx.iter > stop.MaxIterations {
				status = MaxIterations
			} else if ctx.feval >= stop.MaxEvaluations {
				status = MaxEvaluations
			}
		}
	}

	ctx.elapsed = time.Since(start)
	d.printExit(status)
	return status
}

func (d *iterDriver) printHeader() {
	log := d.optimizer.log
	header := fmt.Sprintf(headFormat, "Iter", "f(x)", "|g(x)|", "cg", "rho", "Step", "Radius", "Stat")
	log.Info(header)
	log.Info(strings.Repeat("-", len(header)))
}

func (d *iterDriver) printFirst() {
	ctx, loc := &d.workspace.iterCtx, d.location
	d.optimizer.log.Infof(zeroFormat, 0, loc.f, ctx.gnorm, "", "", "", ctx.radius, "")
}

func (d *iterDriver) printIter(cgIters int, ratio, snorm float64, accepted bool) {
	ctx, loc := &d.workspace.iterCtx, d.location
	stat := ""
	if !accepted {
		stat = "Rej"
	}
	d.optimizer.log.Infof(iterFormat, ctx.iter, loc.f, ctx.gnorm, cgIters, ratio, snorm, ctx.radius, stat)
}

func (d *iterDriver) printExit(status Status) {
	ctx := &d.workspace.iterCtx
	d.optimizer.log.Infof("exit %s after %d iterations (%d evaluations, %d cg) in %s",
		status, ctx.iter, ctx.feval, ctx.cgiter, ctx.elapsed)
}

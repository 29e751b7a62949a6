// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regsqp

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/nlprog/lbl"
)

// solveNewton factorizes the assembled KKT system and solves for the
// primal-dual step. A wrong inertia is repaired in place: a deficit of
// positive eigenvalues gets an escalating proximal shift ρ𝐈 on the
// primal block, a rank deficiency an extra −10/ν term on the dual
// block together with a stronger penalty. The repair gives up after
// bumpMax rounds. On success ctx.step holds the raw solution and
// ctx.dy the dual step.
func (d *sqpDriver) solveNewton() Status {
	spec, ctx := &d.optimizer.sqpSpec, &d.workspace.sqpCtx
	n, m := spec.n, spec.m

	ctx.prox = zero
	fac, err := lbl.Factorize(ctx.kkt)
	sos, fullRank := inertiaOK(fac, err, n, m)

	for bumps := 0; !(sos && fullRank) && bumps <= spec.bumpMax; bumps++ {
		if !sos {
			if ctx.prox == zero {
				ctx.prox = proxMin
				if ctx.proxLast != zero {
					ctx.prox = math.Max(proxMin, proxFirstScale*ctx.proxLast)
				}
				for i := 0; i < n; i++ {
					ctx.kkt.Put(i, i, ctx.prox)
				}
			} else {
				factor := proxBumpSmall
				if ctx.proxLast == zero {
					factor = proxBumpLarge
				}
				for i := 0; i < n; i++ {
					ctx.kkt.Put(i, i, factor*ctx.prox)
				}
				ctx.prox *= factor + one
			}
		}
		if !fullRank {
			for i := 0; i < m; i++ {
				ctx.kkt.Put(n+i, n+i, -penaltyFactor/ctx.penalty)
			}
			ctx.penalty *= penaltyFactor + one
		}
		fac, err = lbl.Factorize(ctx.kkt)
		sos, fullRank = inertiaOK(fac, err, n, m)
	}

	switch {
	case !sos:
		return ConvexificationFailure
	case !fullRank:
		return RegularizationFailure
	}

	ctx.proxLast = ctx.prox
	fac.Solve(ctx.step, ctx.rhs)
	fac.Refine(ctx.step, ctx.rhs, 1)
	fac.Residual(ctx.res, ctx.step, ctx.rhs)
	spec.log.Debugf("newton residual %.1e", floats.Norm(ctx.res, 2))
	for i := 0; i < m; i++ {
		ctx.dy[i] = -ctx.step[n+i]
	}
	return Running
}

// inertiaOK checks the factorization against the target inertia
// (n, m, 0) of a well posed saddle point system.
func inertiaOK(fac *lbl.Factors, err error, n, m int) (sos, fullRank bool) {
	if err != nil {
		return false, false
	}
	pos, neg, zero := fac.Inertia()
	return pos == n && neg == m && zero == 0, fac.FullRank()
}

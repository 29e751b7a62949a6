// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"slices"

	"github.com/curioloop/nlprog/numdiff"
)

// Verify compares the analytic derivatives of m against central
// differences at x, returning the worst relative disagreement of the
// objective gradient and of the constraint Jacobian. The Jacobian error
// is zero for an unconstrained model.
func Verify(m Model, x []float64) (grad, jac float64, err error) {
	n, mc := m.N(), m.M()
	x0 := slices.Clone(x)

	gd := numdiff.Deriv{
		ApproxSpec: numdiff.ApproxSpec{N: n, M: 1, Object: func(x, y []float64) { y[0] = m.Obj(x) }},
		Jac: func(x []float64) []float64 {
			g := make([]float64, n)
			m.Grad(g, x)
			return g
		},
	}
	if grad, err = gd.Verify(x0); err != nil || mc == 0 {
		return grad, 0, err
	}

	jd := numdiff.Deriv{
		ApproxSpec: numdiff.ApproxSpec{N: n, M: mc, Object: func(x, y []float64) { m.Cons(y, x) }},
		Jac: func(x []float64) []float64 {
			dense := make([]float64, mc*n)
			for _, e := range m.Jac(x) {
				dense[e.Row*n+e.Col] += e.Val
			}
			return dense
		},
	}
	jac, err = jd.Verify(x0)
	return grad, jac, err
}

// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regsqp

import (
	"github.com/curioloop/nlprog/linop"
	"github.com/curioloop/nlprog/model"
)

// assemble rebuilds the lower triangle of the regularized KKT matrix
//
//	K = | 𝐇(𝐱,y)  𝐉ᵀ     |
//	    | 𝐉      −(1/ν)𝐈 |
//
// from the model at the primal-dual pair. The dual block is left empty
// when dualReg is unset and the primal block carries no proximal shift
// until the factorization asks for one.
func assemble(k *linop.SymCoord, m model.Model, x, y []float64, penalty float64, dualReg bool) {
	n := m.N()
	k.Reset()
	k.Append(m.Hess(x, y))
	for _, e := range m.Jac(x) {
		k.Put(n+e.Row, e.Col, e.Val)
	}
	if dualReg {
		for i := 0; i < m.M(); i++ {
			k.Put(n+i, n+i, -one/penalty)
		}
	}
}

// assembleRHS fills the Newton right hand side (−∇f + 𝐉ᵀy, −c).
func assembleRHS(rhs []float64, n int, g, c, y []float64, jac []linop.Entry) {
	for i, v := range g {
		rhs[i] = -v
	}
	for _, e := range jac {
		rhs[e.Col] += y[e.Row] * e.Val
	}
	for i, v := range c {
		rhs[n+i] = -v
	}
}

// lagGrad stores the Lagrangian gradient ∇f − 𝐉ᵀy into dst.
func lagGrad(dst, g []float64, jac []linop.Entry, y []float64) {
	copy(dst, g)
	for _, e := range jac {
		dst[e.Col] -= y[e.Row] * e.Val
	}
}

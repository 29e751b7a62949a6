// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "github.com/curioloop/nlprog/linop"

// Model is a smooth nonlinear program
//
//	min f(𝐱)  subject to  c(𝐱) = 0,  l ≤ 𝐱 ≤ u
//
// evaluated pointwise by the solvers. Sparse first and second derivatives
// travel as coordinate entries, with duplicate coordinates summed. The
// Hessian is that of the Lagrangian L(𝐱,y) = f(𝐱) − yᵀc(𝐱), so for an
// unconstrained problem it reduces to ∇²f.
//
// Implementations must tolerate repeated evaluation at arbitrary points
// and should not retain the slices passed to them. Returned slices are
// owned by the model and must be copied before modification.
type Model interface {
	// N returns the number of variables.
	N() int
	// M returns the number of equality constraints.
	M() int
	// X0 returns the initial primal estimate.
	X0() []float64
	// Y0 returns the initial multiplier estimate.
	Y0() []float64
	// Bounds returns the variable bounds, ±Inf where absent.
	Bounds() (l, u []float64)
	// Obj evaluates the objective f(𝐱).
	Obj(x []float64) float64
	// Grad stores the objective gradient ∇f(𝐱) into dst.
	Grad(dst, x []float64)
	// Cons stores the constraint residuals c(𝐱) into dst.
	Cons(dst, x []float64)
	// Jac returns the m×n constraint Jacobian in coordinate format.
	Jac(x []float64) []linop.Entry
	// Hess returns the lower triangle of ∇²L(𝐱,y) in coordinate format.
	Hess(x, y []float64) []linop.Entry
	// HessProd stores ∇²L(𝐱,y)·v into dst.
	HessProd(dst, x, y, v []float64)
}

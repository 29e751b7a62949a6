// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lbl

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/nlprog/linop"
)

// machine epsilon
const eps = float64(7)/3 - float64(4)/3 - 1.

// Factors is a symmetric indefinite factorization 𝐊 = 𝐕𝚲𝐕ᵀ of a sparse
// coordinate matrix. Like the 𝐋𝐁𝐋ᵀ solvers it stands in for, it exposes
// the inertia and rank information needed to steer regularization, along
// with solves and iterative refinement against the original matrix.
type Factors struct {
	k              *linop.SymCoord
	vecs           mat.Dense
	vals           []float64
	tol            float64
	pos, neg, zero int
}

// Factorize computes a spectral factorization of k.
// Eigenvalues within n·ε·max|λ| of zero count as numerically zero.
func Factorize(k *linop.SymCoord) (*Factors, error) {
	var es mat.EigenSym
	if !es.Factorize(k.Dense(), true) {
		return nil, errors.New("lbl: eigendecomposition did not converge")
	}
	f := &Factors{k: k, vals: es.Values(nil)}
	es.VectorsTo(&f.vecs)

	var big float64
	for _, v := range f.vals {
		big = math.Max(big, math.Abs(v))
	}
	f.tol = float64(k.Dim()) * eps * big
	for _, v := range f.vals {
		switch {
		case v > f.tol:
			f.pos++
		case v < -f.tol:
			f.neg++
		default:
			f.zero++
		}
	}
	return f, nil
}

// Inertia returns the number of positive, negative and numerically zero
// eigenvalues of the factorized matrix.
func (f *Factors) Inertia() (pos, neg, zero int) { return f.pos, f.neg, f.zero }

// FullRank reports whether no numerically zero eigenvalue was detected.
func (f *Factors) FullRank() bool { return f.zero == 0 }

// Solve stores 𝐊⁻¹rhs into dst. Numerically zero eigenvalues are skipped,
// so a rank-deficient system yields its least-squares solution.
// dst must not alias rhs.
func (f *Factors) Solve(dst, rhs []float64) {
	n := len(f.vals)
	if len(dst) != n || len(rhs) != n {
		panic("bound check error")
	}
	c := make([]float64, n)
	cv := mat.NewVecDense(n, c)
	cv.MulVec(f.vecs.T(), mat.NewVecDense(n, rhs))
	for i, v := range f.vals {
		if math.Abs(v) > f.tol {
			c[i] /= v
		} else {
			c[i] = 0
		}
	}
	mat.NewVecDense(n, dst).MulVec(&f.vecs, cv)
}

// Refine runs steps rounds of iterative refinement on dst, correcting it
// with solves of the residual against the sparse matrix.
func (f *Factors) Refine(dst, rhs []float64, steps int) {
	n := len(f.vals)
	if len(dst) != n || len(rhs) != n {
		panic("bound check error")
	}
	r := make([]float64, n)
	c := make([]float64, n)
	for s := 0; s < steps; s++ {
		f.Residual(r, dst, rhs)
		f.Solve(c, r)
		floats.Add(dst, c)
	}
}

// Residual stores rhs − 𝐊x into dst using the sparse entries.
func (f *Factors) Residual(dst, x, rhs []float64) {
	f.k.MulVec(dst, x)
	for i, v := range rhs {
		dst[i] = v - dst[i]
	}
}

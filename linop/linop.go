// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linop

// Sym is a symmetric operator 𝐀 = 𝐀ᵀ accessed only through matrix-vector
// products, leaving implementations free to keep the matrix implicit.
type Sym interface {
	// Dim returns the order of the operator.
	Dim() int
	// MulVec computes dst = 𝐀v where both slices have length Dim.
	MulVec(dst, v []float64)
}

// SymFunc adapts a product closure into a Sym operator.
type SymFunc struct {
	N    int
	Prod func(dst, v []float64)
}

// Dim returns the order of the operator.
func (s SymFunc) Dim() int { return s.N }

// MulVec computes dst = 𝐀v.
func (s SymFunc) MulVec(dst, v []float64) {
	if len(dst) != s.N || len(v) != s.N {
		panic("bound check error")
	}
	s.Prod(dst, v)
}

// Reduced is the restriction of a symmetric operator to an index subset:
// (𝐀ᵣ)ᵢⱼ = 𝐀[idx[i],idx[j]]. A product embeds the reduced vector into the
// full space with zero padding, applies the full operator and gathers the
// result back, so no submatrix is ever formed.
type Reduced struct {
	full    Sym
	idx     []int
	in, out []float64
}

// ReduceSym restricts a to the rows and columns listed in idx.
// Indexes must be strictly increasing within [0, a.Dim()).
// The returned operator reuses scratch vectors across products
// and is not safe for concurrent use.
func ReduceSym(a Sym, idx []int) *Reduced {
	n := a.Dim()
	for k, i := range idx {
		if i < 0 || i >= n || (k > 0 && idx[k-1] >= i) {
			panic("reduced index out of range")
		}
	}
	return &Reduced{
		full: a,
		idx:  idx,
		in:   make([]float64, n),
		out:  make([]float64, n),
	}
}

// Dim returns the reduced order.
func (r *Reduced) Dim() int { return len(r.idx) }

// MulVec computes dst = 𝐀ᵣv.
func (r *Reduced) MulVec(dst, v []float64) {
	if len(dst) != len(r.idx) || len(v) != len(r.idx) {
		panic("bound check error")
	}
	clear(r.in)
	for k, i := range r.idx {
		r.in[i] = v[k]
	}
	r.full.MulVec(r.out, r.in)
	for k, i := range r.idx {
		dst[k] = r.out[i]
	}
}

// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package problems

import (
	"math"

	"github.com/curioloop/nlprog/linop"
	"github.com/curioloop/nlprog/model"
)

func must(m model.Model, err error) model.Model {
	if err != nil {
		panic(err)
	}
	return m
}

// HS6 is problem 6 of the Hock-Schittkowski collection:
//
//	min (1−x₁)²  s.t.  10(x₂−x₁²) = 0
//
// starting at (−1.2, 1) with solution (1, 1) and optimal value 0.
func HS6() model.Model {
	return must(model.Funcs{
		NVar: 2, NCon: 1,
		Start: []float64{-1.2, 1},
		Obj: func(x []float64) float64 {
			return (1 - x[0]) * (1 - x[0])
		},
		Grad: func(dst, x []float64) {
			dst[0] = -2 * (1 - x[0])
			dst[1] = 0
		},
		Cons: func(dst, x []float64) {
			dst[0] = 10 * (x[1] - x[0]*x[0])
		},
		Jac: func(x []float64) []linop.Entry {
			return []linop.Entry{
				{Row: 0, Col: 0, Val: -20 * x[0]},
				{Row: 0, Col: 1, Val: 10},
			}
		},
		Hess: func(x, y []float64) []linop.Entry {
			return []linop.Entry{{Row: 0, Col: 0, Val: 2 + 20*y[0]}}
		},
	}.Model())
}

// HS7 is problem 7 of the Hock-Schittkowski collection:
//
//	min ln(1+x₁²) − x₂  s.t.  (1+x₁²)² + x₂² = 4
//
// starting at (2, 2) with solution (0, √3) and optimal value −√3.
func HS7() model.Model {
	return must(model.Funcs{
		NVar: 2, NCon: 1,
		Start: []float64{2, 2},
		Obj: func(x []float64) float64 {
			return math.Log(1+x[0]*x[0]) - x[1]
		},
		Grad: func(dst, x []float64) {
			dst[0] = 2 * x[0] / (1 + x[0]*x[0])
			dst[1] = -1
		},
		Cons: func(dst, x []float64) {
			t := 1 + x[0]*x[0]
			dst[0] = t*t + x[1]*x[1] - 4
		},
		Jac: func(x []float64) []linop.Entry {
			return []linop.Entry{
				{Row: 0, Col: 0, Val: 4 * x[0] * (1 + x[0]*x[0])},
				{Row: 0, Col: 1, Val: 2 * x[1]},
			}
		},
		Hess: func(x, y []float64) []linop.Entry {
			t := 1 + x[0]*x[0]
			return []linop.Entry{
				{Row: 0, Col: 0, Val: 2*(1-x[0]*x[0])/(t*t) - y[0]*(4+12*x[0]*x[0])},
				{Row: 1, Col: 1, Val: -2 * y[0]},
			}
		},
	}.Model())
}

// Rosenbrock is the chained Rosenbrock function in dimension n ≥ 2:
//
//	f(𝐱) = Σᵢ 100(xᵢ₊₁−xᵢ²)² + (1−xᵢ)²
//
// starting at (−1.2, 1, −1.2, 1, …) with solution (1,…,1) and optimal
// value 0.
func Rosenbrock(n int) model.Model {
	if n < 2 {
		panic("rosenbrock dimension must be at least 2")
	}
	start := make([]float64, n)
	for i := range start {
		start[i] = -1.2
		if i%2 == 1 {
			start[i] = 1
		}
	}
	return must(model.Funcs{
		NVar:  n,
		Start: start,
		Obj: func(x []float64) float64 {
			var f float64
			for i := 0; i+1 < n; i++ {
				t := x[i+1] - x[i]*x[i]
				f += 100*t*t + (1-x[i])*(1-x[i])
			}
			return f
		},
		Grad: func(dst, x []float64) {
			clear(dst)
			for i := 0; i+1 < n; i++ {
				t := x[i+1] - x[i]*x[i]
				dst[i] += -400*x[i]*t - 2*(1-x[i])
				dst[i+1] += 200 * t
			}
		},
		Hess: func(x, y []float64) []linop.Entry {
			entries := make([]linop.Entry, 0, 2*n-1)
			for i := 0; i < n; i++ {
				var d float64
				if i+1 < n {
					d += 1200*x[i]*x[i] - 400*x[i+1] + 2
				}
				if i > 0 {
					d += 200
				}
				entries = append(entries, linop.Entry{Row: i, Col: i, Val: d})
				if i+1 < n {
					entries = append(entries, linop.Entry{Row: i + 1, Col: i, Val: -400 * x[i]})
				}
			}
			return entries
		},
		HessProd: func(dst, x, y, v []float64) {
			for i := 0; i < n; i++ {
				var d float64
				if i+1 < n {
					d += 1200*x[i]*x[i] - 400*x[i+1] + 2
				}
				if i > 0 {
					d += 200
				}
				dst[i] = d * v[i]
				if i+1 < n {
					dst[i] += -400 * x[i] * v[i+1]
				}
				if i > 0 {
					dst[i] += -400 * x[i-1] * v[i-1]
				}
			}
		},
	}.Model())
}

// Quadratic is the bound-constrained quadratic program
//
//	min ½𝐱ᵀ𝐇𝐱 + gᵀ𝐱  s.t.  l ≤ 𝐱 ≤ u
//
// built from the lower triangle entries of 𝐇. Nil bounds are unbounded.
func Quadratic(h []linop.Entry, g, l, u, x0 []float64) model.Model {
	n := len(g)
	k := linop.NewSymCoord(n)
	k.Append(h)
	hx := make([]float64, n)
	return must(model.Funcs{
		NVar:  n,
		Start: x0,
		Lower: l,
		Upper: u,
		Obj: func(x []float64) float64 {
			k.MulVec(hx, x)
			var f float64
			for i, v := range x {
				f += (0.5*hx[i] + g[i]) * v
			}
			return f
		},
		Grad: func(dst, x []float64) {
			k.MulVec(dst, x)
			for i, v := range g {
				dst[i] += v
			}
		},
		Hess: func(x, y []float64) []linop.Entry {
			return k.Entries()
		},
		HessProd: func(dst, x, y, v []float64) {
			k.MulVec(dst, v)
		},
	}.Model())
}

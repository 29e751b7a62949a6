// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/curioloop/nlprog/linop"
)

func TestFuncsValidation(t *testing.T) {
	_, err := Funcs{}.Model()
	require.Error(t, err)
	require.GreaterOrEqual(t, len(multierr.Errors(err)), 2)

	_, err = Funcs{
		NVar: 2, NCon: 1,
		Obj:   func(x []float64) float64 { return 0 },
		Start: []float64{1},
		Lower: []float64{0, 1},
		Upper: []float64{1, 0},
	}.Model()
	require.Error(t, err)
	require.Contains(t, err.Error(), "constraint function is required")
	require.Contains(t, err.Error(), "start point size 1")
	require.Contains(t, err.Error(), "bound range")
}

func TestFuncsDefaults(t *testing.T) {
	m, err := Funcs{
		NVar: 2, NCon: 1,
		Obj:  func(x []float64) float64 { return x[0] },
		Cons: func(dst, x []float64) { dst[0] = x[0] + x[1] },
		Jac: func(x []float64) []linop.Entry {
			return []linop.Entry{{Row: 0, Col: 0, Val: 1}, {Row: 0, Col: 1, Val: 1}}
		},
		Hess: func(x, y []float64) []linop.Entry { return nil },
	}.Model()
	require.NoError(t, err)

	require.Equal(t, 2, m.N())
	require.Equal(t, 1, m.M())
	require.Equal(t, []float64{0, 0}, m.X0())
	require.Equal(t, []float64{1}, m.Y0())
	l, u := m.Bounds()
	require.Equal(t, []float64{math.Inf(-1), math.Inf(-1)}, l)
	require.Equal(t, []float64{math.Inf(1), math.Inf(1)}, u)
}

func TestFuncsGradFallback(t *testing.T) {
	m, err := Funcs{
		NVar: 2,
		Obj:  func(x []float64) float64 { return x[0]*x[0] + 3*x[1] },
		Hess: func(x, y []float64) []linop.Entry {
			return []linop.Entry{{Row: 0, Col: 0, Val: 2}}
		},
	}.Model()
	require.NoError(t, err)

	x := []float64{1, 2}
	g := make([]float64, 2)
	m.Grad(g, x)
	require.InDeltaSlice(t, []float64{2, 3}, g, 1e-6)
	require.Equal(t, []float64{1, 2}, x)
}

func TestFuncsHessProdFallback(t *testing.T) {
	// ⎡2 1⎤
	// ⎣1 4⎦
	m, err := Funcs{
		NVar: 2,
		Obj:  func(x []float64) float64 { return 0 },
		Hess: func(x, y []float64) []linop.Entry {
			return []linop.Entry{
				{Row: 0, Col: 0, Val: 2},
				{Row: 1, Col: 0, Val: 1},
				{Row: 1, Col: 1, Val: 4},
			}
		},
	}.Model()
	require.NoError(t, err)

	hv := make([]float64, 2)
	m.HessProd(hv, nil, nil, []float64{1, 1})
	require.InDeltaSlice(t, []float64{3, 5}, hv, 1e-15)

	// the scratch operator is rebuilt between products
	m.HessProd(hv, nil, nil, []float64{1, 0})
	require.InDeltaSlice(t, []float64{2, 1}, hv, 1e-15)
}

func TestVerify(t *testing.T) {
	m, err := Funcs{
		NVar: 2, NCon: 1,
		Obj:  func(x []float64) float64 { return x[0] * x[0] * x[1] },
		Grad: func(dst, x []float64) { dst[0], dst[1] = 2*x[0]*x[1], x[0]*x[0] },
		Cons: func(dst, x []float64) { dst[0] = x[0] + x[1] - 2 },
		Jac: func(x []float64) []linop.Entry {
			return []linop.Entry{{Row: 0, Col: 0, Val: 1}, {Row: 0, Col: 1, Val: 1}}
		},
		Hess: func(x, y []float64) []linop.Entry { return nil },
	}.Model()
	require.NoError(t, err)

	grad, jac, err := Verify(m, []float64{1.5, -0.5})
	require.NoError(t, err)
	require.Less(t, grad, 1e-8)
	require.Less(t, jac, 1e-8)

	bad, err := Funcs{
		NVar: 2, NCon: 1,
		Obj:  func(x []float64) float64 { return x[0] * x[0] * x[1] },
		Grad: func(dst, x []float64) { dst[0], dst[1] = 2*x[0]*x[1], x[0] },
		Cons: func(dst, x []float64) { dst[0] = x[0] + x[1] - 2 },
		Jac: func(x []float64) []linop.Entry {
			return []linop.Entry{{Row: 0, Col: 0, Val: 1}, {Row: 0, Col: 1, Val: 1}}
		},
		Hess: func(x, y []float64) []linop.Entry { return nil },
	}.Model()
	require.NoError(t, err)

	grad, _, err = Verify(bad, []float64{1.5, -0.5})
	require.NoError(t, err)
	require.Greater(t, grad, 1e-2)
}

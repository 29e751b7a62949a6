// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"math"
	"slices"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/curioloop/nlprog/linop"
	"github.com/curioloop/nlprog/numdiff"
)

// Funcs assembles a Model from closures. Only Obj is mandatory for an
// unconstrained problem: a missing Grad falls back to forward differences
// and a missing HessProd is applied through the Hess entries. Constrained
// problems additionally require Cons, Jac and Hess.
type Funcs struct {
	NVar, NCon int
	// Start is the initial primal estimate (default all zero).
	Start []float64
	// Duals is the initial multiplier estimate (default all one).
	Duals []float64
	// Lower and Upper bound the variables (default unbounded).
	Lower, Upper []float64

	Obj      func(x []float64) float64
	Grad     func(dst, x []float64)
	Cons     func(dst, x []float64)
	Jac      func(x []float64) []linop.Entry
	Hess     func(x, y []float64) []linop.Entry
	HessProd func(dst, x, y, v []float64)
}

// Model validates the closure set and binds it into a Model.
// A model relying on the gradient or Hessian product fallbacks keeps
// private scratch and is not safe for concurrent use.
func (f Funcs) Model() (Model, error) {
	var err error
	if f.NVar <= 0 {
		err = multierr.Append(err, errors.New("model: number of variables must be positive"))
	}
	if f.NCon < 0 {
		err = multierr.Append(err, errors.New("model: number of constraints must not be negative"))
	}
	if f.Obj == nil {
		err = multierr.Append(err, errors.New("model: objective function is required"))
	}
	if f.NCon > 0 {
		if f.Cons == nil {
			err = multierr.Append(err, errors.New("model: constraint function is required"))
		}
		if f.Jac == nil {
			err = multierr.Append(err, errors.New("model: constraint jacobian is required"))
		}
		if f.Hess == nil {
			err = multierr.Append(err, errors.New("model: lagrangian hessian is required"))
		}
	} else if f.Hess == nil && f.HessProd == nil {
		err = multierr.Append(err, errors.New("model: hessian entries or product is required"))
	}
	if f.Start != nil && len(f.Start) != f.NVar {
		err = multierr.Append(err, errors.Errorf("model: start point size %d does not match %d variables", len(f.Start), f.NVar))
	}
	if f.Duals != nil && len(f.Duals) != f.NCon {
		err = multierr.Append(err, errors.Errorf("model: dual start size %d does not match %d constraints", len(f.Duals), f.NCon))
	}
	if f.Lower != nil && len(f.Lower) != f.NVar {
		err = multierr.Append(err, errors.Errorf("model: lower bound size %d does not match %d variables", len(f.Lower), f.NVar))
	}
	if f.Upper != nil && len(f.Upper) != f.NVar {
		err = multierr.Append(err, errors.Errorf("model: upper bound size %d does not match %d variables", len(f.Upper), f.NVar))
	}
	if len(f.Lower) == f.NVar && len(f.Upper) == f.NVar {
		for i := range f.Lower {
			if f.Lower[i] > f.Upper[i] {
				err = multierr.Append(err, errors.Errorf("model: bound range [%g, %g] of variable %d is empty", f.Lower[i], f.Upper[i], i))
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}

	m := &funcs{fn: f}
	if f.Start != nil {
		m.x0 = slices.Clone(f.Start)
	} else {
		m.x0 = make([]float64, f.NVar)
	}
	if f.Duals != nil {
		m.y0 = slices.Clone(f.Duals)
	} else {
		m.y0 = make([]float64, f.NCon)
		for i := range m.y0 {
			m.y0[i] = 1
		}
	}
	m.l = make([]float64, f.NVar)
	m.u = make([]float64, f.NVar)
	for i := range m.l {
		m.l[i] = math.Inf(-1)
		m.u[i] = math.Inf(1)
	}
	copy(m.l, f.Lower)
	copy(m.u, f.Upper)

	if f.Grad == nil {
		m.fd = &numdiff.ApproxSpec{N: f.NVar, M: 1, Object: func(x, y []float64) { y[0] = f.Obj(x) }}
		m.fdX = make([]float64, f.NVar)
	}
	if f.HessProd == nil {
		m.hess = linop.NewSymCoord(f.NVar)
	}
	return m, nil
}

type funcs struct {
	fn     Funcs
	x0, y0 []float64
	l, u   []float64
	fd     *numdiff.ApproxSpec
	fdX    []float64
	hess   *linop.SymCoord
}

func (m *funcs) N() int { return m.fn.NVar }

func (m *funcs) M() int { return m.fn.NCon }

func (m *funcs) X0() []float64 { return m.x0 }

func (m *funcs) Y0() []float64 { return m.y0 }

func (m *funcs) Bounds() (l, u []float64) { return m.l, m.u }

func (m *funcs) Obj(x []float64) float64 { return m.fn.Obj(x) }

func (m *funcs) Grad(dst, x []float64) {
	if m.fn.Grad != nil {
		m.fn.Grad(dst, x)
		return
	}
	copy(m.fdX, x)
	if err := m.fd.Diff(m.fdX, dst); err != nil {
		panic(err)
	}
}

func (m *funcs) Cons(dst, x []float64) {
	if m.fn.NCon == 0 {
		return
	}
	m.fn.Cons(dst, x)
}

func (m *funcs) Jac(x []float64) []linop.Entry {
	if m.fn.NCon == 0 {
		return nil
	}
	return m.fn.Jac(x)
}

func (m *funcs) Hess(x, y []float64) []linop.Entry {
	if m.fn.Hess == nil {
		panic("model: hessian entries not provided")
	}
	return m.fn.Hess(x, y)
}

func (m *funcs) HessProd(dst, x, y, v []float64) {
	if m.fn.HessProd != nil {
		m.fn.HessProd(dst, x, y, v)
		return
	}
	m.hess.Reset()
	m.hess.Append(m.fn.Hess(x, y))
	m.hess.MulVec(dst, v)
}

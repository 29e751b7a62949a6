// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linesearch

import "github.com/pkg/errors"

// ErrSearchFailure reports that no acceptable step was found within the
// backtracking budget.
var ErrSearchFailure = errors.New("linesearch: no acceptable step within backtrack budget")

// FuncGrad evaluates the scalar restriction ϕ(t) of a merit function along
// a search ray, returning the value and the directional derivative ϕ′(t).
type FuncGrad func(t float64) (f, g float64)

// ArmijoWolfe is a backtracking Armijo search with an expansion phase:
// when the initial step already satisfies sufficient decrease but the
// slope is still steep by the weak Wolfe test, the step grows until one
// of the two conditions flips. Zero fields select the defaults.
type ArmijoWolfe struct {
	FTol  float64 // sufficient decrease factor (default 1e-4)
	GTol  float64 // weak Wolfe slope factor (default 0.9999)
	Decr  float64 // backtrack shrink factor (default 1.5)
	Incr  float64 // expansion growth factor (default 5)
	BkMax int     // backtrack and expansion budget (default 20)
	Step  float64 // initial step (default 1)
}

// Search looks for a step along the ray with an acceptable decrease.
// value and slope are ϕ(0) and ϕ′(0); slope must be negative.
// It returns the accepted step and the merit value reached there.
func (ls *ArmijoWolfe) Search(eval FuncGrad, value, slope float64) (step, f float64, err error) {
	ftol, gtol := ls.FTol, ls.GTol
	if ftol == 0 {
		ftol = 1e-4
	}
	if gtol == 0 {
		gtol = 0.9999
	}
	decr, incr := ls.Decr, ls.Incr
	if decr == 0 {
		decr = 1.5
	}
	if incr == 0 {
		incr = 5
	}
	bkMax := ls.BkMax
	if bkMax == 0 {
		bkMax = 20
	}
	t := ls.Step
	if t == 0 {
		t = 1
	}

	if slope >= 0 {
		return 0, 0, errors.Errorf("linesearch: non-descent direction with slope %g", slope)
	}

	f, g := eval(t)
	for ex := 0; ex < bkMax && f <= value+ftol*t*slope && g < gtol*slope; ex++ {
		grown := incr * t
		fg, gg := eval(grown)
		if fg > value+ftol*grown*slope {
			break
		}
		t, f, g = grown, fg, gg
	}
	for bk := 0; f > value+ftol*t*slope; {
		if bk++; bk > bkMax {
			return 0, 0, ErrSearchFailure
		}
		t /= decr
		f, _ = eval(t)
	}
	return t, f, nil
}

// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import "math"

// clamp projects x onto the box [l, u] in place.
func clamp(x, l, u []float64) {
	if len(x) != len(l) || len(x) != len(u) {
		panic("bound check error")
	}
	for i, v := range x {
		x[i] = math.Min(math.Max(v, l[i]), u[i])
	}
}

// projStep stores the feasible part of a scaled direction into s:
//
//	s = P[𝐱 + α·d] − 𝐱
//
// where P is the projection onto the box [l, u].
func projStep(s, x, d, l, u []float64, alpha float64) {
	if len(s) != len(x) || len(x) != len(d) || len(x) != len(l) || len(x) != len(u) {
		panic("bound check error")
	}
	for i, v := range x {
		switch t := v + alpha*d[i]; {
		case t < l[i]:
			s[i] = l[i] - v
		case t > u[i]:
			s[i] = u[i] - v
		default:
			s[i] = alpha * d[i]
		}
	}
}

// breakpoints counts the coordinates whose bound is met along 𝐱 + t·d
// and reports the nearest and farthest meeting parameters.
// All three results are zero when no bound is ever met.
func breakpoints(x, d, l, u []float64) (nbrpt int, brptMin, brptMax float64) {
	if len(x) != len(d) || len(x) != len(l) || len(x) != len(u) {
		panic("bound check error")
	}
	for i, di := range d {
		var t float64
		switch {
		case di > zero && x[i] < u[i]:
			t = (u[i] - x[i]) / di
		case di < zero && x[i] > l[i]:
			t = (l[i] - x[i]) / di
		default:
			continue
		}
		if nbrpt++; nbrpt == 1 {
			brptMin, brptMax = t, t
		} else {
			brptMin = math.Min(brptMin, t)
			brptMax = math.Max(brptMax, t)
		}
	}
	return
}

// projGradNorm returns the norm of the projected gradient: components
// pushing against an active bound are cut to their feasible part and
// fixed variables are skipped entirely.
func projGradNorm(x, g, l, u []float64) float64 {
	if len(x) != len(g) || len(x) != len(l) || len(x) != len(u) {
		panic("bound check error")
	}
	var sum float64
	for i, gi := range g {
		switch {
		case l[i] == u[i]:
			continue
		case x[i] == l[i]:
			gi = math.Min(gi, zero)
		case x[i] == u[i]:
			gi = math.Max(gi, zero)
		}
		sum += gi * gi
	}
	return math.Sqrt(sum)
}

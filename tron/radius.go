// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import "math"

// Trust region acceptance thresholds and scaling bands.
const (
	eta0 = 1e-4
	eta1 = 0.25
	eta2 = 0.75

	gamma1 = 0.25
	gamma2 = 0.5
	gamma3 = 4.0

	radiusMax = 1e10
)

// stepRatio measures the actual versus predicted reduction of a trial
// step, both guarded by a roundoff offset so a vanishing prediction
// cannot divide out near a minimizer.
func stepRatio(f, fTrial, pred float64) float64 {
	guard := ten * eps * math.Max(one, math.Abs(f))
	return (f - fTrial + guard) / (-pred + guard)
}

// fitAlpha estimates the minimizer of the one-dimensional quadratic
// interpolating f, the directional slope and the trial value at the
// unit step. Non-convex fits fall back to the largest expansion.
func fitAlpha(f, fTrial, slope float64) float64 {
	denom := fTrial - f - slope
	if denom <= zero {
		return gamma3
	}
	return math.Max(gamma1, -half*slope/denom)
}

// updateRadius maps the reduction ratio of the latest step onto the
// next trust region radius. Poor ratios contract around the fitted step
// length while good ones allow growth up to radiusMax.
func updateRadius(radius, ratio, snorm, alpha float64) float64 {
	switch {
	case ratio <= eta0:
		radius = math.Min(math.Max(alpha, gamma1)*snorm, gamma2*radius)
	case ratio <= eta1:
		radius = math.Max(gamma1*radius, math.Min(alpha*snorm, gamma2*radius))
	case ratio <= eta2:
		radius = math.Max(gamma1*radius, math.Min(alpha*snorm, gamma3*radius))
	default:
		radius = math.Max(radius, math.Min(alpha*snorm, gamma3*radius))
	}
	return math.Min(radius, radiusMax)
}

// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package numdiff

import (
	"math"

	"github.com/pkg/errors"
)

// Deriv pairs an analytic derivative with a finite difference scheme to
// estimate its accuracy.
type Deriv struct {
	ApproxSpec
	// Jac returns the claimed derivative at x, laid out like the diff
	// result of ApproxSpec: an m×n row-major matrix.
	Jac func(x []float64) []float64
}

// Verify compares the analytic derivative against a central difference
// approximation at x0 and returns the worst relative disagreement
// max |a−d| / max(1,|d|) over all entries.
func (dc *Deriv) Verify(x0 []float64) (float64, error) {
	if dc.N <= 0 || dc.M <= 0 {
		return 0, errors.New("negative dimensions")
	}
	if dc.Jac == nil {
		return 0, errors.New("jacobian function is required")
	}
	dc.Method = Central
	diff := make([]float64, dc.N*dc.M)
	if err := dc.Diff(x0, diff); err != nil {
		return 0, err
	}
	a := dc.Jac(x0)
	if len(a) != len(diff) {
		return 0, errors.New("invalid jacobian dimensions")
	}
	var worst float64
	for i, d := range diff {
		worst = math.Max(worst, math.Abs(a[i]-d)/math.Max(1, math.Abs(d)))
	}
	return worst, nil
}

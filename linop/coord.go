// Copyright ©2026 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linop

import "gonum.org/v1/gonum/mat"

// Entry is a single element of a sparse matrix in coordinate format.
// Repeated (Row,Col) pairs are summed when the matrix is applied or
// materialized.
type Entry struct {
	Row, Col int
	Val      float64
}

// Coord is a rectangular sparse matrix in coordinate format.
type Coord struct {
	rows, cols int
	entries    []Entry
}

// NewCoord wraps entries into a rows×cols matrix without copying.
func NewCoord(rows, cols int, entries []Entry) *Coord {
	for _, e := range entries {
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			panic("coordinate entry out of range")
		}
	}
	return &Coord{rows: rows, cols: cols, entries: entries}
}

// Dims returns the row and column counts.
func (c *Coord) Dims() (rows, cols int) { return c.rows, c.cols }

// MulVec computes dst = 𝐀v.
func (c *Coord) MulVec(dst, v []float64) {
	if len(dst) != c.rows || len(v) != c.cols {
		panic("bound check error")
	}
	clear(dst)
	for _, e := range c.entries {
		dst[e.Row] += e.Val * v[e.Col]
	}
}

// MulVecTrans computes dst = 𝐀ᵀv.
func (c *Coord) MulVecTrans(dst, v []float64) {
	if len(dst) != c.cols || len(v) != c.rows {
		panic("bound check error")
	}
	clear(dst)
	for _, e := range c.entries {
		dst[e.Col] += e.Val * v[e.Row]
	}
}

// SymCoord is a symmetric sparse matrix in coordinate format storing one
// triangle. Put normalizes every entry to the lower triangle and keeps
// duplicates, which are summed on application.
type SymCoord struct {
	n       int
	entries []Entry
}

// NewSymCoord returns an empty symmetric coordinate matrix of order n.
func NewSymCoord(n int) *SymCoord {
	return &SymCoord{n: n}
}

// Dim returns the order of the matrix.
func (s *SymCoord) Dim() int { return s.n }

// Put appends val at (row, col), mirrored to (col, row).
func (s *SymCoord) Put(row, col int, val float64) {
	if row < 0 || row >= s.n || col < 0 || col >= s.n {
		panic("coordinate entry out of range")
	}
	if row < col {
		row, col = col, row
	}
	s.entries = append(s.entries, Entry{Row: row, Col: col, Val: val})
}

// Append bulk-appends entries through Put.
func (s *SymCoord) Append(entries []Entry) {
	for _, e := range entries {
		s.Put(e.Row, e.Col, e.Val)
	}
}

// Reset drops all entries, keeping the capacity for reuse.
func (s *SymCoord) Reset() {
	s.entries = s.entries[:0]
}

// Entries returns the stored lower-triangle entries without copying.
func (s *SymCoord) Entries() []Entry { return s.entries }

// MulVec computes dst = 𝐀v with the mirrored triangle applied implicitly.
func (s *SymCoord) MulVec(dst, v []float64) {
	if len(dst) != s.n || len(v) != s.n {
		panic("bound check error")
	}
	clear(dst)
	for _, e := range s.entries {
		dst[e.Row] += e.Val * v[e.Col]
		if e.Row != e.Col {
			dst[e.Col] += e.Val * v[e.Row]
		}
	}
}

// Dense accumulates the matrix into dense symmetric storage.
func (s *SymCoord) Dense() *mat.SymDense {
	d := mat.NewSymDense(s.n, nil)
	for _, e := range s.entries {
		d.SetSym(e.Row, e.Col, d.At(e.Row, e.Col)+e.Val)
	}
	return d
}

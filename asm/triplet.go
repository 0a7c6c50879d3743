// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package asm implements the global assembly accumulator: sparse matrix and vector triplets
// collected from local element contributions
package asm

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DimError reports an index that does not fit into the requested global dimension
type DimError struct {
	What  string // e.g. "stiffness", "constraint"
	Index int    // offending index
	Dim   int    // requested dimension
}

func (e *DimError) Error() string {
	return io.Sf("%s triplet has index %d outside global dimension %d", e.What, e.Index, e.Dim)
}

// Triplet holds the (i, j, x) entries of a sparse matrix. Duplicated (i, j) pairs are summed
// when the matrix is converted.
type Triplet struct {
	I []int     // row indices
	J []int     // column indices
	X []float64 // values
}

// NewTriplet returns a new triplet with room for max entries
func NewTriplet(max int) *Triplet {
	return &Triplet{
		I: make([]int, 0, max),
		J: make([]int, 0, max),
		X: make([]float64, 0, max),
	}
}

// Start resets the position to the beginning of the triplet (capacity is kept)
func (o *Triplet) Start() {
	o.I, o.J, o.X = o.I[:0], o.J[:0], o.X[:0]
}

// Put appends an entry
func (o *Triplet) Put(i, j int, x float64) {
	if i < 0 || j < 0 {
		chk.Panic("cannot put negative indices (%d,%d) into triplet", i, j)
	}
	o.I = append(o.I, i)
	o.J = append(o.J, j)
	o.X = append(o.X, x)
}

// PutMatrix appends a local dense matrix using the location array eqs for both rows and columns
func (o *Triplet) PutMatrix(eqs []int, a [][]float64) {
	for r, I := range eqs {
		for c, J := range eqs {
			o.Put(I, J, a[r][c])
		}
	}
}

// Len returns the number of entries
func (o *Triplet) Len() int { return len(o.X) }

// Dims returns the smallest (m, n) containing all entries
func (o *Triplet) Dims() (m, n int) {
	for k := range o.X {
		if o.I[k]+1 > m {
			m = o.I[k] + 1
		}
		if o.J[k]+1 > n {
			n = o.J[k] + 1
		}
	}
	return
}

// Append concatenates the entries of other triplets
func (o *Triplet) Append(others ...*Triplet) {
	for _, b := range others {
		o.I = append(o.I, b.I...)
		o.J = append(o.J, b.J...)
		o.X = append(o.X, b.X...)
	}
}

// ToCOO returns the entries as an m×n sparse matrix in coordinate format. The entries are
// copied; duplicates are kept and summed by the conversions of the returned matrix.
func (o *Triplet) ToCOO(what string, m, n int) (*sparse.COO, error) {
	for k := range o.X {
		if o.I[k] >= m {
			return nil, &DimError{what, o.I[k], m}
		}
		if o.J[k] >= n {
			return nil, &DimError{what, o.J[k], n}
		}
	}
	I := append([]int(nil), o.I...)
	J := append([]int(nil), o.J...)
	X := append([]float64(nil), o.X...)
	return sparse.NewCOO(m, n, I, J, X), nil
}

// ToDense sums all entries into a new m×n dense matrix. what names the matrix in errors.
func (o *Triplet) ToDense(what string, m, n int) (*mat.Dense, error) {
	if m == 0 || n == 0 {
		if o.Len() > 0 {
			return nil, &DimError{what, o.I[0], 0}
		}
		return &mat.Dense{}, nil
	}
	a, err := o.ToCOO(what, m, n)
	if err != nil {
		return nil, err
	}
	return a.ToDense(), nil
}

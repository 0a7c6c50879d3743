// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"
)

// Vector holds the (i, x) entries of a sparse vector; duplicates are summed
type Vector struct {
	I []int     // indices
	X []float64 // values
}

// Put appends an entry
func (o *Vector) Put(i int, x float64) {
	if i < 0 {
		chk.Panic("cannot put negative index %d into vector triplet", i)
	}
	o.I = append(o.I, i)
	o.X = append(o.X, x)
}

// PutVector appends a local vector using the location array eqs
func (o *Vector) PutVector(eqs []int, v []float64) {
	for r, I := range eqs {
		o.Put(I, v[r])
	}
}

// Start resets the vector triplet (capacity is kept)
func (o *Vector) Start() {
	o.I, o.X = o.I[:0], o.X[:0]
}

// Len returns the number of entries
func (o *Vector) Len() int { return len(o.X) }

// Size returns the smallest length containing all entries
func (o *Vector) Size() (n int) {
	for _, i := range o.I {
		if i+1 > n {
			n = i + 1
		}
	}
	return
}

// Append concatenates the entries of other vector triplets
func (o *Vector) Append(others ...*Vector) {
	for _, b := range others {
		o.I = append(o.I, b.I...)
		o.X = append(o.X, b.X...)
	}
}

// ToDense sums all entries into a new dense vector of length n
func (o *Vector) ToDense(what string, n int) (*mat.VecDense, error) {
	if n == 0 {
		if o.Len() > 0 {
			return nil, &DimError{what, o.I[0], 0}
		}
		return &mat.VecDense{}, nil
	}
	v := mat.NewVecDense(n, nil)
	for k, x := range o.X {
		i := o.I[k]
		if i >= n {
			return nil, &DimError{what, i, n}
		}
		v.SetVec(i, v.AtVec(i)+x)
	}
	return v, nil
}

// Accumulator collects the global matrix and right-hand side vector of a set of problems.
// For field problems K is the stiffness and F the force vector; for boundary problems K holds
// the constraint matrix C and F the constraint right-hand side g.
type Accumulator struct {
	K Triplet // global matrix
	F Vector  // global vector
}

// NewAccumulator returns an accumulator with room for nnz matrix entries
func NewAccumulator(nnz int) *Accumulator {
	return &Accumulator{K: *NewTriplet(nnz)}
}

// Join concatenates the entries of other accumulators into this one
func (o *Accumulator) Join(others ...*Accumulator) *Accumulator {
	for _, b := range others {
		if b == nil {
			continue
		}
		o.K.Append(&b.K)
		o.F.Append(&b.F)
	}
	return o
}

// Ndof returns the number of degrees of freedom referenced by any entry
func (o *Accumulator) Ndof() int {
	m, n := o.K.Dims()
	if n > m {
		m = n
	}
	if s := o.F.Size(); s > m {
		m = s
	}
	return m
}

// Empty tells whether nothing has been accumulated
func (o *Accumulator) Empty() bool {
	return o.K.Len() == 0 && o.F.Len() == 0
}

// Dense converts the accumulated entries into a square matrix and a vector of size dim
func (o *Accumulator) Dense(kname, fname string, dim int) (K *mat.Dense, F *mat.VecDense, err error) {
	K, err = o.K.ToDense(kname, dim, dim)
	if err != nil {
		return
	}
	F, err = o.F.ToDense(fname, dim)
	return
}

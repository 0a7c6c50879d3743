// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsol

import (
	"math"

	"github.com/cpmech/gosl/io"
)

// PartitionMismatchError reports a constraints matrix whose row support differs from its
// column support; i.e. the constraints were not assembled on a square set of DOFs
type PartitionMismatchError struct {
	Rows []int // DOFs with nonzero rows in C
	Cols []int // DOFs with nonzero columns in C
}

func (e *PartitionMismatchError) Error() string {
	return io.Sf("boundary DOFs from rows of C %v differ from boundary DOFs from columns of C %v", e.Rows, e.Cols)
}

// AssemblyError reports inconsistent dimensions of the assembled system
type AssemblyError struct {
	Km, Kn int // dimensions of K
	Cm, Cn int // dimensions of C
	Nf, Ng int // lengths of f and g
}

func (e *AssemblyError) Error() string {
	return io.Sf("cannot build constrained system: K is %d×%d, C is %d×%d, len(f)=%d, len(g)=%d", e.Km, e.Kn, e.Cm, e.Cn, e.Nf, e.Ng)
}

// NumericalError reports a failed factorisation or solution
type NumericalError struct {
	Factorization string  // e.g. "boundary LU", "interior Cholesky", "augmented LU"
	Size          int     // size of the factorised matrix
	Cond          float64 // estimated condition number; +Inf if singular or not computed
	Err           error   // underlying error, if any
}

func (e *NumericalError) Error() string {
	msg := io.Sf("%s factorisation of %d×%d matrix failed", e.Factorization, e.Size, e.Size)
	if !math.IsInf(e.Cond, 0) && !math.IsNaN(e.Cond) {
		msg += io.Sf(" (condition number %g)", e.Cond)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NumericalError) Unwrap() error { return e.Err }

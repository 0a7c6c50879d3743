// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsol

import (
	"gonum.org/v1/gonum/mat"
)

// Reduced holds a constrained system compacted onto the DOFs referenced by K or C
type Reduced struct {
	Dim  int   // dimension of the full system
	Dofs []int // full DOF index of each reduced DOF

	// reduced system
	K mat.Matrix
	F mat.Vector
	C mat.Matrix
	G mat.Vector
}

// Reduce removes from the system all DOFs that have no entry in K nor in C
func Reduce(K mat.Matrix, f mat.Vector, C mat.Matrix, g mat.Vector) (o *Reduced, err error) {
	err = checkDims(K, f, C, g)
	if err != nil {
		return
	}
	o = &Reduced{Dim: f.Len()}
	krows, kcols := support(K)
	crows, ccols := support(C)
	kmask := mergeMasks(K, krows, kcols)
	cmask := mergeMasks(C, crows, ccols)
	for i := 0; i < o.Dim; i++ {
		if kmask[i] || cmask[i] {
			o.Dofs = append(o.Dofs, i)
		}
	}
	if len(o.Dofs) == 0 {
		return
	}
	o.K = subMatrix(K, o.Dofs, o.Dofs)
	o.F = subVector(f, o.Dofs)
	o.C = subMatrix(C, o.Dofs, o.Dofs)
	o.G = subVector(g, o.Dofs)
	return
}

// Solve solves the reduced system and returns full-length u and λ
func (o *Reduced) Solve(method Method) (u, λ *mat.VecDense, err error) {
	if len(o.Dofs) == 0 {
		return mat.NewVecDense(o.Dim, nil), mat.NewVecDense(o.Dim, nil), nil
	}
	ur, λr, err := Solve(o.K, o.F, o.C, o.G, method)
	if err != nil {
		return
	}
	return o.Expand(ur), o.Expand(λr), nil
}

// Expand maps a reduced vector back onto the full DOF numbering; removed DOFs are zero
func (o *Reduced) Expand(v mat.Vector) *mat.VecDense {
	res := mat.NewVecDense(o.Dim, nil)
	scatter(res, o.Dofs, v)
	return res
}

// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsol

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"
)

// MaxCond is the largest condition number accepted for LU factorisations
var MaxCond = 1e15

// Solve solves the constrained system
//
//   K・u + Ct・λ = f
//          C・u = g
//
//  Input:
//   K -- dim×dim stiffness matrix; assumed symmetric
//   f -- dim right-hand side
//   C -- dim×dim constraints matrix; nonzero only at boundary DOFs
//   g -- dim constraints right-hand side
//   method -- factorisation strategy
//  Output:
//   u -- dim solution
//   λ -- dim Lagrange multipliers; nonzero only at boundary DOFs
func Solve(K mat.Matrix, f mat.Vector, C mat.Matrix, g mat.Vector, method Method) (u, λ *mat.VecDense, err error) {
	fcn, ok := strategies[method]
	if !ok {
		return nil, nil, chk.Err("cannot solve constrained system with unknown method %d", int(method))
	}
	err = checkDims(K, f, C, g)
	if err != nil {
		return
	}
	return fcn(K, f, C, g)
}

// checkDims checks that K and C are dim×dim and f, g have length dim
func checkDims(K mat.Matrix, f mat.Vector, C mat.Matrix, g mat.Vector) error {
	km, kn := K.Dims()
	cm, cn := C.Dims()
	nf, ng := f.Len(), g.Len()
	if km == 0 || km != kn || cm != km || cn != km || nf != km || ng != km {
		return &AssemblyError{km, kn, cm, cn, nf, ng}
	}
	return nil
}

// solvePartitioned solves the system by splitting DOFs into boundary (b) and interior (i) sets
//
//   u_b = C_bb⁻¹・g_b
//   u_i = K_ii⁻¹・(f_i - K_ib・u_b)
//   λ_b = C_bb⁻ᵀ・(f_b - K_bi・u_i - K_bb・u_b)
//
//  C_bb is factorised with LU and K_ii with Cholesky
func solvePartitioned(K mat.Matrix, f mat.Vector, C mat.Matrix, g mat.Vector) (u, λ *mat.VecDense, err error) {

	// partition
	p, err := NewPartition(K, C)
	if err != nil {
		return
	}
	B, I := p.Boundary, p.Interior
	dim := f.Len()
	u = mat.NewVecDense(dim, nil)
	λ = mat.NewVecDense(dim, nil)

	// boundary displacements
	var lu mat.LU
	if len(B) > 0 {
		lu.Factorize(subMatrix(C, B, B))
		if cond := lu.Cond(); !(cond < MaxCond) {
			return nil, nil, &NumericalError{Factorization: "boundary LU", Size: len(B), Cond: cond}
		}
		ub := mat.NewVecDense(len(B), nil)
		if e := lu.SolveVecTo(ub, false, subVector(g, B)); e != nil {
			return nil, nil, &NumericalError{Factorization: "boundary LU", Size: len(B), Cond: lu.Cond(), Err: e}
		}
		scatter(u, B, ub)
	}

	// interior displacements
	if len(I) > 0 {
		var ch mat.Cholesky
		if !ch.Factorize(symSubMatrix(K, I)) {
			return nil, nil, &NumericalError{Factorization: "interior Cholesky", Size: len(I), Cond: math.Inf(1), Err: chk.Err("matrix is not positive definite")}
		}
		rhs := subVector(f, I)
		if len(B) > 0 {
			var kub mat.VecDense
			kub.MulVec(subMatrix(K, I, B), subVector(u, B))
			rhs.SubVec(rhs, &kub)
		}
		ui := mat.NewVecDense(len(I), nil)
		if e := ch.SolveVecTo(ui, rhs); e != nil {
			return nil, nil, &NumericalError{Factorization: "interior Cholesky", Size: len(I), Cond: ch.Cond(), Err: e}
		}
		scatter(u, I, ui)
	}

	// Lagrange multipliers
	if len(B) > 0 {
		rhs := subVector(f, B)
		var tmp mat.VecDense
		tmp.MulVec(subMatrix(K, B, B), subVector(u, B))
		rhs.SubVec(rhs, &tmp)
		if len(I) > 0 {
			tmp.MulVec(subMatrix(K, B, I), subVector(u, I))
			rhs.SubVec(rhs, &tmp)
		}
		λb := mat.NewVecDense(len(B), nil)
		if e := lu.SolveVecTo(λb, true, rhs); e != nil {
			return nil, nil, &NumericalError{Factorization: "boundary LU", Size: len(B), Cond: lu.Cond(), Err: e}
		}
		scatter(λ, B, λb)
	}
	return
}

// solveAugmented assembles the saddle-point matrix A = [[K, Ct], [C, 0]] and solves A・x = [f; g]
// with LU after removing the rows and columns of A that are entirely zero. The corresponding
// entries of u and λ are left at zero.
func solveAugmented(K mat.Matrix, f mat.Vector, C mat.Matrix, g mat.Vector) (u, λ *mat.VecDense, err error) {

	// augmented system
	dim := f.Len()
	n := 2 * dim
	A := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			A.Set(i, j, K.At(i, j))
			if c := C.At(i, j); c != 0 {
				A.Set(dim+i, j, c)
				A.Set(j, dim+i, c)
			}
		}
		b.SetVec(i, f.AtVec(i))
		b.SetVec(dim+i, g.AtVec(i))
	}

	// remove zero rows and columns
	rows, cols := support(A)
	nz := make([]int, 0, len(rows))
	for i, ok := range mergeMasks(A, rows, cols) {
		if ok {
			nz = append(nz, i)
		}
	}
	u = mat.NewVecDense(dim, nil)
	λ = mat.NewVecDense(dim, nil)
	if len(nz) == 0 {
		return
	}

	// solve
	var lu mat.LU
	lu.Factorize(subMatrix(A, nz, nz))
	if cond := lu.Cond(); !(cond < MaxCond) {
		return nil, nil, &NumericalError{Factorization: "augmented LU", Size: len(nz), Cond: cond}
	}
	x := mat.NewVecDense(len(nz), nil)
	if e := lu.SolveVecTo(x, false, subVector(b, nz)); e != nil {
		return nil, nil, &NumericalError{Factorization: "augmented LU", Size: len(nz), Cond: lu.Cond(), Err: e}
	}

	// split
	for k, I := range nz {
		if I < dim {
			u.SetVec(I, x.AtVec(k))
		} else {
			λ.SetVec(I-dim, x.AtVec(k))
		}
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// subMatrix returns a[rows, cols]
func subMatrix(a mat.Matrix, rows, cols []int) *mat.Dense {
	res := mat.NewDense(len(rows), len(cols), nil)
	for i, I := range rows {
		for j, J := range cols {
			res.Set(i, j, a.At(I, J))
		}
	}
	return res
}

// symSubMatrix returns a[idx, idx] as a symmetric matrix built from its upper triangle
func symSubMatrix(a mat.Matrix, idx []int) *mat.SymDense {
	res := mat.NewSymDense(len(idx), nil)
	for i, I := range idx {
		for j := i; j < len(idx); j++ {
			res.SetSym(i, j, a.At(I, idx[j]))
		}
	}
	return res
}

// subVector returns v[idx]
func subVector(v mat.Vector, idx []int) *mat.VecDense {
	res := mat.NewVecDense(len(idx), nil)
	for i, I := range idx {
		res.SetVec(i, v.AtVec(I))
	}
	return res
}

// scatter sets v[idx] = x
func scatter(v *mat.VecDense, idx []int, x mat.Vector) {
	for i, I := range idx {
		v.SetVec(I, x.AtVec(i))
	}
}

// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsol

import (
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Partition holds the split of DOFs into constrained (boundary) and free (interior) sets.
// DOFs touched by neither K nor C belong to no set.
type Partition struct {
	Boundary []int // DOFs with nonzero entries in C; sorted
	Interior []int // DOFs touched by K that are not boundary DOFs; sorted
}

// NewPartition computes the partition from the nonzero structure of K and C
func NewPartition(K, C mat.Matrix) (o *Partition, err error) {
	rows, cols := support(C)
	if !slices.Equal(rows, cols) {
		return nil, &PartitionMismatchError{Rows: rows, Cols: cols}
	}
	o = &Partition{Boundary: rows}
	isbry := make(map[int]bool, len(rows))
	for _, i := range rows {
		isbry[i] = true
	}
	krows, kcols := support(K)
	for i, touched := range mergeMasks(K, krows, kcols) {
		if touched && !isbry[i] {
			o.Interior = append(o.Interior, i)
		}
	}
	return
}

// support returns the sorted indices of rows and columns with at least one nonzero
func support(a mat.Matrix) (rows, cols []int) {
	m, n := a.Dims()
	colmask := make([]bool, n)
	for i := 0; i < m; i++ {
		nonzero := false
		for j := 0; j < n; j++ {
			if a.At(i, j) != 0 {
				nonzero = true
				colmask[j] = true
			}
		}
		if nonzero {
			rows = append(rows, i)
		}
	}
	for j, ok := range colmask {
		if ok {
			cols = append(cols, j)
		}
	}
	return
}

// mergeMasks returns a mask over the rows of a flagging indices in rows or cols
func mergeMasks(a mat.Matrix, rows, cols []int) []bool {
	m, n := a.Dims()
	if n > m {
		m = n
	}
	mask := make([]bool, m)
	for _, i := range rows {
		mask[i] = true
	}
	for _, j := range cols {
		mask[j] = true
	}
	return mask
}

// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ele defines the problems and elements consumed by the nonlinear solver and implements
// rod (truss) field problems and Dirichlet boundary problems
package ele

import (
	"github.com/gofem/nlsolver/asm"
	"github.com/gofem/nlsolver/hist"
)

// field names
const (
	Displacement  = "displacement"   // unknown field of structural problems
	ReactionForce = "reaction force" // Lagrange multipliers of boundary problems
)

// Element defines what all elements must implement
type Element interface {
	Id() int      // returns the element id; unique within its problem
	Nodes() []int // returns the global ids of the element nodes
}

// Problem defines field (bulk) and boundary (constraint) problems.
//  Field problems assemble the stiffness matrix K and the force (residual) vector f.
//  Boundary problems assemble the constraints matrix C and the right-hand side g.
//  Assemble must only read from the store; it may be called concurrently for different problems.
type Problem interface {
	Name() string        // name of problem; used as key in the history store
	FieldName() string   // name of the unknown field; e.g. "displacement"
	FieldDim() int       // number of field components per node
	Elements() []Element // all elements

	// Assemble adds the global contributions of all elements at time t into acc
	Assemble(acc *asm.Accumulator, t float64, store *hist.Store) (err error)
}

// GDofs returns the global DOF numbers of an element for a field with dim components per node
func GDofs(e Element, dim int) (eqs []int) {
	nodes := e.Nodes()
	eqs = make([]int, 0, len(nodes)*dim)
	for _, n := range nodes {
		for j := 0; j < dim; j++ {
			eqs = append(eqs, n*dim+j)
		}
	}
	return
}

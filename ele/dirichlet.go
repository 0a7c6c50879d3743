// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"sort"
	"sync"

	"github.com/cpmech/gosl/chk"
	"github.com/gofem/nlsolver/asm"
	"github.com/gofem/nlsolver/hist"
)

// Prescribed holds the prescribed value of one component of a node
type Prescribed struct {
	Comp  int     // component
	Value float64 // value
	Ramp  bool    // multiply Value by the time
}

// PointElem is a boundary element attached to one node
type PointElem struct {
	Cid   int          // element id
	Node  int          // node id
	Fixed []Prescribed // fixed components; sorted
}

// Id returns the element id
func (o *PointElem) Id() int { return o.Cid }

// Nodes returns the node of the element
func (o *PointElem) Nodes() []int { return []int{o.Node} }

// location of a node within an element of the parent problem
type location struct {
	key   hist.Key
	local int
}

// Dirichlet implements a boundary problem prescribing the values of selected components of the
// parent field at some nodes. The constraints read
//
//   u[node*dim+comp] = value
//
// and are linearised about the current state: C has unit diagonal entries at the fixed DOFs and
// g = ū - u_current.
type Dirichlet struct {
	Key    string       // problem name
	Parent Problem      // field problem
	Elems  []*PointElem // point elements

	once   sync.Once
	lookup map[int]location // node => where its current value is stored
}

// NewDirichlet returns a new boundary problem fixing values of parent's field
func NewDirichlet(key string, parent Problem) *Dirichlet {
	return &Dirichlet{Key: key, Parent: parent}
}

// Fix prescribes component comp of node. Fixing the same component twice replaces the value.
func (o *Dirichlet) Fix(node, comp int, value float64, ramp bool) (err error) {
	if node < 0 {
		return chk.Err("dirichlet %q: node %d is invalid", o.Key, node)
	}
	if comp < 0 || comp >= o.FieldDim() {
		return chk.Err("dirichlet %q: cannot fix component %d of node %d; dim=%d", o.Key, comp, node, o.FieldDim())
	}
	var e *PointElem
	for _, p := range o.Elems {
		if p.Node == node {
			e = p
			break
		}
	}
	if e == nil {
		e = &PointElem{Cid: len(o.Elems), Node: node}
		o.Elems = append(o.Elems, e)
	}
	for i, p := range e.Fixed {
		if p.Comp == comp {
			e.Fixed[i] = Prescribed{comp, value, ramp}
			return
		}
	}
	e.Fixed = append(e.Fixed, Prescribed{comp, value, ramp})
	sort.Slice(e.Fixed, func(i, j int) bool { return e.Fixed[i].Comp < e.Fixed[j].Comp })
	return
}

// Name returns the problem name
func (o *Dirichlet) Name() string { return o.Key }

// FieldName returns the name of the multipliers field
func (o *Dirichlet) FieldName() string { return ReactionForce }

// FieldDim returns the number of components per node; equal to the parent's
func (o *Dirichlet) FieldDim() int { return o.Parent.FieldDim() }

// Elements returns all elements
func (o *Dirichlet) Elements() (res []Element) {
	res = make([]Element, len(o.Elems))
	for i, e := range o.Elems {
		res[i] = e
	}
	return
}

// Assemble adds the constraints of all elements into acc; acc.K receives C and acc.F receives g
func (o *Dirichlet) Assemble(acc *asm.Accumulator, t float64, store *hist.Store) (err error) {
	o.once.Do(o.buildLookup)
	dim := o.FieldDim()
	for _, e := range o.Elems {
		loc, ok := o.lookup[e.Node]
		if !ok {
			return chk.Err("dirichlet %q: node %d does not belong to any element of %q", o.Key, e.Node, o.Parent.Name())
		}
		var ucur []float64
		if s, found := store.Last(loc.key); found && loc.local < len(s.Data) {
			ucur = s.Data[loc.local]
		}
		for _, p := range e.Fixed {
			val := p.Value
			if p.Ramp {
				val *= t
			}
			if p.Comp < len(ucur) {
				val -= ucur[p.Comp]
			}
			I := e.Node*dim + p.Comp
			acc.K.Put(I, I, 1)
			acc.F.Put(I, val)
		}
	}
	return
}

// buildLookup finds, for every node of the parent problem, the first element containing it
func (o *Dirichlet) buildLookup() {
	o.lookup = make(map[int]location)
	for _, e := range o.Parent.Elements() {
		for m, n := range e.Nodes() {
			if _, ok := o.lookup[n]; !ok {
				o.lookup[n] = location{hist.Key{Problem: o.Parent.Name(), Element: e.Id(), Field: o.Parent.FieldName()}, m}
			}
		}
	}
}

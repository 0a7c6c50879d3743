// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
	"github.com/gofem/nlsolver/asm"
	"github.com/gofem/nlsolver/hist"
)

// RodElem represents a structural rod element (for only axial loads)
type RodElem struct {
	Cid   int        // cell id
	Verts []int      // the two vertices
	Model AxialModel // axial model
	L     float64    // initial length
	Dir   []float64  // [ndim] unit vector from vertex 0 to vertex 1
}

// Id returns the element id
func (o *RodElem) Id() int { return o.Cid }

// Nodes returns the global ids of the element nodes
func (o *RodElem) Nodes() []int { return o.Verts }

// Load holds a nodal point load
type Load struct {
	Node  int     // node id
	Comp  int     // component; e.g. 0 => x
	Value float64 // magnitude
	Ramp  bool    // multiply Value by the time
}

// Rod implements a field problem made of rods in 1, 2 or 3 dimensions.
//  The assembled K is the tangent stiffness and F is the residual f_ext - f_int computed with the
//  last displacement snapshot of each element.
type Rod struct {
	Key   string      // problem name
	Ndim  int         // space dimension
	X     [][]float64 // [nnodes][ndim] nodal coordinates
	Elems []*RodElem  // elements
	Loads []Load      // point loads
}

// NewRod returns a new rod problem
func NewRod(key string, ndim int, X [][]float64) (o *Rod, err error) {
	if ndim < 1 || ndim > 3 {
		return nil, chk.Err("rod %q: space dimension must be 1, 2 or 3. ndim=%d is invalid", key, ndim)
	}
	for i, x := range X {
		if len(x) != ndim {
			return nil, chk.Err("rod %q: coordinates of node %d must have %d components", key, i, ndim)
		}
	}
	return &Rod{Key: key, Ndim: ndim, X: X}, nil
}

// AddElem adds a new element connecting nodes a and b
func (o *Rod) AddElem(a, b int, model AxialModel) (e *RodElem, err error) {
	nnodes := len(o.X)
	if a < 0 || b < 0 || a >= nnodes || b >= nnodes {
		return nil, chk.Err("rod %q: vertices (%d,%d) are out of range; nnodes=%d", o.Key, a, b, nnodes)
	}
	if model == nil {
		return nil, chk.Err("rod %q: element (%d,%d) needs a model", o.Key, a, b)
	}
	e = &RodElem{Cid: len(o.Elems), Verts: []int{a, b}, Model: model, Dir: make([]float64, o.Ndim)}
	for j := 0; j < o.Ndim; j++ {
		e.Dir[j] = o.X[b][j] - o.X[a][j]
		e.L += e.Dir[j] * e.Dir[j]
	}
	e.L = math.Sqrt(e.L)
	if e.L < 1e-15 {
		return nil, chk.Err("rod %q: element (%d,%d) has zero length", o.Key, a, b)
	}
	for j := 0; j < o.Ndim; j++ {
		e.Dir[j] /= e.L
	}
	o.Elems = append(o.Elems, e)
	return
}

// AddLoad adds a point load
func (o *Rod) AddLoad(node, comp int, value float64, ramp bool) (err error) {
	if node < 0 || node >= len(o.X) {
		return chk.Err("rod %q: cannot load node %d; nnodes=%d", o.Key, node, len(o.X))
	}
	if comp < 0 || comp >= o.Ndim {
		return chk.Err("rod %q: cannot load component %d of node %d; ndim=%d", o.Key, comp, node, o.Ndim)
	}
	o.Loads = append(o.Loads, Load{node, comp, value, ramp})
	return
}

// Name returns the problem name
func (o *Rod) Name() string { return o.Key }

// FieldName returns the name of the unknown field
func (o *Rod) FieldName() string { return Displacement }

// FieldDim returns the number of displacement components per node
func (o *Rod) FieldDim() int { return o.Ndim }

// Elements returns all elements
func (o *Rod) Elements() (res []Element) {
	res = make([]Element, len(o.Elems))
	for i, e := range o.Elems {
		res[i] = e
	}
	return
}

// Assemble adds the tangent stiffness and residual of all elements into acc
func (o *Rod) Assemble(acc *asm.Accumulator, t float64, store *hist.Store) (err error) {
	nd := o.Ndim
	K := utl.Alloc(2*nd, 2*nd)
	r := make([]float64, 2*nd)
	for _, e := range o.Elems {
		ue := o.displacements(e, store)

		// elongation
		δ := 0.0
		for j := 0; j < nd; j++ {
			δ += e.Dir[j] * (ue[1][j] - ue[0][j])
		}
		N, kt := e.Model.Force(δ, e.L)
		if math.IsNaN(N) || math.IsNaN(kt) {
			return chk.Err("rod %q: element %d: axial model returned NaN. δ=%g", o.Key, e.Cid, δ)
		}

		// tangent and residual = -f_int
		for i := 0; i < nd; i++ {
			for j := 0; j < nd; j++ {
				kij := kt * e.Dir[i] * e.Dir[j]
				K[i][j], K[i][nd+j] = kij, -kij
				K[nd+i][j], K[nd+i][nd+j] = -kij, kij
			}
			r[i] = N * e.Dir[i]
			r[nd+i] = -N * e.Dir[i]
		}
		eqs := GDofs(e, nd)
		acc.K.PutMatrix(eqs, K)
		acc.F.PutVector(eqs, r)
	}

	// external forces
	for _, l := range o.Loads {
		val := l.Value
		if l.Ramp {
			val *= t
		}
		acc.F.Put(l.Node*nd+l.Comp, val)
	}
	return
}

// displacements returns the last displacements of the element nodes; zero if not recorded yet
func (o *Rod) displacements(e *RodElem, store *hist.Store) [][]float64 {
	s, ok := store.Last(hist.Key{Problem: o.Key, Element: e.Cid, Field: Displacement})
	if !ok || len(s.Data) != len(e.Verts) {
		return utl.Alloc(len(e.Verts), o.Ndim)
	}
	return s.Data
}

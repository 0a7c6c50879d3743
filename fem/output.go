// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"sort"

	"github.com/cpmech/gosl/io"
	"github.com/gofem/nlsolver/ele"
	"github.com/gofem/nlsolver/hist"
)

// NodalValues collects the values at nodes of problem p recorded at time t
//  Output:
//   nodes -- sorted ids of nodes with recorded values
//   vals  -- [len(nodes)][fielddim] values; taken from the first element containing each node
func NodalValues(store *hist.Store, p ele.Problem, t float64) (nodes []int, vals [][]float64) {
	res := make(map[int][]float64)
	for _, e := range p.Elements() {
		s, ok := store.At(hist.Key{Problem: p.Name(), Element: e.Id(), Field: p.FieldName()}, t)
		if !ok {
			continue
		}
		for m, n := range e.Nodes() {
			if _, found := res[n]; !found && m < len(s.Data) {
				res[n] = s.Data[m]
			}
		}
	}
	for n := range res {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)
	vals = make([][]float64, len(nodes))
	for i, n := range nodes {
		vals[i] = res[n]
	}
	return
}

// NodalTable returns a table with the values at nodes of problem p recorded at time t
func NodalTable(store *hist.Store, p ele.Problem, t float64) (l string) {
	nodes, vals := NodalValues(store, p, t)
	l = io.Sf("%s: %s @ t = %g\n", p.Name(), p.FieldName(), t)
	for i, n := range nodes {
		l += io.Sf("%6d", n)
		for _, v := range vals[i] {
			l += io.Sf("%23.15e", v)
		}
		l += "\n"
	}
	return
}

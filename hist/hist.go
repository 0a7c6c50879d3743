// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package hist implements the time-indexed history of element fields; e.g. displacements and
// reaction forces at the nodes of each element
package hist

import (
	"math"
	"sort"
	"sync"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// tolerances used to decide whether two time instants are the same
var (
	TimeTol  = 1.4901161193847656e-08 // relative; sqrt(machine epsilon)
	TimeAtol = 1e-14                  // absolute; for instants near zero
)

// SameTime tells whether a and b are (approximately) the same time instant
func SameTime(a, b float64) bool {
	d := math.Abs(a - b)
	return d <= TimeAtol || d <= TimeTol*math.Max(math.Abs(a), math.Abs(b))
}

// Snapshot holds the nodal values of one field at one time instant
type Snapshot struct {
	T    float64     // time
	Data [][]float64 // [nnodes][fielddim] nodal values
}

// Copy returns a deep copy of the snapshot data
func (o Snapshot) Copy() [][]float64 {
	res := make([][]float64, len(o.Data))
	for i, row := range o.Data {
		res[i] = make([]float64, len(row))
		copy(res[i], row)
	}
	return res
}

// Flat returns the data as a single vector ordered node by node
func (o Snapshot) Flat() (v []float64) {
	for _, row := range o.Data {
		v = append(v, row...)
	}
	return
}

// Log is the time-ordered sequence of snapshots of one field of one element
type Log struct {
	snaps []Snapshot
}

// Len returns the number of snapshots
func (o *Log) Len() int { return len(o.snaps) }

// At returns snapshot i
func (o *Log) At(i int) Snapshot { return o.snaps[i] }

// Last returns the most recent snapshot; ok is false if the log is empty
func (o *Log) Last() (s Snapshot, ok bool) {
	if len(o.snaps) == 0 {
		return
	}
	return o.snaps[len(o.snaps)-1], true
}

// Append adds a snapshot. Time must not decrease.
func (o *Log) Append(t float64, data [][]float64) {
	if last, ok := o.Last(); ok && t < last.T && !SameTime(t, last.T) {
		chk.Panic("cannot append snapshot at t=%g before last snapshot at t=%g", t, last.T)
	}
	o.snaps = append(o.snaps, Snapshot{t, data})
}

// Ensure makes sure the most recent snapshot corresponds to time t.
//  If the log is empty, a zero snapshot with nnodes×dim values is created.
//  If the last snapshot is at another time, a new one is appended holding a copy of the last data
//  when carry is true, or zeros otherwise.
//  If the last snapshot is already at t, nothing is done.
func (o *Log) Ensure(t float64, nnodes, dim int, carry bool) {
	last, ok := o.Last()
	if !ok {
		o.Append(t, utl.Alloc(nnodes, dim))
		return
	}
	if SameTime(last.T, t) {
		return
	}
	if carry {
		o.Append(t, last.Copy())
		return
	}
	o.Append(t, utl.Alloc(nnodes, dim))
}

// Add adds the flat vector v (node by node) onto the last snapshot
func (o *Log) Add(v []float64) {
	data := o.lastData(len(v))
	k := 0
	for _, row := range data {
		for j := range row {
			row[j] += v[k]
			k++
		}
	}
}

// Replace overwrites the last snapshot with the flat vector v (node by node)
func (o *Log) Replace(v []float64) {
	data := o.lastData(len(v))
	k := 0
	for _, row := range data {
		for j := range row {
			row[j] = v[k]
			k++
		}
	}
}

// lastData returns the data of the last snapshot and checks its size
func (o *Log) lastData(size int) [][]float64 {
	if len(o.snaps) == 0 {
		chk.Panic("cannot update empty history")
	}
	data := o.snaps[len(o.snaps)-1].Data
	n := 0
	for _, row := range data {
		n += len(row)
	}
	if n != size {
		chk.Panic("size of update (%d) does not match size of snapshot (%d)", size, n)
	}
	return data
}

// Key identifies one field of one element of one problem
type Key struct {
	Problem string // problem name
	Element int    // element id
	Field   string // field name; e.g. "displacement", "reaction force"
}

// Store holds the logs of all element fields. The map is safe for concurrent use; the contents of
// each log are written only by the nonlinear solver while no assembly is running.
type Store struct {
	mu   sync.RWMutex
	logs map[Key]*Log
}

// NewStore returns a new empty store
func NewStore() *Store {
	return &Store{logs: make(map[Key]*Log)}
}

// Get returns the log for key, if it exists
func (o *Store) Get(key Key) (log *Log, ok bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	log, ok = o.logs[key]
	return
}

// Log returns the log for key, creating an empty one if needed
func (o *Store) Log(key Key) *Log {
	o.mu.Lock()
	defer o.mu.Unlock()
	log, ok := o.logs[key]
	if !ok {
		log = new(Log)
		o.logs[key] = log
	}
	return log
}

// Last returns the most recent snapshot for key
func (o *Store) Last(key Key) (s Snapshot, ok bool) {
	log, found := o.Get(key)
	if !found {
		return
	}
	return log.Last()
}

// At returns the snapshot for key recorded at time t
func (o *Store) At(key Key, t float64) (s Snapshot, ok bool) {
	log, found := o.Get(key)
	if !found {
		return
	}
	for i := log.Len() - 1; i >= 0; i-- {
		if SameTime(log.snaps[i].T, t) {
			return log.snaps[i], true
		}
	}
	return
}

// Keys returns all keys, sorted by problem, element and field
func (o *Store) Keys() (keys []Key) {
	o.mu.RLock()
	for k := range o.logs {
		keys = append(keys, k)
	}
	o.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Problem != b.Problem {
			return a.Problem < b.Problem
		}
		if a.Element != b.Element {
			return a.Element < b.Element
		}
		return a.Field < b.Field
	})
	return
}

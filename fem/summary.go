// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"bytes"
	"os"
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Record holds the outcome of one Run
type Record struct {
	Time       float64   // time
	Iterations int       // number of iterations
	Converged  bool      // converged flag
	Norms      []float64 // norm of increments at each iteration
}

// Summary records the outcome of all runs
type Summary struct {
	Worker string   // worker identity
	Dirout string   // directory where results are stored
	Fnkey  string   // filename key
	Enc    string   // encoder type
	Runs   []Record // all runs
}

// Save saves summary to <dirout>/<fnkey>_sum.<enc>
func (o Summary) Save(verbose bool) (err error) {
	var buf bytes.Buffer
	err = GetEncoder(&buf, encoder(o.Enc)).Encode(o)
	if err != nil {
		return chk.Err("cannot encode summary\n%v", err)
	}
	return save_file(out_sum_path(o.Dirout, o.Fnkey, o.Enc), &buf, verbose)
}

// ReadSummary reads summary back
func ReadSummary(dir, fnkey, enctype string) (o *Summary, err error) {
	fn := out_sum_path(dir, fnkey, enctype)
	fil, err := os.Open(fn)
	if err != nil {
		return
	}
	defer fil.Close()
	o = new(Summary)
	err = GetDecoder(fil, encoder(enctype)).Decode(o)
	if err != nil {
		return nil, chk.Err("cannot decode summary file <%s>\n%v", fn, err)
	}
	return
}

// IterationCounts returns how many runs needed each number of iterations
//  Output:
//   iters  -- sorted numbers of iterations
//   counts -- number of runs corresponding to iters
func (o Summary) IterationCounts() (iters, counts []int) {
	m := make(map[int]int)
	for _, r := range o.Runs {
		m[r.Iterations]++
	}
	for n := range m {
		iters = append(iters, n)
	}
	sort.Ints(iters)
	counts = make([]int, len(iters))
	for i, n := range iters {
		counts[i] = m[n]
	}
	return
}

// Table returns a table with the norm of increments of each run, skipping the first skip runs
func (o Summary) Table(skip int) (l string) {
	l = io.Sf("%13s%4s%10s%23s\n", "t", "it", "converged", "‖δu‖")
	for i, r := range o.Runs {
		if i < skip {
			continue
		}
		for k, norm := range r.Norms {
			if k == 0 {
				l += io.Sf("%13.6e%4d%10v%23.15e\n", r.Time, k+1, r.Converged, norm)
				continue
			}
			l += io.Sf("%13s%4d%10s%23.15e\n", "", k+1, "", norm)
		}
	}
	return
}

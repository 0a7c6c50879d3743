// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hist

import (
	"sync"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_log01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("log01. ensure rules")

	var log Log
	log.Ensure(0, 2, 1, true)
	chk.Int(tst, "len: created", log.Len(), 1)
	s, _ := log.Last()
	chk.Array(tst, "zeros", 1e-17, s.Flat(), []float64{0, 0})

	log.Add([]float64{1, 2})
	log.Ensure(1e-15, 2, 1, true)
	chk.Int(tst, "len: same time", log.Len(), 1)

	log.Ensure(1, 2, 1, true)
	chk.Int(tst, "len: carried", log.Len(), 2)
	s, _ = log.Last()
	chk.Float64(tst, "t", 1e-17, s.T, 1)
	chk.Array(tst, "carried", 1e-17, s.Flat(), []float64{1, 2})

	// carried data is a copy
	log.Add([]float64{10, 10})
	chk.Array(tst, "previous", 1e-17, log.At(0).Flat(), []float64{1, 2})
	chk.Array(tst, "current", 1e-17, log.At(1).Flat(), []float64{11, 12})

	log.Ensure(2, 2, 1, false)
	s, _ = log.Last()
	chk.Array(tst, "not carried", 1e-17, s.Flat(), []float64{0, 0})
}

func Test_log02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("log02. add accumulates, replace overwrites")

	var log Log
	log.Ensure(0, 2, 2, false)
	log.Add([]float64{1, 2, 3, 4})
	log.Add([]float64{1, 1, 1, 1})
	s, _ := log.Last()
	chk.Array(tst, "node 0", 1e-17, s.Data[0], []float64{2, 3})
	chk.Array(tst, "node 1", 1e-17, s.Data[1], []float64{4, 5})

	log.Replace([]float64{-1, 0, 0, 7})
	log.Replace([]float64{-2, 0, 0, 8})
	s, _ = log.Last()
	chk.Array(tst, "replaced", 1e-17, s.Flat(), []float64{-2, 0, 0, 8})

	defer func() {
		if err := recover(); err == nil {
			tst.Errorf("wrong size should panic\n")
		}
	}()
	log.Add([]float64{1})
}

func Test_store01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("store01. keys and concurrent readers")

	st := NewStore()
	k1 := Key{"bar", 1, "displacement"}
	k0 := Key{"bar", 0, "displacement"}
	st.Log(k1).Ensure(0.5, 2, 1, false)
	st.Log(k0).Ensure(0.5, 2, 1, false)
	st.Log(k0).Add([]float64{3, 4})

	if _, ok := st.Get(Key{"bar", 2, "displacement"}); ok {
		tst.Errorf("key should not exist\n")
	}

	keys := st.Keys()
	chk.Int(tst, "nkeys", len(keys), 2)
	chk.Int(tst, "first element", keys[0].Element, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, ok := st.At(k0, 0.5)
			if !ok || s.Data[1][0] != 4 {
				tst.Errorf("concurrent read failed\n")
			}
		}()
	}
	wg.Wait()

	_, ok := st.At(k0, 0.7)
	if ok {
		tst.Errorf("there is no snapshot at t=0.7\n")
	}
}

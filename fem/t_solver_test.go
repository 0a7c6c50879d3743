// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/gofem/nlsolver/asm"
	"github.com/gofem/nlsolver/ele"
	"github.com/gofem/nlsolver/hist"
	"github.com/gofem/nlsolver/lsol"
	"github.com/stretchr/testify/require"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// counter counts the calls to Assemble
type counter struct {
	ele.Problem
	n int
}

func (o *counter) Assemble(acc *asm.Accumulator, t float64, store *hist.Store) error {
	o.n++
	return o.Problem.Assemble(acc, t, store)
}

// outside constrains a DOF that no field problem references
type outside struct{}

func (outside) Name() string { return "outside" }
func (outside) FieldName() string { return ele.ReactionForce }
func (outside) FieldDim() int { return 1 }
func (outside) Elements() []ele.Element { return nil }

func (outside) Assemble(acc *asm.Accumulator, t float64, store *hist.Store) error {
	acc.K.Put(9, 9, 1)
	acc.F.Put(9, 0)
	return nil
}

// failure fails to assemble
type failure struct {
	*ele.Rod
}

var errFailure = errors.New("cannot compute element matrices")

func (o *failure) Assemble(acc *asm.Accumulator, t float64, store *hist.Store) error {
	return errFailure
}

// bar returns a 1D bar with nodes at x = 0, 1, 2, fixed at node 0 and loaded by P at node 2
func bar(tst *testing.T, model string, prms map[string]float64, P float64) (rod *ele.Rod, sup *ele.Dirichlet) {
	rod, err := ele.NewRod("bar", 1, [][]float64{{0}, {1}, {2}})
	require.NoError(tst, err)
	for _, verts := range [][]int{{0, 1}, {1, 2}} {
		m, err := ele.NewModel(model, prms)
		require.NoError(tst, err)
		_, err = rod.AddElem(verts[0], verts[1], m)
		require.NoError(tst, err)
	}
	require.NoError(tst, rod.AddLoad(2, 0, P, false))
	sup = ele.NewDirichlet("support", rod)
	require.NoError(tst, sup.Fix(0, 0, 0, false))
	return
}

// last returns the last data of key
func last(tst *testing.T, store *hist.Store, problem string, eid int, field string) []float64 {
	s, ok := store.Last(hist.Key{Problem: problem, Element: eid, Field: field})
	require.True(tst, ok)
	return s.Flat()
}

func Test_solver01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver01. linear bar")

	for _, method := range []lsol.Method{lsol.Partitioned, lsol.Augmented} {
		rod, sup := bar(tst, "oned-elast", map[string]float64{"EA": 1}, 1)
		cfg := DefaultConfig()
		cfg.Method = method
		cfg.Verbose = chk.Verbose
		s := NewSolver(cfg, nil)
		s.AddFieldProblems(rod)
		s.AddBoundaryProblems(sup)

		// from zero: first iteration finds the solution and second confirms it
		it, converged, err := s.Run(1)
		require.NoError(tst, err)
		require.True(tst, converged)
		chk.Int(tst, "iterations", it, 2)
		chk.Array(tst, "u elem 0", 1e-14, last(tst, s.Store, "bar", 0, ele.Displacement), []float64{0, 1})
		chk.Array(tst, "u elem 1", 1e-14, last(tst, s.Store, "bar", 1, ele.Displacement), []float64{1, 2})
		chk.Array(tst, "λ", 1e-14, last(tst, s.Store, "support", 0, ele.ReactionForce), []float64{1})

		// already at equilibrium
		it, converged, err = s.Run(1)
		require.NoError(tst, err)
		require.True(tst, converged)
		chk.Int(tst, "iterations (same time)", it, 1)

		// new time: displacements are carried over and reactions restart from zero
		it, converged, err = s.Run(2)
		require.NoError(tst, err)
		require.True(tst, converged)
		chk.Int(tst, "iterations (next time)", it, 1)
		log, ok := s.Store.Get(hist.Key{Problem: "bar", Element: 1, Field: ele.Displacement})
		require.True(tst, ok)
		chk.Int(tst, "number of snapshots", log.Len(), 2)
		chk.Array(tst, "u elem 1 @ t=2", 1e-14, log.At(1).Flat(), []float64{1, 2})
		chk.Float64(tst, "t", 1e-15, log.At(1).T, 2)
	}
}

func Test_solver02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver02. exhausted iterations")

	rod, sup := bar(tst, "oned-elast", map[string]float64{"EA": 1}, 1)
	fields, bounds := &counter{Problem: rod}, &counter{Problem: sup}
	cfg := DefaultConfig()
	cfg.MaxIterations = 1
	s := NewSolver(cfg, nil)
	s.AddFieldProblems(fields)
	s.AddBoundaryProblems(bounds)
	it, converged, err := s.Run(1)
	require.NoError(tst, err)
	require.False(tst, converged)
	chk.Int(tst, "iterations", it, 1)
	chk.Int(tst, "field assemblies", fields.n, 1)
	chk.Int(tst, "boundary assemblies", bounds.n, 1)

	// nonlinear problem with unreachable tolerance
	rod, sup = bar(tst, "oned-cubic", map[string]float64{"EA": 1, "beta": 1}, 2)
	fields = &counter{Problem: rod}
	cfg.MaxIterations = 3
	cfg.Tol = 1e-300
	s = NewSolver(cfg, nil)
	s.AddFieldProblems(fields)
	s.AddBoundaryProblems(sup)
	it, converged, err = s.Run(1)
	require.NoError(tst, err)
	require.False(tst, converged)
	chk.Int(tst, "iterations", it, 3)
	chk.Int(tst, "field assemblies", fields.n, 3)
}

func Test_solver03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver03. displacements accumulate and reactions are replaced")

	rod, sup := bar(tst, "oned-cubic", map[string]float64{"EA": 1, "beta": 1}, 2)
	cfg := DefaultConfig()
	cfg.MaxIterations = 4
	cfg.Tol = 1e-300
	cfg.DumpMatrices = true
	cfg.DirOut = tst.TempDir()
	cfg.Encoder = "json"
	s := NewSolver(cfg, nil)
	s.Worker = "w"
	s.AddFieldProblems(rod)
	s.AddBoundaryProblems(sup)
	it, converged, err := s.Run(1)
	require.NoError(tst, err)
	require.False(tst, converged)
	chk.Int(tst, "iterations", it, 4)

	// solve the saved systems again and sum the increments
	sum := make([]float64, 3)
	var λ []float64
	for k := 1; k <= it; k++ {
		d, err := ReadDump(out_dump_path(cfg.DirOut, cfg.FnKey, cfg.Encoder, "w", 1, k), cfg.Encoder)
		require.NoError(tst, err)
		chk.Int(tst, "iteration", d.Iteration, k)
		K, err := d.Stiffness.ToDense("K", d.Dim, d.Dim)
		require.NoError(tst, err)
		f, err := d.Force.ToDense("f", d.Dim)
		require.NoError(tst, err)
		C, err := d.Constraint.ToDense("C", d.Dim, d.Dim)
		require.NoError(tst, err)
		g, err := d.ConstraintRhs.ToDense("g", d.Dim)
		require.NoError(tst, err)
		δu, l, err := lsol.Solve(K, f, C, g, cfg.Method)
		require.NoError(tst, err)
		for i := range sum {
			sum[i] += δu.AtVec(i)
		}
		λ = l.RawVector().Data
	}
	chk.Array(tst, "u elem 0 = Σ δu", 1e-14, last(tst, s.Store, "bar", 0, ele.Displacement), sum[:2])
	chk.Array(tst, "u elem 1 = Σ δu", 1e-14, last(tst, s.Store, "bar", 1, ele.Displacement), sum[1:])
	chk.Array(tst, "λ = last λ", 1e-14, last(tst, s.Store, "support", 0, ele.ReactionForce), λ[:1])
	log, _ := s.Store.Get(hist.Key{Problem: "support", Element: 0, Field: ele.ReactionForce})
	chk.Int(tst, "one reaction snapshot", log.Len(), 1)
}

func Test_solver04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver04. nonlinear bar converges to N = P")

	// two elements in series: δ + δ³ = P in each one; P = 2 => δ = 1
	for _, reduce := range []bool{false, true} {
		rod, sup := bar(tst, "oned-cubic", map[string]float64{"EA": 1, "beta": 1}, 2)
		cfg := DefaultConfig()
		cfg.MaxIterations = 20
		cfg.ReduceStiffness = reduce
		cfg.Verbose = chk.Verbose
		s := NewSolver(cfg, nil)
		s.AddFieldProblems(rod)
		s.AddBoundaryProblems(sup)
		it, converged, err := s.Run(1)
		require.NoError(tst, err)
		require.True(tst, converged)
		io.Pforan("iterations = %d\n", it)
		require.Greater(tst, it, 2)
		chk.Array(tst, "u elem 1", 1e-10, last(tst, s.Store, "bar", 1, ele.Displacement), []float64{1, 2})
		chk.Array(tst, "λ", 1e-10, last(tst, s.Store, "support", 0, ele.ReactionForce), []float64{2})
	}
}

func Test_solver05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver05. configuration errors")

	run := func(cfg Config, fields ...ele.Problem) error {
		s := NewSolver(cfg, nil)
		s.AddFieldProblems(fields...)
		_, _, err := s.Run(1)
		return err
	}
	rod, _ := bar(tst, "oned-elast", map[string]float64{"EA": 1}, 1)
	var cerr *ConfigurationError

	// linear problems
	cfg := DefaultConfig()
	cfg.Nonlinear = false
	require.ErrorAs(tst, run(cfg, rod), &cerr)

	// invalid values
	for _, modify := range []func(*Config){
		func(c *Config) { c.MaxIterations = 0 },
		func(c *Config) { c.Tol = 0 },
		func(c *Config) { c.Method = lsol.Method(5) },
		func(c *Config) { c.Encoder = "xml" },
		func(c *Config) { c.DumpMatrices, c.DirOut = true, "" },
	} {
		cfg = DefaultConfig()
		modify(&cfg)
		require.ErrorAs(tst, run(cfg, rod), &cerr)
	}

	// no field problems
	require.ErrorAs(tst, run(DefaultConfig()), &cerr)

	// heterogeneous field problems
	truss, err := ele.NewRod("truss", 2, [][]float64{{0, 0}, {1, 1}})
	require.NoError(tst, err)
	require.ErrorAs(tst, run(DefaultConfig(), rod, truss), &cerr)

	// field problems without elements
	empty, err := ele.NewRod("empty", 1, nil)
	require.NoError(tst, err)
	require.ErrorAs(tst, run(DefaultConfig(), empty), &cerr)
	require.Contains(tst, cerr.Error(), "degree of freedom")
}

func Test_solver06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver06. assembly and numerical errors")

	// constraint outside the field DOFs
	rod, sup := bar(tst, "oned-elast", map[string]float64{"EA": 1}, 1)
	s := NewSolver(DefaultConfig(), nil)
	s.AddFieldProblems(rod)
	s.AddBoundaryProblems(sup, outside{})
	_, _, err := s.Run(1)
	var aerr *lsol.AssemblyError
	require.ErrorAs(tst, err, &aerr)
	chk.Int(tst, "K rows", aerr.Km, 3)
	chk.Int(tst, "C rows", aerr.Cm, 10)

	// failing assembly
	failing := &failure{Rod: rod}
	s = NewSolver(DefaultConfig(), nil)
	s.AddFieldProblems(failing)
	_, _, err = s.Run(1)
	require.ErrorIs(tst, err, errFailure)

	// free bar => interior block is singular
	rod, _ = bar(tst, "oned-elast", map[string]float64{"EA": 1}, 1)
	s = NewSolver(DefaultConfig(), nil)
	s.AddFieldProblems(rod)
	it, converged, err := s.Run(1)
	var nerr *lsol.NumericalError
	require.ErrorAs(tst, err, &nerr)
	require.False(tst, converged)
	chk.Int(tst, "iterations", it, 1)
}

func Test_solver07(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solver07. parallel and serial assemblies agree")

	solve := func(parallel bool, method lsol.Method) *hist.Store {
		X := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
		left, err := ele.NewRod("left", 2, X)
		require.NoError(tst, err)
		right, err := ele.NewRod("right", 2, X)
		require.NoError(tst, err)
		m, err := ele.NewModel("oned-cubic", map[string]float64{"E": 10, "A": 0.1, "beta": 0.5})
		require.NoError(tst, err)
		for _, v := range [][]int{{0, 1}, {1, 2}} {
			_, err = left.AddElem(v[0], v[1], m)
			require.NoError(tst, err)
		}
		for _, v := range [][]int{{2, 3}, {3, 0}, {0, 2}, {1, 3}} {
			_, err = right.AddElem(v[0], v[1], m)
			require.NoError(tst, err)
		}
		require.NoError(tst, right.AddLoad(2, 0, 0.3, true))
		require.NoError(tst, right.AddLoad(3, 1, -0.2, true))
		pins := ele.NewDirichlet("pins", left)
		require.NoError(tst, pins.Fix(0, 0, 0, false))
		require.NoError(tst, pins.Fix(0, 1, 0, false))
		rollers := ele.NewDirichlet("rollers", right)
		require.NoError(tst, rollers.Fix(3, 0, 0.01, true))

		cfg := DefaultConfig()
		cfg.Parallel = parallel
		cfg.Method = method
		cfg.MaxIterations = 30
		s := NewSolver(cfg, nil)
		s.AddFieldProblems(left, right)
		s.AddBoundaryProblems(pins, rollers)
		for _, t := range []float64{0.5, 1} {
			_, converged, err := s.Run(t)
			require.NoError(tst, err)
			require.True(tst, converged)
		}
		return s.Store
	}

	serial := solve(false, lsol.Augmented)
	for _, method := range []lsol.Method{lsol.Augmented, lsol.Partitioned} {
		parallel := solve(true, method)
		keys := serial.Keys()
		chk.Int(tst, "number of keys", len(parallel.Keys()), len(keys))
		for _, key := range keys {
			a, _ := serial.Last(key)
			b, ok := parallel.Last(key)
			require.True(tst, ok)
			chk.Array(tst, io.Sf("%v", key), 1e-10, b.Flat(), a.Flat())
		}
	}
}

func Test_output01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("output01. nodal values")

	rod, sup := bar(tst, "oned-elast", map[string]float64{"EA": 1}, 1)
	s := NewSolver(DefaultConfig(), nil)
	s.AddFieldProblems(rod)
	s.AddBoundaryProblems(sup)
	_, _, err := s.Run(1)
	require.NoError(tst, err)

	nodes, vals := NodalValues(s.Store, rod, 1)
	chk.Ints(tst, "nodes", nodes, []int{0, 1, 2})
	chk.Deep2(tst, "u", 1e-14, vals, [][]float64{{0}, {1}, {2}})
	nodes, vals = NodalValues(s.Store, sup, 1)
	chk.Ints(tst, "nodes", nodes, []int{0})
	chk.Deep2(tst, "λ", 1e-14, vals, [][]float64{{1}})

	// nothing recorded at other times
	nodes, _ = NodalValues(s.Store, rod, 3)
	chk.Int(tst, "number of nodes", len(nodes), 0)

	l := NodalTable(s.Store, rod, 1)
	io.Pf("%s", l)
	require.Contains(tst, l, "2.000000000000000e+00")
}

// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"fmt"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/gofem/nlsolver/asm"
	"github.com/gofem/nlsolver/ele"
	"github.com/gofem/nlsolver/hist"
	"github.com/gofem/nlsolver/lsol"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Solver solves nonlinear problems at one time instant with a Newton-Raphson procedure.
// At each iteration, the field problems assemble the tangent stiffness K and the residual f,
// the boundary problems assemble the linearised constraints C and g, and the constrained system
//
//   K・δu + Ct・λ = f
//          C・δu = g
//
// is solved. The increments δu are added to the field histories and λ replaces the reaction
// forces of the boundary problems.
type Solver struct {
	Cfg     Config        // configuration
	Store   *hist.Store   // histories of element fields
	Fields  []ele.Problem // field problems
	Bounds  []ele.Problem // boundary problems
	Worker  string        // worker identity used in dumps
	Timing  Timing        // accumulated time spent in each phase
	Metrics *Metrics      // optional collectors
	Summary *Summary      // optional record of runs

	// auxiliary
	nruns int    // number of calls to Run
	field string // name of unknown field
	fdim  int    // field components per node
}

// NewSolver returns a new solver
func NewSolver(cfg Config, store *hist.Store) (o *Solver) {
	if store == nil {
		store = hist.NewStore()
	}
	return &Solver{Cfg: cfg, Store: store, Worker: uuid.NewString()}
}

// AddFieldProblems adds field problems; must be called before the first Run
func (o *Solver) AddFieldProblems(problems ...ele.Problem) {
	if o.nruns > 0 {
		chk.Panic("cannot add field problems after Run has been called")
	}
	o.Fields = append(o.Fields, problems...)
}

// AddBoundaryProblems adds boundary problems; must be called before the first Run
func (o *Solver) AddBoundaryProblems(problems ...ele.Problem) {
	if o.nruns > 0 {
		chk.Panic("cannot add boundary problems after Run has been called")
	}
	o.Bounds = append(o.Bounds, problems...)
}

// Run solves the nonlinear problem at time t
//  Output:
//   iterations -- number of iterations; MaxIterations if not converged
//   converged  -- the norm of the increments reached the tolerance
//   err        -- configuration, assembly or numerical errors
//  Note: not converging is not an error
func (o *Solver) Run(t float64) (iterations int, converged bool, err error) {

	// record outcome
	var norms []float64
	o.nruns++
	defer func() {
		switch {
		case err != nil:
			o.Metrics.IncrementRuns("failed")
		case converged:
			o.Metrics.IncrementRuns("converged")
		default:
			o.Metrics.IncrementRuns("exhausted")
		}
		if err == nil && o.Summary != nil {
			o.Summary.Runs = append(o.Summary.Runs, Record{t, iterations, converged, norms})
		}
	}()

	// initialise
	start := time.Now()
	err = o.initialise(t)
	o.record(phaseInit, start)
	if err != nil {
		return
	}

	// message
	verbose := o.Cfg.Verbose
	if verbose {
		io.Pf("\n%13s%4s%23s\n", "t", "it", "‖δu‖")
	}

	// iterations
	var norm float64
	for it := 1; it <= o.Cfg.MaxIterations; it++ {
		o.Metrics.IncrementIterations()
		norm, err = o.iterate(t, it)
		if err != nil {
			return it, false, err
		}
		norms = append(norms, norm)
		if verbose {
			io.Pf("%13.6e%4d%23.15e\n", t, it, norm)
		}
		if norm < o.Cfg.Tol {
			return it, true, nil
		}
	}

	// exhausted
	if verbose {
		io.Pfred("max number of iterations reached: it = %d. ‖δu‖ = %g ≥ tol = %g\n", o.Cfg.MaxIterations, norm, o.Cfg.Tol)
	}
	return o.Cfg.MaxIterations, false, nil
}

// initialise validates configuration and problems and makes sure all histories have a
// snapshot at time t
func (o *Solver) initialise(t float64) (err error) {

	// configuration
	err = o.Cfg.Validate()
	if err != nil {
		return
	}
	if len(o.Fields) == 0 {
		return cfgerr("at least one field problem is required")
	}

	// field problems must be homogeneous
	o.field, o.fdim = o.Fields[0].FieldName(), o.Fields[0].FieldDim()
	for _, p := range o.Fields[1:] {
		if p.FieldName() != o.field || p.FieldDim() != o.fdim {
			return cfgerr("field problems must have the same unknown field. %q has (%q, %d) but %q has (%q, %d)",
				p.Name(), p.FieldName(), p.FieldDim(), o.Fields[0].Name(), o.field, o.fdim)
		}
	}
	for _, p := range o.Bounds {
		if p.FieldDim() != o.Bounds[0].FieldDim() {
			return cfgerr("boundary problems must have the same field dimension. %q has %d but %q has %d",
				p.Name(), p.FieldDim(), o.Bounds[0].Name(), o.Bounds[0].FieldDim())
		}
	}

	// histories
	for _, p := range o.Fields {
		for _, e := range p.Elements() {
			o.Store.Log(o.key(p, e)).Ensure(t, len(e.Nodes()), p.FieldDim(), true)
		}
	}
	for _, p := range o.Bounds {
		for _, e := range p.Elements() {
			o.Store.Log(o.key(p, e)).Ensure(t, len(e.Nodes()), p.FieldDim(), false)
		}
	}
	return
}

// iterate performs one iteration and returns the norm of the increments
func (o *Solver) iterate(t float64, it int) (norm float64, err error) {

	// field problems
	start := time.Now()
	facc, err := o.assemble(o.Fields, t)
	o.record(phaseAssembleField, start)
	if err != nil {
		return 0, fmt.Errorf("iteration %d: field assembly: %w", it, err)
	}
	if facc.Empty() {
		return 0, cfgerr("field problems do not reference any degree of freedom")
	}
	dim := facc.Ndof()
	K, f, err := facc.Dense("stiffness", "force", dim)
	if err != nil {
		return 0, fmt.Errorf("iteration %d: %w", it, err)
	}

	// boundary problems
	start = time.Now()
	bacc, err := o.assemble(o.Bounds, t)
	o.record(phaseAssembleBoundary, start)
	if err != nil {
		return 0, fmt.Errorf("iteration %d: boundary assembly: %w", it, err)
	}
	C, g, err := bacc.Dense("constraint", "constraint rhs", dim)
	if err != nil {
		var derr *asm.DimError
		if errors.As(err, &derr) {
			cm, cn := bacc.K.Dims()
			err = &lsol.AssemblyError{Km: dim, Kn: dim, Cm: cm, Cn: cn, Nf: dim, Ng: bacc.F.Size()}
		}
		return 0, fmt.Errorf("iteration %d: boundary assembly: %w", it, err)
	}

	// save matrices
	if o.Cfg.DumpMatrices {
		start = time.Now()
		_, err = SaveDump(o.Cfg.DirOut, o.Cfg.FnKey, o.Cfg.Encoder, &Dump{
			Worker:        o.Worker,
			Run:           o.nruns,
			Iteration:     it,
			Time:          t,
			Dim:           dim,
			Stiffness:     facc.K,
			Force:         facc.F,
			Constraint:    bacc.K,
			ConstraintRhs: bacc.F,
		}, o.Cfg.Verbose)
		o.record(phaseDump, start)
		if err != nil {
			return 0, fmt.Errorf("iteration %d: dump: %w", it, err)
		}
	}

	// solve
	start = time.Now()
	u, λ, err := o.solve(K, f, C, g)
	o.record(phaseSolve, start)
	if err != nil {
		return 0, fmt.Errorf("iteration %d: solve with %v method: %w", it, o.Cfg.Method, err)
	}

	// update histories
	start = time.Now()
	for _, p := range o.Fields {
		for _, e := range p.Elements() {
			o.Store.Log(o.key(p, e)).Add(extract(u, ele.GDofs(e, p.FieldDim())))
		}
	}
	for _, p := range o.Bounds {
		for _, e := range p.Elements() {
			o.Store.Log(o.key(p, e)).Replace(extract(λ, ele.GDofs(e, p.FieldDim())))
		}
	}
	o.record(phaseUpdate, start)
	return floats.Norm(u.RawVector().Data, 2), nil
}

// assemble runs the assembly of all problems and joins the results in the order of problems
func (o *Solver) assemble(problems []ele.Problem, t float64) (acc *asm.Accumulator, err error) {
	if !o.Cfg.Parallel || len(problems) < 2 {
		acc = asm.NewAccumulator(0)
		for _, p := range problems {
			if err = p.Assemble(acc, t, o.Store); err != nil {
				return nil, fmt.Errorf("problem %q: %w", p.Name(), err)
			}
		}
		return
	}
	accs := make([]*asm.Accumulator, len(problems))
	var g errgroup.Group
	for i, p := range problems {
		i, p := i, p
		g.Go(func() error {
			a := asm.NewAccumulator(0)
			if err := p.Assemble(a, t, o.Store); err != nil {
				return fmt.Errorf("problem %q: %w", p.Name(), err)
			}
			accs[i] = a
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return
	}
	return asm.NewAccumulator(0).Join(accs...), nil
}

// solve calls the linear solver, removing unused DOFs first if requested
func (o *Solver) solve(K mat.Matrix, f mat.Vector, C mat.Matrix, g mat.Vector) (u, λ *mat.VecDense, err error) {
	if o.Cfg.ReduceStiffness {
		red, e := lsol.Reduce(K, f, C, g)
		if e != nil {
			return nil, nil, e
		}
		return red.Solve(o.Cfg.Method)
	}
	return lsol.Solve(K, f, C, g, o.Cfg.Method)
}

// key returns the history key of element e of problem p
func (o *Solver) key(p ele.Problem, e ele.Element) hist.Key {
	return hist.Key{Problem: p.Name(), Element: e.Id(), Field: p.FieldName()}
}

// record adds the time elapsed since start to the timing and metrics
func (o *Solver) record(p phase, start time.Time) {
	d := time.Since(start)
	o.Timing.add(p, d)
	o.Metrics.ObservePhase(p.String(), d)
}

// extract returns v[eqs]; equations outside v are returned as zero
func extract(v *mat.VecDense, eqs []int) []float64 {
	res := make([]float64, len(eqs))
	n := v.Len()
	for i, I := range eqs {
		if I < n {
			res[i] = v.AtVec(I)
		}
	}
	return res
}

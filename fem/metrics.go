// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"time"

	"github.com/cpmech/gosl/io"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// phase identifies a stage of the nonlinear solver
type phase int

// phases
const (
	phaseInit phase = iota
	phaseAssembleField
	phaseAssembleBoundary
	phaseDump
	phaseSolve
	phaseUpdate
)

var phaseNames = [...]string{"init", "assemble_field", "assemble_boundary", "dump", "solve", "update"}

func (p phase) String() string { return phaseNames[p] }

// Timing holds the accumulated time spent in each phase
type Timing struct {
	Init             time.Duration // validation and initialisation of histories
	AssembleField    time.Duration // assembly of K and f
	AssembleBoundary time.Duration // assembly of C and g
	Dump             time.Duration // saving matrices
	Solve            time.Duration // linear solver
	Update           time.Duration // update of histories
}

// add adds d to phase p
func (o *Timing) add(p phase, d time.Duration) {
	switch p {
	case phaseInit:
		o.Init += d
	case phaseAssembleField:
		o.AssembleField += d
	case phaseAssembleBoundary:
		o.AssembleBoundary += d
	case phaseDump:
		o.Dump += d
	case phaseSolve:
		o.Solve += d
	case phaseUpdate:
		o.Update += d
	}
}

// Total returns the sum of all phases
func (o Timing) Total() time.Duration {
	return o.Init + o.AssembleField + o.AssembleBoundary + o.Dump + o.Solve + o.Update
}

// String returns a table with the time spent in each phase
func (o Timing) String() (l string) {
	for i, d := range []time.Duration{o.Init, o.AssembleField, o.AssembleBoundary, o.Dump, o.Solve, o.Update} {
		l += io.Sf("%18s = %v\n", phaseNames[i], d)
	}
	l += io.Sf("%18s = %v\n", "total", o.Total())
	return
}

// Metrics provides Prometheus collectors for the nonlinear solver. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Iterations performed by all runs
	Iterations prometheus.Counter

	// Runs by result: "converged", "exhausted" or "failed"
	Runs *prometheus.CounterVec

	// Duration of each solver phase
	PhaseDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Iterations: f.NewCounter(prometheus.CounterOpts{
			Name: "gofem_nlsolver_iterations_total",
			Help: "Total number of nonlinear iterations",
		}),

		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gofem_nlsolver_runs_total",
			Help: "Total nonlinear solves by result",
		}, []string{"result"}),

		PhaseDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gofem_nlsolver_phase_duration_seconds",
			Help:    "Duration of nonlinear solver phases",
			Buckets: []float64{1e-5, 1e-4, 1e-3, 0.01, 0.1, 1, 10},
		}, []string{"phase"}),
	}
}

// IncrementIterations records one iteration
func (m *Metrics) IncrementIterations() {
	if m != nil {
		m.Iterations.Inc()
	}
}

// IncrementRuns records the result of a run
func (m *Metrics) IncrementRuns(result string) {
	if m != nil {
		m.Runs.WithLabelValues(result).Inc()
	}
}

// ObservePhase records the duration of a phase
func (m *Metrics) ObservePhase(name string, d time.Duration) {
	if m != nil {
		m.PhaseDuration.WithLabelValues(name).Observe(d.Seconds())
	}
}

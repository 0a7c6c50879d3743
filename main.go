// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/gofem/nlsolver/ele"
	"github.com/gofem/nlsolver/fem"
	"github.com/gofem/nlsolver/inp"
	"github.com/gofem/nlsolver/lsol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

// flags of run command
var (
	verbose  bool
	dump     bool
	dirout   string
	summary  bool
	parallel bool
	method   string
	timing   bool
	metrics  bool
)

// flags of resid command
var (
	encType string
	skip    int
)

var rootCmd = &cobra.Command{
	Use:   "gofem-nl",
	Short: "Gofem nonlinear solver",
	Long: `gofem-nl solves nonlinear rod and truss models with constraints imposed by
Lagrange multipliers. The model is read from a YAML or JSON file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var runCmd = &cobra.Command{
	Use:   "run <input>",
	Short: "Run simulation at all times listed in input file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available axial models",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range ele.ModelNames() {
			io.Pf("%s\n", name)
		}
	},
}

var residCmd = &cobra.Command{
	Use:   "resid <dirout> <fnkey>",
	Short: "Print the norm of increments saved in a summary file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := fem.ReadSummary(args[0], args[1], encType)
		if err != nil {
			return err
		}
		io.Verbose = true
		io.Pf("%s\n", sum.Table(skip))
		iters, counts := sum.IterationCounts()
		io.Pf("%10s%8s\n", "iterations", "runs")
		for i, n := range iters {
			io.Pf("%10d%8d\n", n, counts[i])
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show residuals and messages")
	runCmd.Flags().BoolVar(&dump, "dump", false, "save global matrices at each iteration")
	runCmd.Flags().StringVar(&dirout, "dirout", "", "directory for output files; default is given in input file")
	runCmd.Flags().BoolVar(&summary, "summary", false, "save summary of runs")
	runCmd.Flags().BoolVar(&parallel, "parallel", false, "assemble problems concurrently")
	runCmd.Flags().StringVar(&method, "method", "", "linear solver method: partitioned or augmented")
	runCmd.Flags().BoolVar(&timing, "timing", false, "show time spent in each phase")
	runCmd.Flags().BoolVar(&metrics, "metrics", false, "print metrics in Prometheus text format")
	residCmd.Flags().StringVar(&encType, "encoder", "gob", "encoder used to save the summary: gob or json")
	residCmd.Flags().IntVar(&skip, "skip", 0, "number of initial runs to skip")
	rootCmd.AddCommand(runCmd, modelsCmd, residCmd)
}

// run reads the input file and runs the solver for all times
func run(fn string) (err error) {

	// input data
	m, err := inp.Read(fn)
	if err != nil {
		return
	}
	cfg := m.Solver
	cfg.Verbose = cfg.Verbose || verbose
	cfg.DumpMatrices = cfg.DumpMatrices || dump
	cfg.Parallel = cfg.Parallel || parallel
	if dirout != "" {
		cfg.DirOut = dirout
	}
	if method != "" {
		cfg.Method, err = lsol.ParseMethod(method)
		if err != nil {
			return
		}
	}
	io.Verbose = true

	// problems
	fields, bounds, err := m.Build()
	if err != nil {
		return
	}

	// solver
	reg := prometheus.NewRegistry()
	s := fem.NewSolver(cfg, nil)
	s.Metrics = fem.NewMetrics(reg)
	s.AddFieldProblems(fields...)
	s.AddBoundaryProblems(bounds...)
	if summary {
		s.Summary = &fem.Summary{Worker: s.Worker, Dirout: cfg.DirOut, Fnkey: cfg.FnKey, Enc: cfg.Encoder}
	}
	if cfg.Verbose {
		io.PfWhite("\n%s\n", m.Desc)
		io.Pf("worker = %s\n", s.Worker)
	}

	// run
	for _, t := range m.Times {
		it, converged, e := s.Run(t)
		if e != nil {
			return chk.Err("run failed at t = %g:\n%v", t, e)
		}
		if !converged {
			io.Pfred("t = %g: did not converge after %d iterations\n", t, it)
		}
		io.Pf("\n")
		for _, p := range fields {
			io.Pf("%s", fem.NodalTable(s.Store, p, t))
		}
		for _, p := range bounds {
			io.Pf("%s", fem.NodalTable(s.Store, p, t))
		}
	}

	// output
	if summary {
		err = s.Summary.Save(cfg.Verbose)
		if err != nil {
			return
		}
	}
	if timing {
		io.Pf("\n%v", s.Timing)
	}
	if metrics {
		mfs, e := reg.Gather()
		if e != nil {
			return e
		}
		io.Pf("\n")
		for _, mf := range mfs {
			if _, err = expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
				return
			}
		}
	}
	return
}

func main() {
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		io.PfRed("ERROR: %v\n", err)
		os.Exit(1)
	}
}

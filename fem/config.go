// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/io"
	"github.com/gofem/nlsolver/lsol"
)

// Config holds the nonlinear solver configuration
type Config struct {
	Parallel        bool        `json:"parallel" yaml:"parallel"`                               // assemble problems concurrently
	Nonlinear       bool        `json:"nonlinear_problem" yaml:"nonlinear_problem"`             // must be true
	MaxIterations   int         `json:"max_iterations" yaml:"max_iterations"`                   // maximum number of iterations
	Tol             float64     `json:"tol" yaml:"tol"`                                         // tolerance on the norm of increments
	DumpMatrices    bool        `json:"dump_matrices" yaml:"dump_matrices"`                     // save K, f, C and g at each iteration
	ReduceStiffness bool        `json:"reduce_stiffness_matrix" yaml:"reduce_stiffness_matrix"` // remove unused DOFs before solving
	Method          lsol.Method `json:"method" yaml:"method"`                                   // linear solver strategy

	// output
	DirOut  string `json:"dirout" yaml:"dirout"`   // directory for dumps and summaries
	FnKey   string `json:"fnkey" yaml:"fnkey"`     // filename key
	Encoder string `json:"encoder" yaml:"encoder"` // "gob" or "json"
	Verbose bool   `json:"verbose" yaml:"verbose"` // print residuals and warnings
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Nonlinear:     true,
		MaxIterations: 10,
		Tol:           1e-10,
		Method:        lsol.Partitioned,
		DirOut:        "/tmp/gofem",
		FnKey:         "nlsolver",
		Encoder:       "gob",
	}
}

// ConfigurationError reports an invalid configuration or an unsupported combination of problems
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

// cfgerr returns a new configuration error
func cfgerr(msg string, prm ...interface{}) error {
	return &ConfigurationError{io.Sf(msg, prm...)}
}

// Validate checks the configuration
func (o Config) Validate() error {
	if !o.Nonlinear {
		return cfgerr("linear solver not implemented; nonlinear_problem must be true")
	}
	if o.MaxIterations <= 0 {
		return cfgerr("max_iterations must be positive. %d is invalid", o.MaxIterations)
	}
	if !(o.Tol > 0) {
		return cfgerr("tol must be positive. %g is invalid", o.Tol)
	}
	if !o.Method.Valid() {
		return cfgerr("method %d is invalid", int(o.Method))
	}
	if o.Encoder != "" && o.Encoder != "gob" && o.Encoder != "json" {
		return cfgerr("encoder must be \"gob\" or \"json\". %q is invalid", o.Encoder)
	}
	if o.DumpMatrices && o.DirOut == "" {
		return cfgerr("dirout is required when dump_matrices is on")
	}
	return nil
}

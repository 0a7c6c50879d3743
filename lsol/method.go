// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package lsol implements the direct solution of constrained linear systems
//
//      _       _
//     |  K  Ct  | / u \   / f \
//     |         | |   | = |   |
//     |_ C   0 _| \ λ /   \ g /
//
//  where K is the (symmetric) stiffness matrix, C the constraints matrix and λ the Lagrange
//  multipliers; i.e. the reactions at constrained DOFs
package lsol

import (
	"strings"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"
)

// Method selects the factorisation strategy
type Method int

const (
	// Partitioned splits DOFs into boundary and interior sets, factorises the constraints block with
	// LU and the interior stiffness block with Cholesky
	Partitioned Method = iota

	// Augmented factorises the whole saddle-point matrix with LU
	Augmented
)

// String returns the name of the method
func (m Method) String() string {
	switch m {
	case Partitioned:
		return "partitioned"
	case Augmented:
		return "augmented"
	}
	return "unknown"
}

// ParseMethod converts a name into a Method. "ldlt" and "lu" are accepted as aliases
func ParseMethod(name string) (m Method, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "partitioned", "ldlt":
		return Partitioned, nil
	case "augmented", "lu":
		return Augmented, nil
	}
	return 0, chk.Err("cannot find method named %q. options are {partitioned, augmented}", name)
}

// MarshalText implements encoding.TextMarshaler
func (m Method) MarshalText() ([]byte, error) {
	if _, ok := strategies[m]; !ok {
		return nil, chk.Err("cannot marshal unknown method %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Method) UnmarshalText(text []byte) (err error) {
	*m, err = ParseMethod(string(text))
	return
}

// Valid tells whether the method has an implementation
func (m Method) Valid() bool {
	_, ok := strategies[m]
	return ok
}

// SolveFunc solves K・u + Ct・λ = f and C・u = g
type SolveFunc func(K mat.Matrix, f mat.Vector, C mat.Matrix, g mat.Vector) (u, λ *mat.VecDense, err error)

// strategies holds all available factorisation strategies
var strategies = map[Method]SolveFunc{
	Partitioned: solvePartitioned,
	Augmented:   solveAugmented,
}

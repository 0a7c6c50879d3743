// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"sort"

	"github.com/cpmech/gosl/chk"
)

// AxialModel computes the axial force in a rod for a given elongation
type AxialModel interface {
	Init(prms map[string]float64) (err error) // initialises model with parameters
	Force(δ, L float64) (N, kt float64)       // axial force N and tangent stiffness dN/dδ
}

// OnedElast implements a linear elastic axial model: N = E・A・δ / L
type OnedElast struct {
	E float64 // Young's modulus
	A float64 // cross-sectional area
}

// OnedCubic implements an axial model with cubic hardening: N = E・A/L・(δ + β・δ³)
type OnedCubic struct {
	OnedElast
	Beta float64 // hardening coefficient β
}

// add models to factory
func init() {
	SetModel("oned-elast", func() AxialModel { return new(OnedElast) })
	SetModel("oned-cubic", func() AxialModel { return new(OnedCubic) })
}

// Init initialises model
//  Note: either "EA" or "E" and "A" may be given
func (o *OnedElast) Init(prms map[string]float64) (err error) {
	o.E, o.A = 0, 1
	_, withEA := prms["EA"]
	for key, val := range prms {
		switch key {
		case "E", "A":
			if withEA {
				return chk.Err("oned-elast: parameter %q cannot be given together with \"EA\"", key)
			}
			if key == "E" {
				o.E = val
			} else {
				o.A = val
			}
		case "EA":
			o.E = val
		default:
			return chk.Err("oned-elast: parameter named %q is invalid", key)
		}
	}
	if o.E <= 0 || o.A <= 0 {
		return chk.Err("oned-elast: E and A must be positive. E=%g, A=%g", o.E, o.A)
	}
	return
}

// Force computes the axial force and tangent stiffness
func (o *OnedElast) Force(δ, L float64) (N, kt float64) {
	kt = o.E * o.A / L
	return kt * δ, kt
}

// Init initialises model
func (o *OnedCubic) Init(prms map[string]float64) (err error) {
	o.Beta = 0
	elast := make(map[string]float64, len(prms))
	for key, val := range prms {
		if key == "beta" {
			o.Beta = val
			continue
		}
		elast[key] = val
	}
	err = o.OnedElast.Init(elast)
	if err != nil {
		return chk.Err("oned-cubic: %v", err)
	}
	return
}

// Force computes the axial force and tangent stiffness
func (o *OnedCubic) Force(δ, L float64) (N, kt float64) {
	s := o.E * o.A / L
	N = s * (δ + o.Beta*δ*δ*δ)
	kt = s * (1 + 3*o.Beta*δ*δ)
	return
}

// factory ////////////////////////////////////////////////////////////////////////////////////////

// ModelAllocator defines a function that allocates a model
type ModelAllocator func() AxialModel

// SetModel sets a new allocator for models named name
func SetModel(name string, fcn ModelAllocator) {
	if _, ok := models[name]; ok {
		chk.Panic("cannot set allocator for %q because model name exists already", name)
	}
	models[name] = fcn
}

// NewModel allocates and initialises a model from factory
func NewModel(name string, prms map[string]float64) (m AxialModel, err error) {
	fcn, ok := models[name]
	if !ok {
		return nil, chk.Err("cannot find model named %q. available models are %v", name, ModelNames())
	}
	m = fcn()
	err = m.Init(prms)
	return
}

// ModelNames returns the names of all available models
func ModelNames() (names []string) {
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// models holds all model allocators
var models = make(map[string]ModelAllocator)

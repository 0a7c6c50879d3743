// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from YAML or JSON files
package inp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/gofem/nlsolver/ele"
	"github.com/gofem/nlsolver/fem"
	"gopkg.in/yaml.v3"
)

// RodData holds data of one rod element
type RodData struct {
	Nodes []int   `json:"nodes" yaml:"nodes"` // the two nodes
	Model string  `json:"model" yaml:"model"` // model name; default is "oned-elast" or "oned-cubic" if beta != 0
	EA    float64 `json:"ea" yaml:"ea"`       // axial stiffness E・A
	Beta  float64 `json:"beta" yaml:"beta"`   // cubic hardening coefficient
}

// FixedData holds a prescribed value
type FixedData struct {
	Node  int     `json:"node" yaml:"node"`   // node id
	Comp  int     `json:"comp" yaml:"comp"`   // component; e.g. 0 => x
	Value float64 `json:"value" yaml:"value"` // prescribed value
	Ramp  bool    `json:"ramp" yaml:"ramp"`   // multiply value by time
}

// LoadData holds a point load
type LoadData struct {
	Node  int     `json:"node" yaml:"node"`   // node id
	Comp  int     `json:"comp" yaml:"comp"`   // component
	Value float64 `json:"value" yaml:"value"` // magnitude
}

// Model holds all data of a simulation
type Model struct {
	Desc   string      `json:"desc" yaml:"desc"`     // description of simulation
	Solver fem.Config  `json:"solver" yaml:"solver"` // nonlinear solver configuration
	Ndim   int         `json:"ndim" yaml:"ndim"`     // space dimension
	Nodes  [][]float64 `json:"nodes" yaml:"nodes"`   // [nnodes][ndim] coordinates
	Rods   []RodData   `json:"rods" yaml:"rods"`     // elements
	Fixed  []FixedData `json:"fixed" yaml:"fixed"`   // prescribed values
	Loads  []LoadData  `json:"loads" yaml:"loads"`   // point loads
	Ramp   bool        `json:"ramp" yaml:"ramp"`     // multiply loads by time
	Times  []float64   `json:"times" yaml:"times"`   // output times
	Key    string      `json:"-" yaml:"-"`           // filename key; e.g. bar.yaml => bar
}

// Read reads a simulation file. Files with extension .yaml or .yml are decoded as YAML;
// otherwise (e.g. .json or .sim) as JSON.
func Read(fn string) (o *Model, err error) {

	// read file
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, chk.Err("cannot read simulation file %q:\n%v", fn, err)
	}

	// default values
	o = new(Model)
	o.Key = io.FnKey(filepath.Base(fn))
	o.Solver = fem.DefaultConfig()
	o.Solver.FnKey = o.Key
	o.Solver.DirOut = "/tmp/gofem/" + o.Key

	// decode
	switch strings.ToLower(filepath.Ext(fn)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, o)
	default:
		err = json.Unmarshal(b, o)
	}
	if err != nil {
		return nil, chk.Err("cannot unmarshal simulation file %q:\n%v", fn, err)
	}
	if len(o.Times) == 0 {
		o.Times = []float64{1}
	}
	return o, o.Validate()
}

// Validate checks the model data
func (o *Model) Validate() error {
	if o.Ndim < 1 || o.Ndim > 3 {
		return chk.Err("ndim must be 1, 2 or 3. %d is invalid", o.Ndim)
	}
	if len(o.Nodes) == 0 {
		return chk.Err("at least one node is required")
	}
	if len(o.Rods) == 0 {
		return chk.Err("at least one rod is required")
	}
	for i, r := range o.Rods {
		if len(r.Nodes) != 2 {
			return chk.Err("rod %d must have 2 nodes; %v is invalid", i, r.Nodes)
		}
	}
	for i := 1; i < len(o.Times); i++ {
		if o.Times[i] < o.Times[i-1] {
			return chk.Err("times must not decrease. %v is invalid", o.Times)
		}
	}
	return o.Solver.Validate()
}

// Build allocates the field and boundary problems
func (o *Model) Build() (fields, bounds []ele.Problem, err error) {

	// rods
	rod, err := ele.NewRod(o.Key, o.Ndim, o.Nodes)
	if err != nil {
		return
	}
	for i, r := range o.Rods {
		name, prms := r.Model, map[string]float64{"EA": r.EA}
		if r.Beta != 0 {
			prms["beta"] = r.Beta
		}
		if name == "" {
			name = "oned-elast"
			if r.Beta != 0 {
				name = "oned-cubic"
			}
		}
		m, e := ele.NewModel(name, prms)
		if e != nil {
			return nil, nil, chk.Err("rod %d:\n%v", i, e)
		}
		if _, err = rod.AddElem(r.Nodes[0], r.Nodes[1], m); err != nil {
			return nil, nil, err
		}
	}
	for _, l := range o.Loads {
		if err = rod.AddLoad(l.Node, l.Comp, l.Value, o.Ramp); err != nil {
			return nil, nil, err
		}
	}
	fields = []ele.Problem{rod}

	// supports
	if len(o.Fixed) > 0 {
		sup := ele.NewDirichlet(o.Key+"-supports", rod)
		for _, f := range o.Fixed {
			if err = sup.Fix(f.Node, f.Comp, f.Value, f.Ramp); err != nil {
				return nil, nil, err
			}
		}
		bounds = []ele.Problem{sup}
	}
	return
}

// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	goio "io"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/gofem/nlsolver/asm"
)

// Encoder defines encoders; e.g. gob or json
type Encoder interface {
	Encode(e interface{}) error
}

// Decoder defines decoders; e.g. gob or json
type Decoder interface {
	Decode(e interface{}) error
}

// GetEncoder returns a new encoder
func GetEncoder(w goio.Writer, enctype string) Encoder {
	if enctype == "json" {
		return json.NewEncoder(w)
	}
	return gob.NewEncoder(w)
}

// GetDecoder returns a new decoder
func GetDecoder(r goio.Reader, enctype string) Decoder {
	if enctype == "json" {
		return json.NewDecoder(r)
	}
	return gob.NewDecoder(r)
}

// Dump holds the global system of one iteration
type Dump struct {
	Worker        string      // worker identity
	Run           int         // index of Run call
	Iteration     int         // iteration number
	Time          float64     // time
	Dim           int         // global dimension
	Stiffness     asm.Triplet // K
	Force         asm.Vector  // f
	Constraint    asm.Triplet // C
	ConstraintRhs asm.Vector  // g
}

// SaveDump saves dump to <dirout>/<fnkey>_w<worker>_r<run>_it<iteration>.<enc>
func SaveDump(dirout, fnkey, enctype string, dump *Dump, verbose bool) (fn string, err error) {
	var buf bytes.Buffer
	enc := GetEncoder(&buf, encoder(enctype))
	err = enc.Encode(dump)
	if err != nil {
		return "", chk.Err("cannot encode dump of iteration %d\n%v", dump.Iteration, err)
	}
	fn = out_dump_path(dirout, fnkey, enctype, dump.Worker, dump.Run, dump.Iteration)
	return fn, save_file(fn, &buf, verbose)
}

// ReadDump reads a dump file back
func ReadDump(fn, enctype string) (dump *Dump, err error) {
	fil, err := os.Open(fn)
	if err != nil {
		return
	}
	defer fil.Close()
	dump = new(Dump)
	err = GetDecoder(fil, encoder(enctype)).Decode(dump)
	if err != nil {
		return nil, chk.Err("cannot decode dump file <%s>\n%v", fn, err)
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// encoder returns the encoder type or the default one
func encoder(enctype string) string {
	if enctype == "" {
		return "gob"
	}
	return enctype
}

func out_dump_path(dir, fnkey, enctype, worker string, run, it int) string {
	return filepath.Join(dir, io.Sf("%s_w%s_r%03d_it%03d.%s", fnkey, worker, run, it, encoder(enctype)))
}

func out_sum_path(dir, fnkey, enctype string) string {
	return filepath.Join(dir, io.Sf("%s_sum.%s", fnkey, encoder(enctype)))
}

func save_file(filename string, buf *bytes.Buffer, verbose bool) (err error) {
	err = os.MkdirAll(filepath.Dir(filename), 0777)
	if err != nil {
		return chk.Err("cannot create directory for <%s>\n%v", filename, err)
	}
	fil, err := os.Create(filename)
	if err != nil {
		return
	}
	_, err = fil.Write(buf.Bytes())
	if cerr := fil.Close(); err == nil {
		err = cerr
	}
	if err == nil && verbose {
		io.Pfblue2("file <%s> written\n", filename)
	}
	return
}

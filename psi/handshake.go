//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package psi

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/ot"
	"github.com/pkg/errors"
)

// ProtocolVersion defines the handshake protocol version.
const ProtocolVersion = 1

const fieldName = "GF(2^128)"

// hello is the first message on every link. Both parties send their
// protocol parameters and verify the peer's values.
type hello struct {
	Version    int    `cbor:"1,keyasint"`
	Party      int    `cbor:"2,keyasint"`
	NumParties int    `cbor:"3,keyasint"`
	SetSize    int    `cbor:"4,keyasint"`
	Field      string `cbor:"5,keyasint"`
	Vole       string `cbor:"6,keyasint"`
	Solver     string `cbor:"7,keyasint"`
	Output     int    `cbor:"8,keyasint"`
}

func newHello(id int, cfg *Config) *hello {
	return &hello{
		Version:    ProtocolVersion,
		Party:      id,
		NumParties: cfg.NumParties,
		SetSize:    cfg.SetSize,
		Field:      fieldName,
		Vole:       cfg.voleString(),
		Solver:     cfg.Solver.String(),
		Output:     int(cfg.Output),
	}
}

func sendHello(conn ot.IO, h *hello) error {
	data, err := cbor.Marshal(h)
	if err != nil {
		return err
	}
	if err := conn.SendData(data); err != nil {
		return err
	}
	return conn.Flush()
}

func receiveHello(conn ot.IO) (*hello, error) {
	data, err := conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	h := new(hello)
	if err := cbor.Unmarshal(data, h); err != nil {
		return nil, errors.Wrap(err, "malformed hello")
	}
	return h, nil
}

// check verifies that the peer's hello matches ours.
func (h *hello) check(peer int, remote *hello) error {
	mismatch := func(what string, local, remote interface{}) error {
		return &Error{
			Kind:  ConfigurationError,
			Party: h.Party,
			Peer:  peer,
			Err: errors.Errorf("%s mismatch: local %v, peer %v",
				what, local, remote),
		}
	}
	switch {
	case remote.Version != h.Version:
		return mismatch("version", h.Version, remote.Version)
	case remote.Party != peer:
		return mismatch("party", peer, remote.Party)
	case remote.NumParties != h.NumParties:
		return mismatch("number of parties", h.NumParties, remote.NumParties)
	case remote.SetSize != h.SetSize:
		return mismatch("set size", h.SetSize, remote.SetSize)
	case remote.Field != h.Field:
		return mismatch("field", h.Field, remote.Field)
	case remote.Vole != h.Vole:
		return mismatch("VOLE", h.Vole, remote.Vole)
	case remote.Solver != h.Solver:
		return mismatch("solver", h.Solver, remote.Solver)
	case remote.Output != h.Output:
		return mismatch("output", Output(h.Output), Output(remote.Output))
	}
	return nil
}

// resultMsg carries the leader's result to the other parties.
type resultMsg struct {
	Cardinality int    `cbor:"1,keyasint"`
	Elements    []byte `cbor:"2,keyasint,omitempty"`
}

func sendResult(conn ot.IO, r *Result) error {
	msg := &resultMsg{
		Cardinality: r.Cardinality,
	}
	if r.Elements != nil {
		msg.Elements = field.Vector(r.Elements).Bytes()
	}
	data, err := cbor.Marshal(msg)
	if err != nil {
		return err
	}
	if err := conn.SendData(data); err != nil {
		return err
	}
	return conn.Flush()
}

func receiveResult(conn ot.IO, output Output) (*Result, error) {
	data, err := conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	var msg resultMsg
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return nil, errors.Wrap(err, "malformed result")
	}
	if msg.Cardinality < 0 {
		return nil, errors.Errorf("invalid cardinality %d", msg.Cardinality)
	}
	result := &Result{
		Cardinality: msg.Cardinality,
	}
	if output == Elements {
		if len(msg.Elements) != msg.Cardinality*field.Size {
			return nil, errors.Errorf("result has %d bytes for %d elements",
				len(msg.Elements), msg.Cardinality)
		}
		v, err := field.VectorFromBytes(msg.Elements)
		if err != nil {
			return nil, err
		}
		result.Elements = v
	}
	return result, nil
}

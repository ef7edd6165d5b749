//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package solver implements oblivious key-value encoders. An encoder
// maps a set of points (x, y) into a code vector P so that
// Decode(P, x) = y for every encoded x. Decoding a key that was not
// encoded yields a value that looks uniformly random.
package solver

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/ot"
)

// ErrEncodingFailure is returned when the encoder could not find a
// code vector for the points. The caller may retry with fresh
// auxiliary seeds.
var ErrEncodingFailure = errors.New("solver: encoding failure")

// Point defines a key-value pair to encode.
type Point struct {
	X field.Element
	Y field.Element
}

// Aux holds the auxiliary hash seeds shared between the encoder and
// the decoder.
type Aux [3]uint64

// Params define the code vector layout for a set size.
type Params struct {
	L int
	R int
}

// CodeLength returns the length of the code vector.
func (p Params) CodeLength() int {
	return p.L + p.R
}

func (p Params) String() string {
	return fmt.Sprintf("|L|=%d,|R|=%d", p.L, p.R)
}

// Kind specifies the solver type.
type Kind int

// Solver kinds.
const (
	Paxos Kind = iota
	Vandermonde
)

var kinds = map[Kind]string{
	Paxos:       "paxos",
	Vandermonde: "vandelmonde",
}

func (k Kind) String() string {
	name, ok := kinds[k]
	if ok {
		return name
	}
	return fmt.Sprintf("{Kind %d}", k)
}

// Parse parses the solver kind name.
func Parse(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "paxos":
		return Paxos, nil
	case "vandelmonde", "vandermonde":
		return Vandermonde, nil
	default:
		return 0, fmt.Errorf("solver: unknown solver '%s'", name)
	}
}

// Solver implements an oblivious key-value encoder.
type Solver interface {
	// Kind returns the solver kind.
	Kind() Kind

	// Params returns the code vector parameters for n points.
	Params(n int) Params

	// NewAux creates new random auxiliary seeds.
	NewAux(r io.Reader) (Aux, error)

	// SendAux sends the auxiliary seeds to the peer.
	SendAux(io ot.IO, aux Aux) error

	// ReceiveAux receives the auxiliary seeds from the peer.
	ReceiveAux(io ot.IO) (Aux, error)

	// Encode encodes the points into a code vector. The function
	// returns ErrEncodingFailure if the points could not be encoded
	// with the seeds.
	Encode(r io.Reader, points []Point, aux Aux, params Params) (
		field.Vector, error)

	// Decode decodes the value of x from the code vector p. The
	// vector must have params.CodeLength() elements.
	Decode(p field.Vector, x field.Element, aux Aux,
		params Params) field.Element
}

// New creates a solver of the argument kind.
func New(kind Kind) (Solver, error) {
	switch kind {
	case Paxos:
		return &PaxosSolver{}, nil
	case Vandermonde:
		return &VandermondeSolver{}, nil
	default:
		return nil, fmt.Errorf("solver: unsupported kind %v", kind)
	}
}

// Encode encodes the points with fresh auxiliary seeds, retrying up
// to attempts times on ErrEncodingFailure. It returns the code
// vector and the seeds used.
func Encode(s Solver, r io.Reader, points []Point, params Params,
	attempts int) (field.Vector, Aux, error) {

	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		var aux Aux
		aux, err = s.NewAux(r)
		if err != nil {
			return nil, aux, err
		}
		var p field.Vector
		p, err = s.Encode(r, points, aux, params)
		if err == nil {
			return p, aux, nil
		}
		if !errors.Is(err, ErrEncodingFailure) {
			return nil, aux, err
		}
	}
	return nil, Aux{}, err
}

func newAux(r io.Reader) (Aux, error) {
	var buf [24]byte
	var aux Aux
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return aux, err
	}
	for i := range aux {
		aux[i] = binary.BigEndian.Uint64(buf[i*8:])
	}
	return aux, nil
}

func sendAux(io ot.IO, aux Aux) error {
	var buf [24]byte
	for i, k := range aux {
		binary.BigEndian.PutUint64(buf[i*8:], k)
	}
	return io.SendData(buf[:])
}

func receiveAux(io ot.IO) (Aux, error) {
	var aux Aux
	data, err := io.ReceiveData()
	if err != nil {
		return aux, err
	}
	if len(data) != 24 {
		return aux, fmt.Errorf("solver: invalid aux length %d", len(data))
	}
	for i := range aux {
		aux[i] = binary.BigEndian.Uint64(data[i*8:])
	}
	return aux, nil
}

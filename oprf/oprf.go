//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package oprf implements VOLE-based oblivious pseudorandom functions
// (OPRF) and oblivious programmable PRFs (OPPRF).
//
// The query party holds the VOLE sender share (U, E) and the key
// holder holds the receiver share (Δ, V) where V = U·Δ + E. The query
// party encodes the points (x, H^F(x)) into P and sends U+P. The key
// holder computes K = Δ·(U+P) + V = Δ·P + E and evaluates
//
//	f(x) = H(Decode(K, x) - Δ·H^F(x), x)
//
// For the query points, Decode(K, x) - Δ·H^F(x) = Decode(E, x) so the
// query party learns f(x) = H(Decode(E, x), x) without learning Δ.
package oprf

import (
	"fmt"

	"github.com/markkurossi/mpsi/env"
	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/ot"
	"github.com/markkurossi/mpsi/solver"
	"github.com/markkurossi/mpsi/vole"
)

// DefaultAttempts defines the default number of encoding attempts.
const DefaultAttempts = 2

// Key implements the OPRF key holder. It evaluates the PRF for any
// input after the query party has sent its encoding.
type Key struct {
	solver solver.Solver
	params solver.Params
	aux    solver.Aux
	delta  field.Element
	k      field.Vector
}

// ReceiveKey receives the query party's encoding for n points and
// derives the PRF key from the VOLE receiver share.
func ReceiveKey(conn ot.IO, s solver.Solver, n int, share *vole.Share) (
	*Key, error) {

	params := s.Params(n)
	if share.Role != vole.ReceiverRole {
		return nil, fmt.Errorf("oprf: key holder needs %v share, got %v",
			vole.ReceiverRole, share.Role)
	}
	if share.Len() != params.CodeLength() {
		return nil, fmt.Errorf("oprf: share length %d, expected %d",
			share.Len(), params.CodeLength())
	}
	aux, err := s.ReceiveAux(conn)
	if err != nil {
		return nil, err
	}
	masked, err := receiveVector(conn, params.CodeLength())
	if err != nil {
		return nil, err
	}
	return &Key{
		solver: s,
		params: params,
		aux:    aux,
		delta:  share.Delta,
		k:      masked.Scale(share.Delta).Add(share.V),
	}, nil
}

// Eval evaluates the PRF for x.
func (key *Key) Eval(x field.Element) field.Element {
	v := key.solver.Decode(key.k, x, key.aux, key.params)
	v = v.Sub(key.delta.Mul(HF(x)))
	return H(v, x)
}

// Query runs the query party's side of the OPRF for the inputs xs
// and returns the PRF values f(x) for all inputs. The share must be a
// VOLE sender share of the solver's code length for len(xs) points.
func Query(conn ot.IO, s solver.Solver, xs []field.Element,
	share *vole.Share, attempts int, config *env.Config) (
	[]field.Element, error) {

	params := s.Params(len(xs))
	if share.Role != vole.SenderRole {
		return nil, fmt.Errorf("oprf: query party needs %v share, got %v",
			vole.SenderRole, share.Role)
	}
	if share.Len() != params.CodeLength() {
		return nil, fmt.Errorf("oprf: share length %d, expected %d",
			share.Len(), params.CodeLength())
	}
	points := make([]solver.Point, len(xs))
	for i, x := range xs {
		points[i] = solver.Point{
			X: x,
			Y: HF(x),
		}
	}
	p, aux, err := encode(s, config, points, params, attempts)
	if err != nil {
		return nil, err
	}
	if err := s.SendAux(conn, aux); err != nil {
		return nil, err
	}
	if err := conn.SendData(share.U.Add(p).Bytes()); err != nil {
		return nil, err
	}
	if err := conn.Flush(); err != nil {
		return nil, err
	}

	result := make([]field.Element, len(xs))
	for i, x := range xs {
		result[i] = H(s.Decode(share.E, x, aux, params), x)
	}
	return result, nil
}

func encode(s solver.Solver, config *env.Config, points []solver.Point,
	params solver.Params, attempts int) (field.Vector, solver.Aux, error) {

	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	p, aux, err := solver.Encode(s, config.GetRandom(), points, params,
		attempts)
	if err != nil {
		return nil, aux, fmt.Errorf("oprf: %d points, %v: %w",
			len(points), params, err)
	}
	log := config.GetLog()
	log.Trace().
		Int("points", len(points)).
		Str("solver", s.Kind().String()).
		Msg("encoded")
	return p, aux, nil
}

func receiveVector(conn ot.IO, n int) (field.Vector, error) {
	data, err := conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(data) != n*field.Size {
		return nil, fmt.Errorf("oprf: invalid vector length %d, expected %d",
			len(data), n*field.Size)
	}
	return field.VectorFromBytes(data)
}

// Precompute runs the VOLE generation for an OPRF or OPPRF instance
// with n points. The key holder and OPPRF sender use a
// vole.ReceiverRole generator and the query party a vole.SenderRole
// generator. The generator must be set up.
func Precompute(ext *vole.Ext, s solver.Solver, n int, params vole.Params) (
	*vole.Share, error) {

	m := s.Params(n).CodeLength()
	share, err := ext.Generate(m, params)
	if err != nil {
		return nil, err
	}
	if share.Len() != m {
		return nil, fmt.Errorf("oprf: VOLE returned %d correlations, expected %d",
			share.Len(), m)
	}
	return share, nil
}

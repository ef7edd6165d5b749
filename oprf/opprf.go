//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package oprf

import (
	"fmt"

	"github.com/markkurossi/mpsi/env"
	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/ot"
	"github.com/markkurossi/mpsi/solver"
	"github.com/markkurossi/mpsi/vole"
)

// Sender implements the OPPRF sender. The sender programs the
// function so that the receiver learns z for each programmed point
// (x, z) it queries. Other queries return pseudorandom values.
type Sender struct {
	conn     ot.IO
	solver   solver.Solver
	n        int
	share    *vole.Share
	config   *env.Config
	Attempts int
}

// NewSender creates a new OPPRF sender for n points from a
// precomputed VOLE receiver share.
func NewSender(conn ot.IO, s solver.Solver, n int, share *vole.Share,
	config *env.Config) *Sender {

	return &Sender{
		conn:     conn,
		solver:   s,
		n:        n,
		share:    share,
		config:   config,
		Attempts: DefaultAttempts,
	}
}

// Send programs the points. The number of points must match the
// precomputed size.
func (s *Sender) Send(points []solver.Point) error {
	if len(points) != s.n {
		return fmt.Errorf("oprf: sender has %d points, expected %d",
			len(points), s.n)
	}
	key, err := ReceiveKey(s.conn, s.solver, s.n, s.share)
	if err != nil {
		return err
	}

	programmed := make([]solver.Point, len(points))
	for i, pt := range points {
		programmed[i] = solver.Point{
			X: pt.X,
			Y: pt.Y.Sub(key.Eval(pt.X)),
		}
	}
	params := s.solver.Params(s.n)
	p, aux, err := encode(s.solver, s.config, programmed, params, s.Attempts)
	if err != nil {
		return err
	}
	if err := s.solver.SendAux(s.conn, aux); err != nil {
		return err
	}
	if err := s.conn.SendData(p.Bytes()); err != nil {
		return err
	}
	return s.conn.Flush()
}

// Receiver implements the OPPRF receiver.
type Receiver struct {
	conn     ot.IO
	solver   solver.Solver
	n        int
	share    *vole.Share
	config   *env.Config
	Attempts int
}

// NewReceiver creates a new OPPRF receiver for n queries from a
// precomputed VOLE sender share.
func NewReceiver(conn ot.IO, s solver.Solver, n int, share *vole.Share,
	config *env.Config) *Receiver {

	return &Receiver{
		conn:     conn,
		solver:   s,
		n:        n,
		share:    share,
		config:   config,
		Attempts: DefaultAttempts,
	}
}

// Receive evaluates the programmed function for the queries xs.
func (r *Receiver) Receive(xs []field.Element) ([]field.Element, error) {
	if len(xs) != r.n {
		return nil, fmt.Errorf("oprf: receiver has %d queries, expected %d",
			len(xs), r.n)
	}
	f, err := Query(r.conn, r.solver, xs, r.share, r.Attempts, r.config)
	if err != nil {
		return nil, err
	}

	params := r.solver.Params(r.n)
	aux, err := r.solver.ReceiveAux(r.conn)
	if err != nil {
		return nil, err
	}
	p, err := receiveVector(r.conn, params.CodeLength())
	if err != nil {
		return nil, err
	}

	result := make([]field.Element, len(xs))
	for i, x := range xs {
		result[i] = r.solver.Decode(p, x, aux, params).Add(f[i])
	}
	return result, nil
}

//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package solver

import (
	"fmt"
	"io"

	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/ot"
)

// VandermondeSolver encodes points as the coefficients of their
// interpolating polynomial. Encoding takes O(n^2) field operations.
type VandermondeSolver struct {
}

// Kind implements Solver.Kind.
func (s *VandermondeSolver) Kind() Kind {
	return Vandermonde
}

// Params implements Solver.Params.
func (s *VandermondeSolver) Params(n int) Params {
	return Params{
		L: n,
	}
}

// NewAux implements Solver.NewAux. The solver does not use seeds.
func (s *VandermondeSolver) NewAux(r io.Reader) (Aux, error) {
	return Aux{}, nil
}

// SendAux implements Solver.SendAux.
func (s *VandermondeSolver) SendAux(io ot.IO, aux Aux) error {
	return nil
}

// ReceiveAux implements Solver.ReceiveAux.
func (s *VandermondeSolver) ReceiveAux(io ot.IO) (Aux, error) {
	return Aux{}, nil
}

// Encode implements Solver.Encode.
func (s *VandermondeSolver) Encode(r io.Reader, points []Point, aux Aux,
	params Params) (field.Vector, error) {

	if len(points) > params.CodeLength() {
		return nil, fmt.Errorf("solver: too many points: %d > %d",
			len(points), params.CodeLength())
	}

	// Remove duplicate keys.
	seen := make(map[field.Element]field.Element)
	var xs, ys field.Vector
	for _, pt := range points {
		y, ok := seen[pt.X]
		if ok {
			if y != pt.Y {
				return nil, ErrEncodingFailure
			}
			continue
		}
		seen[pt.X] = pt.Y
		xs = append(xs, pt.X)
		ys = append(ys, pt.Y)
	}
	n := len(xs)

	// Newton divided differences.
	coeffs := make(field.Vector, n)
	copy(coeffs, ys)
	diffs := make(field.Vector, n)
	for j := 1; j < n; j++ {
		for i := j; i < n; i++ {
			diffs[i-j] = xs[i].Sub(xs[i-j])
		}
		inv := field.BatchInv(diffs[:n-j])
		for i := n - 1; i >= j; i-- {
			coeffs[i] = coeffs[i].Sub(coeffs[i-1]).Mul(inv[i-j])
		}
	}

	// Convert from the Newton basis to the monomial basis.
	result := make(field.Vector, params.CodeLength())
	if n > 0 {
		poly := make(field.Vector, 1, n)
		poly[0] = coeffs[n-1]
		for i := n - 2; i >= 0; i-- {
			// poly = poly*(X - xs[i]) + coeffs[i]
			poly = append(poly, field.Zero)
			for k := len(poly) - 1; k > 0; k-- {
				poly[k] = poly[k-1].Sub(poly[k].Mul(xs[i]))
			}
			poly[0] = coeffs[i].Sub(poly[0].Mul(xs[i]))
		}
		copy(result, poly)
	}
	return result, nil
}

// Decode implements Solver.Decode.
func (s *VandermondeSolver) Decode(p field.Vector, x field.Element,
	aux Aux, params Params) field.Element {

	var y field.Element
	for i := len(p) - 1; i >= 0; i-- {
		y = y.Mul(x).Add(p[i])
	}
	return y
}

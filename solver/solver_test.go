//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package solver

import (
	"crypto/rand"
	"errors"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/p2p"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPoints(t *testing.T, n int) []Point {
	points := make([]Point, n)
	for i := range points {
		x, err := field.Random(rand.Reader)
		require.NoError(t, err)
		y, err := field.Random(rand.Reader)
		require.NoError(t, err)
		points[i] = Point{
			X: x,
			Y: y,
		}
	}
	return points
}

func testRoundTrip(t *testing.T, kind Kind, n int) {
	s, err := New(kind)
	require.NoError(t, err)
	require.Equal(t, kind, s.Kind())

	points := randomPoints(t, n)
	params := s.Params(n)

	p, aux, err := Encode(s, rand.Reader, points, params, 2)
	require.NoError(t, err)
	require.Len(t, p, params.CodeLength())

	for i, pt := range points {
		assert.Equal(t, pt.Y, s.Decode(p, pt.X, aux, params),
			"point %d/%d", i, n)
	}
}

func TestPaxosRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 100, 1000, 10000} {
		testRoundTrip(t, Paxos, n)
	}
}

func TestVandermondeRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3, 10, 100} {
		testRoundTrip(t, Vandermonde, n)
	}
}

func TestParams(t *testing.T) {
	s := &PaxosSolver{}

	params := s.Params(1000)
	assert.Equal(t, 2010, params.L)
	assert.Equal(t, 50, params.R)
	assert.Equal(t, 2060, params.CodeLength())

	params = s.Params(1024)
	assert.Equal(t, 50, params.R)
	params = s.Params(1025)
	assert.Equal(t, 51, params.R)

	v := &VandermondeSolver{}
	assert.Equal(t, 17, v.Params(17).CodeLength())
}

func TestOutOfSet(t *testing.T) {
	const n = 200
	const probes = 64

	for _, kind := range []Kind{Paxos, Vandermonde} {
		s, err := New(kind)
		require.NoError(t, err)

		points := randomPoints(t, n)
		params := s.Params(n)
		p, aux, err := Encode(s, rand.Reader, points, params, 2)
		require.NoError(t, err)

		seen := make(map[field.Element]bool)
		for _, pt := range points {
			seen[pt.Y] = true
		}

		// Keys outside the set decode to fresh values that do not
		// hit any of the programmed values.
		for _, pt := range randomPoints(t, probes) {
			y := s.Decode(p, pt.X, aux, params)
			assert.False(t, y.IsZero(), "%v", kind)
			assert.False(t, seen[y], "%v", kind)
			seen[y] = true
		}
		assert.Len(t, seen, n+probes, "%v", kind)
	}
}

func TestPaxosFailureRate(t *testing.T) {
	const n = 100
	const rounds = 100

	s := &PaxosSolver{}
	params := s.Params(n)

	var failures int
	for i := 0; i < rounds; i++ {
		points := randomPoints(t, n)
		aux, err := s.NewAux(rand.Reader)
		require.NoError(t, err)
		_, err = s.Encode(rand.Reader, points, aux, params)
		if err != nil {
			require.True(t, errors.Is(err, ErrEncodingFailure))
			failures++
		}
	}
	assert.LessOrEqual(t, failures, 1)
}

func TestPaxosOverloaded(t *testing.T) {
	s := &PaxosSolver{}

	// Far too many points for the code: the graph has more cycles
	// than |R| can absorb.
	points := randomPoints(t, 200)
	params := s.Params(10)
	aux, err := s.NewAux(rand.Reader)
	require.NoError(t, err)

	_, err = s.Encode(rand.Reader, points, aux, params)
	assert.True(t, errors.Is(err, ErrEncodingFailure))

	_, _, err = Encode(s, rand.Reader, points, params, 3)
	assert.True(t, errors.Is(err, ErrEncodingFailure))
}

func TestDuplicateKeys(t *testing.T) {
	points := randomPoints(t, 10)

	// Duplicates with identical values encode.
	dup := append(points, points[3])
	for _, kind := range []Kind{Paxos, Vandermonde} {
		s, err := New(kind)
		require.NoError(t, err)
		params := s.Params(len(dup))
		p, aux, err := Encode(s, rand.Reader, dup, params, 2)
		require.NoError(t, err, "%v", kind)
		for _, pt := range points {
			assert.Equal(t, pt.Y, s.Decode(p, pt.X, aux, params))
		}
	}

	// Duplicates with conflicting values fail.
	conflict := append(points, Point{
		X: points[3].X,
		Y: points[3].Y.Add(field.One),
	})
	for _, kind := range []Kind{Paxos, Vandermonde} {
		s, err := New(kind)
		require.NoError(t, err)
		params := s.Params(len(conflict))
		_, _, err = Encode(s, rand.Reader, conflict, params, 2)
		assert.True(t, errors.Is(err, ErrEncodingFailure), "%v", kind)
	}
}

func TestGaussSolve(t *testing.T) {
	const n = 8

	row := func(v field.Element, bits ...uint) constraint {
		b := bitset.New(n)
		for _, bit := range bits {
			b.Set(bit)
		}
		return constraint{
			Bits:  b,
			Value: v,
		}
	}
	eqs := []constraint{
		row(field.New(1), 0, 1),
		row(field.New(2), 1, 2),
		row(field.New(3), 0, 2),
		row(field.New(4), 5),
	}
	check := make([]constraint, len(eqs))
	for i, eq := range eqs {
		check[i] = constraint{
			Bits:  eq.Bits.Clone(),
			Value: eq.Value,
		}
	}
	r, err := gaussSolve(rand.Reader, eqs, n)
	require.NoError(t, err)
	for _, eq := range check {
		assert.Equal(t, eq.Value, innerProduct(eq.Bits, r))
	}

	// x0+x1=1, x1+x2=2, x0+x2=4 is inconsistent.
	_, err = gaussSolve(rand.Reader, []constraint{
		row(field.New(1), 0, 1),
		row(field.New(2), 1, 2),
		row(field.New(4), 0, 2),
	}, n)
	assert.True(t, errors.Is(err, ErrEncodingFailure))
}

func TestAuxTransfer(t *testing.T) {
	c0, c1 := p2p.Pipe()
	defer c0.Close()
	defer c1.Close()

	s := &PaxosSolver{}
	aux, err := s.NewAux(rand.Reader)
	require.NoError(t, err)

	require.NoError(t, s.SendAux(c0, aux))
	require.NoError(t, c0.Flush())

	got, err := s.ReceiveAux(c1)
	require.NoError(t, err)
	assert.Equal(t, aux, got)
}

func TestParse(t *testing.T) {
	for name, kind := range map[string]Kind{
		"paxos":       Paxos,
		"PaXoS":       Paxos,
		"vandelmonde": Vandermonde,
		"vandermonde": Vandermonde,
	} {
		k, err := Parse(name)
		require.NoError(t, err)
		assert.Equal(t, kind, k)
	}
	_, err := Parse("okvs")
	assert.Error(t, err)

	assert.Equal(t, "paxos", Paxos.String())
	assert.Equal(t, "vandelmonde", Vandermonde.String())
}

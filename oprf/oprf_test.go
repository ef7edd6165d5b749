//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package oprf

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/markkurossi/mpsi/env"
	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/p2p"
	"github.com/markkurossi/mpsi/solver"
	"github.com/markkurossi/mpsi/vole"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	config = &env.Config{
		Rand: rand.Reader,
	}
	voleParams = []vole.Params{
		{
			Construction: vole.OT,
		},
		{
			Construction: vole.LPN,
			Setup: &vole.LPNParams{
				Rows:   64,
				Weight: 8,
				Log:    4,
				D:      10,
			},
			Extend: &vole.LPNParams{
				Rows:   100,
				Weight: 12,
				Log:    5,
				D:      10,
			},
		},
	}
)

func randomSet(t *testing.T, n int) []field.Element {
	v, err := field.RandomVector(rand.Reader, n)
	require.NoError(t, err)
	return v
}

// precompute runs the VOLE generation for both sides of a link.
func precompute(t *testing.T, s solver.Solver, n int, params vole.Params) (
	*p2p.Conn, *p2p.Conn, *vole.Share, *vole.Share) {

	c0, c1 := p2p.Pipe()

	var sender *vole.Share
	var err0 error
	done := make(chan bool)

	go func() {
		ext := vole.NewExt(c0, vole.SenderRole, config)
		err0 = ext.Setup()
		if err0 == nil {
			sender, err0 = Precompute(ext, s, n, params)
		}
		if err0 != nil {
			c0.Close()
		}
		done <- true
	}()
	ext := vole.NewExt(c1, vole.ReceiverRole, config)
	err1 := ext.Setup()
	var receiver *vole.Share
	if err1 == nil {
		receiver, err1 = Precompute(ext, s, n, params)
	}
	if err1 != nil {
		c1.Close()
	}
	<-done
	require.NoError(t, err0)
	require.NoError(t, err1)
	require.NoError(t, vole.Verify(sender, receiver))

	return c0, c1, sender, receiver
}

func TestOPRF(t *testing.T) {
	const n = 20

	for _, kind := range []solver.Kind{solver.Paxos, solver.Vandermonde} {
		s, err := solver.New(kind)
		require.NoError(t, err)

		c0, c1, sShare, rShare := precompute(t, s, n, voleParams[0])
		xs := randomSet(t, n)

		var result []field.Element
		var qerr error
		done := make(chan bool)
		go func() {
			result, qerr = Query(c0, s, xs, sShare, 0, config)
			done <- true
		}()
		key, err := ReceiveKey(c1, s, n, rShare)
		require.NoError(t, err)
		<-done
		require.NoError(t, qerr)

		for i, x := range xs {
			assert.Equal(t, key.Eval(x), result[i], "%v: x[%d]", kind, i)
		}
		for _, x := range randomSet(t, 10) {
			v := key.Eval(x)
			for _, r := range result {
				assert.NotEqual(t, r, v)
			}
		}
		c0.Close()
		c1.Close()
	}
}

func testOPPRF(t *testing.T, kind solver.Kind, params vole.Params) {
	const n = 32
	const common = 12

	s, err := solver.New(kind)
	require.NoError(t, err)

	c0, c1, sShare, rShare := precompute(t, s, n, params)
	defer c0.Close()
	defer c1.Close()

	xs := randomSet(t, n)
	zs := randomSet(t, n)
	queries := append(append([]field.Element{}, xs[:common]...),
		randomSet(t, n-common)...)

	points := make([]solver.Point, n)
	for i := range xs {
		points[i] = solver.Point{
			X: xs[i],
			Y: zs[i],
		}
	}

	sender := NewSender(c1, s, n, rShare, config)
	receiver := NewReceiver(c0, s, n, sShare, config)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sender.Send(points)
	}()
	result, err := receiver.Receive(queries)
	require.NoError(t, err)
	require.NoError(t, <-errCh)

	for i := range queries {
		if i < common {
			assert.Equal(t, zs[i], result[i], "query %d", i)
		} else {
			for _, z := range zs {
				assert.NotEqual(t, z, result[i], "query %d", i)
			}
		}
	}
}

func TestOPPRF(t *testing.T) {
	for _, kind := range []solver.Kind{solver.Paxos, solver.Vandermonde} {
		for _, params := range voleParams {
			t.Run(fmt.Sprintf("%v-%v", kind, params.Construction),
				func(t *testing.T) {
					testOPPRF(t, kind, params)
				})
		}
	}
}

func TestOPPRFSizeMismatch(t *testing.T) {
	s := &solver.PaxosSolver{}
	c0, c1, sShare, rShare := precompute(t, s, 8, voleParams[0])
	defer c0.Close()
	defer c1.Close()

	sender := NewSender(c1, s, 8, rShare, config)
	assert.Error(t, sender.Send(make([]solver.Point, 7)))

	receiver := NewReceiver(c0, s, 8, sShare, config)
	_, err := receiver.Receive(randomSet(t, 9))
	assert.Error(t, err)

	// Share roles are checked.
	_, err = Query(c0, s, randomSet(t, 8), rShare, 0, config)
	assert.Error(t, err)
	_, err = ReceiveKey(c1, s, 8, sShare)
	assert.Error(t, err)
}

func TestInvalidVector(t *testing.T) {
	s := &solver.PaxosSolver{}
	c0, c1, _, rShare := precompute(t, s, 8, voleParams[0])
	defer c0.Close()
	defer c1.Close()

	aux, err := s.NewAux(rand.Reader)
	require.NoError(t, err)
	require.NoError(t, s.SendAux(c0, aux))
	require.NoError(t, c0.SendData(make([]byte, 3*field.Size)))
	require.NoError(t, c0.Flush())

	_, err = ReceiveKey(c1, s, 8, rShare)
	assert.Error(t, err)
	assert.False(t, p2p.IsTransportError(err))
}

func TestHash(t *testing.T) {
	x := field.New(42)
	assert.Equal(t, HF(x), HF(x))
	assert.NotEqual(t, HF(x), H(field.Zero, x))
	assert.NotEqual(t, H(field.One, x), H(field.Zero, x))
	assert.NotEqual(t, HF(x), HF(field.New(43)))
}

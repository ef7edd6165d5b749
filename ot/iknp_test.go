//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIKNPExpand(t *testing.T) {
	expandN(t, 129)
}

func TestIKNPChunkSizes(t *testing.T) {
	values := []int{
		1, chunkRows - 1, chunkRows, chunkRows + 1, 2*chunkRows + 7,
	}
	for _, n := range values {
		expandN(t, n)
	}
}

func expandN(t *testing.T, n int) {
	c0, c1 := NewPipe()
	oti0 := NewCO(rand.Reader)
	oti1 := NewCO(rand.Reader)

	errCh := make(chan error, 1)

	b := randomBools(n)
	rcvd := make([]Block, n)

	go func() {
		err := oti1.InitSender(c1)
		if err != nil {
			errCh <- err
			return
		}
		iknp, err := NewIKNPReceiver(oti1, c1, rand.Reader)
		if err != nil {
			errCh <- err
			return
		}
		errCh <- iknp.Receive(b, rcvd)
	}()

	require.NoError(t, oti0.InitReceiver(c0))
	sender, err := NewIKNPSender(oti0, c0, rand.Reader, nil)
	require.NoError(t, err)
	sent, err := sender.Send(n)
	require.NoError(t, err)
	require.NoError(t, <-errCh)

	for i := 0; i < n; i++ {
		expected := sent[i]
		if b[i] {
			expected.Xor(sender.Delta)
		}
		require.Equalf(t, expected, rcvd[i], "block %d", i)
	}
}

//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestParseKind(t *testing.T) {
	for _, kind := range []Kind{Unix, TCP, CrossBeam} {
		k, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, k)
	}
	k, err := ParseKind("crossbeam")
	require.NoError(t, err)
	assert.Equal(t, CrossBeam, k)

	_, err = ParseKind("udp")
	assert.Error(t, err)
}

func testMesh(t *testing.T, kind Kind, port int) {
	const n = 4

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mesh, err := NewMesh(ctx, kind, n, port, zerolog.Nop())
	require.NoError(t, err)
	defer mesh.Close()

	require.Equal(t, n, mesh.N())

	// Every party sends its id to all peers and expects to receive
	// the peer ids back.
	var g errgroup.Group
	for i := 0; i < n; i++ {
		party := i
		g.Go(func() error {
			chs := mesh.Channels(party)
			for peer, ch := range chs {
				if peer == party {
					if ch != nil {
						return fmt.Errorf("party %d: self link", party)
					}
					continue
				}
				if err := ch.SendUint32(party); err != nil {
					return err
				}
				if err := ch.Flush(); err != nil {
					return err
				}
			}
			for peer, ch := range chs {
				if peer == party {
					continue
				}
				id, err := ch.ReceiveUint32()
				if err != nil {
					return err
				}
				if id != peer {
					return fmt.Errorf("party %d: got %d from peer %d",
						party, id, peer)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestMeshCrossBeam(t *testing.T) {
	testMesh(t, CrossBeam, 0)
}

func TestMeshUnix(t *testing.T) {
	testMesh(t, Unix, 0)
}

func TestMeshTCP(t *testing.T) {
	testMesh(t, TCP, 23100)
}

func TestMeshInvalid(t *testing.T) {
	_, err := NewMesh(context.Background(), CrossBeam, 1, 0, zerolog.Nop())
	assert.Error(t, err)
}

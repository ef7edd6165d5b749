//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Kind specifies the channel transport.
type Kind int

// Channel kinds.
const (
	Unix Kind = iota
	TCP
	CrossBeam
)

var kinds = map[Kind]string{
	Unix:      "unix",
	TCP:       "tcp",
	CrossBeam: "cross-beam",
}

func (k Kind) String() string {
	name, ok := kinds[k]
	if ok {
		return name
	}
	return fmt.Sprintf("{Kind %d}", k)
}

// ParseKind parses the channel kind name.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "unix":
		return Unix, nil
	case "tcp":
		return TCP, nil
	case "cross-beam", "crossbeam", "cross_beam":
		return CrossBeam, nil
	default:
		return 0, fmt.Errorf("p2p: unknown channel kind '%s'", name)
	}
}

// Mesh implements a fully connected set of channels between n local
// parties.
type Mesh struct {
	Kind  Kind
	links [][]Channel
}

// NewMesh creates channels between all pairs of n parties. For TCP
// meshes, the party i listens at 127.0.0.1:port+i.
func NewMesh(ctx context.Context, kind Kind, n, port int,
	log zerolog.Logger) (*Mesh, error) {

	if n < 2 {
		return nil, fmt.Errorf("p2p: invalid number of parties: %d", n)
	}
	mesh := &Mesh{
		Kind:  kind,
		links: make([][]Channel, n),
	}
	for i := 0; i < n; i++ {
		mesh.links[i] = make([]Channel, n)
	}

	switch kind {
	case CrossBeam:
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				a, b := NewCrossBeam()
				mesh.links[i][j] = a
				mesh.links[j][i] = b
			}
		}

	case Unix:
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				a, b, err := NewUnixPair()
				if err != nil {
					mesh.Close()
					return nil, err
				}
				mesh.links[i][j] = a
				mesh.links[j][i] = b
			}
		}

	case TCP:
		if err := mesh.connectTCP(ctx, n, port, log); err != nil {
			mesh.Close()
			return nil, err
		}

	default:
		return nil, fmt.Errorf("p2p: unsupported channel kind %v", kind)
	}

	return mesh, nil
}

func (mesh *Mesh) connectTCP(ctx context.Context, n, port int,
	log zerolog.Logger) error {

	networks := make([]*Network, n)
	defer func() {
		for _, nw := range networks {
			if nw != nil {
				nw.Close()
			}
		}
	}()

	addr := func(id int) string {
		return fmt.Sprintf("127.0.0.1:%d", port+id)
	}
	for i := 0; i < n; i++ {
		nw, err := NewNetwork(addr(i), i, log)
		if err != nil {
			return err
		}
		networks[i] = nw
	}

	// Each party dials the lower ids and accepts the higher ids.
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			nw := networks[i]
			id := j
			g.Go(func() error {
				return nw.AddPeer(gctx, addr(id), id)
			})
		}
	}
	for i := 0; i < n; i++ {
		nw := networks[i]
		g.Go(func() error {
			return nw.WaitPeers(gctx, n-1)
		})
	}
	err := g.Wait()

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			peer, ok := networks[i].Peer(j)
			if ok {
				mesh.links[i][j] = peer.Conn()
			}
		}
	}
	return err
}

// N returns the number of parties in the mesh.
func (mesh *Mesh) N() int {
	return len(mesh.links)
}

// Channels returns the party's channels indexed by peer id. The
// party's own index is nil.
func (mesh *Mesh) Channels(party int) []Channel {
	return mesh.links[party]
}

// Close closes all mesh channels.
func (mesh *Mesh) Close() error {
	var first error
	for _, row := range mesh.links {
		for _, ch := range row {
			if ch == nil {
				continue
			}
			if err := ch.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

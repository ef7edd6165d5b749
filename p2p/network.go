//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DialRetryDelay defines the delay between connection attempts to a
// peer that is not yet listening.
var DialRetryDelay = 100 * time.Millisecond

// Network implements peer-to-peer network over loopback TCP.
type Network struct {
	ID       int
	m        sync.Mutex
	Peers    map[int]*Peer
	addr     string
	listener net.Listener
	log      zerolog.Logger
	added    chan int
}

// NewNetwork creates a new peer-to-peer network.
func NewNetwork(addr string, id int, log zerolog.Logger) (*Network, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &TransportError{
			Op:  "listen",
			Err: err,
		}
	}
	nw := &Network{
		ID:       id,
		Peers:    make(map[int]*Peer),
		addr:     addr,
		listener: listener,
		log:      log.With().Int("nw", id).Logger(),
		added:    make(chan int, 1024),
	}
	go nw.acceptLoop()
	return nw, nil
}

// Addr returns the network listener address.
func (nw *Network) Addr() net.Addr {
	return nw.listener.Addr()
}

// Close closes the network listener. The peer connections remain
// open.
func (nw *Network) Close() error {
	return nw.listener.Close()
}

// AddPeer connects to the peer id listening at addr. The function
// retries until the connection succeeds or the context is done.
func (nw *Network) AddPeer(ctx context.Context, addr string, id int) error {
	var d net.Dialer
	for {
		// Check if we have already accepted peer `id`.
		nw.m.Lock()
		_, ok := nw.Peers[id]
		nw.m.Unlock()
		if ok {
			return nil
		}

		nw.log.Debug().Msgf("connecting to peer %d...", id)
		nc, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			nw.log.Debug().Err(err).Msgf("connect to %s failed, retrying in %s",
				addr, DialRetryDelay)
			select {
			case <-ctx.Done():
				return &TransportError{
					Op:  "dial",
					Err: ctx.Err(),
				}
			case <-time.After(DialRetryDelay):
			}
			continue
		}
		nw.log.Debug().Msgf("connected to %s", addr)
		conn := NewConn(nc)

		if err := conn.SendUint32(nw.ID); err != nil {
			conn.Close()
			return err
		}
		if err := conn.Flush(); err != nil {
			conn.Close()
			return err
		}
		if err := nw.newPeer(true, conn, id); err != nil {
			nw.log.Warn().Err(err).Msgf("failed to add peer %d", id)
		}
	}
}

// WaitPeers waits until the network has count peers.
func (nw *Network) WaitPeers(ctx context.Context, count int) error {
	for {
		nw.m.Lock()
		n := len(nw.Peers)
		nw.m.Unlock()
		if n >= count {
			return nil
		}
		select {
		case <-nw.added:
		case <-ctx.Done():
			return &TransportError{
				Op:  "accept",
				Err: ctx.Err(),
			}
		}
	}
}

// Peer returns the peer id.
func (nw *Network) Peer(id int) (*Peer, bool) {
	nw.m.Lock()
	defer nw.m.Unlock()
	peer, ok := nw.Peers[id]
	return peer, ok
}

// Stats returns the I/O stats from the network.
func (nw *Network) Stats() IOStats {
	nw.m.Lock()
	defer nw.m.Unlock()

	result := NewIOStats()
	for _, peer := range nw.Peers {
		result = result.Add(peer.conn.Stats())
	}
	return result
}

func (nw *Network) acceptLoop() {
	for {
		nc, err := nw.listener.Accept()
		if err != nil {
			nw.log.Debug().Err(err).Msg("accept loop done")
			return
		}
		conn := NewConn(nc)

		// Read peer ID.
		id, err := conn.ReceiveUint32()
		if err != nil {
			nw.log.Warn().Err(err).Msg("I/O error")
			conn.Close()
			continue
		}

		err = nw.newPeer(false, conn, id)
		if err != nil {
			nw.log.Warn().Err(err).Msg("inbound connection error")
		}
	}
}

func (nw *Network) newPeer(client bool, conn *Conn, id int) error {
	nw.m.Lock()
	_, ok := nw.Peers[id]
	if ok {
		nw.m.Unlock()
		conn.Close()
		return fmt.Errorf("p2p: peer %d already connected", id)
	}
	nw.Peers[id] = &Peer{
		id:     id,
		conn:   conn,
		client: client,
	}
	nw.m.Unlock()

	nw.log.Debug().Bool("client", client).Msgf("peer %d connected", id)

	select {
	case nw.added <- id:
	default:
	}
	return nil
}

// Peer implements a peer in the peer-to-peer network.
type Peer struct {
	id     int
	conn   *Conn
	client bool
}

// ID returns the peer ID.
func (peer *Peer) ID() int {
	return peer.id
}

// Conn returns the peer connection.
func (peer *Peer) Conn() *Conn {
	return peer.conn
}

// Close closes the peer connection.
func (peer *Peer) Close() error {
	return peer.conn.Close()
}

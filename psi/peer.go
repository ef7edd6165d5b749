//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package psi

import (
	"github.com/markkurossi/mpsi/env"
	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/oprf"
	"github.com/markkurossi/mpsi/p2p"
	"github.com/markkurossi/mpsi/solver"
	"github.com/markkurossi/mpsi/vole"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Peer holds the party's state for one peer link. The state is
// accessed only by the link's unit and, after the phase barrier, by
// the party.
type Peer struct {
	party *Party
	id    int
	conn  p2p.Channel
	env   *env.Config
	log   zerolog.Logger

	// sendExt is the Δ-holder generator for the party's OPPRF sender
	// instances and recvExt the generator for its receiver instances.
	sendExt *vole.Ext
	recvExt *vole.Ext

	sendShare  *vole.Share
	recvShare  *vole.Share
	reconShare *vole.Share

	// values hold the OPPRF outputs for the party's set from the
	// peer's zero-sharing and recon the leader's OPPRF outputs from
	// the peer's reconstruction.
	values field.Vector
	recon  field.Vector
}

func newPeer(p *Party, id int, conn p2p.Channel) *Peer {
	log := p.log.With().Int("peer", id).Logger()
	cfg := &env.Config{
		Rand: p.env.Rand,
		Log:  log,
	}
	return &Peer{
		party:   p,
		id:      id,
		conn:    conn,
		env:     cfg,
		log:     log,
		sendExt: vole.NewExt(conn, vole.ReceiverRole, cfg),
		recvExt: vole.NewExt(conn, vole.SenderRole, cfg),
	}
}

// lower tests if the party has the lower rank of the link. The lower
// rank acts first in every phase.
func (peer *Peer) lower() bool {
	return peer.party.id < peer.id
}

func (peer *Peer) solver() solver.Solver {
	return peer.party.solver
}

func (peer *Peer) setSize() int {
	return peer.party.cfg.SetSize
}

// ordered runs first and second in the link order: the lower rank
// runs first before second and the higher rank second before first.
func (peer *Peer) ordered(first, second func() error) error {
	if !peer.lower() {
		first, second = second, first
	}
	if err := first(); err != nil {
		return err
	}
	return second()
}

func (peer *Peer) handshake() error {
	local := newHello(peer.party.id, peer.party.cfg)
	var remote *hello

	err := peer.ordered(
		func() error {
			return sendHello(peer.conn, local)
		},
		func() error {
			var err error
			remote, err = receiveHello(peer.conn)
			return err
		})
	if err != nil {
		return err
	}
	return local.check(peer.id, remote)
}

func (peer *Peer) preprocess() error {
	params := peer.party.cfg.Vole

	sender := func() error {
		if err := peer.sendExt.Setup(); err != nil {
			return errors.Wrap(err, "OPPRF sender setup")
		}
		share, err := oprf.Precompute(peer.sendExt, peer.solver(),
			peer.setSize(), params)
		if err != nil {
			return errors.Wrap(err, "OPPRF sender")
		}
		peer.sendShare = share
		return nil
	}
	receiver := func() error {
		if err := peer.recvExt.Setup(); err != nil {
			return errors.Wrap(err, "OPPRF receiver setup")
		}
		share, err := oprf.Precompute(peer.recvExt, peer.solver(),
			peer.setSize(), params)
		if err != nil {
			return errors.Wrap(err, "OPPRF receiver")
		}
		peer.recvShare = share
		return nil
	}
	if err := peer.ordered(sender, receiver); err != nil {
		return err
	}

	// The non-leader is the OPPRF sender of the reconstruction.
	var err error
	if peer.party.IsLeader() {
		peer.reconShare, err = oprf.Precompute(peer.recvExt, peer.solver(),
			peer.setSize(), params)
	} else if peer.id == Leader {
		peer.reconShare, err = oprf.Precompute(peer.sendExt, peer.solver(),
			peer.setSize(), params)
	}
	if err != nil {
		return errors.Wrap(err, "reconstruction")
	}
	peer.log.Debug().
		Int("send", peer.sendShare.Len()).
		Int("recv", peer.recvShare.Len()).
		Msg("preprocessed")
	return nil
}

// zeroShare runs the OPPRFs of the conditional zero-sharing. The
// party programs its share for the peer to its elements and queries
// the peer's programmed shares for its own elements.
func (peer *Peer) zeroShare(shares []field.Vector) error {
	set := peer.party.set

	points := make([]solver.Point, len(set))
	for k, x := range set {
		points[k] = solver.Point{
			X: x,
			Y: shares[k][peer.id],
		}
	}
	return peer.ordered(
		func() error {
			s := oprf.NewSender(peer.conn, peer.solver(), len(set),
				peer.sendShare, peer.env)
			s.Attempts = peer.party.cfg.encodeAttempts()
			return s.Send(points)
		},
		func() error {
			r := oprf.NewReceiver(peer.conn, peer.solver(), len(set),
				peer.recvShare, peer.env)
			r.Attempts = peer.party.cfg.encodeAttempts()
			values, err := r.Receive(set)
			if err != nil {
				return err
			}
			peer.values = values
			return nil
		})
}

// reconstructSend programs the party's share sums to the leader.
func (peer *Peer) reconstructSend(sums field.Vector) error {
	set := peer.party.set

	points := make([]solver.Point, len(set))
	for k, x := range set {
		points[k] = solver.Point{
			X: x,
			Y: sums[k],
		}
	}
	s := oprf.NewSender(peer.conn, peer.solver(), len(set), peer.reconShare,
		peer.env)
	s.Attempts = peer.party.cfg.encodeAttempts()
	return s.Send(points)
}

// reconstructReceive queries the peer's share sums for the leader's
// elements.
func (peer *Peer) reconstructReceive() error {
	set := peer.party.set

	r := oprf.NewReceiver(peer.conn, peer.solver(), len(set),
		peer.reconShare, peer.env)
	r.Attempts = peer.party.cfg.encodeAttempts()
	values, err := r.Receive(set)
	if err != nil {
		return err
	}
	peer.recon = values
	return nil
}

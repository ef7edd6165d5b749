//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package psi implements multi-party private set intersection with a
// preprocessing phase. The parties first run pairwise VOLE generation
// for their OPPRF instances. In the online phase, the parties
// conditionally share zero for each set element with OPPRFs and the
// leader reconstructs the sharings. An element is in the
// intersection if its shares sum to zero.
package psi

import (
	"context"
	"sync"
	"time"

	"github.com/markkurossi/mpsi/env"
	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/p2p"
	"github.com/markkurossi/mpsi/solver"
	"github.com/markkurossi/text/superscript"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Leader is the rank of the party that reconstructs the intersection.
const Leader = 0

// Result holds the protocol result of a party.
type Result struct {
	Cardinality int
	// Elements holds the intersection with the Elements output.
	Elements []field.Element
	Timing   *Timing
	Stats    p2p.IOStats
}

// Party implements one protocol party.
type Party struct {
	id     int
	cfg    *Config
	env    *env.Config
	log    zerolog.Logger
	set    []field.Element
	peers  []*Peer
	solver solver.Solver
	timing *Timing
	abortO sync.Once
}

// NewParty creates a new party with the rank id. The channels are
// indexed by peer rank and the party's own index is ignored.
func NewParty(id int, cfg *Config, set []field.Element,
	channels []p2p.Channel) (*Party, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if id < 0 || id >= cfg.NumParties {
		return nil, configError("invalid party %d for %d parties",
			id, cfg.NumParties)
	}
	if len(set) != cfg.SetSize {
		return nil, configError("P%s: set size %d, expected %d",
			superscript.Itoa(id), len(set), cfg.SetSize)
	}
	seen := make(map[field.Element]bool, len(set))
	for _, e := range set {
		if seen[e] {
			return nil, configError("P%s: duplicate element %v",
				superscript.Itoa(id), e)
		}
		seen[e] = true
	}
	if len(channels) != cfg.NumParties {
		return nil, configError("P%s: %d channels for %d parties",
			superscript.Itoa(id), len(channels), cfg.NumParties)
	}
	s, err := solver.New(cfg.Solver)
	if err != nil {
		return nil, configError("%v", err)
	}

	log := cfg.GetLog().With().Int("party", id).Logger()
	p := &Party{
		id:  id,
		cfg: cfg,
		env: &env.Config{
			Rand: &entropyReader{r: cfg.GetRandom()},
			Log:  log,
		},
		log:    log,
		set:    set,
		peers:  make([]*Peer, cfg.NumParties),
		solver: s,
	}
	for i, ch := range channels {
		if i == id {
			continue
		}
		if ch == nil {
			return nil, configError("P%s: no channel to P%s",
				superscript.Itoa(id), superscript.Itoa(i))
		}
		p.peers[i] = newPeer(p, i, ch)
	}
	return p, nil
}

// ID returns the party rank.
func (p *Party) ID() int {
	return p.id
}

// IsLeader tests if the party is the leader.
func (p *Party) IsLeader() bool {
	return p.id == Leader
}

func (p *Party) String() string {
	return "P" + superscript.Itoa(p.id)
}

// Stats returns the I/O statistics of all the party's channels.
func (p *Party) Stats() p2p.IOStats {
	stats := p2p.NewIOStats()
	for _, peer := range p.peers {
		if peer != nil {
			stats = stats.Add(peer.conn.Stats())
		}
	}
	return stats
}

// Run runs the protocol. On failure, the party closes all its
// channels and returns an *Error. Cancelling the context aborts the
// protocol.
func (p *Party) Run(ctx context.Context) (*Result, error) {
	stop := context.AfterFunc(ctx, p.abort)
	defer stop()

	p.log.Debug().Int("peers", len(p.peers)-1).
		Bool("threads", p.cfg.Threads).
		Msg("start")

	result, err := p.run()
	if err != nil {
		p.abort()
		e := classify(err, p.id, -1)
		if ctx.Err() != nil && e.Kind == TransportError {
			e.Err = errors.Wrap(ctx.Err(), e.Err.Error())
		}
		p.log.Error().Stack().Err(e.Err).
			Str("kind", e.Kind.String()).
			Int("peer", e.Peer).
			Msg("aborted")
		return nil, e
	}
	p.log.Debug().Int("cardinality", result.Cardinality).Msg("completed")
	return result, nil
}

// abort closes all the party's channels. The units blocked on the
// channels fail with transport errors.
func (p *Party) abort() {
	p.abortO.Do(func() {
		p.log.Debug().Msg("closing channels")
		for _, peer := range p.peers {
			if peer != nil {
				peer.conn.Close()
			}
		}
	})
}

// allPeers returns the peers in ascending rank order.
func (p *Party) allPeers() []*Peer {
	var result []*Peer
	for _, peer := range p.peers {
		if peer != nil {
			result = append(result, peer)
		}
	}
	return result
}

// forEach runs the phase unit fn for the peers. With threads, the
// units run concurrently, one goroutine per peer. Otherwise they run
// sequentially in ascending peer order. The first failing unit
// aborts the party.
func (p *Party) forEach(peers []*Peer, phase string,
	fn func(peer *Peer) error) error {

	// The first failing unit holds the cause. The other units fail
	// with transport errors after the abort.
	var mu sync.Mutex
	var first error

	unit := func(peer *Peer) error {
		err := fn(peer)
		if err != nil {
			err = classify(errors.Wrapf(err, "%s", phase), p.id, peer.id)
			mu.Lock()
			if first == nil {
				first = err
			}
			mu.Unlock()
			p.abort()
		}
		return err
	}

	if !p.cfg.Threads {
		for _, peer := range peers {
			if err := unit(peer); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	for _, peer := range peers {
		g.Go(func() error {
			return unit(peer)
		})
	}
	if g.Wait() != nil {
		return first
	}
	return nil
}

func (p *Party) xfer() []string {
	return []string{FileSize(p.Stats().Sum()).String()}
}

func (p *Party) run() (*Result, error) {
	p.timing = NewTiming()
	peers := p.allPeers()

	err := p.forEach(peers, "handshake", (*Peer).handshake)
	if err != nil {
		return nil, err
	}
	p.timing.Sample("Handshake", p.xfer())

	err = p.forEach(peers, "preprocess", (*Peer).preprocess)
	if err != nil {
		return nil, err
	}
	p.timing.Sample("Preprocess", p.xfer())

	// Conditional zero-sharing.
	shares, err := ZeroShares(p.env.GetRandom(), len(p.set), p.cfg.NumParties)
	if err != nil {
		return nil, err
	}
	err = p.forEach(peers, "zero-share", func(peer *Peer) error {
		return peer.zeroShare(shares)
	})
	if err != nil {
		return nil, err
	}
	sums := make(field.Vector, len(p.set))
	for k := range sums {
		sum := shares[k][p.id]
		for _, peer := range peers {
			sum = sum.Add(peer.values[k])
		}
		sums[k] = sum
	}
	zeroShared := time.Now()

	// Conditional reconstruction at the leader.
	var result *Result
	if p.IsLeader() {
		err = p.forEach(peers, "reconstruct", (*Peer).reconstructReceive)
		if err != nil {
			return nil, err
		}
		result = p.aggregate(sums)
	} else {
		err = p.forEach(p.peers[Leader:Leader+1], "reconstruct",
			func(peer *Peer) error {
				return peer.reconstructSend(sums)
			})
		if err != nil {
			return nil, err
		}
	}
	reconstructed := time.Now()

	// Result distribution.
	if p.IsLeader() {
		err = p.forEach(peers, "result", func(peer *Peer) error {
			return sendResult(peer.conn, result)
		})
	} else {
		err = p.forEach(p.peers[Leader:Leader+1], "result",
			func(peer *Peer) error {
				r, err := receiveResult(peer.conn, p.cfg.Output)
				if err != nil {
					return err
				}
				result = r
				return nil
			})
	}
	if err != nil {
		return nil, err
	}

	sample := p.timing.Sample("Online", p.xfer())
	sample.SubSample("Zero-share", zeroShared)
	sample.SubSample("Reconstruct", reconstructed)
	sample.SubSample("Result", sample.End)

	result.Timing = p.timing
	result.Stats = p.Stats()

	return result, nil
}

// aggregate computes the intersection at the leader. The elements
// whose sharings sum to zero are in all sets.
func (p *Party) aggregate(sums field.Vector) *Result {
	result := new(Result)
	for k, x := range p.set {
		total := sums[k]
		for _, peer := range p.peers {
			if peer != nil {
				total = total.Add(peer.recon[k])
			}
		}
		if !total.IsZero() {
			continue
		}
		result.Cardinality++
		if p.cfg.Output == Elements {
			result.Elements = append(result.Elements, x)
		}
	}
	if p.cfg.Output == Elements && result.Elements == nil {
		result.Elements = []field.Element{}
	}
	p.log.Debug().Int("cardinality", result.Cardinality).Msg("aggregated")
	return result
}

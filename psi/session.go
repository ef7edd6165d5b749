//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package psi

import (
	"context"
	"sync"

	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/p2p"
	"golang.org/x/sync/errgroup"
)

// Run runs a process-local session of cfg.NumParties parties over a
// mesh of cfg.Channel links. The argument sets[i] is the set of the
// party i. The function returns the results of all parties, or the
// error that caused the session abort.
func Run(ctx context.Context, cfg *Config, sets [][]field.Element) (
	[]*Result, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(sets) != cfg.NumParties {
		return nil, configError("%d sets for %d parties",
			len(sets), cfg.NumParties)
	}
	log := cfg.GetLog()

	mesh, err := p2p.NewMesh(ctx, cfg.Channel, cfg.NumParties, cfg.Port, log)
	if err != nil {
		return nil, classify(err, -1, -1)
	}
	defer mesh.Close()

	log.Debug().Str("channel", cfg.Channel.String()).
		Int("parties", cfg.NumParties).
		Msg("mesh connected")

	parties := make([]*Party, cfg.NumParties)
	for i := range parties {
		parties[i], err = NewParty(i, cfg, sets[i], mesh.Channels(i))
		if err != nil {
			return nil, err
		}
	}

	results := make([]*Result, len(parties))
	var m sync.Mutex
	var errs []error

	g, gctx := errgroup.WithContext(ctx)
	for i, party := range parties {
		g.Go(func() error {
			result, err := party.Run(gctx)
			if err != nil {
				m.Lock()
				errs = append(errs, err)
				m.Unlock()
				return err
			}
			results[i] = result
			return nil
		})
	}
	if g.Wait() != nil {
		return nil, rootCause(errs)
	}
	return results, nil
}

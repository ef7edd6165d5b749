//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"fmt"

	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/ot"
)

// otBatch defines how many correlations are produced per OT
// extension round.
const otBatch = 512

// OT creates m VOLE correlations with the OT construction.
func (e *Ext) OT(m int) (*Share, error) {
	if e.cot == nil {
		return nil, fmt.Errorf("vole: not initialized")
	}
	e.log.Debug().Int("m", m).Msg("OT VOLE")

	if e.role == ReceiverRole {
		return e.otReceiver(m)
	}
	return e.otSender(m)
}

func (e *Ext) otReceiver(m int) (*Share, error) {
	// Δ·x^i for all bit positions i.
	var powers [field.Bits]ot.Block
	d := e.delta
	for i := 0; i < field.Bits; i++ {
		powers[i] = elementToBlock(d)
		d = d.Mul(field.X)
	}

	v := make(field.Vector, m)
	deltas := make([]ot.Block, otBatch*field.Bits)
	rho := make([]ot.Block, otBatch*field.Bits)

	for ofs := 0; ofs < m; ofs += otBatch {
		count := m - ofs
		if count > otBatch {
			count = otBatch
		}
		n := count * field.Bits
		for i := 0; i < n; i++ {
			deltas[i] = powers[i%field.Bits]
		}
		if err := e.cot.SendCorrelated(deltas[:n], rho[:n]); err != nil {
			return nil, err
		}
		for k := 0; k < count; k++ {
			var sum field.Element
			for i := 0; i < field.Bits; i++ {
				sum = sum.Add(blockToElement(rho[k*field.Bits+i]))
			}
			v[ofs+k] = sum
		}
	}

	return &Share{
		Role:  ReceiverRole,
		Delta: e.delta,
		V:     v,
	}, nil
}

func (e *Ext) otSender(m int) (*Share, error) {
	u, err := field.RandomVector(e.rand, m)
	if err != nil {
		return nil, err
	}
	vE := make(field.Vector, m)
	flags := make([]bool, otBatch*field.Bits)
	result := make([]ot.Block, otBatch*field.Bits)

	for ofs := 0; ofs < m; ofs += otBatch {
		count := m - ofs
		if count > otBatch {
			count = otBatch
		}
		n := count * field.Bits
		for k := 0; k < count; k++ {
			for i := 0; i < field.Bits; i++ {
				flags[k*field.Bits+i] = u[ofs+k].Bit(i) == 1
			}
		}
		if err := e.cot.ReceiveCorrelated(flags[:n], result[:n]); err != nil {
			return nil, err
		}
		for k := 0; k < count; k++ {
			var sum field.Element
			for i := 0; i < field.Bits; i++ {
				sum = sum.Add(blockToElement(result[k*field.Bits+i]))
			}
			vE[ofs+k] = sum
		}
	}

	return &Share{
		Role: SenderRole,
		U:    u,
		E:    vE,
	}, nil
}

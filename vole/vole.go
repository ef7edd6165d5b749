//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"fmt"
	"io"
	"strings"

	"github.com/markkurossi/mpsi/env"
	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/ot"
	"github.com/rs/zerolog"
)

// Role specifies the party's role in VOLE.
type Role int

// Role constants. The SenderRole holds U and E; the ReceiverRole
// holds Δ and V.
const (
	SenderRole Role = iota
	ReceiverRole
)

func (r Role) String() string {
	switch r {
	case SenderRole:
		return "sender"
	case ReceiverRole:
		return "receiver"
	default:
		return fmt.Sprintf("{Role %d}", int(r))
	}
}

// Construction specifies the VOLE construction.
type Construction int

// VOLE constructions.
const (
	LPN Construction = iota
	OT
)

func (c Construction) String() string {
	switch c {
	case LPN:
		return "lpn"
	case OT:
		return "ot"
	default:
		return fmt.Sprintf("{Construction %d}", int(c))
	}
}

// ParseConstruction parses the VOLE construction name.
func ParseConstruction(name string) (Construction, error) {
	switch strings.ToLower(name) {
	case "lpn":
		return LPN, nil
	case "ot":
		return OT, nil
	default:
		return 0, fmt.Errorf("vole: unknown construction '%s'", name)
	}
}

// Params define the VOLE generation parameters.
type Params struct {
	Construction Construction

	// Setup and Extend override the LPN parameter presets. If unset,
	// the presets are selected by the VOLE size.
	Setup  *LPNParams
	Extend *LPNParams
}

// Ext implements the VOLE generator for one party of a pair. The
// same Ext can generate multiple VOLE batches with the same Δ.
type Ext struct {
	io    ot.IO
	role  Role
	rand  io.Reader
	log   zerolog.Logger
	cot   *ot.COT
	delta field.Element
}

// NewExt creates a new VOLE generator for the role.
func NewExt(conn ot.IO, role Role, config *env.Config) *Ext {
	return &Ext{
		io:   conn,
		role: role,
		rand: config.GetRandom(),
		log:  config.GetLog().With().Str("vole", role.String()).Logger(),
	}
}

// Setup runs the base OTs and initializes the OT extension. The
// receiver samples its global key Δ.
func (e *Ext) Setup() error {
	if e.cot != nil {
		return fmt.Errorf("vole: already initialized")
	}
	e.cot = ot.NewCOT(ot.NewCO(e.rand), e.rand)

	switch e.role {
	case ReceiverRole:
		delta, err := field.Random(e.rand)
		if err != nil {
			return err
		}
		e.delta = delta
		if err := e.cot.InitSender(e.io); err != nil {
			return fmt.Errorf("vole: InitSender: %w", err)
		}

	case SenderRole:
		if err := e.cot.InitReceiver(e.io); err != nil {
			return fmt.Errorf("vole: InitReceiver: %w", err)
		}

	default:
		return fmt.Errorf("vole: invalid role %v", e.role)
	}
	e.log.Debug().Msg("setup done")
	return nil
}

// Role returns the generator role.
func (e *Ext) Role() Role {
	return e.role
}

// Delta returns the receiver's global key Δ.
func (e *Ext) Delta() field.Element {
	return e.delta
}

// Generate creates m VOLE correlations with the construction and
// parameters.
func (e *Ext) Generate(m int, params Params) (*Share, error) {
	if e.cot == nil {
		return nil, fmt.Errorf("vole: not initialized")
	}
	if m < 0 {
		return nil, fmt.Errorf("vole: invalid size %d", m)
	}
	switch params.Construction {
	case OT:
		return e.OT(m)

	case LPN:
		setup, extend := Presets(m)
		if params.Setup != nil {
			setup = *params.Setup
		}
		if params.Extend != nil {
			extend = *params.Extend
		}
		return e.LPN(m, setup, extend)

	default:
		return nil, fmt.Errorf("vole: invalid construction %v",
			params.Construction)
	}
}

// Generate runs the setup and generates m VOLE correlations over the
// connection.
func Generate(conn ot.IO, role Role, m int, params Params,
	config *env.Config) (*Share, error) {

	ext := NewExt(conn, role, config)
	if err := ext.Setup(); err != nil {
		return nil, err
	}
	return ext.Generate(m, params)
}

func blockToElement(b ot.Block) field.Element {
	return field.Element{
		D0: b.D0,
		D1: b.D1,
	}
}

func elementToBlock(e field.Element) ot.Block {
	return ot.Block{
		D0: e.D0,
		D1: e.D1,
	}
}

//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"fmt"
)

// LPNParams define the primal LPN parameters of one extension round.
type LPNParams struct {
	// Rows is the LPN secret length K.
	Rows int
	// Weight is the number of noise positions T.
	Weight int
	// Log is the base-2 logarithm of the noise block size.
	Log int
	// D is the number of non-zero entries in each matrix column.
	D int
}

// LPN parameter presets.
var (
	SetupSmall = LPNParams{
		Rows:   19870,
		Weight: 2508,
		Log:    8,
		D:      10,
	}
	ExtendSmall = LPNParams{
		Rows:   589760,
		Weight: 1319,
		Log:    13,
		D:      10,
	}
	SetupMedium = LPNParams{
		Rows:   36248,
		Weight: 1254,
		Log:    10,
		D:      10,
	}
	ExtendMedium = LPNParams{
		Rows:   1168896,
		Weight: 2485,
		Log:    12,
		D:      10,
	}
)

// SmallLimit defines the VOLE size below which the small presets are
// used.
const SmallLimit = 1 << 17

// Presets returns the setup and extend parameters for m correlations.
func Presets(m int) (setup, extend LPNParams) {
	if m < SmallLimit {
		return SetupSmall, ExtendSmall
	}
	return SetupMedium, ExtendMedium
}

// Cols returns the number of correlations one round produces.
func (p LPNParams) Cols() int {
	return p.Weight << p.Log
}

// Base returns the number of base correlations one round consumes.
func (p LPNParams) Base() int {
	return p.Rows + p.Weight
}

// Validate checks the parameters.
func (p LPNParams) Validate() error {
	if p.Rows <= 0 || p.Weight <= 0 || p.D <= 0 {
		return fmt.Errorf("vole: invalid LPN parameters %v", p)
	}
	if p.Log <= 0 || p.Log > 24 {
		return fmt.Errorf("vole: invalid LPN block size 2^%d", p.Log)
	}
	return nil
}

// ValidateExtend checks that the parameters can be used for the
// repeated extension rounds: one round must produce more
// correlations than it consumes.
func (p LPNParams) ValidateExtend() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Cols() <= p.Base() {
		return fmt.Errorf("vole: LPN extension does not expand: %d <= %d",
			p.Cols(), p.Base())
	}
	return nil
}

func (p LPNParams) String() string {
	return fmt.Sprintf("k=%d,t=%d,log=%d,d=%d", p.Rows, p.Weight, p.Log, p.D)
}

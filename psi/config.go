//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package psi

import (
	"fmt"

	"github.com/markkurossi/mpsi/env"
	"github.com/markkurossi/mpsi/oprf"
	"github.com/markkurossi/mpsi/p2p"
	"github.com/markkurossi/mpsi/solver"
	"github.com/markkurossi/mpsi/vole"
)

// Output specifies what the parties learn about the intersection.
type Output int

// Output variants.
const (
	Cardinality Output = iota
	Elements
)

func (o Output) String() string {
	switch o {
	case Cardinality:
		return "cardinality"
	case Elements:
		return "elements"
	default:
		return fmt.Sprintf("{Output %d}", o)
	}
}

// Default configuration values.
const (
	DefaultNumParties = 3
	DefaultSetSize    = 10
	DefaultPort       = 10000
)

// Config defines the protocol configuration. All parties of a session
// must use the same values for the protocol parameters; the
// handshake verifies this before any cryptographic work.
type Config struct {
	env.Config

	NumParties int
	SetSize    int
	Vole       vole.Params
	Solver     solver.Kind
	Output     Output

	// Channel and Port select the transport of process-local
	// sessions.
	Channel p2p.Kind
	Port    int

	// Threads runs the per-peer units of each phase concurrently.
	Threads bool

	// EncodeAttempts limits the encoding attempts with fresh seeds.
	// The zero value uses oprf.DefaultAttempts.
	EncodeAttempts int
}

// NewConfig creates a configuration with the default values.
func NewConfig() *Config {
	return &Config{
		NumParties: DefaultNumParties,
		SetSize:    DefaultSetSize,
		Vole: vole.Params{
			Construction: vole.LPN,
		},
		Solver:         solver.Paxos,
		Channel:        p2p.Unix,
		Port:           DefaultPort,
		Threads:        true,
		EncodeAttempts: oprf.DefaultAttempts,
	}
}

// Validate checks the configuration.
func (cfg *Config) Validate() error {
	if cfg.NumParties < 2 {
		return configError("at least 2 parties required, got %d",
			cfg.NumParties)
	}
	if cfg.SetSize < 1 {
		return configError("invalid set size %d", cfg.SetSize)
	}
	switch cfg.Vole.Construction {
	case vole.OT:
	case vole.LPN:
		if cfg.Vole.Setup != nil {
			if err := cfg.Vole.Setup.Validate(); err != nil {
				return configError("setup: %v", err)
			}
		}
		if cfg.Vole.Extend != nil {
			if err := cfg.Vole.Extend.ValidateExtend(); err != nil {
				return configError("extend: %v", err)
			}
		}
	default:
		return configError("invalid VOLE construction %v",
			cfg.Vole.Construction)
	}
	if _, err := solver.New(cfg.Solver); err != nil {
		return configError("%v", err)
	}
	switch cfg.Output {
	case Cardinality, Elements:
	default:
		return configError("invalid output %v", cfg.Output)
	}
	if cfg.Channel == p2p.TCP &&
		(cfg.Port <= 0 || cfg.Port+cfg.NumParties-1 > 65535) {
		return configError("invalid port %d for %d parties",
			cfg.Port, cfg.NumParties)
	}
	if cfg.EncodeAttempts < 0 {
		return configError("invalid encode attempts %d", cfg.EncodeAttempts)
	}
	return nil
}

func (cfg *Config) encodeAttempts() int {
	if cfg.EncodeAttempts == 0 {
		return oprf.DefaultAttempts
	}
	return cfg.EncodeAttempts
}

// voleString describes the VOLE configuration for the handshake.
func (cfg *Config) voleString() string {
	result := cfg.Vole.Construction.String()
	if cfg.Vole.Construction == vole.LPN {
		if cfg.Vole.Setup != nil {
			result += fmt.Sprintf(",setup=%v", cfg.Vole.Setup)
		}
		if cfg.Vole.Extend != nil {
			result += fmt.Sprintf(",extend=%v", cfg.Vole.Extend)
		}
	}
	return result
}

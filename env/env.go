//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package env implements global environment for the PSI system.
package env

import (
	"crypto/rand"
	"io"

	"github.com/rs/zerolog"
)

// Config defines the global system configuration for the PSI system.
// It configures system operation for all PSI modules. Config must not
// be modified after being passed to any PSI module. It is safe for
// concurrent use by multiple modules as they do not modify it.
type Config struct {
	// Rand is the source of entropy. It must be safe for concurrent
	// use.
	Rand io.Reader

	// Log is the system logger. The zero value discards all log
	// events.
	Log zerolog.Logger
}

// GetRandom returns the source of entropy for OT, VOLE, and other
// cryptography operations.
func (config *Config) GetRandom() io.Reader {
	if config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// GetLog returns the system logger.
func (config *Config) GetLog() zerolog.Logger {
	return config.Log
}

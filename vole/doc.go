//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package vole implements vector oblivious linear evaluation (VOLE)
// over GF(2^128).
//
// In a VOLE instance, two parties obtain correlated, pseudorandom
// vectors. The sender learns U[0..m-1] and E[0..m-1], and the
// receiver learns the global key Δ and V[0..m-1] satisfying:
//
//	V[i] = U[i]·Δ + E[i]
//
// The receiver never learns U or E and the sender never learns Δ or
// V beyond what the correlation reveals.
//
// The package provides two constructions:
//
//   - OT: each correlation consumes 128 correlated oblivious
//     transfers from the IKNP extension. The receiver is the OT
//     sender and offers the pairs (ρ, ρ+Δ·x^i) for each bit i of
//     U[k].
//   - LPN: a short base correlation from the OT construction is
//     expanded with single-point VOLEs from GGM trees and a public
//     sparse LPN matrix. The output of one round is used as the base
//     of the next round until enough correlations exist.
//
// Typical usage:
//
//	ext := vole.NewExt(conn, vole.ReceiverRole, cfg)
//	if err := ext.Setup(); err != nil { ... }
//	share, err := ext.Generate(m, vole.Params{Construction: vole.LPN})
//
// The constructions are semi-honest; they do not implement the
// consistency checks of the maliciously secure variants.
package vole

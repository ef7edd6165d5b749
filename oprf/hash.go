//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package oprf

import (
	"github.com/markkurossi/mpsi/field"
	"github.com/zeebo/blake3"
)

const (
	contextH  = "mpsi 2026 oprf output hash H"
	contextHF = "mpsi 2026 oprf field hash H^F"
)

// H hashes the decoded value v and the input x into the PRF output.
func H(v, x field.Element) field.Element {
	var material [2 * field.Size]byte
	var out [field.Size]byte

	v.PutBytes(material[:])
	x.PutBytes(material[field.Size:])
	blake3.DeriveKey(contextH, material[:], out[:])

	return field.FromBytes(out[:])
}

// HF hashes the input x into the field. It defines the value the
// query party programs for x.
func HF(x field.Element) field.Element {
	var material [field.Size]byte
	var out [field.Size]byte

	x.PutBytes(material[:])
	blake3.DeriveKey(contextHF, material[:], out[:])

	return field.FromBytes(out[:])
}

//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// CRH implements a tweakable correlation robust hash function from
// blocks to blocks. It is used to break the correlation of the
// correlated OT outputs.
type CRH struct {
	hasher *blake3.Hasher
	buf    [24]byte
}

// NewCRH creates a new correlation robust hash.
func NewCRH() *CRH {
	return &CRH{
		hasher: blake3.New(),
	}
}

// Hash computes H(tweak, b).
func (h *CRH) Hash(tweak uint64, b Block) Block {
	binary.BigEndian.PutUint64(h.buf[0:8], tweak)
	binary.LittleEndian.PutUint64(h.buf[8:16], b.D0)
	binary.LittleEndian.PutUint64(h.buf[16:24], b.D1)

	h.hasher.Reset()
	h.hasher.Write(h.buf[:])

	var out BlockData
	h.hasher.Digest().Read(out[:])

	var result Block
	result.SetData(&out)
	return result
}

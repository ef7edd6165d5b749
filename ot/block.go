//
// block.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Block implements a 128 bit OT message block. The bit i of D1:D0 is
// stored in D0 for i < 64 and in D1 otherwise.
type Block struct {
	D0 uint64
	D1 uint64
}

// BlockData contains block data as byte array.
type BlockData [16]byte

// Pair implements a pair of sender messages for one OT.
type Pair struct {
	B0 Block
	B1 Block
}

func (p Pair) String() string {
	return fmt.Sprintf("%s/%s", p.B0, p.B1)
}

func (b Block) String() string {
	return fmt.Sprintf("%016x%016x", b.D1, b.D0)
}

// Equal test if the blocks are equal.
func (b Block) Equal(o Block) bool {
	return b.D0 == o.D0 && b.D1 == o.D1
}

// NewBlock creates a new random block.
func NewBlock(rand io.Reader) (Block, error) {
	var buf BlockData
	var block Block

	if _, err := io.ReadFull(rand, buf[:]); err != nil {
		return block, err
	}
	block.SetData(&buf)
	return block, nil
}

// Xor xors the block with the argument block.
func (b *Block) Xor(o Block) {
	b.D0 ^= o.D0
	b.D1 ^= o.D1
}

// And ands the block with the argument block.
func (b *Block) And(o Block) {
	b.D0 &= o.D0
	b.D1 &= o.D1
}

// Bit returns the bit i of the block.
func (b Block) Bit(i int) uint {
	if i < 64 {
		return uint(b.D0>>i) & 1
	}
	return uint(b.D1>>(i-64)) & 1
}

// SetBit sets the bit i of the block to the value v.
func (b *Block) SetBit(i int, v uint) {
	if i < 64 {
		b.D0 &^= 1 << i
		b.D0 |= uint64(v&1) << i
	} else {
		b.D1 &^= 1 << (i - 64)
		b.D1 |= uint64(v&1) << (i - 64)
	}
}

// GetData gets the block as block data.
func (b Block) GetData(buf *BlockData) {
	binary.LittleEndian.PutUint64(buf[0:8], b.D0)
	binary.LittleEndian.PutUint64(buf[8:16], b.D1)
}

// SetData sets the block from block data.
func (b *Block) SetData(data *BlockData) {
	b.D0 = binary.LittleEndian.Uint64((*data)[0:8])
	b.D1 = binary.LittleEndian.Uint64((*data)[8:16])
}

// Bytes returns the block data as bytes.
func (b Block) Bytes(buf *BlockData) []byte {
	b.GetData(buf)
	return buf[:]
}

// SetBytes sets the block data from bytes.
func (b *Block) SetBytes(data []byte) {
	b.D0 = binary.LittleEndian.Uint64(data[0:8])
	b.D1 = binary.LittleEndian.Uint64(data[8:16])
}

// BlocksToBytes encodes the blocks into a byte array.
func BlocksToBytes(blocks []Block) []byte {
	buf := make([]byte, len(blocks)*16)
	for i, b := range blocks {
		binary.LittleEndian.PutUint64(buf[i*16:], b.D0)
		binary.LittleEndian.PutUint64(buf[i*16+8:], b.D1)
	}
	return buf
}

// BytesToBlocks decodes blocks from the byte array.
func BytesToBlocks(data []byte, blocks []Block) error {
	if len(data) != len(blocks)*16 {
		return fmt.Errorf("ot: invalid block data length %d, expected %d",
			len(data), len(blocks)*16)
	}
	for i := range blocks {
		blocks[i].SetBytes(data[i*16:])
	}
	return nil
}

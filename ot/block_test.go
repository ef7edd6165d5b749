//
// block_test.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockBits(t *testing.T) {
	var b Block

	b.SetBit(0, 1)
	b.SetBit(63, 1)
	b.SetBit(64, 1)
	b.SetBit(127, 1)
	assert.Equal(t, Block{D0: 1 | 1<<63, D1: 1 | 1<<63}, b)

	assert.Equal(t, uint(1), b.Bit(63))
	assert.Equal(t, uint(0), b.Bit(62))
	assert.Equal(t, uint(1), b.Bit(127))

	b.SetBit(63, 0)
	b.SetBit(127, 0)
	assert.Equal(t, Block{D0: 1, D1: 1}, b)
}

func TestBlockBytes(t *testing.T) {
	blocks := make([]Block, 5)
	for i := range blocks {
		b, err := NewBlock(rand.Reader)
		require.NoError(t, err)
		blocks[i] = b
	}
	data := BlocksToBytes(blocks)
	require.Len(t, data, 5*16)

	decoded := make([]Block, 5)
	require.NoError(t, BytesToBlocks(data, decoded))
	assert.Equal(t, blocks, decoded)

	assert.Error(t, BytesToBlocks(data[1:], decoded))
}

//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"encoding/binary"

	"github.com/markkurossi/mpsi/ot"
	"github.com/zeebo/blake3"
)

// ggmPRG expands the seed into its left and right children.
func ggmPRG(seed ot.Block) (left, right ot.Block) {
	var buf [17]byte
	buf[0] = 'G'
	binary.LittleEndian.PutUint64(buf[1:], seed.D0)
	binary.LittleEndian.PutUint64(buf[9:], seed.D1)

	sum := blake3.Sum256(buf[:])
	left.SetBytes(sum[0:16])
	right.SetBytes(sum[16:32])
	return
}

// ggmExpand expands the tree of depth h from the root. It stores the
// 2^h leaves into leaves and, for each level l, the XOR of the left
// and right children into sums[l-1].
func ggmExpand(root ot.Block, h int, leaves []ot.Block, sums []ot.Pair) {
	leaves[0] = root
	for l := 1; l <= h; l++ {
		width := 1 << (l - 1)
		var k0, k1 ot.Block
		// Expand in place from the end so parents are read before
		// they are overwritten.
		for i := width - 1; i >= 0; i-- {
			left, right := ggmPRG(leaves[i])
			leaves[2*i] = left
			leaves[2*i+1] = right
			k0.Xor(left)
			k1.Xor(right)
		}
		sums[l-1] = ot.Pair{
			B0: k0,
			B1: k1,
		}
	}
}

// ggmChoices returns the OT choice bits for the punctured point alpha.
// At each level the receiver learns the sum of the children that are
// not on the path to alpha.
func ggmChoices(alpha, h int, flags []bool) {
	for l := 1; l <= h; l++ {
		bit := (alpha >> (h - l)) & 1
		flags[l-1] = bit == 0
	}
}

// ggmPuncture reconstructs all leaves except alpha from the received
// level sums. The leaf alpha is set to zero.
func ggmPuncture(alpha, h int, sums []ot.Block, leaves []ot.Block) {
	leaves[0] = ot.Block{}
	for l := 1; l <= h; l++ {
		width := 1 << (l - 1)
		parent := alpha >> (h - l + 1)
		bit := (alpha >> (h - l)) & 1
		sibling := 2*parent + (1 - bit)

		var known ot.Block
		for i := width - 1; i >= 0; i-- {
			if i == parent {
				leaves[2*i] = ot.Block{}
				leaves[2*i+1] = ot.Block{}
				continue
			}
			left, right := ggmPRG(leaves[i])
			leaves[2*i] = left
			leaves[2*i+1] = right
			if bit == 0 {
				known.Xor(right)
			} else {
				known.Xor(left)
			}
		}
		s := sums[l-1]
		s.Xor(known)
		leaves[sibling] = s
	}
}

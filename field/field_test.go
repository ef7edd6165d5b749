//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package field

import (
	"crypto/rand"
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mul128Ref(a, b Element) (lo, hi Element) {
	var r [256]bool

	for i := 0; i < 128; i++ {
		if a.Bit(i) == 0 {
			continue
		}
		for j := 0; j < 128; j++ {
			if b.Bit(j) == 1 {
				r[i+j] = !r[i+j]
			}
		}
	}
	for i := 0; i < 128; i++ {
		if r[i] {
			if i < 64 {
				lo.D0 |= 1 << i
			} else {
				lo.D1 |= 1 << (i - 64)
			}
		}
	}
	for i := 128; i < 256; i++ {
		if r[i] {
			if i < 192 {
				hi.D0 |= 1 << (i - 128)
			} else {
				hi.D1 |= 1 << (i - 192)
			}
		}
	}
	return
}

// mulRef multiplies bit by bit with shift-and-reduce.
func mulRef(a, b Element) Element {
	var result Element
	for i := 127; i >= 0; i-- {
		// result *= x
		carry := result.D1 >> 63
		result.D1 = result.D1<<1 | result.D0>>63
		result.D0 <<= 1
		if carry != 0 {
			result.D0 ^= 0x87
		}
		if b.Bit(i) == 1 {
			result = result.Add(a)
		}
	}
	return result
}

func randomElement(rng *mrand.Rand) Element {
	return Element{
		D0: rng.Uint64(),
		D1: rng.Uint64(),
	}
}

func TestMul128(t *testing.T) {
	rng := mrand.New(mrand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a := randomElement(rng)
		b := randomElement(rng)

		lo, hi := mul128(a, b)
		rlo, rhi := mul128Ref(a, b)
		require.Equal(t, rlo, lo)
		require.Equal(t, rhi, hi)
	}
}

func TestMulBasic(t *testing.T) {
	x := Element{D0: 0xabcdef, D1: 0x1234}

	assert.Equal(t, Zero, Zero.Mul(x))
	assert.Equal(t, x, One.Mul(x))
	assert.Equal(t, New(4), X.Mul(X))

	// x^127 * x = x^128 = x^7 + x^2 + x + 1
	x127 := Element{D1: 1 << 63}
	assert.Equal(t, New(0x87), x127.Mul(X))
}

func TestMulReduce(t *testing.T) {
	rng := mrand.New(mrand.NewSource(2))
	for i := 0; i < 500; i++ {
		a := randomElement(rng)
		b := randomElement(rng)
		require.Equal(t, mulRef(a, b), a.Mul(b))
	}
}

func TestFieldLaws(t *testing.T) {
	rng := mrand.New(mrand.NewSource(3))
	for i := 0; i < 100; i++ {
		a := randomElement(rng)
		b := randomElement(rng)
		c := randomElement(rng)

		assert.Equal(t, a.Mul(b), b.Mul(a))
		assert.Equal(t, a.Mul(b).Mul(c), a.Mul(b.Mul(c)))
		assert.Equal(t, a.Mul(b.Add(c)), a.Mul(b).Add(a.Mul(c)))
		assert.Equal(t, Zero, a.Add(a))
	}
}

func TestInv(t *testing.T) {
	rng := mrand.New(mrand.NewSource(4))
	for i := 0; i < 50; i++ {
		a := randomElement(rng)
		if a.IsZero() {
			continue
		}
		assert.Equal(t, One, a.Mul(a.Inv()))
	}
	assert.Equal(t, Zero, Zero.Inv())
	assert.Equal(t, One, One.Inv())
}

func TestPow(t *testing.T) {
	assert.Equal(t, Element{D1: 1}, X.Pow(64))
	assert.Equal(t, New(0x87), X.Pow(128))
	assert.Equal(t, One, X.Pow(0))
}

func TestBatchInv(t *testing.T) {
	v, err := RandomVector(rand.Reader, 33)
	require.NoError(t, err)

	inv := BatchInv(v)
	require.Len(t, inv, len(v))
	for i := range v {
		assert.Equal(t, v[i].Inv(), inv[i])
	}
	assert.Empty(t, BatchInv(nil))
}

func TestVector(t *testing.T) {
	a, err := RandomVector(rand.Reader, 17)
	require.NoError(t, err)
	b, err := RandomVector(rand.Reader, 17)
	require.NoError(t, err)

	var expected Element
	for i := range a {
		expected = expected.Add(a[i].Mul(b[i]))
	}
	assert.Equal(t, expected, a.Dot(b))

	s := New(0x1234567)
	assert.Equal(t, a.Dot(b).Mul(s), a.Scale(s).Dot(b))

	sum := a.Add(b)
	assert.True(t, sum.Add(b).Equal(a))

	decoded, err := VectorFromBytes(a.Bytes())
	require.NoError(t, err)
	assert.True(t, decoded.Equal(a))

	_, err = VectorFromBytes(make([]byte, 15))
	assert.Error(t, err)
}

func TestBytes(t *testing.T) {
	e := FromU128(0x0102030405060708, 0x1112131415161718)
	data := e.Bytes()
	require.Len(t, data, Size)
	assert.Equal(t, byte(0x18), data[0])
	assert.Equal(t, byte(0x01), data[15])

	var d Element
	require.NoError(t, d.UnmarshalBinary(data))
	assert.Equal(t, e, d)
	assert.Error(t, d.UnmarshalBinary(data[:3]))
}

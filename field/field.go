//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package field implements arithmetic in the binary field GF(2^128)
// defined by the irreducible polynomial x^128 + x^7 + x^2 + x + 1.
package field

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// Size defines the byte size of field elements.
	Size = 16

	// Bits defines the bit size of field elements.
	Bits = 128
)

// Element implements a GF(2^128) element. The bit i of the 128-bit
// value D1:D0 is the coefficient of x^i.
type Element struct {
	D0 uint64
	D1 uint64
}

var (
	// Zero is the additive identity.
	Zero = Element{}
	// One is the multiplicative identity.
	One = Element{D0: 1}
	// X is the generator x of the polynomial basis.
	X = Element{D0: 2}
)

// New creates a new element from the argument value.
func New(v uint64) Element {
	return Element{D0: v}
}

// FromU128 creates an element from the 128-bit value hi:lo.
func FromU128(hi, lo uint64) Element {
	return Element{
		D0: lo,
		D1: hi,
	}
}

// Random creates a random element.
func Random(r io.Reader) (Element, error) {
	var buf [Size]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Zero, err
	}
	return FromBytes(buf[:]), nil
}

// FromBytes creates an element from its 16-byte little-endian
// encoding.
func FromBytes(data []byte) Element {
	return Element{
		D0: binary.LittleEndian.Uint64(data[0:8]),
		D1: binary.LittleEndian.Uint64(data[8:16]),
	}
}

// Bytes returns the 16-byte little-endian encoding of the element.
func (e Element) Bytes() []byte {
	var buf [Size]byte
	e.PutBytes(buf[:])
	return buf[:]
}

// PutBytes stores the element encoding into buf.
func (e Element) PutBytes(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], e.D0)
	binary.LittleEndian.PutUint64(buf[8:16], e.D1)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (e Element) MarshalBinary() ([]byte, error) {
	return e.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *Element) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("field: invalid element length %d", len(data))
	}
	*e = FromBytes(data)
	return nil
}

func (e Element) String() string {
	return fmt.Sprintf("%016x%016x", e.D1, e.D0)
}

// IsZero tests if the element is zero.
func (e Element) IsZero() bool {
	return e.D0 == 0 && e.D1 == 0
}

// Bit returns the coefficient of x^i.
func (e Element) Bit(i int) uint {
	if i < 64 {
		return uint(e.D0>>i) & 1
	}
	return uint(e.D1>>(i-64)) & 1
}

// Add returns e+o. Addition and subtraction are the same operation in
// characteristic 2.
func (e Element) Add(o Element) Element {
	return Element{
		D0: e.D0 ^ o.D0,
		D1: e.D1 ^ o.D1,
	}
}

// Sub returns e-o.
func (e Element) Sub(o Element) Element {
	return e.Add(o)
}

// Mul returns e*o.
func (e Element) Mul(o Element) Element {
	lo, hi := mul128(e, o)
	return reduce(lo, hi)
}

// Square returns e*e.
func (e Element) Square() Element {
	return e.Mul(e)
}

// Inv returns the multiplicative inverse of e. The inverse of zero is
// zero.
func (e Element) Inv() Element {
	// a^(2^128-2) = a^(2+4+...+2^127)
	result := One
	sq := e
	for i := 1; i < 128; i++ {
		sq = sq.Square()
		result = result.Mul(sq)
	}
	return result
}

// Pow returns e^n.
func (e Element) Pow(n uint64) Element {
	result := One
	base := e
	for n > 0 {
		if n&1 != 0 {
			result = result.Mul(base)
		}
		base = base.Square()
		n >>= 1
	}
	return result
}

// reduce reduces the 256-bit product hi:lo modulo
// x^128 + x^7 + x^2 + x + 1.
func reduce(lo, hi Element) Element {
	w0, w1, w2, w3 := lo.D0, lo.D1, hi.D0, hi.D1

	// x^128 = x^7 + x^2 + x + 1
	w1 ^= w3 ^ (w3 << 1) ^ (w3 << 2) ^ (w3 << 7)
	w2 ^= (w3 >> 63) ^ (w3 >> 62) ^ (w3 >> 57)

	w0 ^= w2 ^ (w2 << 1) ^ (w2 << 2) ^ (w2 << 7)
	w1 ^= (w2 >> 63) ^ (w2 >> 62) ^ (w2 >> 57)

	return Element{
		D0: w0,
		D1: w1,
	}
}

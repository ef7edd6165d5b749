//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package field

import (
	"fmt"
	"io"
)

// Vector implements a vector of field elements.
type Vector []Element

// RandomVector creates a random vector of n elements.
func RandomVector(r io.Reader, n int) (Vector, error) {
	buf := make([]byte, n*Size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return VectorFromBytes(buf)
}

// VectorFromBytes decodes a vector from its byte encoding.
func VectorFromBytes(data []byte) (Vector, error) {
	if len(data)%Size != 0 {
		return nil, fmt.Errorf("field: invalid vector length %d", len(data))
	}
	v := make(Vector, len(data)/Size)
	for i := range v {
		v[i] = FromBytes(data[i*Size:])
	}
	return v, nil
}

// Bytes returns the byte encoding of the vector.
func (v Vector) Bytes() []byte {
	buf := make([]byte, len(v)*Size)
	for i, e := range v {
		e.PutBytes(buf[i*Size:])
	}
	return buf
}

// Add returns v+o. The vectors must have the same length.
func (v Vector) Add(o Vector) Vector {
	if len(v) != len(o) {
		panic(fmt.Sprintf("field: vector length mismatch: %d != %d",
			len(v), len(o)))
	}
	result := make(Vector, len(v))
	for i := range v {
		result[i] = v[i].Add(o[i])
	}
	return result
}

// Scale returns s*v.
func (v Vector) Scale(s Element) Vector {
	result := make(Vector, len(v))
	for i := range v {
		result[i] = v[i].Mul(s)
	}
	return result
}

// Dot returns the inner product of v and o.
func (v Vector) Dot(o Vector) Element {
	if len(v) != len(o) {
		panic(fmt.Sprintf("field: vector length mismatch: %d != %d",
			len(v), len(o)))
	}
	var lo, hi Element
	for i := range v {
		l, h := mul128(v[i], o[i])
		lo = lo.Add(l)
		hi = hi.Add(h)
	}
	return reduce(lo, hi)
}

// Equal tests if the vectors are equal.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// BatchInv computes the inverses of all vector elements with one
// field inversion. All elements must be non-zero.
func BatchInv(v Vector) Vector {
	n := len(v)
	result := make(Vector, n)
	if n == 0 {
		return result
	}
	prefix := make(Vector, n)
	acc := One
	for i, e := range v {
		prefix[i] = acc
		acc = acc.Mul(e)
	}
	inv := acc.Inv()
	for i := n - 1; i >= 0; i-- {
		result[i] = inv.Mul(prefix[i])
		inv = inv.Mul(v[i])
	}
	return result
}

//
// co.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//
// Chou Orlandi OT - The Simplest Protocol for Oblivious Transfer.
//  - https://eprint.iacr.org/2015/267.pdf

/*

This implementation is derived from the EMP Toolkit's co.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/co.h)
with original license as follows:

MIT License

Copyright (c) 2018 Xiao Wang (wangxiao1254@gmail.com)

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

Enquiries about further applications and development opportunities are welcome.

*/

package ot

import (
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/group/edwards25519"
	"go.dedis.ch/kyber/v3/util/random"
)

var (
	_ OT = &CO{}
)

const coSuite = "Ed25519"

// CO implements CO OT as the OT interface. The protocol runs over the
// edwards25519 group.
type CO struct {
	suite   *edwards25519.SuiteEd25519
	entropy *entropy
	rand    cipher.Stream
	io      IO
	hasher  *blake3.Hasher
}

// entropy reads the scalar randomness for the kyber stream. The
// stream panics on read errors so entropy records the first error
// and returns zero bytes. The caller must check err after picking
// scalars.
type entropy struct {
	r   io.Reader
	err error
}

func (e *entropy) Read(p []byte) (int, error) {
	if e.err == nil {
		_, e.err = io.ReadFull(e.r, p)
	}
	if e.err != nil {
		clear(p)
	}
	return len(p), nil
}

// NewCO creates a new CO OT implementing the OT interface. The
// argument r is the entropy source for the group scalars.
func NewCO(r io.Reader) *CO {
	e := &entropy{
		r: r,
	}
	return &CO{
		suite:   edwards25519.NewBlakeSHA256Ed25519(),
		entropy: e,
		rand:    random.New(e),
		hasher:  blake3.New(),
	}
}

// InitSender initializes the OT sender.
func (co *CO) InitSender(io IO) error {
	co.io = io
	if err := SendString(io, coSuite); err != nil {
		return err
	}
	return io.Flush()
}

// InitReceiver initializes the OT receiver.
func (co *CO) InitReceiver(io IO) error {
	co.io = io

	name, err := ReceiveString(io)
	if err != nil {
		return err
	}
	if name != coSuite {
		return fmt.Errorf("ot: invalid group %s, expected %s", name, coSuite)
	}
	return nil
}

// Send sends the message pairs with OT.
func (co *CO) Send(pairs []Pair) error {
	// a <- Zp, A = G^a
	a := co.suite.Scalar().Pick(co.rand)
	if co.entropy.err != nil {
		return co.entropy.err
	}
	A := co.suite.Point().Mul(a, nil)

	data, err := A.MarshalBinary()
	if err != nil {
		return err
	}
	if err := co.io.SendData(data); err != nil {
		return err
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	// Aa = A^a
	Aa := co.suite.Point().Mul(a, A)

	data, err = co.io.ReceiveData()
	if err != nil {
		return err
	}
	pointLen := co.suite.PointLen()
	if len(data) != len(pairs)*pointLen {
		return fmt.Errorf("ot: invalid CO choice data length %d", len(data))
	}

	e := make([]Block, 2*len(pairs))
	B := co.suite.Point()
	for i := 0; i < len(pairs); i++ {
		if err := B.UnmarshalBinary(data[i*pointLen : (i+1)*pointLen]); err != nil {
			return err
		}
		// B^a and (B/A)^a
		Ba := co.suite.Point().Mul(a, B)
		BaInv := co.suite.Point().Sub(Ba, Aa)

		e0, err := co.kdf(Ba, uint64(i))
		if err != nil {
			return err
		}
		e1, err := co.kdf(BaInv, uint64(i))
		if err != nil {
			return err
		}
		e0.Xor(pairs[i].B0)
		e1.Xor(pairs[i].B1)
		e[2*i] = e0
		e[2*i+1] = e1
	}
	if err := SendBlocks(co.io, e); err != nil {
		return err
	}
	return co.io.Flush()
}

// Receive receives the messages with OT based on the flag values.
func (co *CO) Receive(flags []bool, result []Block) error {
	if len(flags) != len(result) {
		return fmt.Errorf("ot: flags and result length mismatch: %d != %d",
			len(flags), len(result))
	}
	data, err := co.io.ReceiveData()
	if err != nil {
		return err
	}
	A := co.suite.Point()
	if err := A.UnmarshalBinary(data); err != nil {
		return err
	}

	bs := make([]kyber.Scalar, len(flags))
	var out []byte
	for i := 0; i < len(flags); i++ {
		// b <- Zp
		bs[i] = co.suite.Scalar().Pick(co.rand)
		B := co.suite.Point().Mul(bs[i], nil)
		if flags[i] {
			B = co.suite.Point().Add(B, A)
		}
		pb, err := B.MarshalBinary()
		if err != nil {
			return err
		}
		out = append(out, pb...)
	}
	if co.entropy.err != nil {
		return co.entropy.err
	}
	if err := co.io.SendData(out); err != nil {
		return err
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	e := make([]Block, 2*len(flags))
	if err := ReceiveBlocks(co.io, e); err != nil {
		return err
	}
	for i := 0; i < len(flags); i++ {
		As := co.suite.Point().Mul(bs[i], A)
		k, err := co.kdf(As, uint64(i))
		if err != nil {
			return err
		}
		if flags[i] {
			k.Xor(e[2*i+1])
		} else {
			k.Xor(e[2*i])
		}
		result[i] = k
	}
	return nil
}

func (co *CO) kdf(p kyber.Point, id uint64) (Block, error) {
	data, err := p.MarshalBinary()
	if err != nil {
		return Block{}, err
	}
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], id)

	co.hasher.Reset()
	co.hasher.Write(data)
	co.hasher.Write(tmp[:])

	var buf BlockData
	co.hasher.Digest().Read(buf[:])

	var result Block
	result.SetData(&buf)
	return result, nil
}

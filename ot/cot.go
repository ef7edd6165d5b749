//
// cot.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

/*

This implementation is derived from the EMP Toolkit's cot.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/cot.h)
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
	"fmt"
	"io"
)

const (
	// The number of OTs extended in one IKNP round.
	cotBatchSize = 64 * 1024
)

// COT implements IKNP OT as the OT interface. In addition to the
// chosen message transfers, COT provides correlated transfers where
// the sender's messages differ by a caller-specified delta.
type COT struct {
	base  OT
	r     io.Reader
	io    IO
	crh   *CRH
	tweak uint64
	iknpS *IKNPSender
	iknpR *IKNPReceiver
}

// NewCOT creates a IKNP OT implementing the OT interface.
func NewCOT(base OT, r io.Reader) *COT {
	return &COT{
		base: base,
		r:    r,
		crh:  NewCRH(),
	}
}

// InitSender implements OT.InitSender.
func (cot *COT) InitSender(io IO) error {
	if cot.iknpS != nil || cot.iknpR != nil {
		return fmt.Errorf("ot: already initialized")
	}
	// The IKNP sender is the base OT receiver.
	err := cot.base.InitReceiver(io)
	if err != nil {
		return err
	}
	s, err := NewIKNPSender(cot.base, io, cot.r, nil)
	if err != nil {
		return err
	}
	cot.io = io
	cot.iknpS = s

	return nil
}

// InitReceiver implements OT.InitReceiver.
func (cot *COT) InitReceiver(io IO) error {
	if cot.iknpS != nil || cot.iknpR != nil {
		return fmt.Errorf("ot: already initialized")
	}
	err := cot.base.InitSender(io)
	if err != nil {
		return err
	}
	r, err := NewIKNPReceiver(cot.base, io, cot.r)
	if err != nil {
		return err
	}
	cot.io = io
	cot.iknpR = r

	return nil
}

// Send implements OT.Send.
func (cot *COT) Send(pairs []Pair) error {
	if cot.iknpS == nil {
		return fmt.Errorf("ot: not initialized as sender")
	}
	for i := 0; i < len(pairs); i += cotBatchSize {
		end := i + cotBatchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		q, err := cot.iknpS.Send(end - i)
		if err != nil {
			return err
		}
		pad := make([]Block, 2*len(q))
		for j := range q {
			tweak := cot.nextTweak()

			p0 := cot.crh.Hash(tweak, q[j])
			q[j].Xor(cot.iknpS.Delta)
			p1 := cot.crh.Hash(tweak, q[j])

			p0.Xor(pairs[i+j].B0)
			p1.Xor(pairs[i+j].B1)
			pad[2*j] = p0
			pad[2*j+1] = p1
		}
		if err := SendBlocks(cot.io, pad); err != nil {
			return err
		}
	}
	return cot.io.Flush()
}

// Receive implements OT.Receive.
func (cot *COT) Receive(flags []bool, result []Block) error {
	if cot.iknpR == nil {
		return fmt.Errorf("ot: not initialized as receiver")
	}
	if len(flags) != len(result) {
		return fmt.Errorf("ot: flags and result length mismatch: %d != %d",
			len(flags), len(result))
	}
	for i := 0; i < len(flags); i += cotBatchSize {
		end := i + cotBatchSize
		if end > len(flags) {
			end = len(flags)
		}
		t := result[i:end]
		if err := cot.iknpR.Receive(flags[i:end], t); err != nil {
			return err
		}
		pad := make([]Block, 2*len(t))
		if err := ReceiveBlocks(cot.io, pad); err != nil {
			return err
		}
		for j := range t {
			h := cot.crh.Hash(cot.nextTweak(), t[j])
			if flags[i+j] {
				h.Xor(pad[2*j+1])
			} else {
				h.Xor(pad[2*j])
			}
			t[j] = h
		}
	}
	return nil
}

// SendCorrelated runs len(deltas) OTs where the sender's messages
// are random m0 and m1=m0⊕deltas[i]. The function stores the m0
// messages into result.
func (cot *COT) SendCorrelated(deltas, result []Block) error {
	if cot.iknpS == nil {
		return fmt.Errorf("ot: not initialized as sender")
	}
	if len(deltas) != len(result) {
		return fmt.Errorf("ot: deltas and result length mismatch: %d != %d",
			len(deltas), len(result))
	}
	for i := 0; i < len(deltas); i += cotBatchSize {
		end := i + cotBatchSize
		if end > len(deltas) {
			end = len(deltas)
		}
		q, err := cot.iknpS.Send(end - i)
		if err != nil {
			return err
		}
		corr := make([]Block, len(q))
		for j := range q {
			tweak := cot.nextTweak()

			m0 := cot.crh.Hash(tweak, q[j])
			q[j].Xor(cot.iknpS.Delta)
			c := cot.crh.Hash(tweak, q[j])
			c.Xor(m0)
			c.Xor(deltas[i+j])

			result[i+j] = m0
			corr[j] = c
		}
		if err := SendBlocks(cot.io, corr); err != nil {
			return err
		}
	}
	return cot.io.Flush()
}

// ReceiveCorrelated receives the messages of SendCorrelated based on
// the flag values.
func (cot *COT) ReceiveCorrelated(flags []bool, result []Block) error {
	if cot.iknpR == nil {
		return fmt.Errorf("ot: not initialized as receiver")
	}
	if len(flags) != len(result) {
		return fmt.Errorf("ot: flags and result length mismatch: %d != %d",
			len(flags), len(result))
	}
	for i := 0; i < len(flags); i += cotBatchSize {
		end := i + cotBatchSize
		if end > len(flags) {
			end = len(flags)
		}
		t := result[i:end]
		if err := cot.iknpR.Receive(flags[i:end], t); err != nil {
			return err
		}
		corr := make([]Block, len(t))
		if err := ReceiveBlocks(cot.io, corr); err != nil {
			return err
		}
		for j := range t {
			h := cot.crh.Hash(cot.nextTweak(), t[j])
			if flags[i+j] {
				h.Xor(corr[j])
			}
			t[j] = h
		}
	}
	return nil
}

func (cot *COT) nextTweak() uint64 {
	cot.tweak++
	return cot.tweak
}

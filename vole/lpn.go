//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/ot"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"
)

var lpnMatrixInfo = []byte("mpsi vole lpn matrix")

// LPN creates m VOLE correlations with the LPN construction. The
// setup parameters define the first round that consumes an OT based
// base correlation. The extend parameters define the subsequent
// rounds that consume the output of the previous round.
func (e *Ext) LPN(m int, setup, extend LPNParams) (*Share, error) {
	if e.cot == nil {
		return nil, fmt.Errorf("vole: not initialized")
	}
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	if setup.Cols() < m {
		if err := extend.ValidateExtend(); err != nil {
			return nil, err
		}
	}
	e.log.Debug().Int("m", m).Stringer("setup", setup).
		Stringer("extend", extend).Msg("LPN VOLE")

	base, err := e.OT(setup.Base())
	if err != nil {
		return nil, err
	}
	cur, err := e.extend(base, setup)
	if err != nil {
		return nil, err
	}
	for cur.Len() < m {
		need := extend.Base()
		next, err := e.extend(cur.Slice(0, need), extend)
		if err != nil {
			return nil, err
		}
		cur = cur.Slice(need, cur.Len()).Append(next)
	}
	return cur.Slice(0, m), nil
}

// extend runs one LPN round consuming base.Len() == p.Base()
// correlations and producing p.Cols() new correlations.
func (e *Ext) extend(base *Share, p LPNParams) (*Share, error) {
	if base.Len() < p.Base() {
		return nil, fmt.Errorf("vole: LPN base too short: %d < %d",
			base.Len(), p.Base())
	}
	if e.role == ReceiverRole {
		return e.extendReceiver(base, p)
	}
	return e.extendSender(base, p)
}

func (e *Ext) extendReceiver(base *Share, p LPNParams) (*Share, error) {
	v0 := base.V[:p.Rows]
	vs := base.V[p.Rows:p.Base()]

	// Matrix seed.
	seed, err := ot.NewBlock(e.rand)
	if err != nil {
		return nil, err
	}
	if err := e.io.SendBlock(seed); err != nil {
		return nil, err
	}
	if err := e.io.Flush(); err != nil {
		return nil, err
	}

	// Single-point VOLEs: one GGM tree for each noise block.
	blockSize := 1 << p.Log
	leaves := make([]ot.Block, p.Cols())
	pairs := make([]ot.Pair, p.Weight*p.Log)
	for t := 0; t < p.Weight; t++ {
		root, err := ot.NewBlock(e.rand)
		if err != nil {
			return nil, err
		}
		ggmExpand(root, p.Log, leaves[t*blockSize:(t+1)*blockSize],
			pairs[t*p.Log:(t+1)*p.Log])
	}
	if err := e.cot.Send(pairs); err != nil {
		return nil, err
	}

	s := make(field.Vector, p.Cols())
	d := make(field.Vector, p.Weight)
	for t := 0; t < p.Weight; t++ {
		sum := vs[t]
		for j := t * blockSize; j < (t+1)*blockSize; j++ {
			s[j] = blockToElement(leaves[j])
			sum = sum.Add(s[j])
		}
		d[t] = sum
	}
	if err := e.io.SendData(d.Bytes()); err != nil {
		return nil, err
	}
	if err := e.io.Flush(); err != nil {
		return nil, err
	}

	// V = s + A·v0
	if err := lpnEncode(seed, p, []field.Vector{v0},
		[]field.Vector{s}); err != nil {
		return nil, err
	}

	return &Share{
		Role:  ReceiverRole,
		Delta: e.delta,
		V:     s,
	}, nil
}

func (e *Ext) extendSender(base *Share, p LPNParams) (*Share, error) {
	u0 := base.U[:p.Rows]
	e0 := base.E[:p.Rows]
	us := base.U[p.Rows:p.Base()]
	es := base.E[p.Rows:p.Base()]

	seed, err := e.io.ReceiveBlock()
	if err != nil {
		return nil, err
	}

	blockSize := 1 << p.Log
	alphas := make([]int, p.Weight)
	flags := make([]bool, p.Weight*p.Log)
	for t := 0; t < p.Weight; t++ {
		alpha, err := randomInt(e.rand, blockSize)
		if err != nil {
			return nil, err
		}
		alphas[t] = alpha
		ggmChoices(alpha, p.Log, flags[t*p.Log:(t+1)*p.Log])
	}
	sums := make([]ot.Block, p.Weight*p.Log)
	if err := e.cot.Receive(flags, sums); err != nil {
		return nil, err
	}

	data, err := e.io.ReceiveData()
	if err != nil {
		return nil, err
	}
	d, err := field.VectorFromBytes(data)
	if err != nil {
		return nil, err
	}
	if len(d) != p.Weight {
		return nil, fmt.Errorf("vole: invalid SPVOLE correction count %d",
			len(d))
	}

	leaves := make([]ot.Block, blockSize)
	mu := make(field.Vector, p.Cols())
	y := make(field.Vector, p.Cols())
	for t := 0; t < p.Weight; t++ {
		alpha := alphas[t]
		ggmPuncture(alpha, p.Log, sums[t*p.Log:(t+1)*p.Log], leaves)

		ofs := t * blockSize
		sum := d[t].Add(es[t])
		for j := 0; j < blockSize; j++ {
			y[ofs+j] = blockToElement(leaves[j])
			sum = sum.Add(y[ofs+j])
		}
		y[ofs+alpha] = sum
		mu[ofs+alpha] = us[t]
	}

	// U = μ + A·u0, E = y + A·e0
	if err := lpnEncode(seed, p, []field.Vector{u0, e0},
		[]field.Vector{mu, y}); err != nil {
		return nil, err
	}

	return &Share{
		Role: SenderRole,
		U:    mu,
		E:    y,
	}, nil
}

// newMatrixStream creates the keystream that defines the public LPN
// matrix.
func newMatrixStream(seed ot.Block) (cipher.Stream, error) {
	var bd ot.BlockData
	kdf := hkdf.New(sha256.New, seed.Bytes(&bd), nil, lpnMatrixInfo)
	var key [chacha20.KeySize]byte
	if _, err := io.ReadFull(kdf, key[:]); err != nil {
		return nil, err
	}
	var nonce [chacha20.NonceSize]byte
	return chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
}

// lpnEncode adds A·bases[i] to outs[i] where A is the sparse matrix
// with p.D non-zero entries in each column, derived from the seed.
func lpnEncode(seed ot.Block, p LPNParams, bases, outs []field.Vector) error {
	stream, err := newMatrixStream(seed)
	if err != nil {
		return err
	}
	cols := len(outs[0])
	buf := make([]byte, 4*p.D)
	rows := uint32(p.Rows)

	for j := 0; j < cols; j++ {
		for i := range buf {
			buf[i] = 0
		}
		stream.XORKeyStream(buf, buf)
		for k := 0; k < p.D; k++ {
			r := binary.LittleEndian.Uint32(buf[4*k:]) % rows
			for i := range bases {
				outs[i][j] = outs[i][j].Add(bases[i][r])
			}
		}
	}
	return nil
}

func randomInt(r io.Reader, max int) (int, error) {
	v, err := rand.Int(r, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

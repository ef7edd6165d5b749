//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package vole

import (
	"crypto/rand"
	"testing"

	"github.com/markkurossi/mpsi/env"
	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/ot"
	"github.com/markkurossi/mpsi/p2p"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSetup = LPNParams{
		Rows:   64,
		Weight: 8,
		Log:    4,
		D:      10,
	}
	testExtend = LPNParams{
		Rows:   100,
		Weight: 12,
		Log:    5,
		D:      10,
	}
)

func generate(t *testing.T, m int, params Params) (*Share, *Share) {
	c0, c1 := p2p.Pipe()
	defer c0.Close()
	defer c1.Close()

	cfg := &env.Config{
		Rand: rand.Reader,
	}

	var sender *Share
	var err0 error
	done := make(chan bool)

	go func() {
		sender, err0 = Generate(c0, SenderRole, m, params, cfg)
		if err0 != nil {
			c0.Close()
		}
		done <- true
	}()

	receiver, err1 := Generate(c1, ReceiverRole, m, params, cfg)
	if err1 != nil {
		c1.Close()
	}
	<-done

	require.NoError(t, err0)
	require.NoError(t, err1)
	return sender, receiver
}

func TestVOLEOT(t *testing.T) {
	for _, m := range []int{0, 1, 20, otBatch + 3} {
		sender, receiver := generate(t, m, Params{
			Construction: OT,
		})
		require.Equal(t, m, sender.Len())
		require.Equal(t, m, receiver.Len())
		require.NoError(t, Verify(sender, receiver))
	}
}

func TestVOLELPN(t *testing.T) {
	// One setup round.
	sender, receiver := generate(t, 100, Params{
		Construction: LPN,
		Setup:        &testSetup,
		Extend:       &testExtend,
	})
	require.Equal(t, 100, sender.Len())
	require.NoError(t, Verify(sender, receiver))
}

func TestVOLELPNBootstrap(t *testing.T) {
	// The setup round produces 128 correlations and each extension
	// round adds 384-112 = 272 more.
	const m = 1000

	sender, receiver := generate(t, m, Params{
		Construction: LPN,
		Setup:        &testSetup,
		Extend:       &testExtend,
	})
	require.Equal(t, m, sender.Len())
	require.Equal(t, m, receiver.Len())
	require.NoError(t, Verify(sender, receiver))

	// The U vector is pseudorandom, not sparse.
	var zeros int
	for _, u := range sender.U {
		if u.IsZero() {
			zeros++
		}
	}
	assert.Less(t, zeros, m/10)
}

func TestVOLEMultipleBatches(t *testing.T) {
	c0, c1 := p2p.Pipe()
	defer c0.Close()
	defer c1.Close()

	cfg := &env.Config{}
	params := Params{
		Construction: LPN,
		Setup:        &testSetup,
		Extend:       &testExtend,
	}

	senders := make([]*Share, 2)
	errCh := make(chan error, 1)
	go func() {
		ext := NewExt(c0, SenderRole, cfg)
		err := ext.Setup()
		for i := 0; err == nil && i < len(senders); i++ {
			senders[i], err = ext.Generate(50, params)
		}
		errCh <- err
	}()

	ext := NewExt(c1, ReceiverRole, cfg)
	require.NoError(t, ext.Setup())
	receivers := make([]*Share, len(senders))
	for i := range receivers {
		receiver, err := ext.Generate(50, params)
		require.NoError(t, err)
		require.Equal(t, ext.Delta(), receiver.Delta)
		receivers[i] = receiver
	}
	require.NoError(t, <-errCh)

	for i := range receivers {
		require.NoError(t, Verify(senders[i], receivers[i]))
	}
}

func TestVOLEInvalidParams(t *testing.T) {
	c0, c1 := p2p.Pipe()
	defer c0.Close()
	defer c1.Close()

	ext := NewExt(c0, ReceiverRole, &env.Config{})
	_, err := ext.Generate(10, Params{})
	assert.Error(t, err)

	bad := LPNParams{Rows: 100, Weight: 1, Log: 2, D: 10}
	assert.Error(t, bad.ValidateExtend())
	assert.NoError(t, testExtend.ValidateExtend())
	assert.Error(t, LPNParams{}.Validate())
}

func TestPresets(t *testing.T) {
	setup, extend := Presets(100)
	assert.Equal(t, SetupSmall, setup)
	assert.Equal(t, ExtendSmall, extend)

	setup, extend = Presets(SmallLimit)
	assert.Equal(t, SetupMedium, setup)
	assert.Equal(t, ExtendMedium, extend)

	for _, p := range []LPNParams{ExtendSmall, ExtendMedium} {
		assert.NoError(t, p.ValidateExtend())
	}
	assert.Equal(t, 2508<<8, SetupSmall.Cols())
	assert.Equal(t, 19870+2508, SetupSmall.Base())
}

func TestParseConstruction(t *testing.T) {
	for _, c := range []Construction{LPN, OT} {
		parsed, err := ParseConstruction(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := ParseConstruction("silent")
	assert.Error(t, err)
}

func TestGGM(t *testing.T) {
	const h = 5

	root, err := ot.NewBlock(rand.Reader)
	require.NoError(t, err)

	leaves := make([]ot.Block, 1<<h)
	pairs := make([]ot.Pair, h)
	ggmExpand(root, h, leaves, pairs)

	for alpha := 0; alpha < 1<<h; alpha++ {
		flags := make([]bool, h)
		ggmChoices(alpha, h, flags)

		sums := make([]ot.Block, h)
		for l := range sums {
			if flags[l] {
				sums[l] = pairs[l].B1
			} else {
				sums[l] = pairs[l].B0
			}
		}
		punctured := make([]ot.Block, 1<<h)
		ggmPuncture(alpha, h, sums, punctured)

		for j := range leaves {
			if j == alpha {
				assert.Equal(t, ot.Block{}, punctured[j])
			} else {
				require.Equalf(t, leaves[j], punctured[j],
					"alpha=%d, leaf %d", alpha, j)
			}
		}
	}
}

func TestShareMarshal(t *testing.T) {
	sender, receiver := generate(t, 10, Params{
		Construction: OT,
	})

	data, err := sender.MarshalBinary()
	require.NoError(t, err)
	var s Share
	require.NoError(t, s.UnmarshalBinary(data))

	data, err = receiver.MarshalBinary()
	require.NoError(t, err)
	var r Share
	require.NoError(t, r.UnmarshalBinary(data))

	require.NoError(t, Verify(&s, &r))
	assert.True(t, s.U.Equal(sender.U))
	assert.Equal(t, receiver.Delta, r.Delta)

	assert.Error(t, s.UnmarshalBinary([]byte{0xff}))
}

func TestShareSlice(t *testing.T) {
	sender, receiver := generate(t, 20, Params{
		Construction: OT,
	})
	s := sender.Slice(5, 10).Append(sender.Slice(0, 5))
	r := receiver.Slice(5, 10).Append(receiver.Slice(0, 5))
	require.Equal(t, 10, s.Len())
	require.NoError(t, Verify(s, r))

	r.V[0] = r.V[0].Add(field.One)
	assert.Error(t, Verify(s, r))
}

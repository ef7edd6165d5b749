//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sets

import (
	"crypto/rand"
	"testing"

	"github.com/markkurossi/mpsi/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		n, size, common int
	}{
		{3, 10, 5},
		{2, 1, 1},
		{2, 1, 0},
		{5, 100, 0},
		{4, 3, 2},
		{10, 64, 64},
	}
	for _, test := range tests {
		sets, err := Generate(rand.Reader, test.n, test.size, test.common)
		require.NoError(t, err)
		require.Len(t, sets, test.n)

		for _, set := range sets {
			assert.Len(t, set, test.size)
			seen := make(map[field.Element]bool)
			for _, e := range set {
				assert.False(t, seen[e], "duplicate %v", e)
				seen[e] = true
			}
		}
		assert.Len(t, Intersection(sets), test.common, "%v", test)
	}
}

func TestFillers(t *testing.T) {
	sets, err := Generate(rand.Reader, 3, 10, 5)
	require.NoError(t, err)

	for i, set := range sets {
		seen := make(map[field.Element]bool)
		for _, e := range set {
			seen[e] = true
		}
		for counter := 0; counter < 3; counter++ {
			filler := field.New(uint64(counter))
			assert.Equal(t, counter != i, seen[filler],
				"party %d filler %d", i, counter)
		}
	}
}

func TestGenerateInvalid(t *testing.T) {
	_, err := Generate(rand.Reader, 1, 10, 5)
	assert.Error(t, err)
	_, err = Generate(rand.Reader, 3, 4, 5)
	assert.Error(t, err)
}

func TestIntersection(t *testing.T) {
	a := field.New(1)
	b := field.New(2)
	c := field.New(3)

	assert.Equal(t, []field.Element{a, c}, Intersection([][]field.Element{
		{a, b, c},
		{c, a},
		{b, c, a, c},
	}))
	assert.Empty(t, Intersection([][]field.Element{{a}, {b}}))
	assert.Nil(t, Intersection(nil))
}

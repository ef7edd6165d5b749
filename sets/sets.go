//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package sets creates test sets for the set intersection protocol.
package sets

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/markkurossi/mpsi/field"
)

// Generate creates the sets of n parties with size elements each.
// All sets contain the same common random elements. The parties'
// remaining elements are the small filler values 0...n-1 except the
// party's own rank, and random elements. The filler values are
// shared by all but one party so they are never in the intersection.
// The elements of each set are in random order.
func Generate(r io.Reader, n, size, common int) ([][]field.Element, error) {
	if n <= 1 {
		return nil, fmt.Errorf("sets: invalid number of parties %d", n)
	}
	if size < common || common < 0 {
		return nil, fmt.Errorf("sets: set size %d < common size %d",
			size, common)
	}
	commonElements, err := field.RandomVector(r, common)
	if err != nil {
		return nil, err
	}

	var seed [32]byte
	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return nil, err
	}
	rnd := rand.New(rand.NewChaCha8(seed))

	result := make([][]field.Element, n)
	for i := range result {
		seen := make(map[field.Element]bool)
		var set []field.Element

		add := func(e field.Element) {
			if !seen[e] {
				seen[e] = true
				set = append(set, e)
			}
		}
		for _, e := range commonElements {
			add(e)
		}
		for counter := 0; counter < n && len(set) < size; counter++ {
			if counter != i {
				add(field.FromU128(0, uint64(counter)))
			}
		}
		for len(set) < size {
			e, err := field.Random(r)
			if err != nil {
				return nil, err
			}
			add(e)
		}
		rnd.Shuffle(len(set), func(a, b int) {
			set[a], set[b] = set[b], set[a]
		})
		result[i] = set
	}
	return result, nil
}

// Intersection computes the intersection of the sets. The elements
// are in the order of the first set.
func Intersection(sets [][]field.Element) []field.Element {
	if len(sets) == 0 {
		return nil
	}
	counts := make(map[field.Element]int)
	for _, set := range sets[1:] {
		seen := make(map[field.Element]bool)
		for _, e := range set {
			if !seen[e] {
				seen[e] = true
				counts[e]++
			}
		}
	}
	var result []field.Element
	for _, e := range sets[0] {
		if counts[e] == len(sets)-1 {
			result = append(result, e)
			counts[e] = -1
		}
	}
	return result
}

//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package psi

import (
	"io"

	"github.com/markkurossi/mpsi/field"
)

// ZeroShares creates count sharings of zero among n parties. The
// share i of each sharing is for the party i and the shares of a
// sharing sum to zero.
func ZeroShares(r io.Reader, count, n int) ([]field.Vector, error) {
	result := make([]field.Vector, count)
	for i := range result {
		shares, err := field.RandomVector(r, n-1)
		if err != nil {
			return nil, err
		}
		var sum field.Element
		for _, s := range shares {
			sum = sum.Add(s)
		}
		result[i] = append(shares, field.Zero.Sub(sum))
	}
	return result, nil
}

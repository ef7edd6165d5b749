//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package solver

import (
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/markkurossi/mpsi/field"
)

// constraint defines the linear equation <Bits, R> = Value where Bits
// are GF(2) coefficients over the variables R.
type constraint struct {
	Bits  *bitset.BitSet
	Value field.Element
}

// gaussSolve solves the constraints for n variables. Free variables
// are assigned random values. The function returns
// ErrEncodingFailure if the system is inconsistent.
func gaussSolve(r io.Reader, rows []constraint, n int) (field.Vector, error) {
	pivots := make([]int, n)
	for i := range pivots {
		pivots[i] = -1
	}

	var rank int
	for col := 0; col < n && rank < len(rows); col++ {
		sel := -1
		for i := rank; i < len(rows); i++ {
			if rows[i].Bits.Test(uint(col)) {
				sel = i
				break
			}
		}
		if sel < 0 {
			continue
		}
		rows[rank], rows[sel] = rows[sel], rows[rank]
		pivot := rows[rank]

		// Reduce the column from all other rows.
		for i := range rows {
			if i != rank && rows[i].Bits.Test(uint(col)) {
				rows[i].Bits.InPlaceSymmetricDifference(pivot.Bits)
				rows[i].Value = rows[i].Value.Add(pivot.Value)
			}
		}
		pivots[col] = rank
		rank++
	}
	for i := rank; i < len(rows); i++ {
		if !rows[i].Value.IsZero() {
			return nil, ErrEncodingFailure
		}
	}

	result, err := field.RandomVector(r, n)
	if err != nil {
		return nil, err
	}
	for col, row := range pivots {
		if row < 0 {
			continue
		}
		// The row is in reduced form: all other set bits are free
		// variables.
		v := rows[row].Value
		for i, ok := rows[row].Bits.NextSet(0); ok; i, ok = rows[row].Bits.NextSet(i + 1) {
			if int(i) != col {
				v = v.Add(result[i])
			}
		}
		result[col] = v
	}
	return result, nil
}

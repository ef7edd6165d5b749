//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package field

// mul128 computes the unreduced 256-bit carry-less product of a and
// b. It returns the product as the low and high 128-bit halves.
func mul128(a, b Element) (lo, hi Element) {
	a0, a1 := a.D0, a.D1
	b0, b1 := b.D0, b.D1

	p00lo, p00hi := clmul64(a0, b0)
	p01lo, p01hi := clmul64(a0, b1)
	p10lo, p10hi := clmul64(a1, b0)
	p11lo, p11hi := clmul64(a1, b1)

	midLo := p01lo ^ p10lo
	midHi := p01hi ^ p10hi

	lo.D0 = p00lo
	lo.D1 = p00hi ^ midLo

	hi.D0 = midHi ^ p11lo
	hi.D1 = p11hi

	return
}

func clmul64(a, b uint64) (lo, hi uint64) {
	for i := 0; i < 64; i++ {
		if (b>>i)&1 != 0 {
			if i == 0 {
				lo ^= a
			} else {
				lo ^= a << i
				hi ^= a >> (64 - i)
			}
		}
	}
	return
}

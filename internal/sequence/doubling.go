//go:build !gmp

package sequence

import (
	"context"
	"math/big"
	"math/bits"
)

// fibPair returns F(n) and F(n+1) using the fast-doubling identities
//
//	F(2k)   = F(k) * (2*F(k+1) - F(k))
//	F(2k+1) = F(k)² + F(k+1)²
//
// walking the bits of n from the most significant one. ctx is checked once
// per bit.
func fibPair(ctx context.Context, n uint64) (*big.Int, *big.Int, error) {
	a, b := big.NewInt(0), big.NewInt(1)
	t1, t2 := new(big.Int), new(big.Int)

	for i := bits.Len64(n) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		// t1 = F(2k)
		t1.Lsh(b, 1)
		t1.Sub(t1, a)
		t1.Mul(t1, a)
		// t2 = F(2k+1)
		t2.Mul(a, a)
		a.Mul(b, b)
		t2.Add(t2, a)

		if (n>>uint(i))&1 == 1 {
			a.Set(t2)
			b.Add(t1, t2)
		} else {
			a.Set(t1)
			b.Set(t2)
		}
	}
	return a, b, nil
}

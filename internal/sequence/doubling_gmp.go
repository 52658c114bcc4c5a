//go:build gmp

// This file moves the fast-doubling used by Skip onto GMP. Build with
// -tags=gmp and libgmp installed (libgmp-dev on Debian/Ubuntu, brew install
// gmp on macOS). Without the tag doubling.go is used instead.

package sequence

import (
	"context"
	"math/big"
	"math/bits"

	"github.com/ncw/gmp"
)

func fibPair(ctx context.Context, n uint64) (*big.Int, *big.Int, error) {
	a, b := gmp.NewInt(0), gmp.NewInt(1)
	t1, t2 := gmp.NewInt(0), gmp.NewInt(0)

	for i := bits.Len64(n) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		t1.MulUint32(b, 2)
		t1.Sub(t1, a)
		t1.Mul(t1, a)
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
	return gmpToBig(a), gmpToBig(b), nil
}

// gmpToBig converts a non-negative gmp.Int to a math/big integer.
func gmpToBig(g *gmp.Int) *big.Int {
	return new(big.Int).SetBytes(g.Bytes())
}

package sequence

import (
	"context"
	"math/big"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// pairCacheSize bounds the number of memoized (F(n), F(n+1)) pairs.
	pairCacheSize = 256
	// minCachedSkip is the smallest jump worth memoizing; below it the
	// doubling walk is a handful of multiplications.
	minCachedSkip = 1 << 10
)

// pairs memoizes fibPair across every Sequence in the process. Servers see
// the same skip offsets over and over (pagination, replays, -verify).
var pairs = mustPairCache()

func mustPairCache() *lru.Cache[uint64, [2]*big.Int] {
	c, err := lru.New[uint64, [2]*big.Int](pairCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

// cachedFibPair is fibPair behind the LRU. Callers get fresh copies and may
// mutate them.
func cachedFibPair(ctx context.Context, n uint64) (*big.Int, *big.Int, error) {
	if p, ok := pairs.Get(n); ok {
		return new(big.Int).Set(p[0]), new(big.Int).Set(p[1]), nil
	}
	fn, fn1, err := fibPair(ctx, n)
	if err != nil {
		return nil, nil, err
	}
	if n >= minCachedSkip {
		pairs.Add(n, [2]*big.Int{new(big.Int).Set(fn), new(big.Int).Set(fn1)})
	}
	return fn, fn1, nil
}

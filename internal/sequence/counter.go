package sequence

import (
	"context"
	"math/big"

	"github.com/agbru/fibseq/internal/iterator"
)

// Counter emits start, start+1, start+2, ... forever. It follows the same
// control rules as Sequence: a reset signal returns it to start after the
// current emission, and a Reseed payload continues from its First term.
type Counter struct {
	start *big.Int
	next  *big.Int
	index uint64
}

// NewCounter creates a Counter beginning at start.
func NewCounter(start int64) *Counter {
	return &Counter{start: big.NewInt(start), next: big.NewInt(start)}
}

// Advance implements iterator.Iterator.
func (c *Counter) Advance() iterator.Result[*big.Int] { return c.Resume(nil) }

// Resume implements iterator.Resumable.
func (c *Counter) Resume(ctl any) iterator.Result[*big.Int] {
	out := cloneInt(c.next)
	switch seed, ok := reseedOf(ctl); {
	case IsReset(ctl):
		c.next = cloneInt(c.start)
		c.index = 0
	case ok:
		c.next = cloneInt(seed.First)
		c.index = 0
	default:
		c.next = new(big.Int).Add(c.next, big.NewInt(1))
		c.index++
	}
	return iterator.Produced[*big.Int]{Value: out}
}

// Index implements Source.
func (c *Counter) Index() uint64 { return c.index }

// Reset implements Source.
func (c *Counter) Reset() {
	c.next = cloneInt(c.start)
	c.index = 0
}

// Skip implements Source.
func (c *Counter) Skip(ctx context.Context, n uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.next = new(big.Int).Add(c.next, new(big.Int).SetUint64(n))
	c.index += n
	return nil
}

var _ Source = (*Counter)(nil)

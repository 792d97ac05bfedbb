package perm

import (
	"context"
	"math/big"
)

func factorial(n int) *big.Int {
	z := new(big.Int)
	return z.MulRange(1, int64(n))
}

// NumberOfPermutations returns n!, the number of permutations Iterator produces for length n.
func NumberOfPermutations(n int) *big.Int {
	return factorial(n)
}

// Iterator returns a channel-backed iterator over every permutation of length n in Advance order,
// starting at the identity. Each value sent is an independent copy.
// The channel closes after Reversed(n) has been sent or once ctx is done; a consumer that stops
// reading early must cancel ctx to release the producing goroutine.
func Iterator(ctx context.Context, n int) <-chan *Perm {
	ch := make(chan *Perm, 20)

	go func() {
		defer close(ch)

		p := Identity(n)
		for {
			select {
			case ch <- p.Clone():
			case <-ctx.Done():
				return
			}
			if p.IsReversed() {
				return
			}
			p.Advance()
		}
	}()

	return ch
}

package psn

import (
	"context"
	"fmt"
	"math/big"

	"github.com/reallyasi9/psn/internal/residue"
	"golang.org/x/sync/errgroup"
)

// DefaultModuli are 2^30, 2^30-1 and 2^30-3. Their product, about 1.2e27, exceeds the count for every n up to MaxN.
var DefaultModuli = []uint64{1073741824, 1073741823, 1073741821}

// Count returns the number of primitive sorting networks on n elements.
//
// The result is exact only if the product of moduli exceeds it; otherwise the count reduced modulo that
// product is returned with no indication of the loss. Verify can detect an under-provisioned set.
func Count(ctx context.Context, n int, moduli []uint64, opts ...Option) (*big.Int, error) {
	mods, err := residue.NewModuli(moduli...)
	if err != nil {
		return nil, err
	}
	e, err := NewEngine(n, mods, opts...)
	if err != nil {
		return nil, err
	}
	result, err := e.Run(ctx)
	if err != nil {
		return nil, err
	}
	return result.Big(), nil
}

// Verify counts twice, concurrently: once over moduli and once over moduli plus extra. Both counts agree
// whenever the product of moduli already exceeded the answer; if they differ, ErrUnstable is returned.
// Options apply to both runs except WithProgress, which only follows the run over moduli.
func Verify(ctx context.Context, n int, moduli []uint64, extra uint64, opts ...Option) (*big.Int, error) {
	base, err := residue.NewModuli(moduli...)
	if err != nil {
		return nil, err
	}
	wide, err := base.With(extra)
	if err != nil {
		return nil, fmt.Errorf("verification modulus %d: %w", extra, err)
	}

	baseEngine, err := NewEngine(n, base, opts...)
	if err != nil {
		return nil, err
	}
	wideEngine, err := NewEngine(n, wide, opts...)
	if err != nil {
		return nil, err
	}
	wideEngine.opts.progress = nil

	var got, want *big.Int
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := baseEngine.Run(ctx)
		if err != nil {
			return err
		}
		got = r.Big()
		return nil
	})
	g.Go(func() error {
		r, err := wideEngine.Run(ctx)
		if err != nil {
			return err
		}
		want = r.Big()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if got.Cmp(want) != 0 {
		return nil, fmt.Errorf("n = %d: %v over %v, %v with %d added: %w", n, got, base.Values(), want, extra, ErrUnstable)
	}
	return got, nil
}

package psn

import (
	"bytes"
	"context"
	"log"
	"math/big"
	"testing"

	"github.com/reallyasi9/psn/internal/perm"
	"github.com/reallyasi9/psn/internal/residue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// known holds A006245(n) for n = 1, 2, ...
var known = []int64{1, 1, 2, 8, 62, 908, 24698, 1232944}

func TestCount_Known(t *testing.T) {
	for i, want := range known {
		n := i + 1
		got, err := Count(context.Background(), n, DefaultModuli, WithCheckInvariants(true))
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, 0, big.NewInt(want).Cmp(got), "n=%d: expected %d, got %v", n, want, got)
	}
}

func TestCount_ModuliAgree(t *testing.T) {
	sets := map[string][]uint64{
		"default":  DefaultModuli,
		"primes":   {1000000007, 998244353, 1000000009},
		"small":    {1009, 1013, 1019},
		"four":     {65537, 65521, 65519, 65497},
		"one word": {(1 << 61) - 1},
	}
	for n := 1; n <= 7; n++ {
		var first *big.Int
		for name, mods := range sets {
			got, err := Count(context.Background(), n, mods)
			require.NoError(t, err, "n=%d moduli %s", n, name)
			if first == nil {
				first = got
				continue
			}
			assert.Equal(t, 0, first.Cmp(got), "n=%d moduli %s: expected %v, got %v", n, name, first, got)
		}
	}
}

func TestCount_Truncates(t *testing.T) {
	got, err := Count(context.Background(), 6, []uint64{7, 11})
	require.NoError(t, err)
	assert.Equal(t, int64(908%77), got.Int64())
}

func TestCount_ConfigErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Count(ctx, 0, DefaultModuli)
	assert.ErrorIs(t, err, ErrInvalidN)

	_, err = Count(ctx, MaxN+1, DefaultModuli)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = Count(ctx, 4, nil)
	assert.ErrorIs(t, err, residue.ErrNoModuli)

	_, err = Count(ctx, 4, []uint64{residue.MaxModulus + 1})
	assert.ErrorIs(t, err, residue.ErrModulusRange)

	_, err = Count(ctx, 4, []uint64{12, 18})
	assert.ErrorIs(t, err, residue.ErrNotCoprime)

	_, err = NewEngine(3, nil)
	assert.ErrorIs(t, err, residue.ErrNoModuli)
}

func TestEngine_Stats(t *testing.T) {
	for n := 1; n <= 7; n++ {
		e, err := NewEngine(n, residue.MustModuli(DefaultModuli...), WithCheckInvariants(true))
		require.NoError(t, err)
		_, err = e.Run(context.Background())
		require.NoError(t, err)

		total := perm.NumberOfPermutations(n).Uint64()
		s := e.Stats()
		assert.Equal(t, total, s.Finalized, "n=%d", n)
		// one pending sum per permutation: paths reaching the same permutation share it
		assert.Equal(t, total, s.Created, "n=%d", n)
		assert.LessOrEqual(t, uint64(s.PeakPending), total)
		assert.Positive(t, s.PeakPending)
	}
}

func TestEngine_RunTwice(t *testing.T) {
	e, err := NewEngine(5, residue.MustModuli(DefaultModuli...))
	require.NoError(t, err)
	first, err := e.Run(context.Background())
	require.NoError(t, err)
	second, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
	assert.Equal(t, "62", second.String())
}

func TestEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := NewEngine(5, residue.MustModuli(DefaultModuli...))
	require.NoError(t, err)
	_, err = e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, e.Stats().Finalized)
}

func TestEngine_Progress(t *testing.T) {
	var calls int
	var lastDone, lastTotal uint64
	progress := func(done, total uint64) {
		assert.GreaterOrEqual(t, done, lastDone)
		calls++
		lastDone, lastTotal = done, total
	}

	_, err := Count(context.Background(), 8, DefaultModuli, WithProgress(progress))
	require.NoError(t, err)
	assert.Equal(t, uint64(40320), lastTotal)
	assert.Equal(t, uint64(40320), lastDone)
	assert.Equal(t, 40320/progressStride+1, calls)
}

func TestEngine_Logger(t *testing.T) {
	var buf bytes.Buffer
	_, err := Count(context.Background(), 4, DefaultModuli, WithLogger(log.New(&buf, "", 0)))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "counting 24 permutations of length 4")
	assert.Contains(t, buf.String(), "finalized 24 permutations")
}

func TestVerify(t *testing.T) {
	got, err := Verify(context.Background(), 6, DefaultModuli, 1000000007)
	require.NoError(t, err)
	assert.Equal(t, int64(908), got.Int64())

	_, err = Verify(context.Background(), 6, []uint64{7, 11}, 13)
	assert.ErrorIs(t, err, ErrUnstable)

	_, err = Verify(context.Background(), 6, []uint64{7, 11}, 14)
	assert.ErrorIs(t, err, residue.ErrNotCoprime)

	_, err = Verify(context.Background(), 0, DefaultModuli, 13)
	assert.ErrorIs(t, err, ErrInvalidN)
}

func TestVerify_ProgressFollowsBaseRun(t *testing.T) {
	var totals []uint64
	_, err := Verify(context.Background(), 5, DefaultModuli, 1000000007, WithProgress(func(done, total uint64) {
		totals = append(totals, total)
	}))
	require.NoError(t, err)
	assert.Equal(t, []uint64{120}, totals)
}

func BenchmarkCount7(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Count(context.Background(), 7, DefaultModuli)
	}
}

func BenchmarkCount9(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Count(context.Background(), 9, DefaultModuli)
	}
}

package perm

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance_FirstSteps(t *testing.T) {
	want := [][]int{
		{1, 2, 3, 4},
		{2, 1, 3, 4},
		{1, 3, 2, 4},
		{1, 2, 4, 3},
		{3, 1, 2, 4},
		{2, 1, 4, 3},
		{2, 3, 1, 4},
		{1, 4, 2, 3},
		{1, 3, 4, 2},
		{3, 2, 1, 4},
	}
	p := Identity(4)
	for i, w := range want {
		require.Equal(t, w, p.Values(), "step %d", i)
		p.Advance()
	}
}

func TestAdvance_SmallLengths(t *testing.T) {
	p := Identity(0)
	p.Advance()
	assert.Equal(t, 0, p.Len())

	p = Identity(1)
	p.Advance()
	assert.Equal(t, []int{1}, p.Values())

	p = Identity(2)
	p.Advance()
	assert.Equal(t, []int{2, 1}, p.Values())
}

// Every permutation is visited exactly once and the walk ends at the reversed permutation.
func TestAdvance_Bijective(t *testing.T) {
	for n := 1; n <= 7; n++ {
		total := int(NumberOfPermutations(n).Int64())
		p := Identity(n)
		seen := map[uint64]bool{p.Hash(): true}
		for step := 1; step < total; step++ {
			p.Advance()
			require.True(t, p.Valid(), "n=%d step %d: %s is not a permutation", n, step, p)
			require.False(t, seen[p.Hash()], "n=%d step %d: %s visited twice", n, step, p)
			seen[p.Hash()] = true
		}
		assert.Len(t, seen, total)
		assert.True(t, p.IsReversed(), "n=%d: expected to end reversed, got %s", n, p)
	}
}

// Swapping an ascent never leads to a permutation that was already visited.
func TestAdvance_LinearExtension(t *testing.T) {
	for n := 2; n <= 6; n++ {
		position := make(map[uint64]int)
		order := make([]*Perm, 0)
		for p := range Iterator(context.Background(), n) {
			position[p.Hash()] = len(order)
			order = append(order, p)
		}

		for at, p := range order {
			for i := 1; i < n; i++ {
				if !p.Ascent(i) {
					continue
				}
				q := p.Clone()
				q.Swap(i)
				assert.Greater(t, position[q.Hash()], at, "n=%d: %s precedes its predecessor %s", n, q, p)
			}
		}
	}
}

func TestColumns_RoundTrip(t *testing.T) {
	for p := range Iterator(context.Background(), 5) {
		q := p.Clone()
		cols := q.collapse()
		require.True(t, q.Equal(Identity(5)), "collapse must sort %s", p)
		for i, h := range cols {
			require.LessOrEqual(t, h, i+1)
			require.GreaterOrEqual(t, h, 0)
		}
		q.expand(cols)
		assert.True(t, q.Equal(p), "expand(collapse(%s)) = %s", p, q)
	}
}

func TestColumns_Next(t *testing.T) {
	tests := []struct {
		name string
		in   columns
		want columns
	}{
		{"move right", columns{1, 0, 0}, columns{0, 1, 0}},
		{"repack suffix", columns{1, 0, 1}, columns{0, 2, 0}},
		{"grow total", columns{0, 0, 1}, columns{1, 1, 0}},
		{"grow from full", columns{1, 2, 3}, columns{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := make(columns, len(tt.in))
			copy(c, tt.in)
			c.next()
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestIterator(t *testing.T) {
	for n := 1; n <= 6; n++ {
		count := 0
		var last *Perm
		for p := range Iterator(context.Background(), n) {
			if count == 0 {
				assert.True(t, p.Equal(Identity(n)))
			}
			last = p
			count++
		}
		assert.Equal(t, 0, NumberOfPermutations(n).Cmp(big.NewInt(int64(count))))
		assert.True(t, last.IsReversed())
	}
}

func TestIterator_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := Iterator(ctx, 8)
	for i := 0; i < 3; i++ {
		<-ch
	}
	cancel()

	// the channel must close without being read to the end
	count := 3
	for range ch {
		count++
	}
	assert.Less(t, int64(count), NumberOfPermutations(8).Int64())
}

func BenchmarkAdvanceAll8(b *testing.B) {
	for i := 0; i < b.N; i++ {
		p := Identity(8)
		for !p.IsReversed() {
			p.Advance()
		}
	}
}

func BenchmarkAdvanceOne12(b *testing.B) {
	p := Identity(12)
	for i := 0; i < b.N; i++ {
		p.Advance()
	}
}

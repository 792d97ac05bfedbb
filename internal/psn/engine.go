// Package psn counts primitive sorting networks (OEIS A006245).
//
// The count for n elements is the number of commutation classes of reduced words of the longest
// permutation of S_n. The Engine computes it by inclusion-exclusion over the weak order: permutations are
// finalized in an order where every permutation comes after all of its predecessors, and each finalized
// value is pushed forward to every permutation reachable by swapping a set of pairwise non-adjacent
// ascents, with a sign that alternates with the size of the set.
package psn

import (
	"context"
	"fmt"

	"github.com/reallyasi9/psn/internal/perm"
	"github.com/reallyasi9/psn/internal/residue"
)

// MaxN is the largest n the engine accepts, bounded by the perfect permutation hash used as the memo key.
const MaxN = perm.MaxHashLen

// pending is a permutation whose sum is still accumulating. Its perm is never mutated.
type pending struct {
	key  uint64
	perm *perm.Perm
	sum  *residue.Number
}

// frame is one node of the depth-first walk: contributions made from node at ascents at or after spot
// are subtracted when negative is set.
type frame struct {
	node     *pending
	spot     int
	negative bool
}

// Stats describes the work done by a run.
type Stats struct {
	// Finalized is the number of permutations whose sums have been read out.
	Finalized uint64
	// Created is the number of pending sums opened. Each permutation gets exactly one.
	Created uint64
	// Contributions is the number of additions made to pending sums.
	Contributions uint64
	// PeakPending is the largest number of simultaneously pending permutations.
	PeakPending int
}

// Engine enumerates S_n for a single computation. An Engine is not safe for concurrent use.
type Engine struct {
	n    int
	mods *residue.Moduli
	opts options

	pending map[uint64]*pending
	pow     []uint64
	stack   []frame
	stats   Stats
}

// NewEngine prepares an Engine for permutations of length n with arithmetic over mods.
func NewEngine(n int, mods *residue.Moduli, opts ...Option) (*Engine, error) {
	if n < 1 {
		return nil, fmt.Errorf("n = %d: %w", n, ErrInvalidN)
	}
	if n > MaxN {
		return nil, fmt.Errorf("n = %d exceeds %d: %w", n, MaxN, ErrTooLarge)
	}
	if mods == nil {
		return nil, fmt.Errorf("psn: nil moduli: %w", residue.ErrNoModuli)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	// pow[k] is (n+1)^k, the weight of position n-k in perm.Hash
	pow := make([]uint64, n)
	pow[0] = 1
	for k := 1; k < n; k++ {
		pow[k] = pow[k-1] * uint64(n+1)
	}

	return &Engine{n: n, mods: mods, opts: o, pow: pow}, nil
}

// Stats returns counters for the work done so far.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Run performs the enumeration and returns the count as a residue number.
// The context is checked between permutations; cancellation aborts the run with the context's error.
func (e *Engine) Run(ctx context.Context) (*residue.Number, error) {
	e.stats = Stats{}
	e.pending = make(map[uint64]*pending)

	total := perm.NumberOfPermutations(e.n).Uint64()
	e.opts.logger.Printf("counting %d permutations of length %d modulo %v", total, e.n, e.mods.Values())

	cursor := perm.Identity(e.n)
	e.insert(cursor.Clone(), cursor.Hash()).sum.AddTo(e.mods.One())

	var result *residue.Number
	for len(e.pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("psn: stopped after %d of %d permutations: %w", e.stats.Finalized, total, err)
		}

		key := cursor.Hash()
		entry, ok := e.pending[key]
		if !ok {
			return nil, fmt.Errorf("psn: %s reached with no pending sum: %w", cursor, ErrInvariant)
		}
		delete(e.pending, key)
		result = entry.sum

		e.spread(entry)

		e.stats.Finalized++
		if e.opts.progress != nil && e.stats.Finalized%progressStride == 0 {
			e.opts.progress(e.stats.Finalized, total)
		}

		if cursor.IsReversed() {
			if len(e.pending) > 0 {
				return nil, fmt.Errorf("psn: %d permutations still pending after the last one: %w", len(e.pending), ErrInvariant)
			}
			break
		}
		cursor.Advance()
		if e.opts.check && !cursor.Valid() {
			return nil, fmt.Errorf("psn: advanced to %s: %w", cursor, ErrInvariant)
		}
	}

	if e.opts.progress != nil {
		e.opts.progress(e.stats.Finalized, total)
	}
	e.opts.logger.Printf("finalized %d permutations with %d contributions, at most %d pending",
		e.stats.Finalized, e.stats.Contributions, e.stats.PeakPending)

	if e.stats.Finalized != total {
		return nil, fmt.Errorf("psn: finalized %d of %d permutations: %w", e.stats.Finalized, total, ErrInvariant)
	}
	return result, nil
}

// spread pushes the finalized sum of root to every permutation reachable from root by swapping a set of
// pairwise non-adjacent ascents, adding for odd-sized sets and subtracting for even-sized ones.
func (e *Engine) spread(root *pending) {
	value := root.sum
	e.stack = append(e.stack[:0], frame{node: root, spot: 1})

	for len(e.stack) > 0 {
		f := e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]

		for i := f.spot; i < e.n; i++ {
			if !f.node.perm.Ascent(i) {
				continue
			}
			next := e.successor(f.node, i)
			if f.negative {
				next.sum.SubFrom(value)
			} else {
				next.sum.AddTo(value)
			}
			e.stats.Contributions++

			// swaps at i+1 would not commute with the swap at i
			e.stack = append(e.stack, frame{node: next, spot: i + 2, negative: !f.negative})
		}
	}
}

// successor returns the canonical pending entry for node with positions i and i+1 swapped,
// creating it if this is the first contribution it receives.
func (e *Engine) successor(node *pending, i int) *pending {
	a := uint64(node.perm.Get(i))
	b := uint64(node.perm.Get(i + 1))
	key := node.key + (b-a)*uint64(e.n)*e.pow[e.n-i-1]

	if entry, ok := e.pending[key]; ok {
		return entry
	}

	p := node.perm.Clone()
	p.Swap(i)
	return e.insert(p, key)
}

func (e *Engine) insert(p *perm.Perm, key uint64) *pending {
	if e.opts.check && (!p.Valid() || p.Hash() != key) {
		panic(fmt.Errorf("psn: pending key %d does not match %s: %w", key, p, ErrInvariant))
	}
	entry := &pending{key: key, perm: p, sum: e.mods.Zero()}
	e.pending[key] = entry
	e.stats.Created++
	if len(e.pending) > e.stats.PeakPending {
		e.stats.PeakPending = len(e.pending)
	}
	return entry
}

// Package perm implements permutations of {1, ..., n} with 1-based positions and a successor operation
// that walks S_n in an order compatible with the weak order.
package perm

import (
	"errors"
	"fmt"
)

// MaxHashLen is the longest permutation for which Hash is collision-free: (n+1)^n must fit in a uint64.
const MaxHashLen = 15

// ErrNotBijection is returned when values do not form a permutation of {1, ..., n}.
var ErrNotBijection = errors.New("perm: values are not a permutation of 1..n")

// Perm is a permutation of {1, ..., n}. Positions are 1-based: Get(1) is the first value.
type Perm struct {
	data []int
}

// Identity returns the identity permutation of length n.
func Identity(n int) *Perm {
	data := make([]int, n)
	for i := range data {
		data[i] = i + 1
	}
	return &Perm{data: data}
}

// Reversed returns the permutation n, n-1, ..., 1, the last permutation in Advance order.
func Reversed(n int) *Perm {
	p := Identity(n)
	p.Reverse(1, n)
	return p
}

// New returns the permutation with the given values in order.
func New(values ...int) (*Perm, error) {
	data := make([]int, len(values))
	copy(data, values)
	p := &Perm{data: data}
	if !p.Valid() {
		return nil, fmt.Errorf("%v: %w", values, ErrNotBijection)
	}
	return p, nil
}

// Len returns n.
func (p *Perm) Len() int {
	return len(p.data)
}

// Get returns the value at position i.
func (p *Perm) Get(i int) int {
	return p.data[i-1]
}

// Set sets the value at position i. The caller is responsible for leaving p a bijection.
func (p *Perm) Set(i, v int) {
	p.data[i-1] = v
}

// Swap exchanges the values at positions i and i+1.
func (p *Perm) Swap(i int) {
	p.data[i-1], p.data[i] = p.data[i], p.data[i-1]
}

// Ascent reports whether the value at position i is smaller than the value at position i+1.
func (p *Perm) Ascent(i int) bool {
	return p.data[i-1] < p.data[i]
}

// Reverse reverses the values between positions i and j, inclusive.
func (p *Perm) Reverse(i, j int) {
	for lo, hi := i-1, j-1; lo < hi; lo, hi = lo+1, hi-1 {
		p.data[lo], p.data[hi] = p.data[hi], p.data[lo]
	}
}

// Inverse returns the permutation q with q(p(i)) = i.
func (p *Perm) Inverse() *Perm {
	q := Identity(p.Len())
	for i, v := range p.data {
		q.data[v-1] = i + 1
	}
	return q
}

// Compose returns the permutation i -> p(o(i)).
func (p *Perm) Compose(o *Perm) *Perm {
	if o.Len() != p.Len() {
		panic(fmt.Errorf("perm: cannot compose lengths %d and %d", p.Len(), o.Len()))
	}
	q := Identity(p.Len())
	for i, v := range o.data {
		q.data[i] = p.data[v-1]
	}
	return q
}

// Hash treats the values as digits of a base-(n+1) number. It is a perfect hash over S_n for n <= MaxHashLen.
func (p *Perm) Hash() uint64 {
	base := uint64(p.Len() + 1)
	var sum uint64
	for _, v := range p.data {
		sum = sum*base + uint64(v)
	}
	return sum
}

// Inversions counts the pairs of positions i < j with p(i) > p(j): the rank of p in the weak order.
func (p *Perm) Inversions() int {
	count := 0
	for i := range p.data {
		for j := i + 1; j < len(p.data); j++ {
			if p.data[i] > p.data[j] {
				count++
			}
		}
	}
	return count
}

// Valid reports whether p holds each of 1..n exactly once.
func (p *Perm) Valid() bool {
	seen := make([]bool, len(p.data))
	for _, v := range p.data {
		if v < 1 || v > len(p.data) || seen[v-1] {
			return false
		}
		seen[v-1] = true
	}
	return true
}

// IsReversed reports whether p is n, n-1, ..., 1.
func (p *Perm) IsReversed() bool {
	for i, v := range p.data {
		if v != len(p.data)-i {
			return false
		}
	}
	return true
}

// Equal reports whether p and o hold the same values.
func (p *Perm) Equal(o *Perm) bool {
	if len(p.data) != len(o.data) {
		return false
	}
	for i := range p.data {
		if p.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of p.
func (p *Perm) Clone() *Perm {
	return &Perm{data: clone(p.data)}
}

// Values returns a copy of the values in position order.
func (p *Perm) Values() []int {
	return clone(p.data)
}

func (p *Perm) String() string {
	return fmt.Sprint(p.data)
}

func clone(x []int) []int {
	out := make([]int, len(x))
	copy(out, x)
	return out
}

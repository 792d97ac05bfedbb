// Package residue represents large non-negative integers as tuples of residues modulo a fixed set of
// pairwise coprime moduli. Addition and negation work one machine word at a time; the exact integer is
// recovered once, at the end, with the Chinese Remainder Theorem.
//
// A Number only represents its value modulo the product of its moduli. If the true value of a computation
// reaches that product, Big silently returns the value reduced modulo the product: callers must choose
// moduli whose product exceeds any value they expect to reconstruct.
package residue

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/segmentio/fasthash/jody"
)

// Number is an integer modulo the product of a Moduli, stored as one residue per modulus.
type Number struct {
	mods *Moduli
	res  []uint64
}

// Moduli returns the moduli this number is defined over.
func (n *Number) Moduli() *Moduli {
	return n.mods
}

// Residues returns a copy of the residues.
func (n *Number) Residues() []uint64 {
	out := make([]uint64, len(n.res))
	copy(out, n.res)
	return out
}

func (n *Number) mustShare(o *Number) {
	if n.mods != o.mods {
		panic("residue: numbers built from different moduli")
	}
}

// AddTo adds o to n in place.
func (n *Number) AddTo(o *Number) {
	n.mustShare(o)
	for i, mod := range n.mods.mods {
		s := n.res[i] + o.res[i]
		if s >= mod {
			s -= mod
		}
		n.res[i] = s
	}
}

// SubFrom subtracts o from n in place.
func (n *Number) SubFrom(o *Number) {
	n.mustShare(o)
	for i, mod := range n.mods.mods {
		if n.res[i] >= o.res[i] {
			n.res[i] -= o.res[i]
		} else {
			n.res[i] = mod - (o.res[i] - n.res[i])
		}
	}
}

// Add returns a new Number holding n+o.
func (n *Number) Add(o *Number) *Number {
	c := n.Clone()
	c.AddTo(o)
	return c
}

// NegateIn replaces n with its additive inverse.
func (n *Number) NegateIn() {
	for i, mod := range n.mods.mods {
		if n.res[i] != 0 {
			n.res[i] = mod - n.res[i]
		}
	}
}

// Negate returns a new Number holding -n.
func (n *Number) Negate() *Number {
	c := n.Clone()
	c.NegateIn()
	return c
}

// Clone returns a copy of n over the same moduli.
func (n *Number) Clone() *Number {
	res := make([]uint64, len(n.res))
	copy(res, n.res)
	return &Number{mods: n.mods, res: res}
}

// IsZero reports whether every residue is zero.
func (n *Number) IsZero() bool {
	for _, r := range n.res {
		if r != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether n and o hold the same residues.
func (n *Number) Equal(o *Number) bool {
	if len(n.res) != len(o.res) {
		return false
	}
	for i := range n.res {
		if n.res[i] != o.res[i] {
			return false
		}
	}
	return true
}

// Hash returns a cheap non-cryptographic hash of the residues.
func (n *Number) Hash() uint64 {
	h := jody.HashUint64(n.res[0])
	for _, r := range n.res[1:] {
		h = jody.AddUint64(h, r)
	}
	return h
}

// Big reconstructs the unique integer in [0, product) with the residues of n.
func (n *Number) Big() *big.Int {
	m := n.mods
	m.prepare()

	sum := new(big.Int)
	term := new(big.Int)
	for j, r := range n.res {
		term.SetUint64(r)
		term.Mul(term, m.coeffs[j])
		sum.Add(sum, term)
	}
	return sum.Mod(sum, m.product)
}

func (n *Number) String() string {
	return n.Big().String()
}

// GoString shows the raw residues, which is what matters when debugging arithmetic.
func (n *Number) GoString() string {
	var sb strings.Builder
	sb.WriteString("residue.Number{")
	for i, r := range n.res {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatUint(r, 10))
		sb.WriteString(" mod ")
		sb.WriteString(strconv.FormatUint(n.mods.mods[i], 10))
	}
	sb.WriteString("}")
	return sb.String()
}

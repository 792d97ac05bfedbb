package residue

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
)

// MaxModulus is the largest modulus for which r+s can be computed without overflowing a uint64.
const MaxModulus = uint64(1) << 63

var (
	// ErrNoModuli is returned when a Moduli is constructed from an empty list.
	ErrNoModuli = errors.New("residue: no moduli given")

	// ErrModulusRange is returned for a modulus of zero or one larger than MaxModulus.
	ErrModulusRange = errors.New("residue: modulus out of range")

	// ErrNotCoprime is returned when two moduli share a common factor.
	ErrNotCoprime = errors.New("residue: moduli are not pairwise coprime")
)

// Moduli is an ordered set of pairwise coprime moduli shared by every Number built from it.
// A Moduli is immutable once constructed and safe for concurrent use.
type Moduli struct {
	mods []uint64

	once    sync.Once
	product *big.Int
	coeffs  []*big.Int
}

// NewModuli validates the given moduli and returns a Moduli over them.
func NewModuli(mods ...uint64) (*Moduli, error) {
	if len(mods) == 0 {
		return nil, ErrNoModuli
	}
	for i, m := range mods {
		if m == 0 || m > MaxModulus {
			return nil, fmt.Errorf("modulus %d (%d): %w", i, m, ErrModulusRange)
		}
	}
	for i := range mods {
		for j := i + 1; j < len(mods); j++ {
			if g := gcd(mods[i], mods[j]); g != 1 {
				return nil, fmt.Errorf("moduli %d and %d share factor %d: %w", mods[i], mods[j], g, ErrNotCoprime)
			}
		}
	}
	cp := make([]uint64, len(mods))
	copy(cp, mods)
	return &Moduli{mods: cp}, nil
}

// MustModuli is like NewModuli but panics on invalid input.
func MustModuli(mods ...uint64) *Moduli {
	m, err := NewModuli(mods...)
	if err != nil {
		panic(err)
	}
	return m
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Len returns the number of moduli.
func (m *Moduli) Len() int {
	return len(m.mods)
}

// Values returns a copy of the moduli.
func (m *Moduli) Values() []uint64 {
	out := make([]uint64, len(m.mods))
	copy(out, m.mods)
	return out
}

// With returns a new Moduli with extra appended.
func (m *Moduli) With(extra ...uint64) (*Moduli, error) {
	all := make([]uint64, 0, len(m.mods)+len(extra))
	all = append(all, m.mods...)
	all = append(all, extra...)
	return NewModuli(all...)
}

// Product returns the product of all moduli. Every Number represents an integer below this bound.
func (m *Moduli) Product() *big.Int {
	m.prepare()
	return new(big.Int).Set(m.product)
}

// prepare computes the product and the CRT basis: coeffs[j] is congruent to 1 mod m_j and to 0 mod every other modulus.
func (m *Moduli) prepare() {
	m.once.Do(func() {
		product := big.NewInt(1)
		bigMods := make([]*big.Int, len(m.mods))
		for i, mod := range m.mods {
			bigMods[i] = new(big.Int).SetUint64(mod)
			product.Mul(product, bigMods[i])
		}

		coeffs := make([]*big.Int, len(m.mods))
		for j := range m.mods {
			others := new(big.Int).Quo(product, bigMods[j])
			inv := new(big.Int).ModInverse(others, bigMods[j])
			if inv == nil {
				// modulus 1: every residue is 0, so the coefficient is irrelevant
				inv = new(big.Int)
			}
			coeffs[j] = others.Mul(others, inv)
		}

		m.product = product
		m.coeffs = coeffs
	})
}

// Zero returns a new Number representing 0.
func (m *Moduli) Zero() *Number {
	return &Number{mods: m, res: make([]uint64, len(m.mods))}
}

// One returns a new Number representing 1.
func (m *Moduli) One() *Number {
	return m.FromUint64(1)
}

// FromUint64 returns a new Number representing v reduced modulo the product.
func (m *Moduli) FromUint64(v uint64) *Number {
	n := m.Zero()
	for i, mod := range m.mods {
		n.res[i] = v % mod
	}
	return n
}

// FromBig returns a new Number representing v reduced modulo the product. Negative values wrap.
func (m *Moduli) FromBig(v *big.Int) *Number {
	n := m.Zero()
	r := new(big.Int)
	bm := new(big.Int)
	for i, mod := range m.mods {
		bm.SetUint64(mod)
		r.Mod(v, bm)
		n.res[i] = r.Uint64()
	}
	return n
}

package perm

// columns encodes a permutation of length n as n-1 column heights. Column i (0-based) holds how far the
// value sitting at position i+2 travels left when the permutation is sorted by insertion, so column i
// never exceeds i+1. The encoding is a bijection between S_n and such height sequences.
type columns []int

// collapse sorts p into the identity by adjacent swaps of descents and returns the heights it recorded.
func (p *Perm) collapse() columns {
	cols := make(columns, p.Len()-1)
	for i := 1; i < p.Len(); i++ {
		for j := i; j >= 1 && p.Get(j) > p.Get(j+1); j-- {
			p.Swap(j)
			cols[i-1]++
		}
	}
	return cols
}

// expand rebuilds a permutation from the identity by replaying the heights right to left.
func (p *Perm) expand(cols columns) {
	for i := len(cols) - 1; i >= 0; i-- {
		for j := i - cols[i] + 1; j <= i; j++ {
			p.Swap(j + 1)
		}
	}
}

// next moves c to its successor. Heights move one unit right while they can; when the rightmost unit is
// stuck in the last column, the rightmost movable unit advances and everything after it is repacked as
// far left as the capacities allow; when nothing can move, the total grows by one and is repacked from
// the first column.
func (c columns) next() {
	last := len(c) - 1
	for last >= 0 && c[last] == 0 {
		last--
	}
	if last >= 0 && last < len(c)-1 {
		c[last]--
		c[last+1]++
		return
	}

	col := -1
	for i := 0; i < len(c)-1; i++ {
		if c[i] > 0 && c[i+1] < i+2 {
			col = i
		}
	}

	if col == -1 {
		c.fill(0, c.sum(0)+1)
		return
	}
	c[col]--
	c.fill(col+1, c.sum(col+1)+1)
}

func (c columns) sum(from int) int {
	total := 0
	for _, h := range c[from:] {
		total += h
	}
	return total
}

// fill distributes total over c[from:], filling each column to capacity before moving right.
func (c columns) fill(from, total int) {
	for i := from; i < len(c); i++ {
		if total < i+1 {
			c[i] = total
			total = 0
		} else {
			c[i] = i + 1
			total -= i + 1
		}
	}
}

// Advance replaces p with its successor in a fixed total order on S_n. Starting from the identity, n!-1
// calls visit every permutation once and end at Reversed(n). Every permutation is visited after all
// permutations that reach it by swapping an ascent, so the order is a linear extension of the weak order.
// Advancing past Reversed(n) is undefined; lengths below 2 are left unchanged.
func (p *Perm) Advance() {
	if p.Len() < 2 {
		return
	}
	cols := p.collapse()
	cols.next()
	p.expand(cols)
}

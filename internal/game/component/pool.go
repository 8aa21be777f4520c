package component

// Pool is a bounded resource such as health or mana.
//
// Invariant: 0 <= Current <= Max once the pool has been sized.
type Pool struct {
	Current int
	Max     int
}

// Resize sets a new maximum. On the first sizing (previous Max <= 1) the pool
// is filled; afterwards Current is only clamped when the maximum shrinks.
//
// Postcondition: 0 <= Current <= Max.
func (p *Pool) Resize(max int) {
	if max < 0 {
		max = 0
	}
	first := p.Max <= 1
	p.Max = max
	if first {
		p.Current = max
	}
	if p.Current > p.Max {
		p.Current = p.Max
	}
	if p.Current < 0 {
		p.Current = 0
	}
}

// Drain subtracts amount, flooring at zero, and returns the amount removed.
//
// Precondition: amount >= 0.
// Postcondition: Current >= 0.
func (p *Pool) Drain(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > p.Current {
		amount = p.Current
	}
	p.Current -= amount
	return amount
}

// Fill adds up to amount without exceeding Max and returns the amount added.
//
// Precondition: amount >= 0.
// Postcondition: Current <= Max.
func (p *Pool) Fill(amount int) int {
	if amount <= 0 {
		return 0
	}
	if missing := p.Max - p.Current; amount > missing {
		amount = missing
	}
	if amount < 0 {
		return 0
	}
	p.Current += amount
	return amount
}

// Full reports whether Current has reached Max.
func (p Pool) Full() bool { return p.Current >= p.Max }

// Depleted reports whether nothing remains.
func (p Pool) Depleted() bool { return p.Current <= 0 }

// Fraction returns Current/Max in [0, 1]; 0 when Max is 0.
func (p Pool) Fraction() float64 {
	if p.Max <= 0 {
		return 0
	}
	return float64(p.Current) / float64(p.Max)
}

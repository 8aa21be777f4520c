package stats

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
)

// Damage drains up to amount from e's health and returns the amount removed.
//
// Postcondition: health.Current >= 0.
func (c *Calculator) Damage(e ecs.Entity, amount int) int {
	var applied int
	c.health.Update(e, func(p *component.Pool) { applied = p.Drain(amount) })
	return applied
}

// Heal restores up to amount of e's health and returns the amount restored.
//
// Postcondition: health.Current <= health.Max.
func (c *Calculator) Heal(e ecs.Entity, amount int) int {
	var applied int
	c.health.Update(e, func(p *component.Pool) { applied = p.Fill(amount) })
	return applied
}

// CanPay reports whether e can pay amount of stat.
//
// health requires current > amount so that a cost can never be lethal; mana
// requires current >= amount; derived stats require value >= amount. Unknown
// stats are never payable.
func (c *Calculator) CanPay(e ecs.Entity, stat component.Stat, amount int) bool {
	switch stat {
	case component.ResourceHealth:
		p, ok := c.health.Get(e)
		return ok && p.Current > amount
	case component.ResourceMana:
		p, ok := c.mana.Get(e)
		return ok && p.Current >= amount
	}
	d, ok := c.derived.Get(e)
	if !ok {
		return false
	}
	v, known := d.Value(stat)
	return known && v >= amount
}

// Pay subtracts amount of stat from e. Derived-stat payments persist across
// recomputes until e's turn ends or the combat ends.
//
// Precondition: CanPay(e, stat, amount) is true.
func (c *Calculator) Pay(e ecs.Entity, stat component.Stat, amount int) {
	switch stat {
	case component.ResourceHealth:
		c.health.Update(e, func(p *component.Pool) { p.Drain(amount) })
	case component.ResourceMana:
		c.mana.Update(e, func(p *component.Pool) { p.Drain(amount) })
	default:
		c.derived.Update(e, func(d *component.DerivedStats) {
			v, _ := d.Value(stat)
			d.Set(stat, v-amount)
		})
		if c.debits[e] == nil {
			c.debits[e] = make(map[component.Stat]int)
		}
		c.debits[e][stat] += amount
	}
	c.logger.Debug("cost paid",
		zap.Uint64("entity", uint64(e)),
		zap.String("stat", string(stat)),
		zap.Int("amount", amount),
	)
}

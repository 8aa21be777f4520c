// Package stats recomputes derived combat stats and is the only writer of the
// DerivedStats, health and mana tables.
package stats

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/effect"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/event"
)

// Calculator recomputes DerivedStats and resizes the health and mana pools.
// It also exposes the only mutation paths for those tables: damage, healing
// and cost payment.
//
// Recompute runs on EquipmentChanged, EffectApplied and EffectExpired. Debits
// are dropped on the payer's TurnEnded and on CombatEnded.
type Calculator struct {
	world   *entity.World
	derived *ecs.Table[component.DerivedStats]
	health  *ecs.Table[component.Pool]
	mana    *ecs.Table[component.Pool]
	effects effect.Lookup
	logger  *zap.Logger

	// debits holds derived-stat costs paid during the owner's current turn.
	debits map[ecs.Entity]map[component.Stat]int
}

// NewCalculator creates a Calculator.
//
// Precondition: every argument must be non-nil.
func NewCalculator(world *entity.World, derived *ecs.Table[component.DerivedStats], health, mana *ecs.Table[component.Pool], effects effect.Lookup, logger *zap.Logger) *Calculator {
	return &Calculator{
		world:   world,
		derived: derived,
		health:  health,
		mana:    mana,
		effects: effects,
		logger:  logger,
		debits:  make(map[ecs.Entity]map[component.Stat]int),
	}
}

// Handle implements event.Handler.
func (c *Calculator) Handle(ev event.Event) {
	switch ev := ev.(type) {
	case event.EquipmentChanged:
		c.Recompute(ev.Character, nil)
	case event.EffectApplied:
		c.Recompute(ev.Target, nil)
	case event.EffectExpired:
		c.Recompute(ev.Target, nil)
	case event.TurnEnded:
		delete(c.debits, ev.EndedFor)
	case event.CombatEnded:
		c.settle()
	}
}

// settle drops every outstanding derived-stat debit and restores the payers'
// stats. A world hosts one session, so every debit belongs to the ended one.
func (c *Calculator) settle() {
	owed := c.debits
	c.debits = make(map[ecs.Entity]map[component.Stat]int)
	for e := range owed {
		c.Recompute(e, nil)
	}
}

// Recompute writes a fresh DerivedStats record for e and resizes its pools.
// archetype overrides e's Archetype component when non-nil.
//
// Order: base formula, archetype modifiers in declaration order, equipment
// flat bonuses, traits (each trait's flat modifiers then its percent
// modifiers), active effects (flat sum then one percent sum), rounding.
//
// Postcondition: no-op when e has no CoreStats.
func (c *Calculator) Recompute(e ecs.Entity, archetype []component.Modifier) {
	core, ok := c.world.Core.Get(e)
	if !ok {
		return
	}
	if archetype == nil {
		if a, ok := c.world.Archetypes.Get(e); ok {
			archetype = a.Modifiers
		}
	}
	eq, _ := c.world.Equipment.Get(e)
	traits, _ := c.world.Traits.Get(e)
	active, _ := c.world.Effects.Get(e)

	d := Compute(core, archetype, eq, traits, effect.Sum(active, c.effects))
	for s, amount := range c.debits[e] {
		v, _ := d.Value(s)
		d.Set(s, v-amount)
	}
	c.derived.Set(e, d)

	hp, _ := c.health.Get(e)
	hp.Resize(d.MaxHealth)
	c.health.Set(e, hp)
	mp, _ := c.mana.Get(e)
	mp.Resize(d.MaxMana)
	c.mana.Set(e, mp)

	c.logger.Debug("stats recomputed",
		zap.Uint64("entity", uint64(e)),
		zap.Int("attack", d.Attack),
		zap.Int("defense", d.Defense),
		zap.Int("speed", d.Speed),
		zap.Int("max_health", d.MaxHealth),
		zap.Int("health", hp.Current),
	)
}

// Compute is the pure stat formula behind Recompute.
func Compute(core component.CoreStats, archetype []component.Modifier, eq component.Equipment, traits component.Traits, fx effect.Totals) component.DerivedStats {
	vals := base(core)
	for _, m := range archetype {
		applyModifier(vals, m)
	}
	for _, item := range eq {
		for s, bonus := range item.Bonuses {
			if _, ok := vals[s]; ok {
				vals[s] += float64(bonus)
			}
		}
	}
	for _, tr := range traits {
		for _, m := range tr.Modifiers {
			if m.Type == component.Flat {
				applyModifier(vals, m)
			}
		}
		for _, m := range tr.Modifiers {
			if m.Type == component.Percent {
				applyModifier(vals, m)
			}
		}
	}
	var d component.DerivedStats
	for _, s := range component.DerivedStatKeys() {
		d.Set(s, int(math.Round(fx.Apply(s, vals[s]))))
	}
	return d
}

func base(core component.CoreStats) map[component.Stat]float64 {
	str := float64(core.Strength)
	dex := float64(core.Dexterity)
	in := float64(core.Intelligence)
	return map[component.Stat]float64{
		component.StatAttack:      2 * str,
		component.StatMagicAttack: 2 * in,
		component.StatDefense:     str / 2,
		component.StatMagicResist: in / 2,
		component.StatCritChance:  5 + dex/4,
		component.StatCritDamage:  150,
		component.StatDodge:       dex / 2,
		component.StatSpeed:       10 + dex,
		component.StatAccuracy:    90 + dex/2,
		component.StatMaxHealth:   50 + 5*str,
		component.StatMaxMana:     20 + 5*in,
	}
}

func applyModifier(vals map[component.Stat]float64, m component.Modifier) {
	v, ok := vals[m.Stat]
	if !ok {
		return
	}
	switch m.Type {
	case component.Flat:
		vals[m.Stat] = v + m.Value
	case component.Percent:
		vals[m.Stat] = v * (1 + m.Value/100)
	}
}

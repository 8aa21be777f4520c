package combat

import (
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
)

// DamageInput carries every number that feeds one damage resolution.
type DamageInput struct {
	Scaling    int
	Power      int
	Defense    int
	Critical   bool
	CritDamage int
	// Shielded is set when the target stands in the back row behind a living
	// front-row ally.
	Shielded bool
}

// Damage computes final damage:
//
//	raw = Scaling*ScalingMultiplier + Power*PowerMultiplier - Defense
//	raw *= CritDamage/100 on a critical
//	raw /= 2 when Shielded
//
// Postcondition: the result is max(1, trunc(raw)).
func (r Rules) Damage(in DamageInput) int {
	raw := float64(in.Scaling)*r.ScalingMultiplier + float64(in.Power)*r.PowerMultiplier - float64(in.Defense)
	if in.Critical {
		raw *= float64(in.CritDamage) / 100
	}
	if in.Shielded {
		raw /= 2
	}
	final := int(raw)
	if final < 1 {
		final = 1
	}
	return final
}

// HitChance returns max(MinHitChance, accuracy - dodge) as a percentage.
func (r Rules) HitChance(accuracy, dodge int) int {
	return max(r.MinHitChance, accuracy-dodge)
}

// HealAmount returns trunc(Scaling*ScalingMultiplier + Power*PowerMultiplier), floored at 0.
func (r Rules) HealAmount(scaling, power int) int {
	return max(0, int(float64(scaling)*r.ScalingMultiplier+float64(power)*r.PowerMultiplier))
}

type skillUse struct {
	def    *skill.Def
	target ecs.Entity
}

// prepareSkill resolves the skill and validates the chosen target. A non-empty
// reason rejects the action without consuming the turn.
func (m *Machine) prepareSkill(sessionID, actor ecs.Entity, skillID string, target ecs.Entity) (*skillUse, string) {
	def, ok := m.skills.Get(skillID)
	if !ok {
		return nil, "unknown skill"
	}
	if skillID != m.rules.BasicAttack {
		book, _ := m.world.Skillbooks.Get(actor)
		if !slices.Contains(book, skillID) {
			return nil, "skill not known by actor"
		}
	}
	needsTarget := false
	for _, e := range def.Effects {
		if !e.StartsFromSelf() {
			needsTarget = true
		}
	}
	if needsTarget && !m.inSession(sessionID, target) {
		return nil, "target is not a combatant in this session"
	}
	return &skillUse{def: def, target: target}, ""
}

// useSkill pays the skill's costs and resolves each effect against its own
// expanded target set. An unaffordable skill wastes the turn silently.
func (m *Machine) useSkill(sessionID, actor ecs.Entity, use *skillUse) {
	if !m.affordable(actor, use.def.Costs) {
		m.logger.Info("skill unaffordable, turn wasted", entityField("actor", actor), zap.String("skill", use.def.ID))
		return
	}
	m.pay(actor, use.def.Costs)
	m.logger.Debug("skill used", entityField("actor", actor), zap.String("skill", use.def.ID), entityField("target", use.target))

	for _, eff := range use.def.Effects {
		start := use.target
		if eff.StartsFromSelf() {
			start = actor
		}
		for _, t := range m.expand(sessionID, actor, start, eff.PatternOrDefault()) {
			switch eff.Type {
			case skill.Damage:
				m.dealDamage(actor, t, eff)
			case skill.Heal:
				m.heal(actor, t, eff)
			case skill.ApplyEffect:
				m.bus.Publish(event.EffectApplied{Source: actor, Target: t, EffectID: eff.EffectID})
			}
		}
	}
}

func (m *Machine) dealDamage(attacker, target ecs.Entity, eff skill.Effect) {
	a, _ := m.world.Derived.Get(attacker)
	d, _ := m.world.Derived.Get(target)
	if !m.roller.Check("hit", m.rules.HitChance(a.Accuracy, d.Dodge)) {
		m.bus.Publish(event.AttackMissed{Attacker: attacker, Target: target})
		return
	}
	scaling, _ := a.Value(eff.ScalingStat)
	crit := m.roller.Check("crit", a.CritChance)
	dmg := m.rules.Damage(DamageInput{
		Scaling:    scaling,
		Power:      eff.Power,
		Defense:    d.Defense,
		Critical:   crit,
		CritDamage: a.CritDamage,
		Shielded:   m.shielded(target),
	})
	m.ledger.Damage(target, dmg)
	m.bus.Publish(event.DamageDealt{Attacker: attacker, Target: target, Damage: dmg, Critical: crit})
}

func (m *Machine) heal(healer, target ecs.Entity, eff skill.Effect) {
	h, _ := m.world.Derived.Get(healer)
	scaling, _ := h.Value(eff.ScalingStat)
	applied := m.ledger.Heal(target, m.rules.HealAmount(scaling, eff.Power))
	m.bus.Publish(event.HealthHealed{Healer: healer, Target: target, Amount: applied})
}

// shielded reports whether target is in the back row while another living
// member of its team holds the front row.
func (m *Machine) shielded(target ecs.Entity) bool {
	c, ok := m.combatants.Get(target)
	if !ok || c.Row != component.Back {
		return false
	}
	s, ok := m.sessions.Get(c.Session)
	if !ok {
		return false
	}
	for _, e := range s.Combatants {
		if e == target {
			continue
		}
		o, ok := m.combatants.Get(e)
		if ok && o.Team == c.Team && o.Row == component.Front && m.world.Living(e) {
			return true
		}
	}
	return false
}

package combat

import (
	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
)

// totalCosts merges cost entries naming the same stat, keeping first-seen order.
func totalCosts(costs []skill.Cost) []skill.Cost {
	var out []skill.Cost
	idx := make(map[component.Stat]int)
	for _, c := range costs {
		if i, ok := idx[c.Stat]; ok {
			out[i].Amount += c.Amount
			continue
		}
		idx[c.Stat] = len(out)
		out = append(out, c)
	}
	return out
}

// affordable reports whether actor can pay every cost at once.
func (m *Machine) affordable(actor ecs.Entity, costs []skill.Cost) bool {
	for _, c := range totalCosts(costs) {
		if !m.ledger.CanPay(actor, c.Stat, c.Amount) {
			return false
		}
	}
	return true
}

// pay deducts every cost.
//
// Precondition: affordable(actor, costs) is true.
func (m *Machine) pay(actor ecs.Entity, costs []skill.Cost) {
	for _, c := range totalCosts(costs) {
		m.ledger.Pay(actor, c.Stat, c.Amount)
	}
}

// Affordable reports whether actor can currently pay for def. AI profiles use
// it to avoid choosing skills that would waste the turn.
func (m *Machine) Affordable(actor ecs.Entity, def *skill.Def) bool {
	return m.affordable(actor, def.Costs)
}

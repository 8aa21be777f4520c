package combat

import (
	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
)

// expand turns the starting target into the concrete target list for pattern.
//
//	SINGLE      the starting target
//	FRONT_ROW   living members of the starting target's team in the front row
//	BACK_ROW    living members of the starting target's team in the back row
//	ALL_ENEMIES living members of the team opposing the actor
//
// ADJACENT and unrecognised patterns resolve as SINGLE; rows carry no order,
// so adjacency has no meaning. Dead combatants are never returned. Results
// follow the session's roster order.
func (m *Machine) expand(sessionID, actor, start ecs.Entity, pattern skill.Pattern) []ecs.Entity {
	switch pattern {
	case skill.FrontRow, skill.BackRow:
		sc, ok := m.combatants.Get(start)
		if !ok {
			return nil
		}
		row := component.Front
		if pattern == skill.BackRow {
			row = component.Back
		}
		return m.members(sessionID, func(c component.Combatant) bool { return c.Team == sc.Team && c.Row == row })
	case skill.AllEnemies:
		ac, ok := m.combatants.Get(actor)
		if !ok {
			return nil
		}
		return m.members(sessionID, func(c component.Combatant) bool { return c.Team == ac.Team.Opponent() })
	default:
		if m.inSession(sessionID, start) && m.world.Living(start) {
			return []ecs.Entity{start}
		}
		return nil
	}
}

// members returns the living session combatants accepted by keep.
func (m *Machine) members(sessionID ecs.Entity, keep func(component.Combatant) bool) []ecs.Entity {
	s, ok := m.sessions.Get(sessionID)
	if !ok {
		return nil
	}
	var out []ecs.Entity
	for _, e := range s.Combatants {
		c, ok := m.combatants.Get(e)
		if ok && keep(c) && m.world.Living(e) {
			out = append(out, e)
		}
	}
	return out
}

// inSession reports whether e is a combatant of sessionID.
func (m *Machine) inSession(sessionID, e ecs.Entity) bool {
	c, ok := m.combatants.Get(e)
	return ok && c.Session == sessionID
}

package ai

import (
	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
)

// BuildWorldState snapshots the session for actor.
//
// Precondition: world must not be nil.
// Postcondition: false if the session is missing or actor is not one of its
// combatants; otherwise ws.Actor.Entity == actor and every combatant still
// carrying a Combatant component is represented in roster order.
func BuildWorldState(world *entity.World, session, actor ecs.Entity) (*WorldState, bool) {
	s, ok := world.Sessions.Get(session)
	if !ok {
		return nil, false
	}
	ws := &WorldState{Session: session}
	found := false
	for _, e := range s.Combatants {
		c, ok := world.Combatants.Get(e)
		if !ok || c.Session != session {
			continue
		}
		hp, _ := world.Health.Get(e)
		cs := CombatantState{
			Entity: e,
			Name:   world.Name(e),
			Team:   c.Team,
			Row:    c.Row,
			HP:     hp.Current,
			MaxHP:  hp.Max,
		}
		ws.Combatants = append(ws.Combatants, cs)
		if e == actor {
			ws.Actor = cs
			found = true
		}
	}
	if !found {
		return nil, false
	}
	ws.Profile, _ = world.Profiles.Get(actor)
	book, _ := world.Skillbooks.Get(actor)
	ws.Skills = append([]string(nil), book...)
	return ws, true
}

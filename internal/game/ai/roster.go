package ai

import (
	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// Roster exposes the calling actor's session to scripts, seen from that actor.
//
// Postcondition: the returned Roster yields nil for actors not in combat.
func Roster(world *entity.World) scripting.Roster {
	return func(actorID uint64) []scripting.CombatantInfo {
		actor := ecs.Entity(actorID)
		c, ok := world.Combatants.Get(actor)
		if !ok {
			return nil
		}
		ws, ok := BuildWorldState(world, c.Session, actor)
		if !ok {
			return nil
		}
		out := make([]scripting.CombatantInfo, 0, len(ws.Combatants))
		for _, c := range ws.Combatants {
			out = append(out, scripting.CombatantInfo{
				ID:    uint64(c.Entity),
				Name:  c.Name,
				Team:  string(c.Team),
				Row:   c.Row.String(),
				HP:    c.HP,
				MaxHP: c.MaxHP,
				Ally:  c.Team == ws.Actor.Team,
				Self:  c.Entity == ws.Actor.Entity,
			})
		}
		return out
	}
}

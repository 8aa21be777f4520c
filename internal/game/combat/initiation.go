package combat

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/event"
)

// Participant is one roster entry handed to Begin.
type Participant struct {
	Entity ecs.Entity
	Row    component.Row
}

// Begin creates a session from two rosters and publishes CombatStarted.
//
// Each participant receives a Combatant tagged with its roster's team, the
// requested row, and initiative = speed + a roll of the configured
// initiative dice. Participants that do not exist, have no derived stats,
// are already in combat, or are listed twice are skipped with a warning.
//
// Postcondition: the returned session entity carries a Session whose
// Combatants list is in roster order, team1 first. TurnQueue is filled when
// the machine handles CombatStarted.
func (m *Machine) Begin(team1, team2 []Participant) ecs.Entity {
	session := m.reg.Create()
	var ids []ecs.Entity
	seen := make(map[ecs.Entity]bool)
	rosters := []struct {
		team   component.Team
		roster []Participant
	}{
		{component.Team1, team1},
		{component.Team2, team2},
	}
	for _, r := range rosters {
		for _, p := range r.roster {
			if reason := m.rejectParticipant(p.Entity, seen); reason != "" {
				m.logger.Warn("skipping combat participant",
					entityField("entity", p.Entity),
					zap.String("team", string(r.team)),
					zap.String("reason", reason),
				)
				continue
			}
			seen[p.Entity] = true
			d, _ := m.world.Derived.Get(p.Entity)
			roll := m.roller.Roll(m.rules.Initiative).Total()
			m.combatants.Set(p.Entity, component.Combatant{
				Session:    session,
				Team:       r.team,
				Row:        p.Row,
				Initiative: d.Speed + roll,
			})
			ids = append(ids, p.Entity)
		}
	}
	m.sessions.Set(session, component.Session{Combatants: ids})
	m.logger.Info("combat initiated",
		entityField("session", session),
		zap.Int("team1", len(team1)),
		zap.Int("team2", len(team2)),
		zap.Int("combatants", len(ids)),
	)
	m.bus.Publish(event.CombatStarted{Session: session, Combatants: slices.Clone(ids)})
	return session
}

func (m *Machine) rejectParticipant(e ecs.Entity, seen map[ecs.Entity]bool) string {
	switch {
	case !m.world.Alive(e):
		return "entity does not exist"
	case seen[e]:
		return "listed twice"
	case m.combatants.Has(e):
		return "already in combat"
	case !m.world.Derived.Has(e):
		return "no derived stats"
	}
	return ""
}

// turnOrder returns combatants sorted by initiative descending. The sort is
// stable, so ties keep roster order.
func (m *Machine) turnOrder(combatants []ecs.Entity) []ecs.Entity {
	queue := slices.Clone(combatants)
	slices.SortStableFunc(queue, func(a, b ecs.Entity) int {
		ca, _ := m.combatants.Get(a)
		cb, _ := m.combatants.Get(b)
		return cmp.Compare(cb.Initiative, ca.Initiative)
	})
	return queue
}

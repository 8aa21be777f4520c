package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/event"
)

// session returns the live, not-yet-ended session stored on e.
func (m *Machine) session(e ecs.Entity) (component.Session, bool) {
	s, ok := m.sessions.Get(e)
	if !ok || s.Ended {
		return component.Session{}, false
	}
	return s, true
}

// start sorts the turn queue, opens round 1 and hands the first turn to the
// first living combatant.
func (m *Machine) start(sessionID ecs.Entity) {
	s, ok := m.session(sessionID)
	if !ok {
		m.logger.Warn("combat started for unknown session", entityField("session", sessionID))
		return
	}
	s.TurnQueue = m.turnOrder(s.Combatants)
	s.CurrentTurnIndex = 0
	s.RoundNumber = 1
	m.sessions.Set(sessionID, s)
	m.bus.Publish(event.RoundStarted{Session: sessionID, Round: 1})
	if m.checkWin(sessionID) {
		return
	}
	for i, e := range s.TurnQueue {
		if m.world.Living(e) {
			m.sessions.Update(sessionID, func(s *component.Session) { s.CurrentTurnIndex = i })
			m.bus.Defer(event.TurnStarted{Session: sessionID, Active: e})
			return
		}
	}
}

// turnStarted clears the active combatant's action flag. A combatant killed by
// an effect tick loses its turn.
func (m *Machine) turnStarted(ev event.TurnStarted) {
	s, ok := m.session(ev.Session)
	if !ok || s.Active() != ev.Active {
		return
	}
	m.combatants.Update(ev.Active, func(c *component.Combatant) { c.HasTakenAction = false })
	if m.world.Living(ev.Active) {
		return
	}
	m.logger.Debug("active combatant died at turn start", entityField("actor", ev.Active))
	if m.checkWin(ev.Session) {
		return
	}
	m.bus.Publish(event.TurnEnded{Session: ev.Session, EndedFor: ev.Active})
}

// act resolves one action for the active combatant. Rejected actions change
// nothing and leave the turn open.
func (m *Machine) act(ev event.ActionTaken) {
	s, ok := m.session(ev.Session)
	if !ok {
		m.logger.Warn("action for unknown session", entityField("session", ev.Session), entityField("actor", ev.Actor))
		return
	}
	c, ok := m.combatants.Get(ev.Actor)
	switch {
	case !ok || c.Session != ev.Session:
		m.logger.Warn("action from non-combatant", entityField("session", ev.Session), entityField("actor", ev.Actor))
		return
	case s.Active() != ev.Actor:
		m.logger.Warn("action out of turn", entityField("actor", ev.Actor), entityField("active", s.Active()))
		return
	case c.HasTakenAction:
		m.logger.Warn("actor already acted this turn", entityField("actor", ev.Actor))
		return
	case !m.world.Living(ev.Actor):
		m.logger.Warn("action from defeated combatant", entityField("actor", ev.Actor))
		return
	}

	var use *skillUse
	switch ev.Type {
	case event.ActionSkill:
		u, reason := m.prepareSkill(ev.Session, ev.Actor, ev.SkillID, ev.Target)
		if reason != "" {
			m.logger.Warn("skill rejected",
				entityField("actor", ev.Actor),
				zap.String("skill", ev.SkillID),
				entityField("target", ev.Target),
				zap.String("reason", reason),
			)
			return
		}
		use = u
	case event.ActionSwapRow, event.ActionItem, event.ActionFlee:
	default:
		m.logger.Warn("unknown action type", entityField("actor", ev.Actor), zap.Stringer("action", ev.Type))
		return
	}

	m.combatants.Update(ev.Actor, func(c *component.Combatant) { c.HasTakenAction = true })
	switch ev.Type {
	case event.ActionSwapRow:
		m.combatants.Update(ev.Actor, func(c *component.Combatant) { c.Row = c.Row.Toggle() })
	case event.ActionItem:
		m.logger.Debug("item used", entityField("actor", ev.Actor))
	case event.ActionSkill:
		m.useSkill(ev.Session, ev.Actor, use)
	case event.ActionFlee:
		m.flee(ev.Session, ev.Actor)
		return
	}

	if m.checkWin(ev.Session) {
		return
	}
	m.bus.Publish(event.TurnEnded{Session: ev.Session, EndedFor: ev.Actor})
}

// flee ends the session with the actor's team losing.
func (m *Machine) flee(sessionID, actor ecs.Entity) {
	if _, ok := m.session(sessionID); !ok {
		m.logger.Warn("flee from unknown session", entityField("session", sessionID), entityField("actor", actor))
		return
	}
	c, ok := m.combatants.Get(actor)
	if !ok || c.Session != sessionID {
		m.logger.Warn("flee from non-combatant", entityField("session", sessionID), entityField("actor", actor))
		return
	}
	m.logger.Info("combatant fled", entityField("actor", actor), zap.String("team", string(c.Team)))
	m.end(sessionID, c.Team.Opponent())
}

// advance moves the turn pointer past ev.EndedFor to the next living
// combatant, probing at most len(TurnQueue) slots. Wrapping past the end of
// the queue opens a new round.
func (m *Machine) advance(ev event.TurnEnded) {
	s, ok := m.session(ev.Session)
	if !ok || s.Active() != ev.EndedFor {
		return
	}
	n := len(s.TurnQueue)
	next, round := -1, s.RoundNumber
	for probe := 1; probe <= n; probe++ {
		pos := s.CurrentTurnIndex + probe
		if pos == n {
			round++
		}
		idx := pos % n
		if m.world.Living(s.TurnQueue[idx]) && m.combatants.Has(s.TurnQueue[idx]) {
			next = idx
			break
		}
	}
	if next < 0 {
		if !m.checkWin(ev.Session) {
			m.logger.Error("no living combatant to take the turn", entityField("session", ev.Session))
			m.end(ev.Session, component.Team2)
		}
		return
	}
	if m.rules.MaxRounds > 0 && round > m.rules.MaxRounds {
		m.logger.Warn("round limit reached", entityField("session", ev.Session), zap.Int("max_rounds", m.rules.MaxRounds))
		m.end(ev.Session, component.Team2)
		return
	}
	newRound := round != s.RoundNumber
	m.sessions.Update(ev.Session, func(s *component.Session) {
		s.CurrentTurnIndex = next
		s.RoundNumber = round
	})
	if newRound {
		m.bus.Publish(event.RoundStarted{Session: ev.Session, Round: round})
	}
	m.bus.Defer(event.TurnStarted{Session: ev.Session, Active: s.TurnQueue[next]})
}

// checkWin ends the session when a team has no living members and reports
// whether it did.
func (m *Machine) checkWin(sessionID ecs.Entity) bool {
	s, ok := m.session(sessionID)
	if !ok {
		return false
	}
	living := map[component.Team]int{}
	for _, e := range s.Combatants {
		c, ok := m.combatants.Get(e)
		if ok && m.world.Living(e) {
			living[c.Team]++
		}
	}
	switch {
	case living[component.Team1] > 0 && living[component.Team2] > 0:
		return false
	case living[component.Team1] > 0:
		m.end(sessionID, component.Team1)
	default:
		m.end(sessionID, component.Team2)
	}
	return true
}

// end tears the session down: reward events when team1 wins, Combatant
// components stripped, session entity destroyed, defeated mobs despawned,
// then CombatEnded.
func (m *Machine) end(sessionID ecs.Entity, winner component.Team) {
	s, ok := m.session(sessionID)
	if !ok {
		return
	}
	m.sessions.Update(sessionID, func(s *component.Session) { s.Ended = true })

	var defeated []ecs.Entity
	teams := make(map[ecs.Entity]component.Team, len(s.Combatants))
	for _, e := range s.Combatants {
		c, _ := m.combatants.Get(e)
		teams[e] = c.Team
		if m.world.Alive(e) && !m.world.Living(e) {
			defeated = append(defeated, e)
		}
	}

	if winner == component.Team1 {
		character := m.firstLiving(s, teams, component.Team1)
		for _, e := range defeated {
			if teams[e] != component.Team2 {
				continue
			}
			id, _ := m.world.Identities.Get(e)
			m.bus.Publish(event.EnemyDefeated{Enemy: e, Character: character, Level: id.Level})
		}
	}

	for _, e := range s.Combatants {
		m.combatants.Delete(e)
	}
	m.reg.Destroy(sessionID)

	if m.rules.DespawnDefeated {
		for _, e := range defeated {
			if id, _ := m.world.Identities.Get(e); !id.Player {
				m.reg.Destroy(e)
			}
		}
	}

	m.logger.Info("combat ended",
		entityField("session", sessionID),
		zap.String("winner", string(winner)),
		zap.Int("rounds", s.RoundNumber),
		zap.Int("defeated", len(defeated)),
	)
	m.bus.Publish(event.CombatEnded{Session: sessionID, WinningTeam: winner})
}

// firstLiving returns the first living member of team in turn order.
func (m *Machine) firstLiving(s component.Session, teams map[ecs.Entity]component.Team, team component.Team) ecs.Entity {
	order := s.TurnQueue
	if len(order) == 0 {
		order = s.Combatants
	}
	for _, e := range order {
		if teams[e] == team && m.world.Living(e) {
			return e
		}
	}
	return ecs.NilEntity
}

// Package ai decides actions for non-player combatants.
//
// The Decider subscribes after the combat state machine. On each TurnStarted
// whose active combatant carries an AI profile it plans one action through the
// profile rule table and publishes it; when no valid action exists, or the
// state machine rejects the planned one, it closes the turn with TurnEnded.
package ai

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/event"
)

// Decider is the AI Decision system.
type Decider struct {
	world   *entity.World
	planner *Planner
	bus     *event.Bus
	logger  *zap.Logger
}

// NewDecider constructs a Decider.
//
// Precondition: every argument must be non-nil.
func NewDecider(world *entity.World, planner *Planner, bus *event.Bus, logger *zap.Logger) *Decider {
	return &Decider{world: world, planner: planner, bus: bus, logger: logger}
}

// Handle implements event.Handler.
func (d *Decider) Handle(ev event.Event) {
	if ts, ok := ev.(event.TurnStarted); ok {
		d.turnStarted(ts)
	}
}

func (d *Decider) turnStarted(ev event.TurnStarted) {
	if !d.awaiting(ev.Session, ev.Active) {
		return
	}
	if _, ok := d.world.Profiles.Get(ev.Active); !ok {
		return
	}
	if id, _ := d.world.Identities.Get(ev.Active); id.Player {
		return
	}
	actor := zap.Uint64("actor", uint64(ev.Active))

	ws, ok := BuildWorldState(d.world, ev.Session, ev.Active)
	if !ok {
		return
	}
	act, ok := d.planner.Plan(ws)
	if !ok {
		d.logger.Info("no valid action, ending turn", actor, zap.String("profile", string(ws.Profile)))
		d.bus.Publish(event.TurnEnded{Session: ev.Session, EndedFor: ev.Active})
		return
	}
	d.logger.Debug("action planned", actor,
		zap.String("profile", string(ws.Profile)),
		zap.String("skill", act.SkillID),
		zap.Uint64("target", uint64(act.Target)),
	)
	d.bus.Publish(event.ActionTaken{
		Session: ev.Session,
		Actor:   ev.Active,
		Type:    event.ActionSkill,
		SkillID: act.SkillID,
		Target:  act.Target,
	})
	if d.awaiting(ev.Session, ev.Active) {
		d.logger.Warn("planned action rejected, ending turn", actor, zap.String("skill", act.SkillID))
		d.bus.Publish(event.TurnEnded{Session: ev.Session, EndedFor: ev.Active})
	}
}

// awaiting reports whether session is live, actor holds its turn pointer and
// actor is alive and has not yet acted.
func (d *Decider) awaiting(session, actor ecs.Entity) bool {
	s, ok := d.world.Sessions.Get(session)
	if !ok || s.Ended || s.Active() != actor {
		return false
	}
	c, ok := d.world.Combatants.Get(actor)
	if !ok || c.HasTakenAction {
		return false
	}
	return d.world.Living(actor)
}

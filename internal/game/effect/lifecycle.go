package effect

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/event"
)

// Health applies tick damage and healing to the owner's health pool.
type Health interface {
	// Damage drains up to amount, never below zero, and returns the amount removed.
	Damage(target ecs.Entity, amount int) int
	// Heal restores up to amount, never above max, and returns the amount restored.
	Heal(target ecs.Entity, amount int) int
}

// Lifecycle is the only writer of the ActiveEffects table.
//
// It materialises effect instances on EffectApplied and ticks, decrements and
// expires them on TurnStarted for their owner.
type Lifecycle struct {
	world   *entity.World
	effects *ecs.Table[component.ActiveEffects]
	defs    Lookup
	health  Health
	bus     *event.Bus
	logger  *zap.Logger
}

// NewLifecycle creates the lifecycle system.
//
// Precondition: every argument must be non-nil.
func NewLifecycle(world *entity.World, effects *ecs.Table[component.ActiveEffects], defs Lookup, health Health, bus *event.Bus, logger *zap.Logger) *Lifecycle {
	return &Lifecycle{world: world, effects: effects, defs: defs, health: health, bus: bus, logger: logger}
}

// Handle implements event.Handler.
func (l *Lifecycle) Handle(ev event.Event) {
	switch ev := ev.(type) {
	case event.EffectApplied:
		l.attach(ev)
	case event.TurnStarted:
		l.tick(ev.Active)
	}
}

func (l *Lifecycle) attach(ev event.EffectApplied) {
	def, ok := l.defs.Get(ev.EffectID)
	if !ok {
		l.logger.Warn("unknown effect", zap.String("effect", ev.EffectID), zap.Uint64("target", uint64(ev.Target)))
		return
	}
	if !l.world.Alive(ev.Target) {
		l.logger.Warn("effect target does not exist", zap.String("effect", ev.EffectID), zap.Uint64("target", uint64(ev.Target)))
		return
	}
	list, _ := l.effects.Get(ev.Target)
	list = append(append(component.ActiveEffects(nil), list...), component.ActiveEffect{
		EffectID:        def.ID,
		Name:            def.Name,
		SourceID:        ev.Source,
		DurationInTurns: def.BaseDuration,
	})
	l.effects.Set(ev.Target, list)
	l.logger.Debug("effect attached",
		zap.String("effect", def.ID),
		zap.Uint64("target", uint64(ev.Target)),
		zap.Int("instances", len(list)),
	)
}

// tick processes owner's instances in attachment order. Health changes are
// applied in order; the resulting events are published after the updated list
// has been stored so that handlers observe the post-tick state.
func (l *Lifecycle) tick(owner ecs.Entity) {
	list, ok := l.effects.Get(owner)
	if !ok || len(list) == 0 {
		return
	}
	var (
		pending []event.Event
		kept    = make(component.ActiveEffects, 0, len(list))
	)
	for _, inst := range list {
		if def, ok := l.defs.Get(inst.EffectID); ok && def.Tick != nil {
			switch def.Tick.Type {
			case TickDamage:
				l.health.Damage(owner, def.Tick.Power)
				pending = append(pending, event.DamageDealt{Attacker: inst.SourceID, Target: owner, Damage: def.Tick.Power})
			case TickHeal:
				healed := l.health.Heal(owner, def.Tick.Power)
				pending = append(pending, event.HealthHealed{Healer: inst.SourceID, Target: owner, Amount: healed})
			}
		} else if !ok {
			l.logger.Warn("ticking unknown effect", zap.String("effect", inst.EffectID), zap.Uint64("owner", uint64(owner)))
		}
		inst.DurationInTurns--
		if inst.DurationInTurns <= 0 {
			pending = append(pending, event.EffectExpired{Target: owner, EffectID: inst.EffectID})
			continue
		}
		kept = append(kept, inst)
	}
	if len(kept) == 0 {
		l.effects.Delete(owner)
	} else {
		l.effects.Set(owner, kept)
	}
	for _, ev := range pending {
		l.bus.Publish(ev)
	}
}

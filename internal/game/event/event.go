// Package event defines the closed set of combat events and the synchronous bus
// that carries them between systems.
package event

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
)

// Event is implemented only by the types in this package.
type Event interface {
	// Name returns the wire name of the event, e.g. "turnStarted".
	Name() string
	fields() []zap.Field
}

func entityField(key string, e ecs.Entity) zap.Field { return zap.Uint64(key, uint64(e)) }

// ActionType identifies what a combatant does with its turn.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown ActionType = iota // zero value; intentionally invalid
	ActionSkill                     // use a known skill on a target
	ActionSwapRow                   // toggle front/back row
	ActionItem                      // item already applied by the inventory collaborator
	ActionFlee                      // end combat, actor's team loses
)

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionSkill:
		return "skill"
	case ActionSwapRow:
		return "swap_row"
	case ActionItem:
		return "item"
	case ActionFlee:
		return "flee"
	default:
		return "unknown"
	}
}

// ParseActionType converts a name produced by String back into an ActionType.
// Unrecognised names map to ActionUnknown.
func ParseActionType(s string) ActionType {
	switch s {
	case "skill":
		return ActionSkill
	case "swap_row":
		return ActionSwapRow
	case "item":
		return ActionItem
	case "flee":
		return ActionFlee
	default:
		return ActionUnknown
	}
}

// CombatStarted announces a freshly created session.
type CombatStarted struct {
	Session    ecs.Entity
	Combatants []ecs.Entity
}

func (CombatStarted) Name() string { return "combatStarted" }
func (e CombatStarted) fields() []zap.Field {
	return []zap.Field{entityField("session", e.Session), zap.Int("combatants", len(e.Combatants))}
}

// ActionTaken is issued by a player command or the AI for the active combatant.
type ActionTaken struct {
	Session ecs.Entity
	Actor   ecs.Entity
	Type    ActionType
	SkillID string
	Target  ecs.Entity
}

func (ActionTaken) Name() string { return "actionTaken" }
func (e ActionTaken) fields() []zap.Field {
	return []zap.Field{
		entityField("session", e.Session), entityField("actor", e.Actor),
		zap.Stringer("action", e.Type), zap.String("skill", e.SkillID), entityField("target", e.Target),
	}
}

// FleeAttempt ends the combat with the actor's team losing.
type FleeAttempt struct {
	Session ecs.Entity
	Actor   ecs.Entity
}

func (FleeAttempt) Name() string { return "fleeAttempt" }
func (e FleeAttempt) fields() []zap.Field {
	return []zap.Field{entityField("session", e.Session), entityField("actor", e.Actor)}
}

// TurnStarted hands the turn to Active.
type TurnStarted struct {
	Session ecs.Entity
	Active  ecs.Entity
}

func (TurnStarted) Name() string { return "turnStarted" }
func (e TurnStarted) fields() []zap.Field {
	return []zap.Field{entityField("session", e.Session), entityField("active", e.Active)}
}

// RoundStarted is published when the turn pointer wraps to the head of the queue.
type RoundStarted struct {
	Session ecs.Entity
	Round   int
}

func (RoundStarted) Name() string { return "roundStarted" }
func (e RoundStarted) fields() []zap.Field {
	return []zap.Field{entityField("session", e.Session), zap.Int("round", e.Round)}
}

// TurnEnded closes EndedFor's turn; the state machine advances on it.
type TurnEnded struct {
	Session  ecs.Entity
	EndedFor ecs.Entity
}

func (TurnEnded) Name() string { return "turnEnded" }
func (e TurnEnded) fields() []zap.Field {
	return []zap.Field{entityField("session", e.Session), entityField("ended_for", e.EndedFor)}
}

// DamageDealt reports damage applied to Target.
type DamageDealt struct {
	Attacker ecs.Entity
	Target   ecs.Entity
	Damage   int
	Critical bool
}

func (DamageDealt) Name() string { return "damageDealt" }
func (e DamageDealt) fields() []zap.Field {
	return []zap.Field{
		entityField("attacker", e.Attacker), entityField("target", e.Target),
		zap.Int("damage", e.Damage), zap.Bool("critical", e.Critical),
	}
}

// AttackMissed reports a damage effect that failed its hit roll.
type AttackMissed struct {
	Attacker ecs.Entity
	Target   ecs.Entity
}

func (AttackMissed) Name() string { return "attackMissed" }
func (e AttackMissed) fields() []zap.Field {
	return []zap.Field{entityField("attacker", e.Attacker), entityField("target", e.Target)}
}

// HealthHealed reports the amount of health actually restored.
type HealthHealed struct {
	Healer ecs.Entity
	Target ecs.Entity
	Amount int
}

func (HealthHealed) Name() string { return "healthHealed" }
func (e HealthHealed) fields() []zap.Field {
	return []zap.Field{entityField("healer", e.Healer), entityField("target", e.Target), zap.Int("amount", e.Amount)}
}

// EffectApplied asks the effect lifecycle to attach EffectID to Target.
type EffectApplied struct {
	Source   ecs.Entity
	Target   ecs.Entity
	EffectID string
}

func (EffectApplied) Name() string { return "effectApplied" }
func (e EffectApplied) fields() []zap.Field {
	return []zap.Field{entityField("source", e.Source), entityField("target", e.Target), zap.String("effect", e.EffectID)}
}

// EffectExpired reports an effect instance removed after its last turn.
type EffectExpired struct {
	Target   ecs.Entity
	EffectID string
}

func (EffectExpired) Name() string { return "effectExpired" }
func (e EffectExpired) fields() []zap.Field {
	return []zap.Field{entityField("target", e.Target), zap.String("effect", e.EffectID)}
}

// EnemyDefeated is the reward hook published for each defeated team2 member
// when team1 wins.
type EnemyDefeated struct {
	Enemy     ecs.Entity
	Character ecs.Entity
	Level     int
}

func (EnemyDefeated) Name() string { return "enemyDefeated" }
func (e EnemyDefeated) fields() []zap.Field {
	return []zap.Field{entityField("enemy", e.Enemy), entityField("character", e.Character), zap.Int("level", e.Level)}
}

// CombatEnded is published after the session has been torn down.
type CombatEnded struct {
	Session     ecs.Entity
	WinningTeam component.Team
}

func (CombatEnded) Name() string { return "combatEnded" }
func (e CombatEnded) fields() []zap.Field {
	return []zap.Field{entityField("session", e.Session), zap.String("winner", string(e.WinningTeam))}
}

// EquipmentChanged is published by the inventory collaborator after a swap.
type EquipmentChanged struct {
	Character ecs.Entity
}

func (EquipmentChanged) Name() string { return "characterEquipmentChanged" }
func (e EquipmentChanged) fields() []zap.Field {
	return []zap.Field{entityField("character", e.Character)}
}

// Package combat implements combat initiation and the turn-based combat state
// machine. Machine is the only writer of the Combatant and Session tables.
package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
)

// Ledger is the stat system's mutation surface used by combat.
type Ledger interface {
	CanPay(e ecs.Entity, stat component.Stat, amount int) bool
	Pay(e ecs.Entity, stat component.Stat, amount int)
	Damage(e ecs.Entity, amount int) int
	Heal(e ecs.Entity, amount int) int
}

// Skills resolves skill ids to definitions.
type Skills interface {
	Get(id string) (*skill.Def, bool)
}

// Rules holds the numeric constants of combat resolution.
type Rules struct {
	ScalingMultiplier float64
	PowerMultiplier   float64
	MinHitChance      int
	Initiative        dice.Expression
	BasicAttack       string
	DespawnDefeated   bool
	// MaxRounds ends a combat that runs past it with team2 winning. 0 disables the bound.
	MaxRounds int
}

// RulesFromConfig converts validated configuration into Rules.
//
// Postcondition: Returns an error only if the initiative expression does not parse.
func RulesFromConfig(cfg config.CombatConfig) (Rules, error) {
	expr, err := dice.Parse(cfg.InitiativeDice)
	if err != nil {
		return Rules{}, err
	}
	return Rules{
		ScalingMultiplier: cfg.ScalingStatMultiplier,
		PowerMultiplier:   cfg.PowerMultiplier,
		MinHitChance:      cfg.MinHitChance,
		Initiative:        expr,
		BasicAttack:       cfg.BasicAttackSkill,
		DespawnDefeated:   cfg.DespawnDefeated,
		MaxRounds:         cfg.MaxRounds,
	}, nil
}

// Machine runs combat sessions. It handles CombatStarted, TurnStarted,
// ActionTaken, FleeAttempt and TurnEnded.
//
// Machine is not safe for concurrent use; the owning encounter serialises
// every publish.
type Machine struct {
	world      *entity.World
	reg        *ecs.Registry
	combatants *ecs.Table[component.Combatant]
	sessions   *ecs.Table[component.Session]
	ledger     Ledger
	skills     Skills
	roller     *dice.Roller
	bus        *event.Bus
	rules      Rules
	logger     *zap.Logger
}

// NewMachine creates a combat state machine.
//
// Precondition: every pointer and interface argument must be non-nil.
func NewMachine(world *entity.World, reg *ecs.Registry, combatants *ecs.Table[component.Combatant], sessions *ecs.Table[component.Session], ledger Ledger, skills Skills, roller *dice.Roller, bus *event.Bus, rules Rules, logger *zap.Logger) *Machine {
	return &Machine{
		world:      world,
		reg:        reg,
		combatants: combatants,
		sessions:   sessions,
		ledger:     ledger,
		skills:     skills,
		roller:     roller,
		bus:        bus,
		rules:      rules,
		logger:     logger,
	}
}

// Rules returns the machine's resolution constants.
func (m *Machine) Rules() Rules { return m.rules }

// Handle implements event.Handler.
func (m *Machine) Handle(ev event.Event) {
	switch ev := ev.(type) {
	case event.CombatStarted:
		m.start(ev.Session)
	case event.TurnStarted:
		m.turnStarted(ev)
	case event.ActionTaken:
		m.act(ev)
	case event.FleeAttempt:
		m.flee(ev.Session, ev.Actor)
	case event.TurnEnded:
		m.advance(ev)
	}
}

func entityField(key string, e ecs.Entity) zap.Field { return zap.Uint64(key, uint64(e)) }

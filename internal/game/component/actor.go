package component

import "github.com/cory-johannsen/skirmish/internal/ecs"

// Identity names an actor.
type Identity struct {
	Name  string
	Level int
	// Player marks externally controlled characters; everything else is a mob.
	Player bool
}

// Skillbook lists the skill ids an actor knows, in learning order.
type Skillbook []string

// AIProfile selects the decision rules used for a non-player combatant.
type AIProfile string

const (
	ProfileAggressor AIProfile = "aggressor"
	ProfileHealer    AIProfile = "healer"
)

// ActiveEffect is one timed effect instance attached to an actor.
type ActiveEffect struct {
	EffectID        string
	Name            string
	SourceID        ecs.Entity
	DurationInTurns int
}

// ActiveEffects lists effect instances in attachment order. Instances of the
// same effect stack as separate entries.
type ActiveEffects []ActiveEffect

// EquippedItem is the stat contribution of one equipment slot.
type EquippedItem struct {
	Slot    string
	ItemID  string
	Bonuses map[Stat]int
}

// Equipment lists every occupied slot.
type Equipment []EquippedItem

// Trait is an innate, always-on set of modifiers.
type Trait struct {
	Name      string     `yaml:"name"`
	Modifiers []Modifier `yaml:"modifiers"`
}

// Traits lists an actor's traits in declaration order.
type Traits []Trait

// Archetype holds class-style modifiers applied right after the base formula.
type Archetype struct {
	Name      string     `yaml:"name"`
	Modifiers []Modifier `yaml:"modifiers"`
}

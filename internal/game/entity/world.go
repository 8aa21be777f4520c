// Package entity assembles the typed component tables of one encounter.
//
// New returns the World, which offers read-only views of every component kind,
// and the Tables, which hold the writable tables. Only the composition root
// keeps Tables; each system is constructed with the writable tables it owns and
// views of everything else:
//
//	stats.Calculator   Derived, Health, Mana
//	combat.Machine     Combatants, Sessions, Registry (session entities)
//	effect.Lifecycle   Effects
//	npc.Spawner        Registry, Identities, Core, Skillbooks, Profiles,
//	                   Equipment, Traits, Archetypes
package entity

import (
	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
)

// Tables holds the writable component tables.
type Tables struct {
	Registry   *ecs.Registry
	Identities *ecs.Table[component.Identity]
	Core       *ecs.Table[component.CoreStats]
	Derived    *ecs.Table[component.DerivedStats]
	Health     *ecs.Table[component.Pool]
	Mana       *ecs.Table[component.Pool]
	Combatants *ecs.Table[component.Combatant]
	Sessions   *ecs.Table[component.Session]
	Effects    *ecs.Table[component.ActiveEffects]
	Equipment  *ecs.Table[component.Equipment]
	Traits     *ecs.Table[component.Traits]
	Archetypes *ecs.Table[component.Archetype]
	Skillbooks *ecs.Table[component.Skillbook]
	Profiles   *ecs.Table[component.AIProfile]
}

// World is the read-only face of an encounter's entity store.
type World struct {
	reg        *ecs.Registry
	Identities ecs.View[component.Identity]
	Core       ecs.View[component.CoreStats]
	Derived    ecs.View[component.DerivedStats]
	Health     ecs.View[component.Pool]
	Mana       ecs.View[component.Pool]
	Combatants ecs.View[component.Combatant]
	Sessions   ecs.View[component.Session]
	Effects    ecs.View[component.ActiveEffects]
	Equipment  ecs.View[component.Equipment]
	Traits     ecs.View[component.Traits]
	Archetypes ecs.View[component.Archetype]
	Skillbooks ecs.View[component.Skillbook]
	Profiles   ecs.View[component.AIProfile]
}

// New creates an empty store.
//
// Postcondition: every World view reads the corresponding Tables table.
func New() (*World, *Tables) {
	reg := ecs.NewRegistry()
	t := &Tables{
		Registry:   reg,
		Identities: ecs.NewTable[component.Identity](reg, "identity"),
		Core:       ecs.NewTable[component.CoreStats](reg, "core_stats"),
		Derived:    ecs.NewTable[component.DerivedStats](reg, "derived_stats"),
		Health:     ecs.NewTable[component.Pool](reg, "health"),
		Mana:       ecs.NewTable[component.Pool](reg, "mana"),
		Combatants: ecs.NewTable[component.Combatant](reg, "combatant"),
		Sessions:   ecs.NewTable[component.Session](reg, "session"),
		Effects:    ecs.NewTable[component.ActiveEffects](reg, "active_effects"),
		Equipment:  ecs.NewTable[component.Equipment](reg, "equipment"),
		Traits:     ecs.NewTable[component.Traits](reg, "traits"),
		Archetypes: ecs.NewTable[component.Archetype](reg, "archetype"),
		Skillbooks: ecs.NewTable[component.Skillbook](reg, "skillbook"),
		Profiles:   ecs.NewTable[component.AIProfile](reg, "ai_profile"),
	}
	w := &World{
		reg:        reg,
		Identities: t.Identities.View(),
		Core:       t.Core.View(),
		Derived:    t.Derived.View(),
		Health:     t.Health.View(),
		Mana:       t.Mana.View(),
		Combatants: t.Combatants.View(),
		Sessions:   t.Sessions.View(),
		Effects:    t.Effects.View(),
		Equipment:  t.Equipment.View(),
		Traits:     t.Traits.View(),
		Archetypes: t.Archetypes.View(),
		Skillbooks: t.Skillbooks.View(),
		Profiles:   t.Profiles.View(),
	}
	return w, t
}

// Alive reports whether e exists.
func (w *World) Alive(e ecs.Entity) bool { return w.reg.Alive(e) }

// Count returns the number of live entities.
func (w *World) Count() int { return w.reg.Count() }

// HP returns e's current health, or 0 when e has no health pool.
func (w *World) HP(e ecs.Entity) int {
	p, _ := w.Health.Get(e)
	return p.Current
}

// Living reports whether e exists and has health above zero.
func (w *World) Living(e ecs.Entity) bool {
	return w.reg.Alive(e) && w.HP(e) > 0
}

// Name returns e's display name, or "" when e has no identity.
func (w *World) Name(e ecs.Entity) string {
	id, _ := w.Identities.Get(e)
	return id.Name
}

package npc

import (
	"maps"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/ecs"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/entity"
)

// Recomputer derives stats and seeds resource pools for a freshly built entity.
type Recomputer interface {
	Recompute(e ecs.Entity, archetype []component.Modifier)
}

// Spawner creates actor entities from templates. It owns the identity, core
// stat, skillbook, profile, equipment, trait and archetype tables.
type Spawner struct {
	reg        *ecs.Registry
	identities *ecs.Table[component.Identity]
	core       *ecs.Table[component.CoreStats]
	skillbooks *ecs.Table[component.Skillbook]
	profiles   *ecs.Table[component.AIProfile]
	equipment  *ecs.Table[component.Equipment]
	traits     *ecs.Table[component.Traits]
	archetypes *ecs.Table[component.Archetype]
	stats      Recomputer
	logger     *zap.Logger
}

// NewSpawner constructs a Spawner writing into t.
//
// Precondition: t, stats and logger must be non-nil.
func NewSpawner(t *entity.Tables, stats Recomputer, logger *zap.Logger) *Spawner {
	return &Spawner{
		reg:        t.Registry,
		identities: t.Identities,
		core:       t.Core,
		skillbooks: t.Skillbooks,
		profiles:   t.Profiles,
		equipment:  t.Equipment,
		traits:     t.Traits,
		archetypes: t.Archetypes,
		stats:      stats,
		logger:     logger,
	}
}

// Spawn creates one entity from tmpl.
//
// Precondition: tmpl passed Validate.
// Postcondition: the entity carries Identity, CoreStats and Skillbook; Traits,
// Archetype and Equipment when tmpl declares them; an AIProfile unless tmpl is
// a player; and derived stats with full health and mana pools.
func (s *Spawner) Spawn(tmpl *Template) ecs.Entity {
	e := s.reg.Create()
	s.identities.Set(e, component.Identity{Name: tmpl.Name, Level: tmpl.Level, Player: tmpl.Player})
	s.core.Set(e, tmpl.Stats)
	s.skillbooks.Set(e, append(component.Skillbook(nil), tmpl.Skills...))
	if profile, ok := tmpl.Profile(); ok {
		s.profiles.Set(e, profile)
	}
	if len(tmpl.Traits) > 0 {
		s.traits.Set(e, append(component.Traits(nil), tmpl.Traits...))
	}
	if tmpl.Archetype != nil {
		s.archetypes.Set(e, *tmpl.Archetype)
	}
	if len(tmpl.Equipment) > 0 {
		eq := make(component.Equipment, 0, len(tmpl.Equipment))
		for _, it := range tmpl.Equipment {
			eq = append(eq, component.EquippedItem{Slot: it.Slot, ItemID: it.Item, Bonuses: maps.Clone(it.Bonuses)})
		}
		s.equipment.Set(e, eq)
	}
	s.stats.Recompute(e, nil)
	s.logger.Debug("actor spawned",
		zap.Uint64("entity", uint64(e)),
		zap.String("template", tmpl.ID),
		zap.String("name", tmpl.Name),
	)
	return e
}

// Equip replaces e's equipment; an empty list unequips everything. The caller
// publishes EquipmentChanged so stats are recomputed.
func (s *Spawner) Equip(e ecs.Entity, items component.Equipment) {
	if len(items) == 0 {
		s.equipment.Delete(e)
		return
	}
	eq := make(component.Equipment, 0, len(items))
	for _, it := range items {
		it.Bonuses = maps.Clone(it.Bonuses)
		eq = append(eq, it)
	}
	s.equipment.Set(e, eq)
}
